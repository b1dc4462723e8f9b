package session

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// EnvSession is the environment variable holding a raw session token.
const EnvSession = "DSC_SESSION"

// Candidate is a token found by the Resolver, not yet checked for expiry.
type Candidate struct {
	Token  string
	Origin Origin

	// Validity is the declared validity window; zero when unknown.
	Validity time.Duration
}

// Resolver picks the token for this invocation: explicit option, then
// environment, then the store. The store is only read when neither of the
// other sources yields a token.
type Resolver struct {
	store  Store
	getenv func(string) string
	log    zerolog.Logger
}

// NewResolver creates a Resolver. A nil getenv uses os.Getenv.
func NewResolver(store Store, getenv func(string) string, log zerolog.Logger) *Resolver {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &Resolver{store: store, getenv: getenv, log: log}
}

// Resolve returns the candidate token or ErrNotLoggedIn.
func (r *Resolver) Resolve(explicit string) (Candidate, error) {
	if explicit != "" {
		r.log.Debug().Msg("using auth token given via option")
		return Candidate{Token: explicit, Origin: OriginExplicit}, nil
	}

	if token := r.getenv(EnvSession); token != "" {
		r.log.Debug().Str("env", EnvSession).Msg("using auth token given via environment")
		return Candidate{Token: token, Origin: OriginEnvironment}, nil
	}

	if r.store == nil {
		return Candidate{}, ErrNotLoggedIn
	}
	rec, err := r.store.Load()
	if err != nil {
		return Candidate{}, err
	}
	token, err := rec.usableToken()
	if err != nil {
		return Candidate{}, err
	}
	return Candidate{Token: token, Origin: OriginStored, Validity: rec.ValidFor()}, nil
}
