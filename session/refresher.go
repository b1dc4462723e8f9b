package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Refresher exchanges a still-usable token for a fresh one.
type Refresher struct {
	auth     Authenticator
	store    Store
	reporter Reporter
	log      zerolog.Logger
}

// NewRefresher creates a Refresher. A nil reporter discards events.
func NewRefresher(auth Authenticator, store Store, reporter Reporter, log zerolog.Logger) *Refresher {
	if reporter == nil {
		reporter = noopReporter{}
	}
	return &Refresher{auth: auth, store: store, reporter: reporter, log: log}
}

// Refresh renews the candidate's token. The new record is persisted only
// when the candidate came from the store; tokens given via option or
// environment are returned without touching the session file.
// A server refusal is ErrLoginRejected and is never retried here.
func (r *Refresher) Refresh(ctx context.Context, c Candidate) (*Record, error) {
	r.reporter.Refreshing()

	rec, err := r.auth.SessionLogin(ctx, c.Token)
	if err != nil {
		r.reporter.RefreshFailed(err)
		return nil, err
	}
	if !rec.Success {
		r.log.Debug().Str("message", rec.Message).Msg("session login rejected")
		err := fmt.Errorf("%w: %s", ErrLoginRejected, rec.Message)
		r.reporter.RefreshFailed(err)
		return nil, err
	}
	if _, err := rec.usableToken(); err != nil {
		r.reporter.RefreshFailed(err)
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		r.reporter.RefreshFailed(err)
		return nil, err
	}

	if c.Origin.persistent() && r.store != nil {
		saved, err := r.store.Save(rec)
		if err != nil {
			return nil, err
		}
		if saved {
			r.reporter.TokenSaved(r.store.Path())
		}
	} else {
		r.log.Debug().Stringer("origin", c.Origin).Msg("not storing new session, since it was given as argument")
	}

	r.reporter.RefreshOK()
	return rec, nil
}
