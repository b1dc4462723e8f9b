package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// Manager is the entry point commands use to authenticate.
type Manager struct {
	store    Store
	auth     Authenticator
	log      zerolog.Logger
	reporter Reporter
	now      func() time.Time
	getenv   func(string) string
	pass     PasswordLookup
	otp      OTPPrompter
	defaults LoginDefaults

	resolver  *Resolver
	refresher *Refresher
}

// Option configures a Manager.
type Option func(*Manager)

func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithReporter sends lifecycle events to r.
func WithReporter(r Reporter) Option {
	return func(m *Manager) {
		if r != nil {
			m.reporter = r
		}
	}
}

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithGetenv replaces os.Getenv for DSC_SESSION and DSC_PASSWORD.
func WithGetenv(getenv func(string) string) Option {
	return func(m *Manager) { m.getenv = getenv }
}

func WithPasswordLookup(p PasswordLookup) Option {
	return func(m *Manager) { m.pass = p }
}

func WithOTPPrompter(p OTPPrompter) Option {
	return func(m *Manager) { m.otp = p }
}

func WithLoginDefaults(d LoginDefaults) Option {
	return func(m *Manager) { m.defaults = d }
}

// NewManager creates a Manager persisting sessions in store and talking to
// the server through auth.
func NewManager(store Store, auth Authenticator, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		auth:     auth,
		log:      zerolog.Nop(),
		reporter: noopReporter{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.resolver = NewResolver(store, m.getenv, m.log)
	m.refresher = NewRefresher(auth, store, m.reporter, m.log)
	return m
}

// ValidToken returns a token that is not near expiry, refreshing it first
// if needed. It never performs a password login: without any token source
// it fails with ErrNotLoggedIn.
func (m *Manager) ValidToken(ctx context.Context, explicit string) (string, error) {
	token, _, err := m.validToken(ctx, explicit)
	return token, err
}

// validToken also returns the time at which the returned token becomes due
// for refresh.
func (m *Manager) validToken(ctx context.Context, explicit string) (string, time.Time, error) {
	c, err := m.resolver.Resolve(explicit)
	if err != nil {
		return "", time.Time{}, err
	}
	m.reporter.TokenResolved(c.Origin.String())

	created, err := CreationTime(c.Token)
	if err != nil {
		return "", time.Time{}, err
	}

	now := m.now()
	threshold := RefreshThreshold(c.Validity)
	age := now.Sub(created)
	m.log.Debug().Dur("age", age).Dur("threshold", threshold).Msg("token age")

	if !NearExpiry(created, c.Validity, now) {
		m.reporter.TokenValid()
		return c.Token, created.Add(threshold), nil
	}

	m.log.Info().Msg("token is nearly expired, trying to refresh")
	m.reporter.NearExpiry(age, threshold)

	rec, err := m.refresher.Refresh(ctx, c)
	if err != nil {
		return "", time.Time{}, err
	}

	deadline := now.Add(RefreshThreshold(rec.ValidFor()))
	if fresh, err := CreationTime(rec.Token); err == nil {
		deadline = fresh.Add(RefreshThreshold(rec.ValidFor()))
	}
	return rec.Token, deadline, nil
}

// Login performs a full password login and stores the session.
func (m *Manager) Login(ctx context.Context, opts LoginOptions) (*Record, error) {
	flow := &LoginFlow{
		auth:     m.auth,
		store:    m.store,
		defaults: m.defaults,
		pass:     m.pass,
		otp:      m.otp,
		getenv:   m.resolver.getenv,
		reporter: m.reporter,
		log:      m.log,
	}
	return flow.Login(ctx, opts)
}

// Logout deletes the session file. It is not an error if there is none.
func (m *Manager) Logout() error {
	return m.store.Delete()
}

// TokenSource adapts ValidToken to oauth2. Each token expires at its
// refresh deadline, so wrapping the source in oauth2.ReuseTokenSource
// re-enters the Manager exactly when a refresh is due.
func (m *Manager) TokenSource(ctx context.Context, explicit string) oauth2.TokenSource {
	return &tokenSource{ctx: ctx, m: m, explicit: explicit}
}

type tokenSource struct {
	ctx      context.Context
	m        *Manager
	explicit string
}

func (ts *tokenSource) Token() (*oauth2.Token, error) {
	token, deadline, err := ts.m.validToken(ts.ctx, ts.explicit)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
		Expiry:      deadline,
	}, nil
}
