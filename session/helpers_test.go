package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store that counts accesses.
type memStore struct {
	mu      sync.Mutex
	rec     *Record
	loadErr error
	loads   int
	saves   int
}

func (s *memStore) Load() (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.rec == nil {
		return nil, ErrNotLoggedIn
	}
	cp := *s.rec
	return &cp, nil
}

func (s *memStore) Save(rec *Record) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	cp := *rec
	s.rec = &cp
	return true, nil
}

func (s *memStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec = nil
	return nil
}

func (s *memStore) Path() string { return "memory" }

// fakeAuth answers from canned records and remembers what it was asked.
type fakeAuth struct {
	login        *Record
	loginOTP     *Record
	sessionLogin *Record
	err          error

	gotCreds        Credentials
	gotOTPToken     string
	gotOTP          string
	gotSessionToken string
	sessionCalls    int
	otpCalls        int
}

func (f *fakeAuth) Login(_ context.Context, creds Credentials) (*Record, error) {
	f.gotCreds = creds
	if f.err != nil {
		return nil, f.err
	}
	return f.login, nil
}

func (f *fakeAuth) LoginOTP(_ context.Context, token, otp string) (*Record, error) {
	f.otpCalls++
	f.gotOTPToken = token
	f.gotOTP = otp
	if f.err != nil {
		return nil, f.err
	}
	return f.loginOTP, nil
}

func (f *fakeAuth) SessionLogin(_ context.Context, token string) (*Record, error) {
	f.sessionCalls++
	f.gotSessionToken = token
	if f.err != nil {
		return nil, f.err
	}
	return f.sessionLogin, nil
}

// eventReporter records the names of the events it receives.
type eventReporter struct {
	events []string
}

func (r *eventReporter) add(e string)                  { r.events = append(r.events, e) }
func (r *eventReporter) TokenResolved(string)          { r.add("resolved") }
func (r *eventReporter) TokenValid()                   { r.add("valid") }
func (r *eventReporter) NearExpiry(_, _ time.Duration) { r.add("near-expiry") }
func (r *eventReporter) Refreshing()                   { r.add("refreshing") }
func (r *eventReporter) RefreshOK()                    { r.add("refresh-ok") }
func (r *eventReporter) RefreshFailed(error)           { r.add("refresh-failed") }
func (r *eventReporter) LoggingIn(string)              { r.add("logging-in") }
func (r *eventReporter) SecondFactorRequired()         { r.add("second-factor") }
func (r *eventReporter) AuthSuccess(_, _ string)       { r.add("auth-success") }
func (r *eventReporter) TokenSaved(string)             { r.add("saved") }

type staticOTP struct {
	code string
	err  error
}

func (s staticOTP) PromptOTP(context.Context) (string, error) { return s.code, s.err }

type staticPass map[string]string

func (p staticPass) Lookup(_ context.Context, entry string) (string, error) {
	pw, ok := p[entry]
	if !ok {
		return "", errors.Join(ErrPasswordLookup, errors.New("not in the password store"))
	}
	return pw, nil
}

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func nopLog() zerolog.Logger { return zerolog.Nop() }

func mustSave(t *testing.T, store Store, rec *Record) {
	t.Helper()
	saved, err := store.Save(rec)
	require.NoError(t, err)
	require.True(t, saved, "session was not written")
}
