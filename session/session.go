// Package session manages the client-side lifecycle of the server's opaque
// authentication token: obtaining it via login, persisting it in the
// per-user session file, resolving it from an option, the environment or
// that file, and renewing it before it expires.
//
// A token's first '-'-delimited segment is its creation time in
// milliseconds since the Unix epoch; expiry decisions are based on it.
package session

import (
	"context"
	"time"
)

// Authenticator is the server side of the session lifecycle.
// Implementations return the decoded record for any well-formed response,
// including ones with Success set to false, and wrap every transport
// failure with ErrTransport.
type Authenticator interface {
	Login(ctx context.Context, creds Credentials) (*Record, error)
	LoginOTP(ctx context.Context, token, otp string) (*Record, error)
	SessionLogin(ctx context.Context, token string) (*Record, error)
}

// OTPPrompter reads a one-time code from the user.
type OTPPrompter interface {
	PromptOTP(ctx context.Context) (string, error)
}

// PasswordLookup fetches a password from an external password manager.
type PasswordLookup interface {
	Lookup(ctx context.Context, entry string) (string, error)
}

// Reporter receives session lifecycle events for display.
type Reporter interface {
	TokenResolved(origin string)
	TokenValid()
	NearExpiry(age, threshold time.Duration)
	Refreshing()
	RefreshOK()
	RefreshFailed(err error)
	LoggingIn(account string)
	SecondFactorRequired()
	AuthSuccess(account, collective string)
	TokenSaved(path string)
}

type noopReporter struct{}

func (noopReporter) TokenResolved(string)          {}
func (noopReporter) TokenValid()                   {}
func (noopReporter) NearExpiry(_, _ time.Duration) {}
func (noopReporter) Refreshing()                   {}
func (noopReporter) RefreshOK()                    {}
func (noopReporter) RefreshFailed(error)           {}
func (noopReporter) LoggingIn(string)              {}
func (noopReporter) SecondFactorRequired()         {}
func (noopReporter) AuthSuccess(_, _ string)       {}
func (noopReporter) TokenSaved(string)             {}
