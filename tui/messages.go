package tui

import (
	"time"
)

// MsgBanner signals that the banner/title should be displayed.
type MsgBanner struct{}

// MsgTokenResolved signals which source supplied the session token.
type MsgTokenResolved struct{ Origin string }

// MsgTokenValid signals that the token is not near expiry.
type MsgTokenValid struct{}

// MsgNearExpiry signals that the token is old enough to be refreshed.
type MsgNearExpiry struct {
	Age       time.Duration
	Threshold time.Duration
}

// MsgRefreshing signals that a session refresh is in progress.
type MsgRefreshing struct{}

// MsgRefreshOK signals that the session was refreshed successfully.
type MsgRefreshOK struct{}

// MsgRefreshFailed signals that the session refresh failed.
type MsgRefreshFailed struct{ Err error }

// MsgLoggingIn signals that credentials are being sent for account.
type MsgLoggingIn struct{ Account string }

// MsgSecondFactorRequired signals that the account requires a one-time code.
type MsgSecondFactorRequired struct{}

// MsgOTPRequired asks the model to read a one-time code and send it on Reply.
// Reply is closed if the user cancels.
type MsgOTPRequired struct{ Reply chan<- string }

// MsgAuthSuccess signals that the login completed.
type MsgAuthSuccess struct {
	Account    string
	Collective string
}

// MsgTokenSaved signals that the session was written to disk.
type MsgTokenSaved struct{ Path string }

// MsgLoggedOut signals that the session file was removed.
type MsgLoggedOut struct{ Path string }

// MsgVerifying signals that token verification is in progress.
type MsgVerifying struct{}

// MsgVerifyOK signals that token verification succeeded.
type MsgVerifyOK struct{ Body string }

// MsgVerifyFailed signals that token verification failed.
type MsgVerifyFailed struct{ Err error }

// MsgDone signals successful completion.
type MsgDone struct {
	Preview string
	DueIn   time.Duration
}

// MsgFatal signals a fatal error that should terminate the flow.
type MsgFatal struct{ Err error }
