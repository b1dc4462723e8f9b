package session

import "errors"

var (
	// ErrNotLoggedIn indicates that no token could be obtained from any source.
	ErrNotLoggedIn = errors.New("you are not logged in, use the login command")

	// ErrNoAccount and ErrNoPassword report a login input that could not be
	// resolved from any source.
	ErrNoAccount  = errors.New("no account name provided")
	ErrNoPassword = errors.New("no password provided")

	// ErrInvalidAuthToken indicates a token whose creation time cannot be parsed.
	ErrInvalidAuthToken = errors.New("invalid authentication token")

	// ErrLoginFailed indicates that the server denied the credentials or the one-time code.
	ErrLoginFailed = errors.New("login failed")

	// ErrLoginRejected indicates that the server refused to renew a session.
	ErrLoginRejected = errors.New("error refreshing session, use the login command")

	// ErrTransport wraps network, status and response decoding failures.
	ErrTransport = errors.New("transport failure")

	// ErrStoreIO wraps file system failures on the session file.
	ErrStoreIO = errors.New("session file i/o failure")

	// ErrStoreCorrupt indicates a session file that is not valid JSON.
	ErrStoreCorrupt = errors.New("session file is corrupt")

	// ErrLockBusy is returned by a non-blocking lock attempt that lost to another process.
	ErrLockBusy = errors.New("session file is locked by another process")

	// ErrPasswordLookup indicates that the password manager failed or returned nothing.
	ErrPasswordLookup = errors.New("password manager lookup failed")
)
