package session

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Record is the authentication state returned by the server and persisted
// in the token file.
type Record struct {
	Collective string `json:"collective"`
	Account    string `json:"user"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Token      string `json:"token,omitempty"`
	ValidMs    int64  `json:"validMs"`

	// RequireSecondFactor is only set on login responses for accounts with
	// two-factor authentication enabled.
	RequireSecondFactor bool `json:"requireSecondFactor,omitempty"`
}

// ValidFor returns the declared validity window of the token.
func (r *Record) ValidFor() time.Duration {
	return time.Duration(r.ValidMs) * time.Millisecond
}

// usableToken returns the token, or ErrNotLoggedIn if the record carries none.
func (r *Record) usableToken() (string, error) {
	if r == nil || r.Token == "" {
		return "", ErrNotLoggedIn
	}
	return r.Token, nil
}

// Credentials is the body of a password login.
type Credentials struct {
	Account    string `json:"account"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// Origin is where a token candidate came from for this invocation.
type Origin int

const (
	OriginNone Origin = iota
	OriginExplicit
	OriginEnvironment
	OriginStored
)

func (o Origin) String() string {
	switch o {
	case OriginExplicit:
		return "explicit option"
	case OriginEnvironment:
		return "environment"
	case OriginStored:
		return "session file"
	default:
		return "none"
	}
}

// persistent reports whether a token refreshed from this origin is written
// back to the store.
func (o Origin) persistent() bool {
	return o == OriginStored || o == OriginNone
}

// CreationTime extracts the creation time embedded in the first
// '-'-delimited segment of a token (milliseconds since the Unix epoch).
func CreationTime(token string) (time.Time, error) {
	first, _, _ := strings.Cut(token, "-")
	ms, err := strconv.ParseUint(first, 10, 63)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidAuthToken, token)
	}
	return time.UnixMilli(int64(ms)), nil
}
