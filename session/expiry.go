package session

import "time"

const (
	// refreshRatio is the fraction of the validity window after which a
	// token is refreshed, as numerator/denominator.
	refreshRatioNum = 4
	refreshRatioDen = 5

	// fallbackThreshold applies to tokens whose validity is unknown.
	fallbackThreshold = 180 * time.Second
)

// RefreshThreshold returns the token age after which a refresh is due.
// A non-positive validity means the validity is unknown.
func RefreshThreshold(validity time.Duration) time.Duration {
	if validity <= 0 {
		return fallbackThreshold
	}
	return validity * refreshRatioNum / refreshRatioDen
}

// NearExpiry reports whether a token created at created should be refreshed
// at now.
func NearExpiry(created time.Time, validity time.Duration, now time.Time) bool {
	return now.Sub(created) > RefreshThreshold(validity)
}
