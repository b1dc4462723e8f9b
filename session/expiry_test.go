package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshThreshold(t *testing.T) {
	assert.Equal(t, 800*time.Millisecond, RefreshThreshold(time.Second))
	assert.Equal(t, 4*time.Minute, RefreshThreshold(5*time.Minute))
	assert.Equal(t, 180*time.Second, RefreshThreshold(0))
	assert.Equal(t, 180*time.Second, RefreshThreshold(-time.Second))
}

func TestNearExpiry(t *testing.T) {
	created := time.UnixMilli(1626345633653)

	tests := []struct {
		name     string
		validity time.Duration
		age      time.Duration
		want     bool
	}{
		{"known validity past 80 percent", time.Second, 801 * time.Millisecond, true},
		{"known validity before 80 percent", time.Second, 799 * time.Millisecond, false},
		{"known validity exactly at threshold", time.Second, 800 * time.Millisecond, false},
		{"unknown validity past fallback", 0, 181 * time.Second, true},
		{"unknown validity before fallback", 0, 179 * time.Second, false},
		{"long validity young token", time.Hour, 10 * time.Minute, false},
		{"created in the future", time.Minute, -time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NearExpiry(created, tt.validity, created.Add(tt.age)))
		})
	}
}
