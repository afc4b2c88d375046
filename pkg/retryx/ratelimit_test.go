package retryx_test

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/aussiebroadwan/magsync/pkg/retryx"
	"github.com/stretchr/testify/require"
)

func TestRetryAfter(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("numeric seconds", func(t *testing.T) {
		h := http.Header{"Retry-After": []string{"5"}}
		require.Equal(t, 5*time.Second, retryx.RetryAfter(h, now))
	})

	t.Run("fractional seconds", func(t *testing.T) {
		h := http.Header{"Retry-After": []string{"0.5"}}
		require.Equal(t, 500*time.Millisecond, retryx.RetryAfter(h, now))
	})

	t.Run("http date", func(t *testing.T) {
		h := http.Header{"Retry-After": []string{now.Add(2 * time.Second).Format(http.TimeFormat)}}
		d := retryx.RetryAfter(h, now)
		require.Equal(t, 2*time.Second, d)
	})

	t.Run("http date in the past clamps to zero", func(t *testing.T) {
		h := http.Header{"Retry-After": []string{now.Add(-10 * time.Second).Format(http.TimeFormat)}}
		require.Equal(t, time.Duration(0), retryx.RetryAfter(h, now))
	})

	t.Run("retry-after wins over reset", func(t *testing.T) {
		h := http.Header{}
		h.Set("Retry-After", "5")
		h.Set("X-RateLimit-Reset", "10")
		require.Equal(t, 5*time.Second, retryx.RetryAfter(h, now))
	})

	t.Run("remaining quota short-circuits reset", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-RateLimit-Remaining", "42")
		h.Set("X-RateLimit-Reset", "10")
		require.Equal(t, time.Duration(0), retryx.RetryAfter(h, now))
	})

	t.Run("exhausted quota falls through to reset", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-RateLimit-Remaining", "0")
		h.Set("X-RateLimit-Reset", "10")
		require.Equal(t, 10*time.Second, retryx.RetryAfter(h, now))
	})

	t.Run("reset as epoch timestamp", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-RateLimit-Reset", strconv.FormatInt(now.Add(30*time.Second).Unix(), 10))
		d := retryx.RetryAfter(h, now)
		require.InDelta(t, 30.0, d.Seconds(), 0.01)
	})

	t.Run("reset as relative seconds", func(t *testing.T) {
		// Anything within now+1s is already a relative value.
		h := http.Header{"X-Ratelimit-Reset": []string{"0.75"}}
		require.Equal(t, 750*time.Millisecond, retryx.RetryAfter(h, now))
	})

	t.Run("reset as http date", func(t *testing.T) {
		h := http.Header{"X-Ratelimit-Reset": []string{now.Add(3 * time.Second).Format(http.TimeFormat)}}
		require.Equal(t, 3*time.Second, retryx.RetryAfter(h, now))
	})

	t.Run("malformed headers degrade to zero", func(t *testing.T) {
		h := http.Header{}
		h.Set("Retry-After", "soon")
		h.Set("X-RateLimit-Remaining", "plenty")
		h.Set("X-RateLimit-Reset", "whenever")
		require.Equal(t, time.Duration(0), retryx.RetryAfter(h, now))
	})

	t.Run("empty headers", func(t *testing.T) {
		require.Equal(t, time.Duration(0), retryx.RetryAfter(http.Header{}, now))
		require.Equal(t, time.Duration(0), retryx.RetryAfter(nil, now))
	})
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{200, false},
		{201, false},
		{204, false},
		{301, false},
		{400, false},
		{401, false},
		{403, false},
		{404, false},
		{409, false},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
		{599, true},
		{600, false},
	}
	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.status), func(t *testing.T) {
			require.Equal(t, tt.want, retryx.ShouldRetry(tt.status))
		})
	}
}
