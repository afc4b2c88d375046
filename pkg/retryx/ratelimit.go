package retryx

import (
	"net/http"
	"strconv"
	"time"
)

// RetryAfter computes how long to wait before the next request based on the
// rate-limit headers of a response. Priority order:
//
//  1. Retry-After, as a number of seconds or an HTTP-date.
//  2. X-RateLimit-Remaining > 0 means no wait at all.
//  3. X-RateLimit-Reset, as epoch seconds, a relative number of seconds, or
//     an HTTP-date. Values beyond now+1s are treated as absolute timestamps.
//
// Malformed headers degrade to zero rather than erroring; a missed wait only
// costs one extra 429 round trip.
func RetryAfter(h http.Header, now time.Time) time.Duration {
	if h == nil {
		return 0
	}

	if d := parseDelay(h.Get("Retry-After"), now); d > 0 {
		return d
	}

	if remaining := h.Get("X-RateLimit-Remaining"); remaining != "" {
		if n, err := strconv.ParseFloat(remaining, 64); err == nil && n > 0 {
			return 0
		}
	}

	return parseReset(h.Get("X-RateLimit-Reset"), now)
}

// parseDelay handles the dual Retry-After format: plain seconds or HTTP-date.
func parseDelay(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.ParseFloat(value, 64); err == nil {
		return clampSeconds(secs)
	}
	if t, err := http.ParseTime(value); err == nil {
		return clampDuration(t.Sub(now))
	}
	return 0
}

// parseReset handles X-RateLimit-Reset, which providers variously populate
// with epoch seconds, seconds-from-now, or an HTTP-date.
func parseReset(value string, now time.Time) time.Duration {
	if value == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(value, 64)
	if err != nil {
		if t, perr := http.ParseTime(value); perr == nil {
			return clampDuration(t.Sub(now))
		}
		return 0
	}
	nowSecs := float64(now.UnixNano()) / float64(time.Second)
	if secs > nowSecs+1 {
		return clampSeconds(secs - nowSecs)
	}
	return clampSeconds(secs)
}

func clampSeconds(secs float64) time.Duration {
	if secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}

func clampDuration(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	return d
}
