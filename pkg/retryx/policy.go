package retryx

import "time"

// Defaults mirror the limits Allegro publishes for its public API. They are
// deliberately conservative: a single integration client, no jitter.
const (
	DefaultTimeout        = 10 * time.Second
	DefaultInitialBackoff = 1 * time.Second
	DefaultMaxBackoff     = 30 * time.Second
	DefaultMaxAttempts    = 5
)

// Policy decides whether an HTTP outcome is worth retrying and how the wait
// between attempts grows. The backoff sequence is exponential without jitter
// (initial, 2x, 4x, ... capped at MaxBackoff); fine for a low-volume client,
// add jitter before pointing many workers at the same schedule.
type Policy struct {
	// Timeout is applied to the HTTP client when the caller did not set one.
	Timeout time.Duration

	// InitialBackoff is the wait before the second attempt.
	InitialBackoff time.Duration

	// MaxBackoff caps both the exponential backoff and any single sleep.
	MaxBackoff time.Duration

	// MaxAttempts is the total attempt ceiling, including the first try.
	MaxAttempts int
}

// DefaultPolicy returns the policy used against the marketplace APIs.
func DefaultPolicy() Policy {
	return Policy{
		Timeout:        DefaultTimeout,
		InitialBackoff: DefaultInitialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
		MaxAttempts:    DefaultMaxAttempts,
	}
}

// normalized fills zero fields with defaults so a partially configured
// Policy behaves sensibly.
func (p Policy) normalized() Policy {
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = DefaultInitialBackoff
	}
	if p.MaxBackoff <= 0 {
		p.MaxBackoff = DefaultMaxBackoff
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	return p
}

// ShouldRetry reports whether a request that produced the given status code
// is expected to eventually succeed if re-issued. 429 and every 5xx retry;
// all other statuses (including the remaining 4xx) are final.
func ShouldRetry(status int) bool {
	return status == 429 || (500 <= status && status < 600)
}
