package allegro

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Refresher defaults, matching the provider's hour-long access tokens.
const (
	DefaultRefreshMargin       = 5 * time.Minute
	DefaultIdleInterval        = time.Minute
	DefaultErrorBackoffInitial = 30 * time.Second
	DefaultErrorBackoffMax     = 10 * time.Minute

	// minWait stops the loop from spinning when a computed wait is ~0.
	minWait = 10 * time.Millisecond
)

// Refresher renews the stored access token shortly before it expires, on a
// dedicated background goroutine. It is the only proactive writer of tokens;
// foreground on-demand refreshes may still race it, which is tolerated;
// last write wins and the provider's rotation decides which pair survives.
//
// The refresher never clears credentials. When a refresh fails definitively
// (dead refresh token per IsDefinitive) it drops to the idle interval rather
// than hammering the token endpoint; transient failures back off
// exponentially. Clearing is the on-demand path's decision.
type Refresher struct {
	Client *Client
	Logger *slog.Logger

	// Margin is how long before expiry the token is renewed.
	Margin time.Duration

	// IdleInterval is the re-check period while no managed token exists, and
	// the upper bound on any scheduled wait so externally written tokens are
	// noticed promptly.
	IdleInterval time.Duration

	// ErrorBackoffInitial/ErrorBackoffMax bound the wait between failed
	// refresh attempts. Independent of the HTTP retry policy.
	ErrorBackoffInitial time.Duration
	ErrorBackoffMax     time.Duration

	Metrics *RefreshMetrics

	// now is swapped in tests.
	now func() time.Time

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewRefresher creates a refresher with default scheduling parameters.
func NewRefresher(client *Client, logger *slog.Logger) *Refresher {
	return &Refresher{
		Client:              client,
		Logger:              logger,
		Margin:              DefaultRefreshMargin,
		IdleInterval:        DefaultIdleInterval,
		ErrorBackoffInitial: DefaultErrorBackoffInitial,
		ErrorBackoffMax:     DefaultErrorBackoffMax,
		now:                 time.Now,
	}
}

// Start launches the background goroutine. Idempotent: returns false when
// the refresher is already running.
func (r *Refresher) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopCh != nil {
		return false
	}
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	go r.run(r.stopCh, r.doneCh)

	r.Logger.Info("allegro token refresher started",
		"margin", r.Margin,
		"idle_interval", r.IdleInterval,
	)
	return true
}

// Stop signals the goroutine and blocks until it has exited. Any wait in
// progress is interrupted; an in-flight HTTP call finishes or times out
// first. Idempotent.
func (r *Refresher) Stop() {
	r.mu.Lock()
	stopCh, doneCh := r.stopCh, r.doneCh
	r.stopCh, r.doneCh = nil, nil
	r.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-doneCh
	r.Logger.Info("allegro token refresher stopped")
}

// run is the scheduling loop: idle without credentials, wait until the
// refresh point otherwise, refresh when due, back off on failure.
func (r *Refresher) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ctx := context.Background()
	backoff := r.ErrorBackoffInitial

	for {
		var wait time.Duration

		until, managed := r.untilRefresh(ctx)
		switch {
		case !managed:
			wait = r.IdleInterval

		case until <= 0:
			err := r.refresh(ctx)
			if err == nil {
				backoff = r.ErrorBackoffInitial
				continue // recompute the next window immediately
			}
			if IsDefinitive(err) {
				// Dead refresh token: retrying faster changes nothing. Keep
				// idling so a re-authorization is picked up when it lands.
				r.Logger.Error("allegro token refresh failed definitively; waiting for re-authorization",
					"error", err,
				)
				wait = r.IdleInterval
				backoff = r.ErrorBackoffInitial
				break
			}
			r.Logger.Warn("allegro token refresh failed", "error", err, "retry_in", backoff)
			r.Metrics.recordRetry(ctx)
			wait = backoff
			backoff = min(backoff*2, r.ErrorBackoffMax)

		default:
			// Cap at the idle interval so tokens rewritten by another
			// process shorten the schedule within one cycle.
			wait = min(until, r.IdleInterval)
		}

		timer := time.NewTimer(max(wait, minWait))
		select {
		case <-stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// untilRefresh computes how long until the token should be renewed. The
// second return is false when no managed token pair exists or no expiry can
// be derived, in which case the loop idles.
func (r *Refresher) untilRefresh(ctx context.Context) (time.Duration, bool) {
	store := r.Client.Tokens

	access, err := store.Get(ctx, KeyAccessToken)
	if err != nil {
		// A broken store is not "not connected". Log it so the operator can
		// tell the two apart, then idle and re-check next cycle.
		r.Logger.Error("allegro token store read failed", "error", err)
		return 0, false
	}
	if access == "" {
		return 0, false
	}
	refresh, err := store.Get(ctx, KeyRefreshToken)
	if err != nil {
		r.Logger.Error("allegro token store read failed", "error", err)
		return 0, false
	}
	if refresh == "" {
		return 0, false
	}

	expiresAt, ok := loadMetadata(ctx, store).Expiry(access)
	if !ok {
		return 0, false
	}

	refreshAt := expiresAt.Add(-r.Margin)
	return refreshAt.Sub(r.now().UTC()), true
}

// refresh performs one renewal attempt and persists the result.
func (r *Refresher) refresh(ctx context.Context) error {
	refreshToken, err := r.Client.Tokens.Get(ctx, KeyRefreshToken)
	if err != nil {
		r.Metrics.recordAttempt(ctx, "error")
		return err
	}
	if refreshToken == "" {
		// Token disappeared between scheduling and firing; nothing to do.
		r.Metrics.recordAttempt(ctx, "skipped")
		return nil
	}

	token, err := r.Client.Refresh(ctx, refreshToken)
	if err != nil {
		r.Metrics.recordAttempt(ctx, "error")
		return err
	}
	if token.AccessToken == "" {
		r.Metrics.recordAttempt(ctx, "error")
		return ErrNoToken
	}

	if err := saveTokens(ctx, r.Client.Tokens, token, refreshToken, r.now()); err != nil {
		// Dangerous spot: the provider rotated tokens but we could not save
		// them. Surface as an error so the backoff path logs it loudly.
		r.Metrics.recordAttempt(ctx, "error")
		return err
	}

	r.Metrics.recordAttempt(ctx, "success")
	r.Metrics.recordSuccess(ctx, float64(r.now().UnixNano())/float64(time.Second))
	r.Logger.Info("allegro access token refreshed",
		"expires_in", token.ExpiresIn,
		"access_token", maskToken(token.AccessToken),
	)
	return nil
}
