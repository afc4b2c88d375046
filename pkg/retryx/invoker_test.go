package retryx_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/magsync/pkg/retryx"
	"github.com/stretchr/testify/require"
)

// fastPolicy keeps test backoffs in the millisecond range.
func fastPolicy(maxAttempts int) retryx.Policy {
	return retryx.Policy{
		Timeout:        time.Second,
		InitialBackoff: 2 * time.Millisecond,
		MaxBackoff:     20 * time.Millisecond,
		MaxAttempts:    maxAttempts,
	}
}

// scriptedServer replies with the queued statuses in order, repeating the
// last one once the script runs out. It records the number of attempts.
func scriptedServer(t *testing.T, script []func(w http.ResponseWriter)) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		idx := int(n) - 1
		if idx >= len(script) {
			idx = len(script) - 1
		}
		script[idx](w)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func status(code int) func(http.ResponseWriter) {
	return func(w http.ResponseWriter) { w.WriteHeader(code) }
}

func getReq(url string) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func TestInvokerSuccessFirstAttempt(t *testing.T) {
	srv, calls := scriptedServer(t, []func(http.ResponseWriter){
		func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"ok":true}`))
		},
	})

	inv := retryx.NewInvoker(nil, fastPolicy(5))
	resp, err := inv.Do(context.Background(), "offers", getReq(srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.EqualValues(t, 1, calls.Load())
}

func TestInvokerRetriesRateLimitThenSucceeds(t *testing.T) {
	srv, calls := scriptedServer(t, []func(http.ResponseWriter){
		func(w http.ResponseWriter) {
			w.Header().Set("Retry-After", "0.05")
			w.WriteHeader(http.StatusTooManyRequests)
		},
		status(http.StatusOK),
	})

	inv := retryx.NewInvoker(nil, fastPolicy(5))
	start := time.Now()
	resp, err := inv.Do(context.Background(), "offers", getReq(srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.EqualValues(t, 2, calls.Load())
	// The Retry-After value takes priority over the (smaller) backoff.
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestInvokerExhaustsRetriesOnServerErrors(t *testing.T) {
	srv, calls := scriptedServer(t, []func(http.ResponseWriter){
		status(http.StatusInternalServerError),
	})

	inv := retryx.NewInvoker(nil, fastPolicy(5))
	_, err := inv.Do(context.Background(), "listing", getReq(srv.URL))
	require.Error(t, err)
	require.True(t, retryx.IsStatus(err, http.StatusInternalServerError))

	// Exactly MaxAttempts attempts, never one more.
	require.EqualValues(t, 5, calls.Load())
}

func TestInvokerDoesNotRetryClientErrors(t *testing.T) {
	srv, calls := scriptedServer(t, []func(http.ResponseWriter){
		func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"errors":[{"code":"NotFound","message":"offer missing"}]}`))
		},
	})

	inv := retryx.NewInvoker(nil, fastPolicy(5))
	_, err := inv.Do(context.Background(), "order_details", getReq(srv.URL))
	require.Error(t, err)
	require.EqualValues(t, 1, calls.Load())

	var se *retryx.StatusError
	require.ErrorAs(t, err, &se)
	require.Equal(t, http.StatusNotFound, se.StatusCode)
	require.Equal(t, "NotFound", se.Code)
	require.Equal(t, "offer missing", se.Message)
	require.Equal(t, "order_details", se.Endpoint)
}

func TestInvokerRetriesNetworkErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // every attempt now fails at the transport level

	inv := retryx.NewInvoker(nil, fastPolicy(3))
	_, err := inv.Do(context.Background(), "tracking", getReq(url))
	require.Error(t, err)
	require.ErrorContains(t, err, "after 3 attempts")
}

func TestInvokerBackoffGrowsBetweenRetries(t *testing.T) {
	srv, calls := scriptedServer(t, []func(http.ResponseWriter){
		status(http.StatusServiceUnavailable),
		status(http.StatusServiceUnavailable),
		status(http.StatusServiceUnavailable),
		status(http.StatusOK),
	})

	policy := retryx.Policy{
		Timeout:        time.Second,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     time.Second,
		MaxAttempts:    5,
	}
	inv := retryx.NewInvoker(nil, policy)

	start := time.Now()
	resp, err := inv.Do(context.Background(), "billing_entries", getReq(srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.EqualValues(t, 4, calls.Load())
	// Sleeps follow 10ms, 20ms, 40ms.
	require.GreaterOrEqual(t, time.Since(start), 70*time.Millisecond)
}

func TestInvokerHonoursRetryAfterOnSuccess(t *testing.T) {
	srv, _ := scriptedServer(t, []func(http.ResponseWriter){
		func(w http.ResponseWriter) {
			w.Header().Set("Retry-After", "0.05")
			w.WriteHeader(http.StatusOK)
		},
	})

	inv := retryx.NewInvoker(nil, fastPolicy(5))
	start := time.Now()
	resp, err := inv.Do(context.Background(), "threads", getReq(srv.URL))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestInvokerCancellationInterruptsBackoff(t *testing.T) {
	srv, _ := scriptedServer(t, []func(http.ResponseWriter){
		func(w http.ResponseWriter) {
			w.Header().Set("Retry-After", "30")
			w.WriteHeader(http.StatusTooManyRequests)
		},
	})

	inv := retryx.NewInvoker(nil, fastPolicy(5))
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := inv.Do(ctx, "offers", getReq(srv.URL))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestInvokerFreshBodyPerAttempt(t *testing.T) {
	var bodies atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 16)
		n, _ := r.Body.Read(buf)
		if n > 0 {
			bodies.Add(1)
		}
		if bodies.Load() < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	inv := retryx.NewInvoker(nil, fastPolicy(5))
	resp, err := inv.Do(context.Background(), "send_thread_message", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, srv.URL, strings.NewReader("payload"))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	// Every attempt carried a readable body.
	require.EqualValues(t, 3, bodies.Load())
}
