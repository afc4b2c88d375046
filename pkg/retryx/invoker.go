// Package retryx implements the reliability layer wrapped around every
// outbound marketplace API call: bounded retries with exponential backoff,
// rate-limit header compliance, and per-endpoint failure metrics.
package retryx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Invoker executes one logical HTTP request with retry, backoff and
// rate-limit handling. It is safe for concurrent use; all per-call state
// lives on the stack of Do.
type Invoker struct {
	// Client issues the requests. NewInvoker guarantees a timeout is set.
	Client *http.Client

	// Policy controls classification, backoff and the attempt ceiling.
	Policy Policy

	// Limiter, when set, throttles attempts client-side before the provider
	// has to. Shared across all endpoints of one API.
	Limiter *rate.Limiter

	// Metrics receives per-endpoint counters. Nil disables recording.
	Metrics *Metrics
}

// NewInvoker returns an Invoker with the policy normalized and a default
// request timeout applied when the client does not carry one. A nil client
// gets a fresh http.Client.
func NewInvoker(client *http.Client, policy Policy) *Invoker {
	policy = policy.normalized()
	if client == nil {
		client = &http.Client{}
	}
	if client.Timeout == 0 {
		client.Timeout = policy.Timeout
	}
	return &Invoker{Client: client, Policy: policy}
}

// Do performs the request produced by newReq, retrying per the policy.
// newReq is called once per attempt so request bodies are fresh each time.
//
// Network-level errors and retryable statuses (429, 5xx) are re-attempted up
// to Policy.MaxAttempts, sleeping either the provider-advertised delay or
// the exponential backoff, whichever the provider's headers dictate. Final
// failures are never swallowed: the caller receives the transport error or a
// *StatusError for the last response. On success the response is returned
// with its body unread, after one defensive rate-limit wait so the next call
// does not trip the limit the provider just advertised.
func (inv *Invoker) Do(
	ctx context.Context,
	endpoint string,
	newReq func(ctx context.Context) (*http.Request, error),
) (*http.Response, error) {
	policy := inv.Policy.normalized()

	attempt := 0
	backoff := policy.InitialBackoff
	for {
		attempt++

		if inv.Limiter != nil {
			if err := inv.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		req, err := newReq(ctx)
		if err != nil {
			return nil, fmt.Errorf("retryx: build %s request: %w", endpoint, err)
		}

		resp, err := inv.Client.Do(req)
		if err != nil {
			inv.Metrics.recordError(ctx, endpoint, "exception")
			if attempt >= policy.MaxAttempts {
				return nil, fmt.Errorf(
					"retryx: %s failed after %d attempts: %w",
					endpoint, attempt, err,
				)
			}
			inv.Metrics.recordRetry(ctx, endpoint)
			if err := inv.sleep(ctx, endpoint, min(backoff, policy.MaxBackoff)); err != nil {
				return nil, err
			}
			backoff = min(backoff*2, policy.MaxBackoff)
			continue
		}

		if ShouldRetry(resp.StatusCode) && attempt < policy.MaxAttempts {
			inv.Metrics.recordError(ctx, endpoint, strconv.Itoa(resp.StatusCode))
			inv.Metrics.recordRetry(ctx, endpoint)

			delay := RetryAfter(resp.Header, time.Now())
			if delay <= 0 {
				delay = min(backoff, policy.MaxBackoff)
			}
			drain(resp)
			if err := inv.sleep(ctx, endpoint, delay); err != nil {
				return nil, err
			}
			backoff = min(backoff*2, policy.MaxBackoff)
			continue
		}

		if resp.StatusCode >= 400 {
			inv.Metrics.recordError(ctx, endpoint, strconv.Itoa(resp.StatusCode))
			return nil, newStatusError(endpoint, resp)
		}

		// Honour any limit advertised on the success response before
		// handing it back, so the follow-up call does not start with a 429.
		if delay := RetryAfter(resp.Header, time.Now()); delay > 0 {
			if err := inv.sleep(ctx, endpoint, delay); err != nil {
				resp.Body.Close()
				return nil, err
			}
		}
		return resp, nil
	}
}

// sleep blocks for d, recording the wait and aborting early when ctx is
// cancelled.
func (inv *Invoker) sleep(ctx context.Context, endpoint string, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	inv.Metrics.recordSleep(ctx, endpoint, d.Seconds())

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
	resp.Body.Close()
}
