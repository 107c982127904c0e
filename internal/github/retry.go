package github

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/go-github/v62/github"
)

// stepBackOff waits whatever the last failed attempt asked for.
// Transient errors and rate limits need different delays, so the operation
// sets next before returning its error.
type stepBackOff struct {
	next time.Duration
}

func (b *stepBackOff) NextBackOff() time.Duration { return b.next }

func (b *stepBackOff) Reset() { b.next = 0 }

func withRetry[T any](ctx context.Context, c *Client, op string, fn func(context.Context) (T, error)) (T, error) {
	v, _, err := withRetryResp(ctx, c, op, func(ctx context.Context) (T, *github.Response, error) {
		v, err := fn(ctx)
		return v, nil, err
	})
	return v, err
}

// withRetryResp runs fn at most c.maxRetries times. Each attempt first waits
// for the request limiter. Non-retryable errors are returned immediately.
func withRetryResp[T any](ctx context.Context, c *Client, op string, fn func(context.Context) (T, *github.Response, error)) (T, *github.Response, error) {
	var (
		result  T
		resp    *github.Response
		attempt int
	)
	step := &stepBackOff{}
	policy := backoff.WithContext(backoff.WithMaxRetries(step, uint64(c.maxRetries-1)), ctx)

	operation := func() error {
		attempt++
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}
		v, r, err := fn(ctx)
		if err == nil {
			result, resp = v, r
			return nil
		}
		if ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		delay, retryable := c.backoffFor(err)
		if !retryable {
			return backoff.Permanent(err)
		}
		step.next = delay
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.logger.Warn("GitHub request failed, retrying",
			"operation", op,
			"attempt", attempt,
			"max_attempts", c.maxRetries,
			"delay", wait.String(),
			"error", err,
		)
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		var zero T
		return zero, nil, err
	}
	return result, resp, nil
}

// backoffFor classifies err and returns how long to wait before the next attempt.
// No wait exceeds rateLimitDelay: a limit that resets later than that fails the
// request, since go-github refuses every call until the reset anyway.
func (c *Client) backoffFor(err error) (time.Duration, bool) {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		wait := max(time.Until(rateErr.Rate.Reset.Time), c.retryDelay)
		if wait > c.rateLimitDelay {
			return 0, false
		}
		return wait, true
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		if abuseErr.RetryAfter != nil && *abuseErr.RetryAfter > c.rateLimitDelay {
			return 0, false
		}
		return c.rateLimitDelay, true
	}

	var ghErr *github.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		switch code := ghErr.Response.StatusCode; {
		case code == http.StatusTooManyRequests:
			return c.rateLimitDelay, true
		case code >= http.StatusInternalServerError:
			return c.retryDelay, true
		default:
			return 0, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.retryDelay, true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return c.retryDelay, true
	}
	return 0, false
}
