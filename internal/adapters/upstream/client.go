// Package upstream is the shared HTTP plumbing of the collaborator adapters:
// request pacing, retries on throttling, a circuit breaker and metrics.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/okian/soltify/internal/domain/model"
	"github.com/okian/soltify/pkg/logger"
	"github.com/okian/soltify/pkg/metrics"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultRetries   = 2
	defaultBackoff   = time.Second
	defaultTripAfter = 5
	maxRetryAfter    = 30 * time.Second
	maxBodyBytes     = 16 << 20
)

// Client performs paced, breaker-guarded HTTP requests against one upstream.
type Client struct {
	name      string
	http      *http.Client
	rps       float64
	retries   int
	backoff   time.Duration
	tripAfter uint32
	limiter   *rate.Limiter
	cb        *gobreaker.CircuitBreaker[[]byte]
	log       logger.Logger
}

// New creates a Client named after the upstream it talks to.
func New(name string, opts ...Option) *Client {
	c := &Client{
		name:      name,
		http:      &http.Client{Timeout: defaultTimeout},
		retries:   defaultRetries,
		backoff:   defaultBackoff,
		tripAfter: defaultTripAfter,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.limiter = rate.NewLimiter(rate.Inf, 1)
	if c.rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(c.rps), 1)
	}

	metrics.UpdateCircuitBreakerState(name, stateToFloat(gobreaker.StateClosed))
	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= c.tripAfter
		},
		// a missing resource is an answer, not an outage
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, model.ErrNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.log.Warn(context.Background(), "circuit breaker state change",
				logger.String("upstream", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
			metrics.UpdateCircuitBreakerState(name, stateToFloat(to))
		},
	})
	return c
}

// Name returns the upstream name.
func (c *Client) Name() string { return c.name }

// Do sends the request built by build and returns the response body.
// build is called once per attempt so bodies can be replayed.
// A 404 yields an error wrapping model.ErrNotFound; every other failure wraps
// model.ErrUpstreamUnavailable.
func (c *Client) Do(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, retryDelay(lastErr, c.backoff, attempt)); err != nil {
				return nil, fmt.Errorf("%w: %s: %w", model.ErrUpstreamUnavailable, c.name, err)
			}
		}

		body, err := c.attempt(ctx, build)
		if err == nil {
			return body, nil
		}
		if errors.Is(err, model.ErrNotFound) {
			return nil, err
		}
		lastErr = err
		if !retryable(err) {
			break
		}
		c.log.Debug(ctx, "retrying upstream request",
			logger.String("upstream", c.name),
			logger.Int("attempt", attempt+1),
			logger.Error(err),
		)
	}
	return nil, fmt.Errorf("%w: %s: %w", model.ErrUpstreamUnavailable, c.name, lastErr)
}

func (c *Client) attempt(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	body, err := c.cb.Execute(func() ([]byte, error) {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return data, nil
		case resp.StatusCode == http.StatusNotFound:
			return nil, fmt.Errorf("%w: %s %s", model.ErrNotFound, req.Method, req.URL.Path)
		default:
			return nil, &StatusError{Code: resp.StatusCode, RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
		}
	})

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, model.ErrNotFound):
		outcome = "not_found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		outcome = "rejected"
		err = fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	default:
		outcome = "error"
	}
	metrics.RecordUpstreamRequest(c.name, outcome, time.Since(start))
	return body, err
}

// StatusError is a non-2xx answer other than 404.
type StatusError struct {
	Code       int
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %d", ErrStatus, e.Code)
}

func (e *StatusError) Unwrap() error { return ErrStatus }

func retryable(err error) bool {
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return true
}

func retryDelay(err error, backoff time.Duration, attempt int) time.Duration {
	var se *StatusError
	if errors.As(err, &se) && se.RetryAfter > 0 {
		return se.RetryAfter
	}
	return backoff * time.Duration(attempt)
}

func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return min(time.Duration(secs)*time.Second, maxRetryAfter)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
