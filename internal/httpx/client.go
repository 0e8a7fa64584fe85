// Package httpx is the shared transport for every upstream the agent talks to.
package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"football-agent/internal/config"
	"football-agent/internal/metrics"
)

const defaultRetryDelay = 800 * time.Millisecond

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Upstream string
	Status   int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Upstream, e.Status, e.Body)
}

// Client wraps *http.Client with an optional retry policy, an optional
// circuit breaker and per-upstream metrics.
type Client struct {
	name       string
	http       *http.Client
	maxRetries uint64
	delay      time.Duration
	breaker    *Breaker
	logger     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithTimeout sets the client timeout; 0 leaves calls unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithRetry(maxRetries int, delay time.Duration) Option {
	return func(c *Client) {
		if maxRetries > 0 {
			c.maxRetries = uint64(maxRetries)
		}
		if delay > 0 {
			c.delay = delay
		}
	}
}

func WithBreaker(b *Breaker) Option {
	return func(c *Client) { c.breaker = b }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func New(name string, opts ...Option) *Client {
	c := &Client{
		name:   name,
		http:   &http.Client{},
		delay:  defaultRetryDelay,
		logger: zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.Named(name)
	return c
}

func (c *Client) Name() string { return c.name }

// Do sends req, retrying transport failures, 429 and 5xx while the policy allows.
// Non-2xx responses are returned as *StatusError with the body already closed.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	attempt := 0
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewConstant(c.delay))

	err := retry.Do(req.Context(), backoff, func(ctx context.Context) error {
		attempt++
		r, err := c.once(req, attempt)
		if err != nil {
			if !retryable(err) {
				return err
			}
			c.logger.Debug("attempt failed", zap.Int("attempt", attempt), zap.Error(err))
			return retry.RetryableError(err)
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// DoBytes sends req and returns the whole body.
func (c *Client) DoBytes(req *http.Request) ([]byte, error) {
	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s response: %w", c.name, err)
	}
	return body, nil
}

// DoJSON sends req and decodes the body into out.
func (c *Client) DoJSON(req *http.Request, out any) error {
	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.name, err)
	}
	return nil
}

func (c *Client) once(req *http.Request, attempt int) (*http.Response, error) {
	if err := c.breaker.Allow(); err != nil {
		metrics.ObserveUpstream(c.name, metrics.OutcomeRejected, 0)
		return nil, fmt.Errorf("%s: %w", c.name, err)
	}

	r := req
	if attempt > 1 && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			c.breaker.Release()
			return nil, fmt.Errorf("failed to rewind %s request body: %w", c.name, err)
		}
		r = req.Clone(req.Context())
		r.Body = body
	}

	start := time.Now()
	resp, err := c.http.Do(r)
	took := time.Since(start)
	if err != nil {
		metrics.ObserveUpstream(c.name, metrics.OutcomeTransportError, took)
		if req.Context().Err() == nil {
			c.breaker.Record(err)
		} else {
			c.breaker.Release()
		}
		return nil, fmt.Errorf("%s request failed: %w", c.name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		metrics.ObserveUpstream(c.name, metrics.OutcomeHTTPError, took)
		statusErr := &StatusError{Upstream: c.name, Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
		if statusErr.Status >= 500 {
			c.breaker.Record(statusErr)
		} else {
			c.breaker.Record(nil)
		}
		return nil, statusErr
	}

	metrics.ObserveUpstream(c.name, metrics.OutcomeOK, took)
	c.breaker.Record(nil)
	c.logger.Debug("request completed",
		zap.String("method", req.Method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", took))
	return resp, nil
}

func retryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) || errors.Is(err, ErrTooManyRequests) {
		return false
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status == http.StatusTooManyRequests || statusErr.Status >= 500
	}
	return true
}

// FromConfig builds a client for one upstream with the shared retry and
// breaker settings.
func FromConfig(name string, cfg *config.Config, timeout time.Duration, logger *zap.Logger) *Client {
	return New(name,
		WithTimeout(timeout),
		WithRetry(cfg.Retry.MaxRetries, cfg.Retry.Delay()),
		WithBreaker(NewBreaker(cfg.Breaker.FailureThreshold, cfg.Breaker.OpenFor(), logger)),
		WithLogger(logger),
	)
}
