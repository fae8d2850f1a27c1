package overpass

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mapahead-service/internal/config"
	"github.com/mapahead-service/internal/domain"
	"github.com/mapahead-service/internal/domain/repository"
	"go.uber.org/zap"
)

const (
	userAgent = "mapahead-service/1.0"
	// defaultMaxResponseBytes caps the body read of one Overpass reply.
	defaultMaxResponseBytes = 64 << 20
)

type client struct {
	httpClient        *http.Client
	urls              []string
	maxRetries        int
	baseTimeout       time.Duration
	timeoutStep       time.Duration
	backoffBase       time.Duration
	rateLimitCooldown time.Duration
	maxResponseBytes  int64
	logger            *zap.Logger
}

// NewClient returns an Overpass client that tries cfg.URLs in order and retries
// each endpoint up to cfg.MaxRetries times.
func NewClient(cfg *config.OverpassConfig, logger *zap.Logger) repository.OverpassRepository {
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &client{
		// per-attempt deadlines come from the request context
		httpClient:        &http.Client{},
		urls:              append([]string(nil), cfg.URLs...),
		maxRetries:        maxRetries,
		baseTimeout:       cfg.BaseTimeout,
		timeoutStep:       cfg.TimeoutStep,
		backoffBase:       cfg.BackoffBase,
		rateLimitCooldown: cfg.RateLimitCooldown,
		maxResponseBytes:  defaultMaxResponseBytes,
		logger:            logger,
	}
}

// Query POSTs query to each endpoint until one answers with a parsable body.
// When every endpoint is exhausted the last classified error is returned.
func (c *client) Query(ctx context.Context, query string) (*domain.OverpassResponse, error) {
	if len(c.urls) == 0 {
		return nil, ErrNoEndpoints
	}

	var lastErr error
	for _, endpoint := range c.urls {
		for attempt := 0; attempt < c.maxRetries; attempt++ {
			timeout := c.attemptTimeout(attempt)

			resp, err := c.do(ctx, endpoint, query, timeout)
			if err == nil {
				c.logger.Debug("Overpass query succeeded",
					zap.String("endpoint", endpoint),
					zap.Int("attempt", attempt+1),
					zap.Int("elements", len(resp.Elements)))
				return resp, nil
			}
			lastErr = err

			if ctx.Err() != nil {
				return nil, fmt.Errorf("overpass query cancelled: %w", ctx.Err())
			}

			wait, retry := c.nextAttempt(err, attempt)
			c.logger.Warn("Overpass request failed",
				zap.String("endpoint", endpoint),
				zap.Int("attempt", attempt+1),
				zap.Int("max_retries", c.maxRetries),
				zap.Duration("timeout", timeout),
				zap.Bool("retry", retry),
				zap.Duration("wait", wait),
				zap.Error(err))
			if !retry {
				break
			}
			if err := sleep(ctx, wait); err != nil {
				return nil, fmt.Errorf("overpass query cancelled: %w", err)
			}
		}
	}

	return nil, lastErr
}

// attemptTimeout grows linearly: base, base+step, base+2*step...
func (c *client) attemptTimeout(attempt int) time.Duration {
	return c.baseTimeout + time.Duration(attempt)*c.timeoutStep
}

// nextAttempt decides whether to retry the same endpoint and how long to wait.
func (c *client) nextAttempt(err error, attempt int) (time.Duration, bool) {
	if attempt >= c.maxRetries-1 {
		return 0, false
	}
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidResponse), errors.Is(err, ErrUnexpectedReply):
		return 0, false
	case errors.Is(err, ErrRateLimited):
		return c.rateLimitCooldown, true
	default:
		// timeouts, server errors and transport failures
		return c.backoffBase * time.Duration(1<<attempt), true
	}
}

func (c *client) do(ctx context.Context, endpoint, query string, timeout time.Duration) (*domain.OverpassResponse, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrBadRequest, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(attemptCtx, timeout, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponseBytes+1))
	if err != nil {
		return nil, classifyTransportError(attemptCtx, timeout, err)
	}
	if int64(len(body)) > c.maxResponseBytes {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrInvalidResponse, c.maxResponseBytes)
	}

	if err := classifyStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	var result domain.OverpassResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	return &result, nil
}

func classifyStatus(status int, body []byte) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500 && status < 600:
		return fmt.Errorf("%w: status %d", ErrServer, status)
	case status >= 400 && status < 500:
		return fmt.Errorf("%w: status %d: %s", ErrBadRequest, status, truncate(string(body), 200))
	default:
		return fmt.Errorf("%w %d", ErrUnexpectedReply, status)
	}
}

func classifyTransportError(attemptCtx context.Context, timeout time.Duration, err error) error {
	if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w after %s", ErrTimeout, timeout)
	}
	return fmt.Errorf("%w: %v", ErrConnection, err)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
