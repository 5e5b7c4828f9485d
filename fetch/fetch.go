package fetch

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/tgakit/ratreview/config"
	"github.com/tgakit/ratreview/logger"
)

// jitterPercent is the jitter applied to retry delays (+/- 25%).
const jitterPercent = 0.25

// Client downloads review documents over HTTP. Transient failures are
// retried with exponential backoff and jitter, and requests to the source
// site are paced by a rate limiter.
type Client struct {
	config  config.FetchConfig
	client  *http.Client
	limiter *rate.Limiter
	log     logger.Logger
}

// New creates a client with the given fetch configuration.
func New(cfg config.FetchConfig) *Client {
	return &Client{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.GetTimeout(),
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.GetRequestsPerSecond()), 1),
		log:     logger.Noop(),
	}
}

// WithLogger sets the logger for the client.
func (c *Client) WithLogger(log logger.Logger) *Client {
	c.log = log
	return c
}

// Get downloads the content at url. HTTP 429 and 5xx responses are retried
// up to the configured retry count, honoring a Retry-After header given in
// seconds; other non-2xx responses fail immediately.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	maxRetries := c.config.GetMaxRetries()

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait failed: %w", err)
		}

		body, retryAfter, err := c.get(ctx, url)
		if err == nil {
			return body, nil
		}
		if !isRetryable(err) {
			return nil, err
		}
		lastErr = err

		if attempt < maxRetries {
			delay := c.backoff(attempt)
			if retryAfter > delay {
				delay = retryAfter
			}
			c.log.Debug("retrying download", "url", url, "attempt", attempt+1, "delay", delay.String())
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("failed after %d attempts: %w", maxRetries+1, lastErr)
}

// statusError is a non-2xx response. Retryable when the server signalled a
// transient condition.
type statusError struct {
	status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP %d", e.status)
}

func isRetryable(err error) bool {
	if se, ok := err.(*statusError); ok {
		return se.status == http.StatusTooManyRequests || se.status >= 500
	}
	// Network-level failures are worth retrying.
	return true
}

// get performs a single request. On a non-2xx response it also returns the
// Retry-After delay when the server provided one in seconds.
func (c *Client) get(ctx context.Context, url string) ([]byte, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.GetUserAgent())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var retryAfter time.Duration
		if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds > 0 {
			retryAfter = time.Duration(seconds) * time.Second
		}
		return nil, retryAfter, &statusError{status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, 0, nil
}

// backoff computes the exponential backoff delay for an attempt, capped at
// the configured maximum, with jitter applied.
func (c *Client) backoff(attempt int) time.Duration {
	delay := float64(c.config.GetInitialDelay()) * math.Pow(c.config.GetMultiplier(), float64(attempt))
	if limit := float64(c.config.GetMaxDelay()); delay > limit {
		delay = limit
	}
	return addJitter(time.Duration(delay))
}

// addJitter spreads a delay by +/- 25% to avoid synchronized retries.
func addJitter(duration time.Duration) time.Duration {
	if duration == 0 {
		return 0
	}
	jitter := (rand.Float64()*2.0 - 1.0) * float64(duration) * jitterPercent
	result := float64(duration) + jitter
	if result < 0 {
		return 0
	}
	return time.Duration(result)
}

// sleep waits for the duration or until the context is cancelled.
func sleep(ctx context.Context, duration time.Duration) error {
	select {
	case <-time.After(duration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
