// Package httpclient provides an HTTP client with retry, rate limiting, and
// timeout support shared by every component that talks to external providers.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"infrascope/internal/platform/errors"
	"infrascope/internal/platform/logx"
	"infrascope/internal/platform/ratelimit"
)

// Client wraps http.Client with retry logic and an optional shared rate limiter.
type Client struct {
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	logger     logx.Logger
	config     Config
}

// Config holds the configuration for the HTTP client.
type Config struct {
	// Timeout is the request timeout duration. Default: 30 seconds.
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts. Default: 3.
	MaxRetries int

	// RetryBackoff is the initial backoff duration; it grows exponentially.
	// Default: 1 second.
	RetryBackoff time.Duration

	// MaxRetryBackoff caps the backoff between retries. Default: 30 seconds.
	MaxRetryBackoff time.Duration

	// UserAgent is the User-Agent header value.
	UserAgent string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Timeout:         30 * time.Second,
		MaxRetries:      3,
		RetryBackoff:    1 * time.Second,
		MaxRetryBackoff: 30 * time.Second,
		UserAgent:       "infrascope/1.0",
	}
}

// New creates a new HTTP client. The limiter may be nil (no rate limiting);
// when set it is typically an instance shared with other clients hitting the
// same provider class.
func New(config Config, limiter *ratelimit.Limiter, logger logx.Logger) *Client {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RetryBackoff == 0 {
		config.RetryBackoff = 1 * time.Second
	}
	if config.MaxRetryBackoff == 0 {
		config.MaxRetryBackoff = 30 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "infrascope/1.0"
	}

	return &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    limiter,
		logger:     logger.With("component", "httpclient"),
		config:     config,
	}
}

// Get performs a GET request with retry logic and rate limiting.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Throttle(ctx); err != nil {
				return nil, errors.Wrap(err, "rate limit wait failed")
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create request for %s", url)
		}
		req.Header.Set("User-Agent", c.config.UserAgent)
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		duration := time.Since(start)

		if err != nil {
			c.logger.Warn("HTTP request failed",
				"url", url,
				"attempt", attempt+1,
				"error", err.Error(),
				"duration_ms", duration.Milliseconds(),
			)
			lastErr = err
			if attempt >= c.config.MaxRetries {
				break
			}
			if err := c.backoff(ctx, attempt); err != nil {
				return nil, errors.Wrap(err, "backoff interrupted")
			}
			continue
		}

		c.logger.Debug("HTTP response received",
			"url", url,
			"status", resp.StatusCode,
			"duration_ms", duration.Milliseconds(),
		)

		if !isRetryableStatus(resp.StatusCode) {
			return resp, nil
		}

		resp.Body.Close()
		lastErr = errors.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
		if attempt >= c.config.MaxRetries {
			break
		}
		c.logger.Warn("HTTP request returned retryable status",
			"url", url,
			"status", resp.StatusCode,
			"attempt", attempt+1,
		)
		if err := c.backoff(ctx, attempt); err != nil {
			return nil, errors.Wrap(err, "backoff interrupted")
		}
	}

	return nil, errors.Wrapf(lastErr, "request failed after %d attempts", c.config.MaxRetries+1)
}

// FetchJSON performs a GET request with a JSON Accept header and returns the
// body bytes after validating a 2xx status.
func (c *Client) FetchJSON(ctx context.Context, url string) ([]byte, error) {
	return c.fetch(ctx, url, map[string]string{"Accept": "application/json"})
}

// FetchDNSJSON performs a GET against a DNS-over-HTTPS endpoint. Providers
// require the application/dns-json accept header.
func (c *Client) FetchDNSJSON(ctx context.Context, url string) ([]byte, error) {
	return c.fetch(ctx, url, map[string]string{"Accept": "application/dns-json"})
}

// FetchText performs a GET request and returns the raw body (CSV providers).
func (c *Client) FetchText(ctx context.Context, url string) ([]byte, error) {
	return c.fetch(ctx, url, nil)
}

func (c *Client) fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error) {
	resp, err := c.Get(ctx, url, headers)
	if err != nil {
		return nil, err
	}
	if err := CheckStatus(resp); err != nil {
		resp.Body.Close()
		return nil, errors.Wrapf(err, "request to %s failed", url)
	}
	return ReadBody(resp)
}

// isRetryableStatus reports whether an HTTP status code should trigger a retry.
func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// backoff implements exponential backoff between retries.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	backoff := c.config.RetryBackoff * time.Duration(math.Pow(2, float64(attempt)))
	if backoff > c.config.MaxRetryBackoff {
		backoff = c.config.MaxRetryBackoff
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(backoff):
		return nil
	}
}

// ReadBody reads the response body and closes it.
func ReadBody(resp *http.Response) ([]byte, error) {
	if resp == nil {
		return nil, errors.New("response is nil")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}
	return body, nil
}

// CheckStatus validates the HTTP status code and returns an error if it's not successful.
func CheckStatus(resp *http.Response) error {
	if resp == nil {
		return errors.New("response is nil")
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return errors.ErrRateLimit
	case http.StatusNotFound:
		return errors.ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return errors.ErrUnauthorized
	case http.StatusServiceUnavailable, http.StatusGatewayTimeout, http.StatusBadGateway:
		return errors.ErrServiceUnavailable
	default:
		return errors.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}
}

// String returns a human-readable representation of the client configuration.
func (c *Client) String() string {
	return fmt.Sprintf("HTTPClient{timeout=%s, max_retries=%d}",
		c.config.Timeout, c.config.MaxRetries)
}
