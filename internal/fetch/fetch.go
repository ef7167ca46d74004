// Package fetch is the outbound HTTP layer shared by all lookup clients.
// Every request carries the tool's User-Agent and a timeout; transient
// failures (429/500/502/503/504 and transport errors) are retried with
// exponential backoff and jitter, honoring a server Retry-After hint.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"coverfetch/internal/shared"
)

const (
	defaultTimeout      = 12 * time.Second
	defaultMaxAttempts  = 3
	defaultInitialDelay = 500 * time.Millisecond
	defaultMaxDelay     = 5 * time.Second
)

// Config holds configuration for a fetch client.
type Config struct {
	UserAgent    string
	Timeout      time.Duration
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	RateLimit    time.Duration // min interval between requests, 0 disables limiting
	BurstLimit   int
	Debug        bool
}

// DefaultConfig returns sensible defaults for a fetch client.
func DefaultConfig() Config {
	return Config{
		UserAgent:    shared.UserAgent,
		Timeout:      defaultTimeout,
		MaxAttempts:  defaultMaxAttempts,
		InitialDelay: defaultInitialDelay,
		MaxDelay:     defaultMaxDelay,
	}
}

// Client performs outbound GET requests for the lookup clients.
type Client struct {
	httpClient  *http.Client
	config      Config
	rateLimiter *rate.Limiter
}

// NewClient creates a fetch client with the given configuration.
func NewClient(config Config) *Client {
	if config.UserAgent == "" {
		config.UserAgent = shared.UserAgent
	}
	if config.Timeout == 0 {
		config.Timeout = defaultTimeout
	}
	if config.MaxAttempts == 0 {
		config.MaxAttempts = defaultMaxAttempts
	}
	if config.InitialDelay == 0 {
		config.InitialDelay = defaultInitialDelay
	}
	if config.MaxDelay == 0 {
		config.MaxDelay = defaultMaxDelay
	}

	c := &Client{
		httpClient: &http.Client{Timeout: config.Timeout},
		config:     config,
	}
	if config.RateLimit > 0 {
		burst := config.BurstLimit
		if burst < 1 {
			burst = 1
		}
		c.rateLimiter = rate.NewLimiter(rate.Every(config.RateLimit), burst)
	}
	return c
}

// Config returns the client configuration.
func (c *Client) Config() Config {
	return c.config
}

// get performs a single GET request and classifies failures.
func (c *Client) get(ctx context.Context, url, accept string) ([]byte, string, error) {
	if c.rateLimiter != nil {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, "", fmt.Errorf("rate limiter error: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Transport-level failures (connection, DNS, timeout) are transient.
		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, "", &shared.HTTPError{
				StatusCode: http.StatusGatewayTimeout,
				Status:     "Gateway Timeout",
				Message:    err.Error(),
			}
		}
		return nil, "", &shared.HTTPError{
			StatusCode: http.StatusServiceUnavailable,
			Status:     "Service Unavailable",
			Message:    err.Error(),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		message := shared.TruncateString(string(body), 200)
		return nil, "", &shared.HTTPError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Message:    message,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	return body, contentType, nil
}

// Get performs a GET request with retry and returns body and content type.
func (c *Client) Get(ctx context.Context, url, accept string) ([]byte, string, error) {
	var body []byte
	var contentType string

	retryErr := shared.RetryWithBackoffForHTTPWithDebug(
		c.config.MaxAttempts,
		c.config.InitialDelay,
		c.config.MaxDelay,
		func() error {
			var err error
			body, contentType, err = c.get(ctx, url, accept)
			return err
		},
		c.config.Debug,
	)
	if retryErr != nil {
		return nil, "", retryErr
	}
	return body, contentType, nil
}

// GetJSON performs a GET request with retry and unmarshals the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v interface{}) error {
	body, _, err := c.Get(ctx, url, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to unmarshal response from %s: %w", url, err)
	}
	return nil
}

// parseRetryAfter parses a Retry-After header value given in seconds.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs * float64(time.Second))
}
