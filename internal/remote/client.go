// Package remote is the HTTP client for the remote property service, the
// REST backend that owns all property, user and review data. Every call
// goes through one retrying, rate-limited, circuit-protected request path.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"estatehub-portal/internal/ratelimit"
)

// ClientConfig holds the knobs for the upstream client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
	Limiter    *ratelimit.Limiter
}

// DefaultClientConfig returns sane production defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:    baseURL,
		Timeout:    12 * time.Second,
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
	}
}

// Client talks to the remote property service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
	limiter    *ratelimit.Limiter
	breaker    *CircuitBreaker
}

// NewClient creates a client for the given upstream.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 12 * time.Second
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 500 * time.Millisecond
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		limiter:    cfg.Limiter,
		breaker:    NewCircuitBreaker(5, 30*time.Second),
	}
}

// LimiterStats exposes the outbound budget usage for the health endpoint.
func (c *Client) LimiterStats() ratelimit.Stats {
	if c.limiter == nil {
		return ratelimit.Stats{Enabled: false}
	}
	return c.limiter.GetStats()
}

// BreakerOpen reports whether the upstream circuit is currently open.
func (c *Client) BreakerOpen() bool {
	open, _ := c.breaker.Status()
	return open
}

// doJSON sends a request with an optional JSON body and decodes the JSON
// response into out (which may be nil).
func (c *Client) doJSON(ctx context.Context, method, path, token string, body, out interface{}) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, token, body != nil, out)
}

// send attaches auth, applies the budget and breaker, and runs the request
// with exponential backoff. Requests with a body are not replayed after a
// partial send unless the body reader can be rebuilt, which is why callers
// pass rebuildable byte readers.
func (c *Client) send(req *http.Request, token string, hasBody bool, out interface{}) error {
	if !c.breaker.CanProceed() {
		return ErrCircuitOpen
	}
	if c.limiter != nil && !c.limiter.Allow() {
		return ErrRateLimited
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Accept", "application/json")

	var bodyBytes []byte
	if hasBody && req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return fmt.Errorf("failed to read request body: %w", err)
		}
		req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * c.retryDelay
			log.Printf("remote: retry %d/%d for %s %s after %v", attempt, c.maxRetries, req.Method, req.URL.Path, backoff)
			select {
			case <-req.Context().Done():
				return req.Context().Err()
			case <-time.After(backoff):
			}
			if hasBody {
				req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			}
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			// Network error: retryable unless the context is done.
			lastErr = fmt.Errorf("upstream request failed: %w", err)
			c.breaker.RecordFailure()
			if req.Context().Err() != nil {
				return req.Context().Err()
			}
			continue
		}

		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		resp.Body.Close()
		if readErr != nil {
			lastErr = fmt.Errorf("failed to read upstream response: %w", readErr)
			c.breaker.RecordFailure()
			continue
		}

		if resp.StatusCode >= 500 {
			c.breaker.RecordFailure()
			lastErr = &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
			continue
		}

		c.breaker.RecordSuccess()

		if resp.StatusCode >= 400 {
			// Client errors are final, no retry.
			if resp.StatusCode == http.StatusUnauthorized {
				return fmt.Errorf("%w: %s", ErrUnauthorized, errorMessage(respBody))
			}
			return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
		}

		if out != nil && len(respBody) > 0 {
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("failed to decode upstream response: %w", err)
			}
		}
		return nil
	}

	return lastErr
}

// errorMessage pulls the {"message": ...} field out of an upstream error
// body, tolerating non-JSON responses.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
