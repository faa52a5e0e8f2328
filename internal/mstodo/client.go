package mstodo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/salaamdev/task-sync/internal/ratelimit"
)

const (
	// DefaultBaseURL is the Microsoft Graph v1.0 endpoint.
	DefaultBaseURL = "https://graph.microsoft.com/v1.0"

	// DefaultTimeout bounds a single Graph request.
	DefaultTimeout = 30 * time.Second

	// MaxRetries is how many times a throttled or failed request is retried.
	MaxRetries = 3

	// RetryDelay seeds the backoff when Graph sends no Retry-After header.
	RetryDelay = 1 * time.Second

	// MaxPageSize is the $top value used for collection requests.
	MaxPageSize = 100
)

// client is a minimal Microsoft Graph REST client: bearer auth from a
// token source, JSON bodies, a retry loop that honors Retry-After, and
// @odata.nextLink pagination left to the caller.
type client struct {
	BaseURL    string
	Tokens     oauth2.TokenSource
	HTTPClient *http.Client
	Limiter    *ratelimit.Registry
}

func newClient(tokens oauth2.TokenSource, limiter *ratelimit.Registry) *client {
	return &client{
		BaseURL: DefaultBaseURL,
		Tokens:  tokens,
		HTTPClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		Limiter: limiter,
	}
}

// request performs one Graph call. url may be a path relative to BaseURL
// or an absolute @odata.nextLink. A nil out discards the response body.
// Handles throttling (429/503) with Retry-After-aware backoff.
func (c *client) request(ctx context.Context, method, url string, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}
	if len(url) > 0 && url[0] == '/' {
		url = c.BaseURL + url
	}

	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if err := c.Limiter.Wait(ctx, ProviderName); err != nil {
			return err
		}

		tok, err := c.Tokens.Token()
		if err != nil {
			return fmt.Errorf("failed to obtain access token: %w", err)
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+tok.AccessToken)
		if payload != nil {
			httpReq.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.HTTPClient.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt+1, MaxRetries+1, err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		_ = resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("failed to read response (attempt %d/%d): %w", attempt+1, MaxRetries+1, err)
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
			delay := retryAfter(resp, attempt)
			lastErr = fmt.Errorf("throttled (attempt %d/%d), retrying after %v", attempt+1, MaxRetries+1, delay)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				continue
			}
		}

		if resp.StatusCode == http.StatusNotFound {
			return errNotFound
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("graph error: %s (status %d)", string(respBody), resp.StatusCode)
		}

		if out == nil || len(respBody) == 0 {
			return nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w (body: %s)", err, string(respBody))
		}
		return nil
	}

	return fmt.Errorf("max retries (%d) exceeded: %w", MaxRetries+1, lastErr)
}

// retryAfter picks the server's Retry-After over local exponential backoff.
func retryAfter(resp *http.Response, attempt int) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return RetryDelay * time.Duration(1<<attempt)
}
