// ABOUTME: Shared HTTP client with retry logic and SSE streaming support
// ABOUTME: Exponential backoff on 429/5xx; a separate untimed client keeps push streams alive

package httputil

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/easelhq/easel/pkg/easel/internal/sse"
)

const (
	maxRetries    = 3
	baseBackoffMs = 500
	maxBackoffMs  = 10000
)

// HTTPError carries a non-2xx side-channel response: status code plus the
// body text the backend returned.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, body)
}

// ErrorFromResponse drains up to 8KB of resp.Body into an *HTTPError and
// closes the body. Call only on non-2xx responses.
func ErrorFromResponse(resp *http.Response) *HTTPError {
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8*1024))
	return &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
}

// Client wraps http.Clients with retry logic and default headers.
// Side-channel calls go through a request-timeout client; SSE subscriptions
// use a second client without an overall timeout, since a healthy push
// stream stays open indefinitely.
type Client struct {
	httpClient   *http.Client
	streamClient *http.Client
	baseURL      string
	headers      map[string]string
}

// NewClient creates a new HTTP client with the given base URL and default
// headers. Proxy support comes from the environment (HTTP_PROXY, HTTPS_PROXY).
func NewClient(baseURL string, headers map[string]string) *Client {
	if headers == nil {
		headers = make(map[string]string)
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:     &tls.Config{MinVersion: tls.VersionTLS12},
		TLSHandshakeTimeout: 10 * time.Second,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   60 * time.Second,
			Transport: transport,
		},
		// No Timeout: stream lifetime is governed by the request context.
		streamClient: &http.Client{
			Transport: transport,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		headers: headers,
	}
}

// BaseURL returns the base URL configured on this client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do sends an HTTP request with retry on 429 and 5xx status codes.
// It returns the response from the last attempt, even if retries were
// exhausted. If body implements io.Seeker, it is rewound before each retry.
func (c *Client) Do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	seeker, _ := body.(io.Seeker)
	var lastResp *http.Response

	for attempt := range maxRetries {
		if err := rewindBody(seeker, attempt); err != nil {
			return nil, fmt.Errorf("failed to rewind request body: %w", err)
		}

		req, err := c.buildRequest(ctx, method, path, body)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http request failed: %w", err)
		}

		if !isRetryable(resp.StatusCode) {
			return resp, nil
		}

		// Close the body of the retryable response before retrying.
		resp.Body.Close()
		lastResp = resp

		if attempt < maxRetries-1 {
			if err := SleepWithContext(ctx, Backoff(attempt)); err != nil {
				return nil, fmt.Errorf("context cancelled during retry backoff: %w", err)
			}
		}
	}

	// Retries exhausted: make one final request to return a readable response.
	if err := rewindBody(seeker, maxRetries); err != nil {
		return lastResp, fmt.Errorf("failed to rewind request body: %w", err)
	}

	req, err := c.buildRequest(ctx, method, path, body)
	if err != nil {
		return lastResp, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed after retries: %w", err)
	}

	return resp, nil
}

// StreamSSE subscribes to an SSE endpoint and returns a reader over the
// response body. No retry is applied here; the subscriber owns reconnect
// policy. The caller must close the returned *http.Response when done.
// lastEventID, when non-empty, is sent as Last-Event-ID so the backend can
// resume a dropped stream.
func (c *Client) StreamSSE(ctx context.Context, path, lastEventID string) (*sse.Reader, *http.Response, error) {
	req, err := c.buildRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if lastEventID != "" {
		req.Header.Set("Last-Event-ID", lastEventID)
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("SSE subscribe failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, ErrorFromResponse(resp)
	}

	return sse.NewReader(resp.Body), resp, nil
}

// buildRequest creates an http.Request with default headers applied.
func (c *Client) buildRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s %s: %w", method, path, err)
	}

	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// rewindBody resets a seekable body to the beginning for retry attempts.
// It is a no-op on the first attempt (attempt == 0) or if seeker is nil.
func rewindBody(seeker io.Seeker, attempt int) error {
	if seeker == nil || attempt == 0 {
		return nil
	}
	_, err := seeker.Seek(0, io.SeekStart)
	return err
}

// isRetryable returns true for status codes that warrant a retry.
func isRetryable(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || statusCode >= 500
}

// Backoff returns the exponential backoff duration for the given attempt:
// 500ms base, doubling, capped at 10s. The stream reconnect loop shares
// this policy.
func Backoff(attempt int) time.Duration {
	ms := float64(baseBackoffMs) * math.Pow(2, float64(attempt))
	if ms > maxBackoffMs {
		ms = maxBackoffMs
	}
	return time.Duration(ms) * time.Millisecond
}

// SleepWithContext waits for the given duration or until the context is
// cancelled.
func SleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
