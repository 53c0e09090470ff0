// Package adapters holds HTTP clients for the external services the pipeline
// drives: article extraction, script generation, clip search and voice
// synthesis. Every service answers with a {"success": bool, "error": string}
// envelope, on error responses too.
package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// ErrAdapter marks a failed call to an external service, either a transport
// error or a response with success=false.
var ErrAdapter = errors.New("external service failed")

// Endpoints are the URLs of the external services.
type Endpoints struct {
	Extract    string
	Script     string
	ClipSearch string
	Voice      string
}

// Client calls the external services.
type Client struct {
	endpoints Endpoints
	apiKey    string
	hc        *http.Client
	clipLimit *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithAPIKey sends key as a bearer token on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.apiKey = key }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithClipRate paces clip searches to perSecond requests. Zero disables pacing.
func WithClipRate(perSecond float64) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.clipLimit = nil
			return
		}
		c.clipLimit = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewClient creates a client. If timeout is zero, 60 seconds is used.
func NewClient(endpoints Endpoints, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	c := &Client{
		endpoints: endpoints,
		hc:        &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// post sends body as JSON to url and decodes the response into out, which
// must embed envelope.
func (c *Client) post(ctx context.Context, service, url string, body, out interface{}, env *envelope) error {
	if url == "" {
		return fmt.Errorf("%s: endpoint not configured: %w", service, ErrAdapter)
	}
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: marshal request: %w", service, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("%s: new request: %w", service, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		log.Printf("%s request failed after %s: %v", service, time.Since(start), err)
		return fmt.Errorf("%s: %v: %w", service, err, ErrAdapter)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %v: %w", service, err, ErrAdapter)
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("%s: status=%d body=%s: %w", service, resp.StatusCode, truncate(respBody, 200), ErrAdapter)
		}
		return fmt.Errorf("%s: decode response: %v: %w", service, err, ErrAdapter)
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = fmt.Sprintf("status=%d", resp.StatusCode)
		}
		return fmt.Errorf("%s: %s: %w", service, msg, ErrAdapter)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
