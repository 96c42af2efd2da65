// Package restapi implements the ledger source backed by a tally daemon
// over its JSON REST API. Every response arrives in a {"result","message"}
// envelope; a non-empty message carries the error text.
package restapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/time/rate"
)

const (
	apiPrefix        = "/api/1"
	maxResponseBytes = 32 << 20
)

// Client talks to a tally daemon. It implements ledger.Source.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
}

// New creates a client for the daemon at baseURL. Pass an empty key to
// skip authorization headers.
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(10), 20), // keep burst traffic off the daemon
	}
}

type envelope struct {
	Result  json.RawMessage `json:"result"`
	Message string          `json:"message"`
}

// do sends one request and decodes the envelope's result into out. The
// daemon reports failures through the envelope message, with the HTTP
// status as the fallback.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("daemon returned status %d", resp.StatusCode)
		}
		return fmt.Errorf("decode envelope: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if env.Message != "" {
			return fmt.Errorf("daemon: %s", env.Message)
		}
		return fmt.Errorf("daemon returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("decode result: %w", err)
	}
	return nil
}

// Ping verifies the daemon answers.
func (c *Client) Ping(ctx context.Context) error {
	var ok bool
	if err := c.do(ctx, http.MethodGet, "/ping", nil, &ok); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("daemon ping returned false")
	}
	return nil
}

// Close is a no-op; the client holds no connections of its own.
func (c *Client) Close() error { return nil }
