// Package store talks to the remote key-value store that holds saved
// words, stats and mined sentence candidates.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a thin REST client over the remote store. Writes are full
// replacements (PUT) and patches are merges (PATCH), keyed by path. There
// is no optimistic concurrency: concurrent writers for the same path do
// last-write-wins, and a word upsert rewrites the whole record. Accepted
// tradeoff, not a bug.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a Client for the store rooted at baseURL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Read fetches the value at path, returning nil for an absent value.
func (c *Client) Read(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("store read %s: status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if string(bytes.TrimSpace(body)) == "null" {
		return nil, nil
	}
	return json.RawMessage(body), nil
}

// Write replaces the value at path.
func (c *Client) Write(ctx context.Context, path string, value any) error {
	return c.send(ctx, http.MethodPut, path, value)
}

// Patch merges partial into the value at path.
func (c *Client) Patch(ctx context.Context, path string, partial any) error {
	return c.send(ctx, http.MethodPatch, path, partial)
}

func (c *Client) send(ctx context.Context, method, path string, value any) error {
	body, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s body: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("store %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(text)))
	}
	return nil
}

func (c *Client) url(path string) string {
	return c.baseURL + "/" + strings.Trim(path, "/") + ".json"
}
