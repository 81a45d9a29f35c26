// Package api talks to the drill backend: record create/update/fetch and
// polling of the server-side animation transcode.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ivlev/drillanim/internal/persist"
)

var ErrNotFound = errors.New("drill not found")

// StatusError is a non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s returned status %d", e.Method, e.Path, e.Code)
	}
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Client handles communication with the drill backend.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	attempts   int
	delay      time.Duration
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithRetry sets attempts and initial backoff for idempotent requests.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) { c.attempts, c.delay = attempts, delay }
}

func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		attempts:   3,
		delay:      time.Second,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func drillPath(id int64) string { return fmt.Sprintf("/api/drills/%d/", id) }

// CreateDrill posts a new record. It is not retried since a lost response
// could otherwise create duplicates.
func (c *Client) CreateDrill(ctx context.Context, rec persist.DrillRecord) (persist.DrillView, error) {
	var view persist.DrillView
	err := c.do(ctx, http.MethodPost, "/api/drills/", rec, &view)
	return view, err
}

func (c *Client) UpdateDrill(ctx context.Context, id int64, rec persist.DrillRecord) (persist.DrillView, error) {
	var view persist.DrillView
	err := Retry(ctx, c.attempts, c.delay, func() error {
		return c.do(ctx, http.MethodPut, drillPath(id), rec, &view)
	})
	return view, err
}

func (c *Client) FetchDrill(ctx context.Context, id int64) (persist.DrillView, error) {
	var view persist.DrillView
	err := Retry(ctx, c.attempts, c.delay, func() error {
		return c.do(ctx, http.MethodGet, drillPath(id), nil, &view)
	})
	return view, err
}

// TranscodeStatus asks once for the state of the server-side video conversion.
func (c *Client) TranscodeStatus(ctx context.Context, id int64) (persist.StatusView, error) {
	var st persist.StatusView
	err := c.do(ctx, http.MethodGet, drillPath(id)+"animation-status/", nil, &st)
	return st, err
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &RetryableError{Err: fmt.Errorf("%s %s failed: %w", method, path, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode >= 500, resp.StatusCode == http.StatusTooManyRequests:
		return &RetryableError{Err: statusError(method, path, resp), After: retryAfter(resp.Header, time.Now())}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return statusError(method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func statusError(method, path string, resp *http.Response) *StatusError {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
}
