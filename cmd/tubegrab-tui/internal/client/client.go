// Package client is a small HTTP client for the tubegrab API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iconidentify/tubegrab/internal/api/handler"
	"github.com/iconidentify/tubegrab/internal/domain"
)

// ErrNotFound is returned when the server reports an unknown download id.
var ErrNotFound = errors.New("download not found")

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tubegrab api (%d): %s", e.StatusCode, e.Message)
}

// Client wraps tubegrab API access.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the server the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Ready returns the server readiness report including job counts.
func (c *Client) Ready(ctx context.Context) (*handler.HealthResponse, error) {
	var out handler.HealthResponse
	if err := c.getJSON(ctx, "/ready", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Stats returns process and disk statistics.
func (c *Client) Stats(ctx context.Context) (*handler.SystemStats, error) {
	var out handler.SystemStats
	if err := c.getJSON(ctx, "/stats", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListDownloads returns a page of jobs, newest first. An empty state lists all jobs.
func (c *Client) ListDownloads(ctx context.Context, state string, limit, offset int) (*handler.ListResponse, error) {
	q := url.Values{}
	if state != "" {
		q.Set("status", state)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}

	var out handler.ListResponse
	if err := c.getJSON(ctx, "/downloads", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Status returns one job's status.
func (c *Client) Status(ctx context.Context, id string) (*handler.StatusResponse, error) {
	var out handler.StatusResponse
	if err := c.getJSON(ctx, "/download-status/"+url.PathEscape(id), nil, &out); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return &out, nil
}

// VideoInfo fetches metadata and download options for a video URL.
func (c *Client) VideoInfo(ctx context.Context, videoURL string) (*domain.VideoInfo, error) {
	var out domain.VideoInfo
	if err := c.getJSON(ctx, "/video-info", url.Values{"url": {videoURL}}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Submit starts a download and returns the accepted job.
func (c *Client) Submit(ctx context.Context, videoURL, formatID string) (*handler.DownloadResponse, error) {
	raw, err := c.doRequest(ctx, http.MethodPost, c.baseURL+"/download", handler.DownloadRequest{
		URL:      videoURL,
		FormatID: formatID,
	})
	if err != nil {
		return nil, err
	}

	var out handler.DownloadResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("parse download response: %w", err)
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	raw, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(payload); err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		body = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "tubegrab-tui")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: errorMessage(raw)}
	}
	return raw, nil
}

// errorMessage extracts the "error" field of a JSON error body.
func errorMessage(raw []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(raw))
}
