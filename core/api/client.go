package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"soundwave/logger"
	"soundwave/model"
)

// ErrNotFound is returned when the server answers 404.
var ErrNotFound = errors.New("song not found")

// APIError is any other non-2xx answer. Message is the server's "error" field
// or, when absent, the raw body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

// Client talks to the songs REST API. No retries.
type Client struct {
	Base string
	http *http.Client
}

// New creates a client for base, e.g. http://localhost:3001.
func New(base string) *Client {
	return &Client{
		Base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 12 * time.Second},
	}
}

// WithHTTPClient swaps the underlying http client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

func (c *Client) songsURL(id string) string {
	u := c.Base + "/api/songs"
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

// ListSongs GET /api/songs
func (c *Client) ListSongs(ctx context.Context) ([]*model.Song, error) {
	songs := make([]*model.Song, 0)
	if err := c.do(ctx, http.MethodGet, c.songsURL(""), nil, &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// GetSong GET /api/songs/{id}
func (c *Client) GetSong(ctx context.Context, id string) (*model.Song, error) {
	var s model.Song
	if err := c.do(ctx, http.MethodGet, c.songsURL(id), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSong POST /api/songs
func (c *Client) CreateSong(ctx context.Context, song *model.Song) (*model.Song, error) {
	body := song.Clone()
	body.Key = ""
	var s model.Song
	if err := c.do(ctx, http.MethodPost, c.songsURL(""), body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSong PATCH /api/songs/{id}
func (c *Client) UpdateSong(ctx context.Context, id string, patch *model.SongPatch) (*model.Song, error) {
	var s model.Song
	if err := c.do(ctx, http.MethodPatch, c.songsURL(id), patch, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSong DELETE /api/songs/{id}
func (c *Client) DeleteSong(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.songsURL(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, fullURL string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, fullURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s: %w", method, fullURL, err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		apiErr.Message = body.Error
	}
	logger.Debug("API error response",
		logger.Int("status", apiErr.Status),
		logger.String("message", apiErr.Message))
	return apiErr
}
