// Package remote is a store.Store backed by a `shelf serve` HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/api"
	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/utils"
)

// StatusError is a non-2xx answer from the server.
type StatusError struct {
	Status  int
	Code    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("server returned %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Client talks to the bookmarks API.
type Client struct {
	base        string
	http        *http.Client
	token       string
	ownerHeader string
}

type Option func(*Client)

// WithToken sends "Authorization: Bearer <token>" on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithOwnerHeader forwards the caller's owner id in the named header, for
// servers running in trusted-header identity mode.
func WithOwnerHeader(name string) Option {
	return func(c *Client) { c.ownerHeader = name }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New returns a client for the server at baseURL (ex: "https://shelf.domain.ext").
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid remote url %q", baseURL)
	}

	c := &Client{
		base: u.String(),
		http: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches the owner's bookmarks, newest first.
func (c *Client) List(ctx context.Context, ownerID string) ([]domain.Bookmark, error) {
	var out api.ListResponse
	if err := c.do(ctx, http.MethodGet, api.BookmarksPath, ownerID, nil, http.StatusOK, &out); err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	if out.Bookmarks == nil {
		out.Bookmarks = []domain.Bookmark{}
	}
	return out.Bookmarks, nil
}

// Insert posts the draft and returns the row the server created.
func (c *Client) Insert(ctx context.Context, draft domain.Draft) (domain.Bookmark, error) {
	body := api.CreateRequest{
		Title: draft.Title,
		URL:   draft.URL,
	}
	if draft.Description != nil {
		body.Description = *draft.Description
	}

	var out domain.Bookmark
	if err := c.do(ctx, http.MethodPost, api.BookmarksPath, draft.OwnerID, body, http.StatusCreated, &out); err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to save bookmark: %w", err)
	}
	return out, nil
}

// Delete removes the bookmark; the server filters by the caller's identity.
func (c *Client) Delete(ctx context.Context, id, ownerID string) (int64, error) {
	var out api.DeleteResponse
	path := api.BookmarksPath + "/" + url.PathEscape(id)
	if err := c.do(ctx, http.MethodDelete, path, ownerID, nil, http.StatusOK, &out); err != nil {
		return 0, fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return out.Deleted, nil
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) do(ctx context.Context, method, path, ownerID string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.ownerHeader != "" {
		req.Header.Set(c.ownerHeader, ownerID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode != want {
		return decodeError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	serr := &StatusError{Status: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload api.ErrorResponse
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		serr.Code = payload.Code
		serr.Message = payload.Error
	} else {
		serr.Message = strings.TrimSpace(string(data))
		if serr.Message == "" {
			serr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return serr
}
