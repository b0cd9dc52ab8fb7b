// Package api is a thin client for the blog REST API. Every call is a single
// best-effort attempt: no retries, no caching.
package api

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

	"go.uber.org/zap"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8000/blog/api"

// TokenSource supplies the bearer credential for mutating requests.
type TokenSource interface {
	CurrentToken() string
}

// Client issues requests against the blog API.
type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	log    *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds every request. Zero means no client-side timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New creates a Client rooted at base, e.g. "https://example.com/blog/api".
func New(base string, opts ...Option) *Client {
	if base == "" {
		base = DefaultBaseURL
	}
	c := &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokens returns a copy of c that authenticates with src.
func (c *Client) WithTokens(src TokenSource) *Client {
	cp := *c
	cp.tokens = src
	return &cp
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.base
}

// ListPosts returns every post, or only those in category when non-empty.
func (c *Client) ListPosts(ctx context.Context, category string) ([]Post, error) {
	path := "/posts"
	if category != "" {
		path += "?category=" + url.QueryEscape(category)
	}
	var posts []Post
	if _, err := c.do(ctx, http.MethodGet, path, nil, false, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost fetches a single post.
func (c *Client) GetPost(ctx context.Context, id string) (Post, error) {
	var p Post
	if _, err := c.do(ctx, http.MethodGet, "/posts/"+url.PathEscape(id), nil, false, &p); err != nil {
		return Post{}, err
	}
	return p, nil
}

// CreatePost creates a post and returns its id.
func (c *Client) CreatePost(ctx context.Context, payload PostPayload) (Created, error) {
	var out Created
	if _, err := c.do(ctx, http.MethodPost, "/posts", payload, true, &out); err != nil {
		return Created{}, err
	}
	return out, nil
}

// UpdatePost patches an existing post.
func (c *Client) UpdatePost(ctx context.Context, id string, payload PostPayload) error {
	_, err := c.do(ctx, http.MethodPatch, "/posts/"+url.PathEscape(id), payload, true, nil)
	return err
}

// DeletePost removes a post. Only 204 No Content counts as success.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	status, err := c.do(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, true, nil)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent {
		return &APIError{Status: status}
	}
	return nil
}

// ListCategories returns all categories with their post counts.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var cats []Category
	if _, err := c.do(ctx, http.MethodGet, "/categories", nil, false, &cats); err != nil {
		return nil, err
	}
	return cats, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out loginResponse
	if _, err := c.do(ctx, http.MethodPost, "/login", loginRequest{Username: username, Password: password}, false, &out); err != nil {
		return "", err
	}
	if out.Token == "" {
		return "", fmt.Errorf("api: login response carries no token")
	}
	return out.Token, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	_, err := c.do(ctx, http.MethodPost, "/register", registerRequest{Username: username, Email: email, Password: password}, false, nil)
	return err
}

func (c *Client) token() string {
	if c.tokens == nil {
		return ""
	}
	return c.tokens.CurrentToken()
}

// do performs one request and decodes a 2xx body into out. It returns the
// response status together with any error.
func (c *Client) do(ctx context.Context, method, path string, body any, auth bool, out any) (int, error) {
	op := method + " " + path
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("api: encode %s: %w", op, err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return 0, fmt.Errorf("api: build %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		if tok := c.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("api unreachable", zap.String("op", op), zap.Error(err))
		return 0, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warn("api body read failed", zap.String("op", op), zap.Error(err))
		return resp.StatusCode, &TransportError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: errorMessage(data)}
		c.log.Debug("api error response", zap.String("op", op), zap.Int("status", resp.StatusCode), zap.String("message", apiErr.Message))
		return resp.StatusCode, apiErr
	}
	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, fmt.Errorf("api: decode %s: %w", op, err)
		}
	}
	return resp.StatusCode, nil
}
