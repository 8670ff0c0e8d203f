package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kengakuru/kibanda/pkg/domain"
)

// Client talks to a Supabase-compatible backend: the auth service under
// /auth/v1, table rows under /rest/v1 and object storage under /storage/v1.
// It owns the current session and persists it through its TokenStore.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	store      TokenStore
	now        func() time.Time

	mu        sync.Mutex
	session   *domain.AuthSession
	loaded    bool
	listeners map[int]AuthListener
	nextID    int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTokenStore sets where the session is persisted between runs.
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.store = s }
}

// WithClock overrides the time source used for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a new backend client. apiKey is the project's public (anon) key.
func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		store:     NewMemoryTokenStore(),
		now:       time.Now,
		listeners: make(map[int]AuthListener),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend base URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// requestOption adjusts a single outgoing request.
type requestOption func(*http.Request)

func withHeader(key, value string) requestOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

// withBearer overrides the session token for one request.
func withBearer(token string) requestOption {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

// anonymous sends the request with the public key only.
func (c *Client) anonymous() requestOption {
	return withBearer(c.apiKey)
}

func (c *Client) post(ctx context.Context, path string, body any, out any, opts ...requestOption) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out, opts...)
}

func (c *Client) get(ctx context.Context, path string, out any, opts ...requestOption) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out, opts...)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any, opts ...requestOption) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
		opts = append([]requestOption{withHeader("Content-Type", "application/json")}, opts...)
	}

	resp, err := c.send(ctx, method, path, reqBody, opts...)
	if err != nil {
		return err
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// send performs the request and converts any non-2xx response into an
// *APIError. On success the caller owns the response body.
func (c *Client) send(ctx context.Context, method, path string, body io.Reader, opts ...requestOption) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.bearer())
	for _, opt := range opts {
		opt(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close() //nolint:errcheck // best-effort close
		respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1 MB max error body
		if readErr != nil {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", readErr)}
		}
		return nil, parseAPIError(resp.StatusCode, respBody)
	}
	return resp, nil
}

// bearer returns the access token of the current session, or the public key
// when signed out.
func (c *Client) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil && c.session.AccessToken != "" {
		return c.session.AccessToken
	}
	return c.apiKey
}
