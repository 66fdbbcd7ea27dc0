// Package mirror is the client side of the remote document mirror: account
// calls, whole-document writes, a server-sent event subscription and a
// reachability probe.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/riff/internal/domain"
)

// Client talks to a riff-mirror server.
type Client struct {
	baseURL string
	http    *http.Client
	stream  *http.Client
	timeout time.Duration
	logger  *slog.Logger

	retryMin time.Duration
	retryMax time.Duration

	mu    sync.Mutex
	token string
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRetry sets the reconnect backoff of subscriptions.
func WithRetry(min, max time.Duration) Option {
	return func(c *Client) {
		if min > 0 && max >= min {
			c.retryMin, c.retryMax = min, max
		}
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 5 * time.Second,
		}).DialContext,
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Transport: transport},
		stream:   &http.Client{Transport: transport},
		timeout:  10 * time.Second,
		logger:   slog.Default(),
		retryMin: time.Second,
		retryMax: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken sets the bearer token used for document calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) currentToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string `json:"token"`
	User  struct {
		ID        string `json:"id"`
		Email     string `json:"email"`
		Anonymous bool   `json:"anonymous"`
	} `json:"user"`
}

func (r authResponse) identity() domain.Identity {
	return domain.Identity{
		UserID:    r.User.ID,
		Email:     r.User.Email,
		Anonymous: r.User.Anonymous,
		Token:     r.Token,
	}
}

// Register creates an email/password account and signs in as it.
func (c *Client) Register(ctx context.Context, email, password string) (domain.Identity, error) {
	return c.authenticate(ctx, "/api/auth/register", authRequest{Email: email, Password: password})
}

func (c *Client) Login(ctx context.Context, email, password string) (domain.Identity, error) {
	return c.authenticate(ctx, "/api/auth/login", authRequest{Email: email, Password: password})
}

// SignInAnonymously creates an ephemeral identity.
func (c *Client) SignInAnonymously(ctx context.Context) (domain.Identity, error) {
	return c.authenticate(ctx, "/api/auth/anonymous", nil)
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (domain.Identity, error) {
	var resp authResponse
	if err := c.do(ctx, http.MethodPost, path, "", body, &resp); err != nil {
		return domain.Identity{}, err
	}
	id := resp.identity()
	c.SetToken(id.Token)
	return id, nil
}

// Write replaces the user's remote document with doc.
func (c *Client) Write(ctx context.Context, userID string, doc domain.AppData) error {
	token := c.currentToken()
	if token == "" {
		return ErrNotSignedIn
	}
	return c.do(ctx, http.MethodPut, documentPath(userID), token, doc.Normalize(), nil)
}

// Fetch returns the user's remote document, or nil when none exists.
func (c *Client) Fetch(ctx context.Context, userID string) (*domain.AppData, error) {
	token := c.currentToken()
	if token == "" {
		return nil, ErrNotSignedIn
	}
	var snap snapshot
	err := c.do(ctx, http.MethodGet, documentPath(userID), token, nil, &snap)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return snap.appData()
}

// Available reports whether the server answers its health check.
func (c *Client) Available(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func documentPath(userID string) string {
	return "/api/documents/" + userID
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classify(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, respBody)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func statusError(status int, body []byte) *StatusError {
	var env struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	se := &StatusError{StatusCode: status}
	if json.Unmarshal(body, &env) == nil {
		se.Code = env.Error.Code
		se.Message = env.Error.Message
	}
	return se
}

func classify(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return ErrTimeout
	}
	var netErr *net.OpError
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}
