package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/memoru/internal/shared"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultBaseURL           = "http://localhost:8080/api"
	DefaultMaxRefreshRetries = 1

	maxErrorBody = 1 << 20
	refreshKey   = "refresh"
)

// SessionProvider issues and renews the bearer token.
//
// AccessToken returns an empty string when there is no session.
// Login starts an interactive sign-in and may block until it completes.
type SessionProvider interface {
	RefreshToken(ctx context.Context) error
	AccessToken(ctx context.Context) (string, error)
	Login(ctx context.Context) error
}

// Doer sends a single HTTP request. [*http.Client] implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestOptions describes one call. An empty Method means GET.
type RequestOptions struct {
	Method  string
	Body    []byte
	Headers http.Header
}

// Options configures a [Client].
//
// MaxRefreshRetries caps the refresh-and-retry cycles of a single call: zero selects
// [DefaultMaxRefreshRetries] and a negative value disables retrying.
//
// Context bounds the background refresh and login started by the client. Cancelling it
// aborts them and releases [Client.Wait]. Nil means [context.Background].
type Options struct {
	BaseURL           string
	HTTPClient        Doer
	Session           SessionProvider
	Logger            *log.Logger
	MaxRefreshRetries int
	Context           context.Context
}

// Client is the authenticated request gateway. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient Doer
	session    SessionProvider
	logger     *log.Logger
	maxRetries int
	ctx        context.Context

	refreshes singleflight.Group

	mu         sync.Mutex
	token      string
	generation uint64
	lastErr    error
	refreshing bool
	loggingIn  bool

	wg sync.WaitGroup
}

// New creates a [Client], filling defaults for zero-valued options.
func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}

	maxRetries := opts.MaxRefreshRetries
	switch {
	case maxRetries == 0:
		maxRetries = DefaultMaxRefreshRetries
	case maxRetries < 0:
		maxRetries = 0
	}

	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.HTTPClient,
		session:    opts.Session,
		logger:     shared.WithLogger(opts.Logger, "component", "apiclient"),
		maxRetries: maxRetries,
		ctx:        opts.Context,
	}
}

// SetAccessToken replaces the bearer token. An empty token sends no Authorization header.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// AccessToken returns the current bearer token.
func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// BaseURL returns the URL endpoints are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Wait blocks until background refresh and login work has finished.
// Cancelling [Options.Context] makes that work return early.
func (c *Client) Wait() {
	c.wg.Wait()
}

// Request performs one logical call to endpoint and decodes a JSON response into out.
// out may be nil to discard the body. On 204 out is left untouched.
func (c *Client) Request(ctx context.Context, endpoint string, opts RequestOptions, out any) error {
	_, err := c.send(ctx, endpoint, opts, out, 0)
	return err
}

// Do performs a call and decodes the response into a new T.
// A 204 response returns a nil pointer and no error.
func Do[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (*T, error) {
	var out T
	noContent, err := c.send(ctx, endpoint, opts, &out, 0)
	if err != nil || noContent {
		return nil, err
	}
	return &out, nil
}

// send issues one attempt and re-enters itself after a successful refresh.
func (c *Client) send(ctx context.Context, endpoint string, opts RequestOptions, out any, refreshes int) (bool, error) {
	token, generation := c.snapshot()
	req, err := c.newRequest(ctx, endpoint, opts, token)
	if err != nil {
		return false, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	c.logger.Debug("request", "method", req.Method, "endpoint", endpoint, "status", resp.StatusCode, "attempt", refreshes+1)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		if refreshes >= c.maxRetries {
			c.logger.Warn("request still unauthorized after refresh", "endpoint", endpoint, "refreshes", refreshes)
			c.startLogin()
			return false, &SessionExpiredError{}
		}

		if err := c.refresh(ctx, generation); err != nil {
			if ctx.Err() != nil && err == ctx.Err() {
				return false, err
			}
			return false, &SessionExpiredError{Cause: err}
		}

		resp.Body.Close()
		return c.send(ctx, endpoint, opts, out, refreshes+1)

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return false, &HTTPError{Status: resp.StatusCode, Message: errorMessage(resp.StatusCode, body)}

	case resp.StatusCode == http.StatusNoContent:
		return true, nil
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return false, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return false, nil
}

// snapshot returns the token for the next attempt and the number of refreshes settled so far.
func (c *Client) snapshot() (string, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, c.generation
}

// newRequest builds the HTTP request. Caller headers are applied over the JSON content type,
// and the Authorization header is added last when a token is set.
func (c *Client) newRequest(ctx context.Context, endpoint string, opts RequestOptions, token string) (*http.Request, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if opts.Body != nil {
		body = bytes.NewReader(opts.Body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for key, values := range opts.Headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// refresh joins the in-flight refresh or starts one, then waits for it to settle.
//
// seen is the generation the rejected request was sent under. When a refresh has settled
// since then, its outcome is reused instead of starting another. The check and the join
// happen under one lock. The refresh runs on the client context, so a caller that stops
// waiting does not fail the others.
func (c *Client) refresh(ctx context.Context, seen uint64) error {
	c.mu.Lock()
	if c.generation != seen {
		err := c.lastErr
		c.mu.Unlock()
		return err
	}
	if !c.refreshing {
		c.refreshing = true
		c.wg.Add(1)
	}
	ch := c.refreshes.DoChan(refreshKey, c.runRefresh)
	c.mu.Unlock()

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) runRefresh() (any, error) {
	defer c.wg.Done()

	c.logger.Info("refreshing access token")
	err := c.renewToken(c.ctx)
	if err != nil {
		c.logger.Warn("token refresh failed, starting login", "error", err)
		c.startLogin()
	} else {
		c.logger.Info("access token refreshed")
	}

	c.mu.Lock()
	c.generation++
	c.lastErr = err
	c.refreshing = false
	c.refreshes.Forget(refreshKey)
	c.mu.Unlock()

	return nil, err
}

func (c *Client) renewToken(ctx context.Context) error {
	if c.session == nil {
		return shared.ErrNotAuthenticated
	}
	if err := c.session.RefreshToken(ctx); err != nil {
		return err
	}

	token, err := c.session.AccessToken(ctx)
	if err != nil {
		return err
	}

	c.SetAccessToken(token)
	return nil
}

// startLogin runs session.Login in the background unless a login is already running.
func (c *Client) startLogin() {
	if c.session == nil {
		return
	}

	c.mu.Lock()
	if c.loggingIn {
		c.mu.Unlock()
		return
	}
	c.loggingIn = true
	c.wg.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.wg.Done()
		if err := c.session.Login(c.ctx); err != nil {
			c.logger.Error("login failed", "error", err)
		}

		c.mu.Lock()
		c.loggingIn = false
		c.mu.Unlock()
	}()
}
