// Package apiclient provides the single request path for all backend calls:
// it attaches the bearer credential, normalizes response key casing, and
// coordinates token refresh so a burst of concurrent requests hitting an
// expired token triggers exactly one refresh.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shilldao/herald/core"
	"github.com/shilldao/herald/ports"
)

// DefaultTimeout bounds every request; there is no separate application-level
// timeout on the refresh call.
const DefaultTimeout = 5 * time.Second

// Refresher exchanges the persisted refresh credential for a new access
// token. Implementations must not route through the pipeline's 401 handling.
type Refresher interface {
	RefreshAccessToken(ctx context.Context) (string, error)
}

// RefresherFunc adapts a function to the Refresher interface.
type RefresherFunc func(ctx context.Context) (string, error)

func (f RefresherFunc) RefreshAccessToken(ctx context.Context) (string, error) { return f(ctx) }

// Client is the API request pipeline. All coordination state is scoped to the
// instance so it can be reset between tests.
type Client struct {
	baseURL   string
	httpc     *http.Client
	tokens    ports.TokenStore
	refresher Refresher
	log       *slog.Logger

	// onAuthFailure fires after a failed refresh, once per failure, so the
	// session owner can tear down. Set via SetAuthFailureHandler to break
	// the construction cycle with the session coordinator.
	onAuthFailure func()

	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshOutcome
}

type refreshOutcome struct {
	token string
	err   error
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// WithLogger sets the structured logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithRefresher overrides the default refresh call.
func WithRefresher(r Refresher) Option {
	return func(c *Client) { c.refresher = r }
}

// New creates a pipeline client rooted at baseURL, drawing credentials from
// tokens.
func New(baseURL string, tokens ports.TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpc:   &http.Client{Timeout: DefaultTimeout},
		tokens:  tokens,
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.refresher == nil {
		c.refresher = RefresherFunc(c.defaultRefresh)
	}
	return c
}

// SetAuthFailureHandler installs the hook invoked when a refresh attempt
// fails terminally.
func (c *Client) SetAuthFailureHandler(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onAuthFailure = fn
}

// FilePart is one uploaded file in a multipart body.
type FilePart struct {
	Field    string
	Filename string
	Content  []byte
}

// MultipartBody carries form fields plus file parts. When set, the request's
// content type is multipart instead of JSON.
type MultipartBody struct {
	Fields map[string]string
	Files  []FilePart
}

// RequestOptions shapes a single request.
type RequestOptions struct {
	Body      any           // JSON-encoded unless Multipart is set
	Multipart *MultipartBody
	Params    url.Values
	Headers   http.Header
}

// APIError is a non-2xx response, with its body keys already normalized to
// camelCase (best effort).
type APIError struct {
	Status   int
	Endpoint string
	Body     []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s returned %d: %s", e.Endpoint, e.Status, truncate(e.Body, 200))
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		return string(b[:n]) + "..."
	}
	return string(b)
}

// Request sends one API call and returns the response body with all object
// keys converted from snake_case to camelCase. A 401 triggers a single
// coordinated token refresh; requests arriving while a refresh is underway
// wait for its outcome and are replayed with the new token, or rejected with
// the refresh error.
func (c *Client) Request(ctx context.Context, method, endpoint string, opts *RequestOptions) ([]byte, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	body, contentType, err := encodeBody(opts)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}

	status, raw, err := c.send(ctx, method, endpoint, opts, body, contentType)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized && !isAuthEndpoint(endpoint) {
		// One refresh per expiry burst; everyone else waits for it.
		if _, rerr := c.awaitRefresh(ctx); rerr != nil {
			return nil, fmt.Errorf("token refresh: %w", rerr)
		}
		status, raw, err = c.send(ctx, method, endpoint, opts, body, contentType)
		if err != nil {
			return nil, err
		}
		// A second 401 is terminal: the retry flag is the replay itself,
		// never another refresh.
	}

	normalized, nerr := NormalizeJSON(raw)
	if nerr != nil {
		// Normalization is best effort on error bodies; on success bodies a
		// malformed payload is still returned raw rather than dropped.
		c.log.Warn("response normalization failed", "endpoint", endpoint, "error", nerr)
		normalized = raw
	}

	if status < 200 || status >= 300 {
		return nil, &APIError{Status: status, Endpoint: endpoint, Body: normalized}
	}
	return normalized, nil
}

// isAuthEndpoint reports whether endpoint belongs to the login handshake. A
// 401 from those endpoints means the credentials were bad, not that the
// access token expired, so the refresh path must not fire.
func isAuthEndpoint(endpoint string) bool {
	return strings.HasPrefix(strings.TrimPrefix(endpoint, "/"), "auth/")
}

// send performs one HTTP exchange. The body is pre-encoded so the request can
// be replayed after a refresh.
func (c *Client) send(ctx context.Context, method, endpoint string, opts *RequestOptions, body []byte, contentType string) (int, []byte, error) {
	u := c.baseURL + "/" + strings.TrimPrefix(endpoint, "/")
	if len(opts.Params) > 0 {
		u += "?" + opts.Params.Encode()
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}

	for k, vs := range opts.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	// No pre-emptive expiry check: an expired token is caught reactively by
	// the 401 path.
	if token, _ := c.tokens.Access(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func encodeBody(opts *RequestOptions) ([]byte, string, error) {
	if opts.Multipart != nil {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		for k, v := range opts.Multipart.Fields {
			if err := w.WriteField(k, v); err != nil {
				return nil, "", err
			}
		}
		for _, f := range opts.Multipart.Files {
			part, err := w.CreateFormFile(f.Field, f.Filename)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(f.Content); err != nil {
				return nil, "", err
			}
		}
		if err := w.Close(); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), w.FormDataContentType(), nil
	}
	if opts.Body != nil {
		b, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, "", err
		}
		return b, "application/json", nil
	}
	return nil, "", nil
}

// RefreshNow forces a token refresh through the same single-flight gate the
// 401 path uses, so an explicit refresh and a reactive one can never race.
func (c *Client) RefreshNow(ctx context.Context) (string, error) {
	return c.awaitRefresh(ctx)
}

// awaitRefresh coordinates the single-flight refresh. The caller that finds
// no refresh underway becomes the initiator; everyone else parks on a waiter
// channel and observes the initiator's outcome. All waiters of one attempt
// settle together with the same result.
func (c *Client) awaitRefresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.refreshing {
		ch := make(chan refreshOutcome, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()
		select {
		case out := <-ch:
			return out.token, out.err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	var out refreshOutcome
	out.token, out.err = c.refresher.RefreshAccessToken(ctx)

	// The in-flight flag is always cleared when the refresh settles, success
	// or failure, so the pipeline can never believe a refresh is permanently
	// in progress.
	c.mu.Lock()
	c.refreshing = false
	waiters := c.waiters
	c.waiters = nil
	onFailure := c.onAuthFailure
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- out
	}

	if out.err != nil {
		c.log.Warn("token refresh failed, session is terminal", "error", out.err)
		if onFailure != nil {
			onFailure()
		}
	}
	return out.token, out.err
}

// defaultRefresh exchanges the persisted refresh credential for a new access
// token via a bare HTTP call, bypassing the 401 interception entirely.
func (c *Client) defaultRefresh(ctx context.Context) (string, error) {
	cred, ok := c.tokens.Refresh()
	if !ok || cred.Expired() {
		return "", core.ErrNoRefreshToken
	}

	payload, err := json.Marshal(map[string]string{"refresh": cred.Value})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Status: resp.StatusCode, Endpoint: "auth/refresh", Body: raw}
	}

	var body struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("decode refresh response: %w", err)
	}
	if body.Access == "" {
		return "", fmt.Errorf("refresh response missing access token")
	}

	// Persist before any waiter is released so no queued request replays with
	// a stale token.
	_, role := c.tokens.Access()
	c.tokens.SetAccess(body.Access, role)
	return body.Access, nil
}

// Do sends a request and decodes the normalized response body into T.
func Do[T any](ctx context.Context, c *Client, method, endpoint string, opts *RequestOptions) (T, error) {
	var out T
	raw, err := c.Request(ctx, method, endpoint, opts)
	if err != nil {
		return out, err
	}
	if len(raw) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return out, nil
}
