package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tvx/internal/shared"
	"golang.org/x/time/rate"
)

const (
	// APIBase is the path prefix of every backend endpoint.
	APIBase = "/api"
	// CSRFHeader carries the CSRF token on non-GET requests.
	CSRFHeader = "X-CSRFToken"
	// CSRFCookie is the cookie the backend stores the CSRF token in.
	CSRFCookie = "csrftoken"
)

// Client talks to the show tracker backend.
//
// A Client owns a cookie jar, so the session cookie set at login and the CSRF
// cookie set by [Client.Env] are sent on later requests. It is safe for
// concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *log.Logger

	mu           sync.Mutex
	bootstrapped bool
}

// Option configures a [Client].
type Option func(*Client)

// WithHTTPClient uses c for requests. A cookie jar is added when c has none.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			copied := *c
			cl.httpClient = &copied
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.httpClient.Timeout = d }
}

// WithRateLimit limits the client to rps requests per second. Zero disables limiting.
func WithRateLimit(rps float64) Option {
	return func(cl *Client) {
		if rps > 0 {
			cl.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.logger = l
		}
	}
}

// NewClient creates a client for the backend at baseURL, e.g. "http://127.0.0.1:8000".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q", shared.ErrInvalidArgument, baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}

	return c, nil
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + APIBase + path
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// CSRFToken returns the token held in the cookie jar, or "" when none was issued.
func (c *Client) CSRFToken() string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + APIBase + "/"
	for _, cookie := range c.httpClient.Jar.Cookies(&u) {
		if cookie.Name == CSRFCookie {
			return cookie.Value
		}
	}
	return ""
}

// ensureCSRF bootstraps the CSRF cookie when no token is held yet.
func (c *Client) ensureCSRF(ctx context.Context) (string, error) {
	if token := c.CSRFToken(); token != "" {
		return token, nil
	}

	c.mu.Lock()
	done := c.bootstrapped
	c.mu.Unlock()

	if !done {
		if _, err := c.Env(ctx); err != nil {
			return "", err
		}
	}

	token := c.CSRFToken()
	if token == "" {
		c.logger.Warn("no CSRF token issued; sending request without one", "err", shared.ErrMissingCSRFToken)
	}
	return token, nil
}

// do performs one request and classifies the outcome.
//
// It returns the body of 2xx responses, an [shared.UnauthorizedError] for 401
// and a [shared.RequestError] for everything else.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload any) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	var token string
	if method != http.MethodGet {
		t, err := c.ensureCSRF(ctx)
		if err != nil {
			return nil, err
		}
		token = t
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &shared.RequestError{Op: op, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set(CSRFHeader, token)
		req.Header.Set("Referer", c.baseURL.String()+"/")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "op", op, "method", method, "path", path, "err", err)
		return nil, &shared.RequestError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &shared.RequestError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	c.logger.Debug("request", "op", op, "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &shared.UnauthorizedError{Op: op}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &shared.RequestError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Body:       string(data),
		}
	}

	return data, nil
}

// statusText returns the reason phrase without the leading code.
func statusText(resp *http.Response) string {
	if _, text, ok := strings.Cut(resp.Status, " "); ok {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// decode unmarshals a successful body, reporting malformed JSON as a [shared.ValidationError].
func decode[T any](op string, data []byte) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, &shared.ValidationError{Op: op, Err: err}
	}
	return v, nil
}
