package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/pkg/circuitbreaker"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	csrfCookieName = "csrftoken"
	csrfHeaderName = "X-CSRFToken"
	maxErrorBody   = 64 << 10
)

// Breaker guards calls to the commerce API. One breaker is shared by all
// session clients.
type Breaker = gobreaker.CircuitBreaker[*rawResponse]

type Config struct {
	BaseURL        string
	Timeout        time.Duration
	UserAgent      string
	BreakerEnabled bool
}

// Client talks to the commerce API. It owns a cookie jar, so one Client
// corresponds to one browser session.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	log        *zap.Logger
	breaker    *Breaker

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

// WithHTTPClient replaces the default transport-instrumented client.
// A cookie jar is attached if the given client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// WithBreaker shares a circuit breaker between clients of the same API.
func WithBreaker(cb *Breaker) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("commerce API base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid commerce API base URL: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}
	if cfg.BreakerEnabled && c.breaker == nil {
		c.breaker = NewBreaker("commerce-api", c.log)
	}
	return c, nil
}

// NewBreaker builds a breaker that only counts transport failures and 5xx
// responses. Client errors pass through without tripping it.
func NewBreaker(name string, log *zap.Logger) *Breaker {
	s := circuitbreaker.DefaultSettings(name)
	s.IsSuccessful = func(err error) bool {
		if err == nil {
			return true
		}
		var apiErr *Error
		return errors.As(err, &apiErr) && apiErr.StatusCode < http.StatusInternalServerError
	}
	return circuitbreaker.New[*rawResponse](s, log)
}

// SetToken sets a token for "Authorization: Token" auth. Empty clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type rawResponse struct {
	status int
	body   []byte
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// track posts telemetry. It bypasses the breaker, so failing tracking
// endpoints never trip it for cart, checkout and payment calls.
func (c *Client) track(ctx context.Context, path string, body any) error {
	return c.exec(ctx, http.MethodPost, path, body, nil, false)
}

// do sends one request. There is no retry: every failure is returned to the caller.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return c.exec(ctx, method, path, body, out, true)
}

func (c *Client) exec(ctx context.Context, method, path string, body, out any, guarded bool) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
		payload = b
	}

	send := func() (*rawResponse, error) {
		return c.send(ctx, method, path, payload)
	}

	var (
		raw *rawResponse
		err error
	)
	if guarded && c.breaker != nil {
		raw, err = c.breaker.Execute(send)
	} else {
		raw, err = send()
	}
	if err != nil {
		c.log.Debug("commerce api call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return err
	}

	if out == nil || len(bytes.TrimSpace(raw.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw.body, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload []byte) (*rawResponse, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID(ctx))
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	if method != http.MethodGet && method != http.MethodHead {
		if csrf := c.cookie(csrfCookieName); csrf != "" {
			req.Header.Set(csrfHeaderName, csrf)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	raw := &rawResponse{status: resp.StatusCode, body: data}
	if resp.StatusCode >= http.StatusBadRequest {
		return raw, newError(resp.StatusCode, data)
	}
	return raw, nil
}

func (c *Client) cookie(name string) string {
	u, err := url.Parse(c.baseURL)
	if err != nil || c.httpClient.Jar == nil {
		return ""
	}
	for _, ck := range c.httpClient.Jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value
		}
	}
	return ""
}

type requestIDKey struct{}

// WithRequestID propagates an inbound request id to outbound calls.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// decodeList accepts both bare arrays and paginated {"results": [...]} bodies.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, err
		}
		return items, nil
	}
	var page struct {
		Results []T `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		return []T{}, nil
	}
	return page.Results, nil
}

func (c *Client) getList(ctx context.Context, path string) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}
