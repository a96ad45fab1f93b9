package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/dmitrijs2005/filekeeper/internal/logging"
)

const (
	DefaultTimeout = 180 * time.Second

	RequestIDHeaderName = "X-Request-ID"

	loginPath    = "/auth/login"
	registerPath = "/auth/register"

	maxErrorBody = 1 << 20
)

// SessionState is what the client needs from the session: the token to
// attach and a way to drop it when the server rejects it.
type SessionState interface {
	Token() string
	Invalidate(ctx context.Context, reason error) error
}

// Options configures New.
type Options struct {
	// BaseURL is the API root, e.g. "https://api.example.com" or
	// "https://example.com/api". Request paths are appended to it.
	BaseURL string
	// Timeout bounds every request end to end. Zero means DefaultTimeout.
	Timeout time.Duration
	// Session may be nil, in which case requests go out anonymous and a
	// 401 has no side effect.
	Session SessionState
	Logger  logging.Logger
	// Transport overrides http.DefaultTransport.
	Transport http.RoundTripper
}

// Invoker sends a prepared request.
type Invoker func(req *http.Request) (*http.Response, error)

// Interceptor wraps an Invoker. It may adjust the request before calling
// next and inspect the outcome afterwards.
type Interceptor func(req *http.Request, next Invoker) (*http.Response, error)

type HTTPClient struct {
	baseURL    string
	basePath   string
	httpClient *http.Client
	session    SessionState
	logger     logging.Logger
	invoke     Invoker
}

func New(opts Options) (*HTTPClient, error) {
	u, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host required", opts.BaseURL)
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	c := &HTTPClient{
		baseURL:    strings.TrimRight(u.String(), "/"),
		basePath:   strings.TrimRight(u.Path, "/"),
		httpClient: &http.Client{Timeout: timeout, Transport: opts.Transport},
		session:    opts.Session,
		logger:     logger,
	}
	c.invoke = chain(c.send, c.accessTokenInterceptor, c.unauthorizedInterceptor)

	return c, nil
}

// chain builds an Invoker where interceptors[0] is the outermost.
func chain(last Invoker, interceptors ...Interceptor) Invoker {
	next := last
	for i := len(interceptors) - 1; i >= 0; i-- {
		ic, inner := interceptors[i], next
		next = func(req *http.Request) (*http.Response, error) {
			return ic(req, inner)
		}
	}
	return next
}

type requestConfig struct {
	query         url.Values
	header        http.Header
	body          io.Reader
	contentLength int64
}

type RequestOption func(*requestConfig) error

func WithQuery(q url.Values) RequestOption {
	return func(rc *requestConfig) error {
		rc.query = q
		return nil
	}
}

func WithHeader(key, value string) RequestOption {
	return func(rc *requestConfig) error {
		rc.header.Set(key, value)
		return nil
	}
}

// WithJSON encodes v as the request body.
func WithJSON(v any) RequestOption {
	return func(rc *requestConfig) error {
		b, err := sonic.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		rc.body = bytes.NewReader(b)
		rc.contentLength = int64(len(b))
		rc.header.Set("Content-Type", "application/json")
		return nil
	}
}

// WithBody streams r as the request body. A negative length means unknown.
func WithBody(r io.Reader, contentType string, length int64) RequestOption {
	return func(rc *requestConfig) error {
		rc.body = r
		rc.contentLength = length
		if contentType != "" {
			rc.header.Set("Content-Type", contentType)
		}
		return nil
	}
}

// Do sends method to baseURL+path through the interceptor chain. A status
// of 400 or above is returned as *APIError, a failure to get any response
// as *TransportError. On success the caller owns resp.Body.
func (c *HTTPClient) Do(ctx context.Context, method, path string, opts ...RequestOption) (*http.Response, error) {
	rc := &requestConfig{header: make(http.Header)}
	for _, opt := range opts {
		if err := opt(rc); err != nil {
			return nil, err
		}
	}

	target := c.baseURL + path
	if len(rc.query) > 0 {
		target += "?" + rc.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rc.body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, v := range rc.header {
		req.Header[k] = v
	}
	if rc.body != nil {
		req.ContentLength = rc.contentLength
	}

	return c.invoke(req)
}

// DoJSON is Do followed by decoding the response body into out. A nil out
// discards the body.
func (c *HTTPClient) DoJSON(ctx context.Context, method, path string, out any, opts ...RequestOption) error {
	resp, err := c.Do(ctx, method, path, append([]RequestOption{WithHeader("Accept", "application/json")}, opts...)...)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Kind: classify(err), Method: method, URL: resp.Request.URL.String(), Err: err}
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

// relativePath strips the base URL path so endpoints can be compared
// regardless of where the API is mounted.
func (c *HTTPClient) relativePath(req *http.Request) string {
	return strings.TrimPrefix(req.URL.Path, c.basePath)
}

func (c *HTTPClient) send(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	start := time.Now()
	log := c.logger.With("method", req.Method, "path", c.relativePath(req), "request_id", req.Header.Get(RequestIDHeaderName))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		terr := &TransportError{Kind: classify(err), Method: req.Method, URL: req.URL.String(), Err: err}
		log.Debug(ctx, "request failed", "kind", terr.Kind.String(), "duration", time.Since(start), "error", err)
		return nil, terr
	}

	log.Debug(ctx, "request done", "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < http.StatusBadRequest {
		return resp, nil
	}

	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	return nil, &APIError{
		Method:     req.Method,
		Path:       c.relativePath(req),
		StatusCode: resp.StatusCode,
		Detail:     parseDetail(body),
		Body:       body,
		Header:     resp.Header,
	}
}

func classify(err error) TransportKind {
	if errors.Is(err, context.Canceled) {
		return KindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return KindTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return KindTimeout
	}
	return KindNetwork
}
