// internal/apiclient/client.go
// HTTP client wrapper: builds requests, injects auth, issues the call and normalizes failures

package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sacavia/sacavia-go/internal/common/logger"
	"github.com/sacavia/sacavia-go/internal/config"
	"github.com/sacavia/sacavia-go/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// CookieName is the cookie the backend reads the token from on cookie-authenticated routes.
const CookieName = "payload-token"

const (
	DefaultRequestTimeout = 60 * time.Second
	DefaultUploadTimeout  = 120 * time.Second
)

// AuthMode selects how the token travels for one endpoint. The backend expects different
// transports on different routes, so each service picks the mode per call.
type AuthMode int

const (
	AuthNone AuthMode = iota
	AuthBearer
	AuthCookie
)

func (m AuthMode) String() string {
	switch m {
	case AuthBearer:
		return "bearer"
	case AuthCookie:
		return "cookie"
	default:
		return "none"
	}
}

// TokenSource supplies the current token and is told when the server rejects it.
type TokenSource interface {
	Token() string
	Invalidate()
}

// Request describes one API call.
type Request struct {
	Method string
	Path   string // absolute path under the base URL, e.g. /api/mobile/posts
	Route  string // metrics/log label, defaults to Path; use templates like /api/mobile/posts/{id}/like
	Query  map[string]string

	JSON interface{} // encoded as application/json when set

	Body        []byte // raw body, used with ContentType (multipart uploads)
	ContentType string

	Auth   AuthMode
	Upload bool // selects the extended upload timeout
}

// Response is a completed HTTP exchange with status < 400.
type Response struct {
	Status int
	Body   []byte
	Header http.Header
}

// Options configures a Client.
type Options struct {
	BaseURL           string
	UserAgent         string
	RequestTimeout    time.Duration
	UploadTimeout     time.Duration
	RequestsPerSecond float64
	RequestBurst      int

	Session    TokenSource
	Logger     *zap.SugaredLogger
	Metrics    *metrics.Metrics
	HTTPClient *http.Client
}

// Client is safe for concurrent use.
type Client struct {
	http           *resty.Client
	session        TokenSource
	log            *zap.SugaredLogger
	metrics        *metrics.Metrics
	limiter        *rate.Limiter
	requestTimeout time.Duration
	uploadTimeout  time.Duration
}

// New builds a client. A base URL that cannot be parsed is an invalidURL error.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, &APIError{Kind: KindInvalidURL, Message: fmt.Sprintf("invalid base URL %q", opts.BaseURL), Err: err}
	}

	log := logger.OrNop(opts.Logger)

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	// the token is attached per request from the session, never from a jar
	rc.SetCookieJar(nil).
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetLogger(log).
		SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		rc.SetHeader("User-Agent", opts.UserAgent)
	}

	c := &Client{
		http:           rc,
		session:        opts.Session,
		log:            log,
		metrics:        opts.Metrics,
		requestTimeout: opts.RequestTimeout,
		uploadTimeout:  opts.UploadTimeout,
	}
	if c.requestTimeout <= 0 {
		c.requestTimeout = DefaultRequestTimeout
	}
	if c.uploadTimeout <= 0 {
		c.uploadTimeout = DefaultUploadTimeout
	}
	if opts.RequestsPerSecond > 0 {
		burst := opts.RequestBurst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}

	return c, nil
}

// NewFromConfig builds a client from loaded configuration.
func NewFromConfig(cfg *config.Config, sess TokenSource, log *zap.SugaredLogger, m *metrics.Metrics) (*Client, error) {
	return New(Options{
		BaseURL:           cfg.BaseURL,
		UserAgent:         cfg.UserAgent,
		RequestTimeout:    cfg.RequestTimeout,
		UploadTimeout:     cfg.UploadTimeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		RequestBurst:      cfg.RequestBurst,
		Session:           sess,
		Logger:            log,
		Metrics:           m,
	})
}

// Session returns the token source the client authenticates with.
func (c *Client) Session() TokenSource {
	return c.session
}

// Do issues req. A missing token on an authenticated route fails before any I/O.
// Statuses >= 400 become APIErrors; 409 is returned as KindConflict so callers can
// decide whether the conflict means "already in the desired state".
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if !strings.HasPrefix(req.Path, "/") {
		return nil, &APIError{Kind: KindInvalidURL, Message: fmt.Sprintf("path %q must be absolute", req.Path)}
	}
	route := req.Route
	if route == "" {
		route = req.Path
	}

	var token string
	if req.Auth != AuthNone {
		if c.session != nil {
			token = c.session.Token()
		}
		if token == "" {
			return nil, ErrAuthenticationRequired
		}
	}

	timeout := c.requestTimeout
	if req.Upload {
		timeout = c.uploadTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &APIError{Kind: KindNetwork, Message: "request throttled until deadline", Err: err}
		}
	}

	r := c.http.R().SetContext(ctx)
	if len(req.Query) > 0 {
		r.SetQueryParams(req.Query)
	}

	switch {
	case req.JSON != nil:
		payload, err := json.Marshal(req.JSON)
		if err != nil {
			return nil, &APIError{Kind: KindInvalidURL, Message: "request body could not be encoded", Err: err}
		}
		r.SetHeader("Content-Type", "application/json").SetBody(payload)
	case req.Body != nil:
		r.SetHeader("Content-Type", req.ContentType).SetBody(req.Body)
	}

	switch req.Auth {
	case AuthBearer:
		r.SetAuthToken(token)
	case AuthCookie:
		r.SetCookie(&http.Cookie{Name: CookieName, Value: token})
	}

	start := time.Now()
	resp, err := r.Execute(req.Method, req.Path)
	took := time.Since(start)

	if err != nil {
		c.metrics.ObserveRequest(route, req.Method, 0, took)
		c.log.Debugw("request failed", "method", req.Method, "route", route, "error", err)
		msg := "could not reach server"
		if errors.Is(err, context.Canceled) {
			msg = "request cancelled"
		} else if errors.Is(err, context.DeadlineExceeded) {
			msg = "request timed out"
		}
		return nil, &APIError{Kind: KindNetwork, Message: msg, Err: err}
	}

	status := resp.StatusCode()
	c.metrics.ObserveRequest(route, req.Method, status, took)
	c.log.Debugw("request completed", "method", req.Method, "route", route, "auth", req.Auth.String(),
		"status", status, "took", took)

	body := resp.Body()
	if status >= 400 {
		return nil, c.statusError(status, body)
	}

	return &Response{Status: status, Body: body, Header: resp.Header()}, nil
}

func (c *Client) statusError(status int, body []byte) *APIError {
	message, code := messageFromBody(body)

	switch status {
	case http.StatusUnauthorized:
		if c.session != nil {
			c.session.Invalidate()
		}
		if message == "" {
			message = "session expired, please sign in again"
		}
		return &APIError{Kind: KindUnauthorized, Status: status, Message: message, Code: code}
	case http.StatusConflict:
		return &APIError{Kind: KindConflict, Status: status, Message: message, Code: code}
	}

	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	return &APIError{Kind: KindServer, Status: status, Message: message, Code: code}
}

// Call issues req and decodes the envelope's data into T.
func Call[T any](ctx context.Context, c *Client, req Request) (T, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		var zero T
		return zero, err
	}
	out, err := Decode[T](resp.Body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == 0 {
			apiErr.Status = resp.Status
		}
	}
	return out, err
}

// Exec issues req for routes whose success carries no required data.
func Exec(ctx context.Context, c *Client, req Request) (*Envelope, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	env, err := ParseEnvelope(resp.Body)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status == 0 {
			apiErr.Status = resp.Status
		}
		return nil, err
	}
	return env, nil
}

// PathEscape escapes one path segment (ids are opaque strings).
func PathEscape(segment string) string {
	return url.PathEscape(segment)
}
