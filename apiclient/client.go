package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/bountip-console/cookies"
	"github.com/jrsteele09/bountip-console/internal/config"
	apperrors "github.com/jrsteele09/bountip-console/internal/errors"
	"github.com/jrsteele09/bountip-console/sessions"
)

const (
	// APIPrefix is the root of every JSON endpoint.
	APIPrefix = "/api/v1"
	// UploadPath is the fixed binary upload endpoint.
	UploadPath = "/static/upload"
	// UploadField is the multipart part name carrying the file.
	UploadField = "file"

	requestIDHeader = "X-Request-ID"
)

// APIPath joins elem under APIPrefix, e.g. APIPath("business", "outlets").
func APIPath(elem ...string) string {
	return path.Join(append([]string{APIPrefix}, elem...)...)
}

// TokenSource resolves the bearer token for a credential scope. The scope is
// the name of the cookie holding the token pair, so admin and merchant sessions
// can coexist.
type TokenSource interface {
	AccessToken(cookieName string) (string, bool)
}

// CookieTokenSource reads the token pair JSON from a cookie store on every call.
type CookieTokenSource struct {
	Store cookies.Store
}

func (s CookieTokenSource) AccessToken(cookieName string) (string, bool) {
	pair, ok := cookies.Get[sessions.TokenPair](s.Store, cookieName)
	if !ok || !pair.Valid() {
		return "", false
	}
	return pair.AccessToken, true
}

// Client is the single boundary for outbound calls. It never retries and never
// coalesces concurrent calls; both are caller concerns.
type Client struct {
	http           *resty.Client
	tokens         TokenSource
	defaultCookie  string
	requestTimeout time.Duration
	uploadTimeout  time.Duration
	newRequestID   func() string
	logger         zerolog.Logger
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithBaseURL overrides the environment-selected base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.http.SetBaseURL(baseURL)
	}
}

func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.http.SetTransport(rt)
	}
}

func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) {
		if tokens != nil {
			c.tokens = tokens
		}
	}
}

// WithDefaultCookie sets the credential scope used when a call names none.
func WithDefaultCookie(name string) Option {
	return func(c *Client) {
		c.defaultCookie = name
	}
}

func WithTimeouts(request, upload time.Duration) Option {
	return func(c *Client) {
		c.requestTimeout = request
		c.uploadTimeout = upload
	}
}

// WithRequestIDFunc sets the X-Request-ID generator (primarily for testing)
func WithRequestIDFunc(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.newRequestID = fn
		}
	}
}

func New(cfg config.APIConfig, store cookies.Store, options ...Option) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("[NewClient] config is required")
	}
	if store == nil {
		return nil, errors.New("[NewClient] cookie store is required")
	}

	c := &Client{
		http: resty.New().
			SetBaseURL(cfg.GetBaseURL()).
			SetRetryCount(0).
			SetHeader("Accept", "application/json"),
		tokens:         CookieTokenSource{Store: store},
		requestTimeout: cfg.GetRequestTimeout(),
		uploadTimeout:  cfg.GetUploadTimeout(),
		newRequestID:   uuid.NewString,
		logger:         log.Logger,
	}
	for _, opt := range options {
		opt(c)
	}
	c.http.SetLogger(restyLogger{logger: c.logger})
	return c, nil
}

// BaseURL returns the origin requests are sent to.
func (c *Client) BaseURL() string {
	return c.http.BaseURL
}

// Request describes a JSON call. CookieName selects the credential scope.
type Request struct {
	Method     string
	Path       string
	Query      url.Values
	Body       any
	Headers    map[string]string
	CookieName string
}

// Do sends req and decodes the envelope into T.
func Do[T any](ctx context.Context, c *Client, req Request) (*Envelope[T], error) {
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	ctx, cancel := withTimeout(ctx, c.requestTimeout)
	defer cancel()

	r := c.newRequest(ctx, req.CookieName)
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.Body != nil {
		r.SetHeader("Content-Type", "application/json").SetBody(req.Body)
	}
	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}

	resp, err := r.Execute(req.Method, req.Path)
	return decode[T](c, req.Method, req.Path, resp, err)
}

func Get[T any](ctx context.Context, c *Client, path string, query url.Values, cookieName string) (*Envelope[T], error) {
	return Do[T](ctx, c, Request{Method: http.MethodGet, Path: path, Query: query, CookieName: cookieName})
}

func Post[T any](ctx context.Context, c *Client, path string, body any, cookieName string) (*Envelope[T], error) {
	return Do[T](ctx, c, Request{Method: http.MethodPost, Path: path, Body: body, CookieName: cookieName})
}

func Put[T any](ctx context.Context, c *Client, path string, body any, cookieName string) (*Envelope[T], error) {
	return Do[T](ctx, c, Request{Method: http.MethodPut, Path: path, Body: body, CookieName: cookieName})
}

func Patch[T any](ctx context.Context, c *Client, path string, body any, cookieName string) (*Envelope[T], error) {
	return Do[T](ctx, c, Request{Method: http.MethodPatch, Path: path, Body: body, CookieName: cookieName})
}

func Delete[T any](ctx context.Context, c *Client, path string, cookieName string) (*Envelope[T], error) {
	return Do[T](ctx, c, Request{Method: http.MethodDelete, Path: path, CookieName: cookieName})
}

// File is a single binary payload for Upload.
type File struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// Upload posts file as multipart form data with the resolved bearer token.
func Upload[T any](ctx context.Context, c *Client, path string, file File, cookieName string) (*Envelope[T], error) {
	if file.Reader == nil {
		return nil, fmt.Errorf("upload %s: file reader is required: %w", path, apperrors.ErrInvalidInput)
	}
	name := file.Name
	if name == "" {
		name = "upload"
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ctx, cancel := withTimeout(ctx, c.uploadTimeout)
	defer cancel()

	resp, err := c.newRequest(ctx, cookieName).
		SetMultipartField(UploadField, name, contentType, file.Reader).
		Post(path)
	return decode[T](c, http.MethodPost, path, resp, err)
}

func (c *Client) newRequest(ctx context.Context, cookieName string) *resty.Request {
	r := c.http.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, c.newRequestID())

	if cookieName == "" {
		cookieName = c.defaultCookie
	}
	if cookieName != "" {
		if token, ok := c.tokens.AccessToken(cookieName); ok {
			r.SetAuthToken(token)
		}
	}
	return r
}

// restyLogger routes resty's own diagnostics through zerolog.
type restyLogger struct {
	logger zerolog.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.logger.Error().Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.logger.Warn().Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.logger.Debug().Msgf(format, v...)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// decode turns a resty outcome into an envelope or a typed failure.
func decode[T any](c *Client, method, path string, resp *resty.Response, err error) (*Envelope[T], error) {
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("method", method).
			Str("path", path).
			Msg("api call failed before a response was received")
		return nil, &TransportError{Method: method, URL: path, Err: err}
	}

	status := resp.StatusCode()
	logEvent := c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", status).
		Dur("elapsed", resp.Time())

	env := &Envelope[T]{}
	body := resp.Body()
	var decodeErr error
	if len(body) == 0 {
		decodeErr = apperrors.ErrInvalidEnvelope
	} else {
		decodeErr = json.Unmarshal(body, env)
	}

	if !resp.IsSuccess() {
		appErr := &ApplicationError{Message: http.StatusText(status), StatusCode: status}
		if decodeErr == nil {
			if env.Message != "" {
				appErr.Message = env.Message
			}
			if env.StatusCode != 0 {
				appErr.StatusCode = env.StatusCode
			}
		}
		logEvent.Str("message", appErr.Message).Msg("api call rejected")
		return nil, appErr
	}

	if decodeErr != nil {
		if status == http.StatusNoContent {
			logEvent.Msg("api call succeeded")
			return &Envelope[T]{Status: true, StatusCode: status}, nil
		}
		logEvent.Err(decodeErr).Msg("api call returned an unreadable envelope")
		wrapped := decodeErr
		if !errors.Is(decodeErr, apperrors.ErrInvalidEnvelope) {
			wrapped = fmt.Errorf("%w: %v", apperrors.ErrInvalidEnvelope, decodeErr)
		}
		return nil, &ApplicationError{
			Message:    apperrors.ErrInvalidEnvelope.Error(),
			StatusCode: status,
			Err:        wrapped,
		}
	}

	if !env.Status || env.Error {
		appErr := &ApplicationError{Message: env.Message, StatusCode: env.StatusCode}
		if appErr.StatusCode == 0 {
			appErr.StatusCode = status
		}
		logEvent.Str("message", appErr.Message).Msg("api call rejected")
		return nil, appErr
	}

	logEvent.Msg("api call succeeded")
	return env, nil
}
