package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/pesio-ai/erp-client/internal/errors"
	"github.com/pesio-ai/erp-client/internal/events"
	"github.com/pesio-ai/erp-client/internal/logger"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultRefreshPath = "/auth/refresh"
	requestIDHeader    = "X-Request-ID"
)

// TokenHolder is the session the client reads tokens from and writes
// refreshed tokens to
type TokenHolder interface {
	Token() string
	RefreshToken() string
	Set(ctx context.Context, token string) error
	SetRefreshToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Request describes one call to the backend
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Headers map[string]string
	// Body is sent as JSON. Ignored when Form is set.
	Body any
	// Form is sent as multipart/form-data.
	Form *FormData
	// NoRefresh disables the refresh-and-retry on 401. Used for login, where
	// a 401 means bad credentials.
	NoRefresh bool
	// NoAuth omits the bearer token.
	NoAuth bool
}

// FormData is a multipart body. Files hold their bytes so the body can be
// rebuilt for the single retry after a token refresh.
type FormData struct {
	Fields map[string]string
	Files  []FormFile
}

// FormFile is one file part of a multipart body
type FormFile struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

// Client issues authenticated requests against the ERP backend
type Client struct {
	http         *resty.Client
	session      TokenHolder
	events       events.Dispatcher
	refreshPath  string
	refreshGroup singleflight.Group
	timeout      time.Duration
	log          *logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
			c.http.SetTimeout(d)
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(log *logger.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithDispatcher sets where session-expiry events are sent
func WithDispatcher(d events.Dispatcher) Option {
	return func(c *Client) { c.events = d }
}

// WithRefreshPath overrides the token refresh endpoint
func WithRefreshPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.refreshPath = path
		}
	}
}

// NewClient creates a client for the backend at baseURL (including the /api
// prefix)
func NewClient(baseURL string, session TokenHolder, opts ...Option) *Client {
	jar, _ := cookiejar.New(nil)

	c := &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(defaultTimeout).
			SetCookieJar(jar).
			SetHeader("Accept", "application/json"),
		session:     session,
		events:      events.NewBus(),
		refreshPath: defaultRefreshPath,
		timeout:     defaultTimeout,
		log:         logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}
	c.http.SetLogger(restyLogger{log: c.log})

	return c
}

// Do executes req and decodes the envelope's data into out (which may be nil)
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	resp, err := c.execute(ctx, req, false)
	if err != nil {
		return err
	}
	return resp.decode(out)
}

// Get issues a GET request
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// Post issues a POST request with a JSON body
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put issues a PUT request with a JSON body
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Patch issues a PATCH request with a JSON body
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body}, out)
}

// Delete issues a DELETE request
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path}, out)
}

// PostForm issues a POST request with a multipart body
func (c *Client) PostForm(ctx context.Context, path string, form *FormData, out any) error {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Form: form}, out)
}

// execute sends req. On a first 401 the token is refreshed and the request
// repeated once with retried set, so a request is sent at most twice.
func (c *Client) execute(ctx context.Context, req *Request, retried bool) (*Response, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	requestID := uuid.NewString()
	sent := ""
	if !req.NoAuth {
		sent = c.session.Token()
	}
	r := c.build(ctx, req, requestID, sent)

	res, err := r.Execute(method, req.Path)
	if err != nil {
		c.log.Debug().Err(err).
			Str("request_id", requestID).
			Str("method", method).
			Str("path", req.Path).
			Msg("Request failed before a response")
		return nil, errors.Wrap(err, errors.ErrCodeNetwork, fmt.Sprintf("%s %s: %v", method, req.Path, err))
	}

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", req.Path).
		Int("status", res.StatusCode()).
		Dur("duration", res.Time()).
		Bool("retried", retried).
		Msg("Request completed")

	if res.StatusCode() == http.StatusUnauthorized && !retried && !req.NoRefresh {
		if _, err := c.refresh(ctx, sent); err != nil {
			return nil, err
		}
		return c.execute(ctx, req, true)
	}

	return parseResponse(res.StatusCode(), res.Header().Get("Content-Type"), res.Body())
}

func (c *Client) build(ctx context.Context, req *Request, requestID, token string) *resty.Request {
	r := c.http.R().
		SetContext(ctx).
		SetHeader(requestIDHeader, requestID)

	if token != "" {
		r.SetAuthToken(token)
	}
	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}

	switch {
	case req.Form != nil:
		// The multipart writer sets Content-Type with its boundary.
		r.SetMultipartFormData(req.Form.Fields)
		for _, f := range req.Form.Files {
			r.SetMultipartField(f.Field, f.FileName, f.ContentType, bytes.NewReader(f.Data))
		}
	case req.Body != nil:
		r.SetBody(req.Body)
	}

	return r
}

// tokenPayload is the data of a login or refresh response
type tokenPayload struct {
	AccessToken  string `json:"accessToken"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

func (t tokenPayload) access() string {
	if t.AccessToken != "" {
		return t.AccessToken
	}
	return t.Token
}

// refresh obtains a new access token after a 401 for the token sent.
// Concurrent callers share one refresh call, which runs detached from any one
// caller's context. When the backend rejects the refresh the session is
// cleared and an api-error event dispatched; a caller that gives up first
// gets a NETWORK error and leaves the session alone.
func (c *Client) refresh(ctx context.Context, sent string) (string, error) {
	// Another caller already replaced the token this request was sent with.
	if current := c.session.Token(); current != "" && current != sent {
		return current, nil
	}

	ch := c.refreshGroup.DoChan("refresh", func() (interface{}, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		token, err := c.requestToken(rctx)
		if err == nil {
			return token, nil
		}
		if errors.Is(err, errors.ErrCodeNetwork) {
			c.log.Warn().Err(err).Msg("Token refresh did not reach the backend")
			return "", err
		}
		c.expireSession(rctx, err)
		return "", errors.SessionExpired(err)
	})

	select {
	case <-ctx.Done():
		return "", errors.Wrap(ctx.Err(), errors.ErrCodeNetwork, fmt.Sprintf("token refresh interrupted: %v", ctx.Err()))
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) requestToken(ctx context.Context) (string, error) {
	req := &Request{Method: http.MethodPost, Path: c.refreshPath, NoRefresh: true, NoAuth: true}
	if rt := c.session.RefreshToken(); rt != "" {
		req.Body = map[string]string{"refreshToken": rt}
	}

	resp, err := c.execute(ctx, req, false)
	if err != nil {
		return "", err
	}

	var payload tokenPayload
	if err := resp.decode(&payload); err != nil {
		return "", err
	}
	token := payload.access()
	if token == "" {
		return "", errors.New(errors.ErrCodeUnauthorized, "refresh response carried no access token")
	}

	// The in-memory token is updated even when persisting fails.
	_ = c.session.Set(ctx, token)
	if payload.RefreshToken != "" {
		_ = c.session.SetRefreshToken(ctx, payload.RefreshToken)
	}

	c.log.Info().Msg("Access token refreshed")
	return token, nil
}

func (c *Client) expireSession(ctx context.Context, cause error) {
	c.log.Warn().Err(cause).Msg("Token refresh failed; session expired")

	if err := c.session.Clear(ctx); err != nil {
		c.log.Warn().Err(err).Msg("Failed to clear session after expiry")
	}

	if c.events != nil {
		expired := errors.SessionExpired(cause)
		c.events.Dispatch(ctx, events.Event{
			Name:    events.APIError,
			Code:    string(expired.Code),
			Message: expired.Message,
			Status:  expired.Status,
		})
	}
}

// StoreLogin saves the tokens of a login response into the session
func (c *Client) StoreLogin(ctx context.Context, data json.RawMessage) (string, error) {
	var payload tokenPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to decode login response")
	}
	token := payload.access()
	if token == "" {
		return "", errors.New(errors.ErrCodeUnauthorized, "login response carried no access token")
	}
	if err := c.session.Set(ctx, token); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to persist access token")
	}
	if err := c.session.SetRefreshToken(ctx, payload.RefreshToken); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to persist refresh token")
	}
	return token, nil
}

// ClearSession forgets the current session
func (c *Client) ClearSession(ctx context.Context) error {
	return c.session.Clear(ctx)
}

// restyLogger routes resty's own diagnostics through zerolog
type restyLogger struct {
	log *logger.Logger
}

func (l restyLogger) Errorf(format string, v ...interface{}) {
	l.log.Error().Msgf(format, v...)
}

func (l restyLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn().Msgf(format, v...)
}

func (l restyLogger) Debugf(format string, v ...interface{}) {
	l.log.Debug().Msgf(format, v...)
}
