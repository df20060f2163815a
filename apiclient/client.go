// Package apiclient talks to the BAY SA WARR REST API. Every request goes through a
// transport that adds the persisted bearer token and ends the session on a 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/jrsteele09/baysawarr-web/internal/errors"
	"github.com/jrsteele09/baysawarr-web/navigation"
	"github.com/jrsteele09/baysawarr-web/storage"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTimeout applies to ordinary API calls
	DefaultTimeout = 30 * time.Second
	// DefaultUploadTimeout applies to file uploads
	DefaultUploadTimeout = 2 * time.Minute

	contentTypeJSON = "application/json"
	maxErrorBody    = 64 << 10
)

// Client is the remote API client
type Client struct {
	baseURL string
	http    *http.Client
	upload  *http.Client

	Enrollments Resource[Enrollment]
	Products    Resource[Product]
	Blogs       Resource[Blog]
	Formations  Resource[Formation]
	Events      Resource[Event]
	Contacts    Resource[Contact]
}

type options struct {
	timeout       time.Duration
	uploadTimeout time.Duration
	base          http.RoundTripper
	logger        zerolog.Logger
	onInvalidate  func(path string)
}

// Option configures a Client
type Option func(*options)

// WithTimeout sets the timeout of ordinary calls
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithUploadTimeout sets the timeout of upload calls
func WithUploadTimeout(d time.Duration) Option {
	return func(o *options) { o.uploadTimeout = d }
}

// WithBaseTransport replaces the underlying round tripper (default http.DefaultTransport)
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.base = rt }
}

// WithLogger sets the logger used by the interceptors
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithInvalidationHook is called with the request path whenever a 401 ends the session
func WithInvalidationHook(fn func(path string)) Option {
	return func(o *options) { o.onInvalidate = fn }
}

// New creates a client for the API rooted at baseURL (e.g. "https://api.example.com/api").
// The persisted store supplies the bearer token and is cleared on 401; nav performs the
// redirect to the login page.
func New(baseURL string, persisted storage.Store, nav navigation.Navigator, opts ...Option) *Client {
	o := options{
		timeout:       DefaultTimeout,
		uploadTimeout: DefaultUploadTimeout,
		base:          http.DefaultTransport,
		logger:        log.Logger,
	}
	for _, opt := range opts {
		opt(&o)
	}

	transport := &sessionTransport{
		base:         o.base,
		store:        persisted,
		nav:          nav,
		logger:       o.logger,
		onInvalidate: o.onInvalidate,
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Transport: transport, Timeout: o.timeout},
		upload:  &http.Client{Transport: transport, Timeout: o.uploadTimeout},
	}
	c.Enrollments = Resource[Enrollment]{client: c, path: "/enrollments"}
	c.Products = Resource[Product]{client: c, path: "/products"}
	c.Blogs = Resource[Blog]{client: c, path: "/blogs"}
	c.Formations = Resource[Formation]{client: c, path: "/formations"}
	c.Events = Resource[Event]{client: c, path: "/events"}
	c.Contacts = Resource[Contact]{client: c, path: "/contacts"}
	return c
}

// envelope is the {"data": ...} wrapper used by every endpoint except login
type envelope[T any] struct {
	Data *T `json:"data"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("[apiclient newRequest] %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", contentTypeJSON)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// send executes req and decodes a 2xx body into out (which may be nil)
func (c *Client) send(hc *http.Client, req *http.Request, out any) error {
	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("[apiclient send] %s %s: %w: %w", req.Method, req.URL.Path, apperrors.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Method: req.Method, Path: req.URL.Path}
		var body errorBody
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody)); readErr == nil && json.Unmarshal(data, &body) == nil {
			apiErr.Message = body.text()
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("[apiclient send] decode %s %s: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// doJSON sends an optional JSON body and decodes the JSON response into out
func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("[apiclient doJSON] encode %s: %w", path, err)
		}
		body = bytes.NewReader(data)
		contentType = contentTypeJSON
	}
	req, err := c.newRequest(ctx, method, path, body, contentType)
	if err != nil {
		return err
	}
	return c.send(c.http, req, out)
}

// getData decodes a {"data": T} response; a missing data field is reported as nil
func getData[T any](ctx context.Context, c *Client, method, path string, in any) (*T, error) {
	var env envelope[T]
	if err := c.doJSON(ctx, method, path, in, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

func escape(id string) string {
	return url.PathEscape(id)
}
