// Package http implements the HTTP transport for the content API client:
// bearer authentication, JSON encoding, structured error mapping, and
// opt-in retries.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/cmsflow-io/strapi/internal/constants"
	"github.com/cmsflow-io/strapi/pkg/strapi"
)

const defaultUserAgent = "strapi-go-client/1.0"

// Request is an HTTP request to the API.
type Request struct {
	Method string
	Path   string

	// Query is the pre-encoded query string, with or without a leading
	// "?". Bracket-style keys are passed through verbatim.
	Query string

	Headers map[string]string

	// Body is JSON-encoded when non-nil.
	Body any
}

// Response is an HTTP response from the API.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client executes requests against one API origin.
type Client struct {
	baseURL    string
	tokens     *TokenStore
	httpClient *retryablehttp.Client
	userAgent  string
	logger     strapi.Logger
	debug      bool
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger strapi.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithRetryConfig enables transport-level retries on 5xx and 429
// responses.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithRequestTimeout bounds each request.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// NewClient creates a transport client for the given origin. A nil token
// store sends unauthenticated requests. Retries are off until
// WithRetryConfig enables them.
func NewClient(baseURL string, tokens *TokenStore, opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 0
	httpClient.RetryWaitMin = constants.DefaultRetryWaitMin
	httpClient.RetryWaitMax = constants.DefaultRetryWaitMax
	httpClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	httpClient.Logger = nil
	// Hand back the last response once retries are exhausted, so 5xx
	// bodies still map to APIError instead of a bare retry failure.
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: httpClient,
		userAgent:  defaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes a request. Transport failures return a TransportError.
// Responses with a status of 400 or above return the server's structured
// APIError when the body carries one, or a synthesized APIError otherwise;
// the Response is returned alongside either way.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	url := c.baseURL + req.Path
	if req.Query != "" {
		url += "?" + strings.TrimPrefix(req.Query, "?")
	}

	var body io.Reader

	if req.Body != nil {
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		body = bytes.NewReader(encoded)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, url, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		if token := c.tokens.Get(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	c.logRequest(req, url)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &strapi.TransportError{
			Op:  fmt.Sprintf("%s %s", req.Method, req.Path),
			Err: err,
		}
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &strapi.TransportError{
			Op:  fmt.Sprintf("%s %s", req.Method, req.Path),
			Err: err,
		}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       respBody,
	}

	c.logResponse(req, resp)

	if resp.StatusCode >= http.StatusBadRequest {
		return resp, c.responseError(resp)
	}

	return resp, nil
}

// responseError maps a non-2xx response to an APIError.
func (c *Client) responseError(resp *Response) error {
	if apiErr, ok := strapi.ParseErrorResponse(resp.Body); ok {
		return apiErr
	}

	return &strapi.APIError{
		Status:  resp.StatusCode,
		Name:    http.StatusText(resp.StatusCode),
		Message: strings.TrimSpace(string(resp.Body)),
	}
}

// Get performs a GET request. query is the pre-encoded query string.
func (c *Client) Get(ctx context.Context, path, query string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path, query string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Query: query, Body: body})
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path, query string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Query: query, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path, query string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path, Query: query})
}

func (c *Client) logRequest(req *Request, url string) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Request", map[string]any{
		"method": req.Method,
		"url":    url,
	})
}

func (c *Client) logResponse(req *Request, resp *Response) {
	if !c.debug || c.logger == nil {
		return
	}

	c.logger.Debug("HTTP Response", map[string]any{
		"method": req.Method,
		"path":   req.Path,
		"status": resp.StatusCode,
		"bytes":  len(resp.Body),
	})
}
