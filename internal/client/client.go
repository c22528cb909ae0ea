// Package client is a typed Go client for the RPC demo server.
//
// Paths, request and response types come from the api package, so a
// renamed route or changed field breaks the client at compile time
// instead of at runtime.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/deppfellow/go-rpc-demo/internal/api"
	"github.com/deppfellow/go-rpc-demo/internal/errs"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
)

const defaultTimeout = 10 * time.Second

// APIError is returned for every non-2xx reply. Body holds the decoded
// error payload, including the per-field errors of a validation failure.
type APIError struct {
	StatusCode int
	Body       errs.HTTPError
}

func (e *APIError) Error() string {
	if len(e.Body.Errors) == 0 {
		return fmt.Sprintf("%d %s: %s", e.StatusCode, e.Body.Code, e.Body.Message)
	}
	return fmt.Sprintf("%d %s: %s (%s)", e.StatusCode, e.Body.Code, e.Body.Message, strings.Join(e.Body.FieldNames(), ", "))
}

// Client calls the demo procedures over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a client for the server at baseURL, e.g. "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base URL %q", baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Hello calls GET /hello.
func (c *Client) Hello(ctx context.Context) (api.HelloResponse, error) {
	var out api.HelloResponse
	err := c.do(ctx, http.MethodGet, api.PathHello, nil, nil, &out)
	return out, err
}

// Greet calls GET /greet?name=<name>.
func (c *Client) Greet(ctx context.Context, query api.GreetQuery) (api.GreetResponse, error) {
	var out api.GreetResponse
	err := c.do(ctx, http.MethodGet, api.PathGreet, url.Values{"name": {query.Name}}, nil, &out)
	return out, err
}

// Echo calls POST /echo.
func (c *Client) Echo(ctx context.Context, req api.EchoRequest) (api.EchoResponse, error) {
	var out api.EchoResponse
	err := c.do(ctx, http.MethodPost, api.PathEcho, nil, req, &out)
	return out, err
}

// Calculate calls POST /calculate. A division by zero comes back with a
// NaN Result.
func (c *Client) Calculate(ctx context.Context, req api.CalculationRequest) (api.CalculationResponse, error) {
	var out api.CalculationResponse
	err := c.do(ctx, http.MethodPost, api.PathCalculate, nil, req, &out)
	return out, err
}

// Status calls GET /status.
func (c *Client) Status(ctx context.Context) (api.StatusResponse, error) {
	var out api.StatusResponse
	err := c.do(ctx, http.MethodGet, api.PathStatus, nil, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	u := *c.baseURL
	u.Path += path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "encode %s %s request", method, path)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return errors.Wrapf(err, "build %s %s request", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "read %s %s response", method, path)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(raw, &apiErr.Body); err != nil {
			apiErr.Body = errs.HTTPError{
				Code:    errs.MakeUpperCaseWithUnderscores(http.StatusText(resp.StatusCode)),
				Message: strings.TrimSpace(string(raw)),
				Status:  resp.StatusCode,
			}
		}
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "decode %s %s response", method, path)
	}

	return nil
}
