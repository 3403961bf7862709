// Package esi provides an HTTP client and endpoint wrappers for the EVE
// Online ESI API.
package esi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/evetools/esi-cli/internal/config"
	"github.com/evetools/esi-cli/internal/output"
	"github.com/evetools/esi-cli/internal/version"
)

// DefaultVersion is the ESI route version used unless a call overrides it.
const DefaultVersion = "latest"

// rateLimitBackoff is used when a throttling response carries no
// Retry-After header.
const rateLimitBackoff = 1 * time.Second

// TokenProvider resolves a bearer token for a character. auth.Manager
// implements it; tests substitute fakes.
type TokenProvider interface {
	AccessToken(ctx context.Context, characterID int64) (string, error)
}

// Client is an HTTP client for the ESI API.
type Client struct {
	httpClient *http.Client
	tokens     TokenProvider
	baseURL    string
	datasource string
	userAgent  string
}

// Response wraps an ESI response.
type Response struct {
	Data       json.RawMessage
	StatusCode int
	Headers    http.Header
}

// UnmarshalData unmarshals the response body into the given value.
func (r *Response) UnmarshalData(v any) error {
	return json.Unmarshal(r.Data, v)
}

// Pages returns the X-Pages header for paginated routes, defaulting to 1.
func (r *Response) Pages() int {
	if n, err := strconv.Atoi(r.Headers.Get("X-Pages")); err == nil && n > 0 {
		return n
	}
	return 1
}

// NewClient creates an ESI client. A nil TokenProvider restricts the client
// to public endpoints.
func NewClient(cfg *config.Config, tokens TokenProvider) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		tokens:     tokens,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		datasource: cfg.Datasource,
		userAgent:  version.UserAgent(),
	}
}

// RequestOption customizes a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	characterID int64
	params      url.Values
	version     string
}

// WithCharacter authenticates the request as the given character.
func WithCharacter(characterID int64) RequestOption {
	return func(o *requestOptions) { o.characterID = characterID }
}

// WithParams adds query parameters.
func WithParams(params url.Values) RequestOption {
	return func(o *requestOptions) {
		for key, vals := range params {
			for _, v := range vals {
				o.params.Add(key, v)
			}
		}
	}
}

// WithPage requests a specific page of a paginated route.
func WithPage(page int) RequestOption {
	return func(o *requestOptions) {
		if page > 0 {
			o.params.Set("page", strconv.Itoa(page))
		}
	}
}

// WithVersion overrides the route version (default "latest").
func WithVersion(v string) RequestOption {
	return func(o *requestOptions) { o.version = v }
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil, opts)
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPost, path, body, opts)
}

// Put performs a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodPut, path, body, opts)
}

// Delete performs a DELETE request. ESI allows JSON bodies on some DELETE
// routes (e.g. contact removal), so one may be supplied.
func (c *Client) Delete(ctx context.Context, path string, body any, opts ...RequestOption) (*Response, error) {
	return c.do(ctx, http.MethodDelete, path, body, opts)
}

func (c *Client) do(ctx context.Context, method, path string, body any, opts []RequestOption) (*Response, error) {
	ro := &requestOptions{
		params:  url.Values{},
		version: DefaultVersion,
	}
	for _, opt := range opts {
		opt(ro)
	}
	if ro.params.Get("datasource") == "" {
		ro.params.Set("datasource", c.datasource)
	}

	reqURL, err := c.buildURL(path, ro)
	if err != nil {
		return nil, err
	}

	var bodyBytes []byte
	if body != nil {
		if bodyBytes, err = json.Marshal(body); err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
	}

	// At most one automatic retry, and only for throttling responses.
	resp, err := c.send(ctx, method, reqURL, bodyBytes, ro.characterID)
	if err == nil {
		return resp, nil
	}

	apiErr := output.AsError(err)
	if apiErr.Code != output.CodeRateLimit {
		return nil, err
	}

	delay := rateLimitBackoff
	if apiErr.RetryAfter > 0 {
		delay = time.Duration(apiErr.RetryAfter) * time.Second
	}
	log.Debugf("rate limited on %s %s, retrying once in %v", method, path, delay)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(delay):
	}
	return c.send(ctx, method, reqURL, bodyBytes, ro.characterID)
}

func (c *Client) send(ctx context.Context, method, reqURL string, body []byte, characterID int64) (*Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = strings.NewReader(string(body))
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if characterID != 0 {
		if c.tokens == nil {
			return nil, output.ErrAuth("No authenticator configured for authenticated request")
		}
		token, err := c.tokens.AccessToken(ctx, characterID)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, output.ErrTimeout(err)
		}
		return nil, output.ErrNetwork(err)
	}
	defer resp.Body.Close()

	logErrorLimit(resp.Header)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}
		return &Response{
			Data:       respBody,
			StatusCode: resp.StatusCode,
			Headers:    resp.Header,
		}, nil

	case resp.StatusCode == http.StatusNotModified:
		return &Response{StatusCode: resp.StatusCode, Headers: resp.Header}, nil

	case resp.StatusCode == http.StatusUnauthorized:
		return nil, output.ErrAuthStatus(resp.StatusCode, "ESI authentication failed")

	case resp.StatusCode == http.StatusForbidden:
		return nil, output.ErrAuthStatus(resp.StatusCode, "Access denied: "+errorMessage(resp.Body, "missing scope or role"))

	case resp.StatusCode == 420 || resp.StatusCode == http.StatusTooManyRequests:
		return nil, output.ErrRateLimit(retryAfterSeconds(resp.Header))

	case resp.StatusCode >= 500:
		return nil, output.ErrServer(resp.StatusCode, fmt.Sprintf("ESI server error (%d)", resp.StatusCode))

	default:
		msg := errorMessage(resp.Body, fmt.Sprintf("Request failed (HTTP %d)", resp.StatusCode))
		return nil, output.ErrAPI(resp.StatusCode, msg)
	}
}

func (c *Client) buildURL(path string, ro *requestOptions) (string, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u, err := url.Parse(c.baseURL + "/" + ro.version + path)
	if err != nil {
		return "", err
	}
	// Query params embedded in the path (the raw api command's only way to
	// pass them) override per-request options and defaults.
	for key, vals := range u.Query() {
		ro.params.Del(key)
		for _, v := range vals {
			ro.params.Add(key, v)
		}
	}
	u.RawQuery = ro.params.Encode()
	return u.String(), nil
}

// errorMessage extracts ESI's {"error": "..."} body, falling back to the
// given default.
func errorMessage(body io.Reader, fallback string) string {
	data, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return fallback
	}
	var esiErr struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &esiErr) == nil && esiErr.Error != "" {
		return esiErr.Error
	}
	return fallback
}

// retryAfterSeconds parses throttling headers: Retry-After for 429, the ESI
// error-limit window for 420.
func retryAfterSeconds(h http.Header) int {
	if s, err := strconv.Atoi(h.Get("Retry-After")); err == nil && s > 0 {
		return s
	}
	if s, err := strconv.Atoi(h.Get("X-ESI-Error-Limit-Reset")); err == nil && s > 0 {
		return s
	}
	return 0
}

func logErrorLimit(h http.Header) {
	if remain := h.Get("X-ESI-Error-Limit-Remain"); remain != "" {
		log.Debugf("ESI error limit remaining %s, resets in %ss", remain, h.Get("X-ESI-Error-Limit-Reset"))
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
