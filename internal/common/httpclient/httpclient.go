// Package httpclient is the gateway between CLI commands and the SecurePipe
// API. It builds authenticated JSON requests from a Configurator, sends them
// with a per-call timeout and classifies every failure into one of the error
// classes declared in errors.go. It never retries.
package httpclient

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

	"github.com/rs/zerolog/log"
	"github.com/securepipe/securepipe/internal/common/logtrace"
	"github.com/securepipe/securepipe/internal/common/uuid"
	"github.com/tidwall/gjson"
)

// DefaultTimeout bounds every request unless ClientOptions.Timeout is set.
const DefaultTimeout = 30 * time.Second

// Configurator provides the server URL and the optional bearer token.
type Configurator interface {
	GetServerURL() string
	GetToken() string
}

// StaticConfig is a Configurator with fixed values, used before a session
// exists (login) and in tests.
type StaticConfig struct {
	ServerURL string
	Token     string
}

func (s StaticConfig) GetServerURL() string { return s.ServerURL }
func (s StaticConfig) GetToken() string     { return s.Token }

// Client sends requests to the SecurePipe API.
type Client struct {
	config     Configurator
	httpClient *http.Client
	timeout    time.Duration
	userAgent  string
}

// ClientOptions contains options for configuring the client.
type ClientOptions struct {
	Timeout   time.Duration     // zero means DefaultTimeout
	Transport http.RoundTripper // nil means http.DefaultTransport
	UserAgent string
}

// NewClient creates a client for the given configuration. A nil config is
// allowed; every authenticated request then fails with ErrNotAuthenticated.
func NewClient(config Configurator, opts ...ClientOptions) *Client {
	var o ClientOptions
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.UserAgent == "" {
		o.UserAgent = "securepipe-cli"
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Transport: o.Transport},
		timeout:    o.Timeout,
		userAgent:  o.UserAgent,
	}
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// RequestOptions describes a single API call.
type RequestOptions struct {
	Method      string            // GET, POST, PUT, PATCH or DELETE
	Path        string            // appended verbatim to the server URL
	QueryParams map[string]string // optional
	Body        any               // optional; []byte and json.RawMessage are sent as is
}

// Response is an unclassified HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
	RequestID  string
}

var supportedMethods = map[string]bool{
	http.MethodGet:    true,
	http.MethodPost:   true,
	http.MethodPut:    true,
	http.MethodPatch:  true,
	http.MethodDelete: true,
}

// Request sends an authenticated request and returns the JSON payload. An
// empty response body yields "{}". HTTP 401 fails with ErrAuthenticationFailed;
// any other status from 400 up fails with ErrAPI carrying the status and the
// server's "detail" message when present.
func (c *Client) Request(ctx context.Context, opts RequestOptions) ([]byte, error) {
	resp, err := c.Do(ctx, opts)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, ErrAuthenticationFailed.Err().SetStatusCode(resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, apiError(resp.StatusCode, errorDetail(resp.Body))
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 {
		return []byte("{}"), nil
	}
	if !gjson.ValidBytes(body) {
		return nil, ErrRequestFailed.New("Request failed: response is not valid JSON")
	}
	return body, nil
}

// Do sends the request and returns the raw response without classifying the
// status code. Only configuration, method and transport failures are errors.
func (c *Client) Do(ctx context.Context, opts RequestOptions) (*Response, error) {
	if c.config == nil {
		return nil, ErrNotAuthenticated
	}

	method := strings.ToUpper(strings.TrimSpace(opts.Method))
	if !supportedMethods[method] {
		return nil, ErrUnsupportedMethod.New(fmt.Sprintf("Unsupported method: %s", opts.Method))
	}

	body, err := encodeBody(opts.Body)
	if err != nil {
		return nil, ErrRequestFailed.MsgErr(fmt.Sprintf("Request failed: %v", err), err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	target := buildURL(c.config.GetServerURL(), opts.Path, opts.QueryParams)
	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(body))
	if err != nil {
		return nil, ErrRequestFailed.MsgErr(fmt.Sprintf("Request failed: %v", err), err)
	}

	requestID := logtrace.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewRequestID()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if token := strings.TrimSpace(c.config.GetToken()); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	logger := log.With().Str("request_id", requestID).Str("method", method).Str("url", target).Logger()
	logger.Debug().Msg("sending request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("request failed")
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Debug().Err(err).Msg("failed to read response body")
		return nil, classifyTransportError(err)
	}

	logger.Debug().Int("status", resp.StatusCode).Dur("elapsed", time.Since(start)).Int("bytes", len(respBody)).Msg("received response")
	return &Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
		RequestID:  requestID,
	}, nil
}

func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		return json.Marshal(b)
	}
}

// buildURL concatenates base and path without normalizing slashes; the API
// distinguishes "/items/" from "/items".
func buildURL(base, path string, query map[string]string) string {
	u := base + path
	if len(query) == 0 {
		return u
	}
	q := url.Values{}
	for k, v := range query {
		q.Set(k, v)
	}
	sep := "?"
	if strings.Contains(u, "?") {
		sep = "&"
	}
	return u + sep + q.Encode()
}

// errorDetail extracts the server supplied "detail" from an error body.
func errorDetail(body []byte) string {
	if !gjson.ValidBytes(body) {
		return "API Error"
	}
	detail := gjson.GetBytes(body, "detail")
	switch {
	case !detail.Exists(), detail.Type == gjson.Null:
		return "API Error"
	case detail.Type == gjson.String:
		if detail.String() == "" {
			return "API Error"
		}
		return detail.String()
	default:
		return detail.Raw
	}
}
