// Package gh provides a REST client for the GitHub v3 API. It implements a
// deep module interface: each method takes plain inputs and returns either a
// decoded typed result or one of the errors in errors.go, so callers never
// touch HTTP themselves.
package gh

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/go-querystring/query"
	"golang.org/x/oauth2"

	"github.com/mfl/ghlite/internal/config"
	"github.com/mfl/ghlite/internal/domain"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 10 * time.Second

	acceptHeader     = "application/vnd.github+json"
	apiVersionHeader = "2022-11-28"
)

// perPage is the single-page fetch size. The client deliberately does not
// follow Link headers; 100 items per resource is the whole view.
const perPage = 100

// Client is an authenticated GitHub REST client. It is stateless apart from
// the rate-limit telemetry cached from the most recent response, and is safe
// for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	creds      config.Credentials

	mu   sync.Mutex
	rate domain.RateLimit
}

// Option configures a Client.
type Option func(*options)

type options struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// WithBaseURL points the client at a different API host. Used by tests.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = strings.TrimSuffix(u, "/") }
}

// WithTimeout bounds every request. The default is 10 seconds so a single
// unreachable host cannot stall a whole refresh.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client entirely. The caller
// then owns authentication and timeouts.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// NewClient creates a client for the given credentials. When a token is
// present the transport comes from oauth2, which injects the bearer
// Authorization header on every request.
func NewClient(creds config.Credentials, opts ...Option) *Client {
	o := options{baseURL: defaultBaseURL, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}

	httpClient := o.httpClient
	if httpClient == nil {
		if creds.Token != "" {
			ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.Token})
			httpClient = oauth2.NewClient(context.Background(), ts)
		} else {
			httpClient = &http.Client{}
		}
		httpClient.Timeout = o.timeout
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    o.baseURL,
		creds:      creds,
	}
}

// RateLimit returns the quota telemetry from the most recent response.
// Telemetry is displayed by the caller, never enforced here.
func (c *Client) RateLimit() domain.RateLimit {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rate
}

// endpoint joins validated path segments onto the base URL. Segments come
// from user input (owner, repo), so reject anything that would change the
// request shape rather than percent-escaping it into a surprise.
func (c *Client) endpoint(segments ...string) (string, error) {
	for _, s := range segments {
		if s == "" || strings.ContainsAny(s, "/?#% \t") {
			return "", fmt.Errorf("%w: bad path segment %q", ErrInvalidRequest, s)
		}
	}
	return c.baseURL + "/" + strings.Join(segments, "/"), nil
}

// splitFullName splits "owner/name" into its halves.
func splitFullName(fullName string) (owner, name string, err error) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", fmt.Errorf("%w: repository %q is not in owner/name form", ErrInvalidRequest, fullName)
	}
	return owner, name, nil
}

// do executes one API call: build the request from (method, url, listOpts,
// body), run it, map the outcome to the error taxonomy, and decode into out.
// listOpts is encoded to the query string with go-querystring so every
// operation translates options the same way. wantStatus is the single
// success code the operation accepts.
func (c *Client) do(ctx context.Context, method, url string, listOpts any, body any, wantStatus int, out any) error {
	if c.creds.Token == "" {
		return ErrNoCredentials
	}

	if listOpts != nil {
		values, err := query.Values(listOpts)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		if encoded := values.Encode(); encoded != "" {
			url += "?" + encoded
		}
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("X-GitHub-Api-Version", apiVersionHeader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	c.captureRateLimit(resp)

	if resp.StatusCode != wantStatus {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return &StatusError{StatusCode: resp.StatusCode}
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}

// captureRateLimit records the X-RateLimit-* telemetry headers, if present.
func (c *Client) captureRateLimit(resp *http.Response) {
	remaining := resp.Header.Get("X-RateLimit-Remaining")
	if remaining == "" {
		return
	}

	var rate domain.RateLimit
	rate.Remaining, _ = strconv.Atoi(remaining)
	rate.Limit, _ = strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))
	if reset, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
		rate.Reset = time.Unix(reset, 0)
	}

	c.mu.Lock()
	c.rate = rate
	c.mu.Unlock()
}
