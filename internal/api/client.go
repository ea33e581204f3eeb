// Package api talks GraphQL over HTTP to the Cirrus CI endpoint. A Client owns one
// authenticated session and hides transient failures behind a bounded retry loop.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"git.home.luguber.info/inful/cirrusrun/internal/logfields"
	"git.home.luguber.info/inful/cirrusrun/internal/metrics"
	"git.home.luguber.info/inful/cirrusrun/internal/retry"
	"git.home.luguber.info/inful/cirrusrun/internal/version"
)

const (
	// DefaultURL is the public Cirrus CI GraphQL endpoint.
	DefaultURL = "https://api.cirrus-ci.com/graphql"

	// DefaultTimeout bounds every single HTTP request.
	DefaultTimeout = 30 * time.Second

	// coolDownPhrase is what the endpoint's front proxy says when it wants clients to back off.
	coolDownPhrase = "try again in 30 seconds"

	maxResponseBytes = 32 * 1024 * 1024
)

// Request is the JSON body of a GraphQL call.
type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors"`
}

// Client is an authenticated GraphQL session. It is immutable after New.
type Client struct {
	url        string
	host       string
	token      string
	userAgent  string
	httpClient *http.Client
	policy     retry.Policy
	clock      clockwork.Clock
	logger     *slog.Logger
	recorder   metrics.Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithURL points the client at another GraphQL endpoint.
func WithURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.url = u
		}
	}
}

// WithPolicy sets the default retry policy for every call.
func WithPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithClock injects the clock used for retry waits.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Client) {
		if r != nil {
			c.recorder = r
		}
	}
}

// New creates a client authenticated with token.
func New(token string, opts ...Option) (*Client, error) {
	c := &Client{
		url:        DefaultURL,
		token:      token,
		userAgent:  version.UserAgent(),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		policy:     retry.DefaultPolicy(),
		clock:      clockwork.NewRealClock(),
		logger:     slog.New(slog.DiscardHandler),
		recorder:   metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}

	u, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", c.url, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: scheme and host are required", c.url)
	}
	c.host = u.Scheme + "://" + u.Host

	if err := c.policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid retry policy: %w", err)
	}
	return c, nil
}

// Endpoint returns the GraphQL URL.
func (c *Client) Endpoint() string { return c.url }

// Host returns scheme and host of the endpoint, the base for non-GraphQL resources.
func (c *Client) Host() string { return c.host }

// CallOption adjusts the retry policy of a single call.
type CallOption func(*retry.Policy)

// WithRetries overrides the number of retries after the first failure.
func WithRetries(n int) CallOption {
	return func(p *retry.Policy) {
		if n >= 0 {
			p.MaxRetries = n
		}
	}
}

// WithDelay overrides the standard wait between attempts.
func WithDelay(d time.Duration) CallOption {
	return func(p *retry.Policy) {
		if d >= 0 {
			p.Delay = d
		}
	}
}

// Call performs one logical GraphQL call and returns the data payload.
//
// Any failed attempt is retried after the policy's delay until the retry budget is
// spent; then the last error is returned unchanged. An HTTP error whose body asks
// for a 30 second cool-down gets the extended delay instead, at most once per call.
func (c *Client) Call(ctx context.Context, query string, vars map[string]any, opts ...CallOption) (json.RawMessage, error) {
	policy := c.policy
	for _, opt := range opts {
		opt(&policy)
	}
	if vars == nil {
		vars = map[string]any{}
	}
	payload := Request{Query: strings.TrimSpace(query), Variables: vars}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode GraphQL request: %w", err)
	}

	failures := 0
	extendedUsed := false
	for {
		c.logger.Debug("Calling API", logfields.URL(c.url), logfields.Payload(payload))

		data, err := c.post(ctx, body)
		c.recorder.IncAPIAttempt(attemptResult(err))
		if err == nil {
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}

		failures++
		if policy.Exhausted(failures) {
			c.recorder.IncAPIRetryExhausted()
			return nil, err
		}

		delay, extended := policy.Backoff(asksForCoolDown(err), extendedUsed)
		if extended {
			extendedUsed = true
			c.recorder.IncAPIRetry(metrics.RetryExtended)
			c.logger.Info("API server asked for longer retry delay", logfields.Delay(delay))
		} else {
			c.recorder.IncAPIRetry(metrics.RetryStandard)
		}
		c.logger.Debug("Error when calling API, retrying",
			logfields.Attempt(failures), logfields.Delay(delay), logfields.Error(err))

		if err := c.wait(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// Do performs Call and decodes the data payload into out.
func (c *Client) Do(ctx context.Context, query string, vars map[string]any, out any, opts ...CallOption) error {
	data, err := c.Call(ctx, query, vars, opts...)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode GraphQL data: %w", err)
	}
	return nil
}

// Get performs a plain authenticated GET on the same session, without retries.
// The caller must close the response body.
func (c *Client) Get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build GET request: %w", err)
	}
	c.setHeaders(req)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", rawURL, err)
	}
	return resp, nil
}

func (c *Client) post(ctx context.Context, body []byte) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build POST request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", c.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response from %s: %w", c.url, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: c.url, Body: string(raw)}
	}

	var r response
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode response from %s: %w", c.url, err)
	}
	if len(r.Errors) > 0 {
		return nil, &APIError{Errors: r.Errors}
	}
	return r.Data, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
}

func (c *Client) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.clock.After(d):
		return nil
	}
}

func asksForCoolDown(err error) bool {
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		return false
	}
	return strings.Contains(strings.ToLower(httpErr.Body), coolDownPhrase)
}

func attemptResult(err error) metrics.AttemptResult {
	var httpErr *HTTPError
	var apiErr *APIError
	switch {
	case err == nil:
		return metrics.AttemptSuccess
	case errors.As(err, &httpErr):
		return metrics.AttemptHTTPError
	case errors.As(err, &apiErr):
		return metrics.AttemptAPIError
	default:
		return metrics.AttemptFailure
	}
}
