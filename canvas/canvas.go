// Package canvas is a thin client for the Canvas LMS REST API, scoped to a
// single course. Every operation is one HTTP call, or a short sequence of
// calls when the response is paginated through the Link header.
package canvas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	apiPrefix = "/api/v1"

	// DefaultPerPage is what we ask Canvas for on paginated endpoints.
	DefaultPerPage = 100

	defaultTimeout = 30 * time.Second

	// Canvas meters requests against a leaky bucket, reported through the
	// X-Rate-Limit-Remaining header. When it runs low we hold off for a bit
	// instead of getting 403 Forbidden (Rate Limit Exceeded) replies.
	rateLimitLowWater = 50.0
	rateLimitBackoff  = 2 * time.Second

	defaultRequestsPerMinute = 60
	defaultBurst             = 10
)

type LoggerFn func(string, ...interface{})

// Config holds everything needed to talk to a Canvas instance.
type Config struct {
	// URL is the instance base, e.g. "https://qub.instructure.com".
	URL string
	// Token is a personal access token or an OAuth2 access token.
	Token string
	// Course is the Canvas course id all course-scoped calls operate on.
	Course int64

	// PerPage overrides DefaultPerPage when positive.
	PerPage int

	HTTPClient *http.Client

	LogFn LoggerFn
	ErrFn LoggerFn
}

// Client talks to a single Canvas course.
type Client struct {
	base    *url.URL
	token   string
	course  int64
	perPage int
	client  *http.Client

	limiter    *rate.Limiter
	mu         sync.Mutex
	deferUntil time.Time

	logFn LoggerFn
	errFn LoggerFn
}

// New validates the config and returns a client. No request is made here;
// use Self to check that the token actually works.
func New(c Config) (*Client, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("canvas URL is empty")
	}
	if c.Token == "" {
		return nil, fmt.Errorf("canvas access token is empty")
	}
	rawURL := strings.TrimSuffix(c.URL, "/")
	if !strings.Contains(rawURL, "://") {
		rawURL = "https://" + rawURL
	}
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid canvas URL %s: %w", c.URL, err)
	}
	perPage := c.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	cl := Client{
		base:    base,
		token:   c.Token,
		course:  c.Course,
		perPage: perPage,
		client:  httpClient,
		limiter: rate.NewLimiter(rate.Limit(defaultRequestsPerMinute/60.0), defaultBurst),
		logFn:   func(string, ...interface{}) {},
		errFn:   func(string, ...interface{}) {},
	}
	if c.LogFn != nil {
		cl.logFn = c.LogFn
	}
	if c.ErrFn != nil {
		cl.errFn = c.ErrFn
	}
	return &cl, nil
}

// Course returns the course id the client was configured with.
func (c *Client) Course() int64 {
	return c.course
}

// ContextCode is the course context identifier Canvas expects in calendar
// calls, e.g. "course_12345".
func (c *Client) ContextCode() string {
	return fmt.Sprintf("course_%d", c.course)
}

func (c *Client) coursePath(parts ...string) string {
	p := fmt.Sprintf("courses/%d", c.course)
	if len(parts) > 0 {
		p = p + "/" + strings.Join(parts, "/")
	}
	return p
}

// apiURL resolves a path relative to <base>/api/v1 and attaches the query.
func (c *Client) apiURL(path string, query url.Values) string {
	u := *c.base
	u.Path = apiPrefix + "/" + strings.TrimPrefix(path, "/")
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) newRequest(ctx context.Context, method, rawURL string, body interface{}) (*http.Request, error) {
	var rd io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("unable to encode request body: %w", err)
		}
		rd = bytes.NewReader(js)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do executes the request and decodes the response body into v when v is
// non-nil. Non 2xx statuses surface as *APIError.
func (c *Client) do(req *http.Request, v interface{}) (*http.Response, error) {
	resp, raw, err := c.exec(req)
	if err != nil {
		return resp, err
	}
	if v != nil {
		if err := json.Unmarshal(raw, v); err != nil {
			return resp, fmt.Errorf("unable to decode canvas response: %w", err)
		}
	}
	return resp, nil
}

func (c *Client) exec(req *http.Request) (*http.Response, []byte, error) {
	if err := c.throttle(req.Context()); err != nil {
		return nil, nil, err
	}
	c.logFn("%s %s", req.Method, req.URL)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	c.noteRateHeaders(resp)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp, nil, fmt.Errorf("unable to read canvas response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &APIError{StatusCode: resp.StatusCode, Status: resp.Status, Body: string(raw)}
	}
	return resp, raw, nil
}

// getPages follows the Link rel="next" chain, invoking page for every
// response body until Canvas stops handing out a next URL.
func (c *Client) getPages(ctx context.Context, path string, query url.Values, page func(raw []byte) error) error {
	if query == nil {
		query = url.Values{}
	}
	if query.Get("per_page") == "" {
		query.Set("per_page", strconv.Itoa(c.perPage))
	}
	next := c.apiURL(path, query)
	for next != "" {
		req, err := c.newRequest(ctx, http.MethodGet, next, nil)
		if err != nil {
			return err
		}
		resp, raw, err := c.exec(req)
		if err != nil {
			return err
		}
		if err := page(raw); err != nil {
			return err
		}
		next = nextLink(resp.Header.Get("Link"))
	}
	return nil
}

// nextLink pulls the rel="next" target out of a Link header, if any.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		pieces := strings.SplitN(part, ";", 2)
		if len(pieces) < 2 || !strings.Contains(pieces[1], `rel="next"`) {
			continue
		}
		return strings.Trim(strings.TrimSpace(pieces[0]), "<>")
	}
	return ""
}

func (c *Client) throttle(ctx context.Context) error {
	c.mu.Lock()
	until := c.deferUntil
	c.mu.Unlock()
	if now := time.Now(); now.Before(until) {
		t := time.NewTimer(until.Sub(now))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) noteRateHeaders(resp *http.Response) {
	remaining := resp.Header.Get("X-Rate-Limit-Remaining")
	if remaining == "" {
		return
	}
	left, err := strconv.ParseFloat(remaining, 64)
	if err != nil || left > rateLimitLowWater {
		return
	}
	c.logFn("rate limit bucket low (%s left), backing off", remaining)
	c.mu.Lock()
	if until := time.Now().Add(rateLimitBackoff); until.After(c.deferUntil) {
		c.deferUntil = until
	}
	c.mu.Unlock()
}

// Self fetches the profile of the token's owner. Useful for checking that
// a freshly obtained token is actually valid.
func (c *Client) Self(ctx context.Context) (*User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.apiURL("users/self", nil), nil)
	if err != nil {
		return nil, err
	}
	u := User{}
	if _, err = c.do(req, &u); err != nil {
		return nil, fmt.Errorf("unable to fetch own profile: %w", err)
	}
	return &u, nil
}

// APIError is a non 2xx reply from Canvas.
type APIError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("canvas request failed: %s: %s", e.Status, e.Body)
}
