package api

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
	"time"
)

const (
	apiPrefix            = "/wp-json/wp/v2"
	defaultTimeout       = 10 * time.Second
	defaultMaxConcurrent = 4
	defaultPageSize      = 10
	commentsPerPage      = 100
	userAgent            = "wpnews/1.0"
)

// Credentials authorizes write requests.
type Credentials interface {
	IsLoggedIn() bool
	Apply(req *http.Request)
}

type Options struct {
	PageSize      int
	MaxConcurrent int
	Timeout       time.Duration
	Credentials   Credentials
	HTTPClient    *http.Client
}

// Client talks to the WordPress REST API of one site.
type Client struct {
	http          *http.Client
	baseURL       string
	creds         Credentials
	pageSize      int
	maxConcurrent int
}

// NewClient creates a client for the site at siteURL.
func NewClient(siteURL string, opts Options) *Client {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		http:          hc,
		baseURL:       strings.TrimRight(siteURL, "/") + apiPrefix,
		creds:         opts.Credentials,
		pageSize:      opts.PageSize,
		maxConcurrent: opts.MaxConcurrent,
	}
}

// IsAuthenticated reports whether write requests will carry credentials.
func (c *Client) IsAuthenticated(context.Context) bool {
	return c.creds != nil && c.creds.IsLoggedIn()
}

// get fetches path and decodes the JSON response into dst.
func (c *Client) get(ctx context.Context, path string, query url.Values, dst interface{}) (http.Header, error) {
	return c.do(ctx, http.MethodGet, path, query, nil, dst)
}

// post sends body as JSON and decodes the response into dst.
func (c *Client) post(ctx context.Context, path string, body, dst interface{}) error {
	_, err := c.do(ctx, http.MethodPost, path, nil, body, dst)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dst interface{}) (http.Header, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.creds != nil && c.creds.IsLoggedIn() {
		c.creds.Apply(req)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.Header, parseError(resp)
	}

	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return nil, fmt.Errorf("decoding response from %s: %w", u, err)
		}
	}
	return resp.Header, nil
}

// Error is a non-2xx reply from the REST API.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d: %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
}

func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	e := &Error{Status: resp.StatusCode}
	var wpErr struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &wpErr) == nil && wpErr.Code != "" {
		e.Code, e.Message = wpErr.Code, wpErr.Message
	} else {
		e.Message = strings.TrimSpace(string(body))
	}
	return e
}

func totalPages(h http.Header) int {
	n, err := strconv.Atoi(h.Get("X-WP-TotalPages"))
	if err != nil {
		return 0
	}
	return n
}
