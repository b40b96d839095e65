// Package tranco is a client for the Tranco list API.
package tranco

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Adda-Baaj/tranco-watch/pkg/httpclient"
)

// DefaultBaseURL is the public Tranco API root.
const DefaultBaseURL = "https://tranco-list.eu/api"

const maxSnippetBytes = 512

// Client issues Tranco API calls. It holds no mutable state and is safe for
// concurrent use.
type Client struct {
	http    httpclient.Client
	baseURL string
	log     Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default resty-backed transport.
func WithHTTPClient(c httpclient.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithBaseURL points the client at another API root.
func WithBaseURL(base string) Option {
	return func(cl *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			cl.baseURL = base
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.log = l
		}
	}
}

// NewClient builds a client. Without WithHTTPClient it uses a resty transport
// with no client-side timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		log:     noopLogger{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = httpclient.NewRestyClient(0)
	}
	return c
}

// BaseURL returns the API root in use.
func (c *Client) BaseURL() string { return c.baseURL }

// Ranks lists the ranks of domain in the daily lists of (at least) the past 30 days.
func (c *Client) Ranks(ctx context.Context, domain string) (RanksResponse, error) {
	var out RanksResponse
	err := c.getJSON(ctx, "ranks", c.endpoint("ranks", "domain", domain), &out)
	return out, err
}

// List fetches the descriptor of the list with the given id.
func (c *Client) List(ctx context.Context, id string) (ListsResponse, error) {
	var out ListsResponse
	err := c.getJSON(ctx, "list", c.endpoint("lists", "id", id), &out)
	return out, err
}

// ListDate fetches the descriptor of the daily list generated on the given
// date. The subdomains query parameter is sent only when subdomains is non-nil.
func (c *Client) ListDate(ctx context.Context, year, month, day int, subdomains *bool) (ListsResponse, error) {
	stamp, err := listDateStamp(year, month, day)
	if err != nil {
		return ListsResponse{}, err
	}

	u := c.endpoint("lists", "date", stamp)
	if subdomains != nil {
		u += "?subdomains=" + strconv.FormatBool(*subdomains)
	}

	var out ListsResponse
	err = c.getJSON(ctx, "list_date", u, &out)
	return out, err
}

// ListForDate is ListDate for the calendar date of t in t's location.
func (c *Client) ListForDate(ctx context.Context, t time.Time, subdomains *bool) (ListsResponse, error) {
	y, m, d := t.Date()
	return c.ListDate(ctx, y, int(m), d, subdomains)
}

// Bool returns a pointer to b, for the optional ListDate argument.
func Bool(b bool) *bool { return &b }

func (c *Client) endpoint(segments ...string) string {
	var b strings.Builder
	b.WriteString(c.baseURL)
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func (c *Client) getJSON(ctx context.Context, op, u string, out any) error {
	c.log.DebugObj("tranco request", "tranco_request", map[string]any{
		"op":  op,
		"url": u,
	})

	resp, err := c.http.Get(ctx, u, map[string]string{"Accept": "application/json"})
	if err != nil {
		return &RequestError{Op: op, URL: u, Err: fmt.Errorf("GET %s: %w", u, err)}
	}

	code := resp.StatusCode()
	body := resp.Body()
	if !httpclient.IsSuccess(code) {
		c.log.WarnObj("tranco request rejected", "tranco_response", map[string]any{
			"op":     op,
			"url":    u,
			"status": code,
		})
		return &RequestError{
			Op:         op,
			URL:        u,
			StatusCode: code,
			Err:        fmt.Errorf("GET %s returned status %d body: %s", u, code, responseSnippet(body)),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &RequestError{Op: op, URL: u, StatusCode: code, Err: fmt.Errorf("decode response: %w", err)}
	}

	c.log.DebugObj("tranco response decoded", "tranco_response", map[string]any{
		"op":         op,
		"status":     code,
		"body_bytes": len(body),
	})
	return nil
}

// listDateStamp validates the calendar date and formats it as YYYYMMDD.
func listDateStamp(year, month, day int) (string, error) {
	if year < 1 || year > 9999 {
		return "", fmt.Errorf("%w: year %d out of range", ErrInvalidDate, year)
	}
	if month < 1 || month > 12 {
		return "", fmt.Errorf("%w: month %d out of range", ErrInvalidDate, month)
	}
	lastDay := time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day < 1 || day > lastDay {
		return "", fmt.Errorf("%w: day %d out of range for %04d-%02d", ErrInvalidDate, day, year, month)
	}
	return fmt.Sprintf("%04d%02d%02d", year, month, day), nil
}

func responseSnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxSnippetBytes {
		return s[:maxSnippetBytes] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
