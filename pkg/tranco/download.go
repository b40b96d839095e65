package tranco

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/Adda-Baaj/tranco-watch/pkg/httpclient"
)

const maxLineBytes = 1 << 20

// DownloadList downloads the list referenced by list and parses every line.
// The first malformed line aborts the whole download.
func (c *Client) DownloadList(ctx context.Context, list ListsResponse) ([]RankedDomain, error) {
	r, err := c.OpenList(ctx, list)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return collect(r)
}

// OpenList starts downloading the list referenced by list and returns a reader
// that parses it line by line. The caller must Close it.
func (c *Client) OpenList(ctx context.Context, list ListsResponse) (*ListReader, error) {
	u := strings.TrimSpace(list.Download)
	if u == "" {
		return nil, &DownloadError{Kind: ErrRequest, Err: fmt.Errorf("list %q has no download url", list.ListID)}
	}

	c.log.DebugObj("tranco list download", "tranco_request", map[string]any{
		"op":      "download_list",
		"list_id": list.ListID,
		"url":     u,
	})

	resp, err := c.http.Stream(ctx, u, nil)
	if err != nil {
		return nil, &DownloadError{Kind: ErrRequest, Err: fmt.Errorf("GET %s: %w", u, err)}
	}

	body := resp.RawBody()
	if code := resp.StatusCode(); !httpclient.IsSuccess(code) {
		snippet, _ := io.ReadAll(io.LimitReader(body, maxSnippetBytes+1))
		body.Close()
		return nil, &DownloadError{
			Kind: ErrRequest,
			Err:  fmt.Errorf("GET %s returned status %d body: %s", u, code, responseSnippet(snippet)),
		}
	}

	return NewListReader(body), nil
}

// ReadRankedDomains parses a whole list body held by r.
func ReadRankedDomains(r io.Reader) ([]RankedDomain, error) {
	return collect(NewListReader(r))
}

func collect(r *ListReader) ([]RankedDomain, error) {
	var out []RankedDomain
	for r.Next() {
		out = append(out, r.Record())
	}
	if err := r.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListReader pulls ranked domains from a list body one line at a time.
//
//	r, err := client.OpenList(ctx, list)
//	...
//	defer r.Close()
//	for r.Next() {
//		use(r.Record())
//	}
//	if err := r.Err(); err != nil { ... }
type ListReader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
	rec     RankedDomain
	err     error
}

// NewListReader wraps r. If r is an io.Closer, Close closes it.
func NewListReader(r io.Reader) *ListReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lr := &ListReader{scanner: sc}
	if c, ok := r.(io.Closer); ok {
		lr.closer = c
	}
	return lr
}

// Next advances to the next record. It returns false at the end of the body
// or on the first error.
func (r *ListReader) Next() bool {
	if r.err != nil {
		return false
	}
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			r.err = &DownloadError{Kind: ErrReadLine, Line: r.line + 1, Err: err}
		}
		return false
	}
	r.line++

	rec, err := ParseLine(r.scanner.Text())
	if err != nil {
		var de *DownloadError
		if errors.As(err, &de) {
			de.Line = r.line
		}
		r.err = err
		return false
	}
	r.rec = rec
	return true
}

// Record returns the record read by the last successful Next.
func (r *ListReader) Record() RankedDomain { return r.rec }

// Line returns the 1-based number of the last line read.
func (r *ListReader) Line() int { return r.line }

// Err returns the first error encountered.
func (r *ListReader) Err() error { return r.err }

// Close releases the underlying body.
func (r *ListReader) Close() error {
	if r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	return c.Close()
}

// ParseLine decodes one "rank,domain" line. Tokens after the domain are
// ignored and quoting is not supported.
func ParseLine(line string) (RankedDomain, error) {
	rankTok, rest, hasDomain := strings.Cut(line, ",")
	if rankTok == "" {
		return RankedDomain{}, &DownloadError{Kind: ErrMissingRank}
	}
	rank, err := strconv.ParseUint(rankTok, 10, 64)
	if err != nil {
		return RankedDomain{}, &DownloadError{Kind: ErrInvalidRank, Err: err}
	}
	if !hasDomain {
		return RankedDomain{}, &DownloadError{Kind: ErrMissingDomain}
	}
	domain, _, _ := strings.Cut(rest, ",")
	return RankedDomain{Rank: rank, Domain: domain}, nil
}
