package tranco

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/Adda-Baaj/tranco-watch/pkg/httpclient"
)

type fakeResponse struct {
	body       []byte
	statusCode int
}

func (f fakeResponse) Body() []byte    { return f.body }
func (f fakeResponse) StatusCode() int { return f.statusCode }

type fakeStream struct {
	body       io.ReadCloser
	statusCode int
}

func (f fakeStream) StatusCode() int        { return f.statusCode }
func (f fakeStream) RawBody() io.ReadCloser { return f.body }

type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

// fakeHTTPClient returns canned responses per URL and records every call.
type fakeHTTPClient struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	streams   map[string]fakeResponse
	bodies    []*trackingBody
	err       error
	calls     []string
	headers   []map[string]string
}

func (f *fakeHTTPClient) Get(_ context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	f.headers = append(f.headers, headers)
	if f.err != nil {
		return nil, f.err
	}
	resp, ok := f.responses[url]
	if !ok {
		return fakeResponse{body: []byte(`{"error":"not found"}`), statusCode: 404}, nil
	}
	return resp, nil
}

func (f *fakeHTTPClient) Stream(_ context.Context, url string, _ map[string]string) (httpclient.StreamResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if f.err != nil {
		return nil, f.err
	}
	resp, ok := f.streams[url]
	if !ok {
		return nil, errors.New("connection refused")
	}
	body := &trackingBody{Reader: strings.NewReader(string(resp.body))}
	f.bodies = append(f.bodies, body)
	return fakeStream{body: body, statusCode: resp.statusCode}, nil
}
