package httpclient

import (
	"context"
	"io"
)

// Response is a minimal HTTP response contract for fully buffered bodies.
type Response interface {
	Body() []byte
	StatusCode() int
}

// StreamResponse exposes an unread response body. Callers must close RawBody.
type StreamResponse interface {
	StatusCode() int
	RawBody() io.ReadCloser
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
	Stream(ctx context.Context, url string, headers map[string]string) (StreamResponse, error)
}

// IsSuccess reports whether code is a 2xx status.
func IsSuccess(code int) bool {
	return code >= 200 && code <= 299
}
