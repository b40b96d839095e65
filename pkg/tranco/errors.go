package tranco

import (
	"errors"
	"fmt"
)

var (
	// ErrRequest marks transport failures: connection errors, non-2xx
	// statuses and undecodable metadata responses.
	ErrRequest = errors.New("request failed")
	// ErrReadLine marks an I/O failure while streaming a list body.
	ErrReadLine = errors.New("error reading line from csv")
	// ErrMissingRank marks a list line without a rank field.
	ErrMissingRank = errors.New("csv is missing rank")
	// ErrInvalidRank marks a list line whose rank is not an unsigned integer.
	ErrInvalidRank = errors.New("csv had invalid rank")
	// ErrMissingDomain marks a list line without a domain field.
	ErrMissingDomain = errors.New("csv is missing domain")
	// ErrInvalidDate is returned by ListDate before any request is issued.
	ErrInvalidDate = errors.New("invalid list date")
)

// RequestError is returned by Ranks, List and ListDate. It matches ErrRequest.
type RequestError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("tranco %s: %v: %v", e.Op, ErrRequest, e.Err)
}

func (e *RequestError) Unwrap() []error {
	return []error{ErrRequest, e.Err}
}

// DownloadError is returned while downloading or parsing a list. Kind is one
// of ErrRequest, ErrReadLine, ErrMissingRank, ErrInvalidRank or
// ErrMissingDomain; Line is 1-based and zero for transport failures.
type DownloadError struct {
	Kind error
	Line int
	Err  error
}

func (e *DownloadError) Error() string {
	msg := e.Kind.Error()
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return "tranco download_list: " + msg
}

func (e *DownloadError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
