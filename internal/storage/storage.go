// Package storage remembers which Tranco lists were already processed.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// ListRecord summarizes one processed list.
type ListRecord struct {
	ListID      string    `json:"list_id"`
	CreatedOn   string    `json:"created_on"`
	Rows        int       `json:"rows"`
	Matches     int       `json:"matches"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Store tracks processed lists.
type Store interface {
	Close() error
	SeenList(id string) (bool, error)
	MarkList(rec ListRecord) error
	Recent(limit int) ([]ListRecord, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	ListTTL         time.Duration
	CleanupInterval time.Duration
}

const (
	defaultListTTL         = 30 * 24 * time.Hour
	defaultCleanupInterval = 24 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.ListTTL <= 0 {
		opts.ListTTL = defaultListTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

type noopStore struct{}

func (noopStore) Close() error                     { return nil }
func (noopStore) SeenList(string) (bool, error)    { return false, nil }
func (noopStore) MarkList(ListRecord) error        { return nil }
func (noopStore) Recent(int) ([]ListRecord, error) { return nil, nil }
