// Package watchlist loads the set of domains whose Tranco rank is tracked.
package watchlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Entry is a single watched domain.
type Entry struct {
	ID     string   `json:"id" yaml:"id"`
	Domain string   `json:"domain" yaml:"domain"`
	Labels []string `json:"labels,omitempty" yaml:"labels,omitempty"`
	// MaxRank, when non-zero, is the worst rank still considered in range.
	MaxRank uint64 `json:"max_rank,omitempty" yaml:"max_rank,omitempty"`
}

// WithinThreshold reports whether rank satisfies the entry's MaxRank. A zero
// rank means the domain was not listed.
func (e Entry) WithinThreshold(rank uint64) bool {
	if rank == 0 {
		return false
	}
	return e.MaxRank == 0 || rank <= e.MaxRank
}

type file struct {
	Watchlist []Entry `json:"watchlist" yaml:"watchlist"`
}

// Registry holds the loaded watchlist.
type Registry struct {
	mu       sync.RWMutex
	entries  []Entry
	byDomain map[string]Entry
}

// LoadRegistry loads the watchlist from a YAML/JSON file.
func LoadRegistry(path string) (*Registry, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("watchlist file path is empty")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open watchlist file: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read watchlist file: %w", err)
	}
	return Parse(raw, filepath.Ext(path))
}

// Parse decodes watchlist content. ext selects the decoder (".yaml", ".yml",
// ".json"); an empty ext tries each in turn.
func Parse(data []byte, ext string) (*Registry, error) {
	parsed, err := decode(data, ext)
	if err != nil {
		return nil, err
	}
	return NewRegistry(parsed.Watchlist)
}

// NewRegistry sanitizes and validates entries.
func NewRegistry(entries []Entry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, errors.New("watchlist contains no entries")
	}

	reg := &Registry{
		entries:  make([]Entry, len(entries)),
		byDomain: make(map[string]Entry, len(entries)),
	}
	ids := make(map[string]struct{}, len(entries))

	for i := range entries {
		e := sanitizeEntry(entries[i])
		if err := validateEntry(e); err != nil {
			return nil, fmt.Errorf("watchlist[%d]: %w", i, err)
		}
		if _, exists := ids[e.ID]; exists {
			return nil, fmt.Errorf("duplicate watchlist id %q", e.ID)
		}
		if _, exists := reg.byDomain[e.Domain]; exists {
			return nil, fmt.Errorf("duplicate watchlist domain %q", e.Domain)
		}
		ids[e.ID] = struct{}{}
		reg.entries[i] = e
		reg.byDomain[e.Domain] = e
	}
	return reg, nil
}

func decode(data []byte, ext string) (file, error) {
	ext = strings.ToLower(strings.TrimSpace(ext))

	decoders := []struct {
		name string
		ext  string
		fn   func([]byte, any) error
	}{
		{name: "yaml", ext: ".yaml", fn: yaml.Unmarshal},
		{name: "yaml", ext: ".yml", fn: yaml.Unmarshal},
		{name: "json", ext: ".json", fn: json.Unmarshal},
	}

	var errs []error
	for _, d := range decoders {
		if ext != "" && ext != d.ext {
			continue
		}
		var out file
		if err := d.fn(data, &out); err != nil {
			errs = append(errs, fmt.Errorf("decode %s watchlist: %w", d.name, err))
			continue
		}
		return out, nil
	}
	if len(errs) == 0 {
		return file{}, fmt.Errorf("watchlist file extension %q not recognized (expected YAML or JSON)", ext)
	}
	return file{}, errors.Join(errs...)
}

func sanitizeEntry(e Entry) Entry {
	e.ID = strings.TrimSpace(e.ID)
	e.Domain = NormalizeDomain(e.Domain)

	labels := make([]string, 0, len(e.Labels))
	for _, l := range e.Labels {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	if len(labels) == 0 {
		labels = nil
	}
	e.Labels = labels
	return e
}

func validateEntry(e Entry) error {
	if e.ID == "" {
		return errors.New("id is required")
	}
	if e.Domain == "" {
		return fmt.Errorf("domain is required for entry %q", e.ID)
	}
	if strings.ContainsAny(e.Domain, "/ ,") {
		return fmt.Errorf("domain %q for entry %q is not a bare host name", e.Domain, e.ID)
	}
	return nil
}

// NormalizeDomain lowercases a host name and drops surrounding whitespace and
// a trailing dot, matching the form used in Tranco lists.
func NormalizeDomain(domain string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
}

// All returns a copy of the entries in file order.
func (r *Registry) All() []Entry {
	if r == nil {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// ByDomain looks up an entry by domain, case-insensitively.
func (r *Registry) ByDomain(domain string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	domain = NormalizeDomain(domain)
	if domain == "" {
		return Entry{}, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byDomain[domain]
	return e, ok
}

// Len returns the number of watched domains.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
