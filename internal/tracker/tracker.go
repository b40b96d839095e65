// Package tracker matches downloaded Tranco lists against the watchlist.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adda-Baaj/tranco-watch/internal/logger"
	"github.com/Adda-Baaj/tranco-watch/internal/metrics"
	"github.com/Adda-Baaj/tranco-watch/internal/storage"
	"github.com/Adda-Baaj/tranco-watch/pkg/publishers"
	"github.com/Adda-Baaj/tranco-watch/pkg/tranco"
	"github.com/Adda-Baaj/tranco-watch/pkg/watchlist"
)

// Skip reasons reported in Result.
const (
	SkipNotReady = "not_ready"
	SkipSeen     = "already_processed"
)

// Result summarizes one Process call.
type Result struct {
	ListID     string
	SkipReason string
	Rows       int
	Matches    int
	Missing    int
	Published  int
}

// Skipped reports whether the list was left untouched.
func (r Result) Skipped() bool { return r.SkipReason != "" }

// Service coordinates list scanning, event publishing and bookkeeping.
type Service struct {
	source    ListSource
	publisher EventPublisher
	log       logger.Logger
	store     storage.Store
	recorder  Recorder
	now       func() time.Time
}

// NewService wires a tracker. store and rec may be nil.
func NewService(source ListSource, pub EventPublisher, log logger.Logger, store storage.Store, rec Recorder) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	if store == nil {
		store, _ = storage.NewStore("none", "", storage.Options{})
	}
	if rec == nil {
		rec = (*metrics.Metrics)(nil)
	}
	return &Service{
		source:    source,
		publisher: pub,
		log:       log,
		store:     store,
		recorder:  rec,
		now:       time.Now,
	}
}

// Process scans list for the watched entries and publishes one event per
// entry. Lists that are not ready or were already processed are skipped.
// Scanning stops as soon as every entry has been found.
func (s *Service) Process(ctx context.Context, list tranco.ListsResponse, entries []watchlist.Entry) (Result, error) {
	if s == nil || s.source == nil || s.publisher == nil {
		return Result{}, fmt.Errorf("tracker service is not initialized")
	}
	if len(entries) == 0 {
		return Result{}, fmt.Errorf("no watchlist entries to track")
	}

	res := Result{ListID: list.ListID}
	if !list.Ready() {
		res.SkipReason = SkipNotReady
		s.recorder.ListHandled(metrics.ListSkipped, 0)
		s.log.WarnObj("tranco list not ready", "list_state", map[string]any{
			"list_id":   list.ListID,
			"available": list.Available,
			"failed":    list.Failed,
		})
		return res, nil
	}

	seen, err := s.store.SeenList(list.ListID)
	if err != nil {
		s.log.WarnObj("list store lookup failed", "storage_error", map[string]any{
			"list_id": list.ListID,
			"error":   err.Error(),
		})
	}
	if seen {
		res.SkipReason = SkipSeen
		s.recorder.ListHandled(metrics.ListSkipped, 0)
		s.log.DebugObj("tranco list already processed", "list_id", list.ListID)
		return res, nil
	}

	ranks, rows, err := s.scan(ctx, list, entries)
	res.Rows = rows
	if err != nil {
		s.recorder.ListHandled(metrics.ListFailed, rows)
		return res, fmt.Errorf("scan list %s: %w", list.ListID, err)
	}

	var errs []error
	for _, e := range entries {
		rank := ranks[watchlist.NormalizeDomain(e.Domain)]
		if rank > 0 {
			res.Matches++
		} else {
			res.Missing++
		}
		s.recorder.SetRank(e.ID, e.Domain, rank)

		evt := publishers.NewEvent(list, e, rank)
		evt.CollectedAt = s.now().UTC()
		delivered, err := s.publisher.Publish(ctx, evt)
		s.recorder.EventPublished(err)
		if err != nil {
			errs = append(errs, fmt.Errorf("publish %s: %w", e.ID, err))
			continue
		}
		if delivered > 0 {
			res.Published++
		}
	}
	if len(errs) > 0 {
		s.recorder.ListHandled(metrics.ListFailed, rows)
		return res, errors.Join(errs...)
	}

	if err := s.store.MarkList(storage.ListRecord{
		ListID:      list.ListID,
		CreatedOn:   list.CreatedOn,
		Rows:        rows,
		Matches:     res.Matches,
		ProcessedAt: s.now().UTC(),
	}); err != nil {
		s.log.WarnObj("list store update failed", "storage_error", map[string]any{
			"list_id": list.ListID,
			"error":   err.Error(),
		})
	}

	s.recorder.ListHandled(metrics.ListProcessed, rows)
	s.log.InfoObj("tranco list processed", "list_result", map[string]any{
		"list_id":   list.ListID,
		"rows":      rows,
		"matches":   res.Matches,
		"missing":   res.Missing,
		"published": res.Published,
	})
	return res, nil
}

// scan streams the list and returns the rank of each watched domain found.
func (s *Service) scan(ctx context.Context, list tranco.ListsResponse, entries []watchlist.Entry) (map[string]uint64, int, error) {
	pending := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		pending[watchlist.NormalizeDomain(e.Domain)] = struct{}{}
	}
	found := make(map[string]uint64, len(entries))

	reader, err := s.source.OpenList(ctx, list)
	if err != nil {
		return nil, 0, err
	}
	defer reader.Close()

	rows := 0
	for len(pending) > 0 && reader.Next() {
		rows++
		rec := reader.Record()
		domain := watchlist.NormalizeDomain(rec.Domain)
		if _, ok := pending[domain]; !ok {
			continue
		}
		found[domain] = rec.Rank
		delete(pending, domain)
	}
	if err := reader.Err(); err != nil {
		return nil, rows, err
	}
	if err := ctx.Err(); err != nil {
		return nil, rows, err
	}
	return found, rows, nil
}
