package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Adda-Baaj/tranco-watch/internal/config"
	"github.com/Adda-Baaj/tranco-watch/internal/logger"
	"github.com/Adda-Baaj/tranco-watch/internal/metrics"
	"github.com/Adda-Baaj/tranco-watch/internal/storage"
	"github.com/Adda-Baaj/tranco-watch/internal/tracker"
	"github.com/Adda-Baaj/tranco-watch/pkg/httpclient"
	"github.com/Adda-Baaj/tranco-watch/pkg/publishers"
	"github.com/Adda-Baaj/tranco-watch/pkg/tranco"
	"github.com/Adda-Baaj/tranco-watch/pkg/watchlist"
)

// lookbackDays is how many earlier daily lists are tried when the current
// day's list cannot be fetched yet.
const lookbackDays = 1

// Watcher represents the rank watcher runtime. It polls the Tranco service
// for the daily list, hands it to the tracker and owns the lifetime of the
// store, publishers and metrics endpoint.
type Watcher struct {
	cfg          *config.Config
	client       *tranco.Client
	watchlist    *watchlist.Registry
	fanout       *publishers.Fanout
	tracker      *tracker.Service
	store        storage.Store
	metrics      *metrics.Metrics
	pollInterval time.Duration
	log          logger.Logger
	now          func() time.Time
}

// NewWatcher builds a watcher runtime from config files.
func NewWatcher(ctx context.Context, cfg *config.Config, log logger.Logger) (*Watcher, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	reg, err := watchlist.LoadRegistry(cfg.WatchlistFile)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}
	entries := reg.All()
	domains := make([]string, 0, len(entries))
	for _, e := range entries {
		domains = append(domains, e.Domain)
	}
	log.InfoObj("watchlist loaded", "watchlist_meta", map[string]any{
		"count":   len(domains),
		"domains": domains,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		ListTTL:         cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"list_ttl_seconds":         int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})
	if recent, err := store.Recent(1); err == nil && len(recent) > 0 {
		log.InfoObj("last processed list", "list_record", recent[0])
	}

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
	}

	transport := httpclient.NewRestyClient(cfg.HTTPTimeout).SetUserAgent(cfg.UserAgent)
	if logger.S != nil {
		transport.SetLogger(logger.S)
	}
	client := tranco.NewClient(
		tranco.WithHTTPClient(metrics.InstrumentClient(transport, m)),
		tranco.WithBaseURL(cfg.APIBaseURL),
		tranco.WithLogger(log),
	)

	var rec tracker.Recorder
	if m != nil {
		rec = m
	}

	return &Watcher{
		cfg:          cfg,
		client:       client,
		watchlist:    reg,
		fanout:       fanout,
		tracker:      tracker.NewService(client, fanout, log, store, rec),
		store:        store,
		metrics:      m,
		pollInterval: cfg.PollInterval,
		log:          log,
		now:          time.Now,
	}, nil
}

// Run polls until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w == nil || w.tracker == nil {
		return fmt.Errorf("watcher is not initialized")
	}
	defer w.close()

	if w.metrics != nil {
		go func() {
			w.log.InfoObj("metrics endpoint listening", "metrics_addr", w.cfg.MetricsAddr)
			if err := w.metrics.Serve(ctx, w.cfg.MetricsAddr); err != nil {
				w.log.ErrorObj("metrics endpoint failed", "error", err)
			}
		}()
	}

	w.log.InfoObj("watcher loop starting", "watcher_state", map[string]any{
		"watched_domains":  w.watchlist.Len(),
		"publishers_count": w.fanout.Size(),
		"poll_interval":    w.pollInterval.String(),
		"api_base_url":     w.client.BaseURL(),
	})

	if _, err := w.RunOnce(ctx); err != nil {
		w.log.ErrorObj("initial poll failed", "error", err)
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.InfoObj("watcher loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				w.log.ErrorObj("scheduled poll failed", "error", err)
			}
		}
	}
}

// RunOnce resolves the most recent daily list and processes it.
func (w *Watcher) RunOnce(ctx context.Context) (tracker.Result, error) {
	start := w.now()
	list, err := w.latestList(ctx, start.UTC())
	if err != nil {
		return tracker.Result{}, err
	}

	w.log.InfoObj("poll started", "poll_meta", map[string]any{
		"list_id":    list.ListID,
		"created_on": list.CreatedOn,
		"started_at": start.UTC(),
	})
	res, err := w.tracker.Process(ctx, list, w.watchlist.All())
	if err != nil {
		return res, err
	}
	w.log.InfoObj("poll completed", "poll_meta", map[string]any{
		"list_id":     res.ListID,
		"skip_reason": res.SkipReason,
		"elapsed_ms":  w.now().Sub(start).Milliseconds(),
	})
	return res, nil
}

// latestList fetches the descriptor for day, falling back to earlier days
// while the current one is not published yet.
func (w *Watcher) latestList(ctx context.Context, day time.Time) (tranco.ListsResponse, error) {
	var subdomains *bool
	if w.cfg.IncludeSubdomains {
		subdomains = tranco.Bool(true)
	}

	var errs []error
	for i := 0; i <= lookbackDays; i++ {
		list, err := w.client.ListForDate(ctx, day.AddDate(0, 0, -i), subdomains)
		if err == nil {
			return list, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	return tranco.ListsResponse{}, fmt.Errorf("resolve daily list: %w", errors.Join(errs...))
}

// close releases the store and publishers, logging any errors encountered.
func (w *Watcher) close() {
	if w == nil {
		return
	}
	if w.store != nil {
		if err := w.store.Close(); err != nil {
			w.log.ErrorObj("storage close failed", "error", err)
		}
	}
	if err := w.fanout.Close(); err != nil {
		w.log.ErrorObj("publishers close failed", "error", err)
	}
}
