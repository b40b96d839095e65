// Package metrics exposes Prometheus instrumentation for the watcher.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tranco_watch"

// List outcomes recorded by ListProcessed.
const (
	ListProcessed = "processed"
	ListSkipped   = "skipped"
	ListFailed    = "failed"
)

// Metrics holds the collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests     *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	lists           *prometheus.CounterVec
	rowsScanned     prometheus.Counter
	eventsPublished *prometheus.CounterVec
	watchedRank     *prometheus.GaugeVec
}

// New registers the collectors on a dedicated registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// apiRequests counts transport round trips by kind and status class.
		apiRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Total number of requests sent to the Tranco service",
		}, []string{"kind", "status"}),

		apiDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Time until response headers are received from the Tranco service (in seconds)",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),

		lists: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lists_total",
			Help:      "Tranco lists handled by the watcher, by outcome",
		}, []string{"outcome"}),

		rowsScanned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "list_rows_scanned_total",
			Help:      "CSV rows read from downloaded lists",
		}),

		eventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Rank events handed to publishers, by outcome",
		}, []string{"outcome"}),

		// watchedRank is 0 when the domain was absent from the latest list.
		watchedRank: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "watched_domain_rank",
			Help:      "Latest observed rank of each watched domain",
		}, []string{"watch_id", "domain"}),
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRequest records one transport round trip. code is the HTTP status,
// or 0 when the request failed before a response arrived.
func (m *Metrics) ObserveRequest(kind string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.apiRequests.WithLabelValues(kind, statusClass(code)).Inc()
	m.apiDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
}

// ListHandled records the outcome of a list pass and the rows it read.
func (m *Metrics) ListHandled(outcome string, rows int) {
	if m == nil {
		return
	}
	m.lists.WithLabelValues(outcome).Inc()
	if rows > 0 {
		m.rowsScanned.Add(float64(rows))
	}
}

// EventPublished records one event delivery attempt across the fanout.
func (m *Metrics) EventPublished(err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.eventsPublished.WithLabelValues(outcome).Inc()
}

// SetRank records the latest rank seen for a watched domain.
func (m *Metrics) SetRank(watchID, domain string, rank uint64) {
	if m == nil {
		return
	}
	m.watchedRank.WithLabelValues(watchID, domain).Set(float64(rank))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Serve exposes /metrics on addr until ctx is cancelled.
func (m *Metrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func statusClass(code int) string {
	if code <= 0 {
		return "error"
	}
	return strconv.Itoa(code/100) + "xx"
}
