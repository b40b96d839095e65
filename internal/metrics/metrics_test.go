package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Adda-Baaj/tranco-watch/pkg/httpclient"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type stubResponse struct{ code int }

func (r stubResponse) Body() []byte           { return nil }
func (r stubResponse) StatusCode() int        { return r.code }
func (r stubResponse) RawBody() io.ReadCloser { return io.NopCloser(strings.NewReader("")) }

type stubClient struct {
	code int
	err  error
}

func (s stubClient) Get(context.Context, string, map[string]string) (httpclient.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	return stubResponse{code: s.code}, nil
}

func (s stubClient) Stream(context.Context, string, map[string]string) (httpclient.StreamResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return stubResponse{code: s.code}, nil
}

func TestInstrumentClientCountsByStatusClass(t *testing.T) {
	m := New()

	ok := InstrumentClient(stubClient{code: http.StatusOK}, m)
	if _, err := ok.Get(context.Background(), "u", nil); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, err := ok.Stream(context.Background(), "u", nil); err != nil {
		t.Fatalf("Stream: %v", err)
	}

	missing := InstrumentClient(stubClient{code: http.StatusNotFound}, m)
	_, _ = missing.Get(context.Background(), "u", nil)

	broken := InstrumentClient(stubClient{err: errors.New("refused")}, m)
	_, _ = broken.Stream(context.Background(), "u", nil)

	checks := []struct {
		kind, status string
		want         float64
	}{
		{KindJSON, "2xx", 1},
		{KindJSON, "4xx", 1},
		{KindDownload, "2xx", 1},
		{KindDownload, "error", 1},
	}
	for _, c := range checks {
		if got := testutil.ToFloat64(m.apiRequests.WithLabelValues(c.kind, c.status)); got != c.want {
			t.Fatalf("api_requests_total{%s,%s} = %v, want %v", c.kind, c.status, got, c.want)
		}
	}
}

func TestInstrumentClientNilMetricsReturnsNext(t *testing.T) {
	next := stubClient{code: 200}
	if got := InstrumentClient(next, nil); got != httpclient.Client(next) {
		t.Fatalf("expected the unwrapped client")
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest(KindJSON, 200, 0)
	m.ListHandled(ListProcessed, 10)
	m.EventPublished(nil)
	m.SetRank("a", "a.com", 1)
	if m.Registry() != nil {
		t.Fatalf("nil metrics should have no registry")
	}
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ListHandled(ListProcessed, 3)
	m.ListHandled(ListSkipped, 0)
	m.EventPublished(nil)
	m.EventPublished(errors.New("x"))
	m.SetRank("search", "google.com", 1)

	if got := testutil.ToFloat64(m.rowsScanned); got != 3 {
		t.Fatalf("rows scanned = %v", got)
	}

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{
		`tranco_watch_lists_total{outcome="processed"} 1`,
		`tranco_watch_events_published_total{outcome="error"} 1`,
		`tranco_watch_watched_domain_rank{domain="google.com",watch_id="search"} 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}
