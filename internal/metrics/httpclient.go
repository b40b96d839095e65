package metrics

import (
	"context"
	"time"

	"github.com/Adda-Baaj/tranco-watch/pkg/httpclient"
)

// Request kinds used as the "kind" label.
const (
	KindJSON     = "json"
	KindDownload = "download"
)

type instrumentedClient struct {
	next    httpclient.Client
	metrics *Metrics
	now     func() time.Time
}

// InstrumentClient wraps next so every round trip is recorded on m.
func InstrumentClient(next httpclient.Client, m *Metrics) httpclient.Client {
	if m == nil {
		return next
	}
	return &instrumentedClient{next: next, metrics: m, now: time.Now}
}

func (c *instrumentedClient) Get(ctx context.Context, url string, headers map[string]string) (httpclient.Response, error) {
	start := c.now()
	resp, err := c.next.Get(ctx, url, headers)
	code := 0
	if err == nil && resp != nil {
		code = resp.StatusCode()
	}
	c.metrics.ObserveRequest(KindJSON, code, c.now().Sub(start))
	return resp, err
}

func (c *instrumentedClient) Stream(ctx context.Context, url string, headers map[string]string) (httpclient.StreamResponse, error) {
	start := c.now()
	resp, err := c.next.Stream(ctx, url, headers)
	code := 0
	if err == nil && resp != nil {
		code = resp.StatusCode()
	}
	c.metrics.ObserveRequest(KindDownload, code, c.now().Sub(start))
	return resp, err
}
