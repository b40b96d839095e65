package tranco

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const sampleListJSON = `{
  "list_id": "LJL44",
  "available": true,
  "download": "https://tranco-list.eu/download/LJL44/1000000",
  "created_on": "2025-04-07T00:00:00",
  "configuration": {
    "providers": ["crux", "farsight", "majestic", "radar", "umbrella"],
    "startDate": "2025-03-08",
    "endDate": "2025-04-06",
    "combinationMethod": "dowdall",
    "listPrefix": "full",
    "filterPLD": "on"
  },
  "failed": false,
  "jobs_ahead": 0
}`

func TestRanksDecodesHistory(t *testing.T) {
	fake := &fakeHTTPClient{responses: map[string]fakeResponse{
		"https://tranco-list.eu/api/ranks/domain/google.com": {
			statusCode: 200,
			body:       []byte(`{"ranks":[{"date":"2025-04-07","rank":1},{"date":"2025-04-06","rank":2}]}`),
		},
	}}
	client := NewClient(WithHTTPClient(fake))

	got, err := client.Ranks(context.Background(), "google.com")
	if err != nil {
		t.Fatalf("Ranks: %v", err)
	}
	want := RanksResponse{Ranks: []DomainRank{{Date: "2025-04-07", Rank: 1}, {Date: "2025-04-06", Rank: 2}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ranks mismatch (-want +got):\n%s", diff)
	}
	if accept := fake.headers[0]["Accept"]; accept != "application/json" {
		t.Fatalf("Accept header = %q", accept)
	}
}

func TestListDecodesDescriptor(t *testing.T) {
	fake := &fakeHTTPClient{responses: map[string]fakeResponse{
		"https://tranco-list.eu/api/lists/id/LJL44": {statusCode: 200, body: []byte(sampleListJSON)},
	}}
	client := NewClient(WithHTTPClient(fake))

	got, err := client.List(context.Background(), "LJL44")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if got.ListID != "LJL44" || !got.Available || got.Failed || !got.Ready() {
		t.Fatalf("unexpected descriptor %+v", got)
	}
	if got.JobsAhead == nil || *got.JobsAhead != 0 {
		t.Fatalf("JobsAhead = %v", got.JobsAhead)
	}
	if !got.Configuration.ListPrefix.IsFull() || got.Configuration.FilterPLD != ToggleOn {
		t.Fatalf("unexpected configuration %+v", got.Configuration)
	}
	if got.Configuration.FilterCRUX != ToggleOff {
		t.Fatalf("absent toggle should default to off")
	}
}

func TestListDateURL(t *testing.T) {
	cases := []struct {
		name       string
		year       int
		month, day int
		subdomains *bool
		want       string
	}{
		{name: "no subdomains", year: 2025, month: 4, day: 7, want: "https://tranco-list.eu/api/lists/date/20250407"},
		{name: "subdomains false", year: 2025, month: 4, day: 7, subdomains: Bool(false), want: "https://tranco-list.eu/api/lists/date/20250407?subdomains=false"},
		{name: "subdomains true", year: 2024, month: 12, day: 31, subdomains: Bool(true), want: "https://tranco-list.eu/api/lists/date/20241231?subdomains=true"},
		{name: "padded year", year: 999, month: 1, day: 2, want: "https://tranco-list.eu/api/lists/date/09990102"},
		{name: "leap day", year: 2024, month: 2, day: 29, want: "https://tranco-list.eu/api/lists/date/20240229"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fake := &fakeHTTPClient{responses: map[string]fakeResponse{
				tc.want: {statusCode: 200, body: []byte(sampleListJSON)},
			}}
			client := NewClient(WithHTTPClient(fake))
			if _, err := client.ListDate(context.Background(), tc.year, tc.month, tc.day, tc.subdomains); err != nil {
				t.Fatalf("ListDate: %v", err)
			}
			if len(fake.calls) != 1 || fake.calls[0] != tc.want {
				t.Fatalf("calls = %v want %s", fake.calls, tc.want)
			}
		})
	}
}

func TestListDateRejectsInvalidDates(t *testing.T) {
	fake := &fakeHTTPClient{}
	client := NewClient(WithHTTPClient(fake))

	for _, d := range [][3]int{{2025, 13, 1}, {2025, 0, 1}, {2025, 2, 29}, {2025, 4, 31}, {2025, 4, 0}, {0, 1, 1}, {10000, 1, 1}} {
		_, err := client.ListDate(context.Background(), d[0], d[1], d[2], nil)
		if !errors.Is(err, ErrInvalidDate) {
			t.Errorf("ListDate(%v) error = %v want ErrInvalidDate", d, err)
		}
	}
	if len(fake.calls) != 0 {
		t.Fatalf("invalid dates must not reach the network, got %v", fake.calls)
	}
}

func TestListForDateUsesCalendarDate(t *testing.T) {
	want := "https://tranco-list.eu/api/lists/date/20250407"
	fake := &fakeHTTPClient{responses: map[string]fakeResponse{want: {statusCode: 200, body: []byte(sampleListJSON)}}}
	client := NewClient(WithHTTPClient(fake))

	if _, err := client.ListForDate(context.Background(), time.Date(2025, time.April, 7, 23, 59, 0, 0, time.UTC), nil); err != nil {
		t.Fatalf("ListForDate: %v", err)
	}
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	fake := &fakeHTTPClient{}
	client := NewClient(WithHTTPClient(fake), WithBaseURL("https://mirror.example/api/"))

	_, _ = client.Ranks(context.Background(), "evil/../x")
	_, _ = client.List(context.Background(), "a b")

	want := []string{
		"https://mirror.example/api/ranks/domain/evil%2F..%2Fx",
		"https://mirror.example/api/lists/id/a%20b",
	}
	if diff := cmp.Diff(want, fake.calls); diff != "" {
		t.Fatalf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestMetadataErrorsAreRequestErrors(t *testing.T) {
	t.Run("status", func(t *testing.T) {
		client := NewClient(WithHTTPClient(&fakeHTTPClient{}))
		_, err := client.List(context.Background(), "missing")
		if !errors.Is(err, ErrRequest) {
			t.Fatalf("expected ErrRequest, got %v", err)
		}
		var reqErr *RequestError
		if !errors.As(err, &reqErr) || reqErr.StatusCode != 404 || reqErr.Op != "list" {
			t.Fatalf("unexpected request error %#v", reqErr)
		}
	})

	t.Run("decode", func(t *testing.T) {
		fake := &fakeHTTPClient{responses: map[string]fakeResponse{
			"https://tranco-list.eu/api/ranks/domain/example.com": {statusCode: 200, body: []byte(`{"ranks":"nope"}`)},
		}}
		_, err := NewClient(WithHTTPClient(fake)).Ranks(context.Background(), "example.com")
		if !errors.Is(err, ErrRequest) || !strings.Contains(err.Error(), "decode response") {
			t.Fatalf("expected decode failure, got %v", err)
		}
	})

	t.Run("transport", func(t *testing.T) {
		boom := errors.New("dial tcp: connection refused")
		_, err := NewClient(WithHTTPClient(&fakeHTTPClient{err: boom})).Ranks(context.Background(), "example.com")
		if !errors.Is(err, ErrRequest) || !errors.Is(err, boom) {
			t.Fatalf("expected wrapped transport error, got %v", err)
		}
	})

	t.Run("bad configuration", func(t *testing.T) {
		fake := &fakeHTTPClient{responses: map[string]fakeResponse{
			"https://tranco-list.eu/api/lists/id/BAD": {statusCode: 200, body: []byte(`{"list_id":"BAD","configuration":{"combinationMethod":"dowdall","listPrefix":"abc"}}`)},
		}}
		_, err := NewClient(WithHTTPClient(fake)).List(context.Background(), "BAD")
		if !errors.Is(err, ErrRequest) {
			t.Fatalf("expected ErrRequest, got %v", err)
		}
	})
}

func TestListDateThenDownloadEndToEnd(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/lists/date/20250407":
			if got := r.URL.RawQuery; got != "subdomains=false" {
				t.Errorf("query = %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			body := strings.Replace(sampleListJSON, "https://tranco-list.eu/download/LJL44/1000000", srv.URL+"/download/list.csv", 1)
			_, _ = w.Write([]byte(body))
		case "/download/list.csv":
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte("1,example.com\n2,test.org\n"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewClient(WithBaseURL(srv.URL + "/api"))
	ctx := context.Background()

	list, err := client.ListDate(ctx, 2025, 4, 7, Bool(false))
	if err != nil {
		t.Fatalf("ListDate: %v", err)
	}
	got, err := client.DownloadList(ctx, list)
	if err != nil {
		t.Fatalf("DownloadList: %v", err)
	}
	want := []RankedDomain{{Rank: 1, Domain: "example.com"}, {Rank: 2, Domain: "test.org"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("download mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentCallsShareClient(t *testing.T) {
	fake := &fakeHTTPClient{responses: map[string]fakeResponse{
		"https://tranco-list.eu/api/ranks/domain/example.com": {statusCode: 200, body: []byte(`{"ranks":[]}`)},
	}}
	client := NewClient(WithHTTPClient(fake))

	errs := make(chan error, 16)
	for i := 0; i < cap(errs); i++ {
		go func() {
			_, err := client.Ranks(context.Background(), "example.com")
			errs <- err
		}()
	}
	for i := 0; i < cap(errs); i++ {
		if err := <-errs; err != nil {
			t.Fatalf("Ranks: %v", err)
		}
	}
}
