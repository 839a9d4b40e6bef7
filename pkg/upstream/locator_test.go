package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"opensign-hq/relay/pkg/config"
)

const frontendPage = `<!DOCTYPE html><html><head><title>OpenSign</title></head><body></body></html>`

// hitRecorder records the request paths a test server receives.
type hitRecorder struct {
	mu    sync.Mutex
	paths []string
}

func (h *hitRecorder) add(path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paths = append(h.paths, path)
}

func (h *hitRecorder) list() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.paths...)
}

func testConfig(baseURL string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Upstream.BaseURL = baseURL
	cfg.Upstream.AppID = "opensign"
	return cfg
}

func noSleep(context.Context, time.Duration) error { return nil }

// fakeObserver counts observer events.
type fakeObserver struct {
	mu              sync.Mutex
	classifications []string
	retries         int
	stripped        int
}

func (o *fakeObserver) RecordUpstreamAttempt(c string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.classifications = append(o.classifications, c)
}

func (o *fakeObserver) RecordRetry() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.retries++
}

func (o *fakeObserver) RecordPayloadStripped() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stripped++
}

func TestLocator_SkipsFrontendThenFindsAPI(t *testing.T) {
	hits := &hitRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Path)
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/app/"):
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(frontendPage))
		case strings.HasPrefix(r.URL.Path, "/app/"):
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"result":{"objectId":"doc1"}}`))
		default:
			t.Errorf("unexpected request to %s", r.URL.Path)
		}
	}))
	defer server.Close()

	obs := &fakeObserver{}
	client := NewClient(testConfig(server.URL), WithObserver(obs), WithSleeper(noSleep))

	outcome := client.Forward(context.Background(), &OutboundRequest{
		Method: http.MethodPost,
		Path:   "functions/getDocument",
		Header: http.Header{"Content-Type": {"application/json"}},
		Body:   []byte(`{"docId":"doc1"}`),
	})

	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("expected success, got %s (err=%v)", outcome.Kind, outcome.Err)
	}
	if got := hits.list(); len(got) != 2 {
		t.Fatalf("expected exactly 2 upstream calls, got %v", got)
	}
	if outcome.URL != server.URL+"/app/functions/getDocument" {
		t.Errorf("unexpected answering URL %s", outcome.URL)
	}
	if string(outcome.Body) != `{"result":{"objectId":"doc1"}}` {
		t.Errorf("body should be forwarded verbatim, got %s", outcome.Body)
	}
	if len(obs.classifications) != 2 || obs.classifications[0] != "wrong_endpoint" || obs.classifications[1] != "success" {
		t.Errorf("unexpected classifications %v", obs.classifications)
	}
}

func TestLocator_StopsAtAPIError(t *testing.T) {
	hits := &hitRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":209,"error":"Invalid session token"}`))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), WithSleeper(noSleep))
	outcome := client.Forward(context.Background(), &OutboundRequest{
		Method: http.MethodGet,
		Path:   "classes/contracts_Document",
	})

	if outcome.Kind != OutcomeAPIError {
		t.Fatalf("expected api error, got %s", outcome.Kind)
	}
	if outcome.Status != http.StatusBadRequest {
		t.Errorf("expected upstream status 400, got %d", outcome.Status)
	}
	if got := hits.list(); len(got) != 1 {
		t.Errorf("search should stop at the first candidate, got %v", got)
	}
}

func TestLocator_HTMLSkippedRegardlessOfStatus(t *testing.T) {
	hits := &hitRecorder{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.add(r.URL.Path)
		if strings.HasPrefix(r.URL.Path, "/parse/") {
			_, _ = w.Write([]byte(`{"result":"ok"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(frontendPage))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), WithSleeper(noSleep))
	outcome := client.Forward(context.Background(), &OutboundRequest{
		Method: http.MethodPost,
		Path:   "functions/ping",
	})

	if outcome.Kind != OutcomeSuccess {
		t.Fatalf("expected success from third candidate, got %s", outcome.Kind)
	}
	want := []string{"/api/app/functions/ping", "/app/functions/ping", "/parse/functions/ping"}
	got := hits.list()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestLocator_ExhaustedListsURLs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("Cannot POST " + r.URL.Path))
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL), WithSleeper(noSleep))
	outcome := client.Forward(context.Background(), &OutboundRequest{
		Method:   http.MethodPost,
		Path:     "functions/getDocument",
		RawQuery: "x=1",
	})

	if outcome.Kind != OutcomeExhausted {
		t.Fatalf("expected exhausted, got %s", outcome.Kind)
	}
	var exhausted *ExhaustedError
	if !errors.As(outcome.Err, &exhausted) {
		t.Fatalf("expected *ExhaustedError, got %T", outcome.Err)
	}
	if len(exhausted.URLs) != 3 {
		t.Fatalf("expected 3 attempted URLs, got %v", exhausted.URLs)
	}
	if exhausted.URLs[0] != server.URL+"/api/app/functions/getDocument?x=1" {
		t.Errorf("unexpected first URL %s", exhausted.URLs[0])
	}
	var unrecognized *UnrecognizedResponseError
	if !errors.As(outcome.Err, &unrecognized) {
		t.Errorf("last error should be unrecognized response, got %v", exhausted.LastErr)
	}
	if !IsExhausted(outcome.Err) {
		t.Error("IsExhausted should report true")
	}
}

func TestLocator_UnreachableBackend(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewClient(testConfig(url), WithSleeper(noSleep))
	outcome := client.Forward(context.Background(), &OutboundRequest{
		Method: http.MethodGet,
		Path:   "health",
	})

	if outcome.Kind != OutcomeExhausted {
		t.Fatalf("expected exhausted, got %s", outcome.Kind)
	}
	var transport *TransportError
	if !errors.As(outcome.Err, &transport) {
		t.Errorf("expected transport error in chain, got %v", outcome.Err)
	}
	for _, a := range outcome.Attempts {
		if a.Tries != 1 {
			t.Errorf("non-large call should be tried once per candidate, got %d for %s", a.Tries, a.URL)
		}
	}
}

func TestLocator_URL(t *testing.T) {
	l := NewLocator("https://sign.example.com/", nil, nil)

	tests := []struct {
		prefix, path, query string
		want                string
	}{
		{"/app", "functions/x", "", "https://sign.example.com/app/functions/x"},
		{"/app/", "/functions/x", "", "https://sign.example.com/app/functions/x"},
		{"", "login", "", "https://sign.example.com/login"},
		{"/parse", "classes/A", "limit=1", "https://sign.example.com/parse/classes/A?limit=1"},
	}
	for _, tt := range tests {
		if got := l.URL(tt.prefix, tt.path, tt.query); got != tt.want {
			t.Errorf("URL(%q, %q, %q) = %s, want %s", tt.prefix, tt.path, tt.query, got, tt.want)
		}
	}
}

func TestLocator_NoCandidates(t *testing.T) {
	l := NewLocator("http://localhost", nil, nil)
	outcome := l.Locate(context.Background(), &OutboundRequest{Path: "x"}, func(context.Context, string) (Response, error) {
		t.Fatal("send should not be called")
		return Response{}, nil
	})
	if outcome.Kind != OutcomeExhausted || outcome.Err == nil {
		t.Errorf("expected exhausted outcome with error, got %+v", outcome)
	}
}
