package e2e

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"bookmarkd/internal/bookmark"
	"bookmarkd/internal/config"
	"bookmarkd/internal/httpapi"
	"bookmarkd/internal/notify"
	"bookmarkd/internal/store"
)

// fakeSignal records the JSON bodies posted to /v2/send.
type fakeSignal struct {
	mu    sync.Mutex
	sends []map[string]any
	srv   *httptest.Server
}

func newFakeSignal(t *testing.T) *fakeSignal {
	t.Helper()
	f := &fakeSignal{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v2/send" {
			http.NotFound(w, r)
			return
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.sends = append(f.sends, body)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"timestamp":"1"}`)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeSignal) Sends() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.sends...)
}

// fakeAW is a minimal aw-server: bucket creation, event insert and info.
type fakeAW struct {
	mu      sync.Mutex
	buckets map[string]bool
	events  map[string][]map[string]any
	srv     *httptest.Server
}

func newFakeAW(t *testing.T) *fakeAW {
	t.Helper()
	f := &fakeAW{buckets: map[string]bool{}, events: map[string][]map[string]any{}}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := strings.TrimPrefix(r.URL.Path, "/api/0/")
		switch {
		case r.Method == http.MethodGet && p == "info":
			_, _ = io.WriteString(w, `{"hostname":"test","version":"v0.12"}`)
		case r.Method == http.MethodPost && strings.HasPrefix(p, "buckets/") && strings.HasSuffix(p, "/events"):
			id := strings.TrimSuffix(strings.TrimPrefix(p, "buckets/"), "/events")
			var evs []map[string]any
			if err := json.NewDecoder(r.Body).Decode(&evs); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			f.mu.Lock()
			f.events[id] = append(f.events[id], evs...)
			f.mu.Unlock()
			_, _ = io.WriteString(w, `[]`)
		case r.Method == http.MethodPost && strings.HasPrefix(p, "buckets/"):
			id := strings.TrimPrefix(p, "buckets/")
			f.mu.Lock()
			exists := f.buckets[id]
			f.buckets[id] = true
			f.mu.Unlock()
			if exists {
				w.WriteHeader(http.StatusNotModified)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeAW) Events(bucket string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.events[bucket]...)
}

type stack struct {
	srv  *httptest.Server
	disp *notify.Dispatcher
}

// newStack wires config -> store -> dispatcher -> service -> mux the way
// cmd/bookmarkd does.
func newStack(t *testing.T, cfg config.Config) stack {
	t.Helper()
	cfg.ApplyDefaults()
	log := zerolog.Nop()
	st, err := store.Open(t.Context(), cfg.Storage, log)
	if err != nil { t.Fatalf("open store: %v", err) }
	t.Cleanup(func() { _ = st.Close() })

	rc, _, err := notify.Load(cfg.Messaging)
	if err != nil { t.Fatalf("load messaging: %v", err) }
	hist := notify.NewHistory(10)
	disp := notify.NewDispatcher(rc, notify.WithLogger(log), notify.WithPublisher(hist))
	svc := bookmark.New(st, disp, hist, log)

	httpapi.SetLogger(log)
	srv := httptest.NewServer(httpapi.NewMux(svc))
	t.Cleanup(srv.Close)
	return stack{srv: srv, disp: disp}
}

func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition not met within %s", d)
}
