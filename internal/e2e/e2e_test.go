package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"bookmarkd/internal/config"
	"bookmarkd/pkg/types"
)

func messaging(signalURL string) config.Messaging {
	return config.Messaging{
		Enabled: true,
		Clients: map[string]config.Client{
			"signal": {
				Enabled: true,
				APIURL:  signalURL,
				Sender:  "+15550000000",
				Recipients: map[string]config.Recipients{
					"work":     {Individuals: []string{"+15551111111"}, Groups: []string{"group.work"}},
					"_default": {Individuals: []string{"+15552222222"}},
				},
			},
		},
		CategoryRouting: map[string][]string{
			"work":     {"signal"},
			"_default": {"signal"},
		},
	}
}

func postBookmark(t *testing.T, base, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, base+"/bookmark", bytes.NewBufferString(body))
	if err != nil { t.Fatalf("new req: %v", err) }
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil { t.Fatalf("do req: %v", err) }
	defer resp.Body.Close()
	b, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, b
}

// TestE2E_BookmarkStoredAndRouted posts a categorized bookmark and checks the
// aw-server event and both Signal sends (individual and group).
func TestE2E_BookmarkStoredAndRouted(t *testing.T) {
	sig := newFakeSignal(t)
	aw := newFakeAW(t)
	s := newStack(t, config.Config{
		Storage:   config.Storage{Driver: "activitywatch", URL: aw.srv.URL, Hostname: "e2e"},
		Messaging: messaging(sig.srv.URL),
	})

	code, body := postBookmark(t, s.srv.URL, `{"url":"https://go.dev/blog","title":"Go Blog","category":" work "}`)
	if code != http.StatusCreated { t.Fatalf("status=%d body=%s", code, body) }
	var resp types.BookmarkResponse
	if err := json.Unmarshal(body, &resp); err != nil { t.Fatalf("json: %v", err) }
	if resp.Status != "success" || resp.ID == "" { t.Fatalf("resp=%+v", resp) }

	evs := aw.Events("aw-bookmark_e2e")
	if len(evs) != 1 { t.Fatalf("aw events=%d", len(evs)) }
	data, _ := evs[0]["data"].(map[string]any)
	if data["url"] != "https://go.dev/blog" || data["category"] != "work" { t.Fatalf("event data=%v", data) }

	waitFor(t, 2*time.Second, func() bool { return len(sig.Sends()) == 2 })
	for _, send := range sig.Sends() {
		if send["message"] != "🔖 Go Blog\nhttps://go.dev/blog" { t.Fatalf("message=%v", send["message"]) }
		if send["number"] != "+15550000000" { t.Fatalf("number=%v", send["number"]) }
	}

	if err := s.disp.Shutdown(context.Background()); err != nil { t.Fatalf("shutdown: %v", err) }
	hr, err := http.Get(s.srv.URL + "/notifications")
	if err != nil { t.Fatalf("get: %v", err) }
	defer hr.Body.Close()
	var st types.NotificationStatus
	if err := json.NewDecoder(hr.Body).Decode(&st); err != nil { t.Fatalf("json: %v", err) }
	if !st.Enabled || len(st.Recent) != 1 { t.Fatalf("status=%+v", st) }
	if n := len(st.Recent[0].Results); n != 2 { t.Fatalf("results=%d", n) }
	for _, r := range st.Recent[0].Results {
		if r.Status != "ok" { t.Fatalf("result=%+v", r) }
	}
}

// TestE2E_UncategorizedUsesDefaultRoute checks the _default route and the
// _default recipients entry.
func TestE2E_UncategorizedUsesDefaultRoute(t *testing.T) {
	sig := newFakeSignal(t)
	s := newStack(t, config.Config{
		Storage:   config.Storage{Driver: "memory"},
		Messaging: messaging(sig.srv.URL),
	})
	code, body := postBookmark(t, s.srv.URL, `{"url":"https://example.com","title":"Ex"}`)
	if code != http.StatusCreated { t.Fatalf("status=%d body=%s", code, body) }
	waitFor(t, 2*time.Second, func() bool { return len(sig.Sends()) == 1 })
	rcpts, _ := sig.Sends()[0]["recipients"].([]any)
	if len(rcpts) != 1 || rcpts[0] != "+15552222222" { t.Fatalf("recipients=%v", rcpts) }
}

// TestE2E_InvalidCategoryNotStoredNorSent rejects the request before any side effect.
func TestE2E_InvalidCategoryNotStoredNorSent(t *testing.T) {
	sig := newFakeSignal(t)
	aw := newFakeAW(t)
	s := newStack(t, config.Config{
		Storage:   config.Storage{Driver: "activitywatch", URL: aw.srv.URL, Hostname: "e2e"},
		Messaging: messaging(sig.srv.URL),
	})
	code, body := postBookmark(t, s.srv.URL, `{"url":"https://example.com","title":"Ex","category":"bad<script>"}`)
	if code != http.StatusBadRequest { t.Fatalf("status=%d body=%s", code, body) }
	if err := s.disp.Shutdown(context.Background()); err != nil { t.Fatalf("shutdown: %v", err) }
	if n := len(aw.Events("aw-bookmark_e2e")); n != 0 { t.Fatalf("aw events=%d", n) }
	if n := len(sig.Sends()); n != 0 { t.Fatalf("signal sends=%d", n) }
}

// TestE2E_BackendDownStillCreated: notification failures never change the response.
func TestE2E_BackendDownStillCreated(t *testing.T) {
	sig := newFakeSignal(t)
	sig.srv.Close()
	s := newStack(t, config.Config{
		Storage:   config.Storage{Driver: "memory"},
		Messaging: messaging(sig.srv.URL),
	})
	code, body := postBookmark(t, s.srv.URL, `{"url":"https://example.com","title":"Ex","category":"work"}`)
	if code != http.StatusCreated { t.Fatalf("status=%d body=%s", code, body) }
	if err := s.disp.Shutdown(context.Background()); err != nil { t.Fatalf("shutdown: %v", err) }
}

// TestE2E_StoreDownIs500 checks that a dead aw-server fails the request.
func TestE2E_StoreDownIs500(t *testing.T) {
	sig := newFakeSignal(t)
	aw := newFakeAW(t)
	s := newStack(t, config.Config{
		Storage:   config.Storage{Driver: "activitywatch", URL: aw.srv.URL, Hostname: "e2e", Timeout: 1},
		Messaging: messaging(sig.srv.URL),
	})
	aw.srv.Close()
	code, body := postBookmark(t, s.srv.URL, `{"url":"https://example.com","title":"Ex","category":"work"}`)
	if code != http.StatusInternalServerError { t.Fatalf("status=%d body=%s", code, body) }
	if err := s.disp.Shutdown(context.Background()); err != nil { t.Fatalf("shutdown: %v", err) }
	if n := len(sig.Sends()); n != 0 { t.Fatalf("signal sends=%d", n) }
}
