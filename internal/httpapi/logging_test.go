package httpapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{"": LevelOff, "off": LevelOff, "error": LevelError, "info": LevelInfo, "debug": LevelDebug, "weird": LevelInfo}
	for in, want := range cases {
		if got := parseLevel(in); got != want { t.Fatalf("parseLevel(%q)=%v want %v", in, got, want) }
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/bookmark?log=1", nil)
	if got := requestLogLevel(r); got != LevelDebug { t.Fatalf("query log=1 -> %v", got) }
	r = httptest.NewRequest(http.MethodPost, "/bookmark?log=off", nil)
	if got := requestLogLevel(r); got != LevelOff { t.Fatalf("query log=off -> %v", got) }
	r = httptest.NewRequest(http.MethodPost, "/bookmark", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError { t.Fatalf("header -> %v", got) }
}

func TestSetRequestLogLevel_Default(t *testing.T) {
	old := defaultLogLevel
	defer func() { defaultLogLevel = old }()
	SetRequestLogLevel("debug")
	if got := requestLogLevel(httptest.NewRequest(http.MethodGet, "/", nil)); got != LevelDebug { t.Fatalf("default -> %v", got) }
}

func TestLogEnd_UsesStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()
	r := httptest.NewRequest(http.MethodPost, "/bookmark", nil)
	logEnd(r, LevelInfo, "bookmark stored", http.StatusCreated, time.Now(), nil)
	out := buf.String()
	if !strings.Contains(out, "bookmark stored") || !strings.Contains(out, `"status":201`) { t.Fatalf("log=%s", out) }

	buf.Reset()
	logEnd(r, LevelError, "bookmark stored", http.StatusCreated, time.Now(), nil)
	if buf.Len() != 0 { t.Fatalf("success logged at error level: %s", buf.String()) }

	logEnd(r, LevelOff, "bookmark rejected", http.StatusBadRequest, time.Now(), errTest)
	if buf.Len() != 0 { t.Fatalf("logged with level off: %s", buf.String()) }
}

type testErr string

func (e testErr) Error() string { return string(e) }

const errTest = testErr("boom")
