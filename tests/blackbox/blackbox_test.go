package blackbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

// findFreePort picks an available TCP port on localhost.
func findFreePort(t *testing.T) (int, func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil { t.Fatalf("listen: %v", err) }
	addr := ln.Addr().String()
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil { t.Fatalf("split: %v", err) }
	cleanup := func(){ _ = ln.Close() }
	var port int
	fmt.Sscanf(portStr, "%d", &port)
	return port, cleanup
}

func projectRootFromThisFile(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok { t.Fatal("runtime.Caller failed") }
	// this file: <root>/tests/blackbox/blackbox_test.go
	bbDir := filepath.Dir(thisFile)
	return filepath.Dir(filepath.Dir(bbDir))
}

func buildBinary(t *testing.T) string {
	t.Helper()
	root := projectRootFromThisFile(t)
	binPath := filepath.Join(t.TempDir(), "bookmarkd")
	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/bookmarkd")
	cmd.Dir = root
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build failed: %v\n%s", err, string(out))
	}
	return binPath
}

func writeConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil { t.Fatalf("write config: %v", err) }
}

type serverProc struct {
	cmd  *exec.Cmd
	base string
	done chan error
}

func startServer(t *testing.T, bin, configPath string, port int) *serverProc {
	t.Helper()
	base := fmt.Sprintf("http://127.0.0.1:%d", port)
	cmd := exec.Command(bin, "serve", "--config", configPath, "--addr", fmt.Sprintf("127.0.0.1:%d", port))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start server: %v", err)
	}
	sp := &serverProc{cmd: cmd, base: base, done: make(chan error, 1)}
	go func() { sp.done <- cmd.Wait() }()
	t.Cleanup(func(){ _ = cmd.Process.Kill() })

	// Wait for healthz
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(base + "/healthz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK { break }
		}
		if time.Now().After(deadline) {
			t.Fatalf("server did not become healthy in time")
		}
		time.Sleep(50 * time.Millisecond)
	}
	return sp
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil { t.Fatalf("new req: %v", err) }
	resp, err := http.DefaultClient.Do(req)
	if err != nil { t.Fatalf("do: %v", err) }
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func postJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, url, bytes.NewReader(payload))
	if err != nil { t.Fatalf("new req: %v", err) }
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil { t.Fatalf("do: %v", err) }
	b, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, b
}

func TestBlackbox_Flow(t *testing.T) {
	bin := buildBinary(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	writeConfig(t, cfgPath, fmt.Sprintf("log_level: warn\nstorage:\n  driver: sqlite\n  path: %s\n", filepath.Join(dir, "bookmarks.db")))
	port, release := findFreePort(t)
	release()
	sp := startServer(t, bin, cfgPath, port)

	resp, body := get(t, sp.base+"/readyz")
	if resp.StatusCode != http.StatusOK { t.Fatalf("/readyz %d %s", resp.StatusCode, string(body)) }

	resp, body = postJSON(t, sp.base+"/bookmark", []byte(`{"url":"https://example.com","title":"Example","category":"reading"}`))
	if resp.StatusCode != http.StatusCreated { t.Fatalf("/bookmark %d %s", resp.StatusCode, string(body)) }
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "application/json") { t.Fatalf("content-type=%s", ct) }

	resp, body = postJSON(t, sp.base+"/bookmark", []byte(`{"url":"https://example.com"}`))
	if resp.StatusCode != http.StatusBadRequest { t.Fatalf("missing title: %d %s", resp.StatusCode, string(body)) }

	resp, body = get(t, sp.base+"/notifications")
	if resp.StatusCode != http.StatusOK { t.Fatalf("/notifications %d %s", resp.StatusCode, string(body)) }

	// SIGTERM shuts down cleanly.
	if err := sp.cmd.Process.Signal(syscall.SIGTERM); err != nil { t.Fatalf("signal: %v", err) }
	select {
	case err := <-sp.done:
		if err != nil { t.Fatalf("exit: %v", err) }
	case <-time.After(10 * time.Second):
		t.Fatalf("server did not exit after SIGTERM")
	}
}

func TestBlackbox_ConfigReloadEnablesMessaging(t *testing.T) {
	var sends atomic.Int32
	signal := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sends.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))
	defer signal.Close()

	bin := buildBinary(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, cfgPath, "log_level: warn\nstorage:\n  driver: memory\n")
	port, release := findFreePort(t)
	release()
	sp := startServer(t, bin, cfgPath, port)

	writeConfig(t, cfgPath, fmt.Sprintf(`log_level: warn
storage:
  driver: memory
messaging:
  enabled: true
  clients:
    signal:
      enabled: true
      api_url: %s
      sender: "+15550000000"
      recipients:
        _default:
          individuals: ["+15551234567"]
  category_routing:
    _default: [signal]
`, signal.URL))
	// SIGHUP forces a reload in case the file event was missed.
	_ = sp.cmd.Process.Signal(syscall.SIGHUP)

	deadline := time.Now().Add(5 * time.Second)
	for {
		_, body := get(t, sp.base+"/notifications")
		var st struct{ Enabled bool `json:"enabled"` }
		if err := json.Unmarshal(body, &st); err != nil { t.Fatalf("json: %v body=%s", err, string(body)) }
		if st.Enabled { break }
		if time.Now().After(deadline) { t.Fatalf("messaging not enabled after reload: %s", string(body)) }
		time.Sleep(50 * time.Millisecond)
	}

	resp, body := postJSON(t, sp.base+"/bookmark", []byte(`{"url":"https://example.com","title":"Example"}`))
	if resp.StatusCode != http.StatusCreated { t.Fatalf("/bookmark %d %s", resp.StatusCode, string(body)) }
	deadline = time.Now().Add(5 * time.Second)
	for sends.Load() == 0 {
		if time.Now().After(deadline) { t.Fatalf("no signal send after reload") }
		time.Sleep(25 * time.Millisecond)
	}
}

func TestBlackbox_CheckConfigRejectsBrokenMessaging(t *testing.T) {
	bin := buildBinary(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, cfgPath, "messaging:\n  enabled: true\n  clients:\n    signal:\n      enabled: true\n      api_url: not-a-url\n")
	out, err := exec.Command(bin, "check-config", "--config", cfgPath).CombinedOutput()
	if err == nil { t.Fatalf("expected non-zero exit, out=%s", string(out)) }
	if !strings.Contains(string(out), "warning:") { t.Fatalf("out=%s", string(out)) }
}
