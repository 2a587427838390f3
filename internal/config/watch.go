package config

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"github.com/zeebo/blake3"
)

const (
	defaultDebounce    = 250 * time.Millisecond
	restartBackoffBase = 250 * time.Millisecond
	restartBackoffMax  = 5 * time.Second
)

// Watcher reloads a config file when it changes on disk and hands the parsed
// result to OnChange. Content that hashes the same as the last delivered
// version is skipped, so editors that write twice only trigger one reload.
type Watcher struct {
	path     string
	debounce time.Duration
	log      zerolog.Logger
	onChange func(Config)

	reloadMu sync.Mutex
	mu       sync.Mutex
	lastHash string
	timer    *time.Timer
}

// NewWatcher creates a watcher for path. The initial file content is hashed so
// that the first event only fires OnChange if the bytes actually differ.
func NewWatcher(path string, log zerolog.Logger, onChange func(Config)) *Watcher {
	w := &Watcher{path: path, debounce: defaultDebounce, log: log, onChange: onChange}
	if b, err := os.ReadFile(path); err == nil {
		w.lastHash = contentHash(b)
	}
	return w
}

func contentHash(b []byte) string {
	sum := blake3.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Reload re-reads the file immediately. force bypasses the unchanged-content
// check (used for SIGHUP). It returns false when nothing was delivered.
// Calls are serialized so deliveries follow read order.
func (w *Watcher) Reload(force bool) bool {
	w.reloadMu.Lock()
	defer w.reloadMu.Unlock()
	b, err := os.ReadFile(w.path)
	if err != nil {
		w.log.Warn().Err(err).Str("path", w.path).Msg("config read failed")
		return false
	}
	h := contentHash(b)
	w.mu.Lock()
	unchanged := h == w.lastHash
	w.mu.Unlock()
	if unchanged && !force {
		w.log.Debug().Str("path", w.path).Msg("config unchanged; skipping reload")
		return false
	}
	cfg, err := Parse(filepath.Ext(w.path), b)
	if err != nil {
		w.log.Warn().Err(err).Str("path", w.path).Msg("config parse failed")
		return false
	}
	w.mu.Lock()
	w.lastHash = h
	w.mu.Unlock()
	if w.onChange != nil {
		w.onChange(cfg)
	}
	w.log.Debug().Str("path", w.path).Str("blake3", h[:16]).Msg("config reloaded")
	return true
}

func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() { w.Reload(false) })
}

// Run watches the config directory until ctx is done. The watcher is
// recreated with backoff if fsnotify closes its channels.
func (w *Watcher) Run(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	file := filepath.Base(w.path)
	backoff := restartBackoffBase

	defer func() {
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			return nil
		}
		fw, err := fsnotify.NewWatcher()
		if err == nil {
			if err = fw.Add(dir); err != nil {
				_ = fw.Close()
			}
		}
		if err != nil {
			w.log.Warn().Err(err).Str("dir", dir).Msg("config watch init failed")
			if !sleepCtx(ctx, backoff) {
				return nil
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = restartBackoffBase
		w.log.Debug().Str("dir", dir).Str("file", file).Msg("config watcher started")

		broken := false
		for !broken {
			select {
			case <-ctx.Done():
				_ = fw.Close()
				return nil
			case ev, ok := <-fw.Events:
				if !ok {
					broken = true
					break
				}
				if strings.EqualFold(filepath.Base(ev.Name), file) &&
					ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					w.schedule()
				}
			case err, ok := <-fw.Errors:
				if !ok {
					broken = true
					break
				}
				w.log.Warn().Err(err).Str("dir", dir).Msg("config watch error")
				// Missed events are possible; reload once to catch up.
				w.schedule()
			}
		}
		_ = fw.Close()
		w.log.Warn().Dur("backoff", backoff).Msg("config watcher stopped; restarting")
		if !sleepCtx(ctx, backoff) {
			return nil
		}
		backoff = nextBackoff(backoff)
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > restartBackoffMax {
		d = restartBackoffMax
	}
	return d
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
