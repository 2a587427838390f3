package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"bookmarkd/internal/config"
)

const (
	awClientName = "aw-bookmark"
	awEventType  = "bookmark"
)

// awStore writes bookmarks as events into an aw-server bucket.
type awStore struct {
	base     string
	bucket   string
	hostname string
	hc       *http.Client
	timeout  time.Duration
	log      zerolog.Logger

	mu    sync.Mutex
	ready bool
}

type awBucket struct {
	Client   string `json:"client"`
	Type     string `json:"type"`
	Hostname string `json:"hostname"`
}

type awEvent struct {
	Timestamp string         `json:"timestamp"`
	Duration  float64        `json:"duration"`
	Data      map[string]any `json:"data"`
}

func openActivityWatch(ctx context.Context, cfg config.Storage, log zerolog.Logger) (Store, error) {
	base := strings.TrimRight(cfg.URL, "/")
	if base == "" {
		base = config.DefaultAWServerURL
	}
	if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid activitywatch url %q", cfg.URL)
	}
	host := cfg.Hostname
	if host == "" {
		h, err := os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("hostname: %w", err)
		}
		host = h
	}
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = "aw-bookmark_" + host
	}
	timeout := config.Seconds(cfg.Timeout)
	if timeout <= 0 {
		timeout = config.DefaultStorageTimeout
	}
	s := &awStore{
		base:     base,
		bucket:   bucket,
		hostname: host,
		hc:       &http.Client{Timeout: 0},
		timeout:  timeout,
		log:      log.With().Str("bucket", bucket).Logger(),
	}
	// aw-server may start after us; the bucket is retried on first insert.
	if err := s.ensureBucket(ctx); err != nil {
		s.log.Warn().Err(err).Str("url", base).Msg("activitywatch bucket not created yet")
	}
	return s, nil
}

func (s *awStore) bucketURL() string {
	return s.base + "/api/0/buckets/" + url.PathEscape(s.bucket)
}

func (s *awStore) ensureBucket(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready {
		return nil
	}
	status, body, err := s.do(ctx, http.MethodPost, s.bucketURL(), awBucket{Client: awClientName, Type: awEventType, Hostname: s.hostname})
	if err != nil {
		return err
	}
	// 304 means the bucket already exists
	if status != http.StatusOK && status != http.StatusNotModified {
		return fmt.Errorf("create bucket: status %d: %s", status, body)
	}
	s.ready = true
	return nil
}

func (s *awStore) Insert(ctx context.Context, b Bookmark) error {
	if err := s.ensureBucket(ctx); err != nil {
		return err
	}
	data := map[string]any{"url": b.URL, "title": b.Title}
	if b.Category != "" {
		data["category"] = b.Category
	}
	ev := []awEvent{{Timestamp: b.Timestamp.UTC().Format(time.RFC3339Nano), Duration: 0, Data: data}}
	status, body, err := s.do(ctx, http.MethodPost, s.bucketURL()+"/events", ev)
	if err != nil {
		return err
	}
	if status < 200 || status > 299 {
		return fmt.Errorf("insert event: status %d: %s", status, body)
	}
	return nil
}

func (s *awStore) Ping(ctx context.Context) error {
	status, body, err := s.do(ctx, http.MethodGet, s.base+"/api/0/info", nil)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("info: status %d: %s", status, body)
	}
	return nil
}

func (s *awStore) Close() error {
	s.hc.CloseIdleConnections()
	return nil
}

func (s *awStore) do(ctx context.Context, method, u string, payload any) (int, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, "", err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return 0, "", err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.hc.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, strings.TrimSpace(string(b)), nil
}
