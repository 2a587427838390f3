package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"
)

const maxErrBody = 4096

// httpSender performs JSON calls for one client, honoring its rate limit.
type httpSender struct {
	hc      *http.Client
	limiter *rate.Limiter
}

func newHTTPSender(cfg ClientConfig, hc *http.Client) httpSender {
	if hc == nil {
		hc = http.DefaultClient
	}
	return httpSender{hc: hc, limiter: newLimiter(cfg.RatePerSec)}
}

func newLimiter(perSec float64) *rate.Limiter {
	if perSec <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSec), 1)
}

// wait blocks on the limiter. A wait that cannot finish before the deadline
// is reported as a deadline error.
func wait(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	if err := l.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("rate limit: %w", context.DeadlineExceeded)
	}
	return nil
}

func (s httpSender) do(ctx context.Context, method, url, auth string, payload any) error {
	if err := wait(ctx, s.limiter); err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := s.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return &BackendError{Status: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	return nil
}
