package notify

import (
	"sync"
	"time"
)

// Record summarizes one dispatched bookmark event.
type Record struct {
	Time     time.Time     `json:"time"`
	Event    BookmarkEvent `json:"event"`
	Clients  []string      `json:"clients"`
	Results  []Result      `json:"results"`
	Duration time.Duration `json:"duration_ns"`
}

// Failed counts error results.
func (r Record) Failed() int {
	n := 0
	for _, res := range r.Results {
		if !res.OK() {
			n++
		}
	}
	return n
}

// Publisher receives a Record after every routed dispatch. Implementations
// must be non-blocking and must not panic.
type Publisher interface {
	Publish(Record)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Record) {}

// History keeps the most recent records in a fixed-size ring.
type History struct {
	mu   sync.Mutex
	buf  []Record
	next int
	full bool
}

// DefaultHistorySize is used when NewHistory gets a non-positive size.
const DefaultHistorySize = 100

func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{buf: make([]Record, size)}
}

func (h *History) Publish(r Record) {
	h.mu.Lock()
	h.buf[h.next] = r
	h.next = (h.next + 1) % len(h.buf)
	if h.next == 0 {
		h.full = true
	}
	h.mu.Unlock()
}

// Recent returns stored records, newest first.
func (h *History) Recent() []Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := h.next
	if h.full {
		n = len(h.buf)
	}
	out := make([]Record, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, h.buf[(h.next-i+len(h.buf))%len(h.buf)])
	}
	return out
}
