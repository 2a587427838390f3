package store

import (
	"context"
	"errors"
	"sync"
)

var errClosed = errors.New("store closed")

// Memory keeps bookmarks in process memory.
type Memory struct {
	mu     sync.Mutex
	items  []Bookmark
	closed bool
}

func NewMemory() *Memory { return &Memory{} }

func (m *Memory) Insert(_ context.Context, b Bookmark) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	m.items = append(m.items, b)
	return nil
}

func (m *Memory) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errClosed
	}
	return nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// All returns a copy of the stored bookmarks in insertion order.
func (m *Memory) All() []Bookmark {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Bookmark(nil), m.items...)
}
