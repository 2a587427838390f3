// Package store persists accepted bookmarks.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bookmarkd/internal/config"
)

// Bookmark is one stored bookmark event.
type Bookmark struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Category  string    `json:"category,omitempty"`
}

// NewBookmark stamps a bookmark with a fresh id and the current UTC time.
func NewBookmark(url, title, category string) Bookmark {
	return Bookmark{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		URL:       url,
		Title:     title,
		Category:  category,
	}
}

// Store is the persistence boundary of the bookmark endpoint.
type Store interface {
	Insert(ctx context.Context, b Bookmark) error
	Ping(ctx context.Context) error
	Close() error
}

const (
	DriverActivityWatch = "activitywatch"
	DriverSQLite        = "sqlite"
	DriverMemory        = "memory"
	DriverNone          = "none"
)

type unknownDriverError struct{ driver string }

func (e unknownDriverError) Error() string { return "unknown storage driver: " + e.driver }

// IsUnknownDriver reports whether Open failed on an unsupported driver name.
func IsUnknownDriver(err error) bool {
	_, ok := err.(unknownDriverError)
	return ok
}

// Open builds the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Storage, log zerolog.Logger) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	if driver == "" {
		driver = config.DefaultStorageDriver
	}
	log = log.With().Str("component", "store").Str("driver", driver).Logger()
	var (
		st  Store
		err error
	)
	switch driver {
	case DriverActivityWatch:
		st, err = openActivityWatch(ctx, cfg, log)
	case DriverSQLite:
		st, err = openSQLite(ctx, cfg, log)
	case DriverMemory:
		st = NewMemory()
	case DriverNone:
		st = discard{}
	default:
		return nil, unknownDriverError{driver: driver}
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", driver, err)
	}
	log.Debug().Msg("store opened")
	return st, nil
}

// discard accepts and drops every bookmark.
type discard struct{}

func (discard) Insert(context.Context, Bookmark) error { return nil }
func (discard) Ping(context.Context) error             { return nil }
func (discard) Close() error                           { return nil }
