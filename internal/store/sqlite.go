package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"bookmarkd/internal/common/fsutil"
	"bookmarkd/internal/config"
)

//go:embed schema.sql
var schemaFS embed.FS

type sqliteStore struct {
	db  *sql.DB
	log zerolog.Logger
}

func openSQLite(ctx context.Context, cfg config.Storage, log zerolog.Logger) (Store, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	path, err := fsutil.ExpandPath(cfg.Path)
	if err != nil {
		return nil, err
	}
	if err := fsutil.EnsureParentDir(path); err != nil {
		return nil, err
	}
	created := !fsutil.PathExists(path)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	_, _ = db.ExecContext(ctx, "PRAGMA busy_timeout = 5000")
	_, _ = db.ExecContext(ctx, "PRAGMA journal_mode = WAL")
	_, _ = db.ExecContext(ctx, "PRAGMA synchronous = NORMAL")

	st := &sqliteStore{db: db, log: log}
	if err := st.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	log.Info().Str("path", path).Bool("created", created).Msg("sqlite store ready")
	return st, nil
}

func (s *sqliteStore) migrate(ctx context.Context) error {
	b, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, string(b))
	return err
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (s *sqliteStore) Insert(ctx context.Context, b Bookmark) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bookmarks(id, created_at, url, title, category) VALUES(?,?,?,?,?)`,
		b.ID, b.Timestamp.UTC().Format(time.RFC3339Nano), b.URL, b.Title, nullStr(b.Category),
	)
	return err
}

func (s *sqliteStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *sqliteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
