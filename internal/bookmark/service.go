// Package bookmark ties the HTTP boundary to the store and the notifier.
package bookmark

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"bookmarkd/internal/notify"
	"bookmarkd/internal/store"
	"bookmarkd/pkg/types"
)

// Service stores bookmarks and triggers notifications for them.
type Service struct {
	store store.Store
	disp  *notify.Dispatcher
	hist  *notify.History
	log   zerolog.Logger
}

// New wires a service. hist may be nil when no history is kept.
func New(st store.Store, disp *notify.Dispatcher, hist *notify.History, log zerolog.Logger) *Service {
	return &Service{store: st, disp: disp, hist: hist, log: log}
}

// Validate normalizes req and checks the field rules of POST /bookmark.
func Validate(req types.BookmarkRequest) (types.BookmarkRequest, error) {
	req.URL = strings.TrimSpace(req.URL)
	req.Title = strings.TrimSpace(req.Title)
	req.Category = strings.TrimSpace(req.Category)
	if req.URL == "" || req.Title == "" {
		return req, validationError{msg: "Missing required fields: url and title"}
	}
	if len(req.Category) > notify.MaxCategoryLen {
		return req, validationError{msg: "Category must be 100 characters or less"}
	}
	if !notify.ValidCategory(req.Category) {
		return req, validationError{msg: "Category contains invalid characters. Allowed: letters, numbers, spaces, -, _, /, ."}
	}
	return req, nil
}

// SaveBookmark persists the bookmark and, only on success, hands it to the
// dispatcher in the background. Notification outcomes never affect the result.
func (s *Service) SaveBookmark(ctx context.Context, req types.BookmarkRequest) (types.BookmarkResponse, error) {
	req, err := Validate(req)
	if err != nil {
		return types.BookmarkResponse{}, err
	}
	b := store.NewBookmark(req.URL, req.Title, req.Category)
	if err := s.store.Insert(ctx, b); err != nil {
		s.log.Error().Err(err).Str("url", b.URL).Msg("bookmark store failed")
		return types.BookmarkResponse{}, storeError{err: err}
	}
	s.log.Info().Str("id", b.ID).Str("category", b.Category).Msg("bookmark stored")

	if s.disp != nil {
		ev := notify.BookmarkEvent{URL: b.URL, Title: b.Title, Category: b.Category}
		if !s.disp.Go(ev) {
			s.log.Warn().Str("id", b.ID).Msg("notification skipped: shutting down")
		}
	}
	return types.BookmarkResponse{Status: "success", Message: "Bookmark stored", ID: b.ID}, nil
}

// Ready reports whether the store answers.
func (s *Service) Ready(ctx context.Context) bool {
	if err := s.store.Ping(ctx); err != nil {
		s.log.Debug().Err(err).Msg("store not ready")
		return false
	}
	return true
}

// Notifications describes the active routing snapshot and recent dispatches.
func (s *Service) Notifications() types.NotificationStatus {
	out := types.NotificationStatus{Routes: map[string][]string{}, Clients: []types.ClientStatus{}, Recent: []types.DispatchRecord{}}
	if s.disp == nil {
		return out
	}
	rc := s.disp.Config()
	out.Enabled = rc.Enabled()
	out.Routes = rc.Routes()
	for _, c := range rc.Clients() {
		cats := make([]string, 0, len(c.Recipients))
		for cat := range c.Recipients {
			cats = append(cats, cat)
		}
		sort.Strings(cats)
		out.Clients = append(out.Clients, types.ClientStatus{
			Name:           c.Name,
			Type:           c.Type,
			Enabled:        c.Enabled,
			APIURL:         c.APIURL,
			Categories:     cats,
			TimeoutSeconds: c.Timeout.Seconds(),
		})
	}
	for _, w := range rc.Warnings() {
		out.Warnings = append(out.Warnings, w.String())
	}
	if s.hist != nil {
		for _, rec := range s.hist.Recent() {
			out.Recent = append(out.Recent, toRecord(rec))
		}
	}
	return out
}

func toRecord(rec notify.Record) types.DispatchRecord {
	out := types.DispatchRecord{
		Time:       rec.Time,
		URL:        rec.Event.URL,
		Title:      rec.Event.Title,
		Category:   rec.Event.Category,
		Clients:    append([]string(nil), rec.Clients...),
		Results:    make([]types.DispatchResult, 0, len(rec.Results)),
		DurationMS: rec.Duration.Milliseconds(),
	}
	for _, r := range rec.Results {
		out.Results = append(out.Results, types.DispatchResult{
			Client:    r.Client,
			Recipient: r.Recipient,
			Class:     string(r.Class),
			Status:    string(r.Status),
			ErrKind:   string(r.ErrKind),
			Error:     r.Error,
		})
	}
	return out
}
