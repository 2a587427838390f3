package httpapi

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bookmarkd/internal/bookmark"
	"bookmarkd/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	SaveBookmark(ctx context.Context, req types.BookmarkRequest) (types.BookmarkResponse, error)
	Notifications() types.NotificationStatus
	Ready(ctx context.Context) bool
}

// NewMux builds the router with middleware and all routes mounted.
func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	r.Post("/bookmark", postBookmark(svc))
	r.Options("/bookmark", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Get("/notifications", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Notifications())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if svc.Ready(ctx) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("store unavailable"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	return r
}

// isJSON accepts application/json and any +json media type.
func isJSON(ct string) bool {
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	return mt == "application/json" || strings.HasSuffix(mt, "+json")
}

// bookmarkOutcome labels a failed save for bookmarks_total.
func bookmarkOutcome(err error, status int) string {
	switch {
	case bookmark.IsValidation(err):
		return "invalid"
	case bookmark.IsStoreFailure(err):
		return "failed"
	case status < http.StatusInternalServerError:
		return "invalid"
	}
	return "failed"
}

func postBookmark(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lvl := requestLogLevel(r)
		if !isJSON(r.Header.Get("Content-Type")) {
			countBookmark("invalid")
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		// Limit body size (configurable, default 1MiB)
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.BookmarkRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			countBookmark("invalid")
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			logEnd(r, lvl, "bookmark rejected", http.StatusBadRequest, start, err)
			return
		}

		ctx, cancel := handlerContext(r)
		defer cancel()
		resp, err := svc.SaveBookmark(ctx, req)
		if err != nil {
			status := statusFor(err)
			countBookmark(bookmarkOutcome(err, status))
			writeJSONError(w, status, err.Error())
			logEnd(r, lvl, "bookmark rejected", status, start, err)
			return
		}
		countBookmark("stored")
		writeJSON(w, http.StatusCreated, resp)
		logEnd(r, lvl, "bookmark stored", http.StatusCreated, start, nil)
	}
}
