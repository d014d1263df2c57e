package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/evanhs/costbasis/internal/service"
)

// NewRouter creates a chi router with all routes registered, request
// logging, and Content-Type validation middleware.
func NewRouter(importer *service.Importer, calculator *service.Calculator, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	// Global middleware.
	r.Use(requestLogging(logger))
	r.Use(contentTypeCSV)

	reportH := NewReportHandler(importer, calculator)

	// Health check.
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Report routes.
	r.Post("/reports", reportH.Generate)

	return r
}

// requestLogging returns middleware that logs each request's method,
// path, status code, and duration using slog.
func requestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)
			logger.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", time.Since(start)),
			)
		})
	}
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.status = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

// contentTypeCSV is middleware that validates Content-Type for POST
// requests. Report uploads are CSV; anything else is rejected before
// the handler runs.
func contentTypeCSV(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			ct := r.Header.Get("Content-Type")
			if ct == "" || !strings.HasPrefix(ct, "text/csv") {
				WriteError(w, http.StatusBadRequest, "invalid_request",
					"Content-Type must be text/csv")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
