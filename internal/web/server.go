// Package web provides the HTTP API for spreadsheet ingestion.
//
// All endpoints live under /api/targets/{targetID} and accept or return
// JSON, except file uploads (multipart) and template downloads (CSV/XLSX
// bytes). The package has no rendering layer; clients are expected to be
// programs, not browsers.
package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sheetline/sheetline/internal/config"
	"github.com/sheetline/sheetline/internal/core"
	"github.com/sheetline/sheetline/internal/store"
	"github.com/sheetline/sheetline/internal/web/middleware"
)

// Server wires the ingestion service and stores to HTTP routes.
type Server struct {
	service *core.Service
	fields  *store.FieldStore
	runs    *store.RunLog
	blobs   *store.FSBlobStore // nil when upload retention is disabled
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer creates a configured server with all routes registered.
// blobs may be nil, in which case raw uploads are not retained.
func NewServer(service *core.Service, fields *store.FieldStore, runs *store.RunLog, blobs *store.FSBlobStore, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		fields:  fields,
		runs:    runs,
		blobs:   blobs,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api/targets/{targetID}", func(r chi.Router) {
		// Ingestion operations. All but template take a multipart upload.
		r.Post("/load", s.handleLoad)
		r.Post("/mappings", s.handleMappings)
		r.Post("/validate", s.handleValidate)
		r.Post("/summary", s.handleSummary)
		r.Get("/template", s.handleTemplate)

		// Field set management and run history.
		r.Get("/fields", s.handleGetFields)
		r.Put("/fields", s.handlePutFields)
		r.Get("/runs", s.handleRuns)
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start(addr string) error {
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds baseline security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
