// ABOUTME: Conversion service HTTP server: a chi router exposing POST /api/convert behind a one-origin CORS allow-list.
// ABOUTME: Also serves the embedded browser editor and a health probe, with graceful shutdown on context cancellation.
package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/2389-research/mdpreview/editor"
	"github.com/2389-research/mdpreview/logging"
	"github.com/2389-research/mdpreview/render"
)

// DefaultMaxBodyBytes bounds the size of a conversion request body.
const DefaultMaxBodyBytes int64 = 10 << 20

// Server is the stateless markdown conversion service.
type Server struct {
	router    chi.Router
	renderer  render.Renderer
	templates *TemplateEngine
	page      PageData
	logger    logrus.FieldLogger
	addr      string
	origin    string
	maxBody   int64
}

// ServerConfig holds the configuration for the conversion service.
type ServerConfig struct {
	Addr          string // listen address (default: "127.0.0.1:3001")
	AllowedOrigin string // the single origin allowed by CORS (default: "http://localhost:3000")
	MaxBodyBytes  int64  // request body limit (default: DefaultMaxBodyBytes)
	Renderer      render.Renderer
	Logger        logrus.FieldLogger
	Page          *PageData // editor page settings (default: DefaultPageData)
}

// NewServer creates a Server with routes and middleware configured.
// A nil Renderer defaults to goldmark with render.DefaultOptions.
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:3001"
	}
	if cfg.AllowedOrigin == "" {
		cfg.AllowedOrigin = "http://localhost:3000"
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Renderer == nil {
		cfg.Renderer = render.New(render.DefaultOptions())
	}

	templates, err := NewTemplateEngine()
	if err != nil {
		return nil, err
	}

	s := &Server{
		renderer:  render.Safe(cfg.Renderer),
		templates: templates,
		page:      withPageDefaults(cfg.Page),
		logger:    logging.OrDiscard(cfg.Logger),
		addr:      cfg.Addr,
		origin:    cfg.AllowedOrigin,
		maxBody:   cfg.MaxBodyBytes,
	}

	router, err := s.buildRouter()
	if err != nil {
		return nil, err
	}
	s.router = router
	return s, nil
}

// withPageDefaults fills unset page fields. DarkMode is taken as given.
func withPageDefaults(cfg *PageData) PageData {
	d := DefaultPageData()
	if cfg == nil {
		return d
	}
	p := *cfg
	if p.Title == "" {
		p.Title = d.Title
	}
	if p.Document == "" {
		p.Document = d.Document
	}
	if p.Debounce <= 0 {
		p.Debounce = d.Debounce
	}
	if p.Timeout <= 0 {
		p.Timeout = d.Timeout
	}
	if _, err := editor.ParseViewMode(string(p.ViewMode)); err != nil {
		p.ViewMode = d.ViewMode
	}
	return p
}

// ServeHTTP delegates to the chi router, satisfying http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.addr
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithFields(logrus.Fields{
			"addr":           s.addr,
			"allowed_origin": s.origin,
		}).Info("conversion service listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down conversion service")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// buildRouter constructs the chi router with all routes and middleware.
// CORS runs first so preflight requests never reach the handlers.
func (s *Server) buildRouter() (chi.Router, error) {
	r := chi.NewRouter()

	r.Use(cors.New(cors.Options{
		AllowedOrigins: []string{s.origin},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}).Handler)
	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	static, err := fs.Sub(StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("loading embedded static files: %w", err)
	}

	r.Get("/", s.handleIndex)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/convert", s.handleConvert)
	})

	return r, nil
}
