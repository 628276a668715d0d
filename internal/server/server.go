// Package server exposes the desktop over HTTP: the rendered page, a JSON
// API and a WebSocket channel that pushes state and accepts events.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jmylchreest/deskshell/internal/markup"
	"github.com/jmylchreest/deskshell/internal/shell"
)

// Config holds server configuration.
type Config struct {
	Addr     string
	AllowAll bool // allow all CORS and WebSocket origins (dev mode)
}

// Server serves one shell.
type Server struct {
	cfg        Config
	dispatcher *shell.Dispatcher
	shell      *shell.Shell
	page       atomic.Pointer[markup.Page]
	logger     *slog.Logger
	router     chi.Router
	hub        *hub
	cancel     context.CancelFunc
	httpServer *http.Server
}

// New creates a server for the shell behind d, rendering page. The
// broadcast loop starts immediately; call Close (or Shutdown) to stop it.
func New(cfg Config, page *markup.Page, d *shell.Dispatcher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:        cfg,
		dispatcher: d,
		shell:      d.Shell(),
		logger:     logger,
	}
	s.page.Store(page)
	s.hub = newHub(logger)
	s.router = s.buildRouter()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	go s.hub.run(ctx, s.shell, s.shell.Subscribe())

	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(s.logger.Handler(), slog.LevelDebug),
		NoColor: true,
	}))
	r.Use(middleware.Recoverer)

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// The WebSocket route is long-lived and stays outside the timeout.
	r.Get("/ws", s.handleWebSocket)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		r.Get("/", s.handlePage)
		r.Route("/api", func(r chi.Router) {
			r.Get("/state", s.handleState)
			r.Get("/layout", s.handleLayout)
			r.Post("/events", s.handleEvent)
		})
	})

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Page returns the page currently served.
func (s *Server) Page() *markup.Page { return s.page.Load() }

// SetPage swaps the served page, e.g. after the page file was edited.
func (s *Server) SetPage(p *markup.Page) {
	if p != nil {
		s.page.Store(p)
	}
}

// Clients returns the number of connected WebSocket clients.
func (s *Server) Clients() int { return s.hub.count() }

// Start listens on the configured address until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpServer.ListenAndServe()
	}()
	s.logger.Info("server listening", "addr", s.cfg.Addr)

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown disconnects WebSocket clients and gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.Close()
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

// Close stops the broadcast loop and disconnects WebSocket clients.
func (s *Server) Close() {
	s.cancel()
	s.hub.closeAll()
}
