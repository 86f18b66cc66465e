// Package httpserver wires the navigation API, metrics and event stream into
// one chi router and manages the listener lifecycle.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	prom "github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
	"git.home.luguber.info/inful/navindex/internal/logfields"
	"git.home.luguber.info/inful/navindex/internal/metrics"
	"git.home.luguber.info/inful/navindex/internal/server/events"
	"git.home.luguber.info/inful/navindex/internal/server/handlers"
	"git.home.luguber.info/inful/navindex/internal/server/middleware"
)

// Options configures the server. Source is required.
type Options struct {
	Source   handlers.SiteSource
	Hub      *events.Hub
	Recorder metrics.Recorder
	// Registry backs /metrics. A nil registry serves the default gatherer.
	Registry *prom.Registry
	Logger   *slog.Logger
	// RequestTimeout bounds non-streaming handlers.
	RequestTimeout time.Duration
}

// Server is the HTTP front end of the daemon.
type Server struct {
	addr   string
	router *chi.Mux
	srv    *http.Server
	logger *slog.Logger

	mu sync.Mutex
	ln net.Listener
}

// New builds the router for addr.
func New(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	s := &Server{addr: addr, logger: logger, router: chi.NewRouter()}
	s.routes(opts)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(opts Options) {
	adapter := errors.NewHTTPErrorAdapter(s.logger)
	nav := handlers.NewNavHandlers(opts.Source, adapter)

	s.router.Use(chimw.RequestID)
	s.router.Use(chimw.RealIP)
	s.router.Use(middleware.Chain(s.logger, adapter, opts.Recorder))

	s.router.Get("/healthz", nav.HandleHealth)
	s.router.Method(http.MethodGet, "/metrics", metrics.HTTPHandler(opts.Registry))
	if opts.Hub != nil {
		s.router.Method(http.MethodGet, "/ws", opts.Hub)
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(opts.RequestTimeout))
		r.Get("/tree", nav.HandleTree)
		r.Get("/tree/node", nav.HandleNode)
		r.Get("/pages", nav.HandlePages)
		r.Get("/pages/{id}", nav.HandlePage)
		r.Get("/symbols", nav.HandleSymbols)
		r.Get("/symbols/{name}", nav.HandleSymbol)
		r.Get("/files/{id}", nav.HandleFile)
		r.Get("/index", nav.HandleIndex)
		r.Get("/index/chunks/{n}", nav.HandleChunk)
		r.Get("/locate", nav.HandleLocate)
		r.Get("/validation", nav.HandleValidation)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		adapter.WriteErrorResponse(w, r, errors.NotFoundError("no such endpoint").
			WithContext("path", r.URL.Path).
			Build())
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Start binds the listener synchronously, so address conflicts are reported
// to the caller, and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return errors.WrapError(err, errors.CategoryNetwork, "failed to bind HTTP listener").
			WithContext("addr", s.addr).
			Build()
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	go func() {
		if err := s.srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", logfields.Error(err))
		}
	}()
	s.logger.Info("HTTP server started", slog.String("addr", ln.Addr().String()))
	return nil
}

// Addr returns the bound address once started, otherwise the configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
