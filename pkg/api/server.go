// Package api serves the termtree pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz                 liveness and version
//	POST /v1/graph                pruned, ranked graph as JSON
//	POST /v1/layout               layout JSON (tree or nodelink)
//	POST /v1/render?format=svg    rendered diagram; format is svg, dot or json
//
// Every POST body has the shape
//
//	{"rows": [...], "dependencies": [...], "derived": [...], "options": {...}}
//
// where rows are sheet rows keyed by header and options are
// [pipeline.Options]. Every response carries an X-Request-ID header; a
// client-supplied id is echoed back, otherwise a UUID is generated.
package api

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator"

	"github.com/matzehuels/termtree/pkg/config"
	"github.com/matzehuels/termtree/pkg/pipeline"
)

// ShutdownTimeout bounds graceful shutdown in [Server.Run].
const ShutdownTimeout = 10 * time.Second

// Server is the HTTP front end of a [pipeline.Runner].
type Server struct {
	runner   *pipeline.Runner
	cfg      config.ServerConfig
	logger   *log.Logger
	validate *validator.Validate
	router   chi.Router
}

// New returns a server for runner. Zero fields of cfg take the defaults of
// package config; a nil logger discards output.
func New(runner *pipeline.Runner, cfg config.ServerConfig, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Addr == "" {
		cfg.Addr = config.DefaultServerAddr
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = config.DefaultMaxBodyBytes
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = config.DefaultReadTimeout
	}
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = config.DefaultWriteTimeout
	}
	s := &Server{
		runner:   runner,
		cfg:      cfg,
		logger:   logger,
		validate: validator.New(),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.WriteTimeout))
		r.Use(middleware.AllowContentType("application/json"))
		r.Post("/graph", s.handleGraph)
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, errorBody(r, "NOT_FOUND", "no such route"))
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run listens on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout + 5*time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errc
}
