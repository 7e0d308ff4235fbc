// Package server exposes the introspection API as read-only JSON over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/koustreak/schemaroute/internal/config"
	"github.com/koustreak/schemaroute/internal/errs"
	"github.com/koustreak/schemaroute/internal/introspect"
	"github.com/koustreak/schemaroute/internal/logger"
	"golang.org/x/sync/errgroup"
)

// Server serves the introspection API.
type Server struct {
	mgr *introspect.Manager
	cfg config.Server
	log *logger.Logger
}

// New returns a Server. log may be nil.
func New(mgr *introspect.Manager, cfg config.Server, log *logger.Logger) *Server {
	return &Server{mgr: mgr, cfg: cfg, log: logger.OrNop(log)}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		s.requestLogger,
		middleware.Recoverer,
	)

	h := &handlers{mgr: s.mgr, log: s.log}
	r.Get("/healthz", h.health)
	r.Get("/exists", h.exists)
	r.Get("/resolve/{table}", h.resolve)
	r.Route("/tables", func(r chi.Router) {
		r.Get("/", h.listTables)
		r.Get("/{table}", h.describeTable)
		r.Get("/{table}/columns", h.columnNames)
		r.Get("/{table}/columns/{column}", h.column)
	})
	return r
}

// Serve listens on the configured address until ctx is cancelled, then
// shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
	}

	eg.Go(func() error {
		s.log.With().Str("addr", s.cfg.Addr).Logger().Info("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errs.Wrap(errs.ErrKindConnectionFailed, "http server failed", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		timeout := s.cfg.ShutdownTimeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		s.log.Debug("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.log.Request(r.Method, r.URL.Path, ww.Status(), time.Since(start))
		}()
		next.ServeHTTP(ww, r.WithContext(s.log.WithContext(r.Context())))
	})
}
