package httpserver

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrymomot/resumekit/pkg/logger"
)

// Server runs an http.Server until the context is canceled or the process
// receives SIGINT/SIGTERM, then drains in-flight requests.
type Server struct {
	cfg Config
	log *slog.Logger
}

// New creates a Server. A nil logger discards output.
func New(cfg Config, log *slog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Server{cfg: cfg, log: log}
}

// Run blocks serving handler. It returns nil after a clean shutdown.
func (s *Server) Run(ctx context.Context, handler http.Handler) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return errors.Join(ErrStart, err)
	}
	return s.Serve(ctx, ln, handler)
}

// Serve is Run over an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Handler:      handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	s.log.InfoContext(ctx, "http server started", slog.String("addr", ln.Addr().String()))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Join(ErrStart, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()

	s.log.InfoContext(shutdownCtx, "http server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Join(ErrShutdown, err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Join(ErrShutdown, err)
	}
	s.log.InfoContext(shutdownCtx, "http server stopped")
	return nil
}
