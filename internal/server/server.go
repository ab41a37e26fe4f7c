// Package server runs the HTTP listener and the ordered shutdown of the
// components behind it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/koustreak/bucketlink/internal/logger"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Closer is a cleanup step run after the listener has stopped.
type Closer struct {
	Name  string
	Close func(ctx context.Context) error
}

type Server struct {
	http            *http.Server
	shutdownTimeout time.Duration
	closers         []Closer
	log             *logger.Logger
}

func New(cfg Config, handler http.Handler, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Server{
		http: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       2 * time.Minute,
		},
		shutdownTimeout: timeout,
		log:             log.Component("server"),
	}
}

// OnShutdown registers c. Closers run in registration order once the
// HTTP server has drained, sharing the shutdown timeout.
func (s *Server) OnShutdown(c Closer) {
	s.closers = append(s.closers, c)
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done or the listener fails, then shuts
// down. The returned error joins the serve error with any shutdown
// errors.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.With().Str("addr", ln.Addr().String()).Logger().Info("listening")
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	return g.Wait()
}

func (s *Server) shutdown() error {
	s.log.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	var errList []error
	if err := s.http.Shutdown(ctx); err != nil {
		errList = append(errList, fmt.Errorf("server: http shutdown: %w", err))
	}
	for _, c := range s.closers {
		if err := c.Close(ctx); err != nil {
			s.log.With().Str("closer", c.Name).Err(err).Logger().Error("close failed")
			errList = append(errList, fmt.Errorf("server: close %s: %w", c.Name, err))
		}
	}
	s.log.Info("stopped")
	return errors.Join(errList...)
}
