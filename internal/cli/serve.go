package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/provision/internal/config"
	ophttp "github.com/aretw0/provision/pkg/adapters/http"
	"github.com/aretw0/provision/pkg/console"
	"github.com/aretw0/provision/pkg/observability"
	"github.com/aretw0/provision/pkg/ports"
	"github.com/aretw0/provision/pkg/runner"
	"github.com/aretw0/provision/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 5 * time.Second

func sessionGuard(env *environment, deviceID string) ports.Device {
	return session.NewGuard(env.device, env.manager, deviceID)
}

// Server accepts TCP consoles for one device and serves the ops API.
type Server struct {
	env      *environment
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *observability.Metrics
	seq      atomic.Uint64
	wg       sync.WaitGroup
}

// NewServer wires the environment described by cfg.
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	env, err := newEnvironment(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &Server{
		env:      env,
		logger:   logger,
		registry: reg,
		metrics:  observability.NewMetrics(reg),
	}, nil
}

// OpsHandler returns the HTTP handler for health, metrics and sessions.
func (s *Server) OpsHandler() http.Handler {
	opts := []ophttp.Option{
		ophttp.WithGatherer(s.registry),
		ophttp.WithLogger(s.logger),
	}
	if s.env.pinger != nil {
		opts = append(opts, ophttp.WithPinger(s.env.pinger))
	}
	return ophttp.NewHandler(s.env.manager, opts...)
}

// Serve accepts consoles on ln until ctx is cancelled, then closes every
// connection and waits for their consoles to stop.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	s.logger.Info("console server listening", "addr", ln.Addr().String(), "device_id", s.env.device.ID())
	for {
		conn, err := ln.Accept()
		if err != nil {
			s.wg.Wait()
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(ctx, conn)
		}()
	}
}

func (s *Server) handle(ctx context.Context, conn net.Conn) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer func() { _ = conn.Close() }()

	// Unblock the pump's Read when the server stops or the client hangs up.
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	id := fmt.Sprintf("tcp-%d", s.seq.Add(1))
	remote := conn.RemoteAddr().String()
	deviceID := s.env.device.ID()
	detach := s.env.manager.Attach(id, deviceID, remote)
	defer detach()

	hooks := s.metrics.Hooks().Merge(s.env.manager.Hooks())
	c := console.New(crlfWriter{w: conn}, sessionGuard(s.env, deviceID), s.env.consoleOptions(id, hooks)...)
	defer func() { _ = c.Close() }()
	c.Greet()

	s.logger.Info("console attached", "console_id", id, "remote", remote)
	err := runner.New(c, newKeyReader(conn, cancel), runner.WithLogger(s.logger)).Run(ctx)
	if err = HandleExecutionError(err); err != nil {
		s.logger.Warn("console ended with error", "console_id", id, "err", err)
		return
	}
	s.logger.Info("console detached", "console_id", id)
}

// Close releases the environment.
func (s *Server) Close() error {
	return s.env.Close()
}

// Serve runs the console server and, when configured, the ops HTTP server until ctx ends.
func Serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	sc := NewSignalContext(ctx)
	defer sc.Cancel()

	srv, err := NewServer(sc, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = srv.Close() }()

	ln, err := net.Listen("tcp", cfg.Serve.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Serve.Addr, err)
	}

	errCh := make(chan error, 1)
	var ops *http.Server
	if cfg.Serve.OpsAddr != "" {
		ops = &http.Server{Addr: cfg.Serve.OpsAddr, Handler: srv.OpsHandler(), ReadHeaderTimeout: shutdownTimeout}
		go func() {
			logger.Info("ops server listening", "addr", cfg.Serve.OpsAddr)
			if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("ops server: %w", err)
				sc.Cancel()
			}
		}()
	}

	serveErr := srv.Serve(sc, ln)

	if ops != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := ops.Shutdown(shutdownCtx); err != nil {
			logger.Warn("ops server shutdown incomplete", "err", err)
		}
	}
	if sig := sc.Signal(); sig != nil {
		logger.Info("server stopped", "signal", sig.String())
	}

	select {
	case err := <-errCh:
		return err
	default:
	}
	return serveErr
}
