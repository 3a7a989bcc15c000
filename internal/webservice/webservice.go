// Package webservice provides an HTTP server serving the appliance reports to the front-end client.
package webservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/cors"
	commonmetrics "github.com/ubuntu/appliance-insights/internal/common/metrics"
	"github.com/ubuntu/appliance-insights/internal/webservice/handlers"
	"github.com/ubuntu/appliance-insights/internal/webservice/metrics"
)

// Server is a struct that holds the HTTP servers and their configuration.
type Server struct {
	httpServer    *http.Server
	metricsServer *commonmetrics.Server
	cm            dConfigManager

	addr net.Addr
	mu   sync.RWMutex

	// This context is used to interrupt any action.
	// It must be the parent of gracefulCtx.
	ctx    context.Context
	cancel context.CancelFunc

	// This context waits until in-flight requests are done to interrupt.
	gracefulCtx    context.Context
	gracefulCancel context.CancelFunc
}

// StaticConfig holds the static configuration for the server.
type StaticConfig struct {
	ConfigPath      string
	ExplanationPath string
	SchedulesPath   string

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	RequestTimeout time.Duration
	MaxHeaderBytes int

	ListenHost string
	ListenPort int

	MetricsHost string
	MetricsPort int
}

type dConfigManager interface {
	Load() error
	Watch(context.Context) (<-chan struct{}, <-chan error, error)
	AllowsOrigin(string) bool
}

// New creates a new Server instance with the given config manager and static configuration.
func New(ctx context.Context, cm dConfigManager, sc StaticConfig) (*Server, error) {
	if err := cm.Load(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	gCtx, gCancel := context.WithCancel(ctx)

	s := Server{
		cm:     cm,
		ctx:    ctx,
		cancel: cancel,

		gracefulCtx:    gCtx,
		gracefulCancel: gCancel}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	mw := metrics.NewEndpointMiddleware(reg)
	reads := metrics.NewReportReads(reg)

	mux := http.NewServeMux()
	mux.Handle("GET /analysis", mw.Wrap("analysis", handlers.NewAnalysis(sc.ExplanationPath, reads)))
	mux.Handle("GET /schedules", mw.Wrap("schedules", handlers.NewSchedules(sc.SchedulesPath, reads)))
	mux.Handle("GET /refresh", mw.Wrap("refresh", http.HandlerFunc(handlers.RefreshHandler)))
	mux.Handle("GET /version", mw.Wrap("version", http.HandlerFunc(handlers.VersionHandler)))

	c := cors.New(cors.Options{
		AllowOriginFunc: cm.AllowsOrigin,
		AllowedMethods:  []string{http.MethodGet, http.MethodOptions},
	})

	s.httpServer = &http.Server{
		Addr:           net.JoinHostPort(sc.ListenHost, strconv.Itoa(sc.ListenPort)),
		ReadTimeout:    sc.ReadTimeout,
		WriteTimeout:   sc.WriteTimeout,
		Handler:        http.TimeoutHandler(c.Handler(mux), sc.RequestTimeout, ""),
		MaxHeaderBytes: sc.MaxHeaderBytes,
	}

	s.metricsServer = commonmetrics.New(commonmetrics.Config{
		Host:         sc.MetricsHost,
		Port:         sc.MetricsPort,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
	}, reg)

	return &s, nil
}

// Run starts the HTTP servers and listens for incoming requests.
// It blocks until the server is asked to quit or fails.
func (s *Server) Run() error {
	slog.Info("Starting server", "addr", s.httpServer.Addr)

	// already asked to quit?
	select {
	case <-s.gracefulCtx.Done():
		s.cancel()
		return errors.New("server is already shutting down")
	default:
	}

	_, watchErr, err := s.cm.Watch(s.gracefulCtx)
	if err != nil {
		return fmt.Errorf("failed to start watching configuration: %v", err)
	}

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("failed to listen on %s: %v", s.httpServer.Addr, err)
	}
	s.mu.Lock()
	s.addr = listener.Addr()
	s.mu.Unlock()

	serverErr := make(chan error, 1)
	go func() {
		defer close(serverErr)
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	metricsErr := make(chan error, 1)
	go func() {
		defer close(metricsErr)
		if err := s.metricsServer.ListenAndServe(); err != nil {
			metricsErr <- err
		}
	}()

	select {
	case <-s.gracefulCtx.Done():
		slog.Info("Graceful shutdown initiated")
		// Shutdown waits for in-flight requests. A forced Quit cancels s.ctx and unblocks it.
		err := errors.Join(s.httpServer.Shutdown(s.ctx), s.metricsServer.Shutdown(s.ctx))
		// now kill everything else (watchers, handlers, etc.)
		s.cancel()
		if err != nil {
			slog.Error("Graceful shutdown failed", "err", err)
			return err
		}
		slog.Info("Server shut down gracefully")
		return nil

	case err := <-serverErr:
		errC := s.metricsServer.Close()
		s.cancel()
		if err != nil {
			slog.Error("Server encountered error", "err", err)
		}
		return errors.Join(err, errC)

	case err := <-metricsErr:
		errC := s.httpServer.Close()
		s.cancel()
		if err != nil {
			slog.Error("Metrics server encountered error", "err", err)
			err = fmt.Errorf("metrics server: %v", err)
		}
		return errors.Join(err, errC)

	case err := <-watchErr:
		if err != nil {
			slog.Error("Config watcher encountered unrecoverable error", "err", err)
		}
		errC := errors.Join(s.httpServer.Close(), s.metricsServer.Close())
		s.cancel()

		return errors.Join(err, errC)
	}
}

// Quit shuts down the HTTP servers, gracefully unless force is set.
//
// A graceful Quit lets Run wait for in-flight requests before returning.
func (s *Server) Quit(force bool) {
	if force {
		s.httpServer.Close()
		s.metricsServer.Close()
		s.cancel()
	} else {
		s.gracefulCancel()
	}
	slog.Info("Server quit")
}

// Addr returns the address the server is listening on.
// Before the server listens, it is the configured address.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.addr == nil {
		return s.httpServer.Addr
	}
	return s.addr.String()
}

// MetricsAddr returns the address the metrics server is listening on, or an empty string before it listens.
func (s *Server) MetricsAddr() string {
	return s.metricsServer.Addr()
}
