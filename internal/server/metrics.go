package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tildesoft/workspace-mcp/internal/instrumentation"
)

const (
	// DefaultMetricsAddr is the default bind address for the metrics
	// listener.
	DefaultMetricsAddr = ":9090"

	metricsReadTimeout  = 10 * time.Second
	metricsWriteTimeout = 10 * time.Second
	metricsIdleTimeout  = 60 * time.Second
)

// MetricsServer serves the Prometheus scrape endpoint on a dedicated port,
// keeping operational metrics off the application listener.
type MetricsServer struct {
	httpServer *http.Server
	addr       string
	logger     *slog.Logger
}

// NewMetricsServer creates the metrics server. The instrumentation
// provider must be enabled.
func NewMetricsServer(addr string, provider *instrumentation.Provider, logger *slog.Logger) (*MetricsServer, error) {
	if addr == "" {
		addr = DefaultMetricsAddr
	}
	if provider == nil || !provider.Enabled() {
		return nil, fmt.Errorf("metrics server requires an enabled instrumentation provider")
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", provider.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return &MetricsServer{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: metricsReadTimeout,
			WriteTimeout:      metricsWriteTimeout,
			IdleTimeout:       metricsIdleTimeout,
		},
		addr:   addr,
		logger: logger,
	}, nil
}

// Start serves until the listener fails or Shutdown is called.
func (s *MetricsServer) Start() error {
	if s.logger != nil {
		s.logger.Info("starting metrics server", "addr", s.addr)
	}
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the metrics server.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the configured bind address.
func (s *MetricsServer) Addr() string {
	return s.addr
}
