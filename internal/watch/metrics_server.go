package watch

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

// MetricsServer exposes the Prometheus /metrics endpoint while watch mode
// runs.
type MetricsServer struct {
	server *http.Server
}

// NewMetricsServer serves handler at /metrics on addr.
func NewMetricsServer(addr string, handler http.Handler) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	return &MetricsServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start serves in the background and logs if the listener fails.
func (m *MetricsServer) Start() {
	slog.Info("Serving metrics", "addr", m.server.Addr)
	go func() {
		if err := m.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
}

// Stop gracefully shuts the server down.
func (m *MetricsServer) Stop(ctx context.Context) error {
	return m.server.Shutdown(ctx)
}
