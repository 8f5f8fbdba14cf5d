package main

import (
	"context"
	"log/slog"
	"os/signal"
	"sync"
	"syscall"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/storefront-tools/meshbuild/internal/build"
	"github.com/storefront-tools/meshbuild/internal/config"
	"github.com/storefront-tools/meshbuild/internal/deploy"
	"github.com/storefront-tools/meshbuild/internal/metrics"
	"github.com/storefront-tools/meshbuild/internal/watch"
)

// reloadAndBuild re-reads the configuration from disk and regenerates the
// artifact with it. Config edits are one of the watch triggers, so every
// rebuild starts from the file, not from a startup snapshot; a failed reload
// keeps the last good configuration.
func reloadAndBuild(configPath string, prev *config.Config, recorder metrics.Recorder, env string) (*config.Config, *build.GenerationResult, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		slog.Error("Config reload failed; keeping previous configuration", "error", err)
		cfg = prev
	}
	result, err := build.NewGenerator(cfg).WithRecorder(recorder).Build(build.Options{Environment: env})
	return cfg, result, err
}

func runWatch(deployAfter bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := prom.NewRegistry()
	recorder := metrics.NewPrometheusRecorder(registry)
	svc := deploy.NewAioMeshService(".", CLI.Env)

	// The mutex serializes rebuilds: the debouncer collapses event bursts but
	// does not prevent a new trigger from firing while a build is running.
	var rebuildMu sync.Mutex
	rebuild := func() {
		rebuildMu.Lock()
		defer rebuildMu.Unlock()

		fresh, result, err := reloadAndBuild(CLI.Config, cfg, recorder, CLI.Env)
		cfg = fresh
		if err != nil {
			slog.Error("Rebuild failed", "error", err)
			return
		}
		slog.Info("Rebuild finished", "regenerated", result.Regenerated, "reason", result.Reason)

		if deployAfter && result.Regenerated {
			if !svc.Available() {
				slog.Error("Cannot deploy: aio CLI not found in PATH")
				return
			}
			outcome, err := deploy.NewStateMachine(svc, cfg.Deploy).
				WithRecorder(recorder).
				Deploy(ctx, cfg.Mesh.ConfigOutput)
			if err != nil {
				slog.Error("Deploy failed", "error", err)
				return
			}
			slog.Info("Deploy finished",
				"outcome", outcome.TerminalReason,
				"warning", outcome.Warning,
				"polls", outcome.Polls)
		}
	}

	// Build once at startup so the watcher begins from a consistent artifact.
	rebuild()

	debounce := time.Duration(cfg.Watch.DebounceMillis) * time.Millisecond
	watcher, err := watch.NewWatcher([]string{cfg.Mesh.Template, CLI.Config}, debounce, rebuild)
	if err != nil {
		return err
	}
	watcher.Start(ctx)
	defer watcher.Stop()

	if svc.Available() {
		statusSync, err := watch.NewStatusSync(svc, cfg.Watch.StatusSyncDuration(), func(status string, class deploy.StatusClass) {
			slog.Info("Mesh status", "class", class)
		})
		if err != nil {
			return err
		}
		statusSync.Start()
		defer func() {
			if err := statusSync.Stop(); err != nil {
				slog.Warn("Status sync shutdown failed", "error", err)
			}
		}()
	} else {
		slog.Warn("aio CLI not found; status sync disabled")
	}

	server := watch.NewMetricsServer(cfg.Watch.MetricsAddr, metrics.HTTPHandler(registry))
	server.Start()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Stop(shutdownCtx); err != nil {
			slog.Warn("Metrics server shutdown failed", "error", err)
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down watch mode")
	return nil
}
