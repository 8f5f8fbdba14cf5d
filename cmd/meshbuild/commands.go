package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/storefront-tools/meshbuild/internal/build"
	"github.com/storefront-tools/meshbuild/internal/config"
	"github.com/storefront-tools/meshbuild/internal/deploy"
	mberrors "github.com/storefront-tools/meshbuild/internal/errors"
	"github.com/storefront-tools/meshbuild/internal/history"
	"github.com/storefront-tools/meshbuild/internal/notify"
)

func runBuild(force bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := build.NewGenerator(cfg).Build(build.Options{Force: force, Environment: CLI.Env})
	finishRun(cfg, history.Run{
		ID:          uuid.NewString(),
		Kind:        history.KindBuild,
		Environment: CLI.Env,
		StartedAt:   start,
		Duration:    time.Since(start),
		Success:     err == nil,
		Outcome:     buildOutcome(result, err),
	})
	if err != nil {
		return err
	}

	if result.Regenerated {
		fmt.Printf("Regenerated %s (%s)\n", cfg.Mesh.Artifact, result.Reason)
	} else {
		fmt.Printf("Up to date: %s (%s)\n", cfg.Mesh.Artifact, result.Reason)
	}
	return nil
}

func runDeploy(force, skipBuild bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if !skipBuild {
		if err := runBuild(force); err != nil {
			return err
		}
	}

	svc := deploy.NewAioMeshService(".", CLI.Env)
	if !svc.Available() {
		return mberrors.New(mberrors.CategoryMesh, mberrors.SeverityFatal,
			"aio CLI not found in PATH")
	}

	start := time.Now()
	outcome, err := deploy.NewStateMachine(svc, cfg.Deploy).
		Deploy(context.Background(), cfg.Mesh.ConfigOutput)
	finishRun(cfg, history.Run{
		ID:          uuid.NewString(),
		Kind:        history.KindDeploy,
		Environment: CLI.Env,
		StartedAt:   start,
		Duration:    time.Since(start),
		Success:     err == nil,
		Outcome:     outcome.TerminalReason,
		Details: map[string]string{
			"attempts": fmt.Sprintf("%d", outcome.Attempts),
			"polls":    fmt.Sprintf("%d", outcome.Polls),
		},
	})
	if err != nil {
		return err
	}

	if outcome.Warning {
		fmt.Printf("Warning: %s after %d polls; verify with `aio api-mesh:status`\n",
			outcome.TerminalReason, outcome.Polls)
	} else {
		fmt.Printf("Mesh %s after %d polls\n", outcome.TerminalReason, outcome.Polls)
	}
	return nil
}

func runStatus() error {
	svc := deploy.NewAioMeshService(".", CLI.Env)
	if !svc.Available() {
		return mberrors.New(mberrors.CategoryMesh, mberrors.SeverityFatal,
			"aio CLI not found in PATH")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	status, err := svc.CheckStatus(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", deploy.Classify(status), status)
	return nil
}

func runHistory(limit int, env string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := history.NewSQLiteStore(cfg.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	var runs []history.Run
	if env != "" {
		runs, err = store.ByEnvironment(ctx, env, limit)
	} else {
		runs, err = store.Recent(ctx, limit)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WHEN\tKIND\tENV\tRESULT\tOUTCOME\tDURATION")
	for _, r := range runs {
		result := "ok"
		if !r.Success {
			result = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			r.Kind, r.Environment, result, r.Outcome, r.Duration.Round(time.Millisecond))
	}
	return w.Flush()
}

func buildOutcome(result *build.GenerationResult, err error) string {
	if err != nil {
		return "failed"
	}
	return result.Reason
}

// finishRun records the run locally and publishes a notification. Both are
// best-effort: bookkeeping never fails the run itself.
func finishRun(cfg *config.Config, run history.Run) {
	if store, err := history.NewSQLiteStore(cfg.History.Path); err != nil {
		slog.Warn("Could not open run history", "error", err)
	} else {
		if err := store.Record(context.Background(), run); err != nil {
			slog.Warn("Could not record run", "error", err)
		}
		store.Close()
	}

	notifier, err := notify.New(cfg.Notifications)
	if err != nil {
		slog.Warn("Could not connect notifier", "error", err)
		return
	}
	defer notifier.Close()
	if err := notifier.Publish(notify.Event{
		RunID:       run.ID,
		Kind:        run.Kind,
		Environment: run.Environment,
		Success:     run.Success,
		Outcome:     run.Outcome,
		At:          run.StartedAt,
	}); err != nil {
		slog.Warn("Could not publish run event", "error", err)
	}
}
