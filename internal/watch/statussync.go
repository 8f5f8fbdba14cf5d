package watch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/storefront-tools/meshbuild/internal/deploy"
)

// StatusSync periodically checks the remote mesh status so watch mode can
// report drift without a manual `meshbuild status`.
type StatusSync struct {
	scheduler gocron.Scheduler
	service   deploy.MeshService
	onStatus  func(status string, class deploy.StatusClass)
}

// NewStatusSync builds a status sync that polls service every interval.
// onStatus receives the raw status and its classification.
func NewStatusSync(service deploy.MeshService, interval time.Duration, onStatus func(string, deploy.StatusClass)) (*StatusSync, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	sync := &StatusSync{scheduler: s, service: service, onStatus: onStatus}
	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(sync.check),
		gocron.WithName("mesh-status-sync"),
	)
	if err != nil {
		return nil, fmt.Errorf("create status sync job: %w", err)
	}
	return sync, nil
}

// Start begins the periodic checks.
func (s *StatusSync) Start() {
	slog.Info("Starting mesh status sync")
	s.scheduler.Start()
}

// Stop shuts the scheduler down.
func (s *StatusSync) Stop() error {
	slog.Info("Stopping mesh status sync")
	return s.scheduler.Shutdown()
}

func (s *StatusSync) check() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status, err := s.service.CheckStatus(ctx)
	if err != nil {
		slog.Warn("Status sync check failed", "error", err)
		return
	}
	class := deploy.Classify(status)
	slog.Debug("Mesh status sync", "class", class)
	if s.onStatus != nil {
		s.onStatus(status, class)
	}
}
