package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/storefront-tools/meshbuild/internal/config"
	mberrors "github.com/storefront-tools/meshbuild/internal/errors"
	"github.com/storefront-tools/meshbuild/internal/metrics"
	"github.com/storefront-tools/meshbuild/internal/retry"
)

// State names the phases of a deployment, for logging.
type State string

const (
	StateSubmitting State = "submitting"
	StatePolling    State = "polling"
	StateSucceeded  State = "succeeded"
	StateFailed     State = "failed"
	StateTimedOut   State = "timed_out"
)

// Terminal reasons surfaced in outcomes.
const (
	ReasonProvisioned   = "provisioned"
	ReasonRemoteFailure = "remote reported failure"
	ReasonSoftTimeout   = "timed out, status unknown"
)

// consecutivePollErrorLimit bounds how many status checks may fail in a row
// before polling is abandoned as broken rather than merely slow.
const consecutivePollErrorLimit = 3

// Attempt is the transient state of one submit-and-poll cycle. It lives only
// for the duration of the deploy call.
type Attempt struct {
	ID            string
	AttemptNumber int
	PollCount     int
	LastStatus    string
	StartedAt     time.Time
}

// Outcome is the final result of a deploy call. A soft timeout is a success
// with Warning set: the remote operation may still complete after the tool
// stops observing it, so an ambiguous timeout deliberately does not fail the
// deployment, while an explicit remote failure always does.
type Outcome struct {
	Success        bool   `json:"success"`
	Warning        bool   `json:"warning,omitempty"`
	Attempts       int    `json:"attempts"`
	Polls          int    `json:"polls"`
	TerminalReason string `json:"terminalReason"`
}

// StateMachine runs the submit/poll protocol against a MeshService.
type StateMachine struct {
	service         MeshService
	policy          retry.Policy
	pollInterval    time.Duration
	maxPollAttempts int
	maxSubmits      int
	recorder        metrics.Recorder
	sleep           func(ctx context.Context, d time.Duration) error
	now             func() time.Time
}

// NewStateMachine builds a state machine from the deploy configuration.
func NewStateMachine(service MeshService, cfg config.DeployConfig) *StateMachine {
	return &StateMachine{
		service:         service,
		policy:          cfg.SubmitPolicy(),
		pollInterval:    cfg.PollIntervalDuration(),
		maxPollAttempts: cfg.MaxPollAttempts,
		maxSubmits:      cfg.MaxSubmitRetries,
		recorder:        metrics.NoopRecorder{},
		sleep:           sleepCtx,
		now:             time.Now,
	}
}

// WithRecorder injects a metrics recorder.
func (m *StateMachine) WithRecorder(r metrics.Recorder) *StateMachine {
	if r != nil {
		m.recorder = r
	}
	return m
}

// Deploy submits the mesh update and polls until a terminal state, the poll
// budget, or context cancellation. Polls are strictly sequential: the remote
// side holds a single mutable provisioning state.
func (m *StateMachine) Deploy(ctx context.Context, meshConfigPath string) (*Outcome, error) {
	start := m.now()
	outcome, err := m.run(ctx, meshConfigPath)
	m.recorder.ObserveDeployDuration(m.now().Sub(start))
	m.recorder.ObservePollCount(outcome.Polls)
	switch {
	case err != nil:
		m.recorder.IncDeployOutcome("failed")
	case outcome.Warning:
		m.recorder.IncDeployOutcome("timed_out")
	default:
		m.recorder.IncDeployOutcome("provisioned")
	}
	return outcome, err
}

func (m *StateMachine) run(ctx context.Context, meshConfigPath string) (*Outcome, error) {
	polls := 0

	for attemptNo := 1; attemptNo <= m.maxSubmits; attemptNo++ {
		attempt := Attempt{
			ID:            uuid.NewString(),
			AttemptNumber: attemptNo,
			StartedAt:     m.now(),
		}
		slog.Info("Submitting mesh update",
			"state", StateSubmitting,
			"attempt", attempt.AttemptNumber,
			"attempt_id", attempt.ID,
			"mesh_config", meshConfigPath)

		if err := m.service.SubmitUpdate(ctx, meshConfigPath); err != nil {
			if ctx.Err() != nil {
				return &Outcome{Attempts: attemptNo, Polls: polls, TerminalReason: "canceled"}, ctx.Err()
			}
			slog.Warn("Mesh update submission failed", "attempt", attemptNo, "error", err)
			if attemptNo == m.maxSubmits {
				reason := fmt.Sprintf("submit failed after %d attempts", attemptNo)
				return &Outcome{Attempts: attemptNo, Polls: polls, TerminalReason: reason},
					mberrors.SubmitFailed(attemptNo, err)
			}
			m.recorder.IncSubmitRetry()
			if err := m.sleep(ctx, m.policy.Delay(attemptNo)); err != nil {
				return &Outcome{Attempts: attemptNo, Polls: polls, TerminalReason: "canceled"}, err
			}
			continue
		}

		outcome, err := m.poll(ctx, &attempt, &polls)
		if outcome != nil {
			outcome.Attempts = attemptNo
			return outcome, err
		}
	}

	// Unreachable: the loop always returns on the last attempt.
	return &Outcome{Attempts: m.maxSubmits, Polls: polls, TerminalReason: "exhausted"}, nil
}

// poll runs the polling loop for one successful submission. It always returns
// a non-nil outcome: submission acceptance means the protocol never falls
// back to another submit.
func (m *StateMachine) poll(ctx context.Context, attempt *Attempt, polls *int) (*Outcome, error) {
	errStreak := 0
	var lastErr error

	for pollNo := 1; pollNo <= m.maxPollAttempts; pollNo++ {
		if err := m.sleep(ctx, m.pollInterval); err != nil {
			return &Outcome{Polls: *polls, TerminalReason: "canceled"}, err
		}

		status, err := m.service.CheckStatus(ctx)
		*polls++
		attempt.PollCount++
		if err != nil {
			if ctx.Err() != nil {
				return &Outcome{Polls: *polls, TerminalReason: "canceled"}, ctx.Err()
			}
			errStreak++
			lastErr = err
			slog.Warn("Status check failed",
				"state", StatePolling,
				"poll", pollNo,
				"consecutive_failures", errStreak,
				"error", err)
			continue
		}
		errStreak = 0
		attempt.LastStatus = status

		class := Classify(status)
		slog.Info("Mesh status",
			"state", StatePolling,
			"poll", pollNo,
			"class", class,
			"status", truncate(status, 120))

		switch class {
		case StatusSucceeded:
			slog.Info("Mesh provisioned", "state", StateSucceeded, "polls", *polls)
			return &Outcome{Success: true, Polls: *polls, TerminalReason: ReasonProvisioned}, nil
		case StatusFailed:
			// Authoritative: the remote service said no. No outer retry.
			slog.Error("Mesh provisioning failed",
				"state", StateFailed,
				"status", truncate(status, 120))
			return &Outcome{Polls: *polls, TerminalReason: ReasonRemoteFailure},
				mberrors.RemoteFailure(status)
		default:
			// provisioning or unknown: keep polling.
		}
	}

	// Budget exhausted. A trailing run of failed checks means polling itself
	// is broken; otherwise this is the deliberate soft timeout.
	if errStreak >= min(consecutivePollErrorLimit, m.maxPollAttempts) {
		return &Outcome{Polls: *polls, TerminalReason: fmt.Sprintf("status polling failed after %d checks", *polls)},
			mberrors.PollFailed(*polls, lastErr)
	}

	slog.Warn("Poll budget exhausted without a terminal status; treating as soft timeout",
		"state", StateTimedOut,
		"polls", *polls,
		"last_status", attempt.LastStatus)
	return &Outcome{Success: true, Warning: true, Polls: *polls, TerminalReason: ReasonSoftTimeout}, nil
}

// sleepCtx sleeps for d unless the context is canceled first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
