package deploy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/storefront-tools/meshbuild/internal/config"
	mberrors "github.com/storefront-tools/meshbuild/internal/errors"
)

type statusResp struct {
	status string
	err    error
}

// fakeMeshService scripts submit and status responses in order. Responses
// beyond the end of a script repeat the last entry.
type fakeMeshService struct {
	submitErrs []error
	statuses   []statusResp
	submits    int
	checks     int
}

func (f *fakeMeshService) SubmitUpdate(ctx context.Context, path string) error {
	f.submits++
	if f.submits <= len(f.submitErrs) {
		return f.submitErrs[f.submits-1]
	}
	return nil
}

func (f *fakeMeshService) CheckStatus(ctx context.Context) (string, error) {
	f.checks++
	i := f.checks - 1
	if i >= len(f.statuses) {
		i = len(f.statuses) - 1
	}
	r := f.statuses[i]
	return r.status, r.err
}

func testDeployConfig() config.DeployConfig {
	return config.DeployConfig{
		MaxSubmitRetries:  3,
		PollInterval:      "30s",
		MaxPollAttempts:   5,
		SubmitBackoffMode: "linear",
		SubmitBackoffInit: "1s",
		SubmitBackoffMax:  "30s",
	}
}

func newTestMachine(svc MeshService) (*StateMachine, *[]time.Duration) {
	m := NewStateMachine(svc, testDeployConfig())
	var slept []time.Duration
	m.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return ctx.Err()
	}
	return m, &slept
}

func TestDeploySucceedsAfterPolling(t *testing.T) {
	svc := &fakeMeshService{statuses: []statusResp{
		{status: "provisioning"},
		{status: "provisioning"},
		{status: "Mesh provisioned successfully."},
	}}
	m, _ := newTestMachine(svc)

	out, err := m.Deploy(context.Background(), "build/mesh.json")
	require.NoError(t, err)
	require.True(t, out.Success)
	require.False(t, out.Warning)
	require.Equal(t, 1, out.Attempts)
	require.Equal(t, 3, out.Polls)
	require.Equal(t, ReasonProvisioned, out.TerminalReason)
	require.Equal(t, 1, svc.submits)
	require.Equal(t, 3, svc.checks)
}

func TestDeployRemoteFailureIsNeverResubmitted(t *testing.T) {
	svc := &fakeMeshService{statuses: []statusResp{
		{status: "error: invalid config"},
	}}
	m, _ := newTestMachine(svc)

	out, err := m.Deploy(context.Background(), "build/mesh.json")
	require.Error(t, err)
	require.True(t, mberrors.IsCategory(err, mberrors.CategoryMesh))
	require.False(t, mberrors.IsRetryable(err))
	require.False(t, out.Success)
	require.Equal(t, ReasonRemoteFailure, out.TerminalReason)
	require.Equal(t, 1, svc.submits)
	require.Equal(t, 1, svc.checks)
}

func TestDeployRetriesFailedSubmits(t *testing.T) {
	svc := &fakeMeshService{
		submitErrs: []error{errors.New("503"), errors.New("503")},
		statuses:   []statusResp{{status: "success"}},
	}
	m, slept := newTestMachine(svc)

	out, err := m.Deploy(context.Background(), "build/mesh.json")
	require.NoError(t, err)
	require.True(t, out.Success)
	require.Equal(t, 3, out.Attempts)
	require.Equal(t, 3, svc.submits)
	// Two backoff sleeps plus one poll-interval sleep.
	require.Len(t, *slept, 3)
}

func TestDeploySubmitExhaustion(t *testing.T) {
	boom := errors.New("network down")
	svc := &fakeMeshService{submitErrs: []error{boom, boom, boom}}
	m, _ := newTestMachine(svc)

	out, err := m.Deploy(context.Background(), "build/mesh.json")
	require.Error(t, err)
	require.True(t, mberrors.IsCategory(err, mberrors.CategoryMesh))
	require.False(t, out.Success)
	require.Equal(t, 3, out.Attempts)
	require.Equal(t, 0, out.Polls)
	require.Equal(t, "submit failed after 3 attempts", out.TerminalReason)
	require.Equal(t, 3, svc.submits)
	require.Equal(t, 0, svc.checks)
}

func TestDeploySoftTimeout(t *testing.T) {
	svc := &fakeMeshService{statuses: []statusResp{{status: "provisioning"}}}
	m, _ := newTestMachine(svc)

	out, err := m.Deploy(context.Background(), "build/mesh.json")
	require.NoError(t, err)
	require.True(t, out.Success)
	require.True(t, out.Warning)
	require.Equal(t, 5, out.Polls)
	require.Equal(t, ReasonSoftTimeout, out.TerminalReason)
	require.Equal(t, 1, svc.submits)
}

func TestDeployPollErrorStreakIsHardFailure(t *testing.T) {
	svc := &fakeMeshService{statuses: []statusResp{
		{err: errors.New("status unavailable")},
	}}
	m, _ := newTestMachine(svc)

	out, err := m.Deploy(context.Background(), "build/mesh.json")
	require.Error(t, err)
	require.True(t, mberrors.IsCategory(err, mberrors.CategoryNetwork))
	require.False(t, out.Success)
	require.Equal(t, 5, out.Polls)
}

func TestDeployTransientPollErrorsAreTolerated(t *testing.T) {
	svc := &fakeMeshService{statuses: []statusResp{
		{err: errors.New("blip")},
		{status: "provisioning"},
		{err: errors.New("blip")},
		{status: "deployed"},
	}}
	m, _ := newTestMachine(svc)

	out, err := m.Deploy(context.Background(), "build/mesh.json")
	require.NoError(t, err)
	require.True(t, out.Success)
	require.Equal(t, 4, out.Polls)
}

func TestDeployContextCancellation(t *testing.T) {
	svc := &fakeMeshService{statuses: []statusResp{{status: "provisioning"}}}
	m, _ := newTestMachine(svc)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out, err := m.Deploy(ctx, "build/mesh.json")
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, out.Success)
	require.Equal(t, "canceled", out.TerminalReason)
}

func TestAioArgConstruction(t *testing.T) {
	svc := NewAioMeshService("/work", "production")
	require.Equal(t,
		[]string{"api-mesh:update", "build/mesh.json", "--autoConfirmAction", "--env", "production"},
		svc.updateArgs("build/mesh.json"))
	require.Equal(t, []string{"api-mesh:status", "--env", "production"}, svc.statusArgs())

	noEnv := NewAioMeshService("", "")
	require.Equal(t, []string{"api-mesh:status"}, noEnv.statusArgs())
}
