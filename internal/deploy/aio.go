package deploy

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
	"strings"

	mberrors "github.com/storefront-tools/meshbuild/internal/errors"
)

// aioBinary is the Adobe I/O CLI. Mesh submission and status both go through
// its api-mesh plugin.
const aioBinary = "aio"

// AioMeshService drives mesh updates through the external `aio` CLI.
type AioMeshService struct {
	workDir string
	env     string
}

// NewAioMeshService returns a service that runs `aio` in workDir. The env
// name is passed through as --env so the CLI selects the right workspace.
func NewAioMeshService(workDir, env string) *AioMeshService {
	return &AioMeshService{workDir: workDir, env: env}
}

// Available reports whether the aio binary can be found in PATH.
func (s *AioMeshService) Available() bool {
	_, err := exec.LookPath(aioBinary)
	return err == nil
}

func (s *AioMeshService) updateArgs(meshConfigPath string) []string {
	args := []string{"api-mesh:update", meshConfigPath, "--autoConfirmAction"}
	if s.env != "" {
		args = append(args, "--env", s.env)
	}
	return args
}

func (s *AioMeshService) statusArgs() []string {
	args := []string{"api-mesh:status"}
	if s.env != "" {
		args = append(args, "--env", s.env)
	}
	return args
}

// SubmitUpdate runs `aio api-mesh:update` with the given mesh configuration.
func (s *AioMeshService) SubmitUpdate(ctx context.Context, meshConfigPath string) error {
	out, err := s.run(ctx, s.updateArgs(meshConfigPath))
	if err != nil {
		return mberrors.WrapRetryable(err, mberrors.CategoryMesh, mberrors.SeverityError, "aio api-mesh:update failed").
			WithContext("output", truncate(out, 500))
	}
	slog.Debug("Mesh update accepted", "output", truncate(out, 200))
	return nil
}

// CheckStatus runs `aio api-mesh:status` and returns its combined output for
// classification. A non-zero exit with output still reports that output: the
// CLI exits 1 for some non-terminal states.
func (s *AioMeshService) CheckStatus(ctx context.Context) (string, error) {
	out, err := s.run(ctx, s.statusArgs())
	if err != nil && strings.TrimSpace(out) == "" {
		return "", mberrors.WrapRetryable(err, mberrors.CategoryNetwork, mberrors.SeverityError, "aio api-mesh:status failed")
	}
	return out, nil
}

func (s *AioMeshService) run(ctx context.Context, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, aioBinary, args...)
	cmd.Dir = s.workDir
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	slog.Debug("Running aio", "args", strings.Join(args, " "), "dir", s.workDir)
	err := cmd.Run()
	return buf.String(), err
}
