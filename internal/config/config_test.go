package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	mberrors "github.com/storefront-tools/meshbuild/internal/errors"
	"github.com/storefront-tools/meshbuild/internal/retry"
)

const minimalConfig = `
environments:
  staging:
    commerce_base_url: https://staging.store.example
mesh:
  api_key: ${MESH_API_KEY}
  sources:
    - name: commerce
      handler:
        graphql:
          endpoint: https://staging.store.example/graphql
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meshbuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("minimal config with defaults", func(t *testing.T) {
		t.Setenv("MESH_API_KEY", "key-from-env")
		cfg, err := Load(writeConfig(t, minimalConfig))
		require.NoError(t, err)

		require.Equal(t, "key-from-env", cfg.Mesh.APIKey)
		require.Equal(t, "resolvers.tmpl.js", cfg.Mesh.Template)
		require.Equal(t, "build/resolvers.js", cfg.Mesh.Artifact)
		require.Equal(t, "mesh.json", cfg.Mesh.ConfigOutput)
		require.Equal(t, []string{"./build/resolvers.js"}, cfg.Mesh.Resolvers)
		require.Equal(t, 300, cfg.Caching.DefaultTTLSeconds)
		require.Equal(t, 3, cfg.Deploy.MaxSubmitRetries)
		require.Equal(t, 30*time.Second, cfg.Deploy.PollIntervalDuration())
		require.Equal(t, 20, cfg.Deploy.MaxPollAttempts)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		require.True(t, mberrors.IsCategory(err, mberrors.CategoryConfig))
	})

	t.Run("no environments", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
mesh:
  sources:
    - name: commerce
      handler:
        graphql:
          endpoint: https://x.example/graphql
`))
		require.Error(t, err)
		require.True(t, mberrors.IsCategory(err, mberrors.CategoryConfig))
	})

	t.Run("source without endpoint", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
environments:
  staging:
    commerce_base_url: https://staging.store.example
mesh:
  sources:
    - name: commerce
      handler: {}
`))
		require.Error(t, err)
		require.True(t, mberrors.IsCategory(err, mberrors.CategoryValidation))
	})

	t.Run("invalid duration", func(t *testing.T) {
		_, err := Load(writeConfig(t, minimalConfig+`
deploy:
  poll_interval: soon
`))
		require.Error(t, err)
		require.True(t, mberrors.IsCategory(err, mberrors.CategoryValidation))
	})
}

func TestEnvironmentLookup(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)

	t.Run("empty name defaults to staging", func(t *testing.T) {
		env, err := cfg.Environment("")
		require.NoError(t, err)
		require.Equal(t, "https://staging.store.example", env.CommerceBaseURL)
	})

	t.Run("unknown environment", func(t *testing.T) {
		_, err := cfg.Environment("qa")
		require.Error(t, err)
	})
}

func TestSubmitPolicy(t *testing.T) {
	d := DeployConfig{
		MaxSubmitRetries:  3,
		SubmitBackoffMode: "exponential",
		SubmitBackoffInit: "2s",
		SubmitBackoffMax:  "20s",
	}
	p := d.SubmitPolicy()
	require.Equal(t, retry.BackoffExponential, p.Mode)
	require.Equal(t, 2*time.Second, p.Initial)
	require.Equal(t, 20*time.Second, p.Max)
	// 3 total attempts means 2 retries after the first failure.
	require.Equal(t, 2, p.MaxRetries)
}

func TestInit(t *testing.T) {
	t.Run("writes starter config that loads", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "meshbuild.yaml")
		require.NoError(t, Init(path, false))

		t.Setenv("MESH_API_KEY", "k")
		cfg, err := Load(path)
		require.NoError(t, err)
		require.Contains(t, cfg.Environments, "staging")
		require.Contains(t, cfg.Environments, "production")
	})

	t.Run("refuses overwrite without force", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "meshbuild.yaml")
		require.NoError(t, Init(path, false))
		require.Error(t, Init(path, false))
		require.NoError(t, Init(path, true))
	})
}
