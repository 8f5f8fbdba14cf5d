package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func testRun(kind, env string, startedAt time.Time, success bool, outcome string) Run {
	return Run{
		ID:          uuid.NewString(),
		Kind:        kind,
		Environment: env,
		StartedAt:   startedAt,
		Duration:    1500 * time.Millisecond,
		Success:     success,
		Outcome:     outcome,
	}
}

func TestSQLiteStoreRecordAndRecent(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, testRun(KindBuild, "staging", base, true, "regenerated")))
	require.NoError(t, store.Record(ctx, testRun(KindDeploy, "staging", base.Add(time.Minute), true, "provisioned")))
	require.NoError(t, store.Record(ctx, testRun(KindDeploy, "production", base.Add(2*time.Minute), false, "remote reported failure")))

	runs, err := store.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	require.Equal(t, "remote reported failure", runs[0].Outcome)
	require.Equal(t, "provisioned", runs[1].Outcome)
	require.Equal(t, "regenerated", runs[2].Outcome)
	require.Equal(t, base.Add(2*time.Minute), runs[0].StartedAt)
	require.False(t, runs[0].Success)
	require.True(t, runs[1].Success)

	limited, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
}

func TestSQLiteStoreByEnvironment(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Record(ctx, testRun(KindBuild, "staging", base, true, "regenerated")))
	require.NoError(t, store.Record(ctx, testRun(KindBuild, "production", base.Add(time.Minute), true, "skipped")))

	runs, err := store.ByEnvironment(ctx, "production", 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, "production", runs[0].Environment)
	require.Equal(t, "skipped", runs[0].Outcome)

	empty, err := store.ByEnvironment(ctx, "qa", 10)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestSQLiteStoreDetailsRoundTrip(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	run := testRun(KindBuild, "staging", time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC), true, "regenerated")
	run.Details = map[string]string{
		"reason":          "template changed",
		"template_digest": "abc123",
	}
	require.NoError(t, store.Record(ctx, run))

	runs, err := store.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, run.Details, runs[0].Details)
}

func TestSQLiteStoreCreatesParentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "history.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Record(context.Background(), testRun(KindBuild, "staging", time.Now(), true, "regenerated")))
	require.FileExists(t, path)
}
