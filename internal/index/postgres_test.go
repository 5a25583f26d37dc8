package index_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"vidup/internal/index"
	"vidup/internal/scene"
)

func TestPostgresBackend(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("vidup"),
		tcpostgres.WithUsername("vidup"),
		tcpostgres.WithPassword("vidup"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	defer func() { _ = pgContainer.Terminate(context.Background()) }()

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	store, err := index.Open(ctx, index.Options{Driver: index.DriverPostgres, DSN: dsn})
	require.NoError(t, err)
	defer store.Close()

	_, err = store.RegisterFile(ctx, "early")
	require.ErrorIs(t, err, index.ErrNotInitialized)

	require.NoError(t, store.Init(ctx))
	require.NoError(t, store.Init(ctx))

	a, err := store.RegisterFile(ctx, "a")
	require.NoError(t, err)
	b, err := store.RegisterFile(ctx, "b")
	require.NoError(t, err)
	_, err = store.RegisterFile(ctx, "a")
	require.True(t, errors.Is(err, index.ErrNameExists), "got %v", err)

	high := scene.ID{Hash: 0xFFFFFFF0, DurationMs: 4000}
	low := scene.ID{Hash: 1, DurationMs: 100}
	for _, sc := range []index.Scene{
		{ID: high, FileID: a}, {ID: low, FileID: a}, {ID: high, FileID: b}, {ID: low, FileID: b},
	} {
		require.NoError(t, store.RegisterScene(ctx, sc))
	}

	scenes, err := store.ScenesByFile(ctx, a, nil)
	require.NoError(t, err)
	require.Equal(t, []index.Scene{{ID: high, FileID: a}, {ID: low, FileID: a}}, scenes)

	holders, err := store.ScenesByHash(ctx, high, nil)
	require.NoError(t, err)
	require.Len(t, holders, 2)

	top, err := store.TopHashes(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, []index.HashCount{{ID: high, Count: 2}, {ID: low, Count: 2}}, top)

	require.NoError(t, store.UpdateFileStatus(ctx, a, index.StatusAnalyzed))
	require.NoError(t, store.DeleteFile(ctx, b))
	holders, err = store.ScenesByHash(ctx, high, nil)
	require.NoError(t, err)
	require.Equal(t, []index.Scene{{ID: high, FileID: a}}, holders)

	again, err := store.RegisterFile(ctx, "b")
	require.NoError(t, err)
	require.Greater(t, again, b)
	require.NoError(t, store.DeleteFile(ctx, again))

	health, err := store.Health(ctx)
	require.NoError(t, err)
	require.Equal(t, index.DriverPostgres, health.Driver)
	require.Equal(t, 1, health.Files)
	require.Equal(t, 1, health.Analyzed)
	require.Equal(t, 2, health.Scenes)
}
