//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/adastrum/photogate/internal/database"
	"github.com/adastrum/photogate/internal/domain"
)

func setupIntegrationTest(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "photogate_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://test:test@%s:%s/photogate_test?sslmode=disable", host, port.Port())

	sqlDB, err := database.NewSQLDB(dsn)
	require.NoError(t, err)
	migrator, err := database.NewMigrator(sqlDB, "photogate_test")
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	pool, err := database.NewPgxPool(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

func TestValidationRepository_Integration(t *testing.T) {
	pool, cleanup := setupIntegrationTest(t)
	defer cleanup()

	ctx := context.Background()
	repo := NewValidationRepository(pool)

	records := []*domain.ValidationRecord{
		{
			ID:         uuid.New(),
			Mode:       domain.ModeFull,
			Status:     domain.StatusSuccess,
			ErrorCodes: []string{},
			Width:      600,
			Height:     900,
			LatencyMs:  120,
		},
		{
			ID:         uuid.New(),
			Mode:       domain.ModeFull,
			Status:     domain.StatusFail,
			ErrorCodes: []string{"no_face_detected"},
			Width:      600,
			Height:     900,
			LatencyMs:  95,
		},
		{
			ID:         uuid.New(),
			Mode:       domain.ModeStream,
			Status:     domain.StatusFail,
			ErrorCodes: []string{"no_face_detected", "image_blurry_or_out_of_focus"},
			LatencyMs:  40,
		},
	}

	for _, rec := range records {
		require.NoError(t, repo.Create(ctx, rec))
		assert.False(t, rec.CreatedAt.IsZero(), "create must return the stored timestamp")
	}

	counts, err := repo.CodeCounts(ctx, 1)
	require.NoError(t, err)

	assert.Equal(t, map[string]int64{
		"no_face_detected":             2,
		"image_blurry_or_out_of_focus": 1,
	}, counts)
}
