package postgres

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgContainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/RMahshie/seisview/internal/repository"
	"github.com/RMahshie/seisview/pkg/models"
)

// setupDB starts a PostgreSQL container and applies the migrations
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := pgContainer.Run(ctx,
		"postgres:15-alpine",
		pgContainer.WithDatabase("seisview_test"),
		pgContainer.WithUsername("testuser"),
		pgContainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, container.Terminate(context.Background()))
	})

	dbURL, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("postgres", dbURL)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	migration, err := os.ReadFile(filepath.Join("..", "..", "..", "migrations", "000001_create_batches.up.sql"))
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, string(migration))
	require.NoError(t, err)

	return db
}

func TestPostgresBatchRepository_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db := setupDB(t)
	repo := NewPostgresBatchRepository(db)
	ctx := context.Background()

	batch := &models.Batch{
		Paths:   []string{"waveforms/a/CI.PASC.HNZ.V2", "waveforms/b/CI.PASC.HNE.V2"},
		Padded:  true,
		Spectra: true,
	}
	require.NoError(t, repo.Create(ctx, batch))
	assert.NotEmpty(t, batch.ID)
	assert.False(t, batch.CreatedAt.IsZero())

	id := uuid.MustParse(batch.ID)

	t.Run("round trip", func(t *testing.T) {
		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, batch.Paths, got.Paths)
		assert.True(t, got.Padded)
		assert.True(t, got.Spectra)
		assert.Equal(t, models.StatusPending, got.Status)
		assert.Nil(t, got.ErrorMsg)
		assert.Nil(t, got.CompletedAt)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("groups ordered by station", func(t *testing.T) {
		start := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
		groups := []*models.ChartGroup{
			{
				BatchID: batch.ID,
				Station: "CI.USC",
				Window:  models.Window{Start: start, Stop: start.Add(time.Second), DeltaT: 0.005},
				Series: []models.Series{{
					Title:    "CI.USC.HNE acceleration",
					Channel:  "HNE",
					Quantity: models.QuantityAcceleration,
					Points:   []models.Point{{X: 0, Y: 1.5}, {X: 0.005, Y: -2}},
				}},
				CreatedAt: time.Now(),
			},
			{
				BatchID:   batch.ID,
				Station:   "CI.PASC",
				Window:    models.Window{Start: start, Stop: start.Add(2 * time.Second), DeltaT: 0.01},
				Series:    []models.Series{{Title: "CI.PASC.HNZ acceleration", Channel: "HNZ"}},
				CreatedAt: time.Now(),
			},
		}
		require.NoError(t, repo.StoreGroups(ctx, groups))

		got, err := repo.GetGroups(ctx, id)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "CI.PASC", got[0].Station)
		assert.Equal(t, "CI.USC", got[1].Station)
		assert.True(t, start.Equal(got[1].Window.Start))
		assert.Equal(t, 0.005, got[1].Window.DeltaT)
		require.Len(t, got[1].Series, 1)
		assert.Equal(t, groups[0].Series[0].Points, got[1].Series[0].Points)
		assert.Nil(t, got[1].Series[0].Spectrum)
	})

	t.Run("status transitions", func(t *testing.T) {
		require.NoError(t, repo.UpdateStatus(ctx, id, models.StatusProcessing, 50))
		got, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusProcessing, got.Status)
		assert.Equal(t, 50, got.Progress)
		assert.Nil(t, got.CompletedAt)

		require.NoError(t, repo.UpdateStatus(ctx, id, models.StatusCompleted, 100))
		got, err = repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.NotNil(t, got.CompletedAt)

		require.NoError(t, repo.UpdateError(ctx, id, "Batch failed: boom"))
		got, err = repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, models.StatusFailed, got.Status)
		require.NotNil(t, got.ErrorMsg)
		assert.Equal(t, "Batch failed: boom", *got.ErrorMsg)
	})
}
