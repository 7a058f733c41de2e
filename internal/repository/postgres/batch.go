package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/RMahshie/seisview/internal/repository"
	"github.com/RMahshie/seisview/pkg/models"
)

// PostgresBatchRepository implements BatchRepository for PostgreSQL
type PostgresBatchRepository struct {
	db *sql.DB
}

// NewPostgresBatchRepository creates a new PostgreSQL batch repository
func NewPostgresBatchRepository(db *sql.DB) repository.BatchRepository {
	return &PostgresBatchRepository{db: db}
}

// Create inserts a new batch record, assigning an ID if none is set
func (r *PostgresBatchRepository) Create(ctx context.Context, batch *models.Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	if batch.Status == "" {
		batch.Status = models.StatusPending
	}

	query := `
		INSERT INTO batches (id, paths, padded, spectra, status, progress, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		batch.ID,
		pq.Array(batch.Paths),
		batch.Padded,
		batch.Spectra,
		batch.Status,
		batch.Progress).Scan(&batch.CreatedAt, &batch.UpdatedAt)
}

// GetByID retrieves a batch by ID
func (r *PostgresBatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Batch, error) {
	query := `
		SELECT id, paths, padded, spectra, status, progress, error_message, created_at, updated_at, completed_at
		FROM batches
		WHERE id = $1`

	var batch models.Batch
	var errorMsg sql.NullString
	var completedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&batch.ID,
		pq.Array(&batch.Paths),
		&batch.Padded,
		&batch.Spectra,
		&batch.Status,
		&batch.Progress,
		&errorMsg,
		&batch.CreatedAt,
		&batch.UpdatedAt,
		&completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("batch %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	if errorMsg.Valid {
		batch.ErrorMsg = &errorMsg.String
	}
	if completedAt.Valid {
		batch.CompletedAt = &completedAt.Time
	}

	return &batch, nil
}

// UpdateStatus updates the status and progress of a batch
func (r *PostgresBatchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	query := `
		UPDATE batches
		SET status = $1, progress = $2, updated_at = NOW(),
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, status, progress, id)
	return err
}

// UpdateError marks a batch as failed with a message
func (r *PostgresBatchRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE batches
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2`

	_, err := r.db.ExecContext(ctx, query, errorMsg, id)
	return err
}

// StoreGroups stores chart groups in a single transaction
func (r *PostgresBatchRepository) StoreGroups(ctx context.Context, groups []*models.ChartGroup) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chart_groups (id, batch_id, station, window_start, window_stop, delta_t, series, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, g := range groups {
		series, err := json.Marshal(g.Series)
		if err != nil {
			return fmt.Errorf("failed to marshal series: %w", err)
		}
		if g.ID == "" {
			g.ID = uuid.New().String()
		}

		if _, err := stmt.ExecContext(ctx,
			g.ID,
			g.BatchID,
			g.Station,
			g.Window.Start,
			g.Window.Stop,
			g.Window.DeltaT,
			string(series),
			g.CreatedAt); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetGroups retrieves the chart groups of a batch ordered by station
func (r *PostgresBatchRepository) GetGroups(ctx context.Context, batchID uuid.UUID) ([]*models.ChartGroup, error) {
	query := `
		SELECT id, batch_id, station, window_start, window_stop, delta_t, series, created_at
		FROM chart_groups
		WHERE batch_id = $1
		ORDER BY station`

	rows, err := r.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []*models.ChartGroup
	for rows.Next() {
		var g models.ChartGroup
		var series []byte

		if err := rows.Scan(
			&g.ID,
			&g.BatchID,
			&g.Station,
			&g.Window.Start,
			&g.Window.Stop,
			&g.Window.DeltaT,
			&series,
			&g.CreatedAt); err != nil {
			return nil, err
		}

		if err := json.Unmarshal(series, &g.Series); err != nil {
			return nil, fmt.Errorf("failed to unmarshal series: %w", err)
		}
		groups = append(groups, &g)
	}

	return groups, rows.Err()
}
