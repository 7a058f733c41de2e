package repository

import (
	"context"
	"errors"

	"github.com/RMahshie/seisview/pkg/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned when a batch doesn't exist
var ErrNotFound = errors.New("not found")

// BatchRepository defines the interface for batch data operations
type BatchRepository interface {
	Create(ctx context.Context, batch *models.Batch) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Batch, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	StoreGroups(ctx context.Context, groups []*models.ChartGroup) error
	GetGroups(ctx context.Context, batchID uuid.UUID) ([]*models.ChartGroup, error)
}
