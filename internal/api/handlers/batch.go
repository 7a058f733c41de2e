package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/seisview/internal/processing"
	"github.com/RMahshie/seisview/internal/repository"
	"github.com/RMahshie/seisview/pkg/models"
)

// BatchHandler handles batch chart generation requests
type BatchHandler struct {
	repo repository.BatchRepository
	svc  processing.BatchService
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(repo repository.BatchRepository, svc processing.BatchService) *BatchHandler {
	return &BatchHandler{
		repo: repo,
		svc:  svc,
	}
}

// CreateBatch records a new batch and hands it to the background worker
func (h *BatchHandler) CreateBatch(ctx context.Context, req *models.CreateBatchRequest) (*models.CreateBatchResponse, error) {
	batchID := uuid.New()
	batch := &models.Batch{
		ID:        batchID.String(),
		Paths:     req.Body.Paths,
		Padded:    req.Body.Padded,
		Spectra:   req.Body.Spectra,
		Status:    models.StatusPending,
		Progress:  0,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	log.Info().Str("batchID", batch.ID).Int("files", len(batch.Paths)).Msg("Creating batch")
	if err := h.repo.Create(ctx, batch); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create batch", err)
	}

	if err := h.svc.Start(ctx, batchID); err != nil {
		if errors.Is(err, processing.ErrWorkerBusy) {
			// The batch row stays behind as failed so the ID remains queryable
			if uerr := h.repo.UpdateError(ctx, batchID, "Rejected: another batch is running"); uerr != nil {
				log.Warn().Err(uerr).Str("batchID", batch.ID).Msg("Failed to mark rejected batch")
			}
			return nil, huma.Error409Conflict("Another batch is already running", err)
		}
		return nil, huma.Error500InternalServerError("Failed to start batch", err)
	}

	resp := &models.CreateBatchResponse{}
	resp.Body.ID = batch.ID
	resp.Body.Status = models.StatusProcessing
	return resp, nil
}

// GetBatchStatus returns the current status of a batch
func (h *BatchHandler) GetBatchStatus(ctx context.Context, req *models.BatchIDRequest) (*models.GetBatchStatusResponse, error) {
	batch, _, err := h.getBatch(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	body := models.GetBatchStatusResponseBody{
		ID:       batch.ID,
		Status:   batch.Status,
		Progress: batch.Progress,
		Message:  h.generateStatusMessage(batch.Status, batch.Progress),
	}
	if batch.ErrorMsg != nil {
		body.Error = *batch.ErrorMsg
	}

	return &models.GetBatchStatusResponse{Body: body}, nil
}

// GetBatchResults returns the chart groups of a batch. While the batch is
// running the groups finished so far are returned.
func (h *BatchHandler) GetBatchResults(ctx context.Context, req *models.BatchIDRequest) (*models.GetBatchResultsResponse, error) {
	batch, batchID, err := h.getBatch(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	var groups []*models.ChartGroup
	switch batch.Status {
	case models.StatusPending:
		return nil, huma.Error409Conflict("Batch has not started yet",
			fmt.Errorf("batch status is %s", batch.Status))
	case models.StatusProcessing:
		if live, ok := h.svc.Results(batchID); ok {
			groups = live
			break
		}
		// The worker finished between the two reads
		fallthrough
	default:
		groups, err = h.repo.GetGroups(ctx, batchID)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to get results", err)
		}
	}

	resp := &models.GetBatchResultsResponse{}
	resp.Body.ID = batch.ID
	resp.Body.Status = batch.Status
	resp.Body.Groups = make([]models.ChartGroup, 0, len(groups))
	for _, g := range groups {
		resp.Body.Groups = append(resp.Body.Groups, *g)
	}
	return resp, nil
}

// CancelBatch stops a running batch
func (h *BatchHandler) CancelBatch(ctx context.Context, req *models.BatchIDRequest) (*models.MessageResponse, error) {
	batch, batchID, err := h.getBatch(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if !h.svc.Cancel(batchID) {
		return nil, huma.Error409Conflict("Batch is not running",
			fmt.Errorf("batch status is %s", batch.Status))
	}

	log.Info().Str("batchID", batch.ID).Msg("Batch cancellation requested")
	resp := &models.MessageResponse{}
	resp.Body.Message = "Cancellation requested"
	return resp, nil
}

func (h *BatchHandler) getBatch(ctx context.Context, id string) (*models.Batch, uuid.UUID, error) {
	batchID, err := uuid.Parse(id)
	if err != nil {
		return nil, uuid.Nil, huma.Error400BadRequest("Invalid batch ID", err)
	}

	batch, err := h.repo.GetByID(ctx, batchID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, uuid.Nil, huma.Error404NotFound("Batch not found", err)
	}
	if err != nil {
		return nil, uuid.Nil, huma.Error500InternalServerError("Failed to get batch", err)
	}
	return batch, batchID, nil
}

// generateStatusMessage creates a human-readable status message
func (h *BatchHandler) generateStatusMessage(status string, progress int) string {
	switch status {
	case models.StatusPending:
		return "Batch queued for processing..."
	case models.StatusProcessing:
		if progress < 10 {
			return "Resolving time windows..."
		} else if progress < 95 {
			return "Charting stations..."
		}
		return "Saving chart groups..."
	case models.StatusCompleted:
		return "Charts ready"
	case models.StatusCancelled:
		return "Batch cancelled"
	case models.StatusFailed:
		return "Batch failed. Please try again."
	default:
		return "Unknown status"
	}
}
