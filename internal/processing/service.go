package processing

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/seisview/internal/repository"
	"github.com/RMahshie/seisview/pkg/models"
)

// ErrWorkerBusy is returned when a batch is started while another one runs
var ErrWorkerBusy = errors.New("a batch is already running")

// Progress checkpoints, stations fill the range between them
const (
	progressStarted = 5
	progressStoring = 95
	progressDone    = 100
)

// BatchService runs batch chart generation on a single background worker
type BatchService interface {
	Start(ctx context.Context, batchID uuid.UUID) error
	Cancel(batchID uuid.UUID) bool
	Results(batchID uuid.UUID) ([]*models.ChartGroup, bool)
	Wait()
}

type job struct {
	id      uuid.UUID
	cancel  context.CancelFunc
	results *ResultSet
	done    chan struct{}

	// progress is only touched by the worker goroutine
	progress int
}

type batchService struct {
	repository repository.BatchRepository
	generator  *ChartGenerator

	mu      sync.Mutex
	current *job
}

func NewBatchService(repo repository.BatchRepository, generator *ChartGenerator) BatchService {
	return &batchService{
		repository: repo,
		generator:  generator,
	}
}

// Start verifies the batch and hands it to the worker. It returns once the
// worker has been launched.
func (s *batchService) Start(ctx context.Context, batchID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return ErrWorkerBusy
	}

	batch, err := s.repository.GetByID(ctx, batchID)
	if err != nil {
		return err
	}

	if err := s.repository.UpdateStatus(ctx, batchID, models.StatusProcessing, progressStarted); err != nil {
		return err
	}

	// The worker outlives the request that started it
	workerCtx, cancel := context.WithCancel(context.Background())
	j := &job{
		id:       batchID,
		cancel:   cancel,
		results:  NewResultSet(),
		done:     make(chan struct{}),
		progress: progressStarted,
	}
	s.current = j

	go s.run(workerCtx, j, batch)

	return nil
}

func (s *batchService) run(ctx context.Context, j *job, batch *models.Batch) {
	defer func() {
		s.mu.Lock()
		s.current = nil
		s.mu.Unlock()
		j.cancel()
		close(j.done)
	}()

	logger := log.With().Str("batchID", j.id.String()).Logger()
	logger.Info().Int("files", len(batch.Paths)).Bool("padded", batch.Padded).Bool("spectra", batch.Spectra).Msg("Batch started")

	err := s.generate(ctx, j, batch)

	// Persist whatever was produced, even when the run stopped early
	storeCtx := context.Background()
	if groups := j.results.Snapshot(); len(groups) > 0 {
		if serr := s.repository.StoreGroups(storeCtx, groups); serr != nil {
			logger.Error().Err(serr).Msg("Failed to store chart groups")
			if err == nil {
				err = serr
			}
		}
	}

	switch {
	case errors.Is(err, context.Canceled):
		logger.Info().Int("groups", j.results.Len()).Msg("Batch cancelled")
		if uerr := s.repository.UpdateStatus(storeCtx, j.id, models.StatusCancelled, j.progress); uerr != nil {
			logger.Error().Err(uerr).Msg("Failed to update batch status")
		}
	case err != nil:
		logger.Error().Err(err).Int("groups", j.results.Len()).Msg("Batch failed")
		if uerr := s.repository.UpdateError(storeCtx, j.id, fmt.Sprintf("Batch failed: %v", err)); uerr != nil {
			logger.Error().Err(uerr).Msg("Failed to record batch error")
		}
	default:
		logger.Info().Int("groups", j.results.Len()).Msg("Batch completed")
		if uerr := s.repository.UpdateStatus(storeCtx, j.id, models.StatusCompleted, progressDone); uerr != nil {
			logger.Error().Err(uerr).Msg("Failed to update batch status")
		}
	}
}

// generate runs the generator, turning a panic into an error
func (s *batchService) generate(ctx context.Context, j *job, batch *models.Batch) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker panic: %v", r)
		}
	}()

	opts := Options{Padded: batch.Padded, Spectra: batch.Spectra}
	progress := func(done, total int) {
		pct := progressStarted + done*(progressStoring-progressStarted)/total
		j.progress = pct
		if err := s.repository.UpdateStatus(ctx, j.id, models.StatusProcessing, pct); err != nil {
			log.Warn().Err(err).Str("batchID", j.id.String()).Msg("Failed to report progress")
		}
	}

	return s.generator.Generate(ctx, j.id.String(), batch.Paths, opts, j.results, progress)
}

// Cancel stops the running batch if it has the given ID
func (s *batchService) Cancel(batchID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.id != batchID {
		return false
	}
	s.current.cancel()
	return true
}

// Results returns a snapshot of the running batch's chart groups
func (s *batchService) Results(batchID uuid.UUID) ([]*models.ChartGroup, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil || s.current.id != batchID {
		return nil, false
	}
	return s.current.results.Snapshot(), true
}

// Wait blocks until the running batch, if any, has finished
func (s *batchService) Wait() {
	s.mu.Lock()
	j := s.current
	s.mu.Unlock()
	if j != nil {
		<-j.done
	}
}
