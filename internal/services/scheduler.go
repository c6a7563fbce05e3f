package services

import (
	"context"
	"time"

	"github.com/Renal37/go-custody-workflow/internal/database"
	"github.com/Renal37/go-custody-workflow/internal/logger"
	"github.com/Renal37/go-custody-workflow/internal/models"
	"go.uber.org/zap"
)

// PipelineScheduler периодически продвигает заявки, ожидающие в очереди
// конвейера. Каждый обход ставит по заданию на заявку; тик идемпотентен,
// поэтому лишний обход безопасен.
type PipelineScheduler struct {
	storage  schedulerStorage
	workflow models.WorkflowService
	jobQueue schedulerJobQueue
	interval time.Duration
}

type schedulerStorage interface {
	FindRequestsByStatus(ctx context.Context, status *database.RequestStatusDB) ([]database.RequestDB, error)
}

type schedulerJobQueue interface {
	Enqueue(job Job) error

	RunEvery(ctx context.Context, interval time.Duration, job Job)
}

// NewPipelineScheduler создает новый экземпляр PipelineScheduler
func NewPipelineScheduler(storage schedulerStorage, workflow models.WorkflowService, jobQueue schedulerJobQueue, interval time.Duration) *PipelineScheduler {
	return &PipelineScheduler{
		storage:  storage,
		workflow: workflow,
		jobQueue: jobQueue,
		interval: interval,
	}
}

// Start выполняет первый обход очереди и запускает периодические
func (ps *PipelineScheduler) Start(ctx context.Context) error {
	if err := ps.sweep(ctx); err != nil {
		return err
	}

	ps.jobQueue.RunEvery(ctx, ps.interval, func(ctx context.Context) {
		if err := ps.sweep(ctx); err != nil {
			logger.Log.Error("failed to sweep pending requests", zap.Error(err))
		}
	})

	return nil
}

// sweep находит все заявки в очереди и ставит тик конвейера для каждой
func (ps *PipelineScheduler) sweep(ctx context.Context) error {
	status := database.RequestStatusDB{RequestStatus: models.StatusPending}

	requests, err := ps.storage.FindRequestsByStatus(ctx, &status)
	if err != nil {
		return err
	}

	for _, request := range requests {
		requestID := request.ID
		err := ps.jobQueue.Enqueue(func(ctx context.Context) {
			if err := ps.workflow.AdvancePipeline(ctx, requestID); err != nil {
				logger.Log.Error("failed to advance pipeline",
					zap.String("requestID", requestID),
					zap.Error(err),
				)
			}
		})
		if err != nil {
			logger.Log.Info("pipeline tick skipped", zap.String("requestID", requestID), zap.Error(err))
		}
	}

	return nil
}
