package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Renal37/go-custody-workflow/internal/database"
	"github.com/Renal37/go-custody-workflow/internal/models"
	"github.com/Renal37/go-custody-workflow/internal/utils"
)

// Определяем ошибки, связанные с реестром заявок
var (
	ErrRequestNotFound   = errors.New("заявка не найдена")
	ErrInvalidTransition = errors.New("недопустимый переход статуса")
	ErrValidation        = errors.New("некорректные данные заявки")
)

// allowedTransitions — единственная таблица переходов статусов.
// Любое изменение статуса заявки проверяется по ней.
var allowedTransitions = map[models.RequestStatus][]models.RequestStatus{
	models.StatusDraft:      {models.StatusSubmitted},
	models.StatusSubmitted:  {models.StatusApproved, models.StatusRejected, models.StatusCancelled},
	models.StatusApproved:   {models.StatusPending},
	models.StatusPending:    {models.StatusProcessing, models.StatusCancelled},
	models.StatusProcessing: {models.StatusCompleted, models.StatusRejected},
	models.StatusRejected:   {models.StatusArchived, models.StatusDraft},
}

// CanTransition сообщает, разрешен ли переход из одного статуса в другой.
// Терминальные статусы (COMPLETED, ARCHIVED, CANCELLED) не имеют исходящих переходов.
func CanTransition(from, to models.RequestStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// RegistryService предоставляет операции чтения реестра заявок
type RegistryService struct {
	storage  registryStorage
	pipeline *PipelineEngine
}

// Интерфейс хранилища для чтения заявок
type registryStorage interface {
	FindRequest(ctx context.Context, requestID string) (*database.RequestDB, error)
	FindRequestsByStatus(ctx context.Context, status *database.RequestStatusDB) ([]database.RequestDB, error)
	FindAuditFlow(ctx context.Context, requestID string) ([]database.AuditEntryDB, error)
}

// NewRegistryService создает новый экземпляр RegistryService
func NewRegistryService(storage registryStorage, pipeline *PipelineEngine) *RegistryService {
	return &RegistryService{storage: storage, pipeline: pipeline}
}

// Get возвращает заявку по идентификатору
func (rs *RegistryService) Get(ctx context.Context, requestID string) (*models.WithdrawalRequest, error) {
	request, err := rs.storage.FindRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request == nil {
		return nil, ErrRequestNotFound
	}

	result := rs.toModel(request)
	return &result, nil
}

// ListByStatus возвращает заявки в порядке создания.
// Если статус не задан, возвращаются все заявки.
func (rs *RegistryService) ListByStatus(ctx context.Context, status *models.RequestStatus) ([]models.WithdrawalRequest, error) {
	var filter *database.RequestStatusDB
	if status != nil {
		if !isKnownStatus(*status) {
			return nil, fmt.Errorf("%w: неизвестный статус %q", ErrValidation, *status)
		}
		filter = &database.RequestStatusDB{RequestStatus: *status}
	}

	requests, err := rs.storage.FindRequestsByStatus(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]models.WithdrawalRequest, len(requests))
	for i := range requests {
		result[i] = rs.toModel(&requests[i])
	}

	return result, nil
}

// AuditTrail возвращает журнал аудита заявки
func (rs *RegistryService) AuditTrail(ctx context.Context, requestID string) ([]models.AuditEntry, error) {
	request, err := rs.storage.FindRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request == nil {
		return nil, ErrRequestNotFound
	}

	flow, err := rs.storage.FindAuditFlow(ctx, requestID)
	if err != nil {
		return nil, err
	}

	result := make([]models.AuditEntry, len(flow))
	for i, item := range flow {
		result[i] = models.AuditEntry{
			Timestamp: utils.RFC3339Date{Time: item.RecordedAt},
			Action:    item.Action,
			ActorID:   item.ActorID,
			ActorName: item.ActorName,
			Details:   item.Details,
		}
	}

	return result, nil
}

func isKnownStatus(status models.RequestStatus) bool {
	switch status {
	case models.StatusDraft, models.StatusSubmitted, models.StatusApproved,
		models.StatusPending, models.StatusProcessing, models.StatusCompleted,
		models.StatusRejected, models.StatusArchived, models.StatusCancelled:
		return true
	}
	return false
}

// toModel преобразует данные из базы в формат модели,
// дополняя их вычисляемыми полями прогресса и ETA.
func (rs *RegistryService) toModel(request *database.RequestDB) models.WithdrawalRequest {
	result := models.WithdrawalRequest{
		ID:                    request.ID,
		Title:                 request.Title,
		Description:           request.Description,
		FromAddress:           request.FromAddress,
		ToAddress:             request.ToAddress,
		Amount:                request.Amount,
		Currency:              models.Currency(request.Currency),
		GroupID:               request.GroupID,
		InitiatorID:           request.InitiatorID,
		InitiatorName:         request.InitiatorName,
		InitiatedAt:           utils.RFC3339Date{Time: request.InitiatedAt},
		Status:                request.Status.RequestStatus,
		Priority:              models.Priority(request.Priority),
		QueuePosition:         request.QueuePosition,
		BlockConfirmations:    request.BlockConfirmations,
		RequiredConfirmations: request.RequiredConfirmations,
		FailureReason:         request.FailureReason,
		AirGapSessionID:       request.AirGapSessionID,
		TxHash:                request.TxHash,
	}

	if request.PipelineStage != nil {
		stage := models.PipelineStage(*request.PipelineStage)
		result.PipelineStage = &stage
	}
	if request.EnqueuedAt != nil {
		result.EnqueuedAt = &utils.RFC3339Date{Time: *request.EnqueuedAt}
	}
	if request.ScreeningCompletedAt != nil {
		result.ScreeningCompletedAt = &utils.RFC3339Date{Time: *request.ScreeningCompletedAt}
	}
	if request.TravelRuleCompletedAt != nil {
		result.TravelRuleCompletedAt = &utils.RFC3339Date{Time: *request.TravelRuleCompletedAt}
	}
	if request.SignatureCompletedAt != nil {
		result.SignatureCompletedAt = &utils.RFC3339Date{Time: *request.SignatureCompletedAt}
	}

	result.RequiredApprovals = make([]models.RequiredApprover, len(request.RequiredApprovers))
	for i, approver := range request.RequiredApprovers {
		result.RequiredApprovals[i] = models.RequiredApprover{
			ID:   approver.ApproverID,
			Name: approver.ApproverName,
			Role: approver.Role,
		}
	}

	result.Approvals = make([]models.Approval, len(request.Approvals))
	for i, approval := range request.Approvals {
		result.Approvals[i] = models.Approval{
			ApproverID:   approval.ApproverID,
			ApproverName: approval.ApproverName,
			Role:         approval.Role,
			ApprovedAt:   utils.RFC3339Date{Time: approval.ApprovedAt},
		}
	}

	result.Rejections = make([]models.Rejection, len(request.Rejections))
	for i, rejection := range request.Rejections {
		result.Rejections[i] = models.Rejection{
			ApproverID:   rejection.ApproverID,
			ApproverName: rejection.ApproverName,
			Reason:       rejection.Reason,
			RejectedAt:   utils.RFC3339Date{Time: rejection.RejectedAt},
		}
	}

	result.Progress = PipelineProgress(&result)
	result.ETASeconds = rs.pipeline.ETASeconds(&result)

	return result
}
