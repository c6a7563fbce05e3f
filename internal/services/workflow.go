package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Renal37/go-custody-workflow/internal/database"
	"github.com/Renal37/go-custody-workflow/internal/logger"
	"github.com/Renal37/go-custody-workflow/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Действующее лицо для событий, порождаемых самим конвейером
var actorSystem = models.Actor{ID: "system", Name: "system"}

// WorkflowService — фасад рабочего процесса вывода средств.
// Каждая команда выполняется как единое целое: проверка предусловий,
// решение ApprovalEngine или PipelineEngine, переход статуса и запись
// аудита сохраняются в одной транзакции. Команды по одной заявке
// сериализуются через мьютекс, привязанный к ее идентификатору.
type WorkflowService struct {
	storage  workflowStorage
	registry *RegistryService
	engine   ApprovalEngine
	pipeline *PipelineEngine

	now          func() time.Time
	newRequestID func() string

	mu sync.Mutex
	// locks растет по одному мьютексу на каждую затронутую заявку и не
	// очищается: удаление при живом ожидающем открыло бы гонку двух команд
	// по одной заявке. Рост ограничен числом заявок за время жизни процесса.
	locks map[string]*sync.Mutex
}

// Интерфейс хранилища для изменения заявок
type workflowStorage interface {
	CreateRequest(ctx context.Context, request database.RequestDB, audit database.AuditEntryDB) error
	FindRequest(ctx context.Context, requestID string) (*database.RequestDB, error)
	ApplyTransitions(ctx context.Context, transitions ...database.TransitionDB) error
}

// NewWorkflowService создает новый экземпляр WorkflowService
func NewWorkflowService(storage workflowStorage, registry *RegistryService, pipeline *PipelineEngine) *WorkflowService {
	return &WorkflowService{
		storage:      storage,
		registry:     registry,
		pipeline:     pipeline,
		now:          time.Now,
		newRequestID: uuid.NewString,
		locks:        make(map[string]*sync.Mutex),
	}
}

// lockRequest захватывает мьютекс заявки и возвращает функцию освобождения.
// Операции по разным заявкам выполняются параллельно.
func (ws *WorkflowService) lockRequest(requestID string) func() {
	ws.mu.Lock()
	lock, ok := ws.locks[requestID]
	if !ok {
		lock = &sync.Mutex{}
		ws.locks[requestID] = lock
	}
	ws.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// Submit создает заявку и сразу переводит ее в статус SUBMITTED
func (ws *WorkflowService) Submit(ctx context.Context, input models.WithdrawalInput, actor models.Actor) (*models.WithdrawalRequest, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := ws.now()
	request := database.RequestDB{
		ID:            ws.newRequestID(),
		Title:         input.Title,
		Description:   input.Description,
		FromAddress:   input.FromAddress,
		ToAddress:     input.ToAddress,
		Amount:        input.Amount,
		Currency:      string(input.Currency),
		GroupID:       input.GroupID,
		InitiatorID:   actor.ID,
		InitiatorName: actor.Name,
		Priority:      string(priority),
		Status:        database.RequestStatusDB{RequestStatus: models.StatusSubmitted},
		InitiatedAt:   now,
	}

	for i, approver := range input.RequiredApprovals {
		request.RequiredApprovers = append(request.RequiredApprovers, database.RequiredApproverDB{
			Position:     i,
			ApproverID:   approver.ID,
			ApproverName: approver.Name,
			Role:         approver.Role,
		})
	}

	audit := ws.auditEntry("request submitted", actor, fmt.Sprintf("%v %s to %s", input.Amount, input.Currency, input.ToAddress))

	if err := ws.storage.CreateRequest(ctx, request, audit); err != nil {
		return nil, err
	}

	logger.Log.Info("withdrawal request submitted",
		zap.String("requestID", request.ID),
		zap.String("initiator", actor.ID),
	)

	return ws.registry.Get(ctx, request.ID)
}

// Resubmit переводит повторно поданную заявку из DRAFT обратно в SUBMITTED
func (ws *WorkflowService) Resubmit(ctx context.Context, requestID string, actor models.Actor) (*models.WithdrawalRequest, error) {
	defer ws.lockRequest(requestID)()

	request, err := ws.registry.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.InitiatorID != actor.ID {
		return nil, fmt.Errorf("%w: повторную подачу выполняет только инициатор", ErrNotEligible)
	}

	if err := ws.guardTransition(request.Status, models.StatusSubmitted); err != nil {
		return nil, err
	}

	t := database.TransitionDB{
		RequestID: requestID,
		Status:    database.RequestStatusDB{RequestStatus: models.StatusSubmitted},
		Audit:     ws.auditEntry("request resubmitted", actor, ""),
	}

	if err := ws.storage.ApplyTransitions(ctx, t); err != nil {
		return nil, err
	}

	return ws.registry.Get(ctx, requestID)
}

// Approve фиксирует утверждение согласующего.
// Когда утверждают все, заявка сразу ставится в очередь конвейера.
func (ws *WorkflowService) Approve(ctx context.Context, requestID string, actor models.Actor) (*models.WithdrawalRequest, error) {
	defer ws.lockRequest(requestID)()

	request, err := ws.registry.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.Status != models.StatusSubmitted {
		return nil, fmt.Errorf("%w: утверждение возможно только в статусе %s, текущий %s",
			ErrInvalidTransition, models.StatusSubmitted, request.Status)
	}

	state, err := ws.engine.Gate(request, actor.ID)
	if err != nil {
		return nil, err
	}
	if state != ApprovalStateReady {
		return nil, fmt.Errorf("%w: состояние согласующего %s", ErrNotEligible, state)
	}

	approver := findRequiredApprover(request, actor.ID)
	now := ws.now()

	transitions := []database.TransitionDB{{
		RequestID: requestID,
		Status:    database.RequestStatusDB{RequestStatus: models.StatusSubmitted},
		AddApproval: &database.ApprovalDB{
			ApproverID:   approver.ID,
			ApproverName: approver.Name,
			Role:         approver.Role,
			ApprovedAt:   now,
		},
		Audit: ws.auditEntry("approval recorded", actor,
			fmt.Sprintf("approval %d of %d", len(request.Approvals)+1, len(request.RequiredApprovals))),
	}}

	// Последнее утверждение завершает согласование и ставит заявку в очередь.
	if len(request.Approvals)+1 == len(request.RequiredApprovals) {
		requiredConfirmations := ws.pipeline.RequiredConfirmations()
		stage := string(models.StageQueued)
		enqueuedAt := now

		transitions = append(transitions,
			database.TransitionDB{
				RequestID: requestID,
				Status:    database.RequestStatusDB{RequestStatus: models.StatusApproved},
				Audit:     ws.auditEntry("request approved", actor, "all required approvals collected"),
			},
			database.TransitionDB{
				RequestID: requestID,
				Status:    database.RequestStatusDB{RequestStatus: models.StatusPending},
				Update: database.RequestUpdateDB{
					AssignQueuePosition:   true,
					EnqueuedAt:            &enqueuedAt,
					PipelineStage:         &stage,
					RequiredConfirmations: &requiredConfirmations,
				},
				Audit: ws.auditEntry("queued for processing", actorSystem, "anti-fraud waiting period started"),
			},
		)
	}

	if err := ws.storage.ApplyTransitions(ctx, transitions...); err != nil {
		return nil, err
	}

	logger.Log.Info("approval recorded",
		zap.String("requestID", requestID),
		zap.String("approver", actor.ID),
	)

	return ws.registry.Get(ctx, requestID)
}

// Reject фиксирует отклонение. Одно отклонение окончательно для всей заявки:
// согласующий в состоянии WAITING может отклонить досрочно.
func (ws *WorkflowService) Reject(ctx context.Context, requestID string, actor models.Actor, reason string) (*models.WithdrawalRequest, error) {
	defer ws.lockRequest(requestID)()

	if reason == "" {
		return nil, fmt.Errorf("%w: причина отклонения обязательна", ErrValidation)
	}

	request, err := ws.registry.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.Status != models.StatusSubmitted {
		return nil, fmt.Errorf("%w: отклонение возможно только в статусе %s, текущий %s",
			ErrInvalidTransition, models.StatusSubmitted, request.Status)
	}

	state, err := ws.engine.Gate(request, actor.ID)
	if err != nil {
		return nil, err
	}
	if state != ApprovalStateReady && state != ApprovalStateWaiting {
		return nil, fmt.Errorf("%w: состояние согласующего %s", ErrNotEligible, state)
	}

	approver := findRequiredApprover(request, actor.ID)
	now := ws.now()

	transitions := []database.TransitionDB{
		{
			RequestID: requestID,
			Status:    database.RequestStatusDB{RequestStatus: models.StatusSubmitted},
			AddRejection: &database.RejectionDB{
				ApproverID:   approver.ID,
				ApproverName: approver.Name,
				Reason:       reason,
				RejectedAt:   now,
			},
			Audit: ws.auditEntry("rejection recorded", actor, reason),
		},
		{
			RequestID: requestID,
			Status:    database.RequestStatusDB{RequestStatus: models.StatusRejected},
			Audit:     ws.auditEntry("request rejected", actor, reason),
		},
	}

	if err := ws.storage.ApplyTransitions(ctx, transitions...); err != nil {
		return nil, err
	}

	logger.Log.Info("request rejected",
		zap.String("requestID", requestID),
		zap.String("approver", actor.ID),
		zap.String("reason", reason),
	)

	return ws.registry.Get(ctx, requestID)
}

// Cancel отменяет заявку. Инициатор может отменить до первого утверждения
// (SUBMITTED) или пока заявка ждет в очереди (PENDING). После входа
// в PROCESSING отмена невозможна.
func (ws *WorkflowService) Cancel(ctx context.Context, requestID string, actor models.Actor) (*models.WithdrawalRequest, error) {
	defer ws.lockRequest(requestID)()

	request, err := ws.registry.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.InitiatorID != actor.ID {
		return nil, fmt.Errorf("%w: отмену выполняет только инициатор", ErrNotEligible)
	}

	switch request.Status {
	case models.StatusSubmitted:
		if len(request.Approvals) > 0 {
			return nil, fmt.Errorf("%w: заявка уже частично согласована", ErrInvalidTransition)
		}
	case models.StatusPending:
		// Отмена в очереди разрешена до начала обработки.
	default:
		return nil, fmt.Errorf("%w: отмена невозможна в статусе %s", ErrInvalidTransition, request.Status)
	}

	t := database.TransitionDB{
		RequestID: requestID,
		Status:    database.RequestStatusDB{RequestStatus: models.StatusCancelled},
		Audit:     ws.auditEntry("request cancelled", actor, ""),
	}

	if err := ws.storage.ApplyTransitions(ctx, t); err != nil {
		return nil, err
	}

	return ws.registry.Get(ctx, requestID)
}

// ReApply возвращает отклоненную заявку в DRAFT: решения согласующих и поля
// конвейера очищаются, очередь согласования и содержимое заявки сохраняются.
func (ws *WorkflowService) ReApply(ctx context.Context, requestID string, actor models.Actor) (*models.WithdrawalRequest, error) {
	defer ws.lockRequest(requestID)()

	request, err := ws.registry.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if request.InitiatorID != actor.ID {
		return nil, fmt.Errorf("%w: повторную заявку подает только инициатор", ErrNotEligible)
	}

	if err := ws.guardTransition(request.Status, models.StatusDraft); err != nil {
		return nil, err
	}

	t := database.TransitionDB{
		RequestID: requestID,
		Status:    database.RequestStatusDB{RequestStatus: models.StatusDraft},
		Update: database.RequestUpdateDB{
			ClearDecisions: true,
			ResetPipeline:  true,
		},
		Audit: ws.auditEntry("request re-applied", actor, "approvals and rejections cleared"),
	}

	if err := ws.storage.ApplyTransitions(ctx, t); err != nil {
		return nil, err
	}

	return ws.registry.Get(ctx, requestID)
}

// Archive окончательно закрывает отклоненную заявку
func (ws *WorkflowService) Archive(ctx context.Context, requestID string, actor models.Actor) (*models.WithdrawalRequest, error) {
	defer ws.lockRequest(requestID)()

	request, err := ws.registry.Get(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := ws.guardTransition(request.Status, models.StatusArchived); err != nil {
		return nil, err
	}

	t := database.TransitionDB{
		RequestID: requestID,
		Status:    database.RequestStatusDB{RequestStatus: models.StatusArchived},
		Audit:     ws.auditEntry("request archived", actor, ""),
	}

	if err := ws.storage.ApplyTransitions(ctx, t); err != nil {
		return nil, err
	}

	return ws.registry.Get(ctx, requestID)
}

// AdvancePipeline — тик конвейера. Заявка в очереди, у которой истекло
// антифрод-окно, переходит в обработку (стадия скрининга). Для заявок
// в любом другом состоянии тик ничего не делает.
func (ws *WorkflowService) AdvancePipeline(ctx context.Context, requestID string) error {
	defer ws.lockRequest(requestID)()

	request, err := ws.registry.Get(ctx, requestID)
	if err != nil {
		return err
	}

	if request.Status != models.StatusPending {
		return nil
	}

	if !ws.pipeline.WaitElapsed(request) {
		return nil
	}

	stage := string(models.StageScreening)
	t := database.TransitionDB{
		RequestID: requestID,
		Status:    database.RequestStatusDB{RequestStatus: models.StatusProcessing},
		Update:    database.RequestUpdateDB{PipelineStage: &stage},
		Audit:     ws.auditEntry("processing started", actorSystem, "waiting period elapsed, screening requested"),
	}

	if err := ws.storage.ApplyTransitions(ctx, t); err != nil {
		return err
	}

	logger.Log.Info("pipeline advanced to screening", zap.String("requestID", requestID))
	return nil
}

// CompleteScreening принимает результат внешней AML/travel-rule проверки.
// Провал скрининга необратим: заявка переводится в REJECTED с заполненным
// failureReason, для продолжения нужна повторная подача.
func (ws *WorkflowService) CompleteScreening(ctx context.Context, result models.ScreeningResult) (*models.WithdrawalRequest, error) {
	defer ws.lockRequest(result.RequestID)()

	request, err := ws.registry.Get(ctx, result.RequestID)
	if err != nil {
		return nil, err
	}

	if request.Status != models.StatusProcessing || request.PipelineStage == nil || *request.PipelineStage != models.StageScreening {
		return nil, fmt.Errorf("%w: заявка не находится на стадии скрининга", ErrInvalidTransition)
	}

	now := ws.now()

	if !result.Passed {
		reason := "screening failed"
		if result.Reason != nil && *result.Reason != "" {
			reason = *result.Reason
		}

		t := database.TransitionDB{
			RequestID: result.RequestID,
			Status:    database.RequestStatusDB{RequestStatus: models.StatusRejected},
			Update:    database.RequestUpdateDB{FailureReason: &reason},
			Audit:     ws.auditEntry("screening failed", actorSystem, reason),
		}

		if err := ws.storage.ApplyTransitions(ctx, t); err != nil {
			return nil, err
		}

		logger.Log.Warn("screening failed",
			zap.String("requestID", result.RequestID),
			zap.String("reason", reason),
		)

		request, err := ws.registry.Get(ctx, result.RequestID)
		if err != nil {
			return nil, err
		}
		return request, fmt.Errorf("%w: %s", ErrScreeningFailed, reason)
	}

	sessionID := ws.pipeline.newSessionID()
	stage := string(models.StageSigning)
	t := database.TransitionDB{
		RequestID: result.RequestID,
		Status:    database.RequestStatusDB{RequestStatus: models.StatusProcessing},
		Update: database.RequestUpdateDB{
			ScreeningCompletedAt:  &now,
			TravelRuleCompletedAt: &now,
			AirGapSessionID:       &sessionID,
			PipelineStage:         &stage,
		},
		Audit: ws.auditEntry("screening passed", actorSystem,
			fmt.Sprintf("air-gap session %s opened", sessionID)),
	}

	if err := ws.storage.ApplyTransitions(ctx, t); err != nil {
		return nil, err
	}

	logger.Log.Info("screening passed",
		zap.String("requestID", result.RequestID),
		zap.String("airGapSessionID", sessionID),
	)

	return ws.registry.Get(ctx, result.RequestID)
}

// CompleteSigning принимает итог офлайн-церемонии подписания
func (ws *WorkflowService) CompleteSigning(ctx context.Context, result models.SigningResult) (*models.WithdrawalRequest, error) {
	defer ws.lockRequest(result.RequestID)()

	request, err := ws.registry.Get(ctx, result.RequestID)
	if err != nil {
		return nil, err
	}

	if request.Status != models.StatusProcessing || request.PipelineStage == nil || *request.PipelineStage != models.StageSigning {
		return nil, fmt.Errorf("%w: заявка не находится на стадии подписания", ErrInvalidTransition)
	}

	if request.AirGapSessionID == nil || *request.AirGapSessionID != result.AirGapSessionID {
		return nil, fmt.Errorf("%w: неизвестная сессия подписания %s", ErrValidation, result.AirGapSessionID)
	}

	if result.Failed {
		reason := "signing ceremony failed"
		if result.Reason != nil && *result.Reason != "" {
			reason = *result.Reason
		}

		t := database.TransitionDB{
			RequestID: result.RequestID,
			Status:    database.RequestStatusDB{RequestStatus: models.StatusRejected},
			Update:    database.RequestUpdateDB{FailureReason: &reason},
			Audit:     ws.auditEntry("signing failed", actorSystem, reason),
		}

		if err := ws.storage.ApplyTransitions(ctx, t); err != nil {
			return nil, err
		}

		logger.Log.Warn("signing failed",
			zap.String("requestID", result.RequestID),
			zap.String("reason", reason),
		)

		request, err := ws.registry.Get(ctx, result.RequestID)
		if err != nil {
			return nil, err
		}
		return request, fmt.Errorf("%w: %s", ErrSigningFailed, reason)
	}

	signedAt := ws.now()
	if result.SignatureCompletedAt != nil {
		signedAt = result.SignatureCompletedAt.Time
	}

	stage := string(models.StageBroadcasting)
	t := database.TransitionDB{
		RequestID: result.RequestID,
		Status:    database.RequestStatusDB{RequestStatus: models.StatusProcessing},
		Update: database.RequestUpdateDB{
			SignatureCompletedAt: &signedAt,
			PipelineStage:        &stage,
		},
		Audit: ws.auditEntry("signature recorded", actorSystem,
			fmt.Sprintf("air-gap session %s completed", result.AirGapSessionID)),
	}

	if err := ws.storage.ApplyTransitions(ctx, t); err != nil {
		return nil, err
	}

	logger.Log.Info("signature recorded", zap.String("requestID", result.RequestID))

	return ws.registry.Get(ctx, result.RequestID)
}

// RecordConfirmation принимает событие наблюдателя сети. Счетчик
// подтверждений растет монотонно; на тике, где порог достигнут впервые,
// заявка один раз переводится в COMPLETED. Повторные события после
// завершения игнорируются.
func (ws *WorkflowService) RecordConfirmation(ctx context.Context, event models.ConfirmationEvent) (*models.WithdrawalRequest, error) {
	defer ws.lockRequest(event.RequestID)()

	request, err := ws.registry.Get(ctx, event.RequestID)
	if err != nil {
		return nil, err
	}

	if request.Status == models.StatusCompleted {
		return request, nil
	}

	if request.Status != models.StatusProcessing || request.PipelineStage == nil || *request.PipelineStage != models.StageBroadcasting {
		return nil, fmt.Errorf("%w: заявка не находится на стадии трансляции", ErrInvalidTransition)
	}

	if request.TxHash != nil && *request.TxHash != event.TxHash {
		return nil, fmt.Errorf("%w: хеш транзакции %s не совпадает с зафиксированным", ErrValidation, event.TxHash)
	}

	if event.Confirmations <= request.BlockConfirmations {
		return request, nil
	}

	confirmations := event.Confirmations
	if confirmations > request.RequiredConfirmations {
		confirmations = request.RequiredConfirmations
	}

	txHash := event.TxHash
	transitions := []database.TransitionDB{{
		RequestID: event.RequestID,
		Status:    database.RequestStatusDB{RequestStatus: models.StatusProcessing},
		Update: database.RequestUpdateDB{
			TxHash:             &txHash,
			BlockConfirmations: &confirmations,
		},
		Audit: ws.auditEntry("confirmation recorded", actorSystem,
			fmt.Sprintf("confirmations %d of %d", confirmations, request.RequiredConfirmations)),
	}}

	if confirmations >= request.RequiredConfirmations {
		stage := string(models.StageDone)
		transitions = append(transitions, database.TransitionDB{
			RequestID: event.RequestID,
			Status:    database.RequestStatusDB{RequestStatus: models.StatusCompleted},
			Update:    database.RequestUpdateDB{PipelineStage: &stage},
			Audit:     ws.auditEntry("request completed", actorSystem, fmt.Sprintf("tx %s confirmed", event.TxHash)),
		})
	}

	if err := ws.storage.ApplyTransitions(ctx, transitions...); err != nil {
		return nil, err
	}

	return ws.registry.Get(ctx, event.RequestID)
}

// guardTransition проверяет смену статуса по таблице переходов.
// Переход в текущий статус тоже недопустим: повторная команда по заявке,
// уже находящейся в целевом статусе, отклоняется без записей аудита.
func (ws *WorkflowService) guardTransition(from, to models.RequestStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: из %s в %s", ErrInvalidTransition, from, to)
	}
	return nil
}

func (ws *WorkflowService) auditEntry(action string, actor models.Actor, details string) database.AuditEntryDB {
	return database.AuditEntryDB{
		RecordedAt: ws.now(),
		Action:     action,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Details:    details,
	}
}

func findRequiredApprover(request *models.WithdrawalRequest, approverID string) models.RequiredApprover {
	for _, approver := range request.RequiredApprovals {
		if approver.ID == approverID {
			return approver
		}
	}
	return models.RequiredApprover{ID: approverID}
}

// validateInput проверяет входные данные формы создания заявки
func validateInput(input models.WithdrawalInput) error {
	if input.Title == "" {
		return fmt.Errorf("%w: название обязательно", ErrValidation)
	}
	if input.FromAddress == "" || input.ToAddress == "" {
		return fmt.Errorf("%w: адреса отправителя и получателя обязательны", ErrValidation)
	}
	if input.Amount <= 0 {
		return fmt.Errorf("%w: сумма должна быть положительной", ErrValidation)
	}

	supported := false
	for _, currency := range models.SupportedCurrencies {
		if currency == input.Currency {
			supported = true
			break
		}
	}
	if !supported {
		return fmt.Errorf("%w: валюта %q не поддерживается", ErrValidation, input.Currency)
	}

	if input.Priority != "" {
		switch input.Priority {
		case models.PriorityLow, models.PriorityMedium, models.PriorityHigh, models.PriorityCritical:
		default:
			return fmt.Errorf("%w: неизвестный приоритет %q", ErrValidation, input.Priority)
		}
	}

	if len(input.RequiredApprovals) == 0 {
		return fmt.Errorf("%w: очередь согласования не может быть пустой", ErrValidation)
	}

	seen := make(map[string]bool, len(input.RequiredApprovals))
	for _, approver := range input.RequiredApprovals {
		if approver.ID == "" {
			return fmt.Errorf("%w: идентификатор согласующего обязателен", ErrValidation)
		}
		if seen[approver.ID] {
			return fmt.Errorf("%w: согласующий %s указан дважды", ErrValidation, approver.ID)
		}
		seen[approver.ID] = true
	}

	return nil
}
