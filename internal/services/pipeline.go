package services

import (
	"errors"
	"time"

	"github.com/Renal37/go-custody-workflow/internal/models"
	"github.com/google/uuid"
)

// Определяем ошибки стадий конвейера
var (
	ErrScreeningFailed = errors.New("комплаенс-проверка не пройдена")
	ErrSigningFailed   = errors.New("подписание не завершено")
)

// PipelineEngine хранит настройки пост-одобренного конвейера:
// антифрод-окно ожидания и требуемое число подтверждений сети.
// Время и идентификаторы сессий внедряются снаружи, чтобы продвижение
// конвейера было детерминированным и тестируемым.
type PipelineEngine struct {
	queueWait             time.Duration
	requiredConfirmations int
	now                   func() time.Time
	newSessionID          func() string
}

// NewPipelineEngine создает новый экземпляр PipelineEngine
func NewPipelineEngine(queueWait time.Duration, requiredConfirmations int) *PipelineEngine {
	return &PipelineEngine{
		queueWait:             queueWait,
		requiredConfirmations: requiredConfirmations,
		now:                   time.Now,
		newSessionID:          uuid.NewString,
	}
}

// RequiredConfirmations возвращает порог подтверждений для завершения заявки
func (pe *PipelineEngine) RequiredConfirmations() int {
	return pe.requiredConfirmations
}

// WaitElapsed сообщает, истекло ли антифрод-окно ожидания для заявки в очереди
func (pe *PipelineEngine) WaitElapsed(request *models.WithdrawalRequest) bool {
	if request.EnqueuedAt == nil {
		return false
	}
	return !pe.now().Before(request.EnqueuedAt.Time.Add(pe.queueWait))
}

// ETASeconds возвращает оценку оставшегося ожидания в очереди, в секундах.
// Для заявок вне очереди возвращает nil.
func (pe *PipelineEngine) ETASeconds(request *models.WithdrawalRequest) *int64 {
	if request.Status != models.StatusPending || request.EnqueuedAt == nil {
		return nil
	}

	remaining := request.EnqueuedAt.Time.Add(pe.queueWait).Sub(pe.now())
	if remaining < 0 {
		remaining = 0
	}

	seconds := int64(remaining / time.Second)
	return &seconds
}

// PipelineProgress возвращает процент выполнения конвейера, выведенный из
// завершенных под-шагов (скрининг, travel rule, подпись), а не из времени.
func PipelineProgress(request *models.WithdrawalRequest) int {
	if request.Status == models.StatusCompleted {
		return 100
	}

	var done int
	if request.ScreeningCompletedAt != nil {
		done++
	}
	if request.TravelRuleCompletedAt != nil {
		done++
	}
	if request.SignatureCompletedAt != nil {
		done++
	}

	return done * 100 / 3
}
