package models

import (
	"github.com/Renal37/go-custody-workflow/internal/utils"
)

type RequestStatus string

const (
	StatusDraft      RequestStatus = "DRAFT"
	StatusSubmitted  RequestStatus = "SUBMITTED"
	StatusApproved   RequestStatus = "APPROVED"
	StatusPending    RequestStatus = "PENDING"
	StatusProcessing RequestStatus = "PROCESSING"
	StatusCompleted  RequestStatus = "COMPLETED"
	StatusRejected   RequestStatus = "REJECTED"
	StatusArchived   RequestStatus = "ARCHIVED"
	StatusCancelled  RequestStatus = "CANCELLED"
)

type PipelineStage string

const (
	StageQueued       PipelineStage = "QUEUED"
	StageScreening    PipelineStage = "SCREENING"
	StageSigning      PipelineStage = "SIGNING"
	StageBroadcasting PipelineStage = "BROADCASTING"
	StageDone         PipelineStage = "DONE"
)

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

type Currency string

const (
	CurrencyBTC  Currency = "BTC"
	CurrencyETH  Currency = "ETH"
	CurrencyUSDT Currency = "USDT"
	CurrencyUSDC Currency = "USDC"
)

// SupportedCurrencies перечисляет активы, доступные для вывода.
var SupportedCurrencies = []Currency{CurrencyBTC, CurrencyETH, CurrencyUSDT, CurrencyUSDC}

// RequiredApprover — участник фиксированной очереди согласования.
// Порядок в срезе RequiredApprovals определяет порядок согласования.
type RequiredApprover struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type Approval struct {
	ApproverID   string            `json:"approver_id"`
	ApproverName string            `json:"approver_name"`
	Role         string            `json:"role"`
	ApprovedAt   utils.RFC3339Date `json:"approved_at"`
}

type Rejection struct {
	ApproverID   string            `json:"approver_id"`
	ApproverName string            `json:"approver_name"`
	Reason       string            `json:"reason"`
	RejectedAt   utils.RFC3339Date `json:"rejected_at"`
}

type AuditEntry struct {
	Timestamp utils.RFC3339Date `json:"timestamp"`
	Action    string            `json:"action"`
	ActorID   string            `json:"actor_id"`
	ActorName string            `json:"actor_name"`
	Details   string            `json:"details,omitempty"`
}

type WithdrawalRequest struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	FromAddress string   `json:"from_address"`
	ToAddress   string   `json:"to_address"`
	Amount      float64  `json:"amount"`
	Currency    Currency `json:"currency"`
	GroupID     string   `json:"group_id,omitempty"`

	InitiatorID   string            `json:"initiator_id"`
	InitiatorName string            `json:"initiator_name"`
	InitiatedAt   utils.RFC3339Date `json:"initiated_at"`

	Status   RequestStatus `json:"status"`
	Priority Priority      `json:"priority"`

	RequiredApprovals []RequiredApprover `json:"required_approvals"`
	Approvals         []Approval         `json:"approvals"`
	Rejections        []Rejection        `json:"rejections"`

	QueuePosition         *int               `json:"queue_position,omitempty"`
	PipelineStage         *PipelineStage     `json:"pipeline_stage,omitempty"`
	EnqueuedAt            *utils.RFC3339Date `json:"enqueued_at,omitempty"`
	ScreeningCompletedAt  *utils.RFC3339Date `json:"screening_completed_at,omitempty"`
	TravelRuleCompletedAt *utils.RFC3339Date `json:"travel_rule_completed_at,omitempty"`
	AirGapSessionID       *string            `json:"air_gap_session_id,omitempty"`
	SignatureCompletedAt  *utils.RFC3339Date `json:"signature_completed_at,omitempty"`
	TxHash                *string            `json:"tx_hash,omitempty"`
	BlockConfirmations    int                `json:"block_confirmations"`
	RequiredConfirmations int                `json:"required_confirmations"`
	FailureReason         *string            `json:"failure_reason,omitempty"`

	// Progress и ETASeconds вычисляются при чтении, в хранилище не пишутся.
	Progress   int    `json:"progress"`
	ETASeconds *int64 `json:"eta_seconds,omitempty"`
}

// WithdrawalInput — входные данные формы создания заявки на вывод.
type WithdrawalInput struct {
	Title             string             `json:"title"`
	Description       string             `json:"description"`
	FromAddress       string             `json:"from_address"`
	ToAddress         string             `json:"to_address"`
	Amount            float64            `json:"amount"`
	Currency          Currency           `json:"currency"`
	GroupID           string             `json:"group_id"`
	Priority          Priority           `json:"priority"`
	RequiredApprovals []RequiredApprover `json:"required_approvals"`
}

// RejectInput — тело команды отклонения; причина обязательна.
type RejectInput struct {
	Reason string `json:"reason"`
}

// Actor — аутентифицированный оператор, выполняющий команду.
type Actor struct {
	ID   string
	Name string
}

// ScreeningResult — результат внешней AML/travel-rule проверки.
type ScreeningResult struct {
	RequestID string  `json:"request_id"`
	Passed    bool    `json:"passed"`
	Reason    *string `json:"reason,omitempty"`
}

// SigningResult — итог офлайн-церемонии подписания.
type SigningResult struct {
	RequestID            string             `json:"request_id"`
	AirGapSessionID      string             `json:"air_gap_session_id"`
	SignatureCompletedAt *utils.RFC3339Date `json:"signature_completed_at,omitempty"`
	Failed               bool               `json:"failed"`
	Reason               *string            `json:"reason,omitempty"`
}

// ConfirmationEvent — событие от внешнего наблюдателя сети.
type ConfirmationEvent struct {
	RequestID     string `json:"request_id"`
	TxHash        string `json:"tx_hash"`
	Confirmations int    `json:"confirmations"`
}
