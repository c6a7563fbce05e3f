package models

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
)

//go:generate mockgen -destination=mocks/mock_auth.go . AuthService
type AuthService interface {
	Register(ctx context.Context, user UnknownUser) error

	Login(ctx context.Context, user UnknownUser) error

	GetUser(ctx context.Context, login string) (*User, error)
}

//go:generate mockgen -destination=mocks/mock_jwt.go . JWTService
type JWTService interface {
	GenerateJWT(subject string) (string, error)

	ValidateToken(token string) (*jwt.Token, error)
}

//go:generate mockgen -destination=mocks/mock_workflow.go . WorkflowService
type WorkflowService interface {
	Submit(ctx context.Context, input WithdrawalInput, actor Actor) (*WithdrawalRequest, error)

	Resubmit(ctx context.Context, requestID string, actor Actor) (*WithdrawalRequest, error)

	Approve(ctx context.Context, requestID string, actor Actor) (*WithdrawalRequest, error)

	Reject(ctx context.Context, requestID string, actor Actor, reason string) (*WithdrawalRequest, error)

	Cancel(ctx context.Context, requestID string, actor Actor) (*WithdrawalRequest, error)

	ReApply(ctx context.Context, requestID string, actor Actor) (*WithdrawalRequest, error)

	Archive(ctx context.Context, requestID string, actor Actor) (*WithdrawalRequest, error)

	AdvancePipeline(ctx context.Context, requestID string) error

	// CompleteScreening и CompleteSigning при зафиксированном провале проверки
	// возвращают обновленную заявку (уже REJECTED, с заполненным FailureReason)
	// вместе с ошибкой ErrScreeningFailed или ErrSigningFailed: провал — это
	// записанный результат, и вызывающему нужны обе стороны.
	CompleteScreening(ctx context.Context, result ScreeningResult) (*WithdrawalRequest, error)

	CompleteSigning(ctx context.Context, result SigningResult) (*WithdrawalRequest, error)

	RecordConfirmation(ctx context.Context, event ConfirmationEvent) (*WithdrawalRequest, error)
}

//go:generate mockgen -destination=mocks/mock_registry.go . RegistryService
type RegistryService interface {
	Get(ctx context.Context, requestID string) (*WithdrawalRequest, error)

	ListByStatus(ctx context.Context, status *RequestStatus) ([]WithdrawalRequest, error)

	AuditTrail(ctx context.Context, requestID string) ([]AuditEntry, error)
}
