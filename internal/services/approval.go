package services

import (
	"errors"

	"github.com/Renal37/go-custody-workflow/internal/models"
)

// Определяем ошибки, связанные с согласованием
var (
	ErrNotEligible = errors.New("согласующий не может действовать сейчас")
)

// ApprovalState — положение согласующего в очереди согласования заявки.
type ApprovalState string

const (
	ApprovalStateApproved ApprovalState = "APPROVED" // уже утвердил
	ApprovalStateRejected ApprovalState = "REJECTED" // уже отклонил
	ApprovalStateBlocked  ApprovalState = "BLOCKED"  // кто-то ранее в очереди отклонил
	ApprovalStateWaiting  ApprovalState = "WAITING"  // очередь еще не дошла
	ApprovalStateReady    ApprovalState = "READY"    // может действовать
)

// ApprovalEngine вычисляет, может ли согласующий действовать по заявке.
// Порядок среза RequiredApprovals определяет очередь: согласующий на позиции i
// получает READY только когда все позиции до i утверждены.
type ApprovalEngine struct{}

// Gate возвращает состояние согласующего для заявки.
// Если идентификатор не входит в очередь согласования, возвращает ErrNotEligible.
func (e ApprovalEngine) Gate(request *models.WithdrawalRequest, approverID string) (ApprovalState, error) {
	index := -1
	for i, approver := range request.RequiredApprovals {
		if approver.ID == approverID {
			index = i
			break
		}
	}

	if index == -1 {
		return "", ErrNotEligible
	}

	if hasApproved(request, approverID) {
		return ApprovalStateApproved, nil
	}
	if hasRejected(request, approverID) {
		return ApprovalStateRejected, nil
	}

	for i := 0; i < index; i++ {
		if hasRejected(request, request.RequiredApprovals[i].ID) {
			return ApprovalStateBlocked, nil
		}
	}

	for i := 0; i < index; i++ {
		if !hasApproved(request, request.RequiredApprovals[i].ID) {
			return ApprovalStateWaiting, nil
		}
	}

	return ApprovalStateReady, nil
}

// FullyApproved сообщает, что все согласующие утвердили заявку
func (e ApprovalEngine) FullyApproved(request *models.WithdrawalRequest) bool {
	return len(request.Approvals) == len(request.RequiredApprovals)
}

func hasApproved(request *models.WithdrawalRequest, approverID string) bool {
	for _, approval := range request.Approvals {
		if approval.ApproverID == approverID {
			return true
		}
	}
	return false
}

func hasRejected(request *models.WithdrawalRequest, approverID string) bool {
	for _, rejection := range request.Rejections {
		if rejection.ApproverID == approverID {
			return true
		}
	}
	return false
}
