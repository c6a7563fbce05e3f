package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/Renal37/go-custody-workflow/internal/models"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Определение пользовательских ошибок
var (
	ErrDuplicateRequest = errors.New("заявка уже существует") // Ошибка дублирования заявки
)

// SQL-запросы для работы с заявками на вывод
const (
	InsertRequestQuery = `
		INSERT INTO
			requests (
				id, title, description, from_address, to_address,
				amount, currency, group_id, initiator_id, initiator_name,
				priority, status, initiated_at
			)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	InsertRequiredApproverQuery = `
		INSERT INTO
			required_approvers (request_id, position, approver_id, approver_name, role)
		VALUES ($1, $2, $3, $4, $5)
	`
	SelectRequestQuery = `
		SELECT
			id,
			title,
			description,
			from_address,
			to_address,
			amount,
			currency,
			group_id,
			initiator_id,
			initiator_name,
			priority,
			status,
			initiated_at,
			queue_position,
			enqueued_at,
			pipeline_stage,
			screening_completed_at,
			travel_rule_completed_at,
			air_gap_session_id,
			signature_completed_at,
			tx_hash,
			block_confirmations,
			required_confirmations,
			failure_reason
		FROM
			requests
		WHERE
			id = $1
	`
	SelectRequestsByStatusQuery = `
		SELECT
			id,
			title,
			description,
			from_address,
			to_address,
			amount,
			currency,
			group_id,
			initiator_id,
			initiator_name,
			priority,
			status,
			initiated_at,
			queue_position,
			enqueued_at,
			pipeline_stage,
			screening_completed_at,
			travel_rule_completed_at,
			air_gap_session_id,
			signature_completed_at,
			tx_hash,
			block_confirmations,
			required_confirmations,
			failure_reason
		FROM
			requests
		WHERE
			$1::text IS NULL OR status = $1
		ORDER BY
			initiated_at, id
	`
	SelectRequiredApproversQuery = `
		SELECT
			position,
			approver_id,
			approver_name,
			role
		FROM
			required_approvers
		WHERE
			request_id = $1
		ORDER BY
			position
	`
	SelectApprovalsQuery = `
		SELECT
			approver_id,
			approver_name,
			role,
			approved_at
		FROM
			approvals
		WHERE
			request_id = $1
		ORDER BY
			approved_at
	`
	SelectRejectionsQuery = `
		SELECT
			approver_id,
			approver_name,
			reason,
			rejected_at
		FROM
			rejections
		WHERE
			request_id = $1
		ORDER BY
			rejected_at
	`
	UpdateRequestStatusQuery = `
		UPDATE
			requests
		SET
			status = $2,
			enqueued_at = COALESCE($3, enqueued_at),
			pipeline_stage = COALESCE($4, pipeline_stage),
			screening_completed_at = COALESCE($5, screening_completed_at),
			travel_rule_completed_at = COALESCE($6, travel_rule_completed_at),
			air_gap_session_id = COALESCE($7, air_gap_session_id),
			signature_completed_at = COALESCE($8, signature_completed_at),
			tx_hash = COALESCE($9, tx_hash),
			block_confirmations = COALESCE($10, block_confirmations),
			required_confirmations = COALESCE($11, required_confirmations),
			failure_reason = COALESCE($12, failure_reason)
		WHERE
			id = $1
	`
	AssignQueuePositionQuery = `
		UPDATE
			requests
		SET
			queue_position = (SELECT COALESCE(MAX(queue_position), 0) + 1 FROM requests)
		WHERE
			id = $1
	`
	ResetPipelineQuery = `
		UPDATE
			requests
		SET
			queue_position = NULL,
			enqueued_at = NULL,
			pipeline_stage = NULL,
			screening_completed_at = NULL,
			travel_rule_completed_at = NULL,
			air_gap_session_id = NULL,
			signature_completed_at = NULL,
			tx_hash = NULL,
			block_confirmations = 0,
			failure_reason = NULL
		WHERE
			id = $1
	`
	InsertApprovalQuery = `
		INSERT INTO
			approvals (request_id, approver_id, approver_name, role, approved_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	InsertRejectionQuery = `
		INSERT INTO
			rejections (request_id, approver_id, approver_name, reason, rejected_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	DeleteApprovalsQuery = `
		DELETE FROM approvals WHERE request_id = $1
	`
	DeleteRejectionsQuery = `
		DELETE FROM rejections WHERE request_id = $1
	`
)

// Структура для хранения заявки на вывод средств
type RequestDB struct {
	ID            string
	Title         string
	Description   string
	FromAddress   string
	ToAddress     string
	Amount        float64
	Currency      string
	GroupID       string
	InitiatorID   string
	InitiatorName string
	Priority      string
	Status        RequestStatusDB
	InitiatedAt   time.Time

	QueuePosition         *int
	EnqueuedAt            *time.Time
	PipelineStage         *string
	ScreeningCompletedAt  *time.Time
	TravelRuleCompletedAt *time.Time
	AirGapSessionID       *string
	SignatureCompletedAt  *time.Time
	TxHash                *string
	BlockConfirmations    int
	RequiredConfirmations int
	FailureReason         *string

	RequiredApprovers []RequiredApproverDB
	Approvals         []ApprovalDB
	Rejections        []RejectionDB
}

// RequiredApproverDB — участник очереди согласования (позиция задает порядок)
type RequiredApproverDB struct {
	Position     int
	ApproverID   string
	ApproverName string
	Role         string
}

type ApprovalDB struct {
	ApproverID   string
	ApproverName string
	Role         string
	ApprovedAt   time.Time
}

type RejectionDB struct {
	ApproverID   string
	ApproverName string
	Reason       string
	RejectedAt   time.Time
}

// RequestUpdateDB описывает изменения полей заявки при переходе статуса.
// Нулевые указатели означают "поле не изменяется".
type RequestUpdateDB struct {
	AssignQueuePosition   bool
	EnqueuedAt            *time.Time
	PipelineStage         *string
	ScreeningCompletedAt  *time.Time
	TravelRuleCompletedAt *time.Time
	AirGapSessionID       *string
	SignatureCompletedAt  *time.Time
	TxHash                *string
	BlockConfirmations    *int
	RequiredConfirmations *int
	FailureReason         *string
	ResetPipeline         bool
	ClearDecisions        bool
}

// TransitionDB — единица изменения заявки: новый статус, изменения полей,
// добавляемые решения согласующих и ровно одна запись аудита.
type TransitionDB struct {
	RequestID    string
	Status       RequestStatusDB
	Update       RequestUpdateDB
	AddApproval  *ApprovalDB
	AddRejection *RejectionDB
	Audit        AuditEntryDB
}

// Определение статуса заявки с возможностью преобразования в/из базы данных
type RequestStatusDB struct {
	models.RequestStatus
}

// Реализация интерфейса sql.Scanner для чтения статуса заявки из базы данных
func (s *RequestStatusDB) Scan(value interface{}) error {
	strVal, ok := value.(string)
	if !ok {
		return fmt.Errorf("статус заявки должен быть строкой, а не %T", value)
	}

	*s = RequestStatusDB{models.RequestStatus(strVal)}
	return nil
}

// Реализация интерфейса driver.Valuer для преобразования статуса заявки в строку перед записью в базу данных
func (s RequestStatusDB) Value() (driver.Value, error) {
	return string(s.RequestStatus), nil
}

// CreateRequest создает новую заявку вместе с очередью согласующих и первой записью аудита
func (d *Database) CreateRequest(ctx context.Context, request RequestDB, audit AuditEntryDB) error {
	tx, err := d.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка открытия транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, InsertRequestQuery,
		request.ID,
		request.Title,
		request.Description,
		request.FromAddress,
		request.ToAddress,
		request.Amount,
		request.Currency,
		request.GroupID,
		request.InitiatorID,
		request.InitiatorName,
		request.Priority,
		request.Status,
		request.InitiatedAt,
	)
	if err != nil {
		var e *pgconn.PgError
		// Проверяем, не является ли ошибка нарушением уникальности (дубликат заявки)
		if errors.As(err, &e) && e.Code == pgerrcode.UniqueViolation {
			return ErrDuplicateRequest
		}
		return fmt.Errorf("ошибка создания заявки: %w", err)
	}

	for _, approver := range request.RequiredApprovers {
		_, err = tx.Exec(ctx, InsertRequiredApproverQuery,
			request.ID, approver.Position, approver.ApproverID, approver.ApproverName, approver.Role)
		if err != nil {
			return fmt.Errorf("ошибка сохранения согласующего: %w", err)
		}
	}

	if err := insertAudit(ctx, tx, request.ID, audit); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// FindRequest возвращает заявку со всеми решениями согласующих.
// Если заявка не найдена, возвращает nil без ошибки.
func (d *Database) FindRequest(ctx context.Context, requestID string) (*RequestDB, error) {
	request := &RequestDB{}

	err := d.db.QueryRow(ctx, SelectRequestQuery, requestID).Scan(
		&request.ID,
		&request.Title,
		&request.Description,
		&request.FromAddress,
		&request.ToAddress,
		&request.Amount,
		&request.Currency,
		&request.GroupID,
		&request.InitiatorID,
		&request.InitiatorName,
		&request.Priority,
		&request.Status,
		&request.InitiatedAt,
		&request.QueuePosition,
		&request.EnqueuedAt,
		&request.PipelineStage,
		&request.ScreeningCompletedAt,
		&request.TravelRuleCompletedAt,
		&request.AirGapSessionID,
		&request.SignatureCompletedAt,
		&request.TxHash,
		&request.BlockConfirmations,
		&request.RequiredConfirmations,
		&request.FailureReason,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка поиска заявки: %w", err)
	}

	if err := d.loadDecisions(ctx, request); err != nil {
		return nil, err
	}

	return request, nil
}

// FindRequestsByStatus возвращает заявки в порядке создания.
// Если статус не задан (nil), возвращаются все заявки.
func (d *Database) FindRequestsByStatus(ctx context.Context, status *RequestStatusDB) ([]RequestDB, error) {
	var filter *string
	if status != nil {
		s := string(status.RequestStatus)
		filter = &s
	}

	rows, err := d.db.Query(ctx, SelectRequestsByStatusQuery, filter)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска заявок: %w", err)
	}
	defer rows.Close()

	var result []RequestDB

	for rows.Next() {
		var item RequestDB
		if err := rows.Scan(
			&item.ID,
			&item.Title,
			&item.Description,
			&item.FromAddress,
			&item.ToAddress,
			&item.Amount,
			&item.Currency,
			&item.GroupID,
			&item.InitiatorID,
			&item.InitiatorName,
			&item.Priority,
			&item.Status,
			&item.InitiatedAt,
			&item.QueuePosition,
			&item.EnqueuedAt,
			&item.PipelineStage,
			&item.ScreeningCompletedAt,
			&item.TravelRuleCompletedAt,
			&item.AirGapSessionID,
			&item.SignatureCompletedAt,
			&item.TxHash,
			&item.BlockConfirmations,
			&item.RequiredConfirmations,
			&item.FailureReason,
		); err != nil {
			return nil, fmt.Errorf("ошибка обработки строки с заявкой: %w", err)
		}
		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка итерации по строкам: %w", err)
	}

	for i := range result {
		if err := d.loadDecisions(ctx, &result[i]); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// loadDecisions загружает очередь согласующих и принятые решения для заявки
func (d *Database) loadDecisions(ctx context.Context, request *RequestDB) error {
	approverRows, err := d.db.Query(ctx, SelectRequiredApproversQuery, request.ID)
	if err != nil {
		return fmt.Errorf("ошибка поиска согласующих: %w", err)
	}
	defer approverRows.Close()

	for approverRows.Next() {
		var item RequiredApproverDB
		if err := approverRows.Scan(&item.Position, &item.ApproverID, &item.ApproverName, &item.Role); err != nil {
			return fmt.Errorf("ошибка обработки строки согласующего: %w", err)
		}
		request.RequiredApprovers = append(request.RequiredApprovers, item)
	}
	if err := approverRows.Err(); err != nil {
		return fmt.Errorf("ошибка итерации по согласующим: %w", err)
	}

	approvalRows, err := d.db.Query(ctx, SelectApprovalsQuery, request.ID)
	if err != nil {
		return fmt.Errorf("ошибка поиска утверждений: %w", err)
	}
	defer approvalRows.Close()

	for approvalRows.Next() {
		var item ApprovalDB
		if err := approvalRows.Scan(&item.ApproverID, &item.ApproverName, &item.Role, &item.ApprovedAt); err != nil {
			return fmt.Errorf("ошибка обработки строки утверждения: %w", err)
		}
		request.Approvals = append(request.Approvals, item)
	}
	if err := approvalRows.Err(); err != nil {
		return fmt.Errorf("ошибка итерации по утверждениям: %w", err)
	}

	rejectionRows, err := d.db.Query(ctx, SelectRejectionsQuery, request.ID)
	if err != nil {
		return fmt.Errorf("ошибка поиска отклонений: %w", err)
	}
	defer rejectionRows.Close()

	for rejectionRows.Next() {
		var item RejectionDB
		if err := rejectionRows.Scan(&item.ApproverID, &item.ApproverName, &item.Reason, &item.RejectedAt); err != nil {
			return fmt.Errorf("ошибка обработки строки отклонения: %w", err)
		}
		request.Rejections = append(request.Rejections, item)
	}
	if err := rejectionRows.Err(); err != nil {
		return fmt.Errorf("ошибка итерации по отклонениям: %w", err)
	}

	return nil
}

// ApplyTransitions применяет один или несколько переходов статуса в одной транзакции.
// Каждый переход добавляет ровно одну запись аудита; при любой ошибке
// ни одно изменение не сохраняется.
func (d *Database) ApplyTransitions(ctx context.Context, transitions ...TransitionDB) error {
	tx, err := d.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка открытия транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range transitions {
		if t.Update.ClearDecisions {
			if _, err := tx.Exec(ctx, DeleteApprovalsQuery, t.RequestID); err != nil {
				return fmt.Errorf("ошибка очистки утверждений: %w", err)
			}
			if _, err := tx.Exec(ctx, DeleteRejectionsQuery, t.RequestID); err != nil {
				return fmt.Errorf("ошибка очистки отклонений: %w", err)
			}
		}

		if t.Update.ResetPipeline {
			if _, err := tx.Exec(ctx, ResetPipelineQuery, t.RequestID); err != nil {
				return fmt.Errorf("ошибка сброса конвейера: %w", err)
			}
		}

		tag, err := tx.Exec(ctx, UpdateRequestStatusQuery,
			t.RequestID,
			t.Status,
			t.Update.EnqueuedAt,
			t.Update.PipelineStage,
			t.Update.ScreeningCompletedAt,
			t.Update.TravelRuleCompletedAt,
			t.Update.AirGapSessionID,
			t.Update.SignatureCompletedAt,
			t.Update.TxHash,
			t.Update.BlockConfirmations,
			t.Update.RequiredConfirmations,
			t.Update.FailureReason,
		)
		if err != nil {
			return fmt.Errorf("ошибка обновления статуса заявки: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("заявка %s не найдена при обновлении", t.RequestID)
		}

		if t.Update.AssignQueuePosition {
			if _, err := tx.Exec(ctx, AssignQueuePositionQuery, t.RequestID); err != nil {
				return fmt.Errorf("ошибка назначения позиции в очереди: %w", err)
			}
		}

		if t.AddApproval != nil {
			a := t.AddApproval
			if _, err := tx.Exec(ctx, InsertApprovalQuery,
				t.RequestID, a.ApproverID, a.ApproverName, a.Role, a.ApprovedAt); err != nil {
				return fmt.Errorf("ошибка сохранения утверждения: %w", err)
			}
		}

		if t.AddRejection != nil {
			r := t.AddRejection
			if _, err := tx.Exec(ctx, InsertRejectionQuery,
				t.RequestID, r.ApproverID, r.ApproverName, r.Reason, r.RejectedAt); err != nil {
				return fmt.Errorf("ошибка сохранения отклонения: %w", err)
			}
		}

		if err := insertAudit(ctx, tx, t.RequestID, t.Audit); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
