package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// SQL-запросы для журнала аудита
const (
	// InsertAuditEntryQuery используется для добавления новой записи аудита
	InsertAuditEntryQuery = `
		INSERT INTO
			audit_flow (request_id, recorded_at, action, actor_id, actor_name, details)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	// SelectAuditFlowQuery используется для выборки записей аудита по заявке
	SelectAuditFlowQuery = `
		SELECT
			recorded_at,
			action,
			actor_id,
			actor_name,
			details
		FROM
			audit_flow
		WHERE
			request_id = $1
		ORDER BY
			id
	`
)

// AuditEntryDB представляет собой запись журнала аудита из базы данных
type AuditEntryDB struct {
	RecordedAt time.Time // Время события
	Action     string    // Что произошло
	ActorID    string    // Идентификатор действующего лица
	ActorName  string    // Имя действующего лица
	Details    string    // Дополнительные сведения
}

// insertAudit добавляет запись аудита в рамках открытой транзакции.
// Журнал пополняется только вставками, записи никогда не изменяются.
func insertAudit(ctx context.Context, tx pgx.Tx, requestID string, entry AuditEntryDB) error {
	_, err := tx.Exec(ctx, InsertAuditEntryQuery,
		requestID, entry.RecordedAt, entry.Action, entry.ActorID, entry.ActorName, entry.Details)
	if err != nil {
		return fmt.Errorf("не удалось создать запись аудита: %w", err)
	}
	return nil
}

// FindAuditFlow возвращает журнал аудита заявки в порядке добавления записей
func (d *Database) FindAuditFlow(ctx context.Context, requestID string) ([]AuditEntryDB, error) {
	var result []AuditEntryDB

	rows, err := d.db.Query(ctx, SelectAuditFlowQuery, requestID)
	if err != nil {
		return nil, fmt.Errorf("не удалось выполнить запрос журнала аудита: %w", err)
	}
	defer rows.Close()

	// Проходим по всем строкам результата запроса
	for rows.Next() {
		var item AuditEntryDB

		if err := rows.Scan(&item.RecordedAt, &item.Action, &item.ActorID, &item.ActorName, &item.Details); err != nil {
			return nil, fmt.Errorf("ошибка при сканировании строки аудита: %w", err)
		}

		result = append(result, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка после чтения строк аудита: %w", err)
	}

	return result, nil
}
