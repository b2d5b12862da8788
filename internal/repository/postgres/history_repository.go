package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"issue-tracker-service/internal/domain"
)

// insertHistoryTx добавляет запись аудита в рамках транзакции мутации.
// Откат транзакции откатывает и историю: осиротевших записей не бывает.
func insertHistoryTx(ctx context.Context, tx *sql.Tx, h domain.IssueHistory) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO issue_history (issue_id, changed_by_id, field_name, old_value, new_value, changed_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		h.IssueID, h.ChangedByID, h.FieldName, h.OldValue, h.NewValue, h.ChangedAt,
	)

	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}

	return nil
}

// HistoryRepository реализует domain.HistoryRepository для PostgreSQL.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository создаёт новый HistoryRepository.
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// ListByIssue возвращает историю изменений задачи, новые записи первыми.
func (r *HistoryRepository) ListByIssue(ctx context.Context, issueID int64) ([]domain.IssueHistory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, issue_id, changed_by_id, field_name, old_value, new_value, changed_at
		   FROM issue_history
		  WHERE issue_id = $1
		  ORDER BY changed_at DESC, id DESC`,
		issueID,
	)

	if err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var res []domain.IssueHistory

	for rows.Next() {
		var h domain.IssueHistory

		if err := rows.Scan(
			&h.ID, &h.IssueID, &h.ChangedByID, &h.FieldName,
			&h.OldValue, &h.NewValue, &h.ChangedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}

		res = append(res, h)
	}

	return res, rows.Err()
}
