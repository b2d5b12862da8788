package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"issue-tracker-service/internal/domain"
)

// LabelRepository реализует domain.LabelRepository для PostgreSQL.
type LabelRepository struct {
	db *sql.DB
}

// NewLabelRepository создаёт новый LabelRepository.
func NewLabelRepository(db *sql.DB) *LabelRepository {
	return &LabelRepository{db: db}
}

// Create сохраняет новую метку и проставляет сгенерированный ID.
func (r *LabelRepository) Create(ctx context.Context, label *domain.Label) error {
	now := time.Now().UTC()

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO labels (name, color, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		label.Name, label.Color, now,
	).Scan(&label.ID)

	if err != nil {
		return fmt.Errorf("insert label: %w", err)
	}

	label.CreatedAt = now
	return nil
}

// List возвращает метки с пагинацией.
func (r *LabelRepository) List(ctx context.Context, skip, limit int) ([]domain.Label, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, color, created_at
		   FROM labels
		  ORDER BY id
		 OFFSET $1 LIMIT $2`,
		skip, limit,
	)

	if err != nil {
		return nil, fmt.Errorf("select labels: %w", err)
	}

	return collectLabels(rows)
}

// GetByIDs возвращает метки по списку идентификаторов.
func (r *LabelRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Label, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))

	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, color, created_at
		   FROM labels
		  WHERE id IN (`+strings.Join(placeholders, ", ")+`)
		  ORDER BY id`,
		args...,
	)

	if err != nil {
		return nil, fmt.Errorf("select labels by ids: %w", err)
	}

	return collectLabels(rows)
}

// ListByIssue возвращает метки, привязанные к задаче.
func (r *LabelRepository) ListByIssue(ctx context.Context, issueID int64) ([]domain.Label, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT l.id, l.name, l.color, l.created_at
		   FROM labels l
		   JOIN issue_labels il ON l.id = il.label_id
		  WHERE il.issue_id = $1
		  ORDER BY l.id`,
		issueID,
	)

	if err != nil {
		return nil, fmt.Errorf("select issue labels: %w", err)
	}

	return collectLabels(rows)
}

// NameExists проверяет, существует ли метка с таким именем.
func (r *LabelRepository) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool

	err := r.db.QueryRowContext(ctx,
		`SELECT TRUE FROM labels WHERE name = $1`,
		name,
	).Scan(&exists)

	if err == sql.ErrNoRows {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("check label exists: %w", err)
	}

	return true, nil
}

// ReplaceForIssue атомарно заменяет все метки задачи: удаляет существующие
// связи и вставляет новые в одной транзакции.
func (r *LabelRepository) ReplaceForIssue(ctx context.Context, issueID int64, labelIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)

	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM issue_labels WHERE issue_id = $1`,
		issueID,
	); err != nil {
		return fmt.Errorf("delete issue labels: %w", err)
	}

	for _, labelID := range labelIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO issue_labels (issue_id, label_id)
			 VALUES ($1, $2)`,
			issueID, labelID,
		); err != nil {
			return fmt.Errorf("insert issue label: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

func collectLabels(rows *sql.Rows) ([]domain.Label, error) {
	defer func() {
		_ = rows.Close()
	}()

	var res []domain.Label

	for rows.Next() {
		var l domain.Label

		if err := rows.Scan(&l.ID, &l.Name, &l.Color, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}

		res = append(res, l)
	}

	return res, rows.Err()
}
