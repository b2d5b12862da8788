package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"issue-tracker-service/internal/domain"
)

// IssueRepository реализует domain.IssueRepository для PostgreSQL.
type IssueRepository struct {
	db *sql.DB
}

// NewIssueRepository создаёт новый IssueRepository.
func NewIssueRepository(db *sql.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

const issueColumns = `id, title, description, status, priority, version,
	    creator_id, assignee_id, created_at, updated_at, resolved_at`

func scanIssue(row interface{ Scan(dest ...any) error }) (domain.Issue, error) {
	var i domain.Issue

	err := row.Scan(
		&i.ID, &i.Title, &i.Description, &i.Status, &i.Priority, &i.Version,
		&i.CreatorID, &i.AssigneeID, &i.CreatedAt, &i.UpdatedAt, &i.ResolvedAt,
	)

	return i, err
}

// Create сохраняет новую задачу и запись истории "created" в одной транзакции.
func (r *IssueRepository) Create(ctx context.Context, issue *domain.Issue) error {
	tx, err := r.db.BeginTx(ctx, nil)

	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	if err := r.CreateTx(ctx, tx, issue); err != nil {
		return err
	}

	created := "Issue created"

	if err := insertHistoryTx(ctx, tx, domain.IssueHistory{
		IssueID:     issue.ID,
		ChangedByID: issue.CreatorID,
		FieldName:   "created",
		OldValue:    nil,
		NewValue:    &created,
		ChangedAt:   issue.CreatedAt,
	}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// CreateTx вставляет задачу в рамках внешней транзакции и проставляет ID.
// Историю не пишет — используется CSV-импортом для стейджинга строк.
func (r *IssueRepository) CreateTx(ctx context.Context, tx *sql.Tx, issue *domain.Issue) error {
	now := time.Now().UTC()

	err := tx.QueryRowContext(ctx,
		`INSERT INTO issues (title, description, status, priority, version,
		                     creator_id, assignee_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, 1, $5, $6, $7, $7)
		 RETURNING id`,
		issue.Title, issue.Description, string(issue.Status), string(issue.Priority),
		issue.CreatorID, issue.AssigneeID, now,
	).Scan(&issue.ID)

	if err != nil {
		return fmt.Errorf("insert issue: %w", err)
	}

	issue.Version = 1
	issue.CreatedAt = now
	issue.UpdatedAt = now
	return nil
}

// GetByID возвращает задачу по идентификатору.
func (r *IssueRepository) GetByID(ctx context.Context, id int64) (domain.Issue, error) {
	i, err := scanIssue(r.db.QueryRowContext(ctx,
		`SELECT `+issueColumns+` FROM issues WHERE id = $1`,
		id,
	))

	if err == sql.ErrNoRows {
		return domain.Issue{}, domain.ErrNotFound
	}

	if err != nil {
		return domain.Issue{}, fmt.Errorf("select issue: %w", err)
	}

	return i, nil
}

// GetByIDs возвращает задачи по списку идентификаторов (без гарантии порядка).
func (r *IssueRepository) GetByIDs(ctx context.Context, ids []int64) ([]domain.Issue, error) {
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
		`SELECT `+issueColumns+` FROM issues WHERE id IN (`+strings.Join(placeholders, ", ")+`)`,
		args...,
	)

	if err != nil {
		return nil, fmt.Errorf("select issues by ids: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var res []domain.Issue

	for rows.Next() {
		i, err := scanIssue(rows)

		if err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}

		res = append(res, i)
	}

	return res, rows.Err()
}

// List возвращает задачи по фильтру с пагинацией.
func (r *IssueRepository) List(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	var (
		conds []string
		args  []any
	)

	addCond := func(expr string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}

	if filter.Status != nil {
		addCond("status = $%d", string(*filter.Status))
	}

	if filter.AssigneeID != nil {
		addCond("assignee_id = $%d", *filter.AssigneeID)
	}

	if filter.CreatorID != nil {
		addCond("creator_id = $%d", *filter.CreatorID)
	}

	query := `SELECT ` + issueColumns + ` FROM issues`

	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}

	args = append(args, filter.Skip)
	query += fmt.Sprintf(` ORDER BY id OFFSET $%d`, len(args))

	args = append(args, filter.Limit)
	query += fmt.Sprintf(` LIMIT $%d`, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)

	if err != nil {
		return nil, fmt.Errorf("select issues: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var res []domain.Issue

	for rows.Next() {
		i, err := scanIssue(rows)

		if err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}

		res = append(res, i)
	}

	return res, rows.Err()
}

// Update сохраняет изменённую задачу и записи истории в одной транзакции.
// Условие version = expectedVersion в UPDATE — вторая линия защиты от гонки
// между чтением задачи сервисом и записью: проигравший получает конфликт.
func (r *IssueRepository) Update(
	ctx context.Context,
	issue domain.Issue,
	expectedVersion int64,
	changes []domain.FieldChange,
	actorID int64,
) error {
	tx, err := r.db.BeginTx(ctx, nil)

	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE issues
		    SET title = $3,
		        description = $4,
		        status = $5,
		        priority = $6,
		        version = $7,
		        assignee_id = $8,
		        updated_at = $9,
		        resolved_at = $10
		  WHERE id = $1 AND version = $2`,
		issue.ID, expectedVersion,
		issue.Title, issue.Description, string(issue.Status), string(issue.Priority),
		issue.Version, issue.AssigneeID, issue.UpdatedAt, issue.ResolvedAt,
	)

	if err != nil {
		return fmt.Errorf("update issue: %w", err)
	}

	affected, err := res.RowsAffected()

	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return domain.ErrVersionConflict
	}

	for _, ch := range changes {
		if err := insertHistoryTx(ctx, tx, domain.IssueHistory{
			IssueID:     issue.ID,
			ChangedByID: actorID,
			FieldName:   ch.FieldName,
			OldValue:    ch.OldValue,
			NewValue:    ch.NewValue,
			ChangedAt:   issue.UpdatedAt,
		}); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// BulkUpdateStatus переводит все переданные задачи в новый статус в одной
// транзакции: обновления и записи истории либо применяются целиком, либо
// откатываются целиком.
func (r *IssueRepository) BulkUpdateStatus(
	ctx context.Context,
	issues []domain.Issue,
	status domain.IssueStatus,
	actorID int64,
) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)

	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()

	for _, issue := range issues {
		resolvedAt := issue.ResolvedAt

		if status == domain.IssueStatusResolved && resolvedAt == nil {
			resolvedAt = &now
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE issues
			    SET status = $2,
			        version = version + 1,
			        resolved_at = $3,
			        updated_at = $4
			  WHERE id = $1`,
			issue.ID, string(status), resolvedAt, now,
		); err != nil {
			return 0, fmt.Errorf("bulk update issue %d: %w", issue.ID, err)
		}

		oldStatus := string(issue.Status)
		newStatus := string(status)

		if err := insertHistoryTx(ctx, tx, domain.IssueHistory{
			IssueID:     issue.ID,
			ChangedByID: actorID,
			FieldName:   "status",
			OldValue:    &oldStatus,
			NewValue:    &newStatus,
			ChangedAt:   now,
		}); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}

	return len(issues), nil
}

// Delete удаляет задачу вместе с комментариями, связями с метками и историей.
// Каскад выполняется вручную в одной транзакции.
func (r *IssueRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)

	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM comments WHERE issue_id = $1`, id,
	); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM issue_labels WHERE issue_id = $1`, id,
	); err != nil {
		return fmt.Errorf("delete issue labels: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM issue_history WHERE issue_id = $1`, id,
	); err != nil {
		return fmt.Errorf("delete issue history: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`DELETE FROM issues WHERE id = $1`, id,
	)

	if err != nil {
		return fmt.Errorf("delete issue: %w", err)
	}

	affected, err := res.RowsAffected()

	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return domain.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

type txKey struct{}

// WithTx выполняет переданную функцию как транзакцию.
func (r *IssueRepository) WithTx(
	ctx context.Context,
	fn func(ctx context.Context, tx *sql.Tx) error,
) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)

	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}

		if err != nil {
			_ = tx.Rollback()

		} else {
			err = tx.Commit()
		}
	}()

	ctxWithTx := context.WithValue(ctx, txKey{}, tx)

	err = fn(ctxWithTx, tx)
	return err
}
