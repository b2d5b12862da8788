package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"issue-tracker-service/internal/domain"
)

// CommentRepository реализует domain.CommentRepository для PostgreSQL.
type CommentRepository struct {
	db *sql.DB
}

// NewCommentRepository создаёт новый CommentRepository.
func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create сохраняет новый комментарий и проставляет сгенерированный ID.
func (r *CommentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	now := time.Now().UTC()

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO comments (body, author_id, issue_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 RETURNING id`,
		comment.Body, comment.AuthorID, comment.IssueID, now,
	).Scan(&comment.ID)

	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}

	comment.CreatedAt = now
	comment.UpdatedAt = now
	return nil
}

// ListByIssue возвращает комментарии задачи в порядке создания.
func (r *CommentRepository) ListByIssue(ctx context.Context, issueID int64) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, body, author_id, issue_id, created_at, updated_at
		   FROM comments
		  WHERE issue_id = $1
		  ORDER BY id`,
		issueID,
	)

	if err != nil {
		return nil, fmt.Errorf("select comments: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var res []domain.Comment

	for rows.Next() {
		var c domain.Comment

		if err := rows.Scan(
			&c.ID, &c.Body, &c.AuthorID, &c.IssueID, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}

		res = append(res, c)
	}

	return res, rows.Err()
}
