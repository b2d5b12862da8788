package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"issue-tracker-service/internal/domain"
)

// ReportRepository реализует domain.ReportRepository для PostgreSQL.
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository создаёт новый ReportRepository.
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// TopAssignees возвращает исполнителей по убыванию числа назначенных задач.
func (r *ReportRepository) TopAssignees(ctx context.Context, limit int) ([]domain.TopAssignee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT u.id, u.username, COUNT(i.id)
		   FROM users u
		   JOIN issues i ON u.id = i.assignee_id
		  GROUP BY u.id, u.username
		  ORDER BY COUNT(i.id) DESC
		  LIMIT $1`,
		limit,
	)

	if err != nil {
		return nil, fmt.Errorf("select top assignees: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var res []domain.TopAssignee

	for rows.Next() {
		var t domain.TopAssignee

		if err := rows.Scan(&t.AssigneeID, &t.AssigneeName, &t.IssueCount); err != nil {
			return nil, fmt.Errorf("scan top assignee: %w", err)
		}

		res = append(res, t)
	}

	return res, rows.Err()
}

// ResolutionLatency возвращает среднее время от создания до решения задачи.
func (r *ReportRepository) ResolutionLatency(ctx context.Context) (domain.LatencyReport, error) {
	var (
		total      int64
		avgSeconds sql.NullFloat64
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        AVG(EXTRACT(EPOCH FROM (resolved_at - created_at)))
		   FROM issues
		  WHERE status = 'resolved'
		    AND resolved_at IS NOT NULL`,
	).Scan(&total, &avgSeconds)

	if err != nil {
		return domain.LatencyReport{}, fmt.Errorf("select resolution latency: %w", err)
	}

	report := domain.LatencyReport{TotalResolvedIssues: total}

	if avgSeconds.Valid {
		hours := avgSeconds.Float64 / 3600
		report.AverageResolutionTimeHours = math.Round(hours*100) / 100
	}

	return report, nil
}
