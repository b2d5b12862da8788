package domain

import (
	"context"
	"database/sql"
	"time"
)

// UserRepository описывает операции работы с пользователями.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, skip, limit int) ([]User, error)
	Exists(ctx context.Context, id int64) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SetResetCode(ctx context.Context, id int64, code string, expires time.Time) error
	UpdatePassword(ctx context.Context, id int64, hashedPassword string) error
}

// IssueRepository описывает операции с задачами. Каждая мутация выполняется
// в одной транзакции вместе с записями истории.
type IssueRepository interface {
	Create(ctx context.Context, issue *Issue) error
	GetByID(ctx context.Context, id int64) (Issue, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Issue, error)
	List(ctx context.Context, filter IssueFilter) ([]Issue, error)
	Update(ctx context.Context, issue Issue, expectedVersion int64, changes []FieldChange, actorID int64) error
	BulkUpdateStatus(ctx context.Context, issues []Issue, status IssueStatus, actorID int64) (int, error)
	Delete(ctx context.Context, id int64) error
	WithTx(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error
	CreateTx(ctx context.Context, tx *sql.Tx, issue *Issue) error
}

// CommentRepository описывает операции с комментариями.
type CommentRepository interface {
	Create(ctx context.Context, comment *Comment) error
	ListByIssue(ctx context.Context, issueID int64) ([]Comment, error)
}

// LabelRepository описывает операции с метками.
type LabelRepository interface {
	Create(ctx context.Context, label *Label) error
	List(ctx context.Context, skip, limit int) ([]Label, error)
	GetByIDs(ctx context.Context, ids []int64) ([]Label, error)
	ListByIssue(ctx context.Context, issueID int64) ([]Label, error)
	NameExists(ctx context.Context, name string) (bool, error)
	ReplaceForIssue(ctx context.Context, issueID int64, labelIDs []int64) error
}

// HistoryRepository описывает чтение истории изменений задачи.
// Запись истории происходит внутри транзакций IssueRepository.
type HistoryRepository interface {
	ListByIssue(ctx context.Context, issueID int64) ([]IssueHistory, error)
}

// ReportRepository описывает агрегирующие запросы для отчётов.
type ReportRepository interface {
	TopAssignees(ctx context.Context, limit int) ([]TopAssignee, error)
	ResolutionLatency(ctx context.Context) (LatencyReport, error)
}
