package domain

import "time"

// User описывает пользователя и его учётные данные.
type User struct {
	ID               int64
	Username         string
	Email            string
	FullName         string
	HashedPassword   string
	IsActive         bool
	ResetCode        *string
	ResetCodeExpires *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// IssueStatus — статус задачи.
type IssueStatus string

// Статусы задачи.
const (
	IssueStatusOpen       IssueStatus = "open"
	IssueStatusInProgress IssueStatus = "in_progress"
	IssueStatusResolved   IssueStatus = "resolved"
	IssueStatusClosed     IssueStatus = "closed"
)

// ValidIssueStatus проверяет, что значение является допустимым статусом.
func ValidIssueStatus(s IssueStatus) bool {
	switch s {
	case IssueStatusOpen, IssueStatusInProgress, IssueStatusResolved, IssueStatusClosed:
		return true
	}

	return false
}

// IssuePriority — приоритет задачи.
type IssuePriority string

// Приоритеты задачи.
const (
	IssuePriorityLow      IssuePriority = "low"
	IssuePriorityMedium   IssuePriority = "medium"
	IssuePriorityHigh     IssuePriority = "high"
	IssuePriorityCritical IssuePriority = "critical"
)

// ValidIssuePriority проверяет, что значение является допустимым приоритетом.
func ValidIssuePriority(p IssuePriority) bool {
	switch p {
	case IssuePriorityLow, IssuePriorityMedium, IssuePriorityHigh, IssuePriorityCritical:
		return true
	}

	return false
}

// Issue описывает задачу. Поле Version увеличивается ровно на 1 при каждом
// успешном изменении и используется для оптимистичной блокировки.
type Issue struct {
	ID          int64
	Title       string
	Description string
	Status      IssueStatus
	Priority    IssuePriority
	Version     int64
	CreatorID   int64
	AssigneeID  *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	ResolvedAt  *time.Time
}

// Comment — комментарий к задаче.
type Comment struct {
	ID        int64
	Body      string
	AuthorID  int64
	IssueID   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Label — метка задач.
type Label struct {
	ID        int64
	Name      string
	Color     string
	CreatedAt time.Time
}

// IssueHistory — одна запись аудита: изменение одного поля задачи.
// Значения хранятся строками; null сохраняется как null, не как текст.
type IssueHistory struct {
	ID          int64
	IssueID     int64
	ChangedByID int64
	FieldName   string
	OldValue    *string
	NewValue    *string
	ChangedAt   time.Time
}

// FieldChange — подготовленное изменение одного поля для записи в историю.
type FieldChange struct {
	FieldName string
	OldValue  *string
	NewValue  *string
}

// IssueDetails — задача вместе с комментариями и метками.
type IssueDetails struct {
	Issue    Issue
	Comments []Comment
	Labels   []Label
}

// IssueFilter — параметры фильтрации и пагинации списка задач.
type IssueFilter struct {
	Status     *IssueStatus
	AssigneeID *int64
	CreatorID  *int64
	Skip       int
	Limit      int
}

// ImportRowResult — результат обработки одной строки CSV-импорта.
// Нумерация строк совпадает с исходным файлом: заголовок — строка 1.
type ImportRowResult struct {
	RowNumber int
	Success   bool
	IssueID   *int64
	Errors    []string
}

// ImportResult — агрегированный результат CSV-импорта.
type ImportResult struct {
	TotalRows  int
	Successful int
	Failed     int
	Results    []ImportRowResult
}

// TopAssignee — статистика по числу задач на исполнителя.
type TopAssignee struct {
	AssigneeID   int64
	AssigneeName string
	IssueCount   int64
}

// LatencyReport — среднее время решения задач в часах.
type LatencyReport struct {
	AverageResolutionTimeHours float64
	TotalResolvedIssues        int64
}
