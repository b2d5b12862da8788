package httpapi

import (
	"encoding/json"
	"time"

	"issue-tracker-service/internal/domain"
)

// OptionalInt64 — JSON-поле, для которого важно отличать «ключ отсутствует»
// от «ключ передан со значением null». UnmarshalJSON вызывается только при
// наличии ключа, поэтому Set выставляется ровно в этом случае.
type OptionalInt64 struct {
	Set   bool
	Value *int64
}

// UnmarshalJSON реализует json.Unmarshaler.
func (o *OptionalInt64) UnmarshalJSON(data []byte) error {
	o.Set = true

	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var v int64

	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	o.Value = &v
	return nil
}

// RegisterRequest — запрос на регистрацию пользователя.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// LoginRequest — запрос на вход.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest — запрос кода восстановления пароля.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest — запрос на смену пароля по коду восстановления.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	ResetCode   string `json:"reset_code"`
	NewPassword string `json:"new_password"`
}

// UserDTO — модель пользователя в HTTP-слое.
type UserDTO struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse — ответ API с токеном доступа и пользователем.
type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	TokenType   string  `json:"token_type"`
	User        UserDTO `json:"user"`
}

// ForgotPasswordResponse — ответ API с кодом восстановления.
type ForgotPasswordResponse struct {
	ResetCode string `json:"reset_code"`
	Message   string `json:"message"`
}

// MessageResponse — общий ответ API с признаком успеха и сообщением.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CreateUserRequest — запрос на создание пользователя.
type CreateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

// CreateIssueRequest — запрос на создание задачи.
type CreateIssueRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	CreatorID   int64  `json:"creator_id"`
	AssigneeID  *int64 `json:"assignee_id"`
}

// UpdateIssueRequest — частичное обновление задачи. Учитываются только
// переданные поля; version обязательна для оптимистичной блокировки.
type UpdateIssueRequest struct {
	Title       *string       `json:"title"`
	Description *string       `json:"description"`
	Status      *string       `json:"status"`
	Priority    *string       `json:"priority"`
	AssigneeID  OptionalInt64 `json:"assignee_id"`
	Version     *int64        `json:"version"`
}

// IssueDTO — модель задачи в HTTP-слое.
type IssueDTO struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Version     int64      `json:"version"`
	CreatorID   int64      `json:"creator_id"`
	AssigneeID  *int64     `json:"assignee_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	ResolvedAt  *time.Time `json:"resolved_at"`
}

// IssueDetailsDTO — задача вместе с комментариями и метками.
type IssueDetailsDTO struct {
	IssueDTO
	Comments []CommentDTO `json:"comments"`
	Labels   []LabelDTO   `json:"labels"`
}

// BulkStatusUpdateRequest — запрос на массовую смену статуса.
type BulkStatusUpdateRequest struct {
	IssueIDs []int64 `json:"issue_ids"`
	Status   string  `json:"status"`
}

// BulkStatusUpdateResponse — ответ API после массовой смены статуса.
type BulkStatusUpdateResponse struct {
	Message string `json:"message"`
	Updated int    `json:"updated"`
}

// ImportRowDTO — результат обработки одной строки CSV-импорта.
type ImportRowDTO struct {
	RowNumber int      `json:"row_number"`
	Success   bool     `json:"success"`
	IssueID   *int64   `json:"issue_id,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// ImportResultDTO — агрегированный результат CSV-импорта.
type ImportResultDTO struct {
	TotalRows  int            `json:"total_rows"`
	Successful int            `json:"successful"`
	Failed     int            `json:"failed"`
	Results    []ImportRowDTO `json:"results"`
}

// TimelineEventDTO — запись истории изменений задачи.
type TimelineEventDTO struct {
	ID          int64     `json:"id"`
	FieldName   string    `json:"field_name"`
	OldValue    *string   `json:"old_value"`
	NewValue    *string   `json:"new_value"`
	ChangedByID int64     `json:"changed_by_id"`
	ChangedAt   time.Time `json:"changed_at"`
}

// CreateCommentRequest — запрос на добавление комментария.
type CreateCommentRequest struct {
	Body     string `json:"body"`
	AuthorID int64  `json:"author_id"`
}

// CommentDTO — модель комментария в HTTP-слое.
type CommentDTO struct {
	ID        int64     `json:"id"`
	Body      string    `json:"body"`
	AuthorID  int64     `json:"author_id"`
	IssueID   int64     `json:"issue_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateLabelRequest — запрос на создание метки.
type CreateLabelRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// LabelDTO — модель метки в HTTP-слое.
type LabelDTO struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// TopAssigneeDTO — статистика по числу задач на исполнителя.
type TopAssigneeDTO struct {
	AssigneeID   int64  `json:"assignee_id"`
	AssigneeName string `json:"assignee_name"`
	IssueCount   int64  `json:"issue_count"`
}

// LatencyReportDTO — среднее время решения задач.
type LatencyReportDTO struct {
	AverageResolutionTimeHours float64 `json:"average_resolution_time_hours"`
	TotalResolvedIssues        int64   `json:"total_resolved_issues"`
}

func mapUserToDTO(u domain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		FullName:  u.FullName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

func mapIssueToDTO(i domain.Issue) IssueDTO {
	return IssueDTO{
		ID:          i.ID,
		Title:       i.Title,
		Description: i.Description,
		Status:      string(i.Status),
		Priority:    string(i.Priority),
		Version:     i.Version,
		CreatorID:   i.CreatorID,
		AssigneeID:  i.AssigneeID,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
		ResolvedAt:  i.ResolvedAt,
	}
}

func mapCommentToDTO(c domain.Comment) CommentDTO {
	return CommentDTO{
		ID:        c.ID,
		Body:      c.Body,
		AuthorID:  c.AuthorID,
		IssueID:   c.IssueID,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func mapLabelToDTO(l domain.Label) LabelDTO {
	return LabelDTO{
		ID:        l.ID,
		Name:      l.Name,
		Color:     l.Color,
		CreatedAt: l.CreatedAt,
	}
}

func mapLabelsToDTO(labels []domain.Label) []LabelDTO {
	res := make([]LabelDTO, 0, len(labels))

	for _, l := range labels {
		res = append(res, mapLabelToDTO(l))
	}

	return res
}
