package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"issue-tracker-service/internal/domain"
	"issue-tracker-service/internal/service"
)

const maxImportSize = 10 << 20 // 10 MiB

// IssueHandlers содержит HTTP-обработчики, связанные с задачами.
type IssueHandlers struct {
	svc       *service.IssueService
	importSvc *service.ImportService
}

// NewIssueHandlers создаёт набор HTTP-обработчиков для работы с задачами.
func NewIssueHandlers(svc *service.IssueService, importSvc *service.ImportService) *IssueHandlers {
	return &IssueHandlers{
		svc:       svc,
		importSvc: importSvc,
	}
}

// Create обрабатывает запрос на создание задачи.
func (h *IssueHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateIssueRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	issue, err := h.svc.Create(r.Context(), domain.Issue{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.IssueStatus(req.Status),
		Priority:    domain.IssuePriority(req.Priority),
		CreatorID:   req.CreatorID,
		AssigneeID:  req.AssigneeID,
	})

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapIssueToDTO(issue))
}

// List возвращает задачи по фильтру с пагинацией.
func (h *IssueHandlers) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := paginationParams(r, 0, 100)

	if err != nil {
		writeValidationError(w, err)
		return
	}

	filter := domain.IssueFilter{Skip: skip, Limit: limit}

	if v := r.URL.Query().Get("status"); v != "" {
		status := domain.IssueStatus(v)
		filter.Status = &status
	}

	if v := r.URL.Query().Get("assignee_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)

		if err != nil {
			writeValidationError(w, errors.New("invalid assignee_id parameter"))
			return
		}

		filter.AssigneeID = &id
	}

	if v := r.URL.Query().Get("creator_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)

		if err != nil {
			writeValidationError(w, errors.New("invalid creator_id parameter"))
			return
		}

		filter.CreatorID = &id
	}

	issues, err := h.svc.List(r.Context(), filter)

	if err != nil {
		WriteError(w, err)
		return
	}

	res := make([]IssueDTO, 0, len(issues))

	for _, i := range issues {
		res = append(res, mapIssueToDTO(i))
	}

	writeJSON(w, http.StatusOK, res)
}

// Get возвращает задачу вместе с комментариями и метками.
func (h *IssueHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := issueIDParam(r)

	if err != nil {
		writeValidationError(w, err)
		return
	}

	details, err := h.svc.Get(r.Context(), id)

	if err != nil {
		WriteError(w, err)
		return
	}

	comments := make([]CommentDTO, 0, len(details.Comments))

	for _, c := range details.Comments {
		comments = append(comments, mapCommentToDTO(c))
	}

	writeJSON(w, http.StatusOK, IssueDetailsDTO{
		IssueDTO: mapIssueToDTO(details.Issue),
		Comments: comments,
		Labels:   mapLabelsToDTO(details.Labels),
	})
}

// Update обрабатывает частичное обновление задачи с проверкой версии.
func (h *IssueHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, err := issueIDParam(r)

	if err != nil {
		writeValidationError(w, err)
		return
	}

	actor, ok := ActorFrom(r.Context())

	if !ok {
		WriteError(w, domain.NewDomainError(domain.ErrorCodeUnauthorized, domain.ErrInvalidToken))
		return
	}

	var req UpdateIssueRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	if req.Version == nil {
		writeValidationError(w, errors.New("version is required"))
		return
	}

	patch := domain.IssuePatch{
		Title:       req.Title,
		Description: req.Description,
		Assignee: domain.OptionalInt64{
			Set:   req.AssigneeID.Set,
			Value: req.AssigneeID.Value,
		},
		Version: *req.Version,
	}

	if req.Title != nil && *req.Title == "" {
		writeValidationError(w, errors.New("title cannot be empty"))
		return
	}

	if req.Status != nil {
		status := domain.IssueStatus(*req.Status)

		if !domain.ValidIssueStatus(status) {
			writeValidationError(w, fmt.Errorf("invalid status value: %s", *req.Status))
			return
		}

		patch.Status = &status
	}

	if req.Priority != nil {
		priority := domain.IssuePriority(*req.Priority)

		if !domain.ValidIssuePriority(priority) {
			writeValidationError(w, fmt.Errorf("invalid priority value: %s", *req.Priority))
			return
		}

		patch.Priority = &priority
	}

	issue, err := h.svc.Update(r.Context(), id, patch, actor.ID)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapIssueToDTO(issue))
}

// BulkStatusUpdate обрабатывает массовую смену статуса задач.
func (h *IssueHandlers) BulkStatusUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())

	if !ok {
		WriteError(w, domain.NewDomainError(domain.ErrorCodeUnauthorized, domain.ErrInvalidToken))
		return
	}

	var req BulkStatusUpdateRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	count, err := h.svc.BulkUpdateStatus(r.Context(), req.IssueIDs, domain.IssueStatus(req.Status), actor.ID)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BulkStatusUpdateResponse{
		Message: fmt.Sprintf("Successfully updated %d issues", count),
		Updated: count,
	})
}

// Import обрабатывает загрузку CSV-файла с задачами.
func (h *IssueHandlers) Import(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		writeValidationError(w, err)
		return
	}

	file, header, err := r.FormFile("file")

	if err != nil {
		writeValidationError(w, errors.New("file is required"))
		return
	}

	defer func() {
		_ = file.Close()
	}()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeValidationError(w, errors.New("file must be a CSV"))
		return
	}

	result, err := h.importSvc.ImportCSV(r.Context(), file)

	if err != nil {
		WriteError(w, err)
		return
	}

	rows := make([]ImportRowDTO, 0, len(result.Results))

	for _, row := range result.Results {
		rows = append(rows, ImportRowDTO{
			RowNumber: row.RowNumber,
			Success:   row.Success,
			IssueID:   row.IssueID,
			Errors:    row.Errors,
		})
	}

	writeJSON(w, http.StatusOK, ImportResultDTO{
		TotalRows:  result.TotalRows,
		Successful: result.Successful,
		Failed:     result.Failed,
		Results:    rows,
	})
}

// Timeline возвращает историю изменений задачи.
func (h *IssueHandlers) Timeline(w http.ResponseWriter, r *http.Request) {
	id, err := issueIDParam(r)

	if err != nil {
		writeValidationError(w, err)
		return
	}

	history, err := h.svc.Timeline(r.Context(), id)

	if err != nil {
		WriteError(w, err)
		return
	}

	res := make([]TimelineEventDTO, 0, len(history))

	for _, h := range history {
		res = append(res, TimelineEventDTO{
			ID:          h.ID,
			FieldName:   h.FieldName,
			OldValue:    h.OldValue,
			NewValue:    h.NewValue,
			ChangedByID: h.ChangedByID,
			ChangedAt:   h.ChangedAt,
		})
	}

	writeJSON(w, http.StatusOK, res)
}

// Delete удаляет задачу. Операция доступна только создателю.
func (h *IssueHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := issueIDParam(r)

	if err != nil {
		writeValidationError(w, err)
		return
	}

	actor, ok := ActorFrom(r.Context())

	if !ok {
		WriteError(w, domain.NewDomainError(domain.ErrorCodeUnauthorized, domain.ErrInvalidToken))
		return
	}

	if err := h.svc.Delete(r.Context(), id, actor.ID); err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Success: true,
		Message: "Issue deleted successfully",
	})
}

func issueIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "issueID"), 10, 64)

	if err != nil {
		return 0, errors.New("invalid issue id")
	}

	return id, nil
}
