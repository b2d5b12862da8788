package httpapi

import (
	"encoding/json"
	"net/http"

	"issue-tracker-service/internal/service"
)

// CommentHandlers содержит HTTP-обработчики, связанные с комментариями.
type CommentHandlers struct {
	svc *service.CommentService
}

// NewCommentHandlers создаёт набор HTTP-обработчиков для работы с комментариями.
func NewCommentHandlers(svc *service.CommentService) *CommentHandlers {
	return &CommentHandlers{svc: svc}
}

// Create добавляет комментарий к задаче.
func (h *CommentHandlers) Create(w http.ResponseWriter, r *http.Request) {
	issueID, err := issueIDParam(r)

	if err != nil {
		writeValidationError(w, err)
		return
	}

	var req CreateCommentRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	comment, err := h.svc.Create(r.Context(), issueID, req.AuthorID, req.Body)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapCommentToDTO(comment))
}
