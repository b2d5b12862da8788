package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"issue-tracker-service/internal/service"
)

// LabelHandlers содержит HTTP-обработчики, связанные с метками.
type LabelHandlers struct {
	svc *service.LabelService
}

// NewLabelHandlers создаёт набор HTTP-обработчиков для работы с метками.
func NewLabelHandlers(svc *service.LabelService) *LabelHandlers {
	return &LabelHandlers{svc: svc}
}

// Create обрабатывает запрос на создание метки.
func (h *LabelHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLabelRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	label, err := h.svc.Create(r.Context(), req.Name, req.Color)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapLabelToDTO(label))
}

// List возвращает метки с пагинацией.
func (h *LabelHandlers) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := paginationParams(r, 0, 100)

	if err != nil {
		writeValidationError(w, err)
		return
	}

	labels, err := h.svc.List(r.Context(), skip, limit)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapLabelsToDTO(labels))
}

// ReplaceIssueLabels заменяет все метки задачи на переданный набор.
// Идентификаторы меток передаются повторяющимся query-параметром label_ids.
func (h *LabelHandlers) ReplaceIssueLabels(w http.ResponseWriter, r *http.Request) {
	issueID, err := issueIDParam(r)

	if err != nil {
		writeValidationError(w, err)
		return
	}

	raw := r.URL.Query()["label_ids"]
	labelIDs := make([]int64, 0, len(raw))

	for _, v := range raw {
		id, err := strconv.ParseInt(v, 10, 64)

		if err != nil {
			writeValidationError(w, errors.New("invalid label_ids parameter"))
			return
		}

		labelIDs = append(labelIDs, id)
	}

	labels, err := h.svc.ReplaceIssueLabels(r.Context(), issueID, labelIDs)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapLabelsToDTO(labels))
}
