package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"issue-tracker-service/internal/service"
)

// ReportHandlers содержит HTTP-обработчики, связанные с отчётами.
type ReportHandlers struct {
	svc *service.ReportService
}

// NewReportHandlers создаёт набор HTTP-обработчиков для отчётов.
func NewReportHandlers(svc *service.ReportService) *ReportHandlers {
	return &ReportHandlers{svc: svc}
}

// TopAssignees возвращает исполнителей по убыванию числа назначенных задач.
func (h *ReportHandlers) TopAssignees(w http.ResponseWriter, r *http.Request) {
	limit := 10

	if v := r.URL.Query().Get("limit"); v != "" {
		var err error
		limit, err = strconv.Atoi(v)

		if err != nil || limit < 1 {
			writeValidationError(w, errors.New("invalid limit parameter"))
			return
		}
	}

	stats, err := h.svc.TopAssignees(r.Context(), limit)

	if err != nil {
		WriteError(w, err)
		return
	}

	res := make([]TopAssigneeDTO, 0, len(stats))

	for _, s := range stats {
		res = append(res, TopAssigneeDTO{
			AssigneeID:   s.AssigneeID,
			AssigneeName: s.AssigneeName,
			IssueCount:   s.IssueCount,
		})
	}

	writeJSON(w, http.StatusOK, res)
}

// ResolutionLatency возвращает среднее время решения задач.
func (h *ReportHandlers) ResolutionLatency(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.ResolutionLatency(r.Context())

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LatencyReportDTO{
		AverageResolutionTimeHours: report.AverageResolutionTimeHours,
		TotalResolvedIssues:        report.TotalResolvedIssues,
	})
}
