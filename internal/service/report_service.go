package service

import (
	"context"

	"issue-tracker-service/internal/domain"
)

// ReportService содержит бизнес-логику, связанную с отчётами.
type ReportService struct {
	reportRepo domain.ReportRepository
}

// NewReportService создаёт новый ReportService.
func NewReportService(reportRepo domain.ReportRepository) *ReportService {
	return &ReportService{reportRepo: reportRepo}
}

// TopAssignees возвращает исполнителей по убыванию числа назначенных задач.
func (s *ReportService) TopAssignees(ctx context.Context, limit int) ([]domain.TopAssignee, error) {
	return s.reportRepo.TopAssignees(ctx, limit)
}

// ResolutionLatency возвращает среднее время решения задач.
func (s *ReportService) ResolutionLatency(ctx context.Context) (domain.LatencyReport, error) {
	return s.reportRepo.ResolutionLatency(ctx)
}
