package service

import (
	"context"
	"errors"

	"issue-tracker-service/internal/domain"
)

// LabelService содержит бизнес-логику, связанную с метками.
type LabelService struct {
	labelRepo domain.LabelRepository
	issueRepo domain.IssueRepository
}

// NewLabelService создаёт новый LabelService.
func NewLabelService(labelRepo domain.LabelRepository, issueRepo domain.IssueRepository) *LabelService {
	return &LabelService{
		labelRepo: labelRepo,
		issueRepo: issueRepo,
	}
}

// Create создаёт метку с уникальным именем.
func (s *LabelService) Create(ctx context.Context, name, color string) (domain.Label, error) {
	if name == "" {
		return domain.Label{}, domain.NewDomainError(domain.ErrorCodeValidation, errors.New("label name is required"))
	}

	exists, err := s.labelRepo.NameExists(ctx, name)

	if err != nil {
		return domain.Label{}, err
	}

	if exists {
		return domain.Label{}, domain.NewDomainError(domain.ErrorCodeValidation, domain.ErrLabelExists)
	}

	if color == "" {
		color = "#808080"
	}

	label := domain.Label{
		Name:  name,
		Color: color,
	}

	if err := s.labelRepo.Create(ctx, &label); err != nil {
		return domain.Label{}, err
	}

	return label, nil
}

// List возвращает метки с пагинацией.
func (s *LabelService) List(ctx context.Context, skip, limit int) ([]domain.Label, error) {
	return s.labelRepo.List(ctx, skip, limit)
}

// ReplaceIssueLabels атомарно заменяет все метки задачи на переданный набор.
// Повторяющиеся идентификаторы схлопываются молча (с сохранением порядка) —
// уникальная пара в issue_labels иначе превратила бы идемпотентный запрос
// в ошибку.
func (s *LabelService) ReplaceIssueLabels(ctx context.Context, issueID int64, labelIDs []int64) ([]domain.Label, error) {
	if _, err := s.issueRepo.GetByID(ctx, issueID); err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.NewDomainError(domain.ErrorCodeNotFound, errors.New("issue not found"))
		}

		return nil, err
	}

	unique := make([]int64, 0, len(labelIDs))
	seen := make(map[int64]struct{}, len(labelIDs))

	for _, id := range labelIDs {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		unique = append(unique, id)
	}

	labels, err := s.labelRepo.GetByIDs(ctx, unique)

	if err != nil {
		return nil, err
	}

	if len(labels) != len(unique) {
		return nil, domain.NewDomainError(domain.ErrorCodeNotFound, errors.New("one or more labels not found"))
	}

	if err := s.labelRepo.ReplaceForIssue(ctx, issueID, unique); err != nil {
		return nil, domain.NewDomainError(domain.ErrorCodeValidation, err)
	}

	return labels, nil
}
