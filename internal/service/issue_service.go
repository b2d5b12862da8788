package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"issue-tracker-service/internal/domain"
)

// IssueService содержит бизнес-логику работы с задачами: создание,
// обновление с оптимистичной блокировкой, массовую смену статуса и удаление.
type IssueService struct {
	issueRepo   domain.IssueRepository
	userRepo    domain.UserRepository
	commentRepo domain.CommentRepository
	labelRepo   domain.LabelRepository
	historyRepo domain.HistoryRepository
}

// NewIssueService создаёт новый IssueService.
func NewIssueService(
	issueRepo domain.IssueRepository,
	userRepo domain.UserRepository,
	commentRepo domain.CommentRepository,
	labelRepo domain.LabelRepository,
	historyRepo domain.HistoryRepository,
) *IssueService {
	return &IssueService{
		issueRepo:   issueRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		labelRepo:   labelRepo,
		historyRepo: historyRepo,
	}
}

// Create создаёт задачу с version=1 и записью истории "created",
// приписанной создателю.
func (s *IssueService) Create(ctx context.Context, issue domain.Issue) (domain.Issue, error) {
	if issue.Title == "" {
		return domain.Issue{}, domain.NewDomainError(domain.ErrorCodeValidation, errors.New("title is required"))
	}

	if issue.Status == "" {
		issue.Status = domain.IssueStatusOpen
	}

	if issue.Priority == "" {
		issue.Priority = domain.IssuePriorityMedium
	}

	if !domain.ValidIssueStatus(issue.Status) {
		return domain.Issue{}, domain.NewDomainError(domain.ErrorCodeValidation, errors.New("invalid status value"))
	}

	if !domain.ValidIssuePriority(issue.Priority) {
		return domain.Issue{}, domain.NewDomainError(domain.ErrorCodeValidation, errors.New("invalid priority value"))
	}

	exists, err := s.userRepo.Exists(ctx, issue.CreatorID)

	if err != nil {
		return domain.Issue{}, err
	}

	if !exists {
		return domain.Issue{}, domain.NewDomainError(domain.ErrorCodeNotFound, errors.New("creator not found"))
	}

	if issue.AssigneeID != nil {
		exists, err := s.userRepo.Exists(ctx, *issue.AssigneeID)

		if err != nil {
			return domain.Issue{}, err
		}

		if !exists {
			return domain.Issue{}, domain.NewDomainError(domain.ErrorCodeNotFound, errors.New("assignee not found"))
		}
	}

	if err := s.issueRepo.Create(ctx, &issue); err != nil {
		return domain.Issue{}, err
	}

	return issue, nil
}

// Update применяет частичное обновление задачи с проверкой версии.
// Для каждого фактически изменившегося поля готовится запись истории;
// версия увеличивается ровно на 1 независимо от числа изменённых полей.
func (s *IssueService) Update(
	ctx context.Context,
	issueID int64,
	patch domain.IssuePatch,
	actorID int64,
) (domain.Issue, error) {
	issue, err := s.issueRepo.GetByID(ctx, issueID)

	if err != nil {
		if err == domain.ErrNotFound {
			return domain.Issue{}, domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return domain.Issue{}, err
	}

	if patch.Version != issue.Version {
		return domain.Issue{}, domain.NewDomainError(domain.ErrorCodeConflict, &domain.VersionConflictError{
			Expected: issue.Version,
			Actual:   patch.Version,
		})
	}

	var changes []domain.FieldChange

	stage := func(field string, oldValue, newValue *string) {
		changes = append(changes, domain.FieldChange{
			FieldName: field,
			OldValue:  oldValue,
			NewValue:  newValue,
		})
	}

	if patch.Title != nil && *patch.Title != issue.Title {
		stage("title", strPtr(issue.Title), patch.Title)
		issue.Title = *patch.Title
	}

	if patch.Description != nil && *patch.Description != issue.Description {
		stage("description", strPtr(issue.Description), patch.Description)
		issue.Description = *patch.Description
	}

	if patch.Status != nil && *patch.Status != issue.Status {
		stage("status", strPtr(string(issue.Status)), strPtr(string(*patch.Status)))
		issue.Status = *patch.Status
	}

	if patch.Priority != nil && *patch.Priority != issue.Priority {
		stage("priority", strPtr(string(issue.Priority)), strPtr(string(*patch.Priority)))
		issue.Priority = *patch.Priority
	}

	if patch.Assignee.Set && !int64PtrEqual(patch.Assignee.Value, issue.AssigneeID) {
		stage("assignee_id", int64PtrString(issue.AssigneeID), int64PtrString(patch.Assignee.Value))
		issue.AssigneeID = patch.Assignee.Value
	}

	now := time.Now().UTC()

	// resolved_at выставляется один раз, при первом переходе в resolved;
	// повторное решение задачу не трогает.
	if patch.Status != nil && *patch.Status == domain.IssueStatusResolved && issue.ResolvedAt == nil {
		issue.ResolvedAt = &now
	}

	expectedVersion := issue.Version
	issue.Version++
	issue.UpdatedAt = now

	if err := s.issueRepo.Update(ctx, issue, expectedVersion, changes, actorID); err != nil {
		if err == domain.ErrVersionConflict {
			return domain.Issue{}, domain.NewDomainError(domain.ErrorCodeConflict, &domain.VersionConflictError{
				Expected: expectedVersion,
				Actual:   patch.Version,
			})
		}

		return domain.Issue{}, err
	}

	return issue, nil
}

// BulkUpdateStatus переводит перечисленные задачи в новый статус.
// Если хотя бы одна задача не найдена, операция не применяется ни к одной.
func (s *IssueService) BulkUpdateStatus(
	ctx context.Context,
	issueIDs []int64,
	status domain.IssueStatus,
	actorID int64,
) (int, error) {
	if !domain.ValidIssueStatus(status) {
		return 0, domain.NewDomainError(domain.ErrorCodeValidation, errors.New("invalid status value"))
	}

	issues, err := s.issueRepo.GetByIDs(ctx, issueIDs)

	if err != nil {
		return 0, err
	}

	if len(issues) != len(issueIDs) {
		return 0, domain.NewDomainError(domain.ErrorCodeNotFound, errors.New("one or more issues not found"))
	}

	count, err := s.issueRepo.BulkUpdateStatus(ctx, issues, status, actorID)

	if err != nil {
		return 0, err
	}

	return count, nil
}

// Delete удаляет задачу вместе с зависимыми записями.
// Удалять задачу может только её создатель.
func (s *IssueService) Delete(ctx context.Context, issueID, actorID int64) error {
	issue, err := s.issueRepo.GetByID(ctx, issueID)

	if err != nil {
		if err == domain.ErrNotFound {
			return domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return err
	}

	if issue.CreatorID != actorID {
		return domain.NewDomainError(domain.ErrorCodeForbidden, errors.New("only the creator may delete an issue"))
	}

	if err := s.issueRepo.Delete(ctx, issueID); err != nil {
		if err == domain.ErrNotFound {
			return domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return err
	}

	return nil
}

// Get возвращает задачу вместе с комментариями и метками.
func (s *IssueService) Get(ctx context.Context, issueID int64) (domain.IssueDetails, error) {
	issue, err := s.issueRepo.GetByID(ctx, issueID)

	if err != nil {
		if err == domain.ErrNotFound {
			return domain.IssueDetails{}, domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return domain.IssueDetails{}, err
	}

	comments, err := s.commentRepo.ListByIssue(ctx, issueID)

	if err != nil {
		return domain.IssueDetails{}, err
	}

	labels, err := s.labelRepo.ListByIssue(ctx, issueID)

	if err != nil {
		return domain.IssueDetails{}, err
	}

	return domain.IssueDetails{
		Issue:    issue,
		Comments: comments,
		Labels:   labels,
	}, nil
}

// List возвращает задачи по фильтру.
func (s *IssueService) List(ctx context.Context, filter domain.IssueFilter) ([]domain.Issue, error) {
	if filter.Status != nil && !domain.ValidIssueStatus(*filter.Status) {
		return nil, domain.NewDomainError(domain.ErrorCodeValidation, errors.New("invalid status value"))
	}

	return s.issueRepo.List(ctx, filter)
}

// Timeline возвращает историю изменений задачи, новые записи первыми.
func (s *IssueService) Timeline(ctx context.Context, issueID int64) ([]domain.IssueHistory, error) {
	if _, err := s.issueRepo.GetByID(ctx, issueID); err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return nil, err
	}

	return s.historyRepo.ListByIssue(ctx, issueID)
}

func strPtr(s string) *string {
	return &s
}

func int64PtrString(v *int64) *string {
	if v == nil {
		return nil
	}

	s := strconv.FormatInt(*v, 10)
	return &s
}

func int64PtrEqual(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
