package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issue-tracker-service/internal/domain"
)

func newIssueServiceForTest() (*IssueService, *fakeIssueRepo, *fakeUserRepo) {
	issueRepo := newFakeIssueRepo()
	userRepo := newFakeUserRepo()
	labelRepo := newFakeLabelRepo()
	commentRepo := &fakeCommentRepo{}
	historyRepo := &fakeHistoryRepo{issues: issueRepo}

	svc := NewIssueService(issueRepo, userRepo, commentRepo, labelRepo, historyRepo)
	return svc, issueRepo, userRepo
}

func TestIssueService_Create_Defaults(t *testing.T) {
	svc, issueRepo, userRepo := newIssueServiceForTest()
	creator := userRepo.addUser(domain.User{Username: "alice", Email: "alice@example.com", IsActive: true})

	issue, err := svc.Create(context.Background(), domain.Issue{
		Title:     "Fix login",
		CreatorID: creator.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.IssueStatusOpen, issue.Status)
	assert.Equal(t, domain.IssuePriorityMedium, issue.Priority)
	assert.Equal(t, int64(1), issue.Version)

	// При создании пишется одна запись истории от имени создателя
	require.Len(t, issueRepo.history, 1)
	assert.Equal(t, "created", issueRepo.history[0].FieldName)
	assert.Equal(t, creator.ID, issueRepo.history[0].ChangedByID)
}

func TestIssueService_Create_CreatorNotFound(t *testing.T) {
	svc, _, _ := newIssueServiceForTest()

	_, err := svc.Create(context.Background(), domain.Issue{
		Title:     "Fix login",
		CreatorID: 42,
	})

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrorCodeNotFound, derr.Code)
}

func TestIssueService_Create_InvalidEnums(t *testing.T) {
	svc, _, userRepo := newIssueServiceForTest()
	creator := userRepo.addUser(domain.User{Username: "alice", IsActive: true})

	tests := []struct {
		name  string
		issue domain.Issue
	}{
		{"empty title", domain.Issue{CreatorID: creator.ID}},
		{"bad status", domain.Issue{Title: "t", Status: "bogus", CreatorID: creator.ID}},
		{"bad priority", domain.Issue{Title: "t", Priority: "urgent", CreatorID: creator.ID}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.issue)

			var derr *domain.DomainError
			require.ErrorAs(t, err, &derr)
			assert.Equal(t, domain.ErrorCodeValidation, derr.Code)
		})
	}
}

func TestIssueService_Update_BumpsVersionAndRecordsHistory(t *testing.T) {
	svc, issueRepo, userRepo := newIssueServiceForTest()
	actor := userRepo.addUser(domain.User{Username: "alice", IsActive: true})

	issue := issueRepo.addIssue(domain.Issue{
		Title:     "Old title",
		Status:    domain.IssueStatusOpen,
		Priority:  domain.IssuePriorityMedium,
		CreatorID: actor.ID,
	})

	newTitle := "New title"

	updated, err := svc.Update(context.Background(), issue.ID, domain.IssuePatch{
		Title:   &newTitle,
		Version: 1,
	}, actor.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)
	assert.Equal(t, "New title", updated.Title)

	require.Len(t, issueRepo.history, 1)
	h := issueRepo.history[0]
	assert.Equal(t, "title", h.FieldName)
	require.NotNil(t, h.OldValue)
	assert.Equal(t, "Old title", *h.OldValue)
	require.NotNil(t, h.NewValue)
	assert.Equal(t, "New title", *h.NewValue)
	assert.Equal(t, actor.ID, h.ChangedByID)
}

func TestIssueService_Update_NoDiffStillBumpsVersion(t *testing.T) {
	svc, issueRepo, userRepo := newIssueServiceForTest()
	actor := userRepo.addUser(domain.User{Username: "alice", IsActive: true})

	issue := issueRepo.addIssue(domain.Issue{
		Title:     "Same title",
		Status:    domain.IssueStatusOpen,
		Priority:  domain.IssuePriorityMedium,
		CreatorID: actor.ID,
	})

	sameTitle := "Same title"

	updated, err := svc.Update(context.Background(), issue.ID, domain.IssuePatch{
		Title:   &sameTitle,
		Version: 1,
	}, actor.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	// Изменений не было — история пуста
	assert.Empty(t, issueRepo.history)
}

func TestIssueService_Update_StaleVersionRejected(t *testing.T) {
	svc, issueRepo, userRepo := newIssueServiceForTest()
	actor := userRepo.addUser(domain.User{Username: "alice", IsActive: true})

	issue := issueRepo.addIssue(domain.Issue{
		Title:     "Original",
		Status:    domain.IssueStatusOpen,
		Priority:  domain.IssuePriorityMedium,
		CreatorID: actor.ID,
	})

	first := "First update"

	_, err := svc.Update(context.Background(), issue.ID, domain.IssuePatch{
		Title:   &first,
		Version: 1,
	}, actor.ID)

	require.NoError(t, err)

	// Повторная попытка со старой версией
	second := "Second update"

	_, err = svc.Update(context.Background(), issue.ID, domain.IssuePatch{
		Title:   &second,
		Version: 1,
	}, actor.ID)

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrorCodeConflict, derr.Code)

	var vc *domain.VersionConflictError
	require.ErrorAs(t, err, &vc)
	assert.Equal(t, int64(2), vc.Expected)
	assert.Equal(t, int64(1), vc.Actual)

	// Состояние задачи не изменилось
	cur := issueRepo.issues[issue.ID]
	assert.Equal(t, "First update", cur.Title)
	assert.Equal(t, int64(2), cur.Version)
}

func TestIssueService_Update_ResolvedAtSetOnce(t *testing.T) {
	svc, issueRepo, userRepo := newIssueServiceForTest()
	actor := userRepo.addUser(domain.User{Username: "alice", IsActive: true})

	issue := issueRepo.addIssue(domain.Issue{
		Title:     "Bug",
		Status:    domain.IssueStatusOpen,
		Priority:  domain.IssuePriorityMedium,
		CreatorID: actor.ID,
	})

	resolved := domain.IssueStatusResolved
	open := domain.IssueStatusOpen

	updated, err := svc.Update(context.Background(), issue.ID, domain.IssuePatch{
		Status:  &resolved,
		Version: 1,
	}, actor.ID)

	require.NoError(t, err)
	require.NotNil(t, updated.ResolvedAt)
	firstResolvedAt := *updated.ResolvedAt

	// Переоткрываем и снова решаем: resolved_at остаётся прежним
	_, err = svc.Update(context.Background(), issue.ID, domain.IssuePatch{
		Status:  &open,
		Version: 2,
	}, actor.ID)

	require.NoError(t, err)

	updated, err = svc.Update(context.Background(), issue.ID, domain.IssuePatch{
		Status:  &resolved,
		Version: 3,
	}, actor.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(4), updated.Version)
	require.NotNil(t, updated.ResolvedAt)
	assert.True(t, updated.ResolvedAt.Equal(firstResolvedAt))
}

func TestIssueService_Update_ClearAssignee(t *testing.T) {
	svc, issueRepo, userRepo := newIssueServiceForTest()
	actor := userRepo.addUser(domain.User{Username: "alice", IsActive: true})
	assignee := userRepo.addUser(domain.User{Username: "bob", IsActive: true})

	issue := issueRepo.addIssue(domain.Issue{
		Title:      "Bug",
		Status:     domain.IssueStatusOpen,
		Priority:   domain.IssuePriorityMedium,
		CreatorID:  actor.ID,
		AssigneeID: &assignee.ID,
	})

	updated, err := svc.Update(context.Background(), issue.ID, domain.IssuePatch{
		Assignee: domain.OptionalInt64{Set: true, Value: nil},
		Version:  1,
	}, actor.ID)

	require.NoError(t, err)
	assert.Nil(t, updated.AssigneeID)

	require.Len(t, issueRepo.history, 1)
	h := issueRepo.history[0]
	assert.Equal(t, "assignee_id", h.FieldName)
	require.NotNil(t, h.OldValue)
	assert.Equal(t, "2", *h.OldValue)
	assert.Nil(t, h.NewValue)
}

func TestIssueService_BulkUpdateStatus(t *testing.T) {
	svc, issueRepo, userRepo := newIssueServiceForTest()
	actor := userRepo.addUser(domain.User{Username: "alice", IsActive: true})

	a := issueRepo.addIssue(domain.Issue{Title: "a", Status: domain.IssueStatusOpen, Priority: domain.IssuePriorityMedium, CreatorID: actor.ID})
	b := issueRepo.addIssue(domain.Issue{Title: "b", Status: domain.IssueStatusInProgress, Priority: domain.IssuePriorityMedium, CreatorID: actor.ID})

	count, err := svc.BulkUpdateStatus(context.Background(), []int64{a.ID, b.ID}, domain.IssueStatusClosed, actor.ID)

	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, domain.IssueStatusClosed, issueRepo.issues[a.ID].Status)
	assert.Equal(t, domain.IssueStatusClosed, issueRepo.issues[b.ID].Status)
	assert.Equal(t, int64(2), issueRepo.issues[a.ID].Version)
	assert.Equal(t, int64(2), issueRepo.issues[b.ID].Version)
}

func TestIssueService_BulkUpdateStatus_MissingIssueAbortsAll(t *testing.T) {
	svc, issueRepo, userRepo := newIssueServiceForTest()
	actor := userRepo.addUser(domain.User{Username: "alice", IsActive: true})

	a := issueRepo.addIssue(domain.Issue{Title: "a", Status: domain.IssueStatusOpen, Priority: domain.IssuePriorityMedium, CreatorID: actor.ID})

	_, err := svc.BulkUpdateStatus(context.Background(), []int64{a.ID, 999}, domain.IssueStatusClosed, actor.ID)

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrorCodeNotFound, derr.Code)

	// Существующая задача не тронута
	assert.Equal(t, domain.IssueStatusOpen, issueRepo.issues[a.ID].Status)
	assert.Equal(t, int64(1), issueRepo.issues[a.ID].Version)
}

func TestIssueService_BulkUpdateStatus_InvalidStatus(t *testing.T) {
	svc, _, userRepo := newIssueServiceForTest()
	actor := userRepo.addUser(domain.User{Username: "alice", IsActive: true})

	_, err := svc.BulkUpdateStatus(context.Background(), []int64{1}, "bogus", actor.ID)

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrorCodeValidation, derr.Code)
}

func TestIssueService_Delete_OnlyCreator(t *testing.T) {
	svc, issueRepo, userRepo := newIssueServiceForTest()
	creator := userRepo.addUser(domain.User{Username: "alice", IsActive: true})
	other := userRepo.addUser(domain.User{Username: "bob", IsActive: true})

	issue := issueRepo.addIssue(domain.Issue{Title: "Bug", Status: domain.IssueStatusOpen, Priority: domain.IssuePriorityMedium, CreatorID: creator.ID})

	err := svc.Delete(context.Background(), issue.ID, other.ID)

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrorCodeForbidden, derr.Code)

	require.NoError(t, svc.Delete(context.Background(), issue.ID, creator.ID))

	_, err = svc.Get(context.Background(), issue.ID)
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrorCodeNotFound, derr.Code)
}

func TestIssueService_Timeline_NewestFirst(t *testing.T) {
	svc, _, userRepo := newIssueServiceForTest()
	actor := userRepo.addUser(domain.User{Username: "alice", IsActive: true})

	issue, err := svc.Create(context.Background(), domain.Issue{Title: "Bug", CreatorID: actor.ID})
	require.NoError(t, err)

	inProgress := domain.IssueStatusInProgress

	_, err = svc.Update(context.Background(), issue.ID, domain.IssuePatch{
		Status:  &inProgress,
		Version: 1,
	}, actor.ID)

	require.NoError(t, err)

	timeline, err := svc.Timeline(context.Background(), issue.ID)

	require.NoError(t, err)
	require.Len(t, timeline, 2)
	assert.Equal(t, "status", timeline[0].FieldName)
	assert.Equal(t, "created", timeline[1].FieldName)
}

func TestIssueService_Timeline_IssueNotFound(t *testing.T) {
	svc, _, _ := newIssueServiceForTest()

	_, err := svc.Timeline(context.Background(), 123)

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrorCodeNotFound, derr.Code)
}
