package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issue-tracker-service/internal/domain"
)

func newCommentServiceForTest() (*CommentService, *fakeIssueRepo, *fakeUserRepo) {
	commentRepo := &fakeCommentRepo{}
	issueRepo := newFakeIssueRepo()
	userRepo := newFakeUserRepo()

	return NewCommentService(commentRepo, issueRepo, userRepo), issueRepo, userRepo
}

func TestCommentService_Create(t *testing.T) {
	svc, issueRepo, userRepo := newCommentServiceForTest()
	author := userRepo.addUser(domain.User{Username: "alice", IsActive: true})
	issue := issueRepo.addIssue(domain.Issue{Title: "Bug", CreatorID: author.ID})

	comment, err := svc.Create(context.Background(), issue.ID, author.ID, "  looks like a race condition  ")

	require.NoError(t, err)
	assert.Equal(t, issue.ID, comment.IssueID)
	assert.Equal(t, author.ID, comment.AuthorID)

	// Тело хранится как прислали, без обрезки пробелов
	assert.Equal(t, "  looks like a race condition  ", comment.Body)
}

func TestCommentService_Create_EmptyBody(t *testing.T) {
	svc, issueRepo, userRepo := newCommentServiceForTest()
	author := userRepo.addUser(domain.User{Username: "alice", IsActive: true})
	issue := issueRepo.addIssue(domain.Issue{Title: "Bug", CreatorID: author.ID})

	_, err := svc.Create(context.Background(), issue.ID, author.ID, "   ")

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrorCodeValidation, derr.Code)
	assert.ErrorIs(t, err, domain.ErrEmptyCommentBody)
}

func TestCommentService_Create_IssueNotFound(t *testing.T) {
	svc, _, userRepo := newCommentServiceForTest()
	author := userRepo.addUser(domain.User{Username: "alice", IsActive: true})

	_, err := svc.Create(context.Background(), 123, author.ID, "body")

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrorCodeNotFound, derr.Code)
}

func TestCommentService_Create_AuthorNotFound(t *testing.T) {
	svc, issueRepo, _ := newCommentServiceForTest()
	issue := issueRepo.addIssue(domain.Issue{Title: "Bug", CreatorID: 1})

	_, err := svc.Create(context.Background(), issue.ID, 42, "body")

	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.ErrorCodeNotFound, derr.Code)
}
