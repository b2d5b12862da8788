package service

import (
	"context"
	"errors"
	"strings"

	"issue-tracker-service/internal/domain"
)

// CommentService содержит бизнес-логику, связанную с комментариями.
type CommentService struct {
	commentRepo domain.CommentRepository
	issueRepo   domain.IssueRepository
	userRepo    domain.UserRepository
}

// NewCommentService создаёт новый CommentService.
func NewCommentService(
	commentRepo domain.CommentRepository,
	issueRepo domain.IssueRepository,
	userRepo domain.UserRepository,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		issueRepo:   issueRepo,
		userRepo:    userRepo,
	}
}

// Create добавляет комментарий к задаче.
func (s *CommentService) Create(ctx context.Context, issueID, authorID int64, body string) (domain.Comment, error) {
	if _, err := s.issueRepo.GetByID(ctx, issueID); err != nil {
		if err == domain.ErrNotFound {
			return domain.Comment{}, domain.NewDomainError(domain.ErrorCodeNotFound, errors.New("issue not found"))
		}

		return domain.Comment{}, err
	}

	exists, err := s.userRepo.Exists(ctx, authorID)

	if err != nil {
		return domain.Comment{}, err
	}

	if !exists {
		return domain.Comment{}, domain.NewDomainError(domain.ErrorCodeNotFound, errors.New("author not found"))
	}

	if strings.TrimSpace(body) == "" {
		return domain.Comment{}, domain.NewDomainError(domain.ErrorCodeValidation, domain.ErrEmptyCommentBody)
	}

	comment := domain.Comment{
		Body:     body,
		AuthorID: authorID,
		IssueID:  issueID,
	}

	if err := s.commentRepo.Create(ctx, &comment); err != nil {
		return domain.Comment{}, err
	}

	return comment, nil
}
