package service

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"issue-tracker-service/internal/domain"
)

// UserService содержит бизнес-логику, связанную с пользователями.
type UserService struct {
	userRepo domain.UserRepository
}

// NewUserService создаёт новый UserService.
func NewUserService(userRepo domain.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Create создаёт пользователя с уникальными username и email.
func (s *UserService) Create(ctx context.Context, username, email, fullName, password string) (domain.User, error) {
	taken, err := s.userRepo.UsernameExists(ctx, username)

	if err != nil {
		return domain.User{}, err
	}

	if taken {
		return domain.User{}, domain.NewDomainError(domain.ErrorCodeValidation, domain.ErrUsernameTaken)
	}

	taken, err = s.userRepo.EmailExists(ctx, email)

	if err != nil {
		return domain.User{}, err
	}

	if taken {
		return domain.User{}, domain.NewDomainError(domain.ErrorCodeValidation, domain.ErrEmailTaken)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		Username:       username,
		Email:          email,
		FullName:       fullName,
		HashedPassword: string(hashed),
		IsActive:       true,
	}

	if err := s.userRepo.Create(ctx, &user); err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// List возвращает пользователей с пагинацией.
func (s *UserService) List(ctx context.Context, skip, limit int) ([]domain.User, error) {
	return s.userRepo.List(ctx, skip, limit)
}

// GetByID возвращает пользователя по идентификатору.
func (s *UserService) GetByID(ctx context.Context, id int64) (domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)

	if err != nil {
		if err == domain.ErrNotFound {
			return domain.User{}, domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return domain.User{}, err
	}

	return user, nil
}
