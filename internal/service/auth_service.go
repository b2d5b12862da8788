package service

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"issue-tracker-service/internal/config"
	"issue-tracker-service/internal/domain"
	"issue-tracker-service/internal/random"
)

const resetCodeLength = 9

// AuthService выдаёт и проверяет токены доступа, регистрирует пользователей
// и обслуживает восстановление пароля. Настройки (секрет, срок жизни токена)
// передаются при создании и не меняются.
type AuthService struct {
	userRepo domain.UserRepository
	cfg      config.AuthConfig
	rand     random.Rand
}

// NewAuthService создаёт новый AuthService.
func NewAuthService(userRepo domain.UserRepository, cfg config.AuthConfig, rand random.Rand) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		cfg:      cfg,
		rand:     rand,
	}
}

// AuthResult — пользователь вместе с выданным токеном доступа.
type AuthResult struct {
	User        domain.User
	AccessToken string
}

// Register регистрирует нового пользователя и сразу выдаёт токен.
func (s *AuthService) Register(ctx context.Context, username, email, fullName, password string) (AuthResult, error) {
	taken, err := s.userRepo.UsernameExists(ctx, username)

	if err != nil {
		return AuthResult{}, err
	}

	if taken {
		return AuthResult{}, domain.NewDomainError(domain.ErrorCodeValidation, domain.ErrUsernameTaken)
	}

	taken, err = s.userRepo.EmailExists(ctx, email)

	if err != nil {
		return AuthResult{}, err
	}

	if taken {
		return AuthResult{}, domain.NewDomainError(domain.ErrorCodeValidation, domain.ErrEmailTaken)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return AuthResult{}, err
	}

	user := domain.User{
		Username:       username,
		Email:          email,
		FullName:       fullName,
		HashedPassword: string(hashed),
		IsActive:       true,
	}

	if err := s.userRepo.Create(ctx, &user); err != nil {
		return AuthResult{}, err
	}

	token, err := s.issueToken(user)

	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: user, AccessToken: token}, nil
}

// Login проверяет учётные данные и выдаёт токен доступа.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)

	if err != nil {
		if err == domain.ErrNotFound {
			return AuthResult{}, domain.NewDomainError(domain.ErrorCodeUnauthorized, domain.ErrInvalidCredentials)
		}

		return AuthResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return AuthResult{}, domain.NewDomainError(domain.ErrorCodeUnauthorized, domain.ErrInvalidCredentials)
	}

	if !user.IsActive {
		return AuthResult{}, domain.NewDomainError(domain.ErrorCodeValidation, domain.ErrInactiveUser)
	}

	token, err := s.issueToken(user)

	if err != nil {
		return AuthResult{}, err
	}

	return AuthResult{User: user, AccessToken: token}, nil
}

// ForgotPassword генерирует код восстановления со сроком действия один час.
// Чтобы не раскрывать, зарегистрирован ли email, для неизвестного адреса
// возвращается фиктивный код без записи в базу.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	code := random.ResetCode(s.rand, resetCodeLength)

	user, err := s.userRepo.GetByEmail(ctx, email)

	if err != nil {
		if err == domain.ErrNotFound {
			return code, nil
		}

		return "", err
	}

	expires := time.Now().UTC().Add(time.Hour)

	if err := s.userRepo.SetResetCode(ctx, user.ID, code, expires); err != nil {
		return "", err
	}

	return code, nil
}

// ResetPassword меняет пароль по коду восстановления и сбрасывает код.
func (s *AuthService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)

	if err != nil {
		if err == domain.ErrNotFound {
			return domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return err
	}

	if user.ResetCode == nil || *user.ResetCode != code {
		return domain.NewDomainError(domain.ErrorCodeValidation, domain.ErrInvalidResetCode)
	}

	if user.ResetCodeExpires != nil && user.ResetCodeExpires.Before(time.Now().UTC()) {
		return domain.NewDomainError(domain.ErrorCodeValidation, domain.ErrResetCodeExpired)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)

	if err != nil {
		return err
	}

	if err := s.userRepo.UpdatePassword(ctx, user.ID, string(hashed)); err != nil {
		if err == domain.ErrNotFound {
			return domain.NewDomainError(domain.ErrorCodeNotFound, err)
		}

		return err
	}

	return nil
}

// Authenticate проверяет bearer-токен и возвращает активного пользователя.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (domain.User, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || !token.Valid {
		return domain.User{}, domain.NewDomainError(domain.ErrorCodeUnauthorized, domain.ErrInvalidToken)
	}

	subject, err := token.Claims.GetSubject()

	if err != nil || subject == "" {
		return domain.User{}, domain.NewDomainError(domain.ErrorCodeUnauthorized, domain.ErrInvalidToken)
	}

	userID, err := strconv.ParseInt(subject, 10, 64)

	if err != nil {
		return domain.User{}, domain.NewDomainError(domain.ErrorCodeUnauthorized, domain.ErrInvalidToken)
	}

	user, err := s.userRepo.GetByID(ctx, userID)

	if err != nil {
		if err == domain.ErrNotFound {
			return domain.User{}, domain.NewDomainError(domain.ErrorCodeUnauthorized, domain.ErrInvalidToken)
		}

		return domain.User{}, err
	}

	if !user.IsActive {
		return domain.User{}, domain.NewDomainError(domain.ErrorCodeValidation, domain.ErrInactiveUser)
	}

	return user, nil
}

func (s *AuthService) issueToken(user domain.User) (string, error) {
	now := time.Now().UTC()

	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(user.ID, 10),
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(s.cfg.TokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.Secret))
}
