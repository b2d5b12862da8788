package domain

import (
	"errors"
	"fmt"
)

// ErrorCodeNotFound указывает, что запрошенная сущность отсутствует.
// Остальные коды описывают различные доменные ошибки.
const (
	ErrorCodeNotFound     = "NOT_FOUND"
	ErrorCodeConflict     = "VERSION_CONFLICT"
	ErrorCodeForbidden    = "FORBIDDEN"
	ErrorCodeValidation   = "VALIDATION"
	ErrorCodeUnauthorized = "UNAUTHORIZED"
	ErrorCodeInternal     = "INTERNAL"
)

// ErrNotFound возвращается, когда сущность не найдена.
// Остальные ошибки описывают типовые доменные ситуации без привязки к коду.
var (
	ErrNotFound           = errors.New("not found")
	ErrVersionConflict    = errors.New("version conflict")
	ErrForbidden          = errors.New("forbidden")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrEmailTaken         = errors.New("email already registered")
	ErrLabelExists        = errors.New("label already exists")
	ErrEmptyCommentBody   = errors.New("comment body cannot be empty")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInactiveUser       = errors.New("inactive user")
	ErrInvalidResetCode   = errors.New("invalid reset code")
	ErrResetCodeExpired   = errors.New("reset code has expired")
	ErrInvalidToken       = errors.New("could not validate credentials")
)

// DomainError оборачивает доменную ошибку с кодом для HTTP-слоя.
//
//revive:disable-next-line:exported
type DomainError struct {
	Code string
	Err  error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return e.Code
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError создаёт новую DomainError с указанным кодом и исходной ошибкой.
func NewDomainError(code string, err error) *DomainError {
	return &DomainError{
		Code: code,
		Err:  err,
	}
}

// VersionConflictError несёт ожидаемую и фактическую версии задачи
// при конфликте оптимистичной блокировки.
type VersionConflictError struct {
	Expected int64
	Actual   int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *VersionConflictError) Unwrap() error {
	return ErrVersionConflict
}
