package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"issue-tracker-service/internal/domain"
	"issue-tracker-service/internal/service"
)

// AuthHandlers содержит HTTP-обработчики аутентификации.
type AuthHandlers struct {
	svc *service.AuthService
}

// NewAuthHandlers создаёт набор HTTP-обработчиков аутентификации.
func NewAuthHandlers(svc *service.AuthService) *AuthHandlers {
	return &AuthHandlers{svc: svc}
}

// Register обрабатывает запрос на регистрацию пользователя.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	if req.Username == "" || req.Email == "" {
		writeValidationError(w, errors.New("username and email are required"))
		return
	}

	if len(req.Password) < 8 {
		writeValidationError(w, errors.New("password must be at least 8 characters"))
		return
	}

	res, err := h.svc.Register(r.Context(), req.Username, req.Email, req.FullName, req.Password)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, LoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   "bearer",
		User:        mapUserToDTO(res.User),
	})
}

// Login обрабатывает запрос на вход по email и паролю.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	res, err := h.svc.Login(r.Context(), req.Email, req.Password)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: res.AccessToken,
		TokenType:   "bearer",
		User:        mapUserToDTO(res.User),
	})
}

// ForgotPassword обрабатывает запрос кода восстановления пароля.
func (h *AuthHandlers) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	code, err := h.svc.ForgotPassword(r.Context(), req.Email)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ForgotPasswordResponse{
		ResetCode: code,
		Message:   "If the email exists, a reset code has been generated. Code expires in 1 hour.",
	})
}

// ResetPassword обрабатывает смену пароля по коду восстановления.
func (h *AuthHandlers) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeValidationError(w, err)
		return
	}

	if len(req.NewPassword) < 8 {
		writeValidationError(w, errors.New("password must be at least 8 characters"))
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Email, req.ResetCode, req.NewPassword); err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Success: true,
		Message: "Password reset successfully",
	})
}

// Me возвращает текущего аутентифицированного пользователя.
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := ActorFrom(r.Context())

	if !ok {
		WriteError(w, domain.NewDomainError(domain.ErrorCodeUnauthorized, domain.ErrInvalidToken))
		return
	}

	writeJSON(w, http.StatusOK, mapUserToDTO(actor))
}

// Logout подтверждает выход. Токены не хранятся на сервере,
// клиент просто перестаёт использовать свой.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, MessageResponse{
		Success: true,
		Message: "Logged out",
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
