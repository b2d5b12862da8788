package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"issue-tracker-service/internal/service"
)

// UserHandlers содержит HTTP-обработчики, связанные с пользователями.
type UserHandlers struct {
	svc *service.UserService
}

// NewUserHandlers создаёт набор HTTP-обработчиков для работы с пользователями.
func NewUserHandlers(svc *service.UserService) *UserHandlers {
	return &UserHandlers{svc: svc}
}

// Create обрабатывает запрос на создание пользователя.
func (h *UserHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest

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

	user, err := h.svc.Create(r.Context(), req.Username, req.Email, req.FullName, req.Password)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, mapUserToDTO(user))
}

// List возвращает пользователей с пагинацией.
func (h *UserHandlers) List(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := paginationParams(r, 0, 100)

	if err != nil {
		writeValidationError(w, err)
		return
	}

	users, err := h.svc.List(r.Context(), skip, limit)

	if err != nil {
		WriteError(w, err)
		return
	}

	res := make([]UserDTO, 0, len(users))

	for _, u := range users {
		res = append(res, mapUserToDTO(u))
	}

	writeJSON(w, http.StatusOK, res)
}

// Get возвращает пользователя по идентификатору.
func (h *UserHandlers) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)

	if err != nil {
		writeValidationError(w, errors.New("invalid user id"))
		return
	}

	user, err := h.svc.GetByID(r.Context(), id)

	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, mapUserToDTO(user))
}

func paginationParams(r *http.Request, defaultSkip, defaultLimit int) (skip, limit int, err error) {
	skip = defaultSkip
	limit = defaultLimit

	if v := r.URL.Query().Get("skip"); v != "" {
		skip, err = strconv.Atoi(v)

		if err != nil || skip < 0 {
			return 0, 0, errors.New("invalid skip parameter")
		}
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)

		if err != nil || limit < 0 {
			return 0, 0, errors.New("invalid limit parameter")
		}
	}

	return skip, limit, nil
}
