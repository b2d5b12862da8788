package httpapi

import (
	"encoding/json"
	"net/http"

	"issue-tracker-service/internal/domain"
)

// ErrorBody — обёртка для объекта ошибки в HTTP-ответе.
type ErrorBody struct {
	Error ErrorItem `json:"error"`
}

// ErrorItem описывает код и сообщение об ошибке.
type ErrorItem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteError мапит доменные ошибки в HTTP-статусы и JSON-ответ.
// Неизвестные ошибки возвращаются как INTERNAL без деталей.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := domain.ErrorCodeInternal
	msg := "internal error"

	if derr, ok := err.(*domain.DomainError); ok {
		code = derr.Code

		if derr.Err != nil {
			msg = derr.Err.Error()
		}

		switch derr.Code {
		case domain.ErrorCodeValidation:
			status = http.StatusBadRequest

		case domain.ErrorCodeUnauthorized:
			status = http.StatusUnauthorized
			w.Header().Set("WWW-Authenticate", "Bearer")

		case domain.ErrorCodeForbidden:
			status = http.StatusForbidden

		case domain.ErrorCodeNotFound:
			status = http.StatusNotFound

		case domain.ErrorCodeConflict:
			status = http.StatusConflict

		default:
			status = http.StatusInternalServerError
			msg = "internal error"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(ErrorBody{
		Error: ErrorItem{
			Code:    code,
			Message: msg,
		},
	})
}

func writeValidationError(w http.ResponseWriter, err error) {
	WriteError(w, domain.NewDomainError(domain.ErrorCodeValidation, err))
}
