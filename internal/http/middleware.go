package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"issue-tracker-service/internal/domain"
	"issue-tracker-service/internal/logging"
	"issue-tracker-service/internal/service"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

type requestIDKey struct{}

// RequestIDMiddleware присваивает каждому запросу идентификатор и
// возвращает его клиенту в заголовке X-Request-ID.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")

		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}

	return ""
}

// LoggingMiddleware логирует входящие HTTP-запросы и их статус/длительность.
func LoggingMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", duration.Milliseconds(),
				"request_id", requestIDFrom(r.Context()),
			)
		})
	}
}

// RecoveryMiddleware перехватывает panic, логирует их и возвращает INTERNAL ошибку.
func RecoveryMiddleware(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					logger.Error("panic recovered",
						"panic", rec,
						"request_id", requestIDFrom(r.Context()),
					)
					WriteError(w, &domainErrorInternal{})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// domainErrorInternal используется для возврата INTERNAL при панике
type domainErrorInternal struct{}

func (d *domainErrorInternal) Error() string { return "internal error" }

type actorKey struct{}

// AuthMiddleware проверяет bearer-токен и кладёт аутентифицированного
// пользователя в контекст запроса.
func AuthMiddleware(authSvc *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")

			token, ok := strings.CutPrefix(header, "Bearer ")

			if !ok || token == "" {
				WriteError(w, domain.NewDomainError(domain.ErrorCodeUnauthorized, domain.ErrInvalidToken))
				return
			}

			user, err := authSvc.Authenticate(r.Context(), token)

			if err != nil {
				WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), actorKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFrom возвращает аутентифицированного пользователя из контекста.
func ActorFrom(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(actorKey{}).(domain.User)
	return user, ok
}
