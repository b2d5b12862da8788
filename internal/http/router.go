package httpapi

import (
	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"issue-tracker-service/internal/logging"
	"issue-tracker-service/internal/service"
)

// NewRouter настраивает HTTP-маршруты и middleware сервиса.
func NewRouter(
	authSvc *service.AuthService,
	userSvc *service.UserService,
	issueSvc *service.IssueService,
	importSvc *service.ImportService,
	commentSvc *service.CommentService,
	labelSvc *service.LabelService,
	reportSvc *service.ReportService,
	logger *logging.Logger,
) nethttp.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(logger))
	r.Use(RecoveryMiddleware(logger))

	requireAuth := AuthMiddleware(authSvc)

	authHandlers := NewAuthHandlers(authSvc)
	userHandlers := NewUserHandlers(userSvc)
	issueHandlers := NewIssueHandlers(issueSvc, importSvc)
	commentHandlers := NewCommentHandlers(commentSvc)
	labelHandlers := NewLabelHandlers(labelSvc)
	reportHandlers := NewReportHandlers(reportSvc)

	r.Get("/health", HealthHandler)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandlers.Register)
		r.Post("/login", authHandlers.Login)
		r.Post("/forgot-password", authHandlers.ForgotPassword)
		r.Post("/reset-password", authHandlers.ResetPassword)
		r.Post("/logout", authHandlers.Logout)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", authHandlers.Me)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Post("/", userHandlers.Create)
		r.Get("/", userHandlers.List)
		r.Get("/{userID}", userHandlers.Get)
	})

	r.Route("/issues", func(r chi.Router) {
		r.Get("/", issueHandlers.List)
		r.Get("/{issueID}", issueHandlers.Get)
		r.Get("/{issueID}/timeline", issueHandlers.Timeline)

		// Мутации требуют аутентифицированного актора
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", issueHandlers.Create)
			r.Patch("/{issueID}", issueHandlers.Update)
			r.Post("/bulk-status", issueHandlers.BulkStatusUpdate)
			r.Post("/import", issueHandlers.Import)
			r.Delete("/{issueID}", issueHandlers.Delete)
			r.Post("/{issueID}/comments", commentHandlers.Create)
		})
	})

	r.Route("/labels", func(r chi.Router) {
		r.Post("/", labelHandlers.Create)
		r.Get("/", labelHandlers.List)
		r.Put("/issues/{issueID}/labels", labelHandlers.ReplaceIssueLabels)
	})

	r.Route("/reports", func(r chi.Router) {
		r.Get("/top-assignees", reportHandlers.TopAssignees)
		r.Get("/latency", reportHandlers.ResolutionLatency)
	})

	return r
}
