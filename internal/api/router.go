package api

import (
	"net/http"
	"time"

	"github.com/devdesignersid/codetrack/internal/api/handler"
	"github.com/devdesignersid/codetrack/internal/api/middleware"
	"github.com/devdesignersid/codetrack/internal/app/service"
	"github.com/devdesignersid/codetrack/internal/domain/repository"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

func NewRouter(
	executionService *service.ExecutionService,
	problemService *service.ProblemService,
	submissionService *service.SubmissionService,
	userRepo repository.UserRepository,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	identity := middleware.NewDemoIdentity(userRepo)

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(identity.Handler)

		problemHandler := handler.NewProblemHandler(problemService)
		submissionHandler := handler.NewSubmissionHandler(submissionService)

		v1.Route("/problems", func(pr chi.Router) {
			problemHandler.RegisterRoutes(pr)
			submissionHandler.RegisterProblemRoutes(pr)
		})

		executionHandler := handler.NewExecutionHandler(executionService)
		v1.Route("/execution", executionHandler.RegisterRoutes)

		v1.Route("/submissions", submissionHandler.RegisterRoutes)
	})

	return r
}
