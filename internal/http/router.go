package router

import (
	"log"
	"net/http"

	"github.com/Renal37/go-custody-workflow/internal/logger"
	"github.com/Renal37/go-custody-workflow/internal/middlewares"
	"github.com/Renal37/go-custody-workflow/internal/models"
	"github.com/go-chi/chi/v5"
)

type Config struct {
	Endpoint string
}

type Router struct {
	config          Config
	authService     models.AuthService
	jwtService      models.JWTService
	workflowService models.WorkflowService
	registryService models.RegistryService
}

func New(
	config Config,
	authService models.AuthService,
	jwtService models.JWTService,
	workflowService models.WorkflowService,
	registryService models.RegistryService,
) *Router {
	return &Router{
		config,
		authService,
		jwtService,
		workflowService,
		registryService,
	}
}

func (router *Router) get() chi.Router {
	r := chi.NewRouter()

	r.Use(
		middlewares.ServiceInjectorMiddleware(
			router.authService,
			router.jwtService,
			router.workflowService,
			router.registryService,
		),
		logger.RequestLogger,
		middlewares.AuthMiddleware().WithExcludedPaths(
			"/api/user/register",
			"/api/user/login",
			"/api/pipeline",
		).Middleware,
	)

	r.Route("/api", func(r chi.Router) {
		r.Route("/user", func(r chi.Router) {
			r.With(middlewares.JSONMiddleware[models.UnknownUser]).Post("/register", Register)
			r.With(middlewares.JSONMiddleware[models.UnknownUser]).Post("/login", Login)
		})

		r.Route("/requests", func(r chi.Router) {
			r.With(middlewares.JSONMiddleware[models.WithdrawalInput]).Post("/", SubmitRequest)
			r.Get("/", GetRequests)

			r.Route("/{requestID}", func(r chi.Router) {
				r.Get("/", GetRequest)
				r.Get("/audit", GetAuditTrail)

				r.Post("/approve", ApproveRequest)
				r.With(middlewares.JSONMiddleware[models.RejectInput]).Post("/reject", RejectRequest)
				r.Post("/cancel", CancelRequest)
				r.Post("/reapply", ReApplyRequest)
				r.Post("/resubmit", ResubmitRequest)
				r.Post("/archive", ArchiveRequest)
			})
		})

		r.Route("/pipeline", func(r chi.Router) {
			r.With(middlewares.JSONMiddleware[models.ScreeningResult]).Post("/screening", CompleteScreening)
			r.With(middlewares.JSONMiddleware[models.SigningResult]).Post("/signing", CompleteSigning)
			r.With(middlewares.JSONMiddleware[models.ConfirmationEvent]).Post("/confirmations", RecordConfirmation)
		})
	})

	return r
}

func (router *Router) Run() {
	log.Fatal(http.ListenAndServe(router.config.Endpoint, router.get()))
}
