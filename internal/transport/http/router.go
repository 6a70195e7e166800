package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-onboarding-api/internal/application/otp"
	"github.com/go-onboarding-api/internal/application/registration"
	"github.com/go-onboarding-api/internal/application/session"
	"github.com/go-onboarding-api/internal/application/verification"
	"github.com/go-onboarding-api/internal/config"
	"github.com/go-onboarding-api/internal/infrastructure/credstore"
	"github.com/go-onboarding-api/internal/infrastructure/dynamo"
	"github.com/go-onboarding-api/internal/infrastructure/govregistry"
	jwtinfra "github.com/go-onboarding-api/internal/infrastructure/jwt"
	s3infra "github.com/go-onboarding-api/internal/infrastructure/s3"
	"github.com/go-onboarding-api/internal/infrastructure/smtp"
	"github.com/go-onboarding-api/internal/infrastructure/sns"
	"github.com/go-onboarding-api/internal/transport/http/handler"
	appmiddleware "github.com/go-onboarding-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router. Optional
// collaborators (S3Store, Mailer, SMSSender, JWTProvider) may be nil; the
// affected features degrade gracefully.
type Deps struct {
	UserRepo        *dynamo.UserRepo
	CredentialStore credstore.Store
	Verifier        verification.ProviderClient
	S3Store         *s3infra.Store
	GovRegistry     *govregistry.Registry
	Mailer          smtp.Mailer
	SMSSender       sns.SMSSender
	JWTProvider     *jwtinfra.Provider
	OTPStore        *otp.Store
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	verificationDeps := verification.ServiceDeps{
		Provider:     deps.Verifier,
		Records:      deps.UserRepo,
		ProbeDelay:   cfg.PollProbeDelay,
		PollInterval: cfg.PollInterval,
	}
	if deps.S3Store != nil {
		verificationDeps.Archive = deps.S3Store
	}
	verificationSvc := verification.NewService(verificationDeps)

	registrationSvc := registration.NewService(registration.ServiceDeps{
		RecordStore:     deps.UserRepo,
		CredentialStore: deps.CredentialStore,
	})

	otpDeps := otp.ServiceDeps{
		Store:     deps.OTPStore,
		UserRepo:  deps.UserRepo,
		SMSSender: deps.SMSSender,
		Mailer:    deps.Mailer,
	}
	sessionDeps := session.ServiceDeps{
		UserRepo:        deps.UserRepo,
		CredentialStore: deps.CredentialStore,
	}
	if deps.JWTProvider != nil {
		otpDeps.JWTProvider = deps.JWTProvider
		sessionDeps.JWTProvider = deps.JWTProvider
	}
	otpSvc := otp.NewService(otpDeps)
	sessionSvc := session.NewService(sessionDeps)

	healthH := handler.NewHealthHandler()
	verificationH := handler.NewVerificationHandler(verificationSvc)
	userH := handler.NewUserHandler(registrationSvc)
	otpH := handler.NewOTPHandler(otpSvc, cfg.AppEnv == "development")
	sessionH := handler.NewSessionHandler(sessionSvc)
	govH := handler.NewGovRecordHandler(deps.GovRegistry)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/verifications", verificationH.Create)
		r.With(sensitiveRL.Limit).Post("/verifications/{id}/events/{action}", verificationH.Event)
		r.Get("/verifications/{id}", verificationH.Get)
		r.Delete("/verifications/{id}", verificationH.Delete)
		r.With(sensitiveRL.Limit).Post("/users", userH.Register)
		r.With(sensitiveRL.Limit).Post("/otp/{action}", otpH.Action)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Get("/government-records/{id}", govH.Get)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/sessions", sessionH.GetCurrent)
			r.Post("/sessions/logout", sessionH.Logout)
		})
	})

	return r
}
