package http

import (
	"net/http"

	"github.com/go-auth-api/internal/application/account"
	"github.com/go-auth-api/internal/application/auth"
	"github.com/go-auth-api/internal/application/login"
	"github.com/go-auth-api/internal/application/twofactor"
	"github.com/go-auth-api/internal/config"
	"github.com/go-auth-api/internal/infrastructure/dynamo"
	"github.com/go-auth-api/internal/infrastructure/google"
	jwtinfra "github.com/go-auth-api/internal/infrastructure/jwt"
	"github.com/go-auth-api/internal/infrastructure/smtp"
	"github.com/go-auth-api/internal/infrastructure/sns"
	"github.com/go-auth-api/internal/pkg/password"
	"github.com/go-auth-api/internal/transport/http/handler"
	appmiddleware "github.com/go-auth-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	AccountRepo    *dynamo.AccountRepo
	CodeRepo       *dynamo.CodeRepo
	TokenRepo      *dynamo.TokenRepo
	Mailer         smtp.Mailer
	SMSSender      sns.SMSSender
	JWTProvider    *jwtinfra.Provider
	GoogleVerifier *google.Verifier
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

	// 5 requests/second, burst of 10, applied to sensitive public endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	hasher := password.Bcrypt{}

	twoFactorSvc := twofactor.NewService(twofactor.ServiceDeps{
		CodeRepo:  deps.CodeRepo,
		Mailer:    deps.Mailer,
		SMSSender: deps.SMSSender,
		CodeTTL:   cfg.OneTimeCodeTTL,
	})
	accountSvc := account.NewService(deps.AccountRepo, hasher, twoFactorSvc)
	authSvc := auth.NewService(auth.ServiceDeps{
		TokenRepo:        deps.TokenRepo,
		AccountRepo:      deps.AccountRepo,
		Mailer:           deps.Mailer,
		Hasher:           hasher,
		VerifyEmailTTL:   cfg.VerifyEmailTTL,
		PasswordResetTTL: cfg.PasswordResetTTL,
		FrontendBaseURL:  cfg.FrontendBaseURL,
	})
	loginDeps := login.ServiceDeps{
		AccountRepo: deps.AccountRepo,
		CodeManager: twoFactorSvc,
		Hasher:      hasher,
	}
	if deps.JWTProvider != nil {
		loginDeps.Signer = deps.JWTProvider
	}
	if deps.GoogleVerifier != nil {
		loginDeps.GoogleVerifier = deps.GoogleVerifier
	}
	loginSvc := login.NewService(loginDeps)

	healthH := handler.NewHealthHandler()
	loginH := handler.NewLoginHandler(loginSvc)
	accountH := handler.NewAccountHandler(accountSvc, authSvc)
	emailH := handler.NewEmailVerificationHandler(authSvc, accountSvc)
	pwH := handler.NewPasswordResetHandler(authSvc)

	r.Route("/v1", func(r chi.Router) {
		// Public routes (no auth)
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/login", loginH.Login)
		r.With(sensitiveRL.Limit).Post("/login/code", loginH.LoginWithCode)
		r.With(sensitiveRL.Limit).Post("/login/google", loginH.LoginWithGoogle)
		r.With(sensitiveRL.Limit).Post("/accounts", accountH.Register)
		r.Get("/accounts/verify-email", emailH.Verify)
		r.Get("/accounts/login/{login}", accountH.Exists)
		r.With(sensitiveRL.Limit).Post("/password-reset/request", pwH.Request)
		r.With(sensitiveRL.Limit).Post("/password-reset", pwH.Reset)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/accounts/me", accountH.Me)
			r.Put("/accounts/{id}", accountH.Update)
			r.Post("/confirm-email/request", emailH.Request)
		})
	})

	return r
}
