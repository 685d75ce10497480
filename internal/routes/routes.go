package routes

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/lanceraa/api/internal/auth"
	"github.com/lanceraa/api/internal/handlers"
	"github.com/lanceraa/api/internal/middleware"
	pkghttp "github.com/lanceraa/api/pkg/http"
)

// RateLimits holds the per-minute request budgets for the limited route groups
type RateLimits struct {
	Auth int
	Chat int
}

// RouterConfig holds the settings of the global middleware chain
type RouterConfig struct {
	Env            string
	AllowedOrigins []string
	IPConfig       *pkghttp.IPConfig
	Logger         *slog.Logger
}

// NewRouter returns a router with the global middleware chain applied. Client
// addresses are resolved by IPConfig alone, which honours forwarding headers
// only from trusted proxies, so no header rewrites RemoteAddr here.
func NewRouter(config RouterConfig) chi.Router {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.SecurityHeaders(middleware.SecurityHeadersConfig{Env: config.Env}))
	router.Use(middleware.CORS(middleware.NewCORSConfig(config.AllowedOrigins)))
	router.Use(middleware.SecureLogger(config.Logger, config.IPConfig))
	router.Use(chimiddleware.Recoverer)
	router.Use(chimiddleware.Timeout(60 * time.Second))
	return router
}

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	healthHandler *handlers.HealthHandler,
	authHandler *handlers.AuthHandler,
	chatbotHandler *handlers.ChatbotHandler,
	tokenManager *auth.TokenManager,
	ipConfig *pkghttp.IPConfig,
	limits RateLimits,
) {
	authLimit := middleware.RateLimitByIP(middleware.AuthRateLimit(limits.Auth), ipConfig)
	chatLimit := middleware.RateLimitByIP(middleware.ChatRateLimit(limits.Chat), ipConfig)

	router.Get("/health", healthHandler.Health)

	// Public account routes
	router.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authLimit)
			r.Post("/signup/initial", authHandler.Signup)
			r.Post("/verify-email", authHandler.VerifyEmail)
			r.Post("/resend-verification", authHandler.ResendVerification)
			r.Post("/check-email", authHandler.CheckEmail)
			r.Post("/login", authHandler.Login)
			r.Post("/forgot-password", authHandler.ForgotPassword)
			r.Post("/reset-password", authHandler.ResetPassword)
		})

		// Bearer token required
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticate(tokenManager))
			r.Post("/signup/basic-info", authHandler.BasicInfo)
			r.Post("/signup/contact-info", authHandler.ContactInfo)
			r.Post("/signup/professional-info", authHandler.ProfessionalInfo)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
		})
	})

	router.With(auth.Authenticate(tokenManager)).Put("/profile", authHandler.UpdateProfile)

	router.With(chatLimit).Post("/chatbot/response", chatbotHandler.Respond)
}
