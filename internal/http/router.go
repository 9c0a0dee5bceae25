package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	activationsvc "github.com/atea-seattle/memberd/internal/activation"
	"github.com/atea-seattle/memberd/internal/auth"
	"github.com/atea-seattle/memberd/internal/config"
	"github.com/atea-seattle/memberd/internal/gmail"
	activationfeat "github.com/atea-seattle/memberd/internal/http/features/activation"
	"github.com/atea-seattle/memberd/internal/http/features/admin"
	"github.com/atea-seattle/memberd/internal/http/features/gmailauth"
	"github.com/atea-seattle/memberd/internal/http/features/members"
	"github.com/atea-seattle/memberd/internal/http/features/session"
	"github.com/atea-seattle/memberd/internal/http/middleware"
	"github.com/atea-seattle/memberd/internal/httputil"
	"github.com/atea-seattle/memberd/internal/membership"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger             *slog.Logger
	SessionService     *auth.SessionService
	ActivationService  *activationsvc.Service
	MembershipService  *membership.Service
	GmailConfig        gmail.Config
	TokenManager       *gmail.TokenManager
	RateLimitConfig    config.RateLimitConfig
	SecurityHeaders    config.SecurityHeadersConfig
	MaxRequestBodySize int64
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(cfg.SecurityHeaders))
	r.Use(middleware.RequestSizeLimit(cfg.MaxRequestBodySize))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Create rate limiters for different endpoint types
	rateLimiters := middleware.CreateRateLimiters(cfg.RateLimitConfig, cfg.Logger)

	// Login
	sessionHandler := session.NewHandler(cfg.Logger, cfg.SessionService)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["auth"])
		r.Post("/v1/auth/login", sessionHandler.Login)
	})

	// Public activation and signup
	activationHandler := activationfeat.NewHandler(cfg.Logger, cfg.ActivationService, cfg.MembershipService)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["activate"])
		r.Get("/v1/activation/{token}", activationHandler.Check)
		r.Post("/v1/activation/{token}", activationHandler.Activate)
		r.Post("/v1/signup/{token}", activationHandler.Signup)
	})
	r.With(rateLimiters["resend"]).Post("/v1/activation/resend", activationHandler.Resend)

	// Member self-service and the public directory
	membersHandler := members.NewHandler(cfg.Logger, cfg.MembershipService)
	r.With(rateLimiters["profile"]).Get("/v1/members", membersHandler.Directory)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.SessionService))
		r.Use(rateLimiters["profile"])
		r.Get("/v1/me/profile", membersHandler.GetProfile)
		r.Put("/v1/me/profile", membersHandler.UpdateProfile)
		r.Post("/v1/me/profile/submit", membersHandler.SubmitProfile)
	})

	// Admin
	adminHandler := admin.NewHandler(cfg.Logger, cfg.MembershipService, cfg.ActivationService)
	gmailHandler := gmailauth.NewHandler(cfg.Logger, cfg.GmailConfig, cfg.TokenManager)
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.SessionService))
		r.Use(middleware.RequireAdmin)

		r.Post("/v1/admin/members/invite", adminHandler.Invite)

		r.Get("/v1/admin/users", adminHandler.ListUsers)
		r.Get("/v1/admin/users/{id}", adminHandler.GetUser)
		r.Patch("/v1/admin/users/{id}/status", adminHandler.UpdateUserStatus)
		r.Delete("/v1/admin/users/{id}", adminHandler.DeleteUser)

		r.Get("/v1/admin/users/{id}/links", adminHandler.ListLinks)
		r.Post("/v1/admin/users/{id}/links", adminHandler.GenerateLink)
		r.Post("/v1/admin/users/{id}/links/resend", adminHandler.ResendLink)
		r.Delete("/v1/admin/links/{token}", adminHandler.DeactivateLink)

		r.Get("/v1/admin/profiles/pending", adminHandler.PendingProfiles)
		r.Post("/v1/admin/profiles/{id}/approve", adminHandler.ApproveProfile)
		r.Post("/v1/admin/profiles/{id}/reject", adminHandler.RejectProfile)

		r.Get("/v1/admin/dashboard", adminHandler.Dashboard)

		r.Get("/v1/admin/gmail/auth-url", gmailHandler.AuthURL)
		r.Get("/v1/admin/gmail/callback", gmailHandler.Callback)
		r.Get("/v1/admin/gmail/status", gmailHandler.Status)
	})

	return r
}
