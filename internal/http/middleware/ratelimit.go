package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/httprate"

	"github.com/atea-seattle/memberd/internal/config"
	"github.com/atea-seattle/memberd/internal/httputil"
)

// RateLimitConfig holds rate limiting configuration for a specific endpoint type.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Logger   *slog.Logger
}

// RateLimit creates an IP-based rate limiter middleware with logging.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return httprate.Limit(
		cfg.Requests,
		cfg.Window,
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			if cfg.Logger != nil {
				cfg.Logger.Warn("rate limit exceeded",
					"ip", r.RemoteAddr,
					"path", r.URL.Path,
					"method", r.Method,
					"user_agent", r.UserAgent(),
				)
			}
			httputil.Error(w, http.StatusTooManyRequests, "rate limit exceeded. please try again later")
		}),
	)
}

// NoRateLimit returns a no-op middleware when rate limiting is disabled.
func NoRateLimit() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return next
	}
}

// CreateRateLimiters creates rate limiting middleware functions based on configuration.
func CreateRateLimiters(cfg config.RateLimitConfig, logger *slog.Logger) map[string]func(http.Handler) http.Handler {
	if !cfg.Enabled {
		noOp := NoRateLimit()
		return map[string]func(http.Handler) http.Handler{
			"auth":     noOp,
			"resend":   noOp,
			"activate": noOp,
			"profile":  noOp,
		}
	}

	return map[string]func(http.Handler) http.Handler{
		"auth": RateLimit(RateLimitConfig{
			Requests: cfg.AuthRequestsPerMinute,
			Window:   time.Duration(cfg.AuthWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
		"resend": RateLimit(RateLimitConfig{
			Requests: cfg.ResendRequestsPerWindow,
			Window:   time.Duration(cfg.ResendWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
		"activate": RateLimit(RateLimitConfig{
			Requests: cfg.ActivateRequestsPerWindow,
			Window:   time.Duration(cfg.ActivateWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
		"profile": RateLimit(RateLimitConfig{
			Requests: cfg.ProfileRequestsPerMinute,
			Window:   time.Duration(cfg.ProfileWindowMinutes) * time.Minute,
			Logger:   logger,
		}),
	}
}
