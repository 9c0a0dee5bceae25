package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration.
type Config struct {
	// Server
	ServerAddr string
	ServerPort int

	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret      string
	JWTIssuer      string
	AccessTokenTTL time.Duration

	// Google OAuth / Gmail delivery
	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string
	GoogleRedirectURI  string
	GmailFromEmail     string
	GmailFromName      string

	// Onboarding
	FrontendURL  string
	LinkTTL      time.Duration
	ResendWindow time.Duration
	MailLogPath  string

	// HTTP hardening
	RateLimit          RateLimitConfig
	SecurityHeaders    SecurityHeadersConfig
	MaxRequestBodySize int64
}

// RateLimitConfig holds per-endpoint-class rate limiting settings.
type RateLimitConfig struct {
	Enabled bool

	AuthRequestsPerMinute int
	AuthWindowMinutes     int

	ResendRequestsPerWindow int
	ResendWindowMinutes     int

	ActivateRequestsPerWindow int
	ActivateWindowMinutes     int

	ProfileRequestsPerMinute int
	ProfileWindowMinutes     int
}

// SecurityHeadersConfig holds the OWASP response header settings.
type SecurityHeadersConfig struct {
	Enabled            bool
	CSP                string
	HSTSMaxAge         int
	FrameOptions       string
	ContentTypeOptions string
	XSSProtection      string
	ReferrerPolicy     string
	PermissionsPolicy  string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		// Server defaults
		ServerAddr: getEnv("SERVER_ADDR", "0.0.0.0"),
		ServerPort: getEnvInt("SERVER_PORT", 8080),

		// Database defaults
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 25432),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "memberd"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		// JWT defaults
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTIssuer:      getEnv("JWT_ISSUER", "memberd"),
		AccessTokenTTL: getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),

		// Google OAuth / Gmail (optional; invitations fall back to the mail log)
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRefreshToken: getEnv("GOOGLE_REFRESH_TOKEN", ""),
		GoogleRedirectURI:  getEnv("GOOGLE_REDIRECT_URI", ""),
		GmailFromEmail:     getEnv("GMAIL_FROM_EMAIL", ""),
		GmailFromName:      getEnv("GMAIL_FROM_NAME", "ATEA Seattle"),

		// Onboarding defaults: links live 45 days, resends 5 minutes apart
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),
		LinkTTL:      getEnvDuration("LINK_TTL", 1080*time.Hour),
		ResendWindow: getEnvDuration("RESEND_WINDOW", 5*time.Minute),
		MailLogPath:  getEnv("MAIL_LOG_PATH", "mail.log"),

		RateLimit: RateLimitConfig{
			Enabled: getEnvBool("RATE_LIMIT_ENABLED", true),

			AuthRequestsPerMinute: getEnvInt("RATE_LIMIT_AUTH_REQUESTS", 5),
			AuthWindowMinutes:     getEnvInt("RATE_LIMIT_AUTH_WINDOW_MINUTES", 1),

			ResendRequestsPerWindow: getEnvInt("RATE_LIMIT_RESEND_REQUESTS", 3),
			ResendWindowMinutes:     getEnvInt("RATE_LIMIT_RESEND_WINDOW_MINUTES", 15),

			ActivateRequestsPerWindow: getEnvInt("RATE_LIMIT_ACTIVATE_REQUESTS", 10),
			ActivateWindowMinutes:     getEnvInt("RATE_LIMIT_ACTIVATE_WINDOW_MINUTES", 15),

			ProfileRequestsPerMinute: getEnvInt("RATE_LIMIT_PROFILE_REQUESTS", 60),
			ProfileWindowMinutes:     getEnvInt("RATE_LIMIT_PROFILE_WINDOW_MINUTES", 1),
		},

		SecurityHeaders: SecurityHeadersConfig{
			Enabled:            getEnvBool("SECURITY_HEADERS_ENABLED", true),
			CSP:                getEnv("SECURITY_CSP", "default-src 'self'"),
			HSTSMaxAge:         getEnvInt("SECURITY_HSTS_MAX_AGE", 31536000),
			FrameOptions:       getEnv("SECURITY_FRAME_OPTIONS", "DENY"),
			ContentTypeOptions: getEnv("SECURITY_CONTENT_TYPE_OPTIONS", "nosniff"),
			XSSProtection:      getEnv("SECURITY_XSS_PROTECTION", "1; mode=block"),
			ReferrerPolicy:     getEnv("SECURITY_REFERRER_POLICY", "strict-origin-when-cross-origin"),
			PermissionsPolicy:  getEnv("SECURITY_PERMISSIONS_POLICY", "geolocation=(), microphone=(), camera=()"),
		},

		MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 1<<20)),
	}

	// Validate required fields
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// HasGmail returns true if the Gmail delivery channel is fully configured.
func (c *Config) HasGmail() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" &&
		c.GoogleRefreshToken != "" && c.GmailFromEmail != ""
}

// HasGoogleOAuth returns true if the OAuth client itself is configured; the
// gmail-auth bootstrap endpoints need only this, not a refresh token.
func (c *Config) HasGoogleOAuth() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
