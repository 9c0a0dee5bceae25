package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Set required JWT_SECRET
	os.Setenv("JWT_SECRET", "test-secret-key")
	defer os.Unsetenv("JWT_SECRET")

	// Clear any other env vars that might interfere
	envVars := []string{"SERVER_ADDR", "SERVER_PORT", "DB_HOST", "DB_PORT", "DB_USER",
		"DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "LINK_TTL", "RESEND_WINDOW", "FRONTEND_URL"}
	for _, v := range envVars {
		os.Unsetenv(v)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// Check defaults
	if cfg.ServerAddr != "0.0.0.0" {
		t.Errorf("ServerAddr = %q, want %q", cfg.ServerAddr, "0.0.0.0")
	}
	if cfg.ServerPort != 8080 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8080)
	}
	if cfg.DBHost != "localhost" {
		t.Errorf("DBHost = %q, want %q", cfg.DBHost, "localhost")
	}
	if cfg.DBName != "memberd" {
		t.Errorf("DBName = %q, want %q", cfg.DBName, "memberd")
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, want %q", cfg.DBSSLMode, "disable")
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %v, want %v", cfg.AccessTokenTTL, 15*time.Minute)
	}
	if cfg.LinkTTL != 1080*time.Hour {
		t.Errorf("LinkTTL = %v, want %v (45 days)", cfg.LinkTTL, 1080*time.Hour)
	}
	if cfg.ResendWindow != 5*time.Minute {
		t.Errorf("ResendWindow = %v, want %v", cfg.ResendWindow, 5*time.Minute)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("RateLimit.Enabled = false, want true by default")
	}
	if !cfg.SecurityHeaders.Enabled {
		t.Error("SecurityHeaders.Enabled = false, want true by default")
	}
}

func TestLoad_RequiredJWTSecret(t *testing.T) {
	os.Unsetenv("JWT_SECRET")

	_, err := Load()
	if err == nil {
		t.Error("Load should fail when JWT_SECRET is not set")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("JWT_SECRET", "custom-secret")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("DB_HOST", "db.example.com")
	os.Setenv("LINK_TTL", "720h")
	os.Setenv("FRONTEND_URL", "https://portal.example.org")
	defer func() {
		os.Unsetenv("JWT_SECRET")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("DB_HOST")
		os.Unsetenv("LINK_TTL")
		os.Unsetenv("FRONTEND_URL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ServerPort != 9090 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 9090)
	}
	if cfg.DBHost != "db.example.com" {
		t.Errorf("DBHost = %q, want %q", cfg.DBHost, "db.example.com")
	}
	if cfg.LinkTTL != 720*time.Hour {
		t.Errorf("LinkTTL = %v, want %v", cfg.LinkTTL, 720*time.Hour)
	}
	if cfg.FrontendURL != "https://portal.example.org" {
		t.Errorf("FrontendURL = %q, want %q", cfg.FrontendURL, "https://portal.example.org")
	}
}

func TestHasGmail(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		expected bool
	}{
		{
			name: "fully configured",
			cfg: Config{
				GoogleClientID:     "client-id",
				GoogleClientSecret: "client-secret",
				GoogleRefreshToken: "refresh-token",
				GmailFromEmail:     "admin@example.org",
			},
			expected: true,
		},
		{
			name: "missing refresh token",
			cfg: Config{
				GoogleClientID:     "client-id",
				GoogleClientSecret: "client-secret",
				GmailFromEmail:     "admin@example.org",
			},
			expected: false,
		},
		{
			name: "missing from address",
			cfg: Config{
				GoogleClientID:     "client-id",
				GoogleClientSecret: "client-secret",
				GoogleRefreshToken: "refresh-token",
			},
			expected: false,
		},
		{
			name:     "nothing set",
			cfg:      Config{},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.cfg.HasGmail() != tt.expected {
				t.Errorf("HasGmail() = %v, want %v", tt.cfg.HasGmail(), tt.expected)
			}
		})
	}
}

func TestHasGoogleOAuth(t *testing.T) {
	cfg := &Config{GoogleClientID: "id", GoogleClientSecret: "secret"}
	if !cfg.HasGoogleOAuth() {
		t.Error("HasGoogleOAuth() = false with client id and secret set, want true")
	}
	cfg.GoogleClientSecret = ""
	if cfg.HasGoogleOAuth() {
		t.Error("HasGoogleOAuth() = true with only client id set, want false")
	}
}

func TestGetEnvInt_InvalidValue(t *testing.T) {
	os.Setenv("TEST_INT", "not-a-number")
	defer os.Unsetenv("TEST_INT")

	result := getEnvInt("TEST_INT", 42)
	if result != 42 {
		t.Errorf("getEnvInt should return default for invalid value, got %d", result)
	}
}

func TestGetEnvDuration_InvalidValue(t *testing.T) {
	os.Setenv("TEST_DURATION", "invalid")
	defer os.Unsetenv("TEST_DURATION")

	result := getEnvDuration("TEST_DURATION", 5*time.Minute)
	if result != 5*time.Minute {
		t.Errorf("getEnvDuration should return default for invalid value, got %v", result)
	}
}

func TestGetEnvBool_InvalidValue(t *testing.T) {
	os.Setenv("TEST_BOOL", "maybe")
	defer os.Unsetenv("TEST_BOOL")

	if !getEnvBool("TEST_BOOL", true) {
		t.Error("getEnvBool should return default for invalid value")
	}
}
