package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atea-seattle/memberd/internal/config"
)

func applySecurityHeaders(cfg config.SecurityHeadersConfig) http.Header {
	handler := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/members", nil))
	return w.Header()
}

func TestSecurityHeaders(t *testing.T) {
	cfg := config.SecurityHeadersConfig{
		Enabled:            true,
		CSP:                "default-src 'none'; frame-ancestors 'none'",
		HSTSMaxAge:         63072000,
		FrameOptions:       "DENY",
		ContentTypeOptions: "nosniff",
		XSSProtection:      "0",
		ReferrerPolicy:     "no-referrer",
		PermissionsPolicy:  "camera=(), microphone=(), geolocation=()",
	}

	got := applySecurityHeaders(cfg)
	want := map[string]string{
		"Content-Security-Policy":   cfg.CSP,
		"Strict-Transport-Security": "max-age=63072000; includeSubDomains",
		"X-Frame-Options":           cfg.FrameOptions,
		"X-Content-Type-Options":    cfg.ContentTypeOptions,
		"X-XSS-Protection":          cfg.XSSProtection,
		"Referrer-Policy":           cfg.ReferrerPolicy,
		"Permissions-Policy":        cfg.PermissionsPolicy,
	}
	for name, value := range want {
		if g := got.Get(name); g != value {
			t.Errorf("%s = %q, want %q", name, g, value)
		}
	}
}

func TestSecurityHeaders_Disabled(t *testing.T) {
	got := applySecurityHeaders(config.SecurityHeadersConfig{
		Enabled: false,
		CSP:     "default-src 'none'",
	})
	if g := got.Get("Content-Security-Policy"); g != "" {
		t.Errorf("Content-Security-Policy = %q, want unset when disabled", g)
	}
}

func TestSecurityHeaders_SkipsEmptyValues(t *testing.T) {
	got := applySecurityHeaders(config.SecurityHeadersConfig{
		Enabled:      true,
		FrameOptions: "DENY",
	})
	if g := got.Get("X-Frame-Options"); g != "DENY" {
		t.Errorf("X-Frame-Options = %q, want DENY", g)
	}
	if g := got.Get("Content-Security-Policy"); g != "" {
		t.Errorf("Content-Security-Policy = %q, want unset when empty", g)
	}
	if g := got.Get("Strict-Transport-Security"); g != "" {
		t.Errorf("Strict-Transport-Security = %q, want unset when max age is 0", g)
	}
}
