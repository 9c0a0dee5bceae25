package gmailauth

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/atea-seattle/memberd/internal/gmail"
	"github.com/atea-seattle/memberd/internal/httputil"
)

// Handler serves the one-time Gmail OAuth bootstrap. An operator visits the
// auth URL, consents, and the callback hands back the refresh token to put in
// GOOGLE_REFRESH_TOKEN. Nothing is persisted here.
type Handler struct {
	logger *slog.Logger
	config gmail.Config
	tokens *gmail.TokenManager
}

// NewHandler creates a new gmail auth handler.
func NewHandler(logger *slog.Logger, config gmail.Config, tokens *gmail.TokenManager) *Handler {
	return &Handler{logger: logger, config: config, tokens: tokens}
}

// AuthURL returns the Google consent URL to start the handshake.
// GET /v1/admin/gmail/auth-url
func (h *Handler) AuthURL(w http.ResponseWriter, r *http.Request) {
	if h.config.ClientID == "" || h.config.ClientSecret == "" || h.config.RedirectURI == "" {
		httputil.Error(w, http.StatusConflict, "google oauth client is not configured")
		return
	}

	state := uuid.NewString()
	httputil.JSON(w, http.StatusOK, map[string]string{
		"auth_url": h.tokens.AuthURL(state),
		"state":    state,
	})
}

// Callback exchanges the authorization code for tokens and returns the
// refresh token for the operator to store.
// GET /v1/admin/gmail/callback
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		httputil.Error(w, http.StatusBadGateway, "google authorization failed: "+errMsg)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		httputil.Error(w, http.StatusBadRequest, "code query parameter is required")
		return
	}

	grant, err := h.tokens.ExchangeCode(r.Context(), code)
	if err != nil {
		h.logger.Error("authorization code exchange failed", "error", err)
		httputil.Error(w, http.StatusBadGateway, "failed to exchange authorization code")
		return
	}

	if grant.RefreshToken == "" {
		httputil.Error(w, http.StatusConflict, "google did not return a refresh token; revoke access and try again")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{
		"refresh_token": grant.RefreshToken,
		"expires_in":    grant.ExpiresIn,
		"message":       "store the refresh token in GOOGLE_REFRESH_TOKEN and restart",
	})
}

// Status reports which Gmail settings are present.
// GET /v1/admin/gmail/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	httputil.JSON(w, http.StatusOK, h.config.Report())
}
