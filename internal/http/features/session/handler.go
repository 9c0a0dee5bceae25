package session

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/atea-seattle/memberd/internal/auth"
	"github.com/atea-seattle/memberd/internal/domain"
	"github.com/atea-seattle/memberd/internal/httputil"
)

// Handler handles login endpoints.
type Handler struct {
	logger   *slog.Logger
	sessions *auth.SessionService
}

// NewHandler creates a new session handler.
func NewHandler(logger *slog.Logger, sessions *auth.SessionService) *Handler {
	return &Handler{logger: logger, sessions: sessions}
}

// LoginRequest represents a login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse represents a token response.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	UserID      string `json:"user_id"`
	Role        string `json:"role"`
	Status      string `json:"status"`
}

// Login handles email/password authentication.
// POST /v1/auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	token, user, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			httputil.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		if errors.Is(err, domain.ErrUserDisabled) {
			httputil.Error(w, http.StatusForbidden, "account has been disabled")
			return
		}
		h.logger.Error("login failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "login failed")
		return
	}

	httputil.JSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.sessions.AccessTokenTTL().Seconds()),
		UserID:      user.ID.String(),
		Role:        user.Role,
		Status:      string(user.Status),
	})
}
