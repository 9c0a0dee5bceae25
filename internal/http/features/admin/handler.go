package admin

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/atea-seattle/memberd/internal/activation"
	"github.com/atea-seattle/memberd/internal/auth"
	"github.com/atea-seattle/memberd/internal/domain"
	"github.com/atea-seattle/memberd/internal/http/features/members"
	"github.com/atea-seattle/memberd/internal/http/middleware"
	"github.com/atea-seattle/memberd/internal/httputil"
	"github.com/atea-seattle/memberd/internal/membership"
	"github.com/atea-seattle/memberd/internal/repository"
)

// Handler handles the administrator endpoints.
type Handler struct {
	logger     *slog.Logger
	membership *membership.Service
	activation *activation.Service
}

// NewHandler creates a new admin handler.
func NewHandler(logger *slog.Logger, members *membership.Service, act *activation.Service) *Handler {
	return &Handler{logger: logger, membership: members, activation: act}
}

// InviteRequest creates an invited account.
type InviteRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// InviteResponse reports the created invitation.
type InviteResponse struct {
	UserID       string    `json:"user_id"`
	Email        string    `json:"email"`
	MembershipID string    `json:"membership_id"`
	SignupURL    string    `json:"signup_url"`
	ExpiresAt    time.Time `json:"expires_at"`
	EmailChannel string    `json:"email_channel,omitempty"`
	EmailSent    bool      `json:"email_sent"`
}

// Invite creates an account and emails a single-use signup link.
// POST /v1/admin/members/invite
func (h *Handler) Invite(w http.ResponseWriter, r *http.Request) {
	var req InviteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" {
		httputil.Error(w, http.StatusBadRequest, "name and email are required")
		return
	}

	inviter := "ATEA Seattle"
	if claims, ok := middleware.GetClaims(r.Context()); ok && claims.Name != "" {
		inviter = claims.Name
	}

	result, err := h.membership.Invite(r.Context(), req.Name, req.Email, inviter)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidEmail) {
			httputil.Error(w, http.StatusBadRequest, "invalid email address")
			return
		}
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			httputil.Error(w, http.StatusConflict, "a user with this email already exists")
			return
		}
		h.logger.Error("invite failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to create invitation")
		return
	}

	httputil.JSON(w, http.StatusCreated, InviteResponse{
		UserID:       result.User.ID.String(),
		Email:        result.User.Email,
		MembershipID: result.MembershipID,
		SignupURL:    result.SignupURL,
		ExpiresAt:    result.Link.ExpiresAt,
		EmailChannel: result.EmailChannel,
		EmailSent:    result.EmailChannel != "",
	})
}

// UserResponse represents an account in admin listings.
type UserResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	Status        string    `json:"status"`
	DerivedStatus string    `json:"derived_status"`
	CreatedAt     time.Time `json:"created_at"`
}

// ListUsers lists accounts, filterable by status and search term.
// GET /v1/admin/users
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.ListFilter{
		Status: domain.UserStatus(q.Get("status")),
		Role:   q.Get("role"),
		Search: q.Get("search"),
		Limit:  queryInt(q.Get("limit"), 50),
		Offset: queryInt(q.Get("offset"), 0),
	}

	users, err := h.membership.Users(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list users", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		profile, _ := h.membership.Profile(r.Context(), u.ID)
		out = append(out, UserResponse{
			ID:            u.ID.String(),
			Name:          u.Name,
			Email:         u.Email,
			Role:          u.Role,
			Status:        string(u.Status),
			DerivedStatus: string(u.DerivedStatus(profile)),
			CreatedAt:     u.CreatedAt,
		})
	}

	httputil.JSON(w, http.StatusOK, map[string]any{"users": out})
}

// GetUser returns one account with its profile, if any.
// GET /v1/admin/users/{id}
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	user, profile, err := h.membership.User(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to load user", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	resp := map[string]any{
		"user": UserResponse{
			ID:            user.ID.String(),
			Name:          user.Name,
			Email:         user.Email,
			Role:          user.Role,
			Status:        string(user.Status),
			DerivedStatus: string(user.DerivedStatus(profile)),
			CreatedAt:     user.CreatedAt,
		},
	}
	if profile != nil {
		resp["profile"] = members.ToProfileResponse(profile)
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// UpdateStatusRequest changes an account's lifecycle status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateUserStatus applies an admin status change.
// PATCH /v1/admin/users/{id}/status
func (h *Handler) UpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status := domain.UserStatus(req.Status)
	switch status {
	case domain.UserPending, domain.UserSignupPending, domain.UserApprovalPending,
		domain.UserActive, domain.UserDisabled:
	default:
		httputil.Error(w, http.StatusBadRequest, "invalid status")
		return
	}

	user, err := h.membership.SetUserStatus(r.Context(), userID, status)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "user not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidTransition) {
			httputil.Error(w, http.StatusConflict, "status change not allowed from the current status")
			return
		}
		h.logger.Error("failed to update user status", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to update user status")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{
		"id":     user.ID.String(),
		"status": string(user.Status),
	})
}

// DeleteUser removes an account and everything that cascades from it.
// DELETE /v1/admin/users/{id}
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	if err := h.membership.DeleteUser(r.Context(), userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to delete user", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	httputil.NoContent(w)
}

// LinkResponse represents an activation link in admin listings.
type LinkResponse struct {
	ID        string     `json:"id"`
	Token     string     `json:"token"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	SentAt    *time.Time `json:"sent_at,omitempty"`
}

// ListLinks returns a user's activation link history.
// GET /v1/admin/users/{id}/links
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	links, err := h.activation.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list links", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to list activation links")
		return
	}

	now := time.Now()
	out := make([]LinkResponse, 0, len(links))
	for _, l := range links {
		out = append(out, LinkResponse{
			ID:        l.ID.String(),
			Token:     l.Token,
			Status:    string(l.Status(now)),
			CreatedAt: l.CreatedAt,
			ExpiresAt: l.ExpiresAt,
			UsedAt:    l.UsedAt,
			SentAt:    l.SentAt,
		})
	}

	httputil.JSON(w, http.StatusOK, map[string]any{"links": out})
}

// GenerateLink issues a fresh link without emailing it, for when the admin
// wants to hand the URL over directly. The previous link is superseded.
// POST /v1/admin/users/{id}/links
func (h *Handler) GenerateLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	link, err := h.activation.Issue(r.Context(), userID, "")
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "user not found")
			return
		}
		if errors.Is(err, domain.ErrUserDisabled) {
			httputil.Error(w, http.StatusForbidden, "account has been disabled")
			return
		}
		h.logger.Error("failed to generate link", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to generate activation link")
		return
	}

	httputil.JSON(w, http.StatusCreated, map[string]any{
		"token":      link.Token,
		"signup_url": h.membership.SignupURL(link.Token),
		"expires_at": link.ExpiresAt,
	})
}

// ResendLink issues a replacement link and emails it.
// POST /v1/admin/users/{id}/links/resend
func (h *Handler) ResendLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	user, _, err := h.membership.User(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			httputil.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("failed to load user", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to resend activation link")
		return
	}

	result, err := h.membership.ResendInvitation(r.Context(), user.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAlreadyActivated):
			httputil.Error(w, http.StatusConflict, "account is already activated")
		case errors.Is(err, domain.ErrUserDisabled):
			httputil.Error(w, http.StatusForbidden, "account has been disabled")
		case errors.Is(err, domain.ErrTooSoon):
			httputil.Error(w, http.StatusTooManyRequests, "a link was sent recently. please wait before sending another")
		default:
			h.logger.Error("failed to resend link", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "failed to resend activation link")
		}
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]any{
		"signup_url":    result.SignupURL,
		"expires_at":    result.Link.ExpiresAt,
		"email_channel": result.EmailChannel,
		"email_sent":    result.EmailChannel != "",
	})
}

// DeactivateLink disables an unused link.
// DELETE /v1/admin/links/{token}
func (h *Handler) DeactivateLink(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	if err := h.activation.Deactivate(r.Context(), token); err != nil {
		if errors.Is(err, domain.ErrLinkNotFound) {
			httputil.Error(w, http.StatusNotFound, "activation link not found")
			return
		}
		h.logger.Error("failed to deactivate link", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to deactivate activation link")
		return
	}

	httputil.NoContent(w)
}

// PendingProfiles lists profiles awaiting review.
// GET /v1/admin/profiles/pending
func (h *Handler) PendingProfiles(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	profiles, err := h.membership.PendingProfiles(r.Context(),
		queryInt(q.Get("limit"), 50), queryInt(q.Get("offset"), 0))
	if err != nil {
		h.logger.Error("failed to list pending profiles", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to list pending profiles")
		return
	}

	out := make([]members.ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, members.ToProfileResponse(p))
	}
	httputil.JSON(w, http.StatusOK, map[string]any{"profiles": out})
}

// ApproveProfile approves a profile and activates the member.
// POST /v1/admin/profiles/{id}/approve
func (h *Handler) ApproveProfile(w http.ResponseWriter, r *http.Request) {
	profileID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	approverID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.membership.Approve(r.Context(), profileID, approverID)
	if err != nil {
		writeProfileError(w, h.logger, err, "approve")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{
		"id":     profile.ID.String(),
		"status": string(profile.Status),
	})
}

// RejectRequest carries the rejection reason shown to the member.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// RejectProfile rejects a profile with a reason.
// POST /v1/admin/profiles/{id}/reject
func (h *Handler) RejectProfile(w http.ResponseWriter, r *http.Request) {
	profileID, ok := parseID(w, r, "id")
	if !ok {
		return
	}

	var req RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Reason == "" {
		httputil.Error(w, http.StatusBadRequest, "reason is required")
		return
	}

	profile, err := h.membership.Reject(r.Context(), profileID, req.Reason)
	if err != nil {
		writeProfileError(w, h.logger, err, "reject")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]string{
		"id":     profile.ID.String(),
		"status": string(profile.Status),
	})
}

// Dashboard returns the onboarding pipeline counts.
// GET /v1/admin/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.membership.DashboardStats(r.Context())
	if err != nil {
		h.logger.Error("failed to load dashboard stats", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}

	httputil.JSON(w, http.StatusOK, stats)
}

func writeProfileError(w http.ResponseWriter, logger *slog.Logger, err error, action string) {
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		httputil.Error(w, http.StatusNotFound, "profile not found")
	case errors.Is(err, domain.ErrInvalidTransition):
		httputil.Error(w, http.StatusConflict, "profile is not awaiting review")
	default:
		logger.Error("profile review failed", "action", action, "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to "+action+" profile")
	}
}

func parseID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
