package activation

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/atea-seattle/memberd/internal/activation"
	"github.com/atea-seattle/memberd/internal/auth"
	"github.com/atea-seattle/memberd/internal/domain"
	"github.com/atea-seattle/memberd/internal/httputil"
	"github.com/atea-seattle/memberd/internal/membership"
)

// Handler handles the public activation link endpoints.
type Handler struct {
	logger     *slog.Logger
	activation *activation.Service
	membership *membership.Service
}

// NewHandler creates a new activation handler.
func NewHandler(logger *slog.Logger, act *activation.Service, members *membership.Service) *Handler {
	return &Handler{logger: logger, activation: act, membership: members}
}

// CheckResponse reports whether a link can still be used and why not.
type CheckResponse struct {
	Status    string     `json:"status"`
	Email     string     `json:"email,omitempty"`
	Name      string     `json:"name,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Check classifies an activation token without consuming it.
// GET /v1/activation/{token}
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	result, err := h.activation.Validate(r.Context(), token)
	if err != nil {
		h.logger.Error("link validation failed", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to check activation link")
		return
	}

	resp := CheckResponse{Status: string(result.Kind)}
	if result.Link != nil {
		resp.Email = result.Link.Email
		expires := result.Link.ExpiresAt
		resp.ExpiresAt = &expires
	}
	if result.Kind == domain.LinkNotFound {
		httputil.JSON(w, http.StatusNotFound, resp)
		return
	}
	httputil.JSON(w, http.StatusOK, resp)
}

// ActivateResponse reports the activated account.
type ActivateResponse struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// Activate consumes a token and marks the account active. This is the
// short-path flow with no profile submission.
// POST /v1/activation/{token}
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	user, err := h.activation.Activate(r.Context(), token)
	if err != nil {
		writeLinkError(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, ActivateResponse{
		UserID: user.ID.String(),
		Email:  user.Email,
		Status: string(user.Status),
	})
}

// ResendRequest asks for a fresh activation link.
type ResendRequest struct {
	Email string `json:"email"`
}

// Resend issues and emails a replacement link for an unfinished signup.
// POST /v1/activation/resend
func (h *Handler) Resend(w http.ResponseWriter, r *http.Request) {
	var req ResendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		httputil.Error(w, http.StatusBadRequest, "email is required")
		return
	}

	_, err := h.membership.ResendInvitation(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound):
			// Same response as success so account emails cannot be probed.
		case errors.Is(err, domain.ErrAlreadyActivated):
			httputil.Error(w, http.StatusConflict, "account is already activated")
			return
		case errors.Is(err, domain.ErrUserDisabled):
			httputil.Error(w, http.StatusForbidden, "account has been disabled")
			return
		case errors.Is(err, domain.ErrTooSoon):
			httputil.Error(w, http.StatusTooManyRequests, "a link was sent recently. please wait before requesting another")
			return
		default:
			h.logger.Error("resend failed", "error", err)
			httputil.Error(w, http.StatusInternalServerError, "failed to resend activation link")
			return
		}
	}

	httputil.JSON(w, http.StatusOK, map[string]string{
		"message": "if the account exists, a new activation link has been sent",
	})
}

// SignupRequest completes an invited member's signup: credentials plus the
// business profile, in one step.
type SignupRequest struct {
	Password string         `json:"password"`
	Profile  ProfilePayload `json:"profile"`
}

// ProfilePayload carries the business profile fields of a signup or profile
// update request.
type ProfilePayload struct {
	BusinessName        string `json:"business_name"`
	BusinessType        string `json:"business_type"`
	Industry            string `json:"industry"`
	BusinessDescription string `json:"business_description"`
	Website             string `json:"website"`
	Phone               string `json:"phone"`
	BusinessEmail       string `json:"business_email"`
	AddressLine1        string `json:"address_line_1"`
	AddressLine2        string `json:"address_line_2"`
	City                string `json:"city"`
	State               string `json:"state"`
	ZipCode             string `json:"zip_code"`
	Country             string `json:"country"`
	YearEstablished     *int   `json:"year_established,omitempty"`
	EmployeesCount      string `json:"employees_count"`
	ServicesProducts    string `json:"services_products"`
	TargetMarket        string `json:"target_market"`
}

// Input converts the payload to the service input type.
func (p *ProfilePayload) Input() *membership.ProfileInput {
	return &membership.ProfileInput{
		BusinessName:        p.BusinessName,
		BusinessType:        p.BusinessType,
		Industry:            p.Industry,
		BusinessDescription: p.BusinessDescription,
		Website:             p.Website,
		Phone:               p.Phone,
		BusinessEmail:       p.BusinessEmail,
		AddressLine1:        p.AddressLine1,
		AddressLine2:        p.AddressLine2,
		City:                p.City,
		State:               p.State,
		ZipCode:             p.ZipCode,
		Country:             p.Country,
		YearEstablished:     p.YearEstablished,
		EmployeesCount:      p.EmployeesCount,
		ServicesProducts:    p.ServicesProducts,
		TargetMarket:        p.TargetMarket,
	}
}

// SignupResponse reports the account after signup completion.
type SignupResponse struct {
	UserID        string `json:"user_id"`
	Email         string `json:"email"`
	Status        string `json:"status"`
	ProfileStatus string `json:"profile_status"`
}

// Signup consumes a signup token, sets the password, and stores the profile.
// POST /v1/signup/{token}
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Password == "" {
		httputil.Error(w, http.StatusBadRequest, "password is required")
		return
	}
	if req.Profile.BusinessName == "" {
		httputil.Error(w, http.StatusBadRequest, "business_name is required")
		return
	}

	user, err := h.membership.CompleteSignup(r.Context(), token, req.Password, req.Profile.Input())
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooShort) {
			httputil.Error(w, http.StatusBadRequest, "password must be at least 6 characters")
			return
		}
		writeLinkError(w, err)
		return
	}

	httputil.JSON(w, http.StatusCreated, SignupResponse{
		UserID:        user.ID.String(),
		Email:         user.Email,
		Status:        string(user.Status),
		ProfileStatus: string(domain.ProfileApprovalPending),
	})
}

// writeLinkError maps activation link failures to HTTP statuses.
func writeLinkError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrLinkNotFound):
		httputil.Error(w, http.StatusNotFound, "activation link not found")
	case errors.Is(err, domain.ErrLinkAlreadyUsed), errors.Is(err, domain.ErrConcurrentConsumption):
		httputil.Error(w, http.StatusConflict, "activation link has already been used")
	case errors.Is(err, domain.ErrLinkExpired):
		httputil.Error(w, http.StatusGone, "activation link has expired")
	case errors.Is(err, domain.ErrLinkInactive):
		httputil.Error(w, http.StatusGone, "activation link is no longer active")
	case errors.Is(err, domain.ErrUserDisabled):
		httputil.Error(w, http.StatusForbidden, "account has been disabled")
	default:
		httputil.Error(w, http.StatusInternalServerError, "activation failed")
	}
}
