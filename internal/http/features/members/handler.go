package members

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/atea-seattle/memberd/internal/domain"
	"github.com/atea-seattle/memberd/internal/http/features/activation"
	"github.com/atea-seattle/memberd/internal/http/middleware"
	"github.com/atea-seattle/memberd/internal/httputil"
	"github.com/atea-seattle/memberd/internal/membership"
)

// Handler handles member self-service and the public directory.
type Handler struct {
	logger     *slog.Logger
	membership *membership.Service
}

// NewHandler creates a new members handler.
func NewHandler(logger *slog.Logger, members *membership.Service) *Handler {
	return &Handler{logger: logger, membership: members}
}

// ProfileResponse represents a member profile.
type ProfileResponse struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"user_id"`
	BusinessName        string     `json:"business_name"`
	BusinessType        string     `json:"business_type,omitempty"`
	Industry            string     `json:"industry,omitempty"`
	BusinessDescription string     `json:"business_description,omitempty"`
	Website             string     `json:"website,omitempty"`
	Phone               string     `json:"phone,omitempty"`
	BusinessEmail       string     `json:"business_email,omitempty"`
	AddressLine1        string     `json:"address_line_1,omitempty"`
	AddressLine2        string     `json:"address_line_2,omitempty"`
	City                string     `json:"city,omitempty"`
	State               string     `json:"state,omitempty"`
	ZipCode             string     `json:"zip_code,omitempty"`
	Country             string     `json:"country,omitempty"`
	YearEstablished     *int       `json:"year_established,omitempty"`
	EmployeesCount      string     `json:"employees_count,omitempty"`
	ServicesProducts    string     `json:"services_products,omitempty"`
	TargetMarket        string     `json:"target_market,omitempty"`
	Status              string     `json:"status"`
	RejectionReason     *string    `json:"rejection_reason,omitempty"`
	ApprovedAt          *time.Time `json:"approved_at,omitempty"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

func ToProfileResponse(p *domain.MemberProfile) ProfileResponse {
	return ProfileResponse{
		ID:                  p.ID.String(),
		UserID:              p.UserID.String(),
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
		Status:              string(p.Status),
		RejectionReason:     p.RejectionReason,
		ApprovedAt:          p.ApprovedAt,
		UpdatedAt:           p.UpdatedAt,
	}
}

// GetProfile returns the caller's own profile.
// GET /v1/me/profile
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.membership.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			httputil.Error(w, http.StatusNotFound, "profile not found")
			return
		}
		h.logger.Error("failed to load profile", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	httputil.JSON(w, http.StatusOK, ToProfileResponse(profile))
}

// UpdateProfile stores edits to the caller's profile. Editing a rejected
// profile resubmits it for review.
// PUT /v1/me/profile
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var payload activation.ProfilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if payload.BusinessName == "" {
		httputil.Error(w, http.StatusBadRequest, "business_name is required")
		return
	}

	profile, err := h.membership.UpdateProfile(r.Context(), userID, payload.Input())
	if err != nil {
		if errors.Is(err, domain.ErrUserDisabled) {
			httputil.Error(w, http.StatusForbidden, "account has been disabled")
			return
		}
		h.logger.Error("failed to update profile", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	httputil.JSON(w, http.StatusOK, ToProfileResponse(profile))
}

// SubmitProfile moves the caller's profile into review.
// POST /v1/me/profile/submit
func (h *Handler) SubmitProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		httputil.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	profile, err := h.membership.SubmitForApproval(r.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrProfileNotFound) {
			httputil.Error(w, http.StatusNotFound, "profile not found")
			return
		}
		if errors.Is(err, domain.ErrInvalidTransition) {
			httputil.Error(w, http.StatusConflict, "profile cannot be submitted from its current status")
			return
		}
		h.logger.Error("failed to submit profile", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to submit profile")
		return
	}

	httputil.JSON(w, http.StatusOK, ToProfileResponse(profile))
}

// DirectoryEntry is the public view of an approved member.
type DirectoryEntry struct {
	BusinessName        string `json:"business_name"`
	Industry            string `json:"industry,omitempty"`
	BusinessDescription string `json:"business_description,omitempty"`
	Website             string `json:"website,omitempty"`
	City                string `json:"city,omitempty"`
	State               string `json:"state,omitempty"`
	ServicesProducts    string `json:"services_products,omitempty"`
}

// Directory lists approved members. Public, paginated.
// GET /v1/members
func (h *Handler) Directory(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	profiles, err := h.membership.ApprovedProfiles(r.Context(), limit, offset)
	if err != nil {
		h.logger.Error("failed to list members", "error", err)
		httputil.Error(w, http.StatusInternalServerError, "failed to list members")
		return
	}

	entries := make([]DirectoryEntry, 0, len(profiles))
	for _, p := range profiles {
		entries = append(entries, DirectoryEntry{
			BusinessName:        p.BusinessName,
			Industry:            p.Industry,
			BusinessDescription: p.BusinessDescription,
			Website:             p.Website,
			City:                p.City,
			State:               p.State,
			ServicesProducts:    p.ServicesProducts,
		})
	}

	httputil.JSON(w, http.StatusOK, map[string]any{"members": entries})
}

func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
