package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/phrazzld/postcraft-api/internal/api/shared"
	"github.com/phrazzld/postcraft-api/internal/domain"
	"github.com/phrazzld/postcraft-api/internal/service"
)

// ProfileService is the part of *service.ProfileService the handler uses.
type ProfileService interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, update service.ProfileUpdate) (*domain.Profile, error)
	Usage(ctx context.Context, userID uuid.UUID) (*domain.UsageQuota, error)
}

// ProfileHandler serves the authenticated user's profile and quota.
type ProfileHandler struct {
	profiles ProfileService
}

// NewProfileHandler creates a ProfileHandler.
func NewProfileHandler(profiles ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GetProfile handles GET /api/profile.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	profile, err := h.profiles.GetProfile(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toProfileResponse(profile))
}

// UpdateProfile handles PUT /api/profile.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req ProfileRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	profile, err := h.profiles.UpdateProfile(r.Context(), userID, service.ProfileUpdate{
		DisplayName:   req.DisplayName,
		PersonaPrompt: req.PersonaPrompt,
		APIKey:        req.APIKey,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toProfileResponse(profile))
}

// GetUsage handles GET /api/usage.
func (h *ProfileHandler) GetUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	quota, err := h.profiles.Usage(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load usage")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, toUsageResponse(quota))
}
