package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ocemtechies/memberhub/internal/auth"
	"github.com/ocemtechies/memberhub/internal/profile"
	"github.com/ocemtechies/memberhub/pkg/logger"
)

type profileHandler struct {
	svc *auth.Service
	log *slog.Logger
}

func (h *profileHandler) get(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	prof, err := h.svc.FetchProfile(r.Context(), claims.IdentityID)
	if err != nil {
		if errors.Is(err, profile.ErrProfileNotFound) {
			respondError(w, http.StatusNotFound, auth.UserMessage(auth.ErrNoUserProfile))
			return
		}
		h.log.ErrorContext(r.Context(), "failed to fetch profile",
			logger.Error(err), logger.UserID(claims.IdentityID))
		respondError(w, http.StatusInternalServerError, "Failed to fetch profile")
		return
	}

	respondJSON(w, http.StatusOK, prof)
}

type updateProfileRequest struct {
	FirstName               *string                          `json:"first_name,omitempty"`
	LastName                *string                          `json:"last_name,omitempty"`
	StudentID               *string                          `json:"student_id,omitempty"`
	Faculty                 *string                          `json:"faculty,omitempty"`
	YearOfStudy             *int                             `json:"year_of_study,omitempty"`
	Phone                   *string                          `json:"phone,omitempty"`
	ProfileImageURL         *string                          `json:"profile_image_url,omitempty"`
	Bio                     *string                          `json:"bio,omitempty"`
	NotificationPreferences *profile.NotificationPreferences `json:"notification_preferences,omitempty"`
}

func (h *profileHandler) update(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.svc.UpdateProfile(r.Context(), claims.IdentityID, profile.UpdateParams{
		FirstName:               req.FirstName,
		LastName:                req.LastName,
		StudentID:               req.StudentID,
		Faculty:                 req.Faculty,
		YearOfStudy:             req.YearOfStudy,
		Phone:                   req.Phone,
		ProfileImageURL:         req.ProfileImageURL,
		Bio:                     req.Bio,
		NotificationPreferences: req.NotificationPreferences,
	})
	if err != nil {
		switch {
		case errors.Is(err, profile.ErrEmptyUpdate):
			respondError(w, http.StatusBadRequest, "No fields to update")
		case errors.Is(err, profile.ErrProfileNotFound):
			respondError(w, http.StatusNotFound, auth.UserMessage(auth.ErrNoUserProfile))
		default:
			h.log.ErrorContext(r.Context(), "failed to update profile",
				logger.Error(err), logger.UserID(claims.IdentityID))
			respondError(w, http.StatusInternalServerError, "Failed to update profile")
		}
		return
	}

	respondJSON(w, http.StatusOK, updated)
}
