package web

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ocemtechies/memberhub/internal/contact"
	"github.com/ocemtechies/memberhub/internal/events"
	"github.com/ocemtechies/memberhub/internal/notifications"
	"github.com/ocemtechies/memberhub/pkg/logger"
)

type siteHandler struct {
	events        *events.Service
	contact       *contact.Service
	notifications notifications.Repository
	log           *slog.Logger
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (h *siteHandler) submitContact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	msg, err := h.contact.Submit(r.Context(), req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		if errors.Is(err, contact.ErrInvalidMessage) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.ErrorContext(r.Context(), "failed to store contact message", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to submit message")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"id":      msg.ID,
	})
}

func (h *siteHandler) listEvents(w http.ResponseWriter, r *http.Request) {
	list, err := h.events.ListUpcoming(r.Context(), 50)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to list events", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"events": list})
}

func (h *siteHandler) getEvent(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	event, err := h.events.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, events.ErrEventNotFound) {
			respondError(w, http.StatusNotFound, "Event not found")
			return
		}
		h.log.ErrorContext(r.Context(), "failed to load event", logger.Error(err))
		respondError(w, http.StatusInternalServerError, "Failed to load event")
		return
	}
	respondJSON(w, http.StatusOK, event)
}

func (h *siteHandler) registerForEvent(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	reg, err := h.events.Register(r.Context(), id, claims.IdentityID)
	if err != nil {
		switch {
		case errors.Is(err, events.ErrEventNotFound):
			respondError(w, http.StatusNotFound, "Event not found")
		case errors.Is(err, events.ErrAlreadyRegistered):
			respondError(w, http.StatusConflict, "You are already registered for this event")
		case errors.Is(err, events.ErrEventFull):
			respondError(w, http.StatusConflict, "Event is at capacity")
		default:
			h.log.ErrorContext(r.Context(), "failed to register for event",
				logger.Error(err), logger.UserID(claims.IdentityID))
			respondError(w, http.StatusInternalServerError, "Failed to register")
		}
		return
	}

	respondJSON(w, http.StatusCreated, reg)
}

func (h *siteHandler) cancelRegistration(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid event id")
		return
	}

	if err := h.events.Cancel(r.Context(), id, claims.IdentityID); err != nil {
		if errors.Is(err, events.ErrRegistrationNotFound) {
			respondError(w, http.StatusNotFound, "You are not registered for this event")
			return
		}
		h.log.ErrorContext(r.Context(), "failed to cancel registration",
			logger.Error(err), logger.UserID(claims.IdentityID))
		respondError(w, http.StatusInternalServerError, "Failed to cancel registration")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *siteHandler) listMyRegistrations(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	list, err := h.events.ListUserRegistrations(r.Context(), claims.IdentityID)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to list registrations",
			logger.Error(err), logger.UserID(claims.IdentityID))
		respondError(w, http.StatusInternalServerError, "Failed to list registrations")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"registrations": list})
}

func (h *siteHandler) listNotifications(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	list, err := h.notifications.ListByUser(r.Context(), claims.IdentityID, 50)
	if err != nil {
		h.log.ErrorContext(r.Context(), "failed to list notifications",
			logger.Error(err), logger.UserID(claims.IdentityID))
		respondError(w, http.StatusInternalServerError, "Failed to list notifications")
		return
	}

	unread, err := h.notifications.CountUnread(r.Context(), claims.IdentityID)
	if err != nil {
		unread = 0
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"notifications": list,
		"unread":        unread,
	})
}

func (h *siteHandler) markNotificationRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid notification id")
		return
	}

	if err := h.notifications.MarkRead(r.Context(), id, claims.IdentityID); err != nil {
		h.log.ErrorContext(r.Context(), "failed to mark notification read",
			logger.Error(err), logger.UserID(claims.IdentityID))
		respondError(w, http.StatusInternalServerError, "Failed to update notification")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *siteHandler) markAllNotificationsRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := h.notifications.MarkAllRead(r.Context(), claims.IdentityID); err != nil {
		h.log.ErrorContext(r.Context(), "failed to mark notifications read",
			logger.Error(err), logger.UserID(claims.IdentityID))
		respondError(w, http.StatusInternalServerError, "Failed to update notifications")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"success": true})
}

// pageStub renders a minimal placeholder page. The real frontend is a
// separate application; these exist so the access guard has page routes
// to protect.
func pageStub(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, "<!doctype html><title>%s | OCEM Techies</title><h1>%s</h1>",
			html.EscapeString(title), html.EscapeString(title))
	}
}
