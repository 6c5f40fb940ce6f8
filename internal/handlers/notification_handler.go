package handlers

import (
	"net/http"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/services"
	"github.com/coastwatch-app/coastwatch/pkg/middleware"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationHandler exposes the read-side of notifications. Creation only
// happens inside the services.
type NotificationHandler struct {
	Service *services.NotificationService
}

func NewNotificationHandler(service *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{Service: service}
}

// ListHandler handles GET /api/notifications.
func (h *NotificationHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, apperr.ErrUnauthorized)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		respondError(w, apperr.Validationf("invalid user ID in token"))
		return
	}

	notifications, err := h.Service.ListForUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, notifications)
}

// MarkAsReadHandler handles POST /api/notifications/{id}/read. The service
// rejects callers that do not own the notification.
func (h *NotificationHandler) MarkAsReadHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, apperr.ErrUnauthorized)
		return
	}

	notifID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, apperr.Validationf("invalid notification ID"))
		return
	}

	if err := h.Service.MarkAsRead(r.Context(), notifID, claims.UserID, claims.Role); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// DeleteHandler handles DELETE /api/notifications/{id}. Owner or admin only;
// broadcasts can only be removed by admins.
func (h *NotificationHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, apperr.ErrUnauthorized)
		return
	}

	notifID, err := primitive.ObjectIDFromHex(mux.Vars(r)["id"])
	if err != nil {
		respondError(w, apperr.Validationf("invalid notification ID"))
		return
	}

	if err := h.Service.Delete(r.Context(), notifID, claims.UserID, claims.Role); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
