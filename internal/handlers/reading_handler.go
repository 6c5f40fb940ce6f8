package handlers

import (
	"net/http"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/services"
	"github.com/coastwatch-app/coastwatch/pkg/middleware"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ReadingHandler exposes reading submission for citizens and the report
// surface for admins.
type ReadingHandler struct {
	Service *services.ReadingService
}

func NewReadingHandler(service *services.ReadingService) *ReadingHandler {
	return &ReadingHandler{Service: service}
}

// CreateHandler handles POST /api/readings. The owner always comes from the
// token, never the payload.
func (h *ReadingHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
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

	var req models.ReadingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	created, err := h.Service.Create(r.Context(), userID, req)
	if err != nil {
		respondError(w, err)
		return
	}

	log.WithFields(log.Fields{
		"readingID": created.ID.Hex(),
		"userID":    claims.UserID,
	}).Info("Reading submitted")
	respondJSON(w, http.StatusCreated, created)
}

// ListOwnHandler handles GET /api/readings.
func (h *ReadingHandler) ListOwnHandler(w http.ResponseWriter, r *http.Request) {
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

	readings, err := h.Service.ListForUser(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, readings)
}

// DeleteHandler handles DELETE /api/readings/{id}. Owner or admin only.
func (h *ReadingHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, apperr.ErrUnauthorized)
		return
	}

	if err := h.Service.Delete(r.Context(), mux.Vars(r)["id"], claims.UserID, claims.Role); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// AdminListHandler handles GET /api/admin/readings.
func (h *ReadingHandler) AdminListHandler(w http.ResponseWriter, r *http.Request) {
	readings, err := h.Service.ListAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, readings)
}

// AdminGetHandler handles GET /api/admin/readings/{id}.
func (h *ReadingHandler) AdminGetHandler(w http.ResponseWriter, r *http.Request) {
	reading, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, reading)
}
