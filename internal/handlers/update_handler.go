package handlers

import (
	"net/http"

	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/services"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// UpdateHandler exposes the admin CRUD surface and the public read surface
// for announcements.
type UpdateHandler struct {
	Service *services.UpdateService
}

func NewUpdateHandler(service *services.UpdateService) *UpdateHandler {
	return &UpdateHandler{Service: service}
}

// ListPublicHandler handles GET /api/user/updates. Auto-expired records are
// excluded here but still visible on the admin list.
func (h *UpdateHandler) ListPublicHandler(w http.ResponseWriter, r *http.Request) {
	views, err := h.Service.ListPublic(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, views)
}

// ListHandler handles GET /api/admin/updates.
func (h *UpdateHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	updates, err := h.Service.ListAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updates)
}

// GetHandler handles GET /api/admin/updates/{id}.
func (h *UpdateHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	update, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, update)
}

// CreateHandler handles POST /api/admin/updates.
func (h *UpdateHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var update models.Update
	if err := decodeJSON(r, &update); err != nil {
		respondError(w, err)
		return
	}

	created, err := h.Service.Create(r.Context(), &update)
	if err != nil {
		respondError(w, err)
		return
	}

	log.WithField("updateID", created.ID.Hex()).Info("Update created")
	respondJSON(w, http.StatusCreated, created)
}

// UpdateHandler handles PUT /api/admin/updates/{id} with PATCH-merge
// semantics.
func (h *UpdateHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var patch models.UpdatePatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, err)
		return
	}

	updated, err := h.Service.Update(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

// DeleteHandler handles DELETE /api/admin/updates/{id}.
func (h *UpdateHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
