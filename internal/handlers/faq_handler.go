package handlers

import (
	"net/http"

	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/services"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// FAQHandler exposes the admin CRUD surface and the public read surface for
// FAQs.
type FAQHandler struct {
	Service *services.FAQService
}

func NewFAQHandler(service *services.FAQService) *FAQHandler {
	return &FAQHandler{Service: service}
}

// ListPublicHandler handles GET /api/user/faqs. List reads never touch the
// view counter.
func (h *FAQHandler) ListPublicHandler(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.Service.ListPublic(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, faqs)
}

// GetPublicHandler handles GET /api/user/faqs/{id} and counts the view.
func (h *FAQHandler) GetPublicHandler(w http.ResponseWriter, r *http.Request) {
	faq, err := h.Service.GetPublic(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, faq)
}

// ListHandler handles GET /api/admin/faqs.
func (h *FAQHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.Service.ListAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, faqs)
}

// GetHandler handles GET /api/admin/faqs/{id}.
func (h *FAQHandler) GetHandler(w http.ResponseWriter, r *http.Request) {
	faq, err := h.Service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, faq)
}

// CreateHandler handles POST /api/admin/faqs.
func (h *FAQHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var faq models.FAQ
	if err := decodeJSON(r, &faq); err != nil {
		respondError(w, err)
		return
	}

	created, err := h.Service.Create(r.Context(), &faq)
	if err != nil {
		respondError(w, err)
		return
	}

	log.WithField("faqID", created.ID.Hex()).Info("FAQ created")
	respondJSON(w, http.StatusCreated, created)
}

// UpdateHandler handles PUT /api/admin/faqs/{id} with PATCH-merge semantics.
func (h *FAQHandler) UpdateHandler(w http.ResponseWriter, r *http.Request) {
	var patch models.FAQPatch
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

// DeleteHandler handles DELETE /api/admin/faqs/{id}.
func (h *FAQHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
