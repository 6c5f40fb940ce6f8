package handlers

import (
	"net/http"

	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/services"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

// UserHandler exposes the admin CRUD surface for user accounts. Role
// enforcement happens in the router via RequireRole.
type UserHandler struct {
	Service *services.UserService
}

func NewUserHandler(service *services.UserService) *UserHandler {
	return &UserHandler{Service: service}
}

// ListUsersHandler handles GET /api/admin/users.
func (h *UserHandler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// GetUserHandler handles GET /api/admin/users/{id}.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.Service.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// CreateUserHandler handles POST /api/admin/users. Runs through the same
// registration rules as the public endpoint.
func (h *UserHandler) CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, err := h.Service.Register(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User created by admin")
	respondJSON(w, http.StatusCreated, user)
}

// UpdateUserHandler handles PUT /api/admin/users/{id} with PATCH-merge
// semantics: absent fields are left untouched.
func (h *UserHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		respondError(w, err)
		return
	}

	user, err := h.Service.UpdateUser(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// DeleteUserHandler handles DELETE /api/admin/users/{id}.
func (h *UserHandler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}
