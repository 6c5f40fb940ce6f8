package handlers

import (
	"net/http"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/config"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/services"
	jwtutil "github.com/coastwatch-app/coastwatch/pkg/jwt"
	"github.com/coastwatch-app/coastwatch/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

// AuthHandler handles registration, login and the profile endpoint.
type AuthHandler struct {
	Service *services.UserService
	Config  *config.Config
}

func NewAuthHandler(service *services.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{Service: service, Config: cfg}
}

// RegisterHandler handles POST /api/auth/register.
func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, err := h.Service.Register(r.Context(), req)
	if err != nil {
		log.WithError(err).Warn("Registration failed")
		respondError(w, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.Role, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		respondError(w, apperr.Upstream("issue token", err))
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User registered successfully")
	respondJSON(w, http.StatusCreated, models.AuthResponse{Token: token, User: user.Public()})
}

// LoginHandler handles POST /api/auth/login.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, err := h.Service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.Role, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		respondError(w, apperr.Upstream("issue token", err))
		return
	}

	log.WithField("userID", user.ID.Hex()).Info("User logged in successfully")
	respondJSON(w, http.StatusOK, models.AuthResponse{Token: token, User: user.Public()})
}

// ProfileHandler handles GET /api/auth/profile.
func (h *AuthHandler) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		respondError(w, apperr.ErrUnauthorized)
		return
	}

	user, err := h.Service.GetUser(r.Context(), claims.UserID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
