package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/config"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/services"
	jwtutil "github.com/coastwatch-app/coastwatch/pkg/jwt"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WebAppPayload is the envelope posted by the Telegram web app. It is a
// second entry point into the same services; validation rules are shared,
// never duplicated.
type WebAppPayload struct {
	Type  string          `json:"type"`
	Token string          `json:"token,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// WebAppHandler dispatches Telegram web_app_data payloads on their type
// discriminator.
type WebAppHandler struct {
	Users    *services.UserService
	Readings *services.ReadingService
	Notifs   *services.NotificationService
	Config   *config.Config
}

func NewWebAppHandler(users *services.UserService, readings *services.ReadingService, notifs *services.NotificationService, cfg *config.Config) *WebAppHandler {
	return &WebAppHandler{Users: users, Readings: readings, Notifs: notifs, Config: cfg}
}

// DispatchHandler handles POST /api/telegram/webapp.
func (h *WebAppHandler) DispatchHandler(w http.ResponseWriter, r *http.Request) {
	var payload WebAppPayload
	if err := decodeJSON(r, &payload); err != nil {
		respondError(w, err)
		return
	}

	log.WithField("type", payload.Type).Info("Web app payload received")

	switch payload.Type {
	case "admin_login":
		h.login(w, r, payload, true)
	case "citizen_login":
		h.login(w, r, payload, false)
	case "profile":
		h.profile(w, r, payload)
	case "reading":
		h.reading(w, r, payload)
	case "training_completed":
		h.trainingCompleted(w, r, payload)
	default:
		respondError(w, apperr.Validationf("unknown payload type %q", payload.Type))
	}
}

func (h *WebAppHandler) login(w http.ResponseWriter, r *http.Request, payload WebAppPayload, adminOnly bool) {
	var creds models.LoginRequest
	if err := json.Unmarshal(payload.Data, &creds); err != nil {
		respondError(w, apperr.Validationf("invalid login payload"))
		return
	}

	user, err := h.Users.Authenticate(r.Context(), creds.Email, creds.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	if adminOnly && user.Role != models.RoleAdmin {
		respondError(w, apperr.Forbiddenf("admin access required"))
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.Role, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		respondError(w, apperr.Upstream("issue token", err))
		return
	}
	respondJSON(w, http.StatusOK, models.AuthResponse{Token: token, User: user.Public()})
}

func (h *WebAppHandler) profile(w http.ResponseWriter, r *http.Request, payload WebAppPayload) {
	claims, err := h.authenticate(payload)
	if err != nil {
		respondError(w, err)
		return
	}

	var patch models.UserPatch
	if err := json.Unmarshal(payload.Data, &patch); err != nil {
		respondError(w, apperr.Validationf("invalid profile payload"))
		return
	}
	// Self-service updates may not escalate role or flip account status.
	patch.Role = nil
	patch.Status = nil

	user, err := h.Users.UpdateUser(r.Context(), claims.UserID, patch)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

func (h *WebAppHandler) reading(w http.ResponseWriter, r *http.Request, payload WebAppPayload) {
	claims, err := h.authenticate(payload)
	if err != nil {
		respondError(w, err)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		respondError(w, apperr.Validationf("invalid user ID in token"))
		return
	}

	var req models.ReadingRequest
	if err := json.Unmarshal(payload.Data, &req); err != nil {
		respondError(w, apperr.Validationf("invalid reading payload"))
		return
	}

	created, err := h.Readings.Create(r.Context(), userID, req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (h *WebAppHandler) trainingCompleted(w http.ResponseWriter, r *http.Request, payload WebAppPayload) {
	claims, err := h.authenticate(payload)
	if err != nil {
		respondError(w, err)
		return
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		respondError(w, apperr.Validationf("invalid user ID in token"))
		return
	}

	if err := h.Notifs.Notify(r.Context(), &userID, models.NotifTraining,
		"Training completed", "You finished the monitoring training module. You can now submit readings.", nil); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

func (h *WebAppHandler) authenticate(payload WebAppPayload) (*jwtutil.Claims, error) {
	if payload.Token == "" {
		return nil, apperr.Unauthorizedf("missing token")
	}
	claims, err := jwtutil.ValidateToken(payload.Token, h.Config.JWTSecret)
	if err != nil {
		return nil, apperr.Unauthorizedf("invalid or expired token")
	}
	return claims, nil
}
