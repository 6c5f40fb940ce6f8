package handlers

import (
	"net/http"
	"sync"

	"github.com/coastwatch-app/coastwatch/internal/apperr"
	"github.com/coastwatch-app/coastwatch/internal/models"
	jwtutil "github.com/coastwatch-app/coastwatch/pkg/jwt"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NotificationHub pushes freshly created notifications to connected
// clients. Broadcast notifications go to everyone, targeted ones only to
// the addressed user's connections.
type NotificationHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]string // conn -> user id
}

func NewNotificationHub() *NotificationHub {
	return &NotificationHub{clients: make(map[*websocket.Conn]string)}
}

// BroadcastNotification implements services.Broadcaster.
func (h *NotificationHub) BroadcastNotification(notif models.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn, userID := range h.clients {
		if notif.UserID != nil && notif.UserID.Hex() != userID {
			continue
		}
		if err := conn.WriteJSON(notif); err != nil {
			log.WithError(err).Debug("Dropping dead websocket client")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

func (h *NotificationHub) add(conn *websocket.Conn, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[conn] = userID
}

func (h *NotificationHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// WSHandler upgrades /api/ws/notifications connections. Browsers cannot set
// an Authorization header on websocket dials, so the token rides in the
// query string.
type WSHandler struct {
	Hub       *NotificationHub
	JWTSecret string
}

func NewWSHandler(hub *NotificationHub, jwtSecret string) *WSHandler {
	return &WSHandler{Hub: hub, JWTSecret: jwtSecret}
}

// StreamHandler handles GET /api/ws/notifications?token=...
func (h *WSHandler) StreamHandler(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, apperr.Unauthorizedf("missing or invalid token"))
		return
	}
	claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
	if err != nil {
		respondError(w, apperr.Unauthorizedf("missing or invalid token"))
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	log.WithField("userID", claims.UserID).Info("Notification stream connected")
	h.Hub.add(conn, claims.UserID)

	defer func() {
		h.Hub.remove(conn)
		conn.Close()
		log.WithField("userID", claims.UserID).Info("Notification stream disconnected")
	}()

	// The stream is push-only; reads exist to detect disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}
