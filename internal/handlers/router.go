package handlers

import (
	"github.com/coastwatch-app/coastwatch/internal/config"
	"github.com/coastwatch-app/coastwatch/internal/models"
	"github.com/coastwatch-app/coastwatch/internal/services"
	"github.com/coastwatch-app/coastwatch/pkg/middleware"
	"github.com/gorilla/mux"
)

// RouterDeps carries everything the route table needs. cmd/server and the
// handler tests build the same router from it, so the table exists exactly
// once.
type RouterDeps struct {
	Config   *config.Config
	Users    *services.UserService
	FAQs     *services.FAQService
	Updates  *services.UpdateService
	Readings *services.ReadingService
	Notifs   *services.NotificationService
	Hub      *NotificationHub
	Pinger   DatabasePinger
}

// NewRouter builds the full HTTP surface: public routes, the authenticated
// subrouter and the admin subrouter, with logging and timeout middleware
// applied across the board.
func NewRouter(deps RouterDeps) *mux.Router {
	authHandler := NewAuthHandler(deps.Users, deps.Config)
	userHandler := NewUserHandler(deps.Users)
	faqHandler := NewFAQHandler(deps.FAQs)
	updateHandler := NewUpdateHandler(deps.Updates)
	readingHandler := NewReadingHandler(deps.Readings)
	notifHandler := NewNotificationHandler(deps.Notifs)
	healthHandler := NewHealthHandler(deps.Pinger)
	webAppHandler := NewWebAppHandler(deps.Users, deps.Readings, deps.Notifs, deps.Config)
	wsHandler := NewWSHandler(deps.Hub, deps.Config.JWTSecret)

	router := mux.NewRouter()
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.TimeoutMiddleware(deps.Config.RequestTimeout))

	// Public routes
	router.HandleFunc("/health", healthHandler.Handle).Methods("GET")
	router.HandleFunc("/api/auth/register", authHandler.RegisterHandler).Methods("POST")
	router.HandleFunc("/api/auth/login", authHandler.LoginHandler).Methods("POST")
	router.HandleFunc("/api/user/faqs", faqHandler.ListPublicHandler).Methods("GET")
	router.HandleFunc("/api/user/faqs/{id}", faqHandler.GetPublicHandler).Methods("GET")
	router.HandleFunc("/api/user/updates", updateHandler.ListPublicHandler).Methods("GET")
	router.HandleFunc("/api/telegram/webapp", webAppHandler.DispatchHandler).Methods("POST")
	router.HandleFunc("/api/ws/notifications", wsHandler.StreamHandler).Methods("GET")

	// Authenticated routes
	authed := router.PathPrefix("/api").Subrouter()
	authed.Use(middleware.AuthMiddleware(deps.Config.JWTSecret))
	authed.Use(middleware.UpdateLastActiveMiddleware(deps.Users))
	authed.HandleFunc("/auth/profile", authHandler.ProfileHandler).Methods("GET")
	authed.HandleFunc("/readings", readingHandler.CreateHandler).Methods("POST")
	authed.HandleFunc("/readings", readingHandler.ListOwnHandler).Methods("GET")
	authed.HandleFunc("/readings/{id}", readingHandler.DeleteHandler).Methods("DELETE")
	authed.HandleFunc("/notifications", notifHandler.ListHandler).Methods("GET")
	authed.HandleFunc("/notifications/{id}/read", notifHandler.MarkAsReadHandler).Methods("POST")
	authed.HandleFunc("/notifications/{id}", notifHandler.DeleteHandler).Methods("DELETE")

	// Admin routes
	admin := router.PathPrefix("/api/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware(deps.Config.JWTSecret))
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.Use(middleware.UpdateLastActiveMiddleware(deps.Users))
	admin.HandleFunc("/users", userHandler.ListUsersHandler).Methods("GET")
	admin.HandleFunc("/users", userHandler.CreateUserHandler).Methods("POST")
	admin.HandleFunc("/users/{id}", userHandler.GetUserHandler).Methods("GET")
	admin.HandleFunc("/users/{id}", userHandler.UpdateUserHandler).Methods("PUT")
	admin.HandleFunc("/users/{id}", userHandler.DeleteUserHandler).Methods("DELETE")
	admin.HandleFunc("/faqs", faqHandler.ListHandler).Methods("GET")
	admin.HandleFunc("/faqs", faqHandler.CreateHandler).Methods("POST")
	admin.HandleFunc("/faqs/{id}", faqHandler.GetHandler).Methods("GET")
	admin.HandleFunc("/faqs/{id}", faqHandler.UpdateHandler).Methods("PUT")
	admin.HandleFunc("/faqs/{id}", faqHandler.DeleteHandler).Methods("DELETE")
	admin.HandleFunc("/updates", updateHandler.ListHandler).Methods("GET")
	admin.HandleFunc("/updates", updateHandler.CreateHandler).Methods("POST")
	admin.HandleFunc("/updates/{id}", updateHandler.GetHandler).Methods("GET")
	admin.HandleFunc("/updates/{id}", updateHandler.UpdateHandler).Methods("PUT")
	admin.HandleFunc("/updates/{id}", updateHandler.DeleteHandler).Methods("DELETE")
	admin.HandleFunc("/readings", readingHandler.AdminListHandler).Methods("GET")
	admin.HandleFunc("/readings/{id}", readingHandler.AdminGetHandler).Methods("GET")
	admin.HandleFunc("/readings/{id}", readingHandler.DeleteHandler).Methods("DELETE")

	return router
}
