package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/coastwatch-app/coastwatch/internal/config"
	"github.com/coastwatch-app/coastwatch/internal/database"
	"github.com/coastwatch-app/coastwatch/internal/handlers"
	"github.com/coastwatch-app/coastwatch/internal/repository"
	"github.com/coastwatch-app/coastwatch/internal/scheduler"
	"github.com/coastwatch-app/coastwatch/internal/services"
	"github.com/coastwatch-app/coastwatch/pkg/logger"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	var (
		userRepo  repository.UserRepository
		faqRepo   repository.FAQRepository
		updRepo   repository.UpdateRepository
		readRepo  repository.ReadingRepository
		notifRepo repository.NotificationRepository
		pinger    handlers.DatabasePinger
	)

	if cfg.DemoMode {
		logger.Log.Warn("DEMO_MODE enabled, using in-memory storage; all data is lost on restart")
		userRepo = repository.NewMemoryUserRepository()
		faqRepo = repository.NewMemoryFAQRepository()
		updRepo = repository.NewMemoryUpdateRepository()
		readRepo = repository.NewMemoryReadingRepository()
		notifRepo = repository.NewMemoryNotificationRepository()
		pinger = handlers.PingerFunc(func(ctx context.Context) error { return nil })
	} else {
		db, err := database.ConnectDB(cfg)
		if err != nil {
			log.Fatalf("Database connection error: %v", err)
		}
		userRepo = repository.NewMongoUserRepository(db)
		faqRepo = repository.NewMongoFAQRepository(db)
		updRepo = repository.NewMongoUpdateRepository(db)
		readRepo = repository.NewMongoReadingRepository(db)
		notifRepo = repository.NewMongoNotificationRepository(db)
		pinger = handlers.PingerFunc(func(ctx context.Context) error {
			return db.Client().Ping(ctx, readpref.Primary())
		})
	}

	// --- Services ---
	notifService := services.NewNotificationService(notifRepo)
	userService := services.NewUserService(userRepo, notifService)
	faqService := services.NewFAQService(faqRepo, notifService)
	updateService := services.NewUpdateService(updRepo, notifService)
	readingService := services.NewReadingService(readRepo, userRepo)

	hub := handlers.NewNotificationHub()
	notifService.SetBroadcaster(hub)

	router := handlers.NewRouter(handlers.RouterDeps{
		Config:   cfg,
		Users:    userService,
		FAQs:     faqService,
		Updates:  updateService,
		Readings: readingService,
		Notifs:   notifService,
		Hub:      hub,
		Pinger:   pinger,
	})

	// Background sweeps: publish scheduled updates, purge old notifications
	cronRunner := scheduler.Start(updateService, notifService)
	defer cronRunner.Stop()

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      c.Handler(router),
		ReadTimeout:  cfg.RequestTimeout,
		WriteTimeout: cfg.RequestTimeout,
	}

	fmt.Printf("Server running on port %s\n", cfg.Port)
	log.Fatal(srv.ListenAndServe())
}
