package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smartattend_backend/auth"
	"smartattend_backend/config"
	"smartattend_backend/db"
	"smartattend_backend/recognition"
	"smartattend_backend/routes"
	"smartattend_backend/store"
	"smartattend_backend/webhook"

	_ "github.com/lib/pq"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found") // Non-fatal in production
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if cfg.DBPassword == "" {
		log.Fatal("DB_PASSWORD environment variable is required")
	}

	// Connect to database
	database, err := db.Initialize(db.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
	})
	if err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}
	defer database.Close()

	// Initialize database schema
	if err := db.InitSchema(database); err != nil {
		log.Fatalf("Error initializing database schema: %v", err)
	}

	// Select the face matcher. Mock mode is labeled loudly and never
	// allowed in production.
	var matcher recognition.Matcher
	recognitionMode := "luxand"
	if cfg.LuxandAPIToken != "" {
		matcher = recognition.NewLuxandClient(cfg.LuxandAPIToken, cfg.LuxandCollection)
	} else {
		if cfg.IsProduction() {
			log.Fatal("LUXAND_API_TOKEN is required in production")
		}
		matcher = recognition.NewMockMatcher()
		recognitionMode = "mock"
	}

	st := store.NewPostgresStore(database)
	sessions := auth.NewSessionService(st)
	notifier := webhook.NewNotifier(cfg.WebhookURL, cfg.WebhookSecret)

	// Initialize router
	r := gin.Default()

	// Setup CORS - Simplified for mobile app
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.AllowMethods = []string{
		"GET",
		"POST",
		"PUT",
		"DELETE",
		"PATCH",
	}
	r.Use(cors.New(corsConfig))

	// Setup routes
	routes.SetupRoutes(r, routes.Options{
		Store:           st,
		Sessions:        sessions,
		Matcher:         matcher,
		Notifier:        notifier,
		Database:        database,
		RecognitionMode: recognitionMode,
		Production:      cfg.IsProduction(),
	})

	// Periodically sweep expired sessions; verification also deletes
	// lazily, the sweep just keeps the table small.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(cfg.SessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				if n, err := sessions.SweepExpired(sweepCtx); err != nil {
					log.Printf("Error sweeping expired sessions: %v", err)
				} else if n > 0 {
					log.Printf("Swept %d expired sessions", n)
				}
			}
		}
	}()

	// Run server
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	stopSweep()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}
}
