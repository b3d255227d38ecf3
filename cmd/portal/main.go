package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"estatehub-portal/internal/config"
	"estatehub-portal/internal/database"
	"estatehub-portal/internal/handlers"
	"estatehub-portal/internal/ratelimit"
	"estatehub-portal/internal/remote"
	"estatehub-portal/internal/scheduler"
	"estatehub-portal/internal/session"
	"estatehub-portal/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	configPath := getEnv("CONFIG_PATH", "config/portal.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config from %s: %v", configPath, err)
	}
	log.Printf("Loaded configuration (upstream %s)", cfg.Upstream.BaseURL)

	// Local store for persisted sessions and wizard drafts.
	db, err := database.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open local database at %s: %v", cfg.Database.Path, err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing local database: %v", err)
		}
	}()
	if err := db.InitSchema(); err != nil {
		log.Fatalf("Failed to migrate local database: %v", err)
	}

	// Upstream client with budget and circuit protection.
	limiter := ratelimit.NewLimiter(
		cfg.Upstream.RequestsPerMinute,
		cfg.Upstream.RequestsPerHour,
		cfg.Upstream.RateLimitEnabled,
	)
	client := remote.NewClient(remote.ClientConfig{
		BaseURL:    cfg.Upstream.BaseURL,
		Timeout:    cfg.Upstream.UpstreamTimeout(),
		MaxRetries: cfg.Upstream.MaxRetries,
		RetryDelay: cfg.Upstream.RetryDelay(),
		Limiter:    limiter,
	})

	sessions := session.NewManager(client, client, db, session.ManagerConfig{
		IdleTTL: cfg.Session.IdleTTL(),
		StoreOptions: store.Options{
			ClientFilter: cfg.Store.ClientFilter,
			Debounce:     cfg.Store.Debounce(),
		},
	})

	sched := scheduler.New(sessions, db, cfg.Session)
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", handlers.SessionHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	handlers.RegisterRoutes(router, client, sessions, db, cfg.Store.ClientFilter)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Portal listening on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Error during shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
