// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Marga-Ghale/ora-fabtrack/internal/api/handlers"
	"github.com/Marga-Ghale/ora-fabtrack/internal/api/middleware"
	"github.com/Marga-Ghale/ora-fabtrack/internal/config"
	"github.com/Marga-Ghale/ora-fabtrack/internal/cron"
	"github.com/Marga-Ghale/ora-fabtrack/internal/db"
	"github.com/Marga-Ghale/ora-fabtrack/internal/email"
	"github.com/Marga-Ghale/ora-fabtrack/internal/notification"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository"
	"github.com/Marga-Ghale/ora-fabtrack/internal/repository/inmemory"
	"github.com/Marga-Ghale/ora-fabtrack/internal/seed"
	"github.com/Marga-Ghale/ora-fabtrack/internal/service"
	"github.com/Marga-Ghale/ora-fabtrack/internal/socket"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const (
	emailWorkers       = 2
	lastActiveInterval = 5 * time.Minute
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// ============================================
	// Load configuration
	// ============================================
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}

	// ============================================
	// Set Gin mode
	// ============================================
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Initialize Storage (postgres or in-memory)
	// ============================================
	var repos *repository.Repositories
	var pg *db.PostgresDB
	if cfg.UsesMemoryStorage() {
		repos, _ = inmemory.NewRepositories()
		log.Println("📦 Using in-memory storage (data is lost on restart)")
	} else {
		log.Println("🔄 Running database migrations...")
		version, err := db.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath)
		if err != nil {
			log.Fatalf("❌ Migration failed: %v", err)
		}
		log.Printf("✅ Database migrations completed (schema version %d)", version)

		pg, err = db.NewPostgresDB(cfg.DatabaseURL, db.PoolSize{MaxConns: cfg.DBMaxConns, MinConns: cfg.DBMinConns})
		if err != nil {
			log.Fatalf("❌ Failed to connect to PostgreSQL: %v", err)
		}
		defer pg.Close()

		repos = repository.NewRepositories(pg.Pool, pg.DB)
	}
	log.Println("📦 Repositories initialized")

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var redisDB *db.RedisDB
	var cache service.Cache
	if cfg.RedisURL != "" {
		r, err := db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (continuing without cache)", err)
		} else {
			redisDB = r
			cache = r
			defer redisDB.Close()
			log.Println("⚡ Redis cache enabled")
		}
	}

	// ============================================
	// Initialize Email Service
	// ============================================
	emailSvc := email.NewService(&email.Config{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		User:        cfg.SMTPUser,
		Password:    cfg.SMTPPassword,
		From:        cfg.SMTPFrom,
		FromName:    cfg.SMTPFromName,
		UseTLS:      cfg.SMTPUseTLS,
		FrontendURL: cfg.FrontendURL,
	})
	emailQueue := email.NewEmailQueue(emailSvc, emailWorkers)
	emailSvc.UseQueue(emailQueue)
	if cfg.SMTPHost != "" {
		log.Println("📧 Email service initialized")
	} else {
		log.Println("⚠️  Email not configured (SMTP_HOST not set)")
	}

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)
	log.Println("🔌 WebSocket hub initialized")

	// ============================================
	// Seed Data (for development)
	// ============================================
	if !cfg.IsProduction() {
		log.Println("🌱 Seeding development data...")
		seed.SeedData(repos)
	}

	// ============================================
	// Initialize Notification Service
	// ============================================
	notificationSvc := notification.NewService(
		repos.NotificationRepo,
		repos.UserRepo,
		repos.ProjectRepo,
	)
	notificationSvc.SetBroadcaster(broadcaster)

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config:      cfg,
		Repos:       repos,
		NotifSvc:    notificationSvc,
		EmailSvc:    emailSvc,
		Broadcaster: broadcaster,
		Cache:       cache,
	})
	log.Println("✨ All services initialized")

	// Project rooms are limited to users who can open the project
	hub.SetAuthorizer(func(userID, room string) bool {
		projectID, ok := strings.CutPrefix(room, socket.ProjectRoom(""))
		if !ok || projectID == "" {
			return false
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return services.Permission.CanAccessProject(ctx, userID, projectID)
	})
	wsHandler := socket.NewHandler(hub, services.Auth, cfg.CORSOrigins)

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	cronScheduler := cron.NewScheduler(services, repos, cfg)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		dbStatus := getDatabaseStatus(ctx, pg)
		status, code := "healthy", http.StatusOK
		if dbStatus == "unreachable" {
			status, code = "degraded", http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":                 status,
			"timestamp":              time.Now(),
			"database":               dbStatus,
			"cache":                  getCacheStatus(ctx, redisDB),
			"websocket":              "active",
			"ws_clients":             hub.GetConnectedClientsCount(),
			"email":                  getEmailStatus(cfg),
			"dashboard_poll_seconds": cfg.DashboardPollSeconds,
		})
	})

	// API routes
	h := handlers.NewHandlers(services)
	h.RegisterRoutes(r,
		middleware.AuthMiddleware(services.Auth),
		middleware.LastActive(services.User, lastActiveInterval),
	)

	// WebSocket route authenticates itself from the token query parameter
	r.GET("/api/ws", wsHandler.HandleWebSocket)

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	hub.Shutdown()
	emailQueue.Stop()

	log.Println("Server exited")
}

func getDatabaseStatus(ctx context.Context, pg *db.PostgresDB) string {
	if pg == nil {
		return "memory"
	}
	if err := pg.Ping(ctx); err != nil {
		return "unreachable"
	}
	return "connected"
}

func getCacheStatus(ctx context.Context, redisDB *db.RedisDB) string {
	if redisDB == nil {
		return "disabled"
	}
	if err := redisDB.Ping(ctx); err != nil {
		return "unreachable"
	}
	return "connected"
}

func getEmailStatus(cfg *config.Config) string {
	if cfg.SMTPHost != "" {
		return "configured"
	}
	return "disabled"
}
