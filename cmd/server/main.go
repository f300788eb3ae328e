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

	"github.com/joho/godotenv"
	"github.com/training-portal/internal/api"
	"github.com/training-portal/internal/config"
	"github.com/training-portal/internal/middleware"
	"github.com/training-portal/internal/scheduler"
	"github.com/training-portal/internal/service"
	"github.com/training-portal/internal/storage"

	_ "github.com/training-portal/docs" // swagger docs
)

// @title Training Portal API
// @version 1.0
// @description Corporate training portal: identity, authorization and enrollment lifecycle.

// @contact.name API Support
// @contact.email support@example.com

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Enter your session token with the `Bearer ` prefix, e.g. "Bearer eyJhbGci..."

func main() {
	// Load .env if present, then configuration from the environment
	_ = godotenv.Load()
	cfg := config.Load()

	// Connect to database
	log.Println("Connecting to database...")
	db, err := storage.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations
	log.Println("Running migrations...")
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repositories
	employeeRepo := storage.NewEmployeeRepository(db)
	teacherRepo := storage.NewTeacherRepository(db)
	categoryRepo := storage.NewCategoryRepository(db)
	courseRepo := storage.NewCourseRepository(db)
	enrollmentRepo := storage.NewEnrollmentRepository(db)
	tokenRepo := storage.NewTokenRepository(db)

	// Create default admin user if not exists
	ctx := context.Background()
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminEmail != "" && adminPassword != "" {
		admin, err := employeeRepo.CreateAdmin(ctx, adminEmail, adminPassword, "Admin")
		if err != nil {
			log.Printf("Warning: Failed to create admin user: %v", err)
		} else {
			log.Printf("Admin user ready: %s", admin.Email)
		}
	}

	// Initialize services
	engine := service.NewEnrollmentEngine(enrollmentRepo, courseRepo)
	guard := service.NewIntegrityGuard(service.NewStoreCounter(categoryRepo, teacherRepo, courseRepo))
	reset := service.NewResetService(tokenRepo, employeeRepo, cfg.Server.BaseURL, cfg.Auth.InviteTTL, cfg.Auth.ResetTTL)

	// Initialize token cleanup job
	cleanup := scheduler.NewCleanup(tokenRepo)
	if err := cleanup.Start(ctx, cfg.Cleanup.Schedule); err != nil {
		log.Fatalf("Failed to start token cleanup: %v", err)
	}

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT, cfg.Auth.CookieSecure)
	accessController := middleware.NewAccessController(authMiddleware)

	// Initialize API handlers
	handler := api.NewHandler(employeeRepo, engine, reset, authMiddleware)
	adminHandler := api.NewAdminHandler(employeeRepo, teacherRepo, categoryRepo, courseRepo, enrollmentRepo, guard, reset)

	// Setup router
	router := api.NewRouter(handler, adminHandler, authMiddleware, accessController)

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")

	cleanup.Stop()

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
