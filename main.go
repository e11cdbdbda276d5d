package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spotlist/api-go/config"
	"github.com/spotlist/api-go/controllers"
	"github.com/spotlist/api-go/notifications"
	"github.com/spotlist/api-go/repository"
	"github.com/spotlist/api-go/routes"
	"github.com/spotlist/api-go/services"
	"github.com/spotlist/api-go/storage"
)

func main() {
	// Set up logging to stdout
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db := config.InitDB(cfg.Database)
	timeout := cfg.Database.QueryTimeout

	postRepo := repository.NewPostRepository(db, timeout)
	reportRepo := repository.NewReportRepository(db, timeout)
	cascadeRepo := repository.NewCascadeRepository(db, timeout)
	userRepo := repository.NewUserRepository(db, timeout)
	adminRepo := repository.NewAdminRepository(db, timeout)
	subscriptionRepo := repository.NewSubscriptionRepository(db, timeout)

	dispatcher := notifications.NewDispatcher(notifications.NewSESMailer(cfg.Mail), cfg.Mail.QueueSize)
	// Queued mail is still delivered after a shutdown signal.
	dispatcher.Start(context.Background())
	defer dispatcher.Close()

	reconciler := services.NewReconciler(postRepo, reportRepo, cascadeRepo)
	reconciler.Start(ctx, cfg.ReconcileInterval)

	postService := services.NewPostService(postRepo, userRepo, storage.NewR2PhotoStorage(cfg.R2), dispatcher, reconciler)
	reportService := services.NewReportService(reportRepo, postService, userRepo, reconciler, dispatcher)
	userService := services.NewUserService(userRepo, adminRepo, subscriptionRepo, postService)

	// Create a new Gin router
	r := gin.Default()

	// Add logging middleware
	r.Use(gin.LoggerWithWriter(os.Stdout))

	// Initialize routes
	routes.SetupRoutes(r, routes.Controllers{
		Posts:   controllers.NewPostController(postService),
		Reports: controllers.NewReportController(reportService),
		Users:   controllers.NewUserController(userService),
	}, cfg.JWTSecret, userService)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}
