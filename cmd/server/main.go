package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"doccompare/internal/config"
	"doccompare/internal/handler"
	"doccompare/internal/logging"
	"doccompare/internal/port"
	"doccompare/internal/repository/postgres"
	"doccompare/internal/router"
	"doccompare/internal/service"
	s3storage "doccompare/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logging.Setup(cfg.Log)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(ctx, &cfg.DB, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	runRepo := postgres.NewComparisonRunRepo(db)

	// Initialize storage; archiving is off without a bucket
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		archive, err := s3storage.NewReportArchive(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		if err := archive.Ready(ctx); err != nil {
			log.Printf("server: report archive not ready, uploads will be retried per run: %v", err)
		}
		storage = archive
	} else {
		log.Printf("server: DOCCOMPARE_S3_BUCKET unset, report archiving disabled")
	}
	if len(cfg.Auth.Clients) == 0 {
		log.Printf("server: no API clients configured, every protected route will reject requests")
	}

	// Initialize services
	authSvc := service.NewAuthService(cfg.Auth, cfg.JWT)
	comparisonSvc := service.NewComparisonService(runRepo, storage, cfg.S3, cfg.Compare)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	compareH := handler.NewComparisonHandler(comparisonSvc, cfg.Upload.MaxBytes())
	runH := handler.NewRunHandler(comparisonSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(authSvc, authH, compareH, runH, healthH, cfg.CORS.AllowedOrigins)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
