package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/scuola-app/scuola-api/internal/handler"
	"github.com/scuola-app/scuola-api/internal/repository"
	"github.com/scuola-app/scuola-api/internal/service"
	"github.com/scuola-app/scuola-api/pkg/cache"
	"github.com/scuola-app/scuola-api/pkg/config"
	"github.com/scuola-app/scuola-api/pkg/database"
	"github.com/scuola-app/scuola-api/pkg/export"
	"github.com/scuola-app/scuola-api/pkg/jobs"
	"github.com/scuola-app/scuola-api/pkg/logger"
	"github.com/scuola-app/scuola-api/pkg/payment"
	"github.com/scuola-app/scuola-api/pkg/storage"
)

// @title Scuola API
// @version 1.0
// @description Course marketplace backend: catalog, cart and payment settlement.
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(migrateCtx, db); err != nil {
		cancelMigrate()
		logr.Fatal("failed to apply migrations", zap.Error(err))
	}
	cancelMigrate()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The cache is a read accelerator only; the catalog degrades to the
		// database when it is unavailable.
		logr.Warn("redis unavailable, catalog cache disabled", zap.Error(err))
		redisClient = nil
	} else {
		defer redisClient.Close() //nolint:errcheck
	}

	archive, err := storage.NewReceiptArchive(cfg.Payment.ReceiptsDir)
	if err != nil {
		logr.Fatal("failed to prepare receipt archive", zap.Error(err))
	}

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	cartRepo := repository.NewCartRepository(db)
	paymentRepo := repository.NewPaymentRepository(db, courseRepo, cartRepo)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metrics := service.NewMetricsService()
	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	userService := service.NewUserService(userRepo, validate, logr)
	courseService := service.NewCourseService(courseRepo, userRepo, cacheRepo, validate, logr, cfg.Catalog.PopularLimit, cfg.Catalog.PopularCacheTTL)
	cartService := service.NewCartService(cartRepo, validate, logr)

	stripeClient := payment.NewStripeClient(cfg.Payment.SecretKey)
	paymentService := service.NewPaymentService(paymentRepo, courseRepo, cacheRepo, stripeClient, export.NewReceiptExporter(), metrics, validate, logr, cfg.Payment.Currency)
	paymentService.SetArchive(archive)

	receiptQueue := jobs.NewQueue("receipts", func(ctx context.Context, job jobs.Job) error {
		return paymentService.ArchiveReceipt(ctx, job.EntityID)
	}, 2, 32, 3, 2*time.Second, logr)
	defer receiptQueue.Stop()

	paymentService.SetSettlementHook(func(paymentID string) {
		if err := receiptQueue.Enqueue(jobs.Job{Type: "archive_receipt", EntityID: paymentID}); err != nil {
			logr.Warn("failed to enqueue receipt archiving", zap.String("payment_id", paymentID), zap.Error(err))
		}
	})

	router := handler.NewRouter(handler.RouterDeps{
		Config:  cfg,
		Logger:  logr,
		Auth:    authService,
		Users:   userRepo,
		Metrics: metrics,

		AuthHandler:    handler.NewAuthHandler(authService, logr),
		UserHandler:    handler.NewUserHandler(userService, logr, cfg.Catalog.PopularLimit),
		CourseHandler:  handler.NewCourseHandler(courseService, logr),
		CartHandler:    handler.NewCartHandler(cartService, logr),
		PaymentHandler: handler.NewPaymentHandler(paymentService, logr),
		HealthHandler:  handler.NewHealthHandler(db, redisClient),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
