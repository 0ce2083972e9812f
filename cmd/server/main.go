package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stripe/stripe-go/v79"

	"github.com/kjaylee/contentforge/internal/config"
	"github.com/kjaylee/contentforge/internal/domain/services"
	"github.com/kjaylee/contentforge/internal/extractor"
	"github.com/kjaylee/contentforge/internal/generator"
	"github.com/kjaylee/contentforge/internal/generator/providers"
	"github.com/kjaylee/contentforge/internal/infrastructure/cache"
	"github.com/kjaylee/contentforge/internal/infrastructure/database"
	"github.com/kjaylee/contentforge/internal/interfaces/http/handlers"
	"github.com/kjaylee/contentforge/internal/interfaces/http/middleware"
	"github.com/kjaylee/contentforge/internal/metrics"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations("migrations"); err != nil {
		logger.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		logger.Error("failed to connect to redis", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer redisClient.Close()

	stripe.Key = cfg.Billing.StripeSecret

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	userRepo := database.NewUserRepository(db)
	subRepo := database.NewSubscriptionRepository(db)
	generationRepo := database.NewGenerationRepository(db)
	usageStore := cache.NewUsageStore(redisClient)

	aiClient, err := providers.NewClient(&cfg.AI)
	if err != nil {
		logger.Error("failed to configure AI provider", slog.String("error", err.Error()))
		os.Exit(1)
	}

	articleExtractor := extractor.NewExtractor(
		extractor.NewSafeClient(cfg.Crawler.Timeout),
		logger,
		cfg.Crawler.MaxBodyBytes,
	)

	usageService := services.NewUsageService(usageStore, subRepo, logger)
	generationService := services.NewGenerationService(
		generator.New(aiClient, logger),
		articleExtractor,
		usageService,
		generationRepo,
		collector,
		logger,
	)
	paymentService := services.NewStripeService(
		subRepo,
		userRepo,
		logger,
		cfg.Billing.WebhookSecret,
		cfg.Billing.ProPriceID,
		cfg.Server.BaseURL,
	)

	generationHandler := handlers.NewGenerationHandler(generationService, logger)
	usageHandler := handlers.NewUsageHandler(usageService, logger)
	billingHandler := handlers.NewBillingHandler(paymentService, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.RequestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		status := http.StatusOK
		checks := gin.H{"database": "ok", "redis": "ok"}
		if err := db.Health(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			checks["database"] = err.Error()
		}
		if err := redisClient.Health(c.Request.Context()); err != nil {
			status = http.StatusServiceUnavailable
			checks["redis"] = err.Error()
		}
		c.JSON(status, gin.H{
			"service": "contentforge",
			"checks":  checks,
			"time":    time.Now().UTC(),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// The webhook route authenticates with the Stripe signature, not a bearer
	// token, and must stay outside the rate limit so redeliveries get through.
	router.POST("/api/billing/webhook", billingHandler.Webhook)

	api := router.Group("/api")
	api.Use(middleware.RateLimit(5, 10))
	api.Use(middleware.OptionalAuth(cfg.Auth.JWTSecret, userRepo, logger))

	api.POST("/generate", generationHandler.Generate)
	api.GET("/generate", generationHandler.Capabilities)
	api.GET("/generations", generationHandler.History)
	api.GET("/usage", usageHandler.Status)
	api.POST("/billing/checkout", billingHandler.Checkout)
	api.POST("/billing/portal", billingHandler.Portal)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", slog.String("error", err.Error()))
	}
	logger.Info("server stopped")
}
