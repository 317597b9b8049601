package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/subscription-service/internal/api/http"
	"github.com/spec-kit/subscription-service/internal/api/http/handlers"
	"github.com/spec-kit/subscription-service/internal/auth"
	"github.com/spec-kit/subscription-service/internal/cache"
	"github.com/spec-kit/subscription-service/internal/config"
	"github.com/spec-kit/subscription-service/internal/events"
	"github.com/spec-kit/subscription-service/internal/observability"
	"github.com/spec-kit/subscription-service/internal/persistence"
	"github.com/spec-kit/subscription-service/internal/repository"
	"github.com/spec-kit/subscription-service/internal/service"
	"github.com/spec-kit/subscription-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	planRepo := repository.NewPlanRepository(pool)
	subscriptionRepo := repository.NewSubscriptionRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	catalog := cache.NewCatalog(redis.Client, logger)
	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:          userRepo,
		PasswordResetRepo: resetRepo,
	})
	planService := service.NewPlanService(service.PlanDependencies{
		PlanRepo:         planRepo,
		SubscriptionRepo: subscriptionRepo,
		Catalog:          catalog,
		Dispatcher:       dispatcher,
	})
	subscriptionService := service.NewSubscriptionService(service.SubscriptionDependencies{
		UserRepo:         userRepo,
		PlanRepo:         planRepo,
		SubscriptionRepo: subscriptionRepo,
		Catalog:          catalog,
		Dispatcher:       dispatcher,
	})
	expirationService := service.NewExpirationService(subscriptionRepo, dispatcher, logger)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	notificationService.RegisterHandlers()

	cookies := auth.NewCookieWriter(cfg.App.IsProduction())
	adminMiddleware := auth.NewAdminMiddleware(authService.TokenManager())

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.CORSOrigin, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:            handlers.NewAuthHandler(authService, cookies),
		Admin:           handlers.NewAdminHandler(authService, planService, cookies, cfg.Admin.Email),
		Subscriptions:   handlers.NewSubscriptionsHandler(subscriptionService, planService),
		AdminMiddleware: adminMiddleware,
		MetricsGatherer: registry,
	})

	sweeper := worker.NewExpirationWorker(expirationService, metrics, logger, cfg.Sweep.Interval())
	go sweeper.Run(ctx)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
