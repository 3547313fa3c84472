package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/ecoeats/internal/api/http"
	"github.com/spec-kit/ecoeats/internal/api/http/handlers"
	"github.com/spec-kit/ecoeats/internal/auth"
	"github.com/spec-kit/ecoeats/internal/config"
	"github.com/spec-kit/ecoeats/internal/events"
	"github.com/spec-kit/ecoeats/internal/observability"
	"github.com/spec-kit/ecoeats/internal/persistence"
	"github.com/spec-kit/ecoeats/internal/repository"
	"github.com/spec-kit/ecoeats/internal/service"
	"github.com/spec-kit/ecoeats/internal/worker"
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

	rds := persistence.NewRedis(cfg.Redis, logger)
	defer rds.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	partnerRepo := repository.NewPartnerRepository(pool)
	requestRepo := repository.NewRequestRepository(pool)
	voucherRepo := repository.NewVoucherRepository(pool)
	redemptionRepo := repository.NewRedemptionRepository(pool)
	surplusRepo := repository.NewSurplusRepository(pool)
	impactRepo := repository.NewImpactRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	impactService := service.NewImpactService(service.ImpactDependencies{
		ImpactRepo:  impactRepo,
		VoucherRepo: voucherRepo,
		SurplusRepo: surplusRepo,
		PartnerRepo: partnerRepo,
		Redis:       rds.Handle(),
		CacheTTL:    cfg.Impact.SummaryCacheTTL(),
		Logger:      logger,
	})

	requestService := service.NewRequestService(service.RequestDependencies{
		DB:          pool,
		RequestRepo: requestRepo,
		SurplusRepo: surplusRepo,
		ImpactRepo:  impactRepo,
		Dispatcher:  dispatcher,
		Cache:       impactService,
	})
	voucherService := service.NewVoucherService(service.VoucherDependencies{
		DB:             pool,
		VoucherRepo:    voucherRepo,
		RedemptionRepo: redemptionRepo,
		RequestRepo:    requestRepo,
		ImpactRepo:     impactRepo,
		Dispatcher:     dispatcher,
		Cache:          impactService,
	})
	surplusService := service.NewSurplusService(service.SurplusDependencies{
		DB:             pool,
		SurplusRepo:    surplusRepo,
		RequestService: requestService,
		ImpactRepo:     impactRepo,
		Dispatcher:     dispatcher,
		Cache:          impactService,
	})
	partnerService := service.NewPartnerService(service.PartnerDependencies{
		DB:          pool,
		PartnerRepo: partnerRepo,
		UserRepo:    userRepo,
		ImpactRepo:  impactRepo,
		Dispatcher:  dispatcher,
		Cache:       impactService,
		BcryptCost:  cfg.Auth.BcryptCost,
	})
	authService := service.NewAuthService(*cfg, userRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, rds),
		Users:          handlers.NewUsersHandler(authService),
		Partners:       handlers.NewPartnersHandler(partnerService),
		Requests:       handlers.NewRequestsHandler(requestService),
		Vouchers:       handlers.NewVouchersHandler(voucherService),
		Surplus:        handlers.NewSurplusHandler(surplusService),
		Impact:         handlers.NewImpactHandler(impactService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
