package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/careline/complaint-portal/internal/api/http"
	"github.com/careline/complaint-portal/internal/api/http/handlers"
	"github.com/careline/complaint-portal/internal/auth"
	"github.com/careline/complaint-portal/internal/config"
	"github.com/careline/complaint-portal/internal/events"
	"github.com/careline/complaint-portal/internal/identity"
	"github.com/careline/complaint-portal/internal/observability"
	"github.com/careline/complaint-portal/internal/persistence"
	"github.com/careline/complaint-portal/internal/policy"
	"github.com/careline/complaint-portal/internal/repository"
	"github.com/careline/complaint-portal/internal/service"
	"github.com/careline/complaint-portal/internal/worker"
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

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)
	unitRepo := repository.NewUnitRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	escalationRepo := repository.NewEscalationRepository(pool)
	responseRepo := repository.NewResponseRepository(pool)

	resolver := identity.NewResolver(accountRepo)
	bridge := identity.NewAdminBridge(accountRepo, adminRepo, logger)
	policyEngine := policy.NewEngine(escalationRepo)

	dispatcher := events.NewInMemoryDispatcher(logger)
	notificationService := service.NewNotificationService(dispatcher, redis, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, accountRepo, adminRepo)
	visibilityService := service.NewVisibilityService(ticketRepo, escalationRepo)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   ticketRepo,
		ResponseRepo: responseRepo,
		UnitRepo:     unitRepo,
		Policy:       policyEngine,
		Bridge:       bridge,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	escalationService := service.NewEscalationService(service.EscalationDependencies{
		TicketRepo:     ticketRepo,
		EscalationRepo: escalationRepo,
		AdminRepo:      adminRepo,
		UnitRepo:       unitRepo,
		Policy:         policyEngine,
		Bridge:         bridge,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})

	authMiddleware := auth.NewMiddleware(authService.TokenManager(), resolver)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Tickets:        handlers.NewTicketsHandler(visibilityService, ticketService),
		Escalations:    handlers.NewEscalationsHandler(escalationService),
		Units:          handlers.NewUnitsHandler(unitRepo),
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
