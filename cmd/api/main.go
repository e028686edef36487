package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/escalation-engine/internal/api/http"
	"github.com/spec-kit/escalation-engine/internal/api/http/handlers"
	"github.com/spec-kit/escalation-engine/internal/auth"
	"github.com/spec-kit/escalation-engine/internal/cache"
	"github.com/spec-kit/escalation-engine/internal/config"
	"github.com/spec-kit/escalation-engine/internal/engine"
	"github.com/spec-kit/escalation-engine/internal/events"
	"github.com/spec-kit/escalation-engine/internal/notify"
	"github.com/spec-kit/escalation-engine/internal/observability"
	"github.com/spec-kit/escalation-engine/internal/persistence"
	"github.com/spec-kit/escalation-engine/internal/repository"
	"github.com/spec-kit/escalation-engine/internal/service"
	"github.com/spec-kit/escalation-engine/internal/worker"
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

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	sender := notify.NewSender(cfg.Notification, logger)
	sender.RegisterHandlers(dispatcher)

	pool := pg.PoolHandle()
	ruleRepo := repository.NewRuleRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	executionRepo := repository.NewExecutionRepository(pool)

	ruleCache := cache.NewRuleCache(redis.Client, ruleRepo, cfg.Engine.RuleCacheTTL(), logger)

	calendar := engine.NewBusinessCalendar(cfg.Engine.Location())
	executor := engine.NewActionExecutor(engine.ExecutorDependencies{
		TicketStore:    ticketRepo,
		ExecutionStore: executionRepo,
		Notifier:       sender,
		Dispatcher:     dispatcher,
		Logger:         logger,
		Metrics:        metrics,
		ActionTimeout:  cfg.Engine.ActionTimeout(),
	})
	orchestrator := engine.NewOrchestrator(engine.Dependencies{
		RuleStore:      ruleCache,
		TicketStore:    ticketRepo,
		ExecutionStore: executionRepo,
		Executor:       executor,
		Checker:        engine.NewThresholdChecker(calendar),
		Dispatcher:     dispatcher,
		Logger:         logger,
		Metrics:        metrics,
		BatchLimit:     cfg.Engine.BatchLimit,
	})

	ruleService := service.NewRuleService(service.RuleDependencies{
		RuleRepo:      ruleRepo,
		ExecutionRepo: executionRepo,
		Cache:         ruleCache,
	})

	authMiddleware := auth.NewAuthMiddleware(auth.NewTokenValidator(cfg.Auth.JWTSecret))

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Escalations:    handlers.NewEscalationHandler(orchestrator, ruleService),
		Rules:          handlers.NewRulesHandler(ruleService),
		AuthMiddleware: authMiddleware,
	})

	if cfg.Engine.SchedulerEnabled {
		runLock := cache.NewRunLock(redis.Client, cfg.Engine.SchedulerInterval())
		scheduler := worker.NewScheduler(orchestrator, runLock, cfg.Engine.SchedulerInterval(), logger)
		go scheduler.Start(ctx)
	}

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
