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
	_ "time/tzdata"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/usecase/achievement"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/usecase/gift"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/usecase/streak"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/usecase/withdrawal"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/api/routes"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/database"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/metrics"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/notification"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/repository"
	timeProvider "github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/config"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	if cfg.Environment == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	appLogger, err := logger.NewZapLogger(logger.Options{
		Production: cfg.Logger.Format == "json" || cfg.Environment == config.Production,
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.Output,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = appLogger.Flush() }()

	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Service stopped with error", map[string]any{"error": err.Error()})
		_ = appLogger.Flush()
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger coreport.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := timeProvider.NewSystemClock(cfg.Streak.Timezone)
	if err != nil {
		return fmt.Errorf("failed to load streak timezone: %w", err)
	}

	// Database
	dbManager := database.NewManager(database.NewConfigFromApp(cfg), appLogger, tp)
	if _, err := dbManager.Connect(ctx); err != nil {
		return err
	}
	defer func() { _ = dbManager.Close() }()

	if cfg.Database.AutoMigrate {
		if err := dbManager.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	capabilities := dbManager.ProbeCapabilities(ctx)
	uow, err := dbManager.CreateUnitOfWork()
	if err != nil {
		return err
	}

	// Collaborators
	var appMetrics coreport.Metrics = metrics.NoopMetrics{}
	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		prom := metrics.NewPrometheusMetrics()
		sqlDB, err := dbManager.SQLDB()
		if err != nil {
			return err
		}
		if err := prom.RegisterDBStats(sqlDB, cfg.Database.Database); err != nil {
			return fmt.Errorf("failed to register database metrics: %w", err)
		}
		appMetrics = prom
		metricsHandler = prom.Handler()
	}

	notifier, err := notification.NewDispatcher(ctx, cfg, tp, appLogger)
	if err != nil {
		return err
	}
	defer func() { _ = notifier.Close() }()

	profiles := repository.NewProfileRepository(dbManager.DB(), appLogger)

	// Use cases
	ledgerEngine := ledger.NewEngine(uow, capabilities, tp, appLogger, appMetrics, ledger.Config{
		MaxCASRetries:    cfg.Ledger.MaxCASRetries,
		DefaultListLimit: cfg.Ledger.DefaultListLimit,
		MaxListLimit:     cfg.Ledger.MaxListLimit,
	})
	achievements := achievement.NewEngine(uow, ledgerEngine, notifier, capabilities, tp, appLogger, appMetrics,
		achievement.Config{RewardGems: cfg.Achievements.RewardGems})
	tracker := streak.NewTracker(uow, ledgerEngine, achievements, capabilities, tp, appLogger, streak.Config{
		Policy: entity.StreakPolicy{
			FreezeWindowDays:   cfg.Streak.FreezeWindowDays,
			FreezeEarnInterval: cfg.Streak.FreezeEarnInterval,
			MaxFreezes:         cfg.Streak.MaxFreezes,
		},
		FreezePrice: cfg.Streak.FreezePrice,
	})
	gifts := gift.NewSettlement(uow, ledgerEngine, profiles, notifier, tp, appLogger, appMetrics)

	policy, err := withdrawalPolicy(cfg.Withdrawal)
	if err != nil {
		return err
	}
	withdrawals := withdrawal.NewLifecycle(uow, ledgerEngine, notifier, tp, appLogger, appMetrics, withdrawal.Config{
		Policy:           policy,
		DefaultListLimit: cfg.Withdrawal.DefaultListLimit,
	})

	// HTTP
	router := gin.New()
	routes.SetupMiddlewares(router, appLogger, tp)
	routes.SetupRoutes(router, routes.Handlers{
		Accounts:     handler.NewAccountHandler(ledgerEngine, appLogger),
		Gifts:        handler.NewGiftHandler(gifts, appLogger),
		Streaks:      handler.NewStreakHandler(tracker, appLogger),
		Achievements: handler.NewAchievementHandler(achievements, appLogger),
		Withdrawals:  handler.NewWithdrawalHandler(withdrawals, appLogger),
		Health:       handler.NewHealthHandler(dbManager, cfg.Database.QueryTimeout, appLogger),
	}, routes.Options{
		Auth: middleware.AuthConfig{
			Secret:    cfg.Auth.JWTSecret,
			Issuer:    cfg.Auth.Issuer,
			AdminRole: cfg.Auth.AdminRole,
		},
		Metrics:     metricsHandler,
		MetricsPath: cfg.Metrics.Path,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		appLogger.Info("Starting server", map[string]any{
			"addr":            server.Addr,
			"env":             cfg.Environment,
			"atomic_mutation": capabilities.AtomicMutation,
			"streaks":         capabilities.Streaks,
			"achievements":    capabilities.Achievements,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
	case <-ctx.Done():
	}

	appLogger.Info("Shutting down server...", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", map[string]any{"error": err.Error()})
	}

	appLogger.Info("Server exited gracefully", nil)
	return nil
}

// withdrawalPolicy parses the payout rates
func withdrawalPolicy(cfg config.WithdrawalConfig) (entity.WithdrawalPolicy, error) {
	rate, err := decimal.NewFromString(cfg.GemToVNDRate)
	if err != nil {
		return entity.WithdrawalPolicy{}, fmt.Errorf("invalid withdrawal.gemToVndRate: %w", err)
	}
	fee, err := decimal.NewFromString(cfg.PlatformFeeRate)
	if err != nil {
		return entity.WithdrawalPolicy{}, fmt.Errorf("invalid withdrawal.platformFeeRate: %w", err)
	}

	return entity.WithdrawalPolicy{
		GemToVNDRate:    rate,
		PlatformFeeRate: fee,
		MinBalance:      cfg.MinBalance,
		MinAmount:       cfg.MinAmount,
	}, nil
}
