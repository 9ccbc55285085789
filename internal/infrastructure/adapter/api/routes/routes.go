package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/api/middleware"
)

// Handlers groups the API handlers
type Handlers struct {
	Accounts     *handler.AccountHandler
	Gifts        *handler.GiftHandler
	Streaks      *handler.StreakHandler
	Achievements *handler.AchievementHandler
	Withdrawals  *handler.WithdrawalHandler
	Health       *handler.HealthHandler
}

// Options configures the public and admin surfaces
type Options struct {
	Auth        middleware.AuthConfig
	Metrics     http.Handler // nil disables the metrics endpoint
	MetricsPath string
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, h Handlers, opts Options) {
	router.GET("/health", h.Health.Health)
	if opts.Metrics != nil {
		router.GET(opts.MetricsPath, gin.WrapH(opts.Metrics))
	}

	authed := router.Group("/", middleware.Auth(opts.Auth))

	accounts := authed.Group("/accounts/me")
	{
		// GET /accounts/me/balance
		accounts.GET("/balance", h.Accounts.GetBalance)

		// GET /accounts/me/ledger?limit=
		accounts.GET("/ledger", h.Accounts.ListLedger)
	}

	// GET /ledger/reconcile?referenceId=&referenceType=
	authed.GET("/ledger/reconcile", h.Accounts.Reconcile)

	gifts := authed.Group("/gifts")
	{
		gifts.POST("", h.Gifts.SendGift)
		gifts.GET("/catalog", h.Gifts.ListCatalog)
	}

	streaks := authed.Group("/streaks")
	{
		streaks.GET("", h.Streaks.GetStreaks)
		streaks.POST("/completions", h.Streaks.RecordCompletion)
		streaks.POST("/:type/freeze", h.Streaks.UseFreeze)
		streaks.POST("/:type/freeze/purchase", h.Streaks.PurchaseFreeze)
	}

	authed.GET("/achievements", h.Achievements.List)

	withdrawals := authed.Group("/withdrawals")
	{
		withdrawals.POST("", h.Withdrawals.Create)
		withdrawals.GET("", h.Withdrawals.List)
	}

	admin := authed.Group("/admin", middleware.RequireRole(opts.Auth.AdminRole))
	{
		admin.POST("/accounts/:userId", h.Accounts.OpenAccount)
		admin.POST("/accounts/:userId/credit", h.Accounts.Credit)
		admin.GET("/accounts/:userId/audit", h.Accounts.Audit)

		admin.POST("/withdrawals/:id/approve", h.Withdrawals.Approve)
		admin.POST("/withdrawals/:id/process", h.Withdrawals.Process)
		admin.POST("/withdrawals/:id/reject", h.Withdrawals.Reject)
		admin.POST("/withdrawals/:id/complete", h.Withdrawals.Complete)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, timeProvider coreport.TimeProvider) {
	// Request id first so recovery and access logs can see it
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger, timeProvider))
}
