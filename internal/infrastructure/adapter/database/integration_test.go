package database

import (
	"context"
	"os"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/gem-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/model"
	timeprovider "github.com/amirhossein-jamali/gem-ledger/internal/infrastructure/adapter/time"
	"github.com/amirhossein-jamali/gem-ledger/internal/testutil/fakes"
)

// testDB connects to the database named by GL_TEST_DB_* variables. Tests
// using it are skipped when GL_TEST_DB_HOST is unset.
type testDB struct {
	Manager      *Manager
	Config       *Config
	Logger       coreport.Logger
	TimeProvider coreport.TimeProvider
}

func newTestDB(t *testing.T) *testDB {
	t.Helper()

	host := os.Getenv("GL_TEST_DB_HOST")
	if host == "" {
		t.Skip("GL_TEST_DB_HOST not set, skipping database integration test")
	}

	timeProvider, err := timeprovider.NewSystemClock("UTC")
	require.NoError(t, err)

	config := DefaultConfig()
	config.Driver = getEnvOrDefault("GL_TEST_DB_DRIVER", DriverPostgres)
	config.Host = host
	config.Port = getEnvIntOrDefault("GL_TEST_DB_PORT", 5432)
	config.Username = getEnvOrDefault("GL_TEST_DB_USERNAME", "postgres")
	config.Password = getEnvOrDefault("GL_TEST_DB_PASSWORD", "postgres")
	config.Database = getEnvOrDefault("GL_TEST_DB_DATABASE", "gem_ledger_test")
	config.MaxOpenConns = 10
	config.MaxIdleConns = 5
	config.LogLevel = "silent"
	config.RetryAttempts = 1
	require.NoError(t, config.Validate())

	log := logger.NewNoopLogger()
	db := &testDB{
		Manager:      NewManager(config, log, timeProvider),
		Config:       config,
		Logger:       log,
		TimeProvider: timeProvider,
	}

	ctx := context.Background()
	_, err = db.Manager.Connect(ctx)
	require.NoError(t, err, "failed to connect to test database")
	t.Cleanup(func() {
		if err := db.Manager.Close(); err != nil {
			t.Logf("Warning: Failed to close test database connection: %v", err)
		}
	})

	db.reset(t)
	require.NoError(t, db.Manager.Migrate(ctx))
	return db
}

// reset drops every table the application owns, including goose bookkeeping
func (d *testDB) reset(t *testing.T) {
	t.Helper()

	migrator := d.Manager.DB().Migrator()
	tables := []any{
		&model.LedgerEntry{},
		&model.Gift{},
		&model.GiftCatalogItem{},
		&model.DailyCompletion{},
		&model.Streak{},
		&model.UnlockedAchievement{},
		&model.WithdrawalRequest{},
		&model.Profile{},
		&model.Account{},
		&model.MigrationVersion{},
		"goose_db_version",
	}
	for _, table := range tables {
		if migrator.HasTable(table) {
			require.NoError(t, migrator.DropTable(table))
		}
	}
}

func (d *testDB) unitOfWork(t *testing.T) *UnitOfWork {
	t.Helper()
	uow, err := d.Manager.CreateUnitOfWork()
	require.NoError(t, err)
	return uow
}

func (d *testDB) engine(t *testing.T, caps persistence.SchemaCapabilities) *ledger.Engine {
	t.Helper()
	return ledger.NewEngine(d.unitOfWork(t), caps, d.TimeProvider, d.Logger, fakes.NewMetrics(), ledger.DefaultConfig())
}

func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return value
	}
	return defaultValue
}

func TestIntegration_ProbeCapabilities(t *testing.T) {
	db := newTestDB(t)

	caps := db.Manager.ProbeCapabilities(context.Background())

	assert.True(t, caps.Streaks)
	assert.True(t, caps.Achievements)
	assert.Equal(t, db.Config.Driver == DriverPostgres, caps.AtomicMutation)
}

func TestIntegration_CatalogSeeded(t *testing.T) {
	db := newTestDB(t)
	uow := db.unitOfWork(t)

	items, err := uow.GetGiftRepository(context.Background()).ListCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 6)
	assert.Equal(t, "rose", items[0].ID)
	assert.Equal(t, int64(10), items[0].GemCost)
}

func TestIntegration_MutationPaths(t *testing.T) {
	db := newTestDB(t)
	probed := db.Manager.ProbeCapabilities(context.Background())

	paths := map[string]bool{"fallback": false}
	if probed.AtomicMutation {
		paths["atomic"] = true
	}

	var next uint64 = 100
	for name, atomic := range paths {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			caps := probed
			caps.AtomicMutation = atomic
			engine := db.engine(t, caps)

			next++
			accountID := next
			_, err := engine.OpenAccount(ctx, accountID)
			require.NoError(t, err)

			credit, err := engine.Receive(ctx, accountID, 100, "welcome", "welcome-"+name, "bonus_grant")
			require.NoError(t, err)
			assert.Equal(t, int64(100), credit.NewBalance)

			debit, err := engine.Spend(ctx, accountID, 30, "gift", "gift-"+name, "gift")
			require.NoError(t, err)
			assert.Equal(t, int64(70), debit.NewBalance)

			replayed, err := engine.Spend(ctx, accountID, 30, "gift", "gift-"+name, "gift")
			require.NoError(t, err)
			assert.True(t, replayed.Replayed)
			assert.Equal(t, int64(70), replayed.NewBalance)

			_, err = engine.Spend(ctx, accountID, 500, "too much", "big-"+name, "gift")
			var fundsErr *errs.InsufficientFundsError
			require.ErrorAs(t, err, &fundsErr)
			assert.Equal(t, int64(70), fundsErr.Available)

			report, err := engine.AuditAccount(ctx, accountID)
			require.NoError(t, err)
			assert.True(t, report.Consistent)
			assert.Equal(t, int64(70), report.LedgerSum)
		})
	}
}

func TestIntegration_ConcurrentSpendsNeverOverdraw(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	engine := db.engine(t, db.Manager.ProbeCapabilities(ctx))

	const accountID = 500
	_, err := engine.OpenAccount(ctx, accountID)
	require.NoError(t, err)
	_, err = engine.Receive(ctx, accountID, 100, "seed", "seed", "bonus_grant")
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := engine.Spend(ctx, accountID, 10, "spend", "spend-"+strconv.Itoa(i), "gift")
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		}
	}
	assert.LessOrEqual(t, succeeded, 10)
	assert.Positive(t, succeeded)

	balance, err := engine.GetBalance(ctx, accountID)
	require.NoError(t, err)
	assert.Equal(t, int64(100-10*succeeded), balance.Balance)

	report, err := engine.AuditAccount(ctx, accountID)
	require.NoError(t, err)
	assert.True(t, report.Consistent)
}

func TestIntegration_LedgerIsAppendOnly(t *testing.T) {
	db := newTestDB(t)
	if db.Config.Driver != DriverPostgres {
		t.Skip("append-only trigger is provisioned on Postgres only")
	}
	ctx := context.Background()
	engine := db.engine(t, db.Manager.ProbeCapabilities(ctx))

	_, err := engine.OpenAccount(ctx, 900)
	require.NoError(t, err)
	result, err := engine.Receive(ctx, 900, 5, "seed", "seed", "bonus_grant")
	require.NoError(t, err)

	err = db.Manager.DB().Model(&model.LedgerEntry{}).
		Where("id = ?", result.Entry.ID).
		Update("amount", 500).Error
	assert.Error(t, err)
}

func TestIntegration_UnitOfWorkRollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	uow := db.unitOfWork(t)

	err := uow.Within(ctx, func(txCtx context.Context) error {
		account, err := entity.NewAccount(42, db.TimeProvider)
		require.NoError(t, err)
		require.NoError(t, uow.GetAccountRepository(txCtx).Create(txCtx, account))
		assert.True(t, uow.InTransaction(txCtx))
		return errs.ErrInvalidRequest
	})
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)

	_, err = uow.GetAccountRepository(ctx).GetByID(ctx, 42)
	assert.ErrorIs(t, err, errs.ErrAccountNotFound)
}

func TestIntegration_AfterCommitHooks(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	uow := db.unitOfWork(t)

	var ran []string
	uow.AfterCommit(ctx, func() { ran = append(ran, "immediate") })

	err := uow.Within(ctx, func(txCtx context.Context) error {
		uow.AfterCommit(txCtx, func() { ran = append(ran, "rolled back") })
		return errs.ErrInvalidRequest
	})
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)

	err = uow.Within(ctx, func(txCtx context.Context) error {
		uow.AfterCommit(txCtx, func() { ran = append(ran, "committed") })
		assert.Equal(t, []string{"immediate"}, ran)
		return nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"immediate", "committed"}, ran)
}

func TestIntegration_StreakDatesRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	uow := db.unitOfWork(t)

	_, err := db.engine(t, persistence.SchemaCapabilities{}).OpenAccount(ctx, 7)
	require.NoError(t, err)

	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	require.NoError(t, err)
	today := entity.DateOf(time.Date(2025, 4, 2, 23, 30, 0, 0, loc))

	repo := uow.GetStreakRepository(ctx)
	completion := entity.NewDailyCompletion(7, today, db.TimeProvider)
	_, err = completion.Mark(entity.CategoryHabit, db.TimeProvider)
	require.NoError(t, err)
	require.NoError(t, repo.SaveCompletion(ctx, completion))

	stored, err := repo.GetCompletion(ctx, 7, today)
	require.NoError(t, err)
	assert.Equal(t, today, stored.Date)
	assert.True(t, stored.HabitDone)
}
