// Package memstore is an in-memory implementation of the persistence ports.
// Transactions are serialized: Begin takes a store-wide lock, works on a copy of
// the committed state and publishes it on Commit.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/gem-ledger/internal/domain/port/persistence"
)

// Op identifies a repository call for fault injection
type Op struct {
	Name      string // e.g. "account.update", "ledger.append", "gift.create"
	AccountID uint64
}

// FaultFunc may return an error to make the named call fail
type FaultFunc func(op Op) error

type completionKey struct {
	userID uint64
	date   entity.Date
}

type streakKey struct {
	userID     uint64
	streakType entity.StreakType
}

type unlockKey struct {
	userID        uint64
	achievementID string
}

type ledgerKey struct {
	accountID     uint64
	kind          entity.EntryKind
	referenceType string
	referenceID   string
}

type state struct {
	accounts    map[uint64]entity.Account
	ledger      []entity.LedgerEntry
	ledgerIndex map[ledgerKey]int
	catalog     map[string]entity.GiftCatalogItem
	gifts       map[string]entity.Gift
	completions map[completionKey]entity.DailyCompletion
	streaks     map[streakKey]entity.Streak
	unlocked    map[unlockKey]entity.UnlockedAchievement
	withdrawals map[string]entity.WithdrawalRequest
	nextID      uint64
}

func newState() *state {
	return &state{
		accounts:    map[uint64]entity.Account{},
		ledgerIndex: map[ledgerKey]int{},
		catalog:     map[string]entity.GiftCatalogItem{},
		gifts:       map[string]entity.Gift{},
		completions: map[completionKey]entity.DailyCompletion{},
		streaks:     map[streakKey]entity.Streak{},
		unlocked:    map[unlockKey]entity.UnlockedAchievement{},
		withdrawals: map[string]entity.WithdrawalRequest{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.accounts {
		c.accounts[k] = v
	}
	c.ledger = append([]entity.LedgerEntry(nil), s.ledger...)
	for k, v := range s.ledgerIndex {
		c.ledgerIndex[k] = v
	}
	for k, v := range s.catalog {
		c.catalog[k] = v
	}
	for k, v := range s.gifts {
		c.gifts[k] = v
	}
	for k, v := range s.completions {
		c.completions[k] = v
	}
	for k, v := range s.streaks {
		c.streaks[k] = v
	}
	for k, v := range s.unlocked {
		c.unlocked[k] = v
	}
	for k, v := range s.withdrawals {
		c.withdrawals[k] = v
	}
	c.nextID = s.nextID
	return c
}

func (s *state) id() uint64 {
	s.nextID++
	return s.nextID
}

type txKey struct{}

type tx struct {
	work  *state
	done  bool
	hooks []func()
}

// Store holds the committed state and implements persistence.UnitOfWork
type Store struct {
	txLock    sync.Mutex // held for the lifetime of a transaction or a single non-transactional call
	mu        sync.Mutex // guards the fields below
	committed *state
	fault     FaultFunc
	rollback  error
	commit    error
	atomic    bool
}

// New returns an empty store that supports the atomic mutation primitive
func New() *Store {
	return &Store{committed: newState(), atomic: true}
}

var _ persistence.UnitOfWork = (*Store)(nil)

// SetAtomicSupported toggles the atomic mutation primitive
func (s *Store) SetAtomicSupported(supported bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.atomic = supported
}

// SetFault installs a fault injector; nil removes it
func (s *Store) SetFault(fn FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

// FailNextRollback makes the next Rollback return err
func (s *Store) FailNextRollback(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rollback = err
}

// FailNextCommit makes the next Commit discard its work and return err wrapped
// in ErrCommitFailed
func (s *Store) FailNextCommit(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit = err
}

func (s *Store) check(op Op) error {
	s.mu.Lock()
	fault := s.fault
	s.mu.Unlock()
	if fault == nil {
		return nil
	}
	return fault(op)
}

func (s *Store) atomicSupported() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.atomic
}

func txFrom(ctx context.Context) *tx {
	t, _ := ctx.Value(txKey{}).(*tx)
	if t == nil || t.done {
		return nil
	}
	return t
}

// run executes fn against the transaction's working copy, or directly against the
// committed state under the store lock when ctx carries no transaction
func (s *Store) run(ctx context.Context, fn func(st *state) error) error {
	if t := txFrom(ctx); t != nil {
		return fn(t.work)
	}

	s.txLock.Lock()
	defer s.txLock.Unlock()

	s.mu.Lock()
	work := s.committed.clone()
	s.mu.Unlock()

	if err := fn(work); err != nil {
		return err
	}

	s.mu.Lock()
	s.committed = work
	s.mu.Unlock()
	return nil
}

// Begin starts a transaction
func (s *Store) Begin(ctx context.Context) (context.Context, error) {
	if txFrom(ctx) != nil {
		return ctx, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.txLock.Lock()
	s.mu.Lock()
	work := s.committed.clone()
	s.mu.Unlock()

	return context.WithValue(ctx, txKey{}, &tx{work: work}), nil
}

// Commit publishes the transaction's working copy
func (s *Store) Commit(ctx context.Context) error {
	t := txFrom(ctx)
	if t == nil {
		return errors.New("no transaction in context")
	}
	t.done = true

	s.mu.Lock()
	if s.commit != nil {
		err := s.commit
		s.commit = nil
		s.mu.Unlock()
		t.hooks = nil
		s.txLock.Unlock()
		return fmt.Errorf("%w: %w", errs.ErrCommitFailed, err)
	}
	s.committed = t.work
	s.mu.Unlock()
	s.txLock.Unlock()

	for _, fn := range t.hooks {
		fn()
	}
	t.hooks = nil
	return nil
}

// Rollback discards the transaction's working copy
func (s *Store) Rollback(ctx context.Context) error {
	t := txFrom(ctx)
	if t == nil {
		return errors.New("no transaction in context")
	}
	t.done = true
	t.hooks = nil
	s.txLock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rollback != nil {
		err := s.rollback
		s.rollback = nil
		return err
	}
	return nil
}

// InTransaction reports whether ctx carries an open transaction
func (s *Store) InTransaction(ctx context.Context) bool {
	return txFrom(ctx) != nil
}

// AfterCommit defers fn until the transaction in ctx commits
func (s *Store) AfterCommit(ctx context.Context, fn func()) {
	t := txFrom(ctx)
	if t == nil {
		fn()
		return
	}
	t.hooks = append(t.hooks, fn)
}

// Within runs fn in a transaction, joining one already present in ctx
func (s *Store) Within(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.InTransaction(ctx) {
		return fn(ctx)
	}

	txCtx, err := s.Begin(ctx)
	if err != nil {
		return err
	}

	if err := fn(txCtx); err != nil {
		if rbErr := s.Rollback(txCtx); rbErr != nil {
			return &errs.RollbackError{Err: err, RollbackErr: rbErr}
		}
		return err
	}
	return s.Commit(txCtx)
}

// GetAccountRepository returns an account repository bound to ctx
func (s *Store) GetAccountRepository(ctx context.Context) persistence.AccountRepository {
	return &accountRepo{store: s, ctx: ctx}
}

// GetLedgerRepository returns a ledger repository bound to ctx
func (s *Store) GetLedgerRepository(ctx context.Context) persistence.LedgerRepository {
	return &ledgerRepo{store: s, ctx: ctx}
}

// GetGiftRepository returns a gift repository bound to ctx
func (s *Store) GetGiftRepository(ctx context.Context) persistence.GiftRepository {
	return &giftRepo{store: s, ctx: ctx}
}

// GetStreakRepository returns a streak repository bound to ctx
func (s *Store) GetStreakRepository(ctx context.Context) persistence.StreakRepository {
	return &streakRepo{store: s, ctx: ctx}
}

// GetAchievementRepository returns an achievement repository bound to ctx
func (s *Store) GetAchievementRepository(ctx context.Context) persistence.AchievementRepository {
	return &achievementRepo{store: s, ctx: ctx}
}

// GetWithdrawalRepository returns a withdrawal repository bound to ctx
func (s *Store) GetWithdrawalRepository(ctx context.Context) persistence.WithdrawalRepository {
	return &withdrawalRepo{store: s, ctx: ctx}
}
