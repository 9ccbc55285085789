package memstore

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
)

// SeedAccount opens an account funded through a bonus ledger entry so the
// balance and ledger agree from the start
func (s *Store) SeedAccount(id uint64, balance int64) {
	s.txLock.Lock()
	defer s.txLock.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	account := entity.Account{
		ID:             id,
		Balance:        balance,
		LifetimeEarned: balance,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.committed.accounts[id] = account

	if balance > 0 {
		appendEntry(s.committed, &entity.LedgerEntry{
			ID:            uuid.NewString(),
			AccountID:     id,
			Kind:          entity.KindBonus,
			Amount:        balance,
			BalanceAfter:  balance,
			Description:   "seed",
			ReferenceID:   fmt.Sprintf("seed-%d", id),
			ReferenceType: entity.RefTypeAdmin,
			CreatedAt:     now,
		})
	}
}

// SeedCatalog adds catalog items
func (s *Store) SeedCatalog(items ...entity.GiftCatalogItem) {
	s.txLock.Lock()
	defer s.txLock.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		s.committed.catalog[item.ID] = item
	}
}

// SeedStreak stores a streak as is
func (s *Store) SeedStreak(streak entity.Streak) {
	s.txLock.Lock()
	defer s.txLock.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()

	if streak.ID == 0 {
		streak.ID = s.committed.id()
	}
	s.committed.streaks[streakKey{userID: streak.UserID, streakType: streak.Type}] = streak
}

// Account returns the committed account, or nil
func (s *Store) Account(id uint64) *entity.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	account, ok := s.committed.accounts[id]
	if !ok {
		return nil
	}
	return &account
}

// Entries returns the committed ledger entries of an account, oldest first
func (s *Store) Entries(accountID uint64) []entity.LedgerEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []entity.LedgerEntry
	for _, e := range s.committed.ledger {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out
}

// LedgerSum returns the sum of an account's committed ledger amounts
func (s *Store) LedgerSum(accountID uint64) int64 {
	var sum int64
	for _, e := range s.Entries(accountID) {
		sum += e.Amount
	}
	return sum
}

// Gifts returns every committed gift
func (s *Store) Gifts() []entity.Gift {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entity.Gift, 0, len(s.committed.gifts))
	for _, g := range s.committed.gifts {
		out = append(out, g)
	}
	return out
}

// UnlockedCount returns how many times an achievement is recorded for a user
func (s *Store) UnlockedCount(userID uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for k := range s.committed.unlocked {
		if k.userID == userID {
			count++
		}
	}
	return count
}

// Withdrawal returns a committed withdrawal request, or nil
func (s *Store) Withdrawal(id string) *entity.WithdrawalRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.committed.withdrawals[id]
	if !ok {
		return nil
	}
	return &w
}
