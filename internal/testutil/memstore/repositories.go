package memstore

import (
	"context"
	"sort"

	"github.com/amirhossein-jamali/gem-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/gem-ledger/internal/domain/error"
)

// pick prefers the transaction carried by the call context over the one the
// repository was created with
func pick(call, bound context.Context) context.Context {
	if txFrom(call) != nil || bound == nil {
		return call
	}
	return bound
}

type accountRepo struct {
	store *Store
	ctx   context.Context
}

func (r *accountRepo) GetByID(ctx context.Context, id uint64) (*entity.Account, error) {
	var out *entity.Account
	err := r.store.run(pick(ctx, r.ctx), func(st *state) error {
		if err := r.store.check(Op{Name: "account.get", AccountID: id}); err != nil {
			return err
		}
		account, ok := st.accounts[id]
		if !ok {
			return errs.ErrAccountNotFound
		}
		out = &account
		return nil
	})
	return out, err
}

func (r *accountRepo) GetForUpdate(ctx context.Context, id uint64) (*entity.Account, error) {
	return r.GetByID(ctx, id)
}

func (r *accountRepo) Create(ctx context.Context, account *entity.Account) error {
	return r.store.run(pick(ctx, r.ctx), func(st *state) error {
		if _, ok := st.accounts[account.ID]; ok {
			return errs.ErrDuplicateAccount
		}
		st.accounts[account.ID] = *account
		return nil
	})
}

func (r *accountRepo) UpdateIfVersion(ctx context.Context, account *entity.Account, expectedVersion int64) error {
	return r.store.run(pick(ctx, r.ctx), func(st *state) error {
		if err := r.store.check(Op{Name: "account.update", AccountID: account.ID}); err != nil {
			return err
		}
		stored, ok := st.accounts[account.ID]
		if !ok {
			return errs.ErrAccountNotFound
		}
		if stored.Version != expectedVersion {
			return errs.ErrConcurrentModification
		}
		if account.Balance < 0 || account.HeldBalance > account.Balance {
			return errs.ErrConstraintViolation
		}
		st.accounts[account.ID] = *account
		return nil
	})
}

func (r *accountRepo) ApplyMutation(ctx context.Context, entry *entity.LedgerEntry) error {
	if !r.store.atomicSupported() {
		return errs.ErrSchemaNotProvisioned
	}
	return r.store.run(pick(ctx, r.ctx), func(st *state) error {
		if err := r.store.check(Op{Name: "account.apply", AccountID: entry.AccountID}); err != nil {
			return err
		}
		account, ok := st.accounts[entry.AccountID]
		if !ok {
			return errs.ErrAccountNotFound
		}
		if _, dup := st.ledgerIndex[keyOf(entry)]; dup {
			return errs.ErrDuplicateMutation
		}
		if entry.Amount < 0 {
			if account.Balance-account.HeldBalance < -entry.Amount {
				return errs.NewInsufficientFundsError(account.ID, -entry.Amount, account.Balance-account.HeldBalance)
			}
			account.LifetimeSpent += -entry.Amount
		} else {
			account.LifetimeEarned += entry.Amount
		}
		account.Balance += entry.Amount
		account.Version++
		account.UpdatedAt = entry.CreatedAt
		st.accounts[account.ID] = account

		entry.BalanceAfter = account.Balance
		appendEntry(st, entry)
		return nil
	})
}

func keyOf(entry *entity.LedgerEntry) ledgerKey {
	return ledgerKey{
		accountID:     entry.AccountID,
		kind:          entry.Kind,
		referenceType: entry.ReferenceType,
		referenceID:   entry.ReferenceID,
	}
}

func appendEntry(st *state, entry *entity.LedgerEntry) {
	st.ledger = append(st.ledger, *entry)
	st.ledgerIndex[keyOf(entry)] = len(st.ledger) - 1
}

type ledgerRepo struct {
	store *Store
	ctx   context.Context
}

func (r *ledgerRepo) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	return r.store.run(pick(ctx, r.ctx), func(st *state) error {
		if err := r.store.check(Op{Name: "ledger.append", AccountID: entry.AccountID}); err != nil {
			return err
		}
		if _, ok := st.accounts[entry.AccountID]; !ok {
			return errs.ErrAccountNotFound
		}
		if _, dup := st.ledgerIndex[keyOf(entry)]; dup {
			return errs.ErrDuplicateMutation
		}
		appendEntry(st, entry)
		return nil
	})
}

func (r *ledgerRepo) FindForReference(
	ctx context.Context,
	accountID uint64,
	kind entity.EntryKind,
	referenceID, referenceType string,
) (*entity.LedgerEntry, error) {
	var out *entity.LedgerEntry
	err := r.store.run(pick(ctx, r.ctx), func(st *state) error {
		idx, ok := st.ledgerIndex[ledgerKey{accountID: accountID, kind: kind, referenceType: referenceType, referenceID: referenceID}]
		if !ok {
			return errs.ErrLedgerEntryNotFound
		}
		entry := st.ledger[idx]
		out = &entry
		return nil
	})
	return out, err
}

func (r *ledgerRepo) FindByReference(ctx context.Context, referenceID, referenceType string) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	err := r.store.run(pick(ctx, r.ctx), func(st *state) error {
		for i := range st.ledger {
			if st.ledger[i].ReferenceID == referenceID && st.ledger[i].ReferenceType == referenceType {
				entry := st.ledger[i]
				out = append(out, &entry)
			}
		}
		return nil
	})
	return out, err
}

func (r *ledgerRepo) ListByAccount(ctx context.Context, accountID uint64, limit int) ([]*entity.LedgerEntry, error) {
	var out []*entity.LedgerEntry
	err := r.store.run(pick(ctx, r.ctx), func(st *state) error {
		for i := len(st.ledger) - 1; i >= 0; i-- {
			if st.ledger[i].AccountID != accountID {
				continue
			}
			entry := st.ledger[i]
			out = append(out, &entry)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (r *ledgerRepo) SumByAccount(ctx context.Context, accountID uint64) (int64, error) {
	var sum int64
	err := r.store.run(pick(ctx, r.ctx), func(st *state) error {
		for i := range st.ledger {
			if st.ledger[i].AccountID == accountID {
				sum += st.ledger[i].Amount
			}
		}
		return nil
	})
	return sum, err
}

type giftRepo struct {
	store *Store
	ctx   context.Context
}

func (r *giftRepo) GetCatalogItem(ctx context.Context, catalogID string) (*entity.GiftCatalogItem, error) {
	var out *entity.GiftCatalogItem
	err := r.store.run(pick(ctx, r.ctx), func(st *state) error {
		item, ok := st.catalog[catalogID]
		if !ok || !item.Active {
			return errs.ErrUnknownGift
		}
		out = &item
		return nil
	})
	return out, err
}

func (r *giftRepo) ListCatalog(ctx context.Context) ([]*entity.GiftCatalogItem, error) {
	var out []*entity.GiftCatalogItem
	err := r.store.run(pick(ctx, r.ctx), func(st *state) error {
		for _, item := range st.catalog {
			if item.Active {
				item := item
				out = append(out, &item)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Position != out[j].Position {
			return out[i].Position < out[j].Position
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}

func (r *giftRepo) Create(ctx context.Context, gift *entity.Gift) error {
	return r.store.run(pick(ctx, r.ctx), func(st *state) error {
		if err := r.store.check(Op{Name: "gift.create", AccountID: gift.SenderID}); err != nil {
			return err
		}
		if _, ok := st.accounts[gift.SenderID]; !ok {
			return errs.ErrAccountNotFound
		}
		if _, ok := st.accounts[gift.RecipientID]; !ok {
			return errs.ErrAccountNotFound
		}
		st.gifts[gift.ID] = *gift
		return nil
	})
}

func (r *giftRepo) GetByID(ctx context.Context, id string) (*entity.Gift, error) {
	var out *entity.Gift
	err := r.store.run(pick(ctx, r.ctx), func(st *state) error {
		gift, ok := st.gifts[id]
		if !ok {
			return errs.ErrGiftNotFound
		}
		out = &gift
		return nil
	})
	return out, err
}

type streakRepo struct {
	store *Store
	ctx   context.Context
}

func (r *streakRepo) GetCompletion(ctx context.Context, userID uint64, date entity.Date) (*entity.DailyCompletion, error) {
	var out *entity.DailyCompletion
	err := r.store.run(pick(ctx, r.ctx), func(st *state) error {
		completion, ok := st.completions[completionKey{userID: userID, date: date}]
		if !ok {
			return errs.ErrCompletionNotFound
		}
		out = &completion
		return nil
	})
	return out, err
}

func (r *streakRepo) SaveCompletion(ctx context.Context, completion *entity.DailyCompletion) error {
	return r.store.run(pick(ctx, r.ctx), func(st *state) error {
		if err := r.store.check(Op{Name: "completion.save", AccountID: completion.UserID}); err != nil {
			return err
		}
		key := completionKey{userID: completion.UserID, date: completion.Date}
		if stored, ok := st.completions[key]; ok {
			if completion.ID == 0 {
				return errs.ErrConcurrentModification
			}
			completion.AffirmationDone = completion.AffirmationDone || stored.AffirmationDone
			completion.HabitDone = completion.HabitDone || stored.HabitDone
			completion.GoalDone = completion.GoalDone || stored.GoalDone
			completion.Recompute()
		} else if completion.ID == 0 {
			completion.ID = st.id()
		}
		st.completions[key] = *completion
		return nil
	})
}

func (r *streakRepo) GetStreak(ctx context.Context, userID uint64, streakType entity.StreakType) (*entity.Streak, error) {
	var out *entity.Streak
	err := r.store.run(pick(ctx, r.ctx), func(st *state) error {
		streak, ok := st.streaks[streakKey{userID: userID, streakType: streakType}]
		if !ok {
			return errs.ErrStreakNotFound
		}
		out = &streak
		return nil
	})
	return out, err
}

func (r *streakRepo) SaveStreak(ctx context.Context, streak *entity.Streak) error {
	return r.store.run(pick(ctx, r.ctx), func(st *state) error {
		if err := r.store.check(Op{Name: "streak.save", AccountID: streak.UserID}); err != nil {
			return err
		}
		key := streakKey{userID: streak.UserID, streakType: streak.Type}
		if _, ok := st.streaks[key]; ok && streak.ID == 0 {
			return errs.ErrConcurrentModification
		}
		if streak.ID == 0 {
			streak.ID = st.id()
		}
		st.streaks[key] = *streak
		return nil
	})
}

func (r *streakRepo) ListStreaks(ctx context.Context, userID uint64) ([]*entity.Streak, error) {
	var out []*entity.Streak
	err := r.store.run(pick(ctx, r.ctx), func(st *state) error {
		for _, t := range entity.StreakTypes {
			if streak, ok := st.streaks[streakKey{userID: userID, streakType: t}]; ok {
				out = append(out, &streak)
			}
		}
		return nil
	})
	return out, err
}

type achievementRepo struct {
	store *Store
	ctx   context.Context
}

func (r *achievementRepo) Unlock(ctx context.Context, unlocked *entity.UnlockedAchievement) (bool, error) {
	created := false
	err := r.store.run(pick(ctx, r.ctx), func(st *state) error {
		if err := r.store.check(Op{Name: "achievement.unlock", AccountID: unlocked.UserID}); err != nil {
			return err
		}
		key := unlockKey{userID: unlocked.UserID, achievementID: unlocked.AchievementID}
		if _, ok := st.unlocked[key]; ok {
			return nil
		}
		unlocked.ID = st.id()
		st.unlocked[key] = *unlocked
		created = true
		return nil
	})
	return created, err
}

func (r *achievementRepo) ListUnlocked(ctx context.Context, userID uint64) ([]*entity.UnlockedAchievement, error) {
	var out []*entity.UnlockedAchievement
	err := r.store.run(pick(ctx, r.ctx), func(st *state) error {
		for _, u := range st.unlocked {
			if u.UserID == userID {
				u := u
				out = append(out, &u)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

type withdrawalRepo struct {
	store *Store
	ctx   context.Context
}

func (r *withdrawalRepo) Create(ctx context.Context, request *entity.WithdrawalRequest) error {
	return r.store.run(pick(ctx, r.ctx), func(st *state) error {
		if err := r.store.check(Op{Name: "withdrawal.create", AccountID: request.PartnerID}); err != nil {
			return err
		}
		for _, w := range st.withdrawals {
			if w.PartnerID == request.PartnerID && w.Status == entity.WithdrawalPending {
				return errs.ErrPendingWithdrawalExists
			}
		}
		st.withdrawals[request.ID] = *request
		return nil
	})
}

func (r *withdrawalRepo) GetForUpdate(ctx context.Context, id string) (*entity.WithdrawalRequest, error) {
	var out *entity.WithdrawalRequest
	err := r.store.run(pick(ctx, r.ctx), func(st *state) error {
		w, ok := st.withdrawals[id]
		if !ok {
			return errs.ErrWithdrawalNotFound
		}
		out = &w
		return nil
	})
	return out, err
}

func (r *withdrawalRepo) HasPending(ctx context.Context, partnerID uint64) (bool, error) {
	found := false
	err := r.store.run(pick(ctx, r.ctx), func(st *state) error {
		for _, w := range st.withdrawals {
			if w.PartnerID == partnerID && w.Status == entity.WithdrawalPending {
				found = true
			}
		}
		return nil
	})
	return found, err
}

func (r *withdrawalRepo) Update(ctx context.Context, request *entity.WithdrawalRequest, expectedStatus entity.WithdrawalStatus) error {
	return r.store.run(pick(ctx, r.ctx), func(st *state) error {
		if err := r.store.check(Op{Name: "withdrawal.update", AccountID: request.PartnerID}); err != nil {
			return err
		}
		stored, ok := st.withdrawals[request.ID]
		if !ok {
			return errs.ErrWithdrawalNotFound
		}
		if stored.Status != expectedStatus {
			return errs.ErrConcurrentModification
		}
		st.withdrawals[request.ID] = *request
		return nil
	})
}

func (r *withdrawalRepo) ListByPartner(ctx context.Context, partnerID uint64, limit int) ([]*entity.WithdrawalRequest, error) {
	var out []*entity.WithdrawalRequest
	err := r.store.run(pick(ctx, r.ctx), func(st *state) error {
		for _, w := range st.withdrawals {
			if w.PartnerID == partnerID {
				w := w
				out = append(out, &w)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}
