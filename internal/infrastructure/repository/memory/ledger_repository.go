package memory

import (
	"context"

	"github.com/pointsrally/pointsrally/internal/domain/ledger"
)

type LedgerRepository struct {
	store *Store
}

func (r *LedgerRepository) ListByUser(_ context.Context, userID string, limit, offset int) ([]ledger.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]ledger.Transaction, 0)
	for i := len(r.store.transactions) - 1; i >= 0; i-- {
		if r.store.transactions[i].UserID == userID {
			matched = append(matched, r.store.transactions[i])
		}
	}

	if offset >= len(matched) {
		return []ledger.Transaction{}, nil
	}
	matched = matched[offset:]
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

func (r *LedgerRepository) ListByUserAndTeam(_ context.Context, userID, teamID string, limit int) ([]ledger.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	matched := make([]ledger.Transaction, 0)
	for i := len(r.store.transactions) - 1; i >= 0; i-- {
		item := r.store.transactions[i]
		if item.UserID == userID && item.TeamID == teamID {
			matched = append(matched, item)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	return matched, nil
}

func (r *LedgerRepository) Apply(_ context.Context, entry ledger.Entry) (ledger.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.applyEntryLocked(entry)
}

// Transfer applies both legs under one lock acquisition so no reader
// can observe the debit without the credit.
func (r *LedgerRepository) Transfer(_ context.Context, debit, credit ledger.Entry) (ledger.Transaction, ledger.Transaction, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	// validate both legs before touching state so a bad credit cannot
	// leave a half-applied transfer behind
	if err := debit.Validate(); err != nil {
		return ledger.Transaction{}, ledger.Transaction{}, err
	}
	if err := credit.Validate(); err != nil {
		return ledger.Transaction{}, ledger.Transaction{}, err
	}

	debitTx, err := r.store.applyEntryLocked(debit)
	if err != nil {
		return ledger.Transaction{}, ledger.Transaction{}, err
	}
	creditTx, err := r.store.applyEntryLocked(credit)
	if err != nil {
		return ledger.Transaction{}, ledger.Transaction{}, err
	}

	return debitTx, creditTx, nil
}
