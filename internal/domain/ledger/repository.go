package ledger

import "context"

// Repository describes ledger persistence needs from use cases.
//
// Apply and Transfer are atomic: the transaction insert, the balance
// adjustments, and the profile total/tier recomputation either all
// happen or none do. Implementations serialize concurrent mutations on
// the same profile (row locks in postgres, a store mutex in memory).
type Repository interface {
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Transaction, error)
	ListByUserAndTeam(ctx context.Context, userID, teamID string, limit int) ([]Transaction, error)
	Apply(ctx context.Context, entry Entry) (Transaction, error)
	Transfer(ctx context.Context, debit, credit Entry) (Transaction, Transaction, error)
}
