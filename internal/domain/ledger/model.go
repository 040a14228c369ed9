package ledger

import (
	"errors"
	"fmt"
	"time"
)

// TransactionType classifies a ledger entry.
type TransactionType string

const (
	TypeEarned      TransactionType = "earned"
	TypeRedeemed    TransactionType = "redeemed"
	TypeTransferred TransactionType = "transferred"
	TypeExpired     TransactionType = "expired"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TypeEarned, TypeRedeemed, TypeTransferred, TypeExpired:
		return true
	default:
		return false
	}
}

// ErrInsufficientBalance is returned when a guarded debit exceeds the
// user's current total points.
var ErrInsufficientBalance = errors.New("insufficient points balance")

// Transaction is one append-only ledger record. Rows are never mutated
// or deleted after insert.
type Transaction struct {
	ID           string
	UserID       string
	TeamID       string // empty for team-less entries (transfers, some redemptions)
	Type         TransactionType
	Amount       int // signed: credits positive, debits negative
	BalanceAfter int
	Description  string
	Metadata     map[string]any
	CreatedAt    time.Time
}

// Entry describes a ledger mutation before it is applied. Repositories
// apply an Entry atomically: insert the transaction, adjust the team
// balance (when team-scoped), and recompute the profile total and tier.
type Entry struct {
	UserID      string
	TeamID      string
	Type        TransactionType
	Amount      int
	Description string
	Metadata    map[string]any

	// RequireFunds makes the apply fail with ErrInsufficientBalance when
	// the debit exceeds the current total. Without it the resulting
	// balances clamp at zero (expiration semantics).
	RequireFunds bool

	// SetTeamBalance overwrites the team balance to an absolute value
	// instead of applying Amount incrementally. Used by external sync.
	SetTeamBalance *int
}

func (e Entry) Validate() error {
	if e.UserID == "" {
		return fmt.Errorf("entry user id is required")
	}
	if !e.Type.Valid() {
		return fmt.Errorf("invalid transaction type %q", e.Type)
	}
	if e.SetTeamBalance != nil {
		if e.TeamID == "" {
			return fmt.Errorf("absolute balance entry requires a team id")
		}
		if *e.SetTeamBalance < 0 {
			return fmt.Errorf("absolute team balance cannot be negative")
		}
	} else if e.Amount == 0 {
		return fmt.Errorf("entry amount cannot be zero")
	}
	if e.Description == "" {
		return fmt.Errorf("entry description is required")
	}

	return nil
}

// Debit reports whether the entry removes points.
func (e Entry) Debit() bool {
	return e.SetTeamBalance == nil && e.Amount < 0
}
