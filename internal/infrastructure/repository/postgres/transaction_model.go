package postgres

import (
	"time"

	"github.com/pointsrally/pointsrally/internal/domain/ledger"
)

type transactionTableModel struct {
	ID           string    `db:"id"`
	UserID       string    `db:"user_id"`
	TeamID       *string   `db:"team_id"`
	Type         string    `db:"type"`
	Amount       int       `db:"amount"`
	BalanceAfter int       `db:"balance_after"`
	Description  string    `db:"description"`
	Metadata     string    `db:"metadata"`
	CreatedAt    time.Time `db:"created_at"`
}

func (m transactionTableModel) toDomain() ledger.Transaction {
	t := ledger.Transaction{
		ID:           m.ID,
		UserID:       m.UserID,
		Type:         ledger.TransactionType(m.Type),
		Amount:       m.Amount,
		BalanceAfter: m.BalanceAfter,
		Description:  m.Description,
		Metadata:     decodeJSONMap(m.Metadata),
		CreatedAt:    m.CreatedAt,
	}
	if m.TeamID != nil {
		t.TeamID = *m.TeamID
	}
	return t
}

const transactionColumns = `id, user_id, team_id, type, amount, balance_after, description, metadata::text AS metadata, created_at`
