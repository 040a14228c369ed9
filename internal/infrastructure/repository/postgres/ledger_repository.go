package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pointsrally/pointsrally/internal/domain/ledger"
	qb "github.com/pointsrally/pointsrally/internal/platform/querybuilder"
)

type LedgerRepository struct {
	db *sqlx.DB
}

func NewLedgerRepository(db *sqlx.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

func (r *LedgerRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]ledger.Transaction, error) {
	builder := qb.Select(transactionColumns).From("transactions").
		Where(qb.Eq("user_id", userID)).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder.Limit(limit)
	}
	if offset > 0 {
		builder.Offset(offset)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select transactions query: %w", err)
	}

	var rows []transactionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}

	out := make([]ledger.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *LedgerRepository) ListByUserAndTeam(ctx context.Context, userID, teamID string, limit int) ([]ledger.Transaction, error) {
	builder := qb.Select(transactionColumns).From("transactions").
		Where(
			qb.Eq("user_id", userID),
			qb.Eq("team_id", teamID),
		).
		OrderBy("created_at DESC", "id DESC")
	if limit > 0 {
		builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select team transactions query: %w", err)
	}

	var rows []transactionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select team transactions: %w", err)
	}

	out := make([]ledger.Transaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *LedgerRepository) Apply(ctx context.Context, entry ledger.Entry) (ledger.Transaction, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("begin tx for ledger apply: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	transaction, err := applyEntryTx(ctx, tx, entry)
	if err != nil {
		return ledger.Transaction{}, err
	}

	if err := tx.Commit(); err != nil {
		return ledger.Transaction{}, fmt.Errorf("commit ledger apply tx: %w", err)
	}

	return transaction, nil
}

// Transfer commits both legs in one transaction. The profile rows are
// locked in id order first so two opposite transfers cannot deadlock.
func (r *LedgerRepository) Transfer(ctx context.Context, debit, credit ledger.Entry) (ledger.Transaction, ledger.Transaction, error) {
	if err := debit.Validate(); err != nil {
		return ledger.Transaction{}, ledger.Transaction{}, err
	}
	if err := credit.Validate(); err != nil {
		return ledger.Transaction{}, ledger.Transaction{}, err
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return ledger.Transaction{}, ledger.Transaction{}, fmt.Errorf("begin tx for transfer: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := lockProfilesTx(ctx, tx, debit.UserID, credit.UserID); err != nil {
		return ledger.Transaction{}, ledger.Transaction{}, err
	}

	debitTx, err := applyEntryTx(ctx, tx, debit)
	if err != nil {
		return ledger.Transaction{}, ledger.Transaction{}, err
	}
	creditTx, err := applyEntryTx(ctx, tx, credit)
	if err != nil {
		return ledger.Transaction{}, ledger.Transaction{}, err
	}

	if err := tx.Commit(); err != nil {
		return ledger.Transaction{}, ledger.Transaction{}, fmt.Errorf("commit transfer tx: %w", err)
	}

	return debitTx, creditTx, nil
}

func lockProfilesTx(ctx context.Context, tx *sqlx.Tx, userIDs ...string) error {
	var locked []string
	if err := tx.SelectContext(ctx, &locked,
		`SELECT id FROM profiles WHERE id = ANY($1) ORDER BY id FOR UPDATE`, pq.Array(userIDs)); err != nil {
		return fmt.Errorf("lock profiles: %w", err)
	}

	return nil
}

// applyEntryTx is the single write path for ledger mutations: lock the
// profile row, enforce the funds guard, adjust the team balance when
// team-scoped, recompute total and tier, insert the transaction row.
func applyEntryTx(ctx context.Context, tx *sqlx.Tx, entry ledger.Entry) (ledger.Transaction, error) {
	if err := entry.Validate(); err != nil {
		return ledger.Transaction{}, err
	}

	now := time.Now().UTC()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO profiles (id, email, tier, created_at, updated_at)
VALUES ($1, $2, 'bronze', $3, $3)
ON CONFLICT (id) DO NOTHING`, entry.UserID, placeholderEmail(entry.UserID), now); err != nil {
		return ledger.Transaction{}, fmt.Errorf("ensure profile exists: %w", err)
	}

	var total int
	if err := tx.GetContext(ctx, &total,
		`SELECT total_points FROM profiles WHERE id = $1 FOR UPDATE`, entry.UserID); err != nil {
		return ledger.Transaction{}, fmt.Errorf("lock profile: %w", err)
	}

	if entry.RequireFunds && entry.Debit() && total < -entry.Amount {
		return ledger.Transaction{}, ledger.ErrInsufficientBalance
	}

	if entry.TeamID != "" {
		var balance int
		if err := tx.GetContext(ctx, &balance,
			`SELECT points_balance FROM user_teams WHERE user_id = $1 AND team_id = $2 FOR UPDATE`,
			entry.UserID, entry.TeamID); err != nil {
			if isNotFound(err) {
				return ledger.Transaction{}, fmt.Errorf("no connection for user %s team %s", entry.UserID, entry.TeamID)
			}
			return ledger.Transaction{}, fmt.Errorf("lock connection: %w", err)
		}

		if entry.SetTeamBalance != nil {
			if _, err := tx.ExecContext(ctx,
				`UPDATE user_teams SET points_balance = $1, last_synced_at = $2 WHERE user_id = $3 AND team_id = $4`,
				*entry.SetTeamBalance, now, entry.UserID, entry.TeamID); err != nil {
				return ledger.Transaction{}, fmt.Errorf("overwrite team balance: %w", err)
			}
		} else {
			next := ledger.ApplyDelta(balance, entry.Amount)
			if _, err := tx.ExecContext(ctx,
				`UPDATE user_teams SET points_balance = $1 WHERE user_id = $2 AND team_id = $3`,
				next, entry.UserID, entry.TeamID); err != nil {
				return ledger.Transaction{}, fmt.Errorf("adjust team balance: %w", err)
			}
		}

		if err := tx.GetContext(ctx, &total,
			`SELECT COALESCE(SUM(points_balance), 0) FROM user_teams WHERE user_id = $1`, entry.UserID); err != nil {
			return ledger.Transaction{}, fmt.Errorf("sum team balances: %w", err)
		}
	} else {
		total = ledger.ApplyDelta(total, entry.Amount)
	}

	tier := ledger.ComputeTier(total)
	if _, err := tx.ExecContext(ctx,
		`UPDATE profiles SET total_points = $1, tier = $2, updated_at = $3 WHERE id = $4`,
		total, string(tier), now, entry.UserID); err != nil {
		return ledger.Transaction{}, fmt.Errorf("update profile total: %w", err)
	}

	transaction := ledger.Transaction{
		ID:           uuid.NewString(),
		UserID:       entry.UserID,
		TeamID:       entry.TeamID,
		Type:         entry.Type,
		Amount:       entry.Amount,
		BalanceAfter: total,
		Description:  entry.Description,
		Metadata:     entry.Metadata,
		CreatedAt:    now,
	}

	insertSQL, insertArgs, err := sqlx.Named(`
INSERT INTO transactions (id, user_id, team_id, type, amount, balance_after, description, metadata, created_at)
VALUES (:id, :user_id, :team_id, :type, :amount, :balance_after, :description, :metadata::jsonb, :created_at)`,
		map[string]any{
			"id":            transaction.ID,
			"user_id":       transaction.UserID,
			"team_id":       nullableString(transaction.TeamID),
			"type":          string(transaction.Type),
			"amount":        transaction.Amount,
			"balance_after": transaction.BalanceAfter,
			"description":   transaction.Description,
			"metadata":      encodeJSONMap(transaction.Metadata),
			"created_at":    transaction.CreatedAt,
		})
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("bind insert transaction query: %w", err)
	}
	insertSQL = tx.Rebind(insertSQL)
	if _, err := tx.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
		return ledger.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	return transaction, nil
}
