package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pointsrally/pointsrally/internal/domain/ledger"
	"github.com/pointsrally/pointsrally/internal/domain/reward"
	qb "github.com/pointsrally/pointsrally/internal/platform/querybuilder"
)

type RewardRepository struct {
	db *sqlx.DB
}

func NewRewardRepository(db *sqlx.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

func (r *RewardRepository) List(ctx context.Context, filter reward.Filter) ([]reward.Reward, error) {
	conditions := make([]qb.Condition, 0, 4)
	if filter.Category != "" {
		conditions = append(conditions, qb.Eq("category", filter.Category))
	}
	if filter.TeamID != "" {
		conditions = append(conditions, qb.Eq("team_id", filter.TeamID))
	}
	if filter.MaxPoints > 0 {
		conditions = append(conditions, qb.Lte("points_cost", filter.MaxPoints))
	}
	if filter.Availability != "" {
		conditions = append(conditions, qb.Eq("availability", string(filter.Availability)))
	}

	builder := qb.Select("*").From("rewards").OrderBy("points_cost", "id")
	if len(conditions) > 0 {
		builder.Where(conditions...)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select rewards query: %w", err)
	}

	var rows []rewardTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select rewards: %w", err)
	}

	out := make([]reward.Reward, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *RewardRepository) GetByID(ctx context.Context, rewardID string) (reward.Reward, bool, error) {
	var row rewardTableModel
	if err := r.db.GetContext(ctx, &row, `SELECT * FROM rewards WHERE id = $1`, rewardID); err != nil {
		if isNotFound(err) {
			return reward.Reward{}, false, nil
		}
		return reward.Reward{}, false, fmt.Errorf("get reward: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *RewardRepository) ListAffordable(ctx context.Context, maxCost int) ([]reward.Reward, error) {
	query, args, err := qb.Select("*").From("rewards").
		Where(
			qb.Lte("points_cost", maxCost),
			qb.Neq("availability", string(reward.AvailabilitySoldOut)),
			qb.Expr("(expires_at IS NULL OR expires_at > NOW())"),
		).
		OrderBy("points_cost DESC", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select affordable rewards query: %w", err)
	}

	var rows []rewardTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select affordable rewards: %w", err)
	}

	out := make([]reward.Reward, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

func (r *RewardRepository) ListFeatured(ctx context.Context, limit int) ([]reward.Reward, error) {
	builder := qb.Select("*").From("rewards").
		Where(
			qb.Neq("availability", string(reward.AvailabilitySoldOut)),
			qb.Expr("(expires_at IS NULL OR expires_at > NOW())"),
		).
		OrderBy("points_cost DESC", "id")
	if limit > 0 {
		builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select featured rewards query: %w", err)
	}

	var rows []rewardTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select featured rewards: %w", err)
	}

	out := make([]reward.Reward, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}

// Redeem commits the redemption insert, the stock decrement (with the
// soldout flip at zero) and the ledger debit in one transaction. The
// reward row is locked first so the stock re-check under the lock makes
// the last unit go to exactly one caller.
func (r *RewardRepository) Redeem(ctx context.Context, redemption reward.Redemption, entry ledger.Entry) (reward.Redemption, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return reward.Redemption{}, fmt.Errorf("begin tx for redeem: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var row rewardTableModel
	if err := tx.GetContext(ctx, &row, `SELECT * FROM rewards WHERE id = $1 FOR UPDATE`, redemption.RewardID); err != nil {
		if isNotFound(err) {
			return reward.Redemption{}, fmt.Errorf("reward %s not found", redemption.RewardID)
		}
		return reward.Redemption{}, fmt.Errorf("lock reward: %w", err)
	}

	item := row.toDomain()
	now := time.Now().UTC()
	if item.ExpiredAt(now) {
		return reward.Redemption{}, reward.ErrExpired
	}
	if item.Availability == reward.AvailabilitySoldOut {
		return reward.Redemption{}, reward.ErrSoldOut
	}
	if item.Stock != nil && *item.Stock < redemption.Quantity {
		return reward.Redemption{}, reward.ErrSoldOut
	}

	if _, err := applyEntryTx(ctx, tx, entry); err != nil {
		return reward.Redemption{}, err
	}

	if item.Stock != nil {
		remaining := *item.Stock - redemption.Quantity
		availability := item.Availability
		if remaining == 0 {
			availability = reward.AvailabilitySoldOut
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE rewards SET stock = $1, availability = $2 WHERE id = $3`,
			remaining, string(availability), item.ID); err != nil {
			return reward.Redemption{}, fmt.Errorf("decrement reward stock: %w", err)
		}
	}

	if redemption.CreatedAt.IsZero() {
		redemption.CreatedAt = now
	}
	insertSQL, insertArgs, err := sqlx.Named(`
INSERT INTO redemptions (id, user_id, reward_id, points_used, quantity, status, redemption_code, processed_at, created_at)
VALUES (:id, :user_id, :reward_id, :points_used, :quantity, :status, :redemption_code, :processed_at, :created_at)`,
		map[string]any{
			"id":              redemption.ID,
			"user_id":         redemption.UserID,
			"reward_id":       redemption.RewardID,
			"points_used":     redemption.PointsUsed,
			"quantity":        redemption.Quantity,
			"status":          string(redemption.Status),
			"redemption_code": redemption.Code,
			"processed_at":    nullableTime(redemption.ProcessedAt),
			"created_at":      redemption.CreatedAt.UTC(),
		})
	if err != nil {
		return reward.Redemption{}, fmt.Errorf("bind insert redemption query: %w", err)
	}
	insertSQL = tx.Rebind(insertSQL)
	if _, err := tx.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
		return reward.Redemption{}, fmt.Errorf("insert redemption: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return reward.Redemption{}, fmt.Errorf("commit redeem tx: %w", err)
	}

	return redemption, nil
}

func (r *RewardRepository) ListRedemptionsByUser(ctx context.Context, userID string, status reward.RedemptionStatus) ([]reward.RedemptionDetail, error) {
	query := `
SELECT
    r.id, r.user_id, r.reward_id, r.points_used, r.quantity, r.status,
    r.redemption_code, r.processed_at, r.created_at,
    w.id AS w_id, w.team_id AS w_team_id, w.name AS w_name, w.description AS w_description,
    w.category AS w_category, w.points_cost AS w_points_cost, w.availability AS w_availability,
    w.stock AS w_stock, w.image_url AS w_image_url, w.expires_at AS w_expires_at,
    w.created_at AS w_created_at
FROM redemptions r
JOIN rewards w ON w.id = r.reward_id
WHERE r.user_id = $1`
	args := []any{userID}
	if status != "" {
		query += ` AND r.status = $2`
		args = append(args, string(status))
	}
	query += ` ORDER BY r.created_at DESC, r.id DESC`

	var rows []struct {
		redemptionTableModel
		RewardID2          string     `db:"w_id"`
		RewardTeamID       *string    `db:"w_team_id"`
		RewardName         string     `db:"w_name"`
		RewardDescription  *string    `db:"w_description"`
		RewardCategory     string     `db:"w_category"`
		RewardPointsCost   int        `db:"w_points_cost"`
		RewardAvailability string     `db:"w_availability"`
		RewardStock        *int       `db:"w_stock"`
		RewardImageURL     *string    `db:"w_image_url"`
		RewardExpiresAt    *time.Time `db:"w_expires_at"`
		RewardCreatedAt    time.Time  `db:"w_created_at"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select redemptions: %w", err)
	}

	out := make([]reward.RedemptionDetail, 0, len(rows))
	for _, row := range rows {
		joined := rewardTableModel{
			ID:           row.RewardID2,
			TeamID:       row.RewardTeamID,
			Name:         row.RewardName,
			Description:  row.RewardDescription,
			Category:     row.RewardCategory,
			PointsCost:   row.RewardPointsCost,
			Availability: row.RewardAvailability,
			Stock:        row.RewardStock,
			ImageURL:     row.RewardImageURL,
			ExpiresAt:    row.RewardExpiresAt,
			CreatedAt:    row.RewardCreatedAt,
		}
		out = append(out, reward.RedemptionDetail{
			Redemption: row.redemptionTableModel.toDomain(),
			Reward:     joined.toDomain(),
		})
	}

	return out, nil
}

func (r *RewardRepository) GetRedemptionByID(ctx context.Context, redemptionID string) (reward.Redemption, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM redemptions WHERE id = $1`, redemptionColumns)

	var row redemptionTableModel
	if err := r.db.GetContext(ctx, &row, query, redemptionID); err != nil {
		if isNotFound(err) {
			return reward.Redemption{}, false, nil
		}
		return reward.Redemption{}, false, fmt.Errorf("get redemption: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *RewardRepository) UpdateRedemptionStatus(ctx context.Context, redemptionID string, status reward.RedemptionStatus, processedAt *time.Time) (reward.Redemption, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return reward.Redemption{}, fmt.Errorf("begin tx for redemption status update: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := fmt.Sprintf(`SELECT %s FROM redemptions WHERE id = $1 FOR UPDATE`, redemptionColumns)
	var row redemptionTableModel
	if err := tx.GetContext(ctx, &row, query, redemptionID); err != nil {
		if isNotFound(err) {
			return reward.Redemption{}, fmt.Errorf("redemption %s not found", redemptionID)
		}
		return reward.Redemption{}, fmt.Errorf("lock redemption: %w", err)
	}

	current := row.toDomain()
	if !current.Status.CanTransitionTo(status) {
		return reward.Redemption{}, reward.ErrStatusTransition
	}

	current.Status = status
	if processedAt != nil {
		current.ProcessedAt = nullableTime(processedAt)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE redemptions SET status = $1, processed_at = $2 WHERE id = $3`,
		string(current.Status), nullableTime(current.ProcessedAt), redemptionID); err != nil {
		return reward.Redemption{}, fmt.Errorf("update redemption status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return reward.Redemption{}, fmt.Errorf("commit redemption status tx: %w", err)
	}

	return current, nil
}
