package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pointsrally/pointsrally/internal/domain/ledger"
	"github.com/pointsrally/pointsrally/internal/domain/team"
	qb "github.com/pointsrally/pointsrally/internal/platform/querybuilder"
)

type ConnectionRepository struct {
	db *sqlx.DB
}

func NewConnectionRepository(db *sqlx.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

func (r *ConnectionRepository) ListByUser(ctx context.Context, userID string) ([]team.ConnectedTeam, error) {
	const query = `
SELECT
    ut.id, ut.user_id, ut.team_id, ut.points_balance, ut.connected_at, ut.last_synced_at,
    ut.api_credentials::text AS api_credentials,
    t.id AS t_id, t.name AS t_name, t.code AS t_code, t.sport AS t_sport, t.city AS t_city,
    t.logo_url AS t_logo_url, t.primary_color AS t_primary_color,
    t.secondary_color AS t_secondary_color, t.created_at AS t_created_at
FROM user_teams ut
JOIN teams t ON t.id = ut.team_id
WHERE ut.user_id = $1
ORDER BY ut.connected_at DESC`

	var rows []struct {
		connectionTableModel
		TeamID2       string    `db:"t_id"`
		TeamName      string    `db:"t_name"`
		TeamCode      string    `db:"t_code"`
		TeamSport     string    `db:"t_sport"`
		TeamCity      *string   `db:"t_city"`
		TeamLogo      *string   `db:"t_logo_url"`
		TeamPrimary   *string   `db:"t_primary_color"`
		TeamSecondary *string   `db:"t_secondary_color"`
		TeamCreatedAt time.Time `db:"t_created_at"`
	}
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("select user teams: %w", err)
	}

	out := make([]team.ConnectedTeam, 0, len(rows))
	for _, row := range rows {
		joined := teamTableModel{
			ID:             row.TeamID2,
			Name:           row.TeamName,
			Code:           row.TeamCode,
			Sport:          row.TeamSport,
			City:           row.TeamCity,
			LogoURL:        row.TeamLogo,
			PrimaryColor:   row.TeamPrimary,
			SecondaryColor: row.TeamSecondary,
			CreatedAt:      row.TeamCreatedAt,
		}
		out = append(out, team.ConnectedTeam{
			Connection: row.connectionTableModel.toDomain(),
			Team:       joined.toDomain(),
		})
	}

	return out, nil
}

func (r *ConnectionRepository) Get(ctx context.Context, userID, teamID string) (team.Connection, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM user_teams WHERE user_id = $1 AND team_id = $2`, connectionColumns)

	var row connectionTableModel
	if err := r.db.GetContext(ctx, &row, query, userID, teamID); err != nil {
		if isNotFound(err) {
			return team.Connection{}, false, nil
		}
		return team.Connection{}, false, fmt.Errorf("get connection: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *ConnectionRepository) Create(ctx context.Context, c team.Connection) (team.Connection, error) {
	if err := c.Validate(); err != nil {
		return team.Connection{}, err
	}

	const query = `
INSERT INTO user_teams (id, user_id, team_id, points_balance, connected_at, last_synced_at, api_credentials)
VALUES (:id, :user_id, :team_id, :points_balance, :connected_at, :last_synced_at, :api_credentials::jsonb)`

	args := map[string]any{
		"id":              c.ID,
		"user_id":         c.UserID,
		"team_id":         c.TeamID,
		"points_balance":  c.PointsBalance,
		"connected_at":    c.ConnectedAt.UTC(),
		"last_synced_at":  nullableTime(c.LastSyncedAt),
		"api_credentials": encodeJSONMap(c.APICredentials),
	}
	insertSQL, insertArgs, err := sqlx.Named(query, args)
	if err != nil {
		return team.Connection{}, fmt.Errorf("bind insert connection query: %w", err)
	}
	insertSQL = r.db.Rebind(insertSQL)
	if _, err := r.db.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
		return team.Connection{}, fmt.Errorf("insert connection: %w", err)
	}

	return c, nil
}

// Delete removes the link and recomputes the owner's total without the
// disconnected balance. Transaction history is untouched.
func (r *ConnectionRepository) Delete(ctx context.Context, userID, teamID string) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx for connection delete: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, `DELETE FROM user_teams WHERE user_id = $1 AND team_id = $2`, userID, teamID)
	if err != nil {
		return false, fmt.Errorf("delete connection: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("count deleted connections: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	var total int
	if err := tx.GetContext(ctx, &total,
		`SELECT COALESCE(SUM(points_balance), 0) FROM user_teams WHERE user_id = $1`, userID); err != nil {
		return false, fmt.Errorf("sum remaining balances: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE profiles SET total_points = $1, tier = $2, updated_at = NOW() WHERE id = $3`,
		total, string(ledger.ComputeTier(total)), userID); err != nil {
		return false, fmt.Errorf("recompute profile total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit connection delete tx: %w", err)
	}

	return true, nil
}

func (r *ConnectionRepository) TouchSync(ctx context.Context, userID, teamID string, at time.Time) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE user_teams SET last_synced_at = $1 WHERE user_id = $2 AND team_id = $3`,
		at.UTC(), userID, teamID)
	if err != nil {
		return fmt.Errorf("stamp connection sync time: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("count touched connections: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no connection for user %s team %s", userID, teamID)
	}

	return nil
}

func (r *ConnectionRepository) ListStale(ctx context.Context, cutoff time.Time, limit int) ([]team.Connection, error) {
	builder := qb.Select(connectionColumns).From("user_teams").
		Where(qb.Expr("COALESCE(last_synced_at, connected_at) < ?", cutoff.UTC())).
		OrderBy("id")
	if limit > 0 {
		builder.Limit(limit)
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select stale connections query: %w", err)
	}

	var rows []connectionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select stale connections: %w", err)
	}

	out := make([]team.Connection, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}

	return out, nil
}
