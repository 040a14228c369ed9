package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pointsrally/pointsrally/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo team and reward catalogs into an empty
// database. Runs on every start; existing rows win.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM teams`); err != nil {
		return fmt.Errorf("count teams for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, t := range memory.SeedTeams() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO teams (id, name, code, sport, city, logo_url, primary_color, secondary_color, created_at)
VALUES (:id, :name, :code, :sport, :city, :logo_url, :primary_color, :secondary_color, :created_at)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":              t.ID,
			"name":            t.Name,
			"code":            t.Code,
			"sport":           string(t.Sport),
			"city":            nullableString(t.City),
			"logo_url":        nullableString(t.LogoURL),
			"primary_color":   nullableString(t.PrimaryColor),
			"secondary_color": nullableString(t.SecondaryColor),
			"created_at":      t.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("bind seed team %s query: %w", t.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed team %s: %w", t.ID, err)
		}
	}

	for _, w := range memory.SeedRewards() {
		sqlQuery, args, err := sqlx.Named(`
INSERT INTO rewards (id, team_id, name, description, category, points_cost, availability, stock, image_url, expires_at, created_at)
VALUES (:id, :team_id, :name, :description, :category, :points_cost, :availability, :stock, :image_url, :expires_at, :created_at)
ON CONFLICT (id) DO NOTHING`, map[string]any{
			"id":           w.ID,
			"team_id":      nullableString(w.TeamID),
			"name":         w.Name,
			"description":  nullableString(w.Description),
			"category":     w.Category,
			"points_cost":  w.PointsCost,
			"availability": string(w.Availability),
			"stock":        w.Stock,
			"image_url":    nullableString(w.ImageURL),
			"expires_at":   nullableTime(w.ExpiresAt),
			"created_at":   w.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("bind seed reward %s query: %w", w.ID, err)
		}
		sqlQuery = tx.Rebind(sqlQuery)
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("seed reward %s: %w", w.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}
