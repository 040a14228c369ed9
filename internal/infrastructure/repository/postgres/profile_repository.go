package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pointsrally/pointsrally/internal/domain/profile"
	qb "github.com/pointsrally/pointsrally/internal/platform/querybuilder"
)

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `id, email, display_name, photo_url, bio, preferences::text AS preferences, total_points, tier, created_at, updated_at`

func (r *ProfileRepository) GetByID(ctx context.Context, userID string) (profile.Profile, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileColumns)

	var row profileTableModel
	if err := r.db.GetContext(ctx, &row, query, userID); err != nil {
		if isNotFound(err) {
			return profile.Profile{}, false, nil
		}
		return profile.Profile{}, false, fmt.Errorf("get profile: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *ProfileRepository) GetByEmail(ctx context.Context, email string) (profile.Profile, bool, error) {
	query := fmt.Sprintf(`SELECT %s FROM profiles WHERE LOWER(email) = LOWER($1)`, profileColumns)

	var row profileTableModel
	if err := r.db.GetContext(ctx, &row, query, email); err != nil {
		if isNotFound(err) {
			return profile.Profile{}, false, nil
		}
		return profile.Profile{}, false, fmt.Errorf("get profile by email: %w", err)
	}

	return row.toDomain(), true, nil
}

func (r *ProfileRepository) Create(ctx context.Context, p profile.Profile) (profile.Profile, error) {
	if err := p.Validate(); err != nil {
		return profile.Profile{}, err
	}

	const query = `
INSERT INTO profiles (id, email, display_name, photo_url, bio, preferences, total_points, tier, created_at, updated_at)
VALUES (:id, :email, :display_name, :photo_url, :bio, :preferences::jsonb, :total_points, :tier, :created_at, :updated_at)
ON CONFLICT (id) DO NOTHING`

	args := map[string]any{
		"id":           p.ID,
		"email":        p.Email,
		"display_name": nullableString(p.DisplayName),
		"photo_url":    nullableString(p.PhotoURL),
		"bio":          nullableString(p.Bio),
		"preferences":  encodeJSONMap(p.Preferences),
		"total_points": p.TotalPoints,
		"tier":         string(p.Tier),
		"created_at":   p.CreatedAt.UTC(),
		"updated_at":   p.UpdatedAt.UTC(),
	}
	insertSQL, insertArgs, err := sqlx.Named(query, args)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("bind insert profile query: %w", err)
	}
	insertSQL = r.db.Rebind(insertSQL)
	if _, err := r.db.ExecContext(ctx, insertSQL, insertArgs...); err != nil {
		return profile.Profile{}, fmt.Errorf("insert profile: %w", err)
	}

	// concurrent first requests race on the insert; the stored row wins
	stored, exists, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return profile.Profile{}, err
	}
	if !exists {
		return profile.Profile{}, fmt.Errorf("insert profile: row %s not visible after insert", p.ID)
	}

	return stored, nil
}

func (r *ProfileRepository) Update(ctx context.Context, userID string, update profile.Update) (profile.Profile, error) {
	builder := qb.Update("profiles").
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("id", userID))
	if update.DisplayName != nil {
		builder.Set("display_name", nullableString(*update.DisplayName))
	}
	if update.PhotoURL != nil {
		builder.Set("photo_url", nullableString(*update.PhotoURL))
	}
	if update.Bio != nil {
		builder.Set("bio", nullableString(*update.Bio))
	}
	if update.Preferences != nil {
		builder.SetExpr("preferences", "?::jsonb", encodeJSONMap(update.Preferences))
	}

	query, args, err := builder.ToSQL()
	if err != nil {
		return profile.Profile{}, fmt.Errorf("build update profile query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return profile.Profile{}, fmt.Errorf("update profile: %w", err)
	}

	updated, exists, err := r.GetByID(ctx, userID)
	if err != nil {
		return profile.Profile{}, err
	}
	if !exists {
		return profile.Profile{}, fmt.Errorf("update profile: profile %s not found", userID)
	}

	return updated, nil
}

// Delete removes the profile row. Connections, transactions and
// redemptions go with it through ON DELETE CASCADE.
func (r *ProfileRepository) Delete(ctx context.Context, userID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, userID)
	if err != nil {
		return false, fmt.Errorf("delete profile: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("count deleted profiles: %w", err)
	}

	return affected > 0, nil
}
