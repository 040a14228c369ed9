package postgres

import (
	"time"

	"github.com/pointsrally/pointsrally/internal/domain/ledger"
	"github.com/pointsrally/pointsrally/internal/domain/profile"
)

type profileTableModel struct {
	ID          string    `db:"id"`
	Email       string    `db:"email"`
	DisplayName *string   `db:"display_name"`
	PhotoURL    *string   `db:"photo_url"`
	Bio         *string   `db:"bio"`
	Preferences string    `db:"preferences"`
	TotalPoints int       `db:"total_points"`
	Tier        string    `db:"tier"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (m profileTableModel) toDomain() profile.Profile {
	p := profile.Profile{
		ID:          m.ID,
		Email:       m.Email,
		Preferences: decodeJSONMap(m.Preferences),
		TotalPoints: m.TotalPoints,
		Tier:        ledger.Tier(m.Tier),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.DisplayName != nil {
		p.DisplayName = *m.DisplayName
	}
	if m.PhotoURL != nil {
		p.PhotoURL = *m.PhotoURL
	}
	if m.Bio != nil {
		p.Bio = *m.Bio
	}
	return p
}
