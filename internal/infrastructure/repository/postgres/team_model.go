package postgres

import (
	"time"

	"github.com/pointsrally/pointsrally/internal/domain/team"
)

type teamTableModel struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	Code           string    `db:"code"`
	Sport          string    `db:"sport"`
	City           *string   `db:"city"`
	LogoURL        *string   `db:"logo_url"`
	PrimaryColor   *string   `db:"primary_color"`
	SecondaryColor *string   `db:"secondary_color"`
	CreatedAt      time.Time `db:"created_at"`
}

func (m teamTableModel) toDomain() team.Team {
	t := team.Team{
		ID:        m.ID,
		Name:      m.Name,
		Code:      m.Code,
		Sport:     team.Sport(m.Sport),
		CreatedAt: m.CreatedAt,
	}
	if m.City != nil {
		t.City = *m.City
	}
	if m.LogoURL != nil {
		t.LogoURL = *m.LogoURL
	}
	if m.PrimaryColor != nil {
		t.PrimaryColor = *m.PrimaryColor
	}
	if m.SecondaryColor != nil {
		t.SecondaryColor = *m.SecondaryColor
	}
	return t
}
