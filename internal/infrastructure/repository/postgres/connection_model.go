package postgres

import (
	"time"

	"github.com/pointsrally/pointsrally/internal/domain/team"
)

type connectionTableModel struct {
	ID             string     `db:"id"`
	UserID         string     `db:"user_id"`
	TeamID         string     `db:"team_id"`
	PointsBalance  int        `db:"points_balance"`
	ConnectedAt    time.Time  `db:"connected_at"`
	LastSyncedAt   *time.Time `db:"last_synced_at"`
	APICredentials string     `db:"api_credentials"`
}

func (m connectionTableModel) toDomain() team.Connection {
	return team.Connection{
		ID:             m.ID,
		UserID:         m.UserID,
		TeamID:         m.TeamID,
		PointsBalance:  m.PointsBalance,
		ConnectedAt:    m.ConnectedAt,
		LastSyncedAt:   m.LastSyncedAt,
		APICredentials: decodeJSONMap(m.APICredentials),
	}
}

const connectionColumns = `id, user_id, team_id, points_balance, connected_at, last_synced_at, api_credentials::text AS api_credentials`
