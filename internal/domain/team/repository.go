package team

import (
	"context"
	"time"
)

// Repository describes team catalog persistence needs from use cases.
type Repository interface {
	List(ctx context.Context) ([]Team, error)
	GetByID(ctx context.Context, teamID string) (Team, bool, error)
	ListBySport(ctx context.Context, sport Sport) ([]Team, error)
}

// ConnectionRepository manages user-team fan account links.
type ConnectionRepository interface {
	ListByUser(ctx context.Context, userID string) ([]ConnectedTeam, error)
	Get(ctx context.Context, userID, teamID string) (Connection, bool, error)
	Create(ctx context.Context, c Connection) (Connection, error)
	Delete(ctx context.Context, userID, teamID string) (bool, error)
	// TouchSync stamps last_synced_at without changing balances. Used
	// when an external sync reports no delta.
	TouchSync(ctx context.Context, userID, teamID string, at time.Time) error
	// ListStale returns connections whose last sync predates the cutoff
	// (never-synced connections qualify once older than the cutoff).
	ListStale(ctx context.Context, cutoff time.Time, limit int) ([]Connection, error)
}
