package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pointsrally/pointsrally/internal/domain/ledger"
	"github.com/pointsrally/pointsrally/internal/domain/team"
)

type ConnectionRepository struct {
	store *Store
}

func (r *ConnectionRepository) ListByUser(_ context.Context, userID string) ([]team.ConnectedTeam, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	teamsByID := make(map[string]team.Team, len(r.store.teams))
	for _, item := range r.store.teams {
		teamsByID[item.ID] = item
	}

	out := make([]team.ConnectedTeam, 0, len(r.store.connections[userID]))
	for _, connection := range r.store.connections[userID] {
		out = append(out, team.ConnectedTeam{
			Connection: connection,
			Team:       teamsByID[connection.TeamID],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Connection.ConnectedAt.After(out[j].Connection.ConnectedAt)
	})

	return out, nil
}

func (r *ConnectionRepository) Get(_ context.Context, userID, teamID string) (team.Connection, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	connection, ok := r.store.connections[userID][teamID]
	return connection, ok, nil
}

func (r *ConnectionRepository) Create(_ context.Context, c team.Connection) (team.Connection, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if err := c.Validate(); err != nil {
		return team.Connection{}, err
	}
	if _, exists := r.store.connections[c.UserID][c.TeamID]; exists {
		return team.Connection{}, fmt.Errorf("connection already exists for user %s team %s", c.UserID, c.TeamID)
	}

	if r.store.connections[c.UserID] == nil {
		r.store.connections[c.UserID] = make(map[string]team.Connection)
	}
	r.store.connections[c.UserID][c.TeamID] = c

	return c, nil
}

// Delete removes the link and recomputes the owner's total without the
// disconnected balance. History rows stay.
func (r *ConnectionRepository) Delete(_ context.Context, userID, teamID string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.connections[userID][teamID]; !ok {
		return false, nil
	}
	delete(r.store.connections[userID], teamID)

	if p, ok := r.store.profiles[userID]; ok {
		p.TotalPoints = r.store.sumConnectionBalancesLocked(userID)
		p.Tier = ledger.ComputeTier(p.TotalPoints)
		p.UpdatedAt = r.store.now().UTC()
		r.store.profiles[userID] = p
	}

	return true, nil
}

func (r *ConnectionRepository) TouchSync(_ context.Context, userID, teamID string, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	connection, ok := r.store.connections[userID][teamID]
	if !ok {
		return fmt.Errorf("no connection for user %s team %s", userID, teamID)
	}

	at = at.UTC()
	connection.LastSyncedAt = &at
	r.store.connections[userID][teamID] = connection

	return nil
}

func (r *ConnectionRepository) ListStale(_ context.Context, cutoff time.Time, limit int) ([]team.Connection, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]team.Connection, 0)
	for _, connections := range r.store.connections {
		for _, connection := range connections {
			reference := connection.ConnectedAt
			if connection.LastSyncedAt != nil {
				reference = *connection.LastSyncedAt
			}
			if reference.Before(cutoff) {
				out = append(out, connection)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}
