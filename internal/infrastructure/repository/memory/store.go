package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/pointsrally/pointsrally/internal/domain/ledger"
	"github.com/pointsrally/pointsrally/internal/domain/profile"
	"github.com/pointsrally/pointsrally/internal/domain/reward"
	"github.com/pointsrally/pointsrally/internal/domain/team"
)

// Store holds every aggregate behind one mutex so multi-step ledger
// mutations (earn, transfer, reward redemption) are atomic the same way
// the postgres repositories make them atomic with transactions and row
// locks. Repository views share the store.
type Store struct {
	mu sync.RWMutex

	profiles     map[string]profile.Profile
	teams        []team.Team
	connections  map[string]map[string]team.Connection // userID -> teamID
	transactions []ledger.Transaction
	rewards      []reward.Reward
	redemptions  []reward.Redemption

	seq int
	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		profiles:    make(map[string]profile.Profile),
		connections: make(map[string]map[string]team.Connection),
		now:         time.Now,
	}
}

// NewSeededStore returns a store preloaded with the demo team and
// reward catalogs.
func NewSeededStore() *Store {
	s := NewStore()
	s.teams = SeedTeams()
	s.rewards = SeedRewards()
	return s
}

func (s *Store) Profiles() *ProfileRepository       { return &ProfileRepository{store: s} }
func (s *Store) Teams() *TeamRepository             { return &TeamRepository{store: s} }
func (s *Store) Connections() *ConnectionRepository { return &ConnectionRepository{store: s} }
func (s *Store) Ledger() *LedgerRepository          { return &LedgerRepository{store: s} }
func (s *Store) Rewards() *RewardRepository         { return &RewardRepository{store: s} }

func errProfileMissing(userID string) error {
	return fmt.Errorf("profile %s not found", userID)
}

func (s *Store) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%06d", prefix, s.seq)
}

func (s *Store) profileLocked(userID string) profile.Profile {
	p, ok := s.profiles[userID]
	if !ok {
		now := s.now().UTC()
		p = profile.Profile{
			ID:        userID,
			Tier:      ledger.TierBronze,
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.profiles[userID] = p
	}
	return p
}

// applyEntryLocked runs the full ledger mutation under the store lock:
// funds guard, balance adjustment, total/tier recomputation and the
// append-only transaction insert.
func (s *Store) applyEntryLocked(entry ledger.Entry) (ledger.Transaction, error) {
	if err := entry.Validate(); err != nil {
		return ledger.Transaction{}, err
	}

	p := s.profileLocked(entry.UserID)

	if entry.RequireFunds && entry.Debit() && p.TotalPoints < -entry.Amount {
		return ledger.Transaction{}, ledger.ErrInsufficientBalance
	}

	now := s.now().UTC()

	if entry.TeamID != "" {
		connections := s.connections[entry.UserID]
		connection, ok := connections[entry.TeamID]
		if !ok {
			return ledger.Transaction{}, fmt.Errorf("no connection for user %s team %s", entry.UserID, entry.TeamID)
		}

		if entry.SetTeamBalance != nil {
			connection.PointsBalance = *entry.SetTeamBalance
			connection.LastSyncedAt = &now
		} else {
			connection.PointsBalance = ledger.ApplyDelta(connection.PointsBalance, entry.Amount)
		}
		connections[entry.TeamID] = connection

		p.TotalPoints = s.sumConnectionBalancesLocked(entry.UserID)
	} else {
		p.TotalPoints = ledger.ApplyDelta(p.TotalPoints, entry.Amount)
	}

	p.Tier = ledger.ComputeTier(p.TotalPoints)
	p.UpdatedAt = now
	s.profiles[entry.UserID] = p

	transaction := ledger.Transaction{
		ID:           s.nextID("txn"),
		UserID:       entry.UserID,
		TeamID:       entry.TeamID,
		Type:         entry.Type,
		Amount:       entry.Amount,
		BalanceAfter: p.TotalPoints,
		Description:  entry.Description,
		Metadata:     entry.Metadata,
		CreatedAt:    now,
	}
	s.transactions = append(s.transactions, transaction)

	return transaction, nil
}

func (s *Store) sumConnectionBalancesLocked(userID string) int {
	total := 0
	for _, connection := range s.connections[userID] {
		total += connection.PointsBalance
	}
	return total
}
