package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pointsrally/pointsrally/internal/domain/ledger"
	"github.com/pointsrally/pointsrally/internal/domain/profile"
	"github.com/pointsrally/pointsrally/internal/domain/team"
	idgen "github.com/pointsrally/pointsrally/internal/platform/id"
)

// FanPointsProvider fetches the absolute points balance a fan account
// currently holds with a team's loyalty program.
type FanPointsProvider interface {
	FetchPointsBalance(ctx context.Context, teamID string, credentials map[string]any) (int, error)
}

// ConnectTeamInput links a user to a team fan account. UserEmail is
// used to provision the profile when the connect call is the user's
// first write.
type ConnectTeamInput struct {
	UserID         string
	UserEmail      string
	TeamID         string
	APICredentials map[string]any
}

// SyncResult reports the outcome of one external balance sync.
type SyncResult struct {
	Connection  team.Connection
	Delta       int
	Transaction *ledger.Transaction // nil when the external balance matched
}

type TeamsService struct {
	teamRepo    team.Repository
	connRepo    team.ConnectionRepository
	ledgerRepo  ledger.Repository
	profileRepo profile.Repository
	provider    FanPointsProvider
	idGen       idgen.Generator
	logger      *slog.Logger
	now         func() time.Time
}

func NewTeamsService(
	teamRepo team.Repository,
	connRepo team.ConnectionRepository,
	ledgerRepo ledger.Repository,
	profileRepo profile.Repository,
	provider FanPointsProvider,
	idGen idgen.Generator,
	logger *slog.Logger,
) *TeamsService {
	if logger == nil {
		logger = slog.Default()
	}

	return &TeamsService{
		teamRepo:    teamRepo,
		connRepo:    connRepo,
		ledgerRepo:  ledgerRepo,
		profileRepo: profileRepo,
		provider:    provider,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

// ListTeams returns the team catalog, optionally narrowed to one sport.
func (s *TeamsService) ListTeams(ctx context.Context, sport string) ([]team.Team, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamsService.ListTeams")
	defer span.End()

	sport = strings.ToUpper(strings.TrimSpace(sport))
	if sport == "" {
		teams, err := s.teamRepo.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("list teams: %w", err)
		}
		return teams, nil
	}

	parsed := team.Sport(sport)
	if !parsed.Valid() {
		return nil, fmt.Errorf("%w: unknown sport %q", ErrInvalidInput, sport)
	}

	teams, err := s.teamRepo.ListBySport(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("list teams by sport: %w", err)
	}

	return teams, nil
}

// ListUserTeams returns the user's connections joined with their team
// catalog rows, most recently connected first.
func (s *TeamsService) ListUserTeams(ctx context.Context, userID string) ([]team.ConnectedTeam, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamsService.ListUserTeams")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	connected, err := s.connRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list user teams: %w", err)
	}

	return connected, nil
}

// ConnectTeam creates a fan-account link with a zero starting balance.
// Connecting the same team twice is a conflict.
func (s *TeamsService) ConnectTeam(ctx context.Context, input ConnectTeamInput) (team.ConnectedTeam, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamsService.ConnectTeam")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.TeamID = strings.TrimSpace(input.TeamID)

	if input.UserID == "" {
		return team.ConnectedTeam{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.TeamID == "" {
		return team.ConnectedTeam{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}

	row, exists, err := s.teamRepo.GetByID(ctx, input.TeamID)
	if err != nil {
		return team.ConnectedTeam{}, fmt.Errorf("get team: %w", err)
	}
	if !exists {
		return team.ConnectedTeam{}, fmt.Errorf("%w: team not found", ErrNotFound)
	}

	if _, connected, err := s.connRepo.Get(ctx, input.UserID, input.TeamID); err != nil {
		return team.ConnectedTeam{}, fmt.Errorf("get connection: %w", err)
	} else if connected {
		return team.ConnectedTeam{}, fmt.Errorf("%w: team %s is already connected", ErrConflict, input.TeamID)
	}

	// Connecting may be the user's first write, so the profile row has
	// to exist before the connection references it.
	if _, exists, err := s.profileRepo.GetByID(ctx, input.UserID); err != nil {
		return team.ConnectedTeam{}, fmt.Errorf("get profile: %w", err)
	} else if !exists {
		now := s.now().UTC()
		if _, err := s.profileRepo.Create(ctx, profile.Profile{
			ID:          input.UserID,
			Email:       strings.ToLower(strings.TrimSpace(input.UserEmail)),
			TotalPoints: 0,
			Tier:        ledger.TierBronze,
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			return team.ConnectedTeam{}, fmt.Errorf("provision profile: %w", err)
		}
		s.logger.InfoContext(ctx, "profile provisioned", "user_id", input.UserID)
	}

	connectionID, err := s.idGen.NewID()
	if err != nil {
		return team.ConnectedTeam{}, fmt.Errorf("generate connection id: %w", err)
	}

	connection := team.Connection{
		ID:             connectionID,
		UserID:         input.UserID,
		TeamID:         input.TeamID,
		PointsBalance:  0,
		ConnectedAt:    s.now().UTC(),
		APICredentials: input.APICredentials,
	}
	if err := connection.Validate(); err != nil {
		return team.ConnectedTeam{}, fmt.Errorf("validate connection: %w", err)
	}

	created, err := s.connRepo.Create(ctx, connection)
	if err != nil {
		return team.ConnectedTeam{}, fmt.Errorf("create connection: %w", err)
	}

	s.logger.InfoContext(ctx, "team connected",
		"user_id", input.UserID,
		"team_id", input.TeamID,
		"connection_id", created.ID,
	)

	return team.ConnectedTeam{Connection: created, Team: row}, nil
}

// DisconnectTeam removes the link. Transaction history stays; the
// profile total is recomputed without the disconnected balance.
func (s *TeamsService) DisconnectTeam(ctx context.Context, userID, teamID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamsService.DisconnectTeam")
	defer span.End()

	userID = strings.TrimSpace(userID)
	teamID = strings.TrimSpace(teamID)
	if userID == "" || teamID == "" {
		return fmt.Errorf("%w: user id and team id are required", ErrInvalidInput)
	}

	deleted, err := s.connRepo.Delete(ctx, userID, teamID)
	if err != nil {
		return fmt.Errorf("delete connection: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: team %s is not connected", ErrNotFound, teamID)
	}

	s.logger.InfoContext(ctx, "team disconnected",
		"user_id", userID,
		"team_id", teamID,
	)

	return nil
}

// SyncTeamPoints pulls the fan account's current balance and overwrites
// the stored one. The signed difference is recorded as a transaction;
// an unchanged balance just stamps last_synced_at.
func (s *TeamsService) SyncTeamPoints(ctx context.Context, userID, teamID string) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.TeamsService.SyncTeamPoints")
	defer span.End()

	userID = strings.TrimSpace(userID)
	teamID = strings.TrimSpace(teamID)
	if userID == "" || teamID == "" {
		return SyncResult{}, fmt.Errorf("%w: user id and team id are required", ErrInvalidInput)
	}
	if s.provider == nil {
		return SyncResult{}, fmt.Errorf("%w: points provider is not configured", ErrDependencyUnavailable)
	}

	connection, exists, err := s.connRepo.Get(ctx, userID, teamID)
	if err != nil {
		return SyncResult{}, fmt.Errorf("get connection: %w", err)
	}
	if !exists {
		return SyncResult{}, fmt.Errorf("%w: team %s is not connected", ErrNotFound, teamID)
	}

	external, err := s.provider.FetchPointsBalance(ctx, teamID, connection.APICredentials)
	if err != nil {
		return SyncResult{}, fmt.Errorf("%w: fetch external balance: %v", ErrDependencyUnavailable, err)
	}
	if external < 0 {
		return SyncResult{}, fmt.Errorf("%w: provider returned negative balance %d", ErrDependencyUnavailable, external)
	}

	now := s.now().UTC()
	delta := external - connection.PointsBalance
	if delta == 0 {
		if err := s.connRepo.TouchSync(ctx, userID, teamID, now); err != nil {
			return SyncResult{}, fmt.Errorf("stamp sync time: %w", err)
		}
		connection.PointsBalance = external
		connection.LastSyncedAt = &now
		return SyncResult{Connection: connection, Delta: 0}, nil
	}

	entryType := ledger.TypeEarned
	description := fmt.Sprintf("Team points sync: +%d", delta)
	if delta < 0 {
		entryType = ledger.TypeExpired
		description = fmt.Sprintf("Team points sync: %d", delta)
	}

	transaction, err := s.ledgerRepo.Apply(ctx, ledger.Entry{
		UserID:         userID,
		TeamID:         teamID,
		Type:           entryType,
		Amount:         delta,
		Description:    description,
		Metadata:       map[string]any{"source": "fan_account_sync", "external_balance": external},
		SetTeamBalance: &external,
	})
	if err != nil {
		return SyncResult{}, fmt.Errorf("apply sync entry: %w", err)
	}

	connection.PointsBalance = external
	connection.LastSyncedAt = &now

	s.logger.InfoContext(ctx, "team points synced",
		"user_id", userID,
		"team_id", teamID,
		"delta", delta,
		"external_balance", external,
	)

	return SyncResult{Connection: connection, Delta: delta, Transaction: &transaction}, nil
}

// GetTotalUserPoints returns the aggregated total across connected
// teams plus team-less adjustments. Missing profiles read as zero.
func (s *TeamsService) GetTotalUserPoints(ctx context.Context, userID string) (int, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	p, exists, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("get profile: %w", err)
	}
	if !exists {
		return 0, nil
	}

	return p.TotalPoints, nil
}
