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
)

// ProfileView is a profile joined with its connected-team count.
type ProfileView struct {
	Profile        profile.Profile
	ConnectedTeams int
}

// UpdateProfileInput carries the caller-editable fields. Nil pointers
// leave the stored value untouched.
type UpdateProfileInput struct {
	UserID      string
	DisplayName *string
	PhotoURL    *string
	Bio         *string
	Preferences map[string]any
}

type ProfileService struct {
	profileRepo profile.Repository
	connRepo    team.ConnectionRepository
	logger      *slog.Logger
	now         func() time.Time
}

func NewProfileService(
	profileRepo profile.Repository,
	connRepo team.ConnectionRepository,
	logger *slog.Logger,
) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}

	return &ProfileService{
		profileRepo: profileRepo,
		connRepo:    connRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// GetProfile loads the user's profile, provisioning an empty one on
// first access (account creation happens in the external auth service,
// so the first authenticated request is the creation point here).
func (s *ProfileService) GetProfile(ctx context.Context, userID, email string) (ProfileView, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.GetProfile")
	defer span.End()

	userID = strings.TrimSpace(userID)
	email = strings.ToLower(strings.TrimSpace(email))
	if userID == "" {
		return ProfileView{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	p, exists, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return ProfileView{}, fmt.Errorf("get profile: %w", err)
	}
	if !exists {
		now := s.now().UTC()
		p, err = s.profileRepo.Create(ctx, profile.Profile{
			ID:          userID,
			Email:       email,
			TotalPoints: 0,
			Tier:        ledger.TierBronze,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		if err != nil {
			return ProfileView{}, fmt.Errorf("create profile: %w", err)
		}
		s.logger.InfoContext(ctx, "profile provisioned", "user_id", userID)
	}

	connected, err := s.connRepo.ListByUser(ctx, userID)
	if err != nil {
		return ProfileView{}, fmt.Errorf("count connected teams: %w", err)
	}

	return ProfileView{Profile: p, ConnectedTeams: len(connected)}, nil
}

// UpdateProfile applies the caller-editable fields. Points, tier and
// email are never caller-writable.
func (s *ProfileService) UpdateProfile(ctx context.Context, input UpdateProfileInput) (profile.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.UpdateProfile")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	if input.UserID == "" {
		return profile.Profile{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	update := profile.Update{
		DisplayName: input.DisplayName,
		PhotoURL:    input.PhotoURL,
		Bio:         input.Bio,
		Preferences: input.Preferences,
	}
	if update.Empty() {
		return profile.Profile{}, fmt.Errorf("%w: no updatable fields provided", ErrInvalidInput)
	}

	if _, exists, err := s.profileRepo.GetByID(ctx, input.UserID); err != nil {
		return profile.Profile{}, fmt.Errorf("get profile: %w", err)
	} else if !exists {
		return profile.Profile{}, fmt.Errorf("%w: profile not found", ErrNotFound)
	}

	updated, err := s.profileRepo.Update(ctx, input.UserID, update)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("update profile: %w", err)
	}

	s.logger.InfoContext(ctx, "profile updated", "user_id", input.UserID)

	return updated, nil
}

// DeleteProfile removes the account and everything hanging off it.
// The caller must confirm explicitly; there is no undo.
func (s *ProfileService) DeleteProfile(ctx context.Context, userID string, confirmed bool) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ProfileService.DeleteProfile")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if !confirmed {
		return fmt.Errorf("%w: account deletion requires explicit confirmation", ErrInvalidInput)
	}

	deleted, err := s.profileRepo.Delete(ctx, userID)
	if err != nil {
		return fmt.Errorf("delete profile: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: profile not found", ErrNotFound)
	}

	s.logger.InfoContext(ctx, "profile deleted", "user_id", userID)

	return nil
}
