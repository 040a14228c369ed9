package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pointsrally/pointsrally/internal/domain/ledger"
	"github.com/pointsrally/pointsrally/internal/domain/profile"
	"github.com/pointsrally/pointsrally/internal/domain/reward"
	idgen "github.com/pointsrally/pointsrally/internal/platform/id"
)

const defaultFeaturedLimit = 6

// RedeemRewardInput is the incoming payload for a catalog redemption.
type RedeemRewardInput struct {
	UserID   string
	RewardID string
	Quantity int
}

type RewardsService struct {
	rewardRepo  reward.Repository
	profileRepo profile.Repository
	idGen       idgen.Generator
	logger      *slog.Logger
	now         func() time.Time
}

func NewRewardsService(
	rewardRepo reward.Repository,
	profileRepo profile.Repository,
	idGen idgen.Generator,
	logger *slog.Logger,
) *RewardsService {
	if logger == nil {
		logger = slog.Default()
	}

	return &RewardsService{
		rewardRepo:  rewardRepo,
		profileRepo: profileRepo,
		idGen:       idGen,
		logger:      logger,
		now:         time.Now,
	}
}

// ListRewards returns catalog items matching the filter, cheapest first.
func (s *RewardsService) ListRewards(ctx context.Context, filter reward.Filter) ([]reward.Reward, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RewardsService.ListRewards")
	defer span.End()

	filter.Category = strings.TrimSpace(filter.Category)
	filter.TeamID = strings.TrimSpace(filter.TeamID)
	if filter.MaxPoints < 0 {
		return nil, fmt.Errorf("%w: max points cannot be negative", ErrInvalidInput)
	}
	if filter.Availability != "" && !filter.Availability.Valid() {
		return nil, fmt.Errorf("%w: invalid availability %q", ErrInvalidInput, filter.Availability)
	}

	rewards, err := s.rewardRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list rewards: %w", err)
	}

	return rewards, nil
}

// GetFeaturedRewards returns a small curated slice of the catalog for
// the home screen.
func (s *RewardsService) GetFeaturedRewards(ctx context.Context, limit int) ([]reward.Reward, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RewardsService.GetFeaturedRewards")
	defer span.End()

	if limit <= 0 {
		limit = defaultFeaturedLimit
	}

	rewards, err := s.rewardRepo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list featured rewards: %w", err)
	}

	return rewards, nil
}

// GetAffordableRewards returns in-stock rewards the user can pay for
// right now, most expensive first.
func (s *RewardsService) GetAffordableRewards(ctx context.Context, userID string) ([]reward.Reward, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RewardsService.GetAffordableRewards")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	p, exists, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if !exists || p.TotalPoints <= 0 {
		return []reward.Reward{}, nil
	}

	rewards, err := s.rewardRepo.ListAffordable(ctx, p.TotalPoints)
	if err != nil {
		return nil, fmt.Errorf("list affordable rewards: %w", err)
	}

	return rewards, nil
}

// RedeemReward exchanges points for a catalog reward. The redemption
// row, the stock decrement and the ledger debit commit atomically; two
// concurrent redemptions of the last unit cannot both succeed.
func (s *RewardsService) RedeemReward(ctx context.Context, input RedeemRewardInput) (reward.Redemption, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RewardsService.RedeemReward")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.RewardID = strings.TrimSpace(input.RewardID)
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	if input.UserID == "" {
		return reward.Redemption{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.RewardID == "" {
		return reward.Redemption{}, fmt.Errorf("%w: reward id is required", ErrInvalidInput)
	}
	if input.Quantity < 1 {
		return reward.Redemption{}, fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}

	item, exists, err := s.rewardRepo.GetByID(ctx, input.RewardID)
	if err != nil {
		return reward.Redemption{}, fmt.Errorf("get reward: %w", err)
	}
	if !exists {
		return reward.Redemption{}, fmt.Errorf("%w: reward not found", ErrNotFound)
	}

	now := s.now().UTC()
	if item.ExpiredAt(now) {
		return reward.Redemption{}, fmt.Errorf("%w: %s", reward.ErrExpired, item.Name)
	}
	if item.Availability == reward.AvailabilitySoldOut {
		return reward.Redemption{}, fmt.Errorf("%w: %s", reward.ErrSoldOut, item.Name)
	}
	if item.Stock != nil && *item.Stock < input.Quantity {
		return reward.Redemption{}, fmt.Errorf("%w: %s", reward.ErrSoldOut, item.Name)
	}

	totalCost := item.PointsCost * input.Quantity

	redemptionID, err := s.idGen.NewID()
	if err != nil {
		return reward.Redemption{}, fmt.Errorf("generate redemption id: %w", err)
	}

	redemption := reward.Redemption{
		ID:         redemptionID,
		UserID:     input.UserID,
		RewardID:   item.ID,
		PointsUsed: totalCost,
		Quantity:   input.Quantity,
		Status:     reward.StatusPending,
		Code:       ledger.NewRedemptionCode(),
		CreatedAt:  now,
	}
	if err := redemption.Validate(); err != nil {
		return reward.Redemption{}, fmt.Errorf("validate redemption: %w", err)
	}

	// Redemptions debit the aggregate total, not any one team balance.
	entry := ledger.Entry{
		UserID:       input.UserID,
		Type:         ledger.TypeRedeemed,
		Amount:       -totalCost,
		Description:  fmt.Sprintf("Redeemed: %s", item.Name),
		Metadata:     map[string]any{"redemption_id": redemptionID, "reward_id": item.ID, "quantity": input.Quantity},
		RequireFunds: true,
	}

	created, err := s.rewardRepo.Redeem(ctx, redemption, entry)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrInsufficientBalance):
			return reward.Redemption{}, fmt.Errorf("%w: reward costs %d points", ledger.ErrInsufficientBalance, totalCost)
		case errors.Is(err, reward.ErrSoldOut), errors.Is(err, reward.ErrExpired):
			return reward.Redemption{}, err
		default:
			return reward.Redemption{}, fmt.Errorf("redeem reward: %w", err)
		}
	}

	s.logger.InfoContext(ctx, "reward redeemed",
		"user_id", input.UserID,
		"reward_id", item.ID,
		"redemption_id", created.ID,
		"points_used", totalCost,
		"quantity", input.Quantity,
	)

	return created, nil
}

// ListUserRedemptions returns the user's redemptions with their reward
// rows, optionally filtered by status.
func (s *RewardsService) ListUserRedemptions(ctx context.Context, userID string, status reward.RedemptionStatus) ([]reward.RedemptionDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RewardsService.ListUserRedemptions")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: invalid redemption status %q", ErrInvalidInput, status)
	}

	details, err := s.rewardRepo.ListRedemptionsByUser(ctx, userID, status)
	if err != nil {
		return nil, fmt.Errorf("list redemptions: %w", err)
	}

	return details, nil
}

// UpdateRedemptionStatus advances a redemption through its lifecycle.
// Transitions only move forward; terminal statuses stamp processed_at.
func (s *RewardsService) UpdateRedemptionStatus(ctx context.Context, redemptionID string, status reward.RedemptionStatus) (reward.Redemption, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RewardsService.UpdateRedemptionStatus")
	defer span.End()

	redemptionID = strings.TrimSpace(redemptionID)
	if redemptionID == "" {
		return reward.Redemption{}, fmt.Errorf("%w: redemption id is required", ErrInvalidInput)
	}
	if !status.Valid() {
		return reward.Redemption{}, fmt.Errorf("%w: invalid redemption status %q", ErrInvalidInput, status)
	}

	_, exists, err := s.rewardRepo.GetRedemptionByID(ctx, redemptionID)
	if err != nil {
		return reward.Redemption{}, fmt.Errorf("get redemption: %w", err)
	}
	if !exists {
		return reward.Redemption{}, fmt.Errorf("%w: redemption not found", ErrNotFound)
	}

	var processedAt *time.Time
	switch status {
	case reward.StatusCompleted, reward.StatusFailed, reward.StatusCancelled:
		now := s.now().UTC()
		processedAt = &now
	}

	updated, err := s.rewardRepo.UpdateRedemptionStatus(ctx, redemptionID, status, processedAt)
	if err != nil {
		if errors.Is(err, reward.ErrStatusTransition) {
			return reward.Redemption{}, err
		}
		return reward.Redemption{}, fmt.Errorf("update redemption status: %w", err)
	}

	s.logger.InfoContext(ctx, "redemption status updated",
		"redemption_id", redemptionID,
		"status", string(status),
	)

	return updated, nil
}
