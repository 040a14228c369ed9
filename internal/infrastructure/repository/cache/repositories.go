// Package cache wraps the catalog repositories with a read-through
// TTL cache. Only the immutable-ish catalogs (teams, rewards) are
// cached; balances and ledger reads always hit the source.
package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/pointsrally/pointsrally/internal/domain/ledger"
	"github.com/pointsrally/pointsrally/internal/domain/reward"
	"github.com/pointsrally/pointsrally/internal/domain/team"
	basecache "github.com/pointsrally/pointsrally/internal/platform/cache"
)

type TeamRepository struct {
	next  team.Repository
	cache *basecache.Store
}

func NewTeamRepository(next team.Repository, cache *basecache.Store) *TeamRepository {
	return &TeamRepository{next: next, cache: cache}
}

func (r *TeamRepository) List(ctx context.Context) ([]team.Team, error) {
	v, err := r.cache.GetOrLoad(ctx, "team:list", func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return append([]team.Team(nil), items...), nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (team.Team, bool, error) {
	key := "team:id:" + teamID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, teamID)
		if err != nil {
			return nil, err
		}
		return cachedTeamByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return team.Team{}, false, err
	}

	cached, _ := v.(cachedTeamByID)
	return cached.value, cached.exists, nil
}

func (r *TeamRepository) ListBySport(ctx context.Context, sport team.Sport) ([]team.Team, error) {
	key := "team:sport:" + string(sport)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListBySport(ctx, sport)
		if err != nil {
			return nil, err
		}
		return append([]team.Team(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]team.Team)
	return append([]team.Team(nil), items...), nil
}

type cachedTeamByID struct {
	value  team.Team
	exists bool
}

type RewardRepository struct {
	next  reward.Repository
	cache *basecache.Store
}

func NewRewardRepository(next reward.Repository, cache *basecache.Store) *RewardRepository {
	return &RewardRepository{next: next, cache: cache}
}

func (r *RewardRepository) List(ctx context.Context, filter reward.Filter) ([]reward.Reward, error) {
	key := "reward:list:" + filter.Category + ":" + filter.TeamID + ":" +
		strconv.Itoa(filter.MaxPoints) + ":" + string(filter.Availability)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		return append([]reward.Reward(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]reward.Reward)
	return append([]reward.Reward(nil), items...), nil
}

func (r *RewardRepository) GetByID(ctx context.Context, rewardID string) (reward.Reward, bool, error) {
	key := "reward:id:" + rewardID
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		item, exists, err := r.next.GetByID(ctx, rewardID)
		if err != nil {
			return nil, err
		}
		return cachedRewardByID{value: item, exists: exists}, nil
	})
	if err != nil {
		return reward.Reward{}, false, err
	}

	cached, _ := v.(cachedRewardByID)
	return cached.value, cached.exists, nil
}

func (r *RewardRepository) ListFeatured(ctx context.Context, limit int) ([]reward.Reward, error) {
	key := "reward:featured:" + strconv.Itoa(limit)
	v, err := r.cache.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		items, err := r.next.ListFeatured(ctx, limit)
		if err != nil {
			return nil, err
		}
		return append([]reward.Reward(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}

	items, _ := v.([]reward.Reward)
	return append([]reward.Reward(nil), items...), nil
}

// ListAffordable depends on the caller's balance, which changes on every
// earn and redeem, so it always hits the source.
func (r *RewardRepository) ListAffordable(ctx context.Context, maxCost int) ([]reward.Reward, error) {
	return r.next.ListAffordable(ctx, maxCost)
}

// Redeem mutates stock and availability, so every cached catalog view
// is dropped after a successful redemption.
func (r *RewardRepository) Redeem(ctx context.Context, redemption reward.Redemption, entry ledger.Entry) (reward.Redemption, error) {
	created, err := r.next.Redeem(ctx, redemption, entry)
	if err != nil {
		return reward.Redemption{}, err
	}

	r.cache.DeletePrefix(ctx, "reward:")

	return created, nil
}

func (r *RewardRepository) ListRedemptionsByUser(ctx context.Context, userID string, status reward.RedemptionStatus) ([]reward.RedemptionDetail, error) {
	return r.next.ListRedemptionsByUser(ctx, userID, status)
}

func (r *RewardRepository) GetRedemptionByID(ctx context.Context, redemptionID string) (reward.Redemption, bool, error) {
	return r.next.GetRedemptionByID(ctx, redemptionID)
}

func (r *RewardRepository) UpdateRedemptionStatus(ctx context.Context, redemptionID string, status reward.RedemptionStatus, processedAt *time.Time) (reward.Redemption, error) {
	return r.next.UpdateRedemptionStatus(ctx, redemptionID, status, processedAt)
}

type cachedRewardByID struct {
	value  reward.Reward
	exists bool
}
