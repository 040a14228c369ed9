package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/pointsrally/pointsrally/internal/domain/ledger"
	"github.com/pointsrally/pointsrally/internal/domain/reward"
)

type RewardRepository struct {
	store *Store
}

func (r *RewardRepository) List(_ context.Context, filter reward.Filter) ([]reward.Reward, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]reward.Reward, 0, len(r.store.rewards))
	for _, item := range r.store.rewards {
		if filter.Category != "" && item.Category != filter.Category {
			continue
		}
		if filter.TeamID != "" && item.TeamID != filter.TeamID {
			continue
		}
		if filter.MaxPoints > 0 && item.PointsCost > filter.MaxPoints {
			continue
		}
		if filter.Availability != "" && item.Availability != filter.Availability {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PointsCost < out[j].PointsCost })

	return out, nil
}

func (r *RewardRepository) GetByID(_ context.Context, rewardID string) (reward.Reward, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, item := range r.store.rewards {
		if item.ID == rewardID {
			return item, true, nil
		}
	}

	return reward.Reward{}, false, nil
}

func (r *RewardRepository) ListAffordable(_ context.Context, maxCost int) ([]reward.Reward, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	now := r.store.now().UTC()
	out := make([]reward.Reward, 0)
	for _, item := range r.store.rewards {
		if item.PointsCost > maxCost {
			continue
		}
		if item.Availability == reward.AvailabilitySoldOut {
			continue
		}
		if item.ExpiredAt(now) {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PointsCost > out[j].PointsCost })

	return out, nil
}

func (r *RewardRepository) ListFeatured(_ context.Context, limit int) ([]reward.Reward, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	now := r.store.now().UTC()
	out := make([]reward.Reward, 0)
	for _, item := range r.store.rewards {
		if item.Availability == reward.AvailabilitySoldOut || item.ExpiredAt(now) {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PointsCost > out[j].PointsCost })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

// Redeem inserts the redemption, decrements stock and applies the
// ledger debit in one critical section. Stock and funds are re-checked
// under the lock so the last unit goes to exactly one caller.
func (r *RewardRepository) Redeem(_ context.Context, redemption reward.Redemption, entry ledger.Entry) (reward.Redemption, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	idx := -1
	for i, item := range r.store.rewards {
		if item.ID == redemption.RewardID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return reward.Redemption{}, fmt.Errorf("reward %s not found", redemption.RewardID)
	}

	item := r.store.rewards[idx]
	now := r.store.now().UTC()
	if item.ExpiredAt(now) {
		return reward.Redemption{}, reward.ErrExpired
	}
	if item.Availability == reward.AvailabilitySoldOut {
		return reward.Redemption{}, reward.ErrSoldOut
	}
	if item.Stock != nil && *item.Stock < redemption.Quantity {
		return reward.Redemption{}, reward.ErrSoldOut
	}

	if _, err := r.store.applyEntryLocked(entry); err != nil {
		return reward.Redemption{}, err
	}

	if item.Stock != nil {
		remaining := *item.Stock - redemption.Quantity
		item.Stock = &remaining
		if remaining == 0 {
			item.Availability = reward.AvailabilitySoldOut
		}
		r.store.rewards[idx] = item
	}

	if redemption.ID == "" {
		redemption.ID = r.store.nextID("red")
	}
	if redemption.CreatedAt.IsZero() {
		redemption.CreatedAt = now
	}
	r.store.redemptions = append(r.store.redemptions, redemption)

	return redemption, nil
}

func (r *RewardRepository) ListRedemptionsByUser(_ context.Context, userID string, status reward.RedemptionStatus) ([]reward.RedemptionDetail, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rewardsByID := make(map[string]reward.Reward, len(r.store.rewards))
	for _, item := range r.store.rewards {
		rewardsByID[item.ID] = item
	}

	out := make([]reward.RedemptionDetail, 0)
	for i := len(r.store.redemptions) - 1; i >= 0; i-- {
		item := r.store.redemptions[i]
		if item.UserID != userID {
			continue
		}
		if status != "" && item.Status != status {
			continue
		}
		out = append(out, reward.RedemptionDetail{
			Redemption: item,
			Reward:     rewardsByID[item.RewardID],
		})
	}

	return out, nil
}

func (r *RewardRepository) GetRedemptionByID(_ context.Context, redemptionID string) (reward.Redemption, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, item := range r.store.redemptions {
		if item.ID == redemptionID {
			return item, true, nil
		}
	}

	return reward.Redemption{}, false, nil
}

func (r *RewardRepository) UpdateRedemptionStatus(_ context.Context, redemptionID string, status reward.RedemptionStatus, processedAt *time.Time) (reward.Redemption, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for i, item := range r.store.redemptions {
		if item.ID != redemptionID {
			continue
		}
		if !item.Status.CanTransitionTo(status) {
			return reward.Redemption{}, reward.ErrStatusTransition
		}
		item.Status = status
		if processedAt != nil {
			at := processedAt.UTC()
			item.ProcessedAt = &at
		}
		r.store.redemptions[i] = item
		return item, nil
	}

	return reward.Redemption{}, fmt.Errorf("redemption %s not found", redemptionID)
}
