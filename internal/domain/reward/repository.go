package reward

import (
	"context"
	"time"

	"github.com/pointsrally/pointsrally/internal/domain/ledger"
)

// Repository describes reward catalog and redemption persistence.
//
// Redeem is the atomic heart of the rewards flow: the redemption
// insert, the stock decrement (with the soldout flip at zero), and the
// ledger entry for the point deduction commit together or not at all.
// Implementations re-check stock and funds under their own locking, so
// two concurrent redemptions of a stock=1 reward cannot both succeed.
type Repository interface {
	List(ctx context.Context, filter Filter) ([]Reward, error)
	GetByID(ctx context.Context, rewardID string) (Reward, bool, error)
	ListAffordable(ctx context.Context, maxCost int) ([]Reward, error)
	ListFeatured(ctx context.Context, limit int) ([]Reward, error)

	Redeem(ctx context.Context, redemption Redemption, entry ledger.Entry) (Redemption, error)
	ListRedemptionsByUser(ctx context.Context, userID string, status RedemptionStatus) ([]RedemptionDetail, error)
	GetRedemptionByID(ctx context.Context, redemptionID string) (Redemption, bool, error)
	UpdateRedemptionStatus(ctx context.Context, redemptionID string, status RedemptionStatus, processedAt *time.Time) (Redemption, error)
}
