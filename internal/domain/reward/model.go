package reward

import (
	"errors"
	"fmt"
	"time"
)

// Availability tracks how much of a reward remains claimable.
type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityLimited   Availability = "limited"
	AvailabilitySoldOut   Availability = "soldout"
)

func (a Availability) Valid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityLimited, AvailabilitySoldOut:
		return true
	default:
		return false
	}
}

// RedemptionStatus is the forward-only lifecycle of a redemption.
type RedemptionStatus string

const (
	StatusPending    RedemptionStatus = "pending"
	StatusProcessing RedemptionStatus = "processing"
	StatusCompleted  RedemptionStatus = "completed"
	StatusFailed     RedemptionStatus = "failed"
	StatusCancelled  RedemptionStatus = "cancelled"
)

func (s RedemptionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled:
		return true
	default:
		return false
	}
}

// rank orders statuses so transitions can only move forward. completed,
// failed and cancelled are all terminal.
func (s RedemptionStatus) rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	case StatusCompleted, StatusFailed, StatusCancelled:
		return 2
	default:
		return -1
	}
}

// CanTransitionTo reports whether moving from s to next is a legal
// forward transition.
func (s RedemptionStatus) CanTransitionTo(next RedemptionStatus) bool {
	if !s.Valid() || !next.Valid() || s == next {
		return false
	}
	return next.rank() > s.rank()
}

var (
	// ErrSoldOut is returned when a redemption targets a sold-out reward.
	ErrSoldOut = errors.New("reward is sold out")
	// ErrExpired is returned when a redemption targets an expired reward.
	ErrExpired = errors.New("reward has expired")
	// ErrStatusTransition is returned for a backward or repeated status move.
	ErrStatusTransition = errors.New("illegal redemption status transition")
)

// Reward is a catalog item points can be exchanged for. Stock is nil
// for unlimited rewards; when tracked, hitting zero flips availability
// to soldout.
type Reward struct {
	ID           string
	TeamID       string // empty for sponsor-wide rewards
	Name         string
	Description  string
	Category     string
	PointsCost   int
	Availability Availability
	Stock        *int
	ImageURL     string
	ExpiresAt    *time.Time
	CreatedAt    time.Time
}

func (r Reward) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("reward id is required")
	}
	if r.Name == "" {
		return fmt.Errorf("reward name is required")
	}
	if r.PointsCost <= 0 {
		return fmt.Errorf("reward points cost must be positive")
	}
	if !r.Availability.Valid() {
		return fmt.Errorf("invalid availability %q", r.Availability)
	}
	if r.Stock != nil && *r.Stock < 0 {
		return fmt.Errorf("reward stock cannot be negative")
	}

	return nil
}

// ExpiredAt reports whether the reward is past its expiry at the given
// instant. Rewards without an expiry never expire.
func (r Reward) ExpiredAt(now time.Time) bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(now)
}

// Redemption is one exchange attempt of points for a reward.
type Redemption struct {
	ID          string
	UserID      string
	RewardID    string
	PointsUsed  int
	Quantity    int
	Status      RedemptionStatus
	Code        string
	ProcessedAt *time.Time
	CreatedAt   time.Time
}

func (r Redemption) Validate() error {
	if r.UserID == "" {
		return fmt.Errorf("redemption user id is required")
	}
	if r.RewardID == "" {
		return fmt.Errorf("redemption reward id is required")
	}
	if r.PointsUsed <= 0 {
		return fmt.Errorf("redemption points used must be positive")
	}
	if r.Quantity < 1 {
		return fmt.Errorf("redemption quantity must be at least 1")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("invalid redemption status %q", r.Status)
	}

	return nil
}

// RedemptionDetail joins a redemption with its reward catalog row.
type RedemptionDetail struct {
	Redemption Redemption
	Reward     Reward
}

// Filter narrows catalog listings. Zero values mean "no constraint".
type Filter struct {
	Category     string
	TeamID       string
	MaxPoints    int
	Availability Availability
}
