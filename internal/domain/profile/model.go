package profile

import (
	"fmt"
	"time"

	"github.com/pointsrally/pointsrally/internal/domain/ledger"
)

// Profile is the per-user loyalty account. TotalPoints is a derived
// cache of the sum of connected-team balances; Tier follows from it.
type Profile struct {
	ID          string
	Email       string
	DisplayName string
	PhotoURL    string
	Bio         string
	Preferences map[string]any
	TotalPoints int
	Tier        ledger.Tier
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Profile) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("profile id is required")
	}
	if p.TotalPoints < 0 {
		return fmt.Errorf("profile total points cannot be negative")
	}

	return nil
}

// Update carries the caller-editable profile fields. Nil pointers leave
// the stored value untouched.
type Update struct {
	DisplayName *string
	PhotoURL    *string
	Bio         *string
	Preferences map[string]any
}

func (u Update) Empty() bool {
	return u.DisplayName == nil && u.PhotoURL == nil && u.Bio == nil && u.Preferences == nil
}
