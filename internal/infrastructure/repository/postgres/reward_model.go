package postgres

import (
	"time"

	"github.com/pointsrally/pointsrally/internal/domain/reward"
)

type rewardTableModel struct {
	ID           string     `db:"id"`
	TeamID       *string    `db:"team_id"`
	Name         string     `db:"name"`
	Description  *string    `db:"description"`
	Category     string     `db:"category"`
	PointsCost   int        `db:"points_cost"`
	Availability string     `db:"availability"`
	Stock        *int       `db:"stock"`
	ImageURL     *string    `db:"image_url"`
	ExpiresAt    *time.Time `db:"expires_at"`
	CreatedAt    time.Time  `db:"created_at"`
}

func (m rewardTableModel) toDomain() reward.Reward {
	r := reward.Reward{
		ID:           m.ID,
		Name:         m.Name,
		Category:     m.Category,
		PointsCost:   m.PointsCost,
		Availability: reward.Availability(m.Availability),
		Stock:        m.Stock,
		ExpiresAt:    m.ExpiresAt,
		CreatedAt:    m.CreatedAt,
	}
	if m.TeamID != nil {
		r.TeamID = *m.TeamID
	}
	if m.Description != nil {
		r.Description = *m.Description
	}
	if m.ImageURL != nil {
		r.ImageURL = *m.ImageURL
	}
	return r
}

type redemptionTableModel struct {
	ID          string     `db:"id"`
	UserID      string     `db:"user_id"`
	RewardID    string     `db:"reward_id"`
	PointsUsed  int        `db:"points_used"`
	Quantity    int        `db:"quantity"`
	Status      string     `db:"status"`
	Code        string     `db:"redemption_code"`
	ProcessedAt *time.Time `db:"processed_at"`
	CreatedAt   time.Time  `db:"created_at"`
}

func (m redemptionTableModel) toDomain() reward.Redemption {
	return reward.Redemption{
		ID:          m.ID,
		UserID:      m.UserID,
		RewardID:    m.RewardID,
		PointsUsed:  m.PointsUsed,
		Quantity:    m.Quantity,
		Status:      reward.RedemptionStatus(m.Status),
		Code:        m.Code,
		ProcessedAt: m.ProcessedAt,
		CreatedAt:   m.CreatedAt,
	}
}

const redemptionColumns = `id, user_id, reward_id, points_used, quantity, status, redemption_code, processed_at, created_at`
