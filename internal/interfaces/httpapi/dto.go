package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/pointsrally/pointsrally/internal/domain/ledger"
	"github.com/pointsrally/pointsrally/internal/domain/profile"
	"github.com/pointsrally/pointsrally/internal/domain/reward"
	"github.com/pointsrally/pointsrally/internal/domain/team"
	"github.com/pointsrally/pointsrally/internal/usecase"
)

// decodeRequest parses a JSON request body. An empty body is an error;
// handlers that accept one (DELETE /v1/profile) check io.EOF themselves.
func decodeRequest(r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput)
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

type transferPointsRequest struct {
	RecipientEmail string `json:"recipientEmail" validate:"required,email"`
	Amount         int    `json:"amount" validate:"required,gt=0"`
	Note           string `json:"note" validate:"omitempty,max=500"`
}

type redeemRewardRequest struct {
	RewardID string `json:"rewardId" validate:"required"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1,max=10"`
}

type connectTeamRequest struct {
	TeamID    string `json:"teamId" validate:"required"`
	APIKey    string `json:"apiKey" validate:"omitempty,max=200"`
	AccountID string `json:"accountId" validate:"omitempty,max=200"`
}

type syncTeamRequest struct {
	TeamID string `json:"teamId" validate:"required"`
}

type updateProfileRequest struct {
	DisplayName *string        `json:"displayName" validate:"omitempty,max=100"`
	PhotoURL    *string        `json:"photoUrl" validate:"omitempty,max=500"`
	Bio         *string        `json:"bio" validate:"omitempty,max=1000"`
	Preferences map[string]any `json:"preferences"`
}

type deleteProfileRequest struct {
	ConfirmDelete bool `json:"confirmDelete"`
}

type updateRedemptionStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending processing completed failed cancelled"`
}

type transactionDTO struct {
	ID           string         `json:"id"`
	UserID       string         `json:"userId"`
	TeamID       string         `json:"teamId,omitempty"`
	Type         string         `json:"type"`
	Amount       int            `json:"amount"`
	BalanceAfter int            `json:"balanceAfter"`
	Description  string         `json:"description"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

func transactionToDTO(tx ledger.Transaction) transactionDTO {
	return transactionDTO{
		ID:           tx.ID,
		UserID:       tx.UserID,
		TeamID:       tx.TeamID,
		Type:         string(tx.Type),
		Amount:       tx.Amount,
		BalanceAfter: tx.BalanceAfter,
		Description:  tx.Description,
		Metadata:     tx.Metadata,
		CreatedAt:    tx.CreatedAt,
	}
}

func transactionsToDTO(txs []ledger.Transaction) []transactionDTO {
	items := make([]transactionDTO, 0, len(txs))
	for _, tx := range txs {
		items = append(items, transactionToDTO(tx))
	}
	return items
}

type pointsSummaryDTO struct {
	Balance           int              `json:"balance"`
	Tier              string           `json:"tier"`
	NextTierThreshold int              `json:"nextTierThreshold"`
	Transactions      []transactionDTO `json:"transactions"`
}

type transferResultDTO struct {
	Debit  transactionDTO `json:"debit"`
	Credit transactionDTO `json:"credit"`
}

type profileDTO struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	DisplayName    string         `json:"displayName,omitempty"`
	PhotoURL       string         `json:"photoUrl,omitempty"`
	Bio            string         `json:"bio,omitempty"`
	Preferences    map[string]any `json:"preferences,omitempty"`
	TotalPoints    int            `json:"totalPoints"`
	Tier           string         `json:"tier"`
	ConnectedTeams int            `json:"connectedTeams"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

func profileToDTO(p profile.Profile, connectedTeams int) profileDTO {
	return profileDTO{
		ID:             p.ID,
		Email:          p.Email,
		DisplayName:    p.DisplayName,
		PhotoURL:       p.PhotoURL,
		Bio:            p.Bio,
		Preferences:    p.Preferences,
		TotalPoints:    p.TotalPoints,
		Tier:           string(p.Tier),
		ConnectedTeams: connectedTeams,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

type teamDTO struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Code           string `json:"code"`
	Sport          string `json:"sport"`
	City           string `json:"city,omitempty"`
	LogoURL        string `json:"logoUrl,omitempty"`
	PrimaryColor   string `json:"primaryColor,omitempty"`
	SecondaryColor string `json:"secondaryColor,omitempty"`
}

func teamToDTO(t team.Team) teamDTO {
	return teamDTO{
		ID:             t.ID,
		Name:           t.Name,
		Code:           t.Code,
		Sport:          string(t.Sport),
		City:           t.City,
		LogoURL:        t.LogoURL,
		PrimaryColor:   t.PrimaryColor,
		SecondaryColor: t.SecondaryColor,
	}
}

type connectedTeamDTO struct {
	ConnectionID  string     `json:"connectionId"`
	Team          teamDTO    `json:"team"`
	PointsBalance int        `json:"pointsBalance"`
	ConnectedAt   time.Time  `json:"connectedAt"`
	LastSyncedAt  *time.Time `json:"lastSyncedAt,omitempty"`
}

func connectedTeamToDTO(ct team.ConnectedTeam) connectedTeamDTO {
	return connectedTeamDTO{
		ConnectionID:  ct.Connection.ID,
		Team:          teamToDTO(ct.Team),
		PointsBalance: ct.Connection.PointsBalance,
		ConnectedAt:   ct.Connection.ConnectedAt,
		LastSyncedAt:  ct.Connection.LastSyncedAt,
	}
}

type syncResultDTO struct {
	TeamID        string          `json:"teamId"`
	PointsBalance int             `json:"pointsBalance"`
	Delta         int             `json:"delta"`
	LastSyncedAt  *time.Time      `json:"lastSyncedAt,omitempty"`
	Transaction   *transactionDTO `json:"transaction,omitempty"`
}

func syncResultToDTO(result usecase.SyncResult) syncResultDTO {
	dto := syncResultDTO{
		TeamID:        result.Connection.TeamID,
		PointsBalance: result.Connection.PointsBalance,
		Delta:         result.Delta,
		LastSyncedAt:  result.Connection.LastSyncedAt,
	}
	if result.Transaction != nil {
		tx := transactionToDTO(*result.Transaction)
		dto.Transaction = &tx
	}
	return dto
}

type rewardDTO struct {
	ID           string     `json:"id"`
	TeamID       string     `json:"teamId,omitempty"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Category     string     `json:"category,omitempty"`
	PointsCost   int        `json:"pointsCost"`
	Availability string     `json:"availability"`
	Stock        *int       `json:"stock,omitempty"`
	ImageURL     string     `json:"imageUrl,omitempty"`
	ExpiresAt    *time.Time `json:"expiresAt,omitempty"`
}

func rewardToDTO(r reward.Reward) rewardDTO {
	return rewardDTO{
		ID:           r.ID,
		TeamID:       r.TeamID,
		Name:         r.Name,
		Description:  r.Description,
		Category:     r.Category,
		PointsCost:   r.PointsCost,
		Availability: string(r.Availability),
		Stock:        r.Stock,
		ImageURL:     r.ImageURL,
		ExpiresAt:    r.ExpiresAt,
	}
}

func rewardsToDTO(rewards []reward.Reward) []rewardDTO {
	items := make([]rewardDTO, 0, len(rewards))
	for _, r := range rewards {
		items = append(items, rewardToDTO(r))
	}
	return items
}

type redemptionDTO struct {
	ID          string     `json:"id"`
	RewardID    string     `json:"rewardId"`
	PointsUsed  int        `json:"pointsUsed"`
	Quantity    int        `json:"quantity"`
	Status      string     `json:"status"`
	Code        string     `json:"code"`
	ProcessedAt *time.Time `json:"processedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func redemptionToDTO(r reward.Redemption) redemptionDTO {
	return redemptionDTO{
		ID:          r.ID,
		RewardID:    r.RewardID,
		PointsUsed:  r.PointsUsed,
		Quantity:    r.Quantity,
		Status:      string(r.Status),
		Code:        r.Code,
		ProcessedAt: r.ProcessedAt,
		CreatedAt:   r.CreatedAt,
	}
}

type redemptionDetailDTO struct {
	Redemption redemptionDTO `json:"redemption"`
	Reward     rewardDTO     `json:"reward"`
}

func redemptionDetailsToDTO(details []reward.RedemptionDetail) []redemptionDetailDTO {
	items := make([]redemptionDetailDTO, 0, len(details))
	for _, d := range details {
		items = append(items, redemptionDetailDTO{
			Redemption: redemptionToDTO(d.Redemption),
			Reward:     rewardToDTO(d.Reward),
		})
	}
	return items
}
