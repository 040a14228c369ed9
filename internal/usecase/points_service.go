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
)

const (
	defaultTransactionLimit = 20
	maxTransactionLimit     = 100
)

// PointsSummary is the balance snapshot returned by GET /points.
type PointsSummary struct {
	Balance           int
	Tier              ledger.Tier
	NextTierThreshold int
	Transactions      []ledger.Transaction
}

// EarnPointsInput credits points to a user, optionally scoped to a
// connected team.
type EarnPointsInput struct {
	UserID      string
	TeamID      string
	Amount      int
	Description string
	Metadata    map[string]any
}

// RedeemPointsInput debits points from a user's total.
type RedeemPointsInput struct {
	UserID      string
	TeamID      string
	Amount      int
	Description string
	Metadata    map[string]any
}

// TransferPointsInput moves points between two profiles. The recipient
// is addressed by email.
type TransferPointsInput struct {
	SenderID       string
	RecipientEmail string
	Amount         int
	Note           string
}

// TransferResult carries both legs of a completed transfer.
type TransferResult struct {
	Debit  ledger.Transaction
	Credit ledger.Transaction
}

type PointsService struct {
	profileRepo profile.Repository
	ledgerRepo  ledger.Repository
	logger      *slog.Logger
	now         func() time.Time
}

func NewPointsService(
	profileRepo profile.Repository,
	ledgerRepo ledger.Repository,
	logger *slog.Logger,
) *PointsService {
	if logger == nil {
		logger = slog.Default()
	}

	return &PointsService{
		profileRepo: profileRepo,
		ledgerRepo:  ledgerRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// GetCurrentBalance returns the user's total points. A missing profile
// reads as zero rather than an error.
func (s *PointsService) GetCurrentBalance(ctx context.Context, userID string) (int, error) {
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

// GetPointsSummary returns the balance, tier and recent transactions in
// one call.
func (s *PointsService) GetPointsSummary(ctx context.Context, userID string, limit int) (PointsSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.GetPointsSummary")
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return PointsSummary{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	limit = clampTransactionLimit(limit)

	balance, err := s.GetCurrentBalance(ctx, userID)
	if err != nil {
		return PointsSummary{}, err
	}

	transactions, err := s.ledgerRepo.ListByUser(ctx, userID, limit, 0)
	if err != nil {
		return PointsSummary{}, fmt.Errorf("list transactions: %w", err)
	}

	tier := ledger.ComputeTier(balance)
	return PointsSummary{
		Balance:           balance,
		Tier:              tier,
		NextTierThreshold: ledger.NextTierThreshold(tier),
		Transactions:      transactions,
	}, nil
}

// ListTransactions pages the user's ledger history, optionally narrowed
// to one team.
func (s *PointsService) ListTransactions(ctx context.Context, userID, teamID string, limit, offset int) ([]ledger.Transaction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.ListTransactions")
	defer span.End()

	userID = strings.TrimSpace(userID)
	teamID = strings.TrimSpace(teamID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if offset < 0 {
		return nil, fmt.Errorf("%w: offset cannot be negative", ErrInvalidInput)
	}
	limit = clampTransactionLimit(limit)

	if teamID != "" {
		transactions, err := s.ledgerRepo.ListByUserAndTeam(ctx, userID, teamID, limit)
		if err != nil {
			return nil, fmt.Errorf("list team transactions: %w", err)
		}
		return transactions, nil
	}

	transactions, err := s.ledgerRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}

	return transactions, nil
}

// EarnPoints credits points. Amount must be positive; the credit lands
// on the team balance when a team is given, otherwise on the total.
func (s *PointsService) EarnPoints(ctx context.Context, input EarnPointsInput) (ledger.Transaction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.EarnPoints")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.TeamID = strings.TrimSpace(input.TeamID)
	input.Description = strings.TrimSpace(input.Description)

	if input.UserID == "" {
		return ledger.Transaction{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.Amount <= 0 {
		return ledger.Transaction{}, fmt.Errorf("%w: earn amount must be positive", ErrInvalidInput)
	}
	if input.Description == "" {
		input.Description = "Points earned"
	}

	entry := ledger.Entry{
		UserID:      input.UserID,
		TeamID:      input.TeamID,
		Type:        ledger.TypeEarned,
		Amount:      input.Amount,
		Description: input.Description,
		Metadata:    input.Metadata,
	}

	transaction, err := s.ledgerRepo.Apply(ctx, entry)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("apply earn entry: %w", err)
	}

	s.logger.InfoContext(ctx, "points earned",
		"user_id", input.UserID,
		"team_id", input.TeamID,
		"amount", input.Amount,
		"balance_after", transaction.BalanceAfter,
	)

	return transaction, nil
}

// RedeemPoints debits points, failing when the total cannot cover the
// amount. The amount is recorded negative in the ledger.
func (s *PointsService) RedeemPoints(ctx context.Context, input RedeemPointsInput) (ledger.Transaction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.RedeemPoints")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.TeamID = strings.TrimSpace(input.TeamID)
	input.Description = strings.TrimSpace(input.Description)

	if input.UserID == "" {
		return ledger.Transaction{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.Amount <= 0 {
		return ledger.Transaction{}, fmt.Errorf("%w: redeem amount must be positive", ErrInvalidInput)
	}
	if input.Description == "" {
		input.Description = "Points redeemed"
	}

	entry := ledger.Entry{
		UserID:       input.UserID,
		TeamID:       input.TeamID,
		Type:         ledger.TypeRedeemed,
		Amount:       -input.Amount,
		Description:  input.Description,
		Metadata:     input.Metadata,
		RequireFunds: true,
	}

	transaction, err := s.ledgerRepo.Apply(ctx, entry)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			return ledger.Transaction{}, fmt.Errorf("%w: balance below %d", ledger.ErrInsufficientBalance, input.Amount)
		}
		return ledger.Transaction{}, fmt.Errorf("apply redeem entry: %w", err)
	}

	s.logger.InfoContext(ctx, "points redeemed",
		"user_id", input.UserID,
		"amount", input.Amount,
		"balance_after", transaction.BalanceAfter,
	)

	return transaction, nil
}

// TransferPoints moves points from sender to recipient as one atomic
// pair of ledger entries. Both legs commit or neither does.
func (s *PointsService) TransferPoints(ctx context.Context, input TransferPointsInput) (TransferResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.TransferPoints")
	defer span.End()

	input.SenderID = strings.TrimSpace(input.SenderID)
	input.RecipientEmail = strings.ToLower(strings.TrimSpace(input.RecipientEmail))
	input.Note = strings.TrimSpace(input.Note)

	if input.SenderID == "" {
		return TransferResult{}, fmt.Errorf("%w: sender id is required", ErrInvalidInput)
	}
	if input.RecipientEmail == "" {
		return TransferResult{}, fmt.Errorf("%w: recipient email is required", ErrInvalidInput)
	}
	if input.Amount <= 0 {
		return TransferResult{}, fmt.Errorf("%w: transfer amount must be positive", ErrInvalidInput)
	}

	recipient, exists, err := s.profileRepo.GetByEmail(ctx, input.RecipientEmail)
	if err != nil {
		return TransferResult{}, fmt.Errorf("get recipient by email: %w", err)
	}
	if !exists {
		return TransferResult{}, fmt.Errorf("%w: recipient not found", ErrNotFound)
	}
	if recipient.ID == input.SenderID {
		return TransferResult{}, fmt.Errorf("%w: cannot transfer points to yourself", ErrInvalidInput)
	}

	description := fmt.Sprintf("Transfer to %s", input.RecipientEmail)
	if input.Note != "" {
		description = fmt.Sprintf("%s: %s", description, input.Note)
	}

	debit := ledger.Entry{
		UserID:       input.SenderID,
		Type:         ledger.TypeTransferred,
		Amount:       -input.Amount,
		Description:  description,
		Metadata:     map[string]any{"recipient_id": recipient.ID},
		RequireFunds: true,
	}
	credit := ledger.Entry{
		UserID:      recipient.ID,
		Type:        ledger.TypeTransferred,
		Amount:      input.Amount,
		Description: fmt.Sprintf("Transfer from user %s", input.SenderID),
		Metadata:    map[string]any{"sender_id": input.SenderID},
	}

	debitTx, creditTx, err := s.ledgerRepo.Transfer(ctx, debit, credit)
	if err != nil {
		if errors.Is(err, ledger.ErrInsufficientBalance) {
			return TransferResult{}, fmt.Errorf("%w: balance below %d", ledger.ErrInsufficientBalance, input.Amount)
		}
		return TransferResult{}, fmt.Errorf("apply transfer: %w", err)
	}

	s.logger.InfoContext(ctx, "points transferred",
		"sender_id", input.SenderID,
		"recipient_id", recipient.ID,
		"amount", input.Amount,
	)

	return TransferResult{Debit: debitTx, Credit: creditTx}, nil
}

// ExpirePoints removes points without the funds guard; balances clamp
// at zero when the expiry exceeds what remains.
func (s *PointsService) ExpirePoints(ctx context.Context, userID, teamID string, amount int, description string) (ledger.Transaction, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PointsService.ExpirePoints")
	defer span.End()

	userID = strings.TrimSpace(userID)
	teamID = strings.TrimSpace(teamID)
	description = strings.TrimSpace(description)

	if userID == "" {
		return ledger.Transaction{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if amount <= 0 {
		return ledger.Transaction{}, fmt.Errorf("%w: expire amount must be positive", ErrInvalidInput)
	}
	if description == "" {
		description = "Points expired"
	}

	transaction, err := s.ledgerRepo.Apply(ctx, ledger.Entry{
		UserID:      userID,
		TeamID:      teamID,
		Type:        ledger.TypeExpired,
		Amount:      -amount,
		Description: description,
	})
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("apply expire entry: %w", err)
	}

	return transaction, nil
}

func clampTransactionLimit(limit int) int {
	if limit <= 0 {
		return defaultTransactionLimit
	}
	if limit > maxTransactionLimit {
		return maxTransactionLimit
	}
	return limit
}
