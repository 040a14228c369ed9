package usecase

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pointsrally/pointsrally/internal/domain/ledger"
	"github.com/pointsrally/pointsrally/internal/domain/profile"
	"github.com/pointsrally/pointsrally/internal/infrastructure/repository/memory"
)

type staticIDGenerator struct {
	id string
}

func (g staticIDGenerator) NewID() (string, error) {
	return g.id, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPointsService_EarnThenRedeem(t *testing.T) {
	store := memory.NewStore()
	service := NewPointsService(store.Profiles(), store.Ledger(), testLogger())

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return now }

	earned, err := service.EarnPoints(t.Context(), EarnPointsInput{
		UserID: "user-1",
		Amount: 1200,
	})
	if err != nil {
		t.Fatalf("earn points failed: %v", err)
	}
	if earned.Amount != 1200 || earned.BalanceAfter != 1200 {
		t.Fatalf("expected amount 1200 balance 1200, got %d / %d", earned.Amount, earned.BalanceAfter)
	}
	if earned.Description != "Points earned" {
		t.Fatalf("expected default description, got %q", earned.Description)
	}

	redeemed, err := service.RedeemPoints(t.Context(), RedeemPointsInput{
		UserID:      "user-1",
		Amount:      500,
		Description: "Concession credit",
	})
	if err != nil {
		t.Fatalf("redeem points failed: %v", err)
	}
	if redeemed.Amount != -500 {
		t.Fatalf("expected ledger amount -500, got %d", redeemed.Amount)
	}
	if redeemed.BalanceAfter != 700 {
		t.Fatalf("expected balance 700 after redeem, got %d", redeemed.BalanceAfter)
	}

	balance, err := service.GetCurrentBalance(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if balance != 700 {
		t.Fatalf("expected balance 700, got %d", balance)
	}
}

func TestPointsService_RedeemInsufficientLeavesLedgerUntouched(t *testing.T) {
	store := memory.NewStore()
	service := NewPointsService(store.Profiles(), store.Ledger(), testLogger())

	if _, err := service.EarnPoints(t.Context(), EarnPointsInput{UserID: "user-1", Amount: 100}); err != nil {
		t.Fatalf("earn points failed: %v", err)
	}

	_, err := service.RedeemPoints(t.Context(), RedeemPointsInput{UserID: "user-1", Amount: 250})
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	transactions, err := service.ListTransactions(t.Context(), "user-1", "", 0, 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(transactions) != 1 {
		t.Fatalf("expected only the earn transaction, got %d rows", len(transactions))
	}

	balance, err := service.GetCurrentBalance(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if balance != 100 {
		t.Fatalf("expected balance unchanged at 100, got %d", balance)
	}
}

func TestPointsService_GetPointsSummary(t *testing.T) {
	store := memory.NewStore()
	service := NewPointsService(store.Profiles(), store.Ledger(), testLogger())

	if _, err := service.EarnPoints(t.Context(), EarnPointsInput{UserID: "user-1", Amount: 5200}); err != nil {
		t.Fatalf("earn points failed: %v", err)
	}

	summary, err := service.GetPointsSummary(t.Context(), "user-1", 0)
	if err != nil {
		t.Fatalf("get summary failed: %v", err)
	}
	if summary.Balance != 5200 {
		t.Fatalf("expected balance 5200, got %d", summary.Balance)
	}
	if summary.Tier != ledger.TierGold {
		t.Fatalf("expected gold tier at 5200 points, got %s", summary.Tier)
	}
	if summary.NextTierThreshold != 10000 {
		t.Fatalf("expected next threshold 10000, got %d", summary.NextTierThreshold)
	}
	if len(summary.Transactions) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(summary.Transactions))
	}
}

func TestPointsService_GetCurrentBalance_MissingProfileIsZero(t *testing.T) {
	store := memory.NewStore()
	service := NewPointsService(store.Profiles(), store.Ledger(), testLogger())

	balance, err := service.GetCurrentBalance(t.Context(), "nobody")
	if err != nil {
		t.Fatalf("get balance failed: %v", err)
	}
	if balance != 0 {
		t.Fatalf("expected zero balance for missing profile, got %d", balance)
	}
}

func TestPointsService_TransferPoints(t *testing.T) {
	store := memory.NewStore()
	service := NewPointsService(store.Profiles(), store.Ledger(), testLogger())

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if _, err := store.Profiles().Create(t.Context(), profile.Profile{
		ID:        "user-2",
		Email:     "rival@example.com",
		Tier:      ledger.TierBronze,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("create recipient failed: %v", err)
	}
	if _, err := service.EarnPoints(t.Context(), EarnPointsInput{UserID: "user-1", Amount: 800}); err != nil {
		t.Fatalf("earn points failed: %v", err)
	}

	result, err := service.TransferPoints(t.Context(), TransferPointsInput{
		SenderID:       "user-1",
		RecipientEmail: "Rival@Example.com",
		Amount:         300,
		Note:           "playoff bet",
	})
	if err != nil {
		t.Fatalf("transfer failed: %v", err)
	}

	if result.Debit.Amount != -300 || result.Debit.BalanceAfter != 500 {
		t.Fatalf("unexpected debit leg: amount=%d balance=%d", result.Debit.Amount, result.Debit.BalanceAfter)
	}
	if result.Credit.Amount != 300 || result.Credit.BalanceAfter != 300 {
		t.Fatalf("unexpected credit leg: amount=%d balance=%d", result.Credit.Amount, result.Credit.BalanceAfter)
	}
	if result.Debit.Description != "Transfer to rival@example.com: playoff bet" {
		t.Fatalf("unexpected debit description %q", result.Debit.Description)
	}

	recipientBalance, err := service.GetCurrentBalance(t.Context(), "user-2")
	if err != nil {
		t.Fatalf("get recipient balance failed: %v", err)
	}
	if recipientBalance != 300 {
		t.Fatalf("expected recipient balance 300, got %d", recipientBalance)
	}
}

func TestPointsService_TransferPoints_InsufficientLeavesBothSidesUntouched(t *testing.T) {
	store := memory.NewStore()
	service := NewPointsService(store.Profiles(), store.Ledger(), testLogger())

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if _, err := store.Profiles().Create(t.Context(), profile.Profile{
		ID:        "user-2",
		Email:     "rival@example.com",
		Tier:      ledger.TierBronze,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("create recipient failed: %v", err)
	}
	if _, err := service.EarnPoints(t.Context(), EarnPointsInput{UserID: "user-1", Amount: 50}); err != nil {
		t.Fatalf("earn points failed: %v", err)
	}

	_, err := service.TransferPoints(t.Context(), TransferPointsInput{
		SenderID:       "user-1",
		RecipientEmail: "rival@example.com",
		Amount:         200,
	})
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}

	senderBalance, _ := service.GetCurrentBalance(t.Context(), "user-1")
	recipientBalance, _ := service.GetCurrentBalance(t.Context(), "user-2")
	if senderBalance != 50 || recipientBalance != 0 {
		t.Fatalf("expected balances 50/0 after failed transfer, got %d/%d", senderBalance, recipientBalance)
	}

	recipientRows, err := service.ListTransactions(t.Context(), "user-2", "", 0, 0)
	if err != nil {
		t.Fatalf("list recipient transactions failed: %v", err)
	}
	if len(recipientRows) != 0 {
		t.Fatalf("expected no credit rows after failed transfer, got %d", len(recipientRows))
	}
}

func TestPointsService_TransferPoints_Rejections(t *testing.T) {
	store := memory.NewStore()
	service := NewPointsService(store.Profiles(), store.Ledger(), testLogger())

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if _, err := store.Profiles().Create(t.Context(), profile.Profile{
		ID:        "user-1",
		Email:     "self@example.com",
		Tier:      ledger.TierBronze,
		CreatedAt: now,
		UpdatedAt: now,
	}); err != nil {
		t.Fatalf("create profile failed: %v", err)
	}

	_, err := service.TransferPoints(t.Context(), TransferPointsInput{
		SenderID:       "user-1",
		RecipientEmail: "self@example.com",
		Amount:         10,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for self transfer, got %v", err)
	}

	_, err = service.TransferPoints(t.Context(), TransferPointsInput{
		SenderID:       "user-1",
		RecipientEmail: "ghost@example.com",
		Amount:         10,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown recipient, got %v", err)
	}

	_, err = service.TransferPoints(t.Context(), TransferPointsInput{
		SenderID:       "user-1",
		RecipientEmail: "self@example.com",
		Amount:         0,
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for zero amount, got %v", err)
	}
}

func TestPointsService_ExpirePointsClampsAtZero(t *testing.T) {
	store := memory.NewStore()
	service := NewPointsService(store.Profiles(), store.Ledger(), testLogger())

	if _, err := service.EarnPoints(t.Context(), EarnPointsInput{UserID: "user-1", Amount: 120}); err != nil {
		t.Fatalf("earn points failed: %v", err)
	}

	transaction, err := service.ExpirePoints(t.Context(), "user-1", "", 500, "")
	if err != nil {
		t.Fatalf("expire points failed: %v", err)
	}
	if transaction.BalanceAfter != 0 {
		t.Fatalf("expected balance clamped to 0, got %d", transaction.BalanceAfter)
	}
	if transaction.Description != "Points expired" {
		t.Fatalf("expected default expire description, got %q", transaction.Description)
	}
}

func TestPointsService_ListTransactions_PagingAndClamp(t *testing.T) {
	store := memory.NewStore()
	service := NewPointsService(store.Profiles(), store.Ledger(), testLogger())

	for i := 0; i < 25; i++ {
		if _, err := service.EarnPoints(t.Context(), EarnPointsInput{UserID: "user-1", Amount: 10}); err != nil {
			t.Fatalf("earn points failed: %v", err)
		}
	}

	defaulted, err := service.ListTransactions(t.Context(), "user-1", "", 0, 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(defaulted) != defaultTransactionLimit {
		t.Fatalf("expected default limit %d, got %d", defaultTransactionLimit, len(defaulted))
	}

	paged, err := service.ListTransactions(t.Context(), "user-1", "", 10, 20)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	if len(paged) != 5 {
		t.Fatalf("expected 5 rows at offset 20, got %d", len(paged))
	}

	if _, err := service.ListTransactions(t.Context(), "user-1", "", 10, -1); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative offset, got %v", err)
	}
}
