package usecase

import (
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pointsrally/pointsrally/internal/domain/ledger"
	"github.com/pointsrally/pointsrally/internal/domain/profile"
	ledgermock "github.com/pointsrally/pointsrally/internal/mocks/domain/ledger"
	profilemock "github.com/pointsrally/pointsrally/internal/mocks/domain/profile"
	"github.com/stretchr/testify/mock"
)

func TestPointsService_TransferPoints_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	profileRepo := profilemock.NewRepository(t)
	ledgerRepo := ledgermock.NewRepository(t)
	service := NewPointsService(profileRepo, ledgerRepo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	recipient := profile.Profile{ID: "user-2", Email: "rival@example.com"}

	profileRepo.
		On("GetByEmail", mock.Anything, "rival@example.com").
		Return(recipient, true, nil).
		Once()
	ledgerRepo.
		On("Transfer", mock.Anything,
			mock.MatchedBy(func(e ledger.Entry) bool {
				return e.UserID == "user-1" && e.Amount == -250 && e.RequireFunds
			}),
			mock.MatchedBy(func(e ledger.Entry) bool {
				return e.UserID == "user-2" && e.Amount == 250
			})).
		Return(
			ledger.Transaction{ID: "tx-debit", UserID: "user-1", Amount: -250},
			ledger.Transaction{ID: "tx-credit", UserID: "user-2", Amount: 250},
			nil,
		).
		Once()

	result, err := service.TransferPoints(t.Context(), TransferPointsInput{
		SenderID:       "user-1",
		RecipientEmail: "Rival@Example.com",
		Amount:         250,
		Note:           "good game",
	})
	if err != nil {
		t.Fatalf("transfer points: %v", err)
	}
	if result.Debit.ID != "tx-debit" || result.Credit.ID != "tx-credit" {
		t.Fatalf("unexpected transfer result: %+v", result)
	}
}

func TestPointsService_TransferPoints_InsufficientBalanceUsingMockery(t *testing.T) {
	t.Parallel()

	profileRepo := profilemock.NewRepository(t)
	ledgerRepo := ledgermock.NewRepository(t)
	service := NewPointsService(profileRepo, ledgerRepo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	profileRepo.
		On("GetByEmail", mock.Anything, "rival@example.com").
		Return(profile.Profile{ID: "user-2", Email: "rival@example.com"}, true, nil).
		Once()
	ledgerRepo.
		On("Transfer", mock.Anything, mock.Anything, mock.Anything).
		Return(ledger.Transaction{}, ledger.Transaction{}, ledger.ErrInsufficientBalance).
		Once()

	_, err := service.TransferPoints(t.Context(), TransferPointsInput{
		SenderID:       "user-1",
		RecipientEmail: "rival@example.com",
		Amount:         9999,
	})
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance error, got %v", err)
	}
}

func TestPointsService_TransferPoints_RecipientMissingUsingMockery(t *testing.T) {
	t.Parallel()

	profileRepo := profilemock.NewRepository(t)
	ledgerRepo := ledgermock.NewRepository(t)
	service := NewPointsService(profileRepo, ledgerRepo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	profileRepo.
		On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(profile.Profile{}, false, nil).
		Once()

	_, err := service.TransferPoints(t.Context(), TransferPointsInput{
		SenderID:       "user-1",
		RecipientEmail: "ghost@example.com",
		Amount:         100,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}
}
