package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/pointsrally/pointsrally/internal/usecase"
)

func (h *Handler) GetPointsSummary(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPointsSummary")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	limit, err := parseOptionalInt(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.pointsService.GetPointsSummary(ctx, principal.UserID, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "get points summary failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, pointsSummaryDTO{
		Balance:           summary.Balance,
		Tier:              string(summary.Tier),
		NextTierThreshold: summary.NextTierThreshold,
		Transactions:      transactionsToDTO(summary.Transactions),
	})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTransactions")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	query := r.URL.Query()
	limit, err := parseOptionalInt(query.Get("limit"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	offset, err := parseOptionalInt(query.Get("offset"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	teamID := strings.TrimSpace(query.Get("teamId"))

	transactions, err := h.pointsService.ListTransactions(ctx, principal.UserID, teamID, limit, offset)
	if err != nil {
		h.logger.WarnContext(ctx, "list transactions failed", "user_id", principal.UserID, "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, transactionsToDTO(transactions))
}

func (h *Handler) TransferPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.TransferPoints")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req transferPointsRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.pointsService.TransferPoints(ctx, usecase.TransferPointsInput{
		SenderID:       principal.UserID,
		RecipientEmail: req.RecipientEmail,
		Amount:         req.Amount,
		Note:           req.Note,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "transfer points failed", "user_id", principal.UserID, "amount", req.Amount, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, transferResultDTO{
		Debit:  transactionToDTO(result.Debit),
		Credit: transactionToDTO(result.Credit),
	})
}

func parseOptionalInt(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a valid integer", usecase.ErrInvalidInput, raw)
	}

	return value, nil
}
