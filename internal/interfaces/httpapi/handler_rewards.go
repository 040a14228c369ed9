package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pointsrally/pointsrally/internal/domain/reward"
	"github.com/pointsrally/pointsrally/internal/usecase"
)

func (h *Handler) ListRewards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListRewards")
	defer span.End()

	query := r.URL.Query()
	maxPoints, err := parseOptionalInt(query.Get("maxPoints"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	filter := reward.Filter{
		Category:     strings.TrimSpace(query.Get("category")),
		TeamID:       strings.TrimSpace(query.Get("teamId")),
		MaxPoints:    maxPoints,
		Availability: reward.Availability(strings.TrimSpace(query.Get("availability"))),
	}

	rewards, err := h.rewardsService.ListRewards(ctx, filter)
	if err != nil {
		h.logger.WarnContext(ctx, "list rewards failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rewardsToDTO(rewards))
}

func (h *Handler) ListFeaturedRewards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFeaturedRewards")
	defer span.End()

	limit, err := parseOptionalInt(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	rewards, err := h.rewardsService.GetFeaturedRewards(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list featured rewards failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rewardsToDTO(rewards))
}

func (h *Handler) ListAffordableRewards(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListAffordableRewards")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	rewards, err := h.rewardsService.GetAffordableRewards(ctx, principal.UserID)
	if err != nil {
		h.logger.WarnContext(ctx, "list affordable rewards failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rewardsToDTO(rewards))
}

func (h *Handler) RedeemReward(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RedeemReward")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req redeemRewardRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	redemption, err := h.rewardsService.RedeemReward(ctx, usecase.RedeemRewardInput{
		UserID:   principal.UserID,
		RewardID: req.RewardID,
		Quantity: req.Quantity,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "redeem reward failed", "user_id", principal.UserID, "reward_id", req.RewardID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, redemptionToDTO(redemption))
}

func (h *Handler) ListMyRedemptions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMyRedemptions")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	status := reward.RedemptionStatus(strings.TrimSpace(r.URL.Query().Get("status")))

	details, err := h.rewardsService.ListUserRedemptions(ctx, principal.UserID, status)
	if err != nil {
		h.logger.WarnContext(ctx, "list redemptions failed", "user_id", principal.UserID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, redemptionDetailsToDTO(details))
}
