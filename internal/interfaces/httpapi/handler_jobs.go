package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pointsrally/pointsrally/internal/domain/reward"
	"github.com/pointsrally/pointsrally/internal/usecase"
)

func (h *Handler) RunExpirePointsJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunExpirePointsJob")
	defer span.End()

	if h.maintenanceService == nil {
		writeError(ctx, w, fmt.Errorf("%w: maintenance service is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	result, err := h.maintenanceService.ExpireStaleBalances(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "expire points job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) UpdateRedemptionStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdateRedemptionStatus")
	defer span.End()

	redemptionID := strings.TrimSpace(r.PathValue("redemptionID"))

	var req updateRedemptionStatusRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	updated, err := h.rewardsService.UpdateRedemptionStatus(ctx, redemptionID, reward.RedemptionStatus(req.Status))
	if err != nil {
		h.logger.WarnContext(ctx, "update redemption status failed", "redemption_id", redemptionID, "status", req.Status, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, redemptionToDTO(updated))
}
