package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/pointsrally/pointsrally/internal/usecase"
)

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	query := r.URL.Query()
	if strings.EqualFold(strings.TrimSpace(query.Get("connected")), "true") {
		connected, err := h.teamsService.ListUserTeams(ctx, principal.UserID)
		if err != nil {
			h.logger.WarnContext(ctx, "list connected teams failed", "user_id", principal.UserID, "error", err)
			writeError(ctx, w, err)
			return
		}

		items := make([]connectedTeamDTO, 0, len(connected))
		for _, ct := range connected {
			items = append(items, connectedTeamToDTO(ct))
		}
		writeSuccess(ctx, w, http.StatusOK, items)
		return
	}

	teams, err := h.teamsService.ListTeams(ctx, query.Get("sport"))
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]teamDTO, 0, len(teams))
	for _, t := range teams {
		items = append(items, teamToDTO(t))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ConnectTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ConnectTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req connectTeamRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	credentials := map[string]any{}
	if strings.TrimSpace(req.APIKey) != "" {
		credentials["api_key"] = strings.TrimSpace(req.APIKey)
	}
	if strings.TrimSpace(req.AccountID) != "" {
		credentials["account_id"] = strings.TrimSpace(req.AccountID)
	}

	connected, err := h.teamsService.ConnectTeam(ctx, usecase.ConnectTeamInput{
		UserID:         principal.UserID,
		UserEmail:      principal.Email,
		TeamID:         req.TeamID,
		APICredentials: credentials,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "connect team failed", "user_id", principal.UserID, "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, connectedTeamToDTO(connected))
}

func (h *Handler) DisconnectTeam(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.DisconnectTeam")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	teamID := strings.TrimSpace(r.PathValue("teamID"))
	if err := h.teamsService.DisconnectTeam(ctx, principal.UserID, teamID); err != nil {
		h.logger.WarnContext(ctx, "disconnect team failed", "user_id", principal.UserID, "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "disconnected"})
}

func (h *Handler) SyncTeamPoints(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SyncTeamPoints")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	var req syncTeamRequest
	if err := decodeRequest(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.teamsService.SyncTeamPoints(ctx, principal.UserID, req.TeamID)
	if err != nil {
		h.logger.WarnContext(ctx, "sync team points failed", "user_id", principal.UserID, "team_id", req.TeamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, syncResultToDTO(result))
}
