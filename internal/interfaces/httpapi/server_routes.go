package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicCatalogRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/rewards", handler.ListRewards)
	mux.HandleFunc("GET /v1/rewards/featured", handler.ListFeaturedRewards)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	registerAuthorizedPointsRoutes(mux, handler, verifier)
	registerAuthorizedProfileRoutes(mux, handler, verifier)
	registerAuthorizedRewardsRoutes(mux, handler, verifier)
	registerAuthorizedTeamsRoutes(mux, handler, verifier)
}

func registerAuthorizedPointsRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/points", RequireAuth(verifier, http.HandlerFunc(handler.GetPointsSummary)))
	mux.Handle("GET /v1/points/transactions", RequireAuth(verifier, http.HandlerFunc(handler.ListTransactions)))
	mux.Handle("POST /v1/points/transfer", RequireAuth(verifier, http.HandlerFunc(handler.TransferPoints)))
}

func registerAuthorizedProfileRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/profile", RequireAuth(verifier, http.HandlerFunc(handler.GetProfile)))
	mux.Handle("PATCH /v1/profile", RequireAuth(verifier, http.HandlerFunc(handler.UpdateProfile)))
	mux.Handle("DELETE /v1/profile", RequireAuth(verifier, http.HandlerFunc(handler.DeleteProfile)))
}

func registerAuthorizedRewardsRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/rewards/affordable", RequireAuth(verifier, http.HandlerFunc(handler.ListAffordableRewards)))
	mux.Handle("POST /v1/rewards/redeem", RequireAuth(verifier, http.HandlerFunc(handler.RedeemReward)))
	mux.Handle("GET /v1/redemptions", RequireAuth(verifier, http.HandlerFunc(handler.ListMyRedemptions)))
}

func registerAuthorizedTeamsRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/teams", RequireAuth(verifier, http.HandlerFunc(handler.ListTeams)))
	mux.Handle("POST /v1/teams", RequireAuth(verifier, http.HandlerFunc(handler.ConnectTeam)))
	mux.Handle("DELETE /v1/teams/{teamID}", RequireAuth(verifier, http.HandlerFunc(handler.DisconnectTeam)))
	mux.Handle("POST /v1/teams/sync", RequireAuth(verifier, http.HandlerFunc(handler.SyncTeamPoints)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/expire-points", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunExpirePointsJob)))
	mux.Handle("PATCH /v1/internal/redemptions/{redemptionID}/status", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.UpdateRedemptionStatus)))
}
