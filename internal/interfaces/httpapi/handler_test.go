package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"
	"github.com/pointsrally/pointsrally/internal/domain/user"
	"github.com/pointsrally/pointsrally/internal/infrastructure/repository/memory"
	"github.com/pointsrally/pointsrally/internal/platform/id"
	"github.com/pointsrally/pointsrally/internal/usecase"
)

type staticVerifier struct {
	principal user.Principal
}

func (v staticVerifier) VerifyAccessToken(_ context.Context, token string) (user.Principal, error) {
	if token != "valid-token" {
		return user.Principal{}, usecase.ErrUnauthorized
	}
	return v.principal, nil
}

type staticProvider struct {
	balance int
}

func (p staticProvider) FetchPointsBalance(_ context.Context, _ string, _ map[string]any) (int, error) {
	return p.balance, nil
}

const testJobToken = "job-secret"

func newTestRouter(t *testing.T, store *memory.Store, externalBalance int) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	idGen := id.NewRandomGenerator()

	points := usecase.NewPointsService(store.Profiles(), store.Ledger(), logger)
	rewards := usecase.NewRewardsService(store.Rewards(), store.Profiles(), idGen, logger)
	teams := usecase.NewTeamsService(store.Teams(), store.Connections(), store.Ledger(), store.Profiles(), staticProvider{balance: externalBalance}, idGen, logger)
	profiles := usecase.NewProfileService(store.Profiles(), store.Connections(), logger)
	maintenance := usecase.NewMaintenanceService(store.Connections(), store.Ledger(), usecase.MaintenanceConfig{}, logger)

	handler := NewHandler(points, rewards, teams, profiles, maintenance, logger)
	verifier := staticVerifier{principal: user.Principal{UserID: "user-1", Email: "fan@example.com"}}

	return NewRouter(handler, verifier, logger, nil, testJobToken)
}

func doRequest(t *testing.T, router http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	data, _ := envelope["data"].(map[string]any)
	return data
}

func fundTestUser(t *testing.T, store *memory.Store, userID string, amount int) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	points := usecase.NewPointsService(store.Profiles(), store.Ledger(), logger)
	if _, err := points.EarnPoints(t.Context(), usecase.EarnPointsInput{UserID: userID, Amount: amount}); err != nil {
		t.Fatalf("fund user %s failed: %v", userID, err)
	}
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t, memory.NewSeededStore(), 0)

	rec := doRequest(t, router, http.MethodGet, "/healthz", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestRouter_RequiresAuth(t *testing.T) {
	router := newTestRouter(t, memory.NewSeededStore(), 0)

	rec := doRequest(t, router, http.MethodGet, "/v1/points", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without a token, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/points", "wrong-token", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 with a bad token, got %d", rec.Code)
	}
}

func TestRouter_ConnectSyncAndSummary(t *testing.T) {
	store := memory.NewSeededStore()
	router := newTestRouter(t, store, 750)

	rec := doRequest(t, router, http.MethodPost, "/v1/teams", "valid-token", `{"teamId":"nba-lal","accountId":"fan-778"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/teams", "valid-token", `{"teamId":"nba-lal"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 for duplicate connection, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodPost, "/v1/teams/sync", "valid-token", `{"teamId":"nba-lal"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for sync, got %d: %s", rec.Code, rec.Body.String())
	}
	syncData := decodeData(t, rec)
	if got, _ := syncData["pointsBalance"].(float64); int(got) != 750 {
		t.Fatalf("expected synced balance 750, got %v", syncData["pointsBalance"])
	}
	if got, _ := syncData["delta"].(float64); int(got) != 750 {
		t.Fatalf("expected delta 750, got %v", syncData["delta"])
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/points", "valid-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for summary, got %d", rec.Code)
	}
	summary := decodeData(t, rec)
	if got, _ := summary["balance"].(float64); int(got) != 750 {
		t.Fatalf("expected balance 750, got %v", summary["balance"])
	}
	if got, _ := summary["tier"].(string); got != "bronze" {
		t.Fatalf("expected tier bronze, got %v", summary["tier"])
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/teams?connected=true", "valid-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for connected teams, got %d", rec.Code)
	}
}

func TestRouter_RewardsCatalogIsPublic(t *testing.T) {
	router := newTestRouter(t, memory.NewSeededStore(), 0)

	rec := doRequest(t, router, http.MethodGet, "/v1/rewards?maxPoints=1000", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for public catalog, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/rewards/featured", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for featured rewards, got %d", rec.Code)
	}
}

func TestRouter_RedeemReward(t *testing.T) {
	store := memory.NewSeededStore()
	router := newTestRouter(t, store, 0)

	rec := doRequest(t, router, http.MethodPost, "/v1/rewards/redeem", "valid-token", `{"rewardId":"rw-cap"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for an unfunded redemption, got %d", rec.Code)
	}

	fundTestUser(t, store, "user-1", 800)

	rec = doRequest(t, router, http.MethodPost, "/v1/rewards/redeem", "valid-token", `{"rewardId":"rw-cap"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if got, _ := data["status"].(string); got != "pending" {
		t.Fatalf("expected pending redemption, got %v", data["status"])
	}
	code, _ := data["code"].(string)
	if !strings.HasPrefix(code, "PR-") {
		t.Fatalf("expected a PR- redemption code, got %q", code)
	}

	rec = doRequest(t, router, http.MethodGet, "/v1/redemptions", "valid-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for redemption list, got %d", rec.Code)
	}
}

func TestRouter_TransferUnknownRecipient(t *testing.T) {
	store := memory.NewSeededStore()
	router := newTestRouter(t, store, 0)

	fundTestUser(t, store, "user-1", 500)

	rec := doRequest(t, router, http.MethodPost, "/v1/points/transfer", "valid-token", `{"recipientEmail":"ghost@example.com","amount":100}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 for unknown recipient, got %d", rec.Code)
	}
}

func TestRouter_InternalJobsRequireToken(t *testing.T) {
	router := newTestRouter(t, memory.NewSeededStore(), 0)

	rec := doRequest(t, router, http.MethodPost, "/v1/internal/jobs/expire-points", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 without job token, got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/internal/jobs/expire-points", nil)
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200 with job token, got %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestRouter_UpdateRedemptionStatusViaJobToken(t *testing.T) {
	store := memory.NewSeededStore()
	router := newTestRouter(t, store, 0)

	fundTestUser(t, store, "user-1", 800)
	rec := doRequest(t, router, http.MethodPost, "/v1/rewards/redeem", "valid-token", `{"rewardId":"rw-cap"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("redeem failed: %d %s", rec.Code, rec.Body.String())
	}
	redemptionID, _ := decodeData(t, rec)["id"].(string)
	if redemptionID == "" {
		t.Fatal("expected a redemption id")
	}

	req := httptest.NewRequest(http.MethodPatch, "/v1/internal/redemptions/"+redemptionID+"/status", strings.NewReader(`{"status":"processing"}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", recorder.Code, recorder.Body.String())
	}

	req = httptest.NewRequest(http.MethodPatch, "/v1/internal/redemptions/"+redemptionID+"/status", strings.NewReader(`{"status":"pending"}`))
	req.Header.Set("X-Internal-Job-Token", testJobToken)
	req.Header.Set("Content-Type", "application/json")
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for a backward transition, got %d", recorder.Code)
	}
}

func TestRouter_ProfileLifecycle(t *testing.T) {
	store := memory.NewSeededStore()
	router := newTestRouter(t, store, 0)

	rec := doRequest(t, router, http.MethodGet, "/v1/profile", "valid-token", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for first profile access, got %d", rec.Code)
	}
	data := decodeData(t, rec)
	if got, _ := data["email"].(string); got != "fan@example.com" {
		t.Fatalf("expected provisioned email, got %v", data["email"])
	}

	rec = doRequest(t, router, http.MethodPatch, "/v1/profile", "valid-token", `{"displayName":"Rally Fan"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for profile update, got %d: %s", rec.Code, rec.Body.String())
	}
	data = decodeData(t, rec)
	if got, _ := data["displayName"].(string); got != "Rally Fan" {
		t.Fatalf("expected updated display name, got %v", data["displayName"])
	}

	rec = doRequest(t, router, http.MethodDelete, "/v1/profile", "valid-token", `{"confirmDelete":false}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400 for unconfirmed delete, got %d", rec.Code)
	}

	rec = doRequest(t, router, http.MethodDelete, "/v1/profile", "valid-token", `{"confirmDelete":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 for confirmed delete, got %d: %s", rec.Code, rec.Body.String())
	}
}
