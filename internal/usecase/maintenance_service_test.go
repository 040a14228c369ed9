package usecase

import (
	"fmt"
	"testing"
	"time"

	"github.com/pointsrally/pointsrally/internal/domain/team"
	"github.com/pointsrally/pointsrally/internal/infrastructure/repository/memory"
)

func TestMaintenanceService_ExpireStaleBalances(t *testing.T) {
	store := memory.NewSeededStore()
	points := NewPointsService(store.Profiles(), store.Ledger(), testLogger())

	staleAt := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	recentAt := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)

	seed := []struct {
		id          string
		userID      string
		teamID      string
		balance     int
		connectedAt time.Time
	}{
		{"conn-001", "user-1", "nba-lal", 400, staleAt},
		{"conn-002", "user-1", "nba-bos", 250, staleAt},
		{"conn-003", "user-2", "mlb-nyy", 900, recentAt},
	}
	for _, row := range seed {
		if _, err := store.Connections().Create(t.Context(), team.Connection{
			ID:          row.id,
			UserID:      row.userID,
			TeamID:      row.teamID,
			ConnectedAt: row.connectedAt,
		}); err != nil {
			t.Fatalf("create connection %s failed: %v", row.id, err)
		}
		if _, err := points.EarnPoints(t.Context(), EarnPointsInput{
			UserID: row.userID,
			TeamID: row.teamID,
			Amount: row.balance,
		}); err != nil {
			t.Fatalf("fund connection %s failed: %v", row.id, err)
		}
	}

	service := NewMaintenanceService(store.Connections(), store.Ledger(), MaintenanceConfig{
		ExpiryAfter: 365 * 24 * time.Hour,
		BatchSize:   100,
		MaxWorkers:  4,
	}, testLogger())
	service.now = func() time.Time { return time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC) }

	result, err := service.ExpireStaleBalances(t.Context())
	if err != nil {
		t.Fatalf("expiry sweep failed: %v", err)
	}

	if result.Scanned != 2 {
		t.Fatalf("expected 2 stale connections scanned, got %d", result.Scanned)
	}
	if result.Expired != 2 || result.Failed != 0 {
		t.Fatalf("expected 2 expired 0 failed, got %d / %d", result.Expired, result.Failed)
	}
	if result.PointsRemoved != 650 {
		t.Fatalf("expected 650 points removed, got %d", result.PointsRemoved)
	}
	if result.WorkerCount != 2 {
		t.Fatalf("expected worker count capped at 2 targets, got %d", result.WorkerCount)
	}

	total, err := points.GetCurrentBalance(t.Context(), "user-1")
	if err != nil {
		t.Fatalf("get total failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected stale user zeroed, got %d", total)
	}

	survivor, err := points.GetCurrentBalance(t.Context(), "user-2")
	if err != nil {
		t.Fatalf("get survivor total failed: %v", err)
	}
	if survivor != 900 {
		t.Fatalf("expected recent connection untouched, got %d", survivor)
	}

	// each expiry lands in the ledger as an expired transaction
	transactions, err := store.Ledger().ListByUser(t.Context(), "user-1", 0, 0)
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	expiredRows := 0
	for _, transaction := range transactions {
		if transaction.Description == "Points expired after inactivity" {
			expiredRows++
		}
	}
	if expiredRows != 2 {
		t.Fatalf("expected 2 expiry transactions, got %d", expiredRows)
	}
}

func TestMaintenanceService_ExpireStaleBalances_SkipsZeroBalances(t *testing.T) {
	store := memory.NewSeededStore()

	staleAt := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	if _, err := store.Connections().Create(t.Context(), team.Connection{
		ID:          "conn-001",
		UserID:      "user-1",
		TeamID:      "nba-lal",
		ConnectedAt: staleAt,
	}); err != nil {
		t.Fatalf("create connection failed: %v", err)
	}

	service := NewMaintenanceService(store.Connections(), store.Ledger(), MaintenanceConfig{}, testLogger())
	service.now = func() time.Time { return time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC) }

	result, err := service.ExpireStaleBalances(t.Context())
	if err != nil {
		t.Fatalf("expiry sweep failed: %v", err)
	}
	if result.Scanned != 1 {
		t.Fatalf("expected the empty connection scanned, got %d", result.Scanned)
	}
	if result.Expired != 0 || result.PointsRemoved != 0 {
		t.Fatalf("expected nothing expired, got %+v", result)
	}
}

func TestMaintenanceService_ExpireStaleBalances_SingleWorkerDrainsAll(t *testing.T) {
	store := memory.NewSeededStore()
	points := NewPointsService(store.Profiles(), store.Ledger(), testLogger())

	staleAt := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	catalog := memory.SeedTeams()
	for i, row := range catalog {
		if _, err := store.Connections().Create(t.Context(), team.Connection{
			ID:          fmt.Sprintf("conn-%03d", i+1),
			UserID:      "user-sweep",
			TeamID:      row.ID,
			ConnectedAt: staleAt,
		}); err != nil {
			t.Fatalf("create connection for %s failed: %v", row.ID, err)
		}
		if _, err := points.EarnPoints(t.Context(), EarnPointsInput{
			UserID: "user-sweep",
			TeamID: row.ID,
			Amount: 10,
		}); err != nil {
			t.Fatalf("fund connection for %s failed: %v", row.ID, err)
		}
	}

	service := NewMaintenanceService(store.Connections(), store.Ledger(), MaintenanceConfig{
		ExpiryAfter: 365 * 24 * time.Hour,
		BatchSize:   100,
		MaxWorkers:  1,
	}, testLogger())
	service.now = func() time.Time { return time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC) }

	result, err := service.ExpireStaleBalances(t.Context())
	if err != nil {
		t.Fatalf("expiry sweep failed: %v", err)
	}

	if result.WorkerCount != 1 {
		t.Fatalf("expected a single worker, got %d", result.WorkerCount)
	}
	if result.Expired != len(catalog) || result.Failed != 0 {
		t.Fatalf("expected all %d connections drained, got %+v", len(catalog), result)
	}
	if result.PointsRemoved != 10*len(catalog) {
		t.Fatalf("expected %d points removed, got %d", 10*len(catalog), result.PointsRemoved)
	}

	total, err := points.GetCurrentBalance(t.Context(), "user-sweep")
	if err != nil {
		t.Fatalf("get total failed: %v", err)
	}
	if total != 0 {
		t.Fatalf("expected swept user zeroed, got %d", total)
	}
}
