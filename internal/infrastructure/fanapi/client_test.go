package fanapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/pointsrally/pointsrally/internal/platform/logging"
	"github.com/pointsrally/pointsrally/internal/platform/resilience"
	"github.com/pointsrally/pointsrally/internal/usecase"
)

func TestClientFetchPointsBalance_SendsCredentialsAndParsesBalance(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/fan/balance" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer provider-token" {
			t.Fatalf("unexpected authorization header: %s", got)
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read request body: %v", err)
		}
		var req map[string]any
		if err := sonic.Unmarshal(body, &req); err != nil {
			t.Fatalf("decode request body: %v", err)
		}
		if req["team_id"] != "nba-lal" {
			t.Fatalf("unexpected team_id: %v", req["team_id"])
		}
		creds, _ := req["credentials"].(map[string]any)
		if creds["account_ref"] != "fan-778" {
			t.Fatalf("unexpected account_ref: %v", creds["account_ref"])
		}

		w.Header().Set("Content-Type", "application/json")
		encoded, _ := sonic.Marshal(map[string]any{
			"team_id": "nba-lal",
			"balance": 4321,
			"as_of":   "2026-03-01T10:00:00Z",
		})
		_, _ = w.Write(encoded)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		HTTPClient:     srv.Client(),
		BaseURL:        srv.URL,
		Token:          "provider-token",
		Logger:         logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	})

	balance, err := client.FetchPointsBalance(context.Background(), "nba-lal", map[string]any{"account_ref": "fan-778"})
	if err != nil {
		t.Fatalf("fetch balance failed: %v", err)
	}
	if balance != 4321 {
		t.Fatalf("unexpected balance: %d", balance)
	}
}

func TestClientFetchPointsBalance_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		encoded, _ := sonic.Marshal(map[string]any{"team_id": "nfl-kc", "balance": 900})
		_, _ = w.Write(encoded)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		HTTPClient:     srv.Client(),
		BaseURL:        srv.URL,
		MaxRetries:     1,
		Logger:         logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	})

	balance, err := client.FetchPointsBalance(context.Background(), "nfl-kc", nil)
	if err != nil {
		t.Fatalf("fetch balance failed: %v", err)
	}
	if balance != 900 {
		t.Fatalf("unexpected balance: %d", balance)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected one retry, got %d calls", calls.Load())
	}
}

func TestClientFetchPointsBalance_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		HTTPClient:     srv.Client(),
		BaseURL:        srv.URL,
		MaxRetries:     3,
		Logger:         logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	})

	if _, err := client.FetchPointsBalance(context.Background(), "nba-bos", nil); err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected no retry on 404, got %d calls", calls.Load())
	}
}

func TestClientFetchPointsBalance_OpenCircuitShortCircuits(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL,
		Logger:     logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 2,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	})

	for i := 0; i < 2; i++ {
		if _, err := client.FetchPointsBalance(context.Background(), "mlb-nyy", nil); err == nil {
			t.Fatalf("expected failure on call %d", i)
		}
	}

	_, err := client.FetchPointsBalance(context.Background(), "mlb-nyy", nil)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable with open circuit, got %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected no request past the open circuit, got %d calls", calls.Load())
	}
}

func TestClientFetchPointsBalance_RejectsNegativeBalance(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		encoded, _ := sonic.Marshal(map[string]any{"team_id": "nhl-tor", "balance": -5})
		_, _ = w.Write(encoded)
	}))
	defer srv.Close()

	client := NewClient(ClientConfig{
		HTTPClient:     srv.Client(),
		BaseURL:        srv.URL,
		Logger:         logging.NewNop(),
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: false},
	})

	if _, err := client.FetchPointsBalance(context.Background(), "nhl-tor", nil); err == nil {
		t.Fatal("expected an error for a negative balance")
	}
}

func TestSimulatorFetchPointsBalance_Deterministic(t *testing.T) {
	t.Parallel()

	sim := NewSimulator()
	sim.now = func() time.Time { return time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC) }

	creds := map[string]any{"account_ref": "Fan-001"}

	first, err := sim.FetchPointsBalance(context.Background(), "nba-lal", creds)
	if err != nil {
		t.Fatalf("simulator fetch failed: %v", err)
	}
	second, err := sim.FetchPointsBalance(context.Background(), "nba-lal", map[string]any{"account_ref": "fan-001"})
	if err != nil {
		t.Fatalf("simulator fetch failed: %v", err)
	}
	if first != second {
		t.Fatalf("expected identical balances for the same account, got %d and %d", first, second)
	}
	if first < 0 {
		t.Fatalf("expected a non-negative balance, got %d", first)
	}

	other, err := sim.FetchPointsBalance(context.Background(), "nba-bos", creds)
	if err != nil {
		t.Fatalf("simulator fetch failed: %v", err)
	}
	if other == first {
		t.Fatal("expected different teams to yield different balances")
	}
}

func TestSimulatorFetchPointsBalance_AccruesDaily(t *testing.T) {
	t.Parallel()

	sim := NewSimulator()

	sim.now = func() time.Time { return time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC) }
	before, err := sim.FetchPointsBalance(context.Background(), "mls-mia", nil)
	if err != nil {
		t.Fatalf("simulator fetch failed: %v", err)
	}

	sim.now = func() time.Time { return time.Date(2026, time.February, 11, 0, 0, 0, 0, time.UTC) }
	after, err := sim.FetchPointsBalance(context.Background(), "mls-mia", nil)
	if err != nil {
		t.Fatalf("simulator fetch failed: %v", err)
	}

	if after <= before {
		t.Fatalf("expected the balance to grow over time, got %d then %d", before, after)
	}
}
