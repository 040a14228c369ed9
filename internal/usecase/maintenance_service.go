package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/pointsrally/pointsrally/internal/domain/ledger"
	"github.com/pointsrally/pointsrally/internal/domain/team"
)

// ExpireStaleBalancesResult summarizes one expiry sweep.
type ExpireStaleBalancesResult struct {
	Scanned       int `json:"scanned"`
	Expired       int `json:"expired"`
	Failed        int `json:"failed"`
	PointsRemoved int `json:"points_removed"`
	WorkerCount   int `json:"worker_count"`
}

// MaintenanceConfig tunes the background expiry sweep.
type MaintenanceConfig struct {
	ExpiryAfter time.Duration
	BatchSize   int
	MaxWorkers  int
}

// MaintenanceService runs scheduled housekeeping jobs. Points on
// connections that have not synced within the expiry window are wiped,
// recorded as expired transactions.
type MaintenanceService struct {
	connRepo   team.ConnectionRepository
	ledgerRepo ledger.Repository
	cfg        MaintenanceConfig
	logger     *slog.Logger
	now        func() time.Time
}

func NewMaintenanceService(
	connRepo team.ConnectionRepository,
	ledgerRepo ledger.Repository,
	cfg MaintenanceConfig,
	logger *slog.Logger,
) *MaintenanceService {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ExpiryAfter <= 0 {
		cfg.ExpiryAfter = 365 * 24 * time.Hour
	}
	if cfg.BatchSize < 1 {
		cfg.BatchSize = 100
	}
	if cfg.MaxWorkers < 1 {
		cfg.MaxWorkers = 1
	}

	return &MaintenanceService{
		connRepo:   connRepo,
		ledgerRepo: ledgerRepo,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// ExpireStaleBalances zeroes the balances of connections whose last
// sync predates the expiry window, fanning the ledger writes out over a
// worker pool. Each expiry is its own atomic ledger apply, so a failed
// connection leaves the others untouched.
func (s *MaintenanceService) ExpireStaleBalances(ctx context.Context) (ExpireStaleBalancesResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MaintenanceService.ExpireStaleBalances")
	defer span.End()

	cutoff := s.now().UTC().Add(-s.cfg.ExpiryAfter)

	stale, err := s.connRepo.ListStale(ctx, cutoff, s.cfg.BatchSize)
	if err != nil {
		return ExpireStaleBalancesResult{}, fmt.Errorf("list stale connections: %w", err)
	}

	targets := make([]team.Connection, 0, len(stale))
	for _, connection := range stale {
		if connection.PointsBalance > 0 {
			targets = append(targets, connection)
		}
	}

	workerCount := s.cfg.MaxWorkers
	if workerCount > len(targets) {
		workerCount = len(targets)
	}

	result := ExpireStaleBalancesResult{
		Scanned:     len(stale),
		WorkerCount: workerCount,
	}
	if len(targets) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return ExpireStaleBalancesResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var expired atomic.Int32
	var failed atomic.Int32
	var pointsRemoved atomic.Int64

	var workers sync.WaitGroup
	for _, connection := range targets {
		connection := connection
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			transaction, applyErr := s.ledgerRepo.Apply(ctx, ledger.Entry{
				UserID:      connection.UserID,
				TeamID:      connection.TeamID,
				Type:        ledger.TypeExpired,
				Amount:      -connection.PointsBalance,
				Description: "Points expired after inactivity",
				Metadata:    map[string]any{"source": "expiry_sweep", "connection_id": connection.ID},
			})
			if applyErr != nil {
				failed.Add(1)
				s.logger.ErrorContext(ctx, "expire stale balance failed",
					"user_id", connection.UserID,
					"team_id", connection.TeamID,
					"error", applyErr,
				)
				return
			}

			expired.Add(1)
			pointsRemoved.Add(int64(-transaction.Amount))
		}); err != nil {
			// A rejected submission must not abandon workers already
			// running; count it and keep sweeping.
			workers.Done()
			failed.Add(1)
			s.logger.ErrorContext(ctx, "submit expiry task failed",
				"connection_id", connection.ID,
				"error", err,
			)
		}
	}

	workers.Wait()

	result.Expired = int(expired.Load())
	result.Failed = int(failed.Load())
	result.PointsRemoved = int(pointsRemoved.Load())

	s.logger.InfoContext(ctx, "stale balance sweep finished",
		"scanned", result.Scanned,
		"expired", result.Expired,
		"failed", result.Failed,
		"points_removed", result.PointsRemoved,
	)

	return result, nil
}
