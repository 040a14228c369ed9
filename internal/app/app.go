package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pointsrally/pointsrally/internal/config"
	"github.com/pointsrally/pointsrally/internal/domain/ledger"
	"github.com/pointsrally/pointsrally/internal/domain/profile"
	"github.com/pointsrally/pointsrally/internal/domain/reward"
	"github.com/pointsrally/pointsrally/internal/domain/team"
	"github.com/pointsrally/pointsrally/internal/infrastructure/account/gatekeeper"
	"github.com/pointsrally/pointsrally/internal/infrastructure/fanapi"
	cacherepo "github.com/pointsrally/pointsrally/internal/infrastructure/repository/cache"
	"github.com/pointsrally/pointsrally/internal/infrastructure/repository/memory"
	"github.com/pointsrally/pointsrally/internal/infrastructure/repository/postgres"
	"github.com/pointsrally/pointsrally/internal/interfaces/httpapi"
	basecache "github.com/pointsrally/pointsrally/internal/platform/cache"
	idgen "github.com/pointsrally/pointsrally/internal/platform/id"
	"github.com/pointsrally/pointsrally/internal/platform/logging"
	"github.com/pointsrally/pointsrally/internal/platform/resilience"
	"github.com/pointsrally/pointsrally/internal/usecase"
)

type repositories struct {
	profiles    profile.Repository
	teams       team.Repository
	connections team.ConnectionRepository
	ledger      ledger.Repository
	rewards     reward.Repository
}

func NewHTTPServer(ctx context.Context, cfg config.Config, logger *slog.Logger) (*http.Server, error) {
	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	if cfg.CacheEnabled {
		catalogCache := basecache.NewStore(cfg.CacheTTL)
		repos.teams = cacherepo.NewTeamRepository(repos.teams, catalogCache)
		repos.rewards = cacherepo.NewRewardRepository(repos.rewards, catalogCache)
	}

	idGen := idgen.NewRandomGenerator()
	provider := buildFanPointsProvider(cfg)

	pointsSvc := usecase.NewPointsService(repos.profiles, repos.ledger, logger)
	rewardsSvc := usecase.NewRewardsService(repos.rewards, repos.profiles, idGen, logger)
	teamsSvc := usecase.NewTeamsService(repos.teams, repos.connections, repos.ledger, repos.profiles, provider, idGen, logger)
	profileSvc := usecase.NewProfileService(repos.profiles, repos.connections, logger)
	maintenanceSvc := usecase.NewMaintenanceService(repos.connections, repos.ledger, usecase.MaintenanceConfig{
		ExpiryAfter: cfg.PointsExpiryAfter,
		BatchSize:   cfg.PointsExpiryBatchSize,
		MaxWorkers:  cfg.PointsExpiryWorkers,
	}, logger)

	gatekeeperClient := gatekeeper.NewClient(
		&http.Client{Timeout: cfg.GatekeeperTimeout},
		cfg.GatekeeperBaseURL,
		cfg.GatekeeperIntrospectURL,
		cfg.GatekeeperAdminKey,
		gatekeeper.CircuitBreakerConfig{
			Enabled:          cfg.GatekeeperCircuitEnabled,
			FailureThreshold: cfg.GatekeeperCircuitFailureCount,
			OpenTimeout:      cfg.GatekeeperCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.GatekeeperCircuitHalfOpenMax,
		},
		logger,
	)

	handler := httpapi.NewHandler(pointsSvc, rewardsSvc, teamsSvc, profileSvc, maintenanceSvc, logger)
	router := httpapi.NewRouter(handler, gatekeeperClient, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, nil
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *slog.Logger) (repositories, error) {
	if useMemoryStore(cfg.DBURL) {
		logger.Warn("using seeded in-memory storage, data will not survive restarts")
		store := memory.NewSeededStore()
		return repositories{
			profiles:    store.Profiles(),
			teams:       store.Teams(),
			connections: store.Connections(),
			ledger:      store.Ledger(),
			rewards:     store.Rewards(),
		}, nil
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return repositories{}, err
	}

	if err := postgres.BootstrapSeed(ctx, db); err != nil {
		return repositories{}, fmt.Errorf("bootstrap seed: %w", err)
	}

	return repositories{
		profiles:    postgres.NewProfileRepository(db),
		teams:       postgres.NewTeamRepository(db),
		connections: postgres.NewConnectionRepository(db),
		ledger:      postgres.NewLedgerRepository(db),
		rewards:     postgres.NewRewardRepository(db),
	}, nil
}

func buildFanPointsProvider(cfg config.Config) usecase.FanPointsProvider {
	if !cfg.FanAPIEnabled {
		return fanapi.NewSimulator()
	}

	return fanapi.NewClient(fanapi.ClientConfig{
		BaseURL:    cfg.FanAPIBaseURL,
		Token:      cfg.FanAPIToken,
		Timeout:    cfg.FanAPITimeout,
		MaxRetries: cfg.FanAPIMaxRetries,
		Logger:     logging.Default(),
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.FanAPICircuitEnabled,
			FailureThreshold: cfg.FanAPICircuitFailureCount,
			OpenTimeout:      cfg.FanAPICircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.FanAPICircuitHalfOpenMaxReq,
		},
	})
}
