package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	_ "github.com/lib/pq"

	"github.com/gridironpool/pickem/external/jobqueue"
	"github.com/gridironpool/pickem/external/supastore"
	"github.com/gridironpool/pickem/internal/config"
	"github.com/gridironpool/pickem/internal/domain/game"
	"github.com/gridironpool/pickem/internal/domain/pick"
	"github.com/gridironpool/pickem/internal/domain/team"
	"github.com/gridironpool/pickem/internal/domain/user"
	"github.com/gridironpool/pickem/internal/domain/week"
	"github.com/gridironpool/pickem/internal/infrastructure/repository/memory"
	"github.com/gridironpool/pickem/internal/infrastructure/repository/postgres"
	"github.com/gridironpool/pickem/internal/interfaces/httpapi"
	"github.com/gridironpool/pickem/internal/platform/cache"
	idgen "github.com/gridironpool/pickem/internal/platform/id"
	"github.com/gridironpool/pickem/internal/platform/logging"
	"github.com/gridironpool/pickem/internal/platform/resilience"
	"github.com/gridironpool/pickem/internal/usecase"
)

type repositories struct {
	users user.Repository
	teams team.Repository
	weeks week.Repository
	games game.Repository
	picks pick.Repository
}

// NewHTTPServer wires repositories, services, and the router for the
// configured data backend. The returned cleanup stops the background job
// orchestrator and closes the database handle when one was opened.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(context.Context) error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, closeDB, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cacheTTL := cfg.CacheTTL
	if !cfg.CacheEnabled {
		// A TTL of zero never expires; one nanosecond expires entries
		// before the next lookup can see them.
		cacheTTL = time.Nanosecond
	}
	store := cache.NewStore(cacheTTL)

	leaderboardSvc := usecase.NewLeaderboardService(repos.users, repos.games, repos.picks, cfg.SeasonWorkers)
	pickSvc := usecase.NewPickService(repos.users, repos.games, repos.picks)
	scheduleSvc := usecase.NewScheduleService(repos.weeks, repos.games, repos.teams, store)
	resultSvc := usecase.NewResultService(repos.games)
	recomputeSvc := usecase.NewRecomputeService(repos.games, leaderboardSvc, idgen.NewRandomGenerator(), logger, cfg.SeasonWorkers)

	var queue usecase.JobQueue
	if cfg.QStashEnabled {
		queue = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMax,
			},
		}, logger)
	} else {
		queue = usecase.NewNoopJobQueue()
	}

	orchestrator := usecase.NewJobOrchestratorService(queue, usecase.JobOrchestratorConfig{
		RecomputeInterval: cfg.JobRecomputeInterval,
	}, logger)

	orchestratorCtx, stopOrchestrator := context.WithCancel(context.Background())
	if cfg.QStashEnabled {
		go orchestrator.Run(orchestratorCtx)
	}

	handler := httpapi.NewHandler(
		leaderboardSvc,
		pickSvc,
		scheduleSvc,
		resultSvc,
		recomputeSvc,
		orchestrator,
		logger,
	)
	router := httpapi.NewRouter(handler, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		stopOrchestrator()
		if closeDB != nil {
			_ = closeDB()
		}
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	cleanup := func(context.Context) error {
		stopOrchestrator()
		if closeDB != nil {
			return closeDB()
		}
		return nil
	}

	return server, cleanup, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, func() error, error) {
	switch cfg.DataBackend {
	case config.BackendPostgres:
		db, err := connectPostgres(cfg)
		if err != nil {
			return repositories{}, nil, err
		}
		logger.Info("data backend ready", "backend", cfg.DataBackend, "db", dbNameFromURL(cfg.DBURL))
		return repositories{
			users: postgres.NewUserRepository(db),
			teams: postgres.NewTeamRepository(db),
			weeks: postgres.NewWeekRepository(db),
			games: postgres.NewGameRepository(db),
			picks: postgres.NewPickRepository(db),
		}, db.Close, nil

	case config.BackendSupabase:
		client := supastore.NewClient(supastore.ClientConfig{
			BaseURL:    cfg.SupabaseURL,
			APIKey:     cfg.SupabaseServiceKey,
			Timeout:    cfg.SupabaseTimeout,
			MaxRetries: cfg.SupabaseMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.SupabaseCircuitEnabled,
				FailureThreshold: cfg.SupabaseCircuitFailureCount,
				OpenTimeout:      cfg.SupabaseCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.SupabaseCircuitHalfOpenMax,
			},
		})
		logger.Info("data backend ready", "backend", cfg.DataBackend)
		return repositories{
			users: client.Users(),
			teams: client.Teams(),
			weeks: client.Weeks(),
			games: client.Games(),
			picks: client.Picks(),
		}, nil, nil

	case config.BackendMemory:
		gameRepo := memory.NewGameRepository(memory.SeedGames())
		logger.Info("data backend ready", "backend", cfg.DataBackend)
		return repositories{
			users: memory.NewUserRepository(memory.SeedUsers()),
			teams: memory.NewTeamRepository(memory.SeedTeams()),
			weeks: memory.NewWeekRepository(memory.SeedWeeks()),
			games: gameRepo,
			picks: memory.NewPickRepository(gameRepo, memory.SeedPicks()),
		}, nil, nil

	default:
		return repositories{}, nil, fmt.Errorf("unknown data backend %q", cfg.DataBackend)
	}
}

func connectPostgres(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Connect("postgres", dsn,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}
