package app

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"

	"github.com/oneeighty-app/oneeighty/external/resultsfeed"
	"github.com/oneeighty-app/oneeighty/internal/config"
	"github.com/oneeighty-app/oneeighty/internal/domain/game"
	"github.com/oneeighty-app/oneeighty/internal/domain/tournament"
	"github.com/oneeighty-app/oneeighty/internal/infrastructure/repository/memory"
	"github.com/oneeighty-app/oneeighty/internal/infrastructure/repository/postgres"
	"github.com/oneeighty-app/oneeighty/internal/interfaces/httpapi"
	"github.com/oneeighty-app/oneeighty/internal/platform/cache"
	idgen "github.com/oneeighty-app/oneeighty/internal/platform/id"
	"github.com/oneeighty-app/oneeighty/internal/platform/logging"
	"github.com/oneeighty-app/oneeighty/internal/platform/resilience"
	"github.com/oneeighty-app/oneeighty/internal/usecase"
)

type repositories struct {
	tournaments tournament.Repository
	live        game.LiveStateRepository
	archive     game.ArchiveRepository
	summaries   game.SummaryRepository
}

// NewHTTPServer wires storage, services and the HTTP router into a ready to
// run server. The returned cleanup closes the database handle when the
// postgres driver is active.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, cleanup, err := newRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	var store *cache.Store
	if cfg.CacheEnabled {
		store = cache.NewStore(cfg.CacheTTL)
	}
	ids := idgen.NewRandomGenerator()

	tournamentSvc := usecase.NewTournamentService(repos.tournaments, repos.archive, ids, store, logger)
	matchSvc := usecase.NewMatchService(repos.live, repos.archive, repos.summaries, tournamentSvc, ids, logger)
	recomputeSvc := usecase.NewRecomputeService(tournamentSvc, repos.tournaments, repos.archive, repos.summaries, ids, logger)
	recomputeSvc.SetDefaultMaxWorkers(cfg.RecomputeMaxWorkers)
	checkoutSvc := usecase.NewCheckoutService()

	if cfg.ResultsFeedEnabled {
		publisher := resultsfeed.NewPublisher(resultsfeed.PublisherConfig{
			WebhookURL: cfg.ResultsFeedURL,
			Token:      cfg.ResultsFeedToken,
			Retries:    cfg.ResultsFeedRetries,
			Timeout:    cfg.ResultsFeedTimeout,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.ResultsFeedCircuitEnabled,
				FailureThreshold: cfg.ResultsFeedCircuitFailures,
				OpenTimeout:      cfg.ResultsFeedCircuitOpenFor,
				HalfOpenMaxReq:   cfg.ResultsFeedCircuitHalfOpen,
			},
		}, logger)
		tournamentSvc.SetResultPublisher(publisher)
	}

	handler := httpapi.NewHandler(checkoutSvc, matchSvc, tournamentSvc, recomputeSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		if cleanup != nil {
			_ = cleanup()
		}
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func newRepositories(cfg config.Config, logger *logging.Logger) (repositories, func() error, error) {
	switch cfg.StorageDriver {
	case config.StoragePostgres:
		db, err := openDB(cfg)
		if err != nil {
			return repositories{}, nil, err
		}
		logger.Info("storage driver ready", "driver", config.StoragePostgres, "db", dbNameFromURL(cfg.DBURL))
		return repositories{
			tournaments: postgres.NewTournamentRepository(db),
			live:        postgres.NewLiveStateRepository(db),
			archive:     postgres.NewArchiveRepository(db),
			summaries:   postgres.NewSummaryRepository(db),
		}, db.Close, nil
	default:
		logger.Info("storage driver ready", "driver", config.StorageMemory)
		return repositories{
			tournaments: memory.NewTournamentRepository(),
			live:        memory.NewLiveStateRepository(),
			archive:     memory.NewArchiveRepository(),
			summaries:   memory.NewSummaryRepository(),
		}, nil, nil
	}
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithDBSystem("postgresql"),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}
