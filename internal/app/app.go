package app

import (
	"context"
	"fmt"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/JuanCGomezS/polla-club/internal/config"
	"github.com/JuanCGomezS/polla-club/internal/domain/notification"
	"github.com/JuanCGomezS/polla-club/internal/infrastructure/account"
	ds "github.com/JuanCGomezS/polla-club/internal/infrastructure/docstore"
	dsmemory "github.com/JuanCGomezS/polla-club/internal/infrastructure/docstore/memory"
	dspostgres "github.com/JuanCGomezS/polla-club/internal/infrastructure/docstore/postgres"
	"github.com/JuanCGomezS/polla-club/internal/infrastructure/push"
	repo "github.com/JuanCGomezS/polla-club/internal/infrastructure/repository/docstore"
	"github.com/JuanCGomezS/polla-club/internal/interfaces/httpapi"
	"github.com/JuanCGomezS/polla-club/internal/platform/cache"
	idgen "github.com/JuanCGomezS/polla-club/internal/platform/id"
	"github.com/JuanCGomezS/polla-club/internal/platform/logging"
	"github.com/JuanCGomezS/polla-club/internal/platform/resilience"
	"github.com/JuanCGomezS/polla-club/internal/usecase"
)

// App bundles the HTTP server with the resources it owns.
type App struct {
	Server   *http.Server
	closeFns []func()
}

// Close releases backing resources after the HTTP server has shut down.
func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	application := &App{}

	store, err := buildDocstore(cfg, logger, application)
	if err != nil {
		return nil, err
	}

	if cfg.SeedDemoData {
		if err := repo.BootstrapSeed(ctx, store); err != nil {
			application.Close()
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	competitionRepo := repo.NewCompetitionRepository(store)
	matchRepo := repo.NewMatchRepository(store)
	groupRepo := repo.NewGroupRepository(store)
	predictionRepo := repo.NewPredictionRepository(store)
	userRepo := repo.NewUserRepository(store)

	matchSvc := usecase.NewMatchService(competitionRepo, matchRepo)
	groupSvc := usecase.NewGroupService(competitionRepo, groupRepo, userRepo, idgen.NewRandomGenerator())
	predictionSvc := usecase.NewPredictionService(groupRepo, matchRepo, predictionRepo)
	leaderboardSvc := usecase.NewLeaderboardService(
		groupRepo,
		matchRepo,
		predictionRepo,
		userRepo,
		cache.NewStore(cfg.CacheTTL),
		logger,
	)
	liveFeedSvc := usecase.NewLiveFeedService(groupRepo, matchRepo, predictionRepo, leaderboardSvc, logger)
	notificationSvc := usecase.NewNotificationService(
		competitionRepo,
		matchRepo,
		groupRepo,
		userRepo,
		buildPushSender(cfg, logger),
		logger,
		cfg.NotifyLeadWindow,
	)

	accountClient := account.NewClient(
		&http.Client{Timeout: cfg.AccountTimeout},
		cfg.AccountBaseURL,
		cfg.AccountIntrospectPath,
		logger,
	)

	handler := httpapi.NewHandler(
		matchSvc,
		groupSvc,
		predictionSvc,
		leaderboardSvc,
		liveFeedSvc,
		notificationSvc,
		logger,
	)
	router := httpapi.NewRouter(handler, accountClient, logger, httpapi.RouterConfig{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		InternalJobToken: cfg.InternalJobToken,
	})

	if cfg.HTTPAddr == "" {
		application.Close()
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	application.Server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return application, nil
}

func buildDocstore(cfg config.Config, logger *logging.Logger, application *App) (ds.Store, error) {
	switch cfg.DocstoreDriver {
	case config.DocstoreDriverPostgres:
		db, err := otelsqlx.Connect("postgres", cfg.DBURL,
			otelsql.WithAttributes(semconv.DBSystemPostgreSQL))
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := dspostgres.NewStore(db, cfg.DBURL, logger)
		application.closeFns = append(application.closeFns,
			store.Close,
			func() { _ = db.Close() },
		)
		logger.Info("docstore ready", "driver", cfg.DocstoreDriver)
		return store, nil
	case config.DocstoreDriverMemory:
		logger.Info("docstore ready", "driver", cfg.DocstoreDriver)
		return dsmemory.NewStore(), nil
	default:
		return nil, fmt.Errorf("unsupported docstore driver %q", cfg.DocstoreDriver)
	}
}

func buildPushSender(cfg config.Config, logger *logging.Logger) notification.Sender {
	if !cfg.PushEnabled {
		return push.NewNopSender(logger)
	}
	return push.NewClient(push.ClientConfig{
		BaseURL: cfg.PushBaseURL,
		APIKey:  cfg.PushAPIKey,
		Timeout: cfg.PushTimeout,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: cfg.PushCircuitFailureCount,
			OpenTimeout:      cfg.PushCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.PushCircuitHalfOpenMaxReq,
		},
	}, logger)
}
