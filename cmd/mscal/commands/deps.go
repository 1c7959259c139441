package commands

import (
	"context"
	"fmt"

	"github.com/magicstocks/calendar/internal/artifact"
	"github.com/magicstocks/calendar/internal/marketdata"
	"github.com/magicstocks/calendar/internal/pipeline"
	"github.com/magicstocks/calendar/internal/seasonal"
	"github.com/magicstocks/calendar/internal/universe"
	"github.com/magicstocks/calendar/pkg/cache"
	"github.com/magicstocks/calendar/pkg/config"
	"github.com/magicstocks/calendar/pkg/database"
	"github.com/magicstocks/calendar/pkg/httputil"
	"github.com/magicstocks/calendar/pkg/logger"
	"github.com/magicstocks/calendar/pkg/metrics"
	"github.com/magicstocks/calendar/pkg/redis"
)

// app holds the wired application graph shared by the CLI commands.
type app struct {
	cfg      *config.Config
	logger   *logger.Logger
	db       *database.DB // nil when no DATABASE_URL is configured
	store    *artifact.Store
	universe *universe.Provider
	runner   *pipeline.Runner
	metrics  *metrics.Recorder
}

// initApp builds the full dependency graph from configuration.
func initApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg)

	var rec *metrics.Recorder
	if cfg.MetricsEnabled {
		rec = metrics.New()
	}

	// Price cache: Redis when enabled, in-process TTL cache otherwise.
	var priceCache cache.Cache = cache.NewMemory()
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(cfg)
		if err != nil {
			log.WithError(err).Warn("Redis unavailable, falling back to in-memory cache")
		} else {
			priceCache = redis.NewCache(redisClient, "mscal")
		}
	}

	fetchClient := newFetchClient(cfg, log)
	feedClient := httputil.New(log)

	fetcher := marketdata.NewClient(cfg, fetchClient, priceCache, log)
	universeProvider := universe.NewProvider(cfg, feedClient, log)

	store := artifact.NewStore(cfg.Pipeline.DataDir, artifact.CalendarFileName)
	models := artifact.NewModelStore(cfg.Pipeline.DataDir)

	trainer := seasonal.NewTrainer(fetcher, models, rec, log, seasonal.TrainerConfig{
		Workers:    cfg.Pipeline.Workers,
		Estimators: cfg.Pipeline.Estimators,
		Seed:       cfg.Pipeline.Seed,
	})

	// The calendar-file registry is optional bookkeeping.
	var db *database.DB
	var registry pipeline.ArtifactRegistry
	if cfg.Database.Enabled() {
		db, err = database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}

		reg := artifact.NewRegistry(db.Pool)
		if err := reg.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ensure registry schema: %w", err)
		}
		registry = reg
	}

	runner := pipeline.NewRunner(
		universeProvider,
		trainer,
		store,
		registry,
		rec,
		log,
		cfg.Pipeline.Deadline,
		cfg.Pipeline.SymbolLimit,
	)

	return &app{
		cfg:      cfg,
		logger:   log,
		db:       db,
		store:    store,
		universe: universeProvider,
		runner:   runner,
		metrics:  rec,
	}, nil
}

// newFetchClient builds the market-data HTTP client: configured request
// timeout, no retry (per-symbol failures degrade to empty series), paced by
// the client-side rate limiter.
func newFetchClient(cfg *config.Config, log *logger.Logger) *httputil.Client {
	return httputil.NewWithTimeout(log, cfg.MarketData.RequestTimeout).
		DisableRetry().
		WithRateLimit(cfg.MarketData.RequestsPerSec)
}

// Close releases held resources.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
