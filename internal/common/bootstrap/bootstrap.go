// Package bootstrap assembles the market resolver from configuration. Both
// the worker manager and the market-query tool start through it.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"market-intel/internal/common/config"
	"market-intel/internal/common/database"
	apperrors "market-intel/internal/common/errors"
	"market-intel/internal/common/gemini"
	apphttp "market-intel/internal/common/http"
	"market-intel/internal/common/logger"
	"market-intel/internal/market"
)

const dbConnectTimeout = 5 * time.Second

// Engine is a ready resolver plus the connections it holds.
type Engine struct {
	Resolver *market.Resolver
	Provider *gemini.Client
	closers  []func() error
}

// Close releases every connection the engine opened.
func (e *Engine) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i]())
	}
	return errors.Join(errs...)
}

// NewEngine builds the trusted store, the optional cache, the Gemini
// provider and the resolver.
func NewEngine(ctx context.Context, cfg *config.Config, log logger.Logger) (*Engine, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	e := &Engine{}

	var db *sql.DB
	if cfg.Market.TrustedPostgres {
		pg, err := database.NewPostgres(ctx, cfg.Database.Postgres, dbConnectTimeout)
		if err != nil {
			return nil, apperrors.NewDatabaseConnectionFailedError(err)
		}
		// tables are read once; the pool is not needed afterwards
		defer pg.Close()
		db = pg.DB
	}

	store, err := LoadTrustedStore(ctx, cfg.Market, db)
	if err != nil {
		return nil, err
	}
	log.Info("trusted tables loaded", map[string]interface{}{
		"tables": store.Len(),
	})

	var cache market.EstimateCache
	if cfg.Market.Cache.Enabled {
		rc := database.NewRedis(cfg.Database.Redis)
		if err := rc.Ping(ctx, dbConnectTimeout); err != nil {
			// lookups fail open, so a cold Redis only costs cache hits
			log.Warn("estimate cache unreachable at startup", map[string]interface{}{
				"error": apperrors.NewCacheUnavailableError(err).Details,
			})
		} else {
			log.Info("estimate cache connected", rc.PoolStats())
		}
		cache = market.NewRedisCache(rc.Client, config.GetDuration(cfg.Market.Cache.TTL))
		e.closers = append(e.closers, rc.Close)
	}

	httpClient := apphttp.NewClient(0)
	e.closers = append(e.closers, func() error {
		httpClient.CloseIdle()
		return nil
	})

	provider, err := gemini.New(ctx, gemini.Config{
		APIKey:           cfg.APIs.GenAI.APIKey,
		Model:            cfg.APIs.GenAI.Model,
		BaseURL:          cfg.APIs.GenAI.BaseURL,
		SchemaWithSearch: cfg.APIs.GenAI.SchemaWithSearch,
		HTTPClient:       httpClient.Standard(),
	}, log)
	if err != nil {
		e.Close()
		return nil, err
	}
	e.Provider = provider

	resolver, err := market.NewResolver(market.Options{
		Provider:    provider,
		Trusted:     store,
		Cache:       cache,
		Logger:      log,
		Timeout:     config.GetDuration(cfg.APIs.GenAI.Timeout),
		LockedDelay: config.GetDuration(cfg.Market.LockedDelay),
	})
	if err != nil {
		e.Close()
		return nil, err
	}
	e.Resolver = resolver

	return e, nil
}

// LoadTrustedStore merges the built-in tables with the optional YAML file
// and the optional database tables, later sources replacing earlier keys.
func LoadTrustedStore(ctx context.Context, mc config.MarketConfig, db *sql.DB) (*market.TrustedStore, error) {
	tables := market.BuiltinTables()

	if mc.TrustedFile != "" {
		fromFile, err := market.LoadTrustedFile(mc.TrustedFile)
		if err != nil {
			return nil, apperrors.NewTrustedTableLoadFailedError(mc.TrustedFile, err)
		}
		tables = append(tables, fromFile...)
	}

	if db != nil {
		fromDB, err := market.LoadTrustedPostgres(ctx, db)
		if err != nil {
			return nil, apperrors.NewTrustedTableLoadFailedError("postgres", err)
		}
		tables = append(tables, fromDB...)
	}

	store, err := market.NewTrustedStore(tables...)
	if err != nil {
		return nil, apperrors.NewTrustedTableLoadFailedError("merge", fmt.Errorf("build trusted store: %w", err))
	}
	return store, nil
}
