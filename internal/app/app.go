// Package app assembles the store, the optional integrations and the services
// from a Config. The server and the operator CLI share it so both see the same
// wiring.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/Filipe-Ambrozio/stockwatch/internal/cache"
	"github.com/Filipe-Ambrozio/stockwatch/internal/config"
	"github.com/Filipe-Ambrozio/stockwatch/internal/csvstore"
	"github.com/Filipe-Ambrozio/stockwatch/internal/db"
	"github.com/Filipe-Ambrozio/stockwatch/internal/events"
	"github.com/Filipe-Ambrozio/stockwatch/internal/expiry"
	"github.com/Filipe-Ambrozio/stockwatch/internal/repo"
	"github.com/Filipe-Ambrozio/stockwatch/internal/search"
	"github.com/Filipe-Ambrozio/stockwatch/internal/service"
	"github.com/Filipe-Ambrozio/stockwatch/internal/store"
)

type App struct {
	Config config.Config
	Store  store.Store
	Events events.Publisher

	Auth     *service.AuthService
	Products *service.ProductService
	Users    *service.UserService
	Status   *service.StatusService
	Reports  *service.ReportService

	ping    func(ctx context.Context) error
	closers []func() error
}

// OpenStore opens the backend named by cfg.StoreBackend.
func OpenStore(ctx context.Context, cfg config.Config, log *slog.Logger) (store.Store, func(context.Context) error, func() error, error) {
	switch cfg.StoreBackend {
	case config.BackendCSV:
		s, err := csvstore.Open(cfg.CSVDir, log)
		if err != nil {
			return nil, nil, nil, err
		}
		ping := func(context.Context) error {
			_, err := os.Stat(s.Dir())
			return err
		}
		return s, ping, func() error { return nil }, nil

	case config.BackendDB:
		gdb, err := db.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		ping := func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
		return &repo.GormRepo{DB: gdb}, ping, func() error { return db.Close(gdb) }, nil
	}
	return nil, nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}

// New wires every service. Kafka, Elasticsearch and Redis are optional: an
// unset address leaves the integration out, an unreachable one is logged and
// skipped so the store alone keeps the app working.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	st, ping, closeStore, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a := &App{Config: cfg, Store: st, Events: events.Nop{}, ping: ping}
	a.closers = append(a.closers, closeStore)

	if len(cfg.KafkaBrokers) > 0 {
		prod, err := events.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			log.Warn("kafka_disabled", "reason", "cannot create producer", "error", err)
		} else {
			a.Events = prod
			a.closers = append(a.closers, prod.Close)
		}
	}

	clock := expiry.NewClock(cfg.Location)
	a.Auth = &service.AuthService{
		Users:         st,
		Sessions:      st,
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
	}
	a.Products = &service.ProductService{Products: st, Events: a.Events, Clock: clock}
	a.Users = &service.UserService{Users: st, Events: a.Events}
	a.Status = &service.StatusService{Status: st, Events: a.Events}
	a.Reports = &service.ReportService{Products: st, Clock: clock}

	if cfg.ESURL != "" {
		if ix, err := openIndex(ctx, cfg); err != nil {
			log.Warn("search_index_disabled", "reason", "elasticsearch unavailable", "error", err)
		} else {
			a.Products.Index = ix
		}
	}

	if cfg.RedisAddr != "" {
		rdb, err := cache.Connect(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			log.Warn("status_cache_disabled", "reason", "redis unavailable", "error", err)
		} else {
			a.Status.Cache = cache.NewStatusCache(rdb)
			a.closers = append(a.closers, rdb.Close)
		}
	}

	return a, nil
}

func openIndex(ctx context.Context, cfg config.Config) (*search.Index, error) {
	es, err := search.NewClient(search.ClientConfig{URL: cfg.ESURL, User: cfg.ESUser, Password: cfg.ESPassword})
	if err != nil {
		return nil, err
	}
	ix := &search.Index{ES: es, Name: cfg.ESIndex}
	if err := ix.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	return ix, nil
}

// Ready reports whether the store answers.
func (a *App) Ready(ctx context.Context) error {
	if a.ping == nil {
		return nil
	}
	return a.ping(ctx)
}

// Close releases integrations in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
