// Command gatingd serves the feature-gating API: identity resolution, limit
// checks and usage commits over HTTP, backed by a pluggable usage store.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gianmichelesiano/brokerai-sub001/modules/gating"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/config"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/httpserver"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/identity"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/logger"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/mongo"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/pg"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/plan"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/quota"
	pkgredis "github.com/gianmichelesiano/brokerai-sub001/pkg/redis"
	"github.com/gianmichelesiano/brokerai-sub001/pkg/usage"
)

type appConfig struct {
	Env         string `env:"APP_ENV" envDefault:"development"`
	CatalogPath string `env:"PLAN_CATALOG_PATH"`

	// StoreDriver selects the usage backend: memory, redis, postgres or mongo.
	StoreDriver string `env:"USAGE_STORE_DRIVER" envDefault:"memory"`

	HTTP     httpserver.Config
	Postgres pg.Config
	Redis    pkgredis.Config
	Mongo    mongo.Config
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("gatingd exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	logOpt := logger.WithDevelopment("gatingd")
	if cfg.Env == "production" {
		logOpt = logger.WithProduction("gatingd")
	}
	log := logger.New(logOpt)
	logger.SetAsDefault(log)

	registry, err := buildRegistry(ctx, cfg)
	if err != nil {
		return err
	}

	store, healthcheck, cleanup, err := buildStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	resolver := identity.NewResolver(identity.ContextProvider{}, identity.WithLogger(log))
	tiers := quota.NewMemoryTierStore()
	enforcer := quota.NewEnforcer(registry, store, tiers.Resolver(), quota.WithEnforcerLogger(log))
	gate := quota.NewGate(quota.WithGateLogger(log))
	svc := gating.NewService(resolver, enforcer, gate, gating.WithServiceLogger(log))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(gating.IdentityFromHeaders)
	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
	r.Get("/readyz", httpserver.HealthCheckHandler(ctx, log, healthcheck))
	r.Mount("/v1", gating.Router(svc))

	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
	return srv.Run(ctx, r)
}

func buildRegistry(ctx context.Context, cfg appConfig) (*plan.Registry, error) {
	src := plan.NewInMemSource(plan.DefaultCatalog())
	if cfg.CatalogPath != "" {
		src = plan.NewFileSource(cfg.CatalogPath)
	}
	return plan.NewRegistry(ctx, src)
}

// buildStore wires the configured usage backend and returns its readiness
// check and a connection cleanup.
func buildStore(ctx context.Context, cfg appConfig, log *slog.Logger) (usage.Store, func(context.Context) error, func(), error) {
	noop := func() {}
	alwaysReady := func(context.Context) error { return nil }

	switch cfg.StoreDriver {
	case "memory":
		return usage.NewMemoryStore(), alwaysReady, noop, nil

	case "redis":
		client, err := pkgredis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, nil, nil, err
		}
		cleanup := func() { _ = client.Close() }
		return usage.NewRedisStore(client), pkgredis.Healthcheck(client), cleanup, nil

	case "postgres":
		pool, err := pg.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := pg.Migrate(ctx, pool, cfg.Postgres, log); err != nil {
			pool.Close()
			return nil, nil, nil, err
		}
		return usage.NewPostgresStore(pool), pg.Healthcheck(pool), pool.Close, nil

	case "mongo":
		db, err := mongo.ConnectDatabase(ctx, cfg.Mongo, "gating")
		if err != nil {
			return nil, nil, nil, err
		}
		store := usage.NewMongoStore(db.Collection("usage_records"))
		idxCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := store.EnsureIndexes(idxCtx); err != nil {
			return nil, nil, nil, err
		}
		cleanup := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = db.Client().Disconnect(disconnectCtx)
		}
		return store, mongo.Healthcheck(db.Client()), cleanup, nil
	}

	return nil, nil, nil, fmt.Errorf("unknown usage store driver %q", cfg.StoreDriver)
}
