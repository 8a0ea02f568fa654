package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/lazyload/internal/api"
	"github.com/charlesng35/lazyload/internal/app"
	"github.com/charlesng35/lazyload/internal/cache"
	"github.com/charlesng35/lazyload/internal/database"
	"github.com/charlesng35/lazyload/internal/monitoring"
	"github.com/charlesng35/lazyload/internal/monitoring/checks"
	"github.com/charlesng35/lazyload/internal/services"
	"github.com/charlesng35/lazyload/pkg/logger"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	Cache      cache.Store
	Store      *services.GormUserStore
	Loader     *services.UserLoader
	Monitoring *monitoring.Module
	Router     *gin.Engine
}

// bootstrapRuntime opens the database, seeds users, connects the cache and builds the router.
// A cache that cannot be reached fails startup.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			if shutdownErr := stack.Shutdown(); shutdownErr != nil {
				log.Warn("cleanup after failed bootstrap", zap.Error(shutdownErr))
			}
		}
	}()

	// enable gin debug mod
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	stack.Store, err = services.NewGormUserStore(stack.DB)
	if err != nil {
		return nil, err
	}

	if err := seedUsers(ctx, stack.Store, cfg.Seed.Users, log); err != nil {
		return nil, err
	}

	stack.Cache, err = openCache(cfg, stack.DB, log)
	if err != nil {
		return nil, err
	}

	stack.Monitoring, err = monitoring.NewModule(monitoring.Options{})
	if err != nil {
		return nil, fmt.Errorf("initialise monitoring: %w", err)
	}
	monitoring.SetModule(stack.Monitoring)
	stack.Monitoring.Health().RegisterReadiness(checks.Database(stack.DB, 0))
	stack.Monitoring.Health().RegisterReadiness(checks.Cache(stack.Cache, cfg.Cache.Driver, 0))

	stack.Loader, err = services.NewUserLoader(stack.Store, stack.Cache,
		services.WithKeyPrefix(cfg.Loader.KeyPrefix),
		services.WithStrictPopulate(cfg.Loader.StrictPopulate),
	)
	if err != nil {
		return nil, fmt.Errorf("initialise user loader: %w", err)
	}

	stack.Router, err = api.NewRouter(stack.Loader, stack.Monitoring, cfg)
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

// Shutdown releases the cache connection and the SQL pool.
func (s *runtimeStack) Shutdown() error {
	if s == nil {
		return nil
	}

	var err error
	if rc, ok := s.Cache.(*cache.RedisClient); ok && rc != nil {
		err = multierr.Append(err, rc.Close())
	}
	if s.DB != nil {
		err = multierr.Append(err, database.Close(s.DB))
	}
	s.Cache = nil
	s.DB = nil
	return err
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseOpenConfig()
	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}
	if cfg.Cache.Driver == cache.DriverDatabase {
		if err := database.AutoMigrateCache(db); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("auto-migrate cache table: %w", err)
		}
	}

	log := logger.WithModule("database")
	log.Info("database connected", zap.String("driver", dbCfg.Driver))

	return db, nil
}

func openCache(cfg *app.Config, db *gorm.DB, log *zap.Logger) (cache.Store, error) {
	switch cfg.Cache.Driver {
	case cache.DriverRedis:
		client, err := cache.NewRedisClient(cfg.Cache.RedisClientConfig())
		if err != nil {
			return nil, fmt.Errorf("connect cache: %w", err)
		}
		log.Info("redis connected", zap.String("addr", client.Addr()))
		return client, nil
	case cache.DriverDatabase:
		store := cache.NewDatabaseStore(db)
		if store == nil {
			return nil, errors.New("connect cache: database handle is required")
		}
		log.Info("using database cache store")
		return store, nil
	case cache.DriverMemory:
		log.Warn("using in-process memory cache; entries are not shared between instances")
		return cache.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("connect cache: unsupported driver %q", cfg.Cache.Driver)
	}
}

// seedUsers inserts the configured rows, leaving rows that already exist untouched.
func seedUsers(ctx context.Context, store services.UserStore, seeds []app.SeedUser, log *zap.Logger) error {
	for _, seed := range seeds {
		if _, err := store.Insert(ctx, seed.ID, seed.Name); err != nil {
			if errors.Is(err, services.ErrUserExists) {
				log.Debug("seed user already present", zap.Int64("user_id", seed.ID))
				continue
			}
			return fmt.Errorf("seed user %d: %w", seed.ID, err)
		}
		log.Info("seeded user", zap.Int64("user_id", seed.ID))
	}
	return nil
}
