package container

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"partshop/storefront/internal/cache"
	"partshop/storefront/internal/cart"
	"partshop/storefront/internal/catalog"
	"partshop/storefront/internal/config"
	"partshop/storefront/internal/importer"
	"partshop/storefront/internal/promo"
	"partshop/storefront/internal/repository"
	"partshop/storefront/internal/server"
	"partshop/storefront/internal/session"
	"partshop/storefront/internal/state"
	"partshop/storefront/internal/suggest"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// Container holds all initialized components
type Container struct {
	Config      *config.Config
	Catalog     catalog.Store
	State       state.KeyValueStore
	SearchCache *cache.SearchCache

	CatalogService *catalog.Service
	Composer       *suggest.Composer
	Cart           *cart.Service
	Server         *server.Server

	db    *pgxpool.Pool
	redis *redis.Client
}

// New creates a new container with all dependencies initialized. Postgres and
// redis are optional; without them the catalog and user state live in memory.
func New(ctx context.Context, cfg *config.Config) (*Container, error) {
	c := &Container{
		Config: cfg,
	}

	if err := c.initCatalog(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initState(ctx); err != nil {
		c.Close()
		return nil, err
	}

	var pageCache catalog.PageCache
	if c.SearchCache != nil {
		pageCache = c.SearchCache
	}
	c.CatalogService = catalog.NewService(c.Catalog, pageCache, cfg.Catalog.DefaultLimit, cfg.Catalog.MaxLimit)

	c.Composer = suggest.NewComposer(c.Catalog, suggest.Options{
		MinQueryLength: cfg.Search.MinQueryLength,
		MaxCategories:  cfg.Search.MaxCategories,
		MaxProducts:    cfg.Search.MaxProducts,
	})

	pricing, err := cart.NewPricing(cfg.Cart.TaxRate, cfg.Cart.DeliveryFee, cfg.Cart.FreeDeliveryThreshold, cfg.Cart.FastTrackFee)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to configure cart pricing: %w", err)
	}

	var cartStore cart.Store
	if c.redis != nil {
		cartStore = cart.NewRedisStore(c.redis)
	} else {
		cartStore = cart.NewMemoryStore()
	}
	c.Cart = cart.NewService(cartStore, c.Catalog, promo.NewEvaluator(promo.DefaultRegistry, cfg.Cart.CurrencySymbol), pricing, cfg.Cart.MaxLineQuantity)

	if cfg.Auth.JWTSecret == "" {
		log.Warnf("⚠️ auth.jwt_secret is empty, every authenticated route will answer 401")
	}

	c.Server = server.New(cfg, server.Dependencies{
		Catalog:      c.CatalogService,
		Composer:     c.Composer,
		Cart:         c.Cart,
		State:        c.State,
		HealthChecks: c.healthChecks(),
	})

	return c, nil
}

func (c *Container) initCatalog(ctx context.Context) error {
	cfg := c.Config

	if cfg.Database.Host == "" {
		memory := catalog.NewMemoryStore(nil, nil)
		if cfg.Catalog.SeedFile != "" {
			parsed, err := importer.NewParser("").ParseFile(cfg.Catalog.SeedFile)
			if err != nil {
				return fmt.Errorf("failed to load seed catalog: %w", err)
			}
			memory.Replace(parsed.Categories, parsed.Products)
			log.Infof("📦 Loaded %d products in %d categories from %s", len(parsed.Products), len(parsed.Categories), cfg.Catalog.SeedFile)
		}
		log.Warnf("⚠️ No database configured, serving the catalog from memory")
		c.Catalog = memory
		return nil
	}

	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to create database pool: %w", err)
	}
	c.db = db

	if err := db.Ping(ctx); err != nil {
		return fmt.Errorf("failed to connect to Postgres: %w", err)
	}
	log.Info("✅ Connected to Postgres successfully")

	repo := repository.NewCatalogRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	c.Catalog = repo
	return nil
}

func (c *Container) initState(ctx context.Context) error {
	cfg := c.Config

	if cfg.Redis.Host == "" {
		log.Warnf("⚠️ No redis configured, carts and recent searches are kept in memory")
		c.State = state.NewMemoryStore()
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	c.redis = rdb

	// Test connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info("✅ Connected to Redis successfully")

	c.State = state.NewRedisStore(rdb)
	if ttl := cfg.Catalog.CacheTTLDuration(); ttl > 0 {
		c.SearchCache = cache.NewSearchCache(rdb, ttl)
	}
	return nil
}

// OpenClientState returns the durable store a client process keeps its
// recent searches in: redis when one is configured, otherwise a local
// database file at client.state_file. The returned func releases it.
func OpenClientState(ctx context.Context, cfg *config.Config) (state.KeyValueStore, func() error, error) {
	if cfg.Redis.Host != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return state.NewRedisStore(rdb), rdb.Close, nil
	}

	store, err := state.NewSQLiteStore(cfg.Client.StateFile)
	if err != nil {
		return nil, nil, err
	}
	log.Infof("💾 Keeping client state in %s", cfg.Client.StateFile)
	return store, store.Close, nil
}

func (c *Container) healthChecks() map[string]server.HealthCheck {
	checks := map[string]server.HealthCheck{}
	if c.db != nil {
		checks["postgres"] = func(ctx context.Context) error { return c.db.Ping(ctx) }
	}
	if c.redis != nil {
		checks["redis"] = func(ctx context.Context) error { return c.redis.Ping(ctx).Err() }
	}
	return checks
}

// NewSearchSession starts an in-process search session over this container's
// catalog. The caller owns the returned controller and must Close it.
func (c *Container) NewSearchSession(recent session.RecentLog) *session.Controller {
	return session.New(
		session.NewLocalBackend(c.CatalogService, c.Composer),
		recent,
		session.Options{
			Debounce:       c.Config.Search.Debounce(),
			MinQueryLength: c.Config.Search.MinQueryLength,
			PageSize:       c.Config.Catalog.DefaultLimit,
		},
	)
}

// Run serves HTTP until ctx is cancelled.
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.Server.Run(ctx)
	})

	if c.SearchCache != nil && c.db != nil {
		// Pages cached by a previous deployment may predate the current catalog.
		g.Go(func() error {
			if err := c.SearchCache.Invalidate(ctx); err != nil {
				log.Warnf("⚠️ Failed to invalidate search cache on startup: %v", err)
			}
			return nil
		})
	}

	return g.Wait()
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.db != nil {
		c.db.Close()
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			log.Warnf("⚠️ Failed to close redis client: %v", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
