package main

import (
	"context"
	"flag"

	"partshop/storefront/internal/cache"
	"partshop/storefront/internal/config"
	"partshop/storefront/internal/importer"
	"partshop/storefront/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

func main() {
	file := flag.String("file", "", "HTML parts list to import (defaults to catalog.seed_file)")
	baseURL := flag.String("base-url", "", "base URL for relative image links")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	path := *file
	if path == "" {
		path = cfg.Catalog.SeedFile
	}
	if path == "" {
		log.Fatal("No catalog file given, pass -file or set catalog.seed_file")
	}
	if cfg.Database.Host == "" {
		log.Fatal("database.host is not set, nothing to seed")
	}

	ctx := context.Background()

	parsed, err := importer.NewParser(*baseURL).ParseFile(path)
	if err != nil {
		log.Fatalf("Failed to parse %s: %v", path, err)
	}
	log.Infof("📦 Parsed %d products in %d categories", len(parsed.Products), len(parsed.Categories))

	db, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer db.Close()

	repo := repository.NewCatalogRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to prepare schema: %v", err)
	}
	if err := repo.SaveCategories(ctx, parsed.Categories); err != nil {
		log.Fatalf("Failed to save categories: %v", err)
	}
	if err := repo.SaveProducts(ctx, parsed.Products); err != nil {
		log.Fatalf("Failed to save products: %v", err)
	}
	log.Info("✅ Catalog saved")

	if cfg.Redis.Host == "" {
		return
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	defer rdb.Close()

	if err := cache.NewSearchCache(rdb, cfg.Catalog.CacheTTLDuration()).Invalidate(ctx); err != nil {
		log.Warnf("⚠️ Failed to invalidate search cache: %v", err)
		return
	}
	log.Info("🧹 Search cache invalidated")
}
