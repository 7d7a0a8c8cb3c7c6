// Command importer replaces the product catalog with the contents of a
// CSV file: importer <path-to-csv>.
package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/spec-kit/support-bot/internal/config"
	"github.com/spec-kit/support-bot/internal/importer"
	"github.com/spec-kit/support-bot/internal/observability"
	"github.com/spec-kit/support-bot/internal/persistence"
	"github.com/spec-kit/support-bot/internal/repository"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatalf("usage: %s <path-to-csv>", os.Args[0])
	}
	path := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	products := repository.NewProductRepository(pg.PoolHandle())

	result, err := importer.ImportCSV(ctx, path, products, logger)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}

	logger.Info("import complete",
		zap.Int("imported", result.Imported),
		zap.Int("generated_skus", result.GeneratedSKUs),
		zap.Int("skipped", result.Skipped))
}
