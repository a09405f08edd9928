// Command seed writes the well-known category set into the platform table.
// Seeding is idempotent: category IDs derive from the name, so reruns
// overwrite in place.
package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/upskillpro/backend/infrastructure/config"
	"github.com/upskillpro/backend/infrastructure/di"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	container, err := di.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize container", zap.Error(err))
	}

	if err := container.Categories.Seed(ctx); err != nil {
		logger.Fatal("Failed to seed categories", zap.Error(err))
	}

	logger.Info("Seeded categories", zap.String("table", cfg.DynamoDBTable))
}
