package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yourorg/testtrack/internal/infrastructure/logger"
	"github.com/yourorg/testtrack/pkg/config"
	"github.com/yourorg/testtrack/pkg/database"
)

// Runs the additive schema migrations and exits. The server also runs them
// on startup; this binary exists for deploy pipelines that migrate first.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)

	pool, err := database.NewConnectionPool(context.Background(), cfg, log)
	if err != nil {
		log.Error("failed to connect to PostgreSQL", "error", err.Error())
		os.Exit(1)
	}
	defer pool.Close()

	database.Migrate(pool.GetDB(), log)
	log.Info("migrations complete")
}
