// Command migrate applies or rolls back the duel database schema.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/config"
	"github.com/cory-johannsen/duel/internal/observability"
	"github.com/cory-johannsen/duel/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "", "configuration file (empty = defaults and DUEL_ environment)")
	envFile := flag.String("env-file", ".env", "dotenv file loaded before the configuration")
	down := flag.Bool("down", false, "roll back instead of applying")
	steps := flag.Int("steps", 0, "number of migrations to move (0 = all)")
	flag.Parse()

	if err := run(*configPath, *envFile, *down, *steps); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}

func run(configPath, envFile string, down bool, steps int) error {
	start := time.Now()
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	v, err := config.New(configPath)
	if err != nil {
		return err
	}
	var logCfg config.LoggingConfig
	if err := v.UnmarshalKey("logging", &logCfg); err != nil {
		return fmt.Errorf("parsing logging config: %w", err)
	}
	logger, err := observability.NewLogger(logCfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var db config.DatabaseConfig
	if err := v.UnmarshalKey("database", &db); err != nil {
		return fmt.Errorf("parsing database config: %w", err)
	}
	logger = logger.With(zap.String("host", db.Host), zap.String("database", db.Name))

	if down && steps == 0 {
		if err := postgres.Down(db.DSN()); err != nil {
			return err
		}
		logger.Info("schema rolled back", zap.Duration("elapsed", time.Since(start)))
		return nil
	}
	if down {
		steps = -steps
	}
	version, changed, err := postgres.Migrate(db.DSN(), steps)
	if err != nil {
		return err
	}
	logger.Info("schema migrated",
		zap.Uint("version", version),
		zap.Bool("changed", changed),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
