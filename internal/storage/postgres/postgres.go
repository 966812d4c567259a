// Package postgres keeps combatants and their exchange history in
// PostgreSQL through pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/config"
	"github.com/cory-johannsen/duel/migrations"
)

// connectAttempts bounds how often Open pings a database that is still
// starting; the wait doubles from connectBackoff after each failure.
const (
	connectAttempts = 5
	connectBackoff  = 200 * time.Millisecond
)

// Open connects a pool for cfg and waits until the server answers a ping.
//
// Precondition: cfg passes config.Config.Validate for the postgres driver.
// Postcondition: Returns a live pool the caller must Close, or an error
// after connectAttempts failed pings or ctx cancellation.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}

	wait := connectBackoff
	for attempt := 1; ; attempt++ {
		err = pool.Ping(ctx)
		if err == nil {
			logger.Debug("database connected",
				zap.String("host", cfg.Host), zap.String("database", cfg.Name), zap.Int("attempt", attempt))
			return pool, nil
		}
		if attempt == connectAttempts {
			break
		}
		logger.Warn("database not ready", zap.Int("attempt", attempt), zap.Duration("retry_in", wait), zap.Error(err))
		select {
		case <-ctx.Done():
			pool.Close()
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	pool.Close()
	return nil, fmt.Errorf("postgres: %s unreachable after %d attempts: %w", cfg.Host, connectAttempts, err)
}

// Migrate moves the schema by steps migrations: 0 applies every pending
// migration, a negative count rolls back. It returns the resulting version.
//
// Postcondition: Reports changed == false when the schema was already there.
func Migrate(dsn string, steps int) (version uint, changed bool, err error) {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return 0, false, fmt.Errorf("postgres: opening migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return 0, false, fmt.Errorf("postgres: creating migrator: %w", err)
	}
	defer m.Close()

	if steps == 0 {
		err = m.Up()
	} else {
		err = m.Steps(steps)
	}
	changed = !errors.Is(err, migrate.ErrNoChange)
	if err != nil && changed {
		return 0, false, fmt.Errorf("postgres: migrating: %w", err)
	}
	version, _, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return 0, changed, fmt.Errorf("postgres: reading version: %w", verr)
	}
	return version, changed, nil
}

// Down rolls every migration back.
func Down(dsn string) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("postgres: opening migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return fmt.Errorf("postgres: creating migrator: %w", err)
	}
	defer m.Close()
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("postgres: rolling back: %w", err)
	}
	return nil
}
