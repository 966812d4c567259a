package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/duel/internal/config"
	"github.com/cory-johannsen/duel/internal/storage/postgres"
	"github.com/cory-johannsen/duel/internal/testutil"
)

func TestMigrate_UpDownUp(t *testing.T) {
	cfg := testutil.StartPostgres(t)

	version, changed, err := postgres.Migrate(cfg.DSN(), 0)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.EqualValues(t, 2, version)

	_, changed, err = postgres.Migrate(cfg.DSN(), 0)
	require.NoError(t, err)
	assert.False(t, changed, "second run has nothing to apply")

	version, _, err = postgres.Migrate(cfg.DSN(), -1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, version)

	require.NoError(t, postgres.Down(cfg.DSN()))
	version, changed, err = postgres.Migrate(cfg.DSN(), 0)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.EqualValues(t, 2, version)
}

func TestOpen_Connects(t *testing.T) {
	cfg := testutil.StartPostgres(t)
	pool, err := postgres.Open(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer pool.Close()
	assert.NoError(t, pool.Ping(context.Background()))
}

func TestOpen_GivesUpOnUnreachableServer(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cfg := config.DatabaseConfig{
		Host: "127.0.0.1", Port: 1, User: "duel", Name: "duel", SSLMode: "disable",
		MaxConns: 1, MaxConnLifetime: time.Minute,
	}
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := postgres.Open(ctx, cfg, zap.New(core))
	require.Error(t, err)
	assert.GreaterOrEqual(t, logs.FilterMessage("database not ready").Len(), 1)
}
