package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/config"
	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/combat"
	"github.com/cory-johannsen/duel/internal/game/condition"
	"github.com/cory-johannsen/duel/internal/game/dice"
	"github.com/cory-johannsen/duel/internal/game/rules"
	"github.com/cory-johannsen/duel/internal/game/situation"
	"github.com/cory-johannsen/duel/internal/observability"
	"github.com/cory-johannsen/duel/internal/scripting"
	"github.com/cory-johannsen/duel/internal/storage"
	"github.com/cory-johannsen/duel/internal/storage/postgres"
	"github.com/cory-johannsen/duel/internal/storage/yamlstore"
)

// app holds what every command builds from the configuration.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	closers []func()
}

// store is the persistence surface the commands use.
type store interface {
	combat.Store
	Add(ctx context.Context, cs ...*character.Combatant) error
	Get(ctx context.Context, id string) (*character.Combatant, error)
	History(ctx context.Context, id string, limit int) ([]storage.Record, error)
}

func newApp(flags *globalFlags) (*app, error) {
	if err := config.LoadDotEnv(flags.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	return &app{cfg: cfg, logger: logger}, nil
}

// Close releases everything opened through a, newest first.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}

func (a *app) rules() (*rules.Rules, error) {
	var (
		r   *rules.Rules
		err error
	)
	if a.cfg.Rules.Dir == "" {
		r = rules.Defaults()
	} else if r, err = rules.LoadDirectory(a.cfg.Rules.Dir); err != nil {
		return nil, err
	}
	if a.cfg.Rules.RerollLimit > 0 {
		r.RerollLimit = a.cfg.Rules.RerollLimit
	}
	return r, nil
}

func (a *app) conditions() (*condition.Registry, error) {
	if a.cfg.Rules.ConditionsDir == "" {
		return condition.Defaults(), nil
	}
	return condition.LoadDirectory(a.cfg.Rules.ConditionsDir)
}

func (a *app) situations() (*situation.Catalog, error) {
	if a.cfg.Rules.SituationsFile == "" {
		return situation.Defaults(), nil
	}
	return situation.LoadFile(a.cfg.Rules.SituationsFile)
}

// hooks returns the Lua house rules, or nil when no scripts directory is set.
func (a *app) hooks(roller *dice.Roller) (*scripting.Manager, error) {
	if a.cfg.Rules.ScriptsDir == "" {
		return nil, nil
	}
	m, err := scripting.Load(a.cfg.Rules.ScriptsDir, 0, roller, a.logger)
	if errors.Is(err, scripting.ErrNoScripts) {
		a.logger.Warn("scripts directory holds no scripts", zap.String("dir", a.cfg.Rules.ScriptsDir))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, m.Close)
	return m, nil
}

func (a *app) store(ctx context.Context) (store, error) {
	switch a.cfg.Store.Driver {
	case config.DriverPostgres:
		pool, err := postgres.Open(ctx, a.cfg.Database, a.logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		return postgres.NewCombatantRepository(pool), nil
	default:
		return yamlstore.New(a.cfg.Store.Path, a.logger), nil
	}
}

// metrics returns a recorder when a textfile is configured, or nil.
func (a *app) metrics() *observability.Metrics {
	if a.cfg.Metrics.Textfile == "" {
		return nil
	}
	return observability.NewMetrics()
}
