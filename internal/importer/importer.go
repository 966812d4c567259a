package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/duel/internal/game/character"
)

// Sink receives imported combatants, e.g. an encounter store.
type Sink interface {
	Add(ctx context.Context, cs ...*character.Combatant) error
}

// Importer orchestrates import from a Source into a Sink.
type Importer struct {
	source Source
	sink   Sink
	logger *zap.Logger
}

// New constructs an Importer.
//
// Precondition: source, sink and logger must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(source Source, sink Sink, logger *zap.Logger) *Importer {
	return &Importer{source: source, sink: sink, logger: logger}
}

// Run loads combatants from path, assigns each an ID derived from its name,
// and adds them to the sink in one call.
//
// Postcondition: Returns the added combatants, or an error with nothing added.
func (imp *Importer) Run(ctx context.Context, path string) ([]*character.Combatant, error) {
	overall := time.Now()

	cs, err := imp.source.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading source: %w", err)
	}
	imp.logger.Debug("source loaded",
		zap.String("path", path),
		zap.Int("combatants", len(cs)),
		zap.Duration("elapsed", time.Since(overall)),
	)

	AssignIDs(cs)

	if err := imp.sink.Add(ctx, cs...); err != nil {
		return nil, fmt.Errorf("adding combatants: %w", err)
	}
	for _, c := range cs {
		imp.logger.Info("combatant imported", zap.String("id", c.ID), zap.String("name", c.Name))
	}
	imp.logger.Info("import complete",
		zap.Int("combatants", len(cs)),
		zap.Duration("elapsed", time.Since(overall)),
	)
	return cs, nil
}

// AssignIDs gives every combatant without an ID the NameToID of its name. A
// name already used in the batch gets a short random suffix.
//
// Postcondition: every ID in cs is non-empty; assigned IDs do not collide with any other in cs.
func AssignIDs(cs []*character.Combatant) {
	seen := make(map[string]bool, len(cs))
	for _, c := range cs {
		if c.ID != "" {
			seen[c.ID] = true
		}
	}
	for _, c := range cs {
		if c.ID != "" {
			continue
		}
		base := NameToID(c.Name)
		if base == "" {
			base = "combatant"
		}
		id := base
		for seen[id] {
			id = base + "_" + uuid.NewString()[:8]
		}
		c.ID = id
		seen[id] = true
	}
}
