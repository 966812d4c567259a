// Package storage holds the types shared by the combatant stores.
package storage

import (
	"errors"
	"time"

	"github.com/cory-johannsen/duel/internal/game/combat"
)

// ErrCombatantNotFound is returned when a requested record does not exist.
var ErrCombatantNotFound = combat.ErrCombatantNotFound

// ErrConflict is returned by Commit when a record changed after it was loaded.
var ErrConflict = errors.New("combatant modified concurrently")

// Record is one persisted encounter log entry.
type Record struct {
	ID         string           `yaml:"id" json:"id"`
	At         time.Time        `yaml:"at" json:"at"`
	AttackerID string           `yaml:"attacker" json:"attacker"`
	DefenderID string           `yaml:"defender" json:"defender"`
	Outcome    string           `yaml:"outcome" json:"outcome"`
	Lines      []combat.LogLine `yaml:"lines" json:"lines"`
}

// NewRecord captures ex's transcript.
//
// Precondition: ex must be non-nil.
func NewRecord(ex *combat.Exchange, at time.Time) Record {
	return Record{
		ID:         ex.ID,
		At:         at.UTC(),
		AttackerID: ex.Attacker.ID,
		DefenderID: ex.Defender.ID,
		Outcome:    string(ex.Outcome),
		Lines:      ex.Log.Lines(),
	}
}
