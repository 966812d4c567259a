package combat

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/decision"
	"github.com/cory-johannsen/duel/internal/game/rules"
)

// Store reads both combatant records at the start of an exchange and writes
// both records plus the transcript once at the end.
type Store interface {
	// LoadPair returns the two records; ErrCombatantNotFound (wrapped) if either is missing.
	LoadPair(ctx context.Context, attackerID, defenderID string) (*character.Combatant, *character.Combatant, error)
	// Commit persists ex.Attacker, ex.Defender and ex.Log as one unit.
	Commit(ctx context.Context, ex *Exchange) error
}

// AbilityChecker performs the follow-up ability checks some table leaves demand.
type AbilityChecker interface {
	Check(ctx context.Context, who *character.Combatant, want rules.CheckSpec, reason string) (bool, error)
}

// confirmChecker delegates the check to the table by asking whether it passed.
type confirmChecker struct {
	decide decision.Provider
}

func (c confirmChecker) Check(ctx context.Context, who *character.Combatant, want rules.CheckSpec, reason string) (bool, error) {
	return c.decide.Confirm(ctx, fmt.Sprintf("%s Did %s pass a %s check (%+d)?", reason, who.Name, want.Attribute, want.Modifier))
}

// Hooks lets house rules adjust computed values.
type Hooks interface {
	// AdjustRating returns the rating of kind ("AT", "PA", "FK", "AW") for who.
	AdjustRating(kind string, who *character.Combatant, value int) int
	// AdjustDamage returns the damage dealt after armor.
	AdjustDamage(attacker, defender *character.Combatant, damage int) int
}

type noHooks struct{}

func (noHooks) AdjustRating(_ string, _ *character.Combatant, v int) int { return v }

func (noHooks) AdjustDamage(_, _ *character.Combatant, d int) int { return d }

// Recorder receives counters for committed exchanges.
type Recorder interface {
	Exchange(outcome string)
	Table(table string, rerolls int, fallback bool)
	Injury(category string, extreme bool)
}

type noRecorder struct{}

func (noRecorder) Exchange(string) {}

func (noRecorder) Table(string, int, bool) {}

func (noRecorder) Injury(string, bool) {}
