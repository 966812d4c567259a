package combat

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/duel/internal/game/decision"
)

var (
	// ErrCancelled aborts an exchange without writing anything.
	ErrCancelled = decision.ErrCancelled
	// ErrNotEnoughCombatants means the exchange lacks two eligible participants.
	ErrNotEnoughCombatants = errors.New("an exchange needs two eligible combatants")
	// ErrNoWeapon means the attacker has no usable weapon of the requested class.
	ErrNoWeapon = errors.New("attacker has no usable weapon of that class")
	// ErrCombatantNotFound is returned by a Store when a record does not exist.
	ErrCombatantNotFound = errors.New("combatant not found")
)

// cancelled normalises a decision-provider error so that every cancellation
// satisfies errors.Is(err, ErrCancelled).
func cancelled(err error) error {
	if err == nil || errors.Is(err, ErrCancelled) || !decision.IsCancelled(err) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrCancelled, err)
}
