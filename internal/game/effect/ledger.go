// Package effect implements the per-combatant timed-effect ledger.
//
// The ledger is append-only from the point of view of the combat engine:
// entries are added when an exchange resolves and read when ratings are
// computed. Decrementing durations and pruning expired entries belongs to the
// round-advancement process that owns the encounter clock.
package effect

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sort"
)

// Stat identifies a numeric value an entry can shift.
type Stat string

const (
	StatAttack     Stat = "at"  // melee and ranged attack
	StatParry      Stat = "pa"  // parry only
	StatRanged     Stat = "fk"  // ranged attack only
	StatEvasion    Stat = "aw"  // evasion only
	StatDefense    Stat = "vw"  // any defense (parry or evasion)
	StatSpeed      Stat = "gs"  // movement
	StatInitiative Stat = "ini" // initiative
)

// Kind distinguishes the three payload shapes an entry may carry.
type Kind string

const (
	KindModifier  Kind = "modifier"
	KindCondition Kind = "condition"
	KindStatus    Kind = "status"
)

// Permanent is the Rounds value for entries that never expire on their own.
const Permanent = -1

// Entry is one ledger line.
type Entry struct {
	Name      string       `yaml:"name" json:"name"`
	Kind      Kind         `yaml:"kind" json:"kind"`
	Source    string       `yaml:"source,omitempty" json:"source,omitempty"`
	Modifiers map[Stat]int `yaml:"modifiers,omitempty" json:"modifiers,omitempty"`
	Level     int          `yaml:"level,omitempty" json:"level,omitempty"`
	// Rounds is the remaining duration in combat rounds; Permanent never expires
	// and 0 marks an instantaneous or already expired entry.
	Rounds int `yaml:"rounds" json:"rounds"`
}

// Active reports whether the entry still has duration left.
func (e Entry) Active() bool {
	return e.Rounds != 0
}

// Validate checks the entry's invariants.
//
// Postcondition: Returns nil iff the entry may be appended.
func (e Entry) Validate() error {
	var errs []error
	if e.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	switch e.Kind {
	case KindModifier:
		if len(e.Modifiers) == 0 {
			errs = append(errs, errors.New("modifier entry must carry at least one delta"))
		}
	case KindCondition:
		if e.Level <= 0 {
			errs = append(errs, fmt.Errorf("condition level must be > 0, got %d", e.Level))
		}
	case KindStatus:
	default:
		errs = append(errs, fmt.Errorf("unknown kind %q", e.Kind))
	}
	if e.Rounds < Permanent {
		errs = append(errs, fmt.Errorf("rounds must be >= %d, got %d", Permanent, e.Rounds))
	}
	return errors.Join(errs...)
}

// Ledger is an ordered, append-only list of entries for one combatant.
// It is not safe for concurrent use; the caller must serialise access.
type Ledger struct {
	entries []Entry
}

// NewLedger returns a ledger pre-populated with entries, e.g. from an import.
func NewLedger(entries ...Entry) *Ledger {
	l := &Ledger{}
	for _, e := range entries {
		l.entries = append(l.entries, cloneEntry(e))
	}
	return l
}

// Append adds e to the end of the ledger.
//
// Precondition: e must pass Validate.
// Postcondition: Len() grows by one; existing entries are untouched.
func (l *Ledger) Append(e Entry) error {
	if err := e.Validate(); err != nil {
		return fmt.Errorf("effect %q: %w", e.Name, err)
	}
	l.entries = append(l.entries, cloneEntry(e))
	return nil
}

// Entries returns a copy of every entry in append order.
func (l *Ledger) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = cloneEntry(e)
	}
	return out
}

// Len returns the number of entries.
func (l *Ledger) Len() int {
	return len(l.entries)
}

// Delta sums the active modifier entries for stat, split into the positive
// bonus and the magnitude of the negative penalty.
//
// Postcondition: bonus >= 0 and penalty >= 0.
func (l *Ledger) Delta(stat Stat) (bonus, penalty int) {
	for _, e := range l.entries {
		if e.Kind != KindModifier || !e.Active() {
			continue
		}
		v := e.Modifiers[stat]
		if v > 0 {
			bonus += v
		} else {
			penalty -= v
		}
	}
	return bonus, penalty
}

// ConditionLevels sums the levels of active condition entries by name.
func (l *Ledger) ConditionLevels() map[string]int {
	out := make(map[string]int)
	for _, e := range l.entries {
		if e.Kind == KindCondition && e.Active() {
			out[e.Name] += e.Level
		}
	}
	return out
}

// Statuses returns the distinct names of active status entries, sorted.
func (l *Ledger) Statuses() []string {
	seen := make(map[string]struct{})
	for _, e := range l.entries {
		if e.Kind == KindStatus && e.Active() {
			seen[e.Name] = struct{}{}
		}
	}
	out := slices.Collect(maps.Keys(seen))
	sort.Strings(out)
	return out
}

// HasStatus reports whether an active status entry named name exists.
func (l *Ledger) HasStatus(name string) bool {
	for _, e := range l.entries {
		if e.Kind == KindStatus && e.Name == name && e.Active() {
			return true
		}
	}
	return false
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	return NewLedger(l.entries...)
}

func cloneEntry(e Entry) Entry {
	e.Modifiers = maps.Clone(e.Modifiers)
	return e
}
