package combat

import (
	"fmt"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/dice"
	"github.com/cory-johannsen/duel/internal/game/rules"
)

// HitZone is the zone an attack struck.
type HitZone struct {
	// Key identifies the zone's life pool, e.g. "left arm".
	Key      string
	Base     string
	Category rules.ZoneCategory
	// Side is "left" or "right" for sided zones, empty otherwise.
	Side string
	// Roll is the zone roll, or the parity roll of a targeted sided zone.
	Roll     int
	Targeted bool
}

// String renders the zone for the transcript.
func (h HitZone) String() string {
	if h.Targeted {
		return fmt.Sprintf("%s (targeted, parity 1d20=%d)", h.Key, h.Roll)
	}
	return fmt.Sprintf("%s (1d20=%d)", h.Key, h.Roll)
}

// ZoneResolver maps body plan, size and a roll or choice to a hit zone.
type ZoneResolver struct {
	rules  *rules.Rules
	roller *dice.Roller
}

// NewZoneResolver returns a ZoneResolver.
//
// Precondition: r and roller must be non-nil.
func NewZoneResolver(r *rules.Rules, roller *dice.Roller) *ZoneResolver {
	return &ZoneResolver{rules: r, roller: roller}
}

// Random rolls 1d20 against the layout of (plan, size). Sided zones take
// their side from the parity of the same roll: even right, odd left.
//
// Postcondition: Returns a zone of the layout; a roll outside every range
// yields the layout's first torso zone.
func (z *ZoneResolver) Random(plan character.BodyPlan, size character.Size) HitZone {
	layout := z.rules.Layout(plan, size)
	roll := z.roller.D(20)
	entry, ok := rules.Lookup(layout.Zones, roll)
	if !ok {
		entry = fallbackZone(layout)
	}
	return makeZone(entry, roll, false)
}

// Targeted returns the zone named key of the layout of (plan, size). Sided
// zones roll an auxiliary d20 whose parity picks the side.
//
// Postcondition: Returns an error iff key names no zone of the layout.
func (z *ZoneResolver) Targeted(plan character.BodyPlan, size character.Size, key string) (HitZone, error) {
	layout := z.rules.Layout(plan, size)
	for _, e := range layout.Zones {
		if e.Key != key {
			continue
		}
		roll := 0
		if e.Sided {
			roll = z.roller.D(20)
		}
		return makeZone(e, roll, true), nil
	}
	return HitZone{}, fmt.Errorf("zone %q not part of the %s layout", key, layout.Plan)
}

// Targets lists the distinct zones of the layout of (plan, size) in table order.
func (z *ZoneResolver) Targets(plan character.BodyPlan, size character.Size) []rules.ZoneEntry {
	layout := z.rules.Layout(plan, size)
	seen := make(map[string]bool)
	var out []rules.ZoneEntry
	for _, e := range layout.Zones {
		if !seen[e.Key] {
			seen[e.Key] = true
			out = append(out, e)
		}
	}
	return out
}

func makeZone(e rules.ZoneEntry, roll int, targeted bool) HitZone {
	h := HitZone{Key: e.Key, Base: e.Key, Category: e.Category, Roll: roll, Targeted: targeted}
	if e.Sided {
		h.Side = "left"
		if roll%2 == 0 {
			h.Side = "right"
		}
		h.Key = h.Side + " " + e.Key
	}
	return h
}

func fallbackZone(layout *rules.ZoneLayout) rules.ZoneEntry {
	for _, e := range layout.Zones {
		if e.Category == rules.Torso {
			return e
		}
	}
	return layout.Zones[0]
}
