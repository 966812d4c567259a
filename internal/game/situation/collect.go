package situation

import (
	"context"
	"fmt"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/decision"
)

// Choice is one applied modifier.
type Choice struct {
	Category string
	Option   string
	Target   Target
	Delta    int
}

// Modifiers is the outcome of one collection.
type Modifiers struct {
	Attack  int
	Defense int
	Choices []Choice
}

func (m *Modifiers) add(cat string, o *Option, delta int) {
	m.Choices = append(m.Choices, Choice{Category: cat, Option: o.label(), Target: o.Target, Delta: delta})
	switch o.Target {
	case Attack:
		m.Attack += delta
	case Defense:
		m.Defense += delta
	}
}

// Collect asks for one option of every mandatory category that applies to
// class, then for any number of optional options, and sums their deltas.
//
// Precondition: d must be non-nil.
// Postcondition: Returns the summed modifiers or the provider's error unchanged.
func (c *Catalog) Collect(ctx context.Context, d decision.Provider, class character.WeaponClass, vars Vars) (Modifiers, error) {
	var mods Modifiers
	type pick struct {
		cat string
		opt *Option
	}
	var optional []pick

	for ci := range c.Categories {
		cat := &c.Categories[ci]
		if !cat.appliesTo(class) {
			continue
		}
		if !cat.Mandatory {
			for oi := range cat.Options {
				optional = append(optional, pick{cat: cat.ID, opt: &cat.Options[oi]})
			}
			continue
		}
		labels := make([]string, len(cat.Options))
		for i := range cat.Options {
			labels[i] = cat.Options[i].label()
		}
		idx, err := d.ChooseOne(ctx, cat.Label, labels)
		if err != nil {
			return Modifiers{}, err
		}
		opt := &cat.Options[idx]
		delta, err := opt.eval(vars)
		if err != nil {
			return Modifiers{}, err
		}
		mods.add(cat.ID, opt, delta)
	}

	if len(optional) == 0 {
		return mods, nil
	}
	labels := make([]string, len(optional))
	for i, p := range optional {
		labels[i] = p.opt.label()
	}
	picked, err := d.ChooseMany(ctx, "Optional modifiers", labels)
	if err != nil {
		return Modifiers{}, err
	}
	for _, i := range picked {
		p := optional[i]
		var delta int
		if p.opt.Input {
			delta, err = d.InputNumber(ctx, fmt.Sprintf("%s (%s)", p.opt.label(), p.opt.Target), 0)
		} else {
			delta, err = p.opt.eval(vars)
		}
		if err != nil {
			return Modifiers{}, err
		}
		mods.add(p.cat, p.opt, delta)
	}
	return mods, nil
}
