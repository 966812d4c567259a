package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/combat"
	"github.com/cory-johannsen/duel/internal/game/rules"
)

func TestInjury_TorsoEscalatesOnThirdInjury(t *testing.T) {
	r, src := scripted(1, 3, 1, 4, 1)
	ir := combat.NewInjuryResolver(rules.Defaults(), r)
	zone := &character.ZoneState{Life: 15, MaxLife: 15}

	first, err := ir.Resolve(zone, rules.Torso)
	require.NoError(t, err)
	assert.False(t, first.Extreme)
	assert.Equal(t, "broken ribs", first.Injury.Name)
	assert.Equal(t, 3, first.ExtraDamage)

	second, err := ir.Resolve(zone, rules.Torso)
	require.NoError(t, err)
	assert.False(t, second.Extreme)
	assert.Equal(t, 2, second.Count)

	third, err := ir.Resolve(zone, rules.Torso)
	require.NoError(t, err)
	assert.True(t, third.Extreme)
	assert.True(t, third.Fatal)
	assert.Zero(t, third.ExtraDamage)
	assert.Equal(t, 3, zone.SevereInjuries)
	assert.Zero(t, src.Remaining())
}

func TestInjury_FirstLimbInjuryDisables(t *testing.T) {
	r, _ := scripted(2)
	zone := &character.ZoneState{Life: 7, MaxLife: 7}
	out, err := combat.NewInjuryResolver(rules.Defaults(), r).Resolve(zone, rules.Arm)
	require.NoError(t, err)
	assert.True(t, out.Extreme)
	assert.True(t, out.Disabled)
	assert.False(t, out.Fatal)
	assert.Equal(t, character.ZoneDisabled, zone.Status)
}

func TestInjury_FirstHeadInjuryIsFatal(t *testing.T) {
	r, _ := scripted(6)
	out, err := combat.NewInjuryResolver(rules.Defaults(), r).Resolve(&character.ZoneState{Life: 7, MaxLife: 7}, rules.Head)
	require.NoError(t, err)
	assert.True(t, out.Fatal)
	assert.Equal(t, "concussion", out.Injury.Name)
}

func TestInjury_NonVitalNeverFatal(t *testing.T) {
	cats := []rules.ZoneCategory{rules.Arm, rules.Leg, rules.Tail, rules.Wing, rules.Tentacle, rules.Other}
	rapid.Check(t, func(rt *rapid.T) {
		cat := rapid.SampledFrom(cats).Draw(rt, "category")
		prior := rapid.IntRange(0, 5).Draw(rt, "prior")
		faces := []int{rapid.IntRange(1, 6).Draw(rt, "roll")}
		for range 4 {
			faces = append(faces, rapid.IntRange(1, 6).Draw(rt, "extra"))
		}
		r, _ := scripted(faces...)
		zone := &character.ZoneState{Life: 5, MaxLife: 5, SevereInjuries: prior}

		out, err := combat.NewInjuryResolver(rules.Defaults(), r).Resolve(zone, cat)
		require.NoError(rt, err)
		assert.False(rt, out.Fatal)
		assert.Equal(rt, prior+1, zone.SevereInjuries)
		assert.Equal(rt, out.Count >= out.Threshold, out.Extreme)
	})
}
