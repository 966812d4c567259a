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

func TestRandom_HumanoidZones(t *testing.T) {
	cases := []struct {
		roll int
		key  string
		cat  rules.ZoneCategory
	}{
		{3, "left leg", rules.Leg},
		{4, "right leg", rules.Leg},
		{7, "torso", rules.Torso},
		{10, "right arm", rules.Arm},
		{13, "left arm", rules.Arm},
		{16, "torso", rules.Torso},
		{19, "head", rules.Head},
	}
	for _, tc := range cases {
		r, _ := scripted(tc.roll)
		z := combat.NewZoneResolver(rules.Defaults(), r).Random(character.Humanoid, character.Medium)
		assert.Equal(t, tc.key, z.Key, "roll %d", tc.roll)
		assert.Equal(t, tc.cat, z.Category, "roll %d", tc.roll)
		assert.False(t, z.Targeted)
	}
}

func TestRandom_UnknownPlanUsesHumanoid(t *testing.T) {
	r, _ := scripted(19)
	z := combat.NewZoneResolver(rules.Defaults(), r).Random("", "")
	assert.Equal(t, "head", z.Key)
}

func TestRandom_AlwaysALayoutZone(t *testing.T) {
	plans := []character.BodyPlan{character.Humanoid, character.Quadruped, character.Hexapod, character.Tentacled, character.NoPlan}
	sizes := []character.Size{character.Tiny, character.Small, character.Medium, character.Large, character.Huge}
	rapid.Check(t, func(rt *rapid.T) {
		plan := rapid.SampledFrom(plans).Draw(rt, "plan")
		size := rapid.SampledFrom(sizes).Draw(rt, "size")
		r, _ := scripted(rapid.IntRange(1, 20).Draw(rt, "roll"))
		zr := combat.NewZoneResolver(rules.Defaults(), r)

		z := zr.Random(plan, size)
		var bases []string
		for _, e := range zr.Targets(plan, size) {
			bases = append(bases, e.Key)
		}
		assert.Contains(rt, bases, z.Base)
	})
}

func TestTargeted_SidedZoneUsesParityRoll(t *testing.T) {
	r, src := scripted(7)
	z, err := combat.NewZoneResolver(rules.Defaults(), r).Targeted(character.Humanoid, character.Medium, "arm")
	require.NoError(t, err)
	assert.Equal(t, "left arm", z.Key)
	assert.True(t, z.Targeted)
	assert.Zero(t, src.Remaining())
}

func TestTargeted_UnsidedZoneRollsNothing(t *testing.T) {
	r, _ := scripted()
	z, err := combat.NewZoneResolver(rules.Defaults(), r).Targeted(character.Humanoid, character.Medium, "head")
	require.NoError(t, err)
	assert.Equal(t, "head", z.Key)
	assert.Equal(t, rules.Head, z.Category)
}

func TestTargeted_UnknownZone(t *testing.T) {
	r, _ := scripted()
	_, err := combat.NewZoneResolver(rules.Defaults(), r).Targeted(character.Humanoid, character.Medium, "wing")
	assert.Error(t, err)
}

func TestTargets_DistinctInTableOrder(t *testing.T) {
	r, _ := scripted()
	var keys []string
	for _, e := range combat.NewZoneResolver(rules.Defaults(), r).Targets(character.Humanoid, character.Medium) {
		keys = append(keys, e.Key)
	}
	assert.Equal(t, []string{"leg", "torso", "arm", "head"}, keys)
}
