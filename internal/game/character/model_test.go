package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/effect"
)

func sample() *character.Combatant {
	return &character.Combatant{
		ID:         "c1",
		Name:       "Alrik",
		Attributes: character.Attributes{Courage: 13, Strength: 14, Constitution: 12},
		Life:       30,
		MaxLife:    30,
		Skills:     map[string]int{"swords": 12},
		Weapons: []character.Weapon{
			{Name: "Longsword", Damage: "1d6+4", Technique: "swords", Class: character.Melee},
			{Name: "Buckler", Damage: "1d6", Technique: character.ShieldTechnique, Class: character.Melee, State: character.WeaponBroken},
			{Name: "Bow", Damage: "1d6+4", Technique: "bows", Class: character.Ranged},
		},
		Armor:      []character.Armor{{Name: "Leather", Protection: 2}, {Name: "Helmet", Protection: 1}},
		Conditions: []character.Condition{{Name: "pain", Level: 1}},
		Zones:      map[string]*character.ZoneState{"torso": {Life: 10, MaxLife: 10}},
	}
}

func TestAttributes_GetDefaults(t *testing.T) {
	a := character.Attributes{Strength: 14}
	assert.Equal(t, 14, a.Get(character.Strength))
	assert.Equal(t, character.DefaultAttribute, a.Get(character.Courage))
	assert.Equal(t, character.DefaultAttribute, a.Get("luck"))
}

func TestAttributes_SetGet_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		attr := rapid.SampledFrom(character.AllAttributes).Draw(rt, "attr")
		v := rapid.IntRange(1, 25).Draw(rt, "v")
		var a character.Attributes
		a.Set(attr, v)
		assert.Equal(rt, v, a.Get(attr))
	})
}

func TestCombatant_SkillDefault(t *testing.T) {
	c := sample()
	assert.Equal(t, 12, c.Skill("swords"))
	assert.Equal(t, character.DefaultSkill, c.Skill("axes"))
}

func TestCombatant_ArmorValue(t *testing.T) {
	assert.Equal(t, 3, sample().ArmorValue())
}

func TestCombatant_EligibleWeapons_SkipsBroken(t *testing.T) {
	c := sample()
	assert.Equal(t, []int{0}, c.EligibleWeapons(character.Melee))
	assert.Equal(t, []int{2}, c.EligibleWeapons(character.Ranged))
	assert.Equal(t, -1, c.Shield())
}

func TestCombatant_ZoneCreatesDefaultPool(t *testing.T) {
	c := sample()
	z := c.Zone("head", 4)
	assert.Equal(t, 4, z.Life)
	assert.Same(t, z, c.Zone("head", 99))
	assert.Equal(t, 10, c.Zone("torso", 1).Life)
}

func TestCombatant_TakeDamageClamps(t *testing.T) {
	c := sample()
	c.TakeDamage(100)
	assert.Equal(t, 0, c.Life)
}

func TestZoneState_StatusTransitions(t *testing.T) {
	z := &character.ZoneState{Life: 8, MaxLife: 8}
	z.TakeDamage(3)
	assert.Equal(t, character.ZoneNormal, z.Status)
	z.TakeDamage(1)
	assert.Equal(t, character.ZoneImpaired, z.Status)
	z.TakeDamage(2)
	assert.Equal(t, character.ZoneCritical, z.Status)
	z.TakeDamage(5)
	assert.Equal(t, 0, z.Life)
	assert.Equal(t, character.ZoneDisabled, z.Status)
}

func TestZoneState_DisabledIsSticky(t *testing.T) {
	z := &character.ZoneState{Life: 8, MaxLife: 8}
	z.Disable()
	z.TakeDamage(0)
	assert.Equal(t, character.ZoneDisabled, z.Status)
}

func TestZoneState_LifeNeverNegative_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		max := rapid.IntRange(1, 40).Draw(rt, "max")
		z := &character.ZoneState{Life: max, MaxLife: max}
		hits := rapid.SliceOf(rapid.IntRange(0, 20)).Draw(rt, "hits")
		for _, h := range hits {
			z.TakeDamage(h)
			assert.GreaterOrEqual(rt, z.Life, 0)
		}
	})
}

func TestCombatant_CloneIsDeep(t *testing.T) {
	c := sample()
	require.NoError(t, c.Effects.Append(effect.Entry{Name: "blessed", Kind: effect.KindStatus, Rounds: 2}))

	cp := c.Clone()
	cp.Skills["swords"] = 1
	cp.Weapons[0].State = character.WeaponDropped
	cp.Zones["torso"].TakeDamage(4)
	cp.Conditions[0].Level = 5
	require.NoError(t, cp.Effects.Append(effect.Entry{Name: "dying", Kind: effect.KindStatus, Rounds: effect.Permanent}))

	assert.Equal(t, 12, c.Skills["swords"])
	assert.Equal(t, character.WeaponIntact, c.Weapons[0].State)
	assert.Equal(t, 10, c.Zones["torso"].Life)
	assert.Equal(t, 1, c.Conditions[0].Level)
	assert.Equal(t, 1, c.Effects.Len())
	assert.Equal(t, 2, cp.Effects.Len())
}

func TestParseReach(t *testing.T) {
	assert.Equal(t, character.ReachShort, character.ParseReach("Short"))
	assert.Equal(t, character.ReachLong, character.ParseReach("lang"))
	assert.Equal(t, character.ReachMedium, character.ParseReach(""))
	assert.Equal(t, character.ReachMedium, character.Weapon{}.EffectiveReach())
}
