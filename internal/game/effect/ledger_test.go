package effect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duel/internal/game/effect"
)

func TestLedger_AppendValidates(t *testing.T) {
	l := effect.NewLedger()
	assert.Error(t, l.Append(effect.Entry{Kind: effect.KindStatus}))
	assert.Error(t, l.Append(effect.Entry{Name: "x", Kind: effect.KindModifier}))
	assert.Error(t, l.Append(effect.Entry{Name: "x", Kind: effect.KindCondition}))
	assert.Error(t, l.Append(effect.Entry{Name: "x", Kind: "bogus"}))
	assert.Equal(t, 0, l.Len())
	require.NoError(t, l.Append(effect.Entry{Name: "prone", Kind: effect.KindStatus, Rounds: 1}))
	assert.Equal(t, 1, l.Len())
}

func TestLedger_DeltaSplitsBonusAndPenalty(t *testing.T) {
	l := effect.NewLedger(
		effect.Entry{Name: "a", Kind: effect.KindModifier, Modifiers: map[effect.Stat]int{effect.StatAttack: -2, effect.StatDefense: -1}, Rounds: 3},
		effect.Entry{Name: "b", Kind: effect.KindModifier, Modifiers: map[effect.Stat]int{effect.StatAttack: 1}, Rounds: effect.Permanent},
		effect.Entry{Name: "expired", Kind: effect.KindModifier, Modifiers: map[effect.Stat]int{effect.StatAttack: -4}, Rounds: 0},
	)
	bonus, penalty := l.Delta(effect.StatAttack)
	assert.Equal(t, 1, bonus)
	assert.Equal(t, 2, penalty)
	bonus, penalty = l.Delta(effect.StatSpeed)
	assert.Zero(t, bonus)
	assert.Zero(t, penalty)
}

func TestLedger_ConditionLevelsAndStatuses(t *testing.T) {
	l := effect.NewLedger(
		effect.Entry{Name: "pain", Kind: effect.KindCondition, Level: 1, Rounds: 2},
		effect.Entry{Name: "pain", Kind: effect.KindCondition, Level: 2, Rounds: effect.Permanent},
		effect.Entry{Name: "stupor", Kind: effect.KindCondition, Level: 1, Rounds: 0},
		effect.Entry{Name: "prone", Kind: effect.KindStatus, Rounds: 1},
		effect.Entry{Name: "dying", Kind: effect.KindStatus, Rounds: effect.Permanent},
		effect.Entry{Name: "prone", Kind: effect.KindStatus, Rounds: 2},
	)
	assert.Equal(t, map[string]int{"pain": 3}, l.ConditionLevels())
	assert.Equal(t, []string{"dying", "prone"}, l.Statuses())
	assert.True(t, l.HasStatus("dying"))
	assert.False(t, l.HasStatus("stupor"))
}

func TestLedger_EntriesAreCopies(t *testing.T) {
	l := effect.NewLedger(effect.Entry{Name: "a", Kind: effect.KindModifier, Modifiers: map[effect.Stat]int{effect.StatParry: 2}, Rounds: 1})
	got := l.Entries()
	got[0].Modifiers[effect.StatParry] = 99
	bonus, _ := l.Delta(effect.StatParry)
	assert.Equal(t, 2, bonus)
}

func TestLedger_AppendOnly_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := effect.NewLedger()
		n := rapid.IntRange(0, 20).Draw(rt, "n")
		prev := []effect.Entry{}
		for i := 0; i < n; i++ {
			e := effect.Entry{
				Name:   rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, "name"),
				Kind:   effect.KindStatus,
				Rounds: rapid.IntRange(effect.Permanent, 5).Draw(rt, "rounds"),
			}
			require.NoError(rt, l.Append(e))
			got := l.Entries()
			assert.Equal(rt, prev, got[:len(prev)])
			prev = got
		}
		assert.Equal(rt, n, l.Len())
	})
}

func TestExport_RoundTrips(t *testing.T) {
	l := effect.NewLedger(
		effect.Entry{Name: "critical hit", Kind: effect.KindModifier, Source: "crit table", Modifiers: map[effect.Stat]int{effect.StatDefense: -2}, Rounds: 2},
		effect.Entry{Name: "pain", Kind: effect.KindCondition, Level: 1, Rounds: effect.Permanent},
	)
	data, err := effect.Export(l)
	require.NoError(t, err)
	var got effect.Ledger
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, l.Entries(), got.Entries())
}

func TestUnmarshalYAML_RejectsGarbage(t *testing.T) {
	var l effect.Ledger
	assert.Error(t, yaml.Unmarshal([]byte("name: [unterminated"), &l))
}
