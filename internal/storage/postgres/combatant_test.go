package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/combat"
	"github.com/cory-johannsen/duel/internal/game/decision"
	"github.com/cory-johannsen/duel/internal/game/dice"
	"github.com/cory-johannsen/duel/internal/game/effect"
	"github.com/cory-johannsen/duel/internal/game/rules"
	"github.com/cory-johannsen/duel/internal/storage"
	"github.com/cory-johannsen/duel/internal/storage/postgres"
	"github.com/cory-johannsen/duel/internal/testutil"
)

func uniqueID(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func makeCombatant(id, name string) *character.Combatant {
	return &character.Combatant{
		ID:         id,
		Name:       name,
		Life:       30,
		MaxLife:    30,
		Attributes: character.Attributes{Courage: 12, Constitution: 10},
		Skills:     map[string]int{"swords": 12, "evasion": 7},
		Weapons: []character.Weapon{
			{Name: "Sword", Damage: "1d6", Reach: character.ReachMedium, Technique: "swords", Class: character.Melee},
		},
		Armor: []character.Armor{{Name: "Leather", Protection: 1}},
	}
}

func TestCombatantRepository_SaveAndGet(t *testing.T) {
	repo := postgres.NewCombatantRepository(testutil.NewPool(t))
	ctx := context.Background()

	c := makeCombatant("", "Alrik")
	require.NoError(t, c.Effects.Append(effect.Entry{Name: "pain", Kind: effect.KindCondition, Level: 1, Rounds: 3}))
	require.NoError(t, repo.Save(ctx, c))
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, int64(1), c.Version)

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alrik", got.Name)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, 12, got.Attributes.Courage)
	assert.Equal(t, 1, got.ArmorValue())
	assert.Equal(t, map[string]int{"pain": 1}, got.Effects.ConditionLevels())
}

func TestCombatantRepository_Get_NotFound(t *testing.T) {
	repo := postgres.NewCombatantRepository(testutil.NewPool(t))
	_, err := repo.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, storage.ErrCombatantNotFound)
}

func TestCombatantRepository_Save_StaleVersionConflicts(t *testing.T) {
	repo := postgres.NewCombatantRepository(testutil.NewPool(t))
	ctx := context.Background()

	c := makeCombatant(uniqueID("c"), "Alrik")
	require.NoError(t, repo.Save(ctx, c))
	stale := c.Clone()

	c.Life = 20
	require.NoError(t, repo.Save(ctx, c))
	assert.Equal(t, int64(2), c.Version)

	stale.Life = 5
	err := repo.Save(ctx, stale)
	assert.ErrorIs(t, err, storage.ErrConflict)

	got, err := repo.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Life)
}

func TestCombatantRepository_Save_DuplicateInsertConflicts(t *testing.T) {
	repo := postgres.NewCombatantRepository(testutil.NewPool(t))
	ctx := context.Background()
	id := uniqueID("dup")
	require.NoError(t, repo.Save(ctx, makeCombatant(id, "A")))
	assert.ErrorIs(t, repo.Save(ctx, makeCombatant(id, "B")), storage.ErrConflict)
}

func TestCombatantRepository_EngineCommit(t *testing.T) {
	repo := postgres.NewCombatantRepository(testutil.NewPool(t))
	ctx := context.Background()

	a := makeCombatant("alrik", "Alrik")
	d := makeCombatant("orc", "Orc")
	d.Weapons = nil
	d.Armor = nil
	require.NoError(t, repo.Save(ctx, a))
	require.NoError(t, repo.Save(ctx, d))

	decide := decision.NewScripted(decision.No(), decision.One(0), decision.Many(), decision.One(1)).WithDefaults()
	roller := dice.NewLoggedRoller(dice.NewScriptedSource(5, 16, 4), zap.NewNop())
	engine := combat.NewEngine(rules.Defaults(), repo, decide, roller, zap.NewNop())

	ex, err := engine.Resolve(ctx, combat.Request{AttackerID: "alrik", DefenderID: "orc"})
	require.NoError(t, err)

	got, err := repo.Get(ctx, "orc")
	require.NoError(t, err)
	assert.Equal(t, 30-ex.Damage.Dealt, got.Life)
	assert.Equal(t, int64(2), got.Version)

	history, err := repo.History(ctx, "orc", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, ex.ID, history[0].ID)
	assert.Equal(t, string(ex.Outcome), history[0].Outcome)
	assert.Len(t, history[0].Lines, ex.Log.Len())
}

func TestCombatantRepository_Commit_ConflictRollsBack(t *testing.T) {
	repo := postgres.NewCombatantRepository(testutil.NewPool(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, makeCombatant("a", "A")))
	require.NoError(t, repo.Save(ctx, makeCombatant("d", "D")))
	a, d, err := repo.LoadPair(ctx, "a", "d")
	require.NoError(t, err)

	fresh, err := repo.Get(ctx, "d")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, fresh))

	a.Life = 1
	err = repo.Commit(ctx, &combat.Exchange{ID: "ex-conflict", Attacker: a, Defender: d, Outcome: combat.OutcomeHit})
	assert.ErrorIs(t, err, storage.ErrConflict)

	gotA, err := repo.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 30, gotA.Life)
	assert.Equal(t, int64(1), gotA.Version)

	history, err := repo.History(ctx, "a", 10)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestProperty_SaveGet_PreservesLife(t *testing.T) {
	repo := postgres.NewCombatantRepository(testutil.NewPool(t))
	ctx := context.Background()
	rapid.Check(t, func(rt *rapid.T) {
		c := makeCombatant(uniqueID("p"), "P")
		c.Life = rapid.IntRange(0, 30).Draw(rt, "life")
		if err := repo.Save(ctx, c); err != nil {
			rt.Fatalf("save: %v", err)
		}
		got, err := repo.Get(ctx, c.ID)
		if err != nil {
			rt.Fatalf("get: %v", err)
		}
		if got.Life != c.Life {
			rt.Fatalf("life %d, want %d", got.Life, c.Life)
		}
	})
}

func TestCombatantRepository_Add_AllOrNothing(t *testing.T) {
	repo := postgres.NewCombatantRepository(testutil.NewPool(t))
	ctx := context.Background()
	id := uniqueID("batch")

	require.NoError(t, repo.Add(ctx, makeCombatant(id, "A")))
	err := repo.Add(ctx, makeCombatant(uniqueID("fresh"), "B"), makeCombatant(id, "A again"))
	assert.ErrorIs(t, err, storage.ErrConflict)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Name)
}
