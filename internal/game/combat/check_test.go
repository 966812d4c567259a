package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duel/internal/game/combat"
)

func TestCheck_PlainRollSucceedsAtOrBelowRating(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rating := rapid.IntRange(-5, 30).Draw(rt, "rating")
		roll := rapid.IntRange(2, 19).Draw(rt, "roll")
		r, src := scripted(roll)

		res := combat.Check(r, rating)
		assert.Equal(rt, roll <= rating, res.Success())
		assert.Zero(rt, res.Confirm)
		assert.Zero(rt, src.Remaining())
	})
}

func TestCheck_ConfirmedOneIsCritical(t *testing.T) {
	r, _ := scripted(1, 12)
	res := combat.Check(r, 12)
	assert.Equal(t, combat.Critical, res.Outcome)
	assert.False(t, res.Lucky)
}

func TestCheck_UnconfirmedOneIsLuckyHit(t *testing.T) {
	r, _ := scripted(1, 13)
	res := combat.Check(r, 12)
	assert.Equal(t, combat.Hit, res.Outcome)
	assert.True(t, res.Lucky)
	assert.True(t, res.Success())
}

func TestCheck_ConfirmedTwentyIsFumble(t *testing.T) {
	r, _ := scripted(20, 13)
	res := combat.Check(r, 12)
	assert.Equal(t, combat.Fumble, res.Outcome)
	assert.False(t, res.Success())
}

func TestCheck_UnconfirmedTwentyIsMiss(t *testing.T) {
	r, _ := scripted(20, 12)
	res := combat.Check(r, 12)
	assert.Equal(t, combat.Miss, res.Outcome)
}

func TestCheck_String(t *testing.T) {
	r, _ := scripted(1, 13)
	assert.Equal(t, "1d20=1 vs 12, confirmation 1d20=13 → hit (unconfirmed 1)", combat.Check(r, 12).String())
}
