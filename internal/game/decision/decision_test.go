package decision_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duel/internal/game/decision"
)

var opts = []string{"parry", "evade", "none"}

func TestScripted_ReplaysInOrder(t *testing.T) {
	ctx := context.Background()
	s := decision.NewScripted(decision.One(2), decision.Many(1, 0, 1), decision.Number(3), decision.Yes())

	i, err := s.ChooseOne(ctx, "defense", opts)
	require.NoError(t, err)
	assert.Equal(t, 2, i)

	many, err := s.ChooseMany(ctx, "optional", opts)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, many)

	n, err := s.InputNumber(ctx, "defenses so far", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	ok, err := s.Confirm(ctx, "targeted?")
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Equal(t, []string{"defense", "optional", "defenses so far", "targeted?"}, s.Prompts())
	assert.Zero(t, s.Remaining())
}

func TestScripted_StrictExhaustion(t *testing.T) {
	_, err := decision.NewScripted().Confirm(context.Background(), "x")
	require.Error(t, err)
	assert.False(t, decision.IsCancelled(err))
}

func TestScripted_KindMismatch(t *testing.T) {
	_, err := decision.NewScripted(decision.Number(1)).Confirm(context.Background(), "x")
	assert.Error(t, err)
}

func TestScripted_IndexOutOfRange(t *testing.T) {
	_, err := decision.NewScripted(decision.One(5)).ChooseOne(context.Background(), "x", opts)
	assert.Error(t, err)
}

func TestScripted_Cancel(t *testing.T) {
	_, err := decision.NewScripted(decision.Cancel()).ChooseOne(context.Background(), "x", opts)
	assert.ErrorIs(t, err, decision.ErrCancelled)
	assert.True(t, decision.IsCancelled(err))
}

func TestScripted_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := decision.Auto().InputNumber(ctx, "x", 1)
	assert.ErrorIs(t, err, decision.ErrCancelled)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAuto_Defaults(t *testing.T) {
	ctx := context.Background()
	a := decision.Auto()
	i, err := a.ChooseOne(ctx, "x", opts)
	require.NoError(t, err)
	assert.Zero(t, i)
	many, err := a.ChooseMany(ctx, "x", opts)
	require.NoError(t, err)
	assert.Empty(t, many)
	n, err := a.InputNumber(ctx, "x", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	ok, err := a.Confirm(ctx, "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAuto_NumberDefault_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		def := rapid.Int().Draw(rt, "def")
		n, err := decision.Auto().InputNumber(context.Background(), "n", def)
		require.NoError(rt, err)
		assert.Equal(rt, def, n)
	})
}

func TestConsole_ChooseOneRetriesInvalid(t *testing.T) {
	var out bytes.Buffer
	c := decision.NewConsole(strings.NewReader("9\nabc\n2\n"), &out, false)
	i, err := c.ChooseOne(context.Background(), "Defense?", opts)
	require.NoError(t, err)
	assert.Equal(t, 1, i)
	assert.Contains(t, out.String(), " 1) parry")
	assert.Contains(t, out.String(), "enter a number between 1 and 3")
}

func TestConsole_AllPromptKinds(t *testing.T) {
	var out bytes.Buffer
	c := decision.NewConsole(strings.NewReader("\n3, 1\n\n-2\ny\n\n"), &out, true)
	ctx := context.Background()

	i, err := c.ChooseOne(ctx, "pick", opts)
	require.NoError(t, err)
	assert.Zero(t, i)

	many, err := c.ChooseMany(ctx, "pick many", opts)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, many)

	n, err := c.InputNumber(ctx, "number", 4)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	n, err = c.InputNumber(ctx, "number", 4)
	require.NoError(t, err)
	assert.Equal(t, -2, n)

	yes, err := c.Confirm(ctx, "sure?")
	require.NoError(t, err)
	assert.True(t, yes)

	yes, err = c.Confirm(ctx, "sure?")
	require.NoError(t, err)
	assert.False(t, yes)

	assert.Contains(t, out.String(), "\033[1;36m")
	assert.Contains(t, decision.StripANSI(out.String()), "number [4]:")
}

func TestConsole_QuitAndEOFCancel(t *testing.T) {
	c := decision.NewConsole(strings.NewReader("q\n"), &bytes.Buffer{}, false)
	_, err := c.Confirm(context.Background(), "sure?")
	assert.ErrorIs(t, err, decision.ErrCancelled)

	_, err = c.Confirm(context.Background(), "again?")
	assert.True(t, decision.IsCancelled(err))
}

func TestConsole_ContextCancel(t *testing.T) {
	r, _ := io.Pipe()
	c := decision.NewConsole(r, &bytes.Buffer{}, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.InputNumber(ctx, "n", 0)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStyle_Paint(t *testing.T) {
	assert.Equal(t, "\033[31mhit\033[0m", decision.StyleWarning.Paint("hit"))
	assert.Equal(t, "plain", decision.Style("").Paint("plain"))
}

func TestStripANSI(t *testing.T) {
	painted := decision.StylePrompt.Paint("AT") + " 12 " + decision.StyleDefault.Paint("[4]:")
	assert.Equal(t, "AT 12 [4]:", decision.StripANSI(painted))
	assert.Equal(t, "no escapes", decision.StripANSI("no escapes"))
}

func TestConsole_NoColor(t *testing.T) {
	var out bytes.Buffer
	c := decision.NewConsole(strings.NewReader("y\n"), &out, false)
	_, err := c.Confirm(context.Background(), "sure?")
	require.NoError(t, err)
	assert.Equal(t, out.String(), decision.StripANSI(out.String()))
}
