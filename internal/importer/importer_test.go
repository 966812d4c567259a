package importer_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/importer"
	"github.com/cory-johannsen/duel/internal/storage/yamlstore"
)

const bandit = `Name: Bandit
Attributes: MU 11, KK 13, KO 12
Life: 28
Skills: swords 10, evasion 6
Weapon: Short sword | 1d6+2 | swords | short
`

type helperT interface {
	require.TestingT
	Helper()
}

func writeSheet(t helperT, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestImporter_Run_AddsToEncounter(t *testing.T) {
	src := writeSheet(t, t.TempDir(), "bandit.txt", bandit)
	store := yamlstore.New(filepath.Join(t.TempDir(), "encounter.yaml"), zap.NewNop())
	core, logs := observer.New(zap.InfoLevel)

	imp := importer.New(importer.NewSheetSource(), store, zap.New(core))
	cs, err := imp.Run(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, cs, 1)
	assert.Equal(t, "bandit", cs[0].ID)

	enc, err := store.Read()
	require.NoError(t, err)
	got := enc.Find("bandit")
	require.NotNil(t, got)
	assert.Equal(t, 13, got.Attributes.Strength)
	assert.Equal(t, int64(1), got.Version)
	assert.Equal(t, 1, logs.FilterMessage("import complete").Len())
}

func TestImporter_Run_DirectoryDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	writeSheet(t, dir, "a.txt", bandit)
	writeSheet(t, dir, "b.txt", bandit+"---\n"+bandit)
	writeSheet(t, dir, "notes.md", "Name: ignored")
	store := yamlstore.New(filepath.Join(t.TempDir(), "encounter.yaml"), zap.NewNop())

	cs, err := importer.New(importer.NewSheetSource(), store, zap.NewNop()).Run(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, cs, 3)
	assert.Equal(t, "bandit", cs[0].ID)
	assert.True(t, strings.HasPrefix(cs[1].ID, "bandit_"))
	assert.NotEqual(t, cs[1].ID, cs[2].ID)
}

func TestImporter_Run_InvalidSource(t *testing.T) {
	store := yamlstore.New(filepath.Join(t.TempDir(), "encounter.yaml"), zap.NewNop())
	imp := importer.New(importer.NewSheetSource(), store, zap.NewNop())

	_, err := imp.Run(context.Background(), "/nonexistent/dir")
	assert.Error(t, err)

	_, err = imp.Run(context.Background(), t.TempDir())
	assert.Error(t, err)

	bad := writeSheet(t, t.TempDir(), "bad.txt", "Name: X\nLife: lots")
	_, err = imp.Run(context.Background(), bad)
	assert.Error(t, err)
}

type failingSink struct{}

func (failingSink) Add(context.Context, ...*character.Combatant) error {
	return errors.New("disk full")
}

func TestImporter_Run_SinkError(t *testing.T) {
	src := writeSheet(t, t.TempDir(), "bandit.txt", bandit)
	_, err := importer.New(importer.NewSheetSource(), failingSink{}, zap.NewNop()).Run(context.Background(), src)
	assert.ErrorContains(t, err, "disk full")
}

func TestAssignIDs_KeepsExisting(t *testing.T) {
	cs := []*character.Combatant{{ID: "orc_raider", Name: "Orc Raider"}, {Name: "Orc Raider"}}
	importer.AssignIDs(cs)
	assert.Equal(t, "orc_raider", cs[0].ID)
	assert.NotEqual(t, "orc_raider", cs[1].ID)
}

// Importing N stat blocks adds exactly N combatants with distinct IDs.
func TestImporter_Run_NBlocksProducesNCombatants(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 5).Draw(rt, "blocks")
		dir, err := os.MkdirTemp("", "import")
		if err != nil {
			rt.Fatal(err)
		}
		defer os.RemoveAll(dir)

		var blocks []string
		for i := 0; i < n; i++ {
			name := rapid.SampledFrom([]string{"Bandit", "Wolf", "Orc"}).Draw(rt, fmt.Sprintf("name%d", i))
			blocks = append(blocks, fmt.Sprintf("Name: %s\nLife: %d\n", name, 10+i))
		}
		writeSheet(rt, dir, "all.txt", strings.Join(blocks, "---\n"))
		store := yamlstore.New(filepath.Join(dir, "encounter.yaml"), zap.NewNop())

		if _, err := importer.New(importer.NewSheetSource(), store, zap.NewNop()).Run(context.Background(), filepath.Join(dir, "all.txt")); err != nil {
			rt.Fatal(err)
		}
		enc, err := store.Read()
		if err != nil {
			rt.Fatal(err)
		}
		assert.Len(rt, enc.Combatants, n)
		ids := make(map[string]bool)
		for _, c := range enc.Combatants {
			ids[c.ID] = true
		}
		assert.Len(rt, ids, n)
	})
}
