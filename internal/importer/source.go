package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/importer/sheet"
)

// Source loads combatants from a format-specific file or directory.
//
// Postcondition: returns at least one Combatant, or a non-nil error.
type Source interface {
	Load(path string) ([]*character.Combatant, error)
}

// SheetSource reads text stat blocks. A directory path reads every *.txt file
// in it in lexicographic order.
type SheetSource struct{}

// NewSheetSource returns a SheetSource.
func NewSheetSource() SheetSource {
	return SheetSource{}
}

// Load implements Source.
func (SheetSource) Load(path string) ([]*character.Combatant, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	files := []string{path}
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.txt"))
		if err != nil {
			return nil, fmt.Errorf("listing %s: %w", path, err)
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no *.txt stat blocks in %s", path)
		}
		sort.Strings(files)
	}

	var out []*character.Combatant
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		cs, err := sheet.ParseAll(string(data))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		out = append(out, cs...)
	}
	return out, nil
}
