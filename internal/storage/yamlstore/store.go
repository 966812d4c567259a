// Package yamlstore keeps an encounter, its combatants and its log, in one
// YAML document. Every commit rewrites the whole document atomically.
package yamlstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/combat"
	"github.com/cory-johannsen/duel/internal/storage"
)

// Encounter is the document layout.
type Encounter struct {
	Combatants []*character.Combatant `yaml:"combatants"`
	Log        []storage.Record       `yaml:"log,omitempty"`
}

// Find returns the combatant with id, or nil.
func (e *Encounter) Find(id string) *character.Combatant {
	for _, c := range e.Combatants {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Store is a file-backed combat.Store.
//
// Store serializes its own operations; it does not lock the file against
// other processes and relies on record versions to detect their writes.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
	now    func() time.Time
}

// New returns a Store over path. The file need not exist yet.
//
// Precondition: path must be non-empty; logger must be non-nil.
func New(path string, logger *zap.Logger) *Store {
	if logger == nil {
		panic("yamlstore.New: logger must not be nil")
	}
	return &Store{path: path, logger: logger, now: time.Now}
}

// Path returns the encounter file path.
func (s *Store) Path() string {
	return s.path
}

// Read decodes the encounter file. A missing file is an empty encounter.
//
// Postcondition: Returns a non-nil Encounter or a non-nil error.
func (s *Store) Read() (*Encounter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *Store) read() (*Encounter, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &Encounter{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading encounter %s: %w", s.path, err)
	}
	var enc Encounter
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&enc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing encounter %s: %w", s.path, err)
	}
	return &enc, nil
}

// write replaces the file with enc through a temporary file in the same directory.
func (s *Store) write(enc *Encounter) error {
	data, err := yaml.Marshal(enc)
	if err != nil {
		return fmt.Errorf("serialising encounter: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing encounter: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing encounter: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing encounter: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

// Add appends new combatants. An empty ID is replaced by a fresh UUID; every
// added record starts at version 1.
//
// Postcondition: Either all of cs are persisted or none are.
func (s *Store) Add(ctx context.Context, cs ...*character.Combatant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	enc, err := s.read()
	if err != nil {
		return err
	}
	for _, c := range cs {
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		if enc.Find(c.ID) != nil {
			return fmt.Errorf("combatant %q already exists", c.ID)
		}
		c.Version = 1
		enc.Combatants = append(enc.Combatants, c)
	}
	if err := s.write(enc); err != nil {
		return err
	}
	s.logger.Info("combatants added", zap.String("path", s.path), zap.Int("count", len(cs)))
	return nil
}

// Get returns a copy of the record with id.
//
// Postcondition: Returns an error wrapping ErrCombatantNotFound if id is missing.
func (s *Store) Get(ctx context.Context, id string) (*character.Combatant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	enc, err := s.Read()
	if err != nil {
		return nil, err
	}
	c := enc.Find(id)
	if c == nil {
		return nil, fmt.Errorf("%w: %q", storage.ErrCombatantNotFound, id)
	}
	return c.Clone(), nil
}

// History returns the most recent exchanges involving id, newest first.
//
// Precondition: limit > 0.
func (s *Store) History(ctx context.Context, id string, limit int) ([]storage.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	enc, err := s.Read()
	if err != nil {
		return nil, err
	}
	out := make([]storage.Record, 0)
	for i := len(enc.Log) - 1; i >= 0 && len(out) < limit; i-- {
		if rec := enc.Log[i]; rec.AttackerID == id || rec.DefenderID == id {
			out = append(out, rec)
		}
	}
	return out, nil
}

// LoadPair returns copies of both records.
//
// Postcondition: Returns an error wrapping ErrCombatantNotFound if either ID is missing.
func (s *Store) LoadPair(ctx context.Context, attackerID, defenderID string) (*character.Combatant, *character.Combatant, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	enc, err := s.Read()
	if err != nil {
		return nil, nil, err
	}
	a := enc.Find(attackerID)
	if a == nil {
		return nil, nil, fmt.Errorf("%w: %q", storage.ErrCombatantNotFound, attackerID)
	}
	d := enc.Find(defenderID)
	if d == nil {
		return nil, nil, fmt.Errorf("%w: %q", storage.ErrCombatantNotFound, defenderID)
	}
	return a.Clone(), d.Clone(), nil
}

// Commit replaces both records and appends the exchange log in one write.
//
// Precondition: ex.Attacker and ex.Defender carry the versions they were loaded with.
// Postcondition: On success both versions are incremented in the file and in ex.
// Returns ErrConflict, writing nothing, if either stored version differs.
func (s *Store) Commit(ctx context.Context, ex *combat.Exchange) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	enc, err := s.read()
	if err != nil {
		return err
	}
	for _, c := range []*character.Combatant{ex.Attacker, ex.Defender} {
		stored := enc.Find(c.ID)
		if stored == nil {
			return fmt.Errorf("%w: %q", storage.ErrCombatantNotFound, c.ID)
		}
		if stored.Version != c.Version {
			return fmt.Errorf("%w: %q at version %d, loaded %d", storage.ErrConflict, c.ID, stored.Version, c.Version)
		}
	}

	attacker, defender := ex.Attacker.Clone(), ex.Defender.Clone()
	attacker.Version++
	defender.Version++
	for i, c := range enc.Combatants {
		switch c.ID {
		case attacker.ID:
			enc.Combatants[i] = attacker
		case defender.ID:
			enc.Combatants[i] = defender
		}
	}
	enc.Log = append(enc.Log, storage.NewRecord(ex, s.now()))
	if err := s.write(enc); err != nil {
		return err
	}
	ex.Attacker.Version, ex.Defender.Version = attacker.Version, defender.Version
	s.logger.Debug("exchange committed",
		zap.String("exchange_id", ex.ID),
		zap.String("path", s.path),
	)
	return nil
}
