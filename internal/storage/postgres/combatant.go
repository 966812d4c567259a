package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/duel/internal/game/character"
	"github.com/cory-johannsen/duel/internal/game/combat"
	"github.com/cory-johannsen/duel/internal/storage"
)

// CombatantRepository persists combatant records as JSONB rows guarded by a
// version column, and exchange transcripts alongside them.
type CombatantRepository struct {
	db  *pgxpool.Pool
	now func() time.Time
}

// NewCombatantRepository creates a CombatantRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCombatantRepository(db *pgxpool.Pool) *CombatantRepository {
	return &CombatantRepository{db: db, now: time.Now}
}

// Save inserts c when c.Version is 0 and updates it otherwise.
//
// Precondition: c must be non-nil with a non-empty Name.
// Postcondition: c.ID and c.Version reflect the stored row. Returns ErrConflict
// when an update finds a different stored version.
func (r *CombatantRepository) Save(ctx context.Context, c *character.Combatant) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	record, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encoding combatant %q: %w", c.ID, err)
	}
	if c.Version == 0 {
		return insert(ctx, r.db, c, record)
	}
	next, err := updateVersioned(ctx, r.db, c, record)
	if err != nil {
		return err
	}
	c.Version = next
	return nil
}

// Add inserts every combatant in one transaction. An empty ID is replaced by
// a fresh UUID.
//
// Postcondition: Either all of cs are stored at version 1 or none are.
func (r *CombatantRepository) Add(ctx context.Context, cs ...*character.Combatant) error {
	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for _, c := range cs {
			if c.ID == "" {
				c.ID = uuid.NewString()
			}
			record, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("encoding combatant %q: %w", c.ID, err)
			}
			if err := insert(ctx, tx, c, record); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get retrieves one combatant.
//
// Postcondition: Returns the Combatant or an error wrapping ErrCombatantNotFound.
func (r *CombatantRepository) Get(ctx context.Context, id string) (*character.Combatant, error) {
	var (
		record  []byte
		version int64
	)
	err := r.db.QueryRow(ctx, `SELECT record, version FROM combatants WHERE id = $1`, id).Scan(&record, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %q", storage.ErrCombatantNotFound, id)
		}
		return nil, fmt.Errorf("querying combatant: %w", err)
	}
	return decode(id, record, version)
}

// LoadPair implements combat.Store.
//
// Postcondition: Returns an error wrapping ErrCombatantNotFound if either ID is missing.
func (r *CombatantRepository) LoadPair(ctx context.Context, attackerID, defenderID string) (*character.Combatant, *character.Combatant, error) {
	a, err := r.Get(ctx, attackerID)
	if err != nil {
		return nil, nil, err
	}
	d, err := r.Get(ctx, defenderID)
	if err != nil {
		return nil, nil, err
	}
	return a, d, nil
}

// Commit implements combat.Store: both records and the transcript are written
// in one transaction.
//
// Precondition: ex.Attacker and ex.Defender carry the versions they were loaded with.
// Postcondition: On success both versions are incremented. Returns ErrConflict
// and rolls back if either stored version differs.
func (r *CombatantRepository) Commit(ctx context.Context, ex *combat.Exchange) error {
	rec := storage.NewRecord(ex, r.now())
	lines, err := json.Marshal(rec.Lines)
	if err != nil {
		return fmt.Errorf("encoding exchange log: %w", err)
	}
	versions := make([]int64, 2)
	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		for i, c := range []*character.Combatant{ex.Attacker, ex.Defender} {
			record, err := json.Marshal(c)
			if err != nil {
				return fmt.Errorf("encoding combatant %q: %w", c.ID, err)
			}
			if versions[i], err = updateVersioned(ctx, tx, c, record); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO exchanges (id, attacker_id, defender_id, outcome, lines, created_at)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			rec.ID, rec.AttackerID, rec.DefenderID, rec.Outcome, string(lines), rec.At,
		)
		if err != nil {
			return fmt.Errorf("inserting exchange %q: %w", rec.ID, err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	ex.Attacker.Version, ex.Defender.Version = versions[0], versions[1]
	return nil
}

// History returns the most recent exchanges involving id, newest first.
//
// Precondition: limit > 0.
func (r *CombatantRepository) History(ctx context.Context, id string, limit int) ([]storage.Record, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, attacker_id, defender_id, outcome, lines, created_at
		FROM exchanges
		WHERE attacker_id = $1 OR defender_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`,
		id, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing exchanges: %w", err)
	}
	defer rows.Close()

	out := make([]storage.Record, 0)
	for rows.Next() {
		var (
			rec   storage.Record
			lines []byte
		)
		if err := rows.Scan(&rec.ID, &rec.AttackerID, &rec.DefenderID, &rec.Outcome, &lines, &rec.At); err != nil {
			return nil, fmt.Errorf("scanning exchange row: %w", err)
		}
		if err := json.Unmarshal(lines, &rec.Lines); err != nil {
			return nil, fmt.Errorf("decoding exchange %q: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insert(ctx context.Context, db rowQuerier, c *character.Combatant, record []byte) error {
	err := db.QueryRow(ctx, `
		INSERT INTO combatants (id, name, version, record)
		VALUES ($1, $2, 1, $3)
		RETURNING version`,
		c.ID, c.Name, string(record),
	).Scan(&c.Version)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("combatant %q already exists: %w", c.ID, storage.ErrConflict)
		}
		return fmt.Errorf("inserting combatant: %w", err)
	}
	return nil
}

// updateVersioned writes record when the stored version equals c.Version and
// returns the new version.
func updateVersioned(ctx context.Context, db rowQuerier, c *character.Combatant, record []byte) (int64, error) {
	var next int64
	err := db.QueryRow(ctx, `
		UPDATE combatants
		SET name = $3, record = $4, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version`,
		c.ID, c.Version, c.Name, string(record),
	).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: %q at version %d", storage.ErrConflict, c.ID, c.Version)
	}
	if err != nil {
		return 0, fmt.Errorf("updating combatant %q: %w", c.ID, err)
	}
	return next, nil
}

func decode(id string, record []byte, version int64) (*character.Combatant, error) {
	var c character.Combatant
	if err := json.Unmarshal(record, &c); err != nil {
		return nil, fmt.Errorf("decoding combatant %q: %w", id, err)
	}
	c.ID = id
	c.Version = version
	return &c, nil
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	// pgx wraps PostgreSQL errors; check for SQLSTATE 23505 (unique_violation)
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
