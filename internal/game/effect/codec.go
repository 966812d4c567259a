package effect

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// MarshalYAML renders the ledger as a plain list of entries.
func (l Ledger) MarshalYAML() (interface{}, error) {
	if l.entries == nil {
		return []Entry{}, nil
	}
	return l.entries, nil
}

// UnmarshalYAML reads a list of entries. Entries are trusted as persisted and
// are not re-validated, so a ledger written by an older rule set still loads.
func (l *Ledger) UnmarshalYAML(node *yaml.Node) error {
	var entries []Entry
	if err := node.Decode(&entries); err != nil {
		return fmt.Errorf("decoding effect ledger: %w", err)
	}
	l.entries = entries
	return nil
}

// MarshalJSON renders the ledger as a JSON array.
func (l Ledger) MarshalJSON() ([]byte, error) {
	if l.entries == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.entries)
}

// UnmarshalJSON reads a JSON array of entries.
func (l *Ledger) UnmarshalJSON(data []byte) error {
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("decoding effect ledger: %w", err)
	}
	l.entries = entries
	return nil
}

// Export renders the ledger block shown at the persistence boundary.
//
// Postcondition: Unmarshalling the result into a Ledger yields equal Entries().
func Export(l *Ledger) ([]byte, error) {
	data, err := yaml.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("exporting effect ledger: %w", err)
	}
	return data, nil
}
