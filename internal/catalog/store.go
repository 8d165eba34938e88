package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rutaguard/rutaguard/internal/core/db"
	"github.com/rutaguard/rutaguard/internal/rules"
)

// Store reads and writes catalogues in the catalog_rules table. Guard and
// checks columns carry the same JSON shape the YAML schema uses, so a rule
// imported from a file round-trips without a second format.
type Store struct {
	q *db.Queries
}

// NewStore wraps a query set.
func NewStore(q *db.Queries) *Store {
	return &Store{q: q}
}

type ruleRow struct {
	RuleID      string `db:"rule_id"`
	Description string `db:"description"`
	Severity    string `db:"severity"`
	Guard       string `db:"guard"`
	Checks      string `db:"checks"`
}

// LoadActive loads every active rule and builds a validated registry.
func (s *Store) LoadActive(ctx context.Context) (*rules.Registry, error) {
	var rows []ruleRow
	if err := s.q.Select(ctx, "list-active-rules", &rows); err != nil {
		return nil, fmt.Errorf("could not load catalogue rules: %w", err)
	}

	defs := make([]RuleDef, len(rows))
	for i, row := range rows {
		def := RuleDef{
			ID:          row.RuleID,
			Description: row.Description,
			Severity:    row.Severity,
		}
		if err := json.Unmarshal([]byte(row.Guard), &def.Guard); err != nil {
			return nil, fmt.Errorf("rule %q: malformed guard: %w", row.RuleID, err)
		}
		if err := json.Unmarshal([]byte(row.Checks), &def.Checks); err != nil {
			return nil, fmt.Errorf("rule %q: malformed checks: %w", row.RuleID, err)
		}
		defs[i] = def
	}

	f := &File{Version: 1, Rules: defs}
	return f.Registry()
}

// Import upserts every rule of a catalogue file. The file is validated as a
// whole first so a partial import cannot leave a broken catalogue behind.
func (s *Store) Import(ctx context.Context, f *File) (int, error) {
	if _, err := f.Registry(); err != nil {
		return 0, err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, def := range f.Rules {
		guard, err := json.Marshal(def.Guard)
		if err != nil {
			return 0, fmt.Errorf("rule %q: could not encode guard: %w", def.ID, err)
		}
		checks, err := json.Marshal(def.Checks)
		if err != nil {
			return 0, fmt.Errorf("rule %q: could not encode checks: %w", def.ID, err)
		}

		_, err = s.q.Exec(ctx, "upsert-rule",
			def.ID, def.Description, def.Severity, string(guard), string(checks), now)
		if err != nil {
			return 0, fmt.Errorf("rule %q: could not store rule: %w", def.ID, err)
		}
	}
	return len(f.Rules), nil
}

// Deactivate marks a rule inactive without deleting its definition.
func (s *Store) Deactivate(ctx context.Context, ruleID string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.q.Exec(ctx, "deactivate-rule", now, ruleID)
	if err != nil {
		return fmt.Errorf("could not deactivate rule %q: %w", ruleID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("rule %q not found", ruleID)
	}
	return nil
}
