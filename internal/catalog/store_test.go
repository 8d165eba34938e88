package catalog

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rutaguard/rutaguard/internal/core/db"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	conn, err := db.Open("sqlite://" + filepath.Join(t.TempDir(), "catalog.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.MigrateUp(conn); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	q, err := db.LoadQueries(conn)
	if err != nil {
		t.Fatalf("LoadQueries() error = %v", err)
	}
	return NewStore(q)
}

func TestStore_ImportAndLoadActive(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	f, err := Parse(strings.NewReader(sampleCatalogue))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	n, err := store.Import(ctx, f)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if n != 2 {
		t.Fatalf("Import() = %d rules, want 2", n)
	}

	reg, err := store.LoadActive(ctx)
	if err != nil {
		t.Fatalf("LoadActive() error = %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", reg.Len())
	}

	// JSON round-trip through the guard/checks columns must preserve the
	// compare threshold as a number.
	in2, ok := reg.Get("IN2")
	if !ok {
		t.Fatal("rule IN2 not found after round-trip")
	}
	cmp := in2.Checks[0].Cond
	if !cmp.Value.IsNum || cmp.Value.Num != 45 {
		t.Errorf("IN2 threshold after round-trip = %+v, want numeric 45", cmp.Value)
	}
}

func TestStore_ImportIsIdempotent(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	f, err := Parse(strings.NewReader(sampleCatalogue))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := store.Import(ctx, f); err != nil {
			t.Fatalf("Import() pass %d error = %v", i+1, err)
		}
	}

	reg, err := store.LoadActive(ctx)
	if err != nil {
		t.Fatalf("LoadActive() error = %v", err)
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d after double import, want 2", reg.Len())
	}
}

func TestStore_ImportRejectsBrokenCatalogue(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	f := &File{
		Version: 1,
		Rules: []RuleDef{
			{
				ID:    "BAD",
				Guard: CondDef{Present: &FieldDef{Field: "a"}},
				// No checks: the registry rejects this before any write.
			},
		},
	}
	if _, err := store.Import(ctx, f); err == nil {
		t.Fatal("Import() accepted a catalogue with no checks")
	}

	reg, err := store.LoadActive(ctx)
	if err != nil {
		t.Fatalf("LoadActive() error = %v", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d after rejected import, want 0", reg.Len())
	}
}

func TestStore_Deactivate(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	f, err := Parse(strings.NewReader(sampleCatalogue))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if _, err := store.Import(ctx, f); err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	if err := store.Deactivate(ctx, "IN2"); err != nil {
		t.Fatalf("Deactivate() error = %v", err)
	}

	reg, err := store.LoadActive(ctx)
	if err != nil {
		t.Fatalf("LoadActive() error = %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("Len() = %d after deactivate, want 1", reg.Len())
	}
	if _, ok := reg.Get("IN2"); ok {
		t.Error("deactivated rule IN2 still active")
	}

	if err := store.Deactivate(ctx, "NOPE"); err == nil {
		t.Error("Deactivate() succeeded for unknown rule")
	}
}
