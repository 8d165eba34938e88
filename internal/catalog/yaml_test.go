package catalog

import (
	"errors"
	"strings"
	"testing"

	"github.com/rutaguard/rutaguard/internal/rules"
	"github.com/rutaguard/rutaguard/internal/types"
)

const sampleCatalogue = `
version: 1
rules:
  - id: IN7
    description: Cambio de unidad
    severity: error
    guard:
      in:
        field: Motivo
        values: ["8|29", "8|35"]
    checks:
      - cond:
          present:
            field: Unidad saliente
        message: "Falta unidad saliente en cambio de unidad"
      - cond:
          present:
            field: Hora cambio
  - id: IN2
    severity: warning
    guard:
      equals:
        field: Motivo
        value: "8|12"
    checks:
      - cond:
          compare:
            field: Retraso
            op: lte
            value: 45
`

func TestParse_Sample(t *testing.T) {
	f, err := Parse(strings.NewReader(sampleCatalogue))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(f.Rules) != 2 {
		t.Fatalf("len(Rules) = %d, want 2", len(f.Rules))
	}

	reg, err := f.Registry()
	if err != nil {
		t.Fatalf("Registry() error = %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", reg.Len())
	}

	in7, ok := reg.Get("IN7")
	if !ok {
		t.Fatal("rule IN7 not found")
	}
	if in7.Severity != types.SeverityError {
		t.Errorf("IN7 severity = %v, want error", in7.Severity)
	}
	if len(in7.Checks) != 2 {
		t.Fatalf("IN7 checks = %d, want 2", len(in7.Checks))
	}
	if in7.Guard.Kind != rules.CondInSet {
		t.Errorf("IN7 guard kind = %v, want in-set", in7.Guard.Kind)
	}
	// Registry construction normalizes every field reference.
	if got := in7.Checks[0].Cond.Field; got != "unidad saliente" {
		t.Errorf("IN7 check field = %q, want normalized name", got)
	}

	in2, _ := reg.Get("IN2")
	if in2.Severity != types.SeverityWarning {
		t.Errorf("IN2 severity = %v, want warning", in2.Severity)
	}
	cmp := in2.Checks[0].Cond
	if cmp.Kind != rules.CondCompare || cmp.Op != rules.OpLte {
		t.Errorf("IN2 check = kind %v op %v", cmp.Kind, cmp.Op)
	}
	if !cmp.Value.IsNum || cmp.Value.Num != 45 {
		t.Errorf("IN2 threshold = %+v, want numeric 45", cmp.Value)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "version: 1\nrules:\n  - id: X\n    bogus: true\n    guard: {present: {field: a}}\n    checks: [{cond: {present: {field: b}}}]"},
		{"wrong version", "version: 2\nrules: []"},
		{"not yaml", "{{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(strings.NewReader(tt.doc)); err == nil {
				t.Error("Parse() succeeded, want error")
			}
		})
	}
}

func TestCondDef_ExactlyOneVariant(t *testing.T) {
	none := CondDef{}
	if _, err := none.Condition(); err == nil {
		t.Error("empty condition accepted")
	}

	two := CondDef{
		Present: &FieldDef{Field: "a"},
		Absent:  &FieldDef{Field: "a"},
	}
	if _, err := two.Condition(); err == nil {
		t.Error("double-variant condition accepted")
	}
}

func TestCompareDef_Validation(t *testing.T) {
	bad := CompareDef{Field: "a", Op: "between", Value: "1"}
	if _, err := bad.condition(); !errors.Is(err, types.ErrUnknownOperator) {
		t.Errorf("unknown op error = %v, want ErrUnknownOperator", err)
	}

	both := CompareDef{Field: "a", Op: "gt", Value: "1", Other: "b"}
	if _, err := both.condition(); err == nil {
		t.Error("value+other accepted, want error")
	}

	ref := CompareDef{Field: "Hora cambio", Op: "gte", Other: "Hora entrada"}
	cond, err := ref.condition()
	if err != nil {
		t.Fatalf("field compare error = %v", err)
	}
	if cond.Ref != "Hora entrada" {
		t.Errorf("Ref = %q", cond.Ref)
	}
}

func TestRuleDef_BadSeverity(t *testing.T) {
	def := RuleDef{
		ID:       "X1",
		Severity: "fatal",
		Guard:    CondDef{Present: &FieldDef{Field: "a"}},
		Checks:   []CheckDef{{Cond: CondDef{Present: &FieldDef{Field: "b"}}}},
	}
	_, err := def.Rule()
	var cerr *types.CatalogueError
	if !errors.As(err, &cerr) || !errors.Is(err, types.ErrUnknownSeverity) {
		t.Errorf("Rule() error = %v, want CatalogueError wrapping ErrUnknownSeverity", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("does/not/exist.yaml"); err == nil {
		t.Error("Load() succeeded on missing file")
	}
}
