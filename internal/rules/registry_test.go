package rules

import (
	"errors"
	"testing"

	"github.com/rutaguard/rutaguard/internal/types"
)

func validRule(id string) Rule {
	return Rule{
		ID:     id,
		Guard:  InSet("Motivo", types.StringValue("8|29")),
		Checks: []Check{{Cond: Present("Unidad saliente"), Message: "falta unidad"}},
	}
}

func TestNewRegistry_Valid(t *testing.T) {
	reg, err := NewRegistry([]Rule{validRule("IN7"), validRule("IN1"), validRule("IN2")})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v, want nil", err)
	}
	if reg.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", reg.Len())
	}

	// Sorted-id iteration order for deterministic evaluation.
	ids := []string{reg.Rules()[0].ID, reg.Rules()[1].ID, reg.Rules()[2].ID}
	want := []string{"IN1", "IN2", "IN7"}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("Rules()[%d].ID = %q, want %q", i, ids[i], want[i])
		}
	}

	if _, ok := reg.Get("IN7"); !ok {
		t.Error("Get(IN7) not found")
	}
	if _, ok := reg.Get("IN9"); ok {
		t.Error("Get(IN9) found, want missing")
	}
}

func TestNewRegistry_NormalizesFieldNames(t *testing.T) {
	rule := Rule{
		ID:    "N1",
		Guard: Equals("  Unidad   Saliente ", types.StringValue("x")),
		Checks: []Check{
			{Cond: CompareField("Hora Cambio", OpGt, "HORA ENTRADA")},
		},
	}
	reg, err := NewRegistry([]Rule{rule})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v, want nil", err)
	}

	got, _ := reg.Get("N1")
	if got.Guard.Field != "unidad saliente" {
		t.Errorf("guard field = %q, want normalized", got.Guard.Field)
	}
	check := got.Checks[0].Cond
	if check.Field != "hora cambio" || check.Ref != "hora entrada" {
		t.Errorf("check fields = (%q, %q), want normalized", check.Field, check.Ref)
	}
}

func TestNewRegistry_Malformed(t *testing.T) {
	deep := Present("a")
	for i := 0; i <= types.MaxConditionDepth; i++ {
		deep = Not(deep)
	}

	manyValues := make([]types.Value, types.MaxInSetValues+1)
	for i := range manyValues {
		manyValues[i] = types.NumberValue(float64(i))
	}

	tests := []struct {
		name      string
		catalogue []Rule
		sentinel  error
	}{
		{
			"duplicate id",
			[]Rule{validRule("IN7"), validRule("IN7")},
			types.ErrDuplicateRuleID,
		},
		{
			"empty id",
			[]Rule{{Guard: Present("x"), Checks: []Check{{Cond: Present("y")}}}},
			types.ErrEmptyRuleID,
		},
		{
			"empty check list",
			[]Rule{{ID: "R", Guard: Present("x")}},
			types.ErrEmptyChecks,
		},
		{
			"unknown condition kind",
			[]Rule{{ID: "R", Guard: Condition{Kind: CondUnspecified}, Checks: []Check{{Cond: Present("y")}}}},
			types.ErrUnknownCondition,
		},
		{
			"bad field name",
			[]Rule{{ID: "R", Guard: Present("   "), Checks: []Check{{Cond: Present("y")}}}},
			types.ErrBadFieldName,
		},
		{
			"unknown operator",
			[]Rule{{ID: "R", Guard: Present("x"), Checks: []Check{{Cond: Condition{Kind: CondCompare, Field: "a", Ref: "b"}}}}},
			types.ErrUnknownOperator,
		},
		{
			"compare without target",
			[]Rule{{ID: "R", Guard: Present("x"), Checks: []Check{{Cond: Condition{Kind: CondCompare, Field: "a", Op: OpGt}}}}},
			types.ErrMissingCompareTarget,
		},
		{
			"empty composite",
			[]Rule{{ID: "R", Guard: All(), Checks: []Check{{Cond: Present("y")}}}},
			types.ErrEmptyBranch,
		},
		{
			"empty membership set",
			[]Rule{{ID: "R", Guard: Condition{Kind: CondInSet, Field: "a"}, Checks: []Check{{Cond: Present("y")}}}},
			types.ErrEmptySet,
		},
		{
			"oversized membership set",
			[]Rule{{ID: "R", Guard: InSet("a", manyValues...), Checks: []Check{{Cond: Present("y")}}}},
			types.ErrTooManyInValues,
		},
		{
			"nesting too deep",
			[]Rule{{ID: "R", Guard: deep, Checks: []Check{{Cond: Present("y")}}}},
			types.ErrConditionTooDeep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.catalogue)
			if err == nil {
				t.Fatal("NewRegistry() error = nil, want CatalogueError")
			}
			var catErr *types.CatalogueError
			if !errors.As(err, &catErr) {
				t.Fatalf("error type = %T, want *types.CatalogueError", err)
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want sentinel %v", err, tt.sentinel)
			}
		})
	}
}

func TestNewRegistry_FailsBeforeEvaluation(t *testing.T) {
	// A malformed catalogue must never yield a usable registry.
	reg, err := NewRegistry([]Rule{validRule("A"), validRule("A")})
	if err == nil {
		t.Fatal("NewRegistry() error = nil, want CatalogueError")
	}
	if reg != nil {
		t.Error("NewRegistry() registry != nil alongside error")
	}
}
