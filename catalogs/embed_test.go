package catalogs

import (
	"context"
	"testing"

	"github.com/rutaguard/rutaguard/internal/rules"
	"github.com/rutaguard/rutaguard/internal/types"
)

func TestDefault_Loads(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	want := []string{"IN1", "IN2", "IN3", "IN4", "IN5", "IN6", "IN7", "SPSR"}
	if reg.Len() != len(want) {
		t.Fatalf("Len() = %d, want %d", reg.Len(), len(want))
	}
	for _, id := range want {
		if _, ok := reg.Get(id); !ok {
			t.Errorf("rule %s missing from default catalogue", id)
		}
	}
}

// A change-of-unit row missing its outgoing-unit data must violate IN7 and
// nothing else; service-zero rows stay out of every other rule.
func TestDefault_IN7Scenario(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	rec := types.NewRecord(0, 2)
	for name, val := range map[string]string{
		"Recorrido":         "R12",
		"Servicio":          "0",
		"Unidad":            "102",
		"Salida programada": "14:00",
		"Salida real":       "14:00",
		"Hora de llegada":   "15:10",
		"Ciclo":             "70",
		"Unidad saliente":   "",
		"Hora cambio":       "",
		"Parada":            "Terminal",
		"Incidencia":        "IN7",
		"Motivo":            "8|29",
		"Código":            "12",
		"Conductor":         "PEREZ",
		"Observaciones":     "cambio por falla",
	} {
		rec.Set(name, types.StringValue(val))
	}

	engine := rules.NewEngine(1)
	rep, err := engine.Run(context.Background(), reg, []*types.Record{rec})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(rep.Violations) != 1 {
		t.Fatalf("violations = %+v, want exactly one", rep.Violations)
	}
	v := rep.Violations[0]
	if v.RuleID != "IN7" {
		t.Errorf("RuleID = %s, want IN7", v.RuleID)
	}
	// First failing check is the missing Hora cambio.
	if v.Field != "hora cambio" {
		t.Errorf("Field = %q, want hora cambio", v.Field)
	}
}

func TestDefault_CleanRowPasses(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	rec := types.NewRecord(0, 2)
	for name, val := range map[string]string{
		"Recorrido":         "R12",
		"Servicio":          "7",
		"Unidad":            "102",
		"Salida programada": "14:00",
		"Salida real":       "14:00",
		"Hora de llegada":   "15:10",
		"Ciclo":             "70",
		"Unidad saliente":   "",
		"Hora cambio":       "",
		"Parada":            "",
		"Incidencia":        "",
		"Motivo":            "",
		"Código":            "",
		"Conductor":         "PEREZ",
		"Observaciones":     "",
	} {
		rec.Set(name, types.StringValue(val))
	}

	engine := rules.NewEngine(1)
	rep, err := engine.Run(context.Background(), reg, []*types.Record{rec})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rep.Violations) != 0 {
		t.Errorf("violations = %+v, want none", rep.Violations)
	}
}
