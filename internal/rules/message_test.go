package rules

import (
	"testing"
)

func TestRenderMessage(t *testing.T) {
	rec := testRecord(0, map[string]string{
		"Motivo":          "8|29",
		"Unidad saliente": " 1420 ",
		"Observaciones":   "",
	})

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			"single placeholder",
			"motivo {Motivo} requiere unidad",
			"motivo 8|29 requiere unidad",
		},
		{
			"placeholder uses spreadsheet spelling",
			"unidad {Unidad Saliente} ya salió",
			"unidad 1420 ya salió",
		},
		{
			"absent field placeholder",
			"hora {Hora cambio} inválida",
			"hora " + AbsentPlaceholder + " inválida",
		},
		{
			"empty field renders empty",
			"obs: [{Observaciones}]",
			"obs: []",
		},
		{
			"no placeholders",
			"mensaje plano",
			"mensaje plano",
		},
		{
			"unterminated brace verbatim",
			"texto {sin cierre",
			"texto {sin cierre",
		},
		{
			"multiple placeholders",
			"{Motivo}/{Unidad saliente}",
			"8|29/1420",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RenderMessage(tt.template, rec); got != tt.want {
				t.Errorf("RenderMessage(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}
