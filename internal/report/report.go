// Package report renders validation results for people and for spreadsheets.
//
// Two shapes: a text summary for the terminal, and a CSV export that echoes
// the offending rows with their findings so dispatchers can fix the source
// sheet directly.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/rutaguard/rutaguard/internal/types"
)

// WriteText renders a human-readable summary. Findings are already ordered
// by row and rule id; this only formats.
func WriteText(w io.Writer, rep *types.Report) error {
	if _, err := fmt.Fprintf(w, "run %s: %d records, %d rules, %d violations, %d skips\n",
		rep.RunID, rep.RecordCount, rep.RuleCount, len(rep.Violations), len(rep.Skips)); err != nil {
		return err
	}

	for _, v := range rep.Violations {
		line := fmt.Sprintf("  row %d [%s] %s: %s", v.Row, v.RuleID, v.Severity, v.Message)
		if v.Kind == types.KindMissingData {
			line += " (datos incompletos)"
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	for _, s := range rep.Skips {
		if _, err := fmt.Fprintf(w, "  row %d [%s] skipped: %s\n", s.Row, s.RuleID, s.Reason); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV exports every violating record as a CSV row: the source columns
// as loaded, plus an "incidencias" column joining the findings for that row
// and a "columnas" column naming the fields involved.
func WriteCSV(w io.Writer, rep *types.Report, records []*types.Record) error {
	byIndex := make(map[int]*types.Record, len(records))
	for _, rec := range records {
		byIndex[rec.Index] = rec
	}

	// Column order follows the first violating record's source order;
	// later records may add columns the first one lacked.
	var columns []string
	seen := make(map[string]bool)
	violating := make(map[int][]types.Violation)
	var order []int
	for _, v := range rep.Violations {
		if _, ok := violating[v.RecordIndex]; !ok {
			order = append(order, v.RecordIndex)
		}
		violating[v.RecordIndex] = append(violating[v.RecordIndex], v)
		if rec, ok := byIndex[v.RecordIndex]; ok {
			for _, name := range rec.Fields() {
				if !seen[name] {
					seen[name] = true
					columns = append(columns, name)
				}
			}
		}
	}
	sort.Ints(order)

	cw := csv.NewWriter(w)
	header := append(append([]string{"fila"}, columns...), "incidencias", "columnas")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, idx := range order {
		rec := byIndex[idx]
		vs := violating[idx]

		row := make([]string, 0, len(header))
		if rec != nil {
			row = append(row, fmt.Sprintf("%d", rec.Row))
		} else {
			row = append(row, fmt.Sprintf("%d", vs[0].Row))
		}
		for _, name := range columns {
			var raw string
			if rec != nil {
				if v, ok := rec.Get(name); ok {
					raw = v.Raw
				}
			}
			row = append(row, raw)
		}

		var findings, fields []string
		fieldSeen := make(map[string]bool)
		for _, v := range vs {
			findings = append(findings, fmt.Sprintf("[%s] %s", v.RuleID, v.Message))
			if v.Field != "" && !fieldSeen[v.Field] {
				fieldSeen[v.Field] = true
				fields = append(fields, v.Field)
			}
		}
		row = append(row, strings.Join(findings, "; "), strings.Join(fields, ", "))

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
