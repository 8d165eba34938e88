// Package records loads tabular dispatch exports into engine records.
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rutaguard/rutaguard/internal/types"
)

// ErrNoHeader reports an input with no header row.
var ErrNoHeader = errors.New("input has no header row")

// ReadCSV parses a CSV export into records. The first row is the header;
// field names are normalized once here. Row numbers are 1-based and count
// the header, matching what dispatchers see in their spreadsheet.
func ReadCSV(r io.Reader) ([]*types.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	// Exports from the dispatch sheet occasionally have ragged rows.
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("could not read header: %w", err)
	}

	var out []*types.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(out)+2, err)
		}

		rec := types.NewRecord(len(out), len(out)+2)
		for i, name := range header {
			if i >= len(row) {
				break
			}
			rec.Set(name, cellValue(row[i]))
		}
		out = append(out, rec)

		if len(out) > types.MaxRecords {
			return nil, types.ErrTooManyRecords
		}
	}
	return out, nil
}

// LoadCSV reads a CSV export from disk.
func LoadCSV(path string) ([]*types.Record, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", path, err)
	}
	defer fh.Close()

	recs, err := ReadCSV(fh)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return recs, nil
}

// cellValue converts one cell to a Value. Sheets exported through pandas
// write literal "nan" into blank cells; those count as empty.
func cellValue(cell string) types.Value {
	if strings.EqualFold(strings.TrimSpace(cell), "nan") {
		return types.StringValue("")
	}
	return types.StringValue(cell)
}
