// Package types provides domain models shared across RutaGuard components.
//
// Zero-dependency design: types.go and errors.go use only the standard library
// so the core engine can be embedded without pulling in storage or CLI deps.
// ID utilities in ids.go import uuid but are isolated for selective inclusion.
package types

import (
	"strconv"
	"strings"
	"unicode"
)

// Value is a scalar cell value taken from a source row.
// The raw text is kept verbatim for reporting; the numeric form is parsed once
// at load time so comparisons never re-parse per lookup.
type Value struct {
	Raw   string  // original text, untrimmed
	Num   float64 // numeric form (meaningful only when IsNum)
	IsNum bool    // true when Raw parses as a number
}

// StringValue builds a Value from raw cell text, detecting numeric content.
// "08" and "8" both parse to 8 so formatting differences never flip a rule.
func StringValue(raw string) Value {
	v := Value{Raw: raw}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return v
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		v.Num = n
		v.IsNum = true
	}
	return v
}

// NumberValue builds a Value from a numeric literal.
func NumberValue(n float64) Value {
	return Value{
		Raw:   strconv.FormatFloat(n, 'f', -1, 64),
		Num:   n,
		IsNum: true,
	}
}

// IsEmpty reports whether the cell is present but holds no content.
// Distinct from absence: an absent field never produces a Value at all.
func (v Value) IsEmpty() bool {
	return strings.TrimSpace(v.Raw) == ""
}

// Norm returns the trimmed, case-folded text used for string comparison.
func (v Value) Norm() string {
	return strings.ToLower(strings.TrimSpace(v.Raw))
}

// Record is one row under validation: an ordered mapping from normalized field
// name to scalar Value. Immutable once loaded; the engine only reads it.
type Record struct {
	Index int // position in the batch, 0-based
	Row   int // source spreadsheet row number (1-based, header included)

	fields map[string]Value
	names  []string // normalized names in source column order
}

// NewRecord creates an empty record with its batch position and source row.
func NewRecord(index, row int) *Record {
	return &Record{
		Index:  index,
		Row:    row,
		fields: make(map[string]Value),
	}
}

// Set stores a field value under the normalized form of name.
// Normalization happens here, at load time, never per lookup.
func (r *Record) Set(name string, v Value) {
	key := NormalizeFieldName(name)
	if _, ok := r.fields[key]; !ok {
		r.names = append(r.names, key)
	}
	r.fields[key] = v
}

// Get resolves a field by its normalized name.
// The second return distinguishes "field missing" from "present but empty".
func (r *Record) Get(name string) (Value, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Fields returns the normalized field names in source column order.
func (r *Record) Fields() []string {
	return r.names
}

// NormalizeFieldName trims, case-folds, and collapses inner whitespace so
// "Unidad  Saliente " and "unidad saliente" address the same column.
func NormalizeFieldName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// ValidFieldName reports whether a normalized field name is usable in a rule.
func ValidFieldName(name string) bool {
	if name == "" || len(name) > MaxFieldNameLength {
		return false
	}
	for _, c := range name {
		if unicode.IsControl(c) {
			return false
		}
	}
	return true
}

// Severity classifies how a violation should be treated by reporters.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

// String returns the catalogue spelling of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	default:
		return "error"
	}
}

// ParseSeverity converts the catalogue spelling to a Severity.
// Empty input defaults to error.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "error":
		return SeverityError, true
	case "warning", "warn":
		return SeverityWarning, true
	default:
		return SeverityError, false
	}
}

// ViolationKind distinguishes definite failures from missing-data findings and
// engine diagnostics so reporters never conflate them.
type ViolationKind int

const (
	// KindCheckFailed is a normal validation finding: the rule applied and a
	// check evaluated to false.
	KindCheckFailed ViolationKind = iota

	// KindMissingData means the rule applied but a check could not be
	// evaluated because a field it needs is absent. Data incompleteness is
	// itself reportable.
	KindMissingData

	// KindEngineError is a diagnostic produced when evaluating one rule
	// against one record failed unexpectedly. Never aborts the batch.
	KindEngineError
)

// String returns the report spelling of the kind.
func (k ViolationKind) String() string {
	switch k {
	case KindMissingData:
		return "missing-data"
	case KindEngineError:
		return "engine-error"
	default:
		return "check-failed"
	}
}

// Violation is the engine's output unit: one reported failure tied to a
// record and a rule. Produced once, never mutated.
type Violation struct {
	RecordIndex int    // batch position of the record
	Row         int    // source row number for traceability
	RuleID      string // rule that produced the finding
	Field       string // primary offending column (empty for engine errors)
	Message     string // rendered failure message
	Severity    Severity
	Kind        ViolationKind
}

// Skip records a rule whose applicability could not be determined for a
// record (guard touched an absent field). Distinguishable from "rule passed".
type Skip struct {
	RecordIndex int
	Row         int
	RuleID      string
	Reason      string
}

// Report is the complete outcome of one validation run.
// Violations are ordered by record index, then rule id.
type Report struct {
	RunID       RunID
	RecordCount int
	RuleCount   int
	Violations  []Violation
	Skips       []Skip
}

// Resource limits enforced at catalogue load time, never during evaluation.
const (
	// MaxFieldNameLength bounds rule field references; generous for
	// spreadsheet column headers.
	MaxFieldNameLength = 128

	// MaxConditionDepth prevents stack exhaustion from pathological
	// all/any/not nesting in a catalogue.
	MaxConditionDepth = 16

	// MaxInSetValues bounds membership sets so evaluation stays linear in
	// practice. 64 covers typical reason-code enumerations.
	MaxInSetValues = 64

	// MaxChecksPerRule bounds per-rule work; a rule needing more checks
	// should be split.
	MaxChecksPerRule = 64

	// MaxRecords caps one batch to keep memory bounded; larger inputs
	// should be chunked by the caller.
	MaxRecords = 1_000_000
)
