package rules

import (
	"github.com/rutaguard/rutaguard/internal/types"
)

/*
 * Condition model for incidence rules.
 *
 * Conditions are a tagged variant: one struct with a Kind discriminator
 * instead of an interface per predicate. New rules are expressed as data in
 * a catalogue, not as new code paths, so each condition kind can be unit
 * tested in isolation and the catalogue stays declarative.
 *
 * Kinds:
 *   - equals/in: value comparison against a literal or a set of codes
 *   - present/absent: explicit missing-data guards (never Indeterminate)
 *   - compare: ordered comparison against a literal or a companion field
 *   - all/any/not: composition with Kleene three-valued semantics
 *
 * Why function-based: operator dispatch via switch statement over an enum,
 * matching the rest of the codebase, rather than interface polymorphism
 * with minimal behavior variation per implementation.
 */

// CondKind discriminates the condition variants.
type CondKind int

const (
	CondUnspecified CondKind = iota
	CondEquals               // field equals a literal value
	CondInSet                // field is a member of a value set
	CondPresent              // field is present with non-empty content
	CondAbsent               // field is missing or empty
	CondCompare              // ordered comparison against literal or companion field
	CondAll                  // all operands hold (three-valued AND)
	CondAny                  // at least one operand holds (three-valued OR)
	CondNot                  // negation of a single operand
)

// String returns the catalogue spelling of the kind.
func (k CondKind) String() string {
	switch k {
	case CondEquals:
		return "equals"
	case CondInSet:
		return "in"
	case CondPresent:
		return "present"
	case CondAbsent:
		return "absent"
	case CondCompare:
		return "compare"
	case CondAll:
		return "all"
	case CondAny:
		return "any"
	case CondNot:
		return "not"
	default:
		return "unspecified"
	}
}

// CompareOp enumerates the comparison operators for CondCompare.
type CompareOp int

const (
	OpUnspecified CompareOp = iota
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
)

// String returns the catalogue spelling of the operator.
func (op CompareOp) String() string {
	switch op {
	case OpEq:
		return "eq"
	case OpNeq:
		return "neq"
	case OpLt:
		return "lt"
	case OpLte:
		return "lte"
	case OpGt:
		return "gt"
	case OpGte:
		return "gte"
	default:
		return "unspecified"
	}
}

// ParseCompareOp converts the catalogue spelling to a CompareOp.
func ParseCompareOp(s string) (CompareOp, bool) {
	switch s {
	case "eq", "==":
		return OpEq, true
	case "neq", "!=":
		return OpNeq, true
	case "lt", "<":
		return OpLt, true
	case "lte", "<=":
		return OpLte, true
	case "gt", ">":
		return OpGt, true
	case "gte", ">=":
		return OpGte, true
	default:
		return OpUnspecified, false
	}
}

// Condition is a pure predicate over a Record. Evaluating one never mutates
// state. Field and Ref names are normalized once when the registry is built,
// not per evaluation.
type Condition struct {
	Kind   CondKind
	Field  string        // subject field (all kinds except all/any/not)
	Value  types.Value   // literal for equals and compare
	Values []types.Value // membership set for in
	Ref    string        // companion field for compare (mutually exclusive with Value)
	Op     CompareOp     // comparator for compare
	Args   []Condition   // operands for all/any/not
}

// Equals builds an equality condition against a literal.
func Equals(field string, value types.Value) Condition {
	return Condition{Kind: CondEquals, Field: field, Value: value}
}

// InSet builds a membership condition over a set of code values.
func InSet(field string, values ...types.Value) Condition {
	return Condition{Kind: CondInSet, Field: field, Values: values}
}

// Present builds a presence condition: field exists with non-empty content.
func Present(field string) Condition {
	return Condition{Kind: CondPresent, Field: field}
}

// Absent builds an absence condition: field missing or empty.
func Absent(field string) Condition {
	return Condition{Kind: CondAbsent, Field: field}
}

// CompareLit builds an ordered comparison against a literal value.
func CompareLit(field string, op CompareOp, value types.Value) Condition {
	return Condition{Kind: CondCompare, Field: field, Op: op, Value: value}
}

// CompareField builds an ordered comparison against a companion field.
func CompareField(field string, op CompareOp, ref string) Condition {
	return Condition{Kind: CondCompare, Field: field, Op: op, Ref: ref}
}

// All builds a conjunction over the given conditions.
func All(args ...Condition) Condition {
	return Condition{Kind: CondAll, Args: args}
}

// Any builds a disjunction over the given conditions.
func Any(args ...Condition) Condition {
	return Condition{Kind: CondAny, Args: args}
}

// Not builds the negation of a single condition.
func Not(arg Condition) Condition {
	return Condition{Kind: CondNot, Args: []Condition{arg}}
}

// FieldRefs returns every field name the condition tree touches, in
// first-reference order without duplicates. Used for skip diagnostics.
func (c Condition) FieldRefs() []string {
	var out []string
	seen := make(map[string]bool)
	c.collectFields(seen, &out)
	return out
}

func (c Condition) collectFields(seen map[string]bool, out *[]string) {
	if c.Field != "" && !seen[c.Field] {
		seen[c.Field] = true
		*out = append(*out, c.Field)
	}
	if c.Ref != "" && !seen[c.Ref] {
		seen[c.Ref] = true
		*out = append(*out, c.Ref)
	}
	for _, arg := range c.Args {
		arg.collectFields(seen, out)
	}
}
