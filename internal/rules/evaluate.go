package rules

import (
	"fmt"

	"github.com/rutaguard/rutaguard/internal/types"
)

/*
 * Condition evaluation with three-valued logic.
 *
 * Evaluate maps (Condition, Record) to True, False, or Indeterminate.
 * Indeterminate means "cannot be determined because required data is
 * missing" and originates only from equals/in/compare touching an absent
 * field. Treating missing data as implicitly false would silently hide
 * validation errors caused by incomplete source rows; the engine surfaces
 * the ambiguity instead of guessing.
 *
 * Propagation (Kleene semantics):
 *   - all: any False operand -> False; else any Indeterminate -> Indeterminate
 *   - any: any True operand -> True; else any Indeterminate -> Indeterminate
 *   - not(Indeterminate) = Indeterminate
 *
 * present/absent never return Indeterminate: they are the tools rules use
 * to guard against missing data explicitly. Presence requires non-empty
 * content, matching how dispatch sheets use blank cells for "no value".
 *
 * Evaluation assumes the condition tree passed registry validation; an
 * unspecified kind or operator at this point is a programming error and
 * panics, which the batch engine converts into a per-(record, rule)
 * diagnostic violation.
 */

// Outcome is the three-valued result of evaluating a condition.
type Outcome int

const (
	OutcomeFalse Outcome = iota
	OutcomeTrue
	OutcomeIndeterminate
)

// String returns the report spelling of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeTrue:
		return "true"
	case OutcomeFalse:
		return "false"
	default:
		return "indeterminate"
	}
}

// Evaluate applies the condition to the record.
func Evaluate(cond Condition, rec *types.Record) Outcome {
	switch cond.Kind {
	case CondPresent:
		v, ok := rec.Get(cond.Field)
		return fromBool(ok && !v.IsEmpty())

	case CondAbsent:
		v, ok := rec.Get(cond.Field)
		return fromBool(!ok || v.IsEmpty())

	case CondEquals:
		v, ok := rec.Get(cond.Field)
		if !ok {
			return OutcomeIndeterminate
		}
		return fromBool(valuesEqual(v, cond.Value))

	case CondInSet:
		v, ok := rec.Get(cond.Field)
		if !ok {
			return OutcomeIndeterminate
		}
		for _, member := range cond.Values {
			if valuesEqual(v, member) {
				return OutcomeTrue
			}
		}
		return OutcomeFalse

	case CondCompare:
		v, ok := rec.Get(cond.Field)
		if !ok {
			return OutcomeIndeterminate
		}
		target := cond.Value
		if cond.Ref != "" {
			ref, refOK := rec.Get(cond.Ref)
			if !refOK {
				return OutcomeIndeterminate
			}
			target = ref
		}
		return fromBool(compareValues(cond.Op, v, target))

	case CondAll:
		out := OutcomeTrue
		for _, arg := range cond.Args {
			switch Evaluate(arg, rec) {
			case OutcomeFalse:
				return OutcomeFalse
			case OutcomeIndeterminate:
				out = OutcomeIndeterminate
			}
		}
		return out

	case CondAny:
		out := OutcomeFalse
		for _, arg := range cond.Args {
			switch Evaluate(arg, rec) {
			case OutcomeTrue:
				return OutcomeTrue
			case OutcomeIndeterminate:
				out = OutcomeIndeterminate
			}
		}
		return out

	case CondNot:
		switch Evaluate(cond.Args[0], rec) {
		case OutcomeTrue:
			return OutcomeFalse
		case OutcomeFalse:
			return OutcomeTrue
		default:
			return OutcomeIndeterminate
		}

	default:
		panic(fmt.Sprintf("rules: cannot evaluate condition kind %d", cond.Kind))
	}
}

func fromBool(b bool) Outcome {
	if b {
		return OutcomeTrue
	}
	return OutcomeFalse
}
