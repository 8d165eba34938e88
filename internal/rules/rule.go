package rules

import (
	"fmt"
	"strings"

	"github.com/rutaguard/rutaguard/internal/types"
)

/*
 * Rule application.
 *
 * A rule is a guard condition ("applies-when") plus an ordered list of
 * checks ("must-hold"), each with a failure-message template. Apply yields
 * at most one violation per record even when several checks fail: the first
 * non-passing check in list order wins, keeping output stable and
 * non-redundant across runs.
 *
 * Guard semantics:
 *   - False         -> rule does not apply, no output
 *   - Indeterminate -> skip, recorded so the caller can tell "did not
 *                      apply" from "could not be evaluated"
 *   - True          -> checks run in order
 *
 * Check semantics: first check that is not True produces the violation.
 * False yields a check-failed violation with the rendered template;
 * Indeterminate yields a missing-data violation naming the absent fields,
 * because incomplete source data is itself a reportable finding rather
 * than a silent pass.
 */

// Check is one must-hold condition with its failure-message template.
// Templates interpolate record values via {Field Name} placeholders.
type Check struct {
	Cond    Condition
	Message string
}

// Rule is a named incidence rule: guard plus ordered checks.
// Invariants (enforced by NewRegistry): ID unique, Checks non-empty.
type Rule struct {
	ID          string
	Description string
	Severity    types.Severity
	Guard       Condition
	Checks      []Check
}

// Apply evaluates the rule against one record.
// Returns at most one of violation or skip; both nil means the rule either
// did not apply or all checks passed.
func (r *Rule) Apply(rec *types.Record) (*types.Violation, *types.Skip) {
	switch Evaluate(r.Guard, rec) {
	case OutcomeFalse:
		return nil, nil
	case OutcomeIndeterminate:
		return nil, &types.Skip{
			RecordIndex: rec.Index,
			Row:         rec.Row,
			RuleID:      r.ID,
			Reason:      fmt.Sprintf("guard not evaluable: missing %s", strings.Join(missingFields(r.Guard, rec), ", ")),
		}
	}

	for _, check := range r.Checks {
		switch Evaluate(check.Cond, rec) {
		case OutcomeTrue:
			continue
		case OutcomeFalse:
			return &types.Violation{
				RecordIndex: rec.Index,
				Row:         rec.Row,
				RuleID:      r.ID,
				Field:       subjectField(check.Cond),
				Message:     r.renderCheck(check, rec),
				Severity:    r.Severity,
				Kind:        types.KindCheckFailed,
			}, nil
		case OutcomeIndeterminate:
			missing := missingFields(check.Cond, rec)
			return &types.Violation{
				RecordIndex: rec.Index,
				Row:         rec.Row,
				RuleID:      r.ID,
				Field:       subjectField(check.Cond),
				Message:     fmt.Sprintf("check not evaluable: missing %s", strings.Join(missing, ", ")),
				Severity:    r.Severity,
				Kind:        types.KindMissingData,
			}, nil
		}
	}

	return nil, nil
}

// renderCheck renders the check's message template, falling back to a
// generated message when the catalogue left the template empty.
func (r *Rule) renderCheck(check Check, rec *types.Record) string {
	if check.Message != "" {
		return RenderMessage(check.Message, rec)
	}
	if f := subjectField(check.Cond); f != "" {
		return fmt.Sprintf("%s: check failed on %q", r.ID, f)
	}
	return fmt.Sprintf("%s: check failed", r.ID)
}

// subjectField returns the primary column a condition is about, descending
// into composites until a field reference is found.
func subjectField(cond Condition) string {
	if cond.Field != "" {
		return cond.Field
	}
	for _, arg := range cond.Args {
		if f := subjectField(arg); f != "" {
			return f
		}
	}
	return ""
}

// missingFields lists the fields a condition references that the record
// does not carry, in reference order.
func missingFields(cond Condition, rec *types.Record) []string {
	var out []string
	for _, f := range cond.FieldRefs() {
		if _, ok := rec.Get(f); !ok {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		// Indeterminate without an absent field should not happen; keep the
		// message well-formed if it ever does.
		out = append(out, "<unknown>")
	}
	return out
}
