package rules

import (
	"sort"

	"github.com/rutaguard/rutaguard/internal/types"
)

/*
 * Rule registry construction and validation.
 *
 * NewRegistry validates the whole catalogue before any record is evaluated
 * and fails fast with *types.CatalogueError on the first malformed rule.
 * Partial application of a broken catalogue would produce misleading
 * "clean" reports, so there is no lenient mode.
 *
 * Validated per rule: non-empty unique id, non-empty bounded check list,
 * well-formed condition trees (known kinds and operators, valid field
 * names, bounded nesting and membership sets, comparison targets present).
 *
 * Field names in conditions are normalized here, once, so evaluation never
 * normalizes per lookup. The registry is immutable after construction and
 * safe to share across concurrent workers without synchronization; a
 * catalogue change means building a new registry, never mutating rules in
 * place.
 */

// Registry holds the active rule catalogue, keyed by rule id.
type Registry struct {
	rules []Rule // sorted by id for deterministic iteration
	byID  map[string]int
}

// NewRegistry validates the catalogue and builds an immutable registry.
// Returns *types.CatalogueError on the first malformed rule.
func NewRegistry(catalogue []Rule) (*Registry, error) {
	reg := &Registry{
		rules: make([]Rule, 0, len(catalogue)),
		byID:  make(map[string]int, len(catalogue)),
	}

	for _, rule := range catalogue {
		if rule.ID == "" {
			return nil, types.NewCatalogueError("", types.ErrEmptyRuleID)
		}
		if _, dup := reg.byID[rule.ID]; dup {
			return nil, types.NewCatalogueError(rule.ID, types.ErrDuplicateRuleID)
		}
		if len(rule.Checks) == 0 {
			return nil, types.NewCatalogueError(rule.ID, types.ErrEmptyChecks)
		}
		if len(rule.Checks) > types.MaxChecksPerRule {
			return nil, types.NewCatalogueError(rule.ID, types.ErrTooManyChecks)
		}

		guard, err := normalizeCondition(rule.Guard, 0)
		if err != nil {
			return nil, types.NewCatalogueError(rule.ID, err)
		}
		rule.Guard = guard

		checks := make([]Check, len(rule.Checks))
		for i, check := range rule.Checks {
			cond, err := normalizeCondition(check.Cond, 0)
			if err != nil {
				return nil, types.NewCatalogueError(rule.ID, err)
			}
			checks[i] = Check{Cond: cond, Message: check.Message}
		}
		rule.Checks = checks

		reg.byID[rule.ID] = len(reg.rules)
		reg.rules = append(reg.rules, rule)
	}

	sort.Slice(reg.rules, func(i, j int) bool {
		return reg.rules[i].ID < reg.rules[j].ID
	})
	for i, rule := range reg.rules {
		reg.byID[rule.ID] = i
	}

	return reg, nil
}

// Rules returns the catalogue in sorted-id order. Callers must not mutate.
func (r *Registry) Rules() []Rule {
	return r.rules
}

// Get looks up a rule by id.
func (r *Registry) Get(id string) (*Rule, bool) {
	i, ok := r.byID[id]
	if !ok {
		return nil, false
	}
	return &r.rules[i], true
}

// Len returns the number of rules in the catalogue.
func (r *Registry) Len() int {
	return len(r.rules)
}

// normalizeCondition validates one condition tree and returns a copy with
// every field reference normalized. Depth counts composite nesting.
func normalizeCondition(cond Condition, depth int) (Condition, error) {
	if depth > types.MaxConditionDepth {
		return Condition{}, types.ErrConditionTooDeep
	}

	switch cond.Kind {
	case CondPresent, CondAbsent:
		return normalizeSubject(cond)

	case CondEquals:
		return normalizeSubject(cond)

	case CondInSet:
		if len(cond.Values) == 0 {
			return Condition{}, types.ErrEmptySet
		}
		if len(cond.Values) > types.MaxInSetValues {
			return Condition{}, types.ErrTooManyInValues
		}
		return normalizeSubject(cond)

	case CondCompare:
		if cond.Op <= OpUnspecified || cond.Op > OpGte {
			return Condition{}, types.ErrUnknownOperator
		}
		if cond.Ref == "" && cond.Value.Raw == "" && !cond.Value.IsNum {
			return Condition{}, types.ErrMissingCompareTarget
		}
		normalized, err := normalizeSubject(cond)
		if err != nil {
			return Condition{}, err
		}
		if cond.Ref != "" {
			ref := types.NormalizeFieldName(cond.Ref)
			if !types.ValidFieldName(ref) {
				return Condition{}, types.ErrBadFieldName
			}
			normalized.Ref = ref
		}
		return normalized, nil

	case CondAll, CondAny:
		if len(cond.Args) == 0 {
			return Condition{}, types.ErrEmptyBranch
		}
		return normalizeArgs(cond, depth)

	case CondNot:
		if len(cond.Args) != 1 {
			return Condition{}, types.ErrEmptyBranch
		}
		return normalizeArgs(cond, depth)

	default:
		return Condition{}, types.ErrUnknownCondition
	}
}

// normalizeSubject normalizes and validates the condition's subject field.
func normalizeSubject(cond Condition) (Condition, error) {
	field := types.NormalizeFieldName(cond.Field)
	if !types.ValidFieldName(field) {
		return Condition{}, types.ErrBadFieldName
	}
	cond.Field = field
	return cond, nil
}

// normalizeArgs recurses into composite operands.
func normalizeArgs(cond Condition, depth int) (Condition, error) {
	args := make([]Condition, len(cond.Args))
	for i, arg := range cond.Args {
		normalized, err := normalizeCondition(arg, depth+1)
		if err != nil {
			return Condition{}, err
		}
		args[i] = normalized
	}
	cond.Args = args
	return cond, nil
}
