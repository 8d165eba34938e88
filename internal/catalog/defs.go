// Package catalog deserializes rule catalogues into the engine's rule model.
//
// Two sources share one definition schema: YAML files for hand-maintained
// catalogues, and the catalog_rules table where guard/checks are stored as
// JSON in the same shape. The engine itself is agnostic to both; this
// package only produces well-formed rules.Rule values and lets
// rules.NewRegistry do the semantic validation.
package catalog

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rutaguard/rutaguard/internal/rules"
	"github.com/rutaguard/rutaguard/internal/types"
)

// Scalar is a literal value in a condition definition. It accepts quoted
// strings and bare numbers from both YAML and JSON, since catalogue authors
// write codes like "8|29" and thresholds like 45 interchangeably.
type Scalar string

// UnmarshalYAML accepts any scalar node.
func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("expected scalar value, got %v", node.Kind)
	}
	*s = Scalar(node.Value)
	return nil
}

// UnmarshalJSON accepts strings and raw number tokens.
func (s *Scalar) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = Scalar(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = Scalar(num.String())
	return nil
}

// Value converts the literal to the engine's value type.
func (s Scalar) Value() types.Value {
	return types.StringValue(string(s))
}

// FieldDef names a single subject field.
type FieldDef struct {
	Field string `yaml:"field" json:"field"`
}

// EqualsDef is an equality test against a literal.
type EqualsDef struct {
	Field string `yaml:"field" json:"field"`
	Value Scalar `yaml:"value" json:"value"`
}

// InDef is a membership test over a set of code values.
type InDef struct {
	Field  string   `yaml:"field" json:"field"`
	Values []Scalar `yaml:"values" json:"values"`
}

// CompareDef is an ordered comparison against a literal value or a
// companion field (exactly one of value/other).
type CompareDef struct {
	Field string `yaml:"field" json:"field"`
	Op    string `yaml:"op" json:"op"`
	Value Scalar `yaml:"value,omitempty" json:"value,omitempty"`
	Other string `yaml:"other,omitempty" json:"other,omitempty"`
}

// CondDef is the serialized condition: exactly one variant must be set.
type CondDef struct {
	Equals  *EqualsDef  `yaml:"equals,omitempty" json:"equals,omitempty"`
	In      *InDef      `yaml:"in,omitempty" json:"in,omitempty"`
	Present *FieldDef   `yaml:"present,omitempty" json:"present,omitempty"`
	Absent  *FieldDef   `yaml:"absent,omitempty" json:"absent,omitempty"`
	Compare *CompareDef `yaml:"compare,omitempty" json:"compare,omitempty"`
	All     []CondDef   `yaml:"all,omitempty" json:"all,omitempty"`
	Any     []CondDef   `yaml:"any,omitempty" json:"any,omitempty"`
	Not     *CondDef    `yaml:"not,omitempty" json:"not,omitempty"`
}

// CheckDef is one must-hold condition with its failure-message template.
type CheckDef struct {
	Cond    CondDef `yaml:"cond" json:"cond"`
	Message string  `yaml:"message,omitempty" json:"message,omitempty"`
}

// RuleDef is one serialized rule.
type RuleDef struct {
	ID          string     `yaml:"id" json:"id"`
	Description string     `yaml:"description,omitempty" json:"description,omitempty"`
	Severity    string     `yaml:"severity,omitempty" json:"severity,omitempty"`
	Guard       CondDef    `yaml:"guard" json:"guard"`
	Checks      []CheckDef `yaml:"checks" json:"checks"`
}

// File is a complete YAML catalogue document.
type File struct {
	Version int       `yaml:"version"`
	Rules   []RuleDef `yaml:"rules"`
}

// Condition converts the definition into the engine's condition model.
// Fails when zero or more than one variant is set; everything deeper
// (field names, operators, limits) is validated by rules.NewRegistry.
func (d CondDef) Condition() (rules.Condition, error) {
	var out []rules.Condition

	if d.Equals != nil {
		out = append(out, rules.Equals(d.Equals.Field, d.Equals.Value.Value()))
	}
	if d.In != nil {
		values := make([]types.Value, len(d.In.Values))
		for i, v := range d.In.Values {
			values[i] = v.Value()
		}
		out = append(out, rules.InSet(d.In.Field, values...))
	}
	if d.Present != nil {
		out = append(out, rules.Present(d.Present.Field))
	}
	if d.Absent != nil {
		out = append(out, rules.Absent(d.Absent.Field))
	}
	if d.Compare != nil {
		cond, err := d.Compare.condition()
		if err != nil {
			return rules.Condition{}, err
		}
		out = append(out, cond)
	}
	if d.All != nil {
		args, err := conditions(d.All)
		if err != nil {
			return rules.Condition{}, err
		}
		out = append(out, rules.All(args...))
	}
	if d.Any != nil {
		args, err := conditions(d.Any)
		if err != nil {
			return rules.Condition{}, err
		}
		out = append(out, rules.Any(args...))
	}
	if d.Not != nil {
		arg, err := d.Not.Condition()
		if err != nil {
			return rules.Condition{}, err
		}
		out = append(out, rules.Not(arg))
	}

	if len(out) != 1 {
		return rules.Condition{}, fmt.Errorf("condition must set exactly one of equals/in/present/absent/compare/all/any/not, got %d", len(out))
	}
	return out[0], nil
}

func (d CompareDef) condition() (rules.Condition, error) {
	op, ok := rules.ParseCompareOp(d.Op)
	if !ok {
		return rules.Condition{}, fmt.Errorf("compare on %q: %w", d.Field, types.ErrUnknownOperator)
	}
	if d.Other != "" && d.Value != "" {
		return rules.Condition{}, fmt.Errorf("compare on %q: value and other are mutually exclusive", d.Field)
	}
	if d.Other != "" {
		return rules.CompareField(d.Field, op, d.Other), nil
	}
	return rules.CompareLit(d.Field, op, d.Value.Value()), nil
}

func conditions(defs []CondDef) ([]rules.Condition, error) {
	out := make([]rules.Condition, len(defs))
	for i, def := range defs {
		cond, err := def.Condition()
		if err != nil {
			return nil, err
		}
		out[i] = cond
	}
	return out, nil
}

// Rule converts the definition into the engine's rule model.
func (d RuleDef) Rule() (rules.Rule, error) {
	severity, ok := types.ParseSeverity(d.Severity)
	if !ok {
		return rules.Rule{}, types.NewCatalogueError(d.ID, types.ErrUnknownSeverity)
	}

	guard, err := d.Guard.Condition()
	if err != nil {
		return rules.Rule{}, fmt.Errorf("rule %q guard: %w", d.ID, err)
	}

	checks := make([]rules.Check, len(d.Checks))
	for i, check := range d.Checks {
		cond, err := check.Cond.Condition()
		if err != nil {
			return rules.Rule{}, fmt.Errorf("rule %q check %d: %w", d.ID, i, err)
		}
		checks[i] = rules.Check{Cond: cond, Message: check.Message}
	}

	return rules.Rule{
		ID:          d.ID,
		Description: d.Description,
		Severity:    severity,
		Guard:       guard,
		Checks:      checks,
	}, nil
}

// Registry converts every rule and builds a validated registry.
func (f *File) Registry() (*rules.Registry, error) {
	catalogue := make([]rules.Rule, len(f.Rules))
	for i, def := range f.Rules {
		rule, err := def.Rule()
		if err != nil {
			return nil, err
		}
		catalogue[i] = rule
	}
	return rules.NewRegistry(catalogue)
}
