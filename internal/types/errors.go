package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for RutaGuard catalogue validation.
var (
	// ErrEmptyRuleID indicates a rule definition without an identifier.
	ErrEmptyRuleID = errors.New("rule id is empty")

	// ErrDuplicateRuleID indicates two rules sharing an identifier.
	ErrDuplicateRuleID = errors.New("duplicate rule id")

	// ErrEmptyChecks indicates a rule with no check conditions.
	ErrEmptyChecks = errors.New("rule has no checks")

	// ErrTooManyChecks indicates a rule exceeding MaxChecksPerRule.
	ErrTooManyChecks = errors.New("rule has too many checks")

	// ErrBadFieldName indicates a rule referencing a malformed field name.
	ErrBadFieldName = errors.New("invalid field name")

	// ErrUnknownCondition indicates an unrecognized condition kind.
	ErrUnknownCondition = errors.New("unknown condition kind")

	// ErrUnknownOperator indicates an unrecognized comparison operator.
	ErrUnknownOperator = errors.New("unknown comparison operator")

	// ErrConditionTooDeep indicates nesting beyond MaxConditionDepth.
	ErrConditionTooDeep = errors.New("condition nesting exceeds maximum depth")

	// ErrEmptyBranch indicates an all/any/not composite without operands.
	ErrEmptyBranch = errors.New("composite condition has no operands")

	// ErrTooManyInValues indicates a membership set exceeding MaxInSetValues.
	ErrTooManyInValues = errors.New("membership set has too many values")

	// ErrEmptySet indicates a membership condition with no values.
	ErrEmptySet = errors.New("membership set is empty")

	// ErrMissingCompareTarget indicates a comparison with neither a literal
	// nor a companion field to compare against.
	ErrMissingCompareTarget = errors.New("comparison has no target value or field")

	// ErrUnknownSeverity indicates an unrecognized severity spelling.
	ErrUnknownSeverity = errors.New("unknown severity")

	// ErrTooManyRecords indicates a batch exceeding MaxRecords.
	ErrTooManyRecords = errors.New("record batch exceeds maximum size")
)

// CatalogueError reports a malformed rule definition. It is fatal to a run
// and always surfaced before any record is evaluated; a validator that
// silently dropped a broken rule would produce misleading clean results.
type CatalogueError struct {
	RuleID string // offending rule, empty for catalogue-level problems
	Err    error  // underlying sentinel
}

// Error implements the error interface.
func (e *CatalogueError) Error() string {
	if e.RuleID == "" {
		return fmt.Sprintf("catalogue: %v", e.Err)
	}
	return fmt.Sprintf("catalogue: rule %q: %v", e.RuleID, e.Err)
}

// Unwrap exposes the underlying sentinel for errors.Is checks.
func (e *CatalogueError) Unwrap() error {
	return e.Err
}

// NewCatalogueError wraps a sentinel with the offending rule id.
func NewCatalogueError(ruleID string, err error) *CatalogueError {
	return &CatalogueError{RuleID: ruleID, Err: err}
}
