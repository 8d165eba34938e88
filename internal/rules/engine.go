package rules

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rutaguard/rutaguard/internal/types"
)

/*
 * Batch engine.
 *
 * Run applies every rule in the registry to every record and returns one
 * complete, ordered report. Each (record, rule) evaluation is a pure
 * computation with no shared mutable state, so records are fanned out
 * across a bounded worker pool; every worker writes into its own
 * pre-allocated slot and results are flattened in record order, making the
 * output byte-identical to a sequential run.
 *
 * Ordering: violations sorted by (record index, rule id). Rules iterate in
 * sorted-id order per record, so per-record output is already canonical;
 * the final sort only restores cross-record order after parallel fan-out.
 *
 * Failure isolation: a panic while evaluating one rule against one record
 * is recovered and converted into an engine-error violation. One bad
 * (record, rule) combination never blocks validation of the rest of the
 * batch. Cancellation is checked between records, not mid-rule; rules are
 * cheap pure predicates.
 */

// Engine runs a rule registry over record batches.
// Stateless between records: no rule observes another record's outcome.
type Engine struct {
	workers int
}

// NewEngine creates an engine with the given worker-pool width.
// Width <= 0 selects one worker per CPU.
func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{workers: workers}
}

// recordResult collects one record's findings; slot-per-record keeps the
// fan-out lock-free.
type recordResult struct {
	violations []types.Violation
	skips      []types.Skip
}

// Run validates the batch and returns an ordered report.
// The only error paths are an oversized batch and context cancellation;
// every per-record, per-rule problem is captured in the report instead.
func (e *Engine) Run(ctx context.Context, reg *Registry, records []*types.Record) (types.Report, error) {
	report := types.Report{
		RunID:       types.NewRunID(),
		RecordCount: len(records),
		RuleCount:   reg.Len(),
	}

	if len(records) > types.MaxRecords {
		return types.Report{}, types.ErrTooManyRecords
	}

	results := make([]recordResult, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, rec := range records {
		// Cancellation point between records.
		if err := gctx.Err(); err != nil {
			break
		}
		i, rec := i, rec
		g.Go(func() error {
			results[i] = evaluateRecord(reg, rec)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return types.Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return types.Report{}, err
	}

	for _, res := range results {
		report.Violations = append(report.Violations, res.violations...)
		report.Skips = append(report.Skips, res.skips...)
	}

	// Canonical (record index, rule id) order regardless of how the flatten
	// above interleaved; SliceStable keeps per-rule order intact.
	sort.SliceStable(report.Violations, func(i, j int) bool {
		a, b := report.Violations[i], report.Violations[j]
		if a.RecordIndex != b.RecordIndex {
			return a.RecordIndex < b.RecordIndex
		}
		return a.RuleID < b.RuleID
	})
	sort.SliceStable(report.Skips, func(i, j int) bool {
		a, b := report.Skips[i], report.Skips[j]
		if a.RecordIndex != b.RecordIndex {
			return a.RecordIndex < b.RecordIndex
		}
		return a.RuleID < b.RuleID
	})

	return report, nil
}

// evaluateRecord applies every rule to one record, in sorted-id order.
func evaluateRecord(reg *Registry, rec *types.Record) recordResult {
	var res recordResult
	for i := range reg.Rules() {
		rule := &reg.Rules()[i]
		violation, skip := applyRecovered(rule, rec)
		if violation != nil {
			res.violations = append(res.violations, *violation)
		}
		if skip != nil {
			res.skips = append(res.skips, *skip)
		}
	}
	return res
}

// applyRecovered shields the batch from a single rule/record failure by
// converting panics into engine-error diagnostics.
func applyRecovered(rule *Rule, rec *types.Record) (violation *types.Violation, skip *types.Skip) {
	defer func() {
		if r := recover(); r != nil {
			skip = nil
			violation = &types.Violation{
				RecordIndex: rec.Index,
				Row:         rec.Row,
				RuleID:      rule.ID,
				Message:     fmt.Sprintf("internal evaluation failure: %v", r),
				Severity:    types.SeverityError,
				Kind:        types.KindEngineError,
			}
		}
	}()
	return rule.Apply(rec)
}
