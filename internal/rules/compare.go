package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rutaguard/rutaguard/internal/types"
)

/*
 * Value comparison semantics.
 *
 * Dispatch sheets mix formats freely: "08" vs "8", "14:05" vs "14:05:00",
 * stray whitespace and case differences. Comparison therefore picks the
 * strongest interpretation both operands support:
 *
 *   1. Both numeric        -> compare parsed numbers
 *   2. Both clock values   -> compare seconds since midnight (HH:MM[:SS])
 *   3. Otherwise           -> compare trimmed, case-folded strings
 *
 * Numeric parsing happens once at load time (types.StringValue); clock
 * parsing is cheap and done here because only compare conditions need it.
 */

// valuesEqual performs equality with numeric awareness.
// "08" equals "8"; otherwise normalized string equality.
func valuesEqual(a, b types.Value) bool {
	if a.IsNum && b.IsNum {
		return a.Num == b.Num
	}
	return a.Norm() == b.Norm()
}

// compareValues applies an ordered comparison operator to two values.
func compareValues(op CompareOp, a, b types.Value) bool {
	switch op {
	case OpEq:
		return valuesEqual(a, b)
	case OpNeq:
		return !valuesEqual(a, b)
	case OpLt:
		return threeWay(a, b) < 0
	case OpLte:
		return threeWay(a, b) <= 0
	case OpGt:
		return threeWay(a, b) > 0
	case OpGte:
		return threeWay(a, b) >= 0
	default:
		panic(fmt.Sprintf("rules: cannot compare with operator %d", op))
	}
}

// threeWay returns -1, 0, or 1 for the ordered comparison of a and b.
func threeWay(a, b types.Value) int {
	if a.IsNum && b.IsNum {
		switch {
		case a.Num < b.Num:
			return -1
		case a.Num > b.Num:
			return 1
		default:
			return 0
		}
	}
	if sa, okA := clockSeconds(a); okA {
		if sb, okB := clockSeconds(b); okB {
			switch {
			case sa < sb:
				return -1
			case sa > sb:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(a.Norm(), b.Norm())
}

// clockSeconds parses a time-of-day value ("14:05" or "14:05:30") into
// seconds since midnight. Change-time and departure columns carry these.
func clockSeconds(v types.Value) (int, bool) {
	parts := strings.Split(strings.TrimSpace(v.Raw), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	s := 0
	if len(parts) == 3 {
		s, err = strconv.Atoi(parts[2])
		if err != nil || s < 0 || s > 59 {
			return 0, false
		}
	}
	return h*3600 + m*60 + s, true
}
