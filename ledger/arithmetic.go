package ledger

import (
	"fmt"
	"math"
)

// ArithmeticMode selects what Credit does when an addition would overflow uint64
type ArithmeticMode string

const (
	// Saturating clamps at math.MaxUint64 and never returns ErrOverflow
	Saturating ArithmeticMode = "saturating"
	// Checked refuses the credit with ErrOverflow and leaves the state untouched
	Checked ArithmeticMode = "checked"
)

func ParseArithmeticMode(s string) (ArithmeticMode, error) {
	switch ArithmeticMode(s) {
	case "", Saturating:
		return Saturating, nil
	case Checked:
		return Checked, nil
	default:
		return "", fmt.Errorf("unknown arithmetic mode %q", s)
	}
}

// appliedDelta returns how much of amount can be added to both balance and
// supply. The same delta goes to both counters, which keeps supply equal to
// the sum of balances even at the numeric ceiling.
func appliedDelta(mode ArithmeticMode, balance, supply, amount uint64) (uint64, error) {
	headroom := min(math.MaxUint64-balance, math.MaxUint64-supply)
	if amount <= headroom {
		return amount, nil
	}
	if mode == Checked {
		return 0, fmt.Errorf("%w: credit of %d exceeds headroom %d", ErrOverflow, amount, headroom)
	}
	return headroom, nil
}
