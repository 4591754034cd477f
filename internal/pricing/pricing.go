// Package pricing holds the single authoritative cost formula for the
// storage service. Display code and server-side amount authorization must
// both go through this package so the numbers can never drift apart.
package pricing

import (
	"errors"
	"fmt"
	"math"
)

// Fixed business rule: the first bill is a flat trip fee plus the per-tote
// fee; recurring bills drop the trip fee. Hardcoded constants, not config.
const (
	TripFee = 20 // dollars, once, on the setup visit
	PerTote = 10 // dollars per tote per month

	MinTotes = 2
	MaxTotes = 10
)

// Absolute bounds in minor units, derived from the formula at the tote
// range edges. Used as an independent amount guard.
const (
	MinSetupCents = (TripFee + PerTote*MinTotes) * 100 // 4000
	MaxSetupCents = (TripFee + PerTote*MaxTotes) * 100 // 12000

	MinMonthly = PerTote * MinTotes // 20 dollars
	MaxMonthly = PerTote * MaxTotes // 100 dollars
)

// Tolerance for comparing a client-declared dollar amount to the
// recomputed one.
const Tolerance = 0.01

var ErrToteCountOutOfRange = errors.New("tote count must be between 2 and 10")

// ValidTotes reports whether n is a servable tote count.
func ValidTotes(n int) bool {
	return n >= MinTotes && n <= MaxTotes
}

// SetupCost returns the one-time first-month cost in whole dollars.
// Out-of-range tote counts return an error, never a misleading number.
func SetupCost(totes int) (int64, error) {
	if !ValidTotes(totes) {
		return 0, ErrToteCountOutOfRange
	}
	return TripFee + PerTote*int64(totes), nil
}

// MonthlyCost returns the recurring cost in whole dollars. No range check:
// callers must have validated the tote count already.
func MonthlyCost(totes int) int64 {
	return PerTote * int64(totes)
}

// SetupCostCents is SetupCost in minor currency units.
func SetupCostCents(totes int) (int64, error) {
	c, err := SetupCost(totes)
	if err != nil {
		return 0, err
	}
	return c * 100, nil
}

// MonthlyCostCents is MonthlyCost in minor currency units.
func MonthlyCostCents(totes int) int64 {
	return MonthlyCost(totes) * 100
}

// MatchesSetup reports whether a declared dollar amount equals the
// recomputed setup cost for totes within Tolerance.
func MatchesSetup(declared float64, totes int) bool {
	expected, err := SetupCost(totes)
	if err != nil {
		return false
	}
	return math.Abs(declared-float64(expected)) <= Tolerance
}

// MatchesSetupCents is MatchesSetup for amounts in minor units (one cent
// of slack, same tolerance).
func MatchesSetupCents(amountCents int64, totes int) bool {
	expected, err := SetupCostCents(totes)
	if err != nil {
		return false
	}
	diff := amountCents - expected
	if diff < 0 {
		diff = -diff
	}
	return diff <= 1
}

// CostMessage renders the display line for a computed setup cost.
// Presentation only; not used for authorization.
func CostMessage(cost int64, totes int) string {
	return fmt.Sprintf("Total for %d totes: $%d.00 today, then $%d.00/month after your first month",
		totes, cost, MonthlyCost(totes))
}
