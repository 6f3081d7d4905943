/*
adjustment.go - Rent adjustment calculator

PURPOSE:
  Answers "what is the rent at this date?" under the contract's
  adjustment policy. Rent is flat inside each F-month adjustment window
  and jumps at the window boundary; for the index policy the jump is the
  index movement accrued during the PRECEDING window, which models real
  indexed-lease conventions where the adjustment lags the measurement
  period (months 4-6 pay the increase measured over months 1-3).

ALGORITHM (index policy, F = adjustment frequency in months):
  monthsElapsed = whole months from contract start to the target date.
  If monthsElapsed < F the rent is still the base amount.
  Otherwise, for each completed window, multiply the running rent by the
  product over its F constituent months of (1 + rate/100). Compounding
  happens across windows, not just within one. The result rounds UP to
  the nearest integer unit of currency.

EXAMPLE:
  Start 2024-01-01, base 100000, F=3, Jan/Feb/Mar = 2%, 3%, 1%.
  At 2024-04-15: one window elapsed, factor 1.02*1.03*1.01 = 1.061106,
  rent = ceil(100000 * 1.061106) = 106111.

SEE ALSO:
  - index.go: Rate table semantics (missing months contribute factor 1)
  - schedule.go: Resolves each installment's due amount via this file
*/
package lease

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RENT QUOTE - Result of a rent calculation
// =============================================================================

// RentQuote is the rent effective at a target date plus the boundaries of
// the adjustment window the date falls in. PeriodStart doubles as the
// last adjustment date and PeriodEnd as the next one.
type RentQuote struct {
	Amount      Money
	PeriodStart time.Time
	PeriodEnd   time.Time

	// CumulativePercent is the total increase over the base rent, in
	// percent: (compound factor - 1) * 100.
	CumulativePercent decimal.Decimal
}

// =============================================================================
// CALCULATOR
// =============================================================================

// ComputeRent returns the rent effective at the target date under the
// contract's adjustment policy. Pure: the contract snapshot and index
// table are read, never modified. Unknown policies fail with
// ErrDataIntegrity rather than silently defaulting.
func ComputeRent(c *Contract, table IndexTable, target time.Time) (RentQuote, error) {
	switch c.AdjustmentPolicy {
	case AdjustManual:
		// Overrides are applied by the caller; the engine passes the
		// base rent through untouched.
		return manualQuote(c), nil
	case AdjustPercentage:
		return percentageQuote(c, target)
	case AdjustIndex:
		return indexQuote(c, table, target)
	default:
		return RentQuote{}, &IntegrityError{Field: "adjustmentPolicy", Reason: "unknown policy " + string(c.AdjustmentPolicy)}
	}
}

func manualQuote(c *Contract) RentQuote {
	return RentQuote{
		Amount:            c.BaseMonthlyRent,
		PeriodStart:       DateOnly(c.StartDate),
		PeriodEnd:         DateOnly(c.EndDate),
		CumulativePercent: decimal.Zero,
	}
}

// currentWindow returns the adjustment window containing the target date
// and the number of completed windows before it.
func currentWindow(c *Contract, target time.Time) (start, end time.Time, completed int) {
	f := c.AdjustmentFrequencyMonths
	monthsElapsed := WholeMonthsBetween(c.StartDate, target)
	if monthsElapsed < f {
		completed = 0
	} else {
		completed = monthsElapsed / f
	}
	start = DateOnly(c.StartDate).AddDate(0, completed*f, 0)
	end = start.AddDate(0, f, 0)
	return start, end, completed
}

func percentageQuote(c *Contract, target time.Time) (RentQuote, error) {
	if c.AdjustmentFrequencyMonths < 1 {
		return RentQuote{}, &IntegrityError{Field: "adjustmentFrequencyMonths", Reason: "must be at least 1"}
	}

	start, end, completed := currentWindow(c, target)

	// Fixed percentage compounds once per completed window.
	step := decimal.NewFromInt(1).Add(c.AdjustmentValue.Div(oneHundred))
	factor := step.Pow(decimal.NewFromInt(int64(completed)))

	amount := c.BaseMonthlyRent.Mul(factor)
	if completed > 0 {
		amount = amount.CeilUnit()
	}

	return RentQuote{
		Amount:            amount,
		PeriodStart:       start,
		PeriodEnd:         end,
		CumulativePercent: factor.Sub(decimal.NewFromInt(1)).Mul(oneHundred),
	}, nil
}

func indexQuote(c *Contract, table IndexTable, target time.Time) (RentQuote, error) {
	if c.AdjustmentFrequencyMonths < 1 {
		return RentQuote{}, &IntegrityError{Field: "adjustmentFrequencyMonths", Reason: "must be at least 1"}
	}

	f := c.AdjustmentFrequencyMonths
	start, end, completed := currentWindow(c, target)

	if completed == 0 {
		// Still inside the first window: base rent, no adjustment yet.
		return RentQuote{
			Amount:            c.BaseMonthlyRent,
			PeriodStart:       start,
			PeriodEnd:         end,
			CumulativePercent: decimal.Zero,
		}, nil
	}

	// Compound window by window. Each completed window contributes the
	// product of its F constituent monthly factors; the rent carries
	// across windows so later windows compound on earlier ones.
	amount := c.BaseMonthlyRent
	total := decimal.NewFromInt(1)
	for i := 0; i < completed; i++ {
		windowStart := DateOnly(c.StartDate).AddDate(0, i*f, 0)

		windowFactor := decimal.NewFromInt(1)
		for m := 0; m < f; m++ {
			at := windowStart.AddDate(0, m, 0)
			windowFactor = windowFactor.Mul(table.MonthlyFactor(at.Year(), at.Month()))
		}

		amount = amount.Mul(windowFactor)
		total = total.Mul(windowFactor)
	}

	return RentQuote{
		Amount:            amount.CeilUnit(),
		PeriodStart:       start,
		PeriodEnd:         end,
		CumulativePercent: total.Sub(decimal.NewFromInt(1)).Mul(oneHundred),
	}, nil
}
