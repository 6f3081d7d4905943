/*
latefee.go - Late-payment penalty accrual

PURPOSE:
  Computes the punitorio: simple (non-compounding) daily interest on the
  unpaid principal of an overdue installment.

  penalty = unpaidPrincipal * dailyRate/100 * daysLate

  daysLate counts whole days past the due date, no partial-day proration.
  Nothing accrues on or before the due date, and nothing accrues once the
  installment is settled.

SUSPENSION:
  While a contract is suspended, penalty accrual pauses. Days inside a
  pause never count as late - not while suspended, and not after the
  contract resumes. Fees accrued before the pause stand.
*/
package lease

import (
	"time"

	"github.com/shopspring/decimal"
)

// LateFee returns the penalty accrued on an installment as of the given
// date. Zero on or before the due date, zero once settled, otherwise
// simple daily interest on the outstanding principal.
func LateFee(c *Contract, p *Payment, asOf time.Time) Money {
	if p.Settled() {
		return p.DueAmount.Zero()
	}

	daysLate := WholeDaysBetween(p.DueDate, asOf) - pausedDays(c, p.DueDate, asOf)
	if daysLate <= 0 {
		return p.DueAmount.Zero()
	}

	principal := p.UnpaidPrincipal()
	if !principal.IsPositive() {
		return p.DueAmount.Zero()
	}

	daily := c.LateFeeRate().Div(oneHundred)
	return principal.Mul(daily).Mul(decimal.NewFromInt(int64(daysLate)))
}

// pausedDays counts the days in [from, to) spent under suspension, so
// accrual skips them without waiving what accrued outside the pauses.
func pausedDays(c *Contract, from, to time.Time) int {
	days := 0
	for _, s := range c.Suspensions {
		days += overlapDays(s.From, s.To, from, to)
	}
	// An open pause runs through the as-of date.
	if c.SuspendedAt != nil {
		days += overlapDays(*c.SuspendedAt, to, from, to)
	}
	return days
}

func overlapDays(pauseFrom, pauseTo, from, to time.Time) int {
	start := pauseFrom
	if from.After(start) {
		start = from
	}
	end := pauseTo
	if to.Before(end) {
		end = to
	}
	if d := WholeDaysBetween(start, end); d > 0 {
		return d
	}
	return 0
}
