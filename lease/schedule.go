/*
schedule.go - Payment schedule generation and settlement registration

PURPOSE:
  Derives the ordered sequence of monthly installments over the contract
  term and reconciles tendered payments against them.

SCHEDULE GENERATION:
  One installment per calendar month from the start month through the end
  month. Each due date is the contract's due day within the billing month
  (clamped to month length); each due amount is the rent effective at the
  month's first day per the adjustment calculator. Generation is
  idempotent: re-invoking appends only billing periods not yet present,
  so the schedule can be lazily extended as rates get published.

PAYMENT REGISTRATION:
  A tender settles the accrued late fee FIRST, then the principal. The
  installment becomes paid once cumulative payments cover principal plus
  the fee accrued at settlement time; anything less leaves it partial.
  Assessed fees land in the installment's penalty ledger.

SEE ALSO:
  - adjustment.go: Due amount resolution
  - latefee.go: Penalty accrual
*/
package lease

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// SCHEDULE GENERATION
// =============================================================================

// GenerateSchedule extends the contract's installment list to cover every
// billing month from start through end. Existing periods are left
// untouched; only missing ones are appended, in order. Rejected on
// finished contracts.
func GenerateSchedule(c *Contract, table IndexTable) (ScheduleGenerated, error) {
	if c.Status == ContractFinished {
		return ScheduleGenerated{}, &StateError{Op: "generateSchedule", Status: c.Status}
	}

	first := PeriodOf(c.StartDate)
	last := PeriodOf(c.EndDate)

	added := 0
	for period := first; !period.After(last); period = period.Next() {
		if c.FindPayment(period) != nil {
			continue
		}

		quote, err := ComputeRent(c, table, period.FirstDay())
		if err != nil {
			return ScheduleGenerated{}, err
		}

		c.Payments = append(c.Payments, Payment{
			ID:         PaymentID(uuid.NewString()),
			Period:     period,
			DueDate:    period.DueDate(c.DueDay),
			DueAmount:  quote.Amount,
			AmountPaid: c.BaseMonthlyRent.Zero(),
		})
		added++
	}

	sort.Slice(c.Payments, func(i, j int) bool {
		return c.Payments[i].Period.Before(c.Payments[j].Period)
	})

	return ScheduleGenerated{Contract: c.ID, Added: added, From: first, To: last}, nil
}

// =============================================================================
// PAYMENT REGISTRATION
// =============================================================================

// RegisterPayment reconciles a tender against the installment for the
// given billing period. The tender covers the accrued late fee first,
// then principal. Fails with ErrNotFound for unknown periods,
// ErrInvalidAmount for non-positive or excessive tenders, and
// ErrInvalidState on finished contracts.
func RegisterPayment(c *Contract, period BillingPeriod, tendered Money, paidAt time.Time, method string) (PaymentRegistered, error) {
	if c.Status == ContractFinished {
		return PaymentRegistered{}, &StateError{Op: "registerPayment", Status: c.Status}
	}

	p := c.FindPayment(period)
	if p == nil {
		return PaymentRegistered{}, &NotFoundError{Entity: "payment", Ref: period.String()}
	}
	if p.Settled() {
		return PaymentRegistered{}, &AmountError{Reason: "installment already settled", Tendered: tendered}
	}
	if !tendered.IsPositive() {
		return PaymentRegistered{}, &AmountError{Reason: "tender must be positive", Tendered: tendered}
	}

	accrued := LateFee(c, p, paidAt)
	outstanding := p.UnpaidPrincipal().Add(accrued)
	if tendered.GreaterThan(outstanding) {
		return PaymentRegistered{}, &AmountError{Reason: "tender exceeds outstanding balance of " + outstanding.String(), Tendered: tendered}
	}

	// Record the assessed penalty. Informational: it only becomes a
	// separate collectible while principal remains unpaid.
	if accrued.IsPositive() {
		p.LateFees = append(p.LateFees, LateFeeEntry{
			AssessedAt: DateOnly(paidAt),
			DaysLate:   WholeDaysBetween(p.DueDate, paidAt),
			Amount:     accrued,
		})
	}

	p.AmountPaid = p.AmountPaid.Add(tendered)
	p.Method = method

	status := PaymentPartial
	if p.AmountPaid.GreaterThanOrEqual(p.DueAmount.Add(accrued)) {
		settledAt := DateOnly(paidAt)
		p.PaymentDate = &settledAt
		status = PaymentPaid
	}

	return PaymentRegistered{
		Contract:  c.ID,
		Period:    period,
		Tendered:  tendered,
		LateFee:   accrued,
		NewStatus: status,
		PaidAt:    DateOnly(paidAt),
	}, nil
}

// =============================================================================
// SERVICE CHARGES
// =============================================================================

// AddServiceCharge itemizes an extra on an unsettled installment
// (building expenses, utilities passed through to the tenant). Charges
// are informational: they are reported alongside the rent, not folded
// into the installment's collectible principal.
func AddServiceCharge(c *Contract, period BillingPeriod, concept string, amount Money) (ServiceChargeAdded, error) {
	if c.Status == ContractFinished {
		return ServiceChargeAdded{}, &StateError{Op: "addServiceCharge", Status: c.Status}
	}

	p := c.FindPayment(period)
	if p == nil {
		return ServiceChargeAdded{}, &NotFoundError{Entity: "payment", Ref: period.String()}
	}
	if p.Settled() {
		return ServiceChargeAdded{}, &AmountError{Reason: "installment already settled", Tendered: amount}
	}
	if concept == "" {
		return ServiceChargeAdded{}, &IntegrityError{Field: "concept", Reason: "must not be empty"}
	}
	if !amount.IsPositive() {
		return ServiceChargeAdded{}, &AmountError{Reason: "charge must be positive", Tendered: amount}
	}

	p.ServiceCharges = append(p.ServiceCharges, ServiceCharge{Concept: concept, Amount: amount})

	return ServiceChargeAdded{Contract: c.ID, Period: period, Concept: concept, Amount: amount}, nil
}
