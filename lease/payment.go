/*
payment.go - Monthly installment model and derived status

PURPOSE:
  A Payment is one billing period's due amount plus its settlement record.
  Payments are created in bulk by the scheduler, never deleted, and only
  mutated toward paid by RegisterPayment.

DERIVED STATUS:
  Storing a status column drifts: an installment stored as "pending"
  silently becomes overdue as the due date passes. Here status is a pure
  function of the settlement record and "now", recomputed on every read.
  Stores persist only the inputs (amountPaid, dueDate, paymentDate).

LATE FEE LEDGER:
  Every non-zero penalty assessed during registration is appended to the
  LateFees ledger. The ledger is informational - the collectible is
  dueAmount plus the fee accrued at settlement time - but it preserves an
  audit trail of what was charged and when.

SEE ALSO:
  - latefee.go: Penalty accrual
  - schedule.go: Creation and registration
*/
package lease

import "time"

// =============================================================================
// PAYMENT STATUS - Pure function of the settlement record and "now"
// =============================================================================

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
	PaymentOverdue PaymentStatus = "overdue"
)

// =============================================================================
// PAYMENT - One billing period's installment
// =============================================================================

// ServiceCharge is an itemized extra on an installment (building expenses,
// utilities passed through to the tenant).
type ServiceCharge struct {
	Concept string
	Amount  Money
}

// LateFeeEntry records a penalty assessed at registration time. Each
// entry holds the full accrual from the due date as of its assessment,
// so later entries supersede earlier ones rather than add to them.
type LateFeeEntry struct {
	AssessedAt time.Time
	DaysLate   int
	Amount     Money
}

type Payment struct {
	ID     PaymentID
	Period BillingPeriod // unique per contract

	DueDate   time.Time
	DueAmount Money // computed by the scheduler, immutable once the period starts

	AmountPaid  Money      // cumulative across registrations
	PaymentDate *time.Time // set on first full settlement
	Method      string
	ReceiptRef  string

	ServiceCharges []ServiceCharge
	LateFees       []LateFeeEntry
}

// Settled reports whether the installment has been fully paid.
func (p *Payment) Settled() bool {
	return p.PaymentDate != nil
}

// UnpaidPrincipal returns the outstanding principal: due amount minus
// cumulative paid, clamped at zero. Penalties accrue on this balance only.
func (p *Payment) UnpaidPrincipal() Money {
	return p.DueAmount.Sub(p.AmountPaid).FloorZero()
}

// ServiceChargeTotal sums the itemized extras.
func (p *Payment) ServiceChargeTotal() Money {
	total := p.DueAmount.Zero()
	for _, s := range p.ServiceCharges {
		total = total.Add(s.Amount)
	}
	return total
}

// DeriveStatus computes the installment status as of 'now'. Never
// persisted as an independent source of truth: the stored document keeps
// only the inputs, so the overdue transition cannot drift.
func DeriveStatus(p *Payment, now time.Time) PaymentStatus {
	switch {
	case p.Settled():
		return PaymentPaid
	case p.AmountPaid.IsPositive():
		return PaymentPartial
	case DateOnly(now).After(DateOnly(p.DueDate)):
		return PaymentOverdue
	default:
		return PaymentPending
	}
}
