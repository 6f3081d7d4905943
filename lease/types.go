/*
Package lease implements the rental-contract financial engine.

PURPOSE:
  This package contains the domain model and pure calculators for rental
  contracts: rent adjustment under a policy (fixed percentage, published
  price index, or manual override), the ordered monthly payment schedule,
  late-payment penalties on overdue installments, the contract lifecycle
  state machine, and maintenance incident tracking.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A currency amount backed by decimal.Decimal
  - BillingPeriod: A year+month key identifying one installment
  - Typed identifiers for contracts, payments and incidents
  - Calendar helpers (whole-month and whole-day differences)

DESIGN PRINCIPLES:
  1. Purity: Every calculation takes snapshots in and returns snapshots
     out. The engine performs no I/O and holds no shared mutable state.
  2. Precision: All money and rate arithmetic uses decimal.Decimal to
     avoid floating-point drift in compounding.
  3. Derived status: Payment and contract statuses are recomputed from
     their inputs on every read, never trusted as stored truth.
  4. Explicit events: Mutating operations return structured event values
     for the caller to dispatch; there is no global event bus.

SEE ALSO:
  - adjustment.go: Rent adjustment calculator
  - schedule.go: Payment schedule generation and registration
  - lifecycle.go: Contract state machine
*/
package lease

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Currency amount with decimal precision
// =============================================================================

type Money struct {
	Value    decimal.Decimal
	Currency string
}

func NewMoney(value int64, currency string) Money {
	return Money{Value: decimal.NewFromInt(value), Currency: currency}
}

func NewMoneyFromDecimal(value decimal.Decimal, currency string) Money {
	return Money{Value: value, Currency: currency}
}

// MustParseDecimal parses a decimal literal, returning zero on failure.
// Intended for constants and tests, not untrusted input.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (m Money) Zero() Money                 { return Money{Value: decimal.Zero, Currency: m.Currency} }
func (m Money) Add(b Money) Money           { return Money{Value: m.Value.Add(b.Value), Currency: m.Currency} }
func (m Money) Sub(b Money) Money           { return Money{Value: m.Value.Sub(b.Value), Currency: m.Currency} }
func (m Money) Mul(s decimal.Decimal) Money { return Money{Value: m.Value.Mul(s), Currency: m.Currency} }
func (m Money) Neg() Money                  { return Money{Value: m.Value.Neg(), Currency: m.Currency} }
func (m Money) IsZero() bool                { return m.Value.IsZero() }
func (m Money) IsNegative() bool            { return m.Value.IsNegative() }
func (m Money) IsPositive() bool            { return m.Value.IsPositive() }
func (m Money) GreaterThan(b Money) bool    { return m.Value.GreaterThan(b.Value) }
func (m Money) LessThan(b Money) bool       { return m.Value.LessThan(b.Value) }
func (m Money) GreaterThanOrEqual(b Money) bool { return m.Value.GreaterThanOrEqual(b.Value) }

// CeilUnit rounds up to the nearest integer unit of currency.
// Indexed rent adjustments always round in the landlord's favor.
func (m Money) CeilUnit() Money {
	return Money{Value: m.Value.Ceil(), Currency: m.Currency}
}

// FloorZero clamps negative amounts to zero.
func (m Money) FloorZero() Money {
	if m.Value.IsNegative() {
		return m.Zero()
	}
	return m
}

func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.Value.String(), m.Currency)
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type ContractID string
type PaymentID string
type IncidentID string

// =============================================================================
// BILLING PERIOD - Year+month key, unique per contract
// =============================================================================

// BillingPeriod identifies one monthly installment. Serialized as "2006-01".
type BillingPeriod struct {
	Year  int
	Month time.Month
}

func PeriodOf(t time.Time) BillingPeriod {
	return BillingPeriod{Year: t.Year(), Month: t.Month()}
}

// ParseBillingPeriod parses the "2006-01" wire format.
func ParseBillingPeriod(s string) (BillingPeriod, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return BillingPeriod{}, &IntegrityError{Field: "period", Reason: "expected YYYY-MM format"}
	}
	return PeriodOf(t), nil
}

func (p BillingPeriod) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// FirstDay returns the first day of the billing month, UTC midnight.
func (p BillingPeriod) FirstDay() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// DaysInMonth returns the number of calendar days in the billing month.
func (p BillingPeriod) DaysInMonth() int {
	return p.FirstDay().AddDate(0, 1, -1).Day()
}

// DueDate returns the installment due date: the given day of the billing
// month, clamped to the month's last day (dueDay 31 in February -> Feb 28/29).
func (p BillingPeriod) DueDate(dueDay int) time.Time {
	day := dueDay
	if max := p.DaysInMonth(); day > max {
		day = max
	}
	return time.Date(p.Year, p.Month, day, 0, 0, 0, 0, time.UTC)
}

func (p BillingPeriod) Next() BillingPeriod {
	return PeriodOf(p.FirstDay().AddDate(0, 1, 0))
}

func (p BillingPeriod) Before(other BillingPeriod) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

func (p BillingPeriod) After(other BillingPeriod) bool { return other.Before(p) }
func (p BillingPeriod) Equal(other BillingPeriod) bool { return p == other }

// =============================================================================
// CALENDAR HELPERS
// =============================================================================

// WholeMonthsBetween returns the number of full calendar months from 'from'
// to 'to'. The count only advances once to's day-of-month reaches from's:
// Jan 1 -> Apr 1 is 3 months, Jan 15 -> Apr 14 is 2.
func WholeMonthsBetween(from, to time.Time) int {
	months := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if to.Day() < from.Day() {
		months--
	}
	return months
}

// WholeDaysBetween returns the number of whole days from 'from' to 'to',
// ignoring time of day. No partial-day proration.
func WholeDaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// DateOnly truncates a timestamp to UTC midnight.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
