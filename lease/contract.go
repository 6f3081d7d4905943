/*
contract.go - Contract aggregate and construction-time validation

PURPOSE:
  Defines the Contract aggregate: the property/tenant/landlord references,
  the financial terms (base rent, adjustment policy, due day, late fee
  rate), the guarantee backing the tenant's obligations, and the embedded
  payment schedule and incident list.

GUARANTEE AS TAGGED UNION:
  The source material stored guarantor and insurance details as optional
  sibling fields and relied on convention to keep exactly one populated.
  Here Guarantee is a tagged union validated at construction: the Kind
  selects the variant and Validate rejects anything else.

INVARIANTS (enforced by Validate):
  - StartDate < EndDate
  - Exactly one guarantee variant present, matching Kind
  - DailyLateFeeRate >= 0 when set (nil means the 1%/day default)
  - BaseMonthlyRent > 0, DueDay in 1..31
  - AdjustmentFrequencyMonths >= 1 for percentage and index policies

SEE ALSO:
  - payment.go: Installment model
  - lifecycle.go: Status transitions
*/
package lease

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ADJUSTMENT POLICY
// =============================================================================

type AdjustmentPolicy string

const (
	// AdjustPercentage compounds the base rent by a fixed percentage
	// every AdjustmentFrequencyMonths.
	AdjustPercentage AdjustmentPolicy = "percentage"

	// AdjustIndex compounds the base rent by the published index rates
	// of each completed adjustment window.
	AdjustIndex AdjustmentPolicy = "index"

	// AdjustManual leaves the rent untouched; overrides are applied by
	// the caller outside the engine.
	AdjustManual AdjustmentPolicy = "manual"
)

// =============================================================================
// GUARANTEE - Exactly one variant backs the tenant's obligations
// =============================================================================

type GuaranteeKind string

const (
	GuaranteeGuarantor GuaranteeKind = "guarantor"
	GuaranteeInsurance GuaranteeKind = "insurance"
)

// Guarantor is a person vouching for the tenant.
type Guarantor struct {
	Name  string
	Phone string
	Email string
	TaxID string
}

// SuretyInsurance is a surety/caución policy backing the tenant.
type SuretyInsurance struct {
	Company       string
	PolicyNumber  string
	InsuredAmount Money
	IssuedAt      time.Time
	ExpiresAt     time.Time
	Contact       string
	Notes         string
}

// Guarantee is a tagged union: Kind selects which variant is populated.
type Guarantee struct {
	Kind      GuaranteeKind
	Guarantor *Guarantor
	Insurance *SuretyInsurance
}

// Validate checks that exactly one variant is present and matches Kind.
func (g Guarantee) Validate() error {
	switch g.Kind {
	case GuaranteeGuarantor:
		if g.Guarantor == nil || g.Insurance != nil {
			return &IntegrityError{Field: "guarantee", Reason: "kind guarantor requires guarantor details and no insurance"}
		}
	case GuaranteeInsurance:
		if g.Insurance == nil || g.Guarantor != nil {
			return &IntegrityError{Field: "guarantee", Reason: "kind insurance requires policy details and no guarantor"}
		}
	default:
		return &IntegrityError{Field: "guarantee", Reason: "unknown guarantee kind"}
	}
	return nil
}

// =============================================================================
// CONTRACT
// =============================================================================

type ContractStatus string

const (
	ContractPending   ContractStatus = "pending"   // signed, not yet started
	ContractActive    ContractStatus = "active"
	ContractSuspended ContractStatus = "suspended" // penalties and due dates paused
	ContractFinished  ContractStatus = "finished"  // terminal
)

// DefaultDailyLateFeeRate is the penalty rate applied when a contract does
// not set its own: 1% of unpaid principal per day late.
var DefaultDailyLateFeeRate = decimal.NewFromInt(1)

// Suspension is one closed administrative pause, From inclusive to To
// exclusive, both at UTC midnight.
type Suspension struct {
	From time.Time
	To   time.Time
}

type Contract struct {
	ID         ContractID
	PropertyID string
	TenantID   string
	LandlordID string

	StartDate time.Time
	EndDate   time.Time

	BaseMonthlyRent Money
	DueDay          int // day of month each installment falls due

	AdjustmentPolicy          AdjustmentPolicy
	AdjustmentFrequencyMonths int
	// AdjustmentValue is the percentage magnitude for the percentage
	// policy. Ignored for index (rates come from the table) and manual.
	AdjustmentValue decimal.Decimal

	Guarantee Guarantee

	// DailyLateFeeRate is the penalty percent per day late. nil means
	// the 1%/day default; an explicit zero disables penalties.
	DailyLateFeeRate *decimal.Decimal

	Payments  []Payment
	Incidents []Incident

	Status      ContractStatus
	SuspendedAt *time.Time // open pause; closed pauses land in Suspensions

	// Suspensions records every completed administrative pause. Penalty
	// accrual skips the days inside these intervals.
	Suspensions []Suspension

	// Version supports optimistic concurrency at the store boundary.
	// The engine never reads it; stores bump it on save.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewContract validates the parameters and returns a contract in its
// initial state: pending if the start date is in the future, else active.
func NewContract(c Contract, now time.Time) (*Contract, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if DateOnly(now).Before(DateOnly(c.StartDate)) {
		c.Status = ContractPending
	} else {
		c.Status = ContractActive
	}
	c.CreatedAt = now
	c.UpdatedAt = now
	return &c, nil
}

// Validate enforces the contract invariants. Malformed parameters fail
// with ErrDataIntegrity.
func (c *Contract) Validate() error {
	if !c.StartDate.Before(c.EndDate) {
		return &IntegrityError{Field: "endDate", Reason: "must be after startDate"}
	}
	if !c.BaseMonthlyRent.IsPositive() {
		return &IntegrityError{Field: "baseMonthlyRent", Reason: "must be positive"}
	}
	if c.BaseMonthlyRent.Currency == "" {
		return &IntegrityError{Field: "billingCurrency", Reason: "must be set"}
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return &IntegrityError{Field: "dueDay", Reason: "must be between 1 and 31"}
	}
	switch c.AdjustmentPolicy {
	case AdjustPercentage, AdjustIndex:
		if c.AdjustmentFrequencyMonths < 1 {
			return &IntegrityError{Field: "adjustmentFrequencyMonths", Reason: "must be at least 1"}
		}
	case AdjustManual:
		// No frequency requirement; the rent only changes by override.
	default:
		return &IntegrityError{Field: "adjustmentPolicy", Reason: "unknown policy " + string(c.AdjustmentPolicy)}
	}
	if c.DailyLateFeeRate != nil && c.DailyLateFeeRate.IsNegative() {
		return &IntegrityError{Field: "dailyLateFeeRate", Reason: "must not be negative"}
	}
	return c.Guarantee.Validate()
}

// LateFeeRate returns the effective daily penalty rate in percent.
func (c *Contract) LateFeeRate() decimal.Decimal {
	if c.DailyLateFeeRate == nil {
		return DefaultDailyLateFeeRate
	}
	return *c.DailyLateFeeRate
}

// FindPayment returns the installment for a billing period, or nil.
func (c *Contract) FindPayment(period BillingPeriod) *Payment {
	for i := range c.Payments {
		if c.Payments[i].Period.Equal(period) {
			return &c.Payments[i]
		}
	}
	return nil
}

// FindIncident returns the incident with the given ID, or nil.
func (c *Contract) FindIncident(id IncidentID) *Incident {
	for i := range c.Incidents {
		if c.Incidents[i].ID == id {
			return &c.Incidents[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the contract snapshot. Stores hand out
// clones so callers can mutate freely before saving.
func (c *Contract) Clone() *Contract {
	cp := *c

	if c.DailyLateFeeRate != nil {
		rate := *c.DailyLateFeeRate
		cp.DailyLateFeeRate = &rate
	}
	if c.SuspendedAt != nil {
		at := *c.SuspendedAt
		cp.SuspendedAt = &at
	}
	if c.Suspensions != nil {
		cp.Suspensions = append([]Suspension(nil), c.Suspensions...)
	}
	if c.Guarantee.Guarantor != nil {
		g := *c.Guarantee.Guarantor
		cp.Guarantee.Guarantor = &g
	}
	if c.Guarantee.Insurance != nil {
		ins := *c.Guarantee.Insurance
		cp.Guarantee.Insurance = &ins
	}

	cp.Payments = make([]Payment, len(c.Payments))
	for i, p := range c.Payments {
		if p.PaymentDate != nil {
			at := *p.PaymentDate
			p.PaymentDate = &at
		}
		p.ServiceCharges = append([]ServiceCharge(nil), p.ServiceCharges...)
		p.LateFees = append([]LateFeeEntry(nil), p.LateFees...)
		cp.Payments[i] = p
	}

	cp.Incidents = make([]Incident, len(c.Incidents))
	for i, inc := range c.Incidents {
		if inc.ResolvedAt != nil {
			at := *inc.ResolvedAt
			inc.ResolvedAt = &at
		}
		inc.Comments = append([]Comment(nil), inc.Comments...)
		cp.Incidents[i] = inc
	}

	return &cp
}

// AllSettled reports whether every installment has been fully paid.
// Contracts past their end date stay active while debt remains.
func (c *Contract) AllSettled() bool {
	for i := range c.Payments {
		if !c.Payments[i].Settled() {
			return false
		}
	}
	return true
}
