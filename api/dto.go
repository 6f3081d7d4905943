/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

TYPES:
  Contract:
    ContractDTO, GuaranteeDTO, SuspensionDTO, CreateContractRequest

  Payment:
    PaymentDTO, ServiceChargeDTO, LateFeeDTO,
    RegisterPaymentRequest/Response

  Rent and summary:
    RentQuoteDTO, SummaryDTO

  Incident:
    IncidentDTO, CommentDTO, CreateIncidentRequest, AddCommentRequest,
    AdvanceIncidentRequest

  Index:
    IndexRateDTO, SetIndexRateRequest

  Audit:
    AuditEntryDTO

MONEY AND DATES:
  Monetary amounts travel as decimal strings to avoid float precision
  loss in clients. Dates are YYYY-MM-DD, timestamps RFC3339, billing
  periods YYYY-MM.

VALIDATION:
  Validation is done in handlers and in the domain layer, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - lease/contract.go: Domain model these map from
*/
package api

import (
	"time"

	"github.com/warp/lease-engine/lease"
)

// =============================================================================
// CONTRACT TYPES
// =============================================================================

// GuaranteeDTO is the tagged-union guarantee in wire form. Exactly one of
// Guarantor or Insurance is set, matching Kind.
type GuaranteeDTO struct {
	Kind      string              `json:"kind"`
	Guarantor *GuarantorDTO       `json:"guarantor,omitempty"`
	Insurance *SuretyInsuranceDTO `json:"insurance,omitempty"`
}

type GuarantorDTO struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
	TaxID string `json:"tax_id,omitempty"`
}

type SuretyInsuranceDTO struct {
	Company       string `json:"company"`
	PolicyNumber  string `json:"policy_number"`
	InsuredAmount string `json:"insured_amount,omitempty"`
	IssuedAt      string `json:"issued_at,omitempty"`
	ExpiresAt     string `json:"expires_at,omitempty"`
	Contact       string `json:"contact,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// ContractDTO represents a contract in API responses. Status is derived
// at response time, not read from storage.
type ContractDTO struct {
	ID         string `json:"id"`
	PropertyID string `json:"property_id"`
	TenantID   string `json:"tenant_id"`
	LandlordID string `json:"landlord_id"`

	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	BaseMonthlyRent string `json:"base_monthly_rent"`
	Currency        string `json:"currency"`
	DueDay          int    `json:"due_day"`

	AdjustmentPolicy          string `json:"adjustment_policy"`
	AdjustmentFrequencyMonths int    `json:"adjustment_frequency_months,omitempty"`
	AdjustmentValue           string `json:"adjustment_value,omitempty"`

	Guarantee        GuaranteeDTO `json:"guarantee"`
	DailyLateFeeRate *string      `json:"daily_late_fee_rate,omitempty"`

	Status      string          `json:"status"`
	SuspendedAt *string         `json:"suspended_at,omitempty"`
	Suspensions []SuspensionDTO `json:"suspensions,omitempty"`

	Payments  []PaymentDTO  `json:"payments,omitempty"`
	Incidents []IncidentDTO `json:"incidents,omitempty"`

	Version   int64  `json:"version"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// SuspensionDTO is one completed administrative pause; no penalties
// accrue between From and To.
type SuspensionDTO struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CreateContractRequest creates a new contract. The payment schedule is
// generated immediately from the current index table.
type CreateContractRequest struct {
	PropertyID string `json:"property_id"`
	TenantID   string `json:"tenant_id"`
	LandlordID string `json:"landlord_id"`

	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`

	BaseMonthlyRent string `json:"base_monthly_rent"`
	Currency        string `json:"currency"`
	DueDay          int    `json:"due_day"`

	AdjustmentPolicy          string `json:"adjustment_policy"`
	AdjustmentFrequencyMonths int    `json:"adjustment_frequency_months"`
	AdjustmentValue           string `json:"adjustment_value"`

	Guarantee        GuaranteeDTO `json:"guarantee"`
	DailyLateFeeRate *string      `json:"daily_late_fee_rate"`
}

// =============================================================================
// PAYMENT TYPES
// =============================================================================

type ServiceChargeDTO struct {
	Concept string `json:"concept"`
	Amount  string `json:"amount"`
}

type LateFeeDTO struct {
	AssessedAt string `json:"assessed_at"`
	DaysLate   int    `json:"days_late"`
	Amount     string `json:"amount"`
}

// PaymentDTO represents one installment. Status is derived against the
// request time.
type PaymentDTO struct {
	ID     string `json:"id"`
	Period string `json:"period"` // YYYY-MM

	DueDate   string `json:"due_date"`
	DueAmount string `json:"due_amount"`

	AmountPaid  string  `json:"amount_paid"`
	Status      string  `json:"status"`
	PaymentDate *string `json:"payment_date,omitempty"`
	Method      string  `json:"method,omitempty"`
	ReceiptRef  string  `json:"receipt_ref,omitempty"`

	ServiceCharges []ServiceChargeDTO `json:"service_charges,omitempty"`
	LateFees       []LateFeeDTO       `json:"late_fees,omitempty"`
}

// RegisterPaymentRequest records a (possibly partial) payment against an
// installment.
type RegisterPaymentRequest struct {
	Period string `json:"period"` // YYYY-MM
	Amount string `json:"amount"`
	PaidAt string `json:"paid_at"` // YYYY-MM-DD; defaults to today
	Method string `json:"method"`
}

// AddServiceChargeRequest itemizes an extra on an installment.
type AddServiceChargeRequest struct {
	Period  string `json:"period"` // YYYY-MM
	Concept string `json:"concept"`
	Amount  string `json:"amount"`
}

// RegisterPaymentResponse reports the outcome of a registration,
// including any penalty assessed during it.
type RegisterPaymentResponse struct {
	Payment   PaymentDTO `json:"payment"`
	LateFee   string     `json:"late_fee"`
	NewStatus string     `json:"new_status"`
}

// =============================================================================
// RENT AND SUMMARY TYPES
// =============================================================================

// RentQuoteDTO is the rent effective at a date plus the adjustment window
// boundaries it falls in.
type RentQuoteDTO struct {
	Amount            string `json:"amount"`
	Currency          string `json:"currency"`
	EffectiveAt       string `json:"effective_at"`
	PeriodStart       string `json:"period_start"`
	PeriodEnd         string `json:"period_end"`
	CumulativePercent string `json:"cumulative_percent"`
}

// SummaryDTO is the derived financial snapshot of one contract.
type SummaryDTO struct {
	ContractID string `json:"contract_id"`
	Status     string `json:"status"`
	AsOf       string `json:"as_of"`

	CurrentRent RentQuoteDTO `json:"current_rent"`

	TotalDue             string `json:"total_due"`
	TotalCollected       string `json:"total_collected"`
	OutstandingPrincipal string `json:"outstanding_principal"`
	AccruedPenalties     string `json:"accrued_penalties"`
	ServiceCharges       string `json:"service_charges"`

	NextDuePeriod *string `json:"next_due_period,omitempty"`
	NextDueDate   *string `json:"next_due_date,omitempty"`
	DaysUntilDue  int     `json:"days_until_due"`
	HasOverdue    bool    `json:"has_overdue"`
	OpenIncidents int     `json:"open_incidents"`
}

// =============================================================================
// INCIDENT TYPES
// =============================================================================

type CommentDTO struct {
	Author string `json:"author"`
	Text   string `json:"text"`
	At     string `json:"at"`
}

type IncidentDTO struct {
	ID          string       `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      string       `json:"status"`
	CreatedAt   string       `json:"created_at"`
	ResolvedAt  *string      `json:"resolved_at,omitempty"`
	Comments    []CommentDTO `json:"comments,omitempty"`
}

type CreateIncidentRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type AddCommentRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// AdvanceIncidentRequest moves an incident to the given status. Only
// forward moves are allowed.
type AdvanceIncidentRequest struct {
	To string `json:"to"`
}

// =============================================================================
// INDEX TYPES
// =============================================================================

// IndexRateDTO is one published monthly rate, in percent.
type IndexRateDTO struct {
	Year  int    `json:"year"`
	Month int    `json:"month"`
	Rate  string `json:"rate"`
}

// SetIndexRateRequest upserts the rate for the month in the URL.
type SetIndexRateRequest struct {
	Rate string `json:"rate"`
}

// =============================================================================
// AUDIT TYPES
// =============================================================================

type AuditEntryDTO struct {
	ID         string         `json:"id"`
	At         string         `json:"at"`
	ContractID string         `json:"contract_id"`
	Kind       string         `json:"kind"`
	Payload    map[string]any `json:"payload,omitempty"`
}

// =============================================================================
// ERROR RESPONSE
// =============================================================================

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// DOMAIN -> DTO CONVERTERS
// =============================================================================

func toGuaranteeDTO(g lease.Guarantee) GuaranteeDTO {
	dto := GuaranteeDTO{Kind: string(g.Kind)}
	if g.Guarantor != nil {
		dto.Guarantor = &GuarantorDTO{
			Name:  g.Guarantor.Name,
			Phone: g.Guarantor.Phone,
			Email: g.Guarantor.Email,
			TaxID: g.Guarantor.TaxID,
		}
	}
	if g.Insurance != nil {
		dto.Insurance = &SuretyInsuranceDTO{
			Company:      g.Insurance.Company,
			PolicyNumber: g.Insurance.PolicyNumber,
			Contact:      g.Insurance.Contact,
			Notes:        g.Insurance.Notes,
		}
		if !g.Insurance.InsuredAmount.IsZero() {
			dto.Insurance.InsuredAmount = g.Insurance.InsuredAmount.Value.String()
		}
		if !g.Insurance.IssuedAt.IsZero() {
			dto.Insurance.IssuedAt = g.Insurance.IssuedAt.Format("2006-01-02")
		}
		if !g.Insurance.ExpiresAt.IsZero() {
			dto.Insurance.ExpiresAt = g.Insurance.ExpiresAt.Format("2006-01-02")
		}
	}
	return dto
}

func toPaymentDTO(p *lease.Payment, now time.Time) PaymentDTO {
	dto := PaymentDTO{
		ID:         string(p.ID),
		Period:     p.Period.String(),
		DueDate:    p.DueDate.Format("2006-01-02"),
		DueAmount:  p.DueAmount.Value.String(),
		AmountPaid: p.AmountPaid.Value.String(),
		Status:     string(lease.DeriveStatus(p, now)),
		Method:     p.Method,
		ReceiptRef: p.ReceiptRef,
	}
	if p.PaymentDate != nil {
		dto.PaymentDate = strPtr(p.PaymentDate.Format("2006-01-02"))
	}
	for _, s := range p.ServiceCharges {
		dto.ServiceCharges = append(dto.ServiceCharges, ServiceChargeDTO{
			Concept: s.Concept,
			Amount:  s.Amount.Value.String(),
		})
	}
	for _, f := range p.LateFees {
		dto.LateFees = append(dto.LateFees, LateFeeDTO{
			AssessedAt: f.AssessedAt.Format("2006-01-02"),
			DaysLate:   f.DaysLate,
			Amount:     f.Amount.Value.String(),
		})
	}
	return dto
}

func toIncidentDTO(inc *lease.Incident) IncidentDTO {
	dto := IncidentDTO{
		ID:          string(inc.ID),
		Title:       inc.Title,
		Description: inc.Description,
		Status:      string(inc.Status),
		CreatedAt:   inc.CreatedAt.Format(time.RFC3339),
	}
	if inc.ResolvedAt != nil {
		dto.ResolvedAt = strPtr(inc.ResolvedAt.Format(time.RFC3339))
	}
	for _, cm := range inc.Comments {
		dto.Comments = append(dto.Comments, CommentDTO{
			Author: cm.Author,
			Text:   cm.Text,
			At:     cm.At.Format(time.RFC3339),
		})
	}
	return dto
}

// toContractDTO maps a contract snapshot. Payments and incidents are
// included only when detail is true, so list responses stay lean.
func toContractDTO(c *lease.Contract, now time.Time, detail bool) ContractDTO {
	dto := ContractDTO{
		ID:         string(c.ID),
		PropertyID: c.PropertyID,
		TenantID:   c.TenantID,
		LandlordID: c.LandlordID,

		StartDate: c.StartDate.Format("2006-01-02"),
		EndDate:   c.EndDate.Format("2006-01-02"),

		BaseMonthlyRent: c.BaseMonthlyRent.Value.String(),
		Currency:        c.BaseMonthlyRent.Currency,
		DueDay:          c.DueDay,

		AdjustmentPolicy:          string(c.AdjustmentPolicy),
		AdjustmentFrequencyMonths: c.AdjustmentFrequencyMonths,

		Guarantee: toGuaranteeDTO(c.Guarantee),

		Status:    string(lease.EvaluateStatus(c, now)),
		Version:   c.Version,
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
		UpdatedAt: c.UpdatedAt.Format(time.RFC3339),
	}
	if !c.AdjustmentValue.IsZero() {
		dto.AdjustmentValue = c.AdjustmentValue.String()
	}
	if c.DailyLateFeeRate != nil {
		dto.DailyLateFeeRate = strPtr(c.DailyLateFeeRate.String())
	}
	if c.SuspendedAt != nil {
		dto.SuspendedAt = strPtr(c.SuspendedAt.Format("2006-01-02"))
	}
	for _, s := range c.Suspensions {
		dto.Suspensions = append(dto.Suspensions, SuspensionDTO{
			From: s.From.Format("2006-01-02"),
			To:   s.To.Format("2006-01-02"),
		})
	}

	if detail {
		for i := range c.Payments {
			dto.Payments = append(dto.Payments, toPaymentDTO(&c.Payments[i], now))
		}
		for i := range c.Incidents {
			dto.Incidents = append(dto.Incidents, toIncidentDTO(&c.Incidents[i]))
		}
	}
	return dto
}

func toRentQuoteDTO(q lease.RentQuote, at time.Time) RentQuoteDTO {
	return RentQuoteDTO{
		Amount:            q.Amount.Value.String(),
		Currency:          q.Amount.Currency,
		EffectiveAt:       at.Format("2006-01-02"),
		PeriodStart:       q.PeriodStart.Format("2006-01-02"),
		PeriodEnd:         q.PeriodEnd.Format("2006-01-02"),
		CumulativePercent: q.CumulativePercent.String(),
	}
}

func toSummaryDTO(s lease.Summary) SummaryDTO {
	dto := SummaryDTO{
		ContractID: string(s.Contract),
		Status:     string(s.Status),
		AsOf:       s.AsOf.Format("2006-01-02"),

		CurrentRent: toRentQuoteDTO(s.CurrentRent, s.AsOf),

		TotalDue:             s.TotalDue.Value.String(),
		TotalCollected:       s.TotalCollected.Value.String(),
		OutstandingPrincipal: s.OutstandingPrincipal.Value.String(),
		AccruedPenalties:     s.AccruedPenalties.Value.String(),
		ServiceCharges:       s.ServiceCharges.Value.String(),

		DaysUntilDue:  s.DaysUntilDue,
		HasOverdue:    s.HasOverdue,
		OpenIncidents: s.OpenIncidents,
	}
	if s.NextDue != nil {
		dto.NextDuePeriod = strPtr(s.NextDue.String())
	}
	if s.NextDueDate != nil {
		dto.NextDueDate = strPtr(s.NextDueDate.Format("2006-01-02"))
	}
	return dto
}

func strPtr(s string) *string {
	return &s
}
