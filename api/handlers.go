/*
handlers.go - HTTP API handlers for the lease contract engine

PURPOSE:
  Exposes the contract engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Contracts:
    GET    /api/contracts                    List all contracts
    POST   /api/contracts                    Create contract (schedules payments)
    GET    /api/contracts/{id}               Contract detail with installments
    GET    /api/contracts/{id}/rent?at=     Rent quote at a date
    GET    /api/contracts/{id}/summary       Financial summary
    POST   /api/contracts/{id}/schedule      Regenerate/extend the schedule

  Payments:
    POST   /api/contracts/{id}/payments      Register a payment
    POST   /api/contracts/{id}/charges       Itemize a service charge

  Lifecycle:
    POST   /api/contracts/{id}/suspend
    POST   /api/contracts/{id}/resume
    POST   /api/contracts/{id}/terminate

  Incidents:
    GET    /api/contracts/{id}/incidents
    POST   /api/contracts/{id}/incidents
    POST   /api/contracts/{id}/incidents/{iid}/comments
    POST   /api/contracts/{id}/incidents/{iid}/advance

  Indices:
    GET    /api/indices                      Published monthly rates
    PUT    /api/indices/{year}/{month}       Upsert one rate

  Audit:
    GET    /api/audit?contract_id=           Event history

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Contracts: Contract persistence
  - Indices: Index rate persistence
  - Audit: Append-only event log
  - Now: Clock, injectable for tests

MUTATION FLOW:
  1. Load the contract snapshot
  2. Refresh its derived status against the clock
  3. Apply the domain operation
  4. Save (optimistic concurrency; stale writes return 409)
  5. Dispatch the emitted event to the audit log

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid amounts, malformed input
  - 404: Contract, installment, or incident not found
  - 409: Invalid state/transition, concurrent modification
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - lease/: Domain operations these handlers delegate to
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/warp/lease-engine/lease"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Contracts lease.ContractStore
	Indices   lease.IndexStore
	Audit     lease.AuditLog

	// Now is the clock; tests pin it.
	Now func() time.Time
}

// NewHandler creates a new handler with the given stores.
func NewHandler(contracts lease.ContractStore, indices lease.IndexStore, audit lease.AuditLog) *Handler {
	return &Handler{
		Contracts: contracts,
		Indices:   indices,
		Audit:     audit,
		Now:       time.Now,
	}
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// dispatch records emitted domain events in the audit log. Audit failures
// do not fail the request; the mutation already committed.
func (h *Handler) dispatch(r *http.Request, events ...lease.Event) {
	for _, ev := range events {
		_ = h.Audit.Append(r.Context(), lease.AuditEntry{
			ID:       uuid.NewString(),
			At:       h.now(),
			Contract: ev.ContractRef(),
			Kind:     ev.Kind(),
			Payload:  ev.Payload(),
		})
	}
}

// =============================================================================
// CONTRACT HANDLERS
// =============================================================================

// ListContracts returns all contracts, newest first, without installments.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.Contracts.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list contracts", err)
		return
	}

	now := h.now()
	dtos := make([]ContractDTO, len(contracts))
	for i, c := range contracts {
		dtos[i] = toContractDTO(c, now, false)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetContract returns a single contract with its installments and
// incidents.
func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadContract(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toContractDTO(c, h.now(), true))
}

// CreateContract creates a contract and generates its payment schedule
// from the current index table.
func (h *Handler) CreateContract(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	params, err := contractFromRequest(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid contract", err)
		return
	}

	now := h.now()
	c, err := lease.NewContract(*params, now)
	if err != nil {
		writeDomainError(w, "Invalid contract", err)
		return
	}

	table, err := h.Indices.Current(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load index table", err)
		return
	}
	ev, err := lease.GenerateSchedule(c, table)
	if err != nil {
		writeDomainError(w, "Failed to generate schedule", err)
		return
	}

	if err := h.Contracts.Create(r.Context(), c); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create contract", err)
		return
	}
	h.dispatch(r, ev)

	writeJSON(w, http.StatusCreated, toContractDTO(c, now, true))
}

// GetRent returns the rent effective at ?at= (default today) under the
// contract's adjustment policy.
func (h *Handler) GetRent(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadContract(w, r)
	if !ok {
		return
	}

	at := h.now()
	if v := r.URL.Query().Get("at"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid 'at' date (use YYYY-MM-DD)", err)
			return
		}
		at = parsed
	}

	table, err := h.Indices.Current(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load index table", err)
		return
	}
	quote, err := lease.ComputeRent(c, table, at)
	if err != nil {
		writeDomainError(w, "Failed to compute rent", err)
		return
	}

	writeJSON(w, http.StatusOK, toRentQuoteDTO(quote, at))
}

// GetSummary returns the derived financial snapshot of a contract.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadContract(w, r)
	if !ok {
		return
	}

	table, err := h.Indices.Current(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load index table", err)
		return
	}
	summary, err := lease.BuildSummary(c, table, h.now())
	if err != nil {
		writeDomainError(w, "Failed to build summary", err)
		return
	}

	writeJSON(w, http.StatusOK, toSummaryDTO(summary))
}

// RegenerateSchedule re-runs schedule generation. Existing installments
// are untouched; only missing periods are added (e.g. after a term
// extension or index corrections).
func (h *Handler) RegenerateSchedule(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadContract(w, r)
	if !ok {
		return
	}

	table, err := h.Indices.Current(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load index table", err)
		return
	}
	ev, err := lease.GenerateSchedule(c, table)
	if err != nil {
		writeDomainError(w, "Failed to generate schedule", err)
		return
	}

	if !h.saveContract(w, r, c) {
		return
	}
	h.dispatch(r, ev)

	writeJSON(w, http.StatusOK, toContractDTO(c, h.now(), true))
}

// =============================================================================
// PAYMENT HANDLERS
// =============================================================================

// RegisterPayment records a full or partial payment against an
// installment, assessing any late fee accrued up to the payment date.
func (h *Handler) RegisterPayment(w http.ResponseWriter, r *http.Request) {
	var req RegisterPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	period, err := lease.ParseBillingPeriod(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	paidAt := h.now()
	if req.PaidAt != "" {
		parsed, err := time.Parse("2006-01-02", req.PaidAt)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid paid_at date (use YYYY-MM-DD)", err)
			return
		}
		paidAt = parsed
	}

	c, ok := h.loadContract(w, r)
	if !ok {
		return
	}
	lease.Refresh(c, paidAt)

	tendered := lease.NewMoneyFromDecimal(amount, c.BaseMonthlyRent.Currency)
	ev, err := lease.RegisterPayment(c, period, tendered, paidAt, req.Method)
	if err != nil {
		writeDomainError(w, "Failed to register payment", err)
		return
	}

	if !h.saveContract(w, r, c) {
		return
	}
	h.dispatch(r, ev)

	p := c.FindPayment(period)
	writeJSON(w, http.StatusOK, RegisterPaymentResponse{
		Payment:   toPaymentDTO(p, paidAt),
		LateFee:   ev.LateFee.Value.String(),
		NewStatus: string(ev.NewStatus),
	})
}

// AddServiceCharge itemizes an extra (building expenses, utilities) on
// an unsettled installment.
func (h *Handler) AddServiceCharge(w http.ResponseWriter, r *http.Request) {
	var req AddServiceChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	period, err := lease.ParseBillingPeriod(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period (use YYYY-MM)", err)
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	c, ok := h.loadContract(w, r)
	if !ok {
		return
	}

	charge := lease.NewMoneyFromDecimal(amount, c.BaseMonthlyRent.Currency)
	ev, err := lease.AddServiceCharge(c, period, req.Concept, charge)
	if err != nil {
		writeDomainError(w, "Failed to add service charge", err)
		return
	}

	if !h.saveContract(w, r, c) {
		return
	}
	h.dispatch(r, ev)

	writeJSON(w, http.StatusCreated, toPaymentDTO(c.FindPayment(period), h.now()))
}

// =============================================================================
// LIFECYCLE HANDLERS
// =============================================================================

// SuspendContract pauses an active contract. Late fees stop accruing at
// the suspension date.
func (h *Handler) SuspendContract(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, lease.Suspend)
}

// ResumeContract reactivates a suspended contract.
func (h *Handler) ResumeContract(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, lease.Resume)
}

// TerminateContract ends a contract early. Terminal.
func (h *Handler) TerminateContract(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, lease.Terminate)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(*lease.Contract, time.Time) (lease.ContractTransitioned, error)) {
	c, ok := h.loadContract(w, r)
	if !ok {
		return
	}

	ev, err := op(c, h.now())
	if err != nil {
		writeDomainError(w, "Transition rejected", err)
		return
	}

	if !h.saveContract(w, r, c) {
		return
	}
	h.dispatch(r, ev)

	writeJSON(w, http.StatusOK, toContractDTO(c, h.now(), false))
}

// =============================================================================
// INCIDENT HANDLERS
// =============================================================================

// ListIncidents returns the incidents of a contract.
func (h *Handler) ListIncidents(w http.ResponseWriter, r *http.Request) {
	c, ok := h.loadContract(w, r)
	if !ok {
		return
	}

	dtos := make([]IncidentDTO, len(c.Incidents))
	for i := range c.Incidents {
		dtos[i] = toIncidentDTO(&c.Incidents[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateIncident opens a maintenance incident on the contract.
func (h *Handler) CreateIncident(w http.ResponseWriter, r *http.Request) {
	var req CreateIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, ok := h.loadContract(w, r)
	if !ok {
		return
	}
	lease.Refresh(c, h.now())

	inc, ev, err := lease.CreateIncident(c, req.Title, req.Description, h.now())
	if err != nil {
		writeDomainError(w, "Failed to create incident", err)
		return
	}

	if !h.saveContract(w, r, c) {
		return
	}
	h.dispatch(r, ev)

	writeJSON(w, http.StatusCreated, toIncidentDTO(inc))
}

// AddIncidentComment appends a comment to an unresolved incident.
func (h *Handler) AddIncidentComment(w http.ResponseWriter, r *http.Request) {
	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, ok := h.loadContract(w, r)
	if !ok {
		return
	}
	incidentID := lease.IncidentID(chi.URLParam(r, "iid"))

	ev, err := lease.AddComment(c, incidentID, req.Author, req.Text, h.now())
	if err != nil {
		writeDomainError(w, "Failed to add comment", err)
		return
	}

	if !h.saveContract(w, r, c) {
		return
	}
	h.dispatch(r, ev)

	writeJSON(w, http.StatusCreated, toIncidentDTO(c.FindIncident(incidentID)))
}

// AdvanceIncident moves an incident forward (open -> in_progress ->
// resolved). Reopening is rejected.
func (h *Handler) AdvanceIncident(w http.ResponseWriter, r *http.Request) {
	var req AdvanceIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	c, ok := h.loadContract(w, r)
	if !ok {
		return
	}
	incidentID := lease.IncidentID(chi.URLParam(r, "iid"))

	ev, err := lease.AdvanceIncident(c, incidentID, lease.IncidentStatus(req.To), h.now())
	if err != nil {
		writeDomainError(w, "Failed to advance incident", err)
		return
	}

	if !h.saveContract(w, r, c) {
		return
	}
	h.dispatch(r, ev)

	writeJSON(w, http.StatusOK, toIncidentDTO(c.FindIncident(incidentID)))
}

// =============================================================================
// INDEX HANDLERS
// =============================================================================

// ListIndexRates returns all published monthly rates, oldest first.
func (h *Handler) ListIndexRates(w http.ResponseWriter, r *http.Request) {
	table, err := h.Indices.Current(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load index table", err)
		return
	}

	dtos := []IndexRateDTO{}
	for year, months := range table.Years {
		for month, rate := range months {
			dtos = append(dtos, IndexRateDTO{Year: year, Month: month, Rate: rate.String()})
		}
	}
	sort.Slice(dtos, func(i, j int) bool {
		if dtos[i].Year != dtos[j].Year {
			return dtos[i].Year < dtos[j].Year
		}
		return dtos[i].Month < dtos[j].Month
	})
	writeJSON(w, http.StatusOK, dtos)
}

// SetIndexRate upserts the published rate for one month.
// PUT /api/indices/{year}/{month}
func (h *Handler) SetIndexRate(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil || month < 1 || month > 12 {
		writeError(w, http.StatusBadRequest, "Invalid month", fmt.Errorf("month must be 1-12"))
		return
	}

	var req SetIndexRateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	rate, err := decimal.NewFromString(req.Rate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid rate", err)
		return
	}

	if err := h.Indices.SetRate(r.Context(), year, time.Month(month), rate); err != nil {
		writeDomainError(w, "Failed to set rate", err)
		return
	}

	writeJSON(w, http.StatusOK, IndexRateDTO{Year: year, Month: month, Rate: rate.String()})
}

// =============================================================================
// AUDIT HANDLERS
// =============================================================================

// GetAuditLog returns the event history of a contract, newest first.
// GET /api/audit?contract_id=...
func (h *Handler) GetAuditLog(w http.ResponseWriter, r *http.Request) {
	contractID := r.URL.Query().Get("contract_id")
	if contractID == "" {
		writeError(w, http.StatusBadRequest, "contract_id query parameter is required", nil)
		return
	}

	entries, err := h.Audit.ByContract(r.Context(), lease.ContractID(contractID))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to query audit log", err)
		return
	}

	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = AuditEntryDTO{
			ID:         e.ID,
			At:         e.At.Format(time.RFC3339),
			ContractID: string(e.Contract),
			Kind:       string(e.Kind),
			Payload:    e.Payload,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HELPERS
// =============================================================================

// loadContract fetches the contract in the URL, writing the error
// response itself on failure.
func (h *Handler) loadContract(w http.ResponseWriter, r *http.Request) (*lease.Contract, bool) {
	id := lease.ContractID(chi.URLParam(r, "id"))

	c, err := h.Contracts.Load(r.Context(), id)
	if err != nil {
		writeDomainError(w, "Failed to load contract", err)
		return nil, false
	}
	return c, true
}

// saveContract persists the snapshot, mapping stale writes to 409.
func (h *Handler) saveContract(w http.ResponseWriter, r *http.Request, c *lease.Contract) bool {
	c.UpdatedAt = h.now()
	if err := h.Contracts.Save(r.Context(), c); err != nil {
		writeDomainError(w, "Failed to save contract", err)
		return false
	}
	return true
}

// contractFromRequest maps the wire request to domain parameters.
// Domain-level validation happens in lease.NewContract.
func contractFromRequest(req CreateContractRequest) (*lease.Contract, error) {
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date (use YYYY-MM-DD): %w", err)
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("invalid end_date (use YYYY-MM-DD): %w", err)
	}
	baseRent, err := decimal.NewFromString(req.BaseMonthlyRent)
	if err != nil {
		return nil, fmt.Errorf("invalid base_monthly_rent: %w", err)
	}

	c := &lease.Contract{
		ID:         lease.ContractID(uuid.NewString()),
		PropertyID: req.PropertyID,
		TenantID:   req.TenantID,
		LandlordID: req.LandlordID,

		StartDate: startDate,
		EndDate:   endDate,

		BaseMonthlyRent: lease.NewMoneyFromDecimal(baseRent, req.Currency),
		DueDay:          req.DueDay,

		AdjustmentPolicy:          lease.AdjustmentPolicy(req.AdjustmentPolicy),
		AdjustmentFrequencyMonths: req.AdjustmentFrequencyMonths,

		Guarantee: guaranteeFromDTO(req.Guarantee),
	}

	if req.AdjustmentValue != "" {
		value, err := decimal.NewFromString(req.AdjustmentValue)
		if err != nil {
			return nil, fmt.Errorf("invalid adjustment_value: %w", err)
		}
		c.AdjustmentValue = value
	}
	if req.DailyLateFeeRate != nil {
		rate, err := decimal.NewFromString(*req.DailyLateFeeRate)
		if err != nil {
			return nil, fmt.Errorf("invalid daily_late_fee_rate: %w", err)
		}
		c.DailyLateFeeRate = &rate
	}
	return c, nil
}

func guaranteeFromDTO(dto GuaranteeDTO) lease.Guarantee {
	g := lease.Guarantee{Kind: lease.GuaranteeKind(dto.Kind)}
	if dto.Guarantor != nil {
		g.Guarantor = &lease.Guarantor{
			Name:  dto.Guarantor.Name,
			Phone: dto.Guarantor.Phone,
			Email: dto.Guarantor.Email,
			TaxID: dto.Guarantor.TaxID,
		}
	}
	if dto.Insurance != nil {
		ins := &lease.SuretyInsurance{
			Company:      dto.Insurance.Company,
			PolicyNumber: dto.Insurance.PolicyNumber,
			Contact:      dto.Insurance.Contact,
			Notes:        dto.Insurance.Notes,
		}
		if dto.Insurance.InsuredAmount != "" {
			if amount, err := decimal.NewFromString(dto.Insurance.InsuredAmount); err == nil {
				ins.InsuredAmount = lease.NewMoneyFromDecimal(amount, "")
			}
		}
		if dto.Insurance.IssuedAt != "" {
			if t, err := time.Parse("2006-01-02", dto.Insurance.IssuedAt); err == nil {
				ins.IssuedAt = t
			}
		}
		if dto.Insurance.ExpiresAt != "" {
			if t, err := time.Parse("2006-01-02", dto.Insurance.ExpiresAt); err == nil {
				ins.ExpiresAt = t
			}
		}
		g.Insurance = ins
	}
	return g
}

// writeDomainError maps the domain error taxonomy to HTTP status codes.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case lease.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case lease.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	case lease.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
