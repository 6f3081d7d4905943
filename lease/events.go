/*
events.go - Structured event values returned by mutating operations

PURPOSE:
  A global publish/subscribe bus would hide mutable state and make the
  engine hard to test in isolation, so mutating operations instead
  RETURN a structured event alongside their result. The hosting layer
  decides what to do with it - append to the audit log, notify, or drop.

USAGE:
  ev, err := lease.RegisterPayment(contract, period, tender, paidAt, "cash")
  if err == nil {
      audit.Append(ctx, lease.AuditEntry{
          Contract: ev.ContractRef(),
          Kind:     ev.Kind(),
          Payload:  ev.Payload(),
      })
  }
*/
package lease

import "time"

type EventKind string

const (
	EventScheduleGenerated  EventKind = "schedule_generated"
	EventPaymentRegistered  EventKind = "payment_registered"
	EventContractSuspended  EventKind = "contract_suspended"
	EventContractResumed    EventKind = "contract_resumed"
	EventContractTerminated EventKind = "contract_terminated"
	EventIncidentCreated    EventKind = "incident_created"
	EventIncidentAdvanced   EventKind = "incident_advanced"
	EventCommentAdded       EventKind = "comment_added"
	EventServiceChargeAdded EventKind = "service_charge_added"
)

// Event is the common surface of all engine events.
type Event interface {
	Kind() EventKind
	ContractRef() ContractID
	Payload() map[string]any
}

// =============================================================================
// EVENT VALUES
// =============================================================================

type ScheduleGenerated struct {
	Contract ContractID
	Added    int
	From, To BillingPeriod
}

func (e ScheduleGenerated) Kind() EventKind          { return EventScheduleGenerated }
func (e ScheduleGenerated) ContractRef() ContractID  { return e.Contract }
func (e ScheduleGenerated) Payload() map[string]any {
	return map[string]any{"added": e.Added, "from": e.From.String(), "to": e.To.String()}
}

type PaymentRegistered struct {
	Contract  ContractID
	Period    BillingPeriod
	Tendered  Money
	LateFee   Money
	NewStatus PaymentStatus
	PaidAt    time.Time
}

func (e PaymentRegistered) Kind() EventKind         { return EventPaymentRegistered }
func (e PaymentRegistered) ContractRef() ContractID { return e.Contract }
func (e PaymentRegistered) Payload() map[string]any {
	return map[string]any{
		"period":   e.Period.String(),
		"tendered": e.Tendered.Value.String(),
		"late_fee": e.LateFee.Value.String(),
		"status":   string(e.NewStatus),
	}
}

type ContractTransitioned struct {
	Contract ContractID
	From     ContractStatus
	To       ContractStatus
	At       time.Time
}

func (e ContractTransitioned) Kind() EventKind {
	switch e.To {
	case ContractSuspended:
		return EventContractSuspended
	case ContractFinished:
		return EventContractTerminated
	default:
		return EventContractResumed
	}
}
func (e ContractTransitioned) ContractRef() ContractID { return e.Contract }
func (e ContractTransitioned) Payload() map[string]any {
	return map[string]any{"from": string(e.From), "to": string(e.To)}
}

type IncidentCreated struct {
	Contract ContractID
	Incident IncidentID
	Title    string
}

func (e IncidentCreated) Kind() EventKind         { return EventIncidentCreated }
func (e IncidentCreated) ContractRef() ContractID { return e.Contract }
func (e IncidentCreated) Payload() map[string]any {
	return map[string]any{"incident": string(e.Incident), "title": e.Title}
}

type IncidentAdvanced struct {
	Contract ContractID
	Incident IncidentID
	From     IncidentStatus
	To       IncidentStatus
}

func (e IncidentAdvanced) Kind() EventKind         { return EventIncidentAdvanced }
func (e IncidentAdvanced) ContractRef() ContractID { return e.Contract }
func (e IncidentAdvanced) Payload() map[string]any {
	return map[string]any{"incident": string(e.Incident), "from": string(e.From), "to": string(e.To)}
}

type ServiceChargeAdded struct {
	Contract ContractID
	Period   BillingPeriod
	Concept  string
	Amount   Money
}

func (e ServiceChargeAdded) Kind() EventKind         { return EventServiceChargeAdded }
func (e ServiceChargeAdded) ContractRef() ContractID { return e.Contract }
func (e ServiceChargeAdded) Payload() map[string]any {
	return map[string]any{"period": e.Period.String(), "concept": e.Concept, "amount": e.Amount.Value.String()}
}

type CommentAdded struct {
	Contract ContractID
	Incident IncidentID
	Author   string
}

func (e CommentAdded) Kind() EventKind         { return EventCommentAdded }
func (e CommentAdded) ContractRef() ContractID { return e.Contract }
func (e CommentAdded) Payload() map[string]any {
	return map[string]any{"incident": string(e.Incident), "author": e.Author}
}
