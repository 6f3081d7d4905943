/*
summary.go - Per-contract financial summary

PURPOSE:
  Aggregates the numbers a landlord dashboard needs for one contract:
  collected vs outstanding, accrued penalties, the current rent quote,
  and how far away (or overdue) the next unsettled installment is.
  Everything here is derived; nothing is persisted.
*/
package lease

import "time"

// Summary is a derived financial snapshot of one contract as of a date.
type Summary struct {
	Contract ContractID
	Status   ContractStatus
	AsOf     time.Time

	CurrentRent RentQuote

	TotalDue             Money // scheduled principal over the whole term
	TotalCollected       Money
	OutstandingPrincipal Money
	AccruedPenalties     Money // on unsettled installments, as of AsOf
	ServiceCharges       Money

	// NextDue describes the earliest unsettled installment, if any.
	NextDue       *BillingPeriod
	NextDueDate   *time.Time
	DaysUntilDue  int // negative when overdue
	HasOverdue    bool
	OpenIncidents int
}

// BuildSummary computes the summary for a contract snapshot against the
// current index table. Pure.
func BuildSummary(c *Contract, table IndexTable, now time.Time) (Summary, error) {
	quote, err := ComputeRent(c, table, now)
	if err != nil {
		return Summary{}, err
	}

	s := Summary{
		Contract:             c.ID,
		Status:               EvaluateStatus(c, now),
		AsOf:                 DateOnly(now),
		CurrentRent:          quote,
		TotalDue:             c.BaseMonthlyRent.Zero(),
		TotalCollected:       c.BaseMonthlyRent.Zero(),
		OutstandingPrincipal: c.BaseMonthlyRent.Zero(),
		AccruedPenalties:     c.BaseMonthlyRent.Zero(),
		ServiceCharges:       c.BaseMonthlyRent.Zero(),
	}

	for i := range c.Payments {
		p := &c.Payments[i]
		s.TotalDue = s.TotalDue.Add(p.DueAmount)
		s.TotalCollected = s.TotalCollected.Add(p.AmountPaid)
		s.ServiceCharges = s.ServiceCharges.Add(p.ServiceChargeTotal())

		if p.Settled() {
			continue
		}

		s.OutstandingPrincipal = s.OutstandingPrincipal.Add(p.UnpaidPrincipal())
		s.AccruedPenalties = s.AccruedPenalties.Add(LateFee(c, p, now))

		if DateOnly(now).After(DateOnly(p.DueDate)) {
			s.HasOverdue = true
		}

		// Payments are kept sorted by period; the first unsettled wins.
		if s.NextDue == nil {
			period := p.Period
			due := p.DueDate
			s.NextDue = &period
			s.NextDueDate = &due
			s.DaysUntilDue = WholeDaysBetween(now, due)
		}
	}

	for i := range c.Incidents {
		if c.Incidents[i].Status != IncidentResolved {
			s.OpenIncidents++
		}
	}

	return s, nil
}
