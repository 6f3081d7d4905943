/*
lifecycle.go - Contract state machine

PURPOSE:
  Governs the overall contract status and which operations are legal in
  it. States: pending (signed, not yet started), active, suspended,
  finished (terminal).

READ-TIME EVALUATION:
  pending -> active happens automatically once the start date arrives,
  and active -> finished on natural expiry - but only when every
  installment is settled. There is no background process: callers
  evaluate the status on read via EvaluateStatus. A contract past its end
  date with unpaid balances stays active, because auto-closing would
  discard a collectible debt.

EXPLICIT TRANSITIONS:
  active -> suspended     administrative pause; penalty accrual and due
                          date enforcement stop, the schedule remains
  suspended -> active     resume; fees accrued before the pause stand
  active|suspended -> finished   termination or confirmed expiry
  finished -> *           never
*/
package lease

import "time"

// =============================================================================
// READ-TIME STATUS
// =============================================================================

// EvaluateStatus returns the contract status as of 'now', applying the
// automatic transitions (start-date activation, natural expiry). Pure:
// callers persist the result if they want the stored field to catch up.
func EvaluateStatus(c *Contract, now time.Time) ContractStatus {
	status := c.Status
	today := DateOnly(now)

	if status == ContractPending && !today.Before(DateOnly(c.StartDate)) {
		status = ContractActive
	}

	// Natural expiry only closes a debt-free contract.
	if status == ContractActive && today.After(DateOnly(c.EndDate)) && c.AllSettled() {
		status = ContractFinished
	}

	return status
}

// Refresh applies EvaluateStatus to the snapshot in place and returns the
// (possibly unchanged) status.
func Refresh(c *Contract, now time.Time) ContractStatus {
	c.Status = EvaluateStatus(c, now)
	return c.Status
}

// =============================================================================
// EXPLICIT TRANSITIONS
// =============================================================================

// Suspend pauses an active contract. Penalty accrual and due-date
// enforcement stop; the schedule is retained.
func Suspend(c *Contract, now time.Time) (ContractTransitioned, error) {
	Refresh(c, now)
	if c.Status != ContractActive {
		return ContractTransitioned{}, &TransitionError{Entity: "contract", From: string(c.Status), To: string(ContractSuspended)}
	}

	from := c.Status
	at := DateOnly(now)
	c.Status = ContractSuspended
	c.SuspendedAt = &at

	return ContractTransitioned{Contract: c.ID, From: from, To: ContractSuspended, At: at}, nil
}

// Resume reactivates a suspended contract. The pause is recorded so the
// suspended days never accrue penalties; fees accrued before the
// suspension are not waived.
func Resume(c *Contract, now time.Time) (ContractTransitioned, error) {
	if c.Status != ContractSuspended {
		return ContractTransitioned{}, &TransitionError{Entity: "contract", From: string(c.Status), To: string(ContractActive)}
	}

	from := c.Status
	c.Status = ContractActive
	closePause(c, now)
	Refresh(c, now)

	return ContractTransitioned{Contract: c.ID, From: from, To: c.Status, At: DateOnly(now)}, nil
}

// Terminate retires an active or suspended contract. Terminal: nothing
// leaves finished. The record is retained, never deleted.
func Terminate(c *Contract, now time.Time) (ContractTransitioned, error) {
	Refresh(c, now)
	if c.Status != ContractActive && c.Status != ContractSuspended {
		return ContractTransitioned{}, &TransitionError{Entity: "contract", From: string(c.Status), To: string(ContractFinished)}
	}

	from := c.Status
	c.Status = ContractFinished
	closePause(c, now)

	return ContractTransitioned{Contract: c.ID, From: from, To: ContractFinished, At: DateOnly(now)}, nil
}

// closePause turns the open suspension, if any, into a closed interval.
func closePause(c *Contract, now time.Time) {
	if c.SuspendedAt == nil {
		return
	}
	until := DateOnly(now)
	if until.After(*c.SuspendedAt) {
		c.Suspensions = append(c.Suspensions, Suspension{From: *c.SuspendedAt, To: until})
	}
	c.SuspendedAt = nil
}
