package lease_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/lease-engine/lease"
)

func overduePayment(t *testing.T, c *lease.Contract) *lease.Payment {
	t.Helper()
	if _, err := lease.GenerateSchedule(c, emptyTable()); err != nil {
		t.Fatalf("generate schedule: %v", err)
	}
	p := c.FindPayment(lease.BillingPeriod{Year: 2024, Month: time.January})
	if p == nil {
		t.Fatal("january installment missing")
	}
	return p
}

func TestLateFee_ZeroOnOrBeforeDueDate(t *testing.T) {
	// GIVEN: Installment due 2024-01-10
	// WHEN: Asking for the penalty on and just before the due date
	// THEN: Zero both times - penalties start the day after

	c := indexedContract()
	p := overduePayment(t, c)

	for _, asOf := range []time.Time{
		date(2024, time.January, 9),
		date(2024, time.January, 10),
	} {
		if fee := lease.LateFee(c, p, asOf); !fee.IsZero() {
			t.Errorf("expected zero fee at %s, got %v", asOf, fee.Value)
		}
	}
}

func TestLateFee_StrictlyIncreasingWhileUnpaid(t *testing.T) {
	// GIVEN: An unpaid overdue installment
	// WHEN: Moving the as-of date forward one day at a time
	// THEN: The penalty strictly increases

	c := indexedContract()
	p := overduePayment(t, c)

	prev := decimal.Zero
	for day := 11; day <= 20; day++ {
		fee := lease.LateFee(c, p, date(2024, time.January, day))
		if !fee.Value.GreaterThan(prev) {
			t.Errorf("fee not strictly increasing on day %d: %v <= %v", day, fee.Value, prev)
		}
		prev = fee.Value
	}
}

func TestLateFee_SimpleInterestOnUnpaidPrincipal(t *testing.T) {
	// GIVEN: 100000 due, 40000 already paid, 1%/day, 5 days late
	// THEN: fee = 60000 * 0.01 * 5 = 3000 (no compounding)

	c := indexedContract()
	p := overduePayment(t, c)
	p.AmountPaid = ars(40000)

	fee := lease.LateFee(c, p, date(2024, time.January, 15))
	if !fee.Value.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected 3000, got %v", fee.Value)
	}
}

func TestLateFee_CustomRateAndExplicitZero(t *testing.T) {
	// GIVEN: 100000 due, 10 days late
	// WHEN: Rate is 0.5%/day, and separately an explicit 0
	// THEN: 5000 and 0 respectively (explicit zero disables penalties)

	half := lease.MustParseDecimal("0.5")
	c := indexedContract()
	c.DailyLateFeeRate = &half
	p := overduePayment(t, c)

	fee := lease.LateFee(c, p, date(2024, time.January, 20))
	if !fee.Value.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("expected 5000 at 0.5%%/day, got %v", fee.Value)
	}

	zero := decimal.Zero
	c.DailyLateFeeRate = &zero
	if fee := lease.LateFee(c, p, date(2024, time.January, 20)); !fee.IsZero() {
		t.Errorf("explicit zero rate should disable penalties, got %v", fee.Value)
	}
}

func TestLateFee_SettledInstallmentAccruesNothing(t *testing.T) {
	c := indexedContract()
	p := overduePayment(t, c)

	settled := date(2024, time.January, 8)
	p.AmountPaid = ars(100000)
	p.PaymentDate = &settled

	if fee := lease.LateFee(c, p, date(2024, time.March, 1)); !fee.IsZero() {
		t.Errorf("settled installment should accrue nothing, got %v", fee.Value)
	}
}

func TestLateFee_SuspensionPausesAccrual(t *testing.T) {
	// GIVEN: An overdue installment, contract suspended on 2024-01-20
	// WHEN: Asking for the penalty well after the suspension
	// THEN: Accrual is capped at the suspension date (10 days late),
	//       and fees accrued before the pause are not waived

	c := indexedContract()
	p := overduePayment(t, c)

	if _, err := lease.Suspend(c, date(2024, time.January, 20)); err != nil {
		t.Fatalf("suspend: %v", err)
	}

	later := lease.LateFee(c, p, date(2024, time.June, 1))

	want := decimal.NewFromInt(10000) // 100000 * 1% * 10 days
	if !later.Value.Equal(want) {
		t.Errorf("expected accrual frozen at %v, got %v", want, later.Value)
	}
}

func TestLateFee_ResumeDoesNotBackchargePausedDays(t *testing.T) {
	// GIVEN: Installment due 2024-01-10, contract suspended 2024-01-20
	//        and resumed 2024-02-20
	// WHEN: Asking for the penalty at the resume date and 10 days later
	// THEN: The fee at resume equals the frozen amount - the 31 paused
	//       days are never charged - and accrual continues from there

	c := indexedContract()
	p := overduePayment(t, c)

	if _, err := lease.Suspend(c, date(2024, time.January, 20)); err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if _, err := lease.Resume(c, date(2024, time.February, 20)); err != nil {
		t.Fatalf("resume: %v", err)
	}

	atResume := lease.LateFee(c, p, date(2024, time.February, 20))
	if want := decimal.NewFromInt(10000); !atResume.Value.Equal(want) {
		t.Errorf("fee at resume: expected %v, got %v", want, atResume.Value)
	}

	later := lease.LateFee(c, p, date(2024, time.March, 1))
	if want := decimal.NewFromInt(20000); !later.Value.Equal(want) {
		t.Errorf("fee 10 days after resume: expected %v, got %v", want, later.Value)
	}
}

func TestLateFee_RepeatedPausesAccumulate(t *testing.T) {
	// GIVEN: An overdue installment and two completed pauses
	//        (Jan 20 - Feb 20, then Mar 1 - Mar 11)
	// WHEN: Asking for the penalty on 2024-03-21
	// THEN: 71 calendar days late minus 41 paused = 30 chargeable days

	c := indexedContract()
	p := overduePayment(t, c)

	if _, err := lease.Suspend(c, date(2024, time.January, 20)); err != nil {
		t.Fatalf("first suspend: %v", err)
	}
	if _, err := lease.Resume(c, date(2024, time.February, 20)); err != nil {
		t.Fatalf("first resume: %v", err)
	}
	if _, err := lease.Suspend(c, date(2024, time.March, 1)); err != nil {
		t.Fatalf("second suspend: %v", err)
	}
	if _, err := lease.Resume(c, date(2024, time.March, 11)); err != nil {
		t.Fatalf("second resume: %v", err)
	}

	fee := lease.LateFee(c, p, date(2024, time.March, 21))
	if want := decimal.NewFromInt(30000); !fee.Value.Equal(want) {
		t.Errorf("expected 30000, got %v", fee.Value)
	}
}
