package lease_test

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/lease-engine/lease"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func ars(n int64) lease.Money {
	return lease.NewMoney(n, "ARS")
}

func pct(s string) decimal.Decimal {
	return lease.MustParseDecimal(s)
}

// indexedContract is a 2-year lease starting 2024-01-01 with quarterly
// index adjustments, due on the 10th.
func indexedContract() *lease.Contract {
	c, err := lease.NewContract(lease.Contract{
		ID:                        "ctr-1",
		PropertyID:                "prop-1",
		TenantID:                  "tenant-1",
		LandlordID:                "landlord-1",
		StartDate:                 date(2024, time.January, 1),
		EndDate:                   date(2025, time.December, 31),
		BaseMonthlyRent:           ars(100000),
		DueDay:                    10,
		AdjustmentPolicy:          lease.AdjustIndex,
		AdjustmentFrequencyMonths: 3,
		Guarantee: lease.Guarantee{
			Kind:      lease.GuaranteeGuarantor,
			Guarantor: &lease.Guarantor{Name: "Ana Suarez", Phone: "11-5555", Email: "ana@example.com", TaxID: "20-12345678-5"},
		},
	}, date(2024, time.January, 1))
	if err != nil {
		panic(err)
	}
	return c
}

func emptyTable() lease.IndexTable {
	return lease.NewIndexTable()
}

// q1Table publishes Jan/Feb/Mar 2024 = 2%, 3%, 1%.
func q1Table() lease.IndexTable {
	t := lease.NewIndexTable()
	t.Set(2024, time.January, pct("2"))
	t.Set(2024, time.February, pct("3"))
	t.Set(2024, time.March, pct("1"))
	return t
}

// =============================================================================
// INDEX POLICY
// =============================================================================

func TestComputeRent_Index_ZeroTable_RentUnchanged(t *testing.T) {
	// GIVEN: Index policy with an empty (all-zero) index table
	// WHEN: Computing rent at any target date
	// THEN: Rent equals the base amount at every date

	c := indexedContract()
	targets := []time.Time{
		date(2024, time.January, 1),
		date(2024, time.April, 15),
		date(2025, time.November, 30),
	}

	for _, target := range targets {
		quote, err := lease.ComputeRent(c, emptyTable(), target)
		if err != nil {
			t.Fatalf("unexpected error at %s: %v", target, err)
		}
		if !quote.Amount.Value.Equal(ars(100000).Value) {
			t.Errorf("at %s: expected base rent 100000, got %v", target, quote.Amount.Value)
		}
	}
}

func TestComputeRent_Index_FirstWindowLagsAdjustment(t *testing.T) {
	// GIVEN: Quarterly index contract, Q1 rates published
	// WHEN: Computing rent inside the first window (month 2)
	// THEN: Rent is still the base amount; the jump comes at month 4

	c := indexedContract()
	quote, err := lease.ComputeRent(c, q1Table(), date(2024, time.February, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !quote.Amount.Value.Equal(ars(100000).Value) {
		t.Errorf("expected base rent inside first window, got %v", quote.Amount.Value)
	}
	if !quote.PeriodStart.Equal(date(2024, time.January, 1)) || !quote.PeriodEnd.Equal(date(2024, time.April, 1)) {
		t.Errorf("expected window [2024-01-01, 2024-04-01), got [%s, %s)", quote.PeriodStart, quote.PeriodEnd)
	}
}

func TestComputeRent_Index_WorkedExample(t *testing.T) {
	// GIVEN: Start 2024-01-01, base 100000, F=3, Jan/Feb/Mar = 2%, 3%, 1%
	// WHEN: Computing rent at 2024-04-15 (one completed window)
	// THEN: factor = 1.02*1.03*1.01 = 1.061106, rent = ceil(106110.6) = 106111

	c := indexedContract()
	quote, err := lease.ComputeRent(c, q1Table(), date(2024, time.April, 15))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !quote.Amount.Value.Equal(decimal.NewFromInt(106111)) {
		t.Errorf("expected 106111, got %v", quote.Amount.Value)
	}
	if !quote.PeriodStart.Equal(date(2024, time.April, 1)) {
		t.Errorf("expected current window to start 2024-04-01, got %s", quote.PeriodStart)
	}
	if !quote.PeriodEnd.Equal(date(2024, time.July, 1)) {
		t.Errorf("expected current window to end 2024-07-01, got %s", quote.PeriodEnd)
	}

	wantPercent := pct("6.1106")
	if !quote.CumulativePercent.Equal(wantPercent) {
		t.Errorf("expected cumulative percent %v, got %v", wantPercent, quote.CumulativePercent)
	}
}

func TestComputeRent_Index_FlatWithinWindow(t *testing.T) {
	// GIVEN: One completed quarterly window
	// WHEN: Computing rent on every day across the second window
	// THEN: The amount never drifts mid-window

	c := indexedContract()
	table := q1Table()

	first, err := lease.ComputeRent(c, table, date(2024, time.April, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, target := range []time.Time{
		date(2024, time.April, 30),
		date(2024, time.May, 15),
		date(2024, time.June, 30),
	} {
		quote, err := lease.ComputeRent(c, table, target)
		if err != nil {
			t.Fatalf("unexpected error at %s: %v", target, err)
		}
		if !quote.Amount.Value.Equal(first.Amount.Value) {
			t.Errorf("rent drifted mid-window at %s: %v != %v", target, quote.Amount.Value, first.Amount.Value)
		}
	}
}

func TestComputeRent_Index_CompoundingAcrossWindows(t *testing.T) {
	// GIVEN: Six months of rates, one contract with F=3 and one with F=6
	// WHEN: Computing rent after both windows complete
	// THEN: Two consecutive 3-month factors compound to the single
	//       6-month factor (associativity), up to the intermediate ceil

	table := q1Table()
	table.Set(2024, time.April, pct("2"))
	table.Set(2024, time.May, pct("2"))
	table.Set(2024, time.June, pct("2"))

	quarterly := indexedContract()
	semiannual := indexedContract()
	semiannual.AdjustmentFrequencyMonths = 6

	target := date(2024, time.July, 1)

	q, err := lease.ComputeRent(quarterly, table, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s, err := lease.ComputeRent(semiannual, table, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The quarterly contract compounds the raw (un-rounded) running rent,
	// so both paths multiply the same six monthly factors.
	if !q.CumulativePercent.Sub(s.CumulativePercent).Abs().LessThan(pct("0.0001")) {
		t.Errorf("cumulative percent diverged: quarterly %v vs semiannual %v", q.CumulativePercent, s.CumulativePercent)
	}
	if !q.Amount.Value.Equal(s.Amount.Value) {
		t.Errorf("amount diverged: quarterly %v vs semiannual %v", q.Amount.Value, s.Amount.Value)
	}
}

func TestComputeRent_Index_MissingMonthEqualsZeroRate(t *testing.T) {
	// GIVEN: A table with Feb 2024 absent vs a table with Feb 2024 = 0
	// WHEN: Computing rent after the first window
	// THEN: Both behave identically (gaps are zero-inflation by policy)

	gappy := lease.NewIndexTable()
	gappy.Set(2024, time.January, pct("2"))
	gappy.Set(2024, time.March, pct("1"))

	explicit := lease.NewIndexTable()
	explicit.Set(2024, time.January, pct("2"))
	explicit.Set(2024, time.February, decimal.Zero)
	explicit.Set(2024, time.March, pct("1"))

	c := indexedContract()
	target := date(2024, time.April, 1)

	a, err := lease.ComputeRent(c, gappy, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := lease.ComputeRent(c, explicit, target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !a.Amount.Value.Equal(b.Amount.Value) {
		t.Errorf("missing month and explicit zero diverged: %v vs %v", a.Amount.Value, b.Amount.Value)
	}
}

// =============================================================================
// PERCENTAGE AND MANUAL POLICIES
// =============================================================================

func TestComputeRent_Percentage_CompoundsPerWindow(t *testing.T) {
	// GIVEN: 10% every 3 months, base 100000
	// WHEN: Computing rent after two completed windows
	// THEN: 100000 * 1.1^2 = 121000

	c := indexedContract()
	c.AdjustmentPolicy = lease.AdjustPercentage
	c.AdjustmentValue = pct("10")

	quote, err := lease.ComputeRent(c, emptyTable(), date(2024, time.July, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !quote.Amount.Value.Equal(decimal.NewFromInt(121000)) {
		t.Errorf("expected 121000, got %v", quote.Amount.Value)
	}
	if !quote.CumulativePercent.Equal(pct("21")) {
		t.Errorf("expected cumulative 21%%, got %v", quote.CumulativePercent)
	}
}

func TestComputeRent_Manual_PassThrough(t *testing.T) {
	// GIVEN: Manual policy (overrides applied outside the engine)
	// WHEN: Computing rent two years in
	// THEN: Base rent verbatim, zero cumulative percent

	c := indexedContract()
	c.AdjustmentPolicy = lease.AdjustManual
	c.AdjustmentFrequencyMonths = 0

	quote, err := lease.ComputeRent(c, q1Table(), date(2025, time.June, 1))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !quote.Amount.Value.Equal(ars(100000).Value) {
		t.Errorf("expected pass-through 100000, got %v", quote.Amount.Value)
	}
	if !quote.CumulativePercent.IsZero() {
		t.Errorf("expected zero cumulative percent, got %v", quote.CumulativePercent)
	}
}

func TestComputeRent_UnknownPolicy_DataIntegrity(t *testing.T) {
	c := indexedContract()
	c.AdjustmentPolicy = "cpi-linked" // not a policy this engine knows

	_, err := lease.ComputeRent(c, emptyTable(), date(2024, time.June, 1))
	if !errors.Is(err, lease.ErrDataIntegrity) {
		t.Errorf("expected ErrDataIntegrity, got %v", err)
	}
}

// =============================================================================
// CALENDAR HELPERS
// =============================================================================

func TestWholeMonthsBetween(t *testing.T) {
	cases := []struct {
		from, to time.Time
		want     int
	}{
		{date(2024, time.January, 1), date(2024, time.January, 31), 0},
		{date(2024, time.January, 1), date(2024, time.April, 1), 3},
		{date(2024, time.January, 15), date(2024, time.April, 14), 2},
		{date(2024, time.January, 15), date(2024, time.April, 15), 3},
		{date(2024, time.January, 1), date(2025, time.January, 1), 12},
	}

	for _, tc := range cases {
		if got := lease.WholeMonthsBetween(tc.from, tc.to); got != tc.want {
			t.Errorf("WholeMonthsBetween(%s, %s) = %d, want %d", tc.from, tc.to, got, tc.want)
		}
	}
}
