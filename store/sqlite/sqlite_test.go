package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/lease-engine/lease"
	"github.com/warp/lease-engine/store/sqlite"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func testContract(t *testing.T, id lease.ContractID) *lease.Contract {
	t.Helper()
	c, err := lease.NewContract(lease.Contract{
		ID:                        id,
		PropertyID:                "prop-1",
		TenantID:                  "tenant-1",
		LandlordID:                "landlord-1",
		StartDate:                 date(2024, time.January, 1),
		EndDate:                   date(2024, time.December, 31),
		BaseMonthlyRent:           lease.NewMoney(100000, "ARS"),
		DueDay:                    10,
		AdjustmentPolicy:          lease.AdjustIndex,
		AdjustmentFrequencyMonths: 3,
		Guarantee: lease.Guarantee{
			Kind:      lease.GuaranteeGuarantor,
			Guarantor: &lease.Guarantor{Name: "Ana Suarez"},
		},
	}, date(2024, time.January, 1))
	require.NoError(t, err)
	return c
}

// =============================================================================
// CONTRACT ROUND-TRIP AND VERSIONING
// =============================================================================

func TestContractRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := testContract(t, "ctr-rt")
	_, err := lease.GenerateSchedule(c, lease.NewIndexTable())
	require.NoError(t, err)
	_, _, err = lease.CreateIncident(c, "Leaking tap", "under the sink", date(2024, time.February, 1))
	require.NoError(t, err)

	require.NoError(t, store.Create(ctx, c))

	loaded, err := store.Load(ctx, "ctr-rt")
	require.NoError(t, err)

	assert.Equal(t, c.ID, loaded.ID)
	assert.Equal(t, int64(1), loaded.Version)
	assert.Len(t, loaded.Payments, 12)
	assert.Len(t, loaded.Incidents, 1)
	assert.True(t, loaded.BaseMonthlyRent.Value.Equal(c.BaseMonthlyRent.Value))
	assert.Equal(t, "ARS", loaded.BaseMonthlyRent.Currency)
	assert.Equal(t, c.Payments[3].Period, loaded.Payments[3].Period)
	require.NotNil(t, loaded.Guarantee.Guarantor)
	assert.Equal(t, "Ana Suarez", loaded.Guarantee.Guarantor.Name)
}

func TestLoad_Unknown_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, lease.ErrNotFound)
}

func TestSave_BumpsVersion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	c := testContract(t, "ctr-v")
	require.NoError(t, store.Create(ctx, c))

	loaded, err := store.Load(ctx, "ctr-v")
	require.NoError(t, err)

	_, err = lease.GenerateSchedule(loaded, lease.NewIndexTable())
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, loaded))
	assert.Equal(t, int64(2), loaded.Version)

	again, err := store.Load(ctx, "ctr-v")
	require.NoError(t, err)
	assert.Equal(t, int64(2), again.Version)
	assert.Len(t, again.Payments, 12)
}

func TestSave_ConcurrentModification_StaleWrite(t *testing.T) {
	// GIVEN: Two readers load the same contract version
	// WHEN: Both modify and save
	// THEN: The second save fails with ErrStaleWrite, nothing is lost

	store := newTestStore(t)
	ctx := context.Background()

	c := testContract(t, "ctr-race")
	require.NoError(t, store.Create(ctx, c))

	first, err := store.Load(ctx, "ctr-race")
	require.NoError(t, err)
	second, err := store.Load(ctx, "ctr-race")
	require.NoError(t, err)

	_, err = lease.Suspend(first, date(2024, time.March, 1))
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, first))

	_, err = lease.Terminate(second, date(2024, time.March, 1))
	require.NoError(t, err)
	assert.ErrorIs(t, store.Save(ctx, second), lease.ErrStaleWrite)

	// The first writer's state survived.
	current, err := store.Load(ctx, "ctr-race")
	require.NoError(t, err)
	assert.Equal(t, lease.ContractSuspended, current.Status)
}

// =============================================================================
// INDEX RATES
// =============================================================================

func TestIndexRates_UpsertAndSnapshot(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SetRate(ctx, 2024, time.January, lease.MustParseDecimal("2")))
	require.NoError(t, store.SetRate(ctx, 2024, time.February, lease.MustParseDecimal("3")))
	// Correction overwrites.
	require.NoError(t, store.SetRate(ctx, 2024, time.January, lease.MustParseDecimal("2.5")))

	table, err := store.Current(ctx)
	require.NoError(t, err)

	assert.True(t, table.Rate(2024, time.January).Equal(lease.MustParseDecimal("2.5")))
	assert.True(t, table.Rate(2024, time.February).Equal(lease.MustParseDecimal("3")))
	assert.True(t, table.Rate(2024, time.March).IsZero(), "missing month reads as zero")

	assert.Error(t, store.SetRate(ctx, 2024, time.Month(13), lease.MustParseDecimal("1")))
}

// =============================================================================
// AUDIT LOG
// =============================================================================

func TestAuditLog_AppendAndQuery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entries := []lease.AuditEntry{
		{ID: "a-1", Contract: "ctr-1", Kind: lease.EventPaymentRegistered, Payload: map[string]any{"period": "2024-01"}, At: date(2024, time.January, 10)},
		{ID: "a-2", Contract: "ctr-1", Kind: lease.EventIncidentCreated, At: date(2024, time.February, 1)},
		{ID: "a-3", Contract: "ctr-2", Kind: lease.EventContractSuspended, At: date(2024, time.March, 1)},
	}
	for _, e := range entries {
		require.NoError(t, store.Append(ctx, e))
	}

	got, err := store.ByContract(ctx, "ctr-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a-2", got[0].ID, "newest first")
	assert.Equal(t, "2024-01", got[1].Payload["period"])
}
