package lease_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/lease-engine/lease"
)

func TestCreateIncident(t *testing.T) {
	// GIVEN: An active contract
	// WHEN: Creating a maintenance incident
	// THEN: Open, timestamped, attached to the contract

	c := indexedContract()
	now := date(2024, time.March, 5)

	inc, ev, err := lease.CreateIncident(c, "Leaking kitchen tap", "Drips constantly since Monday", now)
	require.NoError(t, err)

	assert.Equal(t, lease.IncidentOpen, inc.Status)
	assert.Equal(t, now, inc.CreatedAt)
	assert.Nil(t, inc.ResolvedAt)
	assert.Equal(t, lease.EventIncidentCreated, ev.Kind())
	assert.Len(t, c.Incidents, 1)
}

func TestCreateIncident_Rejections(t *testing.T) {
	c := indexedContract()

	t.Run("empty title", func(t *testing.T) {
		_, _, err := lease.CreateIncident(c, "   ", "desc", date(2024, time.March, 5))
		assert.ErrorIs(t, err, lease.ErrDataIntegrity)
	})

	t.Run("finished contract", func(t *testing.T) {
		done := indexedContract()
		done.Status = lease.ContractFinished
		_, _, err := lease.CreateIncident(done, "Broken lock", "", date(2024, time.March, 5))
		assert.ErrorIs(t, err, lease.ErrInvalidState)
	})
}

func TestAdvanceIncident_Transitions(t *testing.T) {
	// Allowed: open -> in_progress -> resolved, and open -> resolved.
	// Everything else, including reopening, is rejected.

	c := indexedContract()
	now := date(2024, time.March, 5)

	inc, _, err := lease.CreateIncident(c, "Leaking tap", "", now)
	require.NoError(t, err)

	ev, err := lease.AdvanceIncident(c, inc.ID, lease.IncidentInProgress, now.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, lease.IncidentOpen, ev.From)
	assert.Equal(t, lease.IncidentInProgress, ev.To)

	_, err = lease.AdvanceIncident(c, inc.ID, lease.IncidentResolved, now.AddDate(0, 0, 3))
	require.NoError(t, err)
	require.NotNil(t, inc.ResolvedAt, "resolving must stamp the resolution date")
	assert.Equal(t, now.AddDate(0, 0, 3), *inc.ResolvedAt)

	// Reopening requires a new incident.
	_, err = lease.AdvanceIncident(c, inc.ID, lease.IncidentOpen, now.AddDate(0, 0, 4))
	assert.ErrorIs(t, err, lease.ErrInvalidTransition)
	_, err = lease.AdvanceIncident(c, inc.ID, lease.IncidentInProgress, now.AddDate(0, 0, 4))
	assert.ErrorIs(t, err, lease.ErrInvalidTransition)
}

func TestAdvanceIncident_OpenStraightToResolved(t *testing.T) {
	c := indexedContract()
	inc, _, err := lease.CreateIncident(c, "Blown fuse", "", date(2024, time.March, 5))
	require.NoError(t, err)

	_, err = lease.AdvanceIncident(c, inc.ID, lease.IncidentResolved, date(2024, time.March, 6))
	require.NoError(t, err)
	assert.Equal(t, lease.IncidentResolved, inc.Status)
	assert.NotNil(t, inc.ResolvedAt)
}

func TestAdvanceIncident_BackwardMoveRejected(t *testing.T) {
	c := indexedContract()
	inc, _, err := lease.CreateIncident(c, "Mould on ceiling", "", date(2024, time.March, 5))
	require.NoError(t, err)

	_, err = lease.AdvanceIncident(c, inc.ID, lease.IncidentInProgress, date(2024, time.March, 6))
	require.NoError(t, err)

	_, err = lease.AdvanceIncident(c, inc.ID, lease.IncidentOpen, date(2024, time.March, 7))
	assert.ErrorIs(t, err, lease.ErrInvalidTransition)
}

func TestAddComment(t *testing.T) {
	c := indexedContract()
	inc, _, err := lease.CreateIncident(c, "Leaking tap", "", date(2024, time.March, 5))
	require.NoError(t, err)

	_, err = lease.AddComment(c, inc.ID, "tenant-1", "Plumber coming Thursday", date(2024, time.March, 6))
	require.NoError(t, err)

	_, err = lease.AdvanceIncident(c, inc.ID, lease.IncidentInProgress, date(2024, time.March, 7))
	require.NoError(t, err)

	_, err = lease.AddComment(c, inc.ID, "landlord-1", "Approved the repair", date(2024, time.March, 8))
	require.NoError(t, err)
	require.Len(t, inc.Comments, 2)
	assert.Equal(t, "tenant-1", inc.Comments[0].Author)

	// Resolved incidents are closed for comments too.
	_, err = lease.AdvanceIncident(c, inc.ID, lease.IncidentResolved, date(2024, time.March, 9))
	require.NoError(t, err)
	_, err = lease.AddComment(c, inc.ID, "tenant-1", "Thanks!", date(2024, time.March, 10))
	assert.ErrorIs(t, err, lease.ErrInvalidTransition)

	t.Run("unknown incident", func(t *testing.T) {
		_, err := lease.AddComment(c, "nope", "tenant-1", "hello", date(2024, time.March, 6))
		assert.ErrorIs(t, err, lease.ErrNotFound)
	})
}
