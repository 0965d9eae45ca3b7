package releasemodule

import (
	"testing"

	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextStatusValidEdges(t *testing.T) {
	cases := []struct {
		from    database.ReleaseStatus
		trigger Trigger
		want    database.ReleaseStatus
	}{
		{database.StatusInProgress, TriggerSubmit, database.StatusModeration},
		{database.StatusReady, TriggerSubmit, database.StatusModeration},
		{database.StatusError, TriggerSubmit, database.StatusModeration},
		{database.StatusModeration, TriggerApprove, database.StatusSentToStores},
		{database.StatusModeration, TriggerReject, database.StatusError},
		{database.StatusSentToStores, TriggerOpenForEdit, database.StatusModeration},
		{database.StatusInProgress, TriggerTakedown, database.StatusTakenDown},
		{database.StatusModeration, TriggerTakedown, database.StatusTakenDown},
		{database.StatusSentToStores, TriggerTakedown, database.StatusTakenDown},
		{database.StatusError, TriggerTakedown, database.StatusTakenDown},
	}

	for _, tc := range cases {
		got, err := NextStatus(tc.from, tc.trigger)
		require.NoError(t, err, "%s on %s", tc.trigger, tc.from)
		assert.Equal(t, tc.want, got)
	}
}

func TestNextStatusRejectedEdges(t *testing.T) {
	cases := []struct {
		from    database.ReleaseStatus
		trigger Trigger
	}{
		{database.StatusSentToStores, TriggerSubmit},
		{database.StatusModeration, TriggerSubmit},
		{database.StatusTakenDown, TriggerSubmit},
		{database.StatusInProgress, TriggerApprove},
		{database.StatusSentToStores, TriggerApprove},
		{database.StatusInProgress, TriggerReject},
		{database.StatusError, TriggerReject},
		{database.StatusInProgress, TriggerOpenForEdit},
		{database.StatusModeration, TriggerOpenForEdit},
		{database.StatusTakenDown, TriggerTakedown},
	}

	for _, tc := range cases {
		_, err := NextStatus(tc.from, tc.trigger)
		require.Error(t, err, "%s on %s should be rejected", tc.trigger, tc.from)

		appErr, ok := err.(*types.AppError)
		require.True(t, ok)
		assert.Equal(t, types.ErrorCodeInvalidTransition, appErr.Code)
		assert.False(t, CanTransition(tc.from, tc.trigger))
	}
}

func TestAvailableActionsByRole(t *testing.T) {
	moderator := AvailableActions(database.StatusModeration, true)
	assert.Contains(t, moderator, TriggerApprove)
	assert.Contains(t, moderator, TriggerReject)
	assert.Contains(t, moderator, TriggerTakedown)
	assert.NotContains(t, moderator, TriggerSubmit)

	creator := AvailableActions(database.StatusError, false)
	assert.Contains(t, creator, TriggerSubmit)
	assert.Contains(t, creator, TriggerTakedown)
	assert.NotContains(t, creator, TriggerApprove)
	assert.NotContains(t, creator, TriggerReject)

	delivered := AvailableActions(database.StatusSentToStores, false)
	assert.Contains(t, delivered, TriggerOpenForEdit)
	assert.NotContains(t, delivered, TriggerSubmit)

	takenDown := AvailableActions(database.StatusTakenDown, false)
	assert.Empty(t, takenDown)
}
