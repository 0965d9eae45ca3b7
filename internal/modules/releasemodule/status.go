package releasemodule

import (
	"github.com/soundfoundry/releasedesk/internal/database"
	"github.com/soundfoundry/releasedesk/internal/types"
)

// Trigger names a release lifecycle action.
type Trigger string

const (
	// TriggerSubmit is the creator submitting the wizard Overview.
	TriggerSubmit Trigger = "submit"
	// TriggerApprove is a moderator approving a release under review.
	TriggerApprove Trigger = "approve"
	// TriggerReject is a moderator rejecting a release with a reason.
	TriggerReject Trigger = "reject"
	// TriggerOpenForEdit fires when the creator opens a delivered release for
	// editing. The reset happens on open, not on save.
	TriggerOpenForEdit Trigger = "open_for_edit"
	// TriggerTakedown withdraws a release after two-step confirmation.
	TriggerTakedown Trigger = "takedown"
)

// transitions is the complete edge set of the release status machine. Any
// (status, trigger) pair absent from this table is rejected without touching
// the row.
var transitions = map[Trigger]map[database.ReleaseStatus]database.ReleaseStatus{
	TriggerSubmit: {
		database.StatusInProgress: database.StatusModeration,
		database.StatusReady:      database.StatusModeration,
		database.StatusError:      database.StatusModeration,
	},
	TriggerApprove: {
		database.StatusModeration: database.StatusSentToStores,
	},
	TriggerReject: {
		database.StatusModeration: database.StatusError,
	},
	TriggerOpenForEdit: {
		database.StatusSentToStores: database.StatusModeration,
	},
	TriggerTakedown: {
		database.StatusInProgress:   database.StatusTakenDown,
		database.StatusReady:        database.StatusTakenDown,
		database.StatusModeration:   database.StatusTakenDown,
		database.StatusSentToStores: database.StatusTakenDown,
		database.StatusError:        database.StatusTakenDown,
	},
}

// NextStatus resolves the target status for a trigger, or an
// INVALID_TRANSITION error when the edge does not exist.
func NextStatus(from database.ReleaseStatus, trigger Trigger) (database.ReleaseStatus, error) {
	if to, ok := transitions[trigger][from]; ok {
		return to, nil
	}
	return "", types.NewInvalidTransitionError(string(from), string(trigger))
}

// CanTransition reports whether the edge exists.
func CanTransition(from database.ReleaseStatus, trigger Trigger) bool {
	_, ok := transitions[trigger][from]
	return ok
}

// AvailableActions lists the triggers available on a release for a given
// viewer. Moderator-only actions are absent, not disabled, for everyone else.
func AvailableActions(status database.ReleaseStatus, isModerator bool) []Trigger {
	var actions []Trigger
	if isModerator {
		for _, t := range []Trigger{TriggerApprove, TriggerReject, TriggerTakedown} {
			if CanTransition(status, t) {
				actions = append(actions, t)
			}
		}
		return actions
	}
	for _, t := range []Trigger{TriggerSubmit, TriggerOpenForEdit, TriggerTakedown} {
		if CanTransition(status, t) {
			actions = append(actions, t)
		}
	}
	return actions
}
