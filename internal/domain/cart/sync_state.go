package cart

import "fmt"

// SyncState is the state of the guest-to-remote cart reconciliation
type SyncState string

const (
	// SyncStateIdle means no migration is running; one may start when a
	// token is observed with a non-empty guest cart
	SyncStateIdle SyncState = "idle"
	// SyncStateSyncing means the batch request is in flight
	SyncStateSyncing SyncState = "syncing"
	// SyncStateDone means the guest cart was migrated for the current token
	SyncStateDone SyncState = "done"
)

// IsValid returns true if the state is valid
func (s SyncState) IsValid() bool {
	switch s {
	case SyncStateIdle, SyncStateSyncing, SyncStateDone:
		return true
	default:
		return false
	}
}

// String returns the string representation of SyncState
func (s SyncState) String() string {
	return string(s)
}

// CanTransitionTo reports whether moving to next is allowed.
//
//	idle    -> syncing
//	syncing -> done | idle
//	done    -> idle      (token changed)
func (s SyncState) CanTransitionTo(next SyncState) bool {
	switch s {
	case SyncStateIdle:
		return next == SyncStateSyncing
	case SyncStateSyncing:
		return next == SyncStateDone || next == SyncStateIdle
	case SyncStateDone:
		return next == SyncStateIdle
	default:
		return false
	}
}

// TransitionTo returns next if the transition is allowed
func (s SyncState) TransitionTo(next SyncState) (SyncState, error) {
	if !s.CanTransitionTo(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidSyncTransition, s, next)
	}
	return next, nil
}
