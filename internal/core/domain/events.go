package domain

import "time"

// Event is a single completed or failed outcome emitted by the worker.
// Events are terminal facts delivered to the foreground in production
// order; they never contain secret material.
type Event interface {
	isEvent()
}

// SnapshotUpdated carries a freshly assembled Snapshot. A newer
// SnapshotUpdated logically supersedes an older one for display purposes,
// but both are delivered.
type SnapshotUpdated struct {
	Snapshot *Snapshot
}

// SnapshotFailed reports a cycle that produced no usable fragments.
type SnapshotFailed struct {
	Err error
}

// ReassignmentCompleted reports a successful endpoint reassignment.
type ReassignmentCompleted struct {
	TrackingID string
	Result     ReassignmentResult
}

// ReassignmentFailed reports a failed endpoint reassignment.
type ReassignmentFailed struct {
	TrackingID  string
	ResourceKey string
	Err         error
}

// PollingStarted acknowledges that the scheduler is armed at an interval.
// It is also emitted when the interval is updated.
type PollingStarted struct {
	Interval time.Duration
}

// PollingStopped acknowledges that the scheduler is disarmed.
type PollingStopped struct{}

// CredentialIssue reports an authentication failure for one credential
// key. Issues are debounced: at most one per key per cooldown window,
// unless the failure cause changes.
type CredentialIssue struct {
	Key CredentialKey
	Err error
}

func (SnapshotUpdated) isEvent()       {}
func (SnapshotFailed) isEvent()        {}
func (ReassignmentCompleted) isEvent() {}
func (ReassignmentFailed) isEvent()    {}
func (PollingStarted) isEvent()        {}
func (PollingStopped) isEvent()        {}
func (CredentialIssue) isEvent()       {}
