package domain

import "time"

// Command is a single requested action sent from the foreground to the
// worker. Commands carry only owned, self-contained data.
type Command interface {
	isCommand()
}

// RefreshDashboard requests one immediate out-of-cadence snapshot cycle.
// It does not alter the polling state.
type RefreshDashboard struct{}

// SubmitReassignment requests moving an endpoint to another supernode.
// Mutations are never retried automatically.
type SubmitReassignment struct {
	FabricID          string
	EndpointID        string
	TargetSupernodeID string
}

// StartPolling arms the polling scheduler at the given interval.
type StartPolling struct {
	Interval time.Duration
}

// UpdatePolling changes the polling interval. The new interval takes
// effect on the next tick; the current wait is not restarted.
type UpdatePolling struct {
	Interval time.Duration
}

// StopPolling disarms the polling scheduler. Stopping an already-stopped
// scheduler is a no-op success.
type StopPolling struct{}

// ResourceKey identifies the logical resource a reassignment targets.
// At most one mutation per resource key runs at a time.
func (c SubmitReassignment) ResourceKey() string {
	return string(DomainFabrex) + "/" + c.FabricID + "/" + c.EndpointID
}

func (RefreshDashboard) isCommand()   {}
func (SubmitReassignment) isCommand() {}
func (StartPolling) isCommand()       {}
func (UpdatePolling) isCommand()      {}
func (StopPolling) isCommand()        {}
