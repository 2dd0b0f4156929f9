// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/digitaldataco/fabrexlens/internal/core/domain"
)

// WorkerEvent wraps a single event received from the background worker.
// The app folds it into view state and re-issues the listen command.
type WorkerEvent struct {
	Event domain.Event
}

// WorkerClosed signals that the worker's event channel closed. No further
// events will arrive; the app should exit.
type WorkerClosed struct{}

// SubmitFailed signals that a command could not be enqueued.
type SubmitFailed struct {
	Err error
}

// PanelType identifies which panel is currently focused.
type PanelType int

const (
	// PanelDashboard is the snapshot overview.
	PanelDashboard PanelType = iota
	// PanelActivity is the scrolling event log.
	PanelActivity
	// PanelHelp is the keybinding reference.
	PanelHelp
	// PanelReassign is the endpoint reassignment form.
	PanelReassign
)

// String returns the string representation of the panel type.
func (p PanelType) String() string {
	switch p {
	case PanelDashboard:
		return "dashboard"
	case PanelActivity:
		return "activity"
	case PanelHelp:
		return "help"
	case PanelReassign:
		return "reassign"
	default:
		return "unknown"
	}
}
