package domain

import "time"

// MinPollInterval is the floor applied to every polling interval.
const MinPollInterval = 5 * time.Second

// DefaultPollInterval is used when configuration supplies none.
const DefaultPollInterval = 15 * time.Second

// PollingPhase is the scheduler's lifecycle phase.
type PollingPhase int

const (
	// PollingIdle means the scheduler is disarmed.
	PollingIdle PollingPhase = iota
	// PollingRunning means the scheduler is armed and ticking.
	PollingRunning
)

// String returns the phase name.
func (p PollingPhase) String() string {
	switch p {
	case PollingIdle:
		return "idle"
	case PollingRunning:
		return "running"
	default:
		return "unknown"
	}
}

// PollingState describes the scheduler at a point in time. Exactly one
// instance exists per worker; only the worker supervisor mutates it.
type PollingState struct {
	Phase    PollingPhase
	Interval time.Duration
}

// ClampInterval raises an interval to the allowed floor, substituting the
// default for non-positive values.
func ClampInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultPollInterval
	}
	if d < MinPollInterval {
		return MinPollInterval
	}
	return d
}
