package driving

import (
	"context"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
)

// Worker is the handle to the background execution core. The foreground
// submits Commands and folds Events; it never reads worker internals.
type Worker interface {
	// Submit enqueues a command for dispatch in arrival order.
	// Returns domain.ErrWorkerClosed after shutdown. Commands are never
	// dropped silently.
	Submit(cmd domain.Command) error

	// Events returns the event stream. The channel is closed exactly once,
	// after Shutdown completes.
	Events() <-chan domain.Event

	// Shutdown stops polling, waits for in-flight mutations up to the
	// configured grace period (bounded further by ctx), and tears down the
	// worker. Safe to call more than once.
	Shutdown(ctx context.Context) error
}
