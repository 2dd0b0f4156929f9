package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
)

func TestReassignCmd_RequiresThreeArgs(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"reassign", "fab-1", "ep-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 3 arg(s)")
}

func TestReassignCmd_Completes(t *testing.T) {
	w := newFakeWorker()
	w.onSubmit = func(cmd domain.Command) []domain.Event {
		sub, ok := cmd.(domain.SubmitReassignment)
		if !ok {
			return nil
		}
		return []domain.Event{domain.ReassignmentCompleted{
			TrackingID: "trk-1",
			Result: domain.ReassignmentResult{
				RequestID: "req-100",
				Status:    "accepted",
				Message:   "endpoint " + sub.EndpointID + " queued",
			},
		}}
	}
	cleanup := setupTestServices(w, newFakeGate())
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"reassign", "fab-1", "ep-9", "sn-42"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "req-100")
	assert.Contains(t, buf.String(), "accepted")
	assert.Contains(t, buf.String(), "endpoint ep-9 queued")

	require.Len(t, w.submitted, 1)
	sub := w.submitted[0].(domain.SubmitReassignment)
	assert.Equal(t, "fab-1", sub.FabricID)
	assert.Equal(t, "ep-9", sub.EndpointID)
	assert.Equal(t, "sn-42", sub.TargetSupernodeID)
}

func TestReassignCmd_ReportsFailure(t *testing.T) {
	w := newFakeWorker()
	w.onSubmit = func(cmd domain.Command) []domain.Event {
		sub, ok := cmd.(domain.SubmitReassignment)
		if !ok {
			return nil
		}
		return []domain.Event{domain.ReassignmentFailed{
			TrackingID:  "trk-1",
			ResourceKey: sub.ResourceKey(),
			Err:         &domain.RemoteError{StatusCode: 409, Message: "endpoint busy"},
		}}
	}
	cleanup := setupTestServices(w, newFakeGate())
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"reassign", "fab-1", "ep-9", "sn-42"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reassignment failed")
}
