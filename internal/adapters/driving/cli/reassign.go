package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
)

var reassignTimeout time.Duration

var reassignCmd = &cobra.Command{
	Use:   "reassign [fabric-id] [endpoint-id] [supernode-id]",
	Short: "Reassign a fabric endpoint to another supernode",
	Long: `Submits an endpoint reassignment and waits for the service to
acknowledge it. Reassignments are never retried: if the request times out
the outcome on the server is unknown and must be checked manually.`,
	Args: cobra.ExactArgs(3),
	RunE: runReassign,
}

func init() {
	reassignCmd.Flags().DurationVar(&reassignTimeout, "timeout", time.Minute, "acknowledgement deadline")
	rootCmd.AddCommand(reassignCmd)
}

func runReassign(cmd *cobra.Command, args []string) error {
	if err := ensureWorker(); err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = worker.Shutdown(ctx)
	}()

	submission := domain.SubmitReassignment{
		FabricID:          args[0],
		EndpointID:        args[1],
		TargetSupernodeID: args[2],
	}
	if err := worker.Submit(submission); err != nil {
		return fmt.Errorf("submit reassignment: %w", err)
	}

	deadline := time.After(reassignTimeout)
	for {
		select {
		case ev, ok := <-worker.Events():
			if !ok {
				return errors.New("worker stopped before acknowledging the reassignment")
			}
			switch e := ev.(type) {
			case domain.ReassignmentCompleted:
				cmd.Printf("Reassignment accepted: request %s (%s)\n", e.Result.RequestID, e.Result.Status)
				if e.Result.Message != "" {
					cmd.Printf("  %s\n", e.Result.Message)
				}
				return nil
			case domain.ReassignmentFailed:
				return fmt.Errorf("reassignment failed: %w", e.Err)
			case domain.CredentialIssue:
				cmd.PrintErrf("warning: credential issue for %s: %v\n", e.Key, e.Err)
			}
		case <-deadline:
			return fmt.Errorf("no acknowledgement within %s; check the service before resubmitting", reassignTimeout)
		}
	}
}
