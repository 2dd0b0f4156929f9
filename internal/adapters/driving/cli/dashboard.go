package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
)

var (
	dashboardJSON    bool
	dashboardTimeout time.Duration
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Print a one-shot dashboard snapshot",
	Long: `Fetches one snapshot across all services and prints it. Services
whose fetch fails are reported as stale; the command fails only when no
service could be reached.`,
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().BoolVar(&dashboardJSON, "json", false, "output the snapshot as JSON")
	dashboardCmd.Flags().DurationVar(&dashboardTimeout, "timeout", time.Minute, "overall snapshot deadline")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	if err := ensureWorker(); err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = worker.Shutdown(ctx)
	}()

	if err := worker.Submit(domain.RefreshDashboard{}); err != nil {
		return fmt.Errorf("request snapshot: %w", err)
	}

	deadline := time.After(dashboardTimeout)
	for {
		select {
		case ev, ok := <-worker.Events():
			if !ok {
				return errors.New("worker stopped before delivering a snapshot")
			}
			switch e := ev.(type) {
			case domain.SnapshotUpdated:
				return outputSnapshot(cmd, e.Snapshot)
			case domain.SnapshotFailed:
				return fmt.Errorf("snapshot failed: %w", e.Err)
			case domain.CredentialIssue:
				cmd.PrintErrf("warning: credential issue for %s: %v\n", e.Key, e.Err)
			}
		case <-deadline:
			return fmt.Errorf("no snapshot within %s", dashboardTimeout)
		}
	}
}

func outputSnapshot(cmd *cobra.Command, snapshot *domain.Snapshot) error {
	if dashboardJSON {
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal snapshot: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Snapshot taken %s\n", snapshot.TakenAt.Format(time.RFC3339))
	for _, stale := range snapshot.StaleDomains() {
		cmd.Printf("  STALE %s: %s\n", stale.DisplayName(), snapshot.Fragments[stale].Reason)
	}
	cmd.Println()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)

	fmt.Fprintln(w, "FABRIC\tSTATUS\tUTIL%\tENDPOINTS")
	usageByFabric := make(map[string]domain.FabricUsage, len(snapshot.Usage))
	for _, u := range snapshot.Usage {
		usageByFabric[u.FabricID] = u
	}
	for _, fabric := range snapshot.Fabrics {
		usage := usageByFabric[fabric.ID]
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%d/%d\n",
			fabric.Name, fabric.Status, usage.UtilizationPercent,
			usage.AssignedEndpoints, usage.TotalEndpoints)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "WORKLOAD\tSTATE\tOWNER")
	for _, workload := range snapshot.Workloads {
		fmt.Fprintf(w, "%s\t%s\t%s\n", workload.Name, workload.State, workload.Owner)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "SUPERNODE\tROLE\tSTATUS")
	for _, node := range snapshot.Supernodes {
		fmt.Fprintf(w, "%s\t%s\t%s\n", node.Name, node.Role, node.Status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(snapshot.Alerts) > 0 {
		cmd.Println()
		cmd.Println("Alerts:")
		for _, alert := range snapshot.Alerts {
			cmd.Printf("  %s\n", alert)
		}
	}
	return nil
}
