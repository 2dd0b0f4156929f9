package cli

import (
	"github.com/spf13/cobra"

	"github.com/digitaldataco/fabrexlens/internal/adapters/driving/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	Long: `Starts the full-screen dashboard. Polling begins immediately at the
configured interval; press ? inside the dashboard for key bindings.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	if err := ensureWorker(); err != nil {
		return err
	}
	return tui.Run(worker, appConfig.PollInterval())
}
