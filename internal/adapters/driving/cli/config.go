package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	config "github.com/digitaldataco/fabrexlens/internal/adapters/driven/config/file"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default config file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir := flagConfigDir
		if dir == "" {
			resolved, err := config.DefaultDir()
			if err != nil {
				return err
			}
			dir = resolved
		}
		path, err := config.WriteDefault(dir)
		if err != nil {
			return fmt.Errorf("write default config: %w", err)
		}
		cmd.Printf("Config at %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := ensureConfig(); err != nil {
			return err
		}
		cmd.Printf("Poll interval:    %s\n", appConfig.PollInterval())
		cmd.Printf("Shutdown grace:   %s\n", appConfig.Worker.ShutdownGrace.Std())
		cmd.Printf("Mutation timeout: %s\n", appConfig.Worker.MutationTimeout.Std())
		cmd.Printf("HTTP retries:     %d\n", appConfig.HTTP.RetryCount)
		cmd.Println("Services:")
		cmd.Printf("  fabrex:    %s\n", appConfig.Services.Fabrex.BaseURL)
		cmd.Printf("  gryf:      %s\n", appConfig.Services.Gryf.BaseURL)
		cmd.Printf("  supernode: %s\n", appConfig.Services.Supernode.BaseURL)
		cmd.Printf("  redfish:   %s\n", appConfig.Services.Redfish.BaseURL)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
