// Package cli implements the FabreXLens command line interface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	config "github.com/digitaldataco/fabrexlens/internal/adapters/driven/config/file"
	storage "github.com/digitaldataco/fabrexlens/internal/adapters/driven/storage/file"
	"github.com/digitaldataco/fabrexlens/internal/clients/fabrex"
	"github.com/digitaldataco/fabrexlens/internal/clients/gryf"
	"github.com/digitaldataco/fabrexlens/internal/clients/httpx"
	"github.com/digitaldataco/fabrexlens/internal/clients/redfish"
	"github.com/digitaldataco/fabrexlens/internal/clients/supernode"
	"github.com/digitaldataco/fabrexlens/internal/core/domain"
	"github.com/digitaldataco/fabrexlens/internal/core/ports/driving"
	"github.com/digitaldataco/fabrexlens/internal/core/services"
	"github.com/digitaldataco/fabrexlens/internal/logger"
)

// version is overridden at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	flagConfigDir string
	flagProfile   string
	flagVerbose   bool
)

// Wired services. Tests inject fakes here; production wiring happens
// lazily through ensureGate/ensureWorker.
var (
	appConfig       *config.Config
	credentialStore *storage.CredentialStore
	credentialGate  driving.CredentialGate
	worker          driving.Worker
)

var rootCmd = &cobra.Command{
	Use:   "fabrexlens",
	Short: "Terminal companion for GigaIO FabreX fleet monitoring",
	Long: `FabreXLens monitors a FabreX composable fabric deployment from the
terminal: fabrics and endpoint usage, Gryf workloads, and Supernode health,
with endpoint reassignment on top.

Credentials are stored per service in an encrypted file under the config
directory; run 'fabrexlens auth init' once per service before polling.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(flagVerbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config-dir", "", "config directory (default ~/.fabrexlens)")
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "config profile overlay (config.<profile>.toml)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging to stderr")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ensureConfig loads configuration once.
func ensureConfig() error {
	if appConfig != nil {
		return nil
	}
	cfg, err := config.Load(flagConfigDir, flagProfile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	appConfig = &cfg
	return nil
}

// ensureGate builds the credential store and gate.
func ensureGate() error {
	if credentialGate != nil {
		return nil
	}
	if err := ensureConfig(); err != nil {
		return err
	}

	dir := flagConfigDir
	if dir == "" {
		resolved, err := config.DefaultDir()
		if err != nil {
			return err
		}
		dir = resolved
	}
	store, err := storage.NewCredentialStore(dir)
	if err != nil {
		return fmt.Errorf("open credential store: %w", err)
	}
	credentialStore = store

	minter, err := redfish.New(clientConfig(domain.DomainRedfish))
	if err != nil {
		return fmt.Errorf("redfish client: %w", err)
	}

	gate := services.NewGate(store, minter)
	if err := store.Watch(gate.Reset); err != nil {
		logger.Warn("credential file watch unavailable: %v", err)
	}
	credentialGate = gate
	return nil
}

// ensureWorker builds the service clients and the background worker.
func ensureWorker() error {
	if worker != nil {
		return nil
	}
	if err := ensureGate(); err != nil {
		return err
	}

	fabricClient, err := fabrex.New(clientConfig(domain.DomainFabrex))
	if err != nil {
		return err
	}
	workloadClient, err := gryf.New(clientConfig(domain.DomainGryf))
	if err != nil {
		return err
	}
	nodeClient, err := supernode.New(clientConfig(domain.DomainSupernode))
	if err != nil {
		return err
	}

	gate, ok := credentialGate.(*services.Gate)
	if !ok {
		return fmt.Errorf("credential gate not configured")
	}
	worker = services.NewWorker(services.WorkerConfig{
		PollInterval:    appConfig.PollInterval(),
		ShutdownGrace:   appConfig.Worker.ShutdownGrace.Std(),
		MutationTimeout: appConfig.Worker.MutationTimeout.Std(),
	}, gate, fabricClient, workloadClient, nodeClient)
	return nil
}

// clientConfig assembles the shared HTTP settings for one service.
func clientConfig(d domain.Domain) httpx.Config {
	service := appConfig.Service(d)
	return httpx.Config{
		BaseURL:           service.BaseURL,
		Timeout:           service.Timeout.Std(),
		UserAgent:         fmt.Sprintf("%s/%s", appConfig.HTTP.UserAgent, version),
		RetryCount:        appConfig.HTTP.RetryCount,
		RequestsPerSecond: service.RequestsPerSecond,
	}
}
