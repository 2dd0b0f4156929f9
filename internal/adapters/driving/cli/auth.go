package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/digitaldataco/fabrexlens/internal/core/domain"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage service credentials",
	Long: `Store, inspect, and remove per-service credentials.

Credentials are encrypted at rest in the config directory. Each service
(fabrex, gryf, supernode, redfish) holds its own credential per scope;
the default scope is used unless --scope is given.

Examples:
  # Interactive setup for the FabreX service
  fabrexlens auth init fabrex

  # Non-interactive with an API token
  fabrexlens auth init gryf --username svc-gryf --token "xxx"

  # Inspect stored credentials
  fabrexlens auth status

  # Remove a credential
  fabrexlens auth delete supernode`,
}

var authInitCmd = &cobra.Command{
	Use:   "init [service]",
	Short: "Store a credential for a service",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthInit,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which services have stored credentials",
	RunE:  runAuthStatus,
}

var authDeleteCmd = &cobra.Command{
	Use:   "delete [service]",
	Short: "Remove a stored credential",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthDelete,
}

// Flags for auth commands.
var (
	authScope    string
	authUsername string
	authToken    string
	authExpiry   string
)

func init() {
	authInitCmd.Flags().StringVar(&authScope, "scope", "", "credential scope (default: default)")
	authInitCmd.Flags().StringVar(&authUsername, "username", "", "username (prompts when omitted)")
	authInitCmd.Flags().StringVar(&authToken, "token", "", "API token for non-interactive use")
	authInitCmd.Flags().StringVar(&authExpiry, "expiry", "", "credential expiry (RFC 3339, optional)")
	authStatusCmd.Flags().StringVar(&authScope, "scope", "", "credential scope (default: default)")
	authDeleteCmd.Flags().StringVar(&authScope, "scope", "", "credential scope (default: default)")

	authCmd.AddCommand(authInitCmd)
	authCmd.AddCommand(authStatusCmd)
	authCmd.AddCommand(authDeleteCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthInit(cmd *cobra.Command, args []string) error {
	service, err := domain.ParseDomain(args[0])
	if err != nil {
		return err
	}
	if err := ensureGate(); err != nil {
		return err
	}

	key := domain.NewCredentialKey(service, authScope)
	cred := domain.Credential{
		Username: authUsername,
		APIToken: authToken,
	}

	if authExpiry != "" {
		expiry, err := time.Parse(time.RFC3339, authExpiry)
		if err != nil {
			return fmt.Errorf("invalid --expiry: %w", err)
		}
		cred.Expiry = expiry
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	if cred.Username == "" {
		cmd.Printf("Username for %s: ", key)
		input, _ := reader.ReadString('\n')
		cred.Username = strings.TrimSpace(input)
		if cred.Username == "" {
			return errors.New("username is required")
		}
	}

	// Non-interactive when a token is supplied; otherwise prompt for the
	// password and an optional token without echoing either.
	if cred.APIToken == "" {
		password, err := promptSecret(cmd, reader, fmt.Sprintf("Password for %s: ", key))
		if err != nil {
			return err
		}
		cred.Password = password

		token, err := promptSecret(cmd, reader, "API token (optional, preferred over password): ")
		if err != nil {
			return err
		}
		cred.APIToken = token

		if cred.Password == "" && cred.APIToken == "" {
			return errors.New("either a password or an API token is required")
		}
	}

	if err := credentialGate.Save(context.Background(), key, cred); err != nil {
		return fmt.Errorf("store credential: %w", err)
	}

	cmd.Printf("Credential stored for %s\n", key)
	return nil
}

// promptSecret reads a secret without echo when stdin is a terminal,
// falling back to a line read on the shared reader otherwise (tests, pipes).
func promptSecret(cmd *cobra.Command, reader *bufio.Reader, prompt string) (string, error) {
	cmd.Print(prompt)

	if file, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		secret, err := term.ReadPassword(int(file.Fd()))
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}

	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", nil
	}
	return strings.TrimSpace(line), nil
}

func runAuthStatus(cmd *cobra.Command, _ []string) error {
	if err := ensureGate(); err != nil {
		return err
	}
	if credentialStore == nil {
		return errors.New("credential store not configured")
	}

	ctx := context.Background()
	cmd.Println("Stored credentials:")
	cmd.Println()
	for _, service := range domain.AllDomains() {
		key := domain.NewCredentialKey(service, authScope)
		cred, err := credentialStore.Load(ctx, key)
		if err != nil {
			return fmt.Errorf("inspect %s: %w", key, err)
		}
		switch {
		case cred == nil:
			cmd.Printf("  %-24s (none)\n", key.String())
		case cred.IsExpired():
			cmd.Printf("  %-24s %s — EXPIRED %s\n", key.String(), cred.Redacted(),
				cred.Expiry.Format(time.RFC3339))
		default:
			cmd.Printf("  %-24s %s\n", key.String(), cred.Redacted())
		}
	}
	return nil
}

func runAuthDelete(cmd *cobra.Command, args []string) error {
	service, err := domain.ParseDomain(args[0])
	if err != nil {
		return err
	}
	if err := ensureGate(); err != nil {
		return err
	}

	key := domain.NewCredentialKey(service, authScope)
	if err := credentialGate.Delete(context.Background(), key); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}

	cmd.Printf("Credential removed for %s\n", key)
	return nil
}
