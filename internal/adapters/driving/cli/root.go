package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/logship/logsh/internal/core/ports/driving"
	"github.com/logship/logsh/internal/logger"
)

var (
	// Version is set by goreleaser ldflags.
	version = "dev"

	// Verbose enables debug logging.
	verbose bool

	// connectionFlag selects a connection for commands that talk to a server.
	connectionFlag string

	// Services holds injected service implementations for CLI commands.
	connectionService driving.ConnectionService
	configPath        string
)

// Services holds configuration for CLI commands.
type Services struct {
	Connection driving.ConnectionService
	// ConfigPath is the resolved configuration file location.
	ConfigPath string
}

// SetServices injects service implementations for CLI commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	connectionService = s.Connection
	configPath = s.ConfigPath
}

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "logsh",
	Short: "Command line client for logship",
	Long: `logsh manages connections to logship servers and the credentials
used to talk to them.

Connections authenticate with a username and password or through OAuth
(device or browser flow). Credentials are stored in the logsh configuration
file and refreshed automatically when the server allows it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")
	rootCmd.PersistentFlags().StringVar(&connectionFlag, "connection", "",
		"connection to use instead of the default")

	// Settings may already have enabled debug logging; the flag only turns it on.
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		if verbose {
			logger.SetVerbose(true)
		}
		return nil
	}
}
