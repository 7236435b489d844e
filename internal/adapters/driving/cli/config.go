package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logship/logsh/internal/adapters/driven/config/file"
)

var (
	pathExists   bool
	pathValidate bool
)

var configCmd = &cobra.Command{
	Use:     "config",
	Aliases: []string{"cfg"},
	Short:   "Configure the logsh CLI",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Locate and validate the logsh config",
	Long: `Print the location of the logsh configuration file.

The location is ~/.logsh/config.json unless LOGSH_CONFIG_PATH is set.`,
	Args: cobra.NoArgs,
	RunE: runConfigPath,
}

func init() {
	configPathCmd.Flags().BoolVar(&pathExists, "exists", false, "exit with error if no logsh config exists")
	configPathCmd.Flags().BoolVar(&pathValidate, "validate", false,
		"exit with error if an existing logsh config is invalid")

	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(connectionCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigPath(cmd *cobra.Command, _ []string) error {
	if configPath == "" {
		return errors.New("configuration path not resolved")
	}

	exists := file.Exists(configPath)
	if pathExists && !exists {
		return fmt.Errorf("logsh configuration does not exist at path: %s", configPath)
	}

	if pathValidate && exists {
		if connectionService == nil {
			return errors.New("connection service not configured")
		}
		if _, err := connectionService.List(cmd.Context()); err != nil {
			return fmt.Errorf("invalid configuration at %s: %w", configPath, err)
		}
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), configPath)
	return err
}
