package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/logship/logsh/internal/core/domain"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show current user and connection information",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, _ []string) error {
	if err := requireConnectionService(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	user, err := connectionService.WhoAmI(cmd.Context(), connectionFlag)
	if errors.Is(err, domain.ErrNoDefaultConnection) {
		fmt.Fprintln(out, "Status: No connections configured. Configuration Required.")
		return err
	}
	if err != nil {
		fmt.Fprintln(out, "Status: Not Connected")
		return fmt.Errorf("not logged in: %w", err)
	}

	conn, err := connectionService.Resolve(cmd.Context(), connectionFlag)
	if err != nil {
		return err
	}
	sub := "None"
	if name, _, ok := conn.Connection.ResolveDefaultSubscription(); ok {
		sub = name
	}

	fmt.Fprintln(out, "Status: Connected")
	fmt.Fprintf(out, "Logged into connection %s as user %s with subscription: %s\n", conn.Name, user.UserName, sub)
	return nil
}
