package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print logsh version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "logsh %s (%s/%s)\n", version, runtime.GOOS, runtime.GOARCH)
		if configPath != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "config: %s\n", configPath)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
