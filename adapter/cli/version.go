package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the hearth version",
	Run: func(cmd *cobra.Command, args []string) {
		v := Version
		if env := os.Getenv("HEARTH_VERSION"); env != "" {
			v = env
		}
		fmt.Fprintf(cmd.OutOrStdout(), "hearth %s\n", v)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
