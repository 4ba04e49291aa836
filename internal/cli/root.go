// Package cli contains the cobra command tree for navctl.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"business-navigator/internal/shared/config"
)

var appVersion = "dev"

// SetVersion sets the version reported by --version.
func SetVersion(v string) {
	appVersion = v
	rootCmd.Version = v
}

var (
	flagJSON    bool
	flagNoColor bool
)

// loadConfig is swapped in tests.
var loadConfig = config.Load

var rootCmd = &cobra.Command{
	Use:           "navctl",
	Short:         "Operate the business navigator backend from the terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.AddCommand(reportCmd, seedCmd, migrateCmd)
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
