// Package cli implements the explorer command line: offline describe and
// chart commands over local files, using the same computations as the
// web dashboard.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/explorer/internal/logging"
)

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "explorer",
		Short:         "Explore CSV and Excel tables",
		Long:          "Summarize tables and render their charts without starting the web server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Setup(logLevel, "text")
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	rootCmd.AddCommand(newDescribeCmd())
	rootCmd.AddCommand(newChartCmd())
	return rootCmd
}
