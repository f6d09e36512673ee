package main

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// version выставляется при сборке через -ldflags.
var version = "dev"

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &snapshotOptions{}

	rootCmd := &cobra.Command{
		Use:          "snapshot",
		Short:        "Compute a grocery dashboard snapshot and print it as JSON or daily sales CSV",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd, opts)
		},
	}
	rootCmd.Flags().StringVarP(&opts.rng, "range", "r", "", "report range: week, month or year (default from ANALYTICS_DEFAULT_RANGE)")
	rootCmd.Flags().StringVarP(&opts.format, "format", "f", "json", "output format: json or csv")
	rootCmd.Flags().StringVar(&opts.now, "now", "", "reference time in RFC3339 (default: current time)")
	rootCmd.PersistentFlags().StringVar(&opts.source, "source", "", "data source: postgres or file (default from DATA_SOURCE)")
	rootCmd.PersistentFlags().StringVar(&opts.file, "file", "", "path to the JSON dump for --source file")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the snapshot tool version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	}

	rootCmd.AddCommand(versionCmd, newInvalidateCmd())
	return rootCmd
}
