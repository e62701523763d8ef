package cli

import (
	"github.com/spf13/cobra"
)

// globalOptions holds the persistent root flags.
type globalOptions struct {
	cfgFile  string
	logLevel string
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "logview",
		Short: "View, filter and export application logs",
		Long: `logview reads a whole log source (a file, stdin or the systemd journal),
normalizes every line into a timestamp, level and message, and shows the
records filtered by level, searched and sorted by time.

Records can be copied one at a time in display form, exported to stdout,
rotating files, Elasticsearch or Loki, and file sources can be cleared.

Follow mode re-reads the source whenever it changes. When a config file is
given, edits to its view section are applied without a restart.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.cfgFile, "config", "c", "", "config file (default: ./logview.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(
		NewViewCmd(opts),
		NewCopyCmd(opts),
		NewExportCmd(opts),
		NewFollowCmd(opts),
		NewClearCmd(opts),
		NewValidateCmd(opts),
		NewVersionCmd(),
	)

	return rootCmd
}

// Execute builds and runs the CLI.
func Execute() error {
	return NewRootCmd().Execute()
}
