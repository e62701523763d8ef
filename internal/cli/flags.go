package cli

import (
	"github.com/spf13/cobra"

	"github.com/GabrielNunesIT/logview/internal/config"
)

// addSourceFlags registers the flags selecting the log source.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().String("file", "", "log file to read")
	cmd.Flags().Bool("stdin", false, "read the log from stdin")
	cmd.Flags().StringSlice("journal-unit", nil, "read the systemd journal for these units")
	cmd.Flags().String("input-format", "", "input format (text, jsonl)")
}

// addViewFlags registers the filter, search, sort and display flags.
func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().String("level", "", "minimum level (ALL, ERROR, WARN, INFO, DEBUG, TRACE)")
	cmd.Flags().String("search", "", "case-insensitive text to search for")
	cmd.Flags().String("order", "", "time order (asc, desc)")
	cmd.Flags().Int("limit", 0, "maximum number of records, 0 for all")
	cmd.Flags().String("tz", "", "display timezone (IANA name)")
}

// applyCLIOverrides copies explicitly set flags over cfg.
func applyCLIOverrides(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()

	if flags.Changed("file") {
		cfg.Source.Kind = "file"
		cfg.Source.Path, _ = flags.GetString("file")
	}
	if v, _ := flags.GetBool("stdin"); v {
		cfg.Source.Kind = "stdin"
	}
	if flags.Changed("journal-unit") {
		cfg.Source.Kind = "journal"
		cfg.Source.Units, _ = flags.GetStringSlice("journal-unit")
	}
	if flags.Changed("input-format") {
		cfg.Parser.Format, _ = flags.GetString("input-format")
	}

	if flags.Changed("level") {
		cfg.View.Level, _ = flags.GetString("level")
	}
	if flags.Changed("search") {
		cfg.View.Query, _ = flags.GetString("search")
	}
	if flags.Changed("order") {
		cfg.View.Order, _ = flags.GetString("order")
	}
	if flags.Changed("limit") {
		cfg.View.Limit, _ = flags.GetInt("limit")
	}
	if flags.Changed("tz") {
		cfg.Display.Timezone, _ = flags.GetString("tz")
	}
}
