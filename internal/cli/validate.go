package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/GabrielNunesIT/go-libs/logger"

	"github.com/GabrielNunesIT/logview/internal/config"
)

// NewValidateCmd creates the validate command.
func NewValidateCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.cfgFile)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			applyCLIOverrides(cmd, cfg)

			// Validation builds everything but reports only the summary.
			a, err := buildApp(cmd, cfg, logger.NewConsoleLogger(io.Discard), true)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Configuration valid:\n")
			fmt.Fprintf(out, "  Source:    %s\n", a.source.Name())
			fmt.Fprintf(out, "  Exporters: %d enabled\n", len(a.exporters))
			return nil
		},
	}

	addSourceFlags(cmd)
	addViewFlags(cmd)

	return cmd
}
