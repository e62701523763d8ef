package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GabrielNunesIT/logview/internal/export"
	"github.com/GabrielNunesIT/logview/internal/model"
)

// NewViewCmd creates the view command.
func NewViewCmd(opts *globalOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Print the filtered, sorted records of a log source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, false)
			if err != nil {
				return err
			}

			p, err := a.printer(cmd, output)
			if err != nil {
				return err
			}

			if _, err := a.session.Load(cmd.Context()); err != nil {
				return err
			}

			snap := a.session.Snapshot()
			a.log.Debugf("showing records: shown=%d, total=%d", len(snap.Records), snap.Total)
			return render(cmd.Context(), p, snap.Records)
		},
	}

	addSourceFlags(cmd)
	addViewFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format (table, text, json)")

	return cmd
}

// render writes records through a one-shot exporter run.
func render(ctx context.Context, e export.Exporter, records []model.LogRecord) error {
	if err := e.Start(ctx); err != nil {
		return err
	}
	for _, rec := range records {
		if err := e.Export(ctx, rec); err != nil {
			return errors.Join(fmt.Errorf("writing output: %w", err), e.Stop(ctx))
		}
	}
	return e.Stop(ctx)
}
