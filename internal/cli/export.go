package cli

import (
	"github.com/spf13/cobra"
)

// NewExportCmd creates the export command.
func NewExportCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Send the current view to every configured exporter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, true)
			if err != nil {
				return err
			}

			if _, err := a.session.Load(cmd.Context()); err != nil {
				return err
			}

			n, err := a.session.Export(cmd.Context())
			if err != nil {
				return err
			}

			a.log.Infof("exported records: count=%d, exporters=%d", n, len(a.exporters))
			return nil
		},
	}

	addSourceFlags(cmd)
	addViewFlags(cmd)

	return cmd
}
