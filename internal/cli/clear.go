package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewClearCmd creates the clear command.
func NewClearCmd(opts *globalOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Empty the log source",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, opts, false)
			if err != nil {
				return err
			}

			if !yes {
				return fmt.Errorf("refusing to clear %s without --yes", a.source.Name())
			}

			if err := a.session.Clear(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", a.source.Name())
			return nil
		},
	}

	addSourceFlags(cmd)
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm clearing the source")

	return cmd
}
