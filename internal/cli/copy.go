package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewCopyCmd creates the copy command.
func NewCopyCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "copy INDEX",
		Short: "Print one record of the current view as a display line",
		Long: `Print the record at INDEX (0-based, in view order) as
"[<timestamp>] [<LEVEL>] <message>", ready to paste or pipe.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q: %w", args[0], err)
			}

			a, err := newApp(cmd, opts, false)
			if err != nil {
				return err
			}

			if _, err := a.session.Load(cmd.Context()); err != nil {
				return err
			}

			records := a.session.Snapshot().Records
			if index < 0 || index >= len(records) {
				return fmt.Errorf("index %d out of range (view has %d records)", index, len(records))
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), a.formatter.GenerateLogLineText(records[index]))
			return err
		},
	}

	addSourceFlags(cmd)
	addViewFlags(cmd)

	return cmd
}
