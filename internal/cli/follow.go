package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GabrielNunesIT/logview/internal/config"
)

// NewFollowCmd creates the follow command.
func NewFollowCmd(opts *globalOptions) *cobra.Command {
	var (
		output    string
		hotReload bool
	)

	cmd := &cobra.Command{
		Use:   "follow",
		Short: "Re-print the view whenever the log source changes",
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

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if opts.cfgFile != "" && hotReload {
				startConfigWatcher(ctx, cmd, opts.cfgFile, a)
			}

			a.log.Infof("following source: source=%s", a.source.Name())

			for snap := range a.session.Follow(ctx) {
				if snap.Err != nil {
					a.log.Warningf("showing last good load: error=%v", snap.Err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "--- %d of %d records, loaded %s ---\n",
					len(snap.Records), snap.Total, a.loadedAt(snap.LoadedAt))
				if err := render(ctx, p, snap.Records); err != nil {
					return err
				}
			}

			a.log.Info("follow stopped")
			return nil
		},
	}

	addSourceFlags(cmd)
	addViewFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "text", "output format (table, text, json)")
	cmd.Flags().BoolVar(&hotReload, "hot-reload", true, "apply view changes from the config file")

	return cmd
}

// startConfigWatcher applies view edits from the config file to the
// running session. Flags given on the command line keep precedence.
func startConfigWatcher(ctx context.Context, cmd *cobra.Command, cfgFile string, a *app) {
	watcher := config.NewWatcher(cfgFile, a.cfg.Session.Debounce, a.log)
	if err := watcher.Start(ctx); err != nil {
		a.log.Warningf("failed to start config watcher: %v", err)
		return
	}

	a.log.Infof("hot-reload enabled: config=%s", cfgFile)

	go func() {
		for {
			select {
			case newCfg := <-watcher.Changes():
				applyView(cmd, newCfg, a)
			case err := <-watcher.Errors():
				a.log.Errorf("config watcher error: %v", err)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// applyView switches the session to the view section of cfg.
func applyView(cmd *cobra.Command, cfg *config.Config, a *app) {
	applyCLIOverrides(cmd, cfg)

	view, err := viewFromConfig(cfg.View)
	if err != nil {
		a.log.Errorf("ignoring invalid view from config: %v", err)
		return
	}

	a.session.SetView(view)
	a.log.Infof("view updated: level=%s, order=%s, search=%q, limit=%d", view.Level, view.Order, view.Query, view.Limit)
}
