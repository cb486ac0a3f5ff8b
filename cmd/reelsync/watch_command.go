package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"reelsync/internal/catalog"
	"reelsync/internal/config"
	"reelsync/internal/library"
	"reelsync/internal/watcher"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reconcile continuously as files change under the active roots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(func(cfg *config.Config, store *catalog.Store, runner *library.Runner) error {
				signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				roots, err := store.ActiveRoots(signalCtx)
				if err != nil {
					return err
				}
				if len(roots) == 0 {
					return library.ErrNoRoots
				}
				rootPaths := make([]string, len(roots))
				for i, root := range roots {
					rootPaths[i] = root.Path
				}

				logger, err := ctx.ensureLogger()
				if err != nil {
					return err
				}

				// Initial pass so the catalog is current before the
				// event loop takes over.
				if _, err := runner.Reconcile(signalCtx, nil); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "Watching %d root(s); press Ctrl-C to stop.\n", len(roots))
				w := watcher.New(
					time.Duration(cfg.Watch.DebounceSeconds)*time.Second,
					time.Duration(cfg.Watch.RescanMinutes)*time.Minute,
					logger,
				)
				return w.Run(signalCtx, rootPaths, func(runCtx context.Context) error {
					_, err := runner.Reconcile(runCtx, nil)
					if errors.Is(err, library.ErrLocked) {
						// Another process ran instead; the rescan tick
						// will catch anything it missed.
						return nil
					}
					return err
				})
			})
		},
	}
}
