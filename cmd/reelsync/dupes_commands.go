package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"reelsync/internal/catalog"
	"reelsync/internal/config"
	"reelsync/internal/library"
)

func newDupesCommand(ctx *commandContext) *cobra.Command {
	dupesCmd := &cobra.Command{
		Use:   "dupes",
		Short: "Review and resolve duplicate files",
	}

	dupesCmd.AddCommand(newDupesListCommand(ctx))
	dupesCmd.AddCommand(newDupesApplyCommand(ctx))

	return dupesCmd
}

func newDupesListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show duplicate groups under the configured retention policy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(func(cfg *config.Config, store *catalog.Store, runner *library.Runner) error {
				groups, err := runner.Duplicates(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(groups) == 0 {
					fmt.Fprintln(out, "No duplicates found.")
					return nil
				}

				var wasted int64
				rows := make([][]string, 0, len(groups)*2)
				for i := range groups {
					group := &groups[i]
					wasted += group.WastedBytes()
					rows = append(rows, []string{"keep", group.Keep.Path, humanize.Bytes(uint64(group.Keep.Size)), group.Keep.ModTime.Format(time.RFC3339)})
					for _, entry := range group.Drop {
						rows = append(rows, []string{"drop", entry.Path, humanize.Bytes(uint64(entry.Size)), entry.ModTime.Format(time.RFC3339)})
					}
				}
				fmt.Fprintln(out, renderListing(
					[]column{{"Action", false}, {"Path", false}, {"Size", true}, {"Modified", false}},
					rows,
				))
				fmt.Fprintf(out, "%d group(s), %s reclaimable. Run `reelsync dupes apply` to delete the dropped copies.\n",
					len(groups), humanize.Bytes(uint64(wasted)))
				return nil
			})
		},
	}
}

func newDupesApplyCommand(ctx *commandContext) *cobra.Command {
	var skipVerify bool
	var force bool

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Delete the dropped copy of every duplicate group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(func(cfg *config.Config, store *catalog.Store, runner *library.Runner) error {
				signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				groups, err := runner.Duplicates(signalCtx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(groups) == 0 {
					fmt.Fprintln(out, "No duplicates found.")
					return nil
				}
				if !force {
					var count int
					for i := range groups {
						count += len(groups[i].Drop)
					}
					return fmt.Errorf("refusing to delete %d file(s) without --force; review with `reelsync dupes list` first", count)
				}

				result, err := runner.ApplyDedup(signalCtx, groups, !skipVerify)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Removed %d file(s), freed %s", result.Removed, humanize.Bytes(uint64(result.FreedBytes)))
				if result.Skipped > 0 {
					fmt.Fprintf(out, "; skipped %d file(s) that failed verification", result.Skipped)
				}
				fmt.Fprintln(out)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "Skip full-content verification before deleting")
	cmd.Flags().BoolVar(&force, "force", false, "Actually delete files")
	return cmd
}
