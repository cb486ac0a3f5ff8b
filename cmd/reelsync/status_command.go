package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelsync/internal/catalog"
	"reelsync/internal/config"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show catalog totals and configured roots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				summary, err := store.Summarize(cmd.Context())
				if err != nil {
					return err
				}

				rows := [][2]string{
					{"Online entries", strconv.Itoa(summary.Online)},
					{"Offline entries", strconv.Itoa(summary.Offline)},
					{"Missing fingerprints", strconv.Itoa(summary.MissingFingerprint)},
					{"Active roots", strconv.Itoa(summary.ActiveRoots)},
					{"Inactive roots", strconv.Itoa(summary.InactiveRoots)},
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderSummary("Catalog", rows))
				fmt.Fprintf(out, "Database: %s\n", store.Path())
				return nil
			})
		},
	}
}
