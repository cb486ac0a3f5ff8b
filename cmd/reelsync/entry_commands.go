package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"reelsync/internal/catalog"
	"reelsync/internal/config"
	"reelsync/internal/library"
)

func newMoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "move <id> <destination>",
		Short: "Move a cataloged file on disk, keeping its catalog identity",
		Long:  "Moves the file for the given entry id to a new path or directory. Cross-device moves copy, verify, then remove the original.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(func(cfg *config.Config, store *catalog.Store, runner *library.Runner) error {
				id, err := parseEntryID(args[0])
				if err != nil {
					return err
				}
				dest, err := config.ExpandPath(args[1])
				if err != nil {
					return err
				}
				moved, err := runner.MoveEntry(cmd.Context(), id, dest)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Moved entry %d to %s\n", moved.ID, moved.Path)
				return nil
			})
		},
	}
}

func newRemoveCommand(ctx *commandContext) *cobra.Command {
	var keepFile bool

	cmd := &cobra.Command{
		Use:   "rm <id>",
		Short: "Remove an entry from the catalog and delete its file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(func(cfg *config.Config, store *catalog.Store, runner *library.Runner) error {
				id, err := parseEntryID(args[0])
				if err != nil {
					return err
				}
				if err := runner.RemoveEntry(cmd.Context(), id, !keepFile); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed entry %d\n", id)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&keepFile, "keep-file", false, "Remove only the catalog entry, leaving the file on disk")
	return cmd
}

func parseEntryID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid entry id %q", arg)
	}
	return id, nil
}
