package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"reelsync/internal/catalog"
	"reelsync/internal/config"
	"reelsync/internal/pathtext"
)

func newRootsCommand(ctx *commandContext) *cobra.Command {
	rootsCmd := &cobra.Command{
		Use:   "roots",
		Short: "Manage watched roots",
	}

	rootsCmd.AddCommand(newRootsAddCommand(ctx))
	rootsCmd.AddCommand(newRootsListCommand(ctx))
	rootsCmd.AddCommand(newRootsEnableCommand(ctx, true))
	rootsCmd.AddCommand(newRootsEnableCommand(ctx, false))

	return rootsCmd
}

func newRootsAddCommand(ctx *commandContext) *cobra.Command {
	var label string

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Register a directory as a watched root",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				path, err := resolveRootPath(args[0])
				if err != nil {
					return err
				}
				info, err := os.Stat(path)
				if err != nil {
					return fmt.Errorf("inspect root %q: %w", path, err)
				}
				if !info.IsDir() {
					return fmt.Errorf("root must be a directory: %s", path)
				}

				root, err := store.AddRoot(cmd.Context(), path, label)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (id %d)\n", root.Path, root.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&label, "label", "", "Optional display label for the root")
	return cmd
}

func newRootsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List watched roots",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				roots, err := store.Roots(cmd.Context())
				if err != nil {
					return err
				}
				if len(roots) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No roots registered. Add one with `reelsync roots add <path>`.")
					return nil
				}

				rows := make([][]string, 0, len(roots))
				for _, root := range roots {
					rows = append(rows, []string{
						fmt.Sprintf("%d", root.ID),
						root.Path,
						root.Label,
						yesNo(root.Active),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderListing(
					[]column{{"ID", true}, {"Path", false}, {"Label", false}, {"Active", false}},
					rows,
				))
				return nil
			})
		},
	}
}

func newRootsEnableCommand(ctx *commandContext, enable bool) *cobra.Command {
	use, short := "enable <path>", "Resume scanning a root"
	if !enable {
		use, short = "disable <path>", "Stop scanning a root without forgetting its entries"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				path, err := resolveRootPath(args[0])
				if err != nil {
					return err
				}
				changed, err := store.SetRootActive(cmd.Context(), path, enable)
				if err != nil {
					return err
				}
				if !changed {
					return fmt.Errorf("no registered root at %s", path)
				}
				state := "enabled"
				if !enable {
					state = "disabled"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Root %s %s\n", path, state)
				return nil
			})
		},
	}
}

func resolveRootPath(arg string) (string, error) {
	expanded, err := config.ExpandPath(arg)
	if err != nil {
		return "", err
	}
	return pathtext.Normalize(expanded), nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
