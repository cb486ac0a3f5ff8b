package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"reelsync/internal/catalog"
	"reelsync/internal/config"
	"reelsync/internal/library"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan all active roots and reconcile the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withRunner(func(cfg *config.Config, store *catalog.Store, runner *library.Runner) error {
				signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				report, err := runner.Reconcile(signalCtx, runProgress())
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeReportJSON(cmd.OutOrStdout(), report)
				}
				printReport(cmd, report)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the run report as JSON")
	return cmd
}

func printReport(cmd *cobra.Command, report *library.Report) {
	out := cmd.OutOrStdout()
	s := report.Summary

	rows := [][2]string{
		{"Scanned", strconv.Itoa(report.Scanned)},
		{"Inserted", strconv.Itoa(s.Inserted)},
		{"Relocated", strconv.Itoa(s.Relocated)},
		{"Refreshed", strconv.Itoa(s.Refreshed)},
		{"Marked offline", strconv.Itoa(s.Offlined)},
		{"Unchanged", strconv.Itoa(s.Unchanged)},
		{"Ambiguous", strconv.Itoa(report.Ambiguous)},
		{"Duplicate groups", strconv.Itoa(len(report.Duplicates))},
		{"Errors", strconv.Itoa(len(report.Errors))},
		{"Elapsed", report.Duration.Round(time.Millisecond).String()},
	}
	fmt.Fprintln(out, renderSummary("Run "+report.RunID, rows))

	if len(report.Errors) > 0 {
		fmt.Fprintln(out, "Scan and fingerprint errors:")
		for _, scanErr := range report.Errors {
			fmt.Fprintf(out, "  %s: %s\n", scanErr.Path, scanErr.Message)
		}
	}
	if wasted := wastedBytes(report); wasted > 0 {
		fmt.Fprintf(out, "Duplicates waste %s; run `reelsync dupes list` to review.\n", humanize.Bytes(uint64(wasted)))
	}
}

func wastedBytes(report *library.Report) int64 {
	var total int64
	for i := range report.Duplicates {
		total += report.Duplicates[i].WastedBytes()
	}
	return total
}

func writeReportJSON(out io.Writer, report *library.Report) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reportPayload(report))
}

func reportPayload(report *library.Report) map[string]any {
	s := report.Summary
	errs := make([]map[string]string, 0, len(report.Errors))
	for _, scanErr := range report.Errors {
		errs = append(errs, map[string]string{"path": scanErr.Path, "message": scanErr.Message})
	}
	groups := make([]map[string]any, 0, len(report.Duplicates))
	for i := range report.Duplicates {
		group := &report.Duplicates[i]
		drops := make([]string, 0, len(group.Drop))
		for _, entry := range group.Drop {
			drops = append(drops, entry.Path)
		}
		groups = append(groups, map[string]any{
			"fingerprint": group.Fingerprint,
			"keep":        group.Keep.Path,
			"drop":        drops,
			"wasted":      group.WastedBytes(),
		})
	}
	return map[string]any{
		"run_id":     report.RunID,
		"started":    report.Started,
		"elapsed_ms": report.Duration.Milliseconds(),
		"scanned":    report.Scanned,
		"inserted":   s.Inserted,
		"relocated":  s.Relocated,
		"refreshed":  s.Refreshed,
		"offlined":   s.Offlined,
		"unchanged":  s.Unchanged,
		"ambiguous":  report.Ambiguous,
		"errors":     errs,
		"duplicates": groups,
	}
}
