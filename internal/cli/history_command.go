package cli

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"runtimecue.dev/internal/tracking"
)

// newHistoryCommand creates the history subcommand
func newHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded load attempts",
		Long: `Show load attempts recorded in the history database.

--since accepts durations (90m, 36h), day counts (7d), presets (today,
yesterday, week, last-week, month, all) and natural phrases ("3 days ago").`,
		Args: cobra.NoArgs,
		RunE: runHistoryCommand,
	}

	cmd.Flags().String("since", "", "Only loads at or after this time")
	cmd.Flags().Int("limit", tracking.DefaultLimit, "Maximum number of rows")
	cmd.Flags().Bool("failed", false, "Only failed loads, grouped by file")
	cmd.Flags().String("format", "", "Only loads decoded as this format (WAV, AIFF, MP3, OGG)")
	cmd.Flags().Bool("summary", false, "Print totals instead of rows")

	return cmd
}

func runHistoryCommand(cmd *cobra.Command, args []string) error {
	cli := cliFromContext(cmd.Context())
	if cli == nil {
		return fmt.Errorf("CLI instance not found in context")
	}
	if _, err := cli.prepare(cmd); err != nil {
		return err
	}
	if cli.historyDB == nil {
		return fmt.Errorf("load history is not available (disabled or database could not be opened)")
	}

	filter, err := historyFilter(cmd, time.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	summary, _ := cmd.Flags().GetBool("summary")
	failed, _ := cmd.Flags().GetBool("failed")

	switch {
	case summary:
		s, err := tracking.GetLoadSummary(cli.historyDB, filter)
		if err != nil {
			return fmt.Errorf("failed to summarize history: %w", err)
		}
		printSummary(out, s)
	case failed:
		files, err := tracking.GetFailedFiles(cli.historyDB, filter)
		if err != nil {
			return fmt.Errorf("failed to query failed files: %w", err)
		}
		printFailedFiles(out, files)
	default:
		records, err := tracking.RecentLoads(cli.historyDB, filter)
		if err != nil {
			return fmt.Errorf("failed to query history: %w", err)
		}
		printRecords(out, records)
	}
	return nil
}

func historyFilter(cmd *cobra.Command, now time.Time) (tracking.QueryFilter, error) {
	sinceArg, _ := cmd.Flags().GetString("since")
	since, err := tracking.ParseSince(sinceArg, now)
	if err != nil {
		return tracking.QueryFilter{}, err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")
	failed, _ := cmd.Flags().GetBool("failed")

	return tracking.QueryFilter{
		Since:      since,
		Format:     format,
		FailedOnly: failed,
		Limit:      limit,
	}, nil
}

func printRecords(w io.Writer, records []tracking.LoadRecord) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No loads recorded.")
		return
	}
	for _, r := range records {
		status := "ok"
		if r.Failed() {
			status = "FAILED: " + r.Error
		}
		format := r.Format
		if format == "" {
			format = "-"
		}
		fmt.Fprintf(w, "%s  %-4s  %-8s  %s  %s\n",
			r.Timestamp.Local().Format(time.DateTime), format, r.Elapsed.Round(time.Microsecond), r.Path, status)
	}
}

func printFailedFiles(w io.Writer, files []tracking.FailedFile) {
	if len(files) == 0 {
		fmt.Fprintln(w, "No failed loads.")
		return
	}
	for _, f := range files {
		fmt.Fprintf(w, "%s  (%d attempts, last %s)\n    %s\n",
			f.Path, f.Attempts, f.LastSeen.Local().Format(time.DateTime), f.LastError)
	}
}

func printSummary(w io.Writer, s *tracking.LoadSummary) {
	fmt.Fprintf(w, "Total loads:  %d\n", s.TotalLoads)
	fmt.Fprintf(w, "Failed loads: %d\n", s.FailedLoads)
	fmt.Fprintf(w, "Unique files: %d\n", s.UniqueFiles)

	formats := make([]string, 0, len(s.FormatDistribution))
	for f := range s.FormatDistribution {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	for _, f := range formats {
		fmt.Fprintf(w, "  %-4s %d\n", f, s.FormatDistribution[f])
	}
}
