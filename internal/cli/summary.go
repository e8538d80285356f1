package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/triggerlog/internal/stats"
)

// summaryOptions holds the summary command flags. A negative threshold
// means pattern_threshold from config.
type summaryOptions struct {
	window    int
	threshold int
}

// configThreshold selects pattern_threshold from config.yaml.
const configThreshold = -1

func newSummaryCmd(a *app) *cobra.Command {
	var opts summaryOptions
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show the dashboard",
		Long: `Summary prints totals, the average feeling profile, top triggers, activity
per day, hour, and weekday, recurring patterns, and correlations between
feelings and intensity.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("threshold") {
				opts.threshold = configThreshold
			} else if opts.threshold < 0 {
				return userError(fmt.Errorf("--threshold must not be negative, got %d", opts.threshold))
			}
			return a.runSummary(cmd, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.window, "window", "w", 0, "also average feelings over the last N entries")
	cmd.Flags().IntVar(&opts.threshold, "threshold", 0, "patterns need more than this many occurrences (default: pattern_threshold from config)")
	return cmd
}

func (a *app) runSummary(cmd *cobra.Command, opts summaryOptions) error {
	if opts.window < 0 {
		return userError(fmt.Errorf("--window must not be negative, got %d", opts.window))
	}
	entries, err := a.loadEntries()
	if err != nil {
		return err
	}

	threshold := opts.threshold
	if threshold < 0 {
		threshold = a.settings.PatternThreshold
	}
	summary := stats.Summarize(entries, stats.Options{
		Feelings:  a.feelings(),
		Threshold: threshold,
		TopN:      a.settings.TopN,
		Window:    opts.window,
		Now:       a.now(),
	})

	if a.flags.jsonMode {
		return printJSON(cmd, summary)
	}
	out := cmd.OutOrStdout()
	writeSummary(out, newUI(out), summary)
	return nil
}
