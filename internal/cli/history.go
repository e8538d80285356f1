package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/triggerlog/internal/stats"
	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// historyOptions holds the history command flags.
type historyOptions struct {
	search string
	days   int
}

func newHistoryCmd(a *app) *cobra.Command {
	var opts historyOptions
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Search past entries",
		Long: `History lists entries newest first. --search matches trigger, before,
after, and notes without regard to case. --days limits the listing to the last
N days (for example 7, 30, 90, or 365); 0 shows everything.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runHistory(cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "case-insensitive text to search for")
	cmd.Flags().IntVarP(&opts.days, "days", "d", 0, "only entries from the last N days (0 = all)")
	return cmd
}

func (a *app) runHistory(cmd *cobra.Command, opts historyOptions) error {
	if opts.days < 0 {
		return userError(fmt.Errorf("--days must not be negative, got %d", opts.days))
	}
	entries, err := a.loadEntries()
	if err != nil {
		return err
	}
	matched := newestFirst(filterHistory(entries, opts, a.now()))

	if a.flags.jsonMode {
		return printJSON(cmd, matched)
	}
	out := cmd.OutOrStdout()
	if len(matched) == 0 {
		fmt.Fprintln(out, "No matching entries.")
		return nil
	}
	fmt.Fprintln(out, entryTable(matched, a.feelings()))
	fmt.Fprintf(out, "%d of %d entries\n", len(matched), len(entries))
	return nil
}

// filterHistory applies the day window and the text search.
func filterHistory(entries []types.Entry, opts historyOptions, now time.Time) []types.Entry {
	if opts.days > 0 {
		entries = stats.Since(entries, now.AddDate(0, 0, -opts.days))
	}
	needle := strings.ToLower(strings.TrimSpace(opts.search))
	if needle == "" {
		return entries
	}
	var out []types.Entry
	for _, e := range entries {
		for _, field := range []string{e.Trigger, e.Before, e.After, e.Notes} {
			if strings.Contains(strings.ToLower(field), needle) {
				out = append(out, e)
				break
			}
		}
	}
	return out
}
