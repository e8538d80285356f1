package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecentCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "Show the newest entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("limit") && a.settings.RecentLimit > 0 {
				limit = a.settings.RecentLimit
			}
			return a.runRecent(cmd, limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultRecentLimit, "number of entries to show")
	return cmd
}

func (a *app) runRecent(cmd *cobra.Command, limit int) error {
	if limit <= 0 {
		return userError(fmt.Errorf("--limit must be positive, got %d", limit))
	}
	entries, err := a.loadEntries()
	if err != nil {
		return err
	}
	recent := newestFirst(entries)
	if len(recent) > limit {
		recent = recent[:limit]
	}

	if a.flags.jsonMode {
		return printJSON(cmd, recent)
	}
	out := cmd.OutOrStdout()
	if len(recent) == 0 {
		fmt.Fprintln(out, "No entries yet.")
		return nil
	}
	writeEntryLines(out, newUI(out), recent, a.now())
	return nil
}
