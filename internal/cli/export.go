package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/triggerlog/internal/export"
	"github.com/mesh-intelligence/triggerlog/internal/logger"
	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

func newExportCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write CSV and/or JSON report files",
		Long: `Export writes timestamped report files into the reports directory:
triggers_export_YYYYmmdd_HHMMSS.csv and triggers_backup_YYYYmmdd_HHMMSS.json.
Exporting an empty log is an error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := export.ParseFormat(format)
			if err != nil {
				return userError(err)
			}
			return a.runExport(cmd, f)
		},
	}
	cmd.Flags().StringVar(&format, "format", string(export.FormatBoth), "csv, json, or both")
	return cmd
}

func (a *app) runExport(cmd *cobra.Command, format export.Format) error {
	entries, err := a.loadEntries()
	if err != nil {
		return err
	}

	written, err := export.Report(a.reportsDir, entries, format, a.feelings(), a.now())
	if errors.Is(err, types.ErrNoEntries) {
		return userError(err)
	}
	if err != nil {
		return sysError(err)
	}
	logger.Info("export written", "format", format, "entries", len(entries), "files", len(written))

	if a.flags.jsonMode {
		return printJSON(cmd, map[string]any{"entries": len(entries), "files": written})
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Exported %d entries:\n", len(entries))
	for _, path := range written {
		fmt.Fprintf(out, "  %s\n", path)
	}
	return nil
}
