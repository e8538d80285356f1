package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/triggerlog/internal/export"
	"github.com/mesh-intelligence/triggerlog/internal/logger"
)

func newImportCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Append entries from a file",
		Long: `Import appends every record of a file to the log. Records are normalized
like newly logged entries; records with an empty trigger are skipped.

Formats:
  json       the canonical list of entries (a backup)
  csv        the export table
  wide-json  objects with capitalized keys (What, Anxiety, OverallIntensity, ...)
  mood-csv   Timestamp,Trigger,Mood,Intensity

Without --format, .csv files are read as csv and anything else as json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				format = formatFromExtension(args[0])
			}
			f, err := export.ParseImportFormat(format)
			if err != nil {
				return userError(err)
			}
			return a.runImport(cmd, args[0], f)
		},
	}
	cmd.Flags().StringVar(&format, "format", string(export.FormatJSON), "json, csv, wide-json, or mood-csv")
	return cmd
}

func formatFromExtension(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return string(export.FormatCSV)
	}
	return string(export.FormatJSON)
}

// importResult is the JSON form of import output.
type importResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

func (a *app) runImport(cmd *cobra.Command, path string, format export.Format) error {
	f, err := os.Open(path)
	if err != nil {
		return userError(fmt.Errorf("open import file: %w", err))
	}
	defer f.Close()

	entries, skipped, err := export.Import(f, format)
	if err != nil {
		return userError(fmt.Errorf("read %s: %w", filepath.Base(path), err))
	}

	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Detach()

	if err := s.AppendAll(entries); err != nil {
		return sysError(fmt.Errorf("append %d entries: %w", len(entries), err))
	}
	logger.Info("import complete", "file", path, "format", format, "imported", len(entries), "skipped", skipped)

	res := importResult{Imported: len(entries), Skipped: skipped}
	if a.flags.jsonMode {
		return printJSON(cmd, res)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d entries (%d skipped)\n", res.Imported, res.Skipped)
	return nil
}
