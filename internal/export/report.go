package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mesh-intelligence/triggerlog/internal/atomicfile"
	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// Format selects an export or import serialization.
type Format string

// Export formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatBoth Format = "both"
)

// Import-only formats.
const (
	FormatWideJSON Format = "wide-json"
	FormatMoodCSV  Format = "mood-csv"
)

// ReportStampLayout timestamps report file names.
const ReportStampLayout = "20060102_150405"

// ParseFormat validates an export format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatJSON, FormatBoth:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q (valid: csv, json, both)", types.ErrUnknownFormat, s)
	}
}

// CSVFileName returns the timestamped CSV export name.
func CSVFileName(now time.Time) string {
	return "triggers_export_" + now.Format(ReportStampLayout) + ".csv"
}

// JSONFileName returns the timestamped JSON backup name.
func JSONFileName(now time.Time) string {
	return "triggers_backup_" + now.Format(ReportStampLayout) + ".json"
}

// Report writes export artifacts for entries into dir and returns their
// paths. Returns types.ErrNoEntries when entries is empty.
func Report(dir string, entries []types.Entry, format Format, feelings []string, now time.Time) ([]string, error) {
	if len(entries) == 0 {
		return nil, types.ErrNoEntries
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create reports dir: %w", err)
	}

	var written []string
	if format == FormatCSV || format == FormatBoth {
		path := filepath.Join(dir, CSVFileName(now))
		if err := writeReport(path, func(w io.Writer) error { return WriteCSV(w, entries, feelings) }); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if format == FormatJSON || format == FormatBoth {
		path := filepath.Join(dir, JSONFileName(now))
		if err := writeReport(path, func(w io.Writer) error { return WriteJSON(w, entries) }); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	if len(written) == 0 {
		return nil, fmt.Errorf("%w %q", types.ErrUnknownFormat, format)
	}
	return written, nil
}

func writeReport(path string, fill func(w io.Writer) error) error {
	if err := atomicfile.Write(path, 0o644, fill); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
