package export

import (
	"fmt"
	"io"

	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// ParseImportFormat validates an import format name.
func ParseImportFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatCSV, FormatWideJSON, FormatMoodCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q (valid: json, csv, wide-json, mood-csv)", types.ErrUnknownFormat, s)
	}
}

// Import decodes r in the given format and normalizes every record the way
// a freshly logged entry would be. Records that fail normalization (blank
// trigger) are skipped and counted.
func Import(r io.Reader, format Format) (entries []types.Entry, skipped int, err error) {
	var raw []types.Entry
	switch format {
	case FormatJSON:
		raw, err = ReadJSON(r)
	case FormatCSV:
		raw, err = ReadCSV(r)
	case FormatWideJSON:
		raw, err = ReadWideJSON(r)
	case FormatMoodCSV:
		raw, err = ReadMoodCSV(r)
	default:
		return nil, 0, fmt.Errorf("%w %q", types.ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, 0, err
	}

	entries = make([]types.Entry, 0, len(raw))
	for _, e := range raw {
		if err := e.Normalize(); err != nil {
			skipped++
			continue
		}
		entries = append(entries, e)
	}
	return entries, skipped, nil
}
