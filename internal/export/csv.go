// Package export serializes entries to flat CSV and JSON snapshots, writes
// timestamped report files, and reads the legacy formats back in.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// FeelingColumnPrefix prefixes each flattened feeling column.
const FeelingColumnPrefix = "feeling_"

// baseColumns precede the feeling columns in every CSV row.
var baseColumns = []string{"id", "timestamp", "trigger", "before", "after", "intensity", "notes"}

// Header returns the CSV header for the given feeling names.
func Header(feelings []string) []string {
	header := make([]string, 0, len(baseColumns)+len(feelings))
	header = append(header, baseColumns...)
	for _, name := range feelings {
		header = append(header, FeelingColumnPrefix+name)
	}
	return header
}

// Row flattens one entry. Feelings absent from the entry are written as 0;
// feelings outside the column set are dropped.
func Row(e types.Entry, feelings []string) []string {
	row := []string{
		strconv.FormatInt(e.ID, 10),
		e.Timestamp,
		e.Trigger,
		e.Before,
		e.After,
		strconv.Itoa(e.Intensity),
		e.Notes,
	}
	for _, name := range feelings {
		row = append(row, strconv.Itoa(e.Feelings.Get(name)))
	}
	return row
}

// EncodeCSV writes the header and one row per entry, even when entries is
// empty. Stores use it directly; exports go through WriteCSV.
func EncodeCSV(w io.Writer, entries []types.Entry, feelings []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(feelings)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write(Row(e, feelings)); err != nil {
			return fmt.Errorf("write entry %d: %w", e.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSV exports entries in order. Returns types.ErrNoEntries when there is
// nothing to export.
func WriteCSV(w io.Writer, entries []types.Entry, feelings []string) error {
	if len(entries) == 0 {
		return types.ErrNoEntries
	}
	return EncodeCSV(w, entries, feelings)
}

// ReadCSV parses the export format. Every feeling_<name> column becomes a
// feeling; unknown columns are ignored. Entries are returned as read, without
// normalization. An empty input yields no entries.
func ReadCSV(r io.Reader) ([]types.Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.TrimSpace(col)] = i
	}
	if _, ok := index["trigger"]; !ok {
		return nil, fmt.Errorf("%w: csv header has no trigger column", types.ErrUnknownFormat)
	}

	var entries []types.Entry
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		e, err := entryFromRecord(rec, header, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func entryFromRecord(rec, header []string, index map[string]int) (types.Entry, error) {
	field := func(name string) string {
		i, ok := index[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	e := types.Entry{
		Timestamp: field("timestamp"),
		Trigger:   field("trigger"),
		Before:    field("before"),
		After:     field("after"),
		Notes:     field("notes"),
		Feelings:  types.Feelings{},
	}

	var err error
	if e.ID, err = parseInt64(field("id")); err != nil {
		return types.Entry{}, fmt.Errorf("id: %w", err)
	}
	if e.ID == 0 {
		e.ID = idFromTimestamp(e.Timestamp)
	}
	if e.Intensity, err = parseInt(field("intensity")); err != nil {
		return types.Entry{}, fmt.Errorf("intensity: %w", err)
	}

	for i, col := range header {
		name, ok := strings.CutPrefix(strings.TrimSpace(col), FeelingColumnPrefix)
		if !ok || i >= len(rec) {
			continue
		}
		score, err := parseInt(rec[i])
		if err != nil {
			return types.Entry{}, fmt.Errorf("%s: %w", col, err)
		}
		e.Feelings[name] = score
	}
	return e, nil
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func parseInt64(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// idFromTimestamp derives a millisecond ID for records that never had one.
func idFromTimestamp(ts string) int64 {
	t, err := types.Entry{Timestamp: ts}.Time()
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}
