package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// Keys of the capitalized wide-row JSON variant that are not feelings.
const (
	wideTimestamp = "Timestamp"
	wideWhat      = "What"
	wideBefore    = "Before"
	wideAfter     = "After"
	wideOverall   = "OverallIntensity"
	wideNotes     = "Notes"
)

// ReadWideJSON parses the older list-of-objects variant that stores every
// feeling as its own capitalized key ("Anxiety": 5, "Stress": 6) next to
// What/Before/After/OverallIntensity/Notes. Any other integer-valued key,
// including an ad-hoc custom label, becomes a feeling.
func ReadWideJSON(r io.Reader) ([]types.Entry, error) {
	var rows []map[string]any
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode wide rows: %w", err)
	}

	entries := make([]types.Entry, 0, len(rows))
	for i, row := range rows {
		e := types.Entry{
			Timestamp: stringField(row, wideTimestamp),
			Trigger:   stringField(row, wideWhat),
			Before:    stringField(row, wideBefore),
			After:     stringField(row, wideAfter),
			Notes:     stringField(row, wideNotes),
			Feelings:  types.Feelings{},
		}
		e.ID = idFromTimestamp(e.Timestamp)

		for key, raw := range row {
			n, ok := raw.(float64)
			if !ok {
				continue
			}
			if n != math.Trunc(n) {
				return nil, fmt.Errorf("row %d: %s: non-integer score %v", i, key, n)
			}
			if key == wideOverall {
				e.Intensity = int(n)
				continue
			}
			e.Feelings[key] = int(n)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func stringField(row map[string]any, key string) string {
	s, _ := row[key].(string)
	return s
}

// ReadMoodCSV parses the Timestamp,Trigger,Mood,Intensity variant. The mood
// label has no score, so it is carried into notes as "mood: <label>".
func ReadMoodCSV(r io.Reader) ([]types.Entry, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range []string{"timestamp", "trigger", "mood", "intensity"} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: mood csv has no %s column", types.ErrUnknownFormat, col)
		}
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
		intensity, err := parseInt(rec[index["intensity"]])
		if err != nil {
			return nil, fmt.Errorf("line %d: intensity: %w", line, err)
		}
		e := types.Entry{
			Timestamp: rec[index["timestamp"]],
			Trigger:   rec[index["trigger"]],
			Intensity: intensity,
			Feelings:  types.Feelings{},
		}
		if mood := strings.TrimSpace(rec[index["mood"]]); mood != "" {
			e.Notes = "mood: " + mood
		}
		e.ID = idFromTimestamp(e.Timestamp)
		entries = append(entries, e)
	}
	return entries, nil
}
