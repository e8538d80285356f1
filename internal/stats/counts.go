// Package stats computes aggregate views over a slice of entries. Every
// function is pure and recomputes from scratch; the input is never modified.
package stats

import (
	"slices"
	"strings"

	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// TriggerCount is the number of entries sharing one trigger text.
type TriggerCount struct {
	Trigger string `json:"trigger"`
	Count   int    `json:"count"`
}

// CountTriggers groups entries by exact trimmed trigger text. Empty triggers
// are skipped. Results are ordered by count descending; ties keep the order
// in which the trigger first appeared.
func CountTriggers(entries []types.Entry) []TriggerCount {
	index := make(map[string]int)
	var counts []TriggerCount
	for _, e := range entries {
		trigger := strings.TrimSpace(e.Trigger)
		if trigger == "" {
			continue
		}
		i, ok := index[trigger]
		if !ok {
			i = len(counts)
			index[trigger] = i
			counts = append(counts, TriggerCount{Trigger: trigger})
		}
		counts[i].Count++
	}
	slices.SortStableFunc(counts, func(a, b TriggerCount) int {
		return b.Count - a.Count
	})
	return counts
}

// TopTriggers returns the n most frequent triggers. n <= 0 returns all.
func TopTriggers(entries []types.Entry, n int) []TriggerCount {
	counts := CountTriggers(entries)
	if n > 0 && len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// AverageFeelings returns the mean score for each name. An entry without a
// score for a name contributes 0 and still counts toward the denominator.
// An empty input yields 0 for every name.
func AverageFeelings(entries []types.Entry, names []string) map[string]float64 {
	averages := make(map[string]float64, len(names))
	for _, name := range names {
		averages[name] = 0
	}
	if len(entries) == 0 {
		return averages
	}
	for _, name := range names {
		sum := 0
		for _, e := range entries {
			sum += e.Feelings.Get(name)
		}
		averages[name] = float64(sum) / float64(len(entries))
	}
	return averages
}

// AverageIntensity returns the mean intensity, or 0 for an empty input.
func AverageIntensity(entries []types.Entry) float64 {
	if len(entries) == 0 {
		return 0
	}
	sum := 0
	for _, e := range entries {
		sum += e.Intensity
	}
	return float64(sum) / float64(len(entries))
}

// Tail returns the last n entries. n <= 0 or n >= len(entries) returns all.
func Tail(entries []types.Entry, n int) []types.Entry {
	if n <= 0 || n >= len(entries) {
		return entries
	}
	return entries[len(entries)-n:]
}
