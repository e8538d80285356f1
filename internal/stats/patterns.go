package stats

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// DefaultPatternThreshold is the count a (trigger, time bucket) group must
// exceed to be reported.
const DefaultPatternThreshold = 2

// Pattern is a trigger that recurs in the same time bucket. When is an hour
// label such as "14:00" or a weekday name.
type Pattern struct {
	Trigger string `json:"trigger"`
	When    string `json:"when"`
	Count   int    `json:"count"`
}

// HourPatterns groups entries by (trigger, hour of day) and keeps groups
// whose count is strictly greater than threshold.
func HourPatterns(entries []types.Entry, threshold int) []Pattern {
	return patterns(entries, threshold, func(t time.Time) string {
		return fmt.Sprintf("%02d:00", t.Hour())
	})
}

// WeekdayPatterns groups entries by (trigger, weekday) and keeps groups
// whose count is strictly greater than threshold.
func WeekdayPatterns(entries []types.Entry, threshold int) []Pattern {
	return patterns(entries, threshold, func(t time.Time) string {
		return t.Weekday().String()
	})
}

func patterns(entries []types.Entry, threshold int, bucket func(time.Time) string) []Pattern {
	type key struct{ trigger, when string }
	index := make(map[key]int)
	var groups []Pattern
	timed(entries, func(e types.Entry, t time.Time) {
		trigger := strings.TrimSpace(e.Trigger)
		if trigger == "" {
			return
		}
		k := key{trigger: trigger, when: bucket(t)}
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Pattern{Trigger: k.trigger, When: k.when})
		}
		groups[i].Count++
	})

	kept := make([]Pattern, 0, len(groups))
	for _, g := range groups {
		if g.Count > threshold {
			kept = append(kept, g)
		}
	}
	slices.SortStableFunc(kept, func(a, b Pattern) int {
		return b.Count - a.Count
	})
	return kept
}
