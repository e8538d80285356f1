package stats

import (
	"time"

	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// Options tunes Summarize. Zero values fall back to defaults, except
// Threshold where zero is a valid cutoff.
type Options struct {
	// Feelings is the feeling enumeration. Empty means types.DefaultFeelings.
	Feelings []string
	// Threshold is the pattern threshold. Negative means DefaultPatternThreshold.
	Threshold int
	// TopN limits TopTriggers. Zero or less means DefaultTopN.
	TopN int
	// Window, when positive, adds averages over the last Window entries.
	Window int
	// Now anchors the this-week count. Zero means time.Now.
	Now time.Time
}

// Defaults for Options.
const (
	DefaultTopN = 5
	WeekWindow  = 7 * 24 * time.Hour
)

// Summary bundles every aggregate for the dashboard.
type Summary struct {
	Total            int                `json:"total"`
	AverageIntensity float64            `json:"average_intensity"`
	ThisWeek         int                `json:"this_week"`
	TopTrigger       string             `json:"top_trigger"`
	Feelings         []string           `json:"feelings"`
	FeelingAverages  map[string]float64 `json:"feeling_averages"`
	Window           int                `json:"window,omitempty"`
	WindowAverages   map[string]float64 `json:"window_averages,omitempty"`
	TopTriggers      []TriggerCount     `json:"top_triggers"`
	PerDay           []DayCount         `json:"per_day"`
	PerHour          []HourCount        `json:"per_hour"`
	PerWeekday       []WeekdayCount     `json:"per_weekday"`
	DailyIntensity   []DayAverage       `json:"daily_intensity"`
	HourPatterns     []Pattern          `json:"hour_patterns"`
	WeekdayPatterns  []Pattern          `json:"weekday_patterns"`
	Correlation      Matrix             `json:"correlation"`
}

// Summarize computes every aggregate in one call.
func Summarize(entries []types.Entry, opts Options) Summary {
	names := opts.Feelings
	if len(names) == 0 {
		names = types.DefaultFeelings
	}
	threshold := opts.Threshold
	if threshold < 0 {
		threshold = DefaultPatternThreshold
	}
	topN := opts.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	top := TopTriggers(entries, topN)
	s := Summary{
		Total:            len(entries),
		AverageIntensity: AverageIntensity(entries),
		ThisWeek:         CountSince(entries, now.Add(-WeekWindow)),
		Feelings:         append([]string(nil), names...),
		FeelingAverages:  AverageFeelings(entries, names),
		TopTriggers:      nonNil(top),
		PerDay:           nonNil(PerDay(entries)),
		PerHour:          nonNil(PerHour(entries)),
		PerWeekday:       nonNil(PerWeekday(entries)),
		DailyIntensity:   nonNil(DailyAverageIntensity(entries)),
		HourPatterns:     nonNil(HourPatterns(entries, threshold)),
		WeekdayPatterns:  nonNil(WeekdayPatterns(entries, threshold)),
		Correlation:      Correlate(entries, names),
	}
	if len(top) > 0 {
		s.TopTrigger = top[0].Trigger
	}
	if opts.Window > 0 {
		s.Window = opts.Window
		s.WindowAverages = AverageFeelings(Tail(entries, opts.Window), names)
	}
	return s
}

// nonNil keeps empty groups rendering as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
