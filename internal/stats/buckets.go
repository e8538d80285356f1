package stats

import (
	"sort"
	"time"

	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// DateLayout is the calendar-day bucket key.
const DateLayout = "2006-01-02"

// DayCount is the number of entries on one calendar date.
type DayCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// HourCount is the number of entries within one hour of the day.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// WeekdayCount is the number of entries on one day of the week.
type WeekdayCount struct {
	Weekday string `json:"weekday"`
	Count   int    `json:"count"`
}

// DayAverage is the mean intensity of the entries on one calendar date.
type DayAverage struct {
	Date    string  `json:"date"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// weekdays lists days Monday first, matching the dashboard order.
var weekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// weekdayIndex maps a weekday to its Monday-first position.
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// timed calls fn for every entry whose timestamp parses. Others are skipped.
func timed(entries []types.Entry, fn func(e types.Entry, t time.Time)) {
	for _, e := range entries {
		t, err := e.Time()
		if err != nil {
			continue
		}
		fn(e, t)
	}
}

// PerDay counts entries per calendar date, ordered by date.
func PerDay(entries []types.Entry) []DayCount {
	counts := make(map[string]int)
	timed(entries, func(_ types.Entry, t time.Time) {
		counts[t.Format(DateLayout)]++
	})

	days := make([]DayCount, 0, len(counts))
	for date, n := range counts {
		days = append(days, DayCount{Date: date, Count: n})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// PerHour counts entries per hour of the day. Only non-empty hours are
// returned, in ascending order.
func PerHour(entries []types.Entry) []HourCount {
	var counts [24]int
	timed(entries, func(_ types.Entry, t time.Time) {
		counts[t.Hour()]++
	})

	var hours []HourCount
	for h, n := range counts {
		if n > 0 {
			hours = append(hours, HourCount{Hour: h, Count: n})
		}
	}
	return hours
}

// PerWeekday counts entries per day of the week, Monday first. Only
// non-empty days are returned.
func PerWeekday(entries []types.Entry) []WeekdayCount {
	var counts [7]int
	timed(entries, func(_ types.Entry, t time.Time) {
		counts[weekdayIndex(t.Weekday())]++
	})

	var days []WeekdayCount
	for i, n := range counts {
		if n > 0 {
			days = append(days, WeekdayCount{Weekday: weekdays[i].String(), Count: n})
		}
	}
	return days
}

// DailyAverageIntensity returns the mean intensity per calendar date,
// ordered by date.
func DailyAverageIntensity(entries []types.Entry) []DayAverage {
	type acc struct{ sum, n int }
	byDate := make(map[string]*acc)
	timed(entries, func(e types.Entry, t time.Time) {
		date := t.Format(DateLayout)
		a, ok := byDate[date]
		if !ok {
			a = &acc{}
			byDate[date] = a
		}
		a.sum += e.Intensity
		a.n++
	})

	days := make([]DayAverage, 0, len(byDate))
	for date, a := range byDate {
		days = append(days, DayAverage{
			Date:    date,
			Average: float64(a.sum) / float64(a.n),
			Count:   a.n,
		})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

// CountSince counts entries strictly after cutoff.
func CountSince(entries []types.Entry, cutoff time.Time) int {
	n := 0
	timed(entries, func(_ types.Entry, t time.Time) {
		if t.After(cutoff) {
			n++
		}
	})
	return n
}

// Since returns the entries strictly after cutoff, in order.
func Since(entries []types.Entry, cutoff time.Time) []types.Entry {
	var out []types.Entry
	timed(entries, func(e types.Entry, t time.Time) {
		if t.After(cutoff) {
			out = append(out, e)
		}
	})
	return out
}
