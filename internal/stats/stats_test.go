package stats

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// entry builds a normalized entry at the given local time.
func entry(t *testing.T, at string, trigger string, intensity int, feelings types.Feelings) types.Entry {
	t.Helper()
	ts, err := time.ParseInLocation(types.TimestampLayout, at, time.Local)
	require.NoError(t, err)
	e, err := types.NewEntry(ts, types.Entry{Trigger: trigger, Intensity: intensity, Feelings: feelings})
	require.NoError(t, err)
	return e
}

func trafficLog(t *testing.T) []types.Entry {
	return []types.Entry{
		entry(t, "2024-03-11 08:15:00", "Traffic", 7, types.Feelings{"anxiety": 7, "anger": 5}),
		entry(t, "2024-03-11 21:40:00", "Work email", 4, types.Feelings{"anxiety": 3}),
		entry(t, "2024-03-12 08:05:00", "Traffic", 5, types.Feelings{"anxiety": 5, "anger": 2}),
	}
}

func TestCountTriggers(t *testing.T) {
	entries := trafficLog(t)
	counts := CountTriggers(entries)
	require.Len(t, counts, 2)
	assert.Equal(t, TriggerCount{Trigger: "Traffic", Count: 2}, counts[0])
	assert.Equal(t, TriggerCount{Trigger: "Work email", Count: 1}, counts[1])
}

func TestCountTriggersTiesKeepFirstSeen(t *testing.T) {
	entries := []types.Entry{
		{Trigger: "b"}, {Trigger: "a"}, {Trigger: "c"}, {Trigger: "a"}, {Trigger: "b"},
		{Trigger: "  "},
		{Trigger: " c "},
	}
	counts := CountTriggers(entries)
	require.Len(t, counts, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{counts[0].Trigger, counts[1].Trigger, counts[2].Trigger})
	for _, c := range counts {
		assert.Equal(t, 2, c.Count)
	}
}

func TestTopTriggers(t *testing.T) {
	entries := trafficLog(t)
	assert.Len(t, TopTriggers(entries, 1), 1)
	assert.Len(t, TopTriggers(entries, 0), 2)
	assert.Len(t, TopTriggers(entries, 10), 2)
	assert.Empty(t, TopTriggers(nil, 3))
}

func TestAverageFeelings(t *testing.T) {
	t.Run("traffic scenario", func(t *testing.T) {
		traffic := []types.Entry{}
		for _, e := range trafficLog(t) {
			if e.Trigger == "Traffic" {
				traffic = append(traffic, e)
			}
		}
		avg := AverageFeelings(traffic, types.DefaultFeelings)
		assert.InDelta(t, 6.0, avg["anxiety"], 1e-9)
		assert.InDelta(t, 3.5, avg["anger"], 1e-9)
		assert.Zero(t, avg["relief"])
	})

	t.Run("missing counts as zero", func(t *testing.T) {
		avg := AverageFeelings(trafficLog(t), []string{"anger"})
		assert.InDelta(t, 7.0/3.0, avg["anger"], 1e-9)
	})

	t.Run("empty input yields zeros", func(t *testing.T) {
		avg := AverageFeelings(nil, types.DefaultFeelings)
		require.Len(t, avg, len(types.DefaultFeelings))
		for _, name := range types.DefaultFeelings {
			assert.Zero(t, avg[name], name)
		}
	})
}

func TestAverageIntensity(t *testing.T) {
	assert.Zero(t, AverageIntensity(nil))
	assert.InDelta(t, 16.0/3.0, AverageIntensity(trafficLog(t)), 1e-9)
}

func TestTail(t *testing.T) {
	entries := trafficLog(t)
	assert.Len(t, Tail(entries, 2), 2)
	assert.Equal(t, entries[2].ID, Tail(entries, 1)[0].ID)
	assert.Len(t, Tail(entries, 0), 3)
	assert.Len(t, Tail(entries, 99), 3)
}

func TestBucketsSkipUnparsableTimestamps(t *testing.T) {
	entries := append(trafficLog(t), types.Entry{Trigger: "bad", Timestamp: "yesterday", Intensity: 3})
	parseable := 3

	sumDays := 0
	for _, d := range PerDay(entries) {
		sumDays += d.Count
	}
	sumHours := 0
	for _, h := range PerHour(entries) {
		sumHours += h.Count
	}
	sumWeekdays := 0
	for _, w := range PerWeekday(entries) {
		sumWeekdays += w.Count
	}
	assert.Equal(t, parseable, sumDays)
	assert.Equal(t, parseable, sumHours)
	assert.Equal(t, parseable, sumWeekdays)
}

func TestPerDay(t *testing.T) {
	days := PerDay(trafficLog(t))
	assert.Equal(t, []DayCount{
		{Date: "2024-03-11", Count: 2},
		{Date: "2024-03-12", Count: 1},
	}, days)
}

func TestPerHour(t *testing.T) {
	hours := PerHour(trafficLog(t))
	assert.Equal(t, []HourCount{
		{Hour: 8, Count: 2},
		{Hour: 21, Count: 1},
	}, hours)
}

func TestPerWeekday(t *testing.T) {
	entries := append(trafficLog(t), entry(t, "2024-03-10 12:00:00", "Sunday dinner", 2, nil))
	days := PerWeekday(entries)
	// 2024-03-11 is a Monday; Sunday sorts last.
	assert.Equal(t, []WeekdayCount{
		{Weekday: "Monday", Count: 2},
		{Weekday: "Tuesday", Count: 1},
		{Weekday: "Sunday", Count: 1},
	}, days)
}

func TestDailyAverageIntensity(t *testing.T) {
	days := DailyAverageIntensity(trafficLog(t))
	require.Len(t, days, 2)
	assert.Equal(t, "2024-03-11", days[0].Date)
	assert.InDelta(t, 5.5, days[0].Average, 1e-9)
	assert.Equal(t, 2, days[0].Count)
	assert.InDelta(t, 5.0, days[1].Average, 1e-9)
}

func TestCountSince(t *testing.T) {
	entries := trafficLog(t)
	cutoff, err := time.ParseInLocation(types.TimestampLayout, "2024-03-11 21:40:00", time.Local)
	require.NoError(t, err)

	assert.Equal(t, 1, CountSince(entries, cutoff), "cutoff itself is excluded")
	assert.Len(t, Since(entries, cutoff), 1)
	assert.Equal(t, 3, CountSince(entries, cutoff.AddDate(-1, 0, 0)))
}

func TestPatternsStrictlyAboveThreshold(t *testing.T) {
	var entries []types.Entry
	for _, day := range []string{"2024-03-11", "2024-03-12", "2024-03-13"} {
		entries = append(entries, entry(t, day+" 08:10:00", "Traffic", 6, nil))
	}
	for _, day := range []string{"2024-03-11", "2024-03-18"} {
		entries = append(entries, entry(t, day+" 18:00:00", "Gym", 3, nil))
	}

	hour := HourPatterns(entries, 2)
	require.Len(t, hour, 1)
	assert.Equal(t, Pattern{Trigger: "Traffic", When: "08:00", Count: 3}, hour[0])

	assert.Empty(t, HourPatterns(entries, 3), "count equal to threshold is not a pattern")

	weekday := WeekdayPatterns(entries, 1)
	require.Len(t, weekday, 1)
	assert.Equal(t, Pattern{Trigger: "Gym", When: "Monday", Count: 2}, weekday[0])
}

func TestCorrelate(t *testing.T) {
	entries := []types.Entry{
		{Intensity: 2, Feelings: types.Feelings{"anxiety": 1, "anger": 9, "relief": 4}},
		{Intensity: 4, Feelings: types.Feelings{"anxiety": 3, "anger": 7, "relief": 4}},
		{Intensity: 6, Feelings: types.Feelings{"anxiety": 5, "anger": 5, "relief": 4}},
		{Intensity: 8, Feelings: types.Feelings{"anxiety": 7, "anger": 3, "relief": 4}},
	}
	m := Correlate(entries, []string{"anxiety", "anger", "relief"})
	assert.Equal(t, []string{"anxiety", "anger", "relief", IntensityColumn}, m.Columns)

	self, ok := m.At("anxiety", "anxiety")
	require.True(t, ok)
	assert.True(t, self.Valid)
	assert.InDelta(t, 1.0, self.Value, 1e-9)

	c, _ := m.At("anxiety", IntensityColumn)
	assert.InDelta(t, 1.0, c.Value, 1e-9)

	c, _ = m.At("anger", "anxiety")
	assert.InDelta(t, -1.0, c.Value, 1e-9)

	c, _ = m.At("relief", "anxiety")
	assert.False(t, c.Valid, "zero variance is undefined")
	c, _ = m.At("relief", "relief")
	assert.False(t, c.Valid)

	_, ok = m.At("shame", "anxiety")
	assert.False(t, ok)
}

func TestCorrelateTooFewEntries(t *testing.T) {
	m := Correlate([]types.Entry{{Intensity: 5}}, []string{"anxiety"})
	for _, row := range m.Values {
		for _, c := range row {
			assert.False(t, c.Valid)
		}
	}
}

func TestCoefficientJSON(t *testing.T) {
	data, err := json.Marshal([]Coefficient{{Value: 0.5, Valid: true}, {}})
	require.NoError(t, err)
	assert.JSONEq(t, `[0.5, null]`, string(data))

	var back []Coefficient
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []Coefficient{{Value: 0.5, Valid: true}, {}}, back)

	assert.Equal(t, "0.50", Coefficient{Value: 0.5, Valid: true}.String())
	assert.Equal(t, "n/a", Coefficient{}.String())
}

func TestSummarize(t *testing.T) {
	entries := trafficLog(t)
	now, err := time.ParseInLocation(types.TimestampLayout, "2024-03-15 12:00:00", time.Local)
	require.NoError(t, err)

	s := Summarize(entries, Options{Threshold: DefaultPatternThreshold, Window: 2, Now: now})
	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 3, s.ThisWeek)
	assert.Equal(t, "Traffic", s.TopTrigger)
	assert.Equal(t, types.DefaultFeelings, s.Feelings)
	assert.InDelta(t, 5.0, s.FeelingAverages["anxiety"], 1e-9)
	assert.Equal(t, 2, s.Window)
	assert.InDelta(t, 4.0, s.WindowAverages["anxiety"], 1e-9)
	assert.Len(t, s.PerDay, 2)
	assert.Empty(t, s.HourPatterns)
	assert.Len(t, s.Correlation.Columns, len(types.DefaultFeelings)+1)
}

func TestSummarizeThreshold(t *testing.T) {
	entries := trafficLog(t)

	s := Summarize(entries, Options{Threshold: 0})
	require.Len(t, s.HourPatterns, 2, "zero keeps every group")
	assert.Equal(t, Pattern{Trigger: "Traffic", When: "08:00", Count: 2}, s.HourPatterns[0])
	assert.Len(t, s.WeekdayPatterns, 3)

	s = Summarize(entries, Options{Threshold: -1})
	assert.Empty(t, s.HourPatterns, "negative selects the default of 2")

	s = Summarize(entries, Options{Threshold: 1})
	require.Len(t, s.HourPatterns, 1)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, Options{})
	assert.Zero(t, s.Total)
	assert.Zero(t, s.AverageIntensity)
	assert.Empty(t, s.TopTrigger)
	assert.Nil(t, s.WindowAverages)

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"top_triggers":[]`)
	assert.Contains(t, string(data), `"per_hour":[]`)
}
