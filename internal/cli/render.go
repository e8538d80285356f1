package cli

import (
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/mesh-intelligence/triggerlog/internal/stats"
	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// topTriggerWidth bounds the headline trigger on the dashboard.
const topTriggerWidth = 15

// barWidth is the bar length of a score of 10.
const barWidth = 20

// ui styles terminal output. Styling is disabled when the writer is not a
// terminal, so captured output stays plain.
type ui struct {
	enabled bool

	title lipgloss.Style
	label lipgloss.Style
	dim   lipgloss.Style
	bar   lipgloss.Style
	warn  lipgloss.Style
}

func newUI(out io.Writer) ui {
	r := lipgloss.NewRenderer(out)
	return ui{
		enabled: shouldStyle(out),
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("205")),
		label:   r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#559db6", Dark: "#a3ddef"}).Bold(true),
		dim:     r.NewStyle().Faint(true),
		bar:     r.NewStyle().Foreground(lipgloss.Color("212")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("214")).Italic(true),
	}
}

func shouldStyle(out io.Writer) bool {
	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(os.Getenv("TERM")), "dumb")
}

func (u ui) render(style lipgloss.Style, s string) string {
	if !u.enabled {
		return s
	}
	return style.Render(s)
}

func (u ui) Title(s string) string { return u.render(u.title, s) }
func (u ui) Label(s string) string { return u.render(u.label, s) }
func (u ui) Dim(s string) string   { return u.render(u.dim, s) }
func (u ui) Bar(s string) string   { return u.render(u.bar, s) }
func (u ui) Warn(s string) string  { return u.render(u.warn, s) }

// truncate shortens s to width runes, marking the cut with "...".
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width]) + "..."
}

// bar draws a score on a 0..scale axis.
func bar(score, scale float64) string {
	if scale <= 0 || score <= 0 {
		return ""
	}
	n := int(math.Round(score / scale * barWidth))
	return strings.Repeat("█", min(n, barWidth))
}

// relativeTime renders the entry time relative to now, falling back to the
// raw timestamp when it does not parse.
func relativeTime(e types.Entry, now time.Time) string {
	t, err := e.Time()
	if err != nil {
		return e.Timestamp
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// newestFirst returns a copy of entries ordered by timestamp, newest first.
// Equal timestamps keep reverse insertion order; unparsable ones sort last.
func newestFirst(entries []types.Entry) []types.Entry {
	out := make([]types.Entry, len(entries))
	for i, e := range entries {
		out[len(entries)-1-i] = e
	}
	slices.SortStableFunc(out, func(a, b types.Entry) int {
		ta, errA := a.Time()
		tb, errB := b.Time()
		switch {
		case errA != nil && errB != nil:
			return 0
		case errA != nil:
			return 1
		case errB != nil:
			return -1
		}
		return tb.Compare(ta)
	})
	return out
}

// writeEntryLines prints one line per entry: id, relative time, trigger,
// and intensity.
func writeEntryLines(w io.Writer, u ui, entries []types.Entry, now time.Time) {
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %-16s %s  %s\n",
			u.Dim(fmt.Sprintf("#%d", e.ID)),
			relativeTime(e, now),
			e.Trigger,
			u.Label(fmt.Sprintf("intensity %d/%d", e.Intensity, types.MaxIntensity)))
	}
}

// entryTable renders entries as a bordered table with one feeling column
// per configured name.
func entryTable(entries []types.Entry, feelings []string) string {
	headers := []string{"ID", "Timestamp", "Trigger", "Intensity"}
	for _, name := range feelings {
		headers = append(headers, name)
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
	for _, e := range entries {
		row := []string{
			fmt.Sprintf("%d", e.ID),
			e.Timestamp,
			truncate(e.Trigger, 40),
			fmt.Sprintf("%d", e.Intensity),
		}
		for _, name := range feelings {
			row = append(row, fmt.Sprintf("%d", e.Feelings.Get(name)))
		}
		t.Row(row...)
	}
	return t.String()
}

// writeEntry prints every field of one entry.
func writeEntry(w io.Writer, u ui, e types.Entry, feelings []string, now time.Time) {
	fmt.Fprintf(w, "%s %s\n", u.Title("Entry"), u.Dim(fmt.Sprintf("#%d", e.ID)))
	fmt.Fprintf(w, "%s %s (%s)\n", u.Label("When:     "), e.Timestamp, relativeTime(e, now))
	fmt.Fprintf(w, "%s %s\n", u.Label("Trigger:  "), e.Trigger)
	if e.Before != "" {
		fmt.Fprintf(w, "%s %s\n", u.Label("Before:   "), e.Before)
	}
	if e.After != "" {
		fmt.Fprintf(w, "%s %s\n", u.Label("After:    "), e.After)
	}
	fmt.Fprintf(w, "%s %d/%d\n", u.Label("Intensity:"), e.Intensity, types.MaxIntensity)

	fmt.Fprintln(w, u.Label("Feelings:"))
	for _, name := range orderedFeelings(e.Feelings, feelings) {
		score := e.Feelings.Get(name)
		fmt.Fprintf(w, "  %-10s %2d %s\n", name, score, u.Bar(bar(float64(score), types.MaxFeeling)))
	}
	if e.Notes != "" {
		fmt.Fprintf(w, "%s %s\n", u.Label("Notes:    "), e.Notes)
	}
}

// orderedFeelings lists configured names first, then any other labels the
// entry carries in sorted order.
func orderedFeelings(f types.Feelings, configured []string) []string {
	names := append([]string(nil), configured...)
	seen := make(map[string]bool, len(configured))
	for _, name := range configured {
		seen[name] = true
	}
	var extra []string
	for name := range f {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	return append(names, extra...)
}

// writeSummary prints the dashboard.
func writeSummary(w io.Writer, u ui, s stats.Summary) {
	fmt.Fprintln(w, u.Title("Trigger log summary"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s %d\n", u.Label("Total entries:    "), s.Total)
	fmt.Fprintf(w, "%s %.1f\n", u.Label("Average intensity:"), s.AverageIntensity)
	fmt.Fprintf(w, "%s %d\n", u.Label("This week:        "), s.ThisWeek)
	top := "-"
	if s.TopTrigger != "" {
		top = truncate(s.TopTrigger, topTriggerWidth)
	}
	fmt.Fprintf(w, "%s %s\n", u.Label("Top trigger:      "), top)

	if s.Total == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, u.Warn("No entries yet. Log one with: triggerlog log --trigger \"...\""))
		return
	}

	section(w, u, "Feeling profile")
	writeFeelingBars(w, u, s.Feelings, s.FeelingAverages)
	if s.Window > 0 {
		section(w, u, fmt.Sprintf("Last %d entries", s.Window))
		writeFeelingBars(w, u, s.Feelings, s.WindowAverages)
	}

	section(w, u, "Top triggers")
	for i, tc := range s.TopTriggers {
		fmt.Fprintf(w, "  %d. %s (%d)\n", i+1, tc.Trigger, tc.Count)
	}

	section(w, u, "Entries per day")
	for _, d := range s.PerDay {
		fmt.Fprintf(w, "  %s  %3d\n", d.Date, d.Count)
	}
	section(w, u, "Daily average intensity")
	for _, d := range s.DailyIntensity {
		fmt.Fprintf(w, "  %s  %4.1f %s\n", d.Date, d.Average, u.Bar(bar(d.Average, types.MaxIntensity)))
	}
	section(w, u, "By hour")
	for _, h := range s.PerHour {
		fmt.Fprintf(w, "  %02d:00  %3d\n", h.Hour, h.Count)
	}
	section(w, u, "By weekday")
	for _, d := range s.PerWeekday {
		fmt.Fprintf(w, "  %-9s  %3d\n", d.Weekday, d.Count)
	}

	section(w, u, "Patterns")
	if len(s.HourPatterns)+len(s.WeekdayPatterns) == 0 {
		fmt.Fprintln(w, u.Dim("  none yet"))
	}
	for _, p := range s.HourPatterns {
		fmt.Fprintf(w, "  %s often around %s (%d times)\n", p.Trigger, p.When, p.Count)
	}
	for _, p := range s.WeekdayPatterns {
		fmt.Fprintf(w, "  %s often on %s (%d times)\n", p.Trigger, p.When, p.Count)
	}

	section(w, u, "Correlations")
	writeMatrix(w, s.Correlation)
}

func section(w io.Writer, u ui, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, u.Title(title))
}

func writeFeelingBars(w io.Writer, u ui, names []string, averages map[string]float64) {
	for _, name := range names {
		avg := averages[name]
		fmt.Fprintf(w, "  %-10s %4.1f %s\n", name, avg, u.Bar(bar(avg, types.MaxFeeling)))
	}
}

func writeMatrix(w io.Writer, m stats.Matrix) {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(append([]string{""}, m.Columns...)...)
	for i, col := range m.Columns {
		row := []string{col}
		for _, c := range m.Values[i] {
			row = append(row, c.String())
		}
		t.Row(row...)
	}
	fmt.Fprintln(w, t.String())
}
