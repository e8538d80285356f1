package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// entryForm holds the raw text of the interactive entry form.
type entryForm struct {
	Trigger   string
	Before    string
	After     string
	Feelings  []string
	Intensity string
	Notes     string

	names []string
}

func newEntryForm(feelings []string) *entryForm {
	return &entryForm{
		Feelings:  make([]string, len(feelings)),
		Intensity: strconv.Itoa(types.DefaultIntensity),
		names:     feelings,
	}
}

// form builds the huh form bound to fm. Score fields re-prompt until the
// value is an integer within bounds.
func (fm *entryForm) form() *huh.Form {
	feelingFields := make([]huh.Field, 0, len(fm.names))
	for i, name := range fm.names {
		feelingFields = append(feelingFields, huh.NewInput().
			Title(fmt.Sprintf("%s (%d-%d)", capitalize(name), types.MinFeeling, types.MaxFeeling)).
			Placeholder("0").
			Value(&fm.Feelings[i]).
			Validate(validateScore(types.MinFeeling, types.MaxFeeling, true)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("What triggered you?").
				Value(&fm.Trigger).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("trigger cannot be empty")
					}
					return nil
				}),
			huh.NewText().
				Title("What were you doing or feeling before?").
				Value(&fm.Before),
			huh.NewText().
				Title("How did you respond afterwards?").
				Value(&fm.After),
		),
		huh.NewGroup(feelingFields...).
			Title("How strongly did you feel each emotion?"),
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Overall intensity (%d-%d)", types.MinIntensity, types.MaxIntensity)).
				Value(&fm.Intensity).
				Validate(validateScore(types.MinIntensity, types.MaxIntensity, false)),
			huh.NewText().
				Title("Notes").
				Value(&fm.Notes),
		),
	).WithTheme(huh.ThemeDracula())
}

// draft converts the validated form text into an entry draft.
func (fm *entryForm) draft() (types.Entry, error) {
	feelings := make(types.Feelings, len(fm.names))
	for i, name := range fm.names {
		score, err := parseScore(fm.Feelings[i])
		if err != nil {
			return types.Entry{}, fmt.Errorf("%w: %s: %v", types.ErrInvalidFeeling, name, err)
		}
		feelings[name] = score
	}
	intensity, err := parseScore(fm.Intensity)
	if err != nil {
		return types.Entry{}, fmt.Errorf("intensity: %w", err)
	}
	return types.Entry{
		Trigger:   fm.Trigger,
		Before:    fm.Before,
		After:     fm.After,
		Feelings:  feelings,
		Intensity: intensity,
		Notes:     fm.Notes,
	}, nil
}

// validateScore accepts an integer in [lo, hi]. Blank input is accepted
// when allowBlank is set and counts as 0.
func validateScore(lo, hi int, allowBlank bool) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			if allowBlank {
				return nil
			}
			return fmt.Errorf("enter a number from %d to %d", lo, hi)
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil || v < lo || v > hi {
			return fmt.Errorf("enter a number from %d to %d", lo, hi)
		}
		return nil
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func parseScore(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// runEntryForm shows the entry form and returns the draft.
func runEntryForm(feelings []string) (types.Entry, error) {
	fm := newEntryForm(feelings)
	if err := fm.form().Run(); err != nil {
		return types.Entry{}, err
	}
	return fm.draft()
}
