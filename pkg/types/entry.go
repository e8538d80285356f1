package types

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout is the fixed capture-time layout. Timestamps carry no zone
// and are interpreted as local wall-clock time.
const TimestampLayout = "2006-01-02 15:04:05"

// Score bounds.
const (
	MinFeeling   = 0
	MaxFeeling   = 10
	MinIntensity = 1
	MaxIntensity = 10

	// DefaultIntensity is offered by the entry form and the log command.
	DefaultIntensity = 5
)

// Entry is one journaled trigger event with its context, ratings, and notes.
// Entries are created once and never mutated by the application.
type Entry struct {
	ID        int64    `json:"id"`
	Timestamp string   `json:"timestamp"`
	Trigger   string   `json:"trigger"`
	Before    string   `json:"before"`
	After     string   `json:"after"`
	Feelings  Feelings `json:"feelings"`
	Intensity int      `json:"intensity"`
	Notes     string   `json:"notes"`
}

// NewEntry stamps draft with an ID and timestamp derived from now, then
// normalizes it. Returns ErrEmptyTrigger if the trigger is blank.
func NewEntry(now time.Time, draft Entry) (Entry, error) {
	draft.ID = now.UnixMilli()
	draft.Timestamp = now.Format(TimestampLayout)
	if err := draft.Normalize(); err != nil {
		return Entry{}, err
	}
	return draft, nil
}

// Normalize trims free text, lowercases feeling names, and clamps every
// score into its declared bounds. It is the only validation an entry gets.
func (e *Entry) Normalize() error {
	e.Trigger = strings.TrimSpace(e.Trigger)
	if e.Trigger == "" {
		return ErrEmptyTrigger
	}
	e.Before = strings.TrimSpace(e.Before)
	e.After = strings.TrimSpace(e.After)
	e.Notes = strings.TrimSpace(e.Notes)
	e.Intensity = ClampIntensity(e.Intensity)

	feelings, err := e.Feelings.normalized()
	if err != nil {
		return err
	}
	e.Feelings = feelings
	return nil
}

// Time parses the entry timestamp in the local zone.
func (e Entry) Time() (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, e.Timestamp, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", e.Timestamp, err)
	}
	return t, nil
}

// ClampIntensity bounds v to [MinIntensity, MaxIntensity].
func ClampIntensity(v int) int {
	return clamp(v, MinIntensity, MaxIntensity)
}

// ClampFeeling bounds v to [MinFeeling, MaxFeeling].
func ClampFeeling(v int) int {
	return clamp(v, MinFeeling, MaxFeeling)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
