package types

import (
	"fmt"
	"strings"
)

// Built-in feeling names.
const (
	FeelingAnxiety = "anxiety"
	FeelingSadness = "sadness"
	FeelingAnger   = "anger"
	FeelingShame   = "shame"
	FeelingRelief  = "relief"
)

// DefaultFeelings is the built-in feeling enumeration, in display order.
var DefaultFeelings = []string{
	FeelingAnxiety,
	FeelingSadness,
	FeelingAnger,
	FeelingShame,
	FeelingRelief,
}

// Feelings maps a feeling name to its score in [MinFeeling, MaxFeeling].
// Names outside the configured enumeration are kept on the entry; fixed
// column paths such as CSV export drop them.
type Feelings map[string]int

// Get returns the score for name, or 0 when the entry did not record it.
func (f Feelings) Get(name string) int {
	return f[name]
}

// NormalizeFeelingName lowercases and trims a feeling label.
func NormalizeFeelingName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// normalized returns a copy with normalized names and clamped scores.
// Labels that normalize to the same name keep the highest score.
// A nil map becomes an empty one so entries always serialize an object.
func (f Feelings) normalized() (Feelings, error) {
	out := make(Feelings, len(f))
	for raw, score := range f {
		name := NormalizeFeelingName(raw)
		if name == "" {
			return nil, fmt.Errorf("%w: empty name", ErrInvalidFeeling)
		}
		score = ClampFeeling(score)
		if prev, ok := out[name]; ok && prev >= score {
			continue
		}
		out[name] = score
	}
	return out, nil
}
