package types

import "errors"

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// Feelings is the configured feeling enumeration. Empty means DefaultFeelings.
	Feelings []string `json:"feelings,omitempty" yaml:"feelings,omitempty"`
}

// Supported backend names.
const (
	BackendJSON   = "json"
	BackendCSV    = "csv"
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrFeelingsEmpty  = errors.New("feeling names must not be empty")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendJSON:   true,
	BackendCSV:    true,
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	for _, name := range c.Feelings {
		if NormalizeFeelingName(name) == "" {
			return ErrFeelingsEmpty
		}
	}
	return nil
}

// FeelingNames returns the configured feeling enumeration, falling back to
// DefaultFeelings. Names are normalized and deduplicated in order.
func (c Config) FeelingNames() []string {
	if len(c.Feelings) == 0 {
		return append([]string(nil), DefaultFeelings...)
	}
	seen := make(map[string]bool, len(c.Feelings))
	names := make([]string, 0, len(c.Feelings))
	for _, raw := range c.Feelings {
		name := NormalizeFeelingName(raw)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
