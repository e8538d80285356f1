package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/triggerlog/internal/stats"
	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	// envPrefix namespaces environment overrides, e.g. TRIGGERLOG_BACKEND.
	envPrefix = "TRIGGERLOG"

	// dotEnvFile is loaded from the working directory before config resolution.
	dotEnvFile = ".env"
)

// Config keys.
const (
	cfgKeyBackend          = "backend"
	cfgKeyDataDir          = "data_dir"
	cfgKeyReportsDir       = "reports_dir"
	cfgKeyFeelings         = "feelings"
	cfgKeyPatternThreshold = "pattern_threshold"
	cfgKeyTopN             = "top_n"
	cfgKeyRecentLimit      = "recent_limit"
	cfgKeyDebug            = "debug"
)

// Defaults for config keys.
const (
	defaultBackend     = types.BackendJSON
	defaultRecentLimit = 5
)

// envKeys are the keys that TRIGGERLOG_<KEY> may override. Directory keys
// are resolved by internal/paths so that config.yaml wins over the
// environment for them.
var envKeys = []string{
	cfgKeyBackend,
	cfgKeyFeelings,
	cfgKeyPatternThreshold,
	cfgKeyTopN,
	cfgKeyRecentLimit,
	cfgKeyDebug,
}

// settings is the decoded config.yaml.
type settings struct {
	Backend          string   `mapstructure:"backend" yaml:"backend"`
	DataDir          string   `mapstructure:"data_dir" yaml:"data_dir,omitempty"`
	ReportsDir       string   `mapstructure:"reports_dir" yaml:"reports_dir,omitempty"`
	Feelings         []string `mapstructure:"feelings" yaml:"feelings"`
	PatternThreshold int      `mapstructure:"pattern_threshold" yaml:"pattern_threshold"`
	TopN             int      `mapstructure:"top_n" yaml:"top_n"`
	RecentLimit      int      `mapstructure:"recent_limit" yaml:"recent_limit"`
	Debug            bool     `mapstructure:"debug" yaml:"debug"`
}

// defaultSettings is written to config.yaml on first run.
func defaultSettings() settings {
	return settings{
		Backend:          defaultBackend,
		Feelings:         append([]string(nil), types.DefaultFeelings...),
		PatternThreshold: stats.DefaultPatternThreshold,
		TopN:             stats.DefaultTopN,
		RecentLimit:      defaultRecentLimit,
	}
}

// defaultConfigHeader precedes the marshalled defaults in a new config.yaml.
const defaultConfigHeader = `# triggerlog configuration
#
# backend: json (default), csv, or sqlite
# data_dir and reports_dir default to ./data and ./reports in the working
# directory; --data-dir and TRIGGERLOG_DATA_DIR also set the data directory.
`

// loadDotEnv copies variables from .env in the working directory into the
// environment. Variables already set win. A missing file is not an error.
func loadDotEnv() error {
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// loadConfig reads config.yaml from configDir using Viper. It creates the
// config directory and a default config.yaml on first run.
func loadConfig(configDir string) (settings, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return settings{}, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return settings{}, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	defaults := defaultSettings()
	v.SetDefault(cfgKeyBackend, defaults.Backend)
	v.SetDefault(cfgKeyFeelings, defaults.Feelings)
	v.SetDefault(cfgKeyPatternThreshold, defaults.PatternThreshold)
	v.SetDefault(cfgKeyTopN, defaults.TopN)
	v.SetDefault(cfgKeyRecentLimit, defaults.RecentLimit)
	v.SetDefault(cfgKeyDebug, false)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyReportsDir, "")

	v.SetEnvPrefix(envPrefix)
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return settings{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("decode config: %w", err)
	}
	return s, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does not
// exist in the config directory.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return writeConfig(path, defaultSettings())
}

// writeConfig marshals s to path with the explanatory header.
func writeConfig(path string, s settings) error {
	data, err := yaml.Marshal(&s)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(defaultConfigHeader), data...), 0o644)
}
