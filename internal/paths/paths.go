// Package paths resolves configuration, data, and reports directory locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user configuration directory.
const AppName = "triggerlog"

// CWD-relative directory names used when nothing else is configured.
const (
	DefaultDataDirName    = "data"
	DefaultReportsDirName = "reports"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir  = "TRIGGERLOG_CONFIG_DIR"
	EnvDataDir    = "TRIGGERLOG_DATA_DIR"
	EnvReportsDir = "TRIGGERLOG_REPORTS_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/triggerlog (fallback ~/.config/triggerlog)
// macOS:   ~/Library/Application Support/triggerlog
// Windows: %APPDATA%/triggerlog
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, AppName), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", AppName), nil
	default:
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, AppName), nil
	}
}

// ResolveConfigDir returns the configuration directory following the precedence
// chain: flag > TRIGGERLOG_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > configYAMLValue > TRIGGERLOG_DATA_DIR env > $(CWD)/data.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	return resolve(flag, configYAMLValue, EnvDataDir, DefaultDataDirName)
}

// ResolveReportsDir returns the reports directory following the precedence
// chain: flag > configYAMLValue > TRIGGERLOG_REPORTS_DIR env > $(CWD)/reports.
func ResolveReportsDir(flag, configYAMLValue string) (string, error) {
	return resolve(flag, configYAMLValue, EnvReportsDir, DefaultReportsDirName)
}

func resolve(flag, configYAMLValue, envKey, cwdName string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(envKey); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, cwdName), nil
}

// EnsureDirs creates every directory in dirs, including parents.
func EnsureDirs(dirs ...string) error {
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
