// Package integration drives the built triggerlog binary end to end.
package integration

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

var (
	// triggerlogBin is the path to the built triggerlog binary.
	triggerlogBin string
	// buildErr captures any build error.
	buildErr error
)

// BuildError wraps a build error with output.
type BuildError struct {
	Err    error
	Output string
}

func (e *BuildError) Error() string {
	return e.Err.Error() + ": " + e.Output
}

// FindProjectRoot finds the project root by walking up and looking for go.mod.
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", os.ErrNotExist
		}
		dir = parent
	}
}

// SetTriggerlogBin sets the path to the triggerlog binary (called from TestMain).
func SetTriggerlogBin(path string) {
	triggerlogBin = path
}

// SetBuildErr sets the build error (called from TestMain).
func SetBuildErr(err error) {
	buildErr = err
}

// TestEnv provides an isolated environment with its own config, data, and
// reports directories. Commands run with the temp dir as working directory.
type TestEnv struct {
	t          *testing.T
	TempDir    string
	Config     string
	DataDir    string
	ReportsDir string
	Env        []string
}

// NewTestEnv creates a new isolated test environment. backend is written to
// config.yaml; empty leaves the default config to be created on first run.
func NewTestEnv(t *testing.T, backend string) *TestEnv {
	t.Helper()

	if buildErr != nil {
		t.Fatalf("failed to build triggerlog: %v", buildErr)
	}
	if triggerlogBin == "" {
		t.Fatal("triggerlog binary not built (triggerlogBin is empty)")
	}

	tempDir := t.TempDir()
	env := &TestEnv{
		t:          t,
		TempDir:    tempDir,
		Config:     filepath.Join(tempDir, "config"),
		DataDir:    filepath.Join(tempDir, "data"),
		ReportsDir: filepath.Join(tempDir, "reports"),
	}
	env.Env = append(os.Environ(),
		"TRIGGERLOG_REPORTS_DIR="+env.ReportsDir,
		"TRIGGERLOG_BACKEND=",
		"NO_COLOR=1",
	)

	if backend != "" {
		if err := os.MkdirAll(env.Config, 0o755); err != nil {
			t.Fatalf("failed to create config dir: %v", err)
		}
		content := "backend: " + backend + "\n"
		if err := os.WriteFile(filepath.Join(env.Config, "config.yaml"), []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
	}
	return env
}

// CmdResult holds the result of a triggerlog command execution.
type CmdResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Command builds an exec.Cmd for the binary with the environment's
// directories and variables applied.
func (e *TestEnv) Command(args ...string) *exec.Cmd {
	allArgs := append([]string{"--config-dir", e.Config, "--data-dir", e.DataDir}, args...)
	cmd := exec.Command(triggerlogBin, allArgs...)
	cmd.Dir = e.TempDir
	cmd.Env = e.Env
	return cmd
}

// RunTriggerlog executes the CLI with the given arguments and returns
// stdout, stderr, and exit code.
func (e *TestEnv) RunTriggerlog(args ...string) CmdResult {
	e.t.Helper()

	cmd := e.Command(args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			e.t.Fatalf("failed to run triggerlog: %v", err)
		}
	}

	return CmdResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// MustRunTriggerlog executes the CLI and fails the test on a non-zero exit.
func (e *TestEnv) MustRunTriggerlog(args ...string) CmdResult {
	e.t.Helper()
	result := e.RunTriggerlog(args...)
	if result.ExitCode != 0 {
		e.t.Fatalf("triggerlog %v failed with exit code %d:\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// ParseJSON parses JSON output into the target type.
func ParseJSON[T any](t *testing.T, jsonStr string) T {
	t.Helper()
	var result T
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		t.Fatalf("failed to parse JSON %q: %v", jsonStr, err)
	}
	return result
}

// Entry mirrors the persisted entry for JSON parsing.
type Entry struct {
	ID        int64          `json:"id"`
	Timestamp string         `json:"timestamp"`
	Trigger   string         `json:"trigger"`
	Before    string         `json:"before"`
	After     string         `json:"after"`
	Feelings  map[string]int `json:"feelings"`
	Intensity int            `json:"intensity"`
	Notes     string         `json:"notes"`
}

// Summary holds the summary fields the tests inspect.
type Summary struct {
	Total           int                `json:"total"`
	TopTrigger      string             `json:"top_trigger"`
	FeelingAverages map[string]float64 `json:"feeling_averages"`
	Correlation     struct {
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	} `json:"correlation"`
}

// ReadJSONFile reads and parses a JSON file.
func ReadJSONFile[T any](t *testing.T, path string) T {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file %s: %v", path, err)
	}
	return ParseJSON[T](t, string(data))
}
