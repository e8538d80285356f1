// Package cli implements the triggerlog command-line interface.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mesh-intelligence/triggerlog/internal/logger"
	"github.com/mesh-intelligence/triggerlog/internal/paths"
	"github.com/mesh-intelligence/triggerlog/internal/store"
	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	debug     bool
}

// app is the state shared by one command tree: flags, the loaded settings,
// and the resolved directories.
type app struct {
	flags    rootFlags
	settings settings

	configDir  string
	dataDir    string
	reportsDir string

	now         func() time.Time
	interactive func() bool
}

// NewRootCmd creates the top-level "triggerlog" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{
		now:         time.Now,
		interactive: stdinIsTerminal,
	})
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "triggerlog",
		Short: "A personal journal for emotional triggers",
		Long: "triggerlog records trigger events with their context, emotion ratings, and\n" +
			"intensity, and summarizes the log: frequent triggers, emotion profile,\n" +
			"time-of-day patterns, and correlations.",
		Version: Version,
		// Do not print usage on errors returned by subcommands.
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/triggerlog)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/data)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&a.flags.debug, "debug", false, "log at debug level and mirror logs to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newLogCmd(a))
	root.AddCommand(newRecentCmd(a))
	root.AddCommand(newHistoryCmd(a))
	root.AddCommand(newShowCmd(a))
	root.AddCommand(newSummaryCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newImportCmd(a))
	root.AddCommand(newClearCmd(a))
	root.AddCommand(newMenuCmd(a))
	root.AddCommand(newServeCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

// setup resolves directories, loads config.yaml, and starts the logger.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	dotEnvErr := loadDotEnv()

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve config dir: %w", err))
	}
	s, err := loadConfig(configDir)
	if err != nil {
		return sysError(err)
	}

	if err := logger.Init(logger.Config{Debug: a.flags.debug || s.Debug, ConfigDir: configDir}); err != nil {
		return sysError(fmt.Errorf("init logger: %w", err))
	}
	if dotEnvErr != nil {
		logger.Warn("ignoring unreadable .env", "error", dotEnvErr)
	}

	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, s.DataDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve data dir: %w", err))
	}
	reportsDir, err := paths.ResolveReportsDir("", s.ReportsDir)
	if err != nil {
		return sysError(fmt.Errorf("resolve reports dir: %w", err))
	}

	a.settings = s
	a.configDir = configDir
	a.dataDir = dataDir
	a.reportsDir = reportsDir

	if err := a.storeConfig().Validate(); err != nil {
		return userError(fmt.Errorf("config.yaml: %w", err))
	}

	logger.Debug("command start", "command", cmd.CommandPath(), "backend", s.Backend, "data_dir", dataDir)
	return nil
}

// storeConfig builds the store configuration from the loaded settings.
func (a *app) storeConfig() types.Config {
	return types.Config{
		Backend:  a.settings.Backend,
		DataDir:  a.dataDir,
		Feelings: a.settings.Feelings,
	}
}

// feelings returns the configured feeling enumeration.
func (a *app) feelings() []string {
	return a.storeConfig().FeelingNames()
}

// openStore attaches the configured backend. The caller must defer Detach.
func (a *app) openStore() (types.Store, error) {
	s, err := store.Open(a.storeConfig())
	if err != nil {
		return nil, sysError(err)
	}
	return s, nil
}

// loadEntries opens the store, reads every entry, and detaches.
func (a *app) loadEntries() ([]types.Entry, error) {
	s, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer s.Detach()

	entries, err := s.Load()
	if err != nil {
		return nil, sysError(fmt.Errorf("load entries: %w", err))
	}
	return entries, nil
}

// printJSON writes v as indented JSON to the command output.
func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// exitError carries the process exit code for an error.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// userError marks err as caused by input the user can fix.
func userError(err error) error {
	return &exitError{code: exitUserError, err: err}
}

// sysError marks err as an environment or I/O failure.
func sysError(err error) error {
	return &exitError{code: exitSysError, err: err}
}

// exitCode maps err to a process exit code. Unclassified errors, including
// cobra's flag and argument errors, are user errors.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitUserError
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}
