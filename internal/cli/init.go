package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/triggerlog/internal/paths"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize triggerlog storage",
		Long:  "Create the configuration, data, and reports directories, then initialize the storage backend.",
		RunE:  a.runInit,
	}
}

// initResult is the JSON form of init output.
type initResult struct {
	ConfigFile string `json:"config_file"`
	DataDir    string `json:"data_dir"`
	ReportsDir string `json:"reports_dir"`
	Backend    string `json:"backend"`
}

func (a *app) runInit(cmd *cobra.Command, args []string) error {
	if err := paths.EnsureDirs(a.dataDir, a.reportsDir); err != nil {
		return sysError(fmt.Errorf("create directories: %w", err))
	}

	// Attach then Detach so backends that create files up front do so now.
	s, err := a.openStore()
	if err != nil {
		return err
	}
	if err := s.Detach(); err != nil {
		return sysError(fmt.Errorf("finalize storage: %w", err))
	}

	res := initResult{
		ConfigFile: filepath.Join(a.configDir, configFileExt),
		DataDir:    a.dataDir,
		ReportsDir: a.reportsDir,
		Backend:    a.settings.Backend,
	}
	if a.flags.jsonMode {
		return printJSON(cmd, res)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "triggerlog initialized successfully")
	fmt.Fprintf(out, "  config:  %s\n", res.ConfigFile)
	fmt.Fprintf(out, "  data:    %s (%s)\n", res.DataDir, res.Backend)
	fmt.Fprintf(out, "  reports: %s\n", res.ReportsDir)
	return nil
}
