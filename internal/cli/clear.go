package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/triggerlog/internal/logger"
)

// errConfirmRequired is returned by clear when it cannot ask for confirmation.
var errConfirmRequired = errors.New("refusing to clear without confirmation; pass --yes")

func newClearCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every entry",
		Long:  "Clear empties the log. It asks for confirmation on a terminal unless --yes is given.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runClear(cmd, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (a *app) runClear(cmd *cobra.Command, yes bool) error {
	if !yes {
		if !a.interactive() {
			return userError(errConfirmRequired)
		}
		confirmed, err := confirm("Delete every entry? This cannot be undone.")
		if err != nil && !errors.Is(err, huh.ErrUserAborted) {
			return userError(err)
		}
		if !confirmed {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled; nothing deleted.")
			return nil
		}
	}

	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Detach()

	if err := s.Clear(); err != nil {
		return sysError(fmt.Errorf("clear store: %w", err))
	}
	logger.Warn("store cleared", "backend", a.settings.Backend, "data_dir", a.dataDir)

	if a.flags.jsonMode {
		return printJSON(cmd, map[string]bool{"cleared": true})
	}
	fmt.Fprintln(cmd.OutOrStdout(), "All entries deleted.")
	return nil
}

func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Delete").
		Negative("Keep").
		Value(&ok).
		WithTheme(huh.ThemeDracula()).
		Run()
	return ok, err
}
