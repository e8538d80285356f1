package cli

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/triggerlog/internal/export"
	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// menuChoice is one item of the interactive menu.
type menuChoice int

const (
	menuLog menuChoice = iota + 1
	menuRecent
	menuSummary
	menuExport
	menuExit
)

var errNotInteractive = errors.New("menu needs a terminal; use the subcommands instead")

func newMenuCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Interactive menu",
		Long:  "Menu loops over: 1. Log  2. Recent  3. Summary  4. Export  5. Exit.",
		Args:  cobra.NoArgs,
		RunE:  a.runMenu,
	}
}

func (a *app) runMenu(cmd *cobra.Command, args []string) error {
	if !a.interactive() {
		return userError(errNotInteractive)
	}
	for {
		choice, err := selectMenu()
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return userError(err)
		}
		if choice == menuExit {
			return nil
		}
		if err := a.dispatchMenu(cmd, choice); err != nil {
			// Recoverable problems are shown and the menu continues.
			if exitCode(err) == exitUserError {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error:", err)
				continue
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout())
	}
}

func (a *app) dispatchMenu(cmd *cobra.Command, choice menuChoice) error {
	switch choice {
	case menuLog:
		draft, err := runEntryForm(a.feelings())
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return userError(err)
		}
		entry, err := types.NewEntry(a.now(), draft)
		if err != nil {
			return userError(err)
		}
		return a.appendEntry(cmd, entry)
	case menuRecent:
		limit := a.settings.RecentLimit
		if limit <= 0 {
			limit = defaultRecentLimit
		}
		return a.runRecent(cmd, limit)
	case menuSummary:
		return a.runSummary(cmd, summaryOptions{threshold: configThreshold})
	case menuExport:
		return a.runExport(cmd, export.FormatBoth)
	default:
		return fmt.Errorf("unknown menu choice %d", choice)
	}
}

func selectMenu() (menuChoice, error) {
	var choice menuChoice
	err := huh.NewSelect[menuChoice]().
		Title("triggerlog").
		Options(
			huh.NewOption("1. Log a trigger", menuLog),
			huh.NewOption("2. Recent entries", menuRecent),
			huh.NewOption("3. Summary", menuSummary),
			huh.NewOption("4. Export", menuExport),
			huh.NewOption("5. Exit", menuExit),
		).
		Value(&choice).
		WithTheme(huh.ThemeDracula()).
		Run()
	return choice, err
}
