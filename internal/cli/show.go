package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/triggerlog/internal/store"
	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return userError(fmt.Errorf("invalid id %q", args[0]))
			}
			return a.runShow(cmd, id)
		},
	}
}

func (a *app) runShow(cmd *cobra.Command, id int64) error {
	entries, err := a.loadEntries()
	if err != nil {
		return err
	}
	entry, err := store.Find(entries, id)
	if errors.Is(err, types.ErrNotFound) {
		return userError(err)
	}
	if err != nil {
		return sysError(err)
	}

	if a.flags.jsonMode {
		return printJSON(cmd, entry)
	}
	out := cmd.OutOrStdout()
	writeEntry(out, newUI(out), entry, a.feelings(), a.now())
	return nil
}
