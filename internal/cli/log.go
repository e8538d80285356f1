package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/triggerlog/internal/logger"
	"github.com/mesh-intelligence/triggerlog/pkg/types"
)

// logOptions holds the log command flags.
type logOptions struct {
	trigger   string
	before    string
	after     string
	notes     string
	intensity int
	feelings  []string
}

func newLogCmd(a *app) *cobra.Command {
	var opts logOptions
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Log a trigger event",
		Long: `Log records one trigger event. Without --trigger on a terminal, an
interactive form asks for every field. Scores outside their range are clamped.

Example:
  triggerlog log --trigger "Traffic" --feeling anxiety=7 --feeling anger=4 --intensity 6`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runLog(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.trigger, "trigger", "t", "", "what triggered you")
	cmd.Flags().StringVar(&opts.before, "before", "", "context before the trigger")
	cmd.Flags().StringVar(&opts.after, "after", "", "response after the trigger")
	cmd.Flags().StringVar(&opts.notes, "notes", "", "free-form notes")
	cmd.Flags().IntVarP(&opts.intensity, "intensity", "i", types.DefaultIntensity, "overall intensity (1-10)")
	cmd.Flags().StringArrayVarP(&opts.feelings, "feeling", "f", nil, "feeling score as name=score (0-10), repeatable")

	return cmd
}

func (a *app) runLog(cmd *cobra.Command, opts logOptions) error {
	var draft types.Entry
	if opts.trigger == "" && a.interactive() {
		d, err := runEntryForm(a.feelings())
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled; nothing logged.")
			return nil
		}
		if err != nil {
			return userError(err)
		}
		draft = d
	} else {
		feelings, err := parseFeelingFlags(opts.feelings)
		if err != nil {
			return userError(err)
		}
		draft = types.Entry{
			Trigger:   opts.trigger,
			Before:    opts.before,
			After:     opts.after,
			Feelings:  feelings,
			Intensity: opts.intensity,
			Notes:     opts.notes,
		}
	}

	entry, err := types.NewEntry(a.now(), draft)
	if err != nil {
		return userError(err)
	}
	return a.appendEntry(cmd, entry)
}

// appendEntry persists entry and reports it.
func (a *app) appendEntry(cmd *cobra.Command, entry types.Entry) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Detach()

	if err := s.Append(entry); err != nil {
		return sysError(fmt.Errorf("append entry: %w", err))
	}
	logger.Info("entry logged", "id", entry.ID, "trigger", entry.Trigger, "intensity", entry.Intensity)

	if a.flags.jsonMode {
		return printJSON(cmd, entry)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Logged entry %d: %s\n", entry.ID, entry.Trigger)
	return nil
}

// parseFeelingFlags parses repeated name=score values. A later value for the
// same name wins.
func parseFeelingFlags(values []string) (types.Feelings, error) {
	feelings := make(types.Feelings, len(values))
	for _, raw := range values {
		name, score, ok := strings.Cut(raw, "=")
		if !ok {
			return nil, fmt.Errorf("%w %q: want name=score", types.ErrInvalidFeeling, raw)
		}
		name = types.NormalizeFeelingName(name)
		if name == "" {
			return nil, fmt.Errorf("%w %q: empty name", types.ErrInvalidFeeling, raw)
		}
		v, err := strconv.Atoi(strings.TrimSpace(score))
		if err != nil {
			return nil, fmt.Errorf("%w %q: score must be an integer", types.ErrInvalidFeeling, raw)
		}
		feelings[name] = v
	}
	return feelings, nil
}
