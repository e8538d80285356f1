package cli

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/triggerlog/internal/server"
)

// defaultAddr is the serve listen address.
const defaultAddr = ":8080"

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve entries, the summary, and exports over HTTP",
		Long: `Serve exposes the log over HTTP until interrupted:

  GET  /api/entries          every entry as JSON
  POST /api/entries          log an entry from a JSON body
  GET  /api/summary          the dashboard as JSON (?threshold=N&window=N)
  GET  /export/csv           CSV download
  GET  /export/json          JSON backup download
  GET  /healthz              liveness`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServe(cmd, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "listen address")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, addr string) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Detach()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return sysError(fmt.Errorf("listen on %s: %w", addr, err))
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(s, server.Options{
		Feelings:  a.feelings(),
		Threshold: a.settings.PatternThreshold,
		TopN:      a.settings.TopN,
		Now:       a.now,
	})
	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (Ctrl+C to stop)\n", ln.Addr())
	if err := srv.Run(ctx, ln); err != nil {
		return sysError(fmt.Errorf("serve: %w", err))
	}
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
