package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/intrinsic/api"
)

// --- Serve Command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Serve valuations, facts and reports over HTTP and WebSocket.

Examples:
  intrinsic serve
  intrinsic serve --addr 0.0.0.0:9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.API.Addr()
		}

		opts := []api.Option{
			api.WithPinger(a.registry),
			api.WithLogger(logger),
			api.WithVersion(version),
		}
		if a.results != nil {
			opts = append(opts, api.WithRuns(a.results))
		}
		srv := api.NewServer(cfg, a.pipeline, opts...)
		go a.registry.KeepSwept(ctx, 10*time.Minute)

		fmt.Fprintf(cmd.ErrOrStderr(), "intrinsic %s listening on http://%s\n", version, addr)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default: api.host:api.port)")
}
