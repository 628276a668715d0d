package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/deskshell/internal/server"
)

var serveOpts struct {
	addr     string
	allowAll bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the desktop over HTTP",
	Long: `Serve the desktop page with its live state.

Routes:
  GET  /            the page with the current state applied
  GET  /api/state   the current state as JSON
  GET  /api/layout  the windows and launchers discovered in the page
  POST /api/events  apply an event, e.g. {"type":"click","target":"icon-about"}
                    or {"type":"key","key":"Escape"}
  GET  /ws          WebSocket: pushes the state on every change and accepts
                    events in the same JSON form
  GET  /healthz     health check

Examples:
  deskshell serve --addr :9000
  curl -d '{"type":"click","target":"start-button"}' localhost:9000/api/events`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveOpts.addr, "addr", "",
		"Listen address (default from config, :8080)")
	serveCmd.Flags().BoolVar(&serveOpts.allowAll, "allow-all-origins", false,
		"Allow cross-origin requests and WebSocket connections from any origin")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := cfg.Server.Addr
	if serveOpts.addr != "" {
		addr = serveOpts.addr
	}

	d := startDesktop(ctx, desktopOptions{
		clock:  true,
		popups: true,
	})
	defer d.Close()

	srv := server.New(server.Config{
		Addr:     addr,
		AllowAll: cfg.Server.AllowAll || serveOpts.allowAll,
	}, page, d.dispatcher, logger)
	d.watchPage(ctx, srv.SetPage)

	return srv.Start(ctx)
}
