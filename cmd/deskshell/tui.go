package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/deskshell/internal/tui"
)

var tuiOpts struct {
	noPopups bool
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal desktop",
	Long: `Launch the terminal desktop for the loaded page.

The TUI provides:
  - Desktop icons and menubar links that open windows
  - The front window with its title-bar controls and explorer folders
  - A taskbar with the start button, open and minimized windows and the clock
  - Popups that close themselves after the configured delay
  - Live reload when the page file changes

Key bindings:
  tab/shift+tab   Move between areas
  ←/→, ↑/↓        Move within an area
  enter           Click the selected item
  s               Toggle the start menu
  x, m            Close or minimize the front window
  w               Bring the back-most window to the front
  esc             Close every open window
  ?               Show help
  q               Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().BoolVar(&tuiOpts.noPopups, "no-popups", false,
		"Do not show popups at startup")
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := startDesktop(ctx, desktopOptions{
		clock:  true,
		popups: !tuiOpts.noPopups,
	})
	defer d.Close()
	d.watchPage(ctx, nil)

	return tui.Run(tui.RunOptions{
		Config:     cfg,
		Dispatcher: d.dispatcher,
	})
}
