// Package main provides the CLI entrypoint for deskshell.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/deskshell/internal/config"
	"github.com/jmylchreest/deskshell/internal/markup"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		pagePath   string
	}
	logger *slog.Logger

	// page is the desktop page loaded at startup
	page *markup.Page
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "deskshell",
	Short: "A faux desktop shell for portfolio pages",
	Long: `deskshell drives a desktop-style page: windows that open, close,
minimize and come to the front, a start menu, a taskbar clock, an explorer
with folder galleries and popups that dismiss themselves.

The page is plain HTML. deskshell discovers its windows, icons and menus
by CSS selector and renders the current state back into it.

Running deskshell without a subcommand launches the interactive TUI.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Setup logging
		setupLogger()
		logStartup(logger)

		// Load configuration
		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if globalOpts.pagePath != "" {
			cfg.Markup.Page = globalOpts.pagePath
		}

		page, err = markup.Load(cfg.Markup.Page, cfg.Markup, cfg.PopupIDs())
		if err != nil {
			return fmt.Errorf("failed to load page: %w", err)
		}
		logger.Debug("page loaded",
			"path", cfg.Markup.Page,
			"windows", len(page.Layout().Windows),
		)
		return nil
	},
	// Default to TUI when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/deskshell/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.pagePath, "page", "",
		"Path to the desktop page (default: built-in page)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	// Log to stderr so stdout is clean for output
	logger = newLogger(os.Stderr, globalOpts.verbose)
	slog.SetDefault(logger)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// logStartup announces startup. It is logged at Warn so it shows at the
// default level.
func logStartup(l *slog.Logger) {
	l.Warn("desktop environment initializing", "version", version)
}
