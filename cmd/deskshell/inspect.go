package main

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/deskshell/internal/adapter/output"
)

var inspectOpts struct {
	format   string
	template string
	state    bool
	noBody   bool
	noPopups bool
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show what deskshell discovered in the page",
	Long: `Print the windows, launchers, folders and galleries discovered in the
desktop page, or with --state the initial desktop state.

Examples:
  # Check a custom page picks up every window
  deskshell inspect --page ./index.html

  # Window ids only, for scripting render events
  deskshell inspect --format ids

  # Initial state as JSON
  deskshell inspect --state --format json`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVarP(&inspectOpts.format, "format", "f", string(output.FormatPlain),
		"Output format ("+formatNames()+")")
	inspectCmd.Flags().StringVar(&inspectOpts.template, "template", "",
		"Custom Go template for per-window lines (plain, dmenu)")
	inspectCmd.Flags().BoolVar(&inspectOpts.state, "state", false,
		"Print the initial state instead of the layout")
	inspectCmd.Flags().BoolVar(&inspectOpts.noBody, "no-body", false,
		"Omit window body text")
	inspectCmd.Flags().BoolVar(&inspectOpts.noPopups, "no-popups", false,
		"Omit popup windows")
}

func formatNames() string {
	names := make([]string, 0, len(output.FormatTypes))
	for _, f := range output.FormatTypes {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func parseFormat(name string) (output.FormatType, error) {
	f := output.FormatType(strings.ToLower(name))
	if !slices.Contains(output.FormatTypes, f) {
		return "", fmt.Errorf("unknown format %q (expected %s)", name, formatNames())
	}
	return f, nil
}

func formatterOptions() output.FormatterOptions {
	opts := output.DefaultFormatterOptions()
	opts.Template = inspectOpts.template
	opts.ShowBody = !inspectOpts.noBody
	opts.ShowPopups = !inspectOpts.noPopups
	return opts
}

func runInspect(cmd *cobra.Command, args []string) error {
	format, err := parseFormat(inspectOpts.format)
	if err != nil {
		return err
	}
	formatter := output.NewFormatter(format, formatterOptions())

	if !inspectOpts.state {
		return formatter.FormatLayout(os.Stdout, page.Layout())
	}

	d := startDesktop(cmd.Context(), desktopOptions{
		clock:  true,
		popups: !inspectOpts.noPopups,
	})
	defer d.Close()

	return formatter.FormatSnapshot(os.Stdout, d.shell.Snapshot())
}
