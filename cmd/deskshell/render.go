package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/deskshell/internal/adapter/input"
	"github.com/jmylchreest/deskshell/internal/adapter/output"
	"github.com/jmylchreest/deskshell/internal/markup"
)

// formatHTML renders the page itself rather than a state listing.
const formatHTML = "html"

var renderOpts struct {
	events   []string
	script   string
	format   string
	noPopups bool
	strict   bool
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Apply events and print the resulting page",
	Long: `Apply a sequence of events to a fresh desktop and print the page with
the resulting state applied.

Events are "click:<target>" or "key:<key>". A target is an element id or a
CSS selector. Events given with --event run first, then those read from
--script ("-" for stdin). Scripts hold one event per line ("click icon-work"
or "click:icon-work", # for comments) or a JSON array of
{"type":"click","target":"..."} objects.

Examples:
  # Open the explorer on the print folder
  deskshell render --event click:icon-work --event click:folder-print

  # Same, from a script, printing the state instead of HTML
  printf 'click icon-work\nclick folder-print\n' | deskshell render --script - --format plain`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderCmd.Flags().StringArrayVarP(&renderOpts.events, "event", "e", nil,
		"Event to apply (click:<target> or key:<key>); repeatable")
	renderCmd.Flags().StringVar(&renderOpts.script, "script", "",
		"Read events from a file (- for stdin)")
	renderCmd.Flags().StringVarP(&renderOpts.format, "format", "f", formatHTML,
		"Output format (html, "+formatNames()+")")
	renderCmd.Flags().BoolVar(&renderOpts.noPopups, "no-popups", false,
		"Do not show popups before applying events")
	renderCmd.Flags().BoolVar(&renderOpts.strict, "strict", false,
		"Fail when an event changes nothing")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var formatter output.Formatter
	if renderOpts.format != formatHTML {
		format, err := parseFormat(renderOpts.format)
		if err != nil {
			return err
		}
		formatter = output.NewFormatter(format, output.DefaultFormatterOptions())
	}

	events, err := collectEvents(ctx)
	if err != nil {
		return err
	}

	d := startDesktop(ctx, desktopOptions{
		clock:  true,
		popups: !renderOpts.noPopups,
	})
	defer d.Close()

	for i, spec := range events {
		ev, err := page.Resolve(spec, d.shell.Snapshot())
		if err != nil {
			return fmt.Errorf("event %d (%s): %w", i+1, spec, err)
		}
		handled := d.dispatcher.Dispatch(ev)
		logger.Debug("event applied", "index", i+1, "event", spec.String(), "handled", handled)
		if !handled && renderOpts.strict {
			return fmt.Errorf("event %d (%s) changed nothing", i+1, spec)
		}
	}

	snap := d.shell.Snapshot()
	if formatter != nil {
		return formatter.FormatSnapshot(os.Stdout, snap)
	}
	return page.Render(os.Stdout, snap)
}

// collectEvents parses --event flags followed by the --script contents.
func collectEvents(ctx context.Context) ([]markup.EventSpec, error) {
	events := make([]markup.EventSpec, 0, len(renderOpts.events))
	for _, raw := range renderOpts.events {
		spec, err := markup.ParseEventSpec(raw)
		if err != nil {
			return nil, err
		}
		events = append(events, spec)
	}

	if renderOpts.script == "" {
		return events, nil
	}

	source, err := input.NewAdapter(renderOpts.script)
	if err != nil {
		return nil, err
	}
	scripted, err := source.Events(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read events from %s: %w", source.Name(), err)
	}
	return append(events, scripted...), nil
}
