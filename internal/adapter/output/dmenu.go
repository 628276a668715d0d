package output

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/template"

	"github.com/jmylchreest/deskshell/internal/shell"
)

// DmenuFormatter writes one line per window for dmenu/rofi/fuzzel pickers.
// The window id is the last field so a picker's choice can be cut back out.
type DmenuFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewDmenuFormatter creates a new dmenu formatter.
func NewDmenuFormatter(opts FormatterOptions) *DmenuFormatter {
	return &DmenuFormatter{
		opts:     opts,
		template: parseTemplate("dmenu", opts.Template),
	}
}

// FormatLayout writes one line per discovered window.
func (f *DmenuFormatter) FormatLayout(w io.Writer, layout shell.Layout) error {
	index := 0
	for _, spec := range layout.Windows {
		if !f.opts.includeSpec(spec) {
			continue
		}
		index++
		if _, err := fmt.Fprintln(w, f.formatLine(specData(index, spec))); err != nil {
			return err
		}
	}
	return nil
}

// FormatSnapshot writes one line per window with its state.
func (f *DmenuFormatter) FormatSnapshot(w io.Writer, snap shell.Snapshot) error {
	index := 0
	for _, view := range snap.Windows {
		if !f.opts.includeView(view) {
			continue
		}
		index++
		if _, err := fmt.Fprintln(w, f.formatLine(viewData(index, view, snap.TakenAt))); err != nil {
			return err
		}
	}
	return nil
}

// formatLine formats a single window line.
func (f *DmenuFormatter) formatLine(data templateData) string {
	if f.template != nil {
		var buf strings.Builder
		if err := f.template.Execute(&buf, data); err == nil {
			return buf.String()
		}
	}

	// Default format: [index] title [state] [body] id
	var parts []string
	sep := f.opts.Separator
	if sep == "" {
		sep = " | "
	}

	if f.opts.ShowIndex {
		parts = append(parts, fmt.Sprintf("%d", data.Index))
	}
	parts = append(parts, data.Title)
	if data.State != "" {
		parts = append(parts, data.State)
	}
	if f.opts.ShowBody {
		if body := sanitizeBody(data.Body, f.opts.BodyMaxLen); body != "" {
			parts = append(parts, body)
		}
	}
	parts = append(parts, data.ID)

	return strings.Join(parts, sep)
}

// IDsFormatter outputs just the window ids, one per line.
// Useful for piping to other commands (e.g., deskshell render --event click:<id>).
type IDsFormatter struct{}

// NewIDsFormatter creates a new IDs formatter.
func NewIDsFormatter() *IDsFormatter {
	return &IDsFormatter{}
}

// FormatLayout writes every window id in document order.
func (f *IDsFormatter) FormatLayout(w io.Writer, layout shell.Layout) error {
	for _, spec := range layout.Windows {
		if _, err := fmt.Fprintln(w, spec.ID); err != nil {
			return err
		}
	}
	return nil
}

// FormatSnapshot writes the ids of visible windows, front-most last.
func (f *IDsFormatter) FormatSnapshot(w io.Writer, snap shell.Snapshot) error {
	visible := make([]shell.WindowView, 0, len(snap.Windows))
	for _, view := range snap.Windows {
		if view.Visible() {
			visible = append(visible, view)
		}
	}
	slices.SortStableFunc(visible, func(a, b shell.WindowView) int {
		return cmp.Compare(a.Z, b.Z)
	})
	for _, view := range visible {
		if _, err := fmt.Fprintln(w, view.ID); err != nil {
			return err
		}
	}
	return nil
}
