// Package output provides output formatters for desktop layouts and state
// snapshots.
package output

import (
	"io"

	"github.com/jmylchreest/deskshell/internal/shell"
)

// Formatter formats desktop layouts and snapshots for output.
type Formatter interface {
	// FormatLayout writes the windows and launchers discovered in a page.
	FormatLayout(w io.Writer, layout shell.Layout) error
	// FormatSnapshot writes the current desktop state.
	FormatSnapshot(w io.Writer, snap shell.Snapshot) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatDmenu FormatType = "dmenu"
	FormatIDs   FormatType = "ids"
	FormatJSON  FormatType = "json"
	FormatPlain FormatType = "plain"
	FormatYAML  FormatType = "yaml"
)

// FormatTypes lists the accepted format names.
var FormatTypes = []FormatType{FormatPlain, FormatJSON, FormatYAML, FormatDmenu, FormatIDs}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return NewJSONFormatter(opts)
	case FormatYAML:
		return NewYAMLFormatter(opts)
	case FormatDmenu:
		return NewDmenuFormatter(opts)
	case FormatIDs:
		return NewIDsFormatter()
	case FormatPlain:
		fallthrough
	default:
		return NewPlainFormatter(opts)
	}
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template   string // Custom per-window template for dmenu/plain format
	ShowIndex  bool   // Show 1-based index prefix
	ShowBody   bool   // Show window body text
	ShowPopups bool   // Include popup windows in per-window listings
	ShowClosed bool   // Include closed windows in snapshot listings
	BodyMaxLen int    // Maximum body length (0 = unlimited)
	Separator  string // Field separator for dmenu format
}

// DefaultFormatterOptions returns sensible defaults for terminal output.
func DefaultFormatterOptions() FormatterOptions {
	return FormatterOptions{
		ShowIndex:  true,
		ShowBody:   true,
		ShowPopups: true,
		ShowClosed: true,
		BodyMaxLen: 60,
		Separator:  " | ",
	}
}

// includeSpec reports whether a discovered window is listed under opts.
func (o FormatterOptions) includeSpec(spec shell.WindowSpec) bool {
	return o.ShowPopups || spec.Kind != shell.WindowPopup
}

// includeView reports whether a window snapshot is listed under opts.
func (o FormatterOptions) includeView(view shell.WindowView) bool {
	if !o.ShowPopups && view.Kind == shell.WindowPopup {
		return false
	}
	return o.ShowClosed || view.State != shell.WindowClosed
}
