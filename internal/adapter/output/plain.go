package output

import (
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/deskshell/internal/shell"
)

// PlainFormatter formats layouts and snapshots as plain text.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
}

// NewPlainFormatter creates a new plain text formatter.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	return &PlainFormatter{
		opts:     opts,
		template: parseTemplate("plain", opts.Template),
	}
}

// FormatLayout writes the discovered windows followed by the launchers,
// folders and galleries.
func (f *PlainFormatter) FormatLayout(w io.Writer, layout shell.Layout) error {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Windows (%d):\n", len(layout.Windows)))
	index := 0
	for _, spec := range layout.Windows {
		if !f.opts.includeSpec(spec) {
			continue
		}
		index++
		data := specData(index, spec)
		if f.template != nil {
			if err := f.template.Execute(&sb, data); err != nil {
				return err
			}
			continue
		}
		f.writeWindowLine(&sb, data)
		if f.opts.ShowBody {
			if body := sanitizeBody(spec.Body, f.opts.BodyMaxLen); body != "" {
				sb.WriteString("      " + body + "\n")
			}
		}
	}

	writeLaunchers(&sb, "Icons", layout.Icons)
	writeLaunchers(&sb, "Menubar", layout.MenubarLinks)
	writeLaunchers(&sb, "Start menu", layout.StartMenuItems)

	if len(layout.Folders) > 0 {
		folders := make([]string, 0, len(layout.Folders))
		for _, folder := range layout.Folders {
			if folder == layout.InitialFolder {
				folder += "*"
			}
			folders = append(folders, folder)
		}
		sb.WriteString("Folders: " + strings.Join(folders, ", ") + "\n")
	}

	if len(layout.Galleries) > 0 {
		galleries := make([]string, 0, len(layout.Galleries))
		for _, g := range layout.Galleries {
			galleries = append(galleries, fmt.Sprintf("%s (%d items)", g.ID, len(g.Items)))
		}
		sb.WriteString("Galleries: " + strings.Join(galleries, ", ") + "\n")
	}

	sb.WriteString(fmt.Sprintf("Start menu: %s  Clock: %s\n", yesNo(layout.HasStartMenu), yesNo(layout.HasClock)))

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatSnapshot writes the desktop state, one window per line.
func (f *PlainFormatter) FormatSnapshot(w io.Writer, snap shell.Snapshot) error {
	var sb strings.Builder

	if snap.Clock != "" {
		sb.WriteString("Clock: " + snap.Clock + "\n")
	}
	menu := "closed"
	if snap.StartMenuOpen {
		menu = "open"
	}
	sb.WriteString("Start menu: " + menu + "\n")

	index := 0
	for _, view := range snap.Windows {
		if !f.opts.includeView(view) {
			continue
		}
		index++
		data := viewData(index, view, snap.TakenAt)
		if f.template != nil {
			if err := f.template.Execute(&sb, data); err != nil {
				return err
			}
			continue
		}
		f.writeWindowLine(&sb, data)
	}

	for _, folder := range snap.Folders {
		if folder.Selected {
			gallery := snap.VisibleGallery()
			if gallery == "" {
				gallery = "no gallery"
			}
			sb.WriteString(fmt.Sprintf("Folder: %s (%s)\n", folder.Name, gallery))
		}
	}

	if taskbar := snap.Taskbar(); len(taskbar) > 0 {
		ids := make([]string, 0, len(taskbar))
		for _, view := range taskbar {
			ids = append(ids, view.ID)
		}
		sb.WriteString("Taskbar: " + strings.Join(ids, ", ") + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func (f *PlainFormatter) writeWindowLine(sb *strings.Builder, data templateData) {
	if f.opts.ShowIndex {
		sb.WriteString(fmt.Sprintf("  [%d] ", data.Index))
	} else {
		sb.WriteString("  ")
	}
	sb.WriteString(fmt.Sprintf("%-18s %-24s %s", data.ID, data.Title, data.Kind))
	if data.State != "" {
		sb.WriteString(fmt.Sprintf(" %s z=%d", data.State, data.Z))
	}
	if data.Front {
		sb.WriteString(" (front)")
	}
	if data.Expires != "" {
		sb.WriteString(" closes " + data.Expires)
	}
	sb.WriteString("\n")
}

func writeLaunchers(sb *strings.Builder, name string, launchers []shell.Launcher) {
	if len(launchers) == 0 {
		return
	}
	parts := make([]string, 0, len(launchers))
	for _, l := range launchers {
		parts = append(parts, fmt.Sprintf("%s -> %s", l.Label, l.Window))
	}
	sb.WriteString(name + ": " + strings.Join(parts, ", ") + "\n")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// templateData provides data for custom templates.
type templateData struct {
	Index   int
	ID      string
	Title   string
	Kind    string
	Body    string
	State   string // Empty for layouts
	Z       int
	Front   bool
	Expires string // Humanized popup expiry, e.g. "4 seconds from now"
}

func specData(index int, spec shell.WindowSpec) templateData {
	return templateData{
		Index: index,
		ID:    spec.ID,
		Title: spec.Title,
		Kind:  spec.Kind.String(),
		Body:  spec.Body,
	}
}

func viewData(index int, view shell.WindowView, now time.Time) templateData {
	data := templateData{
		Index: index,
		ID:    view.ID,
		Title: view.Title,
		Kind:  view.Kind.String(),
		State: view.State.String(),
		Z:     view.Z,
		Front: view.Front,
	}
	if !view.ExpiresAt.IsZero() && view.Visible() {
		if now.IsZero() {
			now = time.Now()
		}
		data.Expires = humanize.RelTime(view.ExpiresAt, now, "ago", "from now")
	}
	return data
}

// parseTemplate parses a custom per-window template. Invalid templates are
// ignored and the default layout is used.
func parseTemplate(name, text string) *template.Template {
	if text == "" {
		return nil
	}
	tmpl, err := template.New(name).Funcs(templateFuncs()).Parse(text)
	if err != nil {
		return nil
	}
	return tmpl
}

// templateFuncs returns template helper functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"truncate": func(s string, maxLen int) string {
			if maxLen <= 0 || len(s) <= maxLen {
				return s
			}
			if maxLen <= 3 {
				return s[:maxLen]
			}
			return s[:maxLen-3] + "..."
		},
		"upper": strings.ToUpper,
	}
}

// sanitizeBody cleans up body text for single-line display.
func sanitizeBody(body string, maxLen int) string {
	body = strings.Join(strings.Fields(body), " ")

	if maxLen > 0 && len(body) > maxLen {
		if maxLen <= 3 {
			return body[:maxLen]
		}
		return body[:maxLen-3] + "..."
	}
	return body
}
