package output

import (
	"encoding/json"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/deskshell/internal/shell"
)

// JSONFormatter formats layouts and snapshots as JSON.
type JSONFormatter struct {
	opts FormatterOptions
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(opts FormatterOptions) *JSONFormatter {
	return &JSONFormatter{opts: opts}
}

// FormatLayout writes the layout as a JSON object.
func (f *JSONFormatter) FormatLayout(w io.Writer, layout shell.Layout) error {
	return f.encode(w, layout)
}

// FormatSnapshot writes the snapshot as a JSON object.
func (f *JSONFormatter) FormatSnapshot(w io.Writer, snap shell.Snapshot) error {
	return f.encode(w, snap)
}

func (f *JSONFormatter) encode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// YAMLFormatter formats layouts and snapshots as YAML.
type YAMLFormatter struct {
	opts FormatterOptions
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(opts FormatterOptions) *YAMLFormatter {
	return &YAMLFormatter{opts: opts}
}

// FormatLayout writes the layout as a YAML document.
func (f *YAMLFormatter) FormatLayout(w io.Writer, layout shell.Layout) error {
	return f.encode(w, layout)
}

// FormatSnapshot writes the snapshot as a YAML document.
func (f *YAMLFormatter) FormatSnapshot(w io.Writer, snap shell.Snapshot) error {
	return f.encode(w, snap)
}

func (f *YAMLFormatter) encode(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}
