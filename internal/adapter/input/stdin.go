package input

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmylchreest/deskshell/internal/markup"
)

// StdinAdapter reads an event script from standard input.
type StdinAdapter struct {
	reader io.Reader
}

// NewStdinAdapter creates a new StdinAdapter reading from os.Stdin.
func NewStdinAdapter() *StdinAdapter {
	return &StdinAdapter{reader: os.Stdin}
}

// NewStdinAdapterWithReader creates a new StdinAdapter with a custom reader.
func NewStdinAdapterWithReader(r io.Reader) *StdinAdapter {
	return &StdinAdapter{reader: r}
}

// Name returns the adapter identifier.
func (a *StdinAdapter) Name() string {
	return "stdin"
}

// Events reads the script from standard input.
func (a *StdinAdapter) Events(ctx context.Context) ([]markup.EventSpec, error) {
	return readScript(ctx, "stdin", a.reader)
}

// FileAdapter reads an event script from a file.
type FileAdapter struct {
	path string
}

// NewFileAdapter creates a new FileAdapter for path.
func NewFileAdapter(path string) *FileAdapter {
	return &FileAdapter{path: path}
}

// Name returns the adapter identifier.
func (a *FileAdapter) Name() string {
	return "file"
}

// Events reads the script file.
func (a *FileAdapter) Events(ctx context.Context) ([]markup.EventSpec, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, &AdapterError{
			Source:  a.path,
			Message: "failed to open event script",
			Err:     err,
		}
	}
	defer f.Close()
	return readScript(ctx, a.path, f)
}

// readScript reads a script in one of two formats:
// 1. JSON array of {"type":"click","target":"..."} / {"type":"key","key":"..."}
// 2. One event per line: "click <target>", "click:<target>", "key Escape".
// Blank lines and lines starting with # are ignored.
func readScript(ctx context.Context, source string, r io.Reader) ([]markup.EventSpec, error) {
	scanner := bufio.NewScanner(r)
	const maxSize = 1024 * 1024 // 1MB max
	scanner.Buffer(make([]byte, 64*1024), maxSize)

	var data []byte
	for scanner.Scan() {
		data = append(data, scanner.Bytes()...)
		data = append(data, '\n')
	}

	if err := scanner.Err(); err != nil {
		return nil, &AdapterError{
			Source:  source,
			Message: "failed to read event script",
			Err:     err,
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}

	if trimmed[0] == '[' {
		return parseJSONArray(source, trimmed)
	}
	return parseLines(source, data)
}

// parseJSONArray parses a JSON array of events.
func parseJSONArray(source string, data []byte) ([]markup.EventSpec, error) {
	var entries []markup.EventSpec
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &AdapterError{
			Source:  source,
			Message: "failed to parse JSON input",
			Err:     err,
		}
	}

	for i, entry := range entries {
		entry.Type = strings.ToLower(strings.TrimSpace(entry.Type))
		if entry.Type != markup.EventTypeClick && entry.Type != markup.EventTypeKey {
			return nil, &AdapterError{
				Source:  source,
				Message: "entry " + strconv.Itoa(i) + " has unknown type " + strconv.Quote(entry.Type),
				Err:     markup.ErrUnknownEventType,
			}
		}
		entries[i] = entry
	}
	return entries, nil
}

// parseLines parses the one-event-per-line format.
func parseLines(source string, data []byte) ([]markup.EventSpec, error) {
	var events []markup.EventSpec
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// "click <target>" is accepted alongside "click:<target>".
		if typ, rest, ok := strings.Cut(line, " "); ok && !strings.Contains(typ, ":") {
			line = typ + ":" + rest
		}

		spec, err := markup.ParseEventSpec(line)
		if err != nil {
			return nil, &AdapterError{
				Source:  source,
				Line:    i + 1,
				Message: "invalid event",
				Err:     err,
			}
		}
		events = append(events, spec)
	}
	return events, nil
}
