// Package input provides input adapters for desktop event scripts.
package input

import (
	"context"
	"strconv"

	"github.com/jmylchreest/deskshell/internal/markup"
)

// EventSource reads a script of desktop events.
type EventSource interface {
	// Name returns the adapter identifier (e.g., "stdin", "file").
	Name() string

	// Events reads the whole script.
	// Returns the events in order and any error encountered.
	Events(ctx context.Context) ([]markup.EventSpec, error)
}

// NewAdapter creates an EventSource for the specified source.
// "-" and "stdin" read standard input; anything else is a file path.
func NewAdapter(source string) (EventSource, error) {
	switch source {
	case "":
		return nil, &AdapterError{
			Source:  source,
			Message: "no event source given",
		}
	case "-", "stdin":
		return NewStdinAdapter(), nil
	default:
		return NewFileAdapter(source), nil
	}
}

// AdapterError represents an adapter-related error.
type AdapterError struct {
	Source  string
	Line    int // 1-based script line, 0 when not applicable
	Message string
	Err     error
}

func (e *AdapterError) Error() string {
	msg := e.Message
	if e.Line > 0 {
		msg = e.Source + ":" + strconv.Itoa(e.Line) + ": " + msg
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
