package markup

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/deskshell/internal/shell"
)

// Event type names accepted in an EventSpec.
const (
	EventTypeClick = "click"
	EventTypeKey   = "key"
)

var (
	// ErrTargetNotFound is returned when a click target matches nothing.
	ErrTargetNotFound = errors.New("click target not found")
	// ErrUnknownEventType is returned for event types other than click and key.
	ErrUnknownEventType = errors.New("unknown event type")
	// ErrEmptyEvent is returned when an event is missing its target or key.
	ErrEmptyEvent = errors.New("event has no target or key")
)

// EventSpec is an event as sent over the wire: a click on an element of the
// page, or a key press.
type EventSpec struct {
	Type   string `json:"type" yaml:"type"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
	Key    string `json:"key,omitempty" yaml:"key,omitempty"`
}

// String returns the "type:value" form accepted by ParseEventSpec.
func (e EventSpec) String() string {
	if e.Type == EventTypeKey {
		return e.Type + ":" + e.Key
	}
	return e.Type + ":" + e.Target
}

// ParseEventSpec parses "click:<target>" or "key:<key>".
func ParseEventSpec(s string) (EventSpec, error) {
	typ, value, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return EventSpec{}, fmt.Errorf("invalid event %q: expected click:<target> or key:<key>", s)
	}

	spec := EventSpec{Type: strings.ToLower(strings.TrimSpace(typ))}
	switch spec.Type {
	case EventTypeClick:
		spec.Target = strings.TrimSpace(value)
	case EventTypeKey:
		spec.Key = strings.TrimSpace(value)
	default:
		return EventSpec{}, fmt.Errorf("%w: %q", ErrUnknownEventType, typ)
	}
	return spec, nil
}

// Resolve turns spec into a shell event. Click targets are looked up in the
// page rendered with snap, so taskbar entries can be clicked. A target is
// either an element id or a CSS selector; the first match is used.
func (p *Page) Resolve(spec EventSpec, snap shell.Snapshot) (shell.Event, error) {
	switch spec.Type {
	case EventTypeKey:
		if spec.Key == "" {
			return shell.Event{}, ErrEmptyEvent
		}
		return shell.KeyPress(spec.Key), nil
	case EventTypeClick:
	default:
		return shell.Event{}, fmt.Errorf("%w: %q", ErrUnknownEventType, spec.Type)
	}

	if spec.Target == "" {
		return shell.Event{}, ErrEmptyEvent
	}

	matcher, err := compileTarget(spec.Target)
	if err != nil {
		return shell.Event{}, err
	}

	doc, err := p.Document(snap)
	if err != nil {
		return shell.Event{}, err
	}

	el := doc.FindMatcher(matcher).First()
	if el.Length() == 0 {
		return shell.Event{}, fmt.Errorf("%w: %q", ErrTargetNotFound, spec.Target)
	}
	return shell.Click(p.classify(el)), nil
}

// targetSelector treats a bare name as an element id.
func targetSelector(target string) string {
	if strings.ContainsAny(target, "#.[]: >+~*") {
		return target
	}
	return "#" + target
}

// classify works out what a clicked element is, checking the most specific
// roles first.
func (p *Page) classify(el *goquery.Selection) shell.Target {
	sel := p.cfg.Selectors
	t := shell.Target{
		InStartMenu:   within(el, sel.StartMenu),
		InStartButton: within(el, sel.StartButton),
	}
	enclosing := ""
	if win := closest(el, sel.Window); win.Length() > 0 {
		enclosing = win.AttrOr("id", "")
	}

	switch {
	case within(el, sel.CloseButton) && enclosing != "":
		t.Role, t.Window = shell.RoleCloseButton, enclosing
	case within(el, sel.MinButton) && enclosing != "":
		t.Role, t.Window = shell.RoleMinButton, enclosing
	case t.InStartButton:
		t.Role = shell.RoleStartButton
	case within(el, sel.StartMenuItem):
		t.Role = shell.RoleStartMenuItem
		t.Window = closest(el, sel.StartMenuItem).AttrOr("data-window", "")
	case t.InStartMenu:
		t.Role = shell.RoleStartMenu
	case within(el, sel.Icon) && (sel.Desktop == "" || within(el, sel.Desktop)):
		t.Role = shell.RoleIcon
		t.Window = closest(el, sel.Icon).AttrOr("data-window", "")
	case within(el, sel.MenubarLink):
		t.Role = shell.RoleMenubarLink
		t.Window = closest(el, sel.MenubarLink).AttrOr("data-window", "")
	case within(el, sel.TaskbarItem):
		t.Role = shell.RoleTaskbarEntry
		t.Window = closest(el, sel.TaskbarItem).AttrOr("data-window", "")
	case within(el, sel.FolderEntry):
		t.Role, t.Window = shell.RoleFolderEntry, enclosing
		t.Folder = closest(el, sel.FolderEntry).AttrOr("data-folder", "")
	case enclosing != "":
		t.Role, t.Window = shell.RoleWindow, enclosing
	default:
		t.Role = shell.RoleDesktop
	}
	return t
}

func closest(el *goquery.Selection, selector string) *goquery.Selection {
	if selector == "" {
		return el.Slice(0, 0)
	}
	return el.Closest(selector)
}

func within(el *goquery.Selection, selector string) bool {
	return closest(el, selector).Length() > 0
}
