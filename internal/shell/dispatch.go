package shell

import (
	"fmt"
	"log/slog"
	"sync"
)

// Role identifies what a clicked element is in the desktop page.
type Role int

const (
	// RoleDesktop is the desktop background or any element with no role.
	RoleDesktop Role = iota
	// RoleIcon is a desktop icon naming a window.
	RoleIcon
	// RoleMenubarLink is a menubar link naming a window.
	RoleMenubarLink
	// RoleStartMenuItem is a start menu entry naming a window.
	RoleStartMenuItem
	// RoleStartButton is the taskbar start button.
	RoleStartButton
	// RoleStartMenu is any other element inside the start menu.
	RoleStartMenu
	// RoleCloseButton is a title-bar close control.
	RoleCloseButton
	// RoleMinButton is a title-bar minimize control.
	RoleMinButton
	// RoleFolderEntry is an explorer sidebar entry naming a folder.
	RoleFolderEntry
	// RoleTaskbarEntry is a taskbar button for an open or minimized window.
	RoleTaskbarEntry
	// RoleWindow is any other element inside a window.
	RoleWindow
)

var roleNames = map[Role]string{
	RoleDesktop:       "desktop",
	RoleIcon:          "icon",
	RoleMenubarLink:   "menubar-link",
	RoleStartMenuItem: "start-menu-item",
	RoleStartButton:   "start-button",
	RoleStartMenu:     "start-menu",
	RoleCloseButton:   "close-button",
	RoleMinButton:     "min-button",
	RoleFolderEntry:   "folder-entry",
	RoleTaskbarEntry:  "taskbar-entry",
	RoleWindow:        "window",
}

// String returns the string representation of Role.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Role) UnmarshalText(text []byte) error {
	for role, name := range roleNames {
		if name == string(text) {
			*r = role
			return nil
		}
	}
	return fmt.Errorf("invalid role %q", string(text))
}

// Target is the resolved context of a click.
type Target struct {
	Role Role `json:"role" yaml:"role"`
	// Window is the window named by the element, or the window it sits in.
	Window string `json:"window,omitempty" yaml:"window,omitempty"`
	// Folder is the folder named by a sidebar entry.
	Folder string `json:"folder,omitempty" yaml:"folder,omitempty"`
	// InStartMenu and InStartButton decide whether a click is "outside"
	// the start menu.
	InStartMenu   bool `json:"in_start_menu,omitempty" yaml:"in_start_menu,omitempty"`
	InStartButton bool `json:"in_start_button,omitempty" yaml:"in_start_button,omitempty"`
}

// EventType distinguishes clicks from key presses.
type EventType int

const (
	// EventClick is a click on a resolved target.
	EventClick EventType = iota
	// EventKey is a key press on the document.
	EventKey
)

// Key names recognized by the dispatcher.
const (
	KeyEscape = "Escape"
)

// Event is one user interaction.
type Event struct {
	Type   EventType
	Target Target
	Key    string
}

// Click builds a click event.
func Click(t Target) Event {
	return Event{Type: EventClick, Target: t}
}

// KeyPress builds a key event.
func KeyPress(key string) Event {
	return Event{Type: EventKey, Key: key}
}

// HandlerFunc handles one event for one feature. It reports whether it
// changed anything.
type HandlerFunc func(s *Shell, ev Event) bool

type handler struct {
	feature string
	fn      HandlerFunc
}

// Dispatcher is the single entry point for events. Handlers run in
// registration order and events are processed one at a time.
type Dispatcher struct {
	mu       sync.Mutex
	shell    *Shell
	logger   *slog.Logger
	handlers []handler
}

// NewDispatcher creates a dispatcher with the stock desktop handlers.
func NewDispatcher(s *Shell, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{shell: s, logger: logger}

	d.Handle("launchers", handleLaunchers)
	d.Handle("titlebar", handleTitlebar)
	d.Handle("start-menu", handleStartMenu)
	d.Handle("folders", handleFolders)
	d.Handle("taskbar", handleTaskbar)
	d.Handle("focus", handleFocus)
	d.Handle("escape", handleEscape)

	return d
}

// Handle registers an additional feature handler.
func (d *Dispatcher) Handle(feature string, fn HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, handler{feature: feature, fn: fn})
}

// Dispatch routes ev to every handler and reports whether any acted.
func (d *Dispatcher) Dispatch(ev Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	acted := false
	for _, h := range d.handlers {
		if h.fn(d.shell, ev) {
			d.logger.Debug("event handled",
				"feature", h.feature,
				"role", ev.Target.Role,
				"window", ev.Target.Window,
				"key", ev.Key,
			)
			acted = true
		}
	}
	return acted
}

// Shell returns the shell the dispatcher drives.
func (d *Dispatcher) Shell() *Shell {
	return d.shell
}

// handleLaunchers opens the window named by an icon, menubar link or start
// menu item. Start menu items also close the menu.
func handleLaunchers(s *Shell, ev Event) bool {
	if ev.Type != EventClick {
		return false
	}
	switch ev.Target.Role {
	case RoleIcon, RoleMenubarLink:
		if ev.Target.Window == "" {
			return false
		}
		return s.OpenWindow(ev.Target.Window)
	case RoleStartMenuItem:
		opened := false
		if ev.Target.Window != "" {
			opened = s.OpenWindow(ev.Target.Window)
		}
		closed := s.CloseStartMenu()
		return opened || closed
	}
	return false
}

// handleTitlebar acts on the window enclosing a close or minimize control.
func handleTitlebar(s *Shell, ev Event) bool {
	if ev.Type != EventClick || ev.Target.Window == "" {
		return false
	}
	switch ev.Target.Role {
	case RoleCloseButton:
		return s.CloseWindow(ev.Target.Window)
	case RoleMinButton:
		return s.MinimizeWindow(ev.Target.Window)
	}
	return false
}

// handleStartMenu toggles the menu from the start button and closes it on
// any click outside both the menu and the button.
func handleStartMenu(s *Shell, ev Event) bool {
	if ev.Type != EventClick {
		return false
	}
	t := ev.Target
	if t.Role == RoleStartButton {
		was := s.StartMenuOpen()
		return s.ToggleStartMenu() != was
	}
	if !t.InStartMenu && !t.InStartButton {
		return s.CloseStartMenu()
	}
	return false
}

// handleFolders switches the explorer gallery.
func handleFolders(s *Shell, ev Event) bool {
	if ev.Type != EventClick || ev.Target.Role != RoleFolderEntry {
		return false
	}
	return s.SelectFolder(ev.Target.Folder)
}

// handleTaskbar restores a minimized window or raises an open one.
func handleTaskbar(s *Shell, ev Event) bool {
	if ev.Type != EventClick || ev.Target.Role != RoleTaskbarEntry {
		return false
	}
	if s.RestoreWindow(ev.Target.Window) {
		return true
	}
	return s.BringToFront(ev.Target.Window)
}

// handleFocus raises a window when something inside it is clicked.
func handleFocus(s *Shell, ev Event) bool {
	if ev.Type != EventClick {
		return false
	}
	switch ev.Target.Role {
	case RoleWindow, RoleFolderEntry:
		if ev.Target.Window == "" {
			return false
		}
		return s.BringToFront(ev.Target.Window)
	}
	return false
}

// handleEscape closes every open window.
func handleEscape(s *Shell, ev Event) bool {
	if ev.Type != EventKey || ev.Key != KeyEscape {
		return false
	}
	return s.CloseAll() > 0
}
