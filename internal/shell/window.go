package shell

import (
	"fmt"
	"time"
)

// WindowState is the single source of truth for a window's visibility.
type WindowState int

const (
	// WindowClosed means the window is hidden and not listed in the taskbar.
	WindowClosed WindowState = iota
	// WindowOpen means the window is visible.
	WindowOpen
	// WindowMinimized means the window is hidden but still listed in the taskbar.
	WindowMinimized
)

// String returns the string representation of WindowState.
func (s WindowState) String() string {
	switch s {
	case WindowClosed:
		return "closed"
	case WindowOpen:
		return "open"
	case WindowMinimized:
		return "minimized"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s WindowState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *WindowState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "closed":
		*s = WindowClosed
	case "open":
		*s = WindowOpen
	case "minimized":
		*s = WindowMinimized
	default:
		return fmt.Errorf("invalid window state %q", string(text))
	}
	return nil
}

// WindowKind distinguishes regular application windows from popups.
type WindowKind int

const (
	// WindowRegular is an application window opened from icons and menus.
	WindowRegular WindowKind = iota
	// WindowPopup is shown at startup and dismissed after a delay.
	WindowPopup
)

// String returns the string representation of WindowKind.
func (k WindowKind) String() string {
	switch k {
	case WindowRegular:
		return "regular"
	case WindowPopup:
		return "popup"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k WindowKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *WindowKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "regular":
		*k = WindowRegular
	case "popup":
		*k = WindowPopup
	default:
		return fmt.Errorf("invalid window kind %q", string(text))
	}
	return nil
}

// WindowSpec describes a window discovered in the desktop page.
type WindowSpec struct {
	ID    string     `json:"id" yaml:"id"`
	Title string     `json:"title" yaml:"title"`
	Kind  WindowKind `json:"kind" yaml:"kind"`
	Body  string     `json:"body,omitempty" yaml:"body,omitempty"`

	// InitiallyOpen is set when the page marks the window open.
	InitiallyOpen bool `json:"initially_open,omitempty" yaml:"initially_open,omitempty"`
}

// Launcher is a clickable element naming the window it opens.
type Launcher struct {
	Label  string `json:"label" yaml:"label"`
	Window string `json:"window" yaml:"window"`
}

// Gallery is one member of the explorer's mutually exclusive gallery set.
type Gallery struct {
	ID    string   `json:"id" yaml:"id"`
	Items []string `json:"items,omitempty" yaml:"items,omitempty"`
}

// Layout is everything the shell needs to know about the desktop page.
// Nothing in it changes at runtime except through a page reload.
type Layout struct {
	Windows        []WindowSpec `json:"windows" yaml:"windows"`
	Icons          []Launcher   `json:"icons,omitempty" yaml:"icons,omitempty"`
	MenubarLinks   []Launcher   `json:"menubar_links,omitempty" yaml:"menubar_links,omitempty"`
	StartMenuItems []Launcher   `json:"start_menu_items,omitempty" yaml:"start_menu_items,omitempty"`
	Folders        []string     `json:"folders,omitempty" yaml:"folders,omitempty"`
	FolderWindow   string       `json:"folder_window,omitempty" yaml:"folder_window,omitempty"` // Window hosting the folder sidebar
	Galleries      []Gallery    `json:"galleries,omitempty" yaml:"galleries,omitempty"`
	InitialFolder  string       `json:"initial_folder,omitempty" yaml:"initial_folder,omitempty"`
	HasStartMenu   bool         `json:"has_start_menu" yaml:"has_start_menu"`
	HasClock       bool         `json:"has_clock" yaml:"has_clock"`
}

// Window returns the WindowSpec for id.
func (l Layout) Window(id string) (WindowSpec, bool) {
	for _, w := range l.Windows {
		if w.ID == id {
			return w, true
		}
	}
	return WindowSpec{}, false
}

// Gallery returns the gallery with the given element id.
func (l Layout) Gallery(id string) (Gallery, bool) {
	for _, g := range l.Galleries {
		if g.ID == id {
			return g, true
		}
	}
	return Gallery{}, false
}

// Popups returns the ids of popup windows in document order.
func (l Layout) Popups() []string {
	var ids []string
	for _, w := range l.Windows {
		if w.Kind == WindowPopup {
			ids = append(ids, w.ID)
		}
	}
	return ids
}

// window is the mutable per-window record held by the Shell.
type window struct {
	spec      WindowSpec
	state     WindowState
	expiresAt time.Time // popups only, zero when no dismissal is pending
}
