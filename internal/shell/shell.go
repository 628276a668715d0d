package shell

import (
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Default option values.
const (
	DefaultGalleryPrefix = "gallery-"
	DefaultPopupDelay    = 5 * time.Second
	DefaultClockLayout   = "15:04"
	DefaultBaseZ         = 50
)

// ErrShellClosed is returned when operations are attempted on a closed shell.
var ErrShellClosed = errors.New("shell is closed")

// ChangeType indicates which part of the shell changed.
type ChangeType int

const (
	// ChangeWindow indicates a window changed state or stacking order.
	ChangeWindow ChangeType = iota
	// ChangeStartMenu indicates the start menu was opened or closed.
	ChangeStartMenu
	// ChangeFolder indicates a different explorer folder was selected.
	ChangeFolder
	// ChangeClock indicates the clock text changed.
	ChangeClock
	// ChangeLayout indicates the desktop page was reloaded.
	ChangeLayout
)

// String returns the string representation of ChangeType.
func (t ChangeType) String() string {
	switch t {
	case ChangeWindow:
		return "window"
	case ChangeStartMenu:
		return "start-menu"
	case ChangeFolder:
		return "folder"
	case ChangeClock:
		return "clock"
	case ChangeLayout:
		return "layout"
	default:
		return "unknown"
	}
}

// ChangeEvent signals a shell state change.
type ChangeEvent struct {
	Type ChangeType
	ID   string // window id or folder name, empty otherwise
}

// Options configures a Shell.
type Options struct {
	GalleryPrefix string        // Gallery element id = prefix + folder name
	PopupDelay    time.Duration // Popup auto-dismiss delay (0 = never)
	ClockLayout   string        // time.Format layout for the clock text
	BaseZ         int           // Lowest z-index handed to a window
	Logger        *slog.Logger
}

// DefaultOptions returns the options matching the stock desktop page.
func DefaultOptions() Options {
	return Options{
		GalleryPrefix: DefaultGalleryPrefix,
		PopupDelay:    DefaultPopupDelay,
		ClockLayout:   DefaultClockLayout,
		BaseZ:         DefaultBaseZ,
	}
}

// Shell holds the desktop state. It is safe for concurrent use.
type Shell struct {
	mu     sync.RWMutex
	opts   Options
	logger *slog.Logger

	layout  Layout
	windows map[string]*window
	stack   *stack

	startMenuOpen  bool
	selectedFolder string
	clockText      string

	popupTimers map[string]*time.Timer

	subscribers []chan ChangeEvent
	closed      bool
}

// New creates a Shell for the given layout. Windows start closed unless the
// page marks them open, and the initial stacking order follows document
// order.
func New(layout Layout, opts Options) *Shell {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.ClockLayout == "" {
		opts.ClockLayout = DefaultClockLayout
	}
	if opts.GalleryPrefix == "" {
		opts.GalleryPrefix = DefaultGalleryPrefix
	}

	s := &Shell{
		opts:        opts,
		logger:      opts.Logger,
		popupTimers: make(map[string]*time.Timer),
	}
	s.applyLayoutLocked(layout)
	return s
}

// applyLayoutLocked installs layout, keeping the state of windows that
// survive and dropping the rest. Caller must hold s.mu for writing (or be
// the constructor).
func (s *Shell) applyLayoutLocked(layout Layout) {
	old := s.windows
	s.layout = layout
	s.windows = make(map[string]*window, len(layout.Windows))

	order := make([]string, 0, len(layout.Windows))
	for _, spec := range layout.Windows {
		w := &window{spec: spec}
		if spec.InitiallyOpen {
			w.state = WindowOpen
		}
		if prev, ok := old[spec.ID]; ok {
			w.state = prev.state
			w.expiresAt = prev.expiresAt
		}
		s.windows[spec.ID] = w
		order = append(order, spec.ID)
	}

	if s.stack == nil {
		s.stack = newStack(order)
	} else {
		s.stack.retain(order)
	}

	for id, t := range s.popupTimers {
		if _, ok := s.windows[id]; !ok {
			t.Stop()
			delete(s.popupTimers, id)
		}
	}

	if !slices.Contains(layout.Folders, s.selectedFolder) {
		s.selectedFolder = ""
		if slices.Contains(layout.Folders, layout.InitialFolder) {
			s.selectedFolder = layout.InitialFolder
		}
	}
	if !layout.HasStartMenu {
		s.startMenuOpen = false
	}
}

// Reload swaps in a new layout, e.g. after the desktop page was edited.
func (s *Shell) Reload(layout Layout) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.applyLayoutLocked(layout)
	s.logger.Debug("layout reloaded", "windows", len(layout.Windows))
	s.notifyChange(ChangeEvent{Type: ChangeLayout})
}

// Layout returns the layout the shell was built from.
func (s *Shell) Layout() Layout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layout
}

// OpenWindow marks the window open and raises it to the front.
// Returns false if id does not name a window.
func (s *Shell) OpenWindow(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.lookupLocked(id)
	if !ok {
		return false
	}
	w.state = WindowOpen
	s.stack.raise(id)
	s.notifyChange(ChangeEvent{Type: ChangeWindow, ID: id})
	return true
}

// CloseWindow hides the window and removes it from the taskbar.
func (s *Shell) CloseWindow(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.lookupLocked(id)
	if !ok {
		return false
	}
	s.closeLocked(w)
	return true
}

func (s *Shell) closeLocked(w *window) {
	w.state = WindowClosed
	w.expiresAt = time.Time{}
	s.notifyChange(ChangeEvent{Type: ChangeWindow, ID: w.spec.ID})
}

// MinimizeWindow toggles a window between open and minimized. A minimized
// window stays in the taskbar; minimizing it again restores it. Closed
// windows are left alone.
func (s *Shell) MinimizeWindow(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.lookupLocked(id)
	if !ok {
		return false
	}

	switch w.state {
	case WindowOpen:
		w.state = WindowMinimized
	case WindowMinimized:
		w.state = WindowOpen
		s.stack.raise(id)
	default:
		return false
	}
	s.notifyChange(ChangeEvent{Type: ChangeWindow, ID: id})
	return true
}

// RestoreWindow reopens a minimized window and raises it.
func (s *Shell) RestoreWindow(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.lookupLocked(id)
	if !ok || w.state != WindowMinimized {
		return false
	}
	w.state = WindowOpen
	s.stack.raise(id)
	s.notifyChange(ChangeEvent{Type: ChangeWindow, ID: id})
	return true
}

// BringToFront raises an open window above every other window.
func (s *Shell) BringToFront(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.lookupLocked(id)
	if !ok || w.state != WindowOpen {
		return false
	}
	s.stack.raise(id)
	s.notifyChange(ChangeEvent{Type: ChangeWindow, ID: id})
	return true
}

// CloseAll closes every open window and returns how many were closed.
// Minimized windows are not open and keep their state.
func (s *Shell) CloseAll() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}

	n := 0
	for _, spec := range s.layout.Windows {
		w := s.windows[spec.ID]
		if w.state == WindowOpen {
			s.closeLocked(w)
			n++
		}
	}
	return n
}

// ToggleStartMenu flips the start menu and returns the new open state.
func (s *Shell) ToggleStartMenu() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.layout.HasStartMenu {
		return false
	}
	s.setStartMenuLocked(!s.startMenuOpen)
	return s.startMenuOpen
}

// StartMenuOpen reports whether the start menu is open.
func (s *Shell) StartMenuOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.startMenuOpen
}

// OpenStartMenu opens the start menu.
func (s *Shell) OpenStartMenu() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.layout.HasStartMenu {
		return
	}
	s.setStartMenuLocked(true)
}

// CloseStartMenu closes the start menu. Returns true if it was open.
func (s *Shell) CloseStartMenu() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.startMenuOpen {
		return false
	}
	s.setStartMenuLocked(false)
	return true
}

func (s *Shell) setStartMenuLocked(open bool) {
	if s.startMenuOpen == open {
		return
	}
	s.startMenuOpen = open
	s.notifyChange(ChangeEvent{Type: ChangeStartMenu})
}

// SelectFolder selects a sidebar folder. The matching gallery becomes the
// only visible one; a folder without a gallery hides them all.
// Returns false if folder is not listed in the sidebar.
func (s *Shell) SelectFolder(folder string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !slices.Contains(s.layout.Folders, folder) {
		return false
	}
	s.selectedFolder = folder
	s.notifyChange(ChangeEvent{Type: ChangeFolder, ID: folder})
	return true
}

// SetClock updates the clock text from t.
func (s *Shell) SetClock(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || !s.layout.HasClock {
		return
	}
	text := t.Format(s.opts.ClockLayout)
	if text == s.clockText {
		return
	}
	s.clockText = text
	s.notifyChange(ChangeEvent{Type: ChangeClock})
}

// lookupLocked finds an active window. Unknown ids are logged and ignored.
func (s *Shell) lookupLocked(id string) (*window, bool) {
	if s.closed {
		return nil, false
	}
	w, ok := s.windows[id]
	if !ok {
		s.logger.Debug("ignoring unknown window", "id", id)
		return nil, false
	}
	return w, true
}

// Subscribe returns a channel that receives change events.
// Events are dropped for subscribers that are not keeping up.
func (s *Shell) Subscribe() <-chan ChangeEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan ChangeEvent, 16)
	if s.closed {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

// Unsubscribe removes a channel returned by Subscribe and closes it.
func (s *Shell) Unsubscribe(ch <-chan ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subscribers {
		if sub == ch {
			s.subscribers = append(s.subscribers[:i], s.subscribers[i+1:]...)
			close(sub)
			return
		}
	}
}

// notifyChange sends a change event to all subscribers.
// Must be called with s.mu held.
func (s *Shell) notifyChange(event ChangeEvent) {
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber not keeping up, skip
		}
	}
}

// Close stops pending popup timers and closes subscriber channels.
func (s *Shell) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrShellClosed
	}
	s.closed = true

	for id, t := range s.popupTimers {
		t.Stop()
		delete(s.popupTimers, id)
	}
	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
	return nil
}
