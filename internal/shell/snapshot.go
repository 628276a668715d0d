package shell

import "time"

// WindowView is the derived presentation of one window.
type WindowView struct {
	ID        string      `json:"id" yaml:"id"`
	Title     string      `json:"title" yaml:"title"`
	Kind      WindowKind  `json:"kind" yaml:"kind"`
	State     WindowState `json:"state" yaml:"state"`
	Z         int         `json:"z_index" yaml:"z_index"`
	Front     bool        `json:"front,omitempty" yaml:"front,omitempty"`
	ExpiresAt time.Time   `json:"expires_at,omitzero" yaml:"expires_at,omitempty"`
}

// Visible reports whether the window is drawn on the desktop.
func (v WindowView) Visible() bool {
	return v.State == WindowOpen
}

// FolderView is one sidebar entry of the explorer.
type FolderView struct {
	Name     string `json:"name" yaml:"name"`
	Selected bool   `json:"selected" yaml:"selected"`
}

// GalleryView is one gallery group of the explorer.
type GalleryView struct {
	ID      string `json:"id" yaml:"id"`
	Visible bool   `json:"visible" yaml:"visible"`
}

// Snapshot is an immutable copy of the shell state with presentation
// derived from it.
type Snapshot struct {
	Windows       []WindowView  `json:"windows" yaml:"windows"`
	Front         string        `json:"front,omitempty" yaml:"front,omitempty"`
	StartMenuOpen bool          `json:"start_menu_open" yaml:"start_menu_open"`
	Folders       []FolderView  `json:"folders,omitempty" yaml:"folders,omitempty"`
	Galleries     []GalleryView `json:"galleries,omitempty" yaml:"galleries,omitempty"`
	Clock         string        `json:"clock,omitempty" yaml:"clock,omitempty"`
	TakenAt       time.Time     `json:"taken_at" yaml:"taken_at"`
}

// Window returns the view of window id.
func (s Snapshot) Window(id string) (WindowView, bool) {
	for _, w := range s.Windows {
		if w.ID == id {
			return w, true
		}
	}
	return WindowView{}, false
}

// StartMenuAriaHidden is the aria-hidden value mirroring the start menu.
func (s Snapshot) StartMenuAriaHidden() string {
	if s.StartMenuOpen {
		return "false"
	}
	return "true"
}

// Taskbar returns the regular windows that are open or minimized, in
// document order.
func (s Snapshot) Taskbar() []WindowView {
	var out []WindowView
	for _, w := range s.Windows {
		if w.Kind == WindowRegular && w.State != WindowClosed {
			out = append(out, w)
		}
	}
	return out
}

// VisibleGallery returns the id of the visible gallery, if any.
func (s Snapshot) VisibleGallery() string {
	for _, g := range s.Galleries {
		if g.Visible {
			return g.ID
		}
	}
	return ""
}

// Snapshot captures the current state.
func (s *Shell) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranks := s.stack.ranks()
	front := s.stack.front(func(id string) bool {
		w, ok := s.windows[id]
		return ok && w.state == WindowOpen
	})

	snap := Snapshot{
		Windows:       make([]WindowView, 0, len(s.layout.Windows)),
		Front:         front,
		StartMenuOpen: s.startMenuOpen,
		Clock:         s.clockText,
		TakenAt:       time.Now(),
	}

	for _, spec := range s.layout.Windows {
		w := s.windows[spec.ID]
		snap.Windows = append(snap.Windows, WindowView{
			ID:        spec.ID,
			Title:     spec.Title,
			Kind:      spec.Kind,
			State:     w.state,
			Z:         s.opts.BaseZ + ranks[spec.ID] + 1,
			Front:     spec.ID == front,
			ExpiresAt: w.expiresAt,
		})
	}

	for _, f := range s.layout.Folders {
		snap.Folders = append(snap.Folders, FolderView{
			Name:     f,
			Selected: f == s.selectedFolder,
		})
	}

	visible := ""
	if s.selectedFolder != "" {
		visible = s.opts.GalleryPrefix + s.selectedFolder
	}
	for _, g := range s.layout.Galleries {
		snap.Galleries = append(snap.Galleries, GalleryView{
			ID:      g.ID,
			Visible: g.ID == visible,
		})
	}

	return snap
}
