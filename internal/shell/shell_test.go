package shell

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLayout() Layout {
	return Layout{
		Windows: []WindowSpec{
			{ID: "about", Title: "About Me"},
			{ID: "work", Title: "Work Explorer"},
			{ID: "contact", Title: "Contact"},
			{ID: "popup-love", Title: "Love", Kind: WindowPopup},
			{ID: "popup-hire", Title: "Hire", Kind: WindowPopup},
		},
		Icons: []Launcher{
			{Label: "About", Window: "about"},
			{Label: "Work", Window: "work"},
		},
		StartMenuItems: []Launcher{{Label: "Contact", Window: "contact"}},
		Folders:        []string{"web", "print", "empty"},
		Galleries: []Gallery{
			{ID: "gallery-web"},
			{ID: "gallery-print"},
		},
		InitialFolder: "web",
		HasStartMenu:  true,
		HasClock:      true,
	}
}

func newTestShell(t *testing.T, opts Options) *Shell {
	t.Helper()
	s := New(testLayout(), opts)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func visibleWindows(snap Snapshot) []string {
	var ids []string
	for _, w := range snap.Windows {
		if w.Visible() {
			ids = append(ids, w.ID)
		}
	}
	return ids
}

func TestNew_InitialState(t *testing.T) {
	s := newTestShell(t, DefaultOptions())
	snap := s.Snapshot()

	require.Len(t, snap.Windows, 5)
	assert.Empty(t, visibleWindows(snap))
	assert.Empty(t, snap.Front)
	assert.False(t, snap.StartMenuOpen)
	assert.Equal(t, "true", snap.StartMenuAriaHidden())
	assert.Equal(t, "gallery-web", snap.VisibleGallery())
}

func TestNew_InitiallyOpenWindow(t *testing.T) {
	layout := testLayout()
	layout.Windows[1].InitiallyOpen = true

	s := New(layout, DefaultOptions())
	defer s.Close()

	assert.Equal(t, []string{"work"}, visibleWindows(s.Snapshot()))
}

func TestOpenWindow(t *testing.T) {
	s := newTestShell(t, DefaultOptions())

	t.Run("opens and raises", func(t *testing.T) {
		require.True(t, s.OpenWindow("about"))
		require.True(t, s.OpenWindow("work"))

		snap := s.Snapshot()
		assert.ElementsMatch(t, []string{"about", "work"}, visibleWindows(snap))
		assert.Equal(t, "work", snap.Front)

		work, _ := snap.Window("work")
		for _, w := range snap.Windows {
			if w.ID != "work" {
				assert.Greater(t, work.Z, w.Z, "work must be above %s", w.ID)
			}
		}
	})

	t.Run("reopening raises again", func(t *testing.T) {
		require.True(t, s.OpenWindow("about"))
		assert.Equal(t, "about", s.Snapshot().Front)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		before := s.Snapshot()
		assert.False(t, s.OpenWindow("nope"))
		after := s.Snapshot()
		assert.Equal(t, before.Windows, after.Windows)
	})
}

func TestCloseWindow(t *testing.T) {
	s := newTestShell(t, DefaultOptions())
	s.OpenWindow("about")
	s.OpenWindow("work")

	require.True(t, s.CloseWindow("work"))

	snap := s.Snapshot()
	assert.Equal(t, []string{"about"}, visibleWindows(snap))
	assert.Equal(t, "about", snap.Front)
	require.Len(t, snap.Taskbar(), 1)
	assert.Equal(t, "about", snap.Taskbar()[0].ID)
}

func TestMinimizeWindow(t *testing.T) {
	s := newTestShell(t, DefaultOptions())
	s.OpenWindow("about")

	t.Run("minimized differs from closed", func(t *testing.T) {
		require.True(t, s.MinimizeWindow("about"))

		snap := s.Snapshot()
		w, _ := snap.Window("about")
		assert.Equal(t, WindowMinimized, w.State)
		assert.False(t, w.Visible())
		require.Len(t, snap.Taskbar(), 1)
		assert.Equal(t, "about", snap.Taskbar()[0].ID)
	})

	t.Run("minimizing again restores", func(t *testing.T) {
		require.True(t, s.MinimizeWindow("about"))
		w, _ := s.Snapshot().Window("about")
		assert.Equal(t, WindowOpen, w.State)
	})

	t.Run("closed window is left alone", func(t *testing.T) {
		assert.False(t, s.MinimizeWindow("contact"))
		w, _ := s.Snapshot().Window("contact")
		assert.Equal(t, WindowClosed, w.State)
	})
}

func TestRestoreWindow(t *testing.T) {
	s := newTestShell(t, DefaultOptions())
	s.OpenWindow("about")
	s.OpenWindow("work")
	s.MinimizeWindow("about")

	assert.False(t, s.RestoreWindow("work"), "open window is not restorable")
	require.True(t, s.RestoreWindow("about"))
	assert.Equal(t, "about", s.Snapshot().Front)
}

func TestBringToFront(t *testing.T) {
	s := newTestShell(t, DefaultOptions())
	s.OpenWindow("about")
	s.OpenWindow("work")
	s.OpenWindow("contact")

	require.True(t, s.BringToFront("about"))
	snap := s.Snapshot()
	assert.Equal(t, "about", snap.Front)

	about, _ := snap.Window("about")
	contact, _ := snap.Window("contact")
	work, _ := snap.Window("work")
	assert.Greater(t, about.Z, contact.Z)
	assert.Greater(t, contact.Z, work.Z)

	assert.False(t, s.BringToFront("popup-love"), "closed windows are not raised")
}

func TestZIndexStartsAboveBase(t *testing.T) {
	s := newTestShell(t, Options{BaseZ: 50})
	for _, w := range s.Snapshot().Windows {
		assert.Greater(t, w.Z, 50)
	}
}

func TestCloseAll(t *testing.T) {
	s := newTestShell(t, DefaultOptions())
	s.OpenWindow("about")
	s.OpenWindow("work")
	s.OpenWindow("contact")
	s.MinimizeWindow("contact")

	assert.Equal(t, 2, s.CloseAll())

	snap := s.Snapshot()
	assert.Empty(t, visibleWindows(snap))
	w, _ := snap.Window("contact")
	assert.Equal(t, WindowMinimized, w.State)
}

func TestStartMenuToggle(t *testing.T) {
	s := newTestShell(t, DefaultOptions())

	assert.True(t, s.ToggleStartMenu())
	assert.Equal(t, "false", s.Snapshot().StartMenuAriaHidden())

	assert.False(t, s.ToggleStartMenu())
	assert.Equal(t, "true", s.Snapshot().StartMenuAriaHidden())

	assert.False(t, s.CloseStartMenu(), "already closed")
	s.OpenStartMenu()
	assert.True(t, s.StartMenuOpen())
}

func TestStartMenuMissing(t *testing.T) {
	layout := testLayout()
	layout.HasStartMenu = false
	s := New(layout, DefaultOptions())
	defer s.Close()

	assert.False(t, s.ToggleStartMenu())
	assert.False(t, s.Snapshot().StartMenuOpen)
}

func TestSelectFolder(t *testing.T) {
	s := newTestShell(t, DefaultOptions())

	tests := []struct {
		folder  string
		ok      bool
		visible string
	}{
		{"print", true, "gallery-print"},
		{"web", true, "gallery-web"},
		{"empty", true, ""},
		{"missing", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.folder, func(t *testing.T) {
			assert.Equal(t, tt.ok, s.SelectFolder(tt.folder))
			if !tt.ok {
				return
			}

			snap := s.Snapshot()
			assert.Equal(t, tt.visible, snap.VisibleGallery())

			visible := 0
			for _, g := range snap.Galleries {
				if g.Visible {
					visible++
				}
			}
			assert.LessOrEqual(t, visible, 1)

			for _, f := range snap.Folders {
				assert.Equal(t, f.Name == tt.folder, f.Selected, f.Name)
			}
		})
	}
}

func TestSetClock(t *testing.T) {
	s := newTestShell(t, DefaultOptions())
	ch := s.Subscribe()

	at := time.Date(2024, 5, 1, 9, 7, 30, 0, time.UTC)
	s.SetClock(at)
	assert.Equal(t, "09:07", s.Snapshot().Clock)

	ev := <-ch
	assert.Equal(t, ChangeClock, ev.Type)

	// Same minute: no change event.
	s.SetClock(at.Add(10 * time.Second))
	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v", ev)
	default:
	}
}

func TestSubscribe(t *testing.T) {
	s := New(testLayout(), DefaultOptions())
	ch := s.Subscribe()

	s.OpenWindow("about")
	ev := <-ch
	assert.Equal(t, ChangeWindow, ev.Type)
	assert.Equal(t, "about", ev.ID)

	require.NoError(t, s.Close())
	_, ok := <-ch
	assert.False(t, ok, "channel closed with the shell")

	assert.ErrorIs(t, s.Close(), ErrShellClosed)
	assert.False(t, s.OpenWindow("about"))
}

func TestUnsubscribe(t *testing.T) {
	s := newTestShell(t, DefaultOptions())
	ch := s.Subscribe()
	s.Unsubscribe(ch)

	_, ok := <-ch
	assert.False(t, ok)
}

func TestReload(t *testing.T) {
	s := newTestShell(t, DefaultOptions())
	s.OpenWindow("about")
	s.OpenWindow("contact")
	s.SelectFolder("print")

	layout := testLayout()
	layout.Windows = append(layout.Windows[:2], WindowSpec{ID: "notes", Title: "Notes"})
	layout.Folders = []string{"web"}
	s.Reload(layout)

	snap := s.Snapshot()
	require.Len(t, snap.Windows, 3)
	assert.Equal(t, []string{"about"}, visibleWindows(snap))
	assert.Equal(t, "gallery-web", snap.VisibleGallery(), "selection falls back to the initial folder")

	notes, ok := snap.Window("notes")
	require.True(t, ok)
	assert.Equal(t, WindowClosed, notes.State)
}

func TestSnapshot_JSONRoundTrip(t *testing.T) {
	opts := DefaultOptions()
	opts.PopupDelay = 0
	s := newTestShell(t, opts)
	s.ShowPopups()
	s.OpenWindow("about")
	s.MinimizeWindow("about")
	s.OpenWindow("work")

	snap := s.Snapshot()
	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var back Snapshot
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, snap.Windows, back.Windows)
	assert.Equal(t, snap.Folders, back.Folders)
	assert.Equal(t, snap.Galleries, back.Galleries)
	assert.Equal(t, "work", back.Front)

	popup, ok := back.Window("popup-love")
	require.True(t, ok)
	assert.Equal(t, WindowPopup, popup.Kind)
	about, _ := back.Window("about")
	assert.Equal(t, WindowMinimized, about.State)
}

func TestWindowKind_UnmarshalText(t *testing.T) {
	var k WindowKind
	require.NoError(t, k.UnmarshalText([]byte("popup")))
	assert.Equal(t, WindowPopup, k)
	require.NoError(t, k.UnmarshalText([]byte("regular")))
	assert.Equal(t, WindowRegular, k)
	assert.Error(t, k.UnmarshalText([]byte("dialog")))
}
