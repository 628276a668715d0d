package shell

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *Shell) {
	t.Helper()
	s := newTestShell(t, DefaultOptions())
	return NewDispatcher(s, nil), s
}

func TestDispatch_IconOpensWindow(t *testing.T) {
	d, s := newTestDispatcher(t)
	s.OpenWindow("contact")

	require.True(t, d.Dispatch(Click(Target{Role: RoleIcon, Window: "work"})))

	snap := s.Snapshot()
	w, _ := snap.Window("work")
	assert.True(t, w.Visible())
	assert.Equal(t, "work", snap.Front)
	for _, other := range snap.Windows {
		if other.ID != "work" {
			assert.Greater(t, w.Z, other.Z)
		}
	}
}

func TestDispatch_IconWithoutTarget(t *testing.T) {
	d, s := newTestDispatcher(t)

	assert.False(t, d.Dispatch(Click(Target{Role: RoleIcon})))
	assert.False(t, d.Dispatch(Click(Target{Role: RoleMenubarLink, Window: "ghost"})))
	assert.Empty(t, visibleWindows(s.Snapshot()))
}

func TestDispatch_CloseButton(t *testing.T) {
	d, s := newTestDispatcher(t)
	s.OpenWindow("about")
	s.OpenWindow("work")

	d.Dispatch(Click(Target{Role: RoleCloseButton, Window: "work"}))

	assert.Equal(t, []string{"about"}, visibleWindows(s.Snapshot()))
}

func TestDispatch_MinButton(t *testing.T) {
	d, s := newTestDispatcher(t)
	s.OpenWindow("about")

	d.Dispatch(Click(Target{Role: RoleMinButton, Window: "about"}))
	w, _ := s.Snapshot().Window("about")
	assert.Equal(t, WindowMinimized, w.State)

	d.Dispatch(Click(Target{Role: RoleTaskbarEntry, Window: "about"}))
	w, _ = s.Snapshot().Window("about")
	assert.Equal(t, WindowOpen, w.State)
}

func TestDispatch_EscapeClosesOpenWindows(t *testing.T) {
	d, s := newTestDispatcher(t)
	s.OpenWindow("about")
	s.OpenWindow("work")
	s.ShowPopups()

	require.True(t, d.Dispatch(KeyPress(KeyEscape)))
	assert.Empty(t, visibleWindows(s.Snapshot()))

	assert.False(t, d.Dispatch(KeyPress(KeyEscape)), "nothing left to close")
	assert.False(t, d.Dispatch(KeyPress("Enter")))
}

func TestDispatch_FolderEntry(t *testing.T) {
	d, s := newTestDispatcher(t)
	s.OpenWindow("work")
	s.OpenWindow("about")

	d.Dispatch(Click(Target{Role: RoleFolderEntry, Folder: "print", Window: "work"}))

	snap := s.Snapshot()
	assert.Equal(t, "gallery-print", snap.VisibleGallery())
	assert.Equal(t, "work", snap.Front, "clicking inside the explorer raises it")
	for _, f := range snap.Folders {
		assert.Equal(t, f.Name == "print", f.Selected)
	}
}

func TestDispatch_StartButtonTwice(t *testing.T) {
	d, s := newTestDispatcher(t)
	start := Target{Role: RoleStartButton, InStartButton: true}

	d.Dispatch(Click(start))
	snap := s.Snapshot()
	assert.True(t, snap.StartMenuOpen)
	assert.Equal(t, "false", snap.StartMenuAriaHidden())

	d.Dispatch(Click(start))
	snap = s.Snapshot()
	assert.False(t, snap.StartMenuOpen)
	assert.Equal(t, "true", snap.StartMenuAriaHidden())
}

func TestDispatch_StartMenuItem(t *testing.T) {
	d, s := newTestDispatcher(t)
	s.OpenStartMenu()

	d.Dispatch(Click(Target{Role: RoleStartMenuItem, Window: "contact", InStartMenu: true}))

	snap := s.Snapshot()
	assert.False(t, snap.StartMenuOpen)
	w, _ := snap.Window("contact")
	assert.True(t, w.Visible())
}

func TestDispatch_ClickOutsideClosesStartMenu(t *testing.T) {
	tests := []struct {
		name   string
		target Target
		open   bool
	}{
		{"desktop", Target{Role: RoleDesktop}, false},
		{"window body", Target{Role: RoleWindow, Window: "about"}, false},
		{"inside menu", Target{Role: RoleStartMenu, InStartMenu: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, s := newTestDispatcher(t)
			s.OpenStartMenu()

			d.Dispatch(Click(tt.target))
			assert.Equal(t, tt.open, s.StartMenuOpen())
		})
	}
}

func TestDispatch_WindowClickRaises(t *testing.T) {
	d, s := newTestDispatcher(t)
	s.OpenWindow("about")
	s.OpenWindow("work")

	d.Dispatch(Click(Target{Role: RoleWindow, Window: "about"}))
	assert.Equal(t, "about", s.Snapshot().Front)
}

func TestDispatch_CustomHandler(t *testing.T) {
	d, _ := newTestDispatcher(t)

	var seen []string
	d.Handle("recorder", func(_ *Shell, ev Event) bool {
		seen = append(seen, ev.Key)
		return false
	})

	d.Dispatch(KeyPress("a"))
	d.Dispatch(KeyPress("b"))
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestRole_String(t *testing.T) {
	assert.Equal(t, "start-button", RoleStartButton.String())
	assert.Equal(t, "unknown", Role(99).String())
}

func TestTarget_JSONRoundTrip(t *testing.T) {
	want := Target{Role: RoleStartMenuItem, Window: "work", InStartMenu: true}
	data, err := json.Marshal(want)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"role":"start-menu-item"`)

	var got Target
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, want, got)

	var r Role
	assert.Error(t, r.UnmarshalText([]byte("unknown")))
}
