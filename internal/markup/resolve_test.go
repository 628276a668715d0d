package markup

import (
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/deskshell/internal/config"
	"github.com/jmylchreest/deskshell/internal/shell"
)

func TestResolve_Click(t *testing.T) {
	page := testPage(t)

	tests := []struct {
		target string
		want   shell.Target
	}{
		{"icon-about", shell.Target{Role: shell.RoleIcon, Window: "about"}},
		{"#icon-work .icon__label", shell.Target{Role: shell.RoleIcon, Window: "work"}},
		{"icon-trash", shell.Target{Role: shell.RoleDesktop}},
		{"desktop", shell.Target{Role: shell.RoleDesktop}},
		{`a[data-window="contact"]`, shell.Target{Role: shell.RoleMenubarLink, Window: "contact"}},
		{"about-close", shell.Target{Role: shell.RoleCloseButton, Window: "about"}},
		{"work-min", shell.Target{Role: shell.RoleMinButton, Window: "work"}},
		{"popup-hire-close", shell.Target{Role: shell.RoleCloseButton, Window: "popup-hire"}},
		{"start-button", shell.Target{Role: shell.RoleStartButton, InStartButton: true}},
		{".taskbar__start-label", shell.Target{Role: shell.RoleStartButton, InStartButton: true}},
		{"start-work", shell.Target{Role: shell.RoleStartMenuItem, Window: "work", InStartMenu: true}},
		{"start-shutdown", shell.Target{Role: shell.RoleStartMenu, InStartMenu: true}},
		{"folder-print", shell.Target{Role: shell.RoleFolderEntry, Window: "work", Folder: "print"}},
		{"#about .window__body p", shell.Target{Role: shell.RoleWindow, Window: "about"}},
		{"clock", shell.Target{Role: shell.RoleDesktop}},
		{"#missing, #contact-close", shell.Target{Role: shell.RoleCloseButton, Window: "contact"}},
		{".icon", shell.Target{Role: shell.RoleIcon, Window: "about"}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			ev, err := page.Resolve(EventSpec{Type: EventTypeClick, Target: tt.target}, shell.Snapshot{})
			require.NoError(t, err)
			assert.Equal(t, shell.EventClick, ev.Type)
			assert.Equal(t, tt.want, ev.Target)
		})
	}
}

func TestResolve_TaskbarEntry(t *testing.T) {
	page := testPage(t)
	s, _ := testShell(t, page)
	s.OpenWindow("contact")

	ev, err := page.Resolve(EventSpec{Type: EventTypeClick, Target: "taskbar-contact"}, s.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, shell.Target{Role: shell.RoleTaskbarEntry, Window: "contact"}, ev.Target)

	_, err = page.Resolve(EventSpec{Type: EventTypeClick, Target: "taskbar-about"}, s.Snapshot())
	assert.ErrorIs(t, err, ErrTargetNotFound, "closed windows have no taskbar entry")
}

func TestResolve_Errors(t *testing.T) {
	page := testPage(t)

	_, err := page.Resolve(EventSpec{Type: EventTypeClick, Target: "nope"}, shell.Snapshot{})
	assert.ErrorIs(t, err, ErrTargetNotFound)

	_, err = page.Resolve(EventSpec{Type: "hover", Target: "about"}, shell.Snapshot{})
	assert.ErrorIs(t, err, ErrUnknownEventType)

	_, err = page.Resolve(EventSpec{Type: EventTypeClick}, shell.Snapshot{})
	assert.ErrorIs(t, err, ErrEmptyEvent)

	_, err = page.Resolve(EventSpec{Type: EventTypeKey}, shell.Snapshot{})
	assert.ErrorIs(t, err, ErrEmptyEvent)

	_, err = page.Resolve(EventSpec{Type: EventTypeClick, Target: "#desktop [data-window"}, shell.Snapshot{})
	assert.ErrorIs(t, err, ErrInvalidSelector)
}

func TestResolve_Key(t *testing.T) {
	ev, err := testPage(t).Resolve(EventSpec{Type: EventTypeKey, Key: "Escape"}, shell.Snapshot{})
	require.NoError(t, err)
	assert.Equal(t, shell.KeyPress(shell.KeyEscape), ev)
}

func TestParseEventSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    EventSpec
		wantErr bool
	}{
		{"click:icon-about", EventSpec{Type: "click", Target: "icon-about"}, false},
		{"CLICK: #desktop .icon", EventSpec{Type: "click", Target: "#desktop .icon"}, false},
		{"key:Escape", EventSpec{Type: "key", Key: "Escape"}, false},
		{"click:a[data-window=about]", EventSpec{Type: "click", Target: "a[data-window=about]"}, false},
		{"hover:about", EventSpec{}, true},
		{"about", EventSpec{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEventSpec(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.TrimSpace(tt.in[strings.Index(tt.in, ":")+1:]), strings.TrimPrefix(got.String(), got.Type+":"))
		})
	}
}

// The desktop behaviors, driven end to end through page events.
func TestDesktopScenarios(t *testing.T) {
	page := testPage(t)

	click := func(t *testing.T, s *shell.Shell, d *shell.Dispatcher, target string) {
		t.Helper()
		ev, err := page.Resolve(EventSpec{Type: EventTypeClick, Target: target}, s.Snapshot())
		require.NoError(t, err)
		d.Dispatch(ev)
	}

	t.Run("icon opens and raises", func(t *testing.T) {
		s, d := testShell(t, page)
		click(t, s, d, "icon-contact")
		click(t, s, d, "icon-about")

		snap := s.Snapshot()
		assert.Equal(t, "about", snap.Front)
		assert.Equal(t, []string{"about", "contact"}, openIDs(snap))
	})

	t.Run("close hides only that window", func(t *testing.T) {
		s, d := testShell(t, page)
		click(t, s, d, "icon-about")
		click(t, s, d, "icon-work")
		click(t, s, d, "about-close")
		assert.Equal(t, []string{"work"}, openIDs(s.Snapshot()))
	})

	t.Run("escape hides every open window", func(t *testing.T) {
		s, d := testShell(t, page)
		click(t, s, d, "icon-about")
		click(t, s, d, "icon-work")
		s.ShowPopups()

		ev, err := page.Resolve(EventSpec{Type: EventTypeKey, Key: "Escape"}, s.Snapshot())
		require.NoError(t, err)
		d.Dispatch(ev)
		assert.Empty(t, openIDs(s.Snapshot()))
	})

	t.Run("folder shows one gallery", func(t *testing.T) {
		s, d := testShell(t, page)
		click(t, s, d, "icon-work")
		click(t, s, d, "folder-print")
		assert.Equal(t, "gallery-print", s.Snapshot().VisibleGallery())
	})

	t.Run("start button twice", func(t *testing.T) {
		s, d := testShell(t, page)
		click(t, s, d, "start-button")
		assert.Equal(t, "false", s.Snapshot().StartMenuAriaHidden())
		click(t, s, d, "start-button")
		assert.Equal(t, "true", s.Snapshot().StartMenuAriaHidden())
	})

	t.Run("start menu item opens and closes menu", func(t *testing.T) {
		s, d := testShell(t, page)
		click(t, s, d, "start-button")
		click(t, s, d, "start-contact")

		snap := s.Snapshot()
		assert.False(t, snap.StartMenuOpen)
		assert.Equal(t, "contact", snap.Front)
	})

	t.Run("click outside closes menu", func(t *testing.T) {
		s, d := testShell(t, page)
		click(t, s, d, "start-button")
		click(t, s, d, "start-shutdown")
		assert.True(t, s.StartMenuOpen(), "clicks inside the menu keep it open")
		click(t, s, d, "desktop")
		assert.False(t, s.StartMenuOpen())
	})

	t.Run("minimize then restore from taskbar", func(t *testing.T) {
		s, d := testShell(t, page)
		click(t, s, d, "icon-about")
		click(t, s, d, "about-min")
		assert.Empty(t, openIDs(s.Snapshot()))
		click(t, s, d, "taskbar-about")
		assert.Equal(t, []string{"about"}, openIDs(s.Snapshot()))
	})
}

func openIDs(snap shell.Snapshot) []string {
	var ids []string
	for _, w := range snap.Windows {
		if w.Visible() {
			ids = append(ids, w.ID)
		}
	}
	return ids
}

func TestWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "desktop.html")
	require.NoError(t, os.WriteFile(path, []byte(`<div class="window" id="one"></div>`), 0644))

	var windows atomic.Int32
	w, err := NewWatcher(path, config.DefaultConfig().Markup, nil, func(p *Page) {
		windows.Store(int32(len(p.Layout().Windows)))
	}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context()))
	defer w.Stop()

	require.NoError(t, os.WriteFile(path, []byte(`<div class="window" id="one"></div><div class="window" id="two"></div>`), 0644))

	assert.Eventually(t, func() bool {
		return windows.Load() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresBrokenPage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "desktop.html")
	require.NoError(t, os.WriteFile(path, []byte(`<div class="window" id="one"></div>`), 0644))

	var calls atomic.Int32
	w, err := NewWatcher(path, config.DefaultConfig().Markup, nil, func(*Page) {
		calls.Add(1)
	}, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context()))

	require.NoError(t, os.WriteFile(path, []byte(`<p>no windows</p>`), 0644))
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())

	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}
