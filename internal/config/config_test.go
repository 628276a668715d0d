package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Empty(t, cfg.Markup.Page)
	assert.True(t, cfg.Markup.Watch)
	assert.Equal(t, "gallery-", cfg.Markup.GalleryPrefix)
	assert.Equal(t, "#clock", cfg.Markup.Selectors.Clock)
	assert.Equal(t, "window--open", cfg.Markup.Classes.Open)
	assert.Equal(t, "15:04", cfg.Clock.Layout)
	assert.Equal(t, time.Second, cfg.Clock.Interval.Duration())
	assert.Equal(t, 5*time.Second, cfg.Popups.Delay.Duration())
	assert.Len(t, cfg.Popups.IDs, 4)
	assert.Equal(t, 50, cfg.Stack.BaseZ)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.True(t, cfg.TUI.ShowHelp)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultConfig_PopupsNotShared(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Popups.IDs[0] = "changed"
	assert.Equal(t, "popup-love", DefaultPopups[0])
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	// Use a path that doesn't exist
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Clock.Layout, cfg.Clock.Layout)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[markup]
page = "/srv/desktop.html"
watch = false
gallery_prefix = "set-"

[markup.classes]
open = "is-open"

[clock]
layout = "3:04 PM"
interval = "500ms"

[popups]
ids = ["popup-love"]
delay = "2s"

[stack]
base_z = 100

[server]
addr = "127.0.0.1:9000"
allow_all_origins = true

[tui]
show_help = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/srv/desktop.html", cfg.Markup.Page)
	assert.False(t, cfg.Markup.Watch)
	assert.Equal(t, "set-", cfg.Markup.GalleryPrefix)
	assert.Equal(t, "is-open", cfg.Markup.Classes.Open)
	assert.Equal(t, "window--minimized", cfg.Markup.Classes.Minimized)
	assert.Equal(t, "3:04 PM", cfg.Clock.Layout)
	assert.Equal(t, 500*time.Millisecond, cfg.Clock.Interval.Duration())
	assert.Equal(t, []string{"popup-love"}, cfg.Popups.IDs)
	assert.Equal(t, 2*time.Second, cfg.Popups.Delay.Duration())
	assert.Equal(t, 100, cfg.Stack.BaseZ)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.AllowAll)
	assert.False(t, cfg.TUI.ShowHelp)
}

func TestLoadConfig_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[popups]
delay = "0"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	// Changed field
	assert.Equal(t, time.Duration(0), cfg.Popups.Delay.Duration())

	// Unchanged fields should have defaults
	assert.Equal(t, "15:04", cfg.Clock.Layout)
	assert.Len(t, cfg.Popups.IDs, 4)
	assert.True(t, cfg.Popups.Enabled)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	require.NoError(t, os.WriteFile(path, []byte(`this is not valid toml [`), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad duration", "[clock]\ninterval = \"soon\"\n"},
		{"zero interval", "[clock]\ninterval = \"0\"\n"},
		{"empty layout", "[clock]\nlayout = \"\"\n"},
		{"negative base", "[stack]\nbase_z = -1\n"},
		{"empty selector", "[markup.selectors]\nwindow = \"\"\n"},
		{"empty class", "[markup.classes]\nselected = \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestConfig_Save(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.toml")

	cfg := DefaultConfig()
	cfg.Clock.Layout = "15:04:05"
	cfg.Popups.Delay = Duration(1500 * time.Millisecond)

	require.NoError(t, cfg.Save(path))

	_, err := os.Stat(path)
	require.NoError(t, err)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "15:04:05", loaded.Clock.Layout)
	assert.Equal(t, 1500*time.Millisecond, loaded.Popups.Delay.Duration())
}

func TestConfig_PopupIDs(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultPopups, cfg.PopupIDs())

	cfg.Popups.Enabled = false
	assert.Nil(t, cfg.PopupIDs())
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"5s", 5 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{"250", 250 * time.Millisecond, false},
		{"0", 0, false},
		{"later", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration())
		})
	}
}

func TestDuration_Milliseconds(t *testing.T) {
	assert.Equal(t, 1500, Duration(1500*time.Millisecond).Milliseconds())
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/deskshell/config.toml", ConfigPath())
}

func TestConfigPathDefault(t *testing.T) {
	path := ConfigPath()
	assert.Contains(t, path, "deskshell/config.toml")
}
