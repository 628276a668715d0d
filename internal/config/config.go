// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultClockLayout   = "15:04"
	DefaultClockInterval = time.Second
	DefaultPopupDelay    = 5 * time.Second
	DefaultBaseZ         = 50
	DefaultGalleryPrefix = "gallery-"
	DefaultServerAddr    = ":8080"
)

// DefaultPopups lists the popup windows shown at startup.
var DefaultPopups = []string{"popup-love", "popup-swag", "popup-hire", "popup-compromised"}

// Config represents the deskshell configuration.
type Config struct {
	Markup MarkupConfig `toml:"markup"`
	Clock  ClockConfig  `toml:"clock"`
	Popups PopupConfig  `toml:"popups"`
	Stack  StackConfig  `toml:"stack"`
	Server ServerConfig `toml:"server"`
	TUI    TUIConfig    `toml:"tui"`
}

// MarkupConfig describes the desktop page and the conventions used to find
// its elements.
type MarkupConfig struct {
	Page          string          `toml:"page"`           // Path to the page (empty = embedded page)
	Watch         bool            `toml:"watch"`          // Reload the page when it changes on disk
	GalleryPrefix string          `toml:"gallery_prefix"` // Gallery id = prefix + folder name
	Selectors     SelectorsConfig `toml:"selectors"`
	Classes       ClassesConfig   `toml:"classes"`
}

// SelectorsConfig holds the CSS selectors locating each collaborator.
type SelectorsConfig struct {
	Window        string `toml:"window"`
	WindowTitle   string `toml:"window_title"`
	WindowBody    string `toml:"window_body"`
	Desktop       string `toml:"desktop"`
	Icon          string `toml:"icon"`
	MenubarLink   string `toml:"menubar_link"`
	CloseButton   string `toml:"close_button"`
	MinButton     string `toml:"min_button"`
	StartButton   string `toml:"start_button"`
	StartMenu     string `toml:"start_menu"`
	StartMenuItem string `toml:"start_menu_item"`
	TaskbarList   string `toml:"taskbar_list"` // Container receiving one entry per taskbar window
	TaskbarItem   string `toml:"taskbar_item"`
	FolderEntry   string `toml:"folder_entry"`
	GallerySet    string `toml:"gallery_set"`
	GalleryItem   string `toml:"gallery_item"`
	Clock         string `toml:"clock"`
}

// ClassesConfig holds the CSS class names used as state flags.
type ClassesConfig struct {
	Open          string `toml:"open"`
	Minimized     string `toml:"minimized"`
	Selected      string `toml:"selected"`
	StartMenuOpen string `toml:"start_menu_open"`
}

// ClockConfig holds taskbar clock settings.
type ClockConfig struct {
	Layout   string   `toml:"layout"`   // Go time layout, e.g. "15:04" or "3:04 PM"
	Interval Duration `toml:"interval"` // Refresh interval
}

// PopupConfig holds startup popup settings.
type PopupConfig struct {
	Enabled bool     `toml:"enabled"`
	IDs     []string `toml:"ids"`   // Window ids treated as popups
	Delay   Duration `toml:"delay"` // Auto-dismiss delay ("0" = never)
}

// StackConfig holds window stacking settings.
type StackConfig struct {
	BaseZ int `toml:"base_z"` // Lowest z-index handed to a window
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Addr     string `toml:"addr"`
	AllowAll bool   `toml:"allow_all_origins"` // Allow all CORS origins (dev mode)
}

// TUIConfig holds TUI-specific settings.
type TUIConfig struct {
	ShowHelp  bool `toml:"show_help"`
	AltScreen bool `toml:"alt_screen"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Markup: MarkupConfig{
			Page:          "", // Embedded page
			Watch:         true,
			GalleryPrefix: DefaultGalleryPrefix,
			Selectors: SelectorsConfig{
				Window:        ".window",
				WindowTitle:   ".titlebar__title",
				WindowBody:    ".window__body",
				Desktop:       "#desktop",
				Icon:          ".icon[data-window]",
				MenubarLink:   ".menubar__link[data-window]",
				CloseButton:   ".titlebar__button.close, .window .close",
				MinButton:     ".titlebar__button.min, .window .min",
				StartButton:   ".taskbar__start",
				StartMenu:     "#start-menu",
				StartMenuItem: "#start-menu .start-menu__item[data-window]",
				TaskbarList:   ".taskbar__windows",
				TaskbarItem:   ".taskbar__item[data-window]",
				FolderEntry:   ".work__sidebar li[data-folder]",
				GallerySet:    ".gallery-set",
				GalleryItem:   ".gallery-item",
				Clock:         "#clock",
			},
			Classes: ClassesConfig{
				Open:          "window--open",
				Minimized:     "window--minimized",
				Selected:      "selected",
				StartMenuOpen: "start-menu--open",
			},
		},
		Clock: ClockConfig{
			Layout:   DefaultClockLayout,
			Interval: Duration(DefaultClockInterval),
		},
		Popups: PopupConfig{
			Enabled: true,
			IDs:     append([]string(nil), DefaultPopups...),
			Delay:   Duration(DefaultPopupDelay),
		},
		Stack: StackConfig{
			BaseZ: DefaultBaseZ,
		},
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
		TUI: TUIConfig{
			ShowHelp:  true,
			AltScreen: true,
		},
	}
}

// ConfigPath returns the path to the config file.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config.
func ConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "deskshell", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	// Start with defaults
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			// No config file, use defaults
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Clock.Layout == "" {
		return errors.New("clock layout cannot be empty")
	}
	if c.Clock.Interval.Duration() <= 0 {
		return fmt.Errorf("clock interval must be positive, got %s", c.Clock.Interval.Duration())
	}
	if c.Popups.Delay.Duration() < 0 {
		return fmt.Errorf("popup delay cannot be negative, got %s", c.Popups.Delay.Duration())
	}
	if c.Stack.BaseZ < 0 {
		return fmt.Errorf("base_z cannot be negative, got %d", c.Stack.BaseZ)
	}

	sel := c.Markup.Selectors
	required := map[string]string{
		"window":       sel.Window,
		"close_button": sel.CloseButton,
		"min_button":   sel.MinButton,
		"gallery_set":  sel.GallerySet,
	}
	for name, value := range required {
		if value == "" {
			return fmt.Errorf("selector %q cannot be empty", name)
		}
	}

	cls := c.Markup.Classes
	if cls.Open == "" || cls.Minimized == "" || cls.Selected == "" || cls.StartMenuOpen == "" {
		return errors.New("state class names cannot be empty")
	}

	return nil
}

// PopupIDs returns the popup ids in effect, none when popups are disabled.
func (c *Config) PopupIDs() []string {
	if !c.Popups.Enabled {
		return nil
	}
	return c.Popups.IDs
}
