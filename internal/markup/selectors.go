package markup

import (
	"errors"
	"fmt"

	"github.com/andybalholm/cascadia"

	"github.com/jmylchreest/deskshell/internal/config"
)

// ErrInvalidSelector is returned for a CSS selector that does not parse.
var ErrInvalidSelector = errors.New("invalid selector")

// validateSelectors checks every configured selector up front so a typo in
// the config fails loudly instead of matching nothing.
func validateSelectors(sel config.SelectorsConfig) error {
	named := []struct {
		name  string
		value string
	}{
		{"window", sel.Window},
		{"window_title", sel.WindowTitle},
		{"window_body", sel.WindowBody},
		{"desktop", sel.Desktop},
		{"icon", sel.Icon},
		{"menubar_link", sel.MenubarLink},
		{"close_button", sel.CloseButton},
		{"min_button", sel.MinButton},
		{"start_button", sel.StartButton},
		{"start_menu", sel.StartMenu},
		{"start_menu_item", sel.StartMenuItem},
		{"taskbar_list", sel.TaskbarList},
		{"taskbar_item", sel.TaskbarItem},
		{"folder_entry", sel.FolderEntry},
		{"gallery_set", sel.GallerySet},
		{"gallery_item", sel.GalleryItem},
		{"clock", sel.Clock},
	}

	var errs []error
	for _, s := range named {
		if s.value == "" {
			continue
		}
		if _, err := cascadia.ParseGroup(s.value); err != nil {
			errs = append(errs, fmt.Errorf("%w for %s %q: %v", ErrInvalidSelector, s.name, s.value, err))
		}
	}
	return errors.Join(errs...)
}

// compileTarget compiles a click target, treating a bare name as an id.
func compileTarget(target string) (cascadia.Selector, error) {
	sel, err := cascadia.Compile(targetSelector(target))
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidSelector, target, err)
	}
	return sel, nil
}
