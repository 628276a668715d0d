// Package markup discovers the desktop layout in an HTML page and renders
// shell state back into it.
package markup

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/jmylchreest/deskshell/internal/config"
	"github.com/jmylchreest/deskshell/internal/shell"
)

// ErrNoWindows is returned when a page contains no usable window elements.
var ErrNoWindows = errors.New("page contains no windows")

// Page is a parsed desktop page. It is immutable; every render starts from
// the original bytes.
type Page struct {
	raw    []byte
	cfg    config.MarkupConfig
	layout shell.Layout
}

// Parse parses data as a desktop page. popups names the windows treated as
// popups.
func Parse(data []byte, cfg config.MarkupConfig, popups []string) (*Page, error) {
	if err := validateSelectors(cfg.Selectors); err != nil {
		return nil, err
	}

	p := &Page{
		raw: append([]byte(nil), data...),
		cfg: cfg,
	}

	doc, err := p.document()
	if err != nil {
		return nil, err
	}

	p.layout = discover(doc, cfg, popups)
	if len(p.layout.Windows) == 0 {
		return nil, ErrNoWindows
	}
	return p, nil
}

// Layout returns the layout discovered in the page.
func (p *Page) Layout() shell.Layout {
	return p.layout
}

// Config returns the markup conventions the page was parsed with.
func (p *Page) Config() config.MarkupConfig {
	return p.cfg
}

// Bytes returns the unmodified page source.
func (p *Page) Bytes() []byte {
	return append([]byte(nil), p.raw...)
}

// document parses a fresh copy of the page.
func (p *Page) document() (*goquery.Document, error) {
	root, err := html.Parse(bytes.NewReader(p.raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

func discover(doc *goquery.Document, cfg config.MarkupConfig, popups []string) shell.Layout {
	sel := cfg.Selectors
	var layout shell.Layout

	seen := make(map[string]bool)
	doc.Find(sel.Window).Each(func(_ int, el *goquery.Selection) {
		id := strings.TrimSpace(el.AttrOr("id", ""))
		if id == "" || seen[id] {
			return
		}
		seen[id] = true

		spec := shell.WindowSpec{
			ID:            id,
			Title:         id,
			InitiallyOpen: el.HasClass(cfg.Classes.Open),
		}
		if sel.WindowTitle != "" {
			if title := collapse(el.Find(sel.WindowTitle).First().Text()); title != "" {
				spec.Title = title
			}
		}
		if sel.WindowBody != "" {
			spec.Body = collapse(el.Find(sel.WindowBody).First().Text())
		}
		if slices.Contains(popups, id) {
			spec.Kind = shell.WindowPopup
		}
		layout.Windows = append(layout.Windows, spec)
	})

	icons := doc.Selection
	if sel.Desktop != "" {
		icons = doc.Find(sel.Desktop)
	}
	layout.Icons = launchers(icons, sel.Icon)
	layout.MenubarLinks = launchers(doc.Selection, sel.MenubarLink)
	layout.StartMenuItems = launchers(doc.Selection, sel.StartMenuItem)

	if sel.FolderEntry != "" {
		doc.Find(sel.FolderEntry).Each(func(_ int, el *goquery.Selection) {
			folder := strings.TrimSpace(el.AttrOr("data-folder", ""))
			if folder == "" || slices.Contains(layout.Folders, folder) {
				return
			}
			layout.Folders = append(layout.Folders, folder)
			if layout.FolderWindow == "" {
				layout.FolderWindow = closest(el, sel.Window).AttrOr("id", "")
			}
			if layout.InitialFolder == "" && el.HasClass(cfg.Classes.Selected) {
				layout.InitialFolder = folder
			}
		})
	}

	doc.Find(sel.GallerySet).Each(func(_ int, el *goquery.Selection) {
		id := strings.TrimSpace(el.AttrOr("id", ""))
		if id == "" {
			return
		}
		g := shell.Gallery{ID: id}
		if sel.GalleryItem != "" {
			el.Find(sel.GalleryItem).Each(func(_ int, item *goquery.Selection) {
				if text := label(item); text != "" {
					g.Items = append(g.Items, text)
				}
			})
		}
		layout.Galleries = append(layout.Galleries, g)
	})

	layout.HasStartMenu = present(doc, sel.StartMenu) && present(doc, sel.StartButton)
	layout.HasClock = present(doc, sel.Clock)
	return layout
}

func launchers(scope *goquery.Selection, selector string) []shell.Launcher {
	if selector == "" {
		return nil
	}
	var out []shell.Launcher
	scope.Find(selector).Each(func(_ int, el *goquery.Selection) {
		target := strings.TrimSpace(el.AttrOr("data-window", ""))
		if target == "" {
			return
		}
		out = append(out, shell.Launcher{Label: label(el), Window: target})
	})
	return out
}

// label returns the visible text of el, falling back to its accessible name.
func label(el *goquery.Selection) string {
	if text := collapse(el.Text()); text != "" {
		return text
	}
	for _, attr := range []string{"aria-label", "title", "alt"} {
		if v := strings.TrimSpace(el.AttrOr(attr, "")); v != "" {
			return v
		}
	}
	return ""
}

func present(doc *goquery.Document, selector string) bool {
	return selector != "" && doc.Find(selector).Length() > 0
}

// collapse trims s and folds internal whitespace runs to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
