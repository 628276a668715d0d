package markup

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmylchreest/deskshell/internal/shell"
)

// Class names written into rendered taskbar entries.
const (
	taskbarItemClass      = "taskbar__item"
	taskbarItemActive     = "taskbar__item--active"
	taskbarItemMinimized  = "taskbar__item--minimized"
	taskbarItemIDPrefix   = "taskbar-"
	frontWindowAttribute  = "data-front"
	popupExpiresAttribute = "data-expires-at"
)

// Document returns a fresh copy of the page with snap applied.
func (p *Page) Document(snap shell.Snapshot) (*goquery.Document, error) {
	doc, err := p.document()
	if err != nil {
		return nil, err
	}
	p.apply(doc, snap)
	return doc, nil
}

// Render writes the page with snap applied to w.
func (p *Page) Render(w io.Writer, snap shell.Snapshot) error {
	doc, err := p.Document(snap)
	if err != nil {
		return err
	}

	out, err := doc.Html()
	if err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

func (p *Page) apply(doc *goquery.Document, snap shell.Snapshot) {
	sel := p.cfg.Selectors
	cls := p.cfg.Classes

	doc.Find(sel.Window).Each(func(_ int, el *goquery.Selection) {
		view, ok := snap.Window(el.AttrOr("id", ""))
		if !ok {
			return
		}
		toggleClass(el, cls.Open, view.State == shell.WindowOpen)
		toggleClass(el, cls.Minimized, view.State == shell.WindowMinimized)

		display := "none"
		if view.Visible() {
			display = "flex"
		}
		setStyle(el, "display", display)
		setStyle(el, "z-index", strconv.Itoa(view.Z))

		if view.Front {
			el.SetAttr(frontWindowAttribute, "true")
		} else {
			el.RemoveAttr(frontWindowAttribute)
		}
		if !view.ExpiresAt.IsZero() && view.Visible() {
			el.SetAttr(popupExpiresAttribute, view.ExpiresAt.UTC().Format(time.RFC3339))
		} else {
			el.RemoveAttr(popupExpiresAttribute)
		}
	})

	if sel.StartMenu != "" {
		menu := doc.Find(sel.StartMenu)
		toggleClass(menu, cls.StartMenuOpen, snap.StartMenuOpen)
		menu.SetAttr("aria-hidden", snap.StartMenuAriaHidden())
	}

	selected := ""
	for _, f := range snap.Folders {
		if f.Selected {
			selected = f.Name
		}
	}
	if sel.FolderEntry != "" {
		doc.Find(sel.FolderEntry).Each(func(_ int, el *goquery.Selection) {
			toggleClass(el, cls.Selected, selected != "" && el.AttrOr("data-folder", "") == selected)
		})
	}

	// Until a folder is selected the galleries keep their markup visibility.
	if selected != "" {
		visible := snap.VisibleGallery()
		doc.Find(sel.GallerySet).Each(func(_ int, el *goquery.Selection) {
			if visible != "" && el.AttrOr("id", "") == visible {
				el.RemoveAttr("hidden")
			} else {
				el.SetAttr("hidden", "")
			}
		})
	}

	if sel.TaskbarList != "" {
		renderTaskbar(doc.Find(sel.TaskbarList).First(), snap)
	}

	if sel.Clock != "" && snap.Clock != "" {
		doc.Find(sel.Clock).SetText(snap.Clock)
	}
}

func renderTaskbar(list *goquery.Selection, snap shell.Snapshot) {
	if list.Length() == 0 {
		return
	}
	list.Empty()
	for _, w := range snap.Taskbar() {
		list.AppendHtml(`<button type="button"></button>`)
		item := list.Children().Last()
		item.SetAttr("id", taskbarItemIDPrefix+w.ID)
		item.SetAttr("data-window", w.ID)
		item.AddClass(taskbarItemClass)
		toggleClass(item, taskbarItemActive, w.Front)
		toggleClass(item, taskbarItemMinimized, w.State == shell.WindowMinimized)
		item.SetText(w.Title)
	}
}

func toggleClass(el *goquery.Selection, class string, on bool) {
	if class == "" {
		return
	}
	if on {
		el.AddClass(class)
	} else {
		el.RemoveClass(class)
	}
}

// setStyle sets one property of el's inline style, keeping the others in
// their original order.
func setStyle(el *goquery.Selection, property, value string) {
	var decls []string
	replaced := false
	for _, decl := range strings.Split(el.AttrOr("style", ""), ";") {
		name, _, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), property) {
			if !replaced {
				decls = append(decls, property+": "+value)
				replaced = true
			}
			continue
		}
		decls = append(decls, strings.TrimSpace(decl))
	}
	if !replaced {
		decls = append(decls, property+": "+value)
	}
	el.SetAttr("style", strings.Join(decls, "; "))
}
