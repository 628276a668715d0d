package markup

import (
	"embed"
	"fmt"
	"os"

	"github.com/jmylchreest/deskshell/internal/config"
)

// EmbeddedPages contains the bundled desktop page.
//
//go:embed pages/*.html
var EmbeddedPages embed.FS

// DefaultPageName is the file name of the built-in desktop page.
const DefaultPageName = "desktop.html"

// DefaultPage returns the bundled desktop page.
func DefaultPage() []byte {
	data, err := EmbeddedPages.ReadFile("pages/" + DefaultPageName)
	if err != nil {
		// The page is compiled in; a missing file is a build defect.
		panic(fmt.Sprintf("markup: embedded page missing: %v", err))
	}
	return data
}

// Load reads and parses the page at path, or the bundled page when path is
// empty.
func Load(path string, cfg config.MarkupConfig, popups []string) (*Page, error) {
	if path == "" {
		return Parse(DefaultPage(), cfg, popups)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read page: %w", err)
	}
	return Parse(data, cfg, popups)
}
