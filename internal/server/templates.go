package server

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const (
	ListingTemplateName = "dirlist.html"
	ErrorTemplateName   = "error.html"
)

//go:embed templates/*.html
var builtinTemplates embed.FS

// Templates holds the page skeletons. Placeholders are replaced verbatim;
// substituted values are not HTML-escaped.
type Templates struct {
	Listing string
	Error   string
}

func DefaultTemplates() *Templates {
	return &Templates{
		Listing: mustReadBuiltin(ListingTemplateName),
		Error:   mustReadBuiltin(ErrorTemplateName),
	}
}

// LoadTemplates starts from the built-in templates and replaces each one
// found in dir. An empty dir yields the defaults.
func LoadTemplates(dir string) (*Templates, error) {
	templates := DefaultTemplates()
	if dir == "" {
		return templates, nil
	}

	overrides := []struct {
		name string
		dst  *string
	}{
		{ListingTemplateName, &templates.Listing},
		{ErrorTemplateName, &templates.Error},
	}
	for _, o := range overrides {
		data, err := os.ReadFile(filepath.Join(dir, o.name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", o.name, err)
		}
		*o.dst = string(data)
	}
	return templates, nil
}

func (t *Templates) RenderListing(title, content string) string {
	return strings.NewReplacer("@title", title, "@content", content).Replace(t.Listing)
}

func (t *Templates) RenderError(title, message, version string) string {
	return strings.NewReplacer("@title", title, "@message", message, "@version", version).Replace(t.Error)
}

func mustReadBuiltin(name string) string {
	data, err := builtinTemplates.ReadFile("templates/" + name)
	if err != nil {
		panic(fmt.Sprintf("missing built-in template %s: %v", name, err))
	}
	return string(data)
}
