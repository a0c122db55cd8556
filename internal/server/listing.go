package server

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
)

// RenderDirectoryListing serves the first index.<ext> found in dir, in
// AutoExtensions order. Without one it lists the directory, or answers
// 403 when listings are disabled.
func (s *Site) RenderDirectoryListing(dir, urlPath string) *Response {
	if index, ok := s.findIndex(dir); ok {
		return s.serveFile(index)
	}
	if !s.Config.AllowDirList {
		return HTTP403Forbidden()
	}

	fragment, err := s.listingFragment(dir, urlPath)
	if err != nil {
		s.Logger.Error("failed to list directory", "dir", dir, "error", err)
		return s.internalError(dir)
	}
	body := s.Templates.RenderListing("Index of "+urlPath, fragment)
	return newResponse(http.StatusOK, "text/html", []byte(body))
}

func (s *Site) findIndex(dir string) (string, bool) {
	for _, ext := range s.Config.AutoExtensions {
		ext = strings.TrimPrefix(ext, ".")
		if ext == "" {
			continue
		}
		index := filepath.Join(dir, "index."+ext)
		if info, err := os.Stat(index); err == nil && info.Mode().IsRegular() {
			return index, true
		}
	}
	return "", false
}

type listingEntry struct {
	href string
	size int64
}

func (s *Site) listingFragment(dir, urlPath string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var dirs, files []listingEntry
	var total int64
	for _, entry := range entries {
		child := filepath.Join(dir, entry.Name())
		rel, err := filepath.Rel(s.WebRoot, child)
		if err != nil {
			return "", err
		}

		isDir := entry.IsDir()
		var size int64
		if info, err := os.Stat(child); err == nil {
			isDir = info.IsDir()
			size = info.Size()
		}

		e := listingEntry{href: filepath.ToSlash(rel), size: size}
		if isDir {
			dirs = append(dirs, e)
		} else {
			files = append(files, e)
			total += size
		}
	}

	count := len(dirs) + len(files)
	noun := "items"
	if count == 1 {
		noun = "item"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "<h1>Index of %s</h1>", urlPath)
	fmt.Fprintf(&sb, "<p>%s %s (%s)</p><ul>\n", humanize.Comma(int64(count)), noun, humanize.Bytes(uint64(total)))
	for _, d := range dirs {
		fmt.Fprintf(&sb, "<li><a href='%s'>%s/</a></li>\n", d.href, d.href)
	}
	for _, f := range files {
		fmt.Fprintf(&sb, "<li><a href='%s'>%s</a></li>\n", f.href, f.href)
	}
	sb.WriteString("</ul>")
	return sb.String(), nil
}
