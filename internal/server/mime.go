package server

import (
	"path/filepath"
	"strings"
)

// MimeType infers a content type from the file extension alone. Script
// extensions map to text/html since their rendered output is served.
// Anything not in the table, binary formats included, is text/plain.
func MimeType(filePath string, scriptExtensions ...string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filePath), "."))
	switch ext {
	case "html", "htm", "php":
		return "text/html"
	case "css":
		return "text/css"
	}
	if ext != "" && hasExtension(scriptExtensions, ext) {
		return "text/html"
	}
	return "text/plain"
}

func hasExtension(extensions []string, ext string) bool {
	for _, e := range extensions {
		if strings.EqualFold(strings.TrimPrefix(e, "."), ext) {
			return true
		}
	}
	return false
}
