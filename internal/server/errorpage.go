package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
)

type ErrorKind int

const (
	NotFound ErrorKind = iota
	InternalError
)

const customNotFoundPage = "404.html"

// BuildErrorPage renders a 404 or 500 page. A 404.html in dir is served
// as-is for NotFound; otherwise the error template is filled in.
func (s *Site) BuildErrorPage(kind ErrorKind, dir, title, message string) *Response {
	status := http.StatusInternalServerError
	if kind == NotFound {
		status = http.StatusNotFound
		custom := filepath.Join(dir, customNotFoundPage)
		data, err := os.ReadFile(custom)
		if err == nil {
			return newResponse(status, "text/html", data)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			s.Logger.Warn("failed to read custom error page", "file", custom, "error", err)
		}
	}

	body := s.Templates.RenderError(title, message, s.versionString())
	return newResponse(status, "text/html", []byte(body))
}

func (s *Site) internalError(dir string) *Response {
	return s.BuildErrorPage(InternalError, dir,
		"500 Internal Server Error",
		"The server encountered an internal error and was unable to complete your request.")
}

// versionString fills @version in error pages.
func (s *Site) versionString() string {
	if !s.Config.ShowVersion {
		return ""
	}
	return "HOWS " + Version
}
