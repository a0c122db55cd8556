package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/marcocampos/hows/internal/config"
)

const Version = "0.0.1"

type HandlerFunc func(request *Request) (*Response, error)

type Handler interface {
	Handle() HandlerFunc
}

// Site turns resolved request paths into responses. It holds no
// per-request state; everything it needs is injected at construction.
type Site struct {
	Config           *config.Config
	WebRoot          string
	Runner           ScriptRunner
	ScriptExtensions []string
	Templates        *Templates
	Logger           *slog.Logger
}

// NewSite serves webRoot with cfg. Scripts default to the "php"
// interpreter for the php extension; callers may replace Runner,
// ScriptExtensions and Templates before serving.
func NewSite(cfg *config.Config, webRoot string, logger *slog.Logger) (*Site, error) {
	if cfg == nil {
		return nil, errors.New("nil config")
	}
	absRoot, err := filepath.Abs(webRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve web root %s: %w", webRoot, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Site{
		Config:           cfg,
		WebRoot:          absRoot,
		Runner:           NewExecRunner("php"),
		ScriptExtensions: []string{"php"},
		Templates:        DefaultTemplates(),
		Logger:           logger,
	}, nil
}

func (s *Site) Handle() HandlerFunc {
	return func(request *Request) (*Response, error) {
		return s.Serve(request), nil
	}
}

// Serve resolves the request path and builds the complete response.
func (s *Site) Serve(request *Request) *Response {
	target := Resolve(request.Path, s.WebRoot)
	s.Logger.Debug("resolved request",
		"path", request.Path,
		"kind", target.Kind.String(),
		"target", target.Path,
	)

	var response *Response
	switch target.Kind {
	case TargetRedirect:
		response = HTTP301MovedPermanently(redirectLocation(request, target.Location))
	case TargetDirectory:
		response = s.RenderDirectoryListing(target.Path, request.Path)
	case TargetFile:
		response = s.serveFile(target.Path)
	default:
		response = s.BuildErrorPage(NotFound, requestDir(target.Path),
			"404 Not Found",
			fmt.Sprintf("The requested URL %s was not found on this server.", request.Path))
	}
	return s.finalize(response)
}

func (s *Site) serveFile(filePath string) *Response {
	if s.isScript(filePath) {
		return s.runScript(filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		s.Logger.Error("failed to read file", "file", filePath, "error", err)
		return s.internalError(filepath.Dir(filePath))
	}
	return newResponse(http.StatusOK, MimeType(filePath, s.ScriptExtensions...), data)
}

func (s *Site) runScript(scriptPath string) *Response {
	result, err := s.Runner.RunScript(scriptPath)
	if err != nil {
		s.Logger.Error("failed to start interpreter", "script", scriptPath, "error", err)
		return s.internalError(filepath.Dir(scriptPath))
	}
	if result.ExitCode != 0 {
		s.Logger.Error("script failed",
			"script", scriptPath,
			"exit_code", result.ExitCode,
			"stderr", strings.TrimSpace(string(result.Stderr)),
		)
		return s.internalError(filepath.Dir(scriptPath))
	}
	return newResponse(http.StatusOK, "text/html", result.Stdout)
}

// isScript reports whether filePath has a script extension that is also
// one of the configured auto-index extensions.
func (s *Site) isScript(filePath string) bool {
	ext := strings.TrimPrefix(filepath.Ext(filePath), ".")
	if ext == "" || s.Runner == nil {
		return false
	}
	return hasExtension(s.ScriptExtensions, ext) && s.Config.HasAutoExtension(ext)
}

// finalize sets the length and the server banner once the body is final.
func (s *Site) finalize(response *Response) *Response {
	response.Headers.Set("Content-Length", strconv.Itoa(len(response.Body)))
	response.Headers.Set("Server", s.banner())
	return response
}

func (s *Site) banner() string {
	if s.Config.ShowVersion {
		return "HOWS/" + Version
	}
	return "HOWS/*"
}

// redirectLocation keeps the client's own encoding of the path, so an
// escaped "/" such as %2F survives the redirect. The decoded location is
// escaped afresh only when the raw path is absent or does not match.
func redirectLocation(request *Request, location string) string {
	escaped := (&url.URL{Path: location}).EscapedPath()
	if raw := request.RawPath; raw != "" {
		if decoded, err := url.PathUnescape(raw); err == nil && decoded == request.Path && decoded+"/" == location {
			escaped = raw + "/"
		}
	}
	if request.RawQuery != "" {
		return escaped + "?" + request.RawQuery
	}
	return escaped
}
