package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/textproto"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

type Router interface {
	Match(path string) (HandlerFunc, bool)
	AddRoute(pattern string, handler Handler) error
}

type route struct {
	pattern string
	re      *regexp.Regexp
	handler Handler
}

// HTTPRouter matches exact patterns first, then patterns anchored with
// "^" as regular expressions, in the order they were added. Unanchored
// patterns only ever match exactly.
type HTTPRouter struct {
	routes []route
}

func NewHTTPRouter() *HTTPRouter {
	return &HTTPRouter{}
}

func (r *HTTPRouter) AddRoute(pattern string, handler Handler) error {
	for _, rt := range r.routes {
		if rt.pattern == pattern {
			return nil
		}
	}
	rt := route{pattern: pattern, handler: handler}
	if strings.HasPrefix(pattern, "^") {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid route pattern %q: %w", pattern, err)
		}
		rt.re = re
	}
	r.routes = append(r.routes, rt)
	return nil
}

func (r *HTTPRouter) Match(path string) (HandlerFunc, bool) {
	for _, rt := range r.routes {
		if rt.pattern == path {
			return rt.handler.Handle(), true
		}
	}
	for _, rt := range r.routes {
		if rt.re != nil && rt.re.MatchString(path) {
			return rt.handler.Handle(), true
		}
	}
	return nil, false
}

// siteRoute sends every path to the site.
const siteRoute = `^/`

// maxBodyBytes bounds request bodies. Only GET and HEAD are served, so
// anything larger is rejected rather than buffered.
const maxBodyBytes = 1 << 20

type Server interface {
	ListenAndServe() error
	Close() error
}

// HTTPServer answers one connection at a time. Each connection carries a
// single request and is closed after the response is written.
type HTTPServer struct {
	Addr        string
	Router      *HTTPRouter
	Middlewares []Middleware
	Logger      *slog.Logger

	mu       sync.Mutex
	listener net.Listener
	closed   bool
}

func NewHTTPServer(addr string, site *Site, logger *slog.Logger) *HTTPServer {
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	router := NewHTTPRouter()
	if site != nil {
		if err := router.AddRoute(siteRoute, site); err != nil {
			panic(err)
		}
	}

	return &HTTPServer{
		Addr:   addr,
		Router: router,
		Middlewares: []Middleware{
			BaseMiddleware,
			LoggingMiddleware(logger),
		},
		Logger: logger,
	}
}

func (s *HTTPServer) ListenAndServe() error {
	listen, err := net.Listen("tcp", s.Addr)
	if err != nil {
		s.Logger.Error("failed to listen", "addr", s.Addr, "error", err)
		return fmt.Errorf("failed to listen on %s: %w", s.Addr, err)
	}
	return s.Serve(listen)
}

// Serve accepts connections on listen until Close is called. It returns
// nil after Close.
func (s *HTTPServer) Serve(listen net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		listen.Close()
		return nil
	}
	s.listener = listen
	s.mu.Unlock()
	defer listen.Close()

	s.Logger.Info("hows: a minimal HTTP static-file server", "version", Version)
	s.Logger.Info("listening", "addr", listen.Addr().String())

	for {
		conn, err := listen.Accept()
		if err != nil {
			if s.isClosed() || errors.Is(err, net.ErrClosed) {
				s.Logger.Info("listener closed", "addr", listen.Addr().String())
				return nil
			}
			s.Logger.Error("failed to accept connection", "error", err)
			continue
		}
		s.handleConnection(conn)
	}
}

func (s *HTTPServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.listener != nil {
		return s.listener.Close()
	}
	return nil
}

func (s *HTTPServer) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *HTTPServer) handleConnection(conn net.Conn) {
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("panic while handling request", "remote", conn.RemoteAddr().String(), "panic", r)
			s.write(conn, HTTP500InternalServerError(), false)
		}
	}()
	s.Logger.Debug("accepted connection", "remote", conn.RemoteAddr().String())

	request, err := s.parseRequest(bufio.NewReader(conn))
	if err != nil {
		response := HTTP400BadRequest()
		s.write(conn, response, false)
		s.Logger.Error("failed to parse request", "error", err, "response", response.StatusCode)
		return
	}
	request.RemoteAddr = conn.RemoteAddr().String()

	response := s.ServeRequest(request)
	s.write(conn, response, request.Method == "HEAD")
}

// ServeRequest runs a parsed request through the router and middleware
// chain. It never returns nil.
func (s *HTTPServer) ServeRequest(request *Request) *Response {
	if request.Method != "GET" && request.Method != "HEAD" {
		s.Logger.Warn("unsupported method", "method", request.Method, "path", request.Path)
		return HTTP405MethodNotAllowed()
	}

	handler, found := s.Router.Match(request.Path)
	if !found {
		s.Logger.Warn("no handler found", "path", request.Path)
		return HTTP404NotFound()
	}

	handlerPipeline := handler
	for _, middleware := range s.Middlewares {
		handlerPipeline = middleware(handlerPipeline)
	}

	response, err := handlerPipeline(request)
	if err != nil || response == nil {
		s.Logger.Error("failed to handle request", "path", request.Path, "error", err)
		return HTTP500InternalServerError()
	}
	return response
}

func (s *HTTPServer) write(conn net.Conn, response *Response, headOnly bool) {
	response.Headers.Set("Connection", "close")
	if _, err := conn.Write(s.marshalResponse(response, headOnly)); err != nil {
		s.Logger.Error("failed to write response", "remote", conn.RemoteAddr().String(), "error", err)
	}
}

func (s *HTTPServer) parseRequest(reader *bufio.Reader) (*Request, error) {
	startLine, err := reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}

	var request Request
	total, err := fmt.Sscanf(startLine, "%s %s %s", &request.Method, &request.Target, &request.Protocol)
	if err != nil {
		return nil, fmt.Errorf("failed to parse request line: %w", err)
	}
	if total != 3 {
		return nil, fmt.Errorf("invalid request start line: %s", startLine)
	}
	if request.Protocol != "HTTP/1.1" && request.Protocol != "HTTP/1.0" {
		return nil, fmt.Errorf("unsupported protocol: %s", request.Protocol)
	}

	target, err := url.ParseRequestURI(request.Target)
	if err != nil {
		return nil, fmt.Errorf("invalid request target %q: %w", request.Target, err)
	}
	if !strings.HasPrefix(target.Path, "/") {
		return nil, fmt.Errorf("request target %q is not an absolute path", request.Target)
	}
	request.Path = target.Path
	request.RawPath = target.EscapedPath()
	request.RawQuery = target.RawQuery

	request.Headers = make(map[string]string)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("failed to read header: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		colonIdx := strings.Index(line, ":")
		if colonIdx == -1 {
			continue
		}
		key := textproto.CanonicalMIMEHeaderKey(strings.TrimSpace(line[:colonIdx]))
		value := strings.TrimSpace(line[colonIdx+1:])
		request.Headers[key] = value
	}

	if clStr, ok := request.Headers["Content-Length"]; ok {
		cl, err := strconv.Atoi(clStr)
		if err != nil || cl < 0 {
			return nil, fmt.Errorf("invalid content-length")
		}
		if cl > maxBodyBytes {
			return nil, fmt.Errorf("content-length %d exceeds %d bytes", cl, maxBodyBytes)
		}
		if cl > 0 {
			body := make([]byte, cl)
			if _, err := io.ReadFull(reader, body); err != nil {
				return nil, fmt.Errorf("failed to read body: %w", err)
			}
			request.Body = body
		}
	}

	return &request, nil
}

// marshalResponse writes the status line, the headers in insertion order
// and, unless headOnly, the body.
func (s *HTTPServer) marshalResponse(response *Response, headOnly bool) []byte {
	if !response.Headers.Has("Content-Length") {
		response.Headers.Set("Content-Length", strconv.Itoa(len(response.Body)))
	}
	protocol := response.Protocol
	if protocol == "" {
		protocol = "HTTP/1.1"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s %d %s\r\n", protocol, response.StatusCode, response.StatusText))
	sb.WriteString(response.Headers.String())
	sb.WriteString("\r\n")
	if !headOnly {
		sb.Write(response.Body)
	}
	return []byte(sb.String())
}
