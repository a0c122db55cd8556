package server

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
)

// Middleware is a function that wraps a HandlerFunc to add functionality
type Middleware func(next HandlerFunc) HandlerFunc

// BaseMiddleware fills in the status text, protocol and Content-Length
// when the handler left them unset.
func BaseMiddleware(next HandlerFunc) HandlerFunc {
	return func(request *Request) (*Response, error) {
		response, err := next(request)
		if err != nil {
			return nil, err
		}

		if response.StatusText == "" {
			response.StatusText = http.StatusText(response.StatusCode)
		}

		if response.Protocol == "" {
			if request.Protocol != "" {
				response.Protocol = request.Protocol
			} else {
				response.Protocol = "HTTP/1.1"
			}
		}

		if !response.Headers.Has("Content-Length") {
			response.Headers.Set("Content-Length", strconv.Itoa(len(response.Body)))
		}

		return response, nil
	}
}

// LoggingMiddleware logs HTTP requests and responses
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(request *Request) (*Response, error) {
			start := time.Now()

			logger.Info("request",
				"method", request.Method,
				"path", request.Path,
				"remote", request.RemoteAddr,
				"user-agent", request.Headers["User-Agent"],
			)

			response, err := next(request)
			duration := time.Since(start)

			if err != nil {
				logger.Error("request failed",
					"method", request.Method,
					"path", request.Path,
					"remote", request.RemoteAddr,
					"duration", duration,
					"error", err,
				)
			} else if response != nil {
				logger.Info("response",
					"method", request.Method,
					"path", request.Path,
					"remote", request.RemoteAddr,
					"status", response.StatusCode,
					"duration", duration,
					"size", humanize.Bytes(uint64(len(response.Body))),
				)
			}

			return response, err
		}
	}
}
