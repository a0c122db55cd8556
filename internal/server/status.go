package server

import (
	"fmt"
	"net/http"
	"strconv"
)

func newResponse(statusCode int, contentType string, body []byte) *Response {
	response := &Response{
		StatusCode: statusCode,
		StatusText: http.StatusText(statusCode),
		Protocol:   "HTTP/1.1",
		Body:       body,
	}
	if contentType != "" {
		response.Headers.Set("Content-Type", contentType)
	}
	return response
}

// HTTPBaseResponse builds a plain text response whose body is the status
// line, e.g. "404 Not Found".
func HTTPBaseResponse(statusCode int) *Response {
	body := []byte(fmt.Sprintf("%d %s", statusCode, http.StatusText(statusCode)))
	response := newResponse(statusCode, "text/plain; charset=utf-8", body)
	response.Headers.Set("Content-Length", strconv.Itoa(len(body)))
	return response
}

func HTTP301MovedPermanently(location string) *Response {
	response := newResponse(http.StatusMovedPermanently, "", nil)
	response.Headers.Set("Location", location)
	return response
}

func HTTP400BadRequest() *Response {
	return HTTPBaseResponse(http.StatusBadRequest)
}

// HTTP403Forbidden has an empty body.
func HTTP403Forbidden() *Response {
	return newResponse(http.StatusForbidden, "", nil)
}

func HTTP404NotFound() *Response {
	return HTTPBaseResponse(http.StatusNotFound)
}

func HTTP405MethodNotAllowed() *Response {
	response := HTTPBaseResponse(http.StatusMethodNotAllowed)
	response.Headers.Set("Allow", "GET, HEAD")
	return response
}

func HTTP500InternalServerError() *Response {
	return HTTPBaseResponse(http.StatusInternalServerError)
}
