package server

import (
	"net/textproto"
	"strings"
)

type Request struct {
	Method     string
	Target     string
	Path       string
	RawPath    string
	RawQuery   string
	Protocol   string
	RemoteAddr string
	Headers    map[string]string
	Body       []byte
}

type Response struct {
	StatusCode int
	StatusText string
	Protocol   string
	Headers    Header
	Body       []byte
}

// ContentType returns the Content-Type header of the response, if any.
func (r *Response) ContentType() string {
	return r.Headers.Get("Content-Type")
}

// repeatableHeaders may appear more than once in a response.
var repeatableHeaders = map[string]bool{
	"Set-Cookie": true,
	"Warning":    true,
}

type headerField struct {
	key   string
	value string
}

// Header is an ordered set of response header fields. Keys are compared
// case-insensitively and kept in canonical form.
type Header struct {
	fields []headerField
}

// Set replaces the value of key, keeping its original position, or
// appends it when not present.
func (h *Header) Set(key, value string) {
	key = textproto.CanonicalMIMEHeaderKey(key)
	for i := range h.fields {
		if h.fields[i].key == key {
			h.fields[i].value = value
			h.removeFrom(i+1, key)
			return
		}
	}
	h.fields = append(h.fields, headerField{key: key, value: value})
}

// Add appends a value for repeatable headers and behaves like Set for
// all others.
func (h *Header) Add(key, value string) {
	key = textproto.CanonicalMIMEHeaderKey(key)
	if !repeatableHeaders[key] {
		h.Set(key, value)
		return
	}
	h.fields = append(h.fields, headerField{key: key, value: value})
}

func (h *Header) Get(key string) string {
	key = textproto.CanonicalMIMEHeaderKey(key)
	for _, f := range h.fields {
		if f.key == key {
			return f.value
		}
	}
	return ""
}

func (h *Header) Has(key string) bool {
	key = textproto.CanonicalMIMEHeaderKey(key)
	for _, f := range h.fields {
		if f.key == key {
			return true
		}
	}
	return false
}

// Each calls fn for every field in insertion order.
func (h *Header) Each(fn func(key, value string)) {
	for _, f := range h.fields {
		fn(f.key, f.value)
	}
}

func (h *Header) String() string {
	var sb strings.Builder
	h.Each(func(key, value string) {
		sb.WriteString(key)
		sb.WriteString(": ")
		sb.WriteString(value)
		sb.WriteString("\r\n")
	})
	return sb.String()
}

func (h *Header) removeFrom(start int, key string) {
	kept := h.fields[:start]
	for _, f := range h.fields[start:] {
		if f.key != key {
			kept = append(kept, f)
		}
	}
	h.fields = kept
}
