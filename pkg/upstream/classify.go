package upstream

import (
	"bytes"
	"encoding/json"
)

// Classification is the verdict on a single upstream response.
type Classification int

const (
	// Unrecognized means the body is neither HTML nor JSON. The candidate
	// is treated as failed and the next one is tried.
	Unrecognized Classification = iota

	// WrongEndpoint means an HTML page was served, typically a frontend or
	// a 404 page mounted at that prefix.
	WrongEndpoint

	// APIError means the API answered with a JSON error. The search stops
	// and the error is forwarded.
	APIError

	// Success means the API answered with JSON in the 2xx range.
	Success
)

// String returns the label used in logs and metrics.
func (c Classification) String() string {
	switch c {
	case WrongEndpoint:
		return "wrong_endpoint"
	case APIError:
		return "api_error"
	case Success:
		return "success"
	default:
		return "unrecognized"
	}
}

// Found reports whether the classification identifies the real API.
func (c Classification) Found() bool {
	return c == APIError || c == Success
}

var htmlMarkers = [][]byte{[]byte("<!doctype html"), []byte("<html")}

// Classify inspects a raw response. The order of checks is fixed: the HTML
// marker is looked for before any JSON parsing, and JSON parsing happens
// before the success/error split. A malformed non-JSON body is therefore
// never mistaken for an application error.
//
// A JSON body without an error field but with a non-2xx status is still
// the right server answering, so it is classified as APIError and its
// status is forwarded.
func Classify(status int, body []byte) Classification {
	if isHTML(body) {
		return WrongEndpoint
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return Unrecognized
	}

	if obj, ok := doc.(map[string]any); ok {
		if v, exists := obj["error"]; exists && v != nil {
			return APIError
		}
	}

	if status >= 200 && status < 300 {
		return Success
	}
	return APIError
}

var utf8BOM = []byte("\xef\xbb\xbf")

// isHTML reports whether body is an HTML document. A body that opens as a
// JSON object or array is never HTML, even when a string value inside it
// holds markup such as a stored email template.
func isHTML(body []byte) bool {
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(bytes.TrimLeft(body, " \t\r\n"), utf8BOM), " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return false
	}

	lower := bytes.ToLower(trimmed)
	for _, marker := range htmlMarkers {
		if bytes.Contains(lower, marker) {
			return true
		}
	}
	return false
}
