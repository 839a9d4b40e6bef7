package upstream

import (
	"encoding/json"
	"strings"

	"opensign-hq/relay/pkg/config"
)

// Shaper adapts large document-signing bodies to the backend's
// undocumented size and timeout limits. It never knows in advance whether
// stripping will be accepted, only that it is worth trying.
type Shaper struct {
	largePaths     []string
	largeBodyBytes int
	field          string
	stripThreshold int
	dataURLPrefix  string
}

// Shaped is the body prepared for the first attempt.
type Shaped struct {
	// Body is what to send.
	Body []byte

	// Stripped reports that the binary field was removed.
	Stripped bool

	// HasBinary reports that Body still carries the binary field.
	HasBinary bool
}

// NewShaper creates a shaper from configuration.
func NewShaper(cfg config.PayloadConfig) *Shaper {
	return &Shaper{
		largePaths:     cfg.LargePaths,
		largeBodyBytes: cfg.LargeBodyBytes,
		field:          cfg.BinaryField,
		stripThreshold: cfg.StripThresholdBytes,
		dataURLPrefix:  cfg.DataURLPrefix,
	}
}

// IsLarge reports whether a call targets a large-payload operation or its
// body exceeds the size threshold.
func (s *Shaper) IsLarge(path string, bodyLen int) bool {
	if bodyLen > s.largeBodyBytes {
		return true
	}
	return MatchPath(path, s.largePaths)
}

// Shape prepares body for the first attempt. A binary field longer than
// the strip threshold is removed so a metadata-only request goes first.
// A shorter one gets the data-URL prefix if it lacks one. Bodies that are
// not JSON objects, or lack the field, are returned untouched.
func (s *Shaper) Shape(body []byte) Shaped {
	fields, value, ok := s.binaryField(body)
	if !ok {
		return Shaped{Body: body}
	}

	if len(value) > s.stripThreshold {
		delete(fields, s.field)
		out, err := json.Marshal(fields)
		if err != nil {
			return Shaped{Body: body, HasBinary: true}
		}
		return Shaped{Body: out, Stripped: true}
	}

	if strings.HasPrefix(value, "data:") {
		return Shaped{Body: body, HasBinary: true}
	}

	encoded, err := json.Marshal(s.dataURLPrefix + value)
	if err != nil {
		return Shaped{Body: body, HasBinary: true}
	}
	fields[s.field] = encoded
	out, err := json.Marshal(fields)
	if err != nil {
		return Shaped{Body: body, HasBinary: true}
	}
	return Shaped{Body: out, HasBinary: true}
}

// Strip removes the binary field. It reports false, and returns body
// unchanged, when the field is absent.
func (s *Shaper) Strip(body []byte) ([]byte, bool) {
	fields, _, ok := s.binaryField(body)
	if !ok {
		return body, false
	}
	delete(fields, s.field)
	out, err := json.Marshal(fields)
	if err != nil {
		return body, false
	}
	return out, true
}

// binaryField decodes body as a JSON object and extracts the string value
// of the binary field.
func (s *Shaper) binaryField(body []byte) (map[string]json.RawMessage, string, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, "", false
	}
	raw, exists := fields[s.field]
	if !exists {
		return nil, "", false
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, "", false
	}
	return fields, value, true
}

var oversizeMarkers = []string{"connection reset", "terminated", "broken pipe", "eof"}

// IsOversizeFailure reports whether err is the kind of transport failure
// the backend produces when a body is too large.
func IsOversizeFailure(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, m := range oversizeMarkers {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}

// MatchPath reports whether path equals one of patterns or continues one
// of them with "/".
func MatchPath(path string, patterns []string) bool {
	path = strings.Trim(path, "/")
	for _, p := range patterns {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
