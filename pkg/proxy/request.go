package proxy

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"opensign-hq/relay/pkg/proxy/types"
	"opensign-hq/relay/pkg/upstream"
)

const (
	// ContentTypeJSON is the content type of authored and forwarded JSON.
	ContentTypeJSON = "application/json"

	// ContentTypePassthrough is the content type the Parse JS SDK uses to
	// avoid CORS preflights. Credentials travel inside the body.
	ContentTypePassthrough = "text/plain"
)

// InboundRequest is the parsed form of a request to the catch-all route.
type InboundRequest struct {
	Method string

	// Path is the remainder after the mount prefix, without a leading
	// slash.
	Path string

	// RawQuery is forwarded unchanged.
	RawQuery string

	// ContentType is the inbound content type header, verbatim.
	ContentType string

	Regime upstream.ContentRegime

	// Body is the complete inbound body.
	Body []byte
}

// ParseRequest reads r into an InboundRequest. path is the part of the URL
// after the mount prefix; a leading slash is removed.
//
// The body must already be capped with http.MaxBytesReader. Exceeding the
// cap yields a RequestError with status 413.
func ParseRequest(r *http.Request, path string) (*InboundRequest, error) {
	req := &InboundRequest{
		Method:      r.Method,
		Path:        strings.TrimPrefix(path, "/"),
		RawQuery:    r.URL.RawQuery,
		ContentType: r.Header.Get("Content-Type"),
	}
	req.Regime = RegimeFor(req.ContentType)

	if r.Body == nil || r.Body == http.NoBody {
		return req, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &RequestError{
				Status:  http.StatusRequestEntityTooLarge,
				Message: fmt.Sprintf("%s: limit is %d bytes", types.MessageBodyTooLarge, maxErr.Limit),
				Err:     err,
			}
		}
		return nil, &RequestError{
			Status:  http.StatusBadRequest,
			Message: "failed to read request body",
			Err:     err,
		}
	}
	req.Body = body

	return req, nil
}

// RegimeFor maps an inbound content type to a forwarding regime.
func RegimeFor(contentType string) upstream.ContentRegime {
	if contentType == "" {
		return upstream.RegimeJSON
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	}

	switch {
	case mediaType == ContentTypePassthrough:
		return upstream.RegimePassthrough
	case strings.HasPrefix(mediaType, "multipart/"):
		return upstream.RegimeMultipart
	default:
		return upstream.RegimeJSON
	}
}

// OutboundContentType returns the content type to send for req.
func (req *InboundRequest) OutboundContentType() string {
	switch req.Regime {
	case upstream.RegimePassthrough:
		return ContentTypePassthrough
	case upstream.RegimeMultipart:
		return req.ContentType
	default:
		return ContentTypeJSON
	}
}

// Outbound builds the upstream request. credentials is merged into the
// header unless the request uses the passthrough regime.
func (req *InboundRequest) Outbound(credentials http.Header) *upstream.OutboundRequest {
	header := make(http.Header)
	if req.Regime != upstream.RegimePassthrough {
		for key, values := range credentials {
			header[key] = append([]string(nil), values...)
		}
	}
	if len(req.Body) > 0 || req.Regime == upstream.RegimePassthrough {
		header.Set("Content-Type", req.OutboundContentType())
	}

	return &upstream.OutboundRequest{
		Method:   req.Method,
		Path:     req.Path,
		RawQuery: req.RawQuery,
		Header:   header,
		Body:     req.Body,
		Regime:   req.Regime,
	}
}

// RequestError is a rejected inbound request.
type RequestError struct {
	Status  int
	Message string
	Err     error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *RequestError) Unwrap() error {
	return e.Err
}

// ToErrorResponse converts the error to a response body.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewErrorResponse(e.Message)
}
