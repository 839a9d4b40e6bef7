package upstream

import (
	"net/http"
	"time"
)

// ContentRegime selects how a body is forwarded.
type ContentRegime int

const (
	// RegimeJSON forwards the body as application/json with auth headers.
	RegimeJSON ContentRegime = iota

	// RegimePassthrough forwards a Parse JS SDK text/plain body unchanged.
	// The SDK carries its own credentials inside the body, so no auth
	// headers are added.
	RegimePassthrough

	// RegimeMultipart forwards multipart and file-upload bodies with their
	// original content type.
	RegimeMultipart
)

// String returns the regime label.
func (r ContentRegime) String() string {
	switch r {
	case RegimePassthrough:
		return "passthrough"
	case RegimeMultipart:
		return "multipart"
	default:
		return "json"
	}
}

// OutboundRequest is one logical call to the backend. It is built fresh
// for every inbound request and discarded once the outcome is written.
type OutboundRequest struct {
	// Candidates overrides the configured prefix list when non-empty.
	Candidates []string

	// Method is the HTTP method mirrored from the inbound request.
	Method string

	// Path is the forwarded path relative to the mount prefix, without a
	// leading slash (e.g. "functions/getDocument").
	Path string

	// RawQuery is the inbound query string, without "?".
	RawQuery string

	// Header holds the headers to send, including credentials and content
	// type.
	Header http.Header

	// Body is the serialized request body.
	Body []byte

	// Regime selects the forwarding convention.
	Regime ContentRegime

	// Large marks signing-path or oversized calls. Only large calls are
	// shaped and retried.
	Large bool
}

// OutcomeKind discriminates an Outcome.
type OutcomeKind int

const (
	// OutcomeSuccess is a 2xx JSON answer from the API.
	OutcomeSuccess OutcomeKind = iota

	// OutcomeAPIError is a JSON error answer from the API.
	OutcomeAPIError

	// OutcomeExhausted means every candidate failed.
	OutcomeExhausted
)

// String returns the outcome label used in logs and metrics.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeAPIError:
		return "api_error"
	default:
		return "exhausted"
	}
}

// Attempt records the result of trying one candidate URL.
type Attempt struct {
	// URL is the full outbound URL.
	URL string

	// Status is the HTTP status, or 0 when no response was received.
	Status int

	// Classification is the verdict on the response body. It is
	// Unrecognized when Err is a transport failure.
	Classification Classification

	// Tries is the number of outbound calls made to URL, retries included.
	Tries int

	// Stripped reports whether the binary field was removed from the body
	// that produced this result.
	Stripped bool

	// Err describes why the candidate was rejected. It is nil for found
	// candidates.
	Err error

	// Duration covers all tries against URL.
	Duration time.Duration
}

// Outcome is the result of a logical call.
type Outcome struct {
	Kind OutcomeKind

	// Status and Body are the upstream answer for Success and APIError.
	Status int
	Body   []byte

	// URL is the candidate that answered.
	URL string

	// Attempts lists every candidate tried, in order.
	Attempts []Attempt

	// Err is an *ExhaustedError for OutcomeExhausted.
	Err error
}

// Stripped reports whether the answering attempt was sent without the
// binary field.
func (o *Outcome) Stripped() bool {
	if len(o.Attempts) == 0 {
		return false
	}
	return o.Attempts[len(o.Attempts)-1].Stripped
}

// URLs returns every attempted URL in order.
func (o *Outcome) URLs() []string {
	urls := make([]string, 0, len(o.Attempts))
	for _, a := range o.Attempts {
		urls = append(urls, a.URL)
	}
	return urls
}
