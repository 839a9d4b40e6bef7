package types

// ErrorResponse is the body of every error the relay authors.
type ErrorResponse struct {
	// Error is a human-readable message.
	Error string `json:"error"`

	// Troubleshooting is present only when the backend could not be found.
	Troubleshooting *Troubleshooting `json:"troubleshooting,omitempty"`
}

// Troubleshooting explains a failed candidate search to an operator.
type Troubleshooting struct {
	// AttemptedURLs lists every candidate URL in the order tried.
	AttemptedURLs []string `json:"attemptedUrls"`

	// LastError is the failure of the final candidate.
	LastError string `json:"lastError"`

	// Hints suggest likely causes. The configuration hint is always last.
	Hints []Hint `json:"hints"`
}

// Hint is one suggested cause of a failed search.
type Hint struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// Hint categories.
const (
	// HintWrongMount means at least one candidate served an HTML page.
	HintWrongMount = "wrong_mount"

	// HintNetwork means at least one candidate could not be reached.
	HintNetwork = "network"

	// HintUnrecognizedResponse means a candidate answered with a body that
	// was neither HTML nor JSON.
	HintUnrecognizedResponse = "unrecognized_response"

	// HintConfiguration summarizes the configured base URL and application
	// ID. It is always present.
	HintConfiguration = "configuration"
)

// Standard messages.
const (
	MessageInternal         = "Internal server error"
	MessageBackendNotFound  = "The signing backend could not be reached"
	MessageBodyTooLarge     = "Request body too large"
	MessageMethodNotAllowed = "Method not allowed"
)

// NewErrorResponse creates a plain error body.
func NewErrorResponse(message string) *ErrorResponse {
	return &ErrorResponse{Error: message}
}

// NewInternalError creates the 500 body.
func NewInternalError() *ErrorResponse {
	return NewErrorResponse(MessageInternal)
}

// HasHint reports whether a hint of the given category is present.
func (t *Troubleshooting) HasHint(category string) bool {
	if t == nil {
		return false
	}
	for _, h := range t.Hints {
		if h.Category == category {
			return true
		}
	}
	return false
}
