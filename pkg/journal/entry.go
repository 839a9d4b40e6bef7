package journal

import (
	"time"

	"github.com/google/uuid"
)

// Entry describes one proxied call.
type Entry struct {
	// ID uniquely identifies the entry.
	ID string `json:"id"`

	// RequestID is the inbound request ID assigned by the middleware.
	RequestID string `json:"request_id"`

	// Time is when the inbound request arrived.
	Time time.Time `json:"time"`

	Method string `json:"method"`
	Path   string `json:"path"`

	// Operation is the credential class of the call.
	Operation string `json:"operation"`

	// Outcome is "success", "api_error", "exhausted" or "rejected".
	Outcome string `json:"outcome"`

	// Status is the status returned to the caller.
	Status int `json:"status"`

	// AttemptedURLs lists every candidate URL in order.
	AttemptedURLs []string `json:"attempted_urls,omitempty"`

	// Attempts is the total number of outbound calls, retries included.
	Attempts int `json:"attempts"`

	Stripped         bool   `json:"stripped"`
	CredentialSource string `json:"credential_source"`

	Duration time.Duration `json:"duration"`

	// Error is the failure message for exhausted calls.
	Error string `json:"error,omitempty"`
}

// NewEntry returns an entry with a fresh ID.
func NewEntry(requestID string, at time.Time) *Entry {
	return &Entry{
		ID:        uuid.NewString(),
		RequestID: requestID,
		Time:      at.UTC(),
	}
}

func (e *Entry) clone() *Entry {
	c := *e
	if e.AttemptedURLs != nil {
		c.AttemptedURLs = append([]string(nil), e.AttemptedURLs...)
	}
	return &c
}
