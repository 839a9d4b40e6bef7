package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"opensign-hq/relay/pkg/proxy/types"
)

// WriteJSONResponse writes data as JSON with the given status.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteErrorResponse writes an authored error body.
func WriteErrorResponse(w http.ResponseWriter, statusCode int, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, statusCode, errResp)
}

// WriteUpstreamResponse forwards an upstream answer unchanged. Only JSON
// answers reach this point, so the content type is fixed.
func WriteUpstreamResponse(w http.ResponseWriter, statusCode int, body []byte) error {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(statusCode)

	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("failed to write upstream response: %w", err)
	}
	return nil
}
