package proxy

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"opensign-hq/relay/pkg/config"
	"opensign-hq/relay/pkg/proxy/types"
	"opensign-hq/relay/pkg/telemetry/logging"
	"opensign-hq/relay/pkg/upstream"
)

// HandleError maps an error to a status code and response body.
//
//   - *RequestError keeps its own status.
//   - *upstream.ExhaustedError becomes 502 with troubleshooting.
//   - Anything else is a 500 with a generic message.
func HandleError(err error, cfg *config.UpstreamConfig) (int, *types.ErrorResponse) {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Status, reqErr.ToErrorResponse()
	}

	var exhausted *upstream.ExhaustedError
	if errors.As(err, &exhausted) {
		return http.StatusBadGateway, &types.ErrorResponse{
			Error:           types.MessageBackendNotFound,
			Troubleshooting: BuildTroubleshooting(exhausted, cfg),
		}
	}

	return http.StatusInternalServerError, types.NewInternalError()
}

// BuildTroubleshooting derives operator hints from the attempts of a
// failed search. One hint is emitted per failure kind seen, then the
// configuration summary.
func BuildTroubleshooting(exhausted *upstream.ExhaustedError, cfg *config.UpstreamConfig) *types.Troubleshooting {
	t := &types.Troubleshooting{
		AttemptedURLs: append([]string{}, exhausted.URLs...),
	}
	if exhausted.LastErr != nil {
		t.LastError = logging.RedactString(exhausted.LastErr.Error())
	}

	var htmlURLs, unreachable, unrecognized []string
	for _, a := range exhausted.Attempts {
		var transportErr *upstream.TransportError
		switch {
		case errors.As(a.Err, &transportErr):
			unreachable = append(unreachable, a.URL)
		case a.Classification == upstream.WrongEndpoint:
			htmlURLs = append(htmlURLs, a.URL)
		case a.Classification == upstream.Unrecognized:
			unrecognized = append(unrecognized, a.URL)
		}
	}

	if len(htmlURLs) > 0 {
		t.Hints = append(t.Hints, types.Hint{
			Category: types.HintWrongMount,
			Message: fmt.Sprintf("%s served an HTML page instead of the API. The prefix likely points at the web frontend; "+
				"check upstream.candidate_prefixes against the Parse Server mount path.", strings.Join(htmlURLs, ", ")),
		})
	}
	if len(unreachable) > 0 {
		t.Hints = append(t.Hints, types.Hint{
			Category: types.HintNetwork,
			Message: fmt.Sprintf("%s could not be reached. Check that the backend is running and reachable from the relay "+
				"and that upstream.base_url uses the right scheme and port.", strings.Join(unreachable, ", ")),
		})
	}
	if len(unrecognized) > 0 {
		t.Hints = append(t.Hints, types.Hint{
			Category: types.HintUnrecognizedResponse,
			Message: fmt.Sprintf("%s answered with a body that is neither HTML nor JSON. A reverse proxy or gateway "+
				"in front of the backend may be intercepting the call.", strings.Join(unrecognized, ", ")),
		})
	}

	t.Hints = append(t.Hints, configurationHint(cfg))
	return t
}

func configurationHint(cfg *config.UpstreamConfig) types.Hint {
	baseURL := "(not set)"
	appID := "not set"
	var prefixes []string
	if cfg != nil {
		if cfg.BaseURL != "" {
			baseURL = cfg.BaseURL
		}
		if cfg.AppID != "" {
			appID = "set"
		}
		prefixes = cfg.CandidatePrefixes
	}

	return types.Hint{
		Category: types.HintConfiguration,
		Message: fmt.Sprintf("Base URL is %s, application ID is %s, candidate prefixes are [%s].",
			baseURL, appID, strings.Join(prefixes, ", ")),
	}
}
