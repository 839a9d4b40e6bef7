package upstream

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

// Response is what a SendFunc obtained from one candidate URL.
type Response struct {
	Status   int
	Body     []byte
	Tries    int
	Stripped bool
}

// SendFunc performs the outbound call(s) for one candidate URL. A non-nil
// error means no response was obtained.
type SendFunc func(ctx context.Context, url string) (Response, error)

// Locator tries candidate mount prefixes in order until one answers as
// the API.
type Locator struct {
	baseURL  string
	prefixes []string
	observer Observer
	logger   *slog.Logger
}

// NewLocator creates a locator for baseURL and the ordered prefixes.
func NewLocator(baseURL string, prefixes []string, observer Observer) *Locator {
	if observer == nil {
		observer = nopObserver{}
	}
	return &Locator{
		baseURL:  strings.TrimRight(baseURL, "/"),
		prefixes: prefixes,
		observer: observer,
		logger:   slog.Default().With("component", "upstream.locator"),
	}
}

// URL builds base + prefix + "/" + path, with the query appended.
func (l *Locator) URL(prefix, path, rawQuery string) string {
	var sb strings.Builder
	sb.WriteString(l.baseURL)
	sb.WriteString(strings.TrimRight(prefix, "/"))
	sb.WriteByte('/')
	sb.WriteString(strings.TrimLeft(path, "/"))
	if rawQuery != "" {
		sb.WriteByte('?')
		sb.WriteString(rawQuery)
	}
	return sb.String()
}

// Prefixes returns the configured candidate prefixes.
func (l *Locator) Prefixes() []string {
	return l.prefixes
}

// Locate runs send against each candidate in order. The first Success or
// APIError ends the search. HTML pages, unrecognized bodies and transport
// failures move on to the next candidate regardless of HTTP status.
func (l *Locator) Locate(ctx context.Context, req *OutboundRequest, send SendFunc) *Outcome {
	prefixes := l.prefixes
	if len(req.Candidates) > 0 {
		prefixes = req.Candidates
	}

	outcome := &Outcome{Kind: OutcomeExhausted}
	var lastErr error

	for _, prefix := range prefixes {
		url := l.URL(prefix, req.Path, req.RawQuery)
		start := time.Now()

		resp, err := send(ctx, url)
		attempt := Attempt{
			URL:      url,
			Status:   resp.Status,
			Tries:    resp.Tries,
			Stripped: resp.Stripped,
			Duration: time.Since(start),
		}

		if err != nil {
			attempt.Classification = Unrecognized
			attempt.Err = err
			outcome.Attempts = append(outcome.Attempts, attempt)
			l.observer.RecordUpstreamAttempt("transport_error", attempt.Duration)
			l.logger.DebugContext(ctx, "candidate unreachable",
				"url", url,
				"tries", resp.Tries,
				"error", err,
			)
			lastErr = err
			continue
		}

		attempt.Classification = Classify(resp.Status, resp.Body)
		l.observer.RecordUpstreamAttempt(attempt.Classification.String(), attempt.Duration)

		switch attempt.Classification {
		case Success, APIError:
			outcome.Attempts = append(outcome.Attempts, attempt)
			outcome.Kind = OutcomeSuccess
			if attempt.Classification == APIError {
				outcome.Kind = OutcomeAPIError
			}
			outcome.Status = resp.Status
			outcome.Body = resp.Body
			outcome.URL = url
			return outcome

		case WrongEndpoint:
			attempt.Err = &WrongEndpointError{URL: url, Status: resp.Status}

		default:
			attempt.Err = &UnrecognizedResponseError{URL: url, Status: resp.Status, Snippet: snippet(resp.Body)}
		}

		l.logger.DebugContext(ctx, "candidate rejected",
			"url", url,
			"status", resp.Status,
			"classification", attempt.Classification.String(),
		)
		outcome.Attempts = append(outcome.Attempts, attempt)
		lastErr = attempt.Err
	}

	if lastErr == nil {
		lastErr = errors.New("no candidate prefixes configured")
	}
	outcome.Err = &ExhaustedError{
		URLs:     outcome.URLs(),
		Attempts: outcome.Attempts,
		LastErr:  lastErr,
	}
	return outcome
}
