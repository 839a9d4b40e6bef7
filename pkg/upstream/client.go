package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"opensign-hq/relay/pkg/config"
)

// maxResponseBytes bounds how much of an upstream answer is buffered. A
// larger answer fails the attempt rather than being cut short.
var maxResponseBytes int64 = 64 << 20

// Client forwards logical calls to the backend.
type Client struct {
	appID     string
	locator   *Locator
	shaper    *Shaper
	retrier   *Retrier
	transport *Transport
	observer  Observer
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithObserver sets the event observer, typically the metrics collector.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// WithSleeper replaces the retry backoff sleeper. Intended for tests.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		c.retrier.sleep = s
	}
}

// NewClient creates a client from the relay configuration.
func NewClient(cfg *config.Config, opts ...Option) *Client {
	c := &Client{
		appID:     cfg.Upstream.AppID,
		shaper:    NewShaper(cfg.Payload),
		transport: NewTransport(cfg.Upstream.Timeouts),
		observer:  nopObserver{},
		logger:    slog.Default().With("component", "upstream.client"),
	}
	c.retrier = NewRetrier(cfg.Retry, nil)
	for _, opt := range opts {
		opt(c)
	}
	c.retrier.observer = c.observer
	c.locator = NewLocator(cfg.Upstream.BaseURL, cfg.Upstream.CandidatePrefixes, c.observer)
	return c
}

// Shaper returns the payload shaper, used by callers to classify requests
// as large.
func (c *Client) Shaper() *Shaper {
	return c.shaper
}

// Locator returns the backend locator.
func (c *Client) Locator() *Locator {
	return c.locator
}

// Forward performs one logical call: shape the body if the call is large,
// then try every candidate, retrying transient failures of large calls.
//
// When a large body still carrying the binary field fails in a way typical
// of oversized payloads, one further attempt is made to the same URL with
// the field stripped.
func (c *Client) Forward(ctx context.Context, req *OutboundRequest) *Outcome {
	shaped := Shaped{Body: req.Body}
	if req.Large {
		shaped = c.shaper.Shape(req.Body)
		if shaped.Stripped {
			c.observer.RecordPayloadStripped()
			c.logger.InfoContext(ctx, "binary field removed from first attempt",
				"path", req.Path,
				"original_bytes", len(req.Body),
				"shaped_bytes", len(shaped.Body),
			)
		}
	}

	client := c.transport.ClientFor(req)

	send := func(ctx context.Context, url string) (Response, error) {
		resp := Response{Stripped: shaped.Stripped}
		err := c.retrier.Do(ctx, req.Large, func(attempt int) error {
			resp.Tries++
			status, body, err := c.do(ctx, client, req, url, shaped.Body)
			resp.Status, resp.Body = status, body
			return err
		})

		if err != nil && req.Large && shaped.HasBinary && IsOversizeFailure(err) {
			if stripped, ok := c.shaper.Strip(shaped.Body); ok {
				c.observer.RecordPayloadStripped()
				c.logger.WarnContext(ctx, "retrying without binary field after oversize failure",
					"url", url,
					"error", err,
				)
				resp.Tries++
				resp.Stripped = true
				resp.Status, resp.Body, err = c.do(ctx, client, req, url, stripped)
			}
		}
		return resp, err
	}

	return c.locator.Locate(ctx, req, send)
}

// do issues a single outbound call and buffers the answer.
func (c *Client) do(ctx context.Context, client *http.Client, req *OutboundRequest, url string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return 0, nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return resp.StatusCode, nil, &TransportError{URL: url, Err: err}
	}
	if int64(len(data)) > maxResponseBytes {
		return resp.StatusCode, nil, &TransportError{
			URL: url,
			Err: fmt.Errorf("response body exceeds limit of %d bytes", maxResponseBytes),
		}
	}
	return resp.StatusCode, data, nil
}

// Login obtains a session token for username through the same candidate
// search as any other call.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", &LoginError{Err: err}
	}

	header := make(http.Header)
	header.Set("Content-Type", "application/json")
	header.Set("X-Parse-Application-Id", c.appID)
	header.Set("X-Parse-Revocable-Session", "1")

	outcome := c.Forward(ctx, &OutboundRequest{
		Method: http.MethodPost,
		Path:   "login",
		Header: header,
		Body:   body,
		Regime: RegimeJSON,
	})

	switch outcome.Kind {
	case OutcomeSuccess:
		var session struct {
			SessionToken string `json:"sessionToken"`
		}
		if err := json.Unmarshal(outcome.Body, &session); err != nil {
			return "", &LoginError{Err: fmt.Errorf("failed to decode login response: %w", err)}
		}
		if session.SessionToken == "" {
			return "", &LoginError{Status: outcome.Status, Message: "response carried no session token"}
		}
		return session.SessionToken, nil

	case OutcomeAPIError:
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(outcome.Body, &apiErr)
		return "", &LoginError{Status: outcome.Status, Message: apiErr.Error}

	default:
		return "", &LoginError{Err: outcome.Err}
	}
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.transport.CloseIdleConnections()
	return nil
}

// IsExhausted reports whether err came from a candidate search that found
// no API.
func IsExhausted(err error) bool {
	var ex *ExhaustedError
	return errors.As(err, &ex)
}
