package upstream

import (
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"opensign-hq/relay/pkg/config"
)

// Transport holds one HTTP client per operation class. Only the large
// class keeps connections alive between calls.
type Transport struct {
	json      *http.Client
	multipart *http.Client
	large     *http.Client
}

// NewTransport creates clients with the configured per-class timeouts.
func NewTransport(cfg config.UpstreamTimeouts) *Transport {
	return &Transport{
		json:      newClient(cfg.JSON, false),
		multipart: newClient(cfg.Multipart, false),
		large:     newClient(cfg.Large, true),
	}
}

func newClient(timeout time.Duration, keepAlive bool) *http.Client {
	dialer := &net.Dialer{
		Timeout: 10 * time.Second,
	}
	if keepAlive {
		dialer.KeepAlive = 30 * time.Second
	} else {
		dialer.KeepAlive = -1
	}

	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		DisableKeepAlives:     !keepAlive,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{
		Transport: otelhttp.NewTransport(base),
		Timeout:   timeout,
	}
}

// ClientFor returns the client matching the request's class.
func (t *Transport) ClientFor(req *OutboundRequest) *http.Client {
	switch {
	case req.Large:
		return t.large
	case req.Regime == RegimeMultipart:
		return t.multipart
	default:
		return t.json
	}
}

// CloseIdleConnections releases pooled connections.
func (t *Transport) CloseIdleConnections() {
	t.json.CloseIdleConnections()
	t.multipart.CloseIdleConnections()
	t.large.CloseIdleConnections()
}
