package health

import (
	"context"
	"errors"

	"opensign-hq/relay/pkg/config"
)

// UpstreamConfigured fails while the backend base URL or application ID
// is missing. Without them every proxied call would be exhausted.
func UpstreamConfigured(cfg *config.UpstreamConfig) CheckFunc {
	return func(context.Context) error {
		switch {
		case cfg.BaseURL == "":
			return errors.New("upstream base_url is not configured")
		case cfg.AppID == "":
			return errors.New("upstream app_id is not configured")
		case len(cfg.CandidatePrefixes) == 0:
			return errors.New("no candidate prefixes configured")
		}
		return nil
	}
}

// Pinger is implemented by components that can report their own health,
// like the journal store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck adapts a Pinger to a CheckFunc.
func PingCheck(p Pinger) CheckFunc {
	return p.Ping
}
