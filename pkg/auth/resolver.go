package auth

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"

	"opensign-hq/relay/pkg/config"
)

// Header names set by the resolver.
const (
	ApplicationIDHeader = "X-Parse-Application-Id"

	// #nosec G101 - header name, not a credential
	MasterKeyHeader = "X-Parse-Master-Key"
)

// LoginFunc obtains a fresh session token. upstream.Client.Login
// satisfies it.
type LoginFunc func(ctx context.Context, username, password string) (string, error)

// Observer receives credential events.
type Observer interface {
	RecordLogin(result string)
	RecordSessionCache(result string)
}

type nopObserver struct{}

func (nopObserver) RecordLogin(string)        {}
func (nopObserver) RecordSessionCache(string) {}

// Resolution is the outcome of credential selection.
type Resolution struct {
	// Header holds X-Parse-Application-Id plus at most one credential.
	Header http.Header

	// Source names the credential used.
	Source Source
}

// ServiceCredentials are the relay's own credentials for the backend.
type ServiceCredentials struct {
	MasterKey string
	Username  string
	Password  string
}

// Resolver selects credential headers per operation class.
type Resolver struct {
	appID       string
	service     atomic.Pointer[ServiceCredentials]
	devFallback bool

	login    LoginFunc
	cache    *SessionCache
	observer Observer
	logger   *slog.Logger
}

// NewResolver creates a resolver. login may be nil when no service
// account is configured.
func NewResolver(cfg *config.Config, cache *SessionCache, login LoginFunc, observer Observer) *Resolver {
	if observer == nil {
		observer = nopObserver{}
	}
	r := &Resolver{
		appID:       cfg.Upstream.AppID,
		devFallback: cfg.Auth.DevMasterKeyFallback,
		login:       login,
		cache:       cache,
		observer:    observer,
		logger:      slog.Default().With("component", "auth.resolver"),
	}
	r.service.Store(&ServiceCredentials{
		MasterKey: cfg.Upstream.MasterKey,
		Username:  cfg.Upstream.Username,
		Password:  cfg.Upstream.Password,
	})
	return r
}

// SetServiceCredentials replaces the service credentials, typically after
// a secret rotation. The cached session belongs to the old account and is
// dropped.
func (r *Resolver) SetServiceCredentials(sc ServiceCredentials) {
	r.service.Store(&sc)
	r.cache.Invalidate()
	r.logger.Info("service credentials updated",
		"master_key_configured", sc.MasterKey != "",
		"username", sc.Username,
	)
}

// Resolve returns the headers to attach for a call of class made with
// the caller's creds.
func (r *Resolver) Resolve(ctx context.Context, class OperationClass, creds Credentials) Resolution {
	res := Resolution{Header: make(http.Header), Source: SourceNone}
	res.Header.Set(ApplicationIDHeader, r.appID)
	sc := r.service.Load()

	switch class {
	case Privileged:
		if sc.MasterKey != "" {
			r.useMasterKey(&res, sc.MasterKey)
			return res
		}
		r.useSession(ctx, &res)

	case ClassOperation:
		if !r.useCaller(&res, creds) {
			r.useSession(ctx, &res)
		}

	default:
		if r.useCaller(&res, creds) || r.useSession(ctx, &res) {
			return res
		}
		if r.devFallback && sc.MasterKey != "" {
			r.useMasterKey(&res, sc.MasterKey)
		}
	}
	return res
}

func (r *Resolver) useCaller(res *Resolution, creds Credentials) bool {
	switch {
	case creds.Cookie != "":
		res.Header.Set(SessionTokenHeader, creds.Cookie)
		res.Source = SourceCookie
	case creds.Header != "":
		res.Header.Set(SessionTokenHeader, creds.Header)
		res.Source = SourceHeader
	default:
		return false
	}
	return true
}

func (r *Resolver) useMasterKey(res *Resolution, key string) {
	res.Header.Set(MasterKeyHeader, key)
	res.Source = SourceMasterKey
}

// useSession attaches a cached or freshly obtained session token.
func (r *Resolver) useSession(ctx context.Context, res *Resolution) bool {
	token, source, ok := r.Session(ctx)
	if !ok {
		return false
	}
	res.Header.Set(SessionTokenHeader, token)
	res.Source = source
	return true
}

// Session returns the cached service-account session, logging in when
// the cache is empty or expired.
func (r *Resolver) Session(ctx context.Context) (string, Source, bool) {
	if token, ok := r.cache.Get(); ok {
		r.observer.RecordSessionCache("hit")
		return token, SourceCached, true
	}
	r.observer.RecordSessionCache("miss")

	sc := r.service.Load()
	if r.login == nil || sc.Username == "" || sc.Password == "" {
		return "", SourceNone, false
	}

	token, err := r.login(ctx, sc.Username, sc.Password)
	if err != nil {
		r.observer.RecordLogin("failure")
		r.logger.WarnContext(ctx, "automatic login failed, continuing without session",
			"username", sc.Username,
			"error", err,
		)
		return "", SourceNone, false
	}

	r.observer.RecordLogin("success")
	r.cache.Set(token)
	r.logger.InfoContext(ctx, "obtained service session", "username", sc.Username)
	return token, SourceLogin, true
}
