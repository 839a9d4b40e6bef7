package main

import (
	"context"
	"fmt"

	"opensign-hq/relay/pkg/auth"
	"opensign-hq/relay/pkg/config"
	"opensign-hq/relay/pkg/secrets"
)

// newSecretManager builds the provider chain from cfg. Files take
// precedence over the environment. The file provider is returned so the
// caller can watch and close it.
func newSecretManager(cfg *config.SecretsConfig) (*secrets.Manager, *secrets.FileProvider, error) {
	providers := []secrets.Provider{}

	var files *secrets.FileProvider
	if cfg.Dir != "" {
		fp, err := secrets.NewFileProvider(cfg.Dir)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open secrets dir: %w", err)
		}
		files = fp
		providers = append(providers, fp)
	}
	providers = append(providers, secrets.NewEnvProvider(cfg.EnvPrefix))

	return secrets.NewManager(providers...), files, nil
}

// resolveServiceCredentials resolves the secret references in the raw
// upstream credentials.
func resolveServiceCredentials(ctx context.Context, m *secrets.Manager, up config.UpstreamConfig) (auth.ServiceCredentials, error) {
	var sc auth.ServiceCredentials
	fields := []struct {
		name string
		raw  string
		dst  *string
	}{
		{"upstream.master_key", up.MasterKey, &sc.MasterKey},
		{"upstream.username", up.Username, &sc.Username},
		{"upstream.password", up.Password, &sc.Password},
	}
	for _, f := range fields {
		v, err := m.Resolve(ctx, f.raw)
		if err != nil {
			return auth.ServiceCredentials{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}
	return sc, nil
}

// applyServiceCredentials writes resolved credentials back into cfg.
func applyServiceCredentials(cfg *config.Config, sc auth.ServiceCredentials) {
	cfg.Upstream.MasterKey = sc.MasterKey
	cfg.Upstream.Username = sc.Username
	cfg.Upstream.Password = sc.Password
}
