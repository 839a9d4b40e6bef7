package config

import (
	"sync"
)

var (
	// globalConfig holds the singleton configuration instance.
	globalConfig *Config

	// configMutex protects access to globalConfig.
	configMutex sync.RWMutex

	// initOnce ensures configuration is initialized only once.
	initOnce sync.Once
)

// Initialize loads configuration from the specified path with environment
// variable overrides and stores it as the global singleton configuration.
//
// Only the first call does any work. Later calls return nil without
// reading the file again, even when the first call failed, so a failed
// Initialize is fatal for the process. Configuration is never reloaded.
// Rotated service credentials travel through the secrets watcher instead.
//
// A path that does not exist is accepted. A container configured purely
// through the environment runs as:
//
//	RELAY_UPSTREAM_BASE_URL=http://parse:1337 \
//	RELAY_UPSTREAM_APP_ID=opensign \
//	relay run --config /nonexistent.yaml
func Initialize(path string) error {
	var initErr error

	initOnce.Do(func() {
		cfg, err := LoadConfigWithEnvOverrides(path)
		if err != nil {
			initErr = err
			return
		}

		configMutex.Lock()
		globalConfig = cfg
		configMutex.Unlock()
	})

	return initErr
}

// GetConfig returns the global configuration instance.
// It returns nil if Initialize has not been called successfully.
func GetConfig() *Config {
	configMutex.RLock()
	defer configMutex.RUnlock()
	return globalConfig
}

// SetConfig sets the global configuration instance.
// This is intended for tests.
func SetConfig(cfg *Config) {
	configMutex.Lock()
	defer configMutex.Unlock()
	globalConfig = cfg
}
