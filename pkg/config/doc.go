// Package config loads and validates relay configuration.
//
// Configuration is read once at process start from an optional YAML file,
// then overridden by RELAY_* environment variables. A minimal deployment
// needs only the backend location and application identifier:
//
//	RELAY_UPSTREAM_BASE_URL=https://sign.example.com
//	RELAY_UPSTREAM_APP_ID=opensign
//
// The equivalent YAML:
//
//	upstream:
//	  base_url: https://sign.example.com
//	  app_id: opensign
//	  candidate_prefixes: ["/api/app", "/app"]
//	  username: relay@example.com
//	  password: ${secret}
//
// Unset keys keep the values from DefaultConfig.
package config
