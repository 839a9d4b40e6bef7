// Package secrets resolves ${secret:name} references in the relay's
// upstream credentials.
//
// Two providers are available:
//
//   - EnvProvider reads RELAY_SECRET_<NAME> environment variables.
//   - FileProvider reads one file per secret from a directory, as mounted
//     by Kubernetes or Docker secrets, and can watch it for rotations.
//
// A Manager tries its providers in order:
//
//	files, _ := secrets.NewFileProvider("/run/secrets")
//	m := secrets.NewManager(files, secrets.NewEnvProvider("RELAY_SECRET_"))
//	key, err := m.Resolve(ctx, "${secret:master-key}")
//
// Values without a reference are returned unchanged, so literal
// credentials in the config keep working.
package secrets
