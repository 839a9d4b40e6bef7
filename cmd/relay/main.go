// Relay is a same-origin proxy between the OpenSign web app and its Parse
// Server backend.
//
// It forwards calls made to /api/proxy/* to the backend, discovering the
// backend's mount path from an ordered list of candidates on every call,
// attaching the right credentials per operation, and shaping and
// retrying the large payloads of document signing.
//
// Usage:
//
//	# Start the relay
//	relay run --config /etc/relay/config.yaml
//
//	# Env-only deployment
//	RELAY_UPSTREAM_BASE_URL=https://sign.example.com RELAY_UPSTREAM_APP_ID=opensign relay run
//
//	# Find out which mount prefix answers
//	relay probe health
//
//	# Show the last calls recorded in the sqlite journal
//	relay journal recent --limit 20
package main

func main() {
	Execute()
}
