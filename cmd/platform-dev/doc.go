// Command platform-dev runs the in-memory development platform.
//
// It serves the session endpoints on --addr and Prometheus metrics on
// /metrics. Challenge behaviour is controlled with flags; see --help.
//
// Usage:
//
//	platform-dev --addr :8080 --challenge-type PROOF_OF_WORK --difficulty 18
//	platform-dev --challenge-type TURNSTILE --forced-retries 1
package main
