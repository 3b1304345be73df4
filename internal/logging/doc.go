// Package logging builds the process logger.
//
// Every handler it returns strips secrets and replaces session, device and
// challenge identifiers with per-process fingerprints, so logs can be shared
// without leaking credentials.
package logging
