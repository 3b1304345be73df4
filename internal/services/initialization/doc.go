// Package initialization drives session establishment end to end.
//
// Initialize reuses a stored session when one exists. Otherwise it opens a
// new session and, if the platform asks for it, loops through
// challenge, solve and verify until the platform accepts a solution or the
// retry budget runs out. Concurrent callers share a single run.
package initialization
