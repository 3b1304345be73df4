// Package backend is an in-memory development platform implementing the
// session endpoints.
//
// It issues single-use challenges of one configured bot-detection type,
// checks proof-of-work solutions for real, accepts any Turnstile token (or a
// fixed test token when configured), and can be told to answer the first N
// verifications with retry=true. It is meant for local runs and end-to-end
// tests, not production.
package backend
