// Package platform is the client side of the backend's session API.
//
// Repository implements domain.SessionRepository. On every call it reads
// the session and device stores and attaches:
//
//	X-Session-ID   iff a session is stored
//	X-Device-ID    iff a device identity is stored
//
// Headers are rebuilt for each call and never cached, so a session persisted
// mid-flow is visible to the very next request. Empty values are never sent.
//
// The RPCs themselves go through a Transport. HTTPTransport speaks JSON over
// HTTP:
//
//	POST   /v1/session/init       -> InitSessionResponse
//	POST   /v1/session/challenge  -> ChallengeResponse
//	POST   /v1/session/verify     VerifyRequest -> VerifyResponse
//	DELETE /v1/session            -> {}
//
// Network failures and non-2xx statuses surface as *domain.TransportError
// with the operation, status and a bounded excerpt of the response body.
// Nothing in this package retries.
package platform
