// Package solver holds the challenge solvers and the registry that maps a
// bot-detection type onto one of them.
//
// Solvers never talk to the platform. They receive the opaque challenge
// payload, produce a token, and leave verification to the session service.
package solver
