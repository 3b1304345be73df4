package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrChallengeUnsolvable is returned when no solver is registered for the
	// bot-detection type of a received challenge.
	ErrChallengeUnsolvable = errors.New("no solver registered for challenge type")

	// ErrRetryBudgetExceeded is returned when Verify keeps asking for a new
	// challenge after the last allowed attempt.
	ErrRetryBudgetExceeded = errors.New("challenge retry budget exceeded")

	// ErrMalformedResponse is returned when a platform reply lacks a field
	// required to continue.
	ErrMalformedResponse = errors.New("malformed platform response")

	// ErrSolverFailed wraps errors returned by a Solver.
	ErrSolverFailed = errors.New("challenge solver failed")
)

// TransportError reports a failed platform call: either the request never
// produced a response (Status == 0) or the platform answered non-2xx.
type TransportError struct {
	Op     Operation
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.Status == 0:
		return fmt.Sprintf("platform %s: %v", e.Op, e.Err)
	case e.Body != "":
		return fmt.Sprintf("platform %s: status %d: %s", e.Op, e.Status, e.Body)
	default:
		return fmt.Sprintf("platform %s: status %d", e.Op, e.Status)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }
