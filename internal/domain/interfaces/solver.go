package interfaces

import (
	"context"

	domaintypes "sessiongate/internal/domain/types"
)

// Solver turns an opaque challenge payload into a solution token. It may
// block on user interaction; it must honour ctx cancellation.
type Solver interface {
	Solve(ctx context.Context, challengeData string) (string, error)
}

// SolverRegistry maps a bot-detection type to the solver able to handle it.
type SolverRegistry interface {
	Solver(botDetectionType domaintypes.BotDetectionType) (Solver, bool)
}
