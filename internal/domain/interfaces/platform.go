package interfaces

import (
	"context"

	domaintypes "sessiongate/internal/domain/types"
)

// SessionRepository is how we talk to the platform's session endpoints.
// Implementations attach identity headers to every call and never retry.
type SessionRepository interface {
	InitSession(ctx context.Context) (domaintypes.InitSessionResponse, error)
	Challenge(ctx context.Context) (domaintypes.ChallengeResponse, error)
	Verify(
		ctx context.Context,
		request domaintypes.VerifyRequest,
	) (domaintypes.VerifyResponse, error)
	DeleteSession(ctx context.Context) error
}
