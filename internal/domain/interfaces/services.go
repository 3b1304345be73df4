package interfaces

import (
	"context"

	domaintypes "sessiongate/internal/domain/types"
)

// SessionService runs one session RPC at a time and owns the persistence
// side effects that go with it.
type SessionService interface {
	InitSession(ctx context.Context) (domaintypes.InitResult, error)
	RequestChallenge(ctx context.Context) (domaintypes.Challenge, error)
	UpgradeSession(
		ctx context.Context,
		solution domaintypes.ChallengeSolution,
	) (domaintypes.VerifyOutcome, error)
	EndSession(ctx context.Context) error
}

// DeviceService manages the lifecycle of the local device identity.
type DeviceService interface {
	EnsureDeviceIdentity() (domaintypes.DeviceIdentity, error)
	ResetDeviceIdentity() (domaintypes.DeviceIdentity, error)
	DeviceIdentity() (domaintypes.DeviceIdentity, bool, error)
}
