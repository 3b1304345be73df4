package app

import (
	"context"
	"fmt"

	"sessiongate/internal/domain"
	"sessiongate/internal/services/initialization"
)

// Status is a read-only snapshot of local state.
type Status struct {
	Session     domain.Session
	HasSession  bool
	Device      domain.DeviceIdentity
	HasDevice   bool
	SolverTypes []domain.BotDetectionType
	InitState   initialization.State
}

// Start ensures a device identity exists, then initializes a session.
func (w *Wire) Start(ctx context.Context) (initialization.Outcome, error) {
	if _, err := w.Device.EnsureDeviceIdentity(); err != nil {
		return initialization.Outcome{}, fmt.Errorf("device identity: %w", err)
	}
	return w.Initializer.Initialize(ctx)
}

// Status reports the stored session and device identity.
func (w *Wire) Status() (Status, error) {
	var st Status
	var err error
	if st.Session, st.HasSession, err = w.Sessions.LoadSession(); err != nil {
		return Status{}, fmt.Errorf("load session: %w", err)
	}
	if st.Device, st.HasDevice, err = w.Device.DeviceIdentity(); err != nil {
		return Status{}, fmt.Errorf("load device identity: %w", err)
	}
	st.SolverTypes = w.Solvers.Types()
	st.InitState = w.Initializer.State()
	return st, nil
}

// Logout ends the session on the platform and forgets it locally. With
// localOnly the platform is not contacted.
func (w *Wire) Logout(ctx context.Context, localOnly bool) error {
	if localOnly {
		return w.Sessions.ClearSession()
	}
	return w.Session.EndSession(ctx)
}
