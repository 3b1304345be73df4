package interfaces

import domaintypes "sessiongate/internal/domain/types"

// SessionStore persists the current session descriptor across restarts.
type SessionStore interface {
	LoadSession() (domaintypes.Session, bool, error)
	SaveSession(session domaintypes.Session) error
	ClearSession() error
}

// DeviceIdentityStore persists the per-install device identifier.
type DeviceIdentityStore interface {
	LoadDeviceIdentity() (domaintypes.DeviceIdentity, bool, error)
	SaveDeviceIdentity(identity domaintypes.DeviceIdentity) error
	ClearDeviceIdentity() error
}
