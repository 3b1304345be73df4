package platform

import (
	"context"
	"fmt"

	"sessiongate/internal/domain"
)

// Headers are the identity headers attached to one call.
type Headers map[string]string

// Transport carries a single session RPC to the platform. in may be nil for
// operations without a request body; out may be nil when the reply is ignored.
type Transport interface {
	Call(ctx context.Context, op domain.Operation, headers Headers, in, out any) error
}

// Repository is a thin facade over the four session RPCs.
type Repository struct {
	transport Transport
	sessions  domain.SessionStore
	devices   domain.DeviceIdentityStore
}

// NewRepository returns a Repository that reads identity headers from the
// given stores on every call.
func NewRepository(
	transport Transport,
	sessions domain.SessionStore,
	devices domain.DeviceIdentityStore,
) *Repository {
	return &Repository{transport: transport, sessions: sessions, devices: devices}
}

// Headers builds the identity headers from current store contents.
func (r *Repository) Headers() (Headers, error) {
	h := make(Headers, 2)

	session, ok, err := r.sessions.LoadSession()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if ok && session.ID != "" {
		h[domain.HeaderSessionID] = session.ID.String()
	}

	device, ok, err := r.devices.LoadDeviceIdentity()
	if err != nil {
		return nil, fmt.Errorf("load device identity: %w", err)
	}
	if ok && device.ID != "" {
		h[domain.HeaderDeviceID] = device.ID.String()
	}
	return h, nil
}

func (r *Repository) InitSession(ctx context.Context) (domain.InitSessionResponse, error) {
	var out domain.InitSessionResponse
	if err := r.call(ctx, domain.OpInitSession, nil, &out); err != nil {
		return domain.InitSessionResponse{}, err
	}
	return out, nil
}

func (r *Repository) Challenge(ctx context.Context) (domain.ChallengeResponse, error) {
	var out domain.ChallengeResponse
	if err := r.call(ctx, domain.OpChallenge, nil, &out); err != nil {
		return domain.ChallengeResponse{}, err
	}
	return out, nil
}

func (r *Repository) Verify(
	ctx context.Context,
	request domain.VerifyRequest,
) (domain.VerifyResponse, error) {
	var out domain.VerifyResponse
	if err := r.call(ctx, domain.OpVerify, request, &out); err != nil {
		return domain.VerifyResponse{}, err
	}
	return out, nil
}

func (r *Repository) DeleteSession(ctx context.Context) error {
	return r.call(ctx, domain.OpDeleteSession, nil, nil)
}

func (r *Repository) call(ctx context.Context, op domain.Operation, in, out any) error {
	headers, err := r.Headers()
	if err != nil {
		return err
	}
	return r.transport.Call(ctx, op, headers, in, out)
}

// Compile-time assertion that Repository implements domain.SessionRepository.
var _ domain.SessionRepository = (*Repository)(nil)
