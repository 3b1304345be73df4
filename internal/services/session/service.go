package session

import (
	"context"
	"fmt"
	"time"

	"sessiongate/internal/domain"
)

// Service performs the session RPCs and persists their results.
type Service struct {
	repository   domain.SessionRepository
	sessionStore domain.SessionStore
	now          func() time.Time
}

// New constructs a Session Service with the given repository and store.
func New(repository domain.SessionRepository, sessionStore domain.SessionStore) *Service {
	return &Service{
		repository:   repository,
		sessionStore: sessionStore,
		now:          time.Now,
	}
}

// WithClock replaces the clock used to stamp new sessions.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// InitSession asks the platform for a new session and stores it before
// returning, so every later call carries the new id.
func (s *Service) InitSession(ctx context.Context) (domain.InitResult, error) {
	response, err := s.repository.InitSession(ctx)
	if err != nil {
		return domain.InitResult{}, err
	}
	if response.SessionID == "" {
		return domain.InitResult{}, fmt.Errorf("%w: init: empty sessionId", domain.ErrMalformedResponse)
	}

	session := domain.Session{ID: response.SessionID, CreatedAt: s.now().UTC()}
	if err := s.sessionStore.SaveSession(session); err != nil {
		return domain.InitResult{}, fmt.Errorf("save session: %w", err)
	}
	return domain.InitResult{
		SessionID:     response.SessionID,
		NeedChallenge: response.NeedChallenge,
	}, nil
}

// RequestChallenge fetches a fresh challenge. It has no local side effects.
func (s *Service) RequestChallenge(ctx context.Context) (domain.Challenge, error) {
	response, err := s.repository.Challenge(ctx)
	if err != nil {
		return domain.Challenge{}, err
	}
	if response.ChallengeID == "" {
		return domain.Challenge{}, fmt.Errorf("%w: challenge: empty challengeId", domain.ErrMalformedResponse)
	}
	return domain.Challenge{
		ID:   response.ChallengeID,
		Type: response.BotDetectionType,
		Data: response.Extra.ChallengeData,
	}, nil
}

// UpgradeSession submits a solution. Retry means the platform wants another
// challenge before the session is upgraded.
func (s *Service) UpgradeSession(
	ctx context.Context,
	solution domain.ChallengeSolution,
) (domain.VerifyOutcome, error) {
	response, err := s.repository.Verify(ctx, domain.VerifyRequest{
		ChallengeID: solution.ChallengeID,
		Solution:    solution.Solution,
	})
	if err != nil {
		return domain.VerifyOutcome{}, err
	}
	if response.Retry == nil {
		return domain.VerifyOutcome{}, fmt.Errorf("%w: verify: missing retry", domain.ErrMalformedResponse)
	}
	return domain.VerifyOutcome{Retry: *response.Retry}, nil
}

// EndSession deletes the session on the platform, then forgets it locally.
// The device identity is kept.
func (s *Service) EndSession(ctx context.Context) error {
	_, ok, err := s.sessionStore.LoadSession()
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	if !ok {
		return nil
	}
	if err := s.repository.DeleteSession(ctx); err != nil {
		return err
	}
	if err := s.sessionStore.ClearSession(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Compile-time assertion that Service implements domain.SessionService.
var _ domain.SessionService = (*Service)(nil)
