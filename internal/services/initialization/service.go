package initialization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sessiongate/internal/domain"
	"sessiongate/internal/logging"
	"sessiongate/internal/metrics"
)

// DefaultMaxRetries is the number of fresh challenges issued after the first
// one is answered with retry=true.
const DefaultMaxRetries = 3

// errAbandoned is the result of a run cancelled because every caller left.
var errAbandoned = errors.New("initialization abandoned")

// Outcome describes a successful Initialize call.
type Outcome struct {
	SessionID domain.SessionID
	// Reused is set when a stored session was returned without any RPC.
	Reused bool
	// Attempts counts challenge/verify rounds; zero when none were needed.
	Attempts int
}

// Options tune a Service. The zero value gives the default behaviour.
type Options struct {
	// MaxRetries bounds extra challenge rounds; zero means DefaultMaxRetries
	// and a negative value allows no retry at all.
	MaxRetries int
	// SolveTimeout bounds each Solve call; zero means no bound.
	SolveTimeout time.Duration
	// MaxSessionAge makes stored sessions older than this be replaced;
	// zero trusts any stored session.
	MaxSessionAge time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
	// OnStateChange is called on every transition, from the goroutine
	// running the flow.
	OnStateChange func(State)
}

// Service establishes sessions.
type Service struct {
	sessions     domain.SessionService
	sessionStore domain.SessionStore
	solvers      domain.SolverRegistry

	maxRetries    int
	solveTimeout  time.Duration
	maxSessionAge time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
	onStateChange func(State)

	flight singleflight.Group

	// runCtx is shared by every caller waiting on the current run and is
	// cancelled once the last of them leaves.
	waitMu    sync.Mutex
	waiters   int
	runCtx    context.Context
	runCancel context.CancelFunc

	mu    sync.Mutex
	state State
}

// New returns a Service using the given session service, store and solvers.
func New(
	sessions domain.SessionService,
	sessionStore domain.SessionStore,
	solvers domain.SolverRegistry,
	opts Options,
) *Service {
	maxRetries := opts.MaxRetries
	switch {
	case maxRetries == 0:
		maxRetries = DefaultMaxRetries
	case maxRetries < 0:
		maxRetries = 0
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		sessions:      sessions,
		sessionStore:  sessionStore,
		solvers:       solvers,
		maxRetries:    maxRetries,
		solveTimeout:  opts.SolveTimeout,
		maxSessionAge: opts.MaxSessionAge,
		logger:        logging.OrDiscard(opts.Logger),
		metrics:       opts.Metrics,
		now:           now,
		onStateChange: opts.OnStateChange,
	}
}

// State returns the state of the current or most recent run.
func (s *Service) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Initialize makes sure a session exists. Callers arriving while a run is in
// flight wait for that run and share its result. A caller whose own context
// ends returns early; the run is only cancelled once no caller is waiting
// on it any more.
//
// On error no usable session is stored.
func (s *Service) Initialize(ctx context.Context) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	runCtx := s.join(ctx)
	defer s.leave()

	for {
		ch := s.flight.DoChan("initialize", func() (any, error) {
			out, err := s.run(runCtx)
			if err != nil && runCtx.Err() != nil {
				return nil, errAbandoned
			}
			return out, err
		})
		select {
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		case r := <-ch:
			if errors.Is(r.Err, errAbandoned) {
				// An earlier run lost all its callers before we joined.
				continue
			}
			if r.Err != nil {
				return Outcome{}, r.Err
			}
			return r.Val.(Outcome), nil
		}
	}
}

// join registers a waiting caller and returns the context runs should use.
// The run keeps the first caller's values but none of its cancellation.
func (s *Service) join(ctx context.Context) context.Context {
	s.waitMu.Lock()
	defer s.waitMu.Unlock()
	if s.runCtx == nil {
		s.runCtx, s.runCancel = context.WithCancel(context.WithoutCancel(ctx))
	}
	s.waiters++
	return s.runCtx
}

func (s *Service) leave() {
	s.waitMu.Lock()
	defer s.waitMu.Unlock()
	s.waiters--
	if s.waiters == 0 {
		s.runCancel()
		s.runCtx, s.runCancel = nil, nil
	}
}

func (s *Service) run(ctx context.Context) (Outcome, error) {
	s.setState(StateIdle)

	outcome, err := s.establish(ctx)
	if err != nil {
		s.setState(StateFailed)
		s.metrics.ObserveInitialization(metrics.ResultFailed)
		s.logger.Warn("session initialization failed", "error", err)
		return Outcome{}, err
	}

	s.setState(StateEstablished)
	if outcome.Reused {
		s.metrics.ObserveInitialization(metrics.ResultReused)
	} else {
		s.metrics.ObserveInitialization(metrics.ResultEstablished)
		s.logger.Info("session established",
			"session_id", outcome.SessionID,
			"attempts", outcome.Attempts,
		)
	}
	return outcome, nil
}

func (s *Service) establish(ctx context.Context) (Outcome, error) {
	stored, ok, err := s.sessionStore.LoadSession()
	if err != nil {
		return Outcome{}, fmt.Errorf("load session: %w", err)
	}
	if ok {
		if s.maxSessionAge <= 0 || stored.Age(s.now()) <= s.maxSessionAge {
			s.logger.Debug("reusing stored session", "session_id", stored.ID)
			return Outcome{SessionID: stored.ID, Reused: true}, nil
		}
		s.logger.Info("stored session expired",
			"session_id", stored.ID,
			"age", stored.Age(s.now()).Round(time.Second),
		)
		if err := s.sessionStore.ClearSession(); err != nil {
			return Outcome{}, fmt.Errorf("clear expired session: %w", err)
		}
	}

	s.setState(StateInitializing)
	started, err := s.sessions.InitSession(ctx)
	if err != nil {
		return Outcome{}, err
	}
	if !started.NeedChallenge {
		return Outcome{SessionID: started.SessionID}, nil
	}

	attempts, err := s.challengeLoop(ctx)
	if err != nil {
		if clearErr := s.sessionStore.ClearSession(); clearErr != nil {
			err = errors.Join(err, fmt.Errorf("clear session: %w", clearErr))
		}
		return Outcome{}, err
	}
	return Outcome{SessionID: started.SessionID, Attempts: attempts}, nil
}

// challengeLoop runs challenge, solve and verify until the platform stops
// asking for a retry. It returns the number of rounds used.
func (s *Service) challengeLoop(ctx context.Context) (int, error) {
	for attempt := 1; ; attempt++ {
		s.setState(StateAwaitingChallenge)
		challenge, err := s.sessions.RequestChallenge(ctx)
		if err != nil {
			return attempt, err
		}
		s.metrics.ObserveChallenge(challenge.Type)

		solver, ok := s.solvers.Solver(challenge.Type)
		if !ok {
			return attempt, fmt.Errorf("%w: %s", domain.ErrChallengeUnsolvable, challenge.Type)
		}

		s.setState(StateSolving)
		token, err := s.solve(ctx, solver, challenge)
		if err != nil {
			return attempt, err
		}

		s.setState(StateVerifying)
		outcome, err := s.sessions.UpgradeSession(ctx, domain.ChallengeSolution{
			ChallengeID: challenge.ID,
			Solution:    token,
		})
		if err != nil {
			return attempt, err
		}
		if !outcome.Retry {
			return attempt, nil
		}
		if attempt > s.maxRetries {
			return attempt, fmt.Errorf("%w after %d attempts", domain.ErrRetryBudgetExceeded, attempt)
		}
		s.logger.Info("platform requested another challenge",
			"challenge_id", challenge.ID,
			"attempt", attempt,
		)
	}
}

func (s *Service) solve(
	ctx context.Context,
	solver domain.Solver,
	challenge domain.Challenge,
) (string, error) {
	solveCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.solveTimeout > 0 {
		solveCtx, cancel = context.WithTimeout(ctx, s.solveTimeout)
	}
	defer cancel()

	s.logger.Debug("solving challenge",
		"challenge_id", challenge.ID,
		"bot_detection_type", challenge.Type,
	)
	start := s.now()
	token, err := solver.Solve(solveCtx, challenge.Data)
	s.metrics.ObserveSolve(challenge.Type, s.now().Sub(start), err)

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %s: %w", domain.ErrSolverFailed, challenge.Type, err)
	}
	if token == "" {
		return "", fmt.Errorf("%w: %s: empty solution", domain.ErrSolverFailed, challenge.Type)
	}
	return token, nil
}

func (s *Service) setState(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()

	if prev != next {
		s.logger.Debug("initialization state", "from", prev.String(), "to", next.String())
	}
	if s.onStateChange != nil {
		s.onStateChange(next)
	}
}
