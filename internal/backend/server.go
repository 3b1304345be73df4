package backend

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sessiongate/internal/domain"
	"sessiongate/internal/logging"
	"sessiongate/internal/solver"
)

// Config controls how the development platform behaves.
type Config struct {
	// NeedChallenge makes new sessions require a challenge round.
	NeedChallenge bool
	// ChallengeType is the bot-detection type issued for every challenge.
	ChallengeType domain.BotDetectionType
	// ForcedRetries answers the first N accepted solutions of each session
	// with retry=true.
	ForcedRetries int
	// PoWDifficulty is the leading-zero-bit target for PROOF_OF_WORK.
	PoWDifficulty int
	ChallengeTTL  time.Duration
	// TurnstileSiteKey is sent as challenge data for TURNSTILE.
	TurnstileSiteKey string
	// TurnstileToken, when set, is the only Turnstile solution accepted.
	TurnstileToken string
	// ChallengeRPS and ChallengeBurst throttle challenge issuance per device.
	// Zero disables throttling.
	ChallengeRPS   float64
	ChallengeBurst int

	Logger   *slog.Logger
	Registry *prometheus.Registry
	Now      func() time.Time
}

// DefaultConfig returns a configuration issuing easy proof-of-work
// challenges with no forced retries.
func DefaultConfig() Config {
	return Config{
		NeedChallenge:    true,
		ChallengeType:    domain.BotDetectionProofOfWork,
		PoWDifficulty:    16,
		ChallengeTTL:     5 * time.Minute,
		TurnstileSiteKey: "1x00000000000000000000AA",
		ChallengeRPS:     1,
		ChallengeBurst:   10,
	}
}

// SessionInfo is the server's view of one session.
type SessionInfo struct {
	ID        domain.SessionID
	DeviceID  domain.DeviceID
	Verified  bool
	CreatedAt time.Time
}

type sessionState struct {
	SessionInfo
	retriesLeft int
}

type issuedChallenge struct {
	session domain.SessionID
	kind    domain.BotDetectionType
	data    string
	pow     solver.PoWChallenge
	expires time.Time
}

// Server is the development platform.
type Server struct {
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time
	limiter *keyLimiter
	metrics *serverMetrics
	router  chi.Router

	mu         sync.Mutex
	sessions   map[domain.SessionID]*sessionState
	challenges map[domain.ChallengeID]*issuedChallenge
}

// New validates cfg and builds a Server.
func New(cfg Config) (*Server, error) {
	switch cfg.ChallengeType {
	case domain.BotDetectionProofOfWork:
		if cfg.PoWDifficulty < 0 || cfg.PoWDifficulty > solver.MaxPoWDifficulty {
			return nil, fmt.Errorf("pow difficulty %d out of range 0..%d", cfg.PoWDifficulty, solver.MaxPoWDifficulty)
		}
	case domain.BotDetectionTurnstile:
		if cfg.TurnstileSiteKey == "" {
			return nil, errors.New("turnstile challenges need a site key")
		}
	case domain.BotDetectionUnspecified:
	default:
		return nil, fmt.Errorf("unknown challenge type %q", cfg.ChallengeType)
	}
	if cfg.ForcedRetries < 0 {
		return nil, errors.New("forced retries must not be negative")
	}
	if cfg.ChallengeTTL <= 0 {
		cfg.ChallengeTTL = 5 * time.Minute
	}
	if cfg.Registry == nil {
		cfg.Registry = prometheus.NewRegistry()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	m, err := newServerMetrics(cfg.Registry)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:        cfg,
		logger:     logging.OrDiscard(cfg.Logger),
		now:        now,
		limiter:    newKeyLimiter(cfg.ChallengeRPS, cfg.ChallengeBurst),
		metrics:    m,
		sessions:   make(map[domain.SessionID]*sessionState),
		challenges: make(map[domain.ChallengeID]*issuedChallenge),
	}
	s.router = s.routes()
	return s, nil
}

// Handler returns the HTTP handler serving the API and /metrics.
func (s *Server) Handler() http.Handler { return s.router }

// Session returns the server's record of id.
func (s *Server) Session(id domain.SessionID) (SessionInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[id]
	if !ok {
		return SessionInfo{}, false
	}
	return st.SessionInfo, true
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	r.Use(recoverer(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.Registry, promhttp.HandlerOpts{}))

	r.Post("/v1/session/init", s.handleInit)
	r.Post("/v1/session/challenge", s.handleChallenge)
	r.Post("/v1/session/verify", s.handleVerify)
	r.Delete("/v1/session", s.handleDelete)
	return r
}
