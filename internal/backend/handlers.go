package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"sessiongate/internal/domain"
	"sessiongate/internal/solver"
)

const maxRequestBody = 64 << 10

func (s *Server) handleInit(w http.ResponseWriter, r *http.Request) {
	device := domain.DeviceID(strings.TrimSpace(r.Header.Get(domain.HeaderDeviceID)))

	st := &sessionState{
		SessionInfo: SessionInfo{
			ID:        domain.SessionID(uuid.NewString()),
			DeviceID:  device,
			Verified:  !s.cfg.NeedChallenge,
			CreatedAt: s.now(),
		},
		retriesLeft: s.cfg.ForcedRetries,
	}
	s.mu.Lock()
	s.sessions[st.ID] = st
	s.mu.Unlock()
	s.metrics.sessions.Inc()

	writeJSON(w, http.StatusOK, domain.InitSessionResponse{
		SessionID:     st.ID,
		NeedChallenge: s.cfg.NeedChallenge,
	})
}

func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	st, ok := s.lookupSession(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown session")
		return
	}
	key := st.DeviceID.String()
	if key == "" {
		key = st.ID.String()
	}
	if !s.limiter.allow(key, s.now()) {
		s.metrics.throttled.Inc()
		writeError(w, http.StatusTooManyRequests, "too many challenges")
		return
	}

	c := &issuedChallenge{
		session: st.ID,
		kind:    s.cfg.ChallengeType,
		expires: s.now().Add(s.cfg.ChallengeTTL),
	}
	switch c.kind {
	case domain.BotDetectionProofOfWork:
		pow, err := solver.NewPoWChallenge(s.cfg.PoWDifficulty, s.cfg.ChallengeTTL, s.now())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "issue challenge: "+err.Error())
			return
		}
		c.pow, c.data = pow, pow.Encode()
	case domain.BotDetectionTurnstile:
		c.data = s.cfg.TurnstileSiteKey
	}

	id := domain.ChallengeID(uuid.NewString())
	s.mu.Lock()
	s.challenges[id] = c
	s.mu.Unlock()
	s.metrics.challenges.WithLabelValues(c.kind.String()).Inc()

	writeJSON(w, http.StatusOK, domain.ChallengeResponse{
		ChallengeID:      id,
		BotDetectionType: c.kind,
		Extra:            domain.ChallengeExtra{ChallengeData: c.data},
	})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	st, ok := s.lookupSession(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown session")
		return
	}
	var req domain.VerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	// Challenges are single-use: taken out of the table whatever the result.
	s.mu.Lock()
	c, ok := s.challenges[req.ChallengeID]
	if ok && c.session == st.ID {
		delete(s.challenges, req.ChallengeID)
	}
	s.mu.Unlock()
	if !ok || c.session != st.ID {
		s.metrics.verifications.WithLabelValues("unknown_challenge").Inc()
		writeError(w, http.StatusBadRequest, "unknown or already used challenge")
		return
	}

	if err := s.check(c, req.Solution); err != nil {
		s.logger.Info("solution rejected", "session_id", st.ID, "error", err)
		s.metrics.verifications.WithLabelValues("rejected").Inc()
		writeJSON(w, http.StatusOK, domain.NewVerifyResponse(true))
		return
	}

	s.mu.Lock()
	retry := st.retriesLeft > 0
	if retry {
		st.retriesLeft--
	} else {
		st.Verified = true
	}
	s.mu.Unlock()

	if retry {
		s.metrics.verifications.WithLabelValues("forced_retry").Inc()
	} else {
		s.metrics.verifications.WithLabelValues("verified").Inc()
	}
	writeJSON(w, http.StatusOK, domain.NewVerifyResponse(retry))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	st, ok := s.lookupSession(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "unknown session")
		return
	}
	s.mu.Lock()
	delete(s.sessions, st.ID)
	for id, c := range s.challenges {
		if c.session == st.ID {
			delete(s.challenges, id)
		}
	}
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) check(c *issuedChallenge, solution string) error {
	if s.now().After(c.expires) {
		return errors.New("challenge expired")
	}
	switch c.kind {
	case domain.BotDetectionProofOfWork:
		return c.pow.Check(solution, s.now())
	case domain.BotDetectionTurnstile:
		if solution == "" {
			return errors.New("empty turnstile token")
		}
		if s.cfg.TurnstileToken != "" && solution != s.cfg.TurnstileToken {
			return errors.New("turnstile token mismatch")
		}
		return nil
	default:
		return errors.New("challenge type cannot be solved")
	}
}

// lookupSession returns the session named by X-Session-ID.
func (s *Server) lookupSession(r *http.Request) (*sessionState, bool) {
	id := domain.SessionID(strings.TrimSpace(r.Header.Get(domain.HeaderSessionID)))
	if id == "" {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[id]
	return st, ok
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
