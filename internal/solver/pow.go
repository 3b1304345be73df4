package solver

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/bits"
	"strconv"
	"time"

	"sessiongate/internal/domain"
)

const (
	powVersion = 1
	powAlgo    = "sha256"

	// MaxPoWDifficulty caps the number of leading zero bits a challenge may
	// demand. Anything higher is treated as a hostile payload.
	MaxPoWDifficulty = 32

	powSaltSize = 16
)

var (
	// ErrPoWChallengeInvalid is returned for payloads that cannot be parsed
	// or use an unsupported version, algorithm or difficulty.
	ErrPoWChallengeInvalid = errors.New("invalid proof-of-work challenge")

	// ErrPoWExpired is returned once a challenge is past its deadline.
	ErrPoWExpired = errors.New("proof-of-work challenge expired")

	// ErrPoWRejected is returned when a nonce does not meet the difficulty.
	ErrPoWRejected = errors.New("proof-of-work solution rejected")
)

// PoWChallenge is the challengeData payload of a PROOF_OF_WORK challenge.
// A solution is a decimal nonce such that sha256(salt || nonce) starts with
// Difficulty zero bits.
type PoWChallenge struct {
	Version    int    `json:"version"`
	Algo       string `json:"algo"`
	Difficulty int    `json:"difficulty"`
	SaltB64    string `json:"salt_b64"`
	Expires    int64  `json:"expires"`
}

// NewPoWChallenge returns a challenge with a random salt valid for ttl.
func NewPoWChallenge(difficulty int, ttl time.Duration, now time.Time) (PoWChallenge, error) {
	if difficulty < 0 || difficulty > MaxPoWDifficulty {
		return PoWChallenge{}, fmt.Errorf("%w: difficulty %d", ErrPoWChallengeInvalid, difficulty)
	}
	salt := make([]byte, powSaltSize)
	if _, err := rand.Read(salt); err != nil {
		return PoWChallenge{}, err
	}
	return PoWChallenge{
		Version:    powVersion,
		Algo:       powAlgo,
		Difficulty: difficulty,
		SaltB64:    base64.StdEncoding.EncodeToString(salt),
		Expires:    now.Add(ttl).Unix(),
	}, nil
}

// ParsePoWChallenge decodes and validates a challengeData payload.
func ParsePoWChallenge(data string) (PoWChallenge, error) {
	var c PoWChallenge
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return PoWChallenge{}, fmt.Errorf("%w: %v", ErrPoWChallengeInvalid, err)
	}
	switch {
	case c.Version != powVersion:
		return PoWChallenge{}, fmt.Errorf("%w: version %d", ErrPoWChallengeInvalid, c.Version)
	case c.Algo != powAlgo:
		return PoWChallenge{}, fmt.Errorf("%w: algo %q", ErrPoWChallengeInvalid, c.Algo)
	case c.Difficulty < 0 || c.Difficulty > MaxPoWDifficulty:
		return PoWChallenge{}, fmt.Errorf("%w: difficulty %d", ErrPoWChallengeInvalid, c.Difficulty)
	}
	if _, err := c.salt(); err != nil {
		return PoWChallenge{}, fmt.Errorf("%w: salt: %v", ErrPoWChallengeInvalid, err)
	}
	return c, nil
}

// Encode returns the challengeData form of c.
func (c PoWChallenge) Encode() string {
	b, _ := json.Marshal(c)
	return string(b)
}

// Check reports whether nonce solves c at time now.
func (c PoWChallenge) Check(nonce string, now time.Time) error {
	if c.Expires != 0 && now.Unix() > c.Expires {
		return ErrPoWExpired
	}
	if _, err := strconv.ParseUint(nonce, 10, 64); err != nil {
		return fmt.Errorf("%w: nonce %q", ErrPoWRejected, nonce)
	}
	salt, err := c.salt()
	if err != nil {
		return fmt.Errorf("%w: salt: %v", ErrPoWChallengeInvalid, err)
	}
	if leadingZeroBits(powDigest(salt, nonce)) < c.Difficulty {
		return ErrPoWRejected
	}
	return nil
}

func (c PoWChallenge) salt() ([]byte, error) {
	return base64.StdEncoding.DecodeString(c.SaltB64)
}

// ProofOfWorkSolver brute-forces PoW challenges locally.
type ProofOfWorkSolver struct {
	// MaxIterations bounds the search; zero means unbounded.
	MaxIterations uint64
	Now           func() time.Time
}

// Solve searches nonces from zero upwards, checking ctx periodically.
func (s ProofOfWorkSolver) Solve(ctx context.Context, challengeData string) (string, error) {
	c, err := ParsePoWChallenge(challengeData)
	if err != nil {
		return "", err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	if c.Expires != 0 && now().Unix() > c.Expires {
		return "", ErrPoWExpired
	}
	salt, _ := c.salt()

	for nonce := uint64(0); s.MaxIterations == 0 || nonce < s.MaxIterations; nonce++ {
		if nonce&0xfff == 0 {
			if err := ctx.Err(); err != nil {
				return "", err
			}
		}
		candidate := strconv.FormatUint(nonce, 10)
		if leadingZeroBits(powDigest(salt, candidate)) >= c.Difficulty {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no nonce found in %d iterations", s.MaxIterations)
}

func powDigest(salt []byte, nonce string) [sha256.Size]byte {
	h := sha256.New()
	h.Write(salt)
	h.Write([]byte(nonce))
	var out [sha256.Size]byte
	h.Sum(out[:0])
	return out
}

func leadingZeroBits(sum [sha256.Size]byte) int {
	n := 0
	for _, b := range sum {
		if b != 0 {
			return n + bits.LeadingZeros8(b)
		}
		n += 8
	}
	return n
}

var _ domain.Solver = ProofOfWorkSolver{}
