package solver_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"sessiongate/internal/solver"
)

func TestProofOfWork_SolveAndCheck(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c, err := solver.NewPoWChallenge(12, time.Minute, now)
	if err != nil {
		t.Fatalf("NewPoWChallenge: %v", err)
	}

	s := solver.ProofOfWorkSolver{Now: func() time.Time { return now }}
	nonce, err := s.Solve(context.Background(), c.Encode())
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}

	parsed, err := solver.ParsePoWChallenge(c.Encode())
	if err != nil {
		t.Fatalf("ParsePoWChallenge: %v", err)
	}
	if err := parsed.Check(nonce, now); err != nil {
		t.Fatalf("Check(%s): %v", nonce, err)
	}
}

func TestProofOfWork_CheckRejectsBadNonce(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c, _ := solver.NewPoWChallenge(solver.MaxPoWDifficulty, time.Minute, now)

	if err := c.Check("not-a-number", now); !errors.Is(err, solver.ErrPoWRejected) {
		t.Fatalf("want ErrPoWRejected, got %v", err)
	}
	// 32 zero bits from nonce 0 is a 1 in 4 billion chance.
	if err := c.Check("0", now); !errors.Is(err, solver.ErrPoWRejected) {
		t.Fatalf("want ErrPoWRejected, got %v", err)
	}
}

func TestProofOfWork_Expired(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	c, _ := solver.NewPoWChallenge(0, time.Second, now)
	later := now.Add(time.Minute)

	if err := c.Check("0", later); !errors.Is(err, solver.ErrPoWExpired) {
		t.Fatalf("Check: want ErrPoWExpired, got %v", err)
	}
	s := solver.ProofOfWorkSolver{Now: func() time.Time { return later }}
	if _, err := s.Solve(context.Background(), c.Encode()); !errors.Is(err, solver.ErrPoWExpired) {
		t.Fatalf("Solve: want ErrPoWExpired, got %v", err)
	}
}

func TestProofOfWork_InvalidPayloads(t *testing.T) {
	tests := []string{
		"",
		"{",
		`{"version":2,"algo":"sha256","difficulty":1,"salt_b64":""}`,
		`{"version":1,"algo":"md5","difficulty":1,"salt_b64":""}`,
		`{"version":1,"algo":"sha256","difficulty":99,"salt_b64":""}`,
		`{"version":1,"algo":"sha256","difficulty":1,"salt_b64":"***"}`,
	}
	for _, data := range tests {
		if _, err := (solver.ProofOfWorkSolver{}).Solve(context.Background(), data); !errors.Is(err, solver.ErrPoWChallengeInvalid) {
			t.Fatalf("Solve(%q): want ErrPoWChallengeInvalid, got %v", data, err)
		}
	}
}

func TestProofOfWork_HonoursCancellation(t *testing.T) {
	c, _ := solver.NewPoWChallenge(solver.MaxPoWDifficulty, time.Hour, time.Now())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := (solver.ProofOfWorkSolver{}).Solve(ctx, c.Encode()); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestProofOfWork_IterationCap(t *testing.T) {
	c, _ := solver.NewPoWChallenge(solver.MaxPoWDifficulty, time.Hour, time.Now())
	if _, err := (solver.ProofOfWorkSolver{MaxIterations: 10}).Solve(context.Background(), c.Encode()); err == nil {
		t.Fatal("expected search to give up")
	}
}
