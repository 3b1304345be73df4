package solver_test

import (
	"context"
	"slices"
	"testing"

	"sessiongate/internal/domain"
	"sessiongate/internal/solver"
)

func TestRegistry_Lookup(t *testing.T) {
	turnstile := solver.StaticSolver{Token: "tok"}
	r := solver.NewRegistry(map[domain.BotDetectionType]domain.Solver{
		domain.BotDetectionTurnstile: turnstile,
	})

	s, ok := r.Solver(domain.BotDetectionTurnstile)
	if !ok {
		t.Fatal("turnstile solver missing")
	}
	if got, _ := s.Solve(context.Background(), ""); got != "tok" {
		t.Fatalf("wrong solver returned, token %q", got)
	}
	if _, ok := r.Solver(domain.BotDetectionProofOfWork); ok {
		t.Fatal("unexpected proof-of-work solver")
	}
}

func TestRegistry_UnspecifiedNeverResolves(t *testing.T) {
	r := solver.NewRegistry(nil)
	r.Register(domain.BotDetectionUnspecified, solver.StaticSolver{Token: "x"})
	r.Register(domain.BotDetectionTurnstile, nil)

	if _, ok := r.Solver(domain.BotDetectionUnspecified); ok {
		t.Fatal("UNSPECIFIED must have no solver")
	}
	if _, ok := r.Solver(domain.BotDetectionTurnstile); ok {
		t.Fatal("nil solver must not register")
	}
}

func TestRegistry_Types(t *testing.T) {
	r := solver.NewRegistry(nil)
	r.Register(domain.BotDetectionTurnstile, solver.StaticSolver{Token: "a"})
	r.Register(domain.BotDetectionProofOfWork, solver.ProofOfWorkSolver{})

	want := []domain.BotDetectionType{domain.BotDetectionProofOfWork, domain.BotDetectionTurnstile}
	if got := r.Types(); !slices.Equal(got, want) {
		t.Fatalf("Types() = %v, want %v", got, want)
	}
}
