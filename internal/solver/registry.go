package solver

import (
	"slices"
	"sync"

	"sessiongate/internal/domain"
)

// Registry is the lookup table from bot-detection type to solver. It is
// normally filled once at startup.
type Registry struct {
	mu      sync.RWMutex
	solvers map[domain.BotDetectionType]domain.Solver
}

// NewRegistry returns a registry holding a copy of solvers.
func NewRegistry(solvers map[domain.BotDetectionType]domain.Solver) *Registry {
	r := &Registry{solvers: make(map[domain.BotDetectionType]domain.Solver, len(solvers))}
	for t, s := range solvers {
		r.Register(t, s)
	}
	return r
}

// Register binds s to t, replacing any earlier binding. Nil solvers and the
// unspecified type are ignored.
func (r *Registry) Register(t domain.BotDetectionType, s domain.Solver) {
	if s == nil || t == domain.BotDetectionUnspecified || t == "" {
		return
	}
	r.mu.Lock()
	r.solvers[t] = s
	r.mu.Unlock()
}

// Solver returns the solver registered for t.
func (r *Registry) Solver(t domain.BotDetectionType) (domain.Solver, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.solvers[t]
	return s, ok
}

// Types lists the registered bot-detection types in sorted order.
func (r *Registry) Types() []domain.BotDetectionType {
	r.mu.RLock()
	out := make([]domain.BotDetectionType, 0, len(r.solvers))
	for t := range r.solvers {
		out = append(out, t)
	}
	r.mu.RUnlock()
	slices.Sort(out)
	return out
}

// Compile-time assertion that Registry implements domain.SolverRegistry.
var _ domain.SolverRegistry = (*Registry)(nil)
