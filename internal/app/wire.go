package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"sessiongate/internal/domain"
	"sessiongate/internal/logging"
	"sessiongate/internal/metrics"
	"sessiongate/internal/platform"
	devicesvc "sessiongate/internal/services/device"
	"sessiongate/internal/services/initialization"
	sessionsvc "sessiongate/internal/services/session"
	"sessiongate/internal/solver"
	"sessiongate/internal/store"
)

// sqliteFile is the database name used by the sqlite backend under Home.
const sqliteFile = "sessiongate.db"

// Deps are process resources handed to NewWire. Zero values are replaced by
// harmless defaults.
type Deps struct {
	Logger *slog.Logger
	// Registerer receives the initialization metrics. It is meant for
	// long-running embedders that expose or push them; nil disables metrics.
	Registerer prometheus.Registerer
	HTTP       *http.Client
	// In and Out carry operator interaction: the Turnstile page URL or the
	// manual token prompt.
	In  io.Reader
	Out io.Writer
}

// Wire bundles all stores, services, and clients for the CLI.
type Wire struct {
	Sessions    domain.SessionStore
	Devices     domain.DeviceIdentityStore
	Repository  *platform.Repository
	Solvers     *solver.Registry
	Session     *sessionsvc.Service
	Device      *devicesvc.Service
	Initializer *initialization.Service
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
	HTTP        *http.Client

	closers []io.Closer
}

// NewWire constructs the dependency graph from cfg.
func NewWire(cfg Config, deps Deps) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := logging.OrDiscard(deps.Logger)
	out := deps.Out
	if out == nil {
		out = io.Discard
	}

	w := &Wire{Logger: logger}

	slots, err := w.openSlots(cfg)
	if err != nil {
		return nil, err
	}
	w.Sessions = store.NewSessionStore(slots)
	w.Devices = store.NewDeviceStore(slots)

	// Ensure an HTTP client is available for outbound calls
	w.HTTP = deps.HTTP
	if w.HTTP == nil {
		w.HTTP = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	w.Repository = platform.NewRepository(
		platform.NewHTTPTransport(cfg.PlatformURL, w.HTTP),
		w.Sessions,
		w.Devices,
	)

	if deps.Registerer != nil {
		if w.Metrics, err = metrics.New(deps.Registerer); err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	w.Solvers = newSolvers(cfg.Solve, deps.In, out, logger)
	w.Session = sessionsvc.New(w.Repository, w.Sessions)
	w.Device = devicesvc.New(w.Devices)

	maxRetries := cfg.Session.MaxRetries
	if maxRetries == 0 {
		maxRetries = -1
	}
	w.Initializer = initialization.New(w.Session, w.Sessions, w.Solvers, initialization.Options{
		MaxRetries:    maxRetries,
		SolveTimeout:  cfg.Solve.Timeout,
		MaxSessionAge: cfg.Session.MaxAge,
		Logger:        logger,
		Metrics:       w.Metrics,
	})
	return w, nil
}

// Close releases storage handles.
func (w *Wire) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	w.closers = nil
	return first
}

func (w *Wire) openSlots(cfg Config) (store.Slots, error) {
	switch cfg.Storage.Backend {
	case StorageMemory:
		return store.NewMemorySlots(), nil
	case StorageSQLite:
		db, err := store.OpenSQLiteSlots(filepath.Join(cfg.Home, sqliteFile))
		if err != nil {
			return nil, err
		}
		w.closers = append(w.closers, db)
		return db, nil
	default:
		if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
			return nil, err
		}
		if cfg.Storage.Secret != "" {
			return store.NewSealedFileSlots(cfg.Home, cfg.Storage.Secret), nil
		}
		return store.NewFileSlots(cfg.Home), nil
	}
}

func newSolvers(cfg SolveConfig, in io.Reader, out io.Writer, logger *slog.Logger) *solver.Registry {
	var turnstile domain.Solver = solver.TurnstileSolver{
		Addr:    cfg.TurnstileListen,
		SiteKey: cfg.TurnstileSiteKey,
		Announce: func(url string) {
			fmt.Fprintf(out, "Complete the bot check in your browser: %s\n", url)
		},
		Logger: logger,
	}
	if cfg.Manual && in != nil {
		turnstile = solver.NewPromptSolver(in, out)
	}
	return solver.NewRegistry(map[domain.BotDetectionType]domain.Solver{
		domain.BotDetectionTurnstile:   turnstile,
		domain.BotDetectionProofOfWork: solver.ProofOfWorkSolver{MaxIterations: cfg.PoWMaxIterations},
	})
}
