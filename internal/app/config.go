package app

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sessiongate/internal/logging"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SESSIONGATE_"

// Storage backends.
const (
	StorageFile   = "file"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Config holds runtime wiring options for building the app.
type Config struct {
	// Home is the state directory, e.g. $HOME/.sessiongate.
	Home string `yaml:"home"`
	// PlatformURL is the platform base URL, e.g. http://127.0.0.1:8080.
	PlatformURL string        `yaml:"platform_url"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	Storage StorageConfig `yaml:"storage"`
	Session SessionConfig `yaml:"session"`
	Solve   SolveConfig   `yaml:"solve"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig selects where sessions and the device identity live.
type StorageConfig struct {
	// Backend is one of file, sqlite or memory.
	Backend string `yaml:"backend"`
	// Secret seals file slots at rest. Empty stores plaintext JSON.
	Secret string `yaml:"secret"`
}

// SessionConfig tunes session reuse and the challenge retry budget.
type SessionConfig struct {
	// MaxAge replaces stored sessions older than this. Zero trusts any
	// stored session.
	MaxAge     time.Duration `yaml:"max_age"`
	MaxRetries int           `yaml:"max_retries"`
}

// SolveConfig configures the challenge solvers.
type SolveConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	// Manual makes the Turnstile solver read pasted tokens from stdin
	// instead of serving the widget page.
	Manual           bool   `yaml:"manual"`
	TurnstileListen  string `yaml:"turnstile_listen"`
	TurnstileSiteKey string `yaml:"turnstile_site_key"`
	// PoWMaxIterations bounds the proof-of-work search; zero is unbounded.
	PoWMaxIterations uint64 `yaml:"pow_max_iterations"`
}

// LogConfig selects log verbosity and encoding.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the built-in defaults. Home is left empty and
// resolved by ResolveHome.
func DefaultConfig() Config {
	return Config{
		PlatformURL: "http://127.0.0.1:8080",
		HTTPTimeout: 15 * time.Second,
		Storage:     StorageConfig{Backend: StorageFile},
		Session:     SessionConfig{MaxRetries: 3},
		Solve: SolveConfig{
			Timeout:         5 * time.Minute,
			TurnstileListen: "127.0.0.1:0",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// LoadConfigFile overlays the YAML file at path onto cfg. Unknown keys are
// rejected.
func LoadConfigFile(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays SESSIONGATE_* variables onto cfg. lookup is usually
// os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("HOME", &cfg.Home)
	str("PLATFORM_URL", &cfg.PlatformURL)
	str("STORAGE_BACKEND", &cfg.Storage.Backend)
	str("STORAGE_SECRET", &cfg.Storage.Secret)
	str("TURNSTILE_LISTEN", &cfg.Solve.TurnstileListen)
	str("TURNSTILE_SITE_KEY", &cfg.Solve.TurnstileSiteKey)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)

	if err := errors.Join(
		dur("HTTP_TIMEOUT", &cfg.HTTPTimeout),
		dur("SOLVE_TIMEOUT", &cfg.Solve.Timeout),
		dur("SESSION_MAX_AGE", &cfg.Session.MaxAge),
	); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "MAX_RETRIES"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sMAX_RETRIES: %w", EnvPrefix, err)
		}
		cfg.Session.MaxRetries = n
	}
	if v, ok := lookup(EnvPrefix + "SOLVE_MANUAL"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sSOLVE_MANUAL: %w", EnvPrefix, err)
		}
		cfg.Solve.Manual = b
	}
	return nil
}

// ResolveHome fills in Home with ~/.sessiongate when unset.
func (c *Config) ResolveHome() error {
	if c.Home != "" {
		return nil
	}
	dir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	c.Home = filepath.Join(dir, ".sessiongate")
	return nil
}

// Validate rejects configurations that cannot be wired.
func (c Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.PlatformURL)
	switch {
	case c.PlatformURL == "":
		errs = append(errs, errors.New("platform_url is required"))
	case err != nil:
		errs = append(errs, fmt.Errorf("platform_url: %w", err))
	case u.Scheme != "http" && u.Scheme != "https", u.Host == "":
		errs = append(errs, fmt.Errorf("platform_url %q must be an absolute http(s) URL", c.PlatformURL))
	}

	switch c.Storage.Backend {
	case StorageFile, StorageSQLite:
		if c.Home == "" {
			errs = append(errs, fmt.Errorf("home is required for %s storage", c.Storage.Backend))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.backend %q is not one of file, sqlite, memory", c.Storage.Backend))
	}
	if c.Storage.Secret != "" && c.Storage.Backend != StorageFile {
		errs = append(errs, errors.New("storage.secret is only supported by the file backend"))
	}

	if c.HTTPTimeout < 0 {
		errs = append(errs, errors.New("http_timeout must not be negative"))
	}
	if c.Solve.Timeout < 0 {
		errs = append(errs, errors.New("solve.timeout must not be negative"))
	}
	if c.Session.MaxAge < 0 {
		errs = append(errs, errors.New("session.max_age must not be negative"))
	}
	if c.Session.MaxRetries < 0 {
		errs = append(errs, errors.New("session.max_retries must not be negative"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is not text or json", c.Log.Format))
	}
	return errors.Join(errs...)
}
