package app_test

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"sessiongate/internal/app"
	"sessiongate/internal/backend"
	"sessiongate/internal/domain"
)

func startPlatform(t *testing.T, mutate func(*backend.Config)) (*backend.Server, string) {
	t.Helper()
	cfg := backend.DefaultConfig()
	cfg.PoWDifficulty = 8
	mutate(&cfg)
	srv, err := backend.New(cfg)
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts.URL
}

func newWire(t *testing.T, url string, mutate func(*app.Config), deps app.Deps) *app.Wire {
	t.Helper()
	cfg := app.DefaultConfig()
	cfg.Home = t.TempDir()
	cfg.PlatformURL = url
	cfg.Solve.Timeout = 10 * time.Second
	mutate(&cfg)
	w, err := app.NewWire(cfg, deps)
	if err != nil {
		t.Fatalf("NewWire: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestWire_ProofOfWorkEndToEnd(t *testing.T) {
	for _, backendName := range []string{app.StorageMemory, app.StorageFile, app.StorageSQLite} {
		t.Run(backendName, func(t *testing.T) {
			srv, url := startPlatform(t, func(c *backend.Config) { c.ForcedRetries = 1 })
			reg := prometheus.NewRegistry()
			w := newWire(t, url, func(c *app.Config) { c.Storage.Backend = backendName }, app.Deps{Registerer: reg})

			out, err := w.Start(context.Background())
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			if out.Reused || out.Attempts != 2 {
				t.Fatalf("outcome = %+v", out)
			}
			info, ok := srv.Session(out.SessionID)
			if !ok || !info.Verified {
				t.Fatalf("platform session = %+v (present %v)", info, ok)
			}
			st, err := w.Status()
			if err != nil {
				t.Fatalf("Status: %v", err)
			}
			if !st.HasDevice || info.DeviceID != st.Device.ID {
				t.Fatalf("device header not sent: platform %q, local %+v", info.DeviceID, st.Device)
			}

			again, err := w.Start(context.Background())
			if err != nil || !again.Reused || again.SessionID != out.SessionID {
				t.Fatalf("second Start = %+v, %v", again, err)
			}

			families, _ := reg.Gather()
			var names []string
			for _, mf := range families {
				names = append(names, mf.GetName())
			}
			if !strings.Contains(strings.Join(names, ","), "sessiongate_initializations_total") {
				t.Fatalf("metrics not registered: %v", names)
			}
		})
	}
}

func TestWire_RetryBudgetAgainstPlatform(t *testing.T) {
	_, url := startPlatform(t, func(c *backend.Config) { c.ForcedRetries = 10 })
	w := newWire(t, url, func(c *app.Config) { c.Storage.Backend = app.StorageMemory }, app.Deps{})

	if _, err := w.Start(context.Background()); !errors.Is(err, domain.ErrRetryBudgetExceeded) {
		t.Fatalf("want ErrRetryBudgetExceeded, got %v", err)
	}
	if st, _ := w.Status(); st.HasSession {
		t.Fatal("failed start left a session behind")
	}
}

func TestWire_ManualTurnstile(t *testing.T) {
	_, url := startPlatform(t, func(c *backend.Config) {
		c.ChallengeType = domain.BotDetectionTurnstile
		c.TurnstileToken = "pasted-token"
	})
	var prompt bytes.Buffer
	w := newWire(t, url, func(c *app.Config) {
		c.Storage.Backend = app.StorageMemory
		c.Solve.Manual = true
	}, app.Deps{In: strings.NewReader("pasted-token\n"), Out: &prompt})

	out, err := w.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if out.Attempts != 1 {
		t.Fatalf("attempts = %d", out.Attempts)
	}
	if !strings.Contains(prompt.String(), "solution token") {
		t.Fatalf("no prompt shown: %q", prompt.String())
	}
}

func TestWire_LogoutKeepsDevice(t *testing.T) {
	srv, url := startPlatform(t, func(c *backend.Config) { c.NeedChallenge = false })
	w := newWire(t, url, func(c *app.Config) { c.Storage.Backend = app.StorageMemory }, app.Deps{})

	out, err := w.Start(context.Background())
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	before, _ := w.Status()

	if err := w.Logout(context.Background(), false); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := srv.Session(out.SessionID); ok {
		t.Fatal("platform session survived logout")
	}
	after, _ := w.Status()
	if after.HasSession {
		t.Fatal("local session survived logout")
	}
	if !after.HasDevice || after.Device.ID != before.Device.ID {
		t.Fatal("logout must keep the device identity")
	}
}

func TestWire_SealedFileStorage(t *testing.T) {
	_, url := startPlatform(t, func(c *backend.Config) { c.NeedChallenge = false })
	w := newWire(t, url, func(c *app.Config) { c.Storage.Secret = "correct horse" }, app.Deps{})

	if _, err := w.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if st, err := w.Status(); err != nil || !st.HasSession {
		t.Fatalf("Status = %+v, %v", st, err)
	}
}

func TestNewWire_RejectsInvalidConfig(t *testing.T) {
	cfg := app.DefaultConfig()
	cfg.Storage.Backend = "tape"
	if _, err := app.NewWire(cfg, app.Deps{}); err == nil {
		t.Fatal("expected error")
	}
}
