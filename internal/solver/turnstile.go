package solver

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"sessiongate/internal/domain"
	"sessiongate/internal/logging"
)

const (
	defaultTurnstileAddr = "127.0.0.1:0"
	turnstileTokenField  = "cf-turnstile-response"
	turnstileStateField  = "state"
)

var turnstilePage = template.Must(template.New("turnstile").Parse(`<!doctype html>
<html>
<head>
<meta charset="utf-8">
<title>Verify you are human</title>
<script src="https://challenges.cloudflare.com/turnstile/v0/api.js" async defer></script>
</head>
<body>
<form id="verify" method="post" action="/callback">
<input type="hidden" name="state" value="{{.State}}">
<div class="cf-turnstile" data-sitekey="{{.SiteKey}}" data-callback="onVerified"></div>
</form>
<script>function onVerified() { document.getElementById("verify").submit(); }</script>
</body>
</html>
`))

// TurnstileSolver serves the Turnstile widget on a loopback address and
// waits for the browser to post the resulting token back. challengeData
// carries the site key.
type TurnstileSolver struct {
	// Addr is the listen address; empty means an ephemeral loopback port.
	Addr string
	// SiteKey is used when a challenge arrives without one.
	SiteKey string
	// Announce receives the page URL once the listener is up, typically to
	// print it or open a browser.
	Announce func(url string)
	Logger   *slog.Logger
}

func (s TurnstileSolver) Solve(ctx context.Context, challengeData string) (string, error) {
	siteKey := strings.TrimSpace(challengeData)
	if siteKey == "" {
		siteKey = s.SiteKey
	}
	if siteKey == "" {
		return "", errors.New("turnstile challenge carries no site key")
	}
	logger := logging.OrDiscard(s.Logger)
	addr := s.Addr
	if addr == "" {
		addr = defaultTurnstileAddr
	}

	ln, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listen for turnstile callback: %w", err)
	}

	page := &turnstileCallback{
		siteKey: siteKey,
		state:   uuid.NewString(),
		tokens:  make(chan string, 1),
	}
	srv := &http.Server{Handler: page.routes(), ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("turnstile page stopped", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	url := "http://" + ln.Addr().String() + "/"
	logger.Info("waiting for turnstile", "url", url)
	if s.Announce != nil {
		s.Announce(url)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case token := <-page.tokens:
		return token, nil
	}
}

type turnstileCallback struct {
	siteKey string
	state   string
	tokens  chan string
}

func (p *turnstileCallback) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", p.page)
	r.Post("/callback", p.callback)
	return r
}

func (p *turnstileCallback) page(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_ = turnstilePage.Execute(w, struct{ SiteKey, State string }{p.siteKey, p.state})
}

func (p *turnstileCallback) callback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	state := r.PostForm.Get(turnstileStateField)
	if subtle.ConstantTimeCompare([]byte(state), []byte(p.state)) != 1 {
		http.Error(w, "unknown state", http.StatusForbidden)
		return
	}
	token := strings.TrimSpace(r.PostForm.Get(turnstileTokenField))
	if token == "" {
		http.Error(w, "missing token", http.StatusBadRequest)
		return
	}
	select {
	case p.tokens <- token:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "Verified. You can close this window.\n")
	default:
		http.Error(w, "already verified", http.StatusConflict)
	}
}

var _ domain.Solver = TurnstileSolver{}
