package logging

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const redacted = "[REDACTED]"

var (
	processSalt = newSalt()

	secretKeyParts = []string{"token", "secret", "solution", "passphrase", "password", "authorization"}
	identifierKeys = map[string]struct{}{
		"session_id":   {},
		"device_id":    {},
		"challenge_id": {},
	}
)

// New returns a logger writing to w. format is "json" or "text"; level is
// one of debug, info, warn or error.
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "text":
		h = slog.NewTextHandler(w, opts)
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return slog.New(Sanitize(h)), nil
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *slog.Logger) *slog.Logger {
	if l == nil {
		return Discard()
	}
	return l
}

// ParseLevel maps a level name onto slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// Fingerprint returns a short, salted, non-reversible stand-in for an id.
// The salt changes on every process start.
func Fingerprint(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return ""
	}
	sum := sha256.Sum256([]byte(processSalt + "|" + id))
	return "fp_" + hex.EncodeToString(sum[:6])
}

type sanitizer struct {
	next slog.Handler
}

// Sanitize wraps next so that every attribute passes through the redaction
// rules before it is written.
func Sanitize(next slog.Handler) slog.Handler {
	if _, ok := next.(*sanitizer); ok {
		return next
	}
	return &sanitizer{next: next}
}

func (h *sanitizer) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *sanitizer) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(cleanAttr(a))
		return true
	})
	return h.next.Handle(ctx, clean)
}

func (h *sanitizer) WithAttrs(attrs []slog.Attr) slog.Handler {
	clean := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		clean[i] = cleanAttr(a)
	}
	return &sanitizer{next: h.next.WithAttrs(clean)}
}

func (h *sanitizer) WithGroup(name string) slog.Handler {
	return &sanitizer{next: h.next.WithGroup(name)}
}

func cleanAttr(a slog.Attr) slog.Attr {
	a.Value = a.Value.Resolve()
	key := strings.ToLower(strings.TrimSpace(a.Key))

	if isSecret(key) {
		return slog.String(a.Key, redacted)
	}
	if _, ok := identifierKeys[key]; ok {
		return slog.String(a.Key+"_fp", Fingerprint(stringValue(a.Value)))
	}
	if a.Value.Kind() == slog.KindGroup {
		group := a.Value.Group()
		clean := make([]any, len(group))
		for i, g := range group {
			clean[i] = cleanAttr(g)
		}
		return slog.Group(a.Key, clean...)
	}
	return a
}

func isSecret(key string) bool {
	for _, part := range secretKeyParts {
		if strings.Contains(key, part) {
			return true
		}
	}
	return false
}

func stringValue(v slog.Value) string {
	if v.Kind() == slog.KindString {
		return v.String()
	}
	return fmt.Sprint(v.Any())
}

func newSalt() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("logging: read salt: %v", err))
	}
	return hex.EncodeToString(b)
}
