package codec_test

import (
	"bytes"
	"testing"
	"time"

	"sessiongate/internal/codec"
	"sessiongate/internal/domain"
)

func TestMarshal_Deterministic(t *testing.T) {
	v := map[string]string{"b": "2", "a": "1", "c": "3"}
	first, err := codec.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := codec.Marshal(v)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding is not deterministic")
		}
	}
}

func TestSession_KeepsSubSecondCreatedAt(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	in := domain.Session{ID: "S1", CreatedAt: created}

	b, err := codec.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out domain.Session
	if err := codec.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.ID != "S1" || !out.CreatedAt.Equal(created) {
		t.Fatalf("got %+v, want id S1 created %v", out, created)
	}
}

func TestBotDetectionType_UnknownDecodesUnspecified(t *testing.T) {
	b, err := codec.Marshal(map[string]string{"bot_detection_type": "RECAPTCHA"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out domain.Challenge
	if err := codec.Unmarshal(b, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.Type != domain.BotDetectionUnspecified {
		t.Fatalf("want UNSPECIFIED, got %q", out.Type)
	}
}
