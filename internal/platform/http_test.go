package platform_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"sessiongate/internal/domain"
	"sessiongate/internal/platform"
)

func TestHTTPTransport_RoutesAndHeaders(t *testing.T) {
	var gotMethod, gotPath, gotSession, gotDevice string
	var gotBody domain.VerifyRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotSession = r.Header.Get(domain.HeaderSessionID)
		gotDevice = r.Header.Get(domain.HeaderDeviceID)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(domain.NewVerifyResponse(true))
	}))
	defer srv.Close()

	tr := platform.NewHTTPTransport(srv.URL+"/", srv.Client())
	var out domain.VerifyResponse
	err := tr.Call(
		context.Background(),
		domain.OpVerify,
		platform.Headers{domain.HeaderSessionID: "S1"},
		domain.VerifyRequest{ChallengeID: "C1", Solution: "tok"},
		&out,
	)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/v1/session/verify" {
		t.Fatalf("routed to %s %s", gotMethod, gotPath)
	}
	if gotSession != "S1" {
		t.Fatalf("session header = %q", gotSession)
	}
	if gotDevice != "" {
		t.Fatalf("device header must be omitted, got %q", gotDevice)
	}
	if gotBody.ChallengeID != "C1" || gotBody.Solution != "tok" {
		t.Fatalf("body = %+v", gotBody)
	}
	if out.Retry == nil || !*out.Retry {
		t.Fatal("reply not decoded")
	}
}

func TestHTTPTransport_Non2xxIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "challenge service unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tr := platform.NewHTTPTransport(srv.URL, srv.Client())
	var out domain.ChallengeResponse
	err := tr.Call(context.Background(), domain.OpChallenge, nil, nil, &out)

	var te *domain.TransportError
	if !errors.As(err, &te) {
		t.Fatalf("want *TransportError, got %T %v", err, err)
	}
	if te.Op != domain.OpChallenge || te.Status != http.StatusServiceUnavailable {
		t.Fatalf("got op=%s status=%d", te.Op, te.Status)
	}
	if te.Body != "challenge service unavailable" {
		t.Fatalf("body excerpt = %q", te.Body)
	}
}

func TestHTTPTransport_NetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := platform.NewHTTPTransport(url, nil).Call(context.Background(), domain.OpInitSession, nil, nil, nil)
	var te *domain.TransportError
	if !errors.As(err, &te) || te.Status != 0 || te.Err == nil {
		t.Fatalf("want network TransportError, got %v", err)
	}
}

func TestHTTPTransport_GarbageBodyIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	var out domain.InitSessionResponse
	err := platform.NewHTTPTransport(srv.URL, srv.Client()).
		Call(context.Background(), domain.OpInitSession, nil, nil, &out)
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("want ErrMalformedResponse, got %v", err)
	}
}

func TestHTTPTransport_EmptyReplyIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	var out domain.VerifyResponse
	err := platform.NewHTTPTransport(srv.URL, srv.Client()).Call(
		context.Background(),
		domain.OpVerify,
		nil,
		domain.VerifyRequest{ChallengeID: "C1", Solution: "tok"},
		&out,
	)
	if !errors.Is(err, domain.ErrMalformedResponse) {
		t.Fatalf("want ErrMalformedResponse, got %v", err)
	}
}

func TestHTTPTransport_VerifyWithoutRetryField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	var out domain.VerifyResponse
	err := platform.NewHTTPTransport(srv.URL, srv.Client()).Call(
		context.Background(),
		domain.OpVerify,
		nil,
		domain.VerifyRequest{ChallengeID: "C1", Solution: "tok"},
		&out,
	)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if out.Retry != nil {
		t.Fatalf("retry = %v, want unset", *out.Retry)
	}
}

func TestHTTPTransport_DeleteWithEmptyBody(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	err := platform.NewHTTPTransport(srv.URL, srv.Client()).
		Call(context.Background(), domain.OpDeleteSession, nil, nil, nil)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if method != http.MethodDelete || path != "/v1/session" {
		t.Fatalf("routed to %s %s", method, path)
	}
}

func TestHTTPTransport_UnknownBotTypeDecodesUnspecified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"challengeId":"C9","botDetectionType":"HCAPTCHA","extra":{"challengeData":"x"}}`))
	}))
	defer srv.Close()

	var out domain.ChallengeResponse
	if err := platform.NewHTTPTransport(srv.URL, srv.Client()).
		Call(context.Background(), domain.OpChallenge, nil, nil, &out); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if out.BotDetectionType != domain.BotDetectionUnspecified {
		t.Fatalf("want UNSPECIFIED, got %q", out.BotDetectionType)
	}
}
