package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func TestClientAttachesBearerAndRequestID(t *testing.T) {
	var gotAuth, gotRequestID, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotAccept = r.Header.Get("Accept")
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, WithTokenSource(StaticToken("tok-123")))
	if err := c.Get(context.Background(), "/auth/me", nil, nil); err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
	if gotRequestID == "" {
		t.Fatal("expected X-Request-ID header")
	}
	if gotAccept != "application/json" {
		t.Fatalf("expected json accept header, got %q", gotAccept)
	}
}

func TestClientNoTokenNoAuthHeader(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization") != ""
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, WithTokenSource(StaticToken("")))
	if err := c.Get(context.Background(), "/health", nil, nil); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sawAuth {
		t.Fatal("request must go out unauthenticated when the source yields no token")
	}
}

func TestClientTokenSourceErrorMeansNoToken(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization") != ""
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	src := TokenSourceFunc(func(context.Context) (string, error) {
		return "", errors.New("store unavailable")
	})
	c := NewClient(Config{BaseURL: srv.URL}, WithTokenSource(src))
	if err := c.Get(context.Background(), "/health", nil, nil); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if sawAuth {
		t.Fatal("token source failure must not attach a header")
	}
}

func TestClientUnauthorizedHandlerFires(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Token expirado"})
	}))
	defer srv.Close()

	var fired atomic.Int32
	c := NewClient(Config{BaseURL: srv.URL},
		WithUnauthorizedHandler(func(context.Context) { fired.Add(1) }),
	)

	err := c.Get(context.Background(), "/auth/me", nil, nil)
	if err == nil {
		t.Fatal("expected error for 401")
	}
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %T", err)
	}
	if httpErr.Status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", httpErr.Status)
	}
	if httpErr.Message != "Token expirado" {
		t.Fatalf("expected envelope message, got %q", httpErr.Message)
	}
	if got := fired.Load(); got != 1 {
		t.Fatalf("expected handler to fire once, fired %d times", got)
	}
}

func TestClientNonOKCarriesEnvelopeMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "Credenciales inválidas"})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	err := c.Post(context.Background(), "/auth/login", map[string]string{"login": "x"}, nil)

	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected HTTPError, got %v", err)
	}
	if httpErr.Message != "Credenciales inválidas" {
		t.Fatalf("expected backend message, got %q", httpErr.Message)
	}
}

func TestClientDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"message": "ok",
			"data":    map[string]any{"token": "fresh"},
		})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	var env Envelope[struct {
		Token string `json:"token"`
	}]
	if err := c.Post(context.Background(), "/auth/refresh", nil, &env); err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if !env.Success || env.Data.Token != "fresh" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestClientQueryEncoding(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	query := url.Values{"estado": {"pendiente"}}
	if err := c.Get(context.Background(), "/empleado/gastos", query, nil); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if gotQuery.Get("estado") != "pendiente" {
		t.Fatalf("expected estado query param, got %v", gotQuery)
	}
}

func TestClientBaseURLNormalized(t *testing.T) {
	c := NewClient(Config{BaseURL: "https://api.example.com/"})
	if got := c.BaseURL(); got != "https://api.example.com/api" {
		t.Fatalf("expected normalized base, got %q", got)
	}
}

func TestClientTimeoutApplies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	if err := c.Get(context.Background(), "/health", nil, nil); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestClientContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewClient(Config{BaseURL: srv.URL})
	if err := c.Get(ctx, "/health", nil, nil); err == nil {
		t.Fatal("expected context cancellation error")
	}
}

func TestClientInjectedHTTPClientNotMutated(t *testing.T) {
	shared := &http.Client{}
	NewClient(Config{BaseURL: "https://api.example.com"}, WithHTTPClient(shared))
	if shared.Timeout != 0 {
		t.Fatalf("injected client timeout changed to %v", shared.Timeout)
	}
}

func TestClientInjectedHTTPClientGetsTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, WithHTTPClient(&http.Client{}))
	if err := c.Get(context.Background(), "/health", nil, nil); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestClientPingFallsBackToPingRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/ping" {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	if !c.Ping(context.Background()) {
		t.Fatal("expected ping fallback to succeed")
	}
}
