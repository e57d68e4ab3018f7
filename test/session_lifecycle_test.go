//go:build integration
// +build integration

package test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	aureum "github.com/Anthony-donbosco/aureum-go"
)

// Full session lifecycle against a Redis-backed store: login persists the
// session, a second client restores it on startup, refresh swaps the token,
// and logout clears every session key.
func TestSessionLifecycleRedis(t *testing.T) {
	store, mr := newIntegrationStore(t)
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, "", map[string]any{
			"user":  backendUser(),
			"token": "tok-1",
		})
	})
	mux.HandleFunc("/api/auth/validate-token", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, "", map[string]any{"valid": true})
	})
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, "", map[string]any{"token": "tok-2"})
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, "", nil)
	})

	client := newIntegrationClient(t, store, mux)

	result := client.Login(ctx, aureum.Credentials{Login: "jlopez", Password: "secret"})
	if !result.Success {
		t.Fatalf("login failed: %s", result.Message)
	}
	if !mr.Exists("au:token") || !mr.Exists("au:user") || !mr.Exists("au:isAuthenticated") {
		t.Fatal("expected session keys persisted to redis")
	}

	// A fresh client over the same store rehydrates the session.
	restored := newIntegrationClient(t, store, mux)
	if got := restored.Initialize(ctx); got != aureum.StateAuthenticated {
		t.Fatalf("expected restored session, got %v", got)
	}
	if user := restored.CurrentUser(); user == nil || user.Username != "jlopez" {
		t.Fatalf("unexpected restored user: %+v", user)
	}

	if !restored.RefreshToken(ctx) {
		t.Fatal("refresh failed")
	}
	if got, err := store.Get(ctx, "token"); err != nil || got != "tok-2" {
		t.Fatalf("expected refreshed token persisted, got %q err %v", got, err)
	}

	restored.Logout(ctx)
	if restored.State() != aureum.StateUnauthenticated {
		t.Fatal("expected unauthenticated after logout")
	}
	for _, key := range []string{"au:token", "au:user", "au:isAuthenticated"} {
		if mr.Exists(key) {
			t.Fatalf("expected %s cleared after logout", key)
		}
	}
}

// A 401 from any endpoint clears the persisted session without calling the
// backend logout endpoint.
func TestUnauthorizedCleanupRedis(t *testing.T) {
	store, mr := newIntegrationStore(t)
	ctx := context.Background()

	var logoutCalled atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, "", map[string]any{
			"user":  backendUser(),
			"token": "tok-1",
		})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusUnauthorized, false, "Token expirado", nil)
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		logoutCalled.Store(true)
		writeEnvelope(w, http.StatusOK, true, "", nil)
	})

	client := newIntegrationClient(t, store, mux)

	if result := client.Login(ctx, aureum.Credentials{Login: "jlopez", Password: "secret"}); !result.Success {
		t.Fatalf("login failed: %s", result.Message)
	}
	if user := client.GetCurrentUser(ctx); user != nil {
		t.Fatalf("expected nil user on 401, got %+v", user)
	}

	if client.State() != aureum.StateUnauthenticated {
		t.Fatal("expected unauthenticated after 401 cleanup")
	}
	if mr.Exists("au:token") || mr.Exists("au:isAuthenticated") {
		t.Fatal("expected session keys removed after 401 cleanup")
	}
	if logoutCalled.Load() {
		t.Fatal("401 cleanup must not hit the backend logout endpoint")
	}
}
