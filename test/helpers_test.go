//go:build integration
// +build integration

package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	aureum "github.com/Anthony-donbosco/aureum-go"
	"github.com/Anthony-donbosco/aureum-go/kvstore"
)

func newIntegrationStore(t *testing.T) (*kvstore.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})

	return kvstore.NewRedisStore(rdb, "au"), mr
}

func newIntegrationClient(t *testing.T, store kvstore.Store, handler http.Handler) *aureum.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := aureum.Config{}
	cfg.API.BaseURL = srv.URL
	cfg.Session.AutoValidateInterval = -1
	cfg.Session.LogoutNoticeDelay = time.Millisecond

	client, err := aureum.New().WithConfig(cfg).WithStore(store).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": success,
		"message": message,
		"data":    data,
	})
}

func backendUser() map[string]any {
	return map[string]any{
		"id":       7,
		"username": "jlopez",
		"email":    "jlopez@example.com",
		"id_rol":   3,
	}
}
