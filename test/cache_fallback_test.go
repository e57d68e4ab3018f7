//go:build integration
// +build integration

package test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/Anthony-donbosco/aureum-go/empleado"
)

// Domain reads survive a flapping backend when the Redis cache holds a fresh
// copy of the last good payload.
func TestEmpleadoCacheFallbackRedis(t *testing.T) {
	store, mr := newIntegrationStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "token", "tok-1"); err != nil {
		t.Fatalf("seed token failed: %v", err)
	}

	var fail atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/api/empleado/gastos", func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			writeEnvelope(w, http.StatusInternalServerError, false, "boom", nil)
			return
		}
		writeEnvelope(w, http.StatusOK, true, "", map[string]any{
			"gastos": []map[string]any{{"id": 1, "concepto": "taxi", "monto": 12.5}},
		})
	})

	client := newIntegrationClient(t, store, mux)
	svc := empleado.NewService(client)

	gastos, err := svc.Gastos(ctx, empleado.FiltroTodos)
	if err != nil {
		t.Fatalf("Gastos failed: %v", err)
	}
	if len(gastos) != 1 {
		t.Fatalf("unexpected gastos: %+v", gastos)
	}
	if !mr.Exists("au:empleado_gastos_cache") {
		t.Fatal("expected write-through cache entry in redis")
	}

	fail.Store(true)
	cached, err := svc.Gastos(ctx, empleado.FiltroTodos)
	if err != nil {
		t.Fatalf("expected cached fallback, got %v", err)
	}
	if len(cached) != 1 || cached[0].Concepto != "taxi" {
		t.Fatalf("unexpected cached gastos: %+v", cached)
	}
}

// Mutations drop the cached listings so the next read refetches.
func TestEmpleadoMutationInvalidatesRedisCache(t *testing.T) {
	store, mr := newIntegrationStore(t)
	ctx := context.Background()

	if err := store.Set(ctx, "token", "tok-1"); err != nil {
		t.Fatalf("seed token failed: %v", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/empleado/gastos", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeEnvelope(w, http.StatusCreated, true, "", map[string]any{"id": 2, "concepto": "almuerzo"})
			return
		}
		writeEnvelope(w, http.StatusOK, true, "", map[string]any{
			"gastos": []map[string]any{{"id": 1, "concepto": "taxi", "monto": 12.5}},
		})
	})

	client := newIntegrationClient(t, store, mux)
	svc := empleado.NewService(client)

	if _, err := svc.Gastos(ctx, empleado.FiltroTodos); err != nil {
		t.Fatalf("Gastos failed: %v", err)
	}
	if !mr.Exists("au:empleado_gastos_cache") {
		t.Fatal("expected cache entry before mutation")
	}

	_, err := svc.CrearGasto(ctx, empleado.GastoData{
		Concepto:    "almuerzo",
		Monto:       8.75,
		Fecha:       "2025-06-10",
		CategoriaID: 7,
		TipoPagoID:  1,
	})
	if err != nil {
		t.Fatalf("CrearGasto failed: %v", err)
	}
	if mr.Exists("au:empleado_gastos_cache") {
		t.Fatal("expected cache entry invalidated by mutation")
	}
}
