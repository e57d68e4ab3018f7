// Command aureum-smoke runs the full session lifecycle against a backend and
// reports per-phase latencies. With no -api-url it spins up an in-process
// fake backend, and with no -redis-addr it falls back to miniredis, so the
// tool always has something to exercise.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	aureum "github.com/Anthony-donbosco/aureum-go"
	"github.com/Anthony-donbosco/aureum-go/empleado"
	"github.com/Anthony-donbosco/aureum-go/kvstore"
)

func main() {
	var (
		apiURL    = flag.String("api-url", "", "backend base URL; if empty, AUREUM_API_URL env or a built-in fake backend is used")
		redisAddr = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		prefix    = flag.String("prefix", "au", "store key prefix")
		login     = flag.String("login", "smoke", "login identifier")
		password  = flag.String("password", "smoke-password", "login password")
		ops       = flag.Int("ops", 50, "validate/read operations per phase")
	)
	flag.Parse()

	if *ops <= 0 {
		fmt.Fprintln(os.Stderr, "ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		rdb     redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() {
			_ = rdb.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		rdb = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		cleanup = func() { _ = rdb.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	baseURL := *apiURL
	if baseURL == "" {
		baseURL = os.Getenv("AUREUM_API_URL")
	}
	if baseURL == "" {
		srv := httptest.NewServer(fakeBackend())
		defer srv.Close()
		baseURL = srv.URL
		fmt.Printf("using built-in fake backend at %s\n", baseURL)
	} else {
		fmt.Printf("using backend at %s\n", baseURL)
	}

	cfg := aureum.Config{}
	cfg.API.BaseURL = baseURL
	cfg.Session.AutoValidateInterval = -1

	store := kvstore.NewRedisStore(rdb, *prefix)
	client, err := aureum.New().
		WithConfig(cfg).
		WithStore(store).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "client build failed: %v\n", err)
		os.Exit(1)
	}
	defer client.Close()

	if err := store.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "store unreachable: %v\n", err)
		os.Exit(1)
	}

	result := client.Login(ctx, aureum.Credentials{Login: *login, Password: *password})
	if !result.Success {
		fmt.Fprintf(os.Stderr, "login failed: %s\n", result.Message)
		os.Exit(1)
	}
	fmt.Printf("logged in as %s\n", result.User.Username)

	validateStats := runPhase(*ops, func() bool {
		return client.ValidateCurrentToken(ctx)
	})
	printStats("validate", validateStats)

	svc := empleado.NewService(client)
	readStats := runPhase(*ops, func() bool {
		_, err := svc.Gastos(ctx, empleado.FiltroTodos)
		return err == nil
	})
	printStats("gastos", readStats)

	t0 := time.Now()
	if !client.RefreshToken(ctx) {
		fmt.Fprintln(os.Stderr, "refresh failed, session ended")
		os.Exit(1)
	}
	fmt.Printf("refresh: %s\n", time.Since(t0).Round(time.Microsecond))

	client.Logout(ctx)
	fmt.Printf("final state: %s\n", client.State())

	snap := client.MetricsSnapshot()
	fmt.Printf("metrics: login=%d validate_ok=%d validate_fail=%d refresh_ok=%d cache_writes=%d\n",
		snap.Counters[aureum.MetricLoginSuccess],
		snap.Counters[aureum.MetricValidateSuccess],
		snap.Counters[aureum.MetricValidateFailure],
		snap.Counters[aureum.MetricRefreshSuccess],
		snap.Counters[aureum.MetricCacheWrite],
	)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int
	p50      time.Duration
	p95      time.Duration
	opsPerS  float64
}

func runPhase(ops int, op func() bool) phaseStats {
	latencies := make([]time.Duration, 0, ops)
	failures := 0

	start := time.Now()
	for i := 0; i < ops; i++ {
		t0 := time.Now()
		if !op() {
			failures++
		}
		latencies = append(latencies, time.Since(t0))
	}
	total := time.Since(start)

	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	return phaseStats{
		total:    total,
		ops:      len(latencies),
		failures: failures,
		p50:      percentile(latencies, 50),
		p95:      percentile(latencies, 95),
		opsPerS:  float64(len(latencies)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
	)
}

// fakeBackend serves just enough of the API for the smoke phases.
func fakeBackend() http.Handler {
	user := map[string]any{
		"id":       1,
		"username": "smoke",
		"email":    "smoke@example.com",
		"id_rol":   3,
	}

	writeEnvelope := func(w http.ResponseWriter, status int, success bool, data any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": success,
			"message": "",
			"data":    data,
		})
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, map[string]any{"user": user, "token": "smoke-token"})
	})
	mux.HandleFunc("/api/auth/validate-token", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, map[string]any{"valid": true})
	})
	mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, map[string]any{"token": "smoke-token-2"})
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, nil)
	})
	mux.HandleFunc("/api/empleado/gastos", func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, true, map[string]any{
			"gastos": []map[string]any{{"id": 1, "concepto": "taxi", "monto": 12.5}},
		})
	})
	return mux
}
