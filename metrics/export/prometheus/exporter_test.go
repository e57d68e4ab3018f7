package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	aureum "github.com/Anthony-donbosco/aureum-go"
)

type fakeSource struct {
	snapshot aureum.MetricsSnapshot
}

func (f fakeSource) MetricsSnapshot() aureum.MetricsSnapshot { return f.snapshot }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: aureum.MetricsSnapshot{
			Counters: map[aureum.MetricID]uint64{},
		},
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderDeterministicIncludesCounters(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: aureum.MetricsSnapshot{
			Counters: map[aureum.MetricID]uint64{
				aureum.MetricLoginSuccess:  7,
				aureum.MetricCacheFallback: 3,
			},
		},
	})

	out := exp.Render()
	if !strings.Contains(out, "aureum_login_success_total 7") {
		t.Fatalf("expected login_success counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "aureum_cache_fallback_total 3") {
		t.Fatalf("expected cache_fallback counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "# TYPE aureum_logout_total counter") {
		t.Fatalf("expected zero-valued counters to still render, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: aureum.MetricsSnapshot{
			Counters: map[aureum.MetricID]uint64{aureum.MetricLoginSuccess: 1},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: aureum.MetricsSnapshot{
			Counters: map[aureum.MetricID]uint64{
				aureum.MetricLoginSuccess:   1000,
				aureum.MetricLoginFailure:   40,
				aureum.MetricRefreshSuccess: 800,
				aureum.MetricRefreshFailure: 10,
				aureum.MetricCacheHit:       500,
				aureum.MetricCacheMiss:      120,
				aureum.MetricCacheFallback:  9,
			},
		},
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
