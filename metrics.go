package aureum

import "sync/atomic"

// MetricID identifies a client metric counter.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected or failed logins.
	MetricLoginFailure
	// MetricRegisterSuccess counts successful registrations.
	MetricRegisterSuccess
	// MetricRegisterFailure counts rejected or failed registrations.
	MetricRegisterFailure
	// MetricLogout counts logout invocations that cleared a held session.
	MetricLogout
	// MetricRefreshSuccess counts successful silent token renewals.
	MetricRefreshSuccess
	// MetricRefreshFailure counts failed renewals (each triggers a logout).
	MetricRefreshFailure
	// MetricValidateSuccess counts server validations that confirmed the token.
	MetricValidateSuccess
	// MetricValidateFailure counts server validations that rejected the token.
	MetricValidateFailure
	// MetricUnauthorizedCleanup counts 401-triggered session cleanups.
	MetricUnauthorizedCleanup
	// MetricSessionExpiredNotice counts session-expired notices shown on resume.
	MetricSessionExpiredNotice
	// MetricCacheHit counts fresh cache reads in the domain services.
	MetricCacheHit
	// MetricCacheMiss counts cache reads that found nothing usable.
	MetricCacheMiss
	// MetricCacheWrite counts write-through cache updates.
	MetricCacheWrite
	// MetricCacheFallback counts reads served from cache after a fetch failure.
	MetricCacheFallback

	metricCount
)

// MetricsConfig controls metric collection.
type MetricsConfig struct {
	Enabled bool
}

// Metrics is a fixed-size set of atomic counters. A nil or disabled Metrics
// accepts Inc calls and drops them.
type Metrics struct {
	enabled  bool
	counters [metricCount]atomic.Uint64
}

// NewMetrics builds a Metrics set from cfg. Returns a disabled set when
// collection is off so call sites never branch.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// Value returns the current count for id.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricCount {
		return 0
	}
	return m.counters[id].Load()
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies every counter. Safe to call concurrently with Inc.
func (m *Metrics) Snapshot() MetricsSnapshot {
	out := MetricsSnapshot{Counters: make(map[MetricID]uint64, int(metricCount))}
	if m == nil {
		return out
	}
	for id := MetricID(0); id < metricCount; id++ {
		out.Counters[id] = m.counters[id].Load()
	}
	return out
}
