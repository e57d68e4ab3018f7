package internaldefs

import (
	aureum "github.com/Anthony-donbosco/aureum-go"
)

// CounterDef binds a client metric to its stable exported name.
//
// CounterDef instances are intended to be configured during initialization and
// then treated as immutable.
type CounterDef struct {
	ID   aureum.MetricID
	Name string
	Help string
}

// CounterDefs enumerates every exported counter, in stable output order.
var CounterDefs = []CounterDef{
	{ID: aureum.MetricLoginSuccess, Name: "aureum_login_success_total", Help: "Successful login attempts."},
	{ID: aureum.MetricLoginFailure, Name: "aureum_login_failure_total", Help: "Failed login attempts."},
	{ID: aureum.MetricRegisterSuccess, Name: "aureum_register_success_total", Help: "Successful registrations."},
	{ID: aureum.MetricRegisterFailure, Name: "aureum_register_failure_total", Help: "Failed registrations."},
	{ID: aureum.MetricLogout, Name: "aureum_logout_total", Help: "Logouts that cleared a held session."},
	{ID: aureum.MetricRefreshSuccess, Name: "aureum_refresh_success_total", Help: "Successful token renewals."},
	{ID: aureum.MetricRefreshFailure, Name: "aureum_refresh_failure_total", Help: "Failed token renewals."},
	{ID: aureum.MetricValidateSuccess, Name: "aureum_validate_success_total", Help: "Server validations confirming the token."},
	{ID: aureum.MetricValidateFailure, Name: "aureum_validate_failure_total", Help: "Server validations rejecting the token."},
	{ID: aureum.MetricUnauthorizedCleanup, Name: "aureum_unauthorized_cleanup_total", Help: "Session cleanups triggered by HTTP 401."},
	{ID: aureum.MetricSessionExpiredNotice, Name: "aureum_session_expired_notice_total", Help: "Session-expired notices shown on resume."},
	{ID: aureum.MetricCacheHit, Name: "aureum_cache_hit_total", Help: "Fresh cache reads."},
	{ID: aureum.MetricCacheMiss, Name: "aureum_cache_miss_total", Help: "Cache reads finding nothing usable."},
	{ID: aureum.MetricCacheWrite, Name: "aureum_cache_write_total", Help: "Write-through cache updates."},
	{ID: aureum.MetricCacheFallback, Name: "aureum_cache_fallback_total", Help: "Reads served from cache after a fetch failure."},
}
