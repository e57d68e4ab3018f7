package rest

import (
	"os"
	"strings"
)

// Base URL resolution sources, in priority order.
const (
	// EnvAPIURL is the primary environment override.
	EnvAPIURL = "AUREUM_API_URL"
	// EnvAPIURLFallback is the secondary environment override.
	EnvAPIURLFallback = "API_URL"
	// ExtraAPIURLKey is the build-time configuration key consulted after the
	// environment.
	ExtraAPIURLKey = "apiUrl"

	// DefaultBaseURL is the development fallback when nothing is configured.
	DefaultBaseURL = "http://localhost:5000/api"
)

// NormalizeAPIURL guarantees the URL ends in exactly one "/api": trailing
// slashes are stripped and the suffix is appended only when absent. An empty
// input is returned unchanged.
func NormalizeAPIURL(raw string) string {
	if raw == "" {
		return raw
	}
	trimmed := strings.TrimRight(raw, "/")
	if strings.HasSuffix(trimmed, "/api") {
		return trimmed
	}
	return trimmed + "/api"
}

// ResolveBaseURL picks the backend base URL. Priority: the explicit value,
// then AUREUM_API_URL, then API_URL, then extra["apiUrl"], then
// [DefaultBaseURL]. The winner is normalized with [NormalizeAPIURL].
func ResolveBaseURL(explicit string, extra map[string]string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return NormalizeAPIURL(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		return NormalizeAPIURL(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvAPIURLFallback)); v != "" {
		return NormalizeAPIURL(v)
	}
	if v := strings.TrimSpace(extra[ExtraAPIURLKey]); v != "" {
		return NormalizeAPIURL(v)
	}
	return DefaultBaseURL
}
