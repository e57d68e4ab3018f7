// Package aureum is the Go client SDK for the Aureum expense platform. It owns
// the authenticated-session state machine, the persisted token/user snapshot,
// and the coordinated reaction to authentication failures, on top of a
// pluggable key-value store and a single HTTP chokepoint.
//
// The package is designed for embedding in long-lived client processes: Client
// methods are safe to call from multiple goroutines after initialization
// through [Builder.Build].
//
// # Architecture boundaries
//
// aureum is the public surface. It exposes [Client], [Builder], [Config], the
// [AuthError] classifier, and value types (User, AuthResult, MetricsSnapshot,
// etc.). Per-domain request wrappers live in the admin, empleado, and empresa
// sub-packages; storage in kvstore; transport in rest; the TTL envelope cache
// in cache.
//
// # What this package must NOT do
//
//   - Expose transport or storage internals in its public API.
//   - Perform I/O outside of Client methods (construction via Builder is
//     allocation-only until Build; Initialize does the first store reads).
//   - Retry failed requests. The one automated reaction to a failure is the
//     session cleanup on HTTP 401 and on classified token errors.
//
// # Session contract
//
// State() == StateAuthenticated holds if and only if a non-nil user and a
// non-empty token are held and the last server validation succeeded. Logout
// always clears local state, even when the backend logout call fails.
package aureum
