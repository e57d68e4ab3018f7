// Package rest is the single HTTP chokepoint between the SDK and the Aureum
// backend. It resolves and normalizes the base URL, attaches the bearer token
// supplied by a TokenSource, stamps every request with an X-Request-ID, and
// reacts to HTTP 401 by invoking the registered session-cleanup handler while
// still propagating the original error to the caller. No retries are
// performed at this layer.
package rest
