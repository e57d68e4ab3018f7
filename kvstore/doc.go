// Package kvstore defines the persistent key-value capability the SDK uses
// for tokens, the user snapshot, and cached payload envelopes, together with
// a Redis-backed implementation for shared deployments and an in-memory
// implementation for tests and single-process embedding.
package kvstore
