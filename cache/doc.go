// Package cache implements the time-boxed payload cache the domain services
// fall back to when a fetch fails. Entries are JSON envelopes {data,
// timestamp} persisted through a kvstore.Store; a read is fresh iff
// now - timestamp < TTL, and stale entries are deleted at read time.
package cache
