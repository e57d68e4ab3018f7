// Package admin exposes the platform administration surface: user and
// company management, report summaries, platform settings, and the
// verification handshake guarding sensitive actions. Routes live under the
// versioned /v1/admin prefix.
package admin
