// Package empresa covers the company-facing operations: employee roster
// management and the approval workflow over submitted expenses. Reads are
// written through a 5-minute cache and fall back to it when the backend is
// unreachable; approval decisions invalidate the affected entries.
package empresa
