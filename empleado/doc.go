// Package empleado covers the employee-facing expense operations: submitting
// expenses, listing them by approval state, the employee dashboard, and the
// linked company record. Reads are written through a 3-minute cache and fall
// back to it when the backend is unreachable.
package empleado
