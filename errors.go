package aureum

import "errors"

var (
	// ErrStoreRequired is returned by Build when no key-value store was supplied.
	ErrStoreRequired = errors.New("key-value store required")
	// ErrClientClosed is returned by the client's token source after Close.
	// Requests issued through a closed client go out unauthenticated and the
	// domain services short-circuit on the missing token.
	ErrClientClosed = errors.New("client closed")
	// ErrNotAuthenticated is matched (errors.Is) by the missing-token AuthError
	// the domain services return when no session is held.
	ErrNotAuthenticated = errors.New("not authenticated")
)
