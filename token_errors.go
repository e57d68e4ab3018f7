package aureum

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"time"
)

// AuthErrorKind tags the cause of an authentication failure.
type AuthErrorKind uint8

const (
	// KindMissing means no token was available when one was required.
	KindMissing AuthErrorKind = iota
	// KindExpired means the token was held but is no longer accepted.
	KindExpired
	// KindInvalid means the token was rejected for any other reason.
	KindInvalid
)

func (k AuthErrorKind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindExpired:
		return "expired"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// AuthError is a tagged authentication failure raised at the origin (transport
// layer or missing-token short circuit), so downstream classification is a
// type check rather than a message inspection. Its message deliberately
// carries the legacy marker for the kind, keeping string-based callers working.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// Is lets errors.Is(err, ErrNotAuthenticated) match the missing-token kind.
func (e *AuthError) Is(target error) bool {
	return target == ErrNotAuthenticated && e.Kind == KindMissing
}

// NewAuthError builds an [AuthError] with the canonical message for kind.
func NewAuthError(kind AuthErrorKind) *AuthError {
	return &AuthError{Kind: kind, Message: markerForKind(kind)}
}

func markerForKind(kind AuthErrorKind) string {
	switch kind {
	case KindMissing:
		return "Token no disponible"
	case KindExpired:
		return "Token expirado"
	default:
		return "Token inválido"
	}
}

// Legacy markers, matched case-sensitively against foreign error messages.
// Order matters: the more specific markers are checked before the bare
// "expirado" catch-all.
var tokenErrorMarkers = []string{
	"Token no disponible",
	"Token expirado",
	"Token inválido",
	"Sesión expirada",
	"expirado",
}

// IsTokenError reports whether err is an authentication failure. A tagged
// [AuthError] always qualifies; any other error qualifies only when its
// message contains one of the legacy markers.
func IsTokenError(err error) bool {
	if err == nil {
		return false
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return true
	}
	msg := err.Error()
	for _, marker := range tokenErrorMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// TokenErrorClass is the actionable category of a classified token error.
// RedirectToLogin is true for every kind: no category is silently ignorable.
type TokenErrorClass struct {
	Kind            AuthErrorKind
	Message         string
	RedirectToLogin bool
}

// Categorize maps an authentication failure to a user-facing category. The
// result is only meaningful when [IsTokenError] is true for err.
func Categorize(err error) TokenErrorClass {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return classForKind(authErr.Kind)
	}

	msg := ""
	if err != nil {
		msg = err.Error()
	}
	switch {
	case strings.Contains(msg, "Token no disponible"):
		return classForKind(KindMissing)
	case strings.Contains(msg, "Token expirado"), strings.Contains(msg, "expirado"):
		return classForKind(KindExpired)
	case strings.Contains(msg, "Token inválido"):
		return classForKind(KindInvalid)
	default:
		return TokenErrorClass{Kind: KindInvalid, Message: "Error de autenticación", RedirectToLogin: true}
	}
}

func classForKind(kind AuthErrorKind) TokenErrorClass {
	switch kind {
	case KindMissing:
		return TokenErrorClass{Kind: KindMissing, Message: "Sesión no disponible", RedirectToLogin: true}
	case KindExpired:
		return TokenErrorClass{Kind: KindExpired, Message: "Tu sesión ha expirado", RedirectToLogin: true}
	default:
		return TokenErrorClass{Kind: KindInvalid, Message: "Sesión inválida", RedirectToLogin: true}
	}
}

// TokenErrorMessage returns the user-facing message for err: the classified
// message for token errors, the raw message otherwise.
func TokenErrorMessage(err error) string {
	if !IsTokenError(err) {
		if err == nil {
			return "Error desconocido"
		}
		return err.Error()
	}
	return Categorize(err).Message
}

// HandlerConfig wires a [TokenErrorHandler].
type HandlerConfig struct {
	// Notify surfaces a localized message to the UI before the logout fires.
	// Optional.
	Notify func(message string)
	// Logout performs the coordinated logout. Required for the handler to have
	// any effect beyond the notice.
	Logout func(ctx context.Context)
	// Delay is how long to wait between the notice and the logout, letting the
	// user read the message before navigation. Zero selects the 2s default;
	// negative fires immediately.
	Delay time.Duration
}

// TokenErrorHandler turns heterogeneous errors into a coordinated
// notice-then-logout reaction. One handler is shared by every domain service;
// callers may also inject their own logout callback per call site and use the
// process-wide default only as a fallback.
type TokenErrorHandler struct {
	notify func(string)
	logout func(ctx context.Context)
	delay  time.Duration
}

// NewTokenErrorHandler builds a handler from cfg.
func NewTokenErrorHandler(cfg HandlerConfig) *TokenErrorHandler {
	delay := cfg.Delay
	if delay == 0 {
		delay = defaultLogoutNoticeDelay
	}
	if delay < 0 {
		delay = 0
	}
	return &TokenErrorHandler{
		notify: cfg.Notify,
		logout: cfg.Logout,
		delay:  delay,
	}
}

// Handle no-ops when err is not a token error. Otherwise it surfaces the
// classified message immediately and schedules the logout callback after the
// configured delay. The logout runs detached from ctx: a caller abandoning
// the request must not cancel the session cleanup.
func (h *TokenErrorHandler) Handle(ctx context.Context, err error) bool {
	if h == nil || !IsTokenError(err) {
		return false
	}

	class := Categorize(err)
	if h.notify != nil {
		h.notify(class.Message + ". Redirigiendo al login...")
	}
	if !class.RedirectToLogin || h.logout == nil {
		return true
	}

	logout := h.logout
	time.AfterFunc(h.delay, func() {
		logout(context.Background())
	})
	return true
}

var defaultHandler atomic.Pointer[TokenErrorHandler]

// SetDefaultHandler registers the process-wide fallback handler. Intended to
// be called once at startup; explicit injection into services is the primary
// path and this global exists for call sites that cannot thread the handler
// through.
func SetDefaultHandler(h *TokenErrorHandler) {
	defaultHandler.Store(h)
}

// DefaultHandler returns the registered fallback handler, or nil.
func DefaultHandler() *TokenErrorHandler {
	return defaultHandler.Load()
}

// HandleTokenError routes err through the default handler. It reports whether
// err was classified as a token error.
func HandleTokenError(ctx context.Context, err error) bool {
	return DefaultHandler().Handle(ctx, err)
}
