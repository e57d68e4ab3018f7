package aureum

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Anthony-donbosco/aureum-go/internal/tokeninspect"
	"github.com/Anthony-donbosco/aureum-go/kvstore"
	"github.com/Anthony-donbosco/aureum-go/rest"
)

// Client is the session manager. It owns the authentication state machine,
// the persisted session mirror, and the shared HTTP chokepoint the domain
// services dispatch through.
//
// All methods are safe for concurrent use.
type Client struct {
	config   Config
	store    kvstore.Store
	api      *rest.Client
	log      logrus.FieldLogger
	metrics  *Metrics
	validate *validator.Validate
	notify   func(message string)

	tokenErrors *TokenErrorHandler

	mu           sync.Mutex
	state        AuthState
	user         *User
	token        string
	closed       bool
	stateHooks   []func(AuthState)
	expiredHooks []func()
	autoStop     chan struct{}
}

// API returns the shared HTTP chokepoint. Domain services are built over it so
// every request flows through the same token attach and 401 cleanup.
func (c *Client) API() *rest.Client { return c.api }

// Store returns the persistent key-value store backing the session mirror and
// the domain caches.
func (c *Client) Store() kvstore.Store { return c.store }

// Metrics returns the client's counter set.
func (c *Client) Metrics() *Metrics { return c.metrics }

// MetricsSnapshot copies the current counter values. Exporters read through
// this.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// TokenSource exposes the session token feed. Domain services consult it for
// their missing-token short circuit.
func (c *Client) TokenSource() rest.TokenSource {
	return rest.TokenSourceFunc(c.bearerToken)
}

// TokenErrors returns the handler coordinating notice-then-logout reactions.
func (c *Client) TokenErrors() *TokenErrorHandler { return c.tokenErrors }

// Logger returns the structured logger the client was built with.
func (c *Client) Logger() logrus.FieldLogger { return c.log }

// State returns the current session state.
func (c *Client) State() AuthState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CurrentUser returns a copy of the authenticated user, or nil.
func (c *Client) CurrentUser() *User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// OnStateChange registers fn to run after every state transition. Hooks run
// outside the client lock, on the goroutine that caused the transition.
func (c *Client) OnStateChange(fn func(AuthState)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateHooks = append(c.stateHooks, fn)
}

// OnSessionExpired registers fn to run when an authenticated session ends
// involuntarily: a 401 cleanup, a failed validation or refresh, or a rejected
// foreground resume. Explicit Logout calls do not fire it. Hooks run outside
// the client lock.
func (c *Client) OnSessionExpired(fn func()) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expiredHooks = append(c.expiredHooks, fn)
}

func (c *Client) fireSessionExpired() {
	c.mu.Lock()
	hooks := make([]func(), len(c.expiredHooks))
	copy(hooks, c.expiredHooks)
	c.mu.Unlock()
	for _, hook := range hooks {
		hook()
	}
}

// Initialize re-hydrates the session from the persistent store and verifies it
// against the backend. The client starts in StateLoading; any failure along
// the way (missing keys, corrupt user record, rejected token) lands in
// StateUnauthenticated with the persisted session cleared. Call once after
// Build.
func (c *Client) Initialize(ctx context.Context) AuthState {
	c.setSession(nil, "", StateLoading)
	c.ensureInstallID(ctx)

	flag, err := c.store.Get(ctx, keyAuthenticated)
	if err != nil || flag != "true" {
		return c.abandonStartup(ctx, nil)
	}
	token, err := c.store.Get(ctx, keyToken)
	if err != nil || token == "" {
		return c.abandonStartup(ctx, err)
	}
	raw, err := c.store.Get(ctx, keyUser)
	if errors.Is(err, kvstore.ErrNotFound) {
		// Pre-rename installs wrote the user record under "usuario".
		raw, err = c.store.Get(ctx, keyLegacyUser)
	}
	if err != nil {
		return c.abandonStartup(ctx, err)
	}

	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		c.log.WithError(err).Warn("stored user record corrupt")
		return c.abandonStartup(ctx, nil)
	}

	c.mu.Lock()
	c.token = token
	c.mu.Unlock()

	if !c.validateRemote(ctx) {
		c.log.Info("stored session rejected by backend")
		return c.abandonStartup(ctx, nil)
	}

	c.setSession(&user, token, StateAuthenticated)
	c.startAutoValidate()
	c.log.WithField("user_id", user.ID).Info("session restored")
	return StateAuthenticated
}

func (c *Client) abandonStartup(ctx context.Context, err error) AuthState {
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		c.log.WithError(err).Warn("session store unavailable during startup")
	}
	c.clearSession(ctx)
	return StateUnauthenticated
}

// ensureInstallID assigns a stable per-install identifier on first run.
func (c *Client) ensureInstallID(ctx context.Context) {
	if _, err := c.store.Get(ctx, keyInstallID); err == nil {
		return
	} else if !errors.Is(err, kvstore.ErrNotFound) {
		c.log.WithError(err).Warn("install id lookup failed")
		return
	}
	if err := c.store.Set(ctx, keyInstallID, uuid.NewString()); err != nil {
		c.log.WithError(err).Warn("install id write failed")
	}
}

// Login authenticates with a username or email plus password. The outcome is
// always an AuthResult: validation failures, backend rejections, and transport
// errors all surface through Success and Message.
func (c *Client) Login(ctx context.Context, creds Credentials) AuthResult {
	if err := c.validate.Struct(creds); err != nil {
		return AuthResult{Message: "Usuario y contraseña son requeridos"}
	}

	var env rest.Envelope[authData]
	if err := c.api.Post(ctx, "/auth/login", creds, &env); err != nil {
		c.metrics.Inc(MetricLoginFailure)
		c.log.WithError(err).Debug("login request failed")
		return AuthResult{Message: userMessage(err, "Error de conexión. Intenta de nuevo.")}
	}
	if !env.Success || env.Data.User == nil || env.Data.Token == "" {
		c.metrics.Inc(MetricLoginFailure)
		return AuthResult{Message: orDefault(env.Message, "Credenciales inválidas")}
	}

	c.adoptSession(ctx, env.Data.User, env.Data.Token)
	c.metrics.Inc(MetricLoginSuccess)
	c.log.WithField("user_id", env.Data.User.ID).Info("login succeeded")
	return AuthResult{Success: true, Message: env.Message, User: env.Data.User}
}

// Register creates an account. When the backend verification flow is off it
// returns a session directly and the client adopts it; otherwise the caller
// follows up with VerifyEmail.
func (c *Client) Register(ctx context.Context, data RegisterData) AuthResult {
	if err := c.validate.Struct(data); err != nil {
		return AuthResult{Message: "Datos de registro incompletos o inválidos"}
	}

	var env rest.Envelope[authData]
	if err := c.api.Post(ctx, "/auth/register", data, &env); err != nil {
		c.metrics.Inc(MetricRegisterFailure)
		return AuthResult{Message: userMessage(err, "Error de conexión. Intenta de nuevo.")}
	}
	if !env.Success {
		c.metrics.Inc(MetricRegisterFailure)
		return AuthResult{Message: orDefault(env.Message, "Error en el registro")}
	}

	if env.Data.User != nil && env.Data.Token != "" {
		c.adoptSession(ctx, env.Data.User, env.Data.Token)
	}
	c.metrics.Inc(MetricRegisterSuccess)
	return AuthResult{Success: true, Message: env.Message, User: env.Data.User}
}

// VerifyEmail completes a verification-flow registration. A successful
// response carries the initial session, which the client adopts.
func (c *Client) VerifyEmail(ctx context.Context, data VerifyEmailData) AuthResult {
	if err := c.validate.Struct(data); err != nil {
		return AuthResult{Message: "Código de verificación inválido"}
	}

	var env rest.Envelope[authData]
	if err := c.api.Post(ctx, "/auth/verify-email", data, &env); err != nil {
		return AuthResult{Message: userMessage(err, "Error de conexión. Intenta de nuevo.")}
	}
	if !env.Success || env.Data.User == nil || env.Data.Token == "" {
		return AuthResult{Message: orDefault(env.Message, "Código de verificación incorrecto")}
	}

	c.adoptSession(ctx, env.Data.User, env.Data.Token)
	c.metrics.Inc(MetricLoginSuccess)
	return AuthResult{Success: true, Message: env.Message, User: env.Data.User}
}

// ResendVerificationCode asks the backend to re-send the email verification
// code for a pending registration.
func (c *Client) ResendVerificationCode(ctx context.Context, email string) AuthResult {
	body := map[string]string{"email": email}
	var env rest.Envelope[json.RawMessage]
	if err := c.api.Post(ctx, "/auth/resend-verification", body, &env); err != nil {
		return AuthResult{Message: userMessage(err, "Error de conexión. Intenta de nuevo.")}
	}
	if !env.Success {
		return AuthResult{Message: orDefault(env.Message, "No se pudo reenviar el código")}
	}
	return AuthResult{Success: true, Message: env.Message}
}

// Logout ends the session. The backend call is best effort: local state and
// the persisted mirror are cleared regardless of its outcome, and the
// background validation timer stops.
func (c *Client) Logout(ctx context.Context) {
	c.mu.Lock()
	token := c.token
	hadSession := c.state == StateAuthenticated
	c.mu.Unlock()

	if token != "" {
		if err := c.api.Post(ctx, "/auth/logout", nil, nil); err != nil {
			c.log.WithError(err).Debug("backend logout failed, clearing local session anyway")
		}
	}

	c.clearSession(ctx)
	if hadSession {
		c.metrics.Inc(MetricLogout)
		c.log.Info("session cleared")
	}
}

// RefreshToken silently renews the bearer token. On any failure the session
// is terminated: a token the backend will not renew is a token it will soon
// stop accepting.
func (c *Client) RefreshToken(ctx context.Context) bool {
	var env rest.Envelope[struct {
		Token string `json:"token"`
	}]
	err := c.api.Post(ctx, "/auth/refresh", nil, &env)
	if err == nil && env.Success && env.Data.Token != "" {
		if serr := c.store.Set(ctx, keyToken, env.Data.Token); serr != nil {
			c.log.WithError(serr).Warn("refreshed token not persisted")
		}
		c.mu.Lock()
		c.token = env.Data.Token
		c.mu.Unlock()
		c.metrics.Inc(MetricRefreshSuccess)
		return true
	}

	c.metrics.Inc(MetricRefreshFailure)
	c.log.WithError(err).Info("token refresh failed, ending session")
	hadSession := c.State() == StateAuthenticated
	c.Logout(ctx)
	if hadSession {
		c.fireSessionExpired()
	}
	return false
}

// ValidateCurrentToken asks the backend whether the held token is still
// accepted. A rejection (or the absence of a token) terminates the session.
func (c *Client) ValidateCurrentToken(ctx context.Context) bool {
	if c.validateRemote(ctx) {
		c.metrics.Inc(MetricValidateSuccess)
		return true
	}
	c.metrics.Inc(MetricValidateFailure)
	hadSession := c.State() == StateAuthenticated
	c.Logout(ctx)
	if hadSession {
		c.fireSessionExpired()
	}
	return false
}

// validateRemote performs the server-side token check without side effects on
// the session. A token already expired by its own exp claim is rejected
// locally, skipping the round trip.
func (c *Client) validateRemote(ctx context.Context) bool {
	token := c.currentToken(ctx)
	if token == "" {
		return false
	}
	if tokeninspect.Expired(token, time.Now()) {
		c.log.Debug("token expired by exp claim, skipping server validation")
		return false
	}

	var env rest.Envelope[struct {
		Valid bool `json:"valid"`
	}]
	if err := c.api.Post(ctx, "/auth/validate-token", map[string]string{"token": token}, &env); err != nil {
		return false
	}
	return env.Success && env.Data.Valid
}

// GetCurrentUser fetches the authoritative user record from the backend and
// refreshes both the in-memory session and the persisted mirror. Returns nil
// on any failure; the held session is not disturbed.
func (c *Client) GetCurrentUser(ctx context.Context) *User {
	var env rest.Envelope[struct {
		User *User `json:"user"`
	}]
	if err := c.api.Get(ctx, "/auth/me", nil, &env); err != nil {
		c.log.WithError(err).Debug("current user fetch failed")
		return nil
	}
	if !env.Success || env.Data.User == nil {
		return nil
	}

	c.persistUser(ctx, env.Data.User)
	c.mu.Lock()
	if c.state == StateAuthenticated {
		c.user = env.Data.User
	}
	c.mu.Unlock()
	return env.Data.User
}

// UpdateProfile submits a partial profile edit and, on success, adopts the
// user record the backend returns.
func (c *Client) UpdateProfile(ctx context.Context, update ProfileUpdate) AuthResult {
	var env rest.Envelope[struct {
		User *User `json:"user"`
	}]
	if err := c.api.Put(ctx, "/user/profile", update, &env); err != nil {
		return AuthResult{Message: userMessage(err, "No se pudo actualizar el perfil")}
	}
	if !env.Success {
		return AuthResult{Message: orDefault(env.Message, "No se pudo actualizar el perfil")}
	}

	if env.Data.User != nil {
		c.persistUser(ctx, env.Data.User)
		c.mu.Lock()
		if c.state == StateAuthenticated {
			c.user = env.Data.User
		}
		c.mu.Unlock()
	}
	return AuthResult{Success: true, Message: env.Message, User: env.Data.User}
}

// CheckUsernameAvailability asks the backend whether username is free.
func (c *Client) CheckUsernameAvailability(ctx context.Context, username string) ValidationResponse {
	return c.checkAvailability(ctx, "/auth/check-username", map[string]string{"username": username})
}

// CheckEmailAvailability asks the backend whether email is free.
func (c *Client) CheckEmailAvailability(ctx context.Context, email string) ValidationResponse {
	return c.checkAvailability(ctx, "/auth/check-email", map[string]string{"email": email})
}

func (c *Client) checkAvailability(ctx context.Context, path string, body map[string]string) ValidationResponse {
	var env rest.Envelope[struct {
		Available bool `json:"available"`
	}]
	if err := c.api.Post(ctx, path, body, &env); err != nil {
		return ValidationResponse{Message: userMessage(err, "No se pudo verificar la disponibilidad")}
	}
	if !env.Success {
		return ValidationResponse{Message: env.Message}
	}
	return ValidationResponse{Available: env.Data.Available, Message: env.Message}
}

// Resume revalidates the session when the application returns to the
// foreground. A rejected session surfaces an expiry notice through the notify
// sink, then ends after the configured delay so the user can read it.
func (c *Client) Resume(ctx context.Context) {
	c.mu.Lock()
	active := c.state == StateAuthenticated
	c.mu.Unlock()
	if !active {
		return
	}

	c.log.Debug("foreground resume, revalidating session")
	if c.validateRemote(ctx) {
		c.metrics.Inc(MetricValidateSuccess)
		return
	}

	c.metrics.Inc(MetricValidateFailure)
	c.metrics.Inc(MetricSessionExpiredNotice)
	if c.notify != nil {
		c.notify("Tu sesión ha expirado por inactividad. Por favor, inicia sesión nuevamente.")
	}
	c.fireSessionExpired()
	time.AfterFunc(c.config.Session.LogoutNoticeDelay, func() {
		c.Logout(context.Background())
	})
}

// Close stops background work. The persisted session is left intact so the
// next Initialize can restore it.
func (c *Client) Close() {
	c.stopAutoValidate()
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

// bearerToken is the rest.TokenSource feeding the chokepoint. A closed client
// supplies no token: requests go out unauthenticated and the domain services
// short-circuit.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return "", ErrClientClosed
	}
	return c.currentToken(ctx), nil
}

// currentToken returns the held token, falling back to the persistent store
// and caching what it finds there.
func (c *Client) currentToken(ctx context.Context) string {
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		return token
	}

	stored, err := c.store.Get(ctx, keyToken)
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			c.log.WithError(err).Warn("token lookup failed")
		}
		return ""
	}
	c.mu.Lock()
	if c.token == "" {
		c.token = stored
	}
	c.mu.Unlock()
	return stored
}

// handleUnauthorized is the 401 reaction wired into the chokepoint: drop the
// persisted session keys and the in-memory session, without calling the
// backend logout endpoint (the token was just rejected).
func (c *Client) handleUnauthorized(ctx context.Context) {
	c.metrics.Inc(MetricUnauthorizedCleanup)
	hadSession := c.State() == StateAuthenticated
	if err := c.store.RemoveMany(ctx, sessionKeys...); err != nil {
		c.log.WithError(err).Warn("session key cleanup failed")
	}
	c.stopAutoValidate()
	c.setSession(nil, "", StateUnauthenticated)
	if hadSession {
		c.fireSessionExpired()
	}
}

// adoptSession installs a fresh session: persist the mirror, swap the
// in-memory state, start the validation timer.
func (c *Client) adoptSession(ctx context.Context, user *User, token string) {
	c.persistSession(ctx, user, token)
	c.setSession(user, token, StateAuthenticated)
	c.startAutoValidate()
}

// clearSession removes the persisted mirror and resets to unauthenticated.
func (c *Client) clearSession(ctx context.Context) {
	c.stopAutoValidate()
	if err := c.store.RemoveMany(ctx, clearSessionKeys...); err != nil {
		c.log.WithError(err).Warn("session key cleanup failed")
	}
	c.setSession(nil, "", StateUnauthenticated)
}

func (c *Client) persistSession(ctx context.Context, user *User, token string) {
	if err := c.store.Set(ctx, keyToken, token); err != nil {
		c.log.WithError(err).Warn("token not persisted")
	}
	c.persistUser(ctx, user)
	if err := c.store.Set(ctx, keyAuthenticated, "true"); err != nil {
		c.log.WithError(err).Warn("session flag not persisted")
	}
}

func (c *Client) persistUser(ctx context.Context, user *User) {
	raw, err := json.Marshal(user)
	if err != nil {
		c.log.WithError(err).Warn("user record not encodable")
		return
	}
	if err := c.store.Set(ctx, keyUser, string(raw)); err != nil {
		c.log.WithError(err).Warn("user record not persisted")
	}
}

// setSession swaps the in-memory session and runs state hooks when the state
// actually changed. Hooks run outside the lock.
func (c *Client) setSession(user *User, token string, state AuthState) {
	c.mu.Lock()
	changed := c.state != state
	c.user = user
	c.token = token
	c.state = state
	hooks := make([]func(AuthState), len(c.stateHooks))
	copy(hooks, c.stateHooks)
	c.mu.Unlock()

	if !changed {
		return
	}
	for _, hook := range hooks {
		hook(state)
	}
}

// startAutoValidate launches the periodic background validation. Idempotent
// while a timer is running; a no-op when the interval is negative (disabled).
func (c *Client) startAutoValidate() {
	interval := c.config.Session.AutoValidateInterval
	if interval <= 0 {
		return
	}

	c.mu.Lock()
	if c.autoStop != nil || c.closed {
		c.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	c.autoStop = stop
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.log.Debug("periodic token validation")
				if !c.ValidateCurrentToken(context.Background()) {
					// The failed validation already triggered a logout, which
					// closed the stop channel. Exit without waiting on it.
					return
				}
			case <-stop:
				return
			}
		}
	}()
}

func (c *Client) stopAutoValidate() {
	c.mu.Lock()
	stop := c.autoStop
	c.autoStop = nil
	c.mu.Unlock()
	if stop != nil {
		close(stop)
	}
}

// userMessage extracts a message fit for direct display: backend envelope
// messages and tagged auth errors pass through, transport noise collapses to
// fallback.
func userMessage(err error, fallback string) string {
	var httpErr *rest.HTTPError
	if errors.As(err, &httpErr) && httpErr.Message != "" {
		return httpErr.Message
	}
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Message
	}
	return fallback
}

func orDefault(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
