package aureum

// AuthState is the lifecycle state of the client session.
type AuthState uint8

const (
	// StateLoading is the initial state, held during startup re-hydration.
	StateLoading AuthState = iota
	// StateAuthenticated means a valid user and token are held.
	StateAuthenticated
	// StateUnauthenticated means no valid session is held.
	StateUnauthenticated
)

func (s AuthState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Role is the backend role record attached to a user.
type Role struct {
	ID          int    `json:"id"`
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion,omitempty"`
}

// Backend role IDs. The backend is the authority; these mirror its seed data.
const (
	RoleAdmin    = 1
	RoleEmpresa  = 2
	RoleEmpleado = 3
	RoleUsuario  = 4
)

// User is the authenticated identity snapshot mirrored to the persistent store.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Picture   string `json:"picture,omitempty"`
	RoleID    int    `json:"id_rol"`
	Active    bool   `json:"is_active"`
	Verified  bool   `json:"is_verified"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
	LastLogin string `json:"last_login,omitempty"`
	Role      *Role  `json:"role,omitempty"`
}

// RoleName resolves the user's role name, preferring the embedded role record
// and falling back to the well-known role IDs.
func (u *User) RoleName() string {
	if u == nil {
		return ""
	}
	if u.Role != nil && u.Role.Nombre != "" {
		return u.Role.Nombre
	}
	switch u.RoleID {
	case RoleAdmin:
		return "administrador"
	case RoleEmpresa:
		return "empresa"
	case RoleEmpleado:
		return "empleado"
	default:
		return "usuario"
	}
}

// CanAccess reports whether the user's resolved role matches the required one.
func (u *User) CanAccess(requiredRole string) bool {
	return u.RoleName() == requiredRole
}

// Credentials is the login payload. Login accepts a username or an email in
// the Login field; the backend disambiguates.
type Credentials struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterData is the account-creation payload.
type RegisterData struct {
	Username  string `json:"username" validate:"required,min=3"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	RoleID    int    `json:"id_rol,omitempty"`
}

// VerifyEmailData completes a registration started by Register when the
// backend runs the email-verification flow.
type VerifyEmailData struct {
	Email     string `json:"email" validate:"required,email"`
	Code      string `json:"code" validate:"required"`
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// ProfileUpdate is the mutable subset of the user profile.
type ProfileUpdate struct {
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// AuthResult is the non-throwing outcome of Login, Register, and VerifyEmail.
// Failure is reported through Success and Message, never through a panic or a
// returned error, so callers can display Message directly.
type AuthResult struct {
	Success bool
	Message string
	User    *User
}

// ValidationResponse is the outcome of a username or email availability check.
type ValidationResponse struct {
	Available bool
	Message   string
}

// authData is the payload of a successful login/register/verify response.
type authData struct {
	User      *User  `json:"user"`
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

// Persistent store keys owned by the session layer. sessionKeys is the set
// removed on 401 cleanup; "usuario" is a legacy alias kept for installs that
// wrote it before the key was renamed.
const (
	keyToken         = "token"
	keyUser          = "user"
	keyLegacyUser    = "usuario"
	keyAuthenticated = "isAuthenticated"
	keyAuthMethod    = "auth_method"
	keyInstallID     = "install_id"
)

var sessionKeys = []string{keyToken, keyLegacyUser, keyUser, keyAuthenticated}

var clearSessionKeys = []string{keyToken, keyLegacyUser, keyUser, keyAuthenticated, keyAuthMethod}
