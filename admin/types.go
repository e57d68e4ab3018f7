package admin

// UserStatus is a platform user's moderation state.
type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusSuspended UserStatus = "suspended"
	StatusBanned    UserStatus = "banned"
)

// User is a platform user as the admin surface reports it.
type User struct {
	ID             int        `json:"id"`
	Username       string     `json:"username"`
	Email          string     `json:"email"`
	FirstName      string     `json:"first_name,omitempty"`
	LastName       string     `json:"last_name,omitempty"`
	Status         UserStatus `json:"status"`
	ProfilePicture string     `json:"profile_picture,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// UsersPage is one page of the user listing.
type UsersPage struct {
	Users      []User     `json:"users"`
	Pagination Pagination `json:"pagination"`
}

// UserQuery filters the user listing. Zero values are omitted from the
// request and the backend applies its defaults.
type UserQuery struct {
	Page   int
	Limit  int
	Search string
	// Status filters by moderation state; empty or "all" selects everyone.
	Status string
}

// PageQuery selects one page of a company listing.
type PageQuery struct {
	Page  int
	Limit int
}

// Stats is the top-line platform summary.
type Stats struct {
	TotalUsers   int     `json:"totalUsers"`
	TotalBalance float64 `json:"totalBalance"`
}

// Activity is one recent platform event. The shape is backend-defined and
// loosely typed on purpose.
type Activity struct {
	ID        int    `json:"id,omitempty"`
	Type      string `json:"type,omitempty"`
	Message   string `json:"message,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}
