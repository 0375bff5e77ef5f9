package identity

// Role classifies a user's privilege level. The values are assigned by the
// platform backend; unknown values are treated as regular users.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleEditor  Role = "editor"
	RoleStudent Role = "student"
)

// User is the read-only copy of the backend user held for the current session
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
}

// IsAdmin reports whether the user may access the admin dashboard.
// Admins and editors both qualify; everyone else (including a nil user) does not.
func (u *User) IsAdmin() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleAdmin || u.Role == RoleEditor
}

// FullName returns the display name for CLI and dashboard output
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
