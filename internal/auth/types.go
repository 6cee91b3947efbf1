package auth

import "time"

// Role enumerates the access levels a user account can hold.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleViewer Role = "viewer"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleUser, RoleViewer:
		return true
	}
	return false
}

// User is a stored account record. PasswordHash never leaves this package;
// handlers work with the sanitized view.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Sanitized returns a copy of the user with the password hash cleared,
// safe to serialize in API responses.
func (u *User) Sanitized() User {
	out := *u
	out.PasswordHash = ""
	return out
}

// Session is the per-request descriptor reconstructed from a verified token.
// It is never persisted server-side; the signed token is the only state.
type Session struct {
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}
