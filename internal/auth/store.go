package auth

import "context"

// UserStore describes persistence operations required by the authenticator.
// Implementations must enforce email uniqueness inside Create so concurrent
// registrations cannot race past the check.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
}
