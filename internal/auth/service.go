package auth

import (
	"context"
	"time"
)

// Service authenticates credentials against the user store and registers
// new accounts. It holds no mutable state of its own.
type Service struct {
	store UserStore
	now   func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service over the given store.
func NewService(store UserStore, opts ...ServiceOption) *Service {
	svc := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Authenticate looks up the account by exact email and verifies the
// password. Unknown email and bad password both return ErrUnauthorized, so
// the response shape cannot be used to enumerate accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	if email == "" || password == "" {
		return nil, ErrUnauthorized
	}
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if !VerifyPassword(user.PasswordHash, password) {
		return nil, ErrUnauthorized
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// Register validates the input, hashes the password and creates the account
// with role "user". Returns ErrInvalidInput when validation fails (callers
// surface the detailed messages from ValidateRegistration themselves) and
// ErrConflict when the email is already taken.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	in.Name = SanitizeInput(in.Name)
	in.Email = SanitizeInput(in.Email)

	if v := ValidateRegistration(in); !v.Valid {
		return nil, ErrInvalidInput
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &User{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// Find returns the sanitized account for the given id.
func (s *Service) Find(ctx context.Context, id string) (*User, error) {
	user, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}
