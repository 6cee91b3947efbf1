package auth

import (
	"context"
	"sync"
	"time"

	"pulseboard.org/internal/ids"
)

var _ UserStore = (*MemoryStore)(nil)

// MemoryStore implements UserStore with in-process concurrency safety.
// The email uniqueness check runs under the write lock, so duplicate
// registrations cannot interleave.
type MemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]*User
	byEmail map[string]*User
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:    make(map[string]*User),
		byEmail: make(map[string]*User),
	}
}

// Seed inserts pre-hashed fixture users, skipping duplicates. Used by the
// demo deployment to provision the well-known accounts.
func (s *MemoryStore) Seed(users []User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range users {
		u := users[i]
		if _, ok := s.byEmail[u.Email]; ok {
			continue
		}
		if u.ID == "" {
			u.ID = ids.New()
		}
		s.byID[u.ID] = &u
		s.byEmail[u.Email] = &u
	}
}

func (s *MemoryStore) Create(ctx context.Context, u *User) error {
	if u == nil || u.Email == "" {
		return ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[u.Email]; ok {
		return ErrConflict
	}
	if u.ID == "" {
		u.ID = ids.New()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = now
	}
	stored := *u
	s.byID[stored.ID] = &stored
	s.byEmail[stored.Email] = &stored
	return nil
}

func (s *MemoryStore) Find(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

// FindByEmail matches the address exactly, case-sensitive as stored.
func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]*User, 0, len(s.byID))
	for _, u := range s.byID {
		out := *u
		res = append(res, &out)
	}
	return res, nil
}

// DemoUsers returns the fixture accounts shipped with the demo deployment.
// Both use the password "password123".
func DemoUsers() []User {
	const demoHash = "$2a$12$LQv3c1yqBWVHxkd0LHAkCOYz6TtxMQJqhN8/LewdBPj3QJgusgqSK"
	created := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	return []User{
		{
			ID:           "1",
			Email:        "admin@example.com",
			Name:         "Admin User",
			PasswordHash: demoHash,
			Role:         RoleAdmin,
			CreatedAt:    created,
			UpdatedAt:    created,
		},
		{
			ID:           "2",
			Email:        "user@example.com",
			Name:         "Regular User",
			PasswordHash: demoHash,
			Role:         RoleUser,
			CreatedAt:    created,
			UpdatedAt:    created,
		},
	}
}
