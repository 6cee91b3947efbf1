package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"pulseboard.org/internal/ids"
)

var _ UserStore = (*PGStore)(nil)

// PGStore implements UserStore using PostgreSQL. Email uniqueness is backed
// by the unique index on users(email); a violation maps to ErrConflict.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Create(ctx context.Context, u *User) error {
	if u == nil || u.Email == "" {
		return ErrInvalidInput
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
	_, err := s.db.ExecContext(ctx,
		`insert into users(id, email, name, password_hash, role, created_at, updated_at) values($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Email, u.Name, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *PGStore) Find(ctx context.Context, id string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, email, name, password_hash, role, created_at, updated_at from users where id=$1`, id)
	return scanUser(row)
}

func (s *PGStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`select id, email, name, password_hash, role, created_at, updated_at from users where email=$1`, email)
	return scanUser(row)
}

func (s *PGStore) List(ctx context.Context) ([]*User, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, email, name, password_hash, role, created_at, updated_at from users order by created_at asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*User
	for rows.Next() {
		var (
			u    User
			role string
		)
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.Role = Role(role)
		res = append(res, &u)
	}
	return res, rows.Err()
}

func scanUser(row *sql.Row) (*User, error) {
	var (
		u    User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Role = Role(role)
	return &u, nil
}

// isUniqueViolation matches the SQLSTATE 23505 code without binding this
// package to a specific driver error type.
func isUniqueViolation(err error) bool {
	type coder interface{ SQLState() string }
	var c coder
	if errors.As(err, &c) {
		return c.SQLState() == "23505"
	}
	return strings.Contains(err.Error(), "23505") ||
		strings.Contains(err.Error(), "duplicate key")
}
