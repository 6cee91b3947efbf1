package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func userColumns() []string {
	return []string{"id", "email", "name", "password_hash", "role", "created_at", "updated_at"}
}

func TestPGStoreCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("insert into users").
		WithArgs(sqlmock.AnyArg(), "jane@x.com", "Jane", "hash", "user", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewPGStore(db)
	u := &User{Email: "jane@x.com", Name: "Jane", PasswordHash: "hash", Role: RoleUser}
	if err := store.Create(context.Background(), u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == "" {
		t.Fatal("expected generated id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreCreateDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("insert into users").
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "users_email_key" (SQLSTATE 23505)`))

	store := NewPGStore(db)
	err = store.Create(context.Background(), &User{Email: "jane@x.com", Name: "Jane", PasswordHash: "hash", Role: RoleUser})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestPGStoreFindByEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("select id, email, name, password_hash, role, created_at, updated_at.*from users where email").
		WithArgs("jane@x.com").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow("u-1", "jane@x.com", "Jane", "hash", "admin", now, now))

	store := NewPGStore(db)
	u, err := store.FindByEmail(context.Background(), "jane@x.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if u.ID != "u-1" || u.Role != RoleAdmin {
		t.Fatalf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGStoreFindNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("select id, email, name, password_hash, role, created_at, updated_at.*from users where id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	store := NewPGStore(db)
	if _, err := store.Find(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
