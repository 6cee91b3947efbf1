// Package migrate applies the schema for the Postgres-backed user store.
// Migrations are embedded in the binary, so a deployment needs no extra
// files on disk.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

//go:embed sql/*.up.sql
var migrationFS embed.FS

const migrationsTable = "schema_migrations"

// Runner applies pending migrations in lexical order, one transaction per
// file, and records each in schema_migrations.
type Runner struct {
	db  *sql.DB
	src fs.FS
}

func NewRunner(db *sql.DB) *Runner {
	return &Runner{db: db, src: migrationFS}
}

// Up applies all migrations that have not been recorded yet.
func (r *Runner) Up(ctx context.Context) error {
	if err := r.ensureTable(ctx); err != nil {
		return err
	}
	applied, err := r.applied(ctx)
	if err != nil {
		return err
	}
	names, err := r.names()
	if err != nil {
		return err
	}
	for _, name := range names {
		if applied[name] {
			continue
		}
		if err := r.apply(ctx, name); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

// Status returns applied migrations in application order.
func (r *Runner) Status(ctx context.Context) ([]string, error) {
	if err := r.ensureTable(ctx); err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx,
		`select name from schema_migrations order by applied_at asc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		res = append(res, name)
	}
	return res, rows.Err()
}

func (r *Runner) ensureTable(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx,
		`create table if not exists `+migrationsTable+` (name text primary key, applied_at timestamptz not null default now())`)
	return err
}

func (r *Runner) applied(ctx context.Context) (map[string]bool, error) {
	rows, err := r.db.QueryContext(ctx, `select name from `+migrationsTable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		res[name] = true
	}
	return res, rows.Err()
}

func (r *Runner) names() ([]string, error) {
	entries, err := fs.ReadDir(r.src, "sql")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func (r *Runner) apply(ctx context.Context, name string) error {
	data, err := fs.ReadFile(r.src, "sql/"+name)
	if err != nil {
		return err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	for _, stmt := range splitStatements(string(data)) {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx,
		`insert into `+migrationsTable+`(name, applied_at) values ($1, $2)`,
		name, time.Now().UTC()); err != nil {
		return err
	}
	return tx.Commit()
}

// splitStatements splits on semicolons outside single-quoted strings.
func splitStatements(sql string) []string {
	var stmts []string
	var current strings.Builder
	var inString bool
	for _, r := range sql {
		current.WriteRune(r)
		switch r {
		case '\'':
			inString = !inString
		case ';':
			if !inString {
				stmts = append(stmts, current.String())
				current.Reset()
			}
		}
	}
	if strings.TrimSpace(current.String()) != "" {
		stmts = append(stmts, current.String())
	}
	return stmts
}
