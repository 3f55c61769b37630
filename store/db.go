// Package store provides SQL persistence for users and tasks.
//
// All SQL is explicit and parameterised. Each call is a single autocommitted
// statement; driver errors are mapped to the sentinels in errors.go.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Dialect captures the few places where MySQL and SQLite SQL differ.
type Dialect struct {
	Name string
	// Contains returns a case-sensitive substring predicate on column with one placeholder.
	Contains func(column string) string
}

var (
	MySQL = Dialect{
		Name: "mysql",
		Contains: func(column string) string {
			return fmt.Sprintf("INSTR(CAST(%s AS BINARY), CAST(? AS BINARY)) > 0", column)
		},
	}
	SQLite = Dialect{
		Name: "sqlite3",
		Contains: func(column string) string {
			return fmt.Sprintf("instr(%s, ?) > 0", column)
		},
	}
)

// Options configures a DB.
type Options struct {
	Dialect Dialect
	// Prefix is prepended to table names.
	Prefix string
	// Timeout bounds every statement whose context has no deadline. Zero means none.
	Timeout time.Duration
	Hooks   []Hook
}

// DB wraps *sql.DB with default timeouts, hook dispatch and error mapping.
type DB struct {
	sqldb *sql.DB
	opts  Options
}

// New wraps an opened *sql.DB.
func New(sqldb *sql.DB, opts Options) *DB {
	if opts.Dialect.Contains == nil {
		opts.Dialect = MySQL
	}
	return &DB{sqldb: sqldb, opts: opts}
}

// Table returns the prefixed table name.
func (d *DB) Table(name string) string { return d.opts.Prefix + name }

// Ping verifies that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	return mapErr(d.sqldb.PingContext(ctx))
}

// Close closes the underlying pool.
func (d *DB) Close() error { return d.sqldb.Close() }

// Exec runs a statement that returns no rows.
func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	res, err := d.sqldb.ExecContext(ctx, query, args...)
	err = mapErr(err)
	d.after(ctx, query, time.Since(start), err)
	return res, err
}

// Query runs a query and calls each for every row. Rows are closed before Query returns.
func (d *DB) Query(ctx context.Context, query string, each func(*sql.Rows) error, args ...any) error {
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	start := time.Now()
	err := d.query(ctx, query, each, args)
	d.after(ctx, query, time.Since(start), err)
	return err
}

func (d *DB) query(ctx context.Context, query string, each func(*sql.Rows) error, args []any) error {
	rows, err := d.sqldb.QueryContext(ctx, query, args...)
	if err != nil {
		return mapErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := each(rows); err != nil {
			return mapErr(err)
		}
	}
	return mapErr(rows.Err())
}

// QueryRow runs a query expected to return at most one row.
// Scan on the result returns ErrNotFound when nothing matched.
func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *Row {
	ctx, cancel := d.withTimeout(ctx)
	return &Row{
		raw:    d.sqldb.QueryRowContext(ctx, query, args...),
		ctx:    ctx,
		query:  query,
		start:  time.Now(),
		cancel: cancel,
		db:     d,
	}
}

// Row is the deferred result of QueryRow.
type Row struct {
	raw    *sql.Row
	ctx    context.Context
	query  string
	start  time.Time
	cancel context.CancelFunc
	db     *DB
}

// Scan copies the row into dest.
func (r *Row) Scan(dest ...any) error {
	defer r.cancel()
	err := mapErr(r.raw.Scan(dest...))
	r.db.after(r.ctx, r.query, time.Since(r.start), err)
	return err
}

func (d *DB) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.opts.Timeout == 0 {
		return ctx, func() {}
	}
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d.opts.Timeout)
}

func (d *DB) after(ctx context.Context, query string, elapsed time.Duration, err error) {
	for _, h := range d.opts.Hooks {
		if h != nil {
			h.AfterQuery(ctx, query, elapsed, err)
		}
	}
}
