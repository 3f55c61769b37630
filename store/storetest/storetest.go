// Package storetest opens an in-memory SQLite database with the service schema for tests.
package storetest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"TodoWebService/store"

	_ "github.com/mattn/go-sqlite3"
)

// Prefix is the table prefix used by Open.
const Prefix = "do_"

const schema = `
CREATE TABLE %[1]susers (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	email      TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
CREATE TABLE %[1]stasks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id     INTEGER NOT NULL REFERENCES %[1]susers (id),
	title       TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status      INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);`

// Open returns a store.DB over a fresh in-memory database, closed when the test ends.
func Open(t testing.TB, hooks ...store.Hook) *store.DB {
	t.Helper()
	// a single connection keeps every statement on the same in-memory database
	sqldb, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqldb.Close() })

	if _, err := sqldb.ExecContext(context.Background(), fmt.Sprintf(schema, Prefix)); err != nil {
		t.Fatalf("create schema: %v", err)
	}
	return store.New(sqldb, store.Options{
		Dialect: store.SQLite,
		Prefix:  Prefix,
		Hooks:   hooks,
	})
}
