// Package store persists and looks up pokedex rows in PostgreSQL.
//
// Every statement is a single parameterized query; the store performs no
// retries and holds no state beyond the injected connection. Timeouts and
// cancellation belong to the connection layer and surface here as
// *PersistError values.
package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store runs pokedex queries against an injected connection or pool.
// Construct it once at process start; it is safe for concurrent use as
// long as the underlying DBTX is.
type Store struct {
	db DBTX
}

// New returns a Store bound to the given connection, pool or transaction.
func New(db DBTX) *Store {
	return &Store{db: db}
}
