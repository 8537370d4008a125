// Package store is the pgx-backed persistence layer. It implements the
// Persistence contracts the listing and booking domains declare.
package store

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minibnb/minibnb/internal/booking"
	"github.com/minibnb/minibnb/internal/listing"
)

// Store runs queries against a shared connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a store over pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// mapNotFound converts pgx's no-rows sentinel to the domain's.
func mapNotFound(err error, sentinel error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel
	}
	return err
}

// Compile-time contract checks.
var (
	_ listing.Persistence = (*Store)(nil)
	_ booking.Persistence = (*Store)(nil)
)
