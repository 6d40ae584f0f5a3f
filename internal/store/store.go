// Package store persists vacancies and answers keyword lookups.
//
// The vacancies table is append-only: rows are inserted once per identity
// key (title, company, description) and never updated or deleted.
package store

import (
	"context"
	"fmt"

	"jobmate/vacancy-bot/internal/model"
)

// Store is the record store contract shared by the PostgreSQL and the
// in-memory implementations.
type Store interface {
	// FindByKeyword returns every vacancy whose title or description
	// contains keyword, case-insensitively, in insertion order.
	FindByKeyword(ctx context.Context, keyword string) ([]model.Vacancy, error)
	// InsertIfAbsent stores v unless a vacancy with the same identity key
	// exists. It reports whether a row was inserted. Concurrent calls for
	// the same key produce exactly one true.
	InsertIfAbsent(ctx context.Context, v model.Vacancy) (bool, error)
	// Count returns the number of stored vacancies.
	Count(ctx context.Context) (int64, error)
}

// StorageError wraps a failed store operation with its context.
type StorageError struct {
	Op      string // "find", "insert", "count", "migrate"
	Keyword string
	Key     *model.IdentityKey
	Err     error
}

func (e *StorageError) Error() string {
	switch {
	case e.Key != nil:
		return fmt.Sprintf("store %s (title=%q company=%q): %v", e.Op, e.Key.Title, e.Key.Company, e.Err)
	case e.Keyword != "":
		return fmt.Sprintf("store %s (keyword=%q): %v", e.Op, e.Keyword, e.Err)
	default:
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
}

func (e *StorageError) Unwrap() error { return e.Err }
