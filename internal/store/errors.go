package store

import "github.com/authcore/authcore/pkg/errx"

var registry = errx.NewRegistry("STORE")

var (
	// ErrNotFound is returned when a document lookup misses.
	ErrNotFound = registry.Register("NOT_FOUND", errx.TypeNotFound, 404, "resource not found")
	// ErrDatabase is returned when the underlying store call fails
	// (spec.md §7: "DatabaseError | InternalServerError — 500 — store or
	// primitive failed").
	ErrDatabase = registry.Register("DATABASE_ERROR", errx.TypeInternal, 500, "database error")
)

// NotFound builds a not-found error with an entity-kind detail.
func NotFound(entity string) *errx.Error {
	return registry.New(ErrNotFound).WithDetail("entity", entity)
}

// Database wraps an underlying store error.
func Database(cause error) *errx.Error {
	return registry.NewWithCause(ErrDatabase, cause)
}
