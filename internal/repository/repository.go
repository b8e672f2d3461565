// Package repository provides data access interfaces and implementations
// for the SOORENA annotation browser service.
//
// # Overview
//
// This package defines the AnnotationRepository interface and its PostgreSQL
// implementation following the repository pattern to abstract data persistence
// from the browsing logic.
//
// The annotation store is read-only at runtime: records are loaded by the
// ingestion pipeline and never mutated by this service, so the repository
// exposes only query operations. Every filtered operation takes a compiled
// query.Predicate so that counts, pages, aggregate statistics and exports all
// observe the same record set.
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use by multiple
// goroutines. The underlying pgxpool handles connection pooling and
// synchronization.
//
// # Error Handling
//
// All methods return domain-specific errors from the domain package.
// Wrap database errors with context using fmt.Errorf with %w verb.
// Common errors include:
//
//   - domain.ErrNotFound: record does not exist
//   - domain.ErrInvalidInput: invalid parameters provided
//   - domain.ErrServiceUnavailable: the store could not serve the query
//
// # Usage Pattern
//
// Repositories are typically created at application startup and passed to the
// browse layer:
//
//	db, _ := database.New(ctx, cfg, logger)
//	annotationRepo := repository.NewPgAnnotationRepository(db)
package repository

import (
	"github.com/soorena/annotation-browser/internal/database"
)

// DBTX is the database interface satisfied by both *pgxpool.Pool and pgx.Tx.
// Repositories accept it so they work against the shared pool, a
// session-scoped connection, or a transaction without code changes, and so
// tests can substitute a mock.
type DBTX = database.DBTX
