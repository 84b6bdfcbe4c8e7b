// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - DocumentStore: documents, versions and chunks
//   - VectorIndex: chunk embeddings with brute-force cosine search
//   - QueryLogStore: retrieval audit records
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Deleting a document cascades to its versions, chunks, embeddings and query logs.
//
// # Vectors
//
// Vectors are stored as little-endian float32 blobs. Search loads the
// embeddings of one document and ranks them in memory, which is adequate
// for per-document retrieval.
//
// # Data Location
//
// By default, the database is stored at ~/.qagent/data/qagent.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
