// Package domain defines the core business entities for the questioning agent.
//
// This package is the innermost layer of the hexagonal architecture.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded source file and its lifecycle status
//   - DocumentVersion: An immutable snapshot of extracted text
//   - Chunk: A positioned span of extracted text
//   - Embedding: A vector for one chunk under one model
//   - SearchResult, ContextWindow: Per-request retrieval output
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
