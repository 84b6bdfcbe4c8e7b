// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - Extractor / ExtractorRegistry: Turns stored file bytes into plain text
//   - Chunker: Splits extracted text into overlapping chunks
//   - EmbeddingService: Generates vector embeddings (OpenAI, Google)
//   - VectorIndex: Stores embeddings and answers similarity queries
//   - DocumentStore: Document, version and chunk persistence
//   - ObjectStore: Raw file bytes keyed by storage key
//   - QueryLogStore: Retrieval audit records
//   - ConfigStore: Application configuration
//   - PromptStore: User-editable prompt templates
//   - EmbeddingValidator: Credential checks against embedding providers
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven
