package driven

// ChunkOptions configures a chunking run.
type ChunkOptions struct {
	// ChunkSize is the maximum chunk length in characters.
	ChunkSize int

	// ChunkOverlap is the maximum number of characters carried into the next chunk.
	ChunkOverlap int
}

// TextChunk is a chunk before it is bound to a document.
type TextChunk struct {
	Content    string
	Position   int
	StartIndex int
	EndIndex   int
}

// Chunker splits text into overlapping, positioned chunks.
type Chunker interface {
	// Chunk splits text. Empty or whitespace-only text yields no chunks.
	Chunk(text string, opts ChunkOptions) ([]TextChunk, error)
}
