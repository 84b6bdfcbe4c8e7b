package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

// createTestDocument creates a test document to satisfy foreign key constraints.
func createTestDocument(t *testing.T, store *Store, docID string) {
	t.Helper()
	err := store.DocumentStore().SaveDocument(context.Background(), &domain.Document{
		ID:         docID,
		OwnerID:    "user-1",
		Name:       docID + ".txt",
		MIMEType:   "text/plain",
		Size:       42,
		Status:     domain.StatusUploading,
		StorageKey: "documents/" + docID + "/" + docID + ".txt",
	})
	require.NoError(t, err)
}

func makeChunks(docID string, contents ...string) []domain.Chunk {
	chunks := make([]domain.Chunk, len(contents))
	for i, c := range contents {
		chunks[i] = domain.Chunk{
			ID:         docID + "-c" + string(rune('0'+i)),
			DocumentID: docID,
			Content:    c,
			Position:   i,
			StartIndex: i * 10,
			EndIndex:   i*10 + len(c),
			Metadata:   map[string]any{"startIndex": i * 10},
		}
	}
	return chunks
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	v1, err := first.SchemaVersion(context.Background())
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()
	v2, err := second.SchemaVersion(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, v1)
	assert.Equal(t, v1, v2)
}

// ==================== Document Store Tests ====================

func TestDocumentStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	docs := store.DocumentStore()

	_, err := docs.GetDocument(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	createTestDocument(t, store, "doc-1")
	doc, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", doc.OwnerID)
	assert.Equal(t, "doc-1.txt", doc.Name)
	assert.Equal(t, int64(42), doc.Size)
	assert.Equal(t, domain.StatusUploading, doc.Status)
	assert.False(t, doc.CreatedAt.IsZero())

	createTestDocument(t, store, "doc-2")
	list, err := docs.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, docs.DeleteDocument(ctx, "doc-1"))
	assert.ErrorIs(t, docs.DeleteDocument(ctx, "doc-1"), domain.ErrNotFound)
}

func TestDocumentStore_SaveKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	docs := store.DocumentStore()

	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, docs.SaveDocument(ctx, &domain.Document{
		ID: "doc-1", Name: "a.txt", MIMEType: "text/plain", StorageKey: "k", CreatedAt: created,
	}))
	require.NoError(t, docs.SaveDocument(ctx, &domain.Document{
		ID: "doc-1", Name: "renamed.txt", MIMEType: "text/plain", StorageKey: "k",
	}))

	doc, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "renamed.txt", doc.Name)
	assert.True(t, created.Equal(doc.CreatedAt))
}

func TestDocumentStore_BeginProcessing(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	docs := store.DocumentStore()
	createTestDocument(t, store, "doc-1")

	ok, err := docs.BeginProcessing(ctx, "doc-1", 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	now = now.Add(10 * time.Minute)
	ok, err = docs.BeginProcessing(ctx, "doc-1", 30*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "fresh run holds the document")

	now = now.Add(30 * time.Minute)
	ok, err = docs.BeginProcessing(ctx, "doc-1", 30*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "stale run is taken over")

	_, err = docs.BeginProcessing(ctx, "missing", time.Minute)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	docs := store.DocumentStore()
	createTestDocument(t, store, "doc-1")

	require.NoError(t, docs.UpdateStatus(ctx, "doc-1", domain.StatusFailed, "boom"))
	doc, err := docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, doc.Status)
	assert.Equal(t, "boom", doc.Error)

	ok, err := docs.BeginProcessing(ctx, "doc-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	doc, err = docs.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, doc.Error, "a new run clears the previous error")

	assert.ErrorIs(t, docs.UpdateStatus(ctx, "missing", domain.StatusIndexed, ""), domain.ErrNotFound)
}

func TestDocumentStore_Versions(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	docs := store.DocumentStore()
	createTestDocument(t, store, "doc-1")

	_, err := docs.LatestVersion(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	v1, err := docs.SaveVersion(ctx, "doc-1", "first", map[string]any{"mimeType": "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Version)
	v2, err := docs.SaveVersion(ctx, "doc-1", "second", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)

	latest, err := docs.LatestVersion(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, latest.Version)
	assert.Equal(t, "second", latest.Content)
	assert.Equal(t, v2.ID, latest.ID)

	_, err = docs.SaveVersion(ctx, "missing", "x", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ReplaceChunks(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	docs := store.DocumentStore()
	index := store.VectorIndex()
	createTestDocument(t, store, "doc-1")

	require.NoError(t, docs.ReplaceChunks(ctx, "doc-1", makeChunks("doc-1", "alpha", "beta", "gamma")))
	require.NoError(t, index.Upsert(ctx, domain.Embedding{ChunkID: "doc-1-c0", Vector: []float32{1, 0}, Model: "m"}))

	chunks, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "beta", chunks[1].Content)
	assert.Equal(t, 10, chunks[1].StartIndex)
	assert.Equal(t, 14, chunks[1].EndIndex)
	assert.InDelta(t, 10, chunks[1].Metadata["startIndex"], 0)

	replacement := []domain.Chunk{{ID: "new-0", DocumentID: "doc-1", Content: "delta", Position: 0}}
	require.NoError(t, docs.ReplaceChunks(ctx, "doc-1", replacement))

	chunks, err = docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "new-0", chunks[0].ID)

	count, err := index.Count(ctx, "doc-1")
	require.NoError(t, err)
	assert.Zero(t, count, "embeddings of replaced chunks cascade")
}

func TestDocumentStore_ReplaceChunksValidation(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	docs := store.DocumentStore()
	createTestDocument(t, store, "doc-1")

	dup := []domain.Chunk{
		{ID: "a", DocumentID: "doc-1", Content: "a", Position: 0},
		{ID: "b", DocumentID: "doc-1", Content: "b", Position: 0},
	}
	assert.ErrorIs(t, docs.ReplaceChunks(ctx, "doc-1", dup), domain.ErrInvalidInput)

	foreign := []domain.Chunk{{ID: "a", DocumentID: "other", Content: "a"}}
	assert.ErrorIs(t, docs.ReplaceChunks(ctx, "doc-1", foreign), domain.ErrInvalidInput)

	assert.ErrorIs(t, docs.ReplaceChunks(ctx, "missing", nil), domain.ErrNotFound)
}

func TestDocumentStore_GetChunksEmpty(t *testing.T) {
	store := setupTestStore(t)
	chunks, err := store.DocumentStore().GetChunks(context.Background(), "nothing")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

// ==================== Vector Index Tests ====================

func TestVectorIndex_UpsertIsIdempotentPerModel(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	index := store.VectorIndex()
	createTestDocument(t, store, "doc-1")
	require.NoError(t, store.DocumentStore().ReplaceChunks(ctx, "doc-1", makeChunks("doc-1", "alpha")))

	require.NoError(t, index.Upsert(ctx, domain.Embedding{ChunkID: "doc-1-c0", Vector: []float32{1, 0}, Model: "a"}))
	require.NoError(t, index.Upsert(ctx, domain.Embedding{ChunkID: "doc-1-c0", Vector: []float32{0, 1}, Model: "a"}))
	require.NoError(t, index.Upsert(ctx, domain.Embedding{ChunkID: "doc-1-c0", Vector: []float32{1, 1}, Model: "b"}))

	count, err := index.Count(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	results, err := index.Search(ctx, driven.VectorQuery{DocumentID: "doc-1", Vector: []float32{0, 1}, TopK: 5, Model: "a"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6, "latest vector wins")

	err = index.Upsert(ctx, domain.Embedding{ChunkID: "missing", Vector: []float32{1}, Model: "a"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	err = index.Upsert(ctx, domain.Embedding{ChunkID: "doc-1-c0", Model: "a"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestVectorIndex_SearchOrderingAndScope(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	docs := store.DocumentStore()
	index := store.VectorIndex()
	createTestDocument(t, store, "doc-1")
	createTestDocument(t, store, "doc-2")
	require.NoError(t, docs.ReplaceChunks(ctx, "doc-1", makeChunks("doc-1", "a", "b", "c")))
	require.NoError(t, docs.ReplaceChunks(ctx, "doc-2", makeChunks("doc-2", "x")))

	vecs := [][]float32{{0, 1}, {1, 0}, {1, 0}}
	for i, v := range vecs {
		require.NoError(t, index.Upsert(ctx, domain.Embedding{
			ChunkID: "doc-1-c" + string(rune('0'+i)), Vector: v, Model: "m", Provider: domain.AIProviderOpenAI,
		}))
	}
	require.NoError(t, index.Upsert(ctx, domain.Embedding{ChunkID: "doc-2-c0", Vector: []float32{1, 0}, Model: "m"}))

	results, err := index.Search(ctx, driven.VectorQuery{DocumentID: "doc-1", Vector: []float32{1, 0}, TopK: 2, Model: "m"})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "doc-1-c1", results[0].ChunkID, "ties break by position")
	assert.Equal(t, "doc-1-c2", results[1].ChunkID)
	assert.InDelta(t, 1.0, results[0].Similarity, 1e-6)
	assert.Equal(t, results[0].Similarity, results[0].Score)

	_, err = index.Search(ctx, driven.VectorQuery{DocumentID: "doc-1", Vector: []float32{1, 0, 0}, TopK: 2})
	assert.Error(t, err, "dimension mismatch")
}

// ==================== Cascade and Query Log Tests ====================

func TestDeleteDocumentCascades(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	docs := store.DocumentStore()
	index := store.VectorIndex()
	logs := store.QueryLogStore()
	createTestDocument(t, store, "doc-1")
	require.NoError(t, docs.ReplaceChunks(ctx, "doc-1", makeChunks("doc-1", "a")))
	require.NoError(t, index.Upsert(ctx, domain.Embedding{ChunkID: "doc-1-c0", Vector: []float32{1}, Model: "m"}))
	_, err := docs.SaveVersion(ctx, "doc-1", "a", nil)
	require.NoError(t, err)
	require.NoError(t, logs.SaveQueryLog(ctx, &domain.QueryLog{DocumentID: "doc-1", Query: "q", TopK: 5}))

	require.NoError(t, docs.DeleteDocument(ctx, "doc-1"))

	chunks, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
	count, err := index.Count(ctx, "doc-1")
	require.NoError(t, err)
	assert.Zero(t, count)
	_, err = docs.LatestVersion(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	entries, err := logs.ListQueryLogs(ctx, "doc-1", 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestQueryLogStore(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)
	logs := store.QueryLogStore()
	createTestDocument(t, store, "doc-1")

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, q := range []string{"first", "second", "third"} {
		require.NoError(t, logs.SaveQueryLog(ctx, &domain.QueryLog{
			DocumentID: "doc-1",
			Query:      q,
			TopK:       5,
			Results:    []domain.SearchResult{{ChunkID: "c", Content: q, Similarity: 0.9, Score: 0.9}},
			Latency:    150 * time.Millisecond,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := logs.ListQueryLogs(ctx, "doc-1", 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "third", entries[0].Query)
	assert.Equal(t, "second", entries[1].Query)
	assert.Equal(t, 150*time.Millisecond, entries[0].Latency)
	require.Len(t, entries[0].Results, 1)
	assert.InDelta(t, 0.9, entries[0].Results[0].Similarity, 1e-9)
	assert.NotEmpty(t, entries[0].ID)

	err = logs.SaveQueryLog(ctx, &domain.QueryLog{DocumentID: "missing", Query: "q"})
	assert.Error(t, err, "foreign key enforced")
}

// ==================== Helper Tests ====================

func TestFloat32Roundtrip(t *testing.T) {
	in := []float32{0, 1.5, -2.25, 3.4028235e38}
	assert.Equal(t, in, bytesToFloat32Slice(float32SliceToBytes(in)))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}
