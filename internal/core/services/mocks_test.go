package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
)

// mockEmbedding implements driven.EmbeddingService for testing.
type mockEmbedding struct {
	model   string
	vectors map[string][]float32
	embedFn func(text string) []float32
	err     error
	failOn  string
	delay   time.Duration

	mu       sync.Mutex
	calls    []string
	inFlight atomic.Int32
	peak     atomic.Int32
	closed   bool
}

func newMockEmbedding(model string) *mockEmbedding {
	return &mockEmbedding{model: model, vectors: make(map[string][]float32)}
}

func (m *mockEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}

	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.failOn != "" && text == m.failOn {
		return nil, errors.New("provider rejected input")
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	if m.embedFn != nil {
		return m.embedFn(text), nil
	}
	return []float32{float32(len(text)), 1}, nil
}

func (m *mockEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedding) Dimensions() int              { return 2 }
func (m *mockEmbedding) ModelName() string            { return m.model }
func (m *mockEmbedding) Ping(_ context.Context) error { return m.err }

func (m *mockEmbedding) Close() error {
	m.closed = true
	return nil
}

func (m *mockEmbedding) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// mockVectorIndex implements driven.VectorIndex for testing.
type mockVectorIndex struct {
	results   []domain.SearchResult
	searchErr error
	lastQuery driven.VectorQuery
}

func (m *mockVectorIndex) Upsert(_ context.Context, _ domain.Embedding) error {
	return nil
}

func (m *mockVectorIndex) Search(_ context.Context, q driven.VectorQuery) ([]domain.SearchResult, error) {
	m.lastQuery = q
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if q.TopK < len(m.results) {
		return m.results[:q.TopK], nil
	}
	return m.results, nil
}

func (m *mockVectorIndex) Count(_ context.Context, _ string) (int, error) {
	return len(m.results), nil
}

// mockQueryLog implements driven.QueryLogStore for testing.
type mockQueryLog struct {
	saved   []domain.QueryLog
	saveErr error
}

func (m *mockQueryLog) SaveQueryLog(_ context.Context, log *domain.QueryLog) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append(m.saved, *log)
	return nil
}

func (m *mockQueryLog) ListQueryLogs(_ context.Context, _ string, _ int) ([]domain.QueryLog, error) {
	return m.saved, nil
}

func newTestEmbedder(svc driven.EmbeddingService) *Embedder {
	e := NewEmbedder(domain.AIProviderOpenAI, 0)
	e.Register(domain.AIProviderOpenAI, svc)
	return e
}
