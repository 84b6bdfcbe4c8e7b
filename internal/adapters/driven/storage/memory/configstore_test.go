package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigStore_TypedGetters(t *testing.T) {
	s := NewConfigStore(map[string]any{
		"embedding.provider":       "google",
		"rag.chunk_size":           int64(800),
		"rag.top_k":                3,
		"rag.similarity_threshold": 0.5,
		"rag.rerank.enabled":       true,
	})

	assert.Equal(t, "google", s.GetString("embedding.provider"))
	assert.Equal(t, 800, s.GetInt("rag.chunk_size"))
	assert.Equal(t, 3, s.GetInt("rag.top_k"))
	assert.InDelta(t, 0.5, s.GetFloat("rag.similarity_threshold"), 1e-9)
	assert.InDelta(t, 800.0, s.GetFloat("rag.chunk_size"), 1e-9)
	assert.True(t, s.GetBool("rag.rerank.enabled"))
}

func TestConfigStore_MissingAndWrongType(t *testing.T) {
	s := NewConfigStore(map[string]any{"key": "value"})

	assert.Empty(t, s.GetString("missing"))
	assert.Zero(t, s.GetInt("key"))
	assert.Zero(t, s.GetFloat("key"))
	assert.False(t, s.GetBool("key"))

	_, ok := s.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_SetAndNoOps(t *testing.T) {
	s := NewConfigStore(nil)
	require.NoError(t, s.Set("a.b", "c"))
	assert.Equal(t, "c", s.GetString("a.b"))

	assert.NoError(t, s.Save())
	assert.NoError(t, s.Load())
	assert.Equal(t, ":memory:", s.Path())
}

func TestConfigStore_SeedIsCopied(t *testing.T) {
	seed := map[string]any{"k": "v"}
	s := NewConfigStore(seed)
	seed["k"] = "changed"
	assert.Equal(t, "v", s.GetString("k"))
}

func TestConfigStore_Concurrency(t *testing.T) {
	s := NewConfigStore(nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := fmt.Sprintf("key.%d", n)
			_ = s.Set(key, n)
			_ = s.GetInt(key)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		assert.Equal(t, i, s.GetInt(fmt.Sprintf("key.%d", i)))
	}
}
