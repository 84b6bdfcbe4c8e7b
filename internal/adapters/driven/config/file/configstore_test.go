package file

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_Success(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)

	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestNewConfigStore_MkdirAllError(t *testing.T) {
	store, err := NewConfigStore("/dev/null/cannot/create/dirs")

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_LoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("this is not valid TOML {{{[["), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)

	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestNewConfigStore_EmptyFile(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte{}, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	_, ok := store.Get("rag.top_k")
	assert.False(t, ok)
}

func TestConfigStore_ReadsNestedTables(t *testing.T) {
	tmpDir := t.TempDir()
	content := `
[embedding]
provider = "google"

[embedding.openai]
model = "text-embedding-3-large"

[rag]
chunk_size = 800
chunk_overlap = 0
similarity_threshold = 0.65
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "google", store.GetString("embedding.provider"))
	assert.Equal(t, "text-embedding-3-large", store.GetString("embedding.openai.model"))
	assert.Equal(t, 800, store.GetInt("rag.chunk_size"))
	assert.Equal(t, 0.65, store.GetFloat("rag.similarity_threshold"))
	assert.Equal(t, float64(800), store.GetFloat("rag.chunk_size"))

	val, ok := store.Get("rag.chunk_overlap")
	assert.True(t, ok)
	assert.Equal(t, int64(0), val)
}

func TestConfigStore_TypedGetters_WrongType(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("rag.top_k", "five"))
	require.NoError(t, store.Set("embedding.provider", 3))
	require.NoError(t, store.Set("flag", "true"))

	assert.Equal(t, 0, store.GetInt("rag.top_k"))
	assert.Equal(t, float64(0), store.GetFloat("rag.top_k"))
	assert.Equal(t, "", store.GetString("embedding.provider"))
	assert.False(t, store.GetBool("flag"))
	assert.Equal(t, "", store.GetString("missing"))
}

func TestConfigStore_SetIsNotPersistedUntilSave(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("rag.top_k", 8))
	assert.Equal(t, 8, store.GetInt("rag.top_k"))

	_, err = os.Stat(store.Path())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, store.Save())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestConfigStore_SaveWritesTables(t *testing.T) {
	tmpDir := t.TempDir()
	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	require.NoError(t, store.Set("rag.chunk_size", 1200))
	require.NoError(t, store.Set("rag.rerank.keyword_weight", 0.25))
	require.NoError(t, store.Set("embedding.openai.api_key", "sk-test"))
	require.NoError(t, store.Set("processing.stale_after", "45m"))
	require.NoError(t, store.Save())

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[rag]")
	assert.NotContains(t, string(raw), "'rag.chunk_size'")

	reloaded, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, 1200, reloaded.GetInt("rag.chunk_size"))
	assert.Equal(t, 0.25, reloaded.GetFloat("rag.rerank.keyword_weight"))
	assert.Equal(t, "sk-test", reloaded.GetString("embedding.openai.api_key"))
	assert.Equal(t, "45m", reloaded.GetString("processing.stale_after"))
}

func TestConfigStore_Save_ConflictingKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("rag", "flat"))
	require.NoError(t, store.Set("rag.top_k", 3))

	assert.Error(t, store.Save())
}

func TestConfigStore_Set_InvalidKey(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, store.Set("", 1))
	assert.Error(t, store.Set(".rag", 1))
	assert.Error(t, store.Set("rag.", 1))
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("embedding.google.api_key", "secret"))
	require.NoError(t, store.Save())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_Load_InvalidTOML(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid toml syntax ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := "key" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetFloat(key)
			_ = store.GetString(key)
			_, _ = store.Get(key)
		}(i)
	}
	wg.Wait()

	assert.NoError(t, store.Save())
}

func TestFlattenAndNest_RoundTrip(t *testing.T) {
	nested := map[string]any{
		"rag": map[string]any{
			"top_k":  int64(5),
			"rerank": map[string]any{"semantic_weight": 0.7},
		},
		"debug": true,
	}

	flat := flattenMap(nested, "")
	assert.Equal(t, map[string]any{
		"rag.top_k":                  int64(5),
		"rag.rerank.semantic_weight": 0.7,
		"debug":                      true,
	}, flat)

	back, err := nestMap(flat)
	require.NoError(t, err)
	assert.Equal(t, nested, back)
}
