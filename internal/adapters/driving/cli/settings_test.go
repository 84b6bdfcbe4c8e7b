package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShowCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "API Key: sk-t...7890")
	assert.Contains(t, out, "API Key: (not set)")
	assert.Contains(t, out, "Chunk size: 1000")
	assert.Contains(t, out, "Similarity threshold: 0.70")
	assert.Contains(t, out, "Driver: sqlite")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShowCmd_Invalid(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.settings.settings = domain.DefaultSettings()

	out, err := executeCommand("settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning:")
	assert.Contains(t, out, "API key is required")
}

func TestSettingsSetCmd(t *testing.T) {
	t.Run("saves updated value", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()

		out, err := executeCommand("settings", "set", "rag.top_k", "9")

		require.NoError(t, err)
		require.NotNil(t, ts.settings.saved)
		assert.Equal(t, 9, ts.settings.saved.RAG.TopK)
		assert.Contains(t, out, "Set rag.top_k = 9")
	})

	t.Run("rejects unknown key", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()

		_, err := executeCommand("settings", "set", "rag.unknown", "1")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Nil(t, ts.settings.saved)
	})

	t.Run("rejects invalid result", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()

		_, err := executeCommand("settings", "set", "rag.chunk_overlap", "5000")

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Nil(t, ts.settings.saved)
	})
}

func TestApplySetting(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		check   func(t *testing.T, s domain.Settings)
		wantErr bool
	}{
		{key: "embedding.provider", value: "google", check: func(t *testing.T, s domain.Settings) {
			assert.Equal(t, domain.AIProviderGoogle, s.Embedding.Provider)
		}},
		{key: "embedding.provider", value: "ollama", wantErr: true},
		{key: "rag.chunk_size", value: "512", check: func(t *testing.T, s domain.Settings) {
			assert.Equal(t, 512, s.RAG.ChunkSize)
		}},
		{key: "rag.chunk_size", value: "big", wantErr: true},
		{key: "rag.similarity_threshold", value: "0.35", check: func(t *testing.T, s domain.Settings) {
			assert.Equal(t, 0.35, s.RAG.SimilarityThreshold)
		}},
		{key: "rag.similarity_threshold", value: "high", wantErr: true},
		{key: "embedding.openai.base_url", value: "http://localhost:8080/v1", check: func(t *testing.T, s domain.Settings) {
			assert.Equal(t, "http://localhost:8080/v1", s.Embedding.OpenAI.BaseURL)
		}},
		{key: "processing.stale_after", value: "10m", check: func(t *testing.T, s domain.Settings) {
			assert.Equal(t, 10*time.Minute, s.Processing.StaleAfter)
		}},
		{key: "processing.stale_after", value: "-1m", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			s := domain.DefaultSettings()
			err := applySetting(&s, tt.key, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestSettingsEmbeddingCmd(t *testing.T) {
	t.Run("configures selected provider", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		orig := settingsInput
		settingsInput = strings.NewReader("2\n\ngoogle-key-123\n")
		defer func() { settingsInput = orig }()

		out, err := executeCommand("settings", "embedding")

		require.NoError(t, err)
		assert.Equal(t, domain.AIProviderGoogle, ts.settings.provider)
		assert.Equal(t, "text-embedding-004", ts.settings.model)
		assert.Equal(t, "google-key-123", ts.settings.apiKey)
		assert.Contains(t, out, "Validating configuration... OK")
		assert.Contains(t, out, "Embedding provider configured")
	})

	t.Run("reports failed validation", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.settings.pingErr = domain.ErrProviderUnavailable
		orig := settingsInput
		settingsInput = strings.NewReader("1\n\nsk-bad\n")
		defer func() { settingsInput = orig }()

		out, err := executeCommand("settings", "embedding")

		assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
		assert.Contains(t, out, "FAILED")
	})

	t.Run("requires API key", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		orig := settingsInput
		settingsInput = strings.NewReader("1\ncustom-model\n\n")
		defer func() { settingsInput = orig }()

		_, err := executeCommand("settings", "embedding")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key is required")
		assert.Empty(t, ts.settings.apiKey)
	})
}

func TestSettingKeyList(t *testing.T) {
	list := settingKeyList()
	assert.Contains(t, list, "rag.top_k")
	assert.Contains(t, list, "storage.driver")
}
