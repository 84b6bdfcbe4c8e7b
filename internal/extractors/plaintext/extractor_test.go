package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected string
	}{
		{"ascii", []byte("hello world"), "hello world"},
		{"utf8", []byte("naïve café"), "naïve café"},
		{"bom dropped", append([]byte{0xEF, 0xBB, 0xBF}, []byte("text")...), "text"},
		{"empty", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Extract(context.Background(), tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestExtractor_SupportedMIMETypes(t *testing.T) {
	assert.Contains(t, New().SupportedMIMETypes(), "text/plain")
}
