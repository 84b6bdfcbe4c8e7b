package extractors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
)

type mockExtractor struct {
	types []string
	text  string
	err   error
	calls int
}

func (m *mockExtractor) SupportedMIMETypes() []string { return m.types }

func (m *mockExtractor) Extract(_ context.Context, _ []byte) (string, error) {
	m.calls++
	return m.text, m.err
}

var _ driven.Extractor = (*mockExtractor)(nil)

func TestRegistry_Extract(t *testing.T) {
	r := NewRegistry()
	m := &mockExtractor{types: []string{"text/plain"}, text: "hello"}
	r.Register(m)

	got, err := r.Extract(context.Background(), []byte("x"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
	assert.Equal(t, 1, m.calls)
}

func TestRegistry_MIMEParametersAndCase(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockExtractor{types: []string{"text/plain"}, text: "ok"})

	for _, mt := range []string{"text/plain; charset=utf-8", "TEXT/PLAIN", " text/plain "} {
		t.Run(mt, func(t *testing.T) {
			got, err := r.Extract(context.Background(), nil, mt)
			require.NoError(t, err)
			assert.Equal(t, "ok", got)
		})
	}
}

func TestRegistry_UnsupportedFormat(t *testing.T) {
	r := NewRegistry()

	_, err := r.Extract(context.Background(), []byte("x"), "image/png")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), "image/png")
	assert.False(t, r.Has("image/png"))
}

func TestRegistry_PropagatesExtractionError(t *testing.T) {
	parseErr := &domain.ExtractionError{MIMEType: "text/plain", Err: errors.New("boom")}
	r := NewRegistry()
	r.Register(&mockExtractor{types: []string{"text/plain"}, err: parseErr})

	_, err := r.Extract(context.Background(), nil, "text/plain")
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}

func TestRegistry_LaterRegistrationWins(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockExtractor{types: []string{"text/plain"}, text: "first"})
	r.Register(&mockExtractor{types: []string{"text/plain"}, text: "second"})

	got, err := r.Extract(context.Background(), nil, "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestNewDefaultRegistry(t *testing.T) {
	r := NewDefaultRegistry()

	for _, mt := range []string{
		"application/pdf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"text/plain",
		"text/markdown",
	} {
		assert.True(t, r.Has(mt), mt)
	}

	got, err := r.Extract(context.Background(), []byte("# Notes"), "text/markdown")
	require.NoError(t, err)
	assert.Equal(t, "# Notes", got)
}

func TestMIMETypeForExtension(t *testing.T) {
	assert.Equal(t, "application/pdf", MIMETypeForExtension(".PDF"))
	assert.Equal(t, "text/markdown", MIMETypeForExtension(".md"))
	assert.Equal(t, "text/plain", MIMETypeForExtension(".txt"))
	assert.Empty(t, MIMETypeForExtension(".png"))
}
