package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	commands := documentCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.ElementsMatch(t, []string{"add", "list", "get", "chunks", "delete"}, commandNames)
}

func TestDocumentAddCmd(t *testing.T) {
	t.Run("registers file with detected type", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()

		path := filepath.Join(t.TempDir(), "notes.md")
		require.NoError(t, os.WriteFile(path, []byte("# Notes\n\nhello"), 0644))

		out, err := executeCommand("document", "add", path)

		require.NoError(t, err)
		require.Len(t, ts.documents.registered, 1)
		req := ts.documents.registered[0]
		assert.Equal(t, "notes.md", req.Name)
		assert.Equal(t, "text/markdown", req.MIMEType)
		assert.Equal(t, "# Notes\n\nhello", string(req.Data))
		assert.Contains(t, out, "Registered document: doc-new")
		assert.Contains(t, out, "qagent process doc-new")
		assert.Empty(t, ts.processor.calls)
	})

	t.Run("processes when asked", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()

		path := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

		out, err := executeCommand("document", "add", path, "--process", "--provider", "google", "--owner", "u-1")

		require.NoError(t, err)
		assert.Equal(t, "u-1", ts.documents.registered[0].OwnerID)
		assert.Equal(t, []string{"doc-new"}, ts.processor.calls)
		assert.Equal(t, domain.AIProviderGoogle, ts.processor.opts[0].Provider)
		assert.Contains(t, out, "Indexed 3 chunks")
	})

	t.Run("explicit mime type", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()

		path := filepath.Join(t.TempDir(), "README")
		require.NoError(t, os.WriteFile(path, []byte("hello"), 0644))

		_, err := executeCommand("document", "add", path, "--mime-type", "text/plain")

		require.NoError(t, err)
		assert.Equal(t, "text/plain", ts.documents.registered[0].MIMEType)
	})

	t.Run("unknown extension", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		path := filepath.Join(t.TempDir(), "image.png")
		require.NoError(t, os.WriteFile(path, []byte("png"), 0644))

		_, err := executeCommand("document", "add", path)

		assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		_, err := executeCommand("document", "add", filepath.Join(t.TempDir(), "missing.txt"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read file")
	})

	t.Run("requires exactly one arg", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		_, err := executeCommand("document", "add")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "accepts 1 arg(s)")
	})
}

func TestDocumentListCmd(t *testing.T) {
	t.Run("lists documents", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()

		out, err := executeCommand("document", "list")

		require.NoError(t, err)
		assert.Contains(t, out, "doc-1")
		assert.Contains(t, out, "report.pdf")
		assert.Contains(t, out, "INDEXED")
		assert.Contains(t, out, "extraction failed")
		assert.Contains(t, out, "Total: 2 documents")
	})

	t.Run("service error", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.documents.err = errors.New("database down")

		_, err := executeCommand("document", "list")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "database down")
	})

	t.Run("not configured", func(t *testing.T) {
		_, cleanup := setupTestServices()
		defer cleanup()
		documentService = nil

		_, err := executeCommand("document", "list")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "not configured")
	})
}

func TestDocumentGetCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("document", "get", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "Document: doc-1")
	assert.Contains(t, out, "application/pdf")
	assert.Contains(t, out, "Chunks:   12")
	assert.Contains(t, out, "Version:  2")
	assert.Contains(t, out, "2026-03-01 10:00:00")
}

func TestDocumentGetCmd_NotFound(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.documents.err = domain.ErrNotFound

	_, err := executeCommand("document", "get", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentChunksCmd(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("document", "chunks", "doc-1")

	require.NoError(t, err)
	assert.Contains(t, out, "--- Chunk 0 [0:11] ---")
	assert.Contains(t, out, "First chunk")
	assert.Contains(t, out, "--- Chunk 1 [8:20] ---")
}

func TestDocumentDeleteCmd(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	out, err := executeCommand("document", "delete", "doc-1")

	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1"}, ts.documents.deleted)
	assert.Contains(t, out, "Deleted document: doc-1")
}

func TestProcessCmd(t *testing.T) {
	t.Run("reports counts", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()

		out, err := executeCommand("process", "doc-1", "--provider", "openai")

		require.NoError(t, err)
		assert.Equal(t, []string{"doc-1"}, ts.processor.calls)
		assert.Equal(t, domain.AIProviderOpenAI, ts.processor.opts[0].Provider)
		assert.Contains(t, out, "Indexed 3 chunks (3 embeddings)")
	})

	t.Run("returns failure cause", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.processor.result = &domain.ProcessingResult{
			DocumentID: "doc-1",
			Error:      "document is already being processed",
			Err:        domain.ErrProcessingInProgress,
		}

		_, err := executeCommand("process", "doc-1")

		assert.ErrorIs(t, err, domain.ErrProcessingInProgress)
	})

	t.Run("failure without cause", func(t *testing.T) {
		ts, cleanup := setupTestServices()
		defer cleanup()
		ts.processor.result = &domain.ProcessingResult{DocumentID: "doc-1", Error: "empty content"}

		_, err := executeCommand("process", "doc-1")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty content")
	})
}
