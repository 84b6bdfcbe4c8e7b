// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants index documents and pull prompt-ready context from them.
package mcp

import "errors"

var (
	// ErrMissingProcessor is returned when the document processor is not provided.
	ErrMissingProcessor = errors.New("mcp: document processor is required")

	// ErrMissingAssembler is returned when the context assembler is not provided.
	ErrMissingAssembler = errors.New("mcp: context assembler is required")
)
