package mcp

import (
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Processor runs the ingestion pipeline.
	Processor driving.DocumentProcessor

	// Context retrieves and packs context for a question.
	Context driving.ContextAssembler

	// Document lists documents and their chunks. Optional.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Processor == nil {
		return ErrMissingProcessor
	}
	if p.Context == nil {
		return ErrMissingAssembler
	}
	return nil
}
