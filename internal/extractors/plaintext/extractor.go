// Package plaintext extracts text from plain text files.
package plaintext

import (
	"bytes"
	"context"

	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
)

// MIMEType is the primary MIME type handled.
const MIMEType = "text/plain"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor decodes plain text bytes.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Extract returns data as a string with any UTF-8 byte order mark removed.
func (e *Extractor) Extract(_ context.Context, data []byte) (string, error) {
	return Decode(data), nil
}

// Decode converts bytes to a string, dropping a leading UTF-8 BOM.
func Decode(data []byte) string {
	return string(bytes.TrimPrefix(data, utf8BOM))
}
