package driven

import "context"

// Extractor turns file bytes of one or more MIME types into plain text.
// Extraction is pure: no state is kept between calls.
type Extractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract returns the plain text of data.
	// Parser failures are reported as *domain.ExtractionError.
	Extract(ctx context.Context, data []byte) (string, error)
}

// ExtractorRegistry selects an extractor by MIME type.
type ExtractorRegistry interface {
	// Register adds an extractor for every MIME type it supports.
	Register(e Extractor)

	// Get returns the extractor for mimeType.
	// Returns domain.ErrUnsupportedFormat if none is registered.
	Get(mimeType string) (Extractor, error)

	// Extract selects an extractor and runs it.
	Extract(ctx context.Context, data []byte, mimeType string) (string, error)

	// SupportedMIMETypes returns every registered MIME type.
	SupportedMIMETypes() []string
}
