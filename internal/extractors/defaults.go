package extractors

import (
	"strings"

	"github.com/custodia-labs/questioning-agent/internal/extractors/docx"
	"github.com/custodia-labs/questioning-agent/internal/extractors/markdown"
	"github.com/custodia-labs/questioning-agent/internal/extractors/pdf"
	"github.com/custodia-labs/questioning-agent/internal/extractors/plaintext"
)

// NewDefaultRegistry returns a registry with the PDF, DOCX, plain text and
// Markdown extractors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(plaintext.New())
	r.Register(markdown.New())
	return r
}

// mimeByExtension maps file extensions to the MIME types handled by the
// default registry.
var mimeByExtension = map[string]string{
	".pdf":      pdf.MIMEType,
	".docx":     docx.MIMEType,
	".txt":      plaintext.MIMEType,
	".text":     plaintext.MIMEType,
	".md":       markdown.MIMEType,
	".markdown": markdown.MIMEType,
}

// MIMETypeForExtension returns the MIME type for a file extension such as
// ".pdf", or "" if the extension is not supported.
func MIMETypeForExtension(ext string) string {
	return mimeByExtension[strings.ToLower(ext)]
}
