// Package pdf extracts text from PDF documents using pdfcpu.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
)

// MIMEType is the PDF MIME type.
const MIMEType = "application/pdf"

var disableConfigDir sync.Once

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor decodes page content streams and collects the strings shown by
// text operators. Pages are separated by blank lines.
type Extractor struct{}

// New creates a new PDF extractor.
func New() *Extractor {
	disableConfigDir.Do(api.DisableConfigDir)
	return &Extractor{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{MIMEType}
}

// Extract returns the text of every page in order.
func (e *Extractor) Extract(ctx context.Context, data []byte) (string, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return "", &domain.ExtractionError{MIMEType: MIMEType, Err: fmt.Errorf("read: %w", err)}
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return "", &domain.ExtractionError{MIMEType: MIMEType, Err: fmt.Errorf("validate: %w", err)}
	}

	pages := make([]string, 0, pdfCtx.PageCount)
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
		if err != nil {
			return "", &domain.ExtractionError{MIMEType: MIMEType, Err: fmt.Errorf("page %d: %w", pageNr, err)}
		}
		if r == nil {
			continue
		}
		content, err := io.ReadAll(r)
		if err != nil {
			return "", &domain.ExtractionError{MIMEType: MIMEType, Err: fmt.Errorf("page %d: %w", pageNr, err)}
		}

		if text := strings.TrimSpace(ParseContentStream(content)); text != "" {
			pages = append(pages, text)
		}
	}

	return strings.Join(pages, "\n\n"), nil
}
