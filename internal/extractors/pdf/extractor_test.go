package pdf

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
)

// buildPDF writes a minimal single-font PDF with one page per content stream.
func buildPDF(contents ...string) []byte {
	var objects []string
	pageCount := len(contents)
	fontObj := 3 + 2*pageCount

	kids := ""
	for i := 0; i < pageCount; i++ {
		kids += fmt.Sprintf("%d 0 R ", 3+2*i)
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pageCount),
	)
	for i, c := range contents {
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>", fontObj, 4+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(c), c),
		)
	}
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractor_SupportedMIMETypes(t *testing.T) {
	assert.Equal(t, []string{"application/pdf"}, New().SupportedMIMETypes())
}

func TestExtractor_Extract(t *testing.T) {
	data := buildPDF(
		"BT /F1 12 Tf 72 720 Td (Introduction to testing) Tj 0 -14 Td (Page one body.) Tj ET",
		"BT /F1 12 Tf 72 720 Td (Page two body.) Tj ET",
	)

	text, err := New().Extract(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, "Introduction to testing\nPage one body.\n\nPage two body.", text)
}

func TestExtractor_NoText(t *testing.T) {
	data := buildPDF("q 0 0 10 10 re f Q")

	text, err := New().Extract(context.Background(), data)
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractor_InvalidPDF(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte("this is not a pdf"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)

	var extractErr *domain.ExtractionError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, MIMEType, extractErr.MIMEType)
}
