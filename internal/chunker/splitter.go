// Package chunker provides a recursive separator-based text splitter.
package chunker

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/questioning-agent/internal/core/domain"
	"github.com/custodia-labs/questioning-agent/internal/core/ports/driven"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// DefaultSeparators are tried in order: paragraphs, lines, sentences, words,
// then single characters.
var DefaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Verify interface compliance.
var _ driven.Chunker = (*Splitter)(nil)

// Splitter splits text on the coarsest separator that yields pieces smaller
// than the chunk size, recursing into oversized pieces with finer separators.
// Separators stay attached to the start of the piece that follows them.
type Splitter struct {
	separators []string
}

// Option configures the splitter.
type Option func(*Splitter)

// WithSeparators replaces the separator list. An empty string separator
// splits into single characters.
func WithSeparators(seps []string) Option {
	return func(s *Splitter) {
		if len(seps) > 0 {
			s.separators = seps
		}
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{separators: DefaultSeparators}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Validate checks that opts describe a usable chunking run.
func Validate(opts driven.ChunkOptions) error {
	if opts.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidInput, opts.ChunkSize)
	}
	if opts.ChunkOverlap < 0 || opts.ChunkOverlap >= opts.ChunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be in [0, %d)", domain.ErrInvalidInput, opts.ChunkOverlap, opts.ChunkSize)
	}
	return nil
}

// Chunk splits text into ordered chunks with character offsets into text.
// Empty or whitespace-only text yields no chunks.
func (s *Splitter) Chunk(text string, opts driven.ChunkOptions) ([]driven.TextChunk, error) {
	if err := Validate(opts); err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	m := merger{text: text, size: opts.ChunkSize, overlap: opts.ChunkOverlap}
	spans := s.split(text, 0, s.separators, &m)

	runeAt := newRuneCounter(text)
	chunks := make([]driven.TextChunk, len(spans))
	for i, sp := range spans {
		chunks[i] = driven.TextChunk{
			Content:    text[sp.start:sp.end],
			Position:   i,
			StartIndex: runeAt(sp.start),
			EndIndex:   runeAt(sp.end),
		}
	}
	return chunks, nil
}

// span is a byte range [start, end) of the text being chunked.
type span struct {
	start, end int
}

// split chunks part, which begins at byte offset base of the full text.
func (s *Splitter) split(part string, base int, separators []string, m *merger) []span {
	sep := separators[len(separators)-1]
	var finer []string
	for i, candidate := range separators {
		if candidate == "" {
			sep = candidate
			break
		}
		if strings.Contains(part, candidate) {
			sep = candidate
			finer = separators[i+1:]
			break
		}
	}

	var out, good []span
	offset := base
	for _, piece := range splitKeepingSeparator(part, sep) {
		sp := span{start: offset, end: offset + len(piece)}
		offset = sp.end

		if runeLen(piece) < m.size {
			good = append(good, sp)
			continue
		}
		if len(good) > 0 {
			out = append(out, m.merge(good)...)
			good = nil
		}
		if len(finer) == 0 {
			if trimmed, ok := m.trim(sp); ok {
				out = append(out, trimmed)
			}
		} else {
			out = append(out, s.split(piece, sp.start, finer, m)...)
		}
	}
	if len(good) > 0 {
		out = append(out, m.merge(good)...)
	}
	return out
}

// splitKeepingSeparator splits before every occurrence of sep. The pieces
// concatenate back to text.
func splitKeepingSeparator(text, sep string) []string {
	if sep == "" {
		out := make([]string, 0, len(text))
		for _, r := range text {
			out = append(out, string(r))
		}
		return out
	}

	var out []string
	rest := text
	for len(rest) > 0 {
		idx := strings.Index(rest[1:], sep)
		if idx < 0 {
			break
		}
		out = append(out, rest[:idx+1])
		rest = rest[idx+1:]
	}
	if rest != "" {
		out = append(out, rest)
	}
	return out
}

type merger struct {
	text    string
	size    int
	overlap int
}

// merge packs contiguous pieces into chunks no longer than size, carrying at
// most overlap characters of trailing pieces into the next chunk. A chunk
// never starts with a whitespace-only piece, so chunk starts strictly increase.
func (m *merger) merge(pieces []span) []span {
	var docs, current []span
	total := 0

	for _, p := range pieces {
		n := m.runes(p)
		if total+n > m.size && len(current) > 0 {
			if doc, ok := m.trim(span{start: current[0].start, end: current[len(current)-1].end}); ok {
				docs = append(docs, doc)
			}
			for len(current) > 0 && (total > m.overlap || total+n > m.size || m.blank(current[0])) {
				total -= m.runes(current[0])
				current = current[1:]
			}
		}
		if len(current) == 0 && m.blank(p) {
			continue
		}
		current = append(current, p)
		total += n
	}

	if len(current) > 0 {
		if doc, ok := m.trim(span{start: current[0].start, end: current[len(current)-1].end}); ok {
			docs = append(docs, doc)
		}
	}
	return docs
}

func (m *merger) runes(sp span) int {
	return runeLen(m.text[sp.start:sp.end])
}

func (m *merger) blank(sp span) bool {
	return strings.TrimSpace(m.text[sp.start:sp.end]) == ""
}

// trim narrows sp to exclude leading and trailing whitespace. It reports
// false when nothing but whitespace remains.
func (m *merger) trim(sp span) (span, bool) {
	left := strings.TrimLeftFunc(m.text[sp.start:sp.end], unicode.IsSpace)
	if left == "" {
		return span{}, false
	}
	start := sp.end - len(left)
	return span{start: start, end: start + len(strings.TrimRightFunc(left, unicode.IsSpace))}, true
}

// newRuneCounter converts byte offsets to rune offsets, counting from the
// previously converted offset in either direction.
func newRuneCounter(text string) func(int) int {
	lastByte, lastRune := 0, 0
	return func(b int) int {
		if b >= lastByte {
			lastRune += utf8.RuneCountInString(text[lastByte:b])
		} else {
			lastRune -= utf8.RuneCountInString(text[b:lastByte])
		}
		lastByte = b
		return lastRune
	}
}

// EstimateChunkCount returns a rough chunk count for text ignoring overlap.
func EstimateChunkCount(text string, chunkSize int) int {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	n := runeLen(text)
	return (n + chunkSize - 1) / chunkSize
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
