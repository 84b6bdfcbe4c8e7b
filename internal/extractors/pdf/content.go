package pdf

import (
	"strconv"
	"strings"
)

// kernSpaceThreshold is the TJ displacement (thousandths of a text space unit)
// beyond which a gap is rendered as a space.
const kernSpaceThreshold = 200

// ParseContentStream returns the text shown by a decoded page content stream.
// Strings are taken from Tj, TJ, ' and " operators; T*, Td, TD, ' and "
// start a new line and ET ends the current one. Glyph codes are mapped
// byte-for-byte, which is correct for the standard Latin encodings.
func ParseContentStream(content []byte) string {
	p := &contentParser{data: content}
	var out strings.Builder
	var line strings.Builder
	var operands []operand

	newline := func() {
		if s := strings.TrimRight(line.String(), " "); s != "" {
			out.WriteString(s)
			out.WriteByte('\n')
		}
		line.Reset()
	}

	for {
		tok, ok := p.next()
		if !ok {
			break
		}
		if tok.kind != kindOperator {
			operands = append(operands, tok)
			continue
		}

		switch tok.text {
		case "Tj":
			if s, ok := lastString(operands); ok {
				line.WriteString(s)
			}
		case "TJ":
			if n := len(operands); n > 0 && operands[n-1].kind == kindArray {
				for _, el := range operands[n-1].items {
					switch el.kind {
					case kindString:
						line.WriteString(el.text)
					case kindNumber:
						if el.num < -kernSpaceThreshold && !strings.HasSuffix(line.String(), " ") {
							line.WriteByte(' ')
						}
					}
				}
			}
		case "'", "\"":
			newline()
			if s, ok := lastString(operands); ok {
				line.WriteString(s)
			}
		case "T*", "Td", "TD", "ET":
			newline()
		case "ID":
			p.skipInlineImage()
		}
		operands = operands[:0]
	}
	newline()

	return out.String()
}

func lastString(ops []operand) (string, bool) {
	if n := len(ops); n > 0 && ops[n-1].kind == kindString {
		return ops[n-1].text, true
	}
	return "", false
}

type operandKind int

const (
	kindOperator operandKind = iota
	kindString
	kindNumber
	kindName
	kindArray
	kindDict
)

type operand struct {
	kind  operandKind
	text  string
	num   float64
	items []operand
}

type contentParser struct {
	data []byte
	pos  int
}

func isWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (p *contentParser) skipWhitespaceAndComments() {
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		if isWhitespace(c) {
			p.pos++
			continue
		}
		if c == '%' {
			for p.pos < len(p.data) && p.data[p.pos] != '\n' && p.data[p.pos] != '\r' {
				p.pos++
			}
			continue
		}
		return
	}
}

// next returns the next token, or false at end of input.
func (p *contentParser) next() (operand, bool) {
	p.skipWhitespaceAndComments()
	if p.pos >= len(p.data) {
		return operand{}, false
	}

	c := p.data[p.pos]
	switch {
	case c == '(':
		p.pos++
		return operand{kind: kindString, text: p.literalString()}, true
	case c == '<' && p.peek(1) == '<':
		p.pos += 2
		p.skipDict()
		return operand{kind: kindDict}, true
	case c == '<':
		p.pos++
		return operand{kind: kindString, text: p.hexString()}, true
	case c == '[':
		p.pos++
		return operand{kind: kindArray, items: p.array()}, true
	case c == ']' || c == '>' || c == ')' || c == '{' || c == '}':
		p.pos++
		return p.next()
	case c == '/':
		p.pos++
		return operand{kind: kindName, text: p.word()}, true
	}

	w := p.word()
	if w == "" {
		p.pos++
		return p.next()
	}
	if n, err := strconv.ParseFloat(w, 64); err == nil {
		return operand{kind: kindNumber, num: n}, true
	}
	return operand{kind: kindOperator, text: w}, true
}

func (p *contentParser) peek(offset int) byte {
	if p.pos+offset < len(p.data) {
		return p.data[p.pos+offset]
	}
	return 0
}

func (p *contentParser) word() string {
	start := p.pos
	for p.pos < len(p.data) && !isWhitespace(p.data[p.pos]) && !isDelimiter(p.data[p.pos]) {
		p.pos++
	}
	return string(p.data[start:p.pos])
}

func (p *contentParser) array() []operand {
	var items []operand
	for {
		p.skipWhitespaceAndComments()
		if p.pos >= len(p.data) {
			return items
		}
		if p.data[p.pos] == ']' {
			p.pos++
			return items
		}
		tok, ok := p.next()
		if !ok {
			return items
		}
		items = append(items, tok)
	}
}

func (p *contentParser) skipDict() {
	depth := 1
	for p.pos < len(p.data) && depth > 0 {
		switch {
		case p.data[p.pos] == '<' && p.peek(1) == '<':
			depth++
			p.pos += 2
		case p.data[p.pos] == '>' && p.peek(1) == '>':
			depth--
			p.pos += 2
		case p.data[p.pos] == '(':
			p.pos++
			p.literalString()
		default:
			p.pos++
		}
	}
}

// literalString reads a (...) string after the opening parenthesis.
func (p *contentParser) literalString() string {
	var b []byte
	depth := 1
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		p.pos++
		switch c {
		case '(':
			depth++
			b = append(b, c)
		case ')':
			depth--
			if depth == 0 {
				return latin1(b)
			}
			b = append(b, c)
		case '\\':
			if p.pos >= len(p.data) {
				return latin1(b)
			}
			e := p.data[p.pos]
			p.pos++
			switch e {
			case 'n':
				b = append(b, '\n')
			case 'r':
				b = append(b, '\r')
			case 't':
				b = append(b, '\t')
			case 'b':
				b = append(b, '\b')
			case 'f':
				b = append(b, '\f')
			case '\r':
				if p.pos < len(p.data) && p.data[p.pos] == '\n' {
					p.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && p.pos < len(p.data) && p.data[p.pos] >= '0' && p.data[p.pos] <= '7'; i++ {
						v = v*8 + int(p.data[p.pos]-'0')
						p.pos++
					}
					b = append(b, byte(v))
				} else {
					b = append(b, e)
				}
			}
		default:
			b = append(b, c)
		}
	}
	return latin1(b)
}

// hexString reads a <...> string after the opening angle bracket.
func (p *contentParser) hexString() string {
	var b []byte
	var hi byte
	half := false
	for p.pos < len(p.data) {
		c := p.data[p.pos]
		p.pos++
		if c == '>' {
			break
		}
		v, ok := hexValue(c)
		if !ok {
			continue
		}
		if half {
			b = append(b, hi<<4|v)
		} else {
			hi = v
		}
		half = !half
	}
	if half {
		b = append(b, hi<<4)
	}
	return latin1(b)
}

func hexValue(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// skipInlineImage advances past binary image data up to the EI operator.
func (p *contentParser) skipInlineImage() {
	for p.pos+2 < len(p.data) {
		if isWhitespace(p.data[p.pos]) && p.data[p.pos+1] == 'E' && p.data[p.pos+2] == 'I' &&
			(p.pos+3 == len(p.data) || isWhitespace(p.data[p.pos+3])) {
			p.pos += 3
			return
		}
		p.pos++
	}
	p.pos = len(p.data)
}

func latin1(b []byte) string {
	if isASCII(b) {
		return string(b)
	}
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return string(r)
}

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}
