package ingest

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
)

// TJ displacements below this value (thousandths of text space) read as a word gap.
const tjWordGap = -200

// maxArrayDepth bounds array nesting in a content stream.
const maxArrayDepth = 64

var errArrayDepth = fmt.Errorf("content stream arrays nested deeper than %d levels", maxArrayDepth)

type operandKind int

const (
	opNumber operandKind = iota
	opString
	opArray
	opOther
)

type operand struct {
	kind operandKind
	num  float64
	str  []byte
	arr  []operand
}

// textFromContentStream recovers the text shown by a decoded page content stream.
// Strings are read as PDFDocEncoding/Latin-1 unless they carry a UTF-16BE BOM;
// composite (CID) font encodings are not mapped.
func textFromContentStream(content []byte) (string, error) {
	s := &streamScanner{buf: content}
	var (
		out      strings.Builder
		operands []operand
		lineOpen bool
	)

	write := func(b []byte) {
		t := decodePDFString(b)
		if t == "" {
			return
		}
		out.WriteString(t)
		lineOpen = true
	}
	newline := func() {
		if lineOpen {
			out.WriteByte('\n')
			lineOpen = false
		}
	}

	for {
		tok, ok := s.next()
		if !ok {
			break
		}
		if tok.kind != opOther || tok.str == nil {
			operands = append(operands, tok)
			continue
		}

		switch string(tok.str) {
		case "Tj":
			if o, ok := lastOf(operands, opString); ok {
				write(o.str)
			}
		case "'":
			newline()
			if o, ok := lastOf(operands, opString); ok {
				write(o.str)
			}
		case "\"":
			newline()
			if o, ok := lastOf(operands, opString); ok {
				write(o.str)
			}
		case "TJ":
			if o, ok := lastOf(operands, opArray); ok {
				for _, el := range o.arr {
					switch el.kind {
					case opString:
						write(el.str)
					case opNumber:
						if el.num < tjWordGap && lineOpen && !strings.HasSuffix(out.String(), " ") {
							out.WriteByte(' ')
						}
					}
				}
			}
		case "T*", "ET":
			newline()
		case "Td", "TD":
			if len(operands) >= 2 {
				if ty := operands[len(operands)-1]; ty.kind == opNumber && ty.num != 0 {
					newline()
				}
			}
		case "ID":
			s.skipInlineImage()
		}
		operands = operands[:0]
	}
	if s.err != nil {
		return "", s.err
	}
	newline()
	return out.String(), nil
}

func lastOf(ops []operand, kind operandKind) (operand, bool) {
	if len(ops) == 0 || ops[len(ops)-1].kind != kind {
		return operand{}, false
	}
	return ops[len(ops)-1], true
}

func decodePDFString(b []byte) string {
	if len(b) >= 2 && b[0] == 0xFE && b[1] == 0xFF {
		b = b[2:]
		u := make([]uint16, 0, len(b)/2)
		for i := 0; i+1 < len(b); i += 2 {
			u = append(u, uint16(b[i])<<8|uint16(b[i+1]))
		}
		return string(utf16.Decode(u))
	}
	r := make([]rune, len(b))
	for i, c := range b {
		r[i] = rune(c)
	}
	return string(r)
}

type streamScanner struct {
	buf   []byte
	pos   int
	depth int
	err   error
}

func isPDFWhitespace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\f', 0:
		return true
	}
	return false
}

func isPDFDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (s *streamScanner) skipSpace() {
	for s.pos < len(s.buf) {
		c := s.buf[s.pos]
		if isPDFWhitespace(c) {
			s.pos++
			continue
		}
		if c == '%' {
			for s.pos < len(s.buf) && s.buf[s.pos] != '\n' && s.buf[s.pos] != '\r' {
				s.pos++
			}
			continue
		}
		return
	}
}

// next returns the following token. Operators come back as opOther with str set;
// names, dictionaries and other non-text operands as opOther with str nil.
func (s *streamScanner) next() (operand, bool) {
	s.skipSpace()
	if s.pos >= len(s.buf) {
		return operand{}, false
	}
	c := s.buf[s.pos]
	switch {
	case c == '(':
		s.pos++
		return operand{kind: opString, str: s.literalString()}, true
	case c == '<' && s.peek(1) == '<':
		s.pos += 2
		return operand{kind: opOther}, true
	case c == '>' && s.peek(1) == '>':
		s.pos += 2
		return operand{kind: opOther}, true
	case c == '<':
		s.pos++
		return operand{kind: opString, str: s.hexString()}, true
	case c == '[':
		if s.depth >= maxArrayDepth {
			s.err = errArrayDepth
			s.pos = len(s.buf)
			return operand{}, false
		}
		s.pos++
		s.depth++
		defer func() { s.depth-- }()
		var arr []operand
		for {
			s.skipSpace()
			if s.pos >= len(s.buf) {
				break
			}
			if s.buf[s.pos] == ']' {
				s.pos++
				break
			}
			el, ok := s.next()
			if !ok {
				break
			}
			arr = append(arr, el)
		}
		return operand{kind: opArray, arr: arr}, true
	case c == '/':
		s.pos++
		s.regular()
		return operand{kind: opOther}, true
	case c == ']' || c == ')' || c == '>' || c == '{' || c == '}':
		s.pos++
		return operand{kind: opOther}, true
	}

	word := s.regular()
	if n, err := strconv.ParseFloat(string(word), 64); err == nil {
		return operand{kind: opNumber, num: n}, true
	}
	return operand{kind: opOther, str: word}, true
}

func (s *streamScanner) peek(off int) byte {
	if s.pos+off < len(s.buf) {
		return s.buf[s.pos+off]
	}
	return 0
}

func (s *streamScanner) regular() []byte {
	start := s.pos
	for s.pos < len(s.buf) && !isPDFWhitespace(s.buf[s.pos]) && !isPDFDelimiter(s.buf[s.pos]) {
		s.pos++
	}
	if s.pos == start && s.pos < len(s.buf) {
		s.pos++
	}
	return s.buf[start:s.pos]
}

func (s *streamScanner) literalString() []byte {
	var out []byte
	depth := 1
	for s.pos < len(s.buf) {
		c := s.buf[s.pos]
		s.pos++
		switch c {
		case '(':
			depth++
			out = append(out, c)
		case ')':
			depth--
			if depth == 0 {
				return out
			}
			out = append(out, c)
		case '\\':
			if s.pos >= len(s.buf) {
				return out
			}
			e := s.buf[s.pos]
			s.pos++
			switch e {
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			case 'b':
				out = append(out, '\b')
			case 'f':
				out = append(out, '\f')
			case '\r':
				if s.pos < len(s.buf) && s.buf[s.pos] == '\n' {
					s.pos++
				}
			case '\n':
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for i := 0; i < 2 && s.pos < len(s.buf) && s.buf[s.pos] >= '0' && s.buf[s.pos] <= '7'; i++ {
						v = v*8 + int(s.buf[s.pos]-'0')
						s.pos++
					}
					out = append(out, byte(v))
				} else {
					out = append(out, e)
				}
			}
		default:
			out = append(out, c)
		}
	}
	return out
}

func (s *streamScanner) hexString() []byte {
	var digits []byte
	for s.pos < len(s.buf) {
		c := s.buf[s.pos]
		s.pos++
		if c == '>' {
			break
		}
		if isPDFWhitespace(c) {
			continue
		}
		digits = append(digits, c)
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(v))
	}
	return out
}

// skipInlineImage jumps past binary inline image data up to the EI operator.
func (s *streamScanner) skipInlineImage() {
	idx := bytes.Index(s.buf[s.pos:], []byte("EI"))
	for idx >= 0 {
		end := s.pos + idx + 2
		before := s.pos + idx - 1
		if (before < 0 || isPDFWhitespace(s.buf[before])) && (end >= len(s.buf) || isPDFWhitespace(s.buf[end])) {
			s.pos = end
			return
		}
		next := bytes.Index(s.buf[end:], []byte("EI"))
		if next < 0 {
			break
		}
		idx = end - s.pos + next
	}
	s.pos = len(s.buf)
}
