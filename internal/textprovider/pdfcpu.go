package textprovider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// pdfcpuText reads text-showing operators straight from page content streams.
// It only handles simple fonts; CID-encoded text comes out empty and the
// document falls through to the failure path.
type pdfcpuText struct{}

func (pdfcpuText) Name() string { return MethodPDFCPU }

func (pdfcpuText) Extract(ctx context.Context, path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	pdfCtx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return Result{}, fmt.Errorf("pdfcpu read: %w", err)
	}

	pages := make([]string, 0, pdfCtx.PageCount)
	for pageNr := 1; pageNr <= pdfCtx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNr)
		if err != nil || r == nil {
			pages = append(pages, "")
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, textFromContent(data))
	}
	return Result{Text: strings.Join(pages, "\f"), Pages: pdfCtx.PageCount, Method: MethodPDFCPU}, nil
}

type tokKind int

const (
	tokNumber tokKind = iota
	tokString
	tokArray
	tokName
	tokOperator
	tokOther
)

type token struct {
	kind  tokKind
	text  string
	items []token
}

// textFromContent interprets the text operators of a content stream. Vertical
// moves and text-object ends become line breaks.
func textFromContent(data []byte) string {
	var sb strings.Builder
	newline := func() {
		s := sb.String()
		if len(s) > 0 && !strings.HasSuffix(s, "\n") {
			sb.WriteByte('\n')
		}
	}
	space := func() {
		s := sb.String()
		if len(s) > 0 && !strings.HasSuffix(s, " ") && !strings.HasSuffix(s, "\n") {
			sb.WriteByte(' ')
		}
	}

	lx := &lexer{data: data}
	var operands []token
	for {
		tok, ok := lx.next()
		if !ok {
			break
		}
		if tok.kind != tokOperator {
			operands = append(operands, tok)
			continue
		}
		switch tok.text {
		case "Tj":
			writeStrings(&sb, operands)
		case "'", "\"":
			newline()
			writeStrings(&sb, operands)
		case "TJ":
			for _, op := range operands {
				if op.kind != tokArray {
					continue
				}
				for _, it := range op.items {
					switch it.kind {
					case tokString:
						sb.WriteString(it.text)
					case tokNumber:
						// large negative kerning is a word gap
						if n, err := strconv.ParseFloat(it.text, 64); err == nil && n < -200 {
							space()
						}
					}
				}
			}
		case "Td", "TD":
			if len(operands) >= 2 && nonZero(operands[len(operands)-1]) {
				newline()
			} else {
				space()
			}
		case "T*", "ET", "Tm":
			newline()
		case "ID":
			lx.skipInlineImage()
		}
		operands = operands[:0]
	}
	return strings.TrimSpace(sb.String())
}

func nonZero(t token) bool {
	n, err := strconv.ParseFloat(t.text, 64)
	return err == nil && n != 0
}

func writeStrings(sb *strings.Builder, operands []token) {
	for _, op := range operands {
		if op.kind == tokString {
			sb.WriteString(op.text)
		}
	}
}

type lexer struct {
	data []byte
	pos  int
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\n', '\r', '\t', '\f', 0:
		return true
	}
	return false
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.data) {
		c := l.data[l.pos]
		if isSpace(c) {
			l.pos++
			continue
		}
		if c == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

func (l *lexer) next() (token, bool) {
	l.skipSpace()
	if l.pos >= len(l.data) {
		return token{}, false
	}
	c := l.data[l.pos]
	switch {
	case c == '(':
		return token{kind: tokString, text: decodePDFString(l.readLiteral())}, true
	case c == '<' && l.pos+1 < len(l.data) && l.data[l.pos+1] == '<':
		l.skipDict()
		return token{kind: tokOther}, true
	case c == '<':
		return token{kind: tokString, text: l.readHex()}, true
	case c == '[':
		l.pos++
		arr := token{kind: tokArray}
		for {
			l.skipSpace()
			if l.pos >= len(l.data) {
				return arr, true
			}
			if l.data[l.pos] == ']' {
				l.pos++
				return arr, true
			}
			it, ok := l.next()
			if !ok {
				return arr, true
			}
			arr.items = append(arr.items, it)
		}
	case c == '/':
		start := l.pos
		l.pos++
		for l.pos < len(l.data) && !isSpace(l.data[l.pos]) && !isDelim(l.data[l.pos]) {
			l.pos++
		}
		return token{kind: tokName, text: string(l.data[start:l.pos])}, true
	case isDelim(c):
		l.pos++
		return token{kind: tokOther, text: string(c)}, true
	}

	start := l.pos
	for l.pos < len(l.data) && !isSpace(l.data[l.pos]) && !isDelim(l.data[l.pos]) {
		l.pos++
	}
	word := string(l.data[start:l.pos])
	if _, err := strconv.ParseFloat(word, 64); err == nil {
		return token{kind: tokNumber, text: word}, true
	}
	return token{kind: tokOperator, text: word}, true
}

// readLiteral returns the raw bytes of a balanced (...) string.
func (l *lexer) readLiteral() []byte {
	l.pos++ // (
	depth := 1
	start := l.pos
	for l.pos < len(l.data) {
		switch l.data[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				raw := l.data[start:l.pos]
				l.pos++
				return raw
			}
		}
		l.pos++
	}
	l.pos = len(l.data)
	return l.data[start:]
}

// readHex decodes <48656C6C6F>; only printable single-byte text is kept.
func (l *lexer) readHex() string {
	l.pos++ // <
	end := bytes.IndexByte(l.data[l.pos:], '>')
	if end < 0 {
		l.pos = len(l.data)
		return ""
	}
	digits := bytes.Map(func(r rune) rune {
		if isSpace(byte(r)) {
			return -1
		}
		return r
	}, l.data[l.pos:l.pos+end])
	l.pos += end + 1
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(string(digits[i:i+2]), 16, 8)
		if err != nil {
			return ""
		}
		if v < 0x20 || v > 0x7e {
			return ""
		}
		out = append(out, byte(v))
	}
	return string(out)
}

func (l *lexer) skipDict() {
	depth := 0
	for l.pos+1 < len(l.data) {
		switch {
		case l.data[l.pos] == '<' && l.data[l.pos+1] == '<':
			depth++
			l.pos += 2
		case l.data[l.pos] == '>' && l.data[l.pos+1] == '>':
			depth--
			l.pos += 2
			if depth == 0 {
				return
			}
		default:
			l.pos++
		}
	}
	l.pos = len(l.data)
}

// skipInlineImage jumps past binary inline image data up to the EI operator.
func (l *lexer) skipInlineImage() {
	for i := l.pos; i+1 < len(l.data); i++ {
		if l.data[i] != 'E' || l.data[i+1] != 'I' {
			continue
		}
		if (i == 0 || isSpace(l.data[i-1])) && (i+2 >= len(l.data) || isSpace(l.data[i+2])) {
			l.pos = i + 2
			return
		}
	}
	l.pos = len(l.data)
}

// decodePDFString handles basic PDF escape sequences.
func decodePDFString(raw []byte) string {
	var sb strings.Builder
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++
		switch raw[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'b', 'f':
		case '\\', '(', ')':
			sb.WriteByte(raw[i])
		case '\n':
			// line continuation
		default:
			if raw[i] >= '0' && raw[i] <= '7' {
				val := int(raw[i] - '0')
				for k := 0; k < 2 && i+1 < len(raw) && raw[i+1] >= '0' && raw[i+1] <= '7'; k++ {
					i++
					val = val*8 + int(raw[i]-'0')
				}
				sb.WriteByte(byte(val))
			} else {
				sb.WriteByte(raw[i])
			}
		}
	}
	return sb.String()
}
