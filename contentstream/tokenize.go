package contentstream

import (
	"bytes"
	"fmt"
	"strconv"
)

// Parse tokenizes a content stream into operations. It understands the
// operand subset text rewriting needs: numbers, literal strings (with escape
// sequences and balanced parentheses), hex strings, names, and arrays. Any
// bare keyword terminates the pending operands as one operation.
func Parse(data []byte) ([]Operation, error) {
	lx := &lexer{data: data}
	var ops []Operation
	var operands []Operand

	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenEOF:
			if len(operands) > 0 {
				return nil, fmt.Errorf("contentstream: %d dangling operands at end of stream", len(operands))
			}
			return ops, nil
		case tokenKeyword:
			ops = append(ops, Operation{Operands: operands, Operator: tok.keyword})
			operands = nil
		default:
			operand, err := lx.operand(tok)
			if err != nil {
				return nil, err
			}
			operands = append(operands, operand)
		}
	}
}

// Serialize writes operations back into content stream syntax, one operation
// per line. Adjustment values round-trip through their shortest decimal form.
func Serialize(ops []Operation) []byte {
	var buf bytes.Buffer
	for i, op := range ops {
		if i > 0 {
			buf.WriteByte('\n')
		}
		for _, operand := range op.Operands {
			writeOperand(&buf, operand)
			buf.WriteByte(' ')
		}
		buf.WriteString(op.Operator)
	}
	return buf.Bytes()
}

func writeOperand(buf *bytes.Buffer, operand Operand) {
	switch v := operand.(type) {
	case NumberOperand:
		buf.WriteString(formatNumber(v.Value))
	case StringOperand:
		writeLiteralString(buf, v.Value)
	case NameOperand:
		buf.WriteByte('/')
		buf.WriteString(v.Value)
	case ArrayOperand:
		buf.WriteByte('[')
		for i, item := range v.Values {
			if i > 0 {
				buf.WriteByte(' ')
			}
			writeOperand(buf, item)
		}
		buf.WriteByte(']')
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func writeLiteralString(buf *bytes.Buffer, data []byte) {
	buf.WriteByte('(')
	for _, c := range data {
		switch {
		case c == '(' || c == ')' || c == '\\':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case c == '\n':
			buf.WriteString(`\n`)
		case c == '\r':
			buf.WriteString(`\r`)
		case c == '\t':
			buf.WriteString(`\t`)
		case c < 0x20 || c > 0x7e:
			fmt.Fprintf(buf, `\%03o`, c)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(')')
}

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenKeyword
	tokenNumber
	tokenString
	tokenName
	tokenArrayStart
	tokenArrayEnd
)

type token struct {
	kind    tokenKind
	keyword string
	str     []byte
	num     float64
}

type lexer struct {
	data []byte
	pos  int
}

func (lx *lexer) operand(tok token) (Operand, error) {
	switch tok.kind {
	case tokenNumber:
		return NumberOperand{Value: tok.num}, nil
	case tokenString:
		return StringOperand{Value: tok.str}, nil
	case tokenName:
		return NameOperand{Value: tok.keyword}, nil
	case tokenArrayStart:
		return lx.array()
	case tokenArrayEnd:
		return nil, fmt.Errorf("contentstream: unexpected ']' at offset %d", lx.pos)
	}
	return nil, fmt.Errorf("contentstream: unexpected token at offset %d", lx.pos)
}

func (lx *lexer) array() (Operand, error) {
	var values []Operand
	for {
		tok, err := lx.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokenArrayEnd:
			return ArrayOperand{Values: values}, nil
		case tokenEOF:
			return nil, fmt.Errorf("contentstream: unterminated array")
		case tokenKeyword:
			return nil, fmt.Errorf("contentstream: keyword %q inside array", tok.keyword)
		default:
			item, err := lx.operand(tok)
			if err != nil {
				return nil, err
			}
			values = append(values, item)
		}
	}
}

func (lx *lexer) next() (token, error) {
	lx.skipSpace()
	if lx.pos >= len(lx.data) {
		return token{kind: tokenEOF}, nil
	}
	c := lx.data[lx.pos]
	switch {
	case c == '[':
		lx.pos++
		return token{kind: tokenArrayStart}, nil
	case c == ']':
		lx.pos++
		return token{kind: tokenArrayEnd}, nil
	case c == '(':
		return lx.literalString()
	case c == '<':
		return lx.hexString()
	case c == '/':
		return lx.name()
	case isNumberStart(c):
		return lx.number()
	default:
		return lx.keyword()
	}
}

func (lx *lexer) skipSpace() {
	for lx.pos < len(lx.data) {
		c := lx.data[lx.pos]
		if isSpace(c) {
			lx.pos++
			continue
		}
		if c == '%' { // comment runs to end of line
			for lx.pos < len(lx.data) && lx.data[lx.pos] != '\n' && lx.data[lx.pos] != '\r' {
				lx.pos++
			}
			continue
		}
		return
	}
}

func (lx *lexer) literalString() (token, error) {
	lx.pos++ // consume '('
	var out bytes.Buffer
	depth := 1
	for lx.pos < len(lx.data) {
		c := lx.data[lx.pos]
		switch c {
		case '\\':
			lx.pos++
			if lx.pos >= len(lx.data) {
				return token{}, fmt.Errorf("contentstream: dangling escape in string")
			}
			lx.escape(&out)
		case '(':
			depth++
			out.WriteByte(c)
			lx.pos++
		case ')':
			depth--
			lx.pos++
			if depth == 0 {
				return token{kind: tokenString, str: out.Bytes()}, nil
			}
			out.WriteByte(c)
		default:
			out.WriteByte(c)
			lx.pos++
		}
	}
	return token{}, fmt.Errorf("contentstream: unterminated literal string")
}

func (lx *lexer) escape(out *bytes.Buffer) {
	c := lx.data[lx.pos]
	switch c {
	case 'n':
		out.WriteByte('\n')
	case 'r':
		out.WriteByte('\r')
	case 't':
		out.WriteByte('\t')
	case 'b':
		out.WriteByte('\b')
	case 'f':
		out.WriteByte('\f')
	case '\n', '\r':
		// line continuation contributes nothing; swallow CRLF pairs
		if c == '\r' && lx.pos+1 < len(lx.data) && lx.data[lx.pos+1] == '\n' {
			lx.pos++
		}
	default:
		if c >= '0' && c <= '7' {
			val := 0
			n := 0
			for n < 3 && lx.pos < len(lx.data) {
				d := lx.data[lx.pos]
				if d < '0' || d > '7' {
					break
				}
				val = val*8 + int(d-'0')
				lx.pos++
				n++
			}
			out.WriteByte(byte(val))
			return
		}
		out.WriteByte(c)
	}
	lx.pos++
}

func (lx *lexer) hexString() (token, error) {
	lx.pos++ // consume '<'
	var out bytes.Buffer
	var hi byte
	have := false
	for lx.pos < len(lx.data) {
		c := lx.data[lx.pos]
		lx.pos++
		if c == '>' {
			if have { // odd digit count: trailing zero implied
				out.WriteByte(hi << 4)
			}
			return token{kind: tokenString, str: out.Bytes()}, nil
		}
		if isSpace(c) {
			continue
		}
		v, ok := fromHex(c)
		if !ok {
			return token{}, fmt.Errorf("contentstream: bad hex digit %q", c)
		}
		if have {
			out.WriteByte(hi<<4 | v)
			have = false
		} else {
			hi = v
			have = true
		}
	}
	return token{}, fmt.Errorf("contentstream: unterminated hex string")
}

func (lx *lexer) name() (token, error) {
	lx.pos++ // consume '/'
	start := lx.pos
	for lx.pos < len(lx.data) && isRegular(lx.data[lx.pos]) {
		lx.pos++
	}
	return token{kind: tokenName, keyword: string(lx.data[start:lx.pos])}, nil
}

func (lx *lexer) number() (token, error) {
	start := lx.pos
	lx.pos++
	for lx.pos < len(lx.data) {
		c := lx.data[lx.pos]
		if (c >= '0' && c <= '9') || c == '.' {
			lx.pos++
			continue
		}
		break
	}
	v, err := strconv.ParseFloat(string(lx.data[start:lx.pos]), 64)
	if err != nil {
		return token{}, fmt.Errorf("contentstream: bad number at offset %d: %w", start, err)
	}
	return token{kind: tokenNumber, num: v}, nil
}

func (lx *lexer) keyword() (token, error) {
	start := lx.pos
	for lx.pos < len(lx.data) && isRegular(lx.data[lx.pos]) {
		lx.pos++
	}
	if lx.pos == start { // lone delimiter we do not model; skip it as a keyword
		lx.pos++
	}
	return token{kind: tokenKeyword, keyword: string(lx.data[start:lx.pos])}, nil
}

func isSpace(c byte) bool {
	switch c {
	case 0x00, 0x09, 0x0a, 0x0c, 0x0d, 0x20:
		return true
	}
	return false
}

func isNumberStart(c byte) bool {
	return (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.'
}

func isRegular(c byte) bool {
	if isSpace(c) {
		return false
	}
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return false
	}
	return true
}

func fromHex(c byte) (byte, bool) {
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
