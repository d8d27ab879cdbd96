// Package lexer tokenises one source line at a time on demand, per
// spec.md §4.1. A Lexer is cheap to re-point at a new line; it carries
// no state across lines except the diagnostic sink and error count.
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xyproto/bas/diag"
	"github.com/xyproto/bas/token"
)

// MaxLexeme is the longest identifier, number or string lexeme before
// the lexer reports it fatal, per spec.md §4.1.
const MaxLexeme = 128

// Value carries the semantic payload of NUM, LABEL/STR and REG*/SREG
// tokens.
type Value struct {
	Num    int64
	Str    string // identifier text, or string-literal content (without quotes)
	RegNo  int
}

// Lexer scans a single source line.
type Lexer struct {
	Loc   diag.Loc
	Sink  *diag.Sink
	text  string
	pos   int
	tokPos int

	Tok Kind
	Val Value

	errors int
}

// Kind aliases token.Kind for lexer-local readability.
type Kind = token.Kind

// New creates a Lexer bound to one diagnostic sink.
func New(sink *diag.Sink) *Lexer {
	return &Lexer{Sink: sink}
}

// Begin points the lexer at a new line and scans its first token.
func (l *Lexer) Begin(file string, lineno int, text string) {
	l.Loc = diag.Loc{File: file, Line: lineno}
	l.text = text
	l.pos = 0
	l.errors = 0
	l.Next()
}

// Pos returns the current cursor offset into the line.
func (l *Lexer) Pos() int { return l.pos }

// TokenPos returns the offset of the start of the current token, used
// for caret diagnostics and for resuming a line at an injected offset.
func (l *Lexer) TokenPos() int { return l.tokPos }

// SetPos repositions the cursor (used when re-parsing an operand list
// from a remembered start position) and rescans.
func (l *Lexer) SetPos(pos int) {
	l.pos = pos
	l.Next()
}

// Text returns the full line text being scanned.
func (l *Lexer) Text() string { return l.text }

// Errors reports the number of recoverable lexer errors on this line.
func (l *Lexer) Errors() int { return l.errors }

// DiscardLine force-advances to end-of-line, used to suppress cascading
// diagnostics after an unrecoverable line-level error (spec.md §4.1).
func (l *Lexer) DiscardLine() {
	l.pos = len(l.text)
	l.Tok = token.EOL
}

func (l *Lexer) errorf(format string, args ...interface{}) {
	l.errors++
	if l.Sink != nil {
		loc := l.Loc
		loc.Col = l.tokPos + 1
		l.Sink.ErrorCaret(loc, l.text, format, args...)
	}
}

func (l *Lexer) fatalf(format string, args ...interface{}) {
	diag.Fatal("%s: %d: "+format, append([]interface{}{l.Loc.File, l.Loc.Line}, args...)...)
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '@' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentCont(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Next scans and returns the next token, also storing it in l.Tok/l.Val.
func (l *Lexer) Next() Kind {
	text := l.text
	for l.pos < len(text) && (text[l.pos] == ' ' || text[l.pos] == '\t') {
		l.pos++
	}
	l.tokPos = l.pos

	if l.pos >= len(text) {
		l.Tok = token.EOL
		return l.Tok
	}
	c := text[l.pos]
	if c == '\x00' || c == '\n' || c == ';' {
		l.Tok = token.EOL
		return l.Tok
	}

	if isIdentStart(c) {
		start := l.pos
		l.pos++
		for l.pos < len(text) && isIdentCont(text[l.pos]) {
			l.pos++
			if l.pos-start > MaxLexeme {
				l.fatalf("identifier too long: %s...", text[start:start+MaxLexeme])
			}
		}
		name := text[start:l.pos]
		if k, regno, ok := token.LookupRegister(name); ok {
			l.Tok = k
			l.Val = Value{RegNo: regno, Str: name}
			return l.Tok
		}
		if k, ok := token.Lookup(name); ok {
			l.Tok = k
			l.Val = Value{Str: name}
			return l.Tok
		}
		l.Tok = token.LABEL
		l.Val = Value{Str: name}
		return l.Tok
	}

	if c == '$' {
		l.pos++
		l.Tok = token.LABEL
		l.Val = Value{Str: "$"}
		return l.Tok
	}

	if c >= '0' && c <= '9' {
		return l.readNumber()
	}

	if c == '\'' || c == '"' {
		return l.readString(c)
	}

	switch c {
	case ':':
		l.pos++
		l.Tok = token.COLON
	case '+':
		l.pos++
		l.Tok = token.PLUS
	case '-':
		l.pos++
		l.Tok = token.MINUS
	case '*':
		l.pos++
		l.Tok = token.STAR
	case '/':
		l.pos++
		l.Tok = token.SLASH
	case ',':
		l.pos++
		l.Tok = token.COMMA
	case '(':
		l.pos++
		l.Tok = token.LPAREN
	case ')':
		l.pos++
		l.Tok = token.RPAREN
	case '[':
		l.pos++
		l.Tok = token.LBRACKET
	case ']':
		l.pos++
		l.Tok = token.RBRACKET
	case '?':
		l.pos++
		l.Tok = token.QUESTION
	case '=':
		l.pos++
		l.Tok = token.EQUALS
	default:
		l.fatalf("invalid token prefix: '%c'", c)
	}
	return l.Tok
}

// readNumber scans a C-style integer literal: 0x/0b/0o prefixes, a
// trailing 'h' for hex, and '_' digit separators, per spec.md §4.1.
// 'b' is itself a valid hex digit, so "0b..." is lexed as a run of hex
// digits first and only resolved to base 2 if no trailing 'h' follows —
// matching the reference lexer's ambiguity resolution in lexer.c.
func (l *Lexer) readNumber() Kind {
	text := l.text

	if text[l.pos] == '0' && l.pos+1 < len(text) {
		switch text[l.pos+1] {
		case 'x', 'X':
			l.pos += 2
			digits := l.scanDigits(isHexDigit)
			l.setNum(digits, 16)
			l.Tok = token.NUM
			return l.Tok
		case 'o', 'O':
			l.pos += 2
			digits := l.scanDigits(isHexDigit)
			l.setNum(digits, 8)
			l.Tok = token.NUM
			return l.Tok
		}
	}

	first := text[l.pos]
	l.pos++ // consume the leading digit (may be the '0' of "0b..." or any decimal digit)
	digits := string(first) + l.scanDigits(isHexDigit)
	if l.pos < len(text) && (text[l.pos] == 'h' || text[l.pos] == 'H') {
		l.pos++
		l.setNum(digits, 16)
	} else if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'b' || digits[1] == 'B') {
		l.setNum(digits[2:], 2)
	} else {
		l.setNum(digits, 10)
	}
	l.Tok = token.NUM
	return l.Tok
}

func (l *Lexer) scanDigits(pred func(byte) bool) string {
	var b strings.Builder
	text := l.text
	for l.pos < len(text) && (pred(text[l.pos]) || text[l.pos] == '_') {
		if text[l.pos] != '_' {
			b.WriteByte(text[l.pos])
		}
		l.pos++
	}
	return b.String()
}

func (l *Lexer) setNum(digits string, base int) {
	if digits == "" {
		l.errorf("invalid number")
		l.Val = Value{Num: 0}
		return
	}
	n, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		l.errorf("number out of range: %s", digits)
		n = 0
	}
	l.Val = Value{Num: int64(n)}
}

func (l *Lexer) readString(delim byte) Kind {
	text := l.text
	l.pos++
	start := l.pos
	for l.pos < len(text) && text[l.pos] != delim && text[l.pos] != '\n' {
		l.pos++
		if l.pos-start > MaxLexeme {
			l.fatalf("string too long: %s...", text[start:start+MaxLexeme])
		}
	}
	if l.pos >= len(text) || text[l.pos] != delim {
		l.fatalf("unterminated string: %s...", text[start:l.pos])
	}
	content := text[start:l.pos]
	l.pos++
	l.Tok = token.STR
	l.Val = Value{Str: content}
	return l.Tok
}

// String renders the current token for debugging/error messages.
func (l *Lexer) String() string {
	switch l.Tok {
	case token.LABEL:
		return fmt.Sprintf("label %q", l.Val.Str)
	case token.NUM:
		return fmt.Sprintf("number %d", l.Val.Num)
	case token.STR:
		return fmt.Sprintf("string %q", l.Val.Str)
	default:
		return token.Name(l.Tok)
	}
}
