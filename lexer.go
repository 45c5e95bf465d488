package toon

import (
	"io"
	"strings"

	"github.com/tdewolff/buffer"
)

// Lexer turns a byte stream into structural single-character tokens,
// value tokens, and the indentation tokens (NEWLINE, INDENT, DEDENT,
// SAME_INDENT) produced by a Python-style indentation state machine.
//
// Character intake is delegated to buffer.Lexer, which does the window
// bookkeeping (Peek/Move/Shift) that a hand-rolled bufio.Reader loop would
// otherwise have to reimplement.
type Lexer struct {
	r   *buffer.Lexer
	cfg config

	line, column int

	indentStack   []int
	currentIndent int

	pending []Token
}

// NewLexer returns a Lexer reading from r.
func NewLexer(r io.Reader, opts ...Option) *Lexer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Lexer{
		r:           buffer.NewLexer(r),
		cfg:         cfg,
		line:        1,
		column:      1,
		indentStack: []int{0},
	}
}

// IndentLevel reports how many indentation levels deep the lexer currently
// believes the input to be, based on the most recently processed line.
func (l *Lexer) IndentLevel() int {
	return len(l.indentStack) - 1
}

func (l *Lexer) errf(kind ErrorKind, format string, args ...any) *CodecError {
	return newError(kind, l.line, l.column, format, args...)
}

func (l *Lexer) cur() byte {
	return l.r.Peek(0)
}

func (l *Lexer) peekAt(n int) byte {
	return l.r.Peek(n)
}

// advance consumes the current character and returns it, updating line and
// column bookkeeping (buffer.Lexer itself tracks only a byte position).
func (l *Lexer) advance() byte {
	c := l.r.Peek(0)
	l.r.Move(1)
	if c == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return c
}

func (l *Lexer) atEOF() bool {
	return l.r.Peek(0) == 0 && l.r.Err() == io.EOF
}

// Next returns the next token in the stream.
func (l *Lexer) Next() (Token, *CodecError) {
	if len(l.pending) > 0 {
		t := l.pending[0]
		l.pending = l.pending[1:]
		return t, nil
	}

	for l.column > 1 && l.cur() == ' ' {
		l.advance()
	}

	if l.atEOF() {
		return l.emitFinalDedents(), nil
	}

	startLine, startCol := l.line, l.column
	c := l.cur()

	switch {
	case c == '\n':
		return l.handleNewline()
	case c == ':':
		l.advance()
		return Token{Type: TokColon, Line: startLine, Column: startCol}, nil
	case c == ',':
		l.advance()
		return Token{Type: TokComma, Line: startLine, Column: startCol}, nil
	case c == '|':
		l.advance()
		return Token{Type: TokPipe, Line: startLine, Column: startCol}, nil
	case c == '[':
		l.advance()
		return Token{Type: TokLBracket, Line: startLine, Column: startCol}, nil
	case c == ']':
		l.advance()
		return Token{Type: TokRBracket, Line: startLine, Column: startCol}, nil
	case c == '{':
		l.advance()
		return Token{Type: TokLBrace, Line: startLine, Column: startCol}, nil
	case c == '}':
		l.advance()
		return Token{Type: TokRBrace, Line: startLine, Column: startCol}, nil
	case c == '\t':
		l.advance()
		return Token{Type: TokHtab, Line: startLine, Column: startCol}, nil
	case c == '-':
		next := l.peekAt(1)
		if next == ' ' || next == '\n' || (next == 0 && l.r.Err() == io.EOF) {
			l.advance()
			return Token{Type: TokHyphen, Line: startLine, Column: startCol}, nil
		}
		return l.scanNumberOrIdentifier(startLine, startCol)
	case c == '"':
		return l.scanQuotedString(startLine, startCol)
	case isDigitByte(c):
		return l.scanNumberOrIdentifier(startLine, startCol)
	case isIdentifierStart(c):
		return l.scanIdentifier(startLine, startCol)
	default:
		return l.scanUnquotedString(startLine, startCol)
	}
}

// handleNewline consumes the '\n' and any indentation that follows,
// enqueuing NEWLINE plus zero or more INDENT/DEDENT tokens (or a single
// SAME_INDENT) into the pending queue, then dequeues and returns the
// first one.
func (l *Lexer) handleNewline() (Token, *CodecError) {
	nlLine, nlCol := l.line, l.column
	l.advance() // consume '\n'

	if l.cur() == '\n' || l.atEOF() {
		l.pending = append(l.pending, Token{Type: TokNewline, Line: nlLine, Column: nlCol})
		return l.dequeue(), nil
	}

	spaces := 0
	for l.cur() == ' ' {
		l.advance()
		spaces++
	}
	for l.cur() == '\t' {
		if !l.cfg.lenient {
			return Token{}, l.errf(ErrIndentation, "tab characters are not allowed in indentation")
		}
		// Lenient mode recovers a tab in indentation by counting it as one
		// column of indentation, the same as a space, instead of leaving it
		// in the stream to be re-lexed as a structural HTAB delimiter.
		l.advance()
		spaces++
	}
	if l.cur() == '\n' || l.atEOF() {
		// Blank or whitespace-only line: no indent change.
		l.pending = append(l.pending, Token{Type: TokNewline, Line: nlLine, Column: nlCol})
		return l.dequeue(), nil
	}

	newIndent := spaces
	if !l.cfg.lenient && l.cfg.indentSize > 0 && newIndent%l.cfg.indentSize != 0 {
		return Token{}, l.errf(ErrIndentation, "indentation of %d spaces is not a multiple of the configured indent size %d", newIndent, l.cfg.indentSize)
	}

	l.pending = append(l.pending, Token{Type: TokNewline, Line: nlLine, Column: nlCol})

	switch {
	case newIndent > l.currentIndent:
		l.indentStack = append(l.indentStack, newIndent)
		l.currentIndent = newIndent
		l.pending = append(l.pending, Token{Type: TokIndent, Line: l.line, Column: l.column})
	case newIndent < l.currentIndent:
		for len(l.indentStack) > 1 && l.indentStack[len(l.indentStack)-1] > newIndent {
			l.indentStack = l.indentStack[:len(l.indentStack)-1]
			l.pending = append(l.pending, Token{Type: TokDedent, Line: l.line, Column: l.column})
		}
		landed := l.indentStack[len(l.indentStack)-1]
		if landed != newIndent {
			if !l.cfg.lenient {
				return Token{}, l.errf(ErrIndentation, "dedent to column %d does not match any enclosing indentation level", newIndent)
			}
			l.indentStack = append(l.indentStack, newIndent)
		}
		l.currentIndent = newIndent
	default:
		l.pending = append(l.pending, Token{Type: TokSameIndent, Line: l.line, Column: l.column})
	}

	return l.dequeue(), nil
}

func (l *Lexer) dequeue() Token {
	t := l.pending[0]
	l.pending = l.pending[1:]
	return t
}

// emitFinalDedents unwinds any remaining indentation levels at EOF,
// queuing a DEDENT per level and finally EOF.
func (l *Lexer) emitFinalDedents() Token {
	if len(l.pending) > 0 {
		return l.dequeue()
	}
	if len(l.indentStack) > 1 {
		l.indentStack = l.indentStack[:len(l.indentStack)-1]
		return Token{Type: TokDedent, Line: l.line, Column: l.column}
	}
	return Token{Type: TokEOF, Line: l.line, Column: l.column}
}

func (l *Lexer) scanQuotedString(startLine, startCol int) (Token, *CodecError) {
	l.advance() // opening quote
	var sb strings.Builder
	for {
		if l.atEOF() {
			return Token{}, l.errf(ErrLexical, "unterminated string literal")
		}
		c := l.cur()
		if c == '"' {
			l.advance()
			return Token{Type: TokString, Value: sb.String(), Line: startLine, Column: startCol}, nil
		}
		if c == '\n' {
			return Token{}, l.errf(ErrLexical, "unterminated string literal")
		}
		if c == '\\' {
			l.advance()
			esc := l.cur()
			switch esc {
			case '\\':
				sb.WriteByte('\\')
				l.advance()
			case '"':
				sb.WriteByte('"')
				l.advance()
			case 'n':
				sb.WriteByte('\n')
				l.advance()
			case 'r':
				sb.WriteByte('\r')
				l.advance()
			case 't':
				sb.WriteByte('\t')
				l.advance()
			default:
				if !l.cfg.lenient {
					return Token{}, l.errf(ErrLexical, "invalid escape sequence '\\%c'", esc)
				}
				sb.WriteByte('\\')
				if !l.atEOF() {
					sb.WriteByte(esc)
					l.advance()
				}
			}
			continue
		}
		sb.WriteByte(c)
		l.advance()
	}
}

// scanNumberOrIdentifier scans a NUMBER token, or reclassifies the run as
// an IDENTIFIER when it starts with a disallowed leading zero (e.g.
// "007"), matching the original lexer's leading-zero handling.
func (l *Lexer) scanNumberOrIdentifier(startLine, startCol int) (Token, *CodecError) {
	var sb strings.Builder

	if l.cur() == '-' {
		sb.WriteByte(l.advance())
	}

	leadingZero := l.cur() == '0'
	digitsBefore := 0
	for isDigitByte(l.cur()) {
		sb.WriteByte(l.advance())
		digitsBefore++
		if sb.Len() > l.cfg.maxNumberLength {
			return Token{}, l.errf(ErrResource, "numeric literal exceeds maximum length of %d", l.cfg.maxNumberLength)
		}
	}

	if digitsBefore == 0 {
		// A '-' not followed by a digit starts an unquoted string.
		for !l.atEOF() && !isStopChar(l.cur()) {
			sb.WriteByte(l.advance())
		}
		return Token{Type: TokIdentifier, Value: sb.String(), Line: startLine, Column: startCol}, nil
	}

	if leadingZero && digitsBefore > 1 {
		// "007" or similar: not a valid number, reclassify as identifier.
		for isIdentifierContinue(l.cur()) {
			sb.WriteByte(l.advance())
		}
		return Token{Type: TokIdentifier, Value: sb.String(), Line: startLine, Column: startCol}, nil
	}

	if l.cur() == '.' && isDigitByte(l.peekAt(1)) {
		sb.WriteByte(l.advance())
		for isDigitByte(l.cur()) {
			sb.WriteByte(l.advance())
		}
	}

	if l.cur() == 'e' || l.cur() == 'E' {
		var exp strings.Builder
		exp.WriteByte(l.advance())
		if l.cur() == '+' || l.cur() == '-' {
			exp.WriteByte(l.advance())
		}
		if isDigitByte(l.cur()) {
			for isDigitByte(l.cur()) {
				exp.WriteByte(l.advance())
			}
			sb.WriteString(exp.String())
		} else {
			// An exponent marker without digits: not a number.
			sb.WriteString(exp.String())
			for isIdentifierContinue(l.cur()) {
				sb.WriteByte(l.advance())
			}
			return Token{Type: TokIdentifier, Value: sb.String(), Line: startLine, Column: startCol}, nil
		}
	}

	return Token{Type: TokNumber, Value: sb.String(), Line: startLine, Column: startCol}, nil
}

func (l *Lexer) scanIdentifier(startLine, startCol int) (Token, *CodecError) {
	var sb strings.Builder
	sb.WriteByte(l.advance())
	for isIdentifierContinue(l.cur()) {
		sb.WriteByte(l.advance())
	}
	word := sb.String()
	switch word {
	case "true", "false":
		return Token{Type: TokBoolean, Value: word, Line: startLine, Column: startCol}, nil
	case "null":
		return Token{Type: TokNull, Value: word, Line: startLine, Column: startCol}, nil
	default:
		return Token{Type: TokIdentifier, Value: word, Line: startLine, Column: startCol}, nil
	}
}

func (l *Lexer) scanUnquotedString(startLine, startCol int) (Token, *CodecError) {
	var sb strings.Builder
	for !l.atEOF() && !isStopChar(l.cur()) {
		sb.WriteByte(l.advance())
	}
	if sb.Len() == 0 {
		return Token{}, l.errf(ErrLexical, "unexpected character %q", string(l.cur()))
	}
	return Token{Type: TokIdentifier, Value: sb.String(), Line: startLine, Column: startCol}, nil
}

func isDigitByte(c byte) bool { return c >= '0' && c <= '9' }

func isIdentifierStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

func isIdentifierContinue(c byte) bool {
	return isIdentifierStart(c) || isDigitByte(c) || c == '.'
}

func isStopChar(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '"', ':', ',', '|', '[', ']', '{', '}':
		return true
	default:
		return false
	}
}
