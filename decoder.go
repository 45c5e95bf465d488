package toon

import "io"

// Decoder is a streaming, pull-based TOON parser: each call to Next
// returns the next Event in the document instead of building a tree up
// front. It keeps two tokens of lookahead and a small context stack that
// tracks which syntactic construct (object, inline array, tabular array
// row, list array) is currently being parsed, matching the dispatch
// structure of a StAX-style streaming parser.
type Decoder struct {
	lex   *Lexer
	stack *parseStack
	cfg   config

	cur, peek Token
	primed    bool

	pendingValue *Token

	// cont, when set, is invoked by the next call to Next instead of
	// dispatching on the context stack. It lets a single syntactic
	// construct (e.g. "field name, then its value") span two Next calls
	// while keeping each parse* method straight-line.
	cont func() (Event, *CodecError)

	// rootDone is set once parseRoot has decided the document's root
	// construct (object, array, or primitive). The context stack always
	// returns to frameRoot once that construct's own frame pops, so this
	// flag is what stops parseRoot from re-deciding the root a second time.
	rootDone bool
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader, opts ...Option) *Decoder {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Decoder{
		lex:   NewLexer(r, opts...),
		stack: newParseStack(cfg.maxNestingDepth),
		cfg:   cfg,
	}
}

func (d *Decoder) prime() *CodecError {
	if d.primed {
		return nil
	}
	var err *CodecError
	d.cur, err = d.lex.Next()
	if err != nil {
		return err
	}
	d.peek, err = d.lex.Next()
	if err != nil {
		return err
	}
	d.primed = true
	return nil
}

func (d *Decoder) advanceTok() *CodecError {
	d.cur = d.peek
	next, err := d.lex.Next()
	if err != nil {
		return err
	}
	d.peek = next
	return nil
}

func (d *Decoder) errf(kind ErrorKind, format string, args ...any) *CodecError {
	return newError(kind, d.cur.Line, d.cur.Column, format, args...)
}

func (d *Decoder) expect(tt TokenType) (Token, *CodecError) {
	if d.cur.Type != tt {
		return Token{}, d.errf(ErrStructural, "expected %s, got %s", tt, d.cur.Type)
	}
	t := d.cur
	if err := d.advanceTok(); err != nil {
		return Token{}, err
	}
	return t, nil
}

// skipIndentation consumes NEWLINE/INDENT/DEDENT/SAME_INDENT tokens that
// carry no semantic payload at the current dispatch point; the level
// change they represent is read back via Lexer.IndentLevel.
func (d *Decoder) skipIndentation() *CodecError {
	for d.cur.Type.IsIndentation() {
		if err := d.advanceTok(); err != nil {
			return err
		}
	}
	return nil
}

// Next returns the next parsing Event.
func (d *Decoder) Next() (Event, *CodecError) {
	if err := d.prime(); err != nil {
		return Eof, err
	}

	if d.cont != nil {
		c := d.cont
		d.cont = nil
		return c()
	}

	switch d.stack.top().kind {
	case frameRoot:
		return d.parseRoot()
	case frameObject, frameListItemObject:
		return d.parseObjectContent()
	case frameArrayInline:
		return d.parseInlineArrayContent()
	case frameArrayTabular:
		return d.parseTabularArrayContent()
	case frameTabularRow:
		return d.parseTabularRowContent()
	case frameArrayList:
		return d.parseListArrayContent()
	default:
		return Eof, d.errf(ErrStructural, "unknown parser context")
	}
}

// Value returns the scalar payload that accompanies the most recently
// returned value event (ValueString, ValueIntegral, ValueFractional) or
// field name (FieldName). Its meaning for other events is undefined.
func (d *Decoder) Value() string {
	if d.pendingValue == nil {
		return ""
	}
	return d.pendingValue.Value
}

// Int64 interprets the payload of a ValueIntegral event.
func (d *Decoder) Int64() int64 { return ParseNumber(d.Value()).Int }

// Float64 interprets the payload of a ValueFractional event.
func (d *Decoder) Float64() float64 { return ParseNumber(d.Value()).Float }

func (d *Decoder) parseRoot() (Event, *CodecError) {
	if d.rootDone {
		// The root construct's own frame has popped back to frameRoot;
		// nothing legitimately dispatches here again except the final Eof.
		// Trailing blank lines are layout only.
		if err := d.skipIndentation(); err != nil {
			return Eof, err
		}
		if d.cur.Type != TokEOF {
			return Eof, d.errf(ErrStructural, "unexpected content after document root, got %s", d.cur.Type)
		}
		return Eof, nil
	}

	if err := d.skipIndentation(); err != nil {
		return Eof, err
	}
	if d.cur.Type == TokEOF {
		// An empty document denotes an empty object, not a bare Eof: push
		// an object frame so the next Next call closes it.
		d.rootDone = true
		if err := d.stack.push(parseFrame{kind: frameObject, expectedIndentLevel: 0}); err != nil {
			return Eof, err
		}
		return StartObject, nil
	}
	if d.cur.Type == TokLBracket {
		d.rootDone = true
		return d.parseArrayHeader()
	}
	// A value followed by the end of input or by a line break is a lone
	// primitive: an object's first line always continues with ':' or '['.
	if d.cur.Type.IsValue() && (d.peek.Type == TokEOF || d.peek.Type == TokNewline) {
		d.rootDone = true
		return d.parsePrimitiveValue()
	}
	d.rootDone = true
	if err := d.stack.push(parseFrame{kind: frameObject, expectedIndentLevel: 0}); err != nil {
		return Eof, err
	}
	return StartObject, nil
}

func (d *Decoder) parseObjectContent() (Event, *CodecError) {
	if err := d.skipIndentation(); err != nil {
		return Eof, err
	}
	f := d.stack.top()
	// A HYPHEN reappearing at or above this object's own starting level can
	// never be a field key; for a list-item object, it marks the next
	// sibling "- " item rather than a continuation field of this one.
	siblingHyphen := f.kind == frameListItemObject && d.cur.Type == TokHyphen && d.lex.IndentLevel() <= f.expectedIndentLevel
	if d.cur.Type == TokEOF || d.lex.IndentLevel() < f.expectedIndentLevel || siblingHyphen {
		d.stack.pop()
		return EndObject, nil
	}
	return d.parseField()
}

// parseField parses one "key: value" or "key[n]: ..." pair, emitting
// FieldName now and deferring the value (or nested StartObject/StartArray)
// to the next Next call via d.cont.
func (d *Decoder) parseField() (Event, *CodecError) {
	if !d.cur.Type.IsValue() {
		return Eof, d.errf(ErrStructural, "expected field name, got %s", d.cur.Type)
	}
	keyTok := d.cur
	if err := d.advanceTok(); err != nil {
		return Eof, err
	}
	d.pendingValue = &keyTok
	d.stack.top().currentKey = keyTok.Value

	if d.cur.Type == TokLBracket {
		d.cont = d.parseArrayHeader
		return FieldName, nil
	}

	if _, err := d.expect(TokColon); err != nil {
		return Eof, err
	}

	if d.cur.Type == TokNewline {
		if err := d.advanceTok(); err != nil {
			return Eof, err
		}
		if d.cur.Type == TokIndent {
			if err := d.advanceTok(); err != nil {
				return Eof, err
			}
			if d.cur.Type == TokLBracket {
				d.cont = d.parseArrayHeader
				return FieldName, nil
			}
			lvl := d.lex.IndentLevel()
			d.cont = func() (Event, *CodecError) {
				if err := d.stack.push(parseFrame{kind: frameObject, expectedIndentLevel: lvl}); err != nil {
					return Eof, err
				}
				return StartObject, nil
			}
			return FieldName, nil
		}
		d.cont = func() (Event, *CodecError) { return ValueNull, nil }
		return FieldName, nil
	}

	d.cont = d.parsePrimitiveValue
	return FieldName, nil
}

// parsePrimitiveValue consumes the current value token and returns the
// matching scalar Event.
func (d *Decoder) parsePrimitiveValue() (Event, *CodecError) {
	t := d.cur
	var ev Event
	switch t.Type {
	case TokString, TokIdentifier:
		ev = ValueString
	case TokNumber:
		if ParseNumber(t.Value).IsFractional {
			ev = ValueFractional
		} else {
			ev = ValueIntegral
		}
	case TokBoolean:
		if t.Value == "true" {
			ev = ValueTrue
		} else {
			ev = ValueFalse
		}
	case TokNull:
		ev = ValueNull
	default:
		return Eof, d.errf(ErrStructural, "expected a value, got %s", t.Type)
	}
	d.pendingValue = &t
	if err := d.advanceTok(); err != nil {
		return Eof, err
	}
	return ev, nil
}

// parseArrayHeader parses "[" NUMBER DelimMarker? "]" FieldList? ":" and
// whatever follows to decide the array's surface (inline, tabular, or
// list), pushing the matching context frame and returning StartArray.
func (d *Decoder) parseArrayHeader() (Event, *CodecError) {
	if _, err := d.expect(TokLBracket); err != nil {
		return Eof, err
	}
	lenTok, err := d.expect(TokNumber)
	if err != nil {
		return Eof, err
	}
	declaredLength := int(ParseNumber(lenTok.Value).Int)

	delim := byte(',')
	switch d.cur.Type {
	case TokHtab:
		delim = '\t'
		if err := d.advanceTok(); err != nil {
			return Eof, err
		}
	case TokPipe:
		delim = '|'
		if err := d.advanceTok(); err != nil {
			return Eof, err
		}
	}

	if _, err := d.expect(TokRBracket); err != nil {
		return Eof, err
	}

	var fieldNames []string
	if d.cur.Type == TokLBrace {
		fieldNames, err = d.parseFieldList()
		if err != nil {
			return Eof, err
		}
	}

	if _, err := d.expect(TokColon); err != nil {
		return Eof, err
	}

	if len(fieldNames) > 0 {
		if d.cur.Type == TokNewline {
			if err := d.advanceTok(); err != nil {
				return Eof, err
			}
		}
		if d.cur.Type == TokIndent {
			if err := d.advanceTok(); err != nil {
				return Eof, err
			}
		}
		if err := d.stack.push(parseFrame{
			kind:                frameArrayTabular,
			declaredLength:      declaredLength,
			fieldNames:          fieldNames,
			delimiter:           delim,
			expectedIndentLevel: d.lex.IndentLevel(),
		}); err != nil {
			return Eof, err
		}
		return StartArray, nil
	}

	if d.cur.Type == TokNewline {
		if err := d.advanceTok(); err != nil {
			return Eof, err
		}
		if d.cur.Type == TokIndent {
			if err := d.advanceTok(); err != nil {
				return Eof, err
			}
			if d.cur.Type != TokHyphen && declaredLength > 0 {
				return Eof, d.errf(ErrStructural, "expected list item, got %s", d.cur.Type)
			}
			if err := d.stack.push(parseFrame{
				kind:                frameArrayList,
				declaredLength:      declaredLength,
				delimiter:           delim,
				expectedIndentLevel: d.lex.IndentLevel(),
			}); err != nil {
				return Eof, err
			}
			return StartArray, nil
		}
		if err := d.stack.push(parseFrame{kind: frameArrayInline, declaredLength: 0, delimiter: delim}); err != nil {
			return Eof, err
		}
		return StartArray, nil
	}

	if err := d.stack.push(parseFrame{kind: frameArrayInline, declaredLength: declaredLength, delimiter: delim}); err != nil {
		return Eof, err
	}
	return StartArray, nil
}

func (d *Decoder) parseFieldList() ([]string, *CodecError) {
	if _, err := d.expect(TokLBrace); err != nil {
		return nil, err
	}
	var names []string
	for {
		if d.cur.Type != TokIdentifier && d.cur.Type != TokString {
			return nil, d.errf(ErrStructural, "expected field name, got %s", d.cur.Type)
		}
		names = append(names, d.cur.Value)
		if err := d.advanceTok(); err != nil {
			return nil, err
		}
		if d.cur.Type == TokRBrace {
			break
		}
		if !d.cur.Type.IsDelimiter() {
			return nil, d.errf(ErrStructural, "expected delimiter in field list, got %s", d.cur.Type)
		}
		if err := d.advanceTok(); err != nil {
			return nil, err
		}
	}
	if _, err := d.expect(TokRBrace); err != nil {
		return nil, err
	}
	return names, nil
}

func (d *Decoder) parseInlineArrayContent() (Event, *CodecError) {
	f := d.stack.top()
	if f.currentIndex >= f.declaredLength {
		if d.cur.Type.IsDelimiter() {
			if !d.cfg.lenient {
				return Eof, d.errf(ErrStructural, "array has more elements than declared length %d", f.declaredLength)
			}
			// Lenient mode tolerates extra elements beyond the declared
			// length: drain them without emitting further events.
			for d.cur.Type.IsDelimiter() {
				if err := d.advanceTok(); err != nil {
					return Eof, err
				}
				if !d.cur.Type.IsValue() {
					break
				}
				if err := d.advanceTok(); err != nil {
					return Eof, err
				}
			}
		}
		if d.cur.Type == TokNewline {
			if err := d.advanceTok(); err != nil {
				return Eof, err
			}
		}
		if d.cur.Type == TokDedent {
			if err := d.advanceTok(); err != nil {
				return Eof, err
			}
		}
		d.stack.pop()
		return EndArray, nil
	}

	f.currentIndex++
	more := f.currentIndex < f.declaredLength
	ev, err := d.parsePrimitiveValue()
	if err != nil {
		return Eof, err
	}
	if more {
		if d.cur.Type.IsDelimiter() {
			if err := d.advanceTok(); err != nil {
				return Eof, err
			}
		} else if d.cfg.lenient {
			// Fewer elements are actually present than declared; count the
			// array as ending here instead of chasing a missing element.
			f.declaredLength = f.currentIndex
		} else {
			return Eof, d.errf(ErrStructural, "array has fewer elements than declared length %d", f.declaredLength)
		}
	}
	return ev, nil
}

func (d *Decoder) parseTabularArrayContent() (Event, *CodecError) {
	if err := d.skipIndentation(); err != nil {
		return Eof, err
	}
	f := d.stack.top()
	if d.cur.Type == TokEOF || d.lex.IndentLevel() < f.expectedIndentLevel || f.currentIndex >= f.declaredLength {
		if f.currentIndex < f.declaredLength && !d.cfg.lenient {
			return Eof, d.errf(ErrStructural, "array has fewer elements than declared length %d", f.declaredLength)
		}
		d.stack.pop()
		return EndArray, nil
	}
	f.currentIndex++
	if err := d.stack.push(parseFrame{kind: frameTabularRow, fieldNames: f.fieldNames, delimiter: f.delimiter}); err != nil {
		return Eof, err
	}
	return StartObject, nil
}

func (d *Decoder) parseTabularRowContent() (Event, *CodecError) {
	r := d.stack.top()
	if r.currentFieldIndex >= len(r.fieldNames) {
		if d.cur.Type.IsDelimiter() {
			if !d.cfg.lenient {
				return Eof, d.errf(ErrStructural, "tabular row has more fields than the declared header")
			}
			// Lenient mode tolerates extra fields beyond the declared
			// header: drain them without emitting further events.
			for d.cur.Type.IsDelimiter() {
				if err := d.advanceTok(); err != nil {
					return Eof, err
				}
				if !d.cur.Type.IsValue() {
					break
				}
				if err := d.advanceTok(); err != nil {
					return Eof, err
				}
			}
		}
		if d.cur.Type == TokNewline {
			if err := d.advanceTok(); err != nil {
				return Eof, err
			}
		}
		d.stack.pop()
		return EndObject, nil
	}

	name := r.fieldNames[r.currentFieldIndex]
	d.pendingValue = &Token{Type: TokString, Value: name}
	d.cont = func() (Event, *CodecError) {
		ev, err := d.parsePrimitiveValue()
		if err != nil {
			return Eof, err
		}
		rr := d.stack.top()
		rr.currentFieldIndex++
		if rr.currentFieldIndex < len(rr.fieldNames) {
			if d.cur.Type.IsDelimiter() {
				if err := d.advanceTok(); err != nil {
					return Eof, err
				}
			}
		}
		return ev, nil
	}
	return FieldName, nil
}

func (d *Decoder) parseListArrayContent() (Event, *CodecError) {
	if err := d.skipIndentation(); err != nil {
		return Eof, err
	}
	f := d.stack.top()
	if d.cur.Type == TokEOF || d.lex.IndentLevel() < f.expectedIndentLevel || f.currentIndex >= f.declaredLength {
		if f.currentIndex < f.declaredLength && !d.cfg.lenient {
			return Eof, d.errf(ErrStructural, "array has fewer elements than declared length %d", f.declaredLength)
		}
		d.stack.pop()
		return EndArray, nil
	}

	if _, err := d.expect(TokHyphen); err != nil {
		return Eof, err
	}

	if d.cur.Type == TokLBracket {
		f.currentIndex++
		return d.parseArrayHeader()
	}

	if d.cur.Type.IsValue() && d.peek.Type == TokColon {
		f.currentIndex++
		lvl := d.lex.IndentLevel()
		if err := d.stack.push(parseFrame{kind: frameListItemObject, expectedIndentLevel: lvl}); err != nil {
			return Eof, err
		}
		return StartObject, nil
	}

	f.currentIndex++
	ev, err := d.parsePrimitiveValue()
	if err != nil {
		return Eof, err
	}
	if d.cur.Type == TokNewline {
		if err := d.advanceTok(); err != nil {
			return Eof, err
		}
	}
	return ev, nil
}
