package toon

import (
	"io"
	"regexp"
	"strings"
)

// Encoder writes TOON output from a stream of Emit* calls, the generator
// half of the codec's event vocabulary. It mirrors Decoder's pull-based
// design: each Emit* call advances a small context stack exactly as the
// corresponding parser event would have produced it.
//
// Arrays given an upfront size hint (EmitStartArray with sizeHint >= 0)
// are written in streaming mode: the surface syntax is locked in by the
// first element (an object locks in list form, a primitive locks in
// inline form) and each element is written immediately. Arrays given a
// negative size hint are buffered until EmitEndArray, which then picks
// inline form for an all-primitive array of at most ten elements, and
// list form otherwise.
type Encoder struct {
	w     io.Writer
	cfg   config
	stack *genStack
	err   *CodecError
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Encoder{
		w:     w,
		cfg:   cfg,
		stack: newGenStack(cfg.maxNestingDepth),
	}
}

// Err returns the first error encountered by any Emit* call. Once set,
// all further Emit* calls are no-ops that return the same error.
func (e *Encoder) Err() *CodecError { return e.err }

func (e *Encoder) fail(err *CodecError) *CodecError {
	if e.err == nil {
		e.err = err
	}
	return e.err
}

func (e *Encoder) write(s string) {
	if e.err != nil {
		return
	}
	if _, ioErr := io.WriteString(e.w, s); ioErr != nil {
		e.err = newError(ErrStructural, 0, 0, "write failed: %s", ioErr)
	}
}

func (e *Encoder) writeIndent(level int) {
	if level > 0 {
		e.write(strings.Repeat(" ", level*e.cfg.indentSize))
	}
}

func delimString(d byte) string {
	return string(d)
}

// EmitFieldName records the key for the value that the next Emit* call
// (EmitStartObject, EmitStartArray, or a scalar) will write.
func (e *Encoder) EmitFieldName(name string) *CodecError {
	if e.err != nil {
		return e.err
	}
	top := e.stack.top()
	switch top.kind {
	case frameObject, frameListItemObject, frameTabularRow:
		top.pendingFieldName = name
		top.hasPendingField = true
		return nil
	default:
		return e.fail(newError(ErrStructural, 0, 0, "FieldName outside an object"))
	}
}

// EmitStartObject begins an object, either as the root value, a field's
// value, or an array element.
func (e *Encoder) EmitStartObject() *CodecError {
	if e.err != nil {
		return e.err
	}
	top := e.stack.top()
	switch top.kind {
	case frameRoot:
		return e.fail(e.stack.push(genFrame{kind: frameObject, declaredSize: -1, indentLevel: 0}))

	case frameArray:
		if top.tabular {
			e.writeIndent(top.indentLevel + 1)
			top.elementCount++
			return e.fail(e.stack.push(genFrame{kind: frameTabularRow, fieldNames: top.fieldNames, delimiter: top.delimiter, declaredSize: -1}))
		}
		if top.isStreaming() {
			if !top.headerWritten {
				e.writeStreamingArrayHeader(top, true)
			} else if !top.listFormat {
				return e.fail(newError(ErrStructural, 0, 0, "object element in an array already written in inline form"))
			}
			e.writeIndent(top.indentLevel + 1)
			e.write("- ")
			top.elementCount++
			return e.fail(e.stack.push(genFrame{kind: frameListItemObject, declaredSize: -1, indentLevel: top.indentLevel + 2}))
		}
		obj := newBufferedObj()
		top.bufferedElements = append(top.bufferedElements, obj)
		return e.fail(e.stack.push(genFrame{kind: frameObject, declaredSize: -1, bufferedObject: obj}))

	case frameObject, frameListItemObject:
		if !top.hasPendingField {
			return e.fail(newError(ErrStructural, 0, 0, "StartObject without a preceding FieldName"))
		}
		name := top.pendingFieldName
		top.hasPendingField = false
		top.fieldCount++
		if top.bufferedObject != nil {
			child := newBufferedObj()
			top.bufferedObject.set(name, child)
			return e.fail(e.stack.push(genFrame{kind: frameObject, declaredSize: -1, bufferedObject: child}))
		}
		e.writeIndent(top.indentLevel)
		e.write(quoteIfNeeded(name, ','))
		e.write(":\n")
		return e.fail(e.stack.push(genFrame{kind: frameObject, declaredSize: -1, indentLevel: top.indentLevel + 1}))

	default:
		return e.fail(newError(ErrStructural, 0, 0, "unexpected StartObject"))
	}
}

// EmitEndObject closes the most recently opened object.
func (e *Encoder) EmitEndObject() *CodecError {
	if e.err != nil {
		return e.err
	}
	top := e.stack.top()
	switch top.kind {
	case frameObject, frameListItemObject:
		e.stack.pop()
		return nil
	case frameTabularRow:
		e.stack.pop()
		e.write("\n")
		return e.err
	default:
		return e.fail(newError(ErrStructural, 0, 0, "EndObject without a matching StartObject"))
	}
}

// EmitStartArrayDelim begins an array with the given delimiter. sizeHint >= 0
// puts the array in streaming mode; a negative sizeHint buffers elements
// until EmitEndArray decides the format.
func (e *Encoder) EmitStartArrayDelim(sizeHint int, delim byte) *CodecError {
	if e.err != nil {
		return e.err
	}
	top := e.stack.top()
	switch top.kind {
	case frameRoot:
		return e.fail(e.stack.push(genFrame{kind: frameArray, declaredSize: sizeHint, delimiter: delim, indentLevel: 0}))
	case frameObject, frameListItemObject:
		if top.bufferedObject != nil {
			return e.fail(newError(ErrStructural, 0, 0, "arrays nested inside a buffered array element are not supported; pass a size hint to use streaming mode"))
		}
		if !top.hasPendingField {
			return e.fail(newError(ErrStructural, 0, 0, "StartArray without a preceding FieldName"))
		}
		key := top.pendingFieldName
		top.hasPendingField = false
		top.fieldCount++
		return e.fail(e.stack.push(genFrame{
			kind: frameArray, declaredSize: sizeHint, delimiter: delim,
			indentLevel: top.indentLevel, headerFieldName: key, hasHeaderFieldName: true,
		}))
	case frameArray, frameTabularRow:
		return e.fail(newError(ErrStructural, 0, 0, "arrays of arrays are not supported"))
	default:
		return e.fail(newError(ErrStructural, 0, 0, "unexpected StartArray"))
	}
}

// EmitStartArray is EmitStartArrayDelim with the default ',' delimiter.
func (e *Encoder) EmitStartArray(sizeHint int) *CodecError {
	return e.EmitStartArrayDelim(sizeHint, ',')
}

// EmitStartArrayTabular begins a tabular array: fields is the declared
// column list, written eagerly since tabular form commits to its header
// before any row is known. Each element must be supplied as an object via
// EmitStartObject/EmitFieldName/EmitEndObject, with fields written in the
// order given here.
func (e *Encoder) EmitStartArrayTabular(sizeHint int, fields []string, delim byte) *CodecError {
	if e.err != nil {
		return e.err
	}
	top := e.stack.top()
	var f genFrame
	switch top.kind {
	case frameRoot:
		f = genFrame{kind: frameArray, declaredSize: sizeHint, delimiter: delim, indentLevel: 0}
	case frameObject, frameListItemObject:
		if !top.hasPendingField {
			return e.fail(newError(ErrStructural, 0, 0, "StartArray without a preceding FieldName"))
		}
		key := top.pendingFieldName
		top.hasPendingField = false
		top.fieldCount++
		f = genFrame{kind: frameArray, declaredSize: sizeHint, delimiter: delim, indentLevel: top.indentLevel, headerFieldName: key, hasHeaderFieldName: true}
	default:
		return e.fail(newError(ErrStructural, 0, 0, "unexpected StartArray"))
	}
	f.tabular = true
	f.fieldNames = fields
	e.writeTabularHeader(&f)
	return e.fail(e.stack.push(f))
}

// EmitEndArray closes the most recently opened array, flushing buffered
// elements if the array was not in streaming mode.
func (e *Encoder) EmitEndArray() *CodecError {
	if e.err != nil {
		return e.err
	}
	top := e.stack.top()
	if top.kind != frameArray {
		return e.fail(newError(ErrStructural, 0, 0, "EndArray without a matching StartArray"))
	}
	f := e.stack.pop()

	if f.tabular {
		return e.err
	}

	if f.isStreaming() {
		if !f.headerWritten {
			e.writeStreamingArrayHeader(&f, false)
		}
		if !f.listFormat {
			e.write("\n")
		}
		return e.err
	}

	e.flushBufferedArray(&f)
	return e.err
}

// writeStreamingArrayHeader writes "key[N]" (optionally "{delim}") and
// then either ": " (inline form, objectFirst false) or ":\n" (list form,
// objectFirst true), locking in f.listFormat.
func (e *Encoder) writeStreamingArrayHeader(f *genFrame, objectFirst bool) {
	e.writeIndent(f.indentLevel)
	if f.hasHeaderFieldName {
		e.write(quoteIfNeeded(f.headerFieldName, ','))
	}
	e.write("[")
	e.write(FormatIntegral(int64(f.declaredSize)))
	e.write("]")
	if f.delimiter != 0 && f.delimiter != ',' {
		e.write("{")
		e.write(delimString(f.delimiter))
		e.write("}")
	}
	if objectFirst {
		e.write(":\n")
		f.listFormat = true
	} else {
		e.write(": ")
		f.listFormat = false
	}
	f.headerWritten = true
}

func (e *Encoder) writeTabularHeader(f *genFrame) {
	e.writeIndent(f.indentLevel)
	if f.hasHeaderFieldName {
		e.write(quoteIfNeeded(f.headerFieldName, ','))
	}
	e.write("[")
	e.write(FormatIntegral(int64(f.declaredSize)))
	e.write("]")
	if f.delimiter != 0 && f.delimiter != ',' {
		e.write("{")
		e.write(delimString(f.delimiter))
		e.write("}")
	}
	e.write("{")
	for i, name := range f.fieldNames {
		if i > 0 {
			e.write(delimString(f.delimiter))
		}
		e.write(quoteIfNeeded(name, f.delimiter))
	}
	e.write("}:\n")
	f.headerWritten = true
	f.listFormat = true
}

// flushBufferedArray decides inline vs list form for a buffering-mode
// array and writes it out in one shot. Tabular auto-detection is not
// attempted in buffering mode; see DESIGN.md.
func (e *Encoder) flushBufferedArray(f *genFrame) {
	allPrimitive := true
	for _, el := range f.bufferedElements {
		if _, ok := el.(*bufferedObj); ok {
			allPrimitive = false
			break
		}
	}

	e.writeIndent(f.indentLevel)
	if f.hasHeaderFieldName {
		e.write(quoteIfNeeded(f.headerFieldName, ','))
	}
	e.write("[")
	e.write(FormatIntegral(int64(len(f.bufferedElements))))
	e.write("]")
	if f.delimiter != 0 && f.delimiter != ',' {
		e.write("{")
		e.write(delimString(f.delimiter))
		e.write("}")
	}

	if allPrimitive && len(f.bufferedElements) <= 10 {
		e.write(": ")
		for i, el := range f.bufferedElements {
			if i > 0 {
				e.write(delimString(f.delimiter))
			}
			e.write(renderScalar(el))
		}
		e.write("\n")
		return
	}

	e.write(":\n")
	for _, el := range f.bufferedElements {
		e.writeIndent(f.indentLevel + 1)
		e.write("- ")
		if m, ok := el.(*bufferedObj); ok {
			e.writeBufferedObjectInline(m, f.indentLevel+2)
		} else {
			e.write(renderScalar(el))
		}
		e.write("\n")
	}
}

// writeBufferedObjectInline renders a buffered object as the field-per-line
// body of a list item, continuing at contIndent for fields after the
// first (which shares the line with the "- " marker).
func (e *Encoder) writeBufferedObjectInline(o *bufferedObj, contIndent int) {
	for i, key := range o.keys {
		if i > 0 {
			e.write("\n")
			e.writeIndent(contIndent)
		}
		val := o.vals[key]
		e.write(quoteIfNeeded(key, ','))
		e.write(": ")
		if nested, ok := val.(*bufferedObj); ok {
			e.write("\n")
			e.writeBufferedObjectInline(nested, contIndent+e.cfg.indentSize)
		} else {
			e.write(renderScalar(val))
		}
	}
}

func renderScalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		return ""
	}
}

// --- scalar emission ---

func (e *Encoder) emitScalar(raw string) *CodecError {
	if e.err != nil {
		return e.err
	}
	top := e.stack.top()
	switch top.kind {
	case frameRoot:
		e.write(raw)
		e.write("\n")

	case frameObject, frameListItemObject:
		if !top.hasPendingField {
			return e.fail(newError(ErrStructural, 0, 0, "value without a preceding FieldName"))
		}
		name := top.pendingFieldName
		top.hasPendingField = false
		first := top.fieldCount == 0
		top.fieldCount++
		if top.bufferedObject != nil {
			top.bufferedObject.set(name, raw)
			return nil
		}
		// The first field of a list-item object shares the "- " line.
		if top.kind != frameListItemObject || !first {
			e.writeIndent(top.indentLevel)
		}
		e.write(quoteIfNeeded(name, ','))
		e.write(": ")
		e.write(raw)
		e.write("\n")

	case frameTabularRow:
		if top.fieldCount > 0 {
			e.write(delimString(top.delimiter))
		}
		top.fieldCount++
		top.hasPendingField = false
		e.write(raw)

	case frameArray:
		if top.isStreaming() {
			if !top.headerWritten {
				e.writeStreamingArrayHeader(top, false)
			} else if top.listFormat {
				return e.fail(newError(ErrStructural, 0, 0, "primitive element in an array already written in list form"))
			} else if top.elementCount > 0 {
				e.write(delimString(top.delimiter))
			}
			e.write(raw)
			top.elementCount++
		} else {
			top.bufferedElements = append(top.bufferedElements, raw)
		}

	default:
		return e.fail(newError(ErrStructural, 0, 0, "unexpected value"))
	}
	return e.err
}

// EmitString writes a string value, quoting it if its content requires
// quoting for the active delimiter.
func (e *Encoder) EmitString(s string) *CodecError {
	delim := byte(',')
	if top := e.stack.top(); top.kind == frameArray || top.kind == frameTabularRow {
		delim = top.delimiter
	}
	return e.emitScalar(quoteIfNeeded(s, delim))
}

// EmitIntegral writes a canonical integer value.
func (e *Encoder) EmitIntegral(i int64) *CodecError {
	return e.emitScalar(FormatIntegral(i))
}

// EmitFractional writes a canonical fractional value.
func (e *Encoder) EmitFractional(f float64) *CodecError {
	return e.emitScalar(FormatFractional(f))
}

// EmitBool writes a boolean value.
func (e *Encoder) EmitBool(b bool) *CodecError {
	if b {
		return e.emitScalar("true")
	}
	return e.emitScalar("false")
}

// EmitNull writes the null value.
func (e *Encoder) EmitNull() *CodecError {
	return e.emitScalar("null")
}

// --- string quoting ---

var numberLikePattern = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

func looksLikeNumber(s string) bool {
	return numberLikePattern.MatchString(s)
}

func needsQuoting(s string, delim byte) bool {
	if s == "" {
		return true
	}
	if s[0] == ' ' || s[0] == '\t' || s[len(s)-1] == ' ' || s[len(s)-1] == '\t' {
		return true
	}
	switch s {
	case "true", "false", "null":
		return true
	}
	if looksLikeNumber(s) {
		return true
	}
	if s == "-" || strings.HasPrefix(s, "- ") {
		return true
	}
	if strings.HasPrefix(s, "#") {
		return true
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x20 {
			return true
		}
		switch c {
		case ':', ',', '|', '[', ']', '{', '}', '"', '\\':
			return true
		}
		if c == delim {
			return true
		}
	}
	return false
}

func escapeString(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

func quoteIfNeeded(s string, delim byte) string {
	if needsQuoting(s, delim) {
		return `"` + escapeString(s) + `"`
	}
	return s
}
