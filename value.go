package toon

import (
	"io"
	"sort"
)

// DecodeValue reads one complete TOON document from r and returns it as a
// generic Go value restricted to the JSON data model: map[string]any,
// []any, string, int64, float64, bool, or nil. It is a convenience layer
// over Decoder for callers who don't need field-order-preserving
// streaming access; it is deliberately not a reflection/struct-tag based
// Unmarshal.
func DecodeValue(r io.Reader, opts ...Option) (any, *CodecError) {
	dec := NewDecoder(r, opts...)
	ev, err := dec.Next()
	if err != nil {
		return nil, err
	}
	v, _, err := readValue(dec, ev)
	return v, err
}

func readValue(dec *Decoder, ev Event) (any, Event, *CodecError) {
	switch ev {
	case StartObject:
		return readObject(dec)
	case StartArray:
		return readArray(dec)
	case ValueString:
		return dec.Value(), 0, nil
	case ValueIntegral:
		return dec.Int64(), 0, nil
	case ValueFractional:
		return dec.Float64(), 0, nil
	case ValueTrue:
		return true, 0, nil
	case ValueFalse:
		return false, 0, nil
	case ValueNull:
		return nil, 0, nil
	case Eof:
		return nil, Eof, nil
	default:
		return nil, 0, newError(ErrStructural, 0, 0, "unexpected event %s reading value", ev)
	}
}

func readObject(dec *Decoder) (any, Event, *CodecError) {
	m := map[string]any{}
	for {
		ev, err := dec.Next()
		if err != nil {
			return nil, 0, err
		}
		if ev == EndObject {
			return m, 0, nil
		}
		if ev != FieldName {
			return nil, 0, newError(ErrStructural, 0, 0, "expected FieldName, got %s", ev)
		}
		key := dec.Value()
		valEv, err := dec.Next()
		if err != nil {
			return nil, 0, err
		}
		v, _, err := readValue(dec, valEv)
		if err != nil {
			return nil, 0, err
		}
		m[key] = v
	}
}

func readArray(dec *Decoder) (any, Event, *CodecError) {
	var out []any
	for {
		ev, err := dec.Next()
		if err != nil {
			return nil, 0, err
		}
		if ev == EndArray {
			return out, 0, nil
		}
		v, _, err := readValue(dec, ev)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, v)
	}
}

// EncodeValue writes v to w as a TOON document. v must be built from the
// JSON data model: map[string]any, []any, string, int64/int, float64,
// bool, or nil. Object keys are written in sorted order, since a plain Go
// map carries no insertion order; callers who need control over field
// order should drive an Encoder directly instead.
func EncodeValue(w io.Writer, v any, opts ...Option) *CodecError {
	enc := NewEncoder(w, opts...)
	if err := writeValue(enc, v); err != nil {
		return err
	}
	return enc.Err()
}

func writeValue(enc *Encoder, v any) *CodecError {
	switch t := v.(type) {
	case nil:
		return enc.EmitNull()
	case string:
		return enc.EmitString(t)
	case bool:
		return enc.EmitBool(t)
	case int:
		return enc.EmitIntegral(int64(t))
	case int64:
		return enc.EmitIntegral(t)
	case float64:
		return enc.EmitFractional(t)
	case map[string]any:
		return writeObject(enc, t)
	case []any:
		return writeArray(enc, t)
	default:
		return enc.fail(newError(ErrStructural, 0, 0, "unsupported value type %T", v))
	}
}

func writeObject(enc *Encoder, m map[string]any) *CodecError {
	if err := enc.EmitStartObject(); err != nil {
		return err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := enc.EmitFieldName(k); err != nil {
			return err
		}
		if err := writeValue(enc, m[k]); err != nil {
			return err
		}
	}
	return enc.EmitEndObject()
}

func writeArray(enc *Encoder, arr []any) *CodecError {
	if err := enc.EmitStartArray(-1); err != nil {
		return err
	}
	for _, el := range arr {
		if err := writeValue(enc, el); err != nil {
			return err
		}
	}
	return enc.EmitEndArray()
}
