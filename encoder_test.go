package toon

import (
	"strings"
	"testing"
)

func encodeTo(t *testing.T, fn func(e *Encoder) *CodecError) string {
	t.Helper()
	var sb strings.Builder
	e := NewEncoder(&sb)
	if err := fn(e); err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	if err := e.Err(); err != nil {
		t.Fatalf("unexpected encoder state error: %v", err)
	}
	return sb.String()
}

func TestEncoderSimpleObject(t *testing.T) {
	got := encodeTo(t, func(e *Encoder) *CodecError {
		if err := e.EmitStartObject(); err != nil {
			return err
		}
		if err := e.EmitFieldName("name"); err != nil {
			return err
		}
		if err := e.EmitString("Alice"); err != nil {
			return err
		}
		return e.EmitEndObject()
	})
	want := "name: Alice\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncoderNestedObject(t *testing.T) {
	got := encodeTo(t, func(e *Encoder) *CodecError {
		e.EmitStartObject()
		e.EmitFieldName("user")
		e.EmitStartObject()
		e.EmitFieldName("id")
		e.EmitIntegral(123)
		e.EmitFieldName("name")
		e.EmitString("Ada")
		e.EmitEndObject()
		return e.EmitEndObject()
	})
	want := "user:\n  id: 123\n  name: Ada\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncoderStreamingInlineArray(t *testing.T) {
	got := encodeTo(t, func(e *Encoder) *CodecError {
		e.EmitStartObject()
		e.EmitFieldName("tags")
		e.EmitStartArray(3)
		e.EmitString("a")
		e.EmitString("b")
		e.EmitString("c")
		e.EmitEndArray()
		return e.EmitEndObject()
	})
	want := "tags[3]: a,b,c\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncoderStreamingListOfObjects(t *testing.T) {
	got := encodeTo(t, func(e *Encoder) *CodecError {
		e.EmitStartObject()
		e.EmitFieldName("items")
		e.EmitStartArray(2)
		e.EmitStartObject()
		e.EmitFieldName("id")
		e.EmitIntegral(1)
		e.EmitFieldName("name")
		e.EmitString("First")
		e.EmitEndObject()
		e.EmitStartObject()
		e.EmitFieldName("id")
		e.EmitIntegral(2)
		e.EmitFieldName("name")
		e.EmitString("Second")
		e.EmitEndObject()
		e.EmitEndArray()
		return e.EmitEndObject()
	})
	want := "items[2]:\n  - id: 1\n    name: First\n  - id: 2\n    name: Second\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncoderTabularArray(t *testing.T) {
	got := encodeTo(t, func(e *Encoder) *CodecError {
		e.EmitStartObject()
		e.EmitFieldName("users")
		if err := e.EmitStartArrayTabular(2, []string{"id", "name"}, ','); err != nil {
			return err
		}
		e.EmitStartObject()
		e.EmitFieldName("id")
		e.EmitIntegral(1)
		e.EmitFieldName("name")
		e.EmitString("Alice")
		e.EmitEndObject()
		e.EmitStartObject()
		e.EmitFieldName("id")
		e.EmitIntegral(2)
		e.EmitFieldName("name")
		e.EmitString("Bob")
		e.EmitEndObject()
		e.EmitEndArray()
		return e.EmitEndObject()
	})
	want := "users[2]{id,name}:\n  1,Alice\n  2,Bob\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncoderBufferingModeInlineThreshold(t *testing.T) {
	got := encodeTo(t, func(e *Encoder) *CodecError {
		e.EmitStartObject()
		e.EmitFieldName("nums")
		e.EmitStartArray(-1)
		for i := int64(1); i <= 5; i++ {
			e.EmitIntegral(i)
		}
		e.EmitEndArray()
		return e.EmitEndObject()
	})
	want := "nums[5]: 1,2,3,4,5\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncoderBufferingModeOverflowsToList(t *testing.T) {
	got := encodeTo(t, func(e *Encoder) *CodecError {
		e.EmitStartObject()
		e.EmitFieldName("nums")
		e.EmitStartArray(-1)
		for i := int64(1); i <= 11; i++ {
			e.EmitIntegral(i)
		}
		e.EmitEndArray()
		return e.EmitEndObject()
	})
	want := "nums[11]:\n  - 1\n  - 2\n  - 3\n  - 4\n  - 5\n  - 6\n  - 7\n  - 8\n  - 9\n  - 10\n  - 11\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncoderBufferingModeObjectsPreserveFieldOrder(t *testing.T) {
	got := encodeTo(t, func(e *Encoder) *CodecError {
		e.EmitStartObject()
		e.EmitFieldName("items")
		e.EmitStartArray(-1)
		for _, v := range []struct {
			id   int64
			name string
		}{{1, "First"}, {2, "Second"}} {
			e.EmitStartObject()
			e.EmitFieldName("id")
			e.EmitIntegral(v.id)
			e.EmitFieldName("name")
			e.EmitString(v.name)
			e.EmitEndObject()
		}
		e.EmitEndArray()
		return e.EmitEndObject()
	})
	want := "items[2]:\n  - id: 1\n    name: First\n  - id: 2\n    name: Second\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncoderRootScalar(t *testing.T) {
	got := encodeTo(t, func(e *Encoder) *CodecError {
		return e.EmitIntegral(42)
	})
	want := "42\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEncoderArrayOfArraysRejected(t *testing.T) {
	var sb strings.Builder
	e := NewEncoder(&sb)
	e.EmitStartArray(1)
	if err := e.EmitStartArray(1); err == nil {
		t.Fatal("expected a structural error for an array nested directly in an array")
	}
}

func TestEncoderStructuralMisuse(t *testing.T) {
	var sb strings.Builder
	e := NewEncoder(&sb)
	if err := e.EmitFieldName("x"); err == nil {
		t.Fatal("expected an error for FieldName at the document root")
	}
}

func TestEncoderStickyErrorAbortsFurtherWrites(t *testing.T) {
	var sb strings.Builder
	e := NewEncoder(&sb)
	e.EmitFieldName("x") // errors: no object open yet
	if e.Err() == nil {
		t.Fatal("expected Err() to be set")
	}
	if err := e.EmitString("anything"); err == nil {
		t.Fatal("expected the sticky error to be returned by subsequent calls")
	}
	if sb.Len() != 0 {
		t.Errorf("no output should have been written after the first error, got %q", sb.String())
	}
}

func TestQuoteIfNeeded(t *testing.T) {
	cases := []struct {
		in    string
		delim byte
		quote bool
	}{
		{"hello", ',', false},
		{"", ',', true},
		{" leading", ',', true},
		{"trailing ", ',', true},
		{"true", ',', true},
		{"false", ',', true},
		{"null", ',', true},
		{"42", ',', true},
		{"3.14", ',', true},
		{"-", ',', true},
		{"- dash prefixed", ',', true},
		{"#comment-like", ',', true},
		{"a,b", ',', true},
		{"a|b", '|', true},
		{"a|b", ',', true},
		{"plain text with spaces", ',', false},
	}
	for _, c := range cases {
		got := needsQuoting(c.in, c.delim)
		if got != c.quote {
			t.Errorf("needsQuoting(%q, %q) = %v, want %v", c.in, c.delim, got, c.quote)
		}
	}
}

func TestQuoteIfNeededRoundTripsPlainStrings(t *testing.T) {
	for _, s := range []string{"hello", "plain text with spaces", "42abc", "snake_case"} {
		if got := quoteIfNeeded(s, ','); got != s {
			t.Errorf("quoteIfNeeded(%q) = %q, want unchanged", s, got)
		}
	}
}

func TestEscapeStringRoundTripsThroughLexer(t *testing.T) {
	raw := "a\tb\nc\"d\\e"
	quoted := quoteIfNeeded(raw, ',')
	lex := NewLexer(strings.NewReader(quoted))
	tok, err := lex.Next()
	if err != nil {
		t.Fatalf("unexpected lex error: %v", err)
	}
	if tok.Type != TokString {
		t.Fatalf("expected STRING, got %v", tok.Type)
	}
	if tok.Value != raw {
		t.Errorf("got %q, want %q", tok.Value, raw)
	}
}
