package toon

import (
	"strings"
	"testing"
)

func lexAll(t *testing.T, input string, opts ...Option) []Token {
	t.Helper()
	lex := NewLexer(strings.NewReader(input), opts...)
	var toks []Token
	for {
		tok, err := lex.Next()
		if err != nil {
			t.Fatalf("unexpected lex error: %v", err)
		}
		toks = append(toks, tok)
		if tok.Type == TokEOF {
			return toks
		}
		if len(toks) > 10000 {
			t.Fatalf("runaway lexer, too many tokens")
		}
	}
}

func lexTypes(toks []Token) []TokenType {
	types := make([]TokenType, len(toks))
	for i, t := range toks {
		types[i] = t.Type
	}
	return types
}

func assertTypes(t *testing.T, got []TokenType, want ...TokenType) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v tokens, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %v, want %v (full: %v)", i, got[i], want[i], got)
		}
	}
}

func TestLexerSimpleKeyValue(t *testing.T) {
	toks := lexAll(t, "name: Alice")
	assertTypes(t, lexTypes(toks), TokIdentifier, TokColon, TokIdentifier, TokEOF)
	if toks[0].Value != "name" || toks[2].Value != "Alice" {
		t.Errorf("unexpected values: %+v", toks)
	}
}

func TestLexerIndentDedent(t *testing.T) {
	toks := lexAll(t, "a:\n  b: v\nd: w")
	types := lexTypes(toks)
	assertTypes(t, types,
		TokIdentifier, TokColon, TokNewline, TokIndent,
		TokIdentifier, TokColon, TokIdentifier, TokNewline, TokDedent,
		TokIdentifier, TokColon, TokIdentifier, TokEOF,
	)
}

func TestLexerDedentUnwinding(t *testing.T) {
	// Property 9: exactly two Dedent tokens between the value of c and the
	// key d.
	toks := lexAll(t, "a:\n  b:\n    c: v\nd: w")
	types := lexTypes(toks)
	var cIdx, dIdx = -1, -1
	for i, tok := range toks {
		if tok.Type == TokIdentifier && tok.Value == "v" {
			cIdx = i
		}
		if tok.Type == TokIdentifier && tok.Value == "d" && dIdx == -1 && cIdx != -1 {
			dIdx = i
		}
	}
	if cIdx == -1 || dIdx == -1 {
		t.Fatalf("could not locate c's value / d's key in %v", types)
	}
	count := 0
	for _, tt := range types[cIdx+1 : dIdx] {
		if tt == TokDedent {
			count++
		}
	}
	if count != 2 {
		t.Errorf("expected exactly 2 DEDENT tokens between c's value and d's key, got %d (%v)", count, types[cIdx+1:dIdx])
	}
}

func TestLexerQuotedStringEscapes(t *testing.T) {
	toks := lexAll(t, `"line\nbreak\ttab\"quote\\slash"`)
	if toks[0].Type != TokString {
		t.Fatalf("expected STRING, got %v", toks[0].Type)
	}
	want := "line\nbreak\ttab\"quote\\slash"
	if toks[0].Value != want {
		t.Errorf("got %q, want %q", toks[0].Value, want)
	}
}

func TestLexerUnterminatedString(t *testing.T) {
	lex := NewLexer(strings.NewReader(`"unterminated`))
	_, err := lex.Next()
	if err == nil {
		t.Fatal("expected an error for an unterminated string")
	}
	if err.Kind != ErrLexical {
		t.Errorf("expected ErrLexical, got %v", err.Kind)
	}
}

func TestLexerNumbers(t *testing.T) {
	f := func(input string, wantType TokenType, wantValue string) {
		t.Helper()
		toks := lexAll(t, input)
		if toks[0].Type != wantType {
			t.Errorf("%q: got type %v, want %v", input, toks[0].Type, wantType)
		}
		if toks[0].Value != wantValue {
			t.Errorf("%q: got value %q, want %q", input, toks[0].Value, wantValue)
		}
	}
	f("42", TokNumber, "42")
	f("-42", TokNumber, "-42")
	f("3.14", TokNumber, "3.14")
	f("1e6", TokNumber, "1e6")
	f("1.5e-3", TokNumber, "1.5e-3")
	f("007", TokIdentifier, "007")
	f("0", TokNumber, "0")
}

func TestLexerHyphenDisambiguation(t *testing.T) {
	toks := lexAll(t, "- apple")
	assertTypes(t, lexTypes(toks), TokHyphen, TokIdentifier, TokEOF)

	toks2 := lexAll(t, "-42")
	assertTypes(t, lexTypes(toks2), TokNumber, TokEOF)
}

func TestLexerStructuralTokens(t *testing.T) {
	toks := lexAll(t, "[3|]{a,b}:,")
	assertTypes(t, lexTypes(toks),
		TokLBracket, TokNumber, TokPipe, TokRBracket, TokLBrace,
		TokIdentifier, TokComma, TokIdentifier, TokRBrace, TokColon, TokComma, TokEOF,
	)
}

func TestLexerStrictTabInIndentation(t *testing.T) {
	lex := NewLexer(strings.NewReader("a:\n\tb: v"))
	for {
		_, err := lex.Next()
		if err != nil {
			if err.Kind != ErrIndentation {
				t.Errorf("expected ErrIndentation, got %v", err.Kind)
			}
			return
		}
	}
}

func TestLexerLenientTabInIndentation(t *testing.T) {
	lex := NewLexer(strings.NewReader("a:\n\tb: v"), WithLenientMode())
	for {
		tok, err := lex.Next()
		if err != nil {
			t.Fatalf("lenient mode should not error on tab-in-indentation: %v", err)
		}
		if tok.Type == TokEOF {
			return
		}
	}
}

func TestLexerStrictBadIndentMultiple(t *testing.T) {
	lex := NewLexer(strings.NewReader("user:\n   id: 1"))
	var lastErr *CodecError
	for {
		_, err := lex.Next()
		if err != nil {
			lastErr = err
			break
		}
	}
	if lastErr == nil || lastErr.Kind != ErrIndentation {
		t.Fatalf("expected an indentation error, got %v", lastErr)
	}
}

func TestLexerKeywords(t *testing.T) {
	toks := lexAll(t, "true false null")
	if toks[0].Type != TokBoolean || toks[0].Value != "true" {
		t.Errorf("expected true BOOLEAN, got %+v", toks[0])
	}
	if toks[1].Type != TokBoolean || toks[1].Value != "false" {
		t.Errorf("expected false BOOLEAN, got %+v", toks[1])
	}
	if toks[2].Type != TokNull {
		t.Errorf("expected NULL, got %+v", toks[2])
	}
}
